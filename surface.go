package videoview

import (
	"errors"
	"sync"
)

// ErrSurfaceInitialized is returned by Init on an already-initialized surface.
var ErrSurfaceInitialized = errors.New("surface already initialized")

// ErrNoContext is returned by Init when called without a valid render
// context. A VideoView never triggers this: it initializes the surface only
// after context acquisition succeeded.
var ErrNoContext = errors.New("surface requires a render context")

// Rect is a position and size within the parent's coordinate space.
type Rect struct {
	X, Y          int
	Width, Height int
}

// Empty reports whether the rect has no drawable area.
func (r Rect) Empty() bool {
	return r.Width <= 0 || r.Height <= 0
}

// StackOrder is the compositing priority of a surface relative to sibling
// rendering surfaces.
type StackOrder int

const (
	// StackUnderlay places the surface beneath sibling surfaces.
	StackUnderlay StackOrder = iota
	// StackOverlayMedia places the surface above other media surfaces but
	// below non-media siblings.
	StackOverlayMedia
	// StackOverlayTop places the surface above everything.
	StackOverlayTop
)

func (o StackOrder) String() string {
	switch o {
	case StackUnderlay:
		return "underlay"
	case StackOverlayMedia:
		return "overlay-media"
	case StackOverlayTop:
		return "overlay-top"
	default:
		return "unknown"
	}
}

// Surface is a drawable surface owning pixel presentation for a VideoView.
// Property setters take effect immediately, independent of whether the
// surface is initialized.
type Surface interface {
	// Init binds the surface to an acquired render context. Init without a
	// valid context, or on an already-initialized surface, is an error.
	Init(rc *RenderContext) error

	// Release drops the surface's graphics resources, releasing the bound
	// render context. Safe to call on an uninitialized surface.
	Release()

	// PresentFrame presents a frame. Frames arriving while the surface is
	// uninitialized or has no laid-out bounds are dropped.
	PresentFrame(frame *VideoFrame)

	// ClearImage discards the currently displayed image.
	ClearImage()

	// RequestLayout asks the host view tree for a layout pass.
	RequestLayout()

	SetMirror(mirror bool)
	SetScaleMode(mode ScaleMode)
	SetStackOrder(order StackOrder)

	// Layout positions the surface within the given bounds.
	Layout(bounds Rect)
}

// SurfaceStats counts observable FrameSurface activity.
type SurfaceStats struct {
	FramesPresented uint64
	FramesDropped   uint64
	LayoutRequests  uint64
	PropertyPushes  uint64
}

// FrameSurface is a software Surface: it scales incoming I420 frames to its
// laid-out bounds (honoring mirror and scale mode) and keeps the presented
// frame for the host to blit. It also satisfies Renderer, so it can be
// attached directly to a VideoTrack.
//
// FrameSurface synchronizes internally: frames arrive from track goroutines
// while properties are written from the UI thread.
type FrameSurface struct {
	mu sync.Mutex

	rc     *RenderContext
	bounds Rect

	mirror     bool
	scaleMode  ScaleMode
	stackOrder StackOrder

	scaler    *VideoScaler
	scalerSrc [2]int // source dims the scaler was built for

	presented *VideoFrame
	stats     SurfaceStats
}

// NewFrameSurface creates an uninitialized frame surface.
func NewFrameSurface() *FrameSurface {
	return &FrameSurface{scaleMode: ScaleModeFit}
}

// Init binds the surface to a render context.
func (s *FrameSurface) Init(rc *RenderContext) error {
	if rc == nil {
		return ErrNoContext
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.rc != nil {
		return ErrSurfaceInitialized
	}
	s.rc = rc
	return nil
}

// Release drops the presented image and releases the bound render context.
// Idempotent.
func (s *FrameSurface) Release() {
	s.mu.Lock()
	rc := s.rc
	s.rc = nil
	s.presented = nil
	s.scaler = nil
	s.mu.Unlock()

	if rc != nil {
		rc.Release()
	}
}

// Context returns the bound render context, or nil.
func (s *FrameSurface) Context() *RenderContext {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rc
}

// PresentFrame scales the frame to the surface bounds and stores it as the
// presented image. Non-I420 frames and frames arriving before Init or Layout
// are dropped.
func (s *FrameSurface) PresentFrame(frame *VideoFrame) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.rc == nil || s.bounds.Empty() || frame == nil || frame.Format != PixelFormatI420 {
		s.stats.FramesDropped++
		return
	}

	if s.scaler == nil || s.scalerSrc != [2]int{frame.Width, frame.Height} {
		s.scaler = NewVideoScaler(frame.Width, frame.Height,
			s.bounds.Width&^1, s.bounds.Height&^1, s.scaleMode)
		s.scalerSrc = [2]int{frame.Width, frame.Height}
	}

	out := s.scaler.Scale(frame)
	if s.mirror {
		out = mirrorI420(out)
	} else if out == frame {
		out = frame.Clone()
	}
	s.presented = out
	s.stats.FramesPresented++
}

// RenderFrame implements Renderer.
func (s *FrameSurface) RenderFrame(frame *VideoFrame) { s.PresentFrame(frame) }

// Close implements Renderer; it releases the surface.
func (s *FrameSurface) Close() error {
	s.Release()
	return nil
}

// Presented returns the currently displayed frame, or nil.
func (s *FrameSurface) Presented() *VideoFrame {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.presented
}

// ClearImage discards the displayed image.
func (s *FrameSurface) ClearImage() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.presented = nil
}

// RequestLayout records a layout request for the host to service.
func (s *FrameSurface) RequestLayout() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stats.LayoutRequests++
}

// SetMirror sets horizontal mirroring of presented frames.
func (s *FrameSurface) SetMirror(mirror bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.mirror = mirror
	s.stats.PropertyPushes++
}

// SetScaleMode sets how frames are scaled to the surface bounds.
func (s *FrameSurface) SetScaleMode(mode ScaleMode) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.scaleMode != mode {
		s.scaler = nil
	}
	s.scaleMode = mode
	s.stats.PropertyPushes++
}

// SetStackOrder sets the surface's compositing priority.
func (s *FrameSurface) SetStackOrder(order StackOrder) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stackOrder = order
	s.stats.PropertyPushes++
}

// StackOrder returns the current compositing priority.
func (s *FrameSurface) StackOrder() StackOrder {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stackOrder
}

// Layout positions the surface. The surface always occupies exactly the
// given bounds; there is no internal margin or padding.
func (s *FrameSurface) Layout(bounds Rect) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.bounds != bounds {
		s.scaler = nil
	}
	s.bounds = bounds
}

// Bounds returns the last laid-out bounds.
func (s *FrameSurface) Bounds() Rect {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.bounds
}

// Stats returns a snapshot of surface counters.
func (s *FrameSurface) Stats() SurfaceStats {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stats
}

// mirrorI420 returns a horizontally flipped copy of an I420 frame.
func mirrorI420(frame *VideoFrame) *VideoFrame {
	out := frame.Clone()
	flipPlane(out.Data[0], out.Stride[0], out.Width, out.Height)
	flipPlane(out.Data[1], out.Stride[1], out.Width/2, out.Height/2)
	flipPlane(out.Data[2], out.Stride[2], out.Width/2, out.Height/2)
	return out
}

func flipPlane(data []byte, stride, width, height int) {
	for y := 0; y < height; y++ {
		row := data[y*stride : y*stride+width]
		for x, xr := 0, width-1; x < xr; x, xr = x+1, xr-1 {
			row[x], row[xr] = row[xr], row[x]
		}
	}
}
