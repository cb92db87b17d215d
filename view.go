package videoview

import (
	"sync/atomic"

	"github.com/pion/logging"
)

// ObjectFitCover is the object-fit value that maps to ScaleModeFill. Any
// other value, including the empty string, maps to ScaleModeFit.
const ObjectFitCover = "cover"

// ViewStats counts VideoView lifecycle activity.
type ViewStats struct {
	Starts           uint64 // rendering sessions started
	Stops            uint64 // rendering sessions stopped
	ContextFallbacks uint64 // sessions started on a non-primary strategy
	ContextFailures  uint64 // tryStart aborted because no strategy succeeded
}

// ViewConfig configures a VideoView. Zero values select defaults.
type ViewConfig struct {
	// Surface receiving frames and property writes. Defaults to a new
	// FrameSurface.
	Surface Surface

	// Strategies tried in order when acquiring a context. Defaults to
	// DefaultStrategies().
	Strategies []ContextStrategy

	// Context holds the configuration attributes passed to every strategy.
	// The zero value is replaced by DefaultContextConfig().
	Context ContextConfig

	// LoggerFactory for the view's scoped logger. Defaults to
	// logging.NewDefaultLoggerFactory().
	LoggerFactory logging.LoggerFactory
}

// VideoView binds the first video track of a media stream to a rendering
// surface. The graphics context and the track renderer exist only while the
// view is attached to a window and a track is assigned; both are acquired in
// tryStart and released in stop, and never leak across sessions.
//
// All methods must be called from the host's UI/event thread. VideoView does
// no internal locking: concurrent mutation is a contract violation, not a
// supported mode.
type VideoView struct {
	surface    Surface
	strategies []ContextStrategy
	ctxConfig  ContextConfig
	log        logging.LeveledLogger

	attached bool
	track    VideoTrack
	renderer Renderer
	context  *RenderContext

	mirror     bool
	scaleMode  ScaleMode
	stackOrder StackOrder
	stackSet   bool

	stats ViewStats
}

// NewVideoView creates a view with the given configuration.
func NewVideoView(config ViewConfig) *VideoView {
	if config.Surface == nil {
		config.Surface = NewFrameSurface()
	}
	if config.Strategies == nil {
		config.Strategies = DefaultStrategies()
	}
	if config.Context == (ContextConfig{}) {
		config.Context = DefaultContextConfig()
	}
	lf := config.LoggerFactory
	if lf == nil {
		lf = logging.NewDefaultLoggerFactory()
	}

	v := &VideoView{
		surface:    config.Surface,
		strategies: config.Strategies,
		ctxConfig:  config.Context,
		log:        lf.NewLogger("videoview"),
		scaleMode:  ScaleModeFit,
	}
	v.surface.SetScaleMode(v.scaleMode)
	return v
}

// Attach signals that the view entered a window. Rendering starts if a track
// is assigned. Idempotent.
func (v *VideoView) Attach() {
	if v.attached {
		return
	}
	// Graphics resources are only worth holding while the view is on
	// screen, so acquisition is keyed on attachment.
	v.attached = true
	v.tryStart()
}

// Detach signals that the view left its window. Rendering stops and all
// graphics resources are released. Idempotent.
func (v *VideoView) Detach() {
	if !v.attached {
		return
	}
	v.attached = false
	v.stop()
}

// IsAttached reports whether the view is currently attached to a window.
func (v *VideoView) IsAttached() bool {
	return v.attached
}

// Rendering reports whether a renderer is currently bound to the track.
func (v *VideoView) Rendering() bool {
	return v.renderer != nil
}

// SetStream sets the media stream to render. The view renders the first
// video track, if any. A nil stream clears the track.
func (v *VideoView) SetStream(stream MediaStream) {
	var track VideoTrack
	if stream != nil {
		if tracks := stream.VideoTracks(); len(tracks) > 0 {
			track = tracks[0]
		}
	}
	v.setVideoTrack(track)
}

// setVideoTrack swaps the rendered track. Tracks are compared by interface
// identity: re-assigning the same track value is a no-op, while a different
// track tears the current rendering session down entirely before starting a
// new one. The renderer and context are scoped to a single track's session;
// re-pointing them would leak state between tracks.
func (v *VideoView) setVideoTrack(track VideoTrack) {
	if v.track == track {
		return
	}
	if v.track != nil {
		v.stop()
	}
	v.track = track
	if track != nil {
		v.tryStart()
	}
}

// Track returns the currently assigned track, or nil.
func (v *VideoView) Track() VideoTrack {
	return v.track
}

// SetMirror sets whether presented frames are flipped horizontally.
func (v *VideoView) SetMirror(mirror bool) {
	if v.mirror == mirror {
		return
	}
	v.mirror = mirror
	v.surface.SetMirror(mirror)
}

// SetObjectFit sets how video is scaled to the surface, in CSS object-fit
// terms: "cover" crops to fill, anything else letterboxes. The string is
// mapped to the closed ScaleMode enum here at the API boundary.
func (v *VideoView) SetObjectFit(objectFit string) {
	mode := ScaleModeFit
	if objectFit == ObjectFitCover {
		mode = ScaleModeFill
	}
	v.setScaleMode(mode)
}

func (v *VideoView) setScaleMode(mode ScaleMode) {
	if v.scaleMode == mode {
		return
	}
	v.scaleMode = mode
	v.surface.SetScaleMode(mode)
}

// SetStackOrder sets the view's compositing priority: 0 underlay, 1 overlay
// above other media surfaces, 2 overlay above everything. Unrecognized
// values are silently ignored.
func (v *VideoView) SetStackOrder(order int) {
	var so StackOrder
	switch order {
	case 0:
		so = StackUnderlay
	case 1:
		so = StackOverlayMedia
	case 2:
		so = StackOverlayTop
	default:
		return
	}
	if v.stackSet && v.stackOrder == so {
		return
	}
	v.stackSet = true
	v.stackOrder = so
	v.surface.SetStackOrder(so)
}

// Layout positions the view. The surface occupies exactly the full bounds.
func (v *VideoView) Layout(bounds Rect) {
	v.surface.Layout(bounds)
}

// Stats returns a snapshot of lifecycle counters.
func (v *VideoView) Stats() ViewStats {
	return v.stats
}

// tryStart starts rendering if it is not in progress and all preconditions
// hold: no renderer bound, a track assigned, and the view attached. Context
// acquisition failure is terminal for this attachment session: it is logged
// and the view stays idle, with no retry until the next attach or track
// cycle.
func (v *VideoView) tryStart() {
	if v.renderer != nil || v.track == nil || !v.attached {
		return
	}

	rc, err := AcquireContext(v.ctxConfig, v.strategies...)
	if err != nil {
		// Initializing the surface without a context would be fatal in the
		// underlying graphics stack, so rendering simply does not start.
		v.stats.ContextFailures++
		v.log.Errorf("failed to render track %s: %v", v.track.ID(), err)
		return
	}
	if len(v.strategies) > 0 && rc.Strategy() != v.strategies[0].Name() {
		v.stats.ContextFallbacks++
		v.log.Warnf("primary context strategy unavailable, using %s", rc.Strategy())
	}

	if err := v.surface.Init(rc); err != nil {
		rc.Release()
		v.stats.ContextFailures++
		v.log.Errorf("surface init failed for track %s: %v", v.track.ID(), err)
		return
	}

	r := &surfaceRenderer{surface: v.surface}
	v.context = rc
	v.renderer = r
	v.track.AddRenderer(r)
	v.stats.Starts++
	v.log.Debugf("rendering track %s via %s", v.track.ID(), rc.Strategy())
}

// stop stops rendering and releases the renderer, the surface's graphics
// resources, and the context, in that order. No-op when not rendering.
func (v *VideoView) stop() {
	if v.renderer == nil {
		return
	}

	v.track.RemoveRenderer(v.renderer)
	_ = v.renderer.Close()
	v.renderer = nil

	// The view no longer renders anything; make sure the surface displays
	// nothing as well, and have the now-empty surface relaid.
	v.surface.ClearImage()
	v.surface.RequestLayout()
	v.surface.Release()

	if v.context != nil {
		// Surface.Release already released the context it was bound to;
		// Release is idempotent, so this only matters for surfaces that
		// do not own their context.
		v.context.Release()
		v.context = nil
	}

	v.stats.Stops++
	v.log.Debugf("stopped rendering")
}

// surfaceRenderer is the live binding between a track and the view's
// surface. Closing it stops frame forwarding before the surface is torn
// down, so late frames from the track's delivery goroutine are dropped
// rather than presented to a released surface.
type surfaceRenderer struct {
	surface Surface
	closed  atomic.Bool
}

func (r *surfaceRenderer) RenderFrame(frame *VideoFrame) {
	if r.closed.Load() {
		return
	}
	r.surface.PresentFrame(frame)
}

func (r *surfaceRenderer) Close() error {
	r.closed.Store(true)
	return nil
}
