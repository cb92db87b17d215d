package videoview

import (
	"context"
	"errors"
	"math"
	"sync"
	"sync/atomic"
	"time"
)

// PatternType selects the synthetic image a PatternTrack draws.
type PatternType int

const (
	PatternColorBars    PatternType = iota // SMPTE-style color bars
	PatternGradient                        // Horizontal luma gradient
	PatternCheckerboard                    // Checkerboard
	PatternMovingBox                       // White box circling the center
)

func (p PatternType) String() string {
	switch p {
	case PatternColorBars:
		return "ColorBars"
	case PatternGradient:
		return "Gradient"
	case PatternCheckerboard:
		return "Checkerboard"
	case PatternMovingBox:
		return "MovingBox"
	default:
		return "Unknown"
	}
}

// PatternConfig configures a PatternTrack.
type PatternConfig struct {
	ID          string      // Track identifier (default: "pattern")
	Width       int         // Frame width (default: 1280)
	Height      int         // Frame height (default: 720)
	FPS         int         // Frames per second (default: 30)
	Pattern     PatternType // Pattern type (default: ColorBars)
	CheckerSize int         // Checker square size (default: 32)
}

// PatternTrack is a VideoTrack that synthesizes I420 frames at a fixed rate.
// It stands in for a live capture or network source when exercising a view.
// Frames are drawn into a single reused buffer; renderers that keep a frame
// past delivery must Clone it.
type PatternTrack struct {
	FrameTrack

	config PatternConfig
	frame  *VideoFrame

	running atomic.Bool
	ctx     context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup

	frameCount uint64
	startTime  time.Time
}

// NewPatternTrack creates a pattern track. Start must be called before frames
// flow.
func NewPatternTrack(config PatternConfig) *PatternTrack {
	if config.ID == "" {
		config.ID = "pattern"
	}
	if config.Width <= 0 {
		config.Width = 1280
	}
	if config.Height <= 0 {
		config.Height = 720
	}
	if config.FPS <= 0 {
		config.FPS = 30
	}
	if config.CheckerSize <= 0 {
		config.CheckerSize = 32
	}

	t := &PatternTrack{
		FrameTrack: FrameTrack{id: config.ID},
		config:     config,
		frame:      NewI420Frame(config.Width, config.Height),
	}
	t.drawPattern(0)
	return t
}

// Start begins generating frames.
func (t *PatternTrack) Start() error {
	if !t.running.CompareAndSwap(false, true) {
		return errors.New("track already running")
	}

	t.ctx, t.cancel = context.WithCancel(context.Background())
	t.startTime = time.Now()
	t.frameCount = 0
	t.wg.Add(1)
	go t.generateLoop()
	return nil
}

// Stop halts frame generation. Attached renderers stay attached. Idempotent.
func (t *PatternTrack) Stop() {
	if !t.running.CompareAndSwap(true, false) {
		return
	}
	t.cancel()
	t.wg.Wait()
}

// Close stops the track.
func (t *PatternTrack) Close() error {
	t.Stop()
	return nil
}

func (t *PatternTrack) generateLoop() {
	defer t.wg.Done()

	ticker := time.NewTicker(time.Second / time.Duration(t.config.FPS))
	defer ticker.Stop()

	for {
		select {
		case <-t.ctx.Done():
			return
		case <-ticker.C:
			t.frameCount++
			if t.config.Pattern == PatternMovingBox {
				t.drawPattern(t.frameCount)
			}
			t.frame.Timestamp = time.Since(t.startTime).Nanoseconds()
			t.DeliverFrame(t.frame)
		}
	}
}

func (t *PatternTrack) drawPattern(frameNum uint64) {
	switch t.config.Pattern {
	case PatternGradient:
		t.drawGradient()
	case PatternCheckerboard:
		t.drawCheckerboard()
	case PatternMovingBox:
		t.drawMovingBox(frameNum)
	default:
		t.drawColorBars()
	}
}

// Simplified SMPTE 8-bar pattern at 75% intensity.
var colorBarsRGB = [][3]uint8{
	{192, 192, 192}, // White
	{192, 192, 0},   // Yellow
	{0, 192, 192},   // Cyan
	{0, 192, 0},     // Green
	{192, 0, 192},   // Magenta
	{192, 0, 0},     // Red
	{0, 0, 192},     // Blue
	{16, 16, 16},    // Black
}

func (t *PatternTrack) drawColorBars() {
	f := t.frame
	w, h := f.Width, f.Height
	barWidth := w / len(colorBarsRGB)

	for x := 0; x < w; x++ {
		barIdx := x / barWidth
		if barIdx >= len(colorBarsRGB) {
			barIdx = len(colorBarsRGB) - 1
		}
		rgb := colorBarsRGB[barIdx]
		yVal, u, v := rgbToYUV(rgb[0], rgb[1], rgb[2])

		for y := 0; y < h; y++ {
			f.Data[0][y*f.Stride[0]+x] = yVal
		}
		if x%2 == 0 {
			for y := 0; y < h/2; y++ {
				uvIdx := y*f.Stride[1] + x/2
				f.Data[1][uvIdx] = u
				f.Data[2][uvIdx] = v
			}
		}
	}
}

func (t *PatternTrack) drawGradient() {
	f := t.frame
	w, h := f.Width, f.Height

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			f.Data[0][y*f.Stride[0]+x] = uint8(16 + (x*219)/w)
		}
	}
	fillNeutralChroma(f)
}

func (t *PatternTrack) drawCheckerboard() {
	f := t.frame
	w, h := f.Width, f.Height
	size := t.config.CheckerSize

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			var yVal uint8 = 16
			if ((x/size)+(y/size))%2 == 0 {
				yVal = 235
			}
			f.Data[0][y*f.Stride[0]+x] = yVal
		}
	}
	fillNeutralChroma(f)
}

func (t *PatternTrack) drawMovingBox(frameNum uint64) {
	f := t.frame
	w, h := f.Width, f.Height

	for i := range f.Data[0] {
		f.Data[0][i] = 16
	}
	fillNeutralChroma(f)

	boxSize := min(w, h) / 6
	radius := float64(min(w, h)) / 4
	angle := float64(frameNum) * 0.05
	boxX := w/2 + int(radius*math.Cos(angle)) - boxSize/2
	boxY := h/2 + int(radius*math.Sin(angle)) - boxSize/2

	for y := boxY; y < boxY+boxSize && y < h; y++ {
		if y < 0 {
			continue
		}
		for x := boxX; x < boxX+boxSize && x < w; x++ {
			if x < 0 {
				continue
			}
			f.Data[0][y*f.Stride[0]+x] = 235
		}
	}
}

func fillNeutralChroma(f *VideoFrame) {
	for i := range f.Data[1] {
		f.Data[1][i] = 128
		f.Data[2][i] = 128
	}
}

// rgbToYUV converts RGB to limited-range YUV (BT.601).
func rgbToYUV(r, g, b uint8) (y, u, v uint8) {
	yf := 16.0 + 65.481*float64(r)/255.0 + 128.553*float64(g)/255.0 + 24.966*float64(b)/255.0
	uf := 128.0 - 37.797*float64(r)/255.0 - 74.203*float64(g)/255.0 + 112.0*float64(b)/255.0
	vf := 128.0 + 112.0*float64(r)/255.0 - 93.786*float64(g)/255.0 - 18.214*float64(b)/255.0

	y = uint8(clampF(yf, 16, 235))
	u = uint8(clampF(uf, 16, 240))
	v = uint8(clampF(vf, 16, 240))
	return
}

func clampF(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
