package videoview

import (
	"testing"
	"time"
)

func TestPatternTrackDefaults(t *testing.T) {
	track := NewPatternTrack(PatternConfig{})

	if track.ID() != "pattern" {
		t.Errorf("unexpected default id %q", track.ID())
	}
	if track.frame.Width != 1280 || track.frame.Height != 720 {
		t.Errorf("unexpected default frame size %dx%d", track.frame.Width, track.frame.Height)
	}
	if track.Kind() != RTPCodecTypeVideo {
		t.Errorf("expected video kind, got %v", track.Kind())
	}
}

func TestPatternTrackDelivers(t *testing.T) {
	track := NewPatternTrack(PatternConfig{Width: 64, Height: 48, FPS: 200})
	r := &countRenderer{}
	track.AddRenderer(r)

	if err := track.Start(); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	if err := track.Start(); err == nil {
		t.Error("second Start should fail while running")
	}
	defer track.Close()

	waitFor(t, time.Second, func() bool { return r.Frames() >= 3 })

	track.Stop()
	track.Stop() // idempotent
}

func TestPatternColorBars(t *testing.T) {
	track := NewPatternTrack(PatternConfig{Width: 640, Height: 48, Pattern: PatternColorBars})
	f := track.frame

	// First bar is 75% white, last bar is black.
	if f.Data[0][0] < 150 {
		t.Errorf("white bar luma too dark: %d", f.Data[0][0])
	}
	if f.Data[0][639] != 16 {
		t.Errorf("black bar luma should be 16, got %d", f.Data[0][639])
	}
}

func TestPatternGradient(t *testing.T) {
	track := NewPatternTrack(PatternConfig{Width: 640, Height: 48, Pattern: PatternGradient})
	f := track.frame

	if f.Data[0][0] >= f.Data[0][639] {
		t.Errorf("gradient should brighten left to right: %d .. %d", f.Data[0][0], f.Data[0][639])
	}
	if f.Data[1][0] != 128 || f.Data[2][0] != 128 {
		t.Error("gradient should have neutral chroma")
	}
}

func TestPatternCheckerboard(t *testing.T) {
	track := NewPatternTrack(PatternConfig{Width: 128, Height: 128, Pattern: PatternCheckerboard, CheckerSize: 32})
	f := track.frame

	if f.Data[0][0] != 235 {
		t.Errorf("top-left checker should be white, got %d", f.Data[0][0])
	}
	if f.Data[0][32] != 16 {
		t.Errorf("second checker should be black, got %d", f.Data[0][32])
	}
}

func TestPatternMovingBoxAnimates(t *testing.T) {
	track := NewPatternTrack(PatternConfig{Width: 128, Height: 128, Pattern: PatternMovingBox})

	first := track.frame.Clone()
	track.drawPattern(30)

	same := true
	for i, b := range track.frame.Data[0] {
		if first.Data[0][i] != b {
			same = false
			break
		}
	}
	if same {
		t.Error("moving box should change position between frames")
	}
}

func TestRGBToYUV(t *testing.T) {
	tests := []struct {
		name    string
		r, g, b uint8
		wantY   uint8
	}{
		{"black", 0, 0, 0, 16},
		{"white", 255, 255, 255, 235},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			y, _, _ := rgbToYUV(tt.r, tt.g, tt.b)
			if y != tt.wantY {
				t.Errorf("luma = %d, want %d", y, tt.wantY)
			}
		})
	}

	// Neutral gray carries neutral chroma.
	_, u, v := rgbToYUV(128, 128, 128)
	if u < 126 || u > 130 || v < 126 || v > 130 {
		t.Errorf("gray chroma should be near 128, got u=%d v=%d", u, v)
	}
}
