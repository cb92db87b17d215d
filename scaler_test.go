package videoview

import (
	"testing"
)

// createGradientFrame builds an I420 frame with a horizontal luma gradient.
func createGradientFrame(width, height int) *VideoFrame {
	frame := NewI420Frame(width, height)
	y := frame.Data[0]
	for row := 0; row < height; row++ {
		for col := 0; col < width; col++ {
			y[row*width+col] = byte(16 + (col*219)/width)
		}
	}
	return frame
}

func TestVideoScalerNoScaling(t *testing.T) {
	frame := createGradientFrame(640, 480)

	scaler := NewVideoScaler(640, 480, 640, 480, ScaleModeStretch)
	out := scaler.Scale(frame)

	// Should return same frame when no scaling needed
	if out != frame {
		t.Error("expected same frame when no scaling needed")
	}
}

func TestVideoScalerDownscale(t *testing.T) {
	srcW, srcH := 1280, 720
	dstW, dstH := 640, 360

	frame := createGradientFrame(srcW, srcH)

	scaler := NewVideoScaler(srcW, srcH, dstW, dstH, ScaleModeStretch)
	out := scaler.Scale(frame)

	if out.Width != dstW || out.Height != dstH {
		t.Errorf("expected %dx%d, got %dx%d", dstW, dstH, out.Width, out.Height)
	}
	if len(out.Data[0]) != dstW*dstH {
		t.Errorf("Y plane size mismatch: expected %d, got %d", dstW*dstH, len(out.Data[0]))
	}
	if len(out.Data[1]) != (dstW/2)*(dstH/2) {
		t.Error("U plane size mismatch")
	}
}

func TestVideoScalerUpscale(t *testing.T) {
	frame := createGradientFrame(320, 240)

	scaler := NewVideoScaler(320, 240, 640, 480, ScaleModeStretch)
	out := scaler.Scale(frame)

	if out.Width != 640 || out.Height != 480 {
		t.Errorf("expected 640x480, got %dx%d", out.Width, out.Height)
	}
}

func TestVideoScalerFillCrops(t *testing.T) {
	// 16:9 source to 4:3 destination (crops the sides)
	frame := createGradientFrame(1920, 1080)

	scaler := NewVideoScaler(1920, 1080, 640, 480, ScaleModeFill)
	out := scaler.Scale(frame)

	if out.Width != 640 || out.Height != 480 {
		t.Errorf("expected 640x480, got %dx%d", out.Width, out.Height)
	}

	// Cropping discards the darkest left edge, so the first output pixel
	// must be brighter than the uncropped source edge.
	if out.Data[0][0] <= frame.Data[0][0] {
		t.Errorf("fill mode should crop the source edges, got edge luma %d", out.Data[0][0])
	}
}

func TestVideoScalerFitLetterboxes(t *testing.T) {
	// 16:9 source into a 4:3 destination: bars above and below.
	frame := createGradientFrame(640, 360)

	scaler := NewVideoScaler(640, 360, 640, 480, ScaleModeFit)
	out := scaler.Scale(frame)

	if out.Width != 640 || out.Height != 480 {
		t.Fatalf("expected 640x480, got %dx%d", out.Width, out.Height)
	}

	// Top rows are letterbox bars: black luma, neutral chroma.
	if out.Data[0][0] != 16 {
		t.Errorf("letterbox bar should be black, got luma %d", out.Data[0][0])
	}
	if out.Data[1][0] != 128 || out.Data[2][0] != 128 {
		t.Error("letterbox bar should have neutral chroma")
	}

	// The vertical middle holds content: the right half of the gradient is
	// bright.
	midRow := 240
	if out.Data[0][midRow*640+600] < 100 {
		t.Errorf("content area should hold the gradient, got luma %d",
			out.Data[0][midRow*640+600])
	}
}

func TestCalculateScaledSize(t *testing.T) {
	tests := []struct {
		name             string
		srcW, srcH       int
		maxW, maxH       int
		mode             ScaleMode
		expectW, expectH int
	}{
		{"16:9 to 4:3 fit", 1920, 1080, 640, 480, ScaleModeFit, 640, 360},
		{"4:3 to 16:9 fit", 640, 480, 1280, 720, ScaleModeFit, 960, 720},
		{"same aspect", 1280, 720, 640, 360, ScaleModeFit, 640, 360},
		{"fill mode", 1920, 1080, 640, 480, ScaleModeFill, 640, 480},
		{"stretch mode", 1920, 1080, 640, 480, ScaleModeStretch, 640, 480},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, h := CalculateScaledSize(tt.srcW, tt.srcH, tt.maxW, tt.maxH, tt.mode)
			if w != tt.expectW || h != tt.expectH {
				t.Errorf("expected %dx%d, got %dx%d", tt.expectW, tt.expectH, w, h)
			}
		})
	}
}

func TestScaleModeString(t *testing.T) {
	tests := []struct {
		mode ScaleMode
		want string
	}{
		{ScaleModeFit, "fit"},
		{ScaleModeFill, "fill"},
		{ScaleModeStretch, "stretch"},
		{ScaleMode(7), "unknown"},
	}
	for _, tt := range tests {
		if got := tt.mode.String(); got != tt.want {
			t.Errorf("ScaleMode(%d).String() = %q, want %q", tt.mode, got, tt.want)
		}
	}
}
