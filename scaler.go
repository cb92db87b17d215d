package videoview

// ScaleMode defines how scaling handles aspect ratio mismatches between a
// frame and the surface it is presented on. It is the closed form of the
// CSS-style object-fit values accepted by VideoView.SetObjectFit.
type ScaleMode int

const (
	// ScaleModeFit scales to fit within the target, preserving aspect ratio.
	// The unused target area is letterboxed/pillarboxed with black.
	ScaleModeFit ScaleMode = iota
	// ScaleModeFill scales to fill the target, preserving aspect ratio and
	// cropping the overflowing source area.
	ScaleModeFill
	// ScaleModeStretch scales to exactly match the target (may distort).
	ScaleModeStretch
)

func (m ScaleMode) String() string {
	switch m {
	case ScaleModeFit:
		return "fit"
	case ScaleModeFill:
		return "fill"
	case ScaleModeStretch:
		return "stretch"
	default:
		return "unknown"
	}
}

// VideoScaler scales I420 video frames onto a fixed-size target.
type VideoScaler struct {
	srcWidth, srcHeight int
	dstWidth, dstHeight int
	mode                ScaleMode

	// Pre-allocated output buffer
	outY, outU, outV []byte
}

// NewVideoScaler creates a new scaler for the given dimensions.
func NewVideoScaler(srcWidth, srcHeight, dstWidth, dstHeight int, mode ScaleMode) *VideoScaler {
	ySize := dstWidth * dstHeight
	uvSize := (dstWidth / 2) * (dstHeight / 2)

	return &VideoScaler{
		srcWidth:  srcWidth,
		srcHeight: srcHeight,
		dstWidth:  dstWidth,
		dstHeight: dstHeight,
		mode:      mode,
		outY:      make([]byte, ySize),
		outU:      make([]byte, uvSize),
		outV:      make([]byte, uvSize),
	}
}

// Scale scales an I420 frame to the target dimensions.
// The returned frame aliases the scaler's internal buffer and is valid until
// the next Scale call.
func (s *VideoScaler) Scale(frame *VideoFrame) *VideoFrame {
	if frame.Width == s.dstWidth && frame.Height == s.dstHeight {
		// No scaling needed
		return frame
	}

	// Source region (cropped for fill mode)
	srcX, srcY, srcW, srcH := s.calculateSourceRegion(frame.Width, frame.Height)

	// Destination region (letterboxed for fit mode)
	dstX, dstY, dstW, dstH := s.calculateDestRegion(frame.Width, frame.Height)
	if dstW != s.dstWidth || dstH != s.dstHeight {
		s.clearOutput()
	}

	s.scalePlane(frame.Data[0], frame.Stride[0], srcX, srcY, srcW, srcH,
		s.outY, s.dstWidth, dstX, dstY, dstW, dstH)

	// Chroma planes at half resolution
	s.scalePlane(frame.Data[1], frame.Stride[1], srcX/2, srcY/2, srcW/2, srcH/2,
		s.outU, s.dstWidth/2, dstX/2, dstY/2, dstW/2, dstH/2)
	s.scalePlane(frame.Data[2], frame.Stride[2], srcX/2, srcY/2, srcW/2, srcH/2,
		s.outV, s.dstWidth/2, dstX/2, dstY/2, dstW/2, dstH/2)

	return &VideoFrame{
		Data:      [][]byte{s.outY, s.outU, s.outV},
		Stride:    []int{s.dstWidth, s.dstWidth / 2, s.dstWidth / 2},
		Width:     s.dstWidth,
		Height:    s.dstHeight,
		Format:    PixelFormatI420,
		Timestamp: frame.Timestamp,
	}
}

// calculateSourceRegion determines what region of the source to sample.
func (s *VideoScaler) calculateSourceRegion(srcW, srcH int) (x, y, w, h int) {
	switch s.mode {
	case ScaleModeFill:
		// Crop source to match target aspect ratio
		srcAspect := float64(srcW) / float64(srcH)
		dstAspect := float64(s.dstWidth) / float64(s.dstHeight)

		if srcAspect > dstAspect {
			// Source is wider, crop horizontally
			newW := int(float64(srcH) * dstAspect)
			return (srcW - newW) / 2, 0, newW, srcH
		} else if srcAspect < dstAspect {
			// Source is taller, crop vertically
			newH := int(float64(srcW) / dstAspect)
			return 0, (srcH - newH) / 2, srcW, newH
		}
		return 0, 0, srcW, srcH

	default:
		// Fit and stretch sample the entire source
		return 0, 0, srcW, srcH
	}
}

// calculateDestRegion determines what region of the target to write.
func (s *VideoScaler) calculateDestRegion(srcW, srcH int) (x, y, w, h int) {
	if s.mode != ScaleModeFit {
		return 0, 0, s.dstWidth, s.dstHeight
	}
	w, h = CalculateScaledSize(srcW, srcH, s.dstWidth, s.dstHeight, ScaleModeFit)
	x = ((s.dstWidth - w) / 2) &^ 1
	y = ((s.dstHeight - h) / 2) &^ 1
	return x, y, w, h
}

// clearOutput fills the target with black, so letterbox bars render as black
// rather than stale pixels from the previous frame.
func (s *VideoScaler) clearOutput() {
	for i := range s.outY {
		s.outY[i] = 16
	}
	for i := range s.outU {
		s.outU[i] = 128
		s.outV[i] = 128
	}
}

// scalePlane scales a single plane using bilinear interpolation, writing
// into the dst subregion at (dstX, dstY) of size dstW x dstH.
func (s *VideoScaler) scalePlane(src []byte, srcStride, srcX, srcY, srcW, srcH int,
	dst []byte, dstStride, dstX, dstY, dstW, dstH int) {

	if srcW <= 0 || srcH <= 0 || dstW <= 0 || dstH <= 0 {
		return
	}

	// Fixed-point scaling factors (16.16)
	xRatio := (srcW << 16) / dstW
	yRatio := (srcH << 16) / dstH

	for y := 0; y < dstH; y++ {
		srcYFP := y * yRatio
		srcYInt := srcYFP >> 16
		srcYFrac := srcYFP & 0xFFFF

		y0 := srcYInt + srcY
		y1 := y0 + 1
		if y1 >= srcY+srcH {
			y1 = y0
		}

		for x := 0; x < dstW; x++ {
			srcXFP := x * xRatio
			srcXInt := srcXFP >> 16
			srcXFrac := srcXFP & 0xFFFF

			x0 := srcXInt + srcX
			x1 := x0 + 1
			if x1 >= srcX+srcW {
				x1 = x0
			}

			// Four surrounding pixels
			p00 := int(src[y0*srcStride+x0])
			p10 := int(src[y0*srcStride+x1])
			p01 := int(src[y1*srcStride+x0])
			p11 := int(src[y1*srcStride+x1])

			// Bilinear interpolation
			top := (p00*(0x10000-srcXFrac) + p10*srcXFrac) >> 16
			bottom := (p01*(0x10000-srcXFrac) + p11*srcXFrac) >> 16
			result := (top*(0x10000-srcYFrac) + bottom*srcYFrac) >> 16

			dst[(y+dstY)*dstStride+x+dstX] = byte(result)
		}
	}
}

// ScaleFrame is a convenience function to scale a frame without creating a scaler.
func ScaleFrame(frame *VideoFrame, dstWidth, dstHeight int, mode ScaleMode) *VideoFrame {
	scaler := NewVideoScaler(frame.Width, frame.Height, dstWidth, dstHeight, mode)
	return scaler.Scale(frame)
}

// CalculateScaledSize returns the content dimensions when scaling with a
// given mode. For ScaleModeFit this is the letterboxed content size.
func CalculateScaledSize(srcW, srcH, maxW, maxH int, mode ScaleMode) (w, h int) {
	switch mode {
	case ScaleModeFit:
		srcAspect := float64(srcW) / float64(srcH)
		dstAspect := float64(maxW) / float64(maxH)

		if srcAspect > dstAspect {
			// Source is wider, fit to width
			w = maxW
			h = int(float64(maxW) / srcAspect)
		} else {
			// Source is taller, fit to height
			h = maxH
			w = int(float64(maxH) * srcAspect)
		}
		// Ensure even dimensions for YUV
		w = (w + 1) &^ 1
		h = (h + 1) &^ 1
		if w > maxW {
			w = maxW
		}
		if h > maxH {
			h = maxH
		}
		return w, h

	case ScaleModeFill, ScaleModeStretch:
		return maxW, maxH

	default:
		return maxW, maxH
	}
}
