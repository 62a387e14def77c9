// Package scale fits raw desktop frames into a fixed output surface,
// preserving aspect ratio and letterboxing the remainder in black.
package scale

import (
	"image"

	"golang.org/x/image/draw"

	"github.com/alphonsez1/ARSmoothDesk/internal/capture"
	"github.com/alphonsez1/ARSmoothDesk/internal/config"
)

// OutputFrame is the scaled BGRA surface handed to consumers. It is
// owned by the Scaler and reused in place every cycle; consumers must
// treat it as read-only.
type OutputFrame struct {
	Width  int
	Height int
	Pix    []byte
}

// Scaler fits source frames into a fixed target size.
type Scaler struct {
	quality config.ScalingQuality
	out     *OutputFrame
}

// NewScaler creates a scaler for the given output size and quality.
func NewScaler(width, height int, quality config.ScalingQuality) *Scaler {
	return &Scaler{
		quality: quality,
		out: &OutputFrame{
			Width:  width,
			Height: height,
			Pix:    make([]byte, width*height*4),
		},
	}
}

// FitRect computes the centered destination rectangle for an aspect
// preserving fit of srcW x srcH into dstW x dstH. The fuller axis fills
// the target exactly; the other is derived with rounding, so a source
// whose aspect matches the target within half a pixel fills it
// completely.
func FitRect(srcW, srcH, dstW, dstH int) image.Rectangle {
	if srcW <= 0 || srcH <= 0 || dstW <= 0 || dstH <= 0 {
		return image.Rectangle{}
	}
	w := dstW
	h := (dstW*srcH + srcW/2) / srcW
	if h > dstH {
		h = dstH
		w = (dstH*srcW + srcH/2) / srcH
	}
	x := (dstW - w) / 2
	y := (dstH - h) / 2
	return image.Rect(x, y, x+w, y+h)
}

// Scale fits src into the output frame and returns it. A source that
// already matches the output size is copied through untouched. The
// returned frame is valid until the next Scale call.
func (s *Scaler) Scale(src *capture.RawFrame) *OutputFrame {
	out := s.out
	if src.Width == out.Width && src.Height == out.Height {
		copy(out.Pix, src.Pix)
		return out
	}

	clearBlack(out.Pix)
	fit := FitRect(src.Width, src.Height, out.Width, out.Height)
	if fit.Empty() {
		return out
	}

	// Both buffers are BGRA; the kernels interpolate each channel
	// independently, so wrapping them as RGBA is harmless.
	srcImg := &image.RGBA{
		Pix:    src.Pix,
		Stride: src.RowBytes(),
		Rect:   image.Rect(0, 0, src.Width, src.Height),
	}
	dstImg := &image.RGBA{
		Pix:    out.Pix,
		Stride: out.Width * 4,
		Rect:   image.Rect(0, 0, out.Width, out.Height),
	}

	kernel := draw.Interpolator(draw.NearestNeighbor)
	if s.quality == config.QualityHigh {
		kernel = draw.CatmullRom
	}
	kernel.Scale(dstImg, fit, srcImg, srcImg.Rect, draw.Src, nil)
	return out
}

// Output returns the current output frame without scaling anything.
func (s *Scaler) Output() *OutputFrame {
	return s.out
}

// clearBlack fills a BGRA buffer with opaque black.
func clearBlack(pix []byte) {
	for i := 0; i < len(pix); i += 4 {
		pix[i] = 0
		pix[i+1] = 0
		pix[i+2] = 0
		pix[i+3] = 255
	}
}
