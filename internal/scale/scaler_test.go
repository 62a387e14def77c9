package scale

import (
	"image"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alphonsez1/ARSmoothDesk/internal/capture"
	"github.com/alphonsez1/ARSmoothDesk/internal/config"
)

func filledFrame(w, h int, b, g, r byte) *capture.RawFrame {
	f := capture.NewRawFrame(w, h)
	for i := 0; i < len(f.Pix); i += 4 {
		f.Pix[i] = b
		f.Pix[i+1] = g
		f.Pix[i+2] = r
		f.Pix[i+3] = 255
	}
	return f
}

func outPixel(o *OutputFrame, x, y int) [4]byte {
	i := (y*o.Width + x) * 4
	return [4]byte{o.Pix[i], o.Pix[i+1], o.Pix[i+2], o.Pix[i+3]}
}

func TestFitRectNearMatchingAspectFillsTarget(t *testing.T) {
	// 1366x768 differs from 16:9 by under half a pixel; the fit must
	// fill the target completely with no letterbox band.
	fit := FitRect(1920, 1080, 1366, 768)
	assert.Equal(t, image.Rect(0, 0, 1366, 768), fit)
}

func TestFitRectSquareTargetLetterboxes(t *testing.T) {
	// Landscape source into a square target: width fills, height is
	// derived, leaving 175px bands on the short axis.
	fit := FitRect(1920, 1080, 800, 800)
	assert.Equal(t, image.Rect(0, 175, 800, 625), fit)
}

func TestFitRectPortraitSource(t *testing.T) {
	fit := FitRect(1080, 1920, 800, 800)
	assert.Equal(t, image.Rect(175, 0, 625, 800), fit)
}

func TestFitRectDegenerateInputs(t *testing.T) {
	assert.True(t, FitRect(0, 1080, 800, 800).Empty())
	assert.True(t, FitRect(1920, 0, 800, 800).Empty())
	assert.True(t, FitRect(1920, 1080, 0, 800).Empty())
}

func TestScaleLetterboxMarginsAreBlack(t *testing.T) {
	s := NewScaler(800, 800, config.QualityFast)
	src := filledFrame(1920, 1080, 255, 255, 255)

	out := s.Scale(src)
	require.Equal(t, 800, out.Width)
	require.Equal(t, 800, out.Height)

	// Top and bottom bands cleared to opaque black.
	assert.Equal(t, [4]byte{0, 0, 0, 255}, outPixel(out, 400, 0))
	assert.Equal(t, [4]byte{0, 0, 0, 255}, outPixel(out, 400, 174))
	assert.Equal(t, [4]byte{0, 0, 0, 255}, outPixel(out, 400, 625))
	assert.Equal(t, [4]byte{0, 0, 0, 255}, outPixel(out, 400, 799))

	// Content area carries the source.
	assert.Equal(t, [4]byte{255, 255, 255, 255}, outPixel(out, 400, 175))
	assert.Equal(t, [4]byte{255, 255, 255, 255}, outPixel(out, 400, 400))
	assert.Equal(t, [4]byte{255, 255, 255, 255}, outPixel(out, 0, 624))
}

func TestScaleMatchingSizeIsPassthrough(t *testing.T) {
	s := NewScaler(64, 48, config.QualityHigh)
	src := filledFrame(64, 48, 11, 22, 33)
	// Non-uniform marker so a resample would smear it.
	src.Pix[0], src.Pix[1], src.Pix[2] = 200, 100, 50

	out := s.Scale(src)
	assert.Equal(t, src.Pix, out.Pix)
}

func TestScaleIsIdempotentForScaledContent(t *testing.T) {
	s := NewScaler(100, 100, config.QualityFast)
	src := filledFrame(200, 100, 80, 90, 100)

	first := s.Scale(src)
	snapshot := append([]byte(nil), first.Pix...)

	// Feeding the already-fitted output back through a same-size
	// scaler must not change it.
	s2 := NewScaler(100, 100, config.QualityFast)
	roundTrip := s2.Scale(&capture.RawFrame{Width: 100, Height: 100, Pix: snapshot})
	assert.Equal(t, snapshot, roundTrip.Pix)
}

func TestScaleReusesOutputBuffer(t *testing.T) {
	s := NewScaler(32, 32, config.QualityFast)
	src := filledFrame(64, 64, 1, 2, 3)

	a := s.Scale(src)
	b := s.Scale(src)
	assert.Same(t, a, b)
	assert.Same(t, &a.Pix[0], &b.Pix[0])
}

func TestScaleHighQualityProducesContent(t *testing.T) {
	s := NewScaler(100, 100, config.QualityHigh)
	src := filledFrame(400, 200, 0, 0, 255)

	out := s.Scale(src)
	center := outPixel(out, 50, 50)
	assert.InDelta(t, 255, int(center[2]), 1, "content area must carry source red channel")
	assert.Equal(t, [4]byte{0, 0, 0, 255}, outPixel(out, 50, 0), "margin stays black")
}
