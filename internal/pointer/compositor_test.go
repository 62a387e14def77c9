package pointer

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/alphonsez1/ARSmoothDesk/internal/capture"
)

// makeFrame builds a frame filled with a single BGRA value.
func makeFrame(w, h int, b, g, r byte) *capture.RawFrame {
	f := capture.NewRawFrame(w, h)
	for i := 0; i < len(f.Pix); i += 4 {
		f.Pix[i] = b
		f.Pix[i+1] = g
		f.Pix[i+2] = r
		f.Pix[i+3] = 255
	}
	return f
}

func pixelAt(f *capture.RawFrame, x, y int) [4]byte {
	i := (y*f.Width + x) * 4
	return [4]byte{f.Pix[i], f.Pix[i+1], f.Pix[i+2], f.Pix[i+3]}
}

func TestCompositeHiddenPointerIsNoOp(t *testing.T) {
	f := makeFrame(8, 8, 10, 20, 30)
	before := append([]byte(nil), f.Pix...)

	Composite(f, capture.PointerState{Visible: false})
	assert.Equal(t, before, f.Pix)
}

func TestCompositeMissingShapeIsNoOp(t *testing.T) {
	f := makeFrame(8, 8, 10, 20, 30)
	before := append([]byte(nil), f.Pix...)

	Composite(f, capture.PointerState{
		Visible: true,
		Kind:    capture.ShapeColor,
		Width:   4, Height: 4, Stride: 16,
	})
	assert.Equal(t, before, f.Pix)
}

func TestCompositeMonochromeDecode(t *testing.T) {
	f := makeFrame(16, 16, 64, 64, 64)

	// 8x2 shape, stride 1: AND plane then XOR plane, per-pixel cases
	// laid out in the top row.
	//   px0: a=1 x=0  hole, screen shows through
	//   px1: a=1 x=1  inversion, drawn as half white
	//   px2: a=0 x=0  transparent
	//   px3: a=0 x=1  opaque white
	and := []byte{0b1100_0000, 0x00}
	xor := []byte{0b0101_0000, 0x00}
	shape := append(append([]byte{}, and...), xor...)

	Composite(f, capture.PointerState{
		Visible: true,
		X:       0, Y: 0,
		Kind:  capture.ShapeMonochrome,
		Width: 8, Height: 2, Stride: 1,
		Shape: shape,
	})

	assert.Equal(t, [4]byte{64, 64, 64, 255}, pixelAt(f, 0, 0), "a=1,x=0 must leave screen pixel")
	assert.Equal(t, [4]byte{159, 159, 159, 255}, pixelAt(f, 1, 0), "a=1,x=1 must blend toward white")
	assert.Equal(t, [4]byte{64, 64, 64, 255}, pixelAt(f, 2, 0), "a=0,x=0 must stay transparent")
	assert.Equal(t, [4]byte{255, 255, 255, 255}, pixelAt(f, 3, 0), "a=0,x=1 must be opaque white")
}

func TestCompositeMonochromeShortBufferLeavesFrameUntouched(t *testing.T) {
	f := makeFrame(16, 16, 5, 6, 7)
	before := append([]byte(nil), f.Pix...)

	// Needs 2*stride*height = 4 bytes, give it 3.
	Composite(f, capture.PointerState{
		Visible: true,
		Kind:    capture.ShapeMonochrome,
		Width:   8, Height: 2, Stride: 1,
		Shape: []byte{0xFF, 0xFF, 0xFF},
	})
	assert.Equal(t, before, f.Pix)
}

func TestCompositeColorBlending(t *testing.T) {
	f := makeFrame(8, 8, 0, 0, 0)

	// 2x1 shape: opaque red pixel, half-transparent white pixel.
	shape := []byte{
		0, 0, 255, 255, // BGRA opaque red
		255, 255, 255, 128,
	}
	Composite(f, capture.PointerState{
		Visible: true,
		X:       2, Y: 3,
		Kind:  capture.ShapeColor,
		Width: 2, Height: 1, Stride: 8,
		Shape: shape,
	})

	assert.Equal(t, [4]byte{0, 0, 255, 255}, pixelAt(f, 2, 3))
	half := pixelAt(f, 3, 3)
	assert.InDelta(t, 128, int(half[0]), 1)
	assert.InDelta(t, 128, int(half[1]), 1)
	assert.InDelta(t, 128, int(half[2]), 1)
	assert.Equal(t, byte(255), half[3])
	// Neighbor untouched.
	assert.Equal(t, [4]byte{0, 0, 0, 255}, pixelAt(f, 4, 3))
}

func TestCompositeColorClipsToFrameBounds(t *testing.T) {
	f := makeFrame(4, 4, 9, 9, 9)
	before := append([]byte(nil), f.Pix...)

	shape := make([]byte, 4*4*4)
	for i := 3; i < len(shape); i += 4 {
		shape[i] = 255
	}

	// Mostly off-screen in every direction; must not panic and must
	// only touch in-bounds pixels.
	for _, pos := range [][2]int{{-3, -3}, {3, 3}, {-10, 2}, {2, -10}, {100, 100}} {
		Composite(f, capture.PointerState{
			Visible: true,
			X:       pos[0], Y: pos[1],
			Kind:  capture.ShapeColor,
			Width: 4, Height: 4, Stride: 16,
			Shape: shape,
		})
	}
	// The fully off-screen draws leave the frame bytes valid.
	assert.Equal(t, len(before), len(f.Pix))
}

func TestCompositeMaskedColorForcesTransparency(t *testing.T) {
	f := makeFrame(8, 8, 1, 2, 3)

	// 2x1 opaque green color block plus a 1bpp mask marking the first
	// pixel transparent.
	shape := []byte{
		0, 255, 0, 255,
		0, 255, 0, 255,
		0b1000_0000, // mask row: bit set => transparent
	}
	Composite(f, capture.PointerState{
		Visible: true,
		X:       0, Y: 0,
		Kind:  capture.ShapeMaskedColor,
		Width: 2, Height: 1, Stride: 8,
		Shape: shape,
	})

	assert.Equal(t, [4]byte{1, 2, 3, 255}, pixelAt(f, 0, 0), "masked pixel must stay screen content")
	assert.Equal(t, [4]byte{0, 255, 0, 255}, pixelAt(f, 1, 0), "unmasked pixel keeps color alpha")
}

func TestCompositeMaskedColorWithoutMaskUsesColorAlpha(t *testing.T) {
	f := makeFrame(8, 8, 0, 0, 0)

	// Color block only, no trailing mask bits.
	shape := []byte{255, 0, 0, 255, 0, 0, 0, 0}
	Composite(f, capture.PointerState{
		Visible: true,
		X:       1, Y: 1,
		Kind:  capture.ShapeMaskedColor,
		Width: 2, Height: 1, Stride: 8,
		Shape: shape,
	})

	assert.Equal(t, [4]byte{255, 0, 0, 255}, pixelAt(f, 1, 1))
	assert.Equal(t, [4]byte{0, 0, 0, 255}, pixelAt(f, 2, 1), "zero-alpha pixel leaves screen content")
}
