package capture

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRawFrameSetSizeGrowsButNeverShrinksBuffer(t *testing.T) {
	f := NewRawFrame(4, 4)
	assert.Equal(t, 4*4*4, len(f.Pix))

	grown := cap(f.Pix)
	f.SetSize(8, 8)
	assert.Equal(t, 8*8*4, len(f.Pix))
	assert.GreaterOrEqual(t, cap(f.Pix), grown)

	// Shrinking dimensions keeps the larger backing array.
	big := cap(f.Pix)
	f.SetSize(2, 2)
	assert.Equal(t, 2*2*4, len(f.Pix))
	assert.Equal(t, big, cap(f.Pix))
}

func TestRawFrameSetSizeReusesBufferForSameSize(t *testing.T) {
	f := NewRawFrame(16, 9)
	f.Pix[0] = 42
	before := &f.Pix[0]

	f.SetSize(16, 9)
	assert.Same(t, before, &f.Pix[0])
	assert.Equal(t, byte(42), f.Pix[0])
}

func TestRawFrameRowBytes(t *testing.T) {
	f := NewRawFrame(1920, 1080)
	assert.Equal(t, 1920*4, f.RowBytes())
}

func TestRawFrameNegativeDimensions(t *testing.T) {
	f := NewRawFrame(-3, -7)
	assert.Equal(t, 0, f.Width)
	assert.Equal(t, 0, f.Height)
	assert.Equal(t, 0, len(f.Pix))
}
