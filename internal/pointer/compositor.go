// Package pointer overlays a captured pointer shape onto raw desktop
// frames. Decoding covers the three hardware shape encodings: straight
// color, color with a transparency mask, and the two-plane monochrome
// format used by text carets.
package pointer

import (
	"github.com/alphonsez1/ARSmoothDesk/internal/capture"
)

// Composite draws the pointer onto f at its reported position, clipped
// to the frame bounds. It is a no-op when the pointer is hidden, has no
// shape, or the shape buffer is too short for its declared dimensions.
func Composite(f *capture.RawFrame, ps capture.PointerState) {
	if !ps.Visible || len(ps.Shape) == 0 || ps.Width <= 0 || ps.Height <= 0 {
		return
	}

	switch ps.Kind {
	case capture.ShapeColor:
		if ps.Stride < ps.Width*4 || len(ps.Shape) < ps.Stride*ps.Height {
			return
		}
		compositeColor(f, ps, nil)
	case capture.ShapeMaskedColor:
		if ps.Stride < ps.Width*4 || len(ps.Shape) < ps.Stride*ps.Height {
			return
		}
		compositeColor(f, ps, maskBits(ps))
	case capture.ShapeMonochrome:
		if ps.Stride*8 < ps.Width || len(ps.Shape) < 2*ps.Stride*ps.Height {
			return
		}
		compositeMonochrome(f, ps)
	}
}

// maskBits returns the 1bpp transparency mask trailing the color block,
// or nil when the buffer carries color only.
func maskBits(ps capture.PointerState) []byte {
	maskStride := (ps.Width + 7) / 8
	start := ps.Stride * ps.Height
	if len(ps.Shape) < start+maskStride*ps.Height {
		return nil
	}
	return ps.Shape[start : start+maskStride*ps.Height]
}

// compositeColor alpha-blends a BGRA shape over the frame. When mask is
// non-nil, a set mask bit forces the pixel fully transparent.
func compositeColor(f *capture.RawFrame, ps capture.PointerState, mask []byte) {
	maskStride := (ps.Width + 7) / 8
	for sy := 0; sy < ps.Height; sy++ {
		fy := ps.Y + sy
		if fy < 0 || fy >= f.Height {
			continue
		}
		srcRow := ps.Shape[sy*ps.Stride:]
		for sx := 0; sx < ps.Width; sx++ {
			fx := ps.X + sx
			if fx < 0 || fx >= f.Width {
				continue
			}
			a := int(srcRow[sx*4+3])
			if mask != nil && mask[sy*maskStride+sx/8]&(0x80>>(sx%8)) != 0 {
				a = 0
			}
			if a == 0 {
				continue
			}
			di := (fy*f.Width + fx) * 4
			if a == 255 {
				copy(f.Pix[di:di+3], srcRow[sx*4:sx*4+3])
				f.Pix[di+3] = 255
				continue
			}
			inv := 255 - a
			f.Pix[di] = byte((int(srcRow[sx*4])*a + int(f.Pix[di])*inv) / 255)
			f.Pix[di+1] = byte((int(srcRow[sx*4+1])*a + int(f.Pix[di+1])*inv) / 255)
			f.Pix[di+2] = byte((int(srcRow[sx*4+2])*a + int(f.Pix[di+2])*inv) / 255)
			f.Pix[di+3] = 255
		}
	}
}

// compositeMonochrome decodes the stacked AND/XOR bit planes. Bit 7 of
// each mask byte is the leftmost pixel. The and=0,xor=0 case is drawn
// transparent rather than opaque black; reverting that reintroduces a
// block artifact around caret pointers.
func compositeMonochrome(f *capture.RawFrame, ps capture.PointerState) {
	planeSize := ps.Stride * ps.Height
	andPlane := ps.Shape[:planeSize]
	xorPlane := ps.Shape[planeSize : 2*planeSize]

	for sy := 0; sy < ps.Height; sy++ {
		fy := ps.Y + sy
		if fy < 0 || fy >= f.Height {
			continue
		}
		for sx := 0; sx < ps.Width; sx++ {
			fx := ps.X + sx
			if fx < 0 || fx >= f.Width {
				continue
			}
			bit := byte(0x80) >> (sx % 8)
			a := andPlane[sy*ps.Stride+sx/8]&bit != 0
			x := xorPlane[sy*ps.Stride+sx/8]&bit != 0

			di := (fy*f.Width + fx) * 4
			switch {
			case a && x:
				// Inversion effect approximated as 50% white.
				f.Pix[di] = byte((int(f.Pix[di]) + 255) / 2)
				f.Pix[di+1] = byte((int(f.Pix[di+1]) + 255) / 2)
				f.Pix[di+2] = byte((int(f.Pix[di+2]) + 255) / 2)
				f.Pix[di+3] = 255
			case !a && x:
				f.Pix[di] = 255
				f.Pix[di+1] = 255
				f.Pix[di+2] = 255
				f.Pix[di+3] = 255
			}
			// a=1,x=0 and a=0,x=0 both leave the screen pixel as is.
		}
	}
}
