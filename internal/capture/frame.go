package capture

// RawFrame is a CPU-side desktop frame in 32-bit BGRA, tightly packed
// row by row. The buffer is reused across captures and only ever grows.
type RawFrame struct {
	Width  int
	Height int
	Pix    []byte
}

// NewRawFrame allocates a frame for the given dimensions.
func NewRawFrame(width, height int) *RawFrame {
	f := &RawFrame{}
	f.SetSize(width, height)
	return f
}

// RowBytes returns the packed byte length of one row.
func (f *RawFrame) RowBytes() int {
	return f.Width * 4
}

// SetSize sets the frame dimensions, reallocating the pixel buffer only
// when it is too small for the new size. Contents are undefined after a
// resize to different dimensions.
func (f *RawFrame) SetSize(width, height int) {
	if width < 0 {
		width = 0
	}
	if height < 0 {
		height = 0
	}
	f.Width = width
	f.Height = height
	need := width * height * 4
	if cap(f.Pix) < need {
		f.Pix = make([]byte, need)
		return
	}
	f.Pix = f.Pix[:need]
}

// PointerShapeKind identifies the encoding of a pointer shape buffer.
// Values match the hardware duplication shape types.
type PointerShapeKind uint32

const (
	ShapeMonochrome  PointerShapeKind = 1
	ShapeColor       PointerShapeKind = 2
	ShapeMaskedColor PointerShapeKind = 4
)

// PointerState carries the latest pointer position and shape alongside
// a captured frame. Shape data arrives only when the shape actually
// changes, so the previous shape must be retained between frames.
type PointerState struct {
	Visible bool
	X, Y    int

	Kind   PointerShapeKind
	Width  int
	Height int
	Stride int // bytes per row of Shape
	Shape  []byte
}
