//go:build windows

package capture

import (
	"fmt"
	"time"
	"unsafe"

	"golang.org/x/sys/windows"

	"github.com/alphonsez1/ARSmoothDesk/internal/config"
	"github.com/alphonsez1/ARSmoothDesk/internal/logger"
)

var (
	modGdi32                 = windows.NewLazySystemDLL("gdi32.dll")
	procCreateDCW            = modGdi32.NewProc("CreateDCW")
	procCreateCompatibleDC   = modGdi32.NewProc("CreateCompatibleDC")
	procCreateCompatibleBmp  = modGdi32.NewProc("CreateCompatibleBitmap")
	procSelectObject         = modGdi32.NewProc("SelectObject")
	procBitBlt               = modGdi32.NewProc("BitBlt")
	procGetDIBits            = modGdi32.NewProc("GetDIBits")
	procDeleteObject         = modGdi32.NewProc("DeleteObject")
	procDeleteDC             = modGdi32.NewProc("DeleteDC")
	procGetCursorInfo        = modUser32.NewProc("GetCursorInfo")
	procGetIconInfo          = modUser32.NewProc("GetIconInfo")
	procDrawIconEx           = modUser32.NewProc("DrawIconEx")
)

const (
	rasterSrcCopy    = 0x00CC0020
	rasterCaptureBlt = 0x40000000

	cursorShowing = 0x0001
	diNormal      = 0x0003

	biRGB = 0
)

type bitmapInfoHeader struct {
	BiSize          uint32
	BiWidth         int32
	BiHeight        int32
	BiPlanes        uint16
	BiBitCount      uint16
	BiCompression   uint32
	BiSizeImage     uint32
	BiXPelsPerMeter int32
	BiYPelsPerMeter int32
	BiClrUsed       uint32
	BiClrImportant  uint32
}

type cursorInfo struct {
	CbSize      uint32
	Flags       uint32
	HCursor     uintptr
	PtScreenPos winPoint
}

type iconInfo struct {
	FIcon    int32
	XHotspot uint32
	YHotspot uint32
	HbmMask  uintptr
	HbmColor uintptr
}

// GDICapturer is the block-copy fallback used when desktop duplication
// cannot be opened. It blits the screen through a persistent memory DC
// and bakes the cursor into the pixels itself, so the pointer state it
// reports carries no shape. Not safe for concurrent use.
type GDICapturer struct {
	originX int
	originY int
	width   int
	height  int

	screenDC  uintptr
	memDC     uintptr
	bitmap    uintptr
	oldBitmap uintptr
}

// NewGDICapturer opens a block-copy capturer for the selected display,
// optionally restricted to a sub-region of it.
func NewGDICapturer(selector int, region config.Region) (*GDICapturer, error) {
	displays, err := ListDisplays()
	if err != nil {
		return nil, fmt.Errorf("enumerate displays: %w", err)
	}
	if len(displays) == 0 {
		return nil, fmt.Errorf("%w: no displays", ErrOutputUnavailable)
	}
	d := displays[ResolveDisplayIndex(selector, len(displays))]

	g := &GDICapturer{
		originX: d.X,
		originY: d.Y,
		width:   d.Width,
		height:  d.Height,
	}
	if !region.IsEmpty() {
		g.originX += region.X
		g.originY += region.Y
		g.width = region.Width
		g.height = region.Height
	}

	display, _ := windows.UTF16PtrFromString("DISPLAY")
	g.screenDC, _, _ = procCreateDCW.Call(uintptr(unsafe.Pointer(display)), 0, 0, 0)
	if g.screenDC == 0 {
		return nil, fmt.Errorf("CreateDCW failed")
	}
	g.memDC, _, _ = procCreateCompatibleDC.Call(g.screenDC)
	if g.memDC == 0 {
		g.Close()
		return nil, fmt.Errorf("CreateCompatibleDC failed")
	}
	g.bitmap, _, _ = procCreateCompatibleBmp.Call(g.screenDC, uintptr(g.width), uintptr(g.height))
	if g.bitmap == 0 {
		g.Close()
		return nil, fmt.Errorf("CreateCompatibleBitmap failed")
	}
	g.oldBitmap, _, _ = procSelectObject.Call(g.memDC, g.bitmap)

	logger.WithComponent("gdi").Info().
		Int("display", d.Index).
		Int("width", g.width).
		Int("height", g.height).
		Msg("Block-copy capture opened")
	return g, nil
}

// Bounds returns the captured dimensions.
func (g *GDICapturer) Bounds() (int, int) {
	return g.width, g.height
}

// Name identifies the capture backend.
func (g *GDICapturer) Name() string {
	return "gdi"
}

// Capture blits the screen into dst. The timeout is ignored; a block
// copy always succeeds or fails immediately, and every call produces a
// fresh frame. The cursor is drawn into the frame before readback, so
// ptr is reported hidden.
func (g *GDICapturer) Capture(dst *RawFrame, ptr *PointerState, _ time.Duration) (CaptureOutcome, error) {
	ret, _, _ := procBitBlt.Call(
		g.memDC, 0, 0, uintptr(g.width), uintptr(g.height),
		g.screenDC, uintptr(g.originX), uintptr(g.originY),
		rasterSrcCopy|rasterCaptureBlt)
	if ret == 0 {
		return NoNewFrame, fmt.Errorf("BitBlt failed")
	}

	g.drawCursor()

	dst.SetSize(g.width, g.height)
	hdr := bitmapInfoHeader{
		BiSize:        uint32(unsafe.Sizeof(bitmapInfoHeader{})),
		BiWidth:       int32(g.width),
		BiHeight:      -int32(g.height), // top-down rows
		BiPlanes:      1,
		BiBitCount:    32,
		BiCompression: biRGB,
	}
	ret, _, _ = procGetDIBits.Call(
		g.memDC, g.bitmap, 0, uintptr(g.height),
		uintptr(unsafe.Pointer(&dst.Pix[0])),
		uintptr(unsafe.Pointer(&hdr)), 0 /* DIB_RGB_COLORS */)
	if ret == 0 {
		return NoNewFrame, fmt.Errorf("GetDIBits failed")
	}

	*ptr = PointerState{Visible: false}
	return FrameCaptured, nil
}

// drawCursor polls the current cursor and paints it into the memory DC
// at its on-screen position.
func (g *GDICapturer) drawCursor() {
	var ci cursorInfo
	ci.CbSize = uint32(unsafe.Sizeof(ci))
	ret, _, _ := procGetCursorInfo.Call(uintptr(unsafe.Pointer(&ci)))
	if ret == 0 || ci.Flags&cursorShowing == 0 {
		return
	}

	var ii iconInfo
	ret, _, _ = procGetIconInfo.Call(ci.HCursor, uintptr(unsafe.Pointer(&ii)))
	if ret == 0 {
		return
	}
	// GetIconInfo hands back bitmap copies the caller must free.
	if ii.HbmMask != 0 {
		procDeleteObject.Call(ii.HbmMask)
	}
	if ii.HbmColor != 0 {
		procDeleteObject.Call(ii.HbmColor)
	}

	x := int(ci.PtScreenPos.X) - int(ii.XHotspot) - g.originX
	y := int(ci.PtScreenPos.Y) - int(ii.YHotspot) - g.originY
	procDrawIconEx.Call(g.memDC, uintptr(x), uintptr(y), ci.HCursor, 0, 0, 0, 0, diNormal)
}

// Close releases the GDI handles.
func (g *GDICapturer) Close() error {
	if g.oldBitmap != 0 {
		procSelectObject.Call(g.memDC, g.oldBitmap)
		g.oldBitmap = 0
	}
	if g.bitmap != 0 {
		procDeleteObject.Call(g.bitmap)
		g.bitmap = 0
	}
	if g.memDC != 0 {
		procDeleteDC.Call(g.memDC)
		g.memDC = 0
	}
	if g.screenDC != 0 {
		procDeleteDC.Call(g.screenDC)
		g.screenDC = 0
	}
	return nil
}
