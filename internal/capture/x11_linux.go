//go:build linux

package capture

import (
	"fmt"
	"time"

	"github.com/BurntSushi/xgb"
	"github.com/BurntSushi/xgb/xfixes"
	"github.com/BurntSushi/xgb/xproto"

	"github.com/alphonsez1/ARSmoothDesk/internal/config"
	"github.com/alphonsez1/ARSmoothDesk/internal/logger"
)

// X11Capturer is the block-copy capture path for X11/XWayland. Every
// call reads the full region out of the root window; the cursor is
// polled through XFIXES and reported as a color pointer shape.
type X11Capturer struct {
	conn   *xgb.Conn
	root   xproto.Window
	screen *xproto.ScreenInfo

	originX int
	originY int
	width   int
	height  int

	xfixesOK bool
	shapeBuf []byte
}

// NewX11Capturer opens an X connection and binds capture to the
// selected display, optionally restricted to a sub-region of it.
func NewX11Capturer(selector int, region config.Region) (*X11Capturer, error) {
	conn, err := xgb.NewConn()
	if err != nil {
		return nil, fmt.Errorf("failed to connect to X server: %w", err)
	}

	setup := xproto.Setup(conn)
	screen := setup.DefaultScreen(conn)

	c := &X11Capturer{
		conn:   conn,
		root:   screen.Root,
		screen: screen,
	}

	log := logger.WithComponent("x11")
	displays, err := listDisplays(conn, screen)
	if err != nil || len(displays) == 0 {
		conn.Close()
		return nil, fmt.Errorf("%w: no displays", ErrOutputUnavailable)
	}
	d := displays[ResolveDisplayIndex(selector, len(displays))]
	c.originX, c.originY = d.X, d.Y
	c.width, c.height = d.Width, d.Height
	if !region.IsEmpty() {
		c.originX += region.X
		c.originY += region.Y
		c.width = region.Width
		c.height = region.Height
	}

	if err := xfixes.Init(conn); err != nil {
		log.Warn().Err(err).Msg("XFIXES not available, frames will carry no cursor")
	} else if _, err := xfixes.QueryVersion(conn, 4, 0).Reply(); err != nil {
		log.Warn().Err(err).Msg("XFIXES version query failed, frames will carry no cursor")
	} else {
		c.xfixesOK = true
	}

	log.Info().
		Int("display", d.Index).
		Int("width", c.width).
		Int("height", c.height).
		Bool("cursor", c.xfixesOK).
		Msg("X11 capture opened")
	return c, nil
}

// Bounds returns the captured dimensions.
func (c *X11Capturer) Bounds() (int, int) {
	return c.width, c.height
}

// Name identifies the capture backend.
func (c *X11Capturer) Name() string {
	return "x11"
}

// Capture reads the region out of the root window into dst. The
// timeout is ignored; GetImage blocks for exactly one round trip and
// every call produces a fresh frame.
func (c *X11Capturer) Capture(dst *RawFrame, ptr *PointerState, _ time.Duration) (CaptureOutcome, error) {
	reply, err := xproto.GetImage(
		c.conn,
		xproto.ImageFormatZPixmap,
		xproto.Drawable(c.root),
		int16(c.originX), int16(c.originY),
		uint16(c.width), uint16(c.height),
		0xffffffff,
	).Reply()
	if err != nil {
		// A dying X connection is not recoverable on this handle.
		return SourceLost, fmt.Errorf("%w: get image: %v", ErrSourceLost, err)
	}

	dst.SetSize(c.width, c.height)
	n := copy(dst.Pix, reply.Data)
	// ZPixmap at depth 24 is BGRx with an undefined fourth byte.
	for i := 3; i < n; i += 4 {
		dst.Pix[i] = 255
	}

	c.pollCursor(ptr)
	return FrameCaptured, nil
}

// pollCursor fetches the current cursor through XFIXES and exposes it
// as a color pointer shape in region coordinates.
func (c *X11Capturer) pollCursor(ptr *PointerState) {
	if !c.xfixesOK {
		*ptr = PointerState{Visible: false}
		return
	}
	reply, err := xfixes.GetCursorImage(c.conn).Reply()
	if err != nil {
		*ptr = PointerState{Visible: false}
		return
	}

	w, h := int(reply.Width), int(reply.Height)
	need := w * h * 4
	if cap(c.shapeBuf) < need {
		c.shapeBuf = make([]byte, need)
	}
	c.shapeBuf = c.shapeBuf[:need]

	// Cursor pixels arrive as premultiplied ARGB words; the
	// compositor blends straight alpha, so un-premultiply here.
	for i, px := range reply.CursorImage[:w*h] {
		a := byte(px >> 24)
		r := byte(px >> 16)
		g := byte(px >> 8)
		b := byte(px)
		if a != 0 && a != 255 {
			r = byte(int(r) * 255 / int(a))
			g = byte(int(g) * 255 / int(a))
			b = byte(int(b) * 255 / int(a))
		}
		c.shapeBuf[i*4] = b
		c.shapeBuf[i*4+1] = g
		c.shapeBuf[i*4+2] = r
		c.shapeBuf[i*4+3] = a
	}

	*ptr = PointerState{
		Visible: true,
		X:       int(reply.X) - int(reply.Xhot) - c.originX,
		Y:       int(reply.Y) - int(reply.Yhot) - c.originY,
		Kind:    ShapeColor,
		Width:   w,
		Height:  h,
		Stride:  w * 4,
		Shape:   c.shapeBuf,
	}
}

// Close closes the X connection.
func (c *X11Capturer) Close() error {
	c.conn.Close()
	return nil
}
