//go:build windows

package capture

import (
	"fmt"
	"time"
	"unsafe"

	"golang.org/x/sys/windows"

	"github.com/alphonsez1/ARSmoothDesk/internal/logger"
)

// AcquireStatus classifies the result of one AcquireFrame call.
type AcquireStatus int

const (
	AcquireOK AcquireStatus = iota
	AcquireTimeout
	AcquireAccessLost
	AcquireFatal
)

// AcquireResult is the tagged outcome of AcquireFrame.
type AcquireResult struct {
	Status AcquireStatus
	Err    error
}

// Session is a hardware desktop duplication capture session for one
// display output. Not safe for concurrent use.
type Session struct {
	device      uintptr
	context     uintptr
	duplication uintptr
	staging     uintptr

	selector int
	output   int
	name     string
	width    int
	height   int

	acquired bool
	resource uintptr // IDXGIResource of the in-flight frame

	pointer  PointerState
	shapeBuf []byte
}

// OpenSession binds desktop duplication to the display named by
// selector (negative counts from the last display) and prepares a CPU
// staging texture. Errors are fatal for the duplication path; callers
// fall back to block-copy capture.
func OpenSession(selector int) (*Session, error) {
	log := logger.WithComponent("dxgi")

	device, context, err := d3d11CreateDevice()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNoAdapter, err)
	}

	s := &Session{device: device, context: context, selector: selector}
	if err := s.bindOutput(); err != nil {
		s.Close()
		return nil, err
	}
	if err := s.createStaging(); err != nil {
		s.Close()
		return nil, fmt.Errorf("staging texture: %w", err)
	}

	log.Info().
		Int("display", s.output).
		Str("output", s.name).
		Int("width", s.width).
		Int("height", s.height).
		Msg("Desktop duplication session opened")
	return s, nil
}

// bindOutput walks device -> adapter -> output and duplicates the
// selected output.
func (s *Session) bindOutput() error {
	dxgiDevice, err := comQueryInterface(s.device, &iidIDXGIDevice)
	if err != nil {
		return fmt.Errorf("%w: query IDXGIDevice: %v", ErrNoAdapter, err)
	}
	defer comRelease(dxgiDevice)

	var adapter uintptr
	if _, err := comCall(dxgiDevice, vtblDXGIDeviceGetAdapter,
		uintptr(unsafe.Pointer(&adapter))); err != nil {
		return fmt.Errorf("%w: get adapter: %v", ErrNoAdapter, err)
	}
	defer comRelease(adapter)

	count := countOutputs(adapter)
	if count == 0 {
		return fmt.Errorf("%w: adapter has no outputs", ErrOutputUnavailable)
	}
	s.output = ResolveDisplayIndex(s.selector, count)

	var out uintptr
	if _, err := comCall(adapter, vtblDXGIAdapterEnumOutputs,
		uintptr(s.output), uintptr(unsafe.Pointer(&out))); err != nil {
		return fmt.Errorf("%w: enum output %d: %v", ErrOutputUnavailable, s.output, err)
	}
	defer comRelease(out)

	var desc dxgiOutputDesc
	if _, err := comCall(out, vtblDXGIOutputGetDesc,
		uintptr(unsafe.Pointer(&desc))); err == nil {
		s.name = windows.UTF16ToString(desc.DeviceName[:])
	}

	out1, err := comQueryInterface(out, &iidIDXGIOutput1)
	if err != nil {
		return fmt.Errorf("%w: IDXGIOutput1: %v", ErrUnsupported, err)
	}
	defer comRelease(out1)

	hr, err := comCall(out1, vtblDXGIOutput1Duplicate,
		s.device, uintptr(unsafe.Pointer(&s.duplication)))
	if err != nil {
		switch uint32(hr) {
		case hrDXGINotAvailable, hrAccessDenied:
			return fmt.Errorf("%w: %v", ErrDuplicationBusy, err)
		case hrDXGIUnsupported, hrNoInterface:
			return fmt.Errorf("%w: %v", ErrUnsupported, err)
		}
		return fmt.Errorf("%w: duplicate output: %v", ErrOutputUnavailable, err)
	}

	var duplDesc dxgiOutDuplDesc
	if _, err := comCall(s.duplication, vtblDuplGetDesc,
		uintptr(unsafe.Pointer(&duplDesc))); err != nil {
		return fmt.Errorf("duplication desc: %w", err)
	}
	s.width = int(duplDesc.ModeDesc.Width)
	s.height = int(duplDesc.ModeDesc.Height)
	return nil
}

// countOutputs enumerates adapter outputs until DXGI reports not found.
func countOutputs(adapter uintptr) int {
	n := 0
	for {
		var out uintptr
		hr, _ := comCall(adapter, vtblDXGIAdapterEnumOutputs,
			uintptr(n), uintptr(unsafe.Pointer(&out)))
		if uint32(hr) == hrDXGINotFound || out == 0 {
			return n
		}
		comRelease(out)
		n++
	}
}

// createStaging allocates the CPU-readable texture frames are copied
// through.
func (s *Session) createStaging() error {
	desc := d3d11Texture2DDesc{
		Width:          uint32(s.width),
		Height:         uint32(s.height),
		MipLevels:      1,
		ArraySize:      1,
		Format:         dxgiFormatB8G8R8A8Unorm,
		SampleDesc:     dxgiSampleDesc{Count: 1},
		Usage:          d3d11UsageStaging,
		CPUAccessFlags: d3d11CPUAccessRead,
	}
	_, err := comCall(s.device, vtblD3D11CreateTexture2D,
		uintptr(unsafe.Pointer(&desc)), 0, uintptr(unsafe.Pointer(&s.staging)))
	return err
}

// Bounds returns the duplicated desktop dimensions.
func (s *Session) Bounds() (int, int) {
	return s.width, s.height
}

// Name identifies the capture backend.
func (s *Session) Name() string {
	return "dxgi"
}

// Display returns the resolved output index this session duplicates.
func (s *Session) Display() int {
	return s.output
}

// AcquireFrame waits up to timeout for the next changed desktop frame
// and classifies the result. On AcquireOK the frame stays held until
// ReleaseFrame; pointer position and shape are refreshed as a side
// effect. On AcquireAccessLost the session is no longer usable and
// must be reopened.
func (s *Session) AcquireFrame(timeout time.Duration) AcquireResult {
	if s.acquired {
		// Guard against a missed release from the previous cycle.
		s.ReleaseFrame()
	}

	var info dxgiOutDuplFrameInfo
	var resource uintptr
	hr, err := comCall(s.duplication, vtblDuplAcquireFrame,
		uintptr(timeout.Milliseconds()),
		uintptr(unsafe.Pointer(&info)),
		uintptr(unsafe.Pointer(&resource)))
	if err != nil {
		switch uint32(hr) {
		case hrDXGIWaitTimeout:
			return AcquireResult{Status: AcquireTimeout}
		case hrDXGIAccessLost, hrDXGISessionDisc:
			return AcquireResult{Status: AcquireAccessLost, Err: fmt.Errorf("%w: %v", ErrSourceLost, err)}
		case hrDXGIDeviceRemoved, hrDXGIDeviceReset:
			return AcquireResult{Status: AcquireAccessLost, Err: fmt.Errorf("%w: device removed: %v", ErrSourceLost, err)}
		}
		return AcquireResult{Status: AcquireFatal, Err: fmt.Errorf("acquire frame: %w", err)}
	}

	s.acquired = true
	s.resource = resource
	s.updatePointer(&info)
	return AcquireResult{Status: AcquireOK}
}

// updatePointer folds the per-frame pointer metadata into the retained
// pointer state. Shape bytes only arrive on change.
func (s *Session) updatePointer(info *dxgiOutDuplFrameInfo) {
	if info.LastMouseUpdateTime != 0 {
		s.pointer.Visible = info.PointerPosition.Visible != 0
		s.pointer.X = int(info.PointerPosition.Position.X)
		s.pointer.Y = int(info.PointerPosition.Position.Y)
	}
	if info.PointerShapeBufferSize == 0 {
		return
	}

	need := int(info.PointerShapeBufferSize)
	if cap(s.shapeBuf) < need {
		s.shapeBuf = make([]byte, need)
	}
	s.shapeBuf = s.shapeBuf[:need]

	var shapeInfo dxgiOutDuplPointerShapeInfo
	var required uint32
	_, err := comCall(s.duplication, vtblDuplGetPointerShape,
		uintptr(need),
		uintptr(unsafe.Pointer(&s.shapeBuf[0])),
		uintptr(unsafe.Pointer(&required)),
		uintptr(unsafe.Pointer(&shapeInfo)))
	if err != nil {
		logger.WithComponent("dxgi").Debug().Err(err).Msg("Pointer shape fetch failed")
		return
	}

	s.pointer.Kind = PointerShapeKind(shapeInfo.Type)
	s.pointer.Width = int(shapeInfo.Width)
	s.pointer.Height = int(shapeInfo.Height)
	s.pointer.Stride = int(shapeInfo.Pitch)
	s.pointer.Shape = s.shapeBuf
	// Monochrome shapes pack AND and XOR masks stacked vertically;
	// the reported height covers both.
	if s.pointer.Kind == ShapeMonochrome {
		s.pointer.Height /= 2
	}
}

// CopyInto copies the held frame through the staging texture into dst,
// row by row, honoring the driver's row pitch.
func (s *Session) CopyInto(dst *RawFrame) error {
	if !s.acquired {
		return fmt.Errorf("no frame held")
	}

	texture, err := comQueryInterface(s.resource, &iidID3D11Texture2D)
	if err != nil {
		return fmt.Errorf("frame texture: %w", err)
	}
	defer comRelease(texture)

	if _, err := comCall(s.context, vtblContextCopyResource, s.staging, texture); err != nil {
		return fmt.Errorf("copy to staging: %w", err)
	}

	var mapped d3d11MappedSubresource
	if _, err := comCall(s.context, vtblContextMap,
		s.staging, 0, 1 /* D3D11_MAP_READ */, 0,
		uintptr(unsafe.Pointer(&mapped))); err != nil {
		return fmt.Errorf("map staging: %w", err)
	}
	defer comCall(s.context, vtblContextUnmap, s.staging, 0)

	dst.SetSize(s.width, s.height)
	srcPitch := int(mapped.RowPitch)
	dstPitch := dst.RowBytes()
	rowBytes := srcPitch
	if dstPitch < rowBytes {
		rowBytes = dstPitch
	}
	src := unsafe.Slice((*byte)(unsafe.Pointer(mapped.PData)), srcPitch*s.height)
	for y := 0; y < s.height; y++ {
		copy(dst.Pix[y*dstPitch:y*dstPitch+rowBytes], src[y*srcPitch:y*srcPitch+rowBytes])
	}
	return nil
}

// ReleaseFrame returns the held frame to the duplication interface.
// Safe to call when no frame is held.
func (s *Session) ReleaseFrame() {
	if !s.acquired {
		return
	}
	comRelease(s.resource)
	s.resource = 0
	comCall(s.duplication, vtblDuplReleaseFrame)
	s.acquired = false
}

// Capture implements Capturer by composing acquire, copy and release.
func (s *Session) Capture(dst *RawFrame, ptr *PointerState, timeout time.Duration) (CaptureOutcome, error) {
	res := s.AcquireFrame(timeout)
	switch res.Status {
	case AcquireTimeout:
		*ptr = s.pointer
		return NoNewFrame, nil
	case AcquireAccessLost:
		return SourceLost, res.Err
	case AcquireFatal:
		return NoNewFrame, res.Err
	}
	defer s.ReleaseFrame()

	if err := s.CopyInto(dst); err != nil {
		return NoNewFrame, err
	}
	*ptr = s.pointer
	return FrameCaptured, nil
}

// Reopen tears the session down and rebuilds it against the same
// display selector. Used after the source is lost.
func (s *Session) Reopen() error {
	selector := s.selector
	s.Close()
	fresh, err := OpenSession(selector)
	if err != nil {
		return err
	}
	*s = *fresh
	return nil
}

// Close releases every COM object the session holds.
func (s *Session) Close() error {
	s.ReleaseFrame()
	comRelease(s.staging)
	comRelease(s.duplication)
	comRelease(s.context)
	comRelease(s.device)
	s.staging, s.duplication, s.context, s.device = 0, 0, 0, 0
	return nil
}
