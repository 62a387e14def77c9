//go:build windows

package capture

import (
	"fmt"
	"syscall"
	"unsafe"

	"golang.org/x/sys/windows"
)

// Minimal COM vtable plumbing for the DXGI desktop duplication path.
// Pure syscall, no cgo.

type comGUID struct {
	Data1 uint32
	Data2 uint16
	Data3 uint16
	Data4 [8]byte
}

var (
	iidIDXGIDevice = comGUID{0x54ec77fa, 0x1377, 0x44e6,
		[8]byte{0x8c, 0x32, 0x88, 0xfd, 0x5f, 0x44, 0xc8, 0x4c}}
	iidIDXGIOutput1 = comGUID{0x00cddea8, 0x939b, 0x4b83,
		[8]byte{0xa3, 0x40, 0xa6, 0x85, 0x22, 0x66, 0x66, 0xcc}}
	iidID3D11Texture2D = comGUID{0x6f15aaf2, 0xd208, 0x4e89,
		[8]byte{0x9a, 0xb4, 0x48, 0x95, 0x35, 0xd3, 0x4f, 0x9c}}
)

// IUnknown
const (
	vtblQueryInterface = 0
	vtblRelease        = 2
)

// Interface-specific vtable slots. Offsets include the inherited
// IUnknown and IDXGIObject methods.
const (
	vtblDXGIDeviceGetAdapter   = 7
	vtblDXGIAdapterEnumOutputs = 7
	vtblDXGIOutputGetDesc      = 7
	vtblDXGIOutput1Duplicate   = 22

	vtblDuplGetDesc         = 7
	vtblDuplAcquireFrame    = 8
	vtblDuplGetPointerShape = 11
	vtblDuplReleaseFrame    = 14

	vtblD3D11CreateTexture2D = 5

	vtblContextMap          = 14
	vtblContextUnmap        = 15
	vtblContextCopyResource = 47
)

// DXGI/D3D11 constants.
const (
	dxgiFormatB8G8R8A8Unorm = 87

	d3dDriverTypeHardware  = 1
	d3dFeatureLevel11_0    = 0xb000
	d3d11SDKVersion        = 7
	d3d11CreateBGRASupport = 0x20

	d3d11UsageStaging  = 3
	d3d11CPUAccessRead = 0x20000
)

// HRESULTs the duplication loop classifies.
const (
	hrDXGIWaitTimeout     = 0x887A0027
	hrDXGIAccessLost      = 0x887A0026
	hrDXGIDeviceRemoved   = 0x887A0005
	hrDXGIDeviceReset     = 0x887A0007
	hrDXGINotFound        = 0x887A0002
	hrDXGIUnsupported     = 0x887A0004
	hrDXGINotAvailable    = 0x887A0022
	hrDXGISessionDisc     = 0x887A0028
	hrAccessDenied        = 0x80070005
	hrNoInterface         = 0x80004002
)

var (
	modD3D11              = windows.NewLazySystemDLL("d3d11.dll")
	procD3D11CreateDevice = modD3D11.NewProc("D3D11CreateDevice")
)

// comCall invokes a method on a COM object through its vtable. The
// returned uintptr is the raw HRESULT; a negative HRESULT also yields
// a non-nil error.
func comCall(obj uintptr, vtableIdx int, args ...uintptr) (uintptr, error) {
	fnPtr := comVtblFn(obj, vtableIdx)
	allArgs := append(append(make([]uintptr, 0, 1+len(args)), obj), args...)
	ret, _, _ := syscall.SyscallN(fnPtr, allArgs...)
	if int32(ret) < 0 {
		return ret, fmt.Errorf("COM vtable[%d] HRESULT 0x%08X", vtableIdx, uint32(ret))
	}
	return ret, nil
}

// comVtblFn resolves a function pointer out of an object's vtable.
func comVtblFn(obj uintptr, vtableIdx int) uintptr {
	vtablePtr := *(*uintptr)(unsafe.Pointer(obj))
	return *(*uintptr)(unsafe.Pointer(vtablePtr + uintptr(vtableIdx)*unsafe.Sizeof(uintptr(0))))
}

// comRelease drops a reference, ignoring nil objects.
func comRelease(obj uintptr) {
	if obj == 0 {
		return
	}
	fnPtr := comVtblFn(obj, vtblRelease)
	syscall.SyscallN(fnPtr, obj)
}

// comQueryInterface asks obj for another interface.
func comQueryInterface(obj uintptr, iid *comGUID) (uintptr, error) {
	var out uintptr
	_, err := comCall(obj, vtblQueryInterface,
		uintptr(unsafe.Pointer(iid)), uintptr(unsafe.Pointer(&out)))
	if err != nil {
		return 0, err
	}
	return out, nil
}

type winRect struct {
	Left, Top, Right, Bottom int32
}

type winPoint struct {
	X, Y int32
}

type dxgiRational struct {
	Numerator   uint32
	Denominator uint32
}

type dxgiModeDesc struct {
	Width            uint32
	Height           uint32
	RefreshRate      dxgiRational
	Format           uint32
	ScanlineOrdering uint32
	Scaling          uint32
}

type dxgiOutDuplDesc struct {
	ModeDesc                   dxgiModeDesc
	Rotation                   uint32
	DesktopImageInSystemMemory int32
}

type dxgiOutputDesc struct {
	DeviceName         [32]uint16
	DesktopCoordinates winRect
	AttachedToDesktop  int32
	Rotation           uint32
	Monitor            uintptr
}

type dxgiOutDuplPointerPosition struct {
	Position winPoint
	Visible  int32
}

type dxgiOutDuplFrameInfo struct {
	LastPresentTime           int64
	LastMouseUpdateTime       int64
	AccumulatedFrames         uint32
	RectsCoalesced            int32
	ProtectedContentMaskedOut int32
	PointerPosition           dxgiOutDuplPointerPosition
	TotalMetadataBufferSize   uint32
	PointerShapeBufferSize    uint32
}

type dxgiOutDuplPointerShapeInfo struct {
	Type    uint32
	Width   uint32
	Height  uint32
	Pitch   uint32
	HotSpot winPoint
}

type dxgiSampleDesc struct {
	Count   uint32
	Quality uint32
}

type d3d11Texture2DDesc struct {
	Width          uint32
	Height         uint32
	MipLevels      uint32
	ArraySize      uint32
	Format         uint32
	SampleDesc     dxgiSampleDesc
	Usage          uint32
	BindFlags      uint32
	CPUAccessFlags uint32
	MiscFlags      uint32
}

type d3d11MappedSubresource struct {
	PData      uintptr
	RowPitch   uint32
	DepthPitch uint32
}

// d3d11CreateDevice creates a hardware D3D11 device with BGRA support.
func d3d11CreateDevice() (device, context uintptr, err error) {
	featureLevels := []uint32{d3dFeatureLevel11_0}
	var gotLevel uint32
	hr, _, _ := procD3D11CreateDevice.Call(
		0, // default adapter
		d3dDriverTypeHardware,
		0, // no software module
		d3d11CreateBGRASupport,
		uintptr(unsafe.Pointer(&featureLevels[0])),
		uintptr(len(featureLevels)),
		d3d11SDKVersion,
		uintptr(unsafe.Pointer(&device)),
		uintptr(unsafe.Pointer(&gotLevel)),
		uintptr(unsafe.Pointer(&context)),
	)
	if int32(hr) < 0 {
		return 0, 0, fmt.Errorf("D3D11CreateDevice HRESULT 0x%08X", uint32(hr))
	}
	return device, context, nil
}
