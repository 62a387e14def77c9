//go:build windows

package capture

import (
	"fmt"
	"syscall"
	"unsafe"

	"golang.org/x/sys/windows"
)

var (
	modUser32               = windows.NewLazySystemDLL("user32.dll")
	procEnumDisplayMonitors = modUser32.NewProc("EnumDisplayMonitors")
	procGetMonitorInfoW     = modUser32.NewProc("GetMonitorInfoW")
)

const monitorInfoFPrimary = 1

type monitorInfoEx struct {
	CbSize    uint32
	RcMonitor winRect
	RcWork    winRect
	DwFlags   uint32
	SzDevice  [32]uint16
}

// ListDisplays enumerates attached displays in monitor order. The
// rectangle coordinates are virtual-screen coordinates, so secondary
// displays can have negative origins.
func ListDisplays() ([]DisplayInfo, error) {
	var displays []DisplayInfo
	var enumErr error

	callback := syscall.NewCallback(func(hMonitor, hdc uintptr, rect *winRect, lparam uintptr) uintptr {
		var info monitorInfoEx
		info.CbSize = uint32(unsafe.Sizeof(info))
		ret, _, _ := procGetMonitorInfoW.Call(hMonitor, uintptr(unsafe.Pointer(&info)))
		if ret == 0 {
			enumErr = fmt.Errorf("GetMonitorInfoW failed for monitor %d", len(displays))
			return 1
		}
		displays = append(displays, DisplayInfo{
			Index:   len(displays),
			Name:    windows.UTF16ToString(info.SzDevice[:]),
			X:       int(info.RcMonitor.Left),
			Y:       int(info.RcMonitor.Top),
			Width:   int(info.RcMonitor.Right - info.RcMonitor.Left),
			Height:  int(info.RcMonitor.Bottom - info.RcMonitor.Top),
			Primary: info.DwFlags&monitorInfoFPrimary != 0,
		})
		return 1
	})

	ret, _, _ := procEnumDisplayMonitors.Call(0, 0, callback, 0)
	if ret == 0 {
		return nil, fmt.Errorf("EnumDisplayMonitors failed")
	}
	if enumErr != nil {
		return nil, enumErr
	}
	return displays, nil
}
