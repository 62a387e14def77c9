//go:build !windows && !linux

package capture

import (
	"fmt"

	"github.com/alphonsez1/ARSmoothDesk/internal/config"
)

// Open has no capture backend on this platform.
func Open(cfg config.CaptureConfig) (Capturer, error) {
	return nil, fmt.Errorf("%w: no capture backend for this platform", ErrUnsupported)
}

// ListDisplays has no display enumeration on this platform.
func ListDisplays() ([]DisplayInfo, error) {
	return nil, fmt.Errorf("%w: no display enumeration for this platform", ErrUnsupported)
}
