//go:build linux

package capture

import (
	"github.com/alphonsez1/ARSmoothDesk/internal/config"
)

// Open builds the capture path for this platform. There is no hardware
// duplication interface here; X11 block copy is the only backend.
func Open(cfg config.CaptureConfig) (Capturer, error) {
	return NewX11Capturer(cfg.Display, cfg.Region)
}
