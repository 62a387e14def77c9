//go:build windows

package capture

import (
	"github.com/alphonsez1/ARSmoothDesk/internal/config"
	"github.com/alphonsez1/ARSmoothDesk/internal/logger"
)

// Open builds the capture path for this platform: hardware desktop
// duplication first, block-copy fallback when duplication cannot be
// opened. A non-empty region forces the fallback, since duplication
// always mirrors the whole output.
func Open(cfg config.CaptureConfig) (Capturer, error) {
	log := logger.WithComponent("capture")

	if cfg.Region.IsEmpty() {
		session, err := OpenSession(cfg.Display)
		if err == nil {
			return session, nil
		}
		log.Warn().Err(err).Msg("Desktop duplication unavailable, using block-copy fallback")
	} else {
		log.Info().Msg("Capture region configured, using block-copy fallback")
	}

	return NewGDICapturer(cfg.Display, cfg.Region)
}
