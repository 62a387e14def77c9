package output

import (
	"github.com/alphonsez1/ARSmoothDesk/internal/scale"
)

// Output defines the interface for frame output mechanisms.
// This allows us to swap between different output methods:
// - MJPEG HTTP preview stream
// - V4L2 virtual camera
// - etc.
type Output interface {
	// Start initializes the output mechanism
	Start() error

	// Stop cleanly shuts down the output
	Stop() error

	// WriteFrame sends a scaled frame to the output. The frame is only
	// valid for the duration of the call.
	WriteFrame(frame *scale.OutputFrame) error

	// Name returns a human-readable name for this output type
	Name() string

	// IsRunning returns true if the output is currently active
	IsRunning() bool
}

// Config holds common configuration for all output types
type Config struct {
	Width   int
	Height  int
	FPS     int
	Quality int // JPEG quality, 1-100
}
