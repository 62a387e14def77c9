package config

import "fmt"

// ScalingQuality selects the resampling kernel used when fitting
// captured frames into the output resolution.
type ScalingQuality string

const (
	QualityFast ScalingQuality = "fast" // nearest-neighbor
	QualityHigh ScalingQuality = "high" // Catmull-Rom
)

// Region is a sub-rectangle of the desktop in source pixel coordinates.
// A zero-value region means "capture the whole display".
type Region struct {
	X      int `json:"x" yaml:"x"`
	Y      int `json:"y" yaml:"y"`
	Width  int `json:"width" yaml:"width"`
	Height int `json:"height" yaml:"height"`
}

// IsEmpty reports whether the region is unset.
func (r Region) IsEmpty() bool {
	return r.Width <= 0 || r.Height <= 0
}

// CaptureConfig controls the capture source.
type CaptureConfig struct {
	// Display selects which monitor to mirror. Negative values count
	// from the last display (-1 is the last one). Out-of-range values
	// are clamped.
	Display int `json:"display" yaml:"display"`

	// Region optionally restricts capture to a sub-rectangle of the
	// selected display. Only honored by the fallback capture path.
	Region Region `json:"region" yaml:"region"`

	// FrameRate is the target publish rate in frames per second.
	FrameRate int `json:"frame_rate" yaml:"frame_rate"`

	// FrameSkip publishes only every (N+1)th cycle when > 0.
	FrameSkip int `json:"frame_skip" yaml:"frame_skip"`

	// MinSleepMs is the floor for the inter-cycle sleep, so a slow
	// cycle never turns the loop into a busy spin.
	MinSleepMs int `json:"min_sleep_ms" yaml:"min_sleep_ms"`
}

// OutputConfig controls the scaled output surface and preview stream.
type OutputConfig struct {
	Width   int            `json:"width" yaml:"width"`
	Height  int            `json:"height" yaml:"height"`
	Quality ScalingQuality `json:"quality" yaml:"quality"`
	JPEG    int            `json:"jpeg_quality" yaml:"jpeg_quality"`
}

// Config represents the application configuration
type Config struct {
	Capture    CaptureConfig `json:"capture" yaml:"capture"`
	Output     OutputConfig  `json:"output" yaml:"output"`
	ServerPort int           `json:"server_port" yaml:"server_port"`
	LogLevel   string        `json:"log_level" yaml:"log_level"`
}

// Validate checks the configuration for values the pipeline cannot run with.
func (c *Config) Validate() error {
	if c.Capture.FrameRate <= 0 {
		return fmt.Errorf("frame_rate must be positive, got %d", c.Capture.FrameRate)
	}
	if c.Capture.FrameSkip < 0 {
		return fmt.Errorf("frame_skip must not be negative, got %d", c.Capture.FrameSkip)
	}
	if c.Capture.MinSleepMs < 0 {
		return fmt.Errorf("min_sleep_ms must not be negative, got %d", c.Capture.MinSleepMs)
	}
	if c.Output.Width <= 0 || c.Output.Height <= 0 {
		return fmt.Errorf("output resolution must be positive, got %dx%d", c.Output.Width, c.Output.Height)
	}
	switch c.Output.Quality {
	case QualityFast, QualityHigh:
	default:
		return fmt.Errorf("unknown scaling quality %q", c.Output.Quality)
	}
	if c.Output.JPEG < 1 || c.Output.JPEG > 100 {
		return fmt.Errorf("jpeg_quality must be in [1,100], got %d", c.Output.JPEG)
	}
	return nil
}
