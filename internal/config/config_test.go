package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultsAreValid(t *testing.T) {
	cfg := Defaults()
	assert.NoError(t, cfg.Validate())
}

func TestValidateRejectsBadValues(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero frame rate", func(c *Config) { c.Capture.FrameRate = 0 }},
		{"negative frame skip", func(c *Config) { c.Capture.FrameSkip = -1 }},
		{"negative min sleep", func(c *Config) { c.Capture.MinSleepMs = -5 }},
		{"zero output width", func(c *Config) { c.Output.Width = 0 }},
		{"zero output height", func(c *Config) { c.Output.Height = 0 }},
		{"unknown quality", func(c *Config) { c.Output.Quality = "fancy" }},
		{"jpeg quality too high", func(c *Config) { c.Output.JPEG = 101 }},
		{"jpeg quality zero", func(c *Config) { c.Output.JPEG = 0 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Defaults()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestRegionIsEmpty(t *testing.T) {
	assert.True(t, Region{}.IsEmpty())
	assert.True(t, Region{X: 10, Y: 10}.IsEmpty())
	assert.True(t, Region{Width: 100, Height: -1}.IsEmpty())
	assert.False(t, Region{Width: 100, Height: 100}.IsEmpty())
}

func TestManagerCreatesDefaultConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	m, err := NewManager(path)
	require.NoError(t, err)

	_, err = os.Stat(path)
	assert.NoError(t, err, "default config file must be written")
	assert.Equal(t, *Defaults(), m.Get())
}

func TestManagerRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	m, err := NewManager(path)
	require.NoError(t, err)

	err = m.Update(func(c *Config) {
		c.Capture.Display = -1
		c.Capture.FrameRate = 60
		c.Output.Quality = QualityHigh
		c.Output.Width = 1920
		c.Output.Height = 1080
	})
	require.NoError(t, err)

	reloaded, err := NewManager(path)
	require.NoError(t, err)
	got := reloaded.Get()
	assert.Equal(t, -1, got.Capture.Display)
	assert.Equal(t, 60, got.Capture.FrameRate)
	assert.Equal(t, QualityHigh, got.Output.Quality)
	assert.Equal(t, 1920, got.Output.Width)
}

func TestManagerRejectsInvalidUpdate(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	m, err := NewManager(path)
	require.NoError(t, err)

	err = m.Update(func(c *Config) { c.Capture.FrameRate = 0 })
	assert.Error(t, err)
}

func TestManagerRejectsInvalidFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("capture:\n  frame_rate: -3\n"), 0644))

	_, err := NewManager(path)
	assert.Error(t, err)
}

func TestManagerPartialFileKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server_port: 9090\n"), 0644))

	m, err := NewManager(path)
	require.NoError(t, err)
	got := m.Get()
	assert.Equal(t, 9090, got.ServerPort)
	assert.Equal(t, Defaults().Capture.FrameRate, got.Capture.FrameRate)
}
