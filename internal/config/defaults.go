package config

import (
	_ "embed"
	"time"

	"github.com/vovakirdan/window-flappy/internal/core"
)

//go:embed defaults/flappywin.yaml
var defaultYAML []byte

// Default returns the default configuration.
func Default() Config {
	return Config{
		Display: DisplayConfig{
			FrameInterval:    core.DefaultFrameInterval,
			Background:       "#1e1e2e",
			WindowBackground: "#d8dce6",
		},
		Controls: ControlsConfig{
			Jump: []string{"space", "up", "w"},
		},
		Log: LogConfig{
			Level: "info",
		},
		Server: ServerConfig{
			Address:     ":23234",
			IdleTimeout: 30 * time.Minute,
		},
	}
}
