// Package config provides YAML-based configuration loading for flappywin.
// Gameplay itself is not configurable; the file only covers how the game is
// displayed, controlled, logged and served.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/vovakirdan/window-flappy/internal/core"
)

// ErrInvalid is returned by Validate for unusable configurations.
var ErrInvalid = errors.New("config: invalid configuration")

// Config contains all configuration for flappywin.
type Config struct {
	Display  DisplayConfig  `yaml:"display"`
	Assets   AssetsConfig   `yaml:"assets"`
	Controls ControlsConfig `yaml:"controls"`
	Log      LogConfig      `yaml:"log"`
	Server   ServerConfig   `yaml:"server"`
}

// DisplayConfig defines frame pacing and desktop colours.
type DisplayConfig struct {
	FrameInterval    time.Duration `yaml:"frame_interval"`
	Background       string        `yaml:"background"`        // Hex colour
	WindowBackground string        `yaml:"window_background"` // Hex colour
}

// AssetsConfig defines where sprites are loaded from.
type AssetsConfig struct {
	Dir string `yaml:"dir"` // Empty = embedded sprites
}

// ControlsConfig defines key bindings.
type ControlsConfig struct {
	Jump []string `yaml:"jump"` // bubbletea key names
}

// LogConfig defines logging.
type LogConfig struct {
	Level string `yaml:"level"`
	File  string `yaml:"file"` // Empty = ~/.flappywin/flappywin.log
}

// ServerConfig defines the SSH server.
type ServerConfig struct {
	Address     string        `yaml:"address"`
	HostKey     string        `yaml:"host_key"` // Empty = auto-generated
	IdleTimeout time.Duration `yaml:"idle_timeout"`
}

// Validate checks the configuration and returns an error wrapping ErrInvalid
// describing every problem found.
func (c Config) Validate() error {
	var problems []string

	if c.Display.FrameInterval <= 0 {
		problems = append(problems, fmt.Sprintf("display.frame_interval must be positive, got %s", c.Display.FrameInterval))
	}
	if _, err := core.ParseColor(c.Display.Background); err != nil {
		problems = append(problems, fmt.Sprintf("display.background: %v", err))
	}
	if _, err := core.ParseColor(c.Display.WindowBackground); err != nil {
		problems = append(problems, fmt.Sprintf("display.window_background: %v", err))
	}
	if len(c.Controls.Jump) == 0 {
		problems = append(problems, "controls.jump needs at least one key")
	}
	if _, err := log.ParseLevel(c.Log.Level); err != nil {
		problems = append(problems, fmt.Sprintf("log.level: %v", err))
	}
	if c.Server.IdleTimeout < 0 {
		problems = append(problems, "server.idle_timeout must not be negative")
	}

	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalid, strings.Join(problems, "; "))
	}
	return nil
}

// LogLevel returns the configured level. Invalid levels fall back to info.
func (c Config) LogLevel() log.Level {
	level, err := log.ParseLevel(c.Log.Level)
	if err != nil {
		return log.InfoLevel
	}
	return level
}

// Colors returns the desktop background and window background colours.
func (c Config) Colors() (background, window core.Color, err error) {
	background, err = core.ParseColor(c.Display.Background)
	if err != nil {
		return background, window, fmt.Errorf("config: display.background: %w", err)
	}
	window, err = core.ParseColor(c.Display.WindowBackground)
	if err != nil {
		return background, window, fmt.Errorf("config: display.window_background: %w", err)
	}
	return background, window, nil
}

// LogPath returns the log file path with ~ expanded.
func (c Config) LogPath() string {
	if c.Log.File == "" {
		return filepath.Join(Dir(), "flappywin.log")
	}
	return ExpandPath(c.Log.File)
}

// HostKeyPath returns the SSH host key path with ~ expanded.
func (c Config) HostKeyPath() string {
	if c.Server.HostKey == "" {
		return filepath.Join(Dir(), "host_key")
	}
	return ExpandPath(c.Server.HostKey)
}

// Dir returns the per-user flappywin directory.
func Dir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".flappywin"
	}
	return filepath.Join(home, ".flappywin")
}

// ExpandPath expands a leading ~ to the user's home directory.
func ExpandPath(path string) string {
	if path == "~" || strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return filepath.Join(home, strings.TrimPrefix(path, "~"))
	}
	return path
}
