// flappywin is Flappy Bird in which the bird, every pipe and the final score
// each live in a window of their own.
//
// Usage:
//
//	flappywin          - Play on this terminal
//	flappywin serve    - Start SSH server for remote play
//
// Global flags:
//
//	--config <path>  - Use a config file instead of the search path
//	--seed <value>   - Set RNG seed for reproducible pipe gaps
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/vovakirdan/window-flappy/internal/assets"
	"github.com/vovakirdan/window-flappy/internal/config"
	"github.com/vovakirdan/window-flappy/internal/desktop"
	"github.com/vovakirdan/window-flappy/internal/platform/tui"
)

var (
	// Global flags
	flagConfig string
	flagSeed   int64
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "flappywin",
	Short: "Flappy Bird where every sprite is its own window",
	Long: `flappywin turns the terminal into a small desktop and plays Flappy Bird
on it. The bird, every pipe and the final score are separate windows
that the game creates, moves and destroys every frame.

Controls:
  Space/Up/W  - Flap
  Any key     - Close the final score (or click it)
  Q/Ctrl+C    - Quit

Examples:
  flappywin
  flappywin --seed 42
  flappywin --config ./flappywin.yaml
  flappywin serve --ssh :2222`,
	Args:          cobra.NoArgs,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runPlay,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "Path to config YAML")
	rootCmd.PersistentFlags().Int64Var(&flagSeed, "seed", 0, "RNG seed (0 = random based on time)")

	rootCmd.AddCommand(serveCmd)
}

func runPlay(_ *cobra.Command, _ []string) error {
	cfg, err := config.Load(flagConfig)
	if err != nil {
		return err
	}

	// The terminal belongs to the game, so logs go to a file
	logger, logFile, err := openLog(cfg)
	if err != nil {
		return err
	}
	defer logFile.Close()

	// Probe the screen once; every percentage is relative to this size
	cols, rows, err := desktop.Probe(os.Stdout.Fd())
	if err != nil {
		logger.Error("cannot probe screen", "error", err)
		return err
	}

	provider, err := assets.Open(config.ExpandPath(cfg.Assets.Dir), logger)
	if err != nil {
		logger.Error("cannot open assets", "error", err)
		return err
	}

	desktopOpts, err := desktopOptions(cfg)
	if err != nil {
		return err
	}

	logger.Info("starting", "cols", cols, "rows", rows, "seed", flagSeed)
	err = tui.Run(tui.Options{
		Cols:          cols,
		Rows:          rows,
		FrameInterval: cfg.Display.FrameInterval,
		Seed:          flagSeed,
		Desktop:       desktopOpts,
		Assets:        provider,
		Jump:          cfg.Controls.Jump,
		Logger:        logger,
	})
	if err != nil {
		logger.Error("game failed", "error", err)
		return err
	}
	return nil
}

// openLog opens the configured log file for appending.
func openLog(cfg config.Config) (*log.Logger, *os.File, error) {
	path := cfg.LogPath()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, nil, fmt.Errorf("cannot create log directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("cannot open log file: %w", err)
	}

	logger := log.NewWithOptions(f, log.Options{
		ReportTimestamp: true,
		Prefix:          "flappywin",
		Level:           cfg.LogLevel(),
	})
	return logger, f, nil
}

// desktopOptions converts the configured colours.
func desktopOptions(cfg config.Config) (desktop.Options, error) {
	bg, win, err := cfg.Colors()
	if err != nil {
		return desktop.Options{}, err
	}
	return desktop.Options{
		Background:       bg,
		WindowBackground: win,
	}, nil
}
