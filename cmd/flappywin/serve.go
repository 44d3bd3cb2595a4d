package main

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/window-flappy/internal/assets"
	"github.com/vovakirdan/window-flappy/internal/config"
	"github.com/vovakirdan/window-flappy/internal/platform/tui"
)

var (
	flagSSHAddr     string
	flagHostKey     string
	flagIdleTimeout time.Duration
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the flappywin SSH server",
	Long: `Start an SSH server that lets users connect and play.

Each SSH connection gets its own game on a desktop the size of its
terminal. Sessions never see each other's windows.

Host key handling:
  - If --host-key (or server.host_key) is set, uses that key file
  - Otherwise, auto-generates a key at ~/.flappywin/host_key

Examples:
  flappywin serve                           # Listen on :23234 with auto-generated key
  flappywin serve --ssh :2222               # Listen on port 2222
  flappywin serve --host-key ./my_host_key  # Use specific host key

Users can connect with:
  ssh localhost -p 23234`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&flagSSHAddr, "ssh", "", "SSH server address (host:port), overrides server.address")
	serveCmd.Flags().StringVar(&flagHostKey, "host-key", "", "Path to host key file, overrides server.host_key")
	serveCmd.Flags().DurationVar(&flagIdleTimeout, "idle-timeout", 0, "Idle timeout before disconnecting, overrides server.idle_timeout")
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(flagConfig)
	if err != nil {
		return err
	}

	if cmd.Flags().Changed("ssh") {
		cfg.Server.Address = flagSSHAddr
	}
	if cmd.Flags().Changed("host-key") {
		cfg.Server.HostKey = flagHostKey
	}
	if cmd.Flags().Changed("idle-timeout") {
		cfg.Server.IdleTimeout = flagIdleTimeout
	}

	provider, err := assets.Open(config.ExpandPath(cfg.Assets.Dir), nil)
	if err != nil {
		return err
	}
	desktopOpts, err := desktopOptions(cfg)
	if err != nil {
		return err
	}

	server, err := tui.NewSSHServer(tui.SSHServerConfig{
		Address:       cfg.Server.Address,
		HostKeyPath:   cfg.HostKeyPath(),
		IdleTimeout:   cfg.Server.IdleTimeout,
		FrameInterval: cfg.Display.FrameInterval,
		Desktop:       desktopOpts,
		Assets:        provider,
		Jump:          cfg.Controls.Jump,
		LogLevel:      cfg.LogLevel(),
	})
	if err != nil {
		return err
	}

	cmd.Printf("Starting flappywin SSH server on %s\n", server.Addr())
	cmd.Println("Press Ctrl+C to stop")

	return server.ListenAndServe()
}
