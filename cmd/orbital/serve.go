package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/time/rate"

	"github.com/vovakirdan/orbital-defense/internal/platform/tui"
)

var (
	flagSSHAddr      string
	flagHostKey      string
	flagIdleTimeout  int
	flagMaxSessions  int
	flagConnectEvery time.Duration
	flagConnectBurst int
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the orbital defense SSH server",
	Long: `Start an SSH server that allows users to connect and play.

Each SSH connection gets its own session with a menu to start a game or
browse past sessions. Sessions are stored per-server in the --db database.

Host key handling:
  - If --host-key is provided, uses that key file
  - Otherwise, auto-generates a key at ~/.orbital/host_key

Examples:
  orbital serve                           # Listen on :23234 with auto-generated key
  orbital serve --ssh :2222               # Listen on port 2222
  orbital serve --max-sessions 16         # Allow at most 16 concurrent games
  orbital serve --difficulty hard         # Every remote game uses the hard preset

Users can connect with:
  ssh localhost -p 23234`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	defaults := tui.DefaultSSHServerConfig()
	serveCmd.Flags().StringVar(&flagSSHAddr, "ssh", defaults.Address, "SSH server address (host:port)")
	serveCmd.Flags().StringVar(&flagHostKey, "host-key", "", "Path to host key file (auto-generated if not specified)")
	serveCmd.Flags().IntVar(&flagIdleTimeout, "idle-timeout", 30, "Idle timeout in minutes before disconnecting")
	serveCmd.Flags().IntVar(&flagMaxSessions, "max-sessions", defaults.MaxSessions, "Maximum concurrent games (0 = unlimited)")
	serveCmd.Flags().DurationVar(&flagConnectEvery, "connect-every", 2*time.Second, "Minimum interval between connections from one host")
	serveCmd.Flags().IntVar(&flagConnectBurst, "connect-burst", defaults.ConnectBurst, "Connections allowed in a burst from one host")
}

func runServe(_ *cobra.Command, _ []string) error {
	game, err := loadConfig()
	if err != nil {
		return err
	}
	logger, err := newLogger("orbital-ssh")
	if err != nil {
		return err
	}

	cfg := tui.DefaultSSHServerConfig()
	cfg.Address = flagSSHAddr
	cfg.HostKeyPath = flagHostKey
	cfg.DBPath = flagDBPath
	cfg.IdleTimeout = time.Duration(flagIdleTimeout) * time.Minute
	cfg.Game = game
	cfg.Difficulty = flagDifficulty
	cfg.TickRate = flagFPS
	cfg.MaxSessions = flagMaxSessions
	cfg.ConnectRate = rate.Every(flagConnectEvery)
	cfg.ConnectBurst = flagConnectBurst

	server, err := tui.NewSSHServer(cfg, logger)
	if err != nil {
		return fmt.Errorf("creating server: %w", err)
	}

	fmt.Printf("Starting orbital defense SSH server on %s\n", server.Addr())
	fmt.Println("Connect with: ssh localhost -p 23234")
	fmt.Println("Press Ctrl+C to stop")

	return server.ListenAndServe(context.Background())
}
