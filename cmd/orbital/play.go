package main

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/vovakirdan/orbital-defense/internal/core"
	"github.com/vovakirdan/orbital-defense/internal/platform/tui"
)

var flagTheme string

var playCmd = &cobra.Command{
	Use:   "play",
	Short: "Defend the planet in the terminal",
	Long: `Start a game in the terminal.

Controls:
  Arrows/WASD  - Move the placement cursor
  1 / 2        - Select laser turret / collector
  Enter/Click  - Place the selected defense
  Space        - Start the next wave
  U            - Upgrade the planet shield
  Tab / E      - Select a defense / upgrade it
  H            - Help
  R            - Restart (after game over)
  Q/Ctrl+C     - Quit

Finished sessions are stored in the sessions database.

Examples:
  orbital play
  orbital play --difficulty easy
  orbital play --seed 42 --theme mono
  orbital play --config ./my-orbital.yaml`,
	Args: cobra.NoArgs,
	RunE: runPlay,
}

func init() {
	playCmd.Flags().StringVar(&flagTheme, "theme", "", "Color theme: default, mono")
}

func runPlay(_ *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	// Logs would corrupt the alt screen, so they go to a file.
	logger, err := newLogger("orbital")
	if err != nil {
		return err
	}
	logFile, err := os.CreateTemp("", "orbital-*.log")
	if err == nil {
		defer logFile.Close()
		logger.SetOutput(logFile)
	} else {
		logger.SetOutput(io.Discard)
	}

	width, height := 80, 24 // Defaults
	if w, h, termErr := term.GetSize(int(os.Stdout.Fd())); termErr == nil {
		width = w
		height = h
	}

	seed := flagSeed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	// Continue without storage - the game still works
	store, storeErr := openStore()
	if storeErr != nil {
		fmt.Fprintf(os.Stderr, "Warning: %v\n", storeErr)
	}

	runErr := tui.Run(tui.Options{
		Config: cfg,
		Runtime: core.RuntimeConfig{
			ScreenW:  width,
			ScreenH:  height,
			TickRate: flagFPS,
			Seed:     seed,
		},
		Difficulty: flagDifficulty,
		Store:      store,
		Logger:     logger,
		Theme:      tui.ThemeByName(flagTheme),
	})

	if store != nil {
		store.Close()
	}
	if runErr != nil {
		return fmt.Errorf("running game: %w", runErr)
	}
	return nil
}
