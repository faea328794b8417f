package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/vovakirdan/orbital-defense/internal/core"
	"github.com/vovakirdan/orbital-defense/internal/export"
	"github.com/vovakirdan/orbital-defense/internal/orbital"
	"github.com/vovakirdan/orbital-defense/internal/session"
	"github.com/vovakirdan/orbital-defense/internal/stats"
)

var (
	flagSimLasers     int
	flagSimCollectors int
	flagSimRadius     float64
	flagSimReserve    float64
	flagSimWaves      int
	flagSimMaxTicks   int
	flagSimSave       bool
	flagSimExport     string
)

var simCmd = &cobra.Command{
	Use:   "sim",
	Short: "Run a headless autopilot session",
	Long: `Run a session without a terminal UI. An autopilot places defenses on a
ring around the planet, starts every wave and spends spare resources on
upgrades. The simulation runs as fast as possible with the fixed step
given by --fps, so the same seed always gives the same result.

Examples:
  orbital sim --seed 42
  orbital sim --seed 42 --waves 5 --lasers 8 --collectors 2
  orbital sim --difficulty hard --save
  orbital sim --export ./reports`,
	Args: cobra.NoArgs,
	RunE: runSim,
}

func init() {
	simCmd.Flags().IntVar(&flagSimLasers, "lasers", 6, "Laser turrets the autopilot places")
	simCmd.Flags().IntVar(&flagSimCollectors, "collectors", 2, "Collectors the autopilot places")
	simCmd.Flags().Float64Var(&flagSimRadius, "radius", 0, "Defense ring radius (0 = middle of the orbit)")
	simCmd.Flags().Float64Var(&flagSimReserve, "reserve", 0, "Resources kept back before buying upgrades")
	simCmd.Flags().IntVar(&flagSimWaves, "waves", 0, "Stop after this many completed waves (0 = until game over)")
	simCmd.Flags().IntVar(&flagSimMaxTicks, "max-ticks", 1_000_000, "Upper bound on simulated ticks (0 = no limit)")
	simCmd.Flags().BoolVar(&flagSimSave, "save", false, "Store the session in the sessions database")
	simCmd.Flags().StringVar(&flagSimExport, "export", "", "Directory to write the CSV report to")
}

func runSim(_ *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger, err := newLogger("orbital-sim")
	if err != nil {
		return err
	}

	seed := flagSeed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	// Completed waves end the run through the context.
	var sinks []orbital.EventSink
	if flagSimWaves > 0 {
		sinks = append(sinks, orbital.SinkFunc(func(ev orbital.Event) {
			if wc, ok := ev.(orbital.WaveCompleted); ok && wc.Success && wc.Wave >= flagSimWaves {
				cancel()
			}
		}))
	}

	sess := session.New(session.Options{
		Config:     cfg,
		Seed:       seed,
		Difficulty: flagDifficulty,
		Logger:     logger,
		Sinks:      sinks,
	})
	pilot := &session.Autopilot{
		Lasers:     flagSimLasers,
		Collectors: flagSimCollectors,
		Radius:     flagSimRadius,
		Reserve:    flagSimReserve,
	}

	rt := core.RuntimeConfig{TickRate: flagFPS}
	logger.Info("simulation started", "seed", seed, "lasers", flagSimLasers, "collectors", flagSimCollectors)
	start := time.Now()
	runErr := session.Run(ctx, sess, pilot, rt.TickMillis(), flagSimMaxTicks)
	if runErr != nil && !errors.Is(runErr, context.Canceled) {
		return runErr
	}
	logger.Info("simulation finished", "ticks", sess.Engine.Tick(), "elapsed", time.Since(start).Round(time.Millisecond))

	report := sess.Report()
	printReport(os.Stdout, report)

	if flagSimSave {
		store, err := openStore()
		if err != nil {
			return err
		}
		defer store.Close()
		id, err := sess.Save(store)
		if err != nil {
			return err
		}
		fmt.Printf("\nSaved as session #%d\n", id)
	}

	if flagSimExport != "" {
		path, err := export.WriteFile(flagSimExport, report)
		if err != nil {
			return err
		}
		fmt.Printf("Report written to %s\n", path)
	}
	return nil
}

// printReport writes the human readable summary of r.
func printReport(w io.Writer, r stats.Report) {
	if r.GameOver {
		fmt.Fprintf(w, "Session %s (planet destroyed)\n", r.SessionID)
	} else {
		fmt.Fprintf(w, "Session %s\n", r.SessionID)
	}
	fmt.Fprintf(w, "  Seed:        %d\n", r.Seed)
	if r.Difficulty != "" {
		fmt.Fprintf(w, "  Difficulty:  %s\n", r.Difficulty)
	}
	fmt.Fprintf(w, "  Length:      %s\n", simDuration(r.DurationMs))
	fmt.Fprintf(w, "  Score:       %s\n", humanize.Commaf(r.Score))
	fmt.Fprintf(w, "  Waves:       %d completed, %d failed (reached wave %d)\n", r.WavesCompleted, r.WavesFailed, r.FinalWave)
	fmt.Fprintf(w, "  Enemies:     %s defeated\n", humanize.Comma(int64(r.EnemiesDefeated)))
	fmt.Fprintf(w, "  Resources:   %s collected\n", humanize.Commaf(r.ResourcesCollected))
	fmt.Fprintf(w, "  Accuracy:    %.1f%% (%s of %s shots)\n", r.Accuracy*100,
		humanize.Comma(int64(r.ShotsHit)), humanize.Comma(int64(r.ShotsFired)))

	if len(r.DamageSources) > 0 {
		fmt.Fprintln(w, "  Damage taken:")
		for _, d := range r.DamageSources {
			fmt.Fprintf(w, "    %-14s %s\n", d.Name, humanize.Commaf(d.Value))
		}
	}
	if len(r.UpgradeChoices) > 0 {
		fmt.Fprintln(w, "  Upgrades:")
		for _, u := range r.UpgradeChoices {
			fmt.Fprintf(w, "    %-14s %d\n", u.Name, u.Count)
		}
	}
}

func simDuration(ms int64) string {
	return (time.Duration(ms) * time.Millisecond).Round(time.Second).String()
}
