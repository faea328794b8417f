package main

import (
	"fmt"
	"maps"
	"os"
	"slices"
	"strconv"
	"text/tabwriter"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/vovakirdan/orbital-defense/internal/export"
	"github.com/vovakirdan/orbital-defense/internal/journal"
	"github.com/vovakirdan/orbital-defense/internal/platform/tui"
	"github.com/vovakirdan/orbital-defense/internal/stats"
	"github.com/vovakirdan/orbital-defense/internal/storage"
)

var (
	flagSessionsLimit int
	flagSessionsTUI   bool
	flagSessionsClear bool
	flagExportOut     string
)

var sessionsCmd = &cobra.Command{
	Use:   "sessions",
	Short: "List recorded sessions",
	Long: `Display the most recent recorded sessions and the average survival
time of each enemy type across all of them.

Examples:
  orbital sessions
  orbital sessions --limit 50
  orbital sessions --tui
  orbital sessions --clear`,
	Args: cobra.NoArgs,
	RunE: runSessions,
}

var showCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show one recorded session",
	Long: `Display a recorded session with its defense placements, enemy survival
data and event journal summary.

Examples:
  orbital show 3`,
	Args: cobra.ExactArgs(1),
	RunE: runShow,
}

var exportCmd = &cobra.Command{
	Use:   "export <id>",
	Short: "Export a recorded session as CSV",
	Long: `Write a recorded session as a CSV file with the game summary, enemy
survival data and defense placement sections.

Examples:
  orbital export 3
  orbital export 3 --out ./reports`,
	Args: cobra.ExactArgs(1),
	RunE: runExport,
}

func init() {
	sessionsCmd.Flags().IntVar(&flagSessionsLimit, "limit", 20, "Number of sessions to list")
	sessionsCmd.Flags().BoolVar(&flagSessionsTUI, "tui", false, "Browse sessions interactively")
	sessionsCmd.Flags().BoolVar(&flagSessionsClear, "clear", false, "Delete every recorded session")
	exportCmd.Flags().StringVar(&flagExportOut, "out", "~/.orbital/exports", "Output directory")
}

func runSessions(_ *cobra.Command, _ []string) error {
	store, err := openStore()
	if err != nil {
		return err
	}
	defer store.Close()

	if flagSessionsClear {
		if err := store.ClearSessions(); err != nil {
			return err
		}
		fmt.Println("All sessions deleted.")
		return nil
	}

	if flagSessionsTUI {
		width, height := 80, 24
		if w, h, termErr := term.GetSize(int(os.Stdout.Fd())); termErr == nil {
			width, height = w, h
		}
		return tui.RunSessions(store, tui.DefaultTheme(), width, height)
	}

	sessions, err := store.RecentSessions(flagSessionsLimit)
	if err != nil {
		return err
	}
	if len(sessions) == 0 {
		fmt.Println("No sessions recorded yet. Run 'orbital play' or 'orbital sim --save'.")
		return nil
	}

	fmt.Println("Recent Sessions")
	fmt.Println("===============")
	tw := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "#\tPLAYED\tSCORE\tWAVES\tKILLS\tACCURACY\tLENGTH\tDIFFICULTY")
	for _, s := range sessions {
		difficulty := s.Difficulty
		if difficulty == "" {
			difficulty = "-"
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%d\t%s\t%.1f%%\t%s\t%s\n",
			s.ID,
			humanize.Time(s.StartedAt),
			humanize.Commaf(s.Score),
			s.WavesCompleted,
			humanize.Comma(int64(s.EnemiesDefeated)),
			s.Accuracy*100,
			simDuration(s.DurationMs),
			difficulty,
		)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	survival, err := store.SurvivalByType()
	if err != nil {
		return err
	}
	if len(survival) > 0 {
		fmt.Println()
		fmt.Println("Enemy Survival (all sessions)")
		tw = tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(tw, "TYPE\tDEFEATED\tAVG SURVIVAL\tAVG CLOSEST")
		for _, ts := range survival {
			fmt.Fprintf(tw, "%s\t%s\t%s\t%.0f\n",
				ts.EnemyType,
				humanize.Comma(int64(ts.Count)),
				time.Duration(ts.AvgSurvivalMs*float64(time.Millisecond)).Round(100*time.Millisecond),
				ts.AvgPenetration,
			)
		}
		return tw.Flush()
	}
	return nil
}

func runShow(_ *cobra.Command, args []string) error {
	id, err := parseSessionID(args[0])
	if err != nil {
		return err
	}
	store, err := openStore()
	if err != nil {
		return err
	}
	defer store.Close()

	report, err := loadReport(store, id)
	if err != nil {
		return err
	}
	fmt.Printf("Session #%d, played %s\n", id, humanize.Time(report.StartedAt))
	printReport(os.Stdout, report)

	if len(report.Placements) > 0 {
		fmt.Println()
		fmt.Println("Defenses")
		tw := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(tw, "TYPE\tRADIUS\tANGLE\tLEVEL\tDAMAGE")
		for _, p := range report.Placements {
			fmt.Fprintf(tw, "%s\t%.0f\t%.2f\t%d\t%s\n",
				p.Kind, p.OrbitalRadius, p.Angle, p.UpgradeLevel, humanize.Commaf(p.DamageDealt))
		}
		if err := tw.Flush(); err != nil {
			return err
		}
	}

	if avg := report.SurvivalByKind(); len(avg) > 0 {
		fmt.Println()
		fmt.Println("Average Survival")
		for _, kind := range slices.Sorted(maps.Keys(avg)) {
			fmt.Printf("  %-12s %s\n", kind, time.Duration(avg[kind]*float64(time.Millisecond)).Round(100*time.Millisecond))
		}
	}

	j, err := store.LoadJournal(id)
	if err != nil {
		return err
	}
	if j == nil {
		return nil
	}
	records, err := journal.Unpack(j.Blob, j.Digest)
	if err != nil {
		return err
	}
	counts := journal.CountByKind(records)
	fmt.Println()
	fmt.Printf("Journal: %s events, %s packed, digest %.16s\n",
		humanize.Comma(int64(len(records))), humanize.Bytes(uint64(len(j.Blob))), j.Digest)
	for _, kind := range slices.Sorted(maps.Keys(counts)) {
		fmt.Printf("  %-20s %s\n", kind, humanize.Comma(int64(counts[kind])))
	}
	return nil
}

func runExport(_ *cobra.Command, args []string) error {
	id, err := parseSessionID(args[0])
	if err != nil {
		return err
	}
	store, err := openStore()
	if err != nil {
		return err
	}
	defer store.Close()

	report, err := loadReport(store, id)
	if err != nil {
		return err
	}
	dir, err := expandHome(flagExportOut)
	if err != nil {
		return err
	}
	path, err := export.WriteFile(dir, report)
	if err != nil {
		return err
	}
	fmt.Printf("Session #%d exported to %s\n", id, path)
	return nil
}

// loadReport rebuilds the report of a stored session. Damage sources and
// the resource timeline are not stored and stay empty.
func loadReport(store *storage.Store, id int64) (stats.Report, error) {
	s, err := store.Session(id)
	if err != nil {
		return stats.Report{}, err
	}
	if s == nil {
		return stats.Report{}, fmt.Errorf("session #%d not found", id)
	}
	placements, err := store.Placements(id)
	if err != nil {
		return stats.Report{}, err
	}
	enemies, err := store.Enemies(id)
	if err != nil {
		return stats.Report{}, err
	}
	return stats.Report{
		SessionID:          s.UUID,
		StartedAt:          s.StartedAt,
		DurationMs:         s.DurationMs,
		Seed:               s.Seed,
		Difficulty:         s.Difficulty,
		Score:              s.Score,
		WavesCompleted:     s.WavesCompleted,
		FinalWave:          s.FinalWave,
		ResourcesCollected: s.ResourcesCollected,
		EnemiesDefeated:    s.EnemiesDefeated,
		ShotsFired:         s.ShotsFired,
		ShotsHit:           s.ShotsHit,
		Accuracy:           s.Accuracy,
		Placements:         placements,
		Enemies:            enemies,
	}, nil
}

func parseSessionID(arg string) (int64, error) {
	id, err := strconv.ParseInt(arg, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid session id %q", arg)
	}
	return id, nil
}
