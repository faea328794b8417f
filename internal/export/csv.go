// Package export writes session reports as CSV for spreadsheet analysis.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"github.com/vovakirdan/orbital-defense/internal/stats"
)

// WriteCSV writes r as three sections separated by blank rows: the summary,
// enemy survival data and defense placement data.
func WriteCSV(w io.Writer, r stats.Report) error {
	cw := csv.NewWriter(w)
	rows := [][]string{
		{"Game Summary Stats"},
		{"Session", "Date", "Duration (ms)", "Score", "Waves", "Resources", "Enemies", "Accuracy"},
		{
			r.SessionID,
			r.StartedAt.UTC().Format("2006-01-02 15:04:05"),
			strconv.FormatInt(r.DurationMs, 10),
			num(r.Score),
			strconv.Itoa(r.WavesCompleted),
			num(r.ResourcesCollected),
			strconv.Itoa(r.EnemiesDefeated),
			num(r.Accuracy),
		},
		{},
		{"Enemy Survival Data"},
		{"Enemy Type", "Survival Time (ms)", "Penetration Depth"},
	}
	for _, e := range r.Enemies {
		rows = append(rows, []string{e.EnemyKind, strconv.FormatInt(e.SurvivalMs, 10), num(e.PenetrationDepth)})
	}

	rows = append(rows,
		[]string{},
		[]string{"Defense Placement Data"},
		[]string{"Type", "Orbital Radius", "Angle", "Upgrade Level", "Damage Dealt"},
	)
	for _, p := range r.Placements {
		rows = append(rows, []string{
			p.Kind, num(p.OrbitalRadius), num(p.Angle), strconv.Itoa(p.UpgradeLevel), num(p.DamageDealt),
		})
	}

	if err := cw.WriteAll(rows); err != nil {
		return fmt.Errorf("export: cannot write csv: %w", err)
	}
	return nil
}

// FileName returns the default export file name for r.
func FileName(r stats.Report) string {
	return "game_session_" + r.StartedAt.UTC().Format("2006-01-02_15-04-05") + ".csv"
}

// WriteFile writes r into dir under FileName and returns the full path.
func WriteFile(dir string, r stats.Report) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("export: cannot create directory %s: %w", dir, err)
	}
	path := filepath.Join(dir, FileName(r))
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("export: cannot create file: %w", err)
	}
	if err := WriteCSV(f, r); err != nil {
		f.Close()
		return "", err
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("export: cannot close file: %w", err)
	}
	return path, nil
}

func num(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
