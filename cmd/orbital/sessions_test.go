package main

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/vovakirdan/orbital-defense/internal/config"
	"github.com/vovakirdan/orbital-defense/internal/session"
	"github.com/vovakirdan/orbital-defense/internal/storage"
)

func TestParseSessionID(t *testing.T) {
	tests := []struct {
		arg     string
		want    int64
		wantErr bool
	}{
		{"3", 3, false},
		{"120", 120, false},
		{"0", 0, true},
		{"-4", 0, true},
		{"abc", 0, true},
		{"", 0, true},
	}
	for _, tt := range tests {
		got, err := parseSessionID(tt.arg)
		if (err != nil) != tt.wantErr {
			t.Errorf("parseSessionID(%q) error = %v, wantErr %v", tt.arg, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("parseSessionID(%q) = %d, expected %d", tt.arg, got, tt.want)
		}
	}
}

func TestLoadReportMatchesSavedSession(t *testing.T) {
	store, err := storage.Open(filepath.Join(t.TempDir(), "cli.db"))
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	defer store.Close()

	sess := session.New(session.Options{
		Config:     config.Default(),
		Seed:       11,
		Difficulty: "normal",
		StartedAt:  time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
	})
	pilot := &session.Autopilot{Lasers: 4, Collectors: 1}
	if err := session.Run(context.Background(), sess, pilot, 16, 20_000); err != nil {
		t.Fatalf("Run() failed: %v", err)
	}
	id, err := sess.Save(store)
	if err != nil {
		t.Fatalf("Save() failed: %v", err)
	}

	want := sess.Report()
	got, err := loadReport(store, id)
	if err != nil {
		t.Fatalf("loadReport() failed: %v", err)
	}
	if got.SessionID != want.SessionID || got.Seed != 11 || got.Difficulty != "normal" {
		t.Errorf("identity = %s/%d/%s", got.SessionID, got.Seed, got.Difficulty)
	}
	if got.Score != want.Score || got.EnemiesDefeated != want.EnemiesDefeated {
		t.Errorf("score/kills = %v/%d, expected %v/%d", got.Score, got.EnemiesDefeated, want.Score, want.EnemiesDefeated)
	}
	if len(got.Placements) != len(want.Placements) || len(got.Enemies) != len(want.Enemies) {
		t.Errorf("placements/enemies = %d/%d, expected %d/%d",
			len(got.Placements), len(got.Enemies), len(want.Placements), len(want.Enemies))
	}

	if _, err := loadReport(store, id+100); err == nil {
		t.Error("loadReport() of a missing session should fail")
	}
}

func TestPrintReport(t *testing.T) {
	sess := session.New(session.Options{Config: config.Default(), Seed: 5})
	sess.Engine.StartWave()
	for range 600 {
		sess.Engine.Step(16)
	}

	var buf bytes.Buffer
	printReport(&buf, sess.Report())
	out := buf.String()
	for _, want := range []string{"Seed:        5", "Score:", "Accuracy:", "reached wave 1"} {
		if !strings.Contains(out, want) {
			t.Errorf("report missing %q:\n%s", want, out)
		}
	}
}
