package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestEmbeddedDefaultsMatchHardcoded(t *testing.T) {
	cfg, err := Parse(DefaultYAML())
	if err != nil {
		t.Fatalf("Parse(embedded) failed: %v", err)
	}
	if cfg != Default() {
		t.Errorf("embedded YAML differs from Default():\n got %+v\nwant %+v", cfg, Default())
	}
}

func TestDefaultIsValid(t *testing.T) {
	if err := Default().Validate(); err != nil {
		t.Errorf("Default().Validate() = %v, expected nil", err)
	}
}

func TestParseOverlaysDefaults(t *testing.T) {
	data := []byte(`
planet:
  health: 250
defenses:
  laser:
    damage: 40
`)
	cfg, err := Parse(data)
	if err != nil {
		t.Fatalf("Parse() failed: %v", err)
	}
	if cfg.Planet.Health != 250 {
		t.Errorf("Planet.Health = %v, expected 250", cfg.Planet.Health)
	}
	if cfg.Defenses.Laser.Damage != 40 {
		t.Errorf("Laser.Damage = %v, expected 40", cfg.Defenses.Laser.Damage)
	}
	// Untouched fields keep defaults
	if cfg.Planet.Radius != 50 {
		t.Errorf("Planet.Radius = %v, expected default 50", cfg.Planet.Radius)
	}
	if cfg.Defenses.Laser.FireRate != 1.5 {
		t.Errorf("Laser.FireRate = %v, expected default 1.5", cfg.Defenses.Laser.FireRate)
	}
}

func TestParseFloorsRates(t *testing.T) {
	cfg, err := Parse([]byte("defenses:\n  laser:\n    fire_rate: 0\nwaves:\n  initial_spawn_rate: -1\n"))
	if err != nil {
		t.Fatalf("Parse() failed: %v", err)
	}
	if cfg.Defenses.Laser.FireRate != cfg.MinRate {
		t.Errorf("FireRate = %v, expected floor %v", cfg.Defenses.Laser.FireRate, cfg.MinRate)
	}
	if cfg.Waves.InitialSpawnRate != cfg.MinRate {
		t.Errorf("InitialSpawnRate = %v, expected floor %v", cfg.Waves.InitialSpawnRate, cfg.MinRate)
	}
}

func TestValidateRejectsEmptyAnnulus(t *testing.T) {
	cfg := Default()
	cfg.Placement.MaxOrbitalRadius = 60 // below radius 50 + margin 20

	err := cfg.Validate()
	if err == nil {
		t.Fatal("Validate() = nil, expected annulus error")
	}
	if !strings.Contains(err.Error(), "annulus") {
		t.Errorf("Validate() error %q does not mention the annulus", err)
	}
}

func TestValidateReportsAllFields(t *testing.T) {
	cfg := Default()
	cfg.Screen.Width = 0
	cfg.Enemies.Radius = -1

	err := cfg.Validate()
	if err == nil {
		t.Fatal("Validate() = nil, expected errors")
	}
	for _, field := range []string{"screen.width", "enemies.radius"} {
		if !strings.Contains(err.Error(), field) {
			t.Errorf("Validate() error does not mention %s: %v", field, err)
		}
	}
}

func TestLoadCustomPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "custom.yaml")
	if err := os.WriteFile(path, []byte("planet:\n  starting_resources: 1000\n"), 0o600); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	if cfg.Planet.StartingResources != 1000 {
		t.Errorf("StartingResources = %v, expected 1000", cfg.Planet.StartingResources)
	}
}

func TestLoadMissingCustomPath(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("Load() with missing custom path should fail")
	}
}

func TestLoadInvalidCustomPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(path, []byte("screen:\n  width: -5\n"), 0o600); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}
	if _, err := Load(path); err == nil {
		t.Error("Load() with invalid values should fail")
	}
}

func TestMarshalRoundTrip(t *testing.T) {
	data, err := Marshal(Default())
	if err != nil {
		t.Fatalf("Marshal() failed: %v", err)
	}
	cfg, err := Parse(data)
	if err != nil {
		t.Fatalf("Parse(Marshal()) failed: %v", err)
	}
	if cfg != Default() {
		t.Error("config changed after Marshal/Parse")
	}
}

func TestApplyPreset(t *testing.T) {
	base := Default()

	tests := []struct {
		preset     DifficultyPreset
		check      func(Config) bool
		escalation bool
	}{
		{DifficultyEasy, func(c Config) bool { return c.Planet.StartingResources > base.Planet.StartingResources }, true},
		{DifficultyNormal, func(c Config) bool { return c == base }, true},
		{DifficultyHard, func(c Config) bool { return c.Waves.InitialSpawnRate > base.Waves.InitialSpawnRate }, true},
		{DifficultyFixed, func(c Config) bool { return c.Planet == base.Planet }, false},
	}

	for _, tc := range tests {
		t.Run(string(tc.preset), func(t *testing.T) {
			cfg := Default()
			ApplyPreset(&cfg, tc.preset)
			if !tc.check(cfg) {
				t.Errorf("preset %s did not apply as expected: %+v", tc.preset, cfg)
			}
			if cfg.Waves.EscalationEnabled != tc.escalation {
				t.Errorf("EscalationEnabled = %v, expected %v", cfg.Waves.EscalationEnabled, tc.escalation)
			}
		})
	}
}

func TestParsePreset(t *testing.T) {
	if ParsePreset("hard") != DifficultyHard {
		t.Error("ParsePreset(hard) should return DifficultyHard")
	}
	if ParsePreset("brutal") != "" {
		t.Error("ParsePreset(brutal) should return empty preset")
	}
}
