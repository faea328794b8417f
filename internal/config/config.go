// Package config provides YAML-based configuration loading and difficulty
// presets for the orbital defense simulation.
package config

// Config contains every tunable of the simulation, in world units,
// milliseconds and per-second rates.
type Config struct {
	Screen     ScreenConfig     `yaml:"screen"`
	Planet     PlanetConfig     `yaml:"planet"`
	Placement  PlacementConfig  `yaml:"placement"`
	Defenses   DefensesConfig   `yaml:"defenses"`
	Enemies    EnemiesConfig    `yaml:"enemies"`
	Projectile ProjectileConfig `yaml:"projectile"`
	Waves      WavesConfig      `yaml:"waves"`
	Economy    EconomyConfig    `yaml:"economy"`

	// MinRate is the floor applied to every per-second rate so cooldowns
	// never divide by zero.
	MinRate float64 `yaml:"min_rate"`
}

// ScreenConfig is the play area. The planet sits at its center and
// projectiles leaving it are discarded.
type ScreenConfig struct {
	Width  float64 `yaml:"width"`
	Height float64 `yaml:"height"`
}

// PlanetConfig defines the defended planet.
type PlanetConfig struct {
	Radius            float64      `yaml:"radius"`
	Health            float64      `yaml:"health"`
	StartingResources float64      `yaml:"starting_resources"`
	Shield            ShieldConfig `yaml:"shield"`
}

// ShieldConfig defines shield upgrades.
type ShieldConfig struct {
	Cost              float64 `yaml:"cost"`
	MaxLevel          int     `yaml:"max_level"`
	ReductionPerLevel float64 `yaml:"reduction_per_level"`
}

// PlacementConfig defines the orbital annulus defenses may be placed in.
type PlacementConfig struct {
	Margin           float64 `yaml:"margin"`             // Gap above the planet surface
	MaxOrbitalRadius float64 `yaml:"max_orbital_radius"` // Outer edge of the annulus
}

// DefensesConfig holds per-variant defense parameters.
type DefensesConfig struct {
	Laser     LaserConfig     `yaml:"laser"`
	Collector CollectorConfig `yaml:"collector"`
}

// LaserConfig defines the attack defense.
type LaserConfig struct {
	Cost               float64 `yaml:"cost"`
	Damage             float64 `yaml:"damage"`
	FireRate           float64 `yaml:"fire_rate"` // Shots per second
	ProjectileSpeed    float64 `yaml:"projectile_speed"`
	UpgradeCost        float64 `yaml:"upgrade_cost"`
	DamageMultiplier   float64 `yaml:"damage_multiplier"`
	FireRateMultiplier float64 `yaml:"fire_rate_multiplier"`
}

// CollectorConfig defines the resource collector defense.
type CollectorConfig struct {
	Cost               float64 `yaml:"cost"`
	CollectionRate     float64 `yaml:"collection_rate"` // Resources per second
	Capacity           float64 `yaml:"capacity"`
	TransferThreshold  float64 `yaml:"transfer_threshold"` // Fraction of capacity
	UpgradeCost        float64 `yaml:"upgrade_cost"`
	CapacityMultiplier float64 `yaml:"capacity_multiplier"`
	RateMultiplier     float64 `yaml:"rate_multiplier"`
}

// EnemiesConfig holds per-variant enemy parameters.
type EnemiesConfig struct {
	Radius float64     `yaml:"radius"`
	Basic  EnemyConfig `yaml:"basic"`
	Fast   EnemyConfig `yaml:"fast"`
}

// EnemyConfig defines one enemy variant. Speed is in world units per tick.
type EnemyConfig struct {
	Health        float64 `yaml:"health"`
	Speed         float64 `yaml:"speed"`
	Damage        float64 `yaml:"damage"`
	Reward        float64 `yaml:"reward"`
	EvasionChance float64 `yaml:"evasion_chance"`  // Per-tick probability, evasive variant only
	MaxDeflection float64 `yaml:"max_deflection"` // Degrees, evasive variant only
}

// ProjectileConfig defines projectile geometry.
type ProjectileConfig struct {
	Radius float64 `yaml:"radius"`
}

// WavesConfig defines wave sizing, spawn cadence and escalation.
type WavesConfig struct {
	BaseSize            float64 `yaml:"base_size"`
	SizePerWave         float64 `yaml:"size_per_wave"`
	InitialSpawnRate    float64 `yaml:"initial_spawn_rate"` // Spawns per second
	SpawnRateGrowth     float64 `yaml:"spawn_rate_growth"`
	MaxSpawnRate        float64 `yaml:"max_spawn_rate"`
	InitialDifficulty   float64 `yaml:"initial_difficulty"`
	DifficultyStep      float64 `yaml:"difficulty_step"`
	EscalationEnabled   bool    `yaml:"escalation_enabled"`
	EvasiveFromWave     int     `yaml:"evasive_from_wave"`
	EvasivePercentStep  float64 `yaml:"evasive_percent_step"` // Percent per wave number
	EvasivePercentLimit float64 `yaml:"evasive_percent_limit"`
}

// EconomyConfig defines how defeats pay out.
type EconomyConfig struct {
	// RewardShare is the fraction of an enemy's reward credited to planet
	// resources on defeat, on top of the full reward counted as score.
	RewardShare float64 `yaml:"reward_share"`
}

// DifficultyPreset represents a named difficulty level.
type DifficultyPreset string

const (
	DifficultyEasy   DifficultyPreset = "easy"
	DifficultyNormal DifficultyPreset = "normal"
	DifficultyHard   DifficultyPreset = "hard"
	DifficultyFixed  DifficultyPreset = "fixed"
)

// ParsePreset converts a CLI string into a preset. Unknown or empty
// strings yield "" which means "leave the config untouched".
func ParsePreset(s string) DifficultyPreset {
	switch DifficultyPreset(s) {
	case DifficultyEasy, DifficultyNormal, DifficultyHard, DifficultyFixed:
		return DifficultyPreset(s)
	default:
		return ""
	}
}
