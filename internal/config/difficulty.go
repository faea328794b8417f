package config

import (
	"errors"
	"fmt"
)

// ApplyPreset modifies the config based on a difficulty preset.
func ApplyPreset(cfg *Config, preset DifficultyPreset) {
	switch preset {
	case DifficultyEasy:
		cfg.Planet.StartingResources *= 1.5
		cfg.Planet.Health *= 1.5
		cfg.Waves.InitialSpawnRate *= 0.8
	case DifficultyHard:
		cfg.Planet.StartingResources *= 0.7
		cfg.Planet.Health *= 0.75
		cfg.Waves.InitialSpawnRate *= 1.5
	case DifficultyFixed:
		cfg.Waves.EscalationEnabled = false
	}
	cfg.Normalize()
}

// Normalize floors every per-second rate at MinRate.
func (c *Config) Normalize() {
	if c.MinRate <= 0 {
		c.MinRate = 0.01
	}
	floor := func(v *float64) {
		if *v < c.MinRate {
			*v = c.MinRate
		}
	}
	floor(&c.Defenses.Laser.FireRate)
	floor(&c.Defenses.Collector.CollectionRate)
	floor(&c.Waves.InitialSpawnRate)
	floor(&c.Waves.MaxSpawnRate)
	if c.Waves.InitialSpawnRate > c.Waves.MaxSpawnRate {
		c.Waves.InitialSpawnRate = c.Waves.MaxSpawnRate
	}
}

// Validate reports every field that would make the simulation degenerate.
func (c Config) Validate() error {
	var errs []error
	positive := func(name string, v float64) {
		if v <= 0 {
			errs = append(errs, fmt.Errorf("%s must be positive, got %v", name, v))
		}
	}
	nonNegative := func(name string, v float64) {
		if v < 0 {
			errs = append(errs, fmt.Errorf("%s must not be negative, got %v", name, v))
		}
	}

	positive("screen.width", c.Screen.Width)
	positive("screen.height", c.Screen.Height)
	positive("planet.radius", c.Planet.Radius)
	positive("planet.health", c.Planet.Health)
	nonNegative("planet.starting_resources", c.Planet.StartingResources)
	nonNegative("planet.shield.cost", c.Planet.Shield.Cost)
	if c.Planet.Shield.MaxLevel < 0 {
		errs = append(errs, fmt.Errorf("planet.shield.max_level must not be negative, got %d", c.Planet.Shield.MaxLevel))
	}
	if total := float64(c.Planet.Shield.MaxLevel) * c.Planet.Shield.ReductionPerLevel; total >= 1 || total < 0 {
		errs = append(errs, fmt.Errorf("shield reduction at max level must be in [0, 1), got %v", total))
	}
	nonNegative("placement.margin", c.Placement.Margin)
	if c.Placement.MaxOrbitalRadius < c.Planet.Radius+c.Placement.Margin {
		errs = append(errs, fmt.Errorf("placement annulus is empty: max_orbital_radius %v < %v",
			c.Placement.MaxOrbitalRadius, c.Planet.Radius+c.Placement.Margin))
	}
	nonNegative("defenses.laser.cost", c.Defenses.Laser.Cost)
	positive("defenses.laser.projectile_speed", c.Defenses.Laser.ProjectileSpeed)
	nonNegative("defenses.collector.cost", c.Defenses.Collector.Cost)
	positive("defenses.collector.capacity", c.Defenses.Collector.Capacity)
	positive("defenses.collector.transfer_threshold", c.Defenses.Collector.TransferThreshold)
	positive("enemies.radius", c.Enemies.Radius)
	positive("enemies.basic.health", c.Enemies.Basic.Health)
	positive("enemies.fast.health", c.Enemies.Fast.Health)
	nonNegative("enemies.basic.speed", c.Enemies.Basic.Speed)
	nonNegative("enemies.fast.speed", c.Enemies.Fast.Speed)
	positive("projectile.radius", c.Projectile.Radius)
	nonNegative("waves.base_size", c.Waves.BaseSize)
	nonNegative("waves.size_per_wave", c.Waves.SizePerWave)
	nonNegative("economy.reward_share", c.Economy.RewardShare)

	return errors.Join(errs...)
}
