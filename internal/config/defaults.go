package config

import (
	_ "embed"
)

//go:embed defaults/orbital.yaml
var defaultOrbitalYAML []byte

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Screen: ScreenConfig{
			Width:  800,
			Height: 800,
		},
		Planet: PlanetConfig{
			Radius:            50,
			Health:            100,
			StartingResources: 500,
			Shield: ShieldConfig{
				Cost:              100,
				MaxLevel:          5,
				ReductionPerLevel: 0.1,
			},
		},
		Placement: PlacementConfig{
			Margin:           20,
			MaxOrbitalRadius: 350,
		},
		Defenses: DefensesConfig{
			Laser: LaserConfig{
				Cost:               150,
				Damage:             25,
				FireRate:           1.5,
				ProjectileSpeed:    10,
				UpgradeCost:        100,
				DamageMultiplier:   1.2,
				FireRateMultiplier: 1.1,
			},
			Collector: CollectorConfig{
				Cost:               100,
				CollectionRate:     10,
				Capacity:           100,
				TransferThreshold:  0.9,
				UpgradeCost:        75,
				CapacityMultiplier: 1.5,
				RateMultiplier:     1.2,
			},
		},
		Enemies: EnemiesConfig{
			Radius: 15,
			Basic: EnemyConfig{
				Health: 50,
				Speed:  1,
				Damage: 10,
				Reward: 25,
			},
			Fast: EnemyConfig{
				Health:        30,
				Speed:         2.5,
				Damage:        5,
				Reward:        35,
				EvasionChance: 0.2,
				MaxDeflection: 45,
			},
		},
		Projectile: ProjectileConfig{
			Radius: 5,
		},
		Waves: WavesConfig{
			BaseSize:            5,
			SizePerWave:         1.5,
			InitialSpawnRate:    1.0,
			SpawnRateGrowth:     1.1,
			MaxSpawnRate:        5.0,
			InitialDifficulty:   1.0,
			DifficultyStep:      0.1,
			EscalationEnabled:   true,
			EvasiveFromWave:     3,
			EvasivePercentStep:  10,
			EvasivePercentLimit: 80,
		},
		Economy: EconomyConfig{
			RewardShare: 0.5,
		},
		MinRate: 0.01,
	}
}

// DefaultYAML returns the embedded default YAML.
func DefaultYAML() []byte {
	return defaultOrbitalYAML
}
