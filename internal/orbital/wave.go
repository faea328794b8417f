package orbital

import (
	"math"

	"github.com/vovakirdan/orbital-defense/internal/config"
	"github.com/vovakirdan/orbital-defense/internal/core"
)

// WavePhase is the spawning state of the wave manager.
type WavePhase int

const (
	PhaseIdle     WavePhase = iota // No quota outstanding
	PhaseSpawning                  // Wave active, still emitting enemies
)

func (p WavePhase) String() string {
	if p == PhaseSpawning {
		return "spawning"
	}
	return "idle"
}

// WaveOutcome records how a wave ended.
type WaveOutcome struct {
	Wave    int
	Success bool
}

// WaveManager decides how many enemies a wave has, which variant each one
// is and when it appears. It owns only its scheduling state; spawned
// enemies belong to the caller.
type WaveManager struct {
	CurrentWave     int
	DifficultyLevel float64
	SpawnRate       float64 // Spawns per second
	EnemiesInWave   int
	EnemiesSpawned  int
	LastSpawnTime   int64
	Active          bool
	Outcomes        []WaveOutcome

	cfg     config.WavesConfig
	enemies config.EnemiesConfig
	minRate float64
	center  core.Vec2
	radius  float64
	rng     Rand
}

// NewWaveManager creates an idle manager spawning around center on a circle
// large enough to be outside the play area.
func NewWaveManager(cfg config.Config, center core.Vec2, rng Rand) *WaveManager {
	return &WaveManager{
		DifficultyLevel: cfg.Waves.InitialDifficulty,
		SpawnRate:       cfg.Waves.InitialSpawnRate,
		cfg:             cfg.Waves,
		enemies:         cfg.Enemies,
		minRate:         cfg.MinRate,
		center:          center,
		radius:          math.Max(cfg.Screen.Width, cfg.Screen.Height),
		rng:             rng,
	}
}

// WaveSize returns the enemy quota of the given wave number.
func WaveSize(cfg config.WavesConfig, wave int) int {
	return int(math.Floor(cfg.BaseSize + float64(wave)*cfg.SizePerWave))
}

// Phase reports the current spawning state.
func (w *WaveManager) Phase() WavePhase {
	if w.Active {
		return PhaseSpawning
	}
	return PhaseIdle
}

// StartWave begins the next wave and returns its number. The spawn timer
// restarts at now so the first enemy arrives one spawn interval later.
func (w *WaveManager) StartWave(now int64) int {
	w.CurrentWave++
	w.EnemiesInWave = WaveSize(w.cfg, w.CurrentWave)
	w.EnemiesSpawned = 0
	w.LastSpawnTime = now
	w.Active = w.EnemiesInWave > 0
	return w.CurrentWave
}

// SpawnInterval returns the minimum time between spawns in milliseconds.
func (w *WaveManager) SpawnInterval() float64 {
	return 1000 / core.FloorRate(w.SpawnRate, w.minRate)
}

// MaybeSpawn returns at most one new enemy if the wave still has quota and
// the spawn interval has elapsed. The manager goes idle once the quota is
// reached.
func (w *WaveManager) MaybeSpawn(now int64) *Enemy {
	if !w.Active || w.EnemiesSpawned >= w.EnemiesInWave {
		return nil
	}
	if float64(now-w.LastSpawnTime) < w.SpawnInterval() {
		return nil
	}

	angle := w.rng.Float64() * 2 * math.Pi
	pos := w.center.Add(core.FromAngle(angle, w.radius))
	enemy := NewEnemy(w.chooseKind(), pos, now, w.enemies)

	w.EnemiesSpawned++
	w.LastSpawnTime = now
	if w.EnemiesSpawned >= w.EnemiesInWave {
		w.Active = false
	}
	return enemy
}

// EvasiveChance returns the percentage of evasive enemies in the current
// wave.
func (w *WaveManager) EvasiveChance() float64 {
	if w.CurrentWave < w.cfg.EvasiveFromWave {
		return 0
	}
	return math.Min(w.cfg.EvasivePercentLimit, float64(w.CurrentWave)*w.cfg.EvasivePercentStep)
}

func (w *WaveManager) chooseKind() EnemyKind {
	chance := w.EvasiveChance()
	if chance <= 0 {
		return EnemyBasic
	}
	if w.rng.Float64()*100 < chance {
		return EnemyFast
	}
	return EnemyBasic
}

// CompleteWave records the outcome of the current wave. A successful wave
// raises difficulty and spawn rate unless escalation is disabled.
func (w *WaveManager) CompleteWave(success bool) {
	w.Outcomes = append(w.Outcomes, WaveOutcome{Wave: w.CurrentWave, Success: success})
	if !success || !w.cfg.EscalationEnabled {
		return
	}
	w.DifficultyLevel += w.cfg.DifficultyStep
	w.SpawnRate = math.Min(w.cfg.MaxSpawnRate, w.SpawnRate*w.cfg.SpawnRateGrowth)
}

// Remaining returns how many enemies of the current wave are still to spawn.
func (w *WaveManager) Remaining() int {
	return w.EnemiesInWave - w.EnemiesSpawned
}
