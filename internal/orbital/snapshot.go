package orbital

import (
	"encoding/hex"

	"github.com/vmihailenco/msgpack/v5"
	"lukechampine.com/blake3"
)

// Snapshot is a read-only copy of the engine state at a tick boundary.
// Renderers and tests read it; it holds no references into the engine.
type Snapshot struct {
	Tick     uint64  `msgpack:"tick"`
	Clock    int64   `msgpack:"clock"`
	GameOver bool    `msgpack:"game_over"`
	Score    float64 `msgpack:"score"`
	Selected string  `msgpack:"selected"`

	Planet      PlanetView       `msgpack:"planet"`
	Defenses    []DefenseView    `msgpack:"defenses"`
	Enemies     []EnemyView      `msgpack:"enemies"`
	Projectiles []ProjectileView `msgpack:"projectiles"`
	Wave        WaveView         `msgpack:"wave"`

	RNGState uint64 `msgpack:"rng"`
}

// PlanetView is the renderable planet state.
type PlanetView struct {
	X           float64 `msgpack:"x"`
	Y           float64 `msgpack:"y"`
	Radius      float64 `msgpack:"r"`
	Health      float64 `msgpack:"hp"`
	Resources   float64 `msgpack:"res"`
	ShieldLevel int     `msgpack:"shield"`
}

// DefenseView is the renderable state of one defense. Fill is the collector
// storage fraction and zero for lasers.
type DefenseView struct {
	ID            uint64  `msgpack:"id"`
	Kind          string  `msgpack:"kind"`
	X             float64 `msgpack:"x"`
	Y             float64 `msgpack:"y"`
	OrbitalRadius float64 `msgpack:"orbit"`
	Angle         float64 `msgpack:"angle"`
	Level         int     `msgpack:"lvl"`
	Fill          float64 `msgpack:"fill"`
	ShotsFired    int     `msgpack:"fired"`
	ShotsHit      int     `msgpack:"hit"`
}

// EnemyView is the renderable state of one enemy.
type EnemyView struct {
	ID       uint64  `msgpack:"id"`
	Kind     string  `msgpack:"kind"`
	X        float64 `msgpack:"x"`
	Y        float64 `msgpack:"y"`
	Radius   float64 `msgpack:"r"`
	Health   float64 `msgpack:"hp"`
	Fraction float64 `msgpack:"frac"` // Health over max health
}

// ProjectileView is the renderable state of one projectile.
type ProjectileView struct {
	ID     uint64  `msgpack:"id"`
	X      float64 `msgpack:"x"`
	Y      float64 `msgpack:"y"`
	Radius float64 `msgpack:"r"`
}

// WaveView is the wave status shown to the player.
type WaveView struct {
	Current        int     `msgpack:"wave"`
	EnemiesInWave  int     `msgpack:"quota"`
	EnemiesSpawned int     `msgpack:"spawned"`
	InProgress     bool    `msgpack:"in_progress"`
	Difficulty     float64 `msgpack:"difficulty"`
	SpawnRate      float64 `msgpack:"spawn_rate"`
}

type stateful interface {
	State() uint64
}

// Snapshot captures the current state.
func (e *Engine) Snapshot() Snapshot {
	p := e.planet
	snap := Snapshot{
		Tick:     e.tick,
		Clock:    e.clock,
		GameOver: e.gameOver,
		Score:    e.score,
		Selected: e.selected.String(),
		Planet: PlanetView{
			X:           p.Position.X,
			Y:           p.Position.Y,
			Radius:      p.Radius,
			Health:      p.Health,
			Resources:   p.Resources,
			ShieldLevel: p.ShieldLevel,
		},
		Defenses:    make([]DefenseView, 0, len(e.defenses)),
		Enemies:     make([]EnemyView, 0, len(e.enemies)),
		Projectiles: make([]ProjectileView, 0, len(e.projectiles)),
		Wave: WaveView{
			Current:        e.waves.CurrentWave,
			EnemiesInWave:  e.waves.EnemiesInWave,
			EnemiesSpawned: e.waves.EnemiesSpawned,
			InProgress:     e.waveInProgress,
			Difficulty:     e.waves.DifficultyLevel,
			SpawnRate:      e.waves.SpawnRate,
		},
	}

	for _, d := range e.defenses {
		v := DefenseView{
			ID:            d.ID,
			Kind:          d.Kind.String(),
			X:             d.Position.X,
			Y:             d.Position.Y,
			OrbitalRadius: d.OrbitalRadius,
			Angle:         d.Angle,
			Level:         d.UpgradeLevel,
			ShotsFired:    d.ShotsFired,
			ShotsHit:      d.ShotsHit,
		}
		if c := d.Collector; c != nil && c.Capacity > 0 {
			v.Fill = c.Storage / c.Capacity
		}
		snap.Defenses = append(snap.Defenses, v)
	}
	for _, en := range e.enemies {
		frac := 0.0
		if en.MaxHealth > 0 {
			frac = en.Health / en.MaxHealth
		}
		snap.Enemies = append(snap.Enemies, EnemyView{
			ID:       en.ID,
			Kind:     en.Kind.String(),
			X:        en.Position.X,
			Y:        en.Position.Y,
			Radius:   en.Radius,
			Health:   en.Health,
			Fraction: frac,
		})
	}
	for _, pr := range e.projectiles {
		snap.Projectiles = append(snap.Projectiles, ProjectileView{
			ID:     pr.ID,
			X:      pr.Position.X,
			Y:      pr.Position.Y,
			Radius: pr.Radius,
		})
	}
	if s, ok := e.rng.(stateful); ok {
		snap.RNGState = s.State()
	}
	return snap
}

// Encode returns the msgpack encoding of the snapshot.
func (s *Snapshot) Encode() ([]byte, error) {
	return msgpack.Marshal(s)
}

// Hash returns a hex BLAKE3 digest of the encoded snapshot. Equal states
// hash equal, which is what determinism tests compare.
func (s *Snapshot) Hash() string {
	data, err := s.Encode()
	if err != nil {
		return ""
	}
	sum := blake3.Sum256(data)
	return hex.EncodeToString(sum[:])
}
