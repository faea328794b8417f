package orbital

import (
	"math"

	"github.com/vovakirdan/orbital-defense/internal/config"
	"github.com/vovakirdan/orbital-defense/internal/core"
)

// Rand is the random source the simulation draws from. *core.RNG
// satisfies it; tests may substitute a scripted source.
type Rand interface {
	Float64() float64
}

// EnemyKind tags the enemy variant.
type EnemyKind int

const (
	EnemyBasic EnemyKind = iota // Direct pursuit
	EnemyFast                   // Pursuit with lateral evasion
)

// String returns the stable name used in events and persistence.
func (k EnemyKind) String() string {
	switch k {
	case EnemyBasic:
		return "basic"
	case EnemyFast:
		return "fast"
	default:
		return "unknown"
	}
}

// Movement selects how an enemy approaches the planet.
type Movement int

const (
	MovementDirect Movement = iota
	MovementEvasive
)

// Enemy is an inbound attacker.
type Enemy struct {
	ID       uint64
	Kind     EnemyKind
	Movement Movement
	Position core.Vec2
	Radius   float64

	Health    float64
	MaxHealth float64
	Speed     float64 // World units per tick
	Damage    float64
	Reward    float64

	EvasionChance float64 // Per-tick probability of a deflection
	MaxDeflection float64 // Radians

	SpawnTime       int64   // Simulation clock (ms) at spawn
	ClosestApproach float64 // Minimum observed distance to the planet center
	Destroyed       bool
}

// NewEnemy builds an enemy of the given kind at pos.
func NewEnemy(kind EnemyKind, pos core.Vec2, spawnTime int64, cfg config.EnemiesConfig) *Enemy {
	var ec config.EnemyConfig
	movement := MovementDirect
	switch kind {
	case EnemyFast:
		ec = cfg.Fast
		movement = MovementEvasive
	default:
		ec = cfg.Basic
	}

	return &Enemy{
		Kind:            kind,
		Movement:        movement,
		Position:        pos,
		Radius:          cfg.Radius,
		Health:          ec.Health,
		MaxHealth:       ec.Health,
		Speed:           ec.Speed,
		Damage:          ec.Damage,
		Reward:          ec.Reward,
		EvasionChance:   ec.EvasionChance,
		MaxDeflection:   ec.MaxDeflection * math.Pi / 180,
		SpawnTime:       spawnTime,
		ClosestApproach: math.Inf(1),
	}
}

// Advance moves the enemy one tick toward the planet and reports whether it
// has reached the planet surface. Evasive enemies may first swing around
// the planet by a bounded random angle.
func (e *Enemy) Advance(planet core.Vec2, planetRadius float64, rng Rand) bool {
	if e.Movement == MovementEvasive && rng != nil {
		e.evade(planet, rng)
	}

	delta := planet.Sub(e.Position)
	distance := delta.Len()
	e.ClosestApproach = math.Min(e.ClosestApproach, distance)

	// A zero delta normalizes to zero: no movement.
	e.Position = e.Position.Add(delta.Normalize().Scale(e.Speed))

	return distance <= planetRadius+e.Radius
}

// evade rotates the enemy around the planet center keeping its distance.
func (e *Enemy) evade(planet core.Vec2, rng Rand) {
	if rng.Float64() >= e.EvasionChance {
		return
	}
	deflection := -e.MaxDeflection + 2*e.MaxDeflection*rng.Float64()
	e.Position = e.Position.RotateAround(planet, deflection)
}

// TakeDamage subtracts amount from health and reports whether the enemy is
// now destroyed.
func (e *Enemy) TakeDamage(amount float64) bool {
	e.Health -= amount
	e.Destroyed = e.Health <= 0
	return e.Destroyed
}

// OnImpact applies this enemy's damage to the planet and returns the damage
// actually dealt after shields.
func (e *Enemy) OnImpact(p *Planet) float64 {
	return p.TakeDamage(e.Damage)
}
