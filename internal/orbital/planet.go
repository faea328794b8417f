// Package orbital implements the simulation core of the orbital defense
// game: the planet, its defenses, inbound enemies, projectiles, the wave
// manager and the per-tick engine that ties them together.
//
// The package never draws or stores anything. Presentation and persistence
// layers read Snapshots and consume Events.
package orbital

import (
	"github.com/vovakirdan/orbital-defense/internal/config"
	"github.com/vovakirdan/orbital-defense/internal/core"
)

// Planet is the defended body at the center of the play area.
type Planet struct {
	Position    core.Vec2
	Radius      float64
	Health      float64
	Resources   float64
	ShieldLevel int

	shield config.ShieldConfig
}

// NewPlanet creates a planet at pos with the configured health and
// starting resources.
func NewPlanet(pos core.Vec2, cfg config.PlanetConfig) *Planet {
	return &Planet{
		Position:  pos,
		Radius:    cfg.Radius,
		Health:    cfg.Health,
		Resources: cfg.StartingResources,
		shield:    cfg.Shield,
	}
}

// DamageFactor returns the fraction of incoming damage that gets through
// the shield.
func (p *Planet) DamageFactor() float64 {
	return 1 - float64(p.ShieldLevel)*p.shield.ReductionPerLevel
}

// TakeDamage reduces health by amount scaled by the shield and returns the
// damage actually applied. Health may go negative.
func (p *Planet) TakeDamage(amount float64) float64 {
	applied := amount * p.DamageFactor()
	p.Health -= applied
	return applied
}

// AddResources credits amount to the planet. There is no upper bound.
func (p *Planet) AddResources(amount float64) {
	p.Resources += amount
}

// Spend deducts cost if the planet can afford it.
func (p *Planet) Spend(cost float64) bool {
	if p.Resources < cost {
		return false
	}
	p.Resources -= cost
	return true
}

// UpgradeShield raises the shield one level for the shield cost.
// It is a no-op returning false when resources are short or the shield is
// already at its maximum level.
func (p *Planet) UpgradeShield() bool {
	if p.ShieldLevel >= p.shield.MaxLevel || p.Resources < p.shield.Cost {
		return false
	}
	p.Resources -= p.shield.Cost
	p.ShieldLevel++
	return true
}

// IsDestroyed reports whether health has dropped to zero or below.
func (p *Planet) IsDestroyed() bool {
	return p.Health <= 0
}
