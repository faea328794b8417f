package orbital

import (
	"github.com/vovakirdan/orbital-defense/internal/core"
)

// Projectile is a straight-line shot fired by a laser turret.
type Projectile struct {
	ID        uint64
	SourceID  uint64 // Defense that fired it
	Position  core.Vec2
	Angle     float64 // Fixed at creation
	Damage    float64
	Speed     float64 // World units per tick
	Radius    float64
	Destroyed bool
}

// Advance moves the projectile along its angle and marks it destroyed once
// it leaves the play area.
func (p *Projectile) Advance(bounds core.Bounds) {
	p.Position = p.Position.Add(core.FromAngle(p.Angle, p.Speed))
	if !bounds.Contains(p.Position) {
		p.Destroyed = true
	}
}

// ResolveCollision hits the first enemy in list order that overlaps the
// projectile, damages it and destroys the projectile. Enemies already
// destroyed this tick are ignored. A projectile that left the play area on
// this tick's advance can still land its hit. Returns nil when nothing was
// hit.
func (p *Projectile) ResolveCollision(enemies []*Enemy) *Enemy {
	for _, e := range enemies {
		if e.Destroyed {
			continue
		}
		if p.Position.Dist(e.Position) < e.Radius+p.Radius {
			e.TakeDamage(p.Damage)
			p.Destroyed = true
			return e
		}
	}
	return nil
}
