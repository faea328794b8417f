package orbital

import (
	"math"

	"github.com/vovakirdan/orbital-defense/internal/config"
	"github.com/vovakirdan/orbital-defense/internal/core"
)

// DefenseKind tags the defense variant.
type DefenseKind int

const (
	DefenseLaser     DefenseKind = iota // Fires projectiles at the nearest enemy
	DefenseCollector                    // Gathers resources for the planet
)

// String returns the stable name used in events and persistence.
func (k DefenseKind) String() string {
	switch k {
	case DefenseLaser:
		return "laser_turret"
	case DefenseCollector:
		return "resource_collector"
	default:
		return "unknown"
	}
}

// Valid reports whether k is a known variant.
func (k DefenseKind) Valid() bool {
	return k == DefenseLaser || k == DefenseCollector
}

// ParseDefenseKind accepts the short and long names of a variant.
func ParseDefenseKind(s string) (DefenseKind, bool) {
	switch s {
	case "laser", "laser_turret":
		return DefenseLaser, true
	case "collector", "resource_collector":
		return DefenseCollector, true
	default:
		return 0, false
	}
}

// Defense is a structure placed in orbit around the planet. Defenses are
// never destroyed during a session.
type Defense struct {
	ID            uint64
	Kind          DefenseKind
	Position      core.Vec2
	OrbitalRadius float64
	Angle         float64 // Bearing from the planet center, radians
	Cost          float64

	Damage          float64
	FireRate        float64 // Shots per second
	ProjectileSpeed float64
	UpgradeLevel    int
	LastFireTime    int64 // Simulation clock (ms) of the last shot

	ShotsFired  int
	ShotsHit    int
	DamageDealt float64

	// Collector is non-nil only for DefenseCollector.
	Collector *Collector

	minRate     float64
	upgradeCost float64
	damageMul   float64
	rateMul     float64
}

// Collector is the payload of a resource collector.
type Collector struct {
	Rate      float64 // Resources per second
	Capacity  float64
	Storage   float64
	Threshold float64 // Fraction of capacity that triggers a transfer

	capacityMul float64
	rateMul     float64
}

// NewDefense builds a defense of the given kind at pos, orbiting center.
// The caller assigns the ID.
func NewDefense(kind DefenseKind, pos, center core.Vec2, cfg config.Config) *Defense {
	d := &Defense{
		Kind:          kind,
		Position:      pos,
		OrbitalRadius: pos.Dist(center),
		Angle:         center.AngleTo(pos),
		UpgradeLevel:  1,
		minRate:       cfg.MinRate,
	}

	switch kind {
	case DefenseLaser:
		l := cfg.Defenses.Laser
		d.Cost = l.Cost
		d.Damage = l.Damage
		d.FireRate = l.FireRate
		d.ProjectileSpeed = l.ProjectileSpeed
		d.upgradeCost = l.UpgradeCost
		d.damageMul = l.DamageMultiplier
		d.rateMul = l.FireRateMultiplier
	case DefenseCollector:
		c := cfg.Defenses.Collector
		d.Cost = c.Cost
		d.upgradeCost = c.UpgradeCost
		d.damageMul = cfg.Defenses.Laser.DamageMultiplier
		d.rateMul = cfg.Defenses.Laser.FireRateMultiplier
		d.Collector = &Collector{
			Rate:        c.CollectionRate,
			Capacity:    c.Capacity,
			Threshold:   c.TransferThreshold,
			capacityMul: c.CapacityMultiplier,
			rateMul:     c.RateMultiplier,
		}
	}
	return d
}

// CanFire reports whether this variant shoots.
func (d *Defense) CanFire() bool {
	return d.Kind == DefenseLaser
}

// Cooldown returns the minimum time between shots in milliseconds.
func (d *Defense) Cooldown() float64 {
	return 1000 / core.FloorRate(d.FireRate, d.minRate)
}

// UpgradeCost returns the resources needed for the next upgrade.
func (d *Defense) UpgradeCost() float64 {
	return d.upgradeCost
}

// TryFire shoots at the nearest enemy if the cooldown has elapsed and an
// enemy exists. The projectile travels along the bearing to the target's
// current position.
func (d *Defense) TryFire(now int64, enemies []*Enemy, projectileRadius float64) *Projectile {
	if !d.CanFire() {
		return nil
	}
	if float64(now-d.LastFireTime) < d.Cooldown() {
		return nil
	}
	target := d.Nearest(enemies)
	if target == nil {
		return nil
	}

	d.LastFireTime = now
	d.ShotsFired++
	return &Projectile{
		SourceID: d.ID,
		Position: d.Position,
		Angle:    d.Position.AngleTo(target.Position),
		Damage:   d.Damage,
		Speed:    d.ProjectileSpeed,
		Radius:   projectileRadius,
	}
}

// Nearest returns the live enemy closest to the defense. Ties keep the
// first one encountered so the choice follows list order.
func (d *Defense) Nearest(enemies []*Enemy) *Enemy {
	var closest *Enemy
	best := math.Inf(1)
	for _, e := range enemies {
		if e.Destroyed {
			continue
		}
		if dist := d.Position.Dist(e.Position); dist < best {
			best = dist
			closest = e
		}
	}
	return closest
}

// Upgrade raises the level and compounds damage and fire rate. Collectors
// also grow their capacity and collection rate.
func (d *Defense) Upgrade() {
	d.UpgradeLevel++
	d.Damage *= d.damageMul
	d.FireRate *= d.rateMul
	if d.Collector != nil {
		d.Collector.UpgradeCapacity()
	}
}

// RecordHit credits a projectile hit fired by this defense.
func (d *Defense) RecordHit(damage float64) {
	d.ShotsHit++
	d.DamageDealt += damage
}

// Collect accumulates resources for dtMs milliseconds, limited by the
// remaining capacity, and returns the amount gathered.
func (c *Collector) Collect(dtMs float64) float64 {
	amount := c.Rate * dtMs / 1000
	room := c.Capacity - c.Storage
	collected := math.Max(0, math.Min(amount, room))
	c.Storage += collected
	return collected
}

// ReadyToTransfer reports whether storage reached the transfer threshold.
func (c *Collector) ReadyToTransfer() bool {
	return c.Storage >= c.Capacity*c.Threshold
}

// Transfer drains and returns the stored resources.
func (c *Collector) Transfer() float64 {
	amount := c.Storage
	c.Storage = 0
	return amount
}

// UpgradeCapacity grows capacity and collection rate.
func (c *Collector) UpgradeCapacity() {
	c.Capacity *= c.capacityMul
	c.Rate *= c.rateMul
}
