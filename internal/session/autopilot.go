package session

import (
	"context"
	"math"

	"github.com/vovakirdan/orbital-defense/internal/core"
	"github.com/vovakirdan/orbital-defense/internal/orbital"
)

// Autopilot plays a session without a human: it places defenses evenly on
// a ring around the planet, starts a wave whenever none is running and
// spends spare resources on upgrades.
type Autopilot struct {
	Lasers     int
	Collectors int
	Radius     float64 // Ring radius; zero picks the middle of the annulus

	// Reserve is kept in the bank before buying upgrades.
	Reserve float64

	queue  []slot
	queued bool
}

type slot struct {
	kind orbital.DefenseKind
	pos  core.Vec2
}

// Act issues this tick's commands to e.
func (a *Autopilot) Act(e *orbital.Engine) {
	if e.GameOver() {
		return
	}
	if !a.queued {
		a.plan(e)
	}

	// Placements are retried in order until each one is paid for.
	for len(a.queue) > 0 {
		s := a.queue[0]
		res := e.PlaceDefense(s.pos, s.kind)
		if res == orbital.PlacementInsufficientResources {
			break
		}
		a.queue = a.queue[1:]
	}

	if len(a.queue) == 0 {
		a.upgrade(e)
	}

	if !e.WaveInProgress() {
		e.StartWave()
	}
}

func (a *Autopilot) plan(e *orbital.Engine) {
	a.queued = true

	cfg := e.Config()
	radius := a.Radius
	if radius <= 0 {
		inner := cfg.Planet.Radius + cfg.Placement.Margin
		radius = (inner + cfg.Placement.MaxOrbitalRadius) / 2
	}

	total := a.Lasers + a.Collectors
	if total == 0 {
		return
	}
	center := e.Planet().Position
	step := 2 * math.Pi / float64(total)

	// Kinds alternate around the ring; collectors are queued first so the
	// economy starts early.
	var collectors, lasers []slot
	for i := range total {
		pos := center.Add(core.FromAngle(float64(i)*step-math.Pi/2, radius))
		wantCollector := i%2 == 1 || len(lasers) == a.Lasers
		if wantCollector && len(collectors) < a.Collectors {
			collectors = append(collectors, slot{kind: orbital.DefenseCollector, pos: pos})
		} else {
			lasers = append(lasers, slot{kind: orbital.DefenseLaser, pos: pos})
		}
	}
	a.queue = append(collectors, lasers...)
}

func (a *Autopilot) upgrade(e *orbital.Engine) {
	planet := e.Planet()
	if planet.Resources-a.Reserve >= e.Config().Planet.Shield.Cost && e.UpgradeShield() {
		return
	}

	// Lowest-level laser first.
	var pick *orbital.Defense
	for _, d := range e.Defenses() {
		if !d.CanFire() {
			continue
		}
		if pick == nil || d.UpgradeLevel < pick.UpgradeLevel {
			pick = d
		}
	}
	if pick != nil && planet.Resources-a.Reserve >= pick.UpgradeCost() {
		e.UpgradeDefense(pick.ID)
	}
}

// Run steps s with pilot until the game ends, maxTicks have elapsed (zero
// means no limit) or ctx is cancelled.
func Run(ctx context.Context, s *Session, pilot *Autopilot, dtMs int64, maxTicks int) error {
	for n := 0; maxTicks <= 0 || n < maxTicks; n++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		if pilot != nil {
			pilot.Act(s.Engine)
		}
		if res := s.Engine.Step(dtMs); res.GameOver {
			return nil
		}
	}
	return nil
}
