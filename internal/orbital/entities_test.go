package orbital

import (
	"math"
	"testing"

	"github.com/vovakirdan/orbital-defense/internal/config"
	"github.com/vovakirdan/orbital-defense/internal/core"
)

const eps = 1e-9

func approx(a, b float64) bool {
	return math.Abs(a-b) < eps
}

// scriptedRand replays a fixed sequence of values.
type scriptedRand struct {
	vals []float64
	i    int
}

func (r *scriptedRand) Float64() float64 {
	if len(r.vals) == 0 {
		return 0
	}
	v := r.vals[r.i%len(r.vals)]
	r.i++
	return v
}

var center = core.V(400, 400)

func TestPlanetTakeDamage(t *testing.T) {
	tests := []struct {
		shield   int
		amount   float64
		expected float64
	}{
		{0, 100, 100},
		{1, 100, 90},
		{2, 100, 80},
		{5, 100, 50},
		{3, 0, 0},
		{0, 10, 10},
	}

	for _, tc := range tests {
		p := NewPlanet(center, config.Default().Planet)
		p.ShieldLevel = tc.shield
		before := p.Health

		applied := p.TakeDamage(tc.amount)
		if !approx(applied, tc.expected) {
			t.Errorf("TakeDamage(%v) at shield %d = %v, expected %v", tc.amount, tc.shield, applied, tc.expected)
		}
		if !approx(before-p.Health, tc.expected) {
			t.Errorf("health reduced by %v, expected %v", before-p.Health, tc.expected)
		}
	}
}

func TestPlanetHealthMayGoNegative(t *testing.T) {
	p := NewPlanet(center, config.Default().Planet)
	p.TakeDamage(150)
	if p.Health != -50 {
		t.Errorf("Health = %v, expected -50", p.Health)
	}
	if !p.IsDestroyed() {
		t.Error("planet with negative health should be destroyed")
	}
}

func TestPlanetUpgradeShield(t *testing.T) {
	tests := []struct {
		name      string
		resources float64
		level     int
		ok        bool
	}{
		{"affordable", 100, 0, true},
		{"short by one", 99, 0, false},
		{"at max level", 1000, 5, false},
		{"below max", 1000, 4, true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			p := NewPlanet(center, config.Default().Planet)
			p.Resources = tc.resources
			p.ShieldLevel = tc.level

			if got := p.UpgradeShield(); got != tc.ok {
				t.Fatalf("UpgradeShield() = %v, expected %v", got, tc.ok)
			}
			if tc.ok {
				if p.ShieldLevel != tc.level+1 || p.Resources != tc.resources-100 {
					t.Errorf("after upgrade: level %d resources %v", p.ShieldLevel, p.Resources)
				}
				return
			}
			if p.ShieldLevel != tc.level || p.Resources != tc.resources {
				t.Errorf("failed upgrade mutated state: level %d resources %v", p.ShieldLevel, p.Resources)
			}
		})
	}
}

func TestPlanetSpend(t *testing.T) {
	p := NewPlanet(center, config.Default().Planet)
	p.Resources = 150
	if !p.Spend(150) || p.Resources != 0 {
		t.Errorf("Spend(150) with 150 left %v", p.Resources)
	}
	if p.Spend(1) {
		t.Error("Spend(1) with 0 resources should fail")
	}
}

func newLaser() *Defense {
	return NewDefense(DefenseLaser, core.V(400, 250), center, config.Default())
}

func TestDefensePlacementGeometry(t *testing.T) {
	d := newLaser()
	if !approx(d.OrbitalRadius, 150) {
		t.Errorf("OrbitalRadius = %v, expected 150", d.OrbitalRadius)
	}
	if !approx(d.Angle, -math.Pi/2) {
		t.Errorf("Angle = %v, expected %v", d.Angle, -math.Pi/2)
	}
	if d.UpgradeLevel != 1 {
		t.Errorf("UpgradeLevel = %d, expected 1", d.UpgradeLevel)
	}
}

func TestDefenseFireCooldown(t *testing.T) {
	d := newLaser()
	enemies := []*Enemy{{Position: core.V(400, 100), Radius: 15, Health: 50}}
	cooldown := d.Cooldown()

	var fired []int64
	for now := int64(0); now <= 10000; now += 16 {
		if p := d.TryFire(now, enemies, 5); p != nil {
			fired = append(fired, now)
		}
	}

	if len(fired) < 2 {
		t.Fatalf("expected several shots, got %d", len(fired))
	}
	for i := 1; i < len(fired); i++ {
		if gap := float64(fired[i] - fired[i-1]); gap < cooldown {
			t.Errorf("shots %d and %d are %vms apart, cooldown is %vms", i-1, i, gap, cooldown)
		}
	}
	if d.ShotsFired != len(fired) {
		t.Errorf("ShotsFired = %d, expected %d", d.ShotsFired, len(fired))
	}
}

func TestDefenseNoTargetNoShot(t *testing.T) {
	d := newLaser()
	if p := d.TryFire(5000, nil, 5); p != nil {
		t.Error("TryFire() without enemies should return nil")
	}
	if d.ShotsFired != 0 || d.LastFireTime != 0 {
		t.Errorf("no-shot call changed state: fired %d last %d", d.ShotsFired, d.LastFireTime)
	}
}

func TestDefenseAimsAtNearest(t *testing.T) {
	d := newLaser()
	far := &Enemy{ID: 1, Position: core.V(400, 0)}
	near := &Enemy{ID: 2, Position: core.V(500, 250)}
	tie := &Enemy{ID: 3, Position: core.V(300, 250)}

	if got := d.Nearest([]*Enemy{far, near, tie}); got != near {
		t.Errorf("Nearest() = %+v, expected enemy 2 (first at minimum distance)", got)
	}

	p := d.TryFire(5000, []*Enemy{far, near}, 5)
	if p == nil {
		t.Fatal("TryFire() = nil, expected projectile")
	}
	if !approx(p.Angle, 0) {
		t.Errorf("projectile angle = %v, expected 0 (toward enemy 2)", p.Angle)
	}
	if p.Damage != d.Damage || p.Speed != d.ProjectileSpeed || p.Position != d.Position {
		t.Errorf("projectile %+v does not inherit defense stats", p)
	}
}

func TestDefenseUpgradeCompounds(t *testing.T) {
	d := newLaser()
	d.Upgrade()
	d.Upgrade()

	if d.UpgradeLevel != 3 {
		t.Errorf("UpgradeLevel = %d, expected 3", d.UpgradeLevel)
	}
	if !approx(d.Damage, 25*1.2*1.2) {
		t.Errorf("Damage = %v, expected %v", d.Damage, 25*1.2*1.2)
	}
	if !approx(d.FireRate, 1.5*1.1*1.1) {
		t.Errorf("FireRate = %v, expected %v", d.FireRate, 1.5*1.1*1.1)
	}
}

func TestCollectorCollectAndTransfer(t *testing.T) {
	d := NewDefense(DefenseCollector, core.V(500, 400), center, config.Default())
	c := d.Collector
	if c == nil {
		t.Fatal("collector payload missing")
	}
	if d.CanFire() {
		t.Error("collector should not fire")
	}

	for elapsed := 0; elapsed < 9000; elapsed += 100 {
		c.Collect(100)
	}
	if c.Storage < 90 {
		t.Errorf("Storage = %v after 9000ms, expected >= 90", c.Storage)
	}
	if !c.ReadyToTransfer() {
		t.Error("ReadyToTransfer() = false at 90% capacity")
	}

	amount := c.Transfer()
	if !approx(amount, 90) || c.Storage != 0 {
		t.Errorf("Transfer() = %v leaving %v, expected 90 leaving 0", amount, c.Storage)
	}
}

func TestCollectorRespectsCapacity(t *testing.T) {
	d := NewDefense(DefenseCollector, core.V(500, 400), center, config.Default())
	c := d.Collector

	got := c.Collect(20000)
	if got != 100 || c.Storage != 100 {
		t.Errorf("Collect(20000) = %v storage %v, expected capacity 100", got, c.Storage)
	}
	if c.Collect(1000) != 0 {
		t.Error("full collector should collect nothing")
	}
}

func TestCollectorUpgrade(t *testing.T) {
	d := NewDefense(DefenseCollector, core.V(500, 400), center, config.Default())
	d.Upgrade()
	if !approx(d.Collector.Capacity, 150) || !approx(d.Collector.Rate, 12) {
		t.Errorf("after upgrade capacity %v rate %v, expected 150 and 12", d.Collector.Capacity, d.Collector.Rate)
	}
}

func TestParseDefenseKind(t *testing.T) {
	tests := []struct {
		in   string
		kind DefenseKind
		ok   bool
	}{
		{"laser", DefenseLaser, true},
		{"laser_turret", DefenseLaser, true},
		{"collector", DefenseCollector, true},
		{"resource_collector", DefenseCollector, true},
		{"cannon", 0, false},
	}
	for _, tc := range tests {
		kind, ok := ParseDefenseKind(tc.in)
		if ok != tc.ok || (ok && kind != tc.kind) {
			t.Errorf("ParseDefenseKind(%q) = %v, %v, expected %v, %v", tc.in, kind, ok, tc.kind, tc.ok)
		}
	}
}

func TestEnemyTakeDamage(t *testing.T) {
	e := NewEnemy(EnemyBasic, core.V(0, 0), 0, config.Default().Enemies)

	if e.TakeDamage(25) {
		t.Error("destroyed after first hit of 25 on 50 health")
	}
	if e.Destroyed {
		t.Error("Destroyed flag set after first hit")
	}
	if !e.TakeDamage(25) || !e.Destroyed {
		t.Error("not destroyed after second hit")
	}
}

func TestEnemyAdvanceDirect(t *testing.T) {
	e := NewEnemy(EnemyBasic, core.V(500, 400), 0, config.Default().Enemies)

	if e.Advance(center, 50, nil) {
		t.Error("enemy 100 away should not impact")
	}
	if !approx(e.Position.X, 499) || !approx(e.Position.Y, 400) {
		t.Errorf("Position = %+v, expected (499, 400)", e.Position)
	}
	if e.ClosestApproach != 100 {
		t.Errorf("ClosestApproach = %v, expected 100", e.ClosestApproach)
	}
}

func TestEnemyImpactThreshold(t *testing.T) {
	tests := []struct {
		distance float64
		impact   bool
	}{
		{66, false},
		{65, true},
		{10, true},
		{0, true},
	}

	for _, tc := range tests {
		e := NewEnemy(EnemyBasic, core.V(400+tc.distance, 400), 0, config.Default().Enemies)
		if got := e.Advance(center, 50, nil); got != tc.impact {
			t.Errorf("Advance() at distance %v = %v, expected %v", tc.distance, got, tc.impact)
		}
	}
}

func TestEnemyAtPlanetCenterDoesNotMove(t *testing.T) {
	e := NewEnemy(EnemyBasic, center, 0, config.Default().Enemies)
	e.Advance(center, 50, nil)
	if e.Position != center {
		t.Errorf("Position = %+v, expected unchanged %+v", e.Position, center)
	}
	if math.IsNaN(e.Position.X) || math.IsNaN(e.Position.Y) {
		t.Error("zero-distance advance produced NaN")
	}
}

func TestEnemyClosestApproachNonIncreasing(t *testing.T) {
	rng := core.NewRNG(7)
	e := NewEnemy(EnemyFast, core.V(400, 1200), 0, config.Default().Enemies)

	prev := e.ClosestApproach
	for range 400 {
		if e.Advance(center, 50, rng) {
			break
		}
		if e.ClosestApproach > prev {
			t.Fatalf("ClosestApproach grew from %v to %v", prev, e.ClosestApproach)
		}
		prev = e.ClosestApproach
	}
}

func TestEvasiveEnemyDeflects(t *testing.T) {
	e := NewEnemy(EnemyFast, core.V(700, 400), 0, config.Default().Enemies)
	// First draw triggers evasion, second picks the maximum deflection.
	rng := &scriptedRand{vals: []float64{0, 1}}

	e.Advance(center, 50, rng)

	if got := center.AngleTo(e.Position); !approx(got, math.Pi/4) {
		t.Errorf("bearing after deflection = %v, expected %v", got, math.Pi/4)
	}
	if got := center.Dist(e.Position); !approx(got, 300-2.5) {
		t.Errorf("distance after advance = %v, expected 297.5", got)
	}
}

func TestEvasiveEnemyNoDeflectionAboveChance(t *testing.T) {
	e := NewEnemy(EnemyFast, core.V(700, 400), 0, config.Default().Enemies)
	rng := &scriptedRand{vals: []float64{0.5}}

	e.Advance(center, 50, rng)
	if !approx(e.Position.Y, 400) || !approx(e.Position.X, 697.5) {
		t.Errorf("Position = %+v, expected straight move to (697.5, 400)", e.Position)
	}
}

func TestEnemyOnImpact(t *testing.T) {
	p := NewPlanet(center, config.Default().Planet)
	p.ShieldLevel = 1
	e := NewEnemy(EnemyBasic, center, 0, config.Default().Enemies)

	if dealt := e.OnImpact(p); !approx(dealt, 9) {
		t.Errorf("OnImpact() = %v, expected 9", dealt)
	}
}

func TestProjectileLeavesBounds(t *testing.T) {
	bounds := core.NewBounds(800, 800)
	tests := []struct {
		name  string
		pos   core.Vec2
		angle float64
	}{
		{"right", core.V(795, 400), 0},
		{"left", core.V(5, 400), math.Pi},
		{"top", core.V(400, 5), -math.Pi / 2},
		{"bottom", core.V(400, 795), math.Pi / 2},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			p := &Projectile{Position: tc.pos, Angle: tc.angle, Speed: 10}
			p.Advance(bounds)
			if !p.Destroyed {
				t.Errorf("projectile at %+v not destroyed", p.Position)
			}
		})
	}

	inside := &Projectile{Position: center, Speed: 10}
	inside.Advance(bounds)
	if inside.Destroyed {
		t.Error("projectile inside bounds destroyed")
	}
}

func TestProjectileFirstMatchWins(t *testing.T) {
	p := &Projectile{Position: core.V(100, 100), Damage: 25, Radius: 5}
	first := &Enemy{ID: 1, Position: core.V(115, 100), Radius: 15, Health: 50}
	nearest := &Enemy{ID: 2, Position: core.V(100, 100), Radius: 15, Health: 50}

	hit := p.ResolveCollision([]*Enemy{first, nearest})
	if hit != first {
		t.Fatalf("ResolveCollision() hit %v, expected enemy 1", hit)
	}
	if !p.Destroyed {
		t.Error("projectile not destroyed after hit")
	}
	if first.Health != 25 || nearest.Health != 50 {
		t.Errorf("health after hit: first %v nearest %v", first.Health, nearest.Health)
	}
}

func TestProjectileSkipsDestroyedEnemies(t *testing.T) {
	p := &Projectile{Position: core.V(100, 100), Damage: 25, Radius: 5}
	dead := &Enemy{ID: 1, Position: core.V(100, 100), Radius: 15, Destroyed: true}
	live := &Enemy{ID: 2, Position: core.V(105, 100), Radius: 15, Health: 50}

	if hit := p.ResolveCollision([]*Enemy{dead, live}); hit != live {
		t.Errorf("ResolveCollision() = %v, expected live enemy", hit)
	}
}

func TestProjectileMissAtExactRadius(t *testing.T) {
	p := &Projectile{Position: core.V(100, 100), Damage: 25, Radius: 5}
	e := &Enemy{Position: core.V(120, 100), Radius: 15, Health: 50}

	if hit := p.ResolveCollision([]*Enemy{e}); hit != nil {
		t.Error("distance equal to combined radius should not hit")
	}
	if p.Destroyed {
		t.Error("missed projectile destroyed")
	}
}
