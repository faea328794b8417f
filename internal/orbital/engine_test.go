package orbital

import (
	"testing"

	"github.com/vovakirdan/orbital-defense/internal/config"
	"github.com/vovakirdan/orbital-defense/internal/core"
)

const dt = 16

func newEngine(t *testing.T, mutate func(*config.Config), opts ...Option) *Engine {
	t.Helper()
	cfg := config.Default()
	if mutate != nil {
		mutate(&cfg)
	}
	return NewEngine(cfg, opts...)
}

func countKind(events []Event, kind EventKind) int {
	n := 0
	for _, ev := range events {
		if ev.Kind() == kind {
			n++
		}
	}
	return n
}

func TestNewEngine(t *testing.T) {
	e := newEngine(t, nil)

	if e.Planet().Position != core.V(400, 400) {
		t.Errorf("planet at %+v, expected screen center", e.Planet().Position)
	}
	if e.Planet().Resources != 500 || e.Planet().Health != 100 {
		t.Errorf("planet resources %v health %v", e.Planet().Resources, e.Planet().Health)
	}
	if e.Selected() != DefenseLaser {
		t.Errorf("Selected() = %v, expected laser", e.Selected())
	}
	if e.WaveInProgress() || e.GameOver() {
		t.Error("fresh engine should be idle")
	}
}

func TestPlaceDefenseRoundTrip(t *testing.T) {
	exact := newEngine(t, func(c *config.Config) { c.Planet.StartingResources = 150 })
	if got := exact.PlaceDefense(core.V(500, 400), DefenseLaser); got != PlacementOK {
		t.Fatalf("PlaceDefense() = %v, expected ok", got)
	}
	if exact.Planet().Resources != 0 {
		t.Errorf("Resources = %v, expected 0", exact.Planet().Resources)
	}
	if len(exact.Defenses()) != 1 {
		t.Errorf("len(Defenses()) = %d, expected 1", len(exact.Defenses()))
	}
	res := exact.Step(dt)
	if countKind(res.Events, KindDefensePlaced) != 1 {
		t.Errorf("expected one defense_placed event, got %v", res.Events)
	}

	short := newEngine(t, func(c *config.Config) { c.Planet.StartingResources = 149 })
	if got := short.PlaceDefense(core.V(500, 400), DefenseLaser); got != PlacementInsufficientResources {
		t.Errorf("PlaceDefense() = %v, expected insufficient resources", got)
	}
	if short.Planet().Resources != 149 {
		t.Errorf("Resources = %v, expected 149", short.Planet().Resources)
	}
	if len(short.Defenses()) != 0 {
		t.Error("rejected placement added a defense")
	}
	if res := short.Step(dt); len(res.Events) != 0 {
		t.Errorf("rejected placement emitted events: %v", res.Events)
	}
}

func TestPlaceDefenseAnnulus(t *testing.T) {
	tests := []struct {
		name     string
		distance float64
		expected Placement
	}{
		{"inside margin", 69, PlacementOutOfOrbit},
		{"inner edge", 70, PlacementOK},
		{"middle", 200, PlacementOK},
		{"outer edge", 350, PlacementOK},
		{"beyond", 351, PlacementOutOfOrbit},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			e := newEngine(t, nil)
			got := e.PlaceDefense(core.V(400, 400+tc.distance), DefenseCollector)
			if got != tc.expected {
				t.Errorf("PlaceDefense at %v = %v, expected %v", tc.distance, got, tc.expected)
			}
		})
	}
}

func TestPlaceSelected(t *testing.T) {
	e := newEngine(t, nil)
	e.SelectDefenseType(DefenseCollector)
	e.SelectDefenseType(DefenseKind(42))

	if e.Selected() != DefenseCollector {
		t.Fatalf("Selected() = %v, expected collector", e.Selected())
	}
	if got := e.PlaceSelected(core.V(400, 200)); got != PlacementOK {
		t.Fatalf("PlaceSelected() = %v", got)
	}
	if e.Planet().Resources != 400 {
		t.Errorf("Resources = %v, expected 400 after collector", e.Planet().Resources)
	}
	if e.PlaceDefense(core.V(400, 200), DefenseKind(9)) != PlacementUnknownType {
		t.Error("unknown kind accepted")
	}
}

func TestStartWaveOnlyWhenIdle(t *testing.T) {
	e := newEngine(t, nil)

	wave, ok := e.StartWave()
	if !ok || wave != 1 {
		t.Fatalf("StartWave() = %d, %v, expected 1, true", wave, ok)
	}
	if _, ok := e.StartWave(); ok {
		t.Error("second StartWave() during a wave should fail")
	}
	res := e.Step(dt)
	if countKind(res.Events, KindWaveStarted) != 1 {
		t.Errorf("expected one wave_started event")
	}
}

func TestCollectorAutoTransfer(t *testing.T) {
	e := newEngine(t, nil)
	if e.PlaceDefense(core.V(400, 200), DefenseCollector) != PlacementOK {
		t.Fatal("collector placement failed")
	}
	e.Step(0)

	var collected []ResourcesCollected
	for range 90 {
		for _, ev := range e.Step(100).Events {
			if rc, ok := ev.(ResourcesCollected); ok {
				collected = append(collected, rc)
			}
		}
	}

	if len(collected) != 1 {
		t.Fatalf("got %d transfers after 9000ms, expected 1", len(collected))
	}
	if !approx(collected[0].Amount, 90) {
		t.Errorf("transfer amount = %v, expected 90", collected[0].Amount)
	}
	if !approx(e.Planet().Resources, 490) {
		t.Errorf("Resources = %v, expected 490", e.Planet().Resources)
	}
	if e.Defenses()[0].Collector.Storage != 0 {
		t.Errorf("Storage = %v after transfer, expected 0", e.Defenses()[0].Collector.Storage)
	}
}

func TestDefeatDoubleCredit(t *testing.T) {
	e := newEngine(t, nil)
	dead := NewEnemy(EnemyBasic, core.V(400, 0), 0, e.Config().Enemies)
	dead.ID = 77
	dead.TakeDamage(100)
	e.enemies = append(e.enemies, dead)

	res := e.Step(dt)

	if len(e.Enemies()) != 0 {
		t.Error("defeated enemy not removed")
	}
	if e.Score() != 25 {
		t.Errorf("Score() = %v, expected full reward 25", e.Score())
	}
	if e.Planet().Resources != 512 {
		t.Errorf("Resources = %v, expected 500 + floor(25/2)", e.Planet().Resources)
	}

	var def *EnemyDefeated
	for _, ev := range res.Events {
		if d, ok := ev.(EnemyDefeated); ok {
			def = &d
		}
	}
	if def == nil {
		t.Fatal("no enemy_defeated event")
	}
	if def.Reward != 25 || def.EnemyKind != EnemyBasic || def.SurvivalTime != dt {
		t.Errorf("EnemyDefeated = %+v", def)
	}
	if def.PenetrationDepth != 400 {
		t.Errorf("PenetrationDepth = %v, expected 400", def.PenetrationDepth)
	}
}

func TestImpactDamagesPlanetWithoutReward(t *testing.T) {
	e := newEngine(t, nil)
	en := NewEnemy(EnemyBasic, core.V(460, 400), 0, e.Config().Enemies)
	en.ID = 5
	e.enemies = append(e.enemies, en)

	res := e.Step(dt)

	if e.Planet().Health != 90 {
		t.Errorf("Health = %v, expected 90", e.Planet().Health)
	}
	if e.Score() != 0 || e.Planet().Resources != 500 {
		t.Errorf("impact paid a reward: score %v resources %v", e.Score(), e.Planet().Resources)
	}
	if len(e.Enemies()) != 0 {
		t.Error("impacting enemy not removed")
	}
	if countKind(res.Events, KindDamageTaken) != 1 || countKind(res.Events, KindEnemyDefeated) != 0 {
		t.Errorf("unexpected events %v", res.Events)
	}
}

func TestImpactTakesPrecedenceOverDefeat(t *testing.T) {
	e := newEngine(t, nil)
	en := NewEnemy(EnemyBasic, core.V(460, 400), 0, e.Config().Enemies)
	en.TakeDamage(100)
	e.enemies = append(e.enemies, en)

	res := e.Step(dt)
	if countKind(res.Events, KindDamageTaken) != 1 || countKind(res.Events, KindEnemyDefeated) != 0 {
		t.Errorf("destroyed enemy reaching the planet should count as impact: %v", res.Events)
	}
}

func TestKilledEnemyInvisibleToLaterProjectiles(t *testing.T) {
	e := newEngine(t, nil)
	en := NewEnemy(EnemyBasic, core.V(200, 400), 0, e.Config().Enemies)
	en.ID = 1
	en.Health = 25
	e.enemies = append(e.enemies, en)
	for id := uint64(10); id < 12; id++ {
		e.projectiles = append(e.projectiles, &Projectile{
			ID: id, Position: core.V(200, 400), Damage: 25, Radius: 5,
		})
	}

	res := e.Step(dt)

	if n := countKind(res.Events, KindShotHit); n != 1 {
		t.Errorf("got %d shot_hit events, expected 1", n)
	}
	if len(e.Projectiles()) != 1 || e.Projectiles()[0].ID != 11 {
		t.Errorf("expected the second projectile to survive, got %d", len(e.Projectiles()))
	}
	if countKind(res.Events, KindEnemyDefeated) != 1 {
		t.Error("enemy not defeated")
	}
}

func TestHitsCreditSourceDefense(t *testing.T) {
	e := newEngine(t, nil)
	e.PlaceDefense(core.V(400, 250), DefenseLaser)
	d := e.Defenses()[0]

	en := NewEnemy(EnemyBasic, core.V(400, 200), 0, e.Config().Enemies)
	en.ID = 100
	en.Speed = 0
	e.enemies = append(e.enemies, en)

	var fired, hits int
	for range 200 {
		res := e.Step(dt)
		fired += countKind(res.Events, KindShotFired)
		hits += countKind(res.Events, KindShotHit)
		if len(e.Enemies()) == 0 {
			break
		}
	}

	if len(e.Enemies()) != 0 {
		t.Fatal("stationary enemy survived")
	}
	if hits != 2 {
		t.Errorf("hits = %d, expected 2 for 50 health", hits)
	}
	if d.ShotsFired != fired || d.ShotsHit != hits || d.DamageDealt != 50 {
		t.Errorf("defense accounting fired %d hit %d damage %v", d.ShotsFired, d.ShotsHit, d.DamageDealt)
	}
}

func TestWaveRunsToCompletion(t *testing.T) {
	e := newEngine(t, nil, WithSeed(11))
	for _, pos := range []core.Vec2{core.V(400, 250), core.V(550, 400), core.V(400, 550)} {
		if e.PlaceDefense(pos, DefenseLaser) != PlacementOK {
			t.Fatal("laser placement failed")
		}
	}
	e.StartWave()

	completed := false
	for range 10000 {
		res := e.Step(dt)
		if countKind(res.Events, KindWaveCompleted) > 0 {
			completed = true
			break
		}
	}

	if !completed {
		t.Fatal("wave 1 never completed")
	}
	w := e.Waves()
	if w.EnemiesSpawned != 6 {
		t.Errorf("spawned %d enemies, expected 6", w.EnemiesSpawned)
	}
	if e.WaveInProgress() {
		t.Error("wave still in progress after completion")
	}
	if len(w.Outcomes) != 1 || !w.Outcomes[0].Success {
		t.Errorf("Outcomes = %+v", w.Outcomes)
	}
	if !approx(w.DifficultyLevel, 1.1) {
		t.Errorf("DifficultyLevel = %v, expected 1.1", w.DifficultyLevel)
	}
	if _, ok := e.StartWave(); !ok {
		t.Error("StartWave() after completion should succeed")
	}
}

func TestGameOverHaltsSimulation(t *testing.T) {
	e := newEngine(t, nil)
	e.StartWave()
	e.Step(dt)
	e.Planet().Health = 0

	res := e.Step(dt)
	if !res.GameOver || !e.GameOver() {
		t.Fatal("planet at zero health did not end the game")
	}
	if countKind(res.Events, KindGameOver) != 1 {
		t.Errorf("expected a game_over event, got %v", res.Events)
	}
	var failed bool
	for _, ev := range res.Events {
		if wc, ok := ev.(WaveCompleted); ok && !wc.Success {
			failed = true
		}
	}
	if !failed {
		t.Error("wave in progress not recorded as failed")
	}

	tick, clock := e.Tick(), e.Clock()
	after := e.Step(dt)
	if e.Tick() != tick || e.Clock() != clock || len(after.Events) != 0 {
		t.Error("Step() after game over advanced the simulation")
	}
	if e.PlaceDefense(core.V(500, 400), DefenseLaser) != PlacementGameOver {
		t.Error("placement accepted after game over")
	}
	if _, ok := e.StartWave(); ok {
		t.Error("StartWave() accepted after game over")
	}
	if e.UpgradeShield() {
		t.Error("UpgradeShield() accepted after game over")
	}
}

func TestUpgradeCommands(t *testing.T) {
	var chosen []UpgradeChosen
	sink := SinkFunc(func(ev Event) {
		if uc, ok := ev.(UpgradeChosen); ok {
			chosen = append(chosen, uc)
		}
	})
	e := newEngine(t, nil, WithSink(sink))

	e.PlaceDefense(core.V(400, 250), DefenseLaser)
	e.PlaceDefense(core.V(400, 550), DefenseCollector)
	laser, collector := e.Defenses()[0], e.Defenses()[1]
	// 500 - 150 - 100
	if e.Planet().Resources != 250 {
		t.Fatalf("Resources = %v, expected 250", e.Planet().Resources)
	}

	if !e.UpgradeDefense(laser.ID) {
		t.Fatal("laser upgrade failed")
	}
	if laser.UpgradeLevel != 2 || !approx(laser.Damage, 30) {
		t.Errorf("laser level %d damage %v", laser.UpgradeLevel, laser.Damage)
	}
	if !e.UpgradeDefense(collector.ID) {
		t.Fatal("collector upgrade failed")
	}
	if !approx(collector.Collector.Capacity, 150) {
		t.Errorf("collector capacity %v, expected 150", collector.Collector.Capacity)
	}
	if e.Planet().Resources != 75 {
		t.Errorf("Resources = %v, expected 75", e.Planet().Resources)
	}

	if e.UpgradeShield() {
		t.Error("UpgradeShield() with 75 resources should fail")
	}
	if e.UpgradeDefense(laser.ID) {
		t.Error("UpgradeDefense() with 75 resources should fail")
	}
	if e.UpgradeDefense(999) {
		t.Error("UpgradeDefense() accepted an unknown id")
	}

	if len(chosen) != 2 || chosen[0].Upgrade != "laser_turret" || chosen[1].Upgrade != "resource_collector" {
		t.Errorf("upgrade events = %+v", chosen)
	}
}

func TestUpgradeShieldCommand(t *testing.T) {
	e := newEngine(t, nil)
	if !e.UpgradeShield() {
		t.Fatal("UpgradeShield() failed with 500 resources")
	}
	if e.Planet().ShieldLevel != 1 || e.Planet().Resources != 400 {
		t.Errorf("shield %d resources %v", e.Planet().ShieldLevel, e.Planet().Resources)
	}
	res := e.Step(dt)
	for _, ev := range res.Events {
		if uc, ok := ev.(UpgradeChosen); ok && uc.Upgrade != ShieldUpgrade {
			t.Errorf("Upgrade = %q, expected shield", uc.Upgrade)
		}
	}
}

func TestSinkSeesEveryEvent(t *testing.T) {
	var seen []Event
	e := newEngine(t, nil, WithSink(SinkFunc(func(ev Event) { seen = append(seen, ev) })))
	e.PlaceDefense(core.V(400, 250), DefenseLaser)
	e.StartWave()

	var returned int
	for range 600 {
		returned += len(e.Step(dt).Events)
	}
	if returned != len(seen) {
		t.Errorf("Step returned %d events, sink saw %d", returned, len(seen))
	}
}

func runScripted(seed int64, ticks int) *Engine {
	e := NewEngine(config.Default(), WithSeed(seed))
	e.PlaceDefense(core.V(400, 250), DefenseLaser)
	e.PlaceDefense(core.V(550, 400), DefenseLaser)
	e.PlaceDefense(core.V(400, 550), DefenseCollector)
	for range ticks {
		if !e.WaveInProgress() {
			e.StartWave()
		}
		if e.Step(dt).GameOver {
			break
		}
	}
	return e
}

func TestEngineDeterminism(t *testing.T) {
	snap1 := runScripted(42, 3000).Snapshot()
	snap2 := runScripted(42, 3000).Snapshot()

	if snap1.Hash() != snap2.Hash() {
		t.Errorf("Determinism failed: hashes differ. Run1=%s, Run2=%s", snap1.Hash(), snap2.Hash())
	}
	if snap1.Score != snap2.Score || snap1.Tick != snap2.Tick {
		t.Errorf("Determinism failed: score %v/%v tick %d/%d", snap1.Score, snap2.Score, snap1.Tick, snap2.Tick)
	}

	other := runScripted(43, 3000).Snapshot()
	if other.Hash() == snap1.Hash() {
		t.Error("different seeds produced identical runs")
	}
}

func TestSnapshotViews(t *testing.T) {
	e := newEngine(t, nil)
	e.PlaceDefense(core.V(400, 550), DefenseCollector)
	e.StartWave()
	e.Step(dt)

	snap := e.Snapshot()
	if snap.Planet.Resources != 400 || snap.Planet.Health != 100 {
		t.Errorf("planet view %+v", snap.Planet)
	}
	if len(snap.Defenses) != 1 || snap.Defenses[0].Kind != "resource_collector" {
		t.Errorf("defense views %+v", snap.Defenses)
	}
	if snap.Defenses[0].Fill <= 0 {
		t.Error("collector fill not reported")
	}
	if !snap.Wave.InProgress || snap.Wave.Current != 1 || snap.Wave.EnemiesInWave != 6 {
		t.Errorf("wave view %+v", snap.Wave)
	}
	if snap.Hash() == "" {
		t.Error("Hash() returned empty digest")
	}
}
