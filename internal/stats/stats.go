// Package stats aggregates simulation events into running session totals
// and produces the end-of-session report handed to persistence.
package stats

import (
	"cmp"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/vovakirdan/orbital-defense/internal/orbital"
)

// PlacementRecord describes one placed defense. UpgradeLevel and
// DamageDealt follow later upgrade and hit events for that defense.
type PlacementRecord struct {
	DefenseID     uint64
	Kind          string
	OrbitalRadius float64
	Angle         float64
	X, Y          float64
	UpgradeLevel  int
	DamageDealt   float64
}

// SurvivalRecord describes a defeated enemy.
type SurvivalRecord struct {
	EnemyKind        string
	SurvivalMs       int64
	PenetrationDepth float64 // Closest distance to the planet center
}

// ResourcePoint is one collector transfer on the session timeline.
type ResourcePoint struct {
	AtMs   int64
	Amount float64
}

// Aggregator consumes engine events and keeps session totals. It
// implements orbital.EventSink and is safe to read while the engine runs
// on another goroutine.
type Aggregator struct {
	mu sync.Mutex

	sessionID uuid.UUID
	startedAt time.Time

	score              float64
	wavesCompleted     int
	wavesFailed        int
	resourcesCollected float64
	enemiesDefeated    int
	totalShots         int
	totalHits          int
	lastWave           int
	gameOver           bool
	lastEventMs        int64

	damageSources  map[string]float64
	upgradeChoices map[string]int
	placements     []PlacementRecord
	survival       []SurvivalRecord
	timeline       []ResourcePoint
}

// NewAggregator starts a session with a fresh random ID.
func NewAggregator(startedAt time.Time) *Aggregator {
	return &Aggregator{
		sessionID:      uuid.New(),
		startedAt:      startedAt,
		damageSources:  make(map[string]float64),
		upgradeChoices: make(map[string]int),
	}
}

// SessionID returns the session identifier.
func (a *Aggregator) SessionID() uuid.UUID {
	return a.sessionID
}

// HandleEvent folds ev into the totals.
func (a *Aggregator) HandleEvent(ev orbital.Event) {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.lastEventMs = max(a.lastEventMs, ev.Time())

	switch ev := ev.(type) {
	case orbital.ShotFired:
		a.totalShots++
	case orbital.ShotHit:
		a.totalHits++
		if p := a.placement(ev.DefenseID); p != nil {
			p.DamageDealt += ev.Damage
		}
	case orbital.EnemyDefeated:
		a.enemiesDefeated++
		a.score += ev.Reward
		a.survival = append(a.survival, SurvivalRecord{
			EnemyKind:        ev.EnemyKind.String(),
			SurvivalMs:       ev.SurvivalTime,
			PenetrationDepth: ev.PenetrationDepth,
		})
	case orbital.ResourcesCollected:
		a.resourcesCollected += ev.Amount
		a.timeline = append(a.timeline, ResourcePoint{AtMs: ev.At, Amount: ev.Amount})
	case orbital.DamageTaken:
		a.damageSources[ev.Source.String()] += ev.Amount
	case orbital.DefensePlaced:
		a.placements = append(a.placements, PlacementRecord{
			DefenseID:     ev.DefenseID,
			Kind:          ev.DefenseKind.String(),
			OrbitalRadius: ev.OrbitalRadius,
			Angle:         ev.Angle,
			X:             ev.Position.X,
			Y:             ev.Position.Y,
			UpgradeLevel:  1,
		})
	case orbital.WaveStarted:
		a.lastWave = ev.Wave
	case orbital.WaveCompleted:
		if ev.Success {
			a.wavesCompleted++
		} else {
			a.wavesFailed++
		}
	case orbital.UpgradeChosen:
		a.upgradeChoices[ev.Upgrade]++
		if p := a.placement(ev.DefenseID); p != nil {
			p.UpgradeLevel = ev.Level
		}
	case orbital.GameOver:
		a.gameOver = true
	}
}

func (a *Aggregator) placement(id uint64) *PlacementRecord {
	if id == 0 {
		return nil
	}
	for i := range a.placements {
		if a.placements[i].DefenseID == id {
			return &a.placements[i]
		}
	}
	return nil
}

// Accuracy returns hits over shots, or zero before the first shot.
func (a *Aggregator) Accuracy() float64 {
	a.mu.Lock()
	defer a.mu.Unlock()
	return accuracy(a.totalHits, a.totalShots)
}

func accuracy(hits, shots int) float64 {
	if shots == 0 {
		return 0
	}
	return float64(hits) / float64(shots)
}

// Score returns the running score.
func (a *Aggregator) Score() float64 {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.score
}

// Report is the final aggregate of a session.
type Report struct {
	SessionID  string
	StartedAt  time.Time
	DurationMs int64
	Seed       int64
	Difficulty string

	Score              float64
	WavesCompleted     int
	WavesFailed        int
	FinalWave          int
	ResourcesCollected float64
	EnemiesDefeated    int
	ShotsFired         int
	ShotsHit           int
	Accuracy           float64
	GameOver           bool

	DamageSources  []NamedValue
	UpgradeChoices []NamedCount
	Placements     []PlacementRecord
	Enemies        []SurvivalRecord
	Timeline       []ResourcePoint
}

// NamedValue is a labeled amount, sorted by name in reports.
type NamedValue struct {
	Name  string
	Value float64
}

// NamedCount is a labeled count, sorted by name in reports.
type NamedCount struct {
	Name  string
	Count int
}

// Report snapshots the totals. Duration is the simulation time of the last
// event seen unless durationMs is positive.
func (a *Aggregator) Report(durationMs int64) Report {
	a.mu.Lock()
	defer a.mu.Unlock()

	if durationMs <= 0 {
		durationMs = a.lastEventMs
	}

	r := Report{
		SessionID:          a.sessionID.String(),
		StartedAt:          a.startedAt,
		DurationMs:         durationMs,
		Score:              a.score,
		WavesCompleted:     a.wavesCompleted,
		WavesFailed:        a.wavesFailed,
		FinalWave:          a.lastWave,
		ResourcesCollected: a.resourcesCollected,
		EnemiesDefeated:    a.enemiesDefeated,
		ShotsFired:         a.totalShots,
		ShotsHit:           a.totalHits,
		Accuracy:           accuracy(a.totalHits, a.totalShots),
		GameOver:           a.gameOver,
		Placements:         slices.Clone(a.placements),
		Enemies:            slices.Clone(a.survival),
		Timeline:           slices.Clone(a.timeline),
	}

	for name, v := range a.damageSources {
		r.DamageSources = append(r.DamageSources, NamedValue{Name: name, Value: v})
	}
	slices.SortFunc(r.DamageSources, func(x, y NamedValue) int { return cmp.Compare(x.Name, y.Name) })

	for name, n := range a.upgradeChoices {
		r.UpgradeChoices = append(r.UpgradeChoices, NamedCount{Name: name, Count: n})
	}
	slices.SortFunc(r.UpgradeChoices, func(x, y NamedCount) int { return cmp.Compare(x.Name, y.Name) })

	return r
}

// SurvivalByKind returns the mean survival time in ms per enemy kind.
func (r Report) SurvivalByKind() map[string]float64 {
	sums := make(map[string]int64)
	counts := make(map[string]int)
	for _, e := range r.Enemies {
		sums[e.EnemyKind] += e.SurvivalMs
		counts[e.EnemyKind]++
	}
	out := make(map[string]float64, len(sums))
	for k, s := range sums {
		out[k] = float64(s) / float64(counts[k])
	}
	return out
}
