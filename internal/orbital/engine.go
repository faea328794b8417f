package orbital

import (
	"io"
	"math"

	"github.com/charmbracelet/log"

	"github.com/vovakirdan/orbital-defense/internal/config"
	"github.com/vovakirdan/orbital-defense/internal/core"
)

// Placement is the outcome of a placement command. Rejections are normal
// results and leave the engine untouched.
type Placement int

const (
	PlacementOK Placement = iota
	PlacementOutOfOrbit
	PlacementInsufficientResources
	PlacementGameOver
	PlacementUnknownType
)

func (p Placement) String() string {
	switch p {
	case PlacementOK:
		return "ok"
	case PlacementOutOfOrbit:
		return "outside orbital annulus"
	case PlacementInsufficientResources:
		return "insufficient resources"
	case PlacementGameOver:
		return "game over"
	case PlacementUnknownType:
		return "unknown defense type"
	default:
		return "unknown"
	}
}

// StepResult describes what happened during one Step. Events include those
// emitted by commands issued since the previous Step.
type StepResult struct {
	Tick     uint64
	Clock    int64
	Events   []Event
	GameOver bool
}

// Engine owns the planet and the live collections of defenses, enemies and
// projectiles, and advances them one tick at a time. It is not safe for
// concurrent use; callers serialize commands and Steps.
type Engine struct {
	cfg    config.Config
	bounds core.Bounds
	rng    Rand

	planet      *Planet
	defenses    []*Defense
	enemies     []*Enemy
	projectiles []*Projectile
	waves       *WaveManager

	selected       DefenseKind
	waveInProgress bool
	gameOver       bool
	score          float64

	tick   uint64
	clock  int64
	nextID uint64

	pending []Event
	sinks   []EventSink
	log     *log.Logger
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the engine logger. The default discards everything.
func WithLogger(l *log.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.log = l
		}
	}
}

// WithSink registers an event consumer. Sinks are called synchronously in
// registration order.
func WithSink(s EventSink) Option {
	return func(e *Engine) {
		if s != nil {
			e.sinks = append(e.sinks, s)
		}
	}
}

// WithSeed seeds the default random source.
func WithSeed(seed int64) Option {
	return func(e *Engine) {
		e.rng = core.NewRNG(seed)
	}
}

// WithRand replaces the random source used for spawns and evasion.
func WithRand(r Rand) Option {
	return func(e *Engine) {
		if r != nil {
			e.rng = r
		}
	}
}

// NewEngine creates an engine with the planet at the center of the play
// area and no wave in progress.
func NewEngine(cfg config.Config, opts ...Option) *Engine {
	cfg.Normalize()

	e := &Engine{
		cfg:      cfg,
		bounds:   core.NewBounds(cfg.Screen.Width, cfg.Screen.Height),
		rng:      core.NewRNG(1),
		selected: DefenseLaser,
		log:      log.New(io.Discard),
	}
	for _, opt := range opts {
		opt(e)
	}

	center := e.bounds.Center()
	e.planet = NewPlanet(center, cfg.Planet)
	e.waves = NewWaveManager(cfg, center, e.rng)
	return e
}

// Step advances the simulation by dtMs milliseconds. Once the game is over
// Step does nothing beyond returning pending events.
func (e *Engine) Step(dtMs int64) StepResult {
	if e.gameOver {
		return e.result()
	}
	if e.planet.IsDestroyed() {
		e.endGame()
		return e.result()
	}

	e.tick++
	e.clock += max(dtMs, 0)
	now := e.clock

	e.updateDefenses(now, dtMs)
	e.updateProjectiles(now)
	e.updateEnemies(now)
	e.updateWave(now)

	return e.result()
}

func (e *Engine) result() StepResult {
	events := e.pending
	e.pending = nil
	return StepResult{
		Tick:     e.tick,
		Clock:    e.clock,
		Events:   events,
		GameOver: e.gameOver,
	}
}

func (e *Engine) updateDefenses(now, dtMs int64) {
	for _, d := range e.defenses {
		if c := d.Collector; c != nil {
			c.Collect(float64(max(dtMs, 0)))
			if c.ReadyToTransfer() {
				amount := c.Transfer()
				e.planet.AddResources(amount)
				e.emit(ResourcesCollected{Stamp: Stamp{now}, DefenseID: d.ID, Amount: amount})
			}
			continue
		}

		p := d.TryFire(now, e.enemies, e.cfg.Projectile.Radius)
		if p == nil {
			continue
		}
		p.ID = e.newID()
		e.projectiles = append(e.projectiles, p)
		e.emit(ShotFired{Stamp: Stamp{now}, DefenseID: d.ID, ProjectileID: p.ID})
	}
}

func (e *Engine) updateProjectiles(now int64) {
	for _, p := range e.projectiles {
		p.Advance(e.bounds)
		hit := p.ResolveCollision(e.enemies)
		if hit == nil {
			continue
		}
		if d := e.defense(p.SourceID); d != nil {
			d.RecordHit(p.Damage)
		}
		e.emit(ShotHit{
			Stamp:        Stamp{now},
			DefenseID:    p.SourceID,
			ProjectileID: p.ID,
			EnemyID:      hit.ID,
			Damage:       p.Damage,
		})
	}
	e.projectiles = compact(e.projectiles, func(p *Projectile) bool { return p.Destroyed })
}

func (e *Engine) updateEnemies(now int64) {
	removed := make(map[uint64]bool)
	for _, en := range e.enemies {
		if en.Advance(e.planet.Position, e.planet.Radius, e.rng) {
			dealt := en.OnImpact(e.planet)
			removed[en.ID] = true
			e.emit(DamageTaken{Stamp: Stamp{now}, EnemyID: en.ID, Source: en.Kind, Amount: dealt})
			continue
		}
		if !en.Destroyed {
			continue
		}
		removed[en.ID] = true
		e.score += en.Reward
		e.planet.AddResources(math.Floor(en.Reward * e.cfg.Economy.RewardShare))
		e.emit(EnemyDefeated{
			Stamp:            Stamp{now},
			EnemyID:          en.ID,
			EnemyKind:        en.Kind,
			Reward:           en.Reward,
			SurvivalTime:     now - en.SpawnTime,
			PenetrationDepth: en.ClosestApproach,
		})
	}
	e.enemies = compact(e.enemies, func(en *Enemy) bool { return removed[en.ID] })
}

func (e *Engine) updateWave(now int64) {
	if !e.waveInProgress {
		return
	}
	if en := e.waves.MaybeSpawn(now); en != nil {
		en.ID = e.newID()
		e.enemies = append(e.enemies, en)
	}
	if !e.waves.Active && len(e.enemies) == 0 {
		e.waveInProgress = false
		e.waves.CompleteWave(true)
		e.log.Info("wave completed", "wave", e.waves.CurrentWave, "spawn_rate", e.waves.SpawnRate)
		e.emit(WaveCompleted{Stamp: Stamp{now}, Wave: e.waves.CurrentWave, Success: true})
	}
}

func (e *Engine) endGame() {
	e.gameOver = true
	if e.waveInProgress {
		e.waveInProgress = false
		e.waves.Active = false
		e.waves.CompleteWave(false)
		e.emit(WaveCompleted{Stamp: Stamp{e.clock}, Wave: e.waves.CurrentWave, Success: false})
	}
	e.log.Warn("planet destroyed", "wave", e.waves.CurrentWave, "score", e.score, "tick", e.tick)
	e.emit(GameOver{Stamp: Stamp{e.clock}, Wave: e.waves.CurrentWave, Score: e.score})
}

// PlaceDefense builds a defense of the given kind at pos if pos lies in the
// orbital annulus and the planet can pay for it.
func (e *Engine) PlaceDefense(pos core.Vec2, kind DefenseKind) Placement {
	if e.gameOver {
		return PlacementGameOver
	}
	if !kind.Valid() {
		return PlacementUnknownType
	}
	if !e.InOrbit(pos) {
		e.log.Debug("placement rejected", "reason", PlacementOutOfOrbit, "x", pos.X, "y", pos.Y)
		return PlacementOutOfOrbit
	}

	d := NewDefense(kind, pos, e.planet.Position, e.cfg)
	if !e.planet.Spend(d.Cost) {
		e.log.Debug("placement rejected", "reason", PlacementInsufficientResources,
			"cost", d.Cost, "resources", e.planet.Resources)
		return PlacementInsufficientResources
	}
	d.ID = e.newID()
	// Ready to fire on the first tick after placement.
	d.LastFireTime = e.clock - int64(math.Ceil(d.Cooldown()))
	e.defenses = append(e.defenses, d)
	e.emit(DefensePlaced{
		Stamp:         Stamp{e.clock},
		DefenseID:     d.ID,
		DefenseKind:   d.Kind,
		OrbitalRadius: d.OrbitalRadius,
		Angle:         d.Angle,
		Position:      d.Position,
		Cost:          d.Cost,
	})
	return PlacementOK
}

// PlaceSelected places the currently selected defense type at pos.
func (e *Engine) PlaceSelected(pos core.Vec2) Placement {
	return e.PlaceDefense(pos, e.selected)
}

// InOrbit reports whether pos lies inside the placement annulus.
func (e *Engine) InOrbit(pos core.Vec2) bool {
	dist := pos.Dist(e.planet.Position)
	inner := e.planet.Radius + e.cfg.Placement.Margin
	return dist >= inner && dist <= e.cfg.Placement.MaxOrbitalRadius
}

// SelectDefenseType sets the kind used by PlaceSelected. Unknown kinds are
// ignored.
func (e *Engine) SelectDefenseType(kind DefenseKind) {
	if kind.Valid() {
		e.selected = kind
	}
}

// Selected returns the currently selected defense kind.
func (e *Engine) Selected() DefenseKind {
	return e.selected
}

// StartWave begins the next wave unless one is already in progress or the
// game is over. It returns the wave number and whether a wave was started.
func (e *Engine) StartWave() (int, bool) {
	if e.gameOver || e.waveInProgress {
		return e.waves.CurrentWave, false
	}
	wave := e.waves.StartWave(e.clock)
	e.waveInProgress = true
	e.log.Info("wave started", "wave", wave, "enemies", e.waves.EnemiesInWave,
		"spawn_rate", e.waves.SpawnRate, "difficulty", e.waves.DifficultyLevel)
	e.emit(WaveStarted{Stamp: Stamp{e.clock}, Wave: wave, Enemies: e.waves.EnemiesInWave})
	return wave, true
}

// UpgradeShield buys one shield level if affordable.
func (e *Engine) UpgradeShield() bool {
	if e.gameOver {
		return false
	}
	cost := e.cfg.Planet.Shield.Cost
	if !e.planet.UpgradeShield() {
		return false
	}
	e.emit(UpgradeChosen{
		Stamp:   Stamp{e.clock},
		Upgrade: ShieldUpgrade,
		Level:   e.planet.ShieldLevel,
		Cost:    cost,
	})
	return true
}

// UpgradeDefense buys the next level of the defense with the given id.
func (e *Engine) UpgradeDefense(id uint64) bool {
	if e.gameOver {
		return false
	}
	d := e.defense(id)
	if d == nil {
		return false
	}
	cost := d.UpgradeCost()
	if !e.planet.Spend(cost) {
		return false
	}
	d.Upgrade()
	e.emit(UpgradeChosen{
		Stamp:     Stamp{e.clock},
		Upgrade:   d.Kind.String(),
		DefenseID: d.ID,
		Level:     d.UpgradeLevel,
		Cost:      cost,
	})
	return true
}

func (e *Engine) emit(ev Event) {
	e.pending = append(e.pending, ev)
	for _, s := range e.sinks {
		s.HandleEvent(ev)
	}
}

func (e *Engine) newID() uint64 {
	e.nextID++
	return e.nextID
}

func (e *Engine) defense(id uint64) *Defense {
	for _, d := range e.defenses {
		if d.ID == id {
			return d
		}
	}
	return nil
}

// compact removes the elements matching gone in a single pass, preserving
// the order of the survivors.
func compact[T any](items []T, gone func(T) bool) []T {
	kept := items[:0]
	for _, it := range items {
		if !gone(it) {
			kept = append(kept, it)
		}
	}
	var zero T
	for i := len(kept); i < len(items); i++ {
		items[i] = zero
	}
	return kept
}

// Config returns the normalized configuration.
func (e *Engine) Config() config.Config { return e.cfg }

// Bounds returns the play area.
func (e *Engine) Bounds() core.Bounds { return e.bounds }

// Planet returns the planet. Callers must not mutate it.
func (e *Engine) Planet() *Planet { return e.planet }

// Defenses returns the live defenses in placement order.
func (e *Engine) Defenses() []*Defense { return e.defenses }

// Enemies returns the live enemies in spawn order.
func (e *Engine) Enemies() []*Enemy { return e.enemies }

// Projectiles returns the live projectiles in firing order.
func (e *Engine) Projectiles() []*Projectile { return e.projectiles }

// Waves returns the wave manager.
func (e *Engine) Waves() *WaveManager { return e.waves }

// WaveInProgress reports whether a wave is being fought.
func (e *Engine) WaveInProgress() bool { return e.waveInProgress }

// GameOver reports whether the planet has been destroyed.
func (e *Engine) GameOver() bool { return e.gameOver }

// Score returns the sum of rewards of defeated enemies.
func (e *Engine) Score() float64 { return e.score }

// Clock returns the simulation time in milliseconds.
func (e *Engine) Clock() int64 { return e.clock }

// Tick returns the number of ticks simulated.
func (e *Engine) Tick() uint64 { return e.tick }
