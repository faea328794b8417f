package orbital

import "github.com/vovakirdan/orbital-defense/internal/core"

// EventKind is the stable name of an event type.
type EventKind string

const (
	KindShotFired          EventKind = "shot_fired"
	KindShotHit            EventKind = "shot_hit"
	KindEnemyDefeated      EventKind = "enemy_defeated"
	KindResourcesCollected EventKind = "resources_collected"
	KindDamageTaken        EventKind = "damage_taken"
	KindDefensePlaced      EventKind = "defense_placed"
	KindWaveStarted        EventKind = "wave_started"
	KindWaveCompleted      EventKind = "wave_completed"
	KindUpgradeChosen      EventKind = "upgrade_chosen"
	KindGameOver           EventKind = "game_over"
)

// Event is a discrete fact emitted by the engine. The set of
// implementations is closed.
type Event interface {
	Kind() EventKind
	Time() int64
	event()
}

// EventSink consumes events as the engine emits them.
type EventSink interface {
	HandleEvent(Event)
}

// SinkFunc adapts a function to EventSink.
type SinkFunc func(Event)

// HandleEvent calls f(ev).
func (f SinkFunc) HandleEvent(ev Event) { f(ev) }

// Stamp carries the simulation clock (ms) at which an event happened.
type Stamp struct {
	At int64
}

// Time returns the event timestamp.
func (s Stamp) Time() int64 { return s.At }

func (Stamp) event() {}

// ShotFired is emitted when a laser turret fires.
type ShotFired struct {
	Stamp
	DefenseID    uint64
	ProjectileID uint64
}

func (ShotFired) Kind() EventKind { return KindShotFired }

// ShotHit is emitted when a projectile damages an enemy.
type ShotHit struct {
	Stamp
	DefenseID    uint64
	ProjectileID uint64
	EnemyID      uint64
	Damage       float64
}

func (ShotHit) Kind() EventKind { return KindShotHit }

// EnemyDefeated is emitted when an enemy is removed after its health ran
// out. PenetrationDepth is the closest the enemy came to the planet center.
type EnemyDefeated struct {
	Stamp
	EnemyID          uint64
	EnemyKind        EnemyKind
	Reward           float64
	SurvivalTime     int64 // ms
	PenetrationDepth float64
}

func (EnemyDefeated) Kind() EventKind { return KindEnemyDefeated }

// ResourcesCollected is emitted when a collector transfers its storage.
type ResourcesCollected struct {
	Stamp
	DefenseID uint64
	Amount    float64
}

func (ResourcesCollected) Kind() EventKind { return KindResourcesCollected }

// DamageTaken is emitted when an enemy impacts the planet.
type DamageTaken struct {
	Stamp
	EnemyID uint64
	Source  EnemyKind
	Amount  float64 // After shields
}

func (DamageTaken) Kind() EventKind { return KindDamageTaken }

// DefensePlaced is emitted on a successful placement.
type DefensePlaced struct {
	Stamp
	DefenseID     uint64
	DefenseKind   DefenseKind
	OrbitalRadius float64
	Angle         float64
	Position      core.Vec2
	Cost          float64
}

func (DefensePlaced) Kind() EventKind { return KindDefensePlaced }

// WaveStarted is emitted when a new wave begins.
type WaveStarted struct {
	Stamp
	Wave    int
	Enemies int
}

func (WaveStarted) Kind() EventKind { return KindWaveStarted }

// WaveCompleted is emitted when a wave ends. Success is false only for a
// wave cut short by game over.
type WaveCompleted struct {
	Stamp
	Wave    int
	Success bool
}

func (WaveCompleted) Kind() EventKind { return KindWaveCompleted }

// ShieldUpgrade is the Upgrade name of planet shield upgrades. Defense
// upgrades use the defense kind name.
const ShieldUpgrade = "shield"

// UpgradeChosen is emitted when the player buys an upgrade.
type UpgradeChosen struct {
	Stamp
	Upgrade   string
	DefenseID uint64 // Zero for shield upgrades
	Level     int
	Cost      float64
}

func (UpgradeChosen) Kind() EventKind { return KindUpgradeChosen }

// GameOver is emitted once when the planet is found destroyed.
type GameOver struct {
	Stamp
	Wave  int
	Score float64
}

func (GameOver) Kind() EventKind { return KindGameOver }
