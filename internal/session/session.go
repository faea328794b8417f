// Package session bundles one playthrough: the engine, the stats
// aggregator and the event journal wired as its sinks, plus persistence of
// the finished result.
package session

import (
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/vovakirdan/orbital-defense/internal/config"
	"github.com/vovakirdan/orbital-defense/internal/journal"
	"github.com/vovakirdan/orbital-defense/internal/orbital"
	"github.com/vovakirdan/orbital-defense/internal/stats"
	"github.com/vovakirdan/orbital-defense/internal/storage"
)

// ErrAlreadySaved is returned by Save when the session was already stored.
var ErrAlreadySaved = errors.New("session: already saved")

// Options configures a new Session.
type Options struct {
	Config     config.Config
	Seed       int64
	Difficulty string
	StartedAt  time.Time
	Logger     *log.Logger

	// Sinks receive engine events after the stats and journal sinks.
	Sinks []orbital.EventSink
}

// Session is one game from the first tick to game over or abandonment.
type Session struct {
	Engine  *orbital.Engine
	Stats   *stats.Aggregator
	Journal *journal.Recorder

	seed       int64
	difficulty string
	log        *log.Logger
	savedID    int64
}

// New creates a session. A zero StartedAt means now.
func New(opts Options) *Session {
	if opts.StartedAt.IsZero() {
		opts.StartedAt = time.Now()
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}

	s := &Session{
		Stats:      stats.NewAggregator(opts.StartedAt),
		Journal:    journal.NewRecorder(),
		seed:       opts.Seed,
		difficulty: opts.Difficulty,
		log:        logger,
	}

	engineOpts := []orbital.Option{
		orbital.WithSeed(opts.Seed),
		orbital.WithLogger(logger),
		orbital.WithSink(s.Stats),
		orbital.WithSink(s.Journal),
	}
	for _, sink := range opts.Sinks {
		engineOpts = append(engineOpts, orbital.WithSink(sink))
	}
	s.Engine = orbital.NewEngine(opts.Config, engineOpts...)
	return s
}

// ID returns the session identifier.
func (s *Session) ID() uuid.UUID {
	return s.Stats.SessionID()
}

// Seed returns the seed the engine was created with.
func (s *Session) Seed() int64 {
	return s.seed
}

// Report returns the session report with the simulated clock as duration.
func (s *Session) Report() stats.Report {
	r := s.Stats.Report(s.Engine.Clock())
	r.Seed = s.seed
	r.Difficulty = s.difficulty
	return r
}

// Saved reports whether Save already succeeded, and the stored row ID.
func (s *Session) Saved() (int64, bool) {
	return s.savedID, s.savedID != 0
}

// Save stores the report and the packed journal. A session is stored at
// most once.
func (s *Session) Save(store *storage.Store) (int64, error) {
	if s.savedID != 0 {
		return s.savedID, ErrAlreadySaved
	}
	if store == nil {
		return 0, errors.New("session: no store")
	}

	blob, digest, err := s.Journal.Pack()
	if err != nil {
		return 0, fmt.Errorf("session: cannot pack journal: %w", err)
	}

	r := s.Report()
	id, err := store.SaveSession(r, &storage.Journal{
		Events: s.Journal.Len(),
		Digest: digest,
		Blob:   blob,
	})
	if err != nil {
		return 0, err
	}

	s.savedID = id
	s.log.Info("session saved", "id", id, "uuid", r.SessionID, "score", r.Score, "waves", r.WavesCompleted)
	return id, nil
}
