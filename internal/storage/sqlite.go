// Package storage provides SQLite-based persistence for finished sessions.
// Uses the pure-Go modernc.org/sqlite driver to avoid CGO dependencies.
package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // Pure Go SQLite driver

	"github.com/vovakirdan/orbital-defense/internal/stats"
)

const timeLayout = "2006-01-02 15:04:05"

// Store manages the SQLite database connection for session persistence.
type Store struct {
	db *sql.DB
}

// SessionSummary is one row of game_sessions.
type SessionSummary struct {
	ID                 int64
	UUID               string
	StartedAt          time.Time
	DurationMs         int64
	Seed               int64
	Difficulty         string
	WavesCompleted     int
	FinalWave          int
	Score              float64
	ResourcesCollected float64
	EnemiesDefeated    int
	ShotsFired         int
	ShotsHit           int
	Accuracy           float64
}

// TypeSurvival is the mean survival of one enemy type across sessions.
type TypeSurvival struct {
	EnemyType      string
	Count          int
	AvgSurvivalMs  float64
	AvgPenetration float64
}

// Open creates or opens a SQLite database at the given path.
// It creates the parent directories if needed and runs migrations.
func Open(dbPath string) (*Store, error) {
	// Expand ~ to home directory
	if dbPath != "" && dbPath[0] == '~' {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("storage: cannot expand home directory: %w", err)
		}
		dbPath = filepath.Join(home, dbPath[1:])
	}

	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("storage: cannot create directory %s: %w", dir, err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage: cannot connect to database: %w", err)
	}

	store := &Store{db: db}

	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage: migration failed: %w", err)
	}

	return store, nil
}

// migrate creates the database schema if it doesn't exist.
func (s *Store) migrate() error {
	schema := `
		CREATE TABLE IF NOT EXISTS game_sessions (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			uuid TEXT NOT NULL UNIQUE,
			started_at TEXT NOT NULL,
			duration_ms INTEGER NOT NULL DEFAULT 0,
			seed INTEGER NOT NULL DEFAULT 0,
			difficulty TEXT NOT NULL DEFAULT '',
			waves_completed INTEGER NOT NULL DEFAULT 0,
			final_wave INTEGER NOT NULL DEFAULT 0,
			score REAL NOT NULL DEFAULT 0,
			resources_collected REAL NOT NULL DEFAULT 0,
			enemies_defeated INTEGER NOT NULL DEFAULT 0,
			shots_fired INTEGER NOT NULL DEFAULT 0,
			shots_hit INTEGER NOT NULL DEFAULT 0,
			accuracy REAL NOT NULL DEFAULT 0
		);
		CREATE INDEX IF NOT EXISTS idx_sessions_score ON game_sessions(score DESC);

		CREATE TABLE IF NOT EXISTS defense_placements (
			session_id INTEGER NOT NULL REFERENCES game_sessions(id) ON DELETE CASCADE,
			defense_type TEXT NOT NULL,
			orbital_radius REAL NOT NULL,
			angle REAL NOT NULL,
			upgrade_level INTEGER NOT NULL DEFAULT 1,
			damage_dealt REAL NOT NULL DEFAULT 0
		);
		CREATE INDEX IF NOT EXISTS idx_placements_session ON defense_placements(session_id);

		CREATE TABLE IF NOT EXISTS enemy_data (
			session_id INTEGER NOT NULL REFERENCES game_sessions(id) ON DELETE CASCADE,
			enemy_type TEXT NOT NULL,
			survival_time INTEGER NOT NULL,
			penetration_depth REAL NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_enemy_data_session ON enemy_data(session_id);
		CREATE INDEX IF NOT EXISTS idx_enemy_data_type ON enemy_data(enemy_type);

		CREATE TABLE IF NOT EXISTS session_journals (
			session_id INTEGER PRIMARY KEY REFERENCES game_sessions(id) ON DELETE CASCADE,
			events INTEGER NOT NULL,
			digest TEXT NOT NULL,
			blob BLOB NOT NULL
		);
	`

	_, err := s.db.Exec(schema)
	return err
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Journal is a packed event journal attached to a session.
type Journal struct {
	Events int
	Digest string
	Blob   []byte
}

// SaveSession records a finished session with its placements, defeated
// enemies and, if non-nil, its journal. Returns the session row ID.
func (s *Store) SaveSession(r stats.Report, j *Journal) (int64, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return 0, fmt.Errorf("storage: cannot begin transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	res, err := tx.Exec(
		`INSERT INTO game_sessions
		 (uuid, started_at, duration_ms, seed, difficulty, waves_completed, final_wave,
		  score, resources_collected, enemies_defeated, shots_fired, shots_hit, accuracy)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.SessionID,
		r.StartedAt.UTC().Format(timeLayout),
		r.DurationMs,
		r.Seed,
		r.Difficulty,
		r.WavesCompleted,
		r.FinalWave,
		r.Score,
		r.ResourcesCollected,
		r.EnemiesDefeated,
		r.ShotsFired,
		r.ShotsHit,
		r.Accuracy,
	)
	if err != nil {
		return 0, fmt.Errorf("storage: cannot save session: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("storage: cannot get inserted ID: %w", err)
	}

	for _, p := range r.Placements {
		if _, err := tx.Exec(
			`INSERT INTO defense_placements
			 (session_id, defense_type, orbital_radius, angle, upgrade_level, damage_dealt)
			 VALUES (?, ?, ?, ?, ?, ?)`,
			id, p.Kind, p.OrbitalRadius, p.Angle, p.UpgradeLevel, p.DamageDealt,
		); err != nil {
			return 0, fmt.Errorf("storage: cannot save placement: %w", err)
		}
	}

	for _, e := range r.Enemies {
		if _, err := tx.Exec(
			`INSERT INTO enemy_data (session_id, enemy_type, survival_time, penetration_depth)
			 VALUES (?, ?, ?, ?)`,
			id, e.EnemyKind, e.SurvivalMs, e.PenetrationDepth,
		); err != nil {
			return 0, fmt.Errorf("storage: cannot save enemy data: %w", err)
		}
	}

	if j != nil {
		if _, err := tx.Exec(
			`INSERT INTO session_journals (session_id, events, digest, blob) VALUES (?, ?, ?, ?)`,
			id, j.Events, j.Digest, j.Blob,
		); err != nil {
			return 0, fmt.Errorf("storage: cannot save journal: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("storage: cannot commit session: %w", err)
	}
	return id, nil
}

const sessionColumns = `id, uuid, started_at, duration_ms, seed, difficulty, waves_completed,
	final_wave, score, resources_collected, enemies_defeated, shots_fired, shots_hit, accuracy`

type scanner interface {
	Scan(dest ...any) error
}

func scanSession(row scanner) (SessionSummary, error) {
	var s SessionSummary
	var startedAt any
	err := row.Scan(
		&s.ID,
		&s.UUID,
		&startedAt,
		&s.DurationMs,
		&s.Seed,
		&s.Difficulty,
		&s.WavesCompleted,
		&s.FinalWave,
		&s.Score,
		&s.ResourcesCollected,
		&s.EnemiesDefeated,
		&s.ShotsFired,
		&s.ShotsHit,
		&s.Accuracy,
	)
	if err != nil {
		return s, err
	}
	s.StartedAt = parseTime(startedAt)
	return s, nil
}

// parseTime handles both time.Time and string column values.
func parseTime(v any) time.Time {
	switch v := v.(type) {
	case time.Time:
		return v
	case string:
		if parsed, err := time.Parse(timeLayout, v); err == nil {
			return parsed
		}
	}
	return time.Time{}
}

// RecentSessions returns the most recent sessions, newest first.
func (s *Store) RecentSessions(limit int) ([]SessionSummary, error) {
	if limit <= 0 {
		limit = 10
	}

	rows, err := s.db.Query(
		`SELECT `+sessionColumns+`
		 FROM game_sessions
		 ORDER BY id DESC
		 LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot query sessions: %w", err)
	}
	defer rows.Close()

	var sessions []SessionSummary
	for rows.Next() {
		sess, err := scanSession(rows)
		if err != nil {
			return nil, fmt.Errorf("storage: cannot scan row: %w", err)
		}
		sessions = append(sessions, sess)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("storage: row iteration error: %w", err)
	}

	return sessions, nil
}

// Session returns one session by row ID, or nil if it does not exist.
func (s *Store) Session(id int64) (*SessionSummary, error) {
	sess, err := scanSession(s.db.QueryRow(
		`SELECT `+sessionColumns+` FROM game_sessions WHERE id = ?`, id,
	))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("storage: cannot query session: %w", err)
	}
	return &sess, nil
}

// Placements returns the defenses placed in a session, in placement order.
func (s *Store) Placements(sessionID int64) ([]stats.PlacementRecord, error) {
	rows, err := s.db.Query(
		`SELECT defense_type, orbital_radius, angle, upgrade_level, damage_dealt
		 FROM defense_placements
		 WHERE session_id = ?
		 ORDER BY rowid`,
		sessionID,
	)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot query placements: %w", err)
	}
	defer rows.Close()

	var out []stats.PlacementRecord
	for rows.Next() {
		var p stats.PlacementRecord
		if err := rows.Scan(&p.Kind, &p.OrbitalRadius, &p.Angle, &p.UpgradeLevel, &p.DamageDealt); err != nil {
			return nil, fmt.Errorf("storage: cannot scan placement: %w", err)
		}
		out = append(out, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("storage: row iteration error: %w", err)
	}
	return out, nil
}

// Enemies returns the defeated-enemy records of a session.
func (s *Store) Enemies(sessionID int64) ([]stats.SurvivalRecord, error) {
	rows, err := s.db.Query(
		`SELECT enemy_type, survival_time, penetration_depth
		 FROM enemy_data
		 WHERE session_id = ?
		 ORDER BY rowid`,
		sessionID,
	)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot query enemy data: %w", err)
	}
	defer rows.Close()

	var out []stats.SurvivalRecord
	for rows.Next() {
		var e stats.SurvivalRecord
		if err := rows.Scan(&e.EnemyKind, &e.SurvivalMs, &e.PenetrationDepth); err != nil {
			return nil, fmt.Errorf("storage: cannot scan enemy data: %w", err)
		}
		out = append(out, e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("storage: row iteration error: %w", err)
	}
	return out, nil
}

// SurvivalByType aggregates enemy_data across all sessions.
func (s *Store) SurvivalByType() ([]TypeSurvival, error) {
	rows, err := s.db.Query(
		`SELECT enemy_type, COUNT(*), AVG(survival_time), AVG(penetration_depth)
		 FROM enemy_data
		 GROUP BY enemy_type
		 ORDER BY enemy_type`,
	)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot query survival stats: %w", err)
	}
	defer rows.Close()

	var out []TypeSurvival
	for rows.Next() {
		var ts TypeSurvival
		if err := rows.Scan(&ts.EnemyType, &ts.Count, &ts.AvgSurvivalMs, &ts.AvgPenetration); err != nil {
			return nil, fmt.Errorf("storage: cannot scan survival stats: %w", err)
		}
		out = append(out, ts)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("storage: row iteration error: %w", err)
	}
	return out, nil
}

// BestScore returns the highest score across sessions, or 0 if none exist.
func (s *Store) BestScore() (float64, error) {
	var score sql.NullFloat64
	if err := s.db.QueryRow("SELECT MAX(score) FROM game_sessions").Scan(&score); err != nil {
		return 0, fmt.Errorf("storage: cannot query best score: %w", err)
	}
	if !score.Valid {
		return 0, nil
	}
	return score.Float64, nil
}

// LoadJournal returns the journal of a session, or nil if none was saved.
func (s *Store) LoadJournal(sessionID int64) (*Journal, error) {
	var j Journal
	err := s.db.QueryRow(
		`SELECT events, digest, blob FROM session_journals WHERE session_id = ?`,
		sessionID,
	).Scan(&j.Events, &j.Digest, &j.Blob)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("storage: cannot query journal: %w", err)
	}
	return &j, nil
}

// ClearSessions deletes every stored session and its dependent rows.
func (s *Store) ClearSessions() error {
	for _, table := range []string{"session_journals", "enemy_data", "defense_placements", "game_sessions"} {
		if _, err := s.db.Exec("DELETE FROM " + table); err != nil {
			return fmt.Errorf("storage: cannot clear %s: %w", table, err)
		}
	}
	return nil
}
