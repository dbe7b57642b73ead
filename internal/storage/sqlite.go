// Package storage provides SQLite-based persistence for run history and
// player preferences.
// Uses the pure-Go modernc.org/sqlite driver to avoid CGO dependencies.
package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite" // Pure Go SQLite driver

	"github.com/vovakirdan/tui-tiles/internal/tiles"
)

// Store manages the SQLite database connection.
type Store struct {
	db  *sql.DB
	now func() time.Time
}

// RunEntry represents one finished run.
type RunEntry struct {
	ID           int64
	RunID        string
	Player       string
	Mode         string
	Score        int
	Rate         float64
	Columns      int
	DurationSecs int // Configured length, 0 outside fixed-time mode
	ElapsedMS    int64
	CreatedAt    time.Time
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

	// Create parent directories
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

	store := &Store{db: db, now: time.Now}

	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage: migration failed: %w", err)
	}

	return store, nil
}

// migrate creates the database schema if it doesn't exist.
func (s *Store) migrate() error {
	schema := `
		CREATE TABLE IF NOT EXISTS runs (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			run_id TEXT NOT NULL UNIQUE,
			player TEXT NOT NULL DEFAULT '',
			mode TEXT NOT NULL,
			score INTEGER NOT NULL,
			rate REAL NOT NULL DEFAULT 0,
			columns INTEGER NOT NULL DEFAULT 4,
			duration_secs INTEGER NOT NULL DEFAULT 0,
			elapsed_ms INTEGER NOT NULL DEFAULT 0,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		);
		CREATE INDEX IF NOT EXISTS idx_runs_mode ON runs(mode);
		CREATE INDEX IF NOT EXISTS idx_runs_top ON runs(mode, score DESC, rate DESC);

		CREATE TABLE IF NOT EXISTS prefs (
			scope TEXT NOT NULL,
			key TEXT NOT NULL,
			value TEXT NOT NULL,
			expires_at INTEGER NOT NULL DEFAULT 0,
			PRIMARY KEY (scope, key)
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

// SaveRun records a finished run and returns its generated run ID.
func (s *Store) SaveRun(e RunEntry) (string, error) {
	runID := uuid.NewString()
	_, err := s.db.Exec(
		`INSERT INTO runs (run_id, player, mode, score, rate, columns, duration_secs, elapsed_ms)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		runID, e.Player, e.Mode, e.Score, e.Rate, e.Columns, e.DurationSecs, e.ElapsedMS,
	)
	if err != nil {
		return "", fmt.Errorf("storage: cannot save run: %w", err)
	}
	return runID, nil
}

// TopScores retrieves the top N runs for the given mode.
// Results are ordered by score, then rate, descending.
func (s *Store) TopScores(mode string, limit int) ([]RunEntry, error) {
	if limit <= 0 {
		limit = 10
	}

	rows, err := s.db.Query(
		`SELECT id, run_id, player, mode, score, rate, columns, duration_secs, elapsed_ms, created_at
		 FROM runs
		 WHERE mode = ?
		 ORDER BY score DESC, rate DESC
		 LIMIT ?`,
		mode, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot query scores: %w", err)
	}
	defer rows.Close()

	var entries []RunEntry
	for rows.Next() {
		var e RunEntry
		var createdAt any
		if err := rows.Scan(&e.ID, &e.RunID, &e.Player, &e.Mode, &e.Score, &e.Rate,
			&e.Columns, &e.DurationSecs, &e.ElapsedMS, &createdAt); err != nil {
			return nil, fmt.Errorf("storage: cannot scan row: %w", err)
		}
		e.CreatedAt = parseTime(createdAt)
		entries = append(entries, e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("storage: row iteration error: %w", err)
	}

	return entries, nil
}

// HighScore returns the highest score for the given mode.
// Returns 0 if no runs exist.
func (s *Store) HighScore(mode string) (int, error) {
	var score sql.NullInt64
	err := s.db.QueryRow(
		"SELECT MAX(score) FROM runs WHERE mode = ?",
		mode,
	).Scan(&score)

	if err != nil {
		return 0, fmt.Errorf("storage: cannot query high score: %w", err)
	}

	if !score.Valid {
		return 0, nil
	}

	return int(score.Int64), nil
}

// ClearScores deletes all runs for the given mode.
func (s *Store) ClearScores(mode string) error {
	_, err := s.db.Exec("DELETE FROM runs WHERE mode = ?", mode)
	if err != nil {
		return fmt.Errorf("storage: cannot clear scores: %w", err)
	}
	return nil
}

// ModeStats contains aggregated statistics for a mode.
type ModeStats struct {
	Mode       string
	RunsCount  int
	HighScore  int
	BestRate   float64
	AvgScore   float64
	TotalTaps  int64
	LastPlayed time.Time
}

// Stats retrieves aggregated statistics for every mode that has been played.
func (s *Store) Stats() (map[string]*ModeStats, error) {
	rows, err := s.db.Query(
		`SELECT mode, COUNT(*), MAX(score), MAX(rate), AVG(score), SUM(score), MAX(created_at)
		 FROM runs
		 GROUP BY mode`,
	)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot get stats: %w", err)
	}
	defer rows.Close()

	stats := make(map[string]*ModeStats)
	for rows.Next() {
		var m ModeStats
		var lastPlayed any
		if err := rows.Scan(&m.Mode, &m.RunsCount, &m.HighScore, &m.BestRate, &m.AvgScore, &m.TotalTaps, &lastPlayed); err != nil {
			return nil, fmt.Errorf("storage: cannot scan stats row: %w", err)
		}
		m.LastPlayed = parseTime(lastPlayed)
		stats[m.Mode] = &m
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("storage: row iteration error: %w", err)
	}

	return stats, nil
}

// parseTime handles DATETIME values returned as either time.Time or string.
func parseTime(v any) time.Time {
	switch v := v.(type) {
	case time.Time:
		return v
	case string:
		if parsed, err := time.Parse("2006-01-02 15:04:05", v); err == nil {
			return parsed
		}
	}
	return time.Time{}
}

// Scope is one player's view of the store: preferences are kept apart per
// player and recorded runs carry the player's name.
// The local player has the empty name.
type Scope struct {
	store  *Store
	player string
}

// Local returns the scope of the player at this terminal.
func (s *Store) Local() *Scope {
	return &Scope{store: s}
}

// Player returns the scope of a named (remote) player.
func (s *Store) Player(name string) *Scope {
	return &Scope{store: s, player: name}
}

// Name returns the scope's player name.
func (sc *Scope) Name() string {
	return sc.player
}

// Get returns a preference value, or "" if it is missing or expired.
func (sc *Scope) Get(key string) (string, error) {
	var value string
	var expiresAt int64
	err := sc.store.db.QueryRow(
		"SELECT value, expires_at FROM prefs WHERE scope = ? AND key = ?",
		sc.player, key,
	).Scan(&value, &expiresAt)

	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("storage: cannot read preference %q: %w", key, err)
	}
	if expiresAt != 0 && sc.store.now().Unix() >= expiresAt {
		return "", sc.Delete(key)
	}
	return value, nil
}

// Set stores a preference. A positive ttlDays makes it expire.
func (sc *Scope) Set(key, value string, ttlDays int) error {
	var expiresAt int64
	if ttlDays > 0 {
		expiresAt = sc.store.now().Add(time.Duration(ttlDays) * 24 * time.Hour).Unix()
	}
	_, err := sc.store.db.Exec(
		`INSERT INTO prefs (scope, key, value, expires_at) VALUES (?, ?, ?, ?)
		 ON CONFLICT(scope, key) DO UPDATE SET value = excluded.value, expires_at = excluded.expires_at`,
		sc.player, key, value, expiresAt,
	)
	if err != nil {
		return fmt.Errorf("storage: cannot save preference %q: %w", key, err)
	}
	return nil
}

// Delete removes a preference.
func (sc *Scope) Delete(key string) error {
	_, err := sc.store.db.Exec("DELETE FROM prefs WHERE scope = ? AND key = ?", sc.player, key)
	if err != nil {
		return fmt.Errorf("storage: cannot delete preference %q: %w", key, err)
	}
	return nil
}

// All returns every unexpired preference of the scope.
func (sc *Scope) All() (map[string]string, error) {
	rows, err := sc.store.db.Query(
		"SELECT key, value, expires_at FROM prefs WHERE scope = ? ORDER BY key",
		sc.player,
	)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot list preferences: %w", err)
	}
	defer rows.Close()

	now := sc.store.now().Unix()
	out := make(map[string]string)
	for rows.Next() {
		var key, value string
		var expiresAt int64
		if err := rows.Scan(&key, &value, &expiresAt); err != nil {
			return nil, fmt.Errorf("storage: cannot scan preference: %w", err)
		}
		if expiresAt != 0 && now >= expiresAt {
			continue
		}
		out[key] = value
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("storage: row iteration error: %w", err)
	}

	return out, nil
}

// RecordResult implements tiles.ResultSink.
func (sc *Scope) RecordResult(r tiles.Result) error {
	_, err := sc.store.SaveRun(RunEntry{
		Player:       sc.player,
		Mode:         r.Mode.String(),
		Score:        r.Score,
		Rate:         r.Rate,
		Columns:      r.Columns,
		DurationSecs: int(r.Duration / time.Second),
		ElapsedMS:    r.Elapsed.Milliseconds(),
	})
	return err
}

var (
	_ tiles.Preferences = (*Scope)(nil)
	_ tiles.ResultSink  = (*Scope)(nil)
)

// PurgeExpired deletes expired preferences of every scope.
func (s *Store) PurgeExpired() (int64, error) {
	res, err := s.db.Exec("DELETE FROM prefs WHERE expires_at != 0 AND expires_at <= ?", s.now().Unix())
	if err != nil {
		return 0, fmt.Errorf("storage: cannot purge preferences: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("storage: cannot count purged rows: %w", err)
	}
	return n, nil
}
