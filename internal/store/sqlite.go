package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

// SQLiteDB implements the DB interface using SQLite.
type SQLiteDB struct {
	db *sql.DB
}

// NewSQLiteDB opens (creating if needed) the run database.
func NewSQLiteDB(path string) (*SQLiteDB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// WAL keeps concurrent verification writers from serializing on
	// the journal.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}

	// A single connection avoids SQLITE_BUSY under concurrent
	// verifications; statements queue in the pool instead.
	db.SetMaxOpenConns(1)

	return &SQLiteDB{db: db}, nil
}

// Close closes the database connection.
func (s *SQLiteDB) Close() error {
	return s.db.Close()
}

// Migrate runs database migrations.
func (s *SQLiteDB) Migrate() error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS runs (
			id TEXT PRIMARY KEY,
			user_id TEXT NOT NULL,
			seed INTEGER NOT NULL,
			sim_version INTEGER NOT NULL,
			tick_hz INTEGER NOT NULL,
			max_waves INTEGER NOT NULL,
			audit_ticks TEXT NOT NULL,
			issued_at DATETIME NOT NULL,
			expires_at DATETIME NOT NULL,
			finished_at DATETIME,
			verified INTEGER NOT NULL DEFAULT 0,
			reason TEXT NOT NULL DEFAULT '',
			score INTEGER NOT NULL DEFAULT 0,
			won INTEGER NOT NULL DEFAULT 0,
			summary TEXT NOT NULL DEFAULT ''
		)`,
		`CREATE INDEX IF NOT EXISTS idx_runs_user ON runs(user_id, issued_at)`,
		`CREATE INDEX IF NOT EXISTS idx_runs_expiry ON runs(expires_at)`,
	}

	for _, migration := range migrations {
		if _, err := s.db.Exec(migration); err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}
	}

	return nil
}

// CreateRun records a freshly issued run.
func (s *SQLiteDB) CreateRun(run *RunRecord) error {
	ticks, err := json.Marshal(run.AuditTicks)
	if err != nil {
		return fmt.Errorf("encode audit ticks: %w", err)
	}

	query := `INSERT INTO runs (
		id, user_id, seed, sim_version, tick_hz, max_waves,
		audit_ticks, issued_at, expires_at
	) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`

	_, err = s.db.Exec(query,
		run.ID, run.UserID, run.Seed, run.SimVersion, run.TickHz,
		run.MaxWaves, string(ticks), run.IssuedAt.UTC(), run.ExpiresAt.UTC(),
	)
	return err
}

// GetRun loads a run by ID.
func (s *SQLiteDB) GetRun(id string) (*RunRecord, error) {
	query := `SELECT id, user_id, seed, sim_version, tick_hz, max_waves,
		audit_ticks, issued_at, expires_at, finished_at,
		verified, reason, score, won, summary
		FROM runs WHERE id = ?`

	var run RunRecord
	var ticks string
	var finished sql.NullTime
	err := s.db.QueryRow(query, id).Scan(
		&run.ID, &run.UserID, &run.Seed, &run.SimVersion, &run.TickHz,
		&run.MaxWaves, &ticks, &run.IssuedAt, &run.ExpiresAt, &finished,
		&run.Verified, &run.Reason, &run.Score, &run.Won, &run.Summary,
	)
	if err == sql.ErrNoRows {
		return nil, ErrRunNotFound
	}
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(ticks), &run.AuditTicks); err != nil {
		return nil, fmt.Errorf("decode audit ticks: %w", err)
	}
	if finished.Valid {
		t := finished.Time
		run.FinishedAt = &t
	}
	return &run, nil
}

// ConsumeRun atomically marks a run finished. The guard on
// finished_at IS NULL is what makes a second finish attempt observable
// as ErrRunAlreadyFinished rather than silently double-spending.
func (s *SQLiteDB) ConsumeRun(id string, at time.Time) error {
	res, err := s.db.Exec(
		`UPDATE runs SET finished_at = ? WHERE id = ? AND finished_at IS NULL`,
		at.UTC(), id,
	)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 1 {
		return nil
	}

	// Nothing updated: distinguish unknown from already consumed.
	var exists int
	err = s.db.QueryRow(`SELECT 1 FROM runs WHERE id = ?`, id).Scan(&exists)
	if err == sql.ErrNoRows {
		return ErrRunNotFound
	}
	if err != nil {
		return err
	}
	return ErrRunAlreadyFinished
}

// RecordOutcome stores the verification verdict for a consumed run.
func (s *SQLiteDB) RecordOutcome(id string, verified bool, reason string, score int64, won bool, summaryJSON string) error {
	res, err := s.db.Exec(
		`UPDATE runs SET verified = ?, reason = ?, score = ?, won = ?, summary = ? WHERE id = ?`,
		verified, reason, score, won, summaryJSON, id,
	)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrRunNotFound
	}
	return nil
}

// UserHasWin reports whether the user already has a verified victory.
func (s *SQLiteDB) UserHasWin(userID string) (bool, error) {
	var one int
	err := s.db.QueryRow(
		`SELECT 1 FROM runs WHERE user_id = ? AND verified = 1 AND won = 1 LIMIT 1`,
		userID,
	).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}
