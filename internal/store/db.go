// Package store persists run issuance and verification outcomes.
package store

import (
	"errors"
	"time"
)

var (
	// ErrRunNotFound means no run was ever issued under the ID.
	ErrRunNotFound = errors.New("run not found")
	// ErrRunAlreadyFinished means the run was consumed by an earlier
	// finish call; a run token is spendable exactly once.
	ErrRunAlreadyFinished = errors.New("run already finished")
)

// RunRecord is one issued run and, after finish, its verification
// outcome. Summary holds the server-computed summary as JSON; the
// client's claimed summary is never stored.
type RunRecord struct {
	ID         string     `json:"id"`
	UserID     string     `json:"user_id"`
	Seed       uint32     `json:"seed"`
	SimVersion int        `json:"sim_version"`
	TickHz     int        `json:"tick_hz"`
	MaxWaves   int        `json:"max_waves"`
	AuditTicks []uint64   `json:"audit_ticks"`
	IssuedAt   time.Time  `json:"issued_at"`
	ExpiresAt  time.Time  `json:"expires_at"`
	FinishedAt *time.Time `json:"finished_at,omitempty"`
	Verified   bool       `json:"verified"`
	Reason     string     `json:"reason,omitempty"`
	Score      int64      `json:"score"`
	Won        bool       `json:"won"`
	Summary    string     `json:"summary,omitempty"`
}

// DB is the persistence interface the service depends on.
type DB interface {
	Close() error
	Migrate() error

	// CreateRun records a freshly issued run.
	CreateRun(run *RunRecord) error

	// GetRun loads a run by ID, ErrRunNotFound if absent.
	GetRun(id string) (*RunRecord, error)

	// ConsumeRun atomically marks a run finished. It fails with
	// ErrRunNotFound for unknown IDs and ErrRunAlreadyFinished when a
	// previous finish already consumed the run.
	ConsumeRun(id string, at time.Time) error

	// RecordOutcome stores the verification verdict for a consumed run.
	RecordOutcome(id string, verified bool, reason string, score int64, won bool, summaryJSON string) error

	// UserHasWin reports whether the user has any verified victory on
	// record. Drives the one-time first-win reward bonus.
	UserHasWin(userID string) (bool, error)
}
