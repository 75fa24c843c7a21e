package api

import (
	"github.com/emberhold/fortress-replay-go/internal/rewards"
	"github.com/emberhold/fortress-replay-go/internal/sim"
)

// EngineError is the structured error body every non-2xx response
// carries.
type EngineError struct {
	Type      string                 `json:"type"`
	Message   string                 `json:"message"`
	Context   map[string]interface{} `json:"context,omitempty"`
	RequestID string                 `json:"request_id,omitempty"`
}

// Error implements the error interface.
func (e EngineError) Error() string {
	return e.Message
}

// Error types for the structured error body.
const (
	ErrTypeValidation  = "validation_error"
	ErrTypeRateLimit   = "rate_limit_exceeded"
	ErrTypeNotFound    = "not_found"
	ErrTypeInternal    = "internal_error"
	ErrTypeUnavailable = "service_unavailable"
)

// StartRunRequest asks for a fresh signed run.
type StartRunRequest struct {
	UserID         string `json:"userId"`
	CommanderLevel int    `json:"commanderLevel"`
	// Loadout names a server-defined hero preset. Empty selects the
	// default preset.
	Loadout string `json:"loadout,omitempty"`
}

// ProgressionBonuses tells the client what its account standing is
// worth before the run starts. Display-only; the authoritative values
// live in the signed token and the reward curve.
type ProgressionBonuses struct {
	PermanentBonus    sim.Stats `json:"permanentBonus"`
	WinMultiplier     string    `json:"winMultiplier"`
	FirstWinAvailable bool      `json:"firstWinAvailable"`
}

// StartRunResponse carries everything the client engine needs to start
// a deterministic run.
type StartRunResponse struct {
	RunID       string             `json:"runId"`
	RunToken    string             `json:"runToken"`
	Seed        uint32             `json:"seed"`
	SimVersion  int                `json:"simVersion"`
	TickHz      int                `json:"tickHz"`
	MaxWaves    int                `json:"maxWaves"`
	AuditTicks  []uint64           `json:"auditTicks"`
	Progression ProgressionBonuses `json:"progression"`
}

// FinishRunRequest submits a completed run for verification. Score and
// Summary are the client's claims; they are never trusted, only logged
// against the replayed values.
type FinishRunRequest struct {
	RunToken    string           `json:"runToken"`
	Events      []sim.Command    `json:"events"`
	Checkpoints []sim.Checkpoint `json:"checkpoints"`
	FinalHash   uint32           `json:"finalHash"`
	Score       int64            `json:"score"`
	Summary     sim.Summary      `json:"summary"`
}

// FinishRunResponse is the verdict. Score and Summary are the server's
// replayed values; Rewards is present only on a verified run.
type FinishRunResponse struct {
	Verified bool           `json:"verified"`
	Reason   string         `json:"reason,omitempty"`
	Score    int64          `json:"score"`
	Summary  sim.Summary    `json:"summary"`
	Rewards  *rewards.Grant `json:"rewards,omitempty"`
}

// VersionResponse reports the running build.
type VersionResponse struct {
	SimVersion     int    `json:"simVersion"`
	ServiceVersion string `json:"serviceVersion"`
	GitCommit      string `json:"gitCommit,omitempty"`
	BuildTime      string `json:"buildTime,omitempty"`
}
