// Package verify re-executes submitted runs against their signed
// parameters and classifies the outcome. The verifier never trusts a
// single client-supplied value: the summary and score it returns come
// from its own replay, and the client's claimed copies are treated as
// hints for observability only.
package verify

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/emberhold/fortress-replay-go/internal/engine"
	"github.com/emberhold/fortress-replay-go/internal/sim"
	"github.com/emberhold/fortress-replay-go/internal/store"
	"github.com/emberhold/fortress-replay-go/internal/token"
)

// Payload bounds are checked before any replay work, which caps the
// worst-case CPU a single request can burn.
const (
	MaxEvents      = 1000
	MaxCheckpoints = 500
)

// Submission is everything a client hands in at run finish.
type Submission struct {
	RunToken       string           `json:"runToken"`
	Events         []sim.Command    `json:"events"`
	Checkpoints    []sim.Checkpoint `json:"checkpoints"`
	FinalHash      uint32           `json:"finalHash"`
	ClaimedScore   int64            `json:"claimedScore"`
	ClaimedSummary sim.Summary      `json:"claimedSummary"`
}

// Result is the verifier's verdict. Summary and Score are always
// populated best-effort, even on rejection, so callers can log what
// the replay saw; rewards must only ever be granted on Verified.
type Result struct {
	Verified bool        `json:"verified"`
	Reason   string      `json:"reason,omitempty"`
	Score    int64       `json:"score"`
	Summary  sim.Summary `json:"summary"`
}

// Verifier owns the compiled engine parameters and the run ledger. It
// is stateless between calls: every verification constructs a fresh,
// isolated world, so concurrent requests cannot contaminate each
// other.
type Verifier struct {
	signer  *token.Signer
	db      store.DB
	baseCfg sim.Config
	now     func() time.Time
}

// New builds a verifier around the compiled base config. now may be
// nil for wall-clock time.
func New(signer *token.Signer, db store.DB, baseCfg sim.Config, now func() time.Time) *Verifier {
	if now == nil {
		now = time.Now
	}
	return &Verifier{signer: signer, db: db, baseCfg: baseCfg, now: now}
}

// reject wraps a terminal classification, carrying whatever summary
// was computed before the check failed.
func reject(reason string, summary sim.Summary, score int64) (Result, error) {
	return Result{Verified: false, Reason: reason, Score: score, Summary: summary}, nil
}

// Verify runs the ordered check sequence, short-circuiting on the
// first failure; checks are ordered cheapest-first so obviously bad
// input costs almost nothing. The returned error is non-nil only for
// infrastructure faults (storage down); a cheated or corrupt run is a
// clean Result with Verified=false.
func (v *Verifier) Verify(sub Submission) (Result, error) {
	// 1. Token signature and expiry.
	claims, err := token.ParseRun(v.signer, sub.RunToken)
	if err != nil {
		if errors.Is(err, token.ErrExpired) {
			return reject(ReasonTokenExpired, sim.Summary{}, 0)
		}
		return reject(ReasonTokenInvalid, sim.Summary{}, 0)
	}

	// 2. The token must target this verifier's engine build.
	if claims.SimVersion != engine.Version {
		return reject(ReasonSimVersionMismatch, sim.Summary{}, 0)
	}

	// 3. Payload bounds, before any replay.
	if len(sub.Events) > MaxEvents || len(sub.Checkpoints) > MaxCheckpoints {
		return reject(ReasonPayloadTooLarge, sim.Summary{}, 0)
	}

	// 4. Structural event validation and tick monotonicity.
	if reason, ok := validateEvents(sub.Events); !ok {
		return reject(reason, sim.Summary{}, 0)
	}

	// The token binds the tuning the run was issued under; a verifier
	// recompiled with different tuning must not silently replay.
	cfg := v.configFor(claims)
	if cfg.Hash() != claims.ConfigHash {
		return reject(ReasonSimVersionMismatch, sim.Summary{}, 0)
	}

	// 5. Replay and audit-checkpoint comparison.
	res := sim.Run(cfg, claims.Seed, sub.Events, claims.AuditTicks)
	if reason, ok := compareCheckpoints(res.Checkpoints, sub.Checkpoints); !ok {
		return reject(reason, res.Summary, res.Score)
	}

	// 6. Final state hash.
	if res.FinalHash != sub.FinalHash {
		return reject(ReasonFinalHashMismatch, res.Summary, res.Score)
	}

	// 7. Consume the run exactly once and persist the verdict.
	if err := v.db.ConsumeRun(claims.ID, v.now()); err != nil {
		switch {
		case errors.Is(err, store.ErrRunNotFound):
			return reject(ReasonRunNotFound, res.Summary, res.Score)
		case errors.Is(err, store.ErrRunAlreadyFinished):
			return reject(ReasonRunAlreadyFinished, res.Summary, res.Score)
		default:
			return Result{}, fmt.Errorf("consume run %s: %w", claims.ID, err)
		}
	}

	summaryJSON, err := json.Marshal(res.Summary)
	if err != nil {
		return Result{}, fmt.Errorf("encode summary: %w", err)
	}
	if err := v.db.RecordOutcome(claims.ID, true, "", res.Score, res.Summary.Won, string(summaryJSON)); err != nil {
		return Result{}, fmt.Errorf("record outcome %s: %w", claims.ID, err)
	}

	return Result{Verified: true, Score: res.Score, Summary: res.Summary}, nil
}

// configFor projects the token's parameters onto the compiled base
// config. The commander level re-derives the same permanent-layer
// bonus the issuer baked in; everything not carried explicitly is
// bound by ConfigHash.
func (v *Verifier) configFor(claims *token.RunClaims) sim.Config {
	cfg := v.baseCfg
	cfg.TickHz = claims.TickHz
	cfg.MaxWaves = claims.MaxWaves
	cfg.PermanentBonus = sim.ProgressionBonus(claims.CommanderLevel)
	return cfg
}

// validateEvents rejects structurally bad logs before replay. An
// event with an unset command type can never have been produced by a
// real client and is refused outright; in-range-but-meaningless
// commands are left to the simulation's no-op rule so both engines
// agree on them.
func validateEvents(events []sim.Command) (string, bool) {
	var prev uint64
	for i, ev := range events {
		if ev.Type == 0 {
			return ReasonEventsInvalid, false
		}
		if i > 0 && ev.Tick < prev {
			return ReasonTicksNotMonotonic, false
		}
		prev = ev.Tick
	}
	return "", true
}

// compareCheckpoints requires the submitted checkpoints to be exactly
// the replay's: one per reached audit tick, same hash, same chain. A
// missing audit tick and a wrong hash are distinct classifications
// because they imply different client failures (omission vs
// divergence).
func compareCheckpoints(replayed, submitted []sim.Checkpoint) (string, bool) {
	byTick := make(map[uint64]sim.Checkpoint, len(submitted))
	for _, cp := range submitted {
		if _, dup := byTick[cp.Tick]; dup {
			return ReasonCheckpointMismatch, false
		}
		byTick[cp.Tick] = cp
	}
	for _, want := range replayed {
		got, ok := byTick[want.Tick]
		if !ok {
			return ReasonAuditTickMissing, false
		}
		if got.Hash != want.Hash || got.Chain != want.Chain {
			return ReasonCheckpointMismatch, false
		}
		delete(byTick, want.Tick)
	}
	// Leftovers claim states the replay never attested.
	if len(byTick) > 0 {
		return ReasonCheckpointMismatch, false
	}
	return "", true
}
