package api

import (
	"context"
	"crypto/rand"
	"encoding/binary"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	"github.com/emberhold/fortress-replay-go/internal/engine"
	"github.com/emberhold/fortress-replay-go/internal/sim"
	"github.com/emberhold/fortress-replay-go/internal/store"
	"github.com/emberhold/fortress-replay-go/internal/token"
	"github.com/emberhold/fortress-replay-go/internal/verify"
)

// handleStartRun issues a signed run: seed, audit ticks and config
// hash are fixed here and cannot change for the lifetime of the run.
func (s *Server) handleStartRun(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetReqID(r.Context())

	var req StartRunRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, r, http.StatusBadRequest, ErrTypeValidation, "Invalid JSON format", map[string]interface{}{
			"error": err.Error(),
		})
		return
	}
	if err := ValidateStartRunRequest(&req); err != nil {
		s.security.LogSecurityEvent(requestID, "validation_failure", err.Error(), r.RemoteAddr)
		s.writeError(w, r, http.StatusBadRequest, ErrTypeValidation, err.Error(), nil)
		return
	}
	if !s.startLimits.allow(req.UserID) {
		s.security.LogSecurityEvent(requestID, "rate_limited", "run start budget exhausted", r.RemoteAddr)
		s.writeError(w, r, http.StatusTooManyRequests, ErrTypeRateLimit, verify.ReasonRateLimited, map[string]interface{}{
			"user_id": req.UserID,
		})
		return
	}

	seed, err := randomSeed()
	if err != nil {
		s.writeError(w, r, http.StatusInternalServerError, ErrTypeInternal, "Failed to generate seed", nil)
		return
	}

	// The issued config is the base tuning plus the account's
	// progression layer; its hash binds the token to exactly this
	// tuning.
	cfg := s.baseCfg
	cfg.PermanentBonus = sim.ProgressionBonus(req.CommanderLevel)

	runID := uuid.New().String()
	auditTicks := token.SampleAuditTicks(seed, sim.MaxRunTicks(cfg))
	issued := s.now()

	if err := s.db.CreateRun(&store.RunRecord{
		ID:         runID,
		UserID:     req.UserID,
		Seed:       seed,
		SimVersion: engine.Version,
		TickHz:     cfg.TickHz,
		MaxWaves:   cfg.MaxWaves,
		AuditTicks: auditTicks,
		IssuedAt:   issued,
		ExpiresAt:  issued.Add(s.runTTL),
	}); err != nil {
		s.logger.Printf("create_run_failed request_id=%s error=%v", requestID, err)
		s.writeError(w, r, http.StatusInternalServerError, ErrTypeInternal, "Failed to record run", nil)
		return
	}

	raw, err := token.MintRun(s.signer, token.RunParams{
		RunID:          runID,
		UserID:         req.UserID,
		Seed:           seed,
		SimVersion:     engine.Version,
		TickHz:         cfg.TickHz,
		MaxWaves:       cfg.MaxWaves,
		CommanderLevel: req.CommanderLevel,
		AuditTicks:     auditTicks,
		ConfigHash:     cfg.Hash(),
		TTL:            s.runTTL,
	})
	if err != nil {
		s.logger.Printf("mint_run_failed request_id=%s error=%v", requestID, err)
		s.writeError(w, r, http.StatusInternalServerError, ErrTypeInternal, "Failed to sign run", nil)
		return
	}

	hasWin, err := s.db.UserHasWin(req.UserID)
	if err != nil {
		s.logger.Printf("user_has_win_failed request_id=%s error=%v", requestID, err)
	}

	s.security.LogRunIssued(requestID, runID, req.UserID, seed, len(auditTicks))

	s.writeJSON(w, http.StatusOK, StartRunResponse{
		RunID:      runID,
		RunToken:   raw,
		Seed:       seed,
		SimVersion: engine.Version,
		TickHz:     cfg.TickHz,
		MaxWaves:   cfg.MaxWaves,
		AuditTicks: auditTicks,
		Progression: ProgressionBonuses{
			PermanentBonus:    cfg.PermanentBonus,
			WinMultiplier:     s.curve.WinMultiplier.String(),
			FirstWinAvailable: !hasWin,
		},
	})
}

// handleFinishRun submits a run to the verifier pool and maps the
// verdict. Rejections are classifications, not faults: a cheated run
// still gets a 200 with Verified=false and its reason.
func (s *Server) handleFinishRun(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetReqID(r.Context())

	var req FinishRunRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, r, http.StatusBadRequest, ErrTypeValidation, "Invalid JSON format", map[string]interface{}{
			"error": err.Error(),
		})
		return
	}
	if err := ValidateFinishRunRequest(&req); err != nil {
		s.security.LogSecurityEvent(requestID, "validation_failure", err.Error(), r.RemoteAddr)
		s.writeError(w, r, http.StatusBadRequest, ErrTypeValidation, err.Error(), nil)
		return
	}

	// Rate limiting keys on the token's user when the token parses;
	// a token too broken to parse falls back to the remote address,
	// and the verifier classifies it after the limiter.
	limitKey := r.RemoteAddr
	hadWin := false
	claims, err := token.ParseRun(s.signer, req.RunToken)
	if err == nil {
		limitKey = claims.UserID
		if hadWin, err = s.db.UserHasWin(claims.UserID); err != nil {
			s.logger.Printf("user_has_win_failed request_id=%s error=%v", requestID, err)
		}
	}
	if !s.finishLimits.allow(limitKey) {
		s.security.LogSecurityEvent(requestID, "rate_limited", "run finish budget exhausted", r.RemoteAddr)
		s.writeJSON(w, http.StatusTooManyRequests, FinishRunResponse{
			Verified: false,
			Reason:   verify.ReasonRateLimited,
		})
		return
	}

	res, err := s.pool.Submit(r.Context(), submissionFrom(&req))
	if err != nil {
		if errors.Is(err, verify.ErrPoolClosed) || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			s.writeError(w, r, http.StatusServiceUnavailable, ErrTypeUnavailable, "Verification unavailable", nil)
			return
		}
		s.logger.Printf("verify_failed request_id=%s error=%v", requestID, err)
		s.writeError(w, r, http.StatusInternalServerError, ErrTypeInternal, "Verification failed", nil)
		return
	}

	s.security.LogRunFinished(requestID, res.Reason, res.Verified, req.Score, res.Score)

	resp := FinishRunResponse{
		Verified: res.Verified,
		Reason:   res.Reason,
		Score:    res.Score,
		Summary:  res.Summary,
	}
	if res.Verified {
		grant := s.curve.Compute(res.Summary, res.Summary.Won && !hadWin)
		resp.Rewards = &grant
	}
	s.writeJSON(w, http.StatusOK, resp)
}

// handleGetRun returns the stored record for one run.
func (s *Server) handleGetRun(w http.ResponseWriter, r *http.Request) {
	runID := chi.URLParam(r, "runID")

	rec, err := s.db.GetRun(runID)
	if err != nil {
		if errors.Is(err, store.ErrRunNotFound) {
			s.writeError(w, r, http.StatusNotFound, ErrTypeNotFound, "Run not found", map[string]interface{}{
				"run_id": runID,
			})
			return
		}
		s.writeError(w, r, http.StatusInternalServerError, ErrTypeInternal, "Failed to load run", nil)
		return
	}
	s.writeJSON(w, http.StatusOK, rec)
}

// handleVersion reports the running build.
func (s *Server) handleVersion(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, VersionResponse{
		SimVersion:     engine.Version,
		ServiceVersion: ServiceVersion,
		GitCommit:      GitCommit,
		BuildTime:      BuildTime,
	})
}

// randomSeed draws a run seed from the OS entropy source. The zero
// seed is legal; the engine remaps it internally.
func randomSeed() (uint32, error) {
	var b [4]byte
	if _, err := rand.Read(b[:]); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(b[:]), nil
}
