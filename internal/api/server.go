// Package api exposes the run issuance and verification service over
// HTTP. Handlers never run a replay inline: finish submissions go
// through the verifier pool so concurrent replays stay bounded.
package api

import (
	"encoding/json"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/emberhold/fortress-replay-go/internal/rewards"
	"github.com/emberhold/fortress-replay-go/internal/sim"
	"github.com/emberhold/fortress-replay-go/internal/store"
	"github.com/emberhold/fortress-replay-go/internal/token"
	"github.com/emberhold/fortress-replay-go/internal/verify"
)

// Options tunes a Server. Zero values select working defaults.
type Options struct {
	BaseConfig      sim.Config    // zero -> sim.DefaultConfig()
	Curve           rewards.Curve // zero -> rewards.DefaultCurve()
	RunTTL          time.Duration // zero -> token.DefaultRunTTL
	VerifyWorkers   int           // <=0 -> GOMAXPROCS
	StartPerMinute  int           // <=0 -> 30
	FinishPerMinute int           // <=0 -> 10
	Now             func() time.Time
}

// Server handles HTTP requests.
type Server struct {
	db       store.DB
	signer   *token.Signer
	baseCfg  sim.Config
	curve    rewards.Curve
	pool     *verify.Pool
	runTTL   time.Duration
	now      func() time.Time
	logger   *log.Logger
	security *SecurityLogger

	startLimits  *rateLimits
	finishLimits *rateLimits
}

// NewServer creates a new API server. Close must be called to stop the
// verifier pool.
func NewServer(db store.DB, signer *token.Signer, opts Options) *Server {
	if opts.BaseConfig.TickHz == 0 {
		opts.BaseConfig = sim.DefaultConfig()
	}
	if opts.Curve.GoldPerWave.IsZero() {
		opts.Curve = rewards.DefaultCurve()
	}
	if opts.RunTTL <= 0 {
		opts.RunTTL = token.DefaultRunTTL
	}
	if opts.StartPerMinute <= 0 {
		opts.StartPerMinute = 30
	}
	if opts.FinishPerMinute <= 0 {
		opts.FinishPerMinute = 10
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	verifier := verify.New(signer, db, opts.BaseConfig, opts.Now)
	return &Server{
		db:           db,
		signer:       signer,
		baseCfg:      opts.BaseConfig,
		curve:        opts.Curve,
		pool:         verify.NewPool(verifier, opts.VerifyWorkers),
		runTTL:       opts.RunTTL,
		now:          opts.Now,
		logger:       log.New(os.Stdout, "[API] ", log.LstdFlags|log.LUTC),
		security:     NewSecurityLogger(),
		startLimits:  newRateLimits(opts.StartPerMinute),
		finishLimits: newRateLimits(opts.FinishPerMinute),
	}
}

// Close stops the verifier pool after in-flight verifications finish.
func (s *Server) Close() {
	s.pool.Close()
}

// Routes sets up the HTTP routes with proper middleware.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.SecurityLoggingMiddleware)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))
	r.Use(middleware.Heartbeat("/health"))

	r.Get("/version", s.handleVersion)
	r.Route("/runs", func(r chi.Router) {
		r.Post("/start", s.handleStartRun)
		r.Post("/finish", s.handleFinishRun)
		r.Get("/{runID}", s.handleGetRun)
	})

	return r
}

// writeJSON writes a JSON response with proper headers.
func (s *Server) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("X-Service-Version", ServiceVersion)
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		http.Error(w, "Internal server error", http.StatusInternalServerError)
	}
}

// writeError writes a structured error response.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, status int, errType, message string, context map[string]interface{}) {
	s.writeJSON(w, status, EngineError{
		Type:      errType,
		Message:   message,
		Context:   context,
		RequestID: middleware.GetReqID(r.Context()),
	})
}
