package token

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// DefaultRunTTL bounds how long a client has to finish and submit a
// run, independent of simulation length.
const DefaultRunTTL = 600 * time.Second

// RunClaims is the signed capsule binding one run's immutable
// parameters. The registered ID claim carries the run ID; a run is
// consumed exactly once at finish.
type RunClaims struct {
	jwt.RegisteredClaims
	UserID         string   `json:"uid"`
	Seed           uint32   `json:"seed"`
	SimVersion     int      `json:"simVersion"`
	TickHz         int      `json:"tickHz"`
	MaxWaves       int      `json:"maxWaves"`
	CommanderLevel int      `json:"cmdLevel"`
	AuditTicks     []uint64 `json:"auditTicks"`
	ConfigHash     uint32   `json:"cfgHash"`
}

// TokenKind implements Claims.
func (RunClaims) TokenKind() Kind { return KindRun }

// AccessClaims authenticates ordinary API calls.
type AccessClaims struct {
	jwt.RegisteredClaims
	UserID string `json:"uid"`
}

func (AccessClaims) TokenKind() Kind { return KindAccess }

// SessionClaims identifies a long-lived device session.
type SessionClaims struct {
	jwt.RegisteredClaims
	UserID string `json:"uid"`
	Device string `json:"device,omitempty"`
}

func (SessionClaims) TokenKind() Kind { return KindSession }

// RefreshClaims lets a client rotate an access token.
type RefreshClaims struct {
	jwt.RegisteredClaims
	UserID string `json:"uid"`
}

func (RefreshClaims) TokenKind() Kind { return KindRefresh }

// RunParams are the inputs to MintRun.
type RunParams struct {
	RunID          string
	UserID         string
	Seed           uint32
	SimVersion     int
	TickHz         int
	MaxWaves       int
	CommanderLevel int
	AuditTicks     []uint64
	ConfigHash     uint32
	TTL            time.Duration
}

// MintRun signs a run token. Zero TTL takes the default.
func MintRun(s *Signer, p RunParams) (string, error) {
	ttl := p.TTL
	if ttl <= 0 {
		ttl = DefaultRunTTL
	}
	return Mint(s, RunClaims{
		RegisteredClaims: s.registered(p.RunID, ttl),
		UserID:           p.UserID,
		Seed:             p.Seed,
		SimVersion:       p.SimVersion,
		TickHz:           p.TickHz,
		MaxWaves:         p.MaxWaves,
		CommanderLevel:   p.CommanderLevel,
		AuditTicks:       p.AuditTicks,
		ConfigHash:       p.ConfigHash,
	})
}

// ParseRun verifies a run token and returns its claims.
func ParseRun(s *Signer, raw string) (*RunClaims, error) {
	return Parse[RunClaims](s, raw)
}
