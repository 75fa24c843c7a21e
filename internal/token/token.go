// Package token implements the signed-token envelopes used around a
// run: access, session, run and refresh tokens share one wire shape
// (JWT, three dot-separated segments) but sign under independent keys
// derived per kind, so a token of one kind can never verify as
// another. The payload is plaintext-readable by design: audit ticks
// are visible to the client, and that is fine because the guarantee
// comes from final-hash replay, not audit-tick secrecy.
package token

import (
	"crypto/hmac"
	"crypto/sha256"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Kind names a signing domain.
type Kind string

const (
	KindAccess  Kind = "access"
	KindSession Kind = "session"
	KindRun     Kind = "run"
	KindRefresh Kind = "refresh"
)

var (
	// ErrExpired marks a structurally valid token past its expiry.
	ErrExpired = errors.New("token expired")
	// ErrInvalid marks a token that fails signature or shape checks,
	// including a token minted under a different kind's key.
	ErrInvalid = errors.New("token invalid")
)

// Claims is implemented by every payload variant. Kind is a static
// property of the type, which is what makes cross-kind verification a
// compile-time impossibility: Parse[RunClaims] can only ever check
// against the run-domain key.
type Claims interface {
	jwt.Claims
	TokenKind() Kind
}

// Signer mints and verifies tokens for all kinds from one master
// secret. Per-kind keys are derived with HMAC-SHA256 over a fixed
// label, never used raw.
type Signer struct {
	master []byte
	issuer string
	now    func() time.Time
}

// NewSigner builds a signer. now may be nil for wall-clock time; tests
// inject a frozen clock.
func NewSigner(master []byte, issuer string, now func() time.Time) (*Signer, error) {
	if len(master) < 16 {
		return nil, fmt.Errorf("token master secret too short: %d bytes", len(master))
	}
	if now == nil {
		now = time.Now
	}
	return &Signer{master: master, issuer: issuer, now: now}, nil
}

// keyFor derives the signing key for one kind.
func (s *Signer) keyFor(kind Kind) []byte {
	m := hmac.New(sha256.New, s.master)
	m.Write([]byte("token:" + kind))
	return m.Sum(nil)
}

// Mint signs claims under their kind's key with HS256.
func Mint[C Claims](s *Signer, claims C) (string, error) {
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := tok.SignedString(s.keyFor(claims.TokenKind()))
	if err != nil {
		return "", fmt.Errorf("sign %s token: %w", claims.TokenKind(), err)
	}
	return signed, nil
}

// Parse verifies raw against the key of C's kind and returns the typed
// claims. Expiry surfaces as ErrExpired; every other failure collapses
// into ErrInvalid, keeping the rejection taxonomy stable.
func Parse[C any, PC interface {
	*C
	Claims
}](s *Signer, raw string) (*C, error) {
	claims := PC(new(C))
	_, err := jwt.ParseWithClaims(raw, claims, func(*jwt.Token) (any, error) {
		return s.keyFor(claims.TokenKind()), nil
	},
		jwt.WithValidMethods([]string{"HS256"}),
		jwt.WithIssuer(s.issuer),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpired
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	return (*C)(claims), nil
}

// registered builds the shared claim scaffolding.
func (s *Signer) registered(id string, ttl time.Duration) jwt.RegisteredClaims {
	now := s.now()
	return jwt.RegisteredClaims{
		ID:        id,
		Issuer:    s.issuer,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	}
}
