package token

import (
	"errors"
	"strings"
	"testing"
	"time"
)

var testSecret = []byte("0123456789abcdef0123456789abcdef")

func testSigner(t *testing.T, now func() time.Time) *Signer {
	t.Helper()
	s, err := NewSigner(testSecret, "fortress-test", now)
	if err != nil {
		t.Fatalf("NewSigner: %v", err)
	}
	return s
}

func TestRunTokenRoundTrip(t *testing.T) {
	s := testSigner(t, nil)
	raw, err := MintRun(s, RunParams{
		RunID:      "run-1",
		UserID:     "user-9",
		Seed:       0xFEEDFACE,
		SimVersion: 3,
		TickHz:     30,
		MaxWaves:   10,
		AuditTicks: []uint64{120, 600, 2000},
		ConfigHash: 0xABCD1234,
	})
	if err != nil {
		t.Fatalf("MintRun: %v", err)
	}

	// Wire shape: header.payload.signature.
	if parts := strings.Split(raw, "."); len(parts) != 3 {
		t.Fatalf("token has %d segments, want 3", len(parts))
	}

	claims, err := ParseRun(s, raw)
	if err != nil {
		t.Fatalf("ParseRun: %v", err)
	}
	if claims.ID != "run-1" || claims.UserID != "user-9" {
		t.Errorf("identity fields lost: %+v", claims)
	}
	if claims.Seed != 0xFEEDFACE || claims.SimVersion != 3 || claims.ConfigHash != 0xABCD1234 {
		t.Errorf("run parameters lost: %+v", claims)
	}
	if len(claims.AuditTicks) != 3 || claims.AuditTicks[1] != 600 {
		t.Errorf("audit ticks lost: %v", claims.AuditTicks)
	}
}

func TestExpiredRunToken(t *testing.T) {
	issued := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	clock := issued
	s := testSigner(t, func() time.Time { return clock })

	raw, err := MintRun(s, RunParams{RunID: "run-2", UserID: "u", TTL: 600 * time.Second})
	if err != nil {
		t.Fatalf("MintRun: %v", err)
	}

	clock = issued.Add(599 * time.Second)
	if _, err := ParseRun(s, raw); err != nil {
		t.Fatalf("token rejected before expiry: %v", err)
	}

	clock = issued.Add(601 * time.Second)
	if _, err := ParseRun(s, raw); !errors.Is(err, ErrExpired) {
		t.Fatalf("expired token error = %v, want ErrExpired", err)
	}
}

// A token minted in one signing domain must never verify in another,
// even though the payloads are structurally similar.
func TestKindIsolation(t *testing.T) {
	s := testSigner(t, nil)

	access, err := Mint(s, AccessClaims{
		RegisteredClaims: s.registered("tok-a", time.Hour),
		UserID:           "u1",
	})
	if err != nil {
		t.Fatalf("mint access: %v", err)
	}
	refresh, err := Mint(s, RefreshClaims{
		RegisteredClaims: s.registered("tok-r", time.Hour),
		UserID:           "u1",
	})
	if err != nil {
		t.Fatalf("mint refresh: %v", err)
	}
	run, err := MintRun(s, RunParams{RunID: "tok-run", UserID: "u1"})
	if err != nil {
		t.Fatalf("mint run: %v", err)
	}

	if _, err := ParseRun(s, access); !errors.Is(err, ErrInvalid) {
		t.Errorf("access token parsed as run token: %v", err)
	}
	if _, err := ParseRun(s, refresh); !errors.Is(err, ErrInvalid) {
		t.Errorf("refresh token parsed as run token: %v", err)
	}
	if _, err := Parse[AccessClaims](s, run); !errors.Is(err, ErrInvalid) {
		t.Errorf("run token parsed as access token: %v", err)
	}
	if _, err := Parse[RefreshClaims](s, run); !errors.Is(err, ErrInvalid) {
		t.Errorf("run token parsed as refresh token: %v", err)
	}

	// Each token still verifies in its own domain.
	if _, err := Parse[AccessClaims](s, access); err != nil {
		t.Errorf("access token failed in its own domain: %v", err)
	}
	if _, err := ParseRun(s, run); err != nil {
		t.Errorf("run token failed in its own domain: %v", err)
	}
}

func TestTamperedTokenRejected(t *testing.T) {
	s := testSigner(t, nil)
	raw, err := MintRun(s, RunParams{RunID: "run-3", UserID: "u"})
	if err != nil {
		t.Fatalf("MintRun: %v", err)
	}
	parts := strings.Split(raw, ".")
	tampered := parts[0] + "." + parts[1] + "x." + parts[2]
	if _, err := ParseRun(s, tampered); !errors.Is(err, ErrInvalid) {
		t.Fatalf("tampered token error = %v, want ErrInvalid", err)
	}
}

func TestWrongIssuerRejected(t *testing.T) {
	s := testSigner(t, nil)
	other, err := NewSigner(testSecret, "someone-else", nil)
	if err != nil {
		t.Fatalf("NewSigner: %v", err)
	}
	raw, err := MintRun(other, RunParams{RunID: "run-4", UserID: "u"})
	if err != nil {
		t.Fatalf("MintRun: %v", err)
	}
	if _, err := ParseRun(s, raw); !errors.Is(err, ErrInvalid) {
		t.Fatalf("foreign issuer error = %v, want ErrInvalid", err)
	}
}

func TestSampleAuditTicks(t *testing.T) {
	for _, seed := range []uint32{0, 1, 42, 0xDEADBEEF} {
		a := SampleAuditTicks(seed, 12000)
		b := SampleAuditTicks(seed, 12000)
		if len(a) < 3 || len(a) > 5 {
			t.Fatalf("seed %d: %d audit ticks, want 3..5", seed, len(a))
		}
		for i := range a {
			if a[i] != b[i] {
				t.Fatalf("seed %d: sampling not deterministic: %v vs %v", seed, a, b)
			}
			if a[i] == 0 || a[i] > 12000 {
				t.Errorf("seed %d: tick %d out of range", seed, a[i])
			}
			if i > 0 && a[i] <= a[i-1] {
				t.Errorf("seed %d: ticks not strictly ascending: %v", seed, a)
			}
		}
	}
}
