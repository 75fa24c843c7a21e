package api

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log"
	"os"
)

// SecurityLogger handles security-conscious logging. Seeds identify a
// run's entire future, so they are logged only as truncated hashes;
// run tokens are never logged at all.
type SecurityLogger struct {
	logger *log.Logger
}

// NewSecurityLogger creates a new security logger.
func NewSecurityLogger() *SecurityLogger {
	return &SecurityLogger{
		logger: log.New(os.Stdout, "[SECURITY] ", log.LstdFlags|log.LUTC),
	}
}

// LogRunIssued logs a run issuance with the seed hashed.
func (sl *SecurityLogger) LogRunIssued(requestID, runID, userID string, seed uint32, auditCount int) {
	sl.logger.Printf(
		"run_issued request_id=%s run_id=%s user_id=%s seed_hash=%s audit_ticks=%d",
		requestID, runID, userID, sl.hashSeed(seed), auditCount,
	)
}

// LogRunFinished logs a verification verdict. Claimed values are
// logged next to replayed ones so divergence is visible in the logs
// even though it never affects the verdict.
func (sl *SecurityLogger) LogRunFinished(requestID, reason string, verified bool, claimedScore, replayedScore int64) {
	sl.logger.Printf(
		"run_finished request_id=%s verified=%t reason=%s claimed_score=%d replayed_score=%d",
		requestID, verified, reason, claimedScore, replayedScore,
	)
}

// LogSecurityEvent logs failed validations and suspicious activity.
func (sl *SecurityLogger) LogSecurityEvent(requestID, eventType, description, remoteAddr string) {
	sl.logger.Printf(
		"security_event request_id=%s type=%s description=%q remote_addr=%s",
		requestID, eventType, description, remoteAddr,
	)
}

// hashSeed renders a seed as a truncated SHA256 for logging.
func (sl *SecurityLogger) hashSeed(seed uint32) string {
	sum := sha256.Sum256([]byte(fmt.Sprintf("seed:%d", seed)))
	return hex.EncodeToString(sum[:])[:16]
}
