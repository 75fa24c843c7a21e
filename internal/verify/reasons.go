package verify

// Rejection reasons are stable, user-visible identifiers, not errors:
// a rejected run is a classification, never a fault. Exactly these
// twelve exist; downstream consumers switch on them, so renaming one
// is a breaking API change.
const (
	ReasonTokenExpired       = "TOKEN_EXPIRED"
	ReasonTokenInvalid       = "TOKEN_INVALID"
	ReasonSimVersionMismatch = "SIM_VERSION_MISMATCH"
	ReasonRunNotFound        = "RUN_NOT_FOUND"
	ReasonRunAlreadyFinished = "RUN_ALREADY_FINISHED"
	ReasonEventsInvalid      = "EVENTS_INVALID"
	ReasonTicksNotMonotonic  = "TICKS_NOT_MONOTONIC"
	ReasonCheckpointMismatch = "CHECKPOINT_MISMATCH"
	ReasonAuditTickMissing   = "AUDIT_TICK_MISSING"
	ReasonFinalHashMismatch  = "FINAL_HASH_MISMATCH"
	ReasonPayloadTooLarge    = "PAYLOAD_TOO_LARGE"
	ReasonRateLimited        = "RATE_LIMITED"
)
