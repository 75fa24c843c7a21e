package sim

// Result is the full output of a locally executed or replayed run.
type Result struct {
	Checkpoints []Checkpoint `json:"checkpoints"`
	FinalHash   uint32       `json:"finalHash"`
	Summary     Summary      `json:"summary"`
	Score       int64        `json:"score"`
}

// Run executes a complete simulation from immutable parameters: the
// driver used identically by the local client harness and the
// server-side verifier. Commands must already be in non-decreasing
// tick order; commands scheduled past the run's end are never applied,
// on either side, so they cannot desynchronize the replay.
//
// A run that reaches MaxRunTicks without a win or loss is forced to a
// loss, which bounds replay CPU together with the payload limits.
func Run(cfg Config, seed uint32, commands []Command, auditTicks []uint64) Result {
	w := New(cfg, seed, auditTicks)
	for _, cmd := range commands {
		w.Queue(cmd)
	}

	limit := MaxRunTicks(cfg)
	for !w.Ended() && w.tick < limit {
		w.Step()
	}
	if !w.Ended() {
		w.status = StatusLost
	}

	summary := w.Summary()
	return Result{
		Checkpoints: w.Checkpoints(),
		FinalHash:   w.StateHash(),
		Summary:     summary,
		Score:       summary.Score(),
	}
}
