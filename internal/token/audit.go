package token

import "github.com/emberhold/fortress-replay-go/internal/engine"

// auditSalt decorrelates the audit-tick stream from the run's own
// draw sequence, which starts from the raw seed.
const auditSalt uint32 = 0x51AB0B5E

// SampleAuditTicks deterministically picks 3 to 5 ascending audit
// ticks inside (0, expectedTicks]. Sampling is stratified: the range
// splits into one segment per tick, and each segment contributes one
// tick, which guarantees ascending order and coverage of early, mid
// and late run without sorting.
//
// Determinism matters here: reissuing a token for the same seed yields
// the same schedule, so a retried issuance cannot be farmed for an
// easier audit.
func SampleAuditTicks(seed uint32, expectedTicks uint64) []uint64 {
	if expectedTicks < 16 {
		expectedTicks = 16
	}
	r := engine.NewRand(seed ^ auditSalt)
	count := 3 + r.Intn(3) // 3..5

	seg := expectedTicks / uint64(count)
	ticks := make([]uint64, 0, count)
	for i := 0; i < count; i++ {
		lo := uint64(i) * seg
		off := uint64(r.Intn(int(seg)))
		tick := lo + off
		if tick == 0 {
			tick = 1
		}
		ticks = append(ticks, tick)
	}
	return ticks
}
