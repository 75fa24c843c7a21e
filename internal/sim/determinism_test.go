package sim

import "testing"

// Replaying the same seed and command log twice must yield identical
// checkpoint hashes and the identical final hash. This is the core
// guarantee the verification protocol rests on.
func TestRunDeterminism(t *testing.T) {
	cfg := DefaultConfig()
	commands := []Command{
		{Tick: 40, Type: CmdActivateSkill, Skill: SkillFirestorm, X: 0, Y: 0},
		{Tick: 700, Type: CmdReroll},
		{Tick: 700, Type: CmdChooseRelic, Choice: 1},
	}
	audits := []uint64{100, 300, 600}

	a := Run(cfg, 0xC0FFEE, commands, audits)
	b := Run(cfg, 0xC0FFEE, commands, audits)

	if a.FinalHash != b.FinalHash {
		t.Fatalf("final hash diverged: %08x vs %08x", a.FinalHash, b.FinalHash)
	}
	if len(a.Checkpoints) != len(b.Checkpoints) {
		t.Fatalf("checkpoint count diverged: %d vs %d", len(a.Checkpoints), len(b.Checkpoints))
	}
	for i := range a.Checkpoints {
		if a.Checkpoints[i] != b.Checkpoints[i] {
			t.Errorf("checkpoint %d diverged: %+v vs %+v", i, a.Checkpoints[i], b.Checkpoints[i])
		}
	}
	if a.Summary != b.Summary {
		t.Errorf("summary diverged: %+v vs %+v", a.Summary, b.Summary)
	}
	if a.Score != b.Score {
		t.Errorf("score diverged: %d vs %d", a.Score, b.Score)
	}
}

func TestDifferentSeedsDiverge(t *testing.T) {
	cfg := DefaultConfig()
	a := Run(cfg, 1, nil, nil)
	b := Run(cfg, 2, nil, nil)
	if a.FinalHash == b.FinalHash {
		t.Error("different seeds produced the same final hash")
	}
}

func TestCommandsChangeOutcome(t *testing.T) {
	cfg := DefaultConfig()
	audits := []uint64{100}
	plain := Run(cfg, 77, nil, audits)
	cast := Run(cfg, 77, []Command{
		{Tick: 80, Type: CmdActivateSkill, Skill: SkillFirestorm, X: 0, Y: 0},
	}, audits)
	// Firestorm arms a 240-tick cooldown at tick 80; the checkpoint at
	// tick 100 must see it.
	if len(plain.Checkpoints) == 0 || len(cast.Checkpoints) == 0 {
		t.Fatal("expected a checkpoint at tick 100")
	}
	if plain.Checkpoints[0].Hash == cast.Checkpoints[0].Hash {
		t.Error("a skill cast left the audit checkpoint unchanged")
	}
}

// Malformed commands are defined no-ops: a log full of garbage must
// reach the exact same state as an empty log, because no-ops consume
// no PRNG draws.
func TestInvalidCommandsAreNoOps(t *testing.T) {
	cfg := DefaultConfig()
	garbage := []Command{
		{Tick: 10, Type: CmdChooseRelic, Choice: 2},            // no offer pending
		{Tick: 11, Type: CmdReroll},                            // no offer pending
		{Tick: 12, Type: CmdActivateSkill, Skill: 99},          // unknown skill
		{Tick: 13, Type: CmdActivateSkill, Skill: SkillVolley}, // auto skill, not commandable
		{Tick: 14, Type: CommandType(200)},                     // unknown command type
		{Tick: 15, Type: CmdChooseRelic, Choice: -1},           // negative choice
	}
	clean := Run(cfg, 31337, nil, []uint64{200})
	dirty := Run(cfg, 31337, garbage, []uint64{200})

	if clean.FinalHash != dirty.FinalHash {
		t.Fatalf("garbage commands changed final hash: %08x vs %08x", clean.FinalHash, dirty.FinalHash)
	}
	if clean.Summary != dirty.Summary {
		t.Errorf("garbage commands changed summary: %+v vs %+v", clean.Summary, dirty.Summary)
	}
}

// A targeted skill commanded while on cooldown is a no-op; the second
// cast right after the first must not change the outcome relative to a
// single cast.
func TestSkillCooldownGatesCommands(t *testing.T) {
	cfg := DefaultConfig()
	once := Run(cfg, 5, []Command{
		{Tick: 70, Type: CmdActivateSkill, Skill: SkillFirestorm, X: 0, Y: 0},
	}, nil)
	twice := Run(cfg, 5, []Command{
		{Tick: 70, Type: CmdActivateSkill, Skill: SkillFirestorm, X: 0, Y: 0},
		{Tick: 71, Type: CmdActivateSkill, Skill: SkillFirestorm, X: 0, Y: 0},
	}, nil)
	if once.FinalHash != twice.FinalHash {
		t.Error("cooldown-gated second cast changed the final hash")
	}
}

func TestFreshWorldsHashIdentically(t *testing.T) {
	cfg := DefaultConfig()
	w1 := New(cfg, 42, nil)
	w2 := New(cfg, 42, nil)
	if w1.StateHash() != w2.StateHash() {
		t.Fatal("two fresh worlds from identical parameters hash differently")
	}
	w2.Step()
	if w1.StateHash() == w2.StateHash() {
		t.Fatal("stepping did not change the state hash")
	}
}
