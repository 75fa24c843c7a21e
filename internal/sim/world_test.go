package sim

import (
	"testing"

	"github.com/emberhold/fortress-replay-go/internal/fixed"
)

func TestQueueTickOrdering(t *testing.T) {
	w := New(DefaultConfig(), 1, nil)

	if !w.Queue(Command{Tick: 100, Type: CmdReroll}) {
		t.Fatal("first command refused")
	}
	if !w.Queue(Command{Tick: 100, Type: CmdReroll}) {
		t.Error("equal tick refused; same-tick commands must apply in log order")
	}
	if w.Queue(Command{Tick: 50, Type: CmdReroll}) {
		t.Error("out-of-order command accepted")
	}
	if !w.Queue(Command{Tick: 150, Type: CmdReroll}) {
		t.Error("later command refused")
	}
}

func TestQueueRejectsPastTicks(t *testing.T) {
	w := New(DefaultConfig(), 1, nil)
	for i := 0; i < 10; i++ {
		w.Step()
	}
	if w.Queue(Command{Tick: 5, Type: CmdReroll}) {
		t.Error("command for an already-executed tick accepted")
	}
}

func TestStepAfterEndIsNoOp(t *testing.T) {
	w := New(DefaultConfig(), 1, nil)
	w.status = StatusLost
	before := w.StateHash()
	w.Step()
	if w.Tick() != 0 || w.StateHash() != before {
		t.Error("stepping an ended world mutated state")
	}
}

func TestCheckpointChainLinks(t *testing.T) {
	audits := []uint64{50, 100, 150}
	res := Run(DefaultConfig(), 9001, nil, audits)

	if len(res.Checkpoints) != len(audits) {
		t.Fatalf("got %d checkpoints, want %d", len(res.Checkpoints), len(audits))
	}
	prev := uint32(0)
	for i, cp := range res.Checkpoints {
		if cp.Tick != audits[i] {
			t.Errorf("checkpoint %d at tick %d, want %d", i, cp.Tick, audits[i])
		}
		if want := ChainHash(prev, cp.Hash); cp.Chain != want {
			t.Errorf("checkpoint %d chain = %08x, want %08x", i, cp.Chain, want)
		}
		prev = cp.Chain
	}
}

func TestRunTerminates(t *testing.T) {
	res := Run(DefaultConfig(), 123, nil, nil)
	if res.Summary.Ticks == 0 {
		t.Error("run ended at tick 0")
	}
	if res.Summary.Ticks > MaxRunTicks(DefaultConfig()) {
		t.Errorf("run overran the tick cap: %d", res.Summary.Ticks)
	}
}

func TestChooseRelicAppliesBonus(t *testing.T) {
	w := New(DefaultConfig(), 1, nil)
	w.rollOffer()
	w.offerPending = true

	before := w.mods.Layers[LayerRelic]
	w.applyCommand(Command{Type: CmdChooseRelic, Choice: 0})
	if w.mods.Layers[LayerRelic] == before {
		t.Error("chosen relic granted nothing on the relic layer")
	}
	if w.offerPending {
		t.Error("offer still pending after choice")
	}
	// A second choose against the consumed offer is a no-op.
	after := w.mods.Layers[LayerRelic]
	w.applyCommand(Command{Type: CmdChooseRelic, Choice: 0})
	if w.mods.Layers[LayerRelic] != after {
		t.Error("consumed offer granted a second relic")
	}
}

func TestRerollRedrawsOffer(t *testing.T) {
	w := New(DefaultConfig(), 1, nil)
	w.rollOffer()
	w.offerPending = true

	// Rerolling advances the PRNG; with three draws from a pool of six
	// an identical triple is possible, but the offer must always hold
	// exactly three distinct relics.
	w.applyCommand(Command{Type: CmdReroll})
	if len(w.offer) != 3 {
		t.Fatalf("offer has %d entries, want 3", len(w.offer))
	}
	seen := map[RelicID]bool{}
	for _, r := range w.offer {
		if seen[r] {
			t.Errorf("offer repeats relic %d", r)
		}
		seen[r] = true
	}
}

func TestModifierCompose(t *testing.T) {
	var m ModifierSet
	m.Grant(LayerClass, Stats{Damage: fixed.FromFloat(0.10)})
	m.Grant(LayerRelic, Stats{Damage: fixed.FromFloat(0.15)})
	m.Grant(LayerPermanent, Stats{Damage: fixed.FromFloat(0.05)})

	total := m.Compose()
	want := fixed.FromFloat(0.10) + fixed.FromFloat(0.15) + fixed.FromFloat(0.05)
	if total.Damage != want {
		t.Errorf("composed damage = %d, want %d", total.Damage, want)
	}
}

func TestComposeClampsCooldownCut(t *testing.T) {
	var m ModifierSet
	m.Grant(LayerRelic, Stats{CooldownCut: fixed.FromFloat(0.6)})
	m.Grant(LayerPillar, Stats{CooldownCut: fixed.FromFloat(0.6)})
	if got := m.Compose().CooldownCut; got != fixed.FromFloat(0.8) {
		t.Errorf("cooldown cut = %f, want clamp at 0.8", got.Float())
	}
}

func TestEffectiveCooldownFloor(t *testing.T) {
	mods := Stats{CooldownCut: fixed.FromFloat(0.8)}
	if got := effectiveCooldown(1, mods); got != 1 {
		t.Errorf("effectiveCooldown(1) = %d, want floor of 1", got)
	}
	if got := effectiveCooldown(100, mods); got != 20 {
		t.Errorf("effectiveCooldown(100) at 80%% cut = %d, want 20", got)
	}
}

func TestEnemyEffectStacking(t *testing.T) {
	e := Enemy{}
	e.addEffect(EffectSlow, 30, fixed.FromFloat(0.7))
	e.addEffect(EffectSlow, 10, fixed.FromFloat(0.5))
	if len(e.Effects) != 1 {
		t.Fatalf("slow stacked into %d instances, want refresh-in-place", len(e.Effects))
	}
	if e.Effects[0].TicksLeft != 30 {
		t.Errorf("refresh shortened duration to %d", e.Effects[0].TicksLeft)
	}
	if got := e.speedFactor(); got != fixed.FromFloat(0.5) {
		t.Errorf("speed factor = %f, want the stronger slow", got.Float())
	}

	e.addEffect(EffectStun, 5, 0)
	if !e.stunned() {
		t.Error("stun not reported")
	}
}

func TestSummaryScore(t *testing.T) {
	s := Summary{WavesCleared: 3, Kills: 12, Gold: 55, FortressHP: 400}
	if got := s.Score(); got != 3*1000+12*10+55+400 {
		t.Errorf("score = %d", got)
	}
	s.Won = true
	if got := s.Score(); got != 3*1000+12*10+55+400+5000 {
		t.Errorf("winning score = %d", got)
	}
}

func TestConfigHashSensitivity(t *testing.T) {
	a := DefaultConfig()
	b := DefaultConfig()
	if a.Hash() != b.Hash() {
		t.Fatal("identical configs hash differently")
	}
	b.MaxWaves++
	if a.Hash() == b.Hash() {
		t.Error("config change did not move the hash")
	}
}
