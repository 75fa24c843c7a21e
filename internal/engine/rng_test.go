package engine

import (
	"testing"

	"github.com/emberhold/fortress-replay-go/internal/fixed"
)

// xorshift32 with seed 1: 1 -> 1^(1<<13)=8193, >>17 leaves it, then
// 8193^(8193<<5) = 270369. Pinning the first value guards against an
// accidental reordering of the shift triple.
func TestXorshiftFirstValue(t *testing.T) {
	r := NewRand(1)
	if got := r.Uint32(); got != 270369 {
		t.Fatalf("first draw for seed 1 = %d, want 270369", got)
	}
}

func TestDeterministicSequence(t *testing.T) {
	a := NewRand(0xDEADBEEF)
	b := NewRand(0xDEADBEEF)
	for i := 0; i < 1000; i++ {
		av, bv := a.Uint32(), b.Uint32()
		if av != bv {
			t.Fatalf("streams diverged at draw %d: %d vs %d", i, av, bv)
		}
	}
}

func TestSeedsProduceDistinctStreams(t *testing.T) {
	a := NewRand(1)
	b := NewRand(2)
	same := 0
	for i := 0; i < 100; i++ {
		if a.Uint32() == b.Uint32() {
			same++
		}
	}
	if same > 2 {
		t.Errorf("seeds 1 and 2 collided on %d of 100 draws", same)
	}
}

func TestZeroSeedRemapped(t *testing.T) {
	r := NewRand(0)
	if got := r.Uint32(); got == 0 {
		t.Fatal("zero seed produced a stuck all-zero stream")
	}
}

func TestIntnBounds(t *testing.T) {
	r := NewRand(42)
	for i := 0; i < 1000; i++ {
		if v := r.Intn(7); v < 0 || v >= 7 {
			t.Fatalf("Intn(7) = %d out of range", v)
		}
	}
	before := r.State()
	if v := r.Intn(0); v != 0 {
		t.Errorf("Intn(0) = %d, want 0", v)
	}
	if r.State() != before {
		t.Error("Intn(0) advanced the stream")
	}
}

func TestRangeInclusive(t *testing.T) {
	r := NewRand(7)
	seen := map[int]bool{}
	for i := 0; i < 2000; i++ {
		v := r.Range(3, 5)
		if v < 3 || v > 5 {
			t.Fatalf("Range(3,5) = %d out of range", v)
		}
		seen[v] = true
	}
	for v := 3; v <= 5; v++ {
		if !seen[v] {
			t.Errorf("Range(3,5) never produced %d in 2000 draws", v)
		}
	}
	if v := r.Range(9, 4); v != 9 {
		t.Errorf("inverted Range = %d, want lo", v)
	}
}

func TestChanceExtremes(t *testing.T) {
	r := NewRand(99)
	for i := 0; i < 100; i++ {
		if r.Chance(0) {
			t.Fatal("Chance(0) fired")
		}
	}
	for i := 0; i < 100; i++ {
		if !r.Chance(fixed.One) {
			t.Fatal("Chance(One) failed to fire")
		}
	}
}
