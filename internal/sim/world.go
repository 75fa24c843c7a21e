// Package sim implements the deterministic tick-based combat
// simulation: world state, the per-tick step function, the command
// protocol and checkpoint hashing.
//
// One World is owned by exactly one caller. Nothing in the package is
// process-global mutable state, so any number of verifications can run
// concurrently, each on its own instance.
package sim

import (
	"sort"

	"github.com/emberhold/fortress-replay-go/internal/engine"
	"github.com/emberhold/fortress-replay-go/internal/fixed"
)

// Status is the lifecycle state of a world.
type Status uint8

const (
	StatusIdle Status = iota
	StatusRunning
	StatusWon
	StatusLost
)

// Summary is the authoritative outcome of a run, derived exclusively
// from world state. The verifier returns this, never the client's
// claimed copy.
type Summary struct {
	WavesCleared int    `json:"wavesCleared"`
	Kills        int    `json:"kills"`
	Gold         int    `json:"gold"`
	Dust         int    `json:"dust"`
	FortressHP   int    `json:"fortressHp"`
	Ticks        uint64 `json:"ticks"`
	Won          bool   `json:"won"`
}

// Score folds a summary into the single ranking number.
func (s Summary) Score() int64 {
	score := int64(s.WavesCleared)*1000 + int64(s.Kills)*10 + int64(s.Gold) + int64(s.FortressHP)
	if s.Won {
		score += 5000
	}
	return score
}

// World is the full mutable simulation state for one run.
type World struct {
	cfg    Config
	status Status
	tick   uint64
	rng    *engine.Rand
	nextID EntityID

	fortress    Fortress
	heroes      []Hero
	turrets     []Turret
	enemies     []Enemy
	projectiles []Projectile

	mods      ModifierSet
	cooldowns [skillCount]uint32

	// Relic offer pending after a wave clear; consumed by ChooseRelic.
	offer        []RelicID
	offerPending bool

	wave          int // 1-based; 0 before the first wave starts
	wavesCleared  int
	spawnsLeft    int
	nextSpawnTick uint64

	kills int
	gold  int
	dust  int

	pending []Command

	auditTicks  []uint64
	checkpoints []Checkpoint
	chain       uint32
}

// New constructs a world from immutable run parameters. auditTicks
// must be sorted ascending; checkpoints are retained as those ticks
// complete.
func New(cfg Config, seed uint32, auditTicks []uint64) *World {
	w := &World{
		cfg:    cfg,
		status: StatusRunning,
		rng:    engine.NewRand(seed),
		nextID: 1,
		fortress: Fortress{
			HP:    fixed.FromInt(cfg.FortressHP),
			MaxHP: fixed.FromInt(cfg.FortressHP),
		},
		auditTicks: append([]uint64(nil), auditTicks...),
	}
	sort.Slice(w.auditTicks, func(i, j int) bool { return w.auditTicks[i] < w.auditTicks[j] })

	for i, class := range cfg.Loadout {
		h := newHero(class, rallyPos(i), cfg)
		h.ID = w.allocID()
		w.heroes = append(w.heroes, h)
		w.mods.Grant(LayerClass, classBonus(class))
	}
	for _, slot := range cfg.Turrets {
		t := newTurret(slot, cfg)
		t.ID = w.allocID()
		w.turrets = append(w.turrets, t)
	}
	w.mods.Grant(LayerSynergy, synergyBonus(cfg.Loadout))
	w.mods.Grant(LayerPillar, cfg.PillarBonus)
	w.mods.Grant(LayerPermanent, cfg.PermanentBonus)

	w.startWave(1)
	return w
}

// rallyPos spreads heroes on a short line in front of the fortress.
func rallyPos(i int) fixed.Vec {
	return fixed.V(-4+4*i, 5)
}

func (w *World) allocID() EntityID {
	id := w.nextID
	w.nextID++
	return id
}

// Tick returns the current tick counter.
func (w *World) Tick() uint64 { return w.tick }

// Status returns the lifecycle state.
func (w *World) Status() Status { return w.status }

// Checkpoints returns the checkpoints retained so far, in tick order.
func (w *World) Checkpoints() []Checkpoint { return w.checkpoints }

// Queue schedules a command. Commands must arrive in non-decreasing
// tick order and may not target a past tick; violations are refused
// here so the caller can classify them (the verifier rejects the whole
// submission instead of queuing).
func (w *World) Queue(cmd Command) bool {
	if cmd.Tick < w.tick {
		return false
	}
	if n := len(w.pending); n > 0 && cmd.Tick < w.pending[n-1].Tick {
		return false
	}
	w.pending = append(w.pending, cmd)
	return true
}

// Ended reports whether the run reached a terminal state.
func (w *World) Ended() bool {
	return w.status == StatusWon || w.status == StatusLost
}

// Summary derives the authoritative outcome from current state.
func (w *World) Summary() Summary {
	hp := w.fortress.HP
	if hp < 0 {
		hp = 0
	}
	return Summary{
		WavesCleared: w.wavesCleared,
		Kills:        w.kills,
		Gold:         w.gold,
		Dust:         w.dust,
		FortressHP:   hp.Int(),
		Ticks:        w.tick,
		Won:          w.status == StatusWon,
	}
}

// enemyByID returns the enemy with the given ID, or nil. Linear scan:
// enemy counts are small and the slice is ID-ordered.
func (w *World) enemyByID(id EntityID) *Enemy {
	for i := range w.enemies {
		if w.enemies[i].ID == id {
			return &w.enemies[i]
		}
	}
	return nil
}
