package sim

import "github.com/emberhold/fortress-replay-go/internal/fixed"

// advanceWave is phase 6: scheduled spawns, the death sweep, then loss
// and win detection in that order. All wave PRNG draws happen here,
// after combat's crit rolls, in a fixed per-spawn order: radial
// jitter, ring X, ring side, composition.
func (w *World) advanceWave() {
	if w.spawnsLeft > 0 && w.tick >= w.nextSpawnTick {
		w.spawnEnemy()
		w.spawnsLeft--
		w.nextSpawnTick = w.tick + uint64(w.cfg.SpawnIntervalTicks)
	}

	w.sweepDead()

	// Loss beats win when both trigger on the same tick.
	if w.fortress.HP <= 0 {
		w.status = StatusLost
		return
	}
	if w.spawnsLeft == 0 && len(w.enemies) == 0 {
		w.clearWave()
	}
}

// spawnEnemy places one enemy on the spawn ring. Every fifth wave
// opens with a boss brute at triple HP; the boss skips the composition
// roll but draws its position rolls like any spawn, keeping the draw
// count per spawn position-stable.
func (w *World) spawnEnemy() {
	radius := w.cfg.SpawnRadius
	if j := w.cfg.SpawnJitter.Int(); j > 0 {
		radius += fixed.FromInt(w.rng.Range(-j, j))
	}
	// A point on the circle without trigonometry: roll X, derive |Y|
	// via fixed-point sqrt, roll the sign.
	x := fixed.FromInt(w.rng.Range(-radius.Int(), radius.Int()))
	y := fixed.Sqrt(fixed.Mul(radius, radius) - fixed.Mul(x, x))
	if w.rng.Intn(2) == 0 {
		y = -y
	}

	boss := w.wave%5 == 0 && w.firstSpawnOfWave()
	var e Enemy
	if boss {
		e = enemyStats(EnemyBrute, w.wave, w.cfg)
		e.HP = fixed.Mul(e.HP, fixed.FromInt(3))
		e.Gold *= 3
	} else {
		e = enemyStats(w.rollEnemyKind(), w.wave, w.cfg)
	}
	e.ID = w.allocID()
	e.Pos = fixed.Vec{X: x, Y: y}
	e.MaxHP = e.HP
	e.Wave = w.wave
	w.enemies = append(w.enemies, e)
}

func (w *World) firstSpawnOfWave() bool {
	return w.spawnsLeft == w.waveSpawnCount(w.wave)
}

func (w *World) waveSpawnCount(wave int) int {
	return w.cfg.WaveBaseCount + w.cfg.WaveGrowth*wave
}

// rollEnemyKind draws the composition roll: 55% grunt, 30% runner,
// 15% brute.
func (w *World) rollEnemyKind() EnemyKind {
	roll := w.rng.Intn(100)
	switch {
	case roll < 55:
		return EnemyGrunt
	case roll < 85:
		return EnemyRunner
	default:
		return EnemyBrute
	}
}

// sweepDead compacts dead enemies in ID order, crediting kills and
// gold. Removal happens only here, never mid-phase, so indices stay
// valid through combat resolution.
func (w *World) sweepDead() {
	kept := w.enemies[:0]
	for i := range w.enemies {
		e := &w.enemies[i]
		if e.HP > 0 {
			kept = append(kept, *e)
			continue
		}
		w.kills++
		w.gold += e.Gold
	}
	w.enemies = kept
}

// clearWave credits the cleared wave, rolls a fresh relic offer and
// either ends the run in victory or schedules the next wave.
func (w *World) clearWave() {
	w.wavesCleared++
	w.dust += 3 + w.wave
	if w.wavesCleared >= w.cfg.MaxWaves {
		w.status = StatusWon
		return
	}
	w.rollOffer()
	w.offerPending = true
	w.startWave(w.wave + 1)
}

// rollOffer draws three distinct relics from the pool. Draw count is
// always three regardless of pool state.
func (w *World) rollOffer() {
	pool := make([]RelicID, 0, relicCount)
	for id := RelicID(1); id <= relicCount; id++ {
		pool = append(pool, id)
	}
	offer := make([]RelicID, 0, 3)
	for i := 0; i < 3; i++ {
		pick := w.rng.Intn(len(pool))
		offer = append(offer, pool[pick])
		pool = append(pool[:pick], pool[pick+1:]...)
	}
	w.offer = offer
}

// startWave arms the spawn schedule for wave n. The first spawn lands
// a short breather after the previous wave.
func (w *World) startWave(n int) {
	w.wave = n
	w.spawnsLeft = w.waveSpawnCount(n)
	w.nextSpawnTick = w.tick + uint64(2*w.cfg.TickHz)
}
