package sim

import (
	"crypto/sha256"
	"encoding/binary"
	"hash"
)

// Checkpoint attests to world state at one audit tick. Hash covers the
// canonical serialization of the state; Chain folds the previous chain
// value in, so checkpoint i implicitly attests to checkpoints 1..i-1
// and a submission cannot drop or reorder checkpoints undetected.
type Checkpoint struct {
	Tick  uint64 `json:"tick"`
	Hash  uint32 `json:"hash"`
	Chain uint32 `json:"chain"`
}

// StateHash returns the canonical 32-bit digest of the current world
// state: SHA-256 over a fixed field order with entities in ID order,
// truncated to the first four little-endian bytes. Two independently
// constructed engines in identical state produce identical hashes on
// any host.
func (w *World) StateHash() uint32 {
	h := sha256.New()
	var tmp [8]byte

	w.digestHeader(h, &tmp)
	w.digestEntities(h, &tmp)

	sum := h.Sum(nil)
	return binary.LittleEndian.Uint32(sum[:4])
}

// ChainHash folds a state hash into the previous chain value.
func ChainHash(prevChain, stateHash uint32) uint32 {
	var buf [8]byte
	binary.LittleEndian.PutUint32(buf[:4], prevChain)
	binary.LittleEndian.PutUint32(buf[4:], stateHash)
	sum := sha256.Sum256(buf[:])
	return binary.LittleEndian.Uint32(sum[:4])
}

// recordCheckpoint hashes the current state and appends it to the
// retained checkpoint chain.
func (w *World) recordCheckpoint() {
	hash32 := w.StateHash()
	w.chain = ChainHash(w.chain, hash32)
	w.checkpoints = append(w.checkpoints, Checkpoint{
		Tick:  w.tick,
		Hash:  hash32,
		Chain: w.chain,
	})
}

func putU64(h hash.Hash, tmp *[8]byte, v uint64) {
	binary.LittleEndian.PutUint64(tmp[:], v)
	h.Write(tmp[:])
}

func putFixed(h hash.Hash, tmp *[8]byte, v int32) {
	putU64(h, tmp, uint64(uint32(v)))
}

// digestHeader covers the scalar state: tick, status, RNG position,
// fortress, counters, wave machine, modifier layers, cooldowns and the
// pending relic offer.
func (w *World) digestHeader(h hash.Hash, tmp *[8]byte) {
	putU64(h, tmp, w.tick)
	putU64(h, tmp, uint64(w.status))
	putU64(h, tmp, uint64(w.rng.State()))
	putU64(h, tmp, uint64(w.nextID))

	putFixed(h, tmp, int32(w.fortress.Pos.X))
	putFixed(h, tmp, int32(w.fortress.Pos.Y))
	putFixed(h, tmp, int32(w.fortress.HP))
	putFixed(h, tmp, int32(w.fortress.MaxHP))

	putU64(h, tmp, uint64(w.wave))
	putU64(h, tmp, uint64(w.wavesCleared))
	putU64(h, tmp, uint64(w.spawnsLeft))
	putU64(h, tmp, w.nextSpawnTick)
	putU64(h, tmp, uint64(w.kills))
	putU64(h, tmp, uint64(w.gold))
	putU64(h, tmp, uint64(w.dust))

	w.mods.digest(h, tmp)

	for _, cd := range w.cooldowns {
		putU64(h, tmp, uint64(cd))
	}

	if w.offerPending {
		putU64(h, tmp, 1)
	} else {
		putU64(h, tmp, 0)
	}
	putU64(h, tmp, uint64(len(w.offer)))
	for _, r := range w.offer {
		putU64(h, tmp, uint64(r))
	}
}

// digestEntities covers every collection in a fixed order, each entity
// with a fixed field order. Collections are kept in ID order, so
// iteration order is canonical.
func (w *World) digestEntities(h hash.Hash, tmp *[8]byte) {
	putU64(h, tmp, uint64(len(w.heroes)))
	for i := range w.heroes {
		hr := &w.heroes[i]
		putU64(h, tmp, uint64(hr.ID))
		putU64(h, tmp, uint64(hr.Class))
		putFixed(h, tmp, int32(hr.Pos.X))
		putFixed(h, tmp, int32(hr.Pos.Y))
		putU64(h, tmp, uint64(hr.AttackCD))
	}

	putU64(h, tmp, uint64(len(w.turrets)))
	for i := range w.turrets {
		t := &w.turrets[i]
		putU64(h, tmp, uint64(t.ID))
		putU64(h, tmp, uint64(t.Kind))
		putFixed(h, tmp, int32(t.Pos.X))
		putFixed(h, tmp, int32(t.Pos.Y))
		putU64(h, tmp, uint64(t.AttackCD))
	}

	putU64(h, tmp, uint64(len(w.enemies)))
	for i := range w.enemies {
		e := &w.enemies[i]
		putU64(h, tmp, uint64(e.ID))
		putU64(h, tmp, uint64(e.Kind))
		putFixed(h, tmp, int32(e.Pos.X))
		putFixed(h, tmp, int32(e.Pos.Y))
		putFixed(h, tmp, int32(e.HP))
		putU64(h, tmp, uint64(e.AttackCD))
		putU64(h, tmp, uint64(len(e.Effects)))
		for _, ef := range e.Effects {
			putU64(h, tmp, uint64(ef.Kind))
			putU64(h, tmp, uint64(ef.TicksLeft))
			putFixed(h, tmp, int32(ef.Magnitude))
		}
	}

	putU64(h, tmp, uint64(len(w.projectiles)))
	for i := range w.projectiles {
		p := &w.projectiles[i]
		putU64(h, tmp, uint64(p.ID))
		putFixed(h, tmp, int32(p.Pos.X))
		putFixed(h, tmp, int32(p.Pos.Y))
		putFixed(h, tmp, int32(p.Damage))
		putU64(h, tmp, uint64(p.Pierce))
		putU64(h, tmp, uint64(p.TargetID))
	}
}
