package sim

import (
	"crypto/sha256"
	"encoding/binary"

	"github.com/emberhold/fortress-replay-go/internal/fixed"
)

// ClassID selects a hero class from the closed class table.
type ClassID uint8

const (
	ClassKnight ClassID = iota + 1
	ClassRanger
	ClassMage
)

// TurretKind selects a turret archetype.
type TurretKind uint8

const (
	TurretArrow TurretKind = iota + 1
	TurretCannon
)

// RelicID indexes the closed relic pool.
type RelicID uint8

const (
	RelicWarBanner    RelicID = iota + 1 // +damage
	RelicSwiftGloves                     // +attack speed
	RelicHawkEye                         // +crit chance
	RelicChronoShard                     // +cooldown reduction
	RelicStoneHeart                      // +fortress armor
	RelicExecutioner                     // +crit damage
	relicCount = 6
)

// TurretSlot places one turret in the arena.
type TurretSlot struct {
	Kind TurretKind  `json:"kind"`
	X    fixed.Value `json:"x"`
	Y    fixed.Value `json:"y"`
}

// Config holds every tunable that shapes a run. It is immutable once a
// run token is minted: the token carries Hash() so a verifier replaying
// with different tuning fails before any hash comparison could pass by
// accident.
type Config struct {
	TickHz     int `json:"tickHz"`
	MaxWaves   int `json:"maxWaves"`
	FortressHP int `json:"fortressHp"`

	Loadout []ClassID    `json:"loadout"`
	Turrets []TurretSlot `json:"turrets"`

	// Wave tuning: wave w spawns WaveBaseCount + w*WaveGrowth enemies,
	// one every SpawnIntervalTicks.
	WaveBaseCount      int `json:"waveBaseCount"`
	WaveGrowth         int `json:"waveGrowth"`
	SpawnIntervalTicks int `json:"spawnIntervalTicks"`

	// SpawnRadius is the distance of the spawn ring from the fortress;
	// SpawnJitter is the maximum radial offset rolled per spawn.
	SpawnRadius fixed.Value `json:"spawnRadius"`
	SpawnJitter fixed.Value `json:"spawnJitter"`

	// Progression layers granted before the run starts. Pillar bonuses
	// come from account progression, permanent bonuses from the
	// permanent-upgrade shop. Both are server-provided inputs, never
	// client-claimed.
	PillarBonus    Stats `json:"pillarBonus"`
	PermanentBonus Stats `json:"permanentBonus"`
}

// DefaultConfig is the tuned baseline the service issues runs with.
func DefaultConfig() Config {
	return Config{
		TickHz:     30,
		MaxWaves:   10,
		FortressHP: 1000,
		Loadout:    []ClassID{ClassKnight, ClassRanger, ClassMage},
		Turrets: []TurretSlot{
			{Kind: TurretArrow, X: fixed.FromInt(-8), Y: fixed.FromInt(6)},
			{Kind: TurretCannon, X: fixed.FromInt(8), Y: fixed.FromInt(6)},
		},
		WaveBaseCount:      4,
		WaveGrowth:         2,
		SpawnIntervalTicks: 10,
		SpawnRadius:        fixed.FromInt(40),
		SpawnJitter:        fixed.FromInt(6),
	}
}

// MaxRunTicks bounds a run regardless of player input. A run that
// neither wins nor loses by this tick is forced to a loss by the
// driver, which caps verifier CPU alongside the payload limits.
func MaxRunTicks(cfg Config) uint64 {
	perWave := uint64(40 * cfg.TickHz) // generous clear estimate
	return uint64(cfg.MaxWaves)*perWave + uint64(20*cfg.TickHz)
}

// Hash returns a canonical 32-bit digest of the config. Field order is
// fixed; changing it is a simulation version bump.
func (c Config) Hash() uint32 {
	h := sha256.New()
	var tmp [8]byte
	put := func(v uint64) {
		binary.LittleEndian.PutUint64(tmp[:], v)
		h.Write(tmp[:])
	}
	put(uint64(c.TickHz))
	put(uint64(c.MaxWaves))
	put(uint64(c.FortressHP))
	put(uint64(len(c.Loadout)))
	for _, cl := range c.Loadout {
		put(uint64(cl))
	}
	put(uint64(len(c.Turrets)))
	for _, t := range c.Turrets {
		put(uint64(t.Kind))
		put(uint64(uint32(t.X)))
		put(uint64(uint32(t.Y)))
	}
	put(uint64(c.WaveBaseCount))
	put(uint64(c.WaveGrowth))
	put(uint64(c.SpawnIntervalTicks))
	put(uint64(uint32(c.SpawnRadius)))
	put(uint64(uint32(c.SpawnJitter)))
	c.PillarBonus.digest(h, &tmp)
	c.PermanentBonus.digest(h, &tmp)
	sum := h.Sum(nil)
	return binary.LittleEndian.Uint32(sum[:4])
}
