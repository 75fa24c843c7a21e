package sim

import (
	"encoding/binary"
	"hash"

	"github.com/emberhold/fortress-replay-go/internal/fixed"
)

// Stats is one additive bonus bundle. Every field is a fixed-point
// fraction of the base value: Damage = fixed.Half means +50% damage.
type Stats struct {
	Damage        fixed.Value `json:"damage"`
	AttackSpeed   fixed.Value `json:"attackSpeed"`
	CritChance    fixed.Value `json:"critChance"`
	CritDamage    fixed.Value `json:"critDamage"`
	CooldownCut   fixed.Value `json:"cooldownCut"`
	FortressArmor fixed.Value `json:"fortressArmor"`
}

func (s Stats) add(o Stats) Stats {
	return Stats{
		Damage:        s.Damage + o.Damage,
		AttackSpeed:   s.AttackSpeed + o.AttackSpeed,
		CritChance:    s.CritChance + o.CritChance,
		CritDamage:    s.CritDamage + o.CritDamage,
		CooldownCut:   s.CooldownCut + o.CooldownCut,
		FortressArmor: s.FortressArmor + o.FortressArmor,
	}
}

func (s Stats) digest(h hash.Hash, tmp *[8]byte) {
	for _, v := range [...]fixed.Value{
		s.Damage, s.AttackSpeed, s.CritChance,
		s.CritDamage, s.CooldownCut, s.FortressArmor,
	} {
		binary.LittleEndian.PutUint64(tmp[:], uint64(uint32(v)))
		h.Write(tmp[:])
	}
}

// ModifierLayer identifies one source of bonuses. Layers always
// combine in ascending order: class, relic, synergy, pillar,
// permanent upgrade. The order is part of the hash contract.
type ModifierLayer uint8

const (
	LayerClass ModifierLayer = iota
	LayerRelic
	LayerSynergy
	LayerPillar
	LayerPermanent
	layerCount
)

// ModifierSet holds the per-layer bonus bundles of one run. It is a
// plain value owned by the World; nothing about it is shared across
// engine instances.
type ModifierSet struct {
	Layers [layerCount]Stats
}

// Compose sums all layers in the fixed layer order. Addition is
// commutative, but summing in a fixed order keeps the code honest if a
// multiplicative layer is ever introduced.
func (m *ModifierSet) Compose() Stats {
	var total Stats
	for layer := LayerClass; layer < layerCount; layer++ {
		total = total.add(m.Layers[layer])
	}
	// Cooldown reduction past 80% would trivialize skill timing.
	total.CooldownCut = fixed.Clamp(total.CooldownCut, 0, fixed.FromFloat(0.8))
	return total
}

// Grant adds a bonus bundle onto one layer.
func (m *ModifierSet) Grant(layer ModifierLayer, s Stats) {
	m.Layers[layer] = m.Layers[layer].add(s)
}

func (m *ModifierSet) digest(h hash.Hash, tmp *[8]byte) {
	for layer := LayerClass; layer < layerCount; layer++ {
		m.Layers[layer].digest(h, tmp)
	}
}

// relicBonus maps each relic to the bundle it grants on the relic
// layer. The values are deliberately chunky so a single pick is
// visible in play.
func relicBonus(id RelicID) (Stats, bool) {
	switch id {
	case RelicWarBanner:
		return Stats{Damage: fixed.FromFloat(0.15)}, true
	case RelicSwiftGloves:
		return Stats{AttackSpeed: fixed.FromFloat(0.12)}, true
	case RelicHawkEye:
		return Stats{CritChance: fixed.FromFloat(0.08)}, true
	case RelicChronoShard:
		return Stats{CooldownCut: fixed.FromFloat(0.10)}, true
	case RelicStoneHeart:
		return Stats{FortressArmor: fixed.FromFloat(0.10)}, true
	case RelicExecutioner:
		return Stats{CritDamage: fixed.FromFloat(0.25)}, true
	default:
		return Stats{}, false
	}
}

// classBonus is each class's innate contribution to the class layer.
func classBonus(id ClassID) Stats {
	switch id {
	case ClassKnight:
		return Stats{FortressArmor: fixed.FromFloat(0.05)}
	case ClassRanger:
		return Stats{AttackSpeed: fixed.FromFloat(0.05), CritChance: fixed.FromFloat(0.03)}
	case ClassMage:
		return Stats{Damage: fixed.FromFloat(0.05), CooldownCut: fixed.FromFloat(0.05)}
	default:
		return Stats{}
	}
}

// ProgressionBonus converts an account's commander level into the
// permanent-layer bundle granted at run start. The level is clamped to
// [0, 100]; both engines derive the same bundle from the level carried
// in the run token, so progression never breaks replay.
func ProgressionBonus(level int) Stats {
	level = min(max(level, 0), 100)
	l := fixed.FromInt(level)
	return Stats{
		Damage:        fixed.Mul(l, fixed.FromFloat(0.005)),
		FortressArmor: fixed.Mul(l, fixed.FromFloat(0.002)),
	}
}

// synergyBonus rewards fielding all three classes together.
func synergyBonus(loadout []ClassID) Stats {
	var knight, ranger, mage bool
	for _, c := range loadout {
		switch c {
		case ClassKnight:
			knight = true
		case ClassRanger:
			ranger = true
		case ClassMage:
			mage = true
		}
	}
	if knight && ranger && mage {
		return Stats{Damage: fixed.FromFloat(0.05), AttackSpeed: fixed.FromFloat(0.05)}
	}
	return Stats{}
}
