package sim

import "github.com/emberhold/fortress-replay-go/internal/fixed"

// SkillID indexes the dense skill table. The cooldown table is a slice
// indexed by SkillID, never a map, so iteration and hashing are
// order-stable by construction.
type SkillID uint8

const (
	SkillShockwave SkillID = iota // Knight: auto, AoE around hero, stuns
	SkillVolley                   // Ranger: auto, hits the three nearest enemies
	SkillFirestorm                // Mage: targeted, AoE at position, burns
	skillCount
)

// skillDef is static skill tuning. Auto skills fire inside the step
// when off cooldown and a valid target exists; targeted skills fire
// only on an explicit command for that tick.
type skillDef struct {
	Auto          bool
	CooldownTicks uint32
	Damage        fixed.Value
	Radius        fixed.Value
	Effect        EffectKind
	EffectTicks   uint32
	EffectMag     fixed.Value
	MaxTargets    int // 0 = unbounded within radius
}

var skillTable = [skillCount]skillDef{
	SkillShockwave: {
		Auto:          true,
		CooldownTicks: 150,
		Damage:        fixed.FromInt(15),
		Radius:        fixed.FromInt(6),
		Effect:        EffectStun,
		EffectTicks:   15,
	},
	SkillVolley: {
		Auto:          true,
		CooldownTicks: 90,
		Damage:        fixed.FromInt(12),
		Radius:        fixed.FromInt(14),
		MaxTargets:    3,
	},
	SkillFirestorm: {
		CooldownTicks: 240,
		Damage:        fixed.FromInt(25),
		Radius:        fixed.FromInt(8),
		Effect:        EffectBurn,
		EffectTicks:   90,
		EffectMag:     fixed.FromInt(4),
	},
}

// validSkill reports whether id addresses the closed skill table.
func validSkill(id SkillID) bool {
	return id < skillCount
}

// effectiveCooldown applies the composed cooldown reduction to a base
// cooldown, keeping at least one tick.
func effectiveCooldown(base uint32, mods Stats) uint32 {
	cd := fixed.Mul(fixed.FromInt(int(base)), fixed.One-mods.CooldownCut)
	if cd < fixed.One {
		return 1
	}
	return uint32(cd.Int())
}
