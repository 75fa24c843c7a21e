package sim

import "github.com/emberhold/fortress-replay-go/internal/fixed"

// EntityID is a stable per-world identifier. IDs are assigned from a
// monotonic counter at creation and never reused, so ID order doubles
// as creation order. All tie-breaks and hash serialization iterate in
// ID order, never over insertion-unstable structures.
type EntityID uint32

// EffectKind tags a timed status effect. The set is closed: payloads
// are validated when applied, so the hot loop never branches on
// unknown shapes.
type EffectKind uint8

const (
	EffectBurn EffectKind = iota + 1 // Magnitude = damage per interval
	EffectSlow                       // Magnitude = speed multiplier
	EffectStun                       // Magnitude unused
)

const burnIntervalTicks = 15

// Effect is one active status instance on an enemy.
type Effect struct {
	Kind      EffectKind
	TicksLeft uint32
	Magnitude fixed.Value
}

// Fortress is the structure the player defends. The run is lost the
// tick its HP reaches zero.
type Fortress struct {
	Pos   fixed.Vec
	HP    fixed.Value
	MaxHP fixed.Value
}

// Hero is a player-fielded combat unit. Heroes chase the nearest enemy
// and attack in melee; each class also owns one skill.
type Hero struct {
	ID          EntityID
	Class       ClassID
	Pos         fixed.Vec
	Speed       fixed.Value // units per tick
	Range       fixed.Value
	BaseDamage  fixed.Value
	AttackEvery uint32 // base ticks between attacks
	AttackCD    uint32 // ticks until next attack
	Skill       SkillID
}

// Turret is a static emplacement that fires projectiles.
type Turret struct {
	ID          EntityID
	Kind        TurretKind
	Pos         fixed.Vec
	Range       fixed.Value
	BaseDamage  fixed.Value
	AttackEvery uint32
	AttackCD    uint32
	Splash      fixed.Value // 0 = no splash
	Pierce      int         // extra targets a projectile passes through
	ProjSpeed   fixed.Value
}

// EnemyKind selects an enemy archetype.
type EnemyKind uint8

const (
	EnemyGrunt EnemyKind = iota + 1
	EnemyRunner
	EnemyBrute
)

// Enemy walks toward the fortress and attacks it in melee once in
// range.
type Enemy struct {
	ID          EntityID
	Kind        EnemyKind
	Pos         fixed.Vec
	HP          fixed.Value
	MaxHP       fixed.Value
	Speed       fixed.Value
	Damage      fixed.Value
	Range       fixed.Value
	AttackEvery uint32
	AttackCD    uint32
	Gold        int
	Effects     []Effect
	Wave        int
}

// Projectile is an in-flight turret shot homing on a target enemy.
type Projectile struct {
	ID       EntityID
	Pos      fixed.Vec
	Speed    fixed.Value
	Damage   fixed.Value
	Splash   fixed.Value
	Pierce   int
	TargetID EntityID
	// hitIDs records enemies already pierced so a projectile never
	// double-hits one enemy.
	hitIDs []EntityID
}

func (p *Projectile) alreadyHit(id EntityID) bool {
	for _, h := range p.hitIDs {
		if h == id {
			return true
		}
	}
	return false
}

// stunned reports whether any active stun suppresses this enemy.
func (e *Enemy) stunned() bool {
	for _, ef := range e.Effects {
		if ef.Kind == EffectStun && ef.TicksLeft > 0 {
			return true
		}
	}
	return false
}

// speedFactor folds active slows into a movement multiplier. Multiple
// slows take the strongest, not a product, so stacking is bounded.
func (e *Enemy) speedFactor() fixed.Value {
	factor := fixed.One
	for _, ef := range e.Effects {
		if ef.Kind == EffectSlow && ef.TicksLeft > 0 && ef.Magnitude < factor {
			factor = ef.Magnitude
		}
	}
	return factor
}

// addEffect applies or refreshes a status effect. Reapplying a kind
// refreshes duration and keeps the stronger magnitude.
func (e *Enemy) addEffect(kind EffectKind, ticks uint32, magnitude fixed.Value) {
	if ticks == 0 {
		return
	}
	for i := range e.Effects {
		if e.Effects[i].Kind == kind {
			if ticks > e.Effects[i].TicksLeft {
				e.Effects[i].TicksLeft = ticks
			}
			switch kind {
			case EffectSlow:
				if magnitude < e.Effects[i].Magnitude {
					e.Effects[i].Magnitude = magnitude
				}
			default:
				if magnitude > e.Effects[i].Magnitude {
					e.Effects[i].Magnitude = magnitude
				}
			}
			return
		}
	}
	e.Effects = append(e.Effects, Effect{Kind: kind, TicksLeft: ticks, Magnitude: magnitude})
}

// enemyStats is the per-kind tuning table. HP and damage scale with
// the wave number at spawn time.
func enemyStats(kind EnemyKind, wave int, cfg Config) Enemy {
	w := fixed.FromInt(wave)
	switch kind {
	case EnemyRunner:
		return Enemy{
			Kind:        EnemyRunner,
			HP:          fixed.FromInt(18) + fixed.Mul(fixed.FromInt(5), w),
			Speed:       perTick(4, cfg.TickHz),
			Damage:      fixed.FromInt(3),
			Range:       fixed.FromInt(2),
			AttackEvery: uint32(cfg.TickHz),
			Gold:        4,
		}
	case EnemyBrute:
		return Enemy{
			Kind:        EnemyBrute,
			HP:          fixed.FromInt(80) + fixed.Mul(fixed.FromInt(20), w),
			Speed:       perTick(1, cfg.TickHz),
			Damage:      fixed.FromInt(12),
			Range:       fixed.FromInt(3),
			AttackEvery: uint32(2 * cfg.TickHz),
			Gold:        12,
		}
	default: // EnemyGrunt
		return Enemy{
			Kind:        EnemyGrunt,
			HP:          fixed.FromInt(30) + fixed.Mul(fixed.FromInt(8), w),
			Speed:       perTick(2, cfg.TickHz),
			Damage:      fixed.FromInt(5),
			Range:       fixed.FromInt(2),
			AttackEvery: uint32(cfg.TickHz) + uint32(cfg.TickHz)/2,
			Gold:        5,
		}
	}
}

// perTick converts units-per-second tuning into units-per-tick.
func perTick(unitsPerSecond, tickHz int) fixed.Value {
	return fixed.Div(fixed.FromInt(unitsPerSecond), fixed.FromInt(tickHz))
}

// newHero builds a class's hero at a rally position.
func newHero(class ClassID, pos fixed.Vec, cfg Config) Hero {
	h := Hero{
		Class: class,
		Pos:   pos,
		Speed: perTick(3, cfg.TickHz),
		Range: fixed.FromInt(3),
	}
	switch class {
	case ClassRanger:
		h.Range = fixed.FromInt(12)
		h.BaseDamage = fixed.FromInt(9)
		h.AttackEvery = uint32(cfg.TickHz * 2 / 3)
		h.Skill = SkillVolley
	case ClassMage:
		h.Range = fixed.FromInt(10)
		h.BaseDamage = fixed.FromInt(14)
		h.AttackEvery = uint32(cfg.TickHz * 3 / 2)
		h.Skill = SkillFirestorm
	default: // ClassKnight
		h.BaseDamage = fixed.FromInt(12)
		h.AttackEvery = uint32(cfg.TickHz)
		h.Skill = SkillShockwave
	}
	return h
}

// newTurret builds a turret for a config slot.
func newTurret(slot TurretSlot, cfg Config) Turret {
	t := Turret{
		Kind:      slot.Kind,
		Pos:       fixed.Vec{X: slot.X, Y: slot.Y},
		Range:     fixed.FromInt(25),
		ProjSpeed: perTick(20, cfg.TickHz),
	}
	switch slot.Kind {
	case TurretCannon:
		t.BaseDamage = fixed.FromInt(20)
		t.AttackEvery = uint32(cfg.TickHz * 2)
		t.Splash = fixed.FromInt(4)
	default: // TurretArrow
		t.BaseDamage = fixed.FromInt(8)
		t.AttackEvery = uint32(cfg.TickHz / 2)
		t.Pierce = 1
	}
	return t
}
