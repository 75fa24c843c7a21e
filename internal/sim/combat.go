package sim

import "github.com/emberhold/fortress-replay-go/internal/fixed"

// baseCritChance is the innate crit chance before modifier layers.
var baseCritChance = fixed.FromFloat(0.05)

// resolveCombat is phase 4. Resolution order is fixed: heroes, then
// turrets, then projectiles in flight, then enemy attacks on the
// fortress. Within each group, iteration is slice order, which is
// entity ID order.
func (w *World) resolveCombat() {
	w.resolveHeroAttacks()
	w.resolveTurretAttacks()
	w.resolveProjectiles()
	w.resolveEnemyAttacks()
}

// attackDamage computes one hit: base scaled by the composed damage
// layer, then a crit roll. The crit roll is the only PRNG draw in the
// damage path and is drawn for every eligible attack, hit or crit.
func (w *World) attackDamage(base fixed.Value, mods Stats) fixed.Value {
	dmg := fixed.Mul(base, fixed.One+mods.Damage)
	if w.rng.Chance(fixed.Clamp(baseCritChance+mods.CritChance, 0, fixed.One)) {
		dmg = fixed.Mul(dmg, fixed.One+fixed.Half+mods.CritDamage)
	}
	return dmg
}

// attackInterval folds attack-speed bonuses into the base interval.
func attackInterval(base uint32, mods Stats) uint32 {
	iv := fixed.Div(fixed.FromInt(int(base)), fixed.One+mods.AttackSpeed)
	if iv < fixed.One {
		return 1
	}
	return uint32(iv.Int())
}

func (w *World) resolveHeroAttacks() {
	mods := w.mods.Compose()
	for i := range w.heroes {
		h := &w.heroes[i]
		if h.AttackCD > 0 {
			continue
		}
		target := w.nearestEnemy(h.Pos)
		if target == nil || h.Pos.DistSq(target.Pos) > fixed.Mul(h.Range, h.Range) {
			continue
		}
		target.HP -= w.attackDamage(h.BaseDamage, mods)
		h.AttackCD = attackInterval(h.AttackEvery, mods)
	}
}

// resolveTurretAttacks spawns a homing projectile per ready turret.
// Turrets prefer the lowest-HP enemy in range (finishing wounded
// targets), ties by entity ID.
func (w *World) resolveTurretAttacks() {
	mods := w.mods.Compose()
	for i := range w.turrets {
		t := &w.turrets[i]
		if t.AttackCD > 0 {
			continue
		}
		target := w.lowestHPEnemyInRange(t.Pos, t.Range)
		if target == nil {
			continue
		}
		w.projectiles = append(w.projectiles, Projectile{
			ID:       w.allocID(),
			Pos:      t.Pos,
			Speed:    t.ProjSpeed,
			Damage:   w.attackDamage(t.BaseDamage, mods),
			Splash:   t.Splash,
			Pierce:   t.Pierce,
			TargetID: target.ID,
		})
		t.AttackCD = attackInterval(t.AttackEvery, mods)
	}
}

// resolveProjectiles advances every shot and applies impacts. Damage
// was rolled at fire time, so a projectile in flight draws nothing; a
// projectile whose target died mid-flight expires without effect.
func (w *World) resolveProjectiles() {
	kept := w.projectiles[:0]
	for i := range w.projectiles {
		p := &w.projectiles[i]
		target := w.enemyByID(p.TargetID)
		if target == nil || target.HP <= 0 {
			continue // target gone; shot fizzles
		}
		step := p.Speed
		if p.Pos.DistSq(target.Pos) > fixed.Mul(step, step) {
			p.Pos = p.Pos.StepToward(target.Pos, step)
			kept = append(kept, *p)
			continue
		}
		p.Pos = target.Pos
		w.impact(p, target)
		if p.Pierce > 0 {
			if next := w.nextPierceTarget(p); next != nil {
				p.Pierce--
				p.TargetID = next.ID
				kept = append(kept, *p)
			}
		}
	}
	w.projectiles = kept
}

// impact applies projectile damage to the struck enemy plus splash to
// everything inside the splash radius.
func (w *World) impact(p *Projectile, target *Enemy) {
	target.HP -= p.Damage
	p.hitIDs = append(p.hitIDs, target.ID)
	if p.Splash <= 0 {
		return
	}
	r2 := fixed.Mul(p.Splash, p.Splash)
	half := fixed.Mul(p.Damage, fixed.Half)
	for i := range w.enemies {
		e := &w.enemies[i]
		if e.ID == target.ID || e.HP <= 0 {
			continue
		}
		if p.Pos.DistSq(e.Pos) <= r2 {
			e.HP -= half
		}
	}
}

// nextPierceTarget picks the nearest living enemy the projectile has
// not already struck, within one range band of its current position.
func (w *World) nextPierceTarget(p *Projectile) *Enemy {
	var best *Enemy
	var bestD fixed.Value
	limit := fixed.FromInt(10)
	l2 := fixed.Mul(limit, limit)
	for i := range w.enemies {
		e := &w.enemies[i]
		if e.HP <= 0 || p.alreadyHit(e.ID) {
			continue
		}
		d := p.Pos.DistSq(e.Pos)
		if d > l2 {
			continue
		}
		if best == nil || d < bestD {
			best, bestD = e, d
		}
	}
	return best
}

// resolveEnemyAttacks lets every enemy in reach strike the fortress.
// Fortress armor soaks a fraction of each hit.
func (w *World) resolveEnemyAttacks() {
	armor := fixed.Clamp(w.mods.Compose().FortressArmor, 0, fixed.FromFloat(0.8))
	for i := range w.enemies {
		e := &w.enemies[i]
		if e.HP <= 0 || e.AttackCD > 0 || e.stunned() {
			continue
		}
		if e.Pos.DistSq(w.fortress.Pos) > fixed.Mul(e.Range, e.Range) {
			continue
		}
		w.fortress.HP -= fixed.Mul(e.Damage, fixed.One-armor)
		e.AttackCD = e.AttackEvery
	}
}
