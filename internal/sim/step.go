package sim

import "github.com/emberhold/fortress-replay-go/internal/fixed"

// Step executes exactly one tick. Phase order is part of the
// determinism contract and must match on every host:
//
//  1. apply commands scheduled for this tick, in log order
//  2. cooldowns and timed status effects
//  3. movement and steering
//  4. combat resolution (heroes, turrets, projectiles, enemies)
//  5. auto-skill resolution
//  6. wave advance, death sweep, loss then win detection
//  7. tick increment and audit checkpointing
//
// PRNG draws happen only here, in phase order: command rolls (reroll),
// crit rolls, then wave-spawn and relic-offer rolls. Stepping an ended
// or idle world is a no-op.
func (w *World) Step() {
	if w.status != StatusRunning {
		return
	}
	w.applyCommands()
	w.tickTimers()
	w.moveEntities()
	w.resolveCombat()
	w.resolveAutoSkills()
	w.advanceWave()
	w.tick++
	if w.isAuditTick(w.tick) {
		w.recordCheckpoint()
	}
}

// applyCommands consumes every pending command scheduled for the
// current tick. Invalid commands are no-ops by definition: the client
// and the verifier must land in identical state even when the log
// contains nonsense.
func (w *World) applyCommands() {
	n := 0
	for n < len(w.pending) && w.pending[n].Tick <= w.tick {
		n++
	}
	if n == 0 {
		return
	}
	batch := w.pending[:n]
	w.pending = w.pending[n:]
	for _, cmd := range batch {
		w.applyCommand(cmd)
	}
}

func (w *World) applyCommand(cmd Command) {
	switch cmd.Type {
	case CmdChooseRelic:
		if !w.offerPending || cmd.Choice < 0 || cmd.Choice >= len(w.offer) {
			return
		}
		bonus, ok := relicBonus(w.offer[cmd.Choice])
		if !ok {
			return
		}
		w.mods.Grant(LayerRelic, bonus)
		w.offerPending = false
		w.offer = nil
	case CmdReroll:
		if !w.offerPending {
			return
		}
		w.rollOffer()
	case CmdActivateSkill:
		w.activateSkill(cmd.Skill, cmd.Pos())
	}
}

// activateSkill fires a targeted skill at a position. Auto skills
// cannot be commanded; a skill still cooling down is a no-op, not an
// error.
func (w *World) activateSkill(id SkillID, pos fixed.Vec) {
	if !validSkill(id) {
		return
	}
	def := skillTable[id]
	if def.Auto || w.cooldowns[id] > 0 {
		return
	}
	if !w.heroAliveWithSkill(id) {
		return
	}
	w.castSkillAt(def, pos)
	w.cooldowns[id] = effectiveCooldown(def.CooldownTicks, w.mods.Compose())
}

func (w *World) heroAliveWithSkill(id SkillID) bool {
	for i := range w.heroes {
		if w.heroes[i].Skill == id {
			return true
		}
	}
	return false
}

// tickTimers is phase 2: per-skill cooldowns, attack cooldowns and
// status effect durations all decrement; burn ticks deal their damage
// here.
func (w *World) tickTimers() {
	for i := range w.cooldowns {
		if w.cooldowns[i] > 0 {
			w.cooldowns[i]--
		}
	}
	for i := range w.heroes {
		if w.heroes[i].AttackCD > 0 {
			w.heroes[i].AttackCD--
		}
	}
	for i := range w.turrets {
		if w.turrets[i].AttackCD > 0 {
			w.turrets[i].AttackCD--
		}
	}
	for i := range w.enemies {
		e := &w.enemies[i]
		if e.AttackCD > 0 {
			e.AttackCD--
		}
		kept := e.Effects[:0]
		for _, ef := range e.Effects {
			ef.TicksLeft--
			if ef.Kind == EffectBurn && ef.TicksLeft%burnIntervalTicks == 0 {
				e.HP -= ef.Magnitude
			}
			if ef.TicksLeft > 0 {
				kept = append(kept, ef)
			}
		}
		e.Effects = kept
	}
}

// moveEntities is phase 3. Heroes chase their target; enemies march on
// the fortress. Target selection is nearest-first with ties broken by
// ascending entity ID, never by iteration accident.
func (w *World) moveEntities() {
	for i := range w.heroes {
		h := &w.heroes[i]
		target := w.nearestEnemy(h.Pos)
		if target == nil {
			// No enemies up: drift back to the rally line.
			h.Pos = h.Pos.StepToward(rallyPos(i), h.Speed)
			continue
		}
		if h.Pos.DistSq(target.Pos) > fixed.Mul(h.Range, h.Range) {
			h.Pos = h.Pos.StepToward(target.Pos, h.Speed)
		}
	}
	for i := range w.enemies {
		e := &w.enemies[i]
		if e.stunned() {
			continue
		}
		if e.Pos.DistSq(w.fortress.Pos) > fixed.Mul(e.Range, e.Range) {
			speed := fixed.Mul(e.Speed, e.speedFactor())
			e.Pos = e.Pos.StepToward(w.fortress.Pos, speed)
		}
	}
}

// nearestEnemy returns the living enemy closest to pos; equal
// distances resolve to the lower entity ID. The enemy slice is in ID
// order, so strict < keeps the earlier (lower-ID) candidate on ties.
func (w *World) nearestEnemy(pos fixed.Vec) *Enemy {
	var best *Enemy
	var bestD fixed.Value
	for i := range w.enemies {
		e := &w.enemies[i]
		if e.HP <= 0 {
			continue
		}
		d := pos.DistSq(e.Pos)
		if best == nil || d < bestD {
			best, bestD = e, d
		}
	}
	return best
}

// lowestHPEnemyInRange implements the turret targeting rule.
func (w *World) lowestHPEnemyInRange(pos fixed.Vec, rng fixed.Value) *Enemy {
	var best *Enemy
	r2 := fixed.Mul(rng, rng)
	for i := range w.enemies {
		e := &w.enemies[i]
		if e.HP <= 0 || pos.DistSq(e.Pos) > r2 {
			continue
		}
		if best == nil || e.HP < best.HP {
			best = e
		}
	}
	return best
}

// resolveAutoSkills is phase 5: each hero's auto skill fires when off
// cooldown and a valid target stands inside its radius.
func (w *World) resolveAutoSkills() {
	for i := range w.heroes {
		h := &w.heroes[i]
		if !validSkill(h.Skill) {
			continue
		}
		def := skillTable[h.Skill]
		if !def.Auto || w.cooldowns[h.Skill] > 0 {
			continue
		}
		if !w.anyEnemyWithin(h.Pos, def.Radius) {
			continue
		}
		w.castSkillAt(def, h.Pos)
		w.cooldowns[h.Skill] = effectiveCooldown(def.CooldownTicks, w.mods.Compose())
	}
}

func (w *World) anyEnemyWithin(pos fixed.Vec, radius fixed.Value) bool {
	r2 := fixed.Mul(radius, radius)
	for i := range w.enemies {
		if w.enemies[i].HP > 0 && pos.DistSq(w.enemies[i].Pos) <= r2 {
			return true
		}
	}
	return false
}

// castSkillAt damages enemies inside the skill radius, nearest first,
// honoring MaxTargets, and applies the skill's status effect. Skill
// damage scales with the damage layer but never crits; keeping skills
// roll-free keeps the draw order independent of skill timing.
func (w *World) castSkillAt(def skillDef, pos fixed.Vec) {
	mods := w.mods.Compose()
	dmg := fixed.Mul(def.Damage, fixed.One+mods.Damage)
	r2 := fixed.Mul(def.Radius, def.Radius)

	type hit struct {
		idx int
		d   fixed.Value
	}
	var hits []hit
	for i := range w.enemies {
		e := &w.enemies[i]
		if e.HP <= 0 {
			continue
		}
		if d := pos.DistSq(e.Pos); d <= r2 {
			hits = append(hits, hit{idx: i, d: d})
		}
	}
	// Nearest first, entity ID as tie-break. The slice index order is
	// ID order, so a stable comparison on distance suffices.
	for i := 1; i < len(hits); i++ {
		for j := i; j > 0 && hits[j].d < hits[j-1].d; j-- {
			hits[j], hits[j-1] = hits[j-1], hits[j]
		}
	}
	if def.MaxTargets > 0 && len(hits) > def.MaxTargets {
		hits = hits[:def.MaxTargets]
	}
	for _, ht := range hits {
		e := &w.enemies[ht.idx]
		e.HP -= dmg
		if def.Effect != 0 {
			e.addEffect(def.Effect, def.EffectTicks, def.EffectMag)
		}
	}
}

func (w *World) isAuditTick(tick uint64) bool {
	for _, t := range w.auditTicks {
		if t == tick {
			return true
		}
	}
	return false
}
