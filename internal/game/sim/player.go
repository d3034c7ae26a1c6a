package sim

import (
	"math"

	"go.uber.org/zap"

	"github.com/cory-johannsen/demonsim/internal/game/combat"
)

// updatePlayer is the single transition function of the player state machine.
func (e *Engine) updatePlayer() {
	e.globalCooldown = max(e.globalCooldown-1, 0)
	e.idleCooldown = max(e.idleCooldown-1, 0)

	switch e.state {
	case StateAttacking:
		if e.globalCooldown == 0 {
			e.attack()
		}
	case StateIdling:
		if e.idleCooldown > 0 {
			return
		}
		if !e.nextRotation() {
			e.result.Inefficiency++
			e.event("[Warning] Idling because every %s rotation is unavailable.", e.gear)
			e.logger.Debug("idling without rotation", zap.Int("tick", e.tick), zap.Stringer("gear", e.gear))
		}
	case StateSwitchingGear:
		if e.idleCooldown == 0 {
			e.gear = e.nextGear
			e.state = StateAttacking
		}
	case StateTrySwitchGear:
		e.swapGear()
	}
}

// nextRotation selects the preferred rotation of the equipped gear.
//
// Postcondition: Returns true and enters StateAttacking when one is usable.
func (e *Engine) nextRotation() bool {
	r, ok := e.styles.PreferredRotation(e.gear, e.catalog, e.player.Adrenaline)
	if !ok {
		return false
	}
	e.rotation, e.hasRotation, e.index = r, true, 0
	e.state = StateAttacking
	return true
}

// swapGear picks a rotation in another style and starts switching to it.
func (e *Engine) swapGear() {
	r, ok := e.styles.NextPreferredRotation(e.gear, e.catalog, e.player.Adrenaline)
	e.index = 0
	if !ok {
		e.rotation, e.hasRotation = combat.Rotation{}, false
		if e.state != StateTrySwitchGear {
			e.event("[Warning] All rotations are unavailable; idling...")
			e.logger.Debug("all rotations unavailable", zap.Int("tick", e.tick))
		}
		e.state = StateTrySwitchGear
		e.result.Inefficiency++
		return
	}
	e.rotation, e.hasRotation = r, true
	e.switchGear(r.Style(), false)
}

// switchGear starts a delayed swap to style, or equips it at once when instant.
func (e *Engine) switchGear(style combat.Style, instant bool) {
	e.event("Switching to %s gear.", style)
	if instant {
		e.gear = style
		return
	}
	e.state = StateSwitchingGear
	e.idleCooldown = e.dice.Interval.Interval(e.opts.GearSwitch.Min, e.opts.GearSwitch.Max)
	e.nextGear = style
}

// nextAbility walks the fallback chain: rotation, sacrifice, basic, gear swap.
//
// Postcondition: Returns (id, true) for an ability to fire, or (_, false)
// when a gear swap was started or nothing applies.
func (e *Engine) nextAbility() (combat.AbilityID, bool) {
	if e.index < e.rotation.Len() {
		id := e.rotation.At(e.index)
		e.index++
		return id, true
	}
	if s := e.opts.Sacrifice; s != nil && e.target.Health < s.Threshold && e.catalog.Ready(s.Ability) {
		e.event("The demon is low on health; using %s...", e.catalog.Get(s.Ability).Name)
		return s.Ability, true
	}
	if !e.target.Protects(e.gear) {
		e.event("The rotation failed to force a prayer switch; using the %s basic...", e.gear)
		basic := e.styles.Record(e.gear).Basic
		return basic, basic != combat.NoAbility
	}
	e.swapGear()
	return combat.NoAbility, false
}

// attack fires the next pending action and resolves its outcome.
func (e *Engine) attack() {
	id, ok := e.nextAbility()
	if !ok {
		return
	}
	ability := e.catalog.Get(id)
	e.catalog.Trigger(id)
	e.globalCooldown = ability.Duration

	gear := e.styles.Record(e.gear).Weapon
	// The rotation's style decides the damage type matched against weakness.
	offense := gear.DamageType
	if e.hasRotation {
		offense = e.styles.Record(e.rotation.Style()).Weapon.DamageType
	}
	affinity := combat.Compare(offense, e.target.Weakness)
	chance := combat.HitChance(PlayerLevel+e.opts.PotionBoost, gear.Tier, e.opts.HelmAccuracy, e.target.DefenceLevel, affinity)
	missed := !e.dice.Accuracy.Hit(chance)

	adrenaline := ability.Adrenaline
	if ability.IsThreshold() && e.opts.Ring && e.dice.Effect.Occurred(RingChance) {
		e.event("Your ring glows brightly; %s costs no adrenaline!", ability.Name)
		adrenaline = 0
	}
	if e.player.Adrenaline >= combat.ThresholdAdrenaline {
		e.event("Adrenaline stable, currently at %d.", e.player.Adrenaline)
	} else {
		e.event("Adrenaline low, currently at %d.", e.player.Adrenaline)
	}
	e.player.GainAdrenaline(adrenaline)

	if missed {
		e.result.Misses++
		e.event("%s was deflected by the demon's defence...", ability.Name)
		return
	}
	e.result.Hits++

	bonus := e.opts.HelmDamage * e.opts.PrayerBonus
	r := ability.Damage(gear.AbilityDamage).Scale(bonus)
	dmg := e.dice.Damage.Damage(r.Min, r.Max) +
		e.dice.Damage.Damage(4*e.opts.PotionBoost, 8*e.opts.PotionBoost)

	if e.target.Protects(e.gear) {
		e.event("%s was blocked by the demon's prayer...", ability.Name)
	} else {
		health := e.target.Health
		dealt := min(dmg, health)
		heal := combat.SoulSplit(dealt)
		if math.Floor(dmg) >= health {
			heal = combat.SoulSplitKill(dmg, health)
		}
		e.result.HealingPotential += heal
		e.event("The demon took %.0f damage from %s.", dealt, ability.Name)
		e.event("Restored %.2f health with Soul Split.", heal)
	}

	e.damageTarget(dmg, e.gear, false, ability.Delayed)
}
