package sim

import "github.com/cory-johannsen/demonsim/internal/game/combat"

// updateFamiliar regenerates summoning points and, outside of idling, lets
// the familiar attack on its own cadence.
func (e *Engine) updateFamiliar() {
	e.summoningTicks++
	if e.summoningTicks >= combat.SummoningRestoreTicks {
		e.summoningTicks = 0
		if e.player.RestoreSummoning() {
			e.event("Restored up to %d summoning points, now at %d total.", combat.SummoningRestore, e.player.Summoning)
		}
	}

	f := e.familiar
	if f == nil || e.state == StateIdling {
		return
	}
	e.familiarCooldown = max(e.familiarCooldown-1, 0)
	e.scrollCooldown = max(e.scrollCooldown-1, 0)
	if e.stupid || e.familiarCooldown > 0 {
		return
	}

	scroll := e.scrollInterval > 0 && e.scrollCooldown == 0 && e.player.SpendSummoning(f.ScrollCost)
	style := f.Style(e.dice.Familiar.StyleValue(), scroll)
	hits := 1
	if scroll {
		hits = f.ScrollHits
		e.event("The familiar is readying itself for a powerful %s attack!", style)
	}

	dmg := 0.0
	for range hits {
		if e.dice.Familiar.Hit(f.HitChance) {
			dmg += e.dice.Damage.Damage(1, f.MaxHit)
		}
	}
	if dmg < 1 || e.target.Protects(style) {
		e.event("The familiar missed...")
	} else {
		e.event("The familiar did %.0f %s damage.", dmg, style)
	}

	// Even a whiff pressures the target.
	e.damageTarget(dmg, style, true, false)

	if scroll {
		e.scrollCooldown = e.scrollInterval
	}
	e.familiarCooldown = f.AttackInterval
}
