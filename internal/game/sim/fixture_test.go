package sim

import (
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/cory-johannsen/demonsim/internal/game/combat"
	"github.com/cory-johannsen/demonsim/internal/game/dice"
)

// loadout is a small two-style setup: range and magic rotations with basics,
// melee unused.
type loadout struct {
	catalog   *combat.Catalog
	styles    *combat.StyleTable
	piercing  combat.AbilityID
	binding   combat.AbilityID
	snap      combat.AbilityID
	wrack     combat.AbilityID
	breath    combat.AbilityID
	sacrifice combat.AbilityID
}

func newLoadout() *loadout {
	c := combat.NewCatalog()
	l := &loadout{catalog: c}
	l.piercing = c.Add(combat.NewAbility("Piercing Shot", 45, 75, 3, 3, 8, false))
	l.binding = c.Add(combat.NewAbility("Binding Shot", 40, 100, 3, 15, 8, false))
	l.snap = c.Add(combat.NewAbility("Snap Shot", 100, 265, 3, 20, -15, false))
	l.wrack = c.Add(combat.NewAbility("Wrack", 40, 100, 3, 3, 8, false))
	l.breath = c.Add(combat.NewAbility("Dragon Breath", 75, 150, 3, 10, 8, false))
	l.sacrifice = c.Add(combat.NewAbility("Sacrifice", 20, 100, 3, 30, 8, false))

	t := combat.NewStyleTable()
	t.SetWeapon(combat.Magic, combat.Weapon{DamageType: combat.Fire, AbilityDamage: 1608, Tier: 80})
	t.SetWeapon(combat.Range, combat.Weapon{DamageType: combat.Bolt, AbilityDamage: 1752, Tier: 90})
	t.SetWeapon(combat.Melee, combat.Weapon{DamageType: combat.Slash, AbilityDamage: 1500, Tier: 80})
	t.SetBasic(combat.Range, l.piercing)
	t.SetBasic(combat.Magic, l.wrack)
	t.AddRotation(combat.NewRotation(combat.Range, l.piercing, l.binding))
	t.AddRotation(combat.NewRotation(combat.Magic, l.wrack, l.breath))
	l.styles = t
	return l
}

func fixedOptions() Options {
	opts := DefaultOptions()
	opts.LogEvents = true
	opts.LogTicks = true
	return opts
}

func newTestEngine(t *testing.T, l *loadout, set dice.Set, opts Options) *Engine {
	t.Helper()
	e, err := NewEngine(l.catalog, l.styles, set, opts, zap.NewNop())
	require.NoError(t, err)
	return e
}

// countingEffect answers every effect check with answer and counts the calls.
type countingEffect struct {
	answer func(p float64) bool
	calls  int
}

func (c *countingEffect) Occurred(p float64) bool {
	c.calls++
	return c.answer(p)
}
