package sim

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/demonsim/internal/game/combat"
	"github.com/cory-johannsen/demonsim/internal/game/dice"
	"github.com/cory-johannsen/demonsim/internal/game/familiar"
)

func TestNewEngine_RejectsUnknownAbility(t *testing.T) {
	l := newLoadout()
	l.styles.AddRotation(combat.NewRotation(combat.Melee, combat.AbilityID(99)))
	_, err := NewEngine(l.catalog, l.styles, dice.NewFixedSet(2), DefaultOptions(), nil)
	assert.ErrorIs(t, err, combat.ErrUnknownAbility)
}

func TestNewEngine_RejectsUnknownSacrifice(t *testing.T) {
	l := newLoadout()
	opts := DefaultOptions()
	opts.Sacrifice = &Sacrifice{Threshold: 5000, Ability: 42}
	_, err := NewEngine(l.catalog, l.styles, dice.NewFixedSet(2), opts, nil)
	assert.ErrorIs(t, err, combat.ErrUnknownAbility)
}

func TestNewEngine_RejectsIncompleteDice(t *testing.T) {
	l := newLoadout()
	set := dice.NewFixedSet(2)
	set.RareDrop = nil
	_, err := NewEngine(l.catalog, l.styles, set, DefaultOptions(), nil)
	assert.Error(t, err)
}

func TestNewEngine_RejectsBadGearAndWeaknesses(t *testing.T) {
	l := newLoadout()
	opts := DefaultOptions()
	opts.HelmAccuracy = -0.5
	opts.HelmDamage = -1
	opts.Weaknesses = [2]combat.DamageType{combat.Fire, combat.NoDamageType}
	_, err := NewEngine(l.catalog, l.styles, dice.NewFixedSet(2), opts, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "helm bonuses")
	assert.Contains(t, err.Error(), "weakness 1")
}

func TestOptionsValidate_AcceptsDefaults(t *testing.T) {
	assert.NoError(t, DefaultOptions().Validate())
}

func TestNewEngine_RejectsBadOptions(t *testing.T) {
	l := newLoadout()
	opts := DefaultOptions()
	opts.GearSwitch = IntervalRange{Min: 5, Max: 1}
	opts.Idle = IntervalRange{Min: -1, Max: 1}
	_, err := NewEngine(l.catalog, l.styles, dice.NewFixedSet(2), opts, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "gear switch")
	assert.Contains(t, err.Error(), "idle")
}

func TestStart_InitialState(t *testing.T) {
	l := newLoadout()
	e := newTestEngine(t, l, dice.NewFixedSet(2), fixedOptions())
	e.Start()

	assert.Equal(t, StateAttacking, e.State())
	assert.Equal(t, combat.Range, e.Gear())
	assert.Equal(t, combat.Range, e.rotation.Style())
	assert.Equal(t, combat.StartingAdrenaline, e.Player().Adrenaline)
	assert.Equal(t, combat.MaxSummoning, e.Player().Summoning)
	assert.Equal(t, 20000.0, e.Target().Health)
	assert.Equal(t, combat.Melee, e.Target().Prayer)
	// FixedEffect(false) takes the second weakness.
	assert.Equal(t, combat.Bolt, e.Target().Weakness)

	r := e.Result()
	assert.Equal(t, math.MaxInt, r.FastestKill)
	assert.Equal(t, math.MinInt, r.SlowestKill)
}

func TestDamageTarget_RangeHitForcesSwitch(t *testing.T) {
	l := newLoadout()
	effect := &countingEffect{answer: func(float64) bool { return true }}
	set := dice.NewFixedSet(2)
	set.Effect = effect
	e := newTestEngine(t, l, set, fixedOptions())
	e.Start()
	e.index = 1 // mid-rotation: no immediate gear swap
	rolls := effect.calls

	e.damageTarget(5000, combat.Range, false, false)

	tg := e.Target()
	assert.Equal(t, 15000.0, tg.Health)
	assert.Equal(t, combat.Range, tg.Prayer)
	for _, s := range combat.Styles {
		assert.Zero(t, tg.Pressure(s))
	}
	assert.Equal(t, rolls+1, effect.calls, "weakness re-rolled once")
	assert.Equal(t, combat.Fire, tg.Weakness)
	assert.Equal(t, 5000.0, e.Result().TotalDamage)
	assert.Equal(t, StateAttacking, e.State())
}

func TestDamageTarget_SwitchBetweenRotationsStartsGearSwap(t *testing.T) {
	l := newLoadout()
	e := newTestEngine(t, l, dice.NewFixedSet(2), fixedOptions())
	e.Start()
	e.index = e.rotation.Len()

	e.damageTarget(3100, combat.Range, false, false)

	assert.Equal(t, combat.Range, e.Target().Prayer)
	assert.Equal(t, StateSwitchingGear, e.State())
	assert.Equal(t, combat.Magic, e.nextGear)
	assert.Equal(t, 2, e.idleCooldown)
}

func TestDamageTarget_KillingBlow(t *testing.T) {
	l := newLoadout()
	e := newTestEngine(t, l, dice.NewFixedSet(3), fixedOptions())
	e.Start()
	e.gear = combat.Magic
	e.Target().Health = 250
	e.Target().AddPressure(combat.Range, 1000)
	e.demonAge = 40

	e.damageTarget(550, combat.Range, false, false)

	r := e.Result()
	assert.Equal(t, 1, r.Kills)
	assert.Equal(t, 300.0, r.OverkillDamage)
	assert.Equal(t, 550.0, r.TotalDamage)
	assert.Equal(t, 40, r.FastestKill)
	assert.Equal(t, 40, r.SlowestKill)

	tg := e.Target()
	assert.Equal(t, 20000.0, tg.Health)
	assert.Equal(t, combat.Melee, tg.Prayer)
	assert.Zero(t, tg.Pressure(combat.Range))
	assert.Equal(t, combat.Range, e.Gear(), "default style equipped instantly")
	assert.Equal(t, StateIdling, e.State())
	assert.Equal(t, 3, e.idleCooldown)
	assert.Zero(t, e.demonAge)
}

func TestDamageTarget_FloorsDamage(t *testing.T) {
	l := newLoadout()
	e := newTestEngine(t, l, dice.NewFixedSet(2), fixedOptions())
	e.Start()

	e.damageTarget(999.9, combat.Magic, false, false)

	assert.Equal(t, 19001.0, e.Target().Health)
	assert.Equal(t, 999.0, e.Target().Pressure(combat.Magic))
}

func TestDamageTarget_BlockedHitChangesNothing(t *testing.T) {
	l := newLoadout()
	e := newTestEngine(t, l, dice.NewFixedSet(2), fixedOptions())
	e.Start()

	e.damageTarget(4000, combat.Melee, false, false)

	tg := e.Target()
	assert.Equal(t, 20000.0, tg.Health)
	assert.Zero(t, tg.Pressure(combat.Melee))
	assert.Zero(t, e.Result().TotalDamage)
}

func TestDamageTarget_DelayedHitDefersSwitch(t *testing.T) {
	l := newLoadout()
	e := newTestEngine(t, l, dice.NewFixedSet(2), fixedOptions())
	e.Start()
	e.index = 1

	e.damageTarget(4000, combat.Range, false, true)
	assert.Equal(t, combat.Melee, e.Target().Prayer)
	assert.Equal(t, 4000.0, e.Target().Pressure(combat.Range))

	e.damageTarget(0, combat.Range, false, false)
	assert.Equal(t, combat.Range, e.Target().Prayer)
	assert.Zero(t, e.Target().Pressure(combat.Range))
}

func TestDamageTarget_FamiliarThreshold(t *testing.T) {
	l := newLoadout()
	e := newTestEngine(t, l, dice.NewFixedSet(2), fixedOptions())
	e.Start()
	e.index = 1

	for range 3 {
		e.damageTarget(0, combat.Magic, true, false)
	}
	assert.Equal(t, combat.Melee, e.Target().Prayer)
	assert.Equal(t, 600.0, e.Target().Pressure(combat.Magic))

	e.damageTarget(0, combat.Magic, true, false)
	assert.Equal(t, combat.Magic, e.Target().Prayer)
	assert.Equal(t, 20000.0, e.Target().Health)
	assert.Equal(t, StateAttacking, e.State(), "familiar switch mid-rotation waits")
}

func TestDamageTarget_PressureInvariant(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		l := newLoadout()
		e, err := NewEngine(l.catalog, l.styles, dice.NewFixedSet(2), DefaultOptions(), nil)
		require.NoError(rt, err)
		e.Start()
		e.Target().Health = 1e9
		e.Target().MaxHealth = 1e9

		hits := rapid.IntRange(1, 40).Draw(rt, "hits")
		for i := range hits {
			style := rapid.SampledFrom(combat.Styles[:]).Draw(rt, "style")
			dmg := float64(rapid.IntRange(0, 4000).Draw(rt, "dmg"))
			fromFamiliar := rapid.Bool().Draw(rt, "familiar")
			e.index = 1
			e.state = StateAttacking

			tg := e.Target()
			before := tg.Pressure(style)
			protected := tg.Protects(style)
			e.damageTarget(dmg, style, fromFamiliar, false)

			if protected {
				assert.Equal(rt, before, tg.Pressure(style), "hit %d", i)
				continue
			}
			threshold := combat.PlayerPressureThreshold
			if fromFamiliar {
				threshold = combat.FamiliarPressureThreshold
			}
			want := before + max(dmg, combat.PressureFloor)
			if want >= threshold {
				assert.Equal(rt, style, tg.Prayer, "hit %d", i)
				for _, s := range combat.Styles {
					assert.Zero(rt, tg.Pressure(s), "hit %d", i)
				}
			} else {
				assert.Equal(rt, want, tg.Pressure(style), "hit %d", i)
			}
		}
	})
}

func TestNextAbility_FallbackChain(t *testing.T) {
	l := newLoadout()
	opts := fixedOptions()
	opts.Sacrifice = &Sacrifice{Threshold: 5000, Ability: l.sacrifice}
	e := newTestEngine(t, l, dice.NewFixedSet(2), opts)
	e.Start()

	id, ok := e.nextAbility()
	require.True(t, ok)
	assert.Equal(t, l.piercing, id)
	id, ok = e.nextAbility()
	require.True(t, ok)
	assert.Equal(t, l.binding, id)

	e.Target().Health = 4000
	id, ok = e.nextAbility()
	require.True(t, ok)
	assert.Equal(t, l.sacrifice, id)

	e.catalog.Trigger(l.sacrifice)
	id, ok = e.nextAbility()
	require.True(t, ok)
	assert.Equal(t, l.piercing, id, "range basic while the target still protects melee")

	e.Target().Prayer = combat.Range
	_, ok = e.nextAbility()
	assert.False(t, ok)
	assert.Equal(t, StateSwitchingGear, e.State())
	assert.Equal(t, combat.Magic, e.nextGear)
}

func TestNextAbility_MissingBasicIsNoop(t *testing.T) {
	l := newLoadout()
	e := newTestEngine(t, l, dice.NewFixedSet(2), fixedOptions())
	e.Start()
	e.gear = combat.Melee
	e.index = e.rotation.Len()
	e.Target().Prayer = combat.Range

	_, ok := e.nextAbility()
	assert.False(t, ok)
	assert.Equal(t, StateAttacking, e.State())
}

func TestAttack_MissConsumesCooldownAndAdrenaline(t *testing.T) {
	l := newLoadout()
	set := dice.NewFixedSet(2)
	set.Accuracy = dice.AccuracyFunc(func(float64) bool { return false })
	e := newTestEngine(t, l, set, fixedOptions())
	e.Start()

	e.attack()

	r := e.Result()
	assert.Equal(t, 1, r.Misses)
	assert.Zero(t, r.Hits)
	assert.Zero(t, r.TotalDamage)
	assert.Zero(t, r.HealingPotential)
	assert.Equal(t, combat.StartingAdrenaline+8, e.Player().Adrenaline)
	assert.Equal(t, l.catalog.Get(l.piercing).Cooldown, l.catalog.Cooldown(l.piercing))
	assert.Equal(t, 3, e.globalCooldown)
}

func TestAttack_HitDamageAndHealing(t *testing.T) {
	l := newLoadout()
	e := newTestEngine(t, l, dice.NewFixedSet(2), fixedOptions())
	e.Start()

	e.attack()

	// Piercing Shot midpoint: 60% of 1752, times the 1.10 prayer bonus.
	want := math.Floor(0.60 * 1752 * DefaultPrayerBonus)
	r := e.Result()
	assert.Equal(t, 1, r.Hits)
	assert.Equal(t, want, r.TotalDamage)
	assert.Equal(t, 20000-want, e.Target().Health)
	assert.Equal(t, want, e.Target().Pressure(combat.Range))
	assert.Equal(t, combat.SoulSplit(0.60*1752*DefaultPrayerBonus), r.HealingPotential)
}

func TestAttack_PotionAddsFlatRoll(t *testing.T) {
	l := newLoadout()
	opts := fixedOptions()
	opts.PotionBoost = 10
	e := newTestEngine(t, l, dice.NewFixedSet(2), opts)
	e.Start()

	e.attack()

	want := math.Floor(0.60*1752*DefaultPrayerBonus + 60)
	assert.Equal(t, want, e.Result().TotalDamage)
}

func TestAttack_BlockedHitHealsNothing(t *testing.T) {
	l := newLoadout()
	opts := fixedOptions()
	opts.TargetPrayer = combat.Range
	e := newTestEngine(t, l, dice.NewFixedSet(2), opts)
	e.Start()

	e.attack()

	r := e.Result()
	assert.Equal(t, 1, r.Hits)
	assert.Zero(t, r.HealingPotential)
	assert.Zero(t, r.TotalDamage)
	assert.Equal(t, 20000.0, e.Target().Health)
}

func TestAttack_KillHealingUsesRemainingHealth(t *testing.T) {
	l := newLoadout()
	e := newTestEngine(t, l, dice.NewFixedSet(2), fixedOptions())
	e.Start()
	e.Target().Health = 400

	e.attack()

	r := e.Result()
	assert.Equal(t, 1, r.Kills)
	assert.Equal(t, 100.0, r.HealingPotential)
}

func TestAttack_RingRefundsThreshold(t *testing.T) {
	for _, ring := range []bool{false, true} {
		l := newLoadout()
		set := dice.NewFixedSet(2)
		set.Effect = dice.EffectFunc(func(p float64) bool { return p == RingChance })
		opts := fixedOptions()
		opts.Ring = ring
		e := newTestEngine(t, l, set, opts)
		e.Start()
		e.Player().Adrenaline = 60
		e.rotation, e.hasRotation, e.index = combat.NewRotation(combat.Range, l.snap), true, 0

		e.attack()

		if ring {
			assert.Equal(t, 60, e.Player().Adrenaline)
		} else {
			assert.Equal(t, 45, e.Player().Adrenaline)
		}
	}
}

func TestTick_IdlesWhenNoRotationIsUsable(t *testing.T) {
	c := combat.NewCatalog()
	thresh := c.Add(combat.NewAbility("Rapid Fire", 300, 600, 8, 20, -50, false))
	table := combat.NewStyleTable()
	table.AddRotation(combat.NewRotation(combat.Range, thresh))
	table.AddRotation(combat.NewRotation(combat.Magic, thresh))

	opts := fixedOptions()
	opts.Familiar = familiar.NewIronTitan()
	e, err := NewEngine(c, table, dice.NewFixedSet(2), opts, zap.NewNop())
	require.NoError(t, err)
	e.Start()
	require.Equal(t, StateIdling, e.State())

	for range 25 {
		e.Tick()
	}

	r := e.Result()
	assert.Equal(t, 25, r.Inefficiency)
	assert.Zero(t, r.Hits+r.Misses)
	assert.Equal(t, 20000.0, e.Target().Health, "familiar is suspended while idling")
	assert.Equal(t, StateIdling, e.State())
	assert.Contains(t, r.Events[0], "[1]: [Warning]")
}

func TestTick_TrySwitchGearRetriesUntilRotationReady(t *testing.T) {
	l := newLoadout()
	e := newTestEngine(t, l, dice.NewFixedSet(2), fixedOptions())
	e.Start()
	// Wrack gates the only other rotation.
	l.catalog.SetCooldown(l.wrack, 3)
	e.index = e.rotation.Len()
	e.Target().Prayer = combat.Range

	e.attack()
	require.Equal(t, StateTrySwitchGear, e.State())
	assert.Equal(t, 1, e.Result().Inefficiency)

	e.Tick()
	e.Tick()
	assert.Equal(t, StateTrySwitchGear, e.State())
	assert.Equal(t, 3, e.Result().Inefficiency)

	e.Tick()
	assert.Equal(t, StateSwitchingGear, e.State())
	assert.Equal(t, combat.Magic, e.nextGear)
}

func TestTick_SwitchingGearCompletes(t *testing.T) {
	l := newLoadout()
	e := newTestEngine(t, l, dice.NewFixedSet(2), fixedOptions())
	e.Start()
	e.switchGear(combat.Magic, false)
	require.Equal(t, StateSwitchingGear, e.State())

	e.Tick()
	assert.Equal(t, StateSwitchingGear, e.State())
	assert.Equal(t, combat.Range, e.Gear())
	e.Tick()
	assert.Equal(t, StateAttacking, e.State())
	assert.Equal(t, combat.Magic, e.Gear())
}

func TestFamiliar_ScrollChargedOnce(t *testing.T) {
	l := newLoadout()
	opts := fixedOptions()
	opts.Familiar = familiar.NewIronTitan()
	opts.ScrollSeconds = 6
	e := newTestEngine(t, l, dice.NewFixedSet(2), opts)
	e.Start()
	assert.Equal(t, 10, e.scrollInterval)

	for range 7 {
		e.Tick()
	}
	assert.Equal(t, combat.MaxSummoning, e.Player().Summoning)

	e.Tick()
	assert.Equal(t, combat.MaxSummoning-12, e.Player().Summoning)
	assert.Equal(t, 10, e.scrollCooldown)
	assert.Equal(t, 8, e.familiarCooldown)
}

func TestFamiliar_ScrollsDisabledWithoutInterval(t *testing.T) {
	l := newLoadout()
	opts := fixedOptions()
	opts.Familiar = familiar.NewIronTitan()
	e := newTestEngine(t, l, dice.NewFixedSet(2), opts)
	e.Start()

	for range 8 {
		e.Tick()
	}
	assert.Equal(t, combat.MaxSummoning, e.Player().Summoning)
	assert.Equal(t, 8, e.familiarCooldown)
}

func TestFamiliar_PressureFromWhiff(t *testing.T) {
	l := newLoadout()
	set := dice.NewFixedSet(2)
	set.Familiar = dice.FixedFamiliar{Value: 0.95, Lands: false}
	opts := fixedOptions()
	opts.Familiar = familiar.NewIronTitan()
	e := newTestEngine(t, l, set, opts)
	e.Start()
	// Keep the player from adding magic pressure.
	e.state = StateSwitchingGear
	e.idleCooldown = 100

	for range 8 {
		e.Tick()
	}
	assert.Equal(t, 200.0, e.Target().Pressure(combat.Magic))
	assert.Equal(t, 20000.0, e.Target().Health)
}

func TestFamiliar_StupidSkipsAttacks(t *testing.T) {
	l := newLoadout()
	opts := fixedOptions()
	opts.Familiar = familiar.NewSteelTitan()
	opts.ScrollSeconds = 6
	e := newTestEngine(t, l, dice.NewFixedSet(2), opts)
	e.Start()
	e.stupid = true

	for range 8 {
		e.Tick()
	}
	assert.Equal(t, combat.MaxSummoning, e.Player().Summoning)
	assert.Zero(t, e.familiarCooldown)
}

func TestFamiliar_StupidRolledPerEncounter(t *testing.T) {
	l := newLoadout()
	set := dice.NewFixedSet(2)
	set.Familiar = dice.FixedFamiliar{IsStupid: true}
	opts := fixedOptions()
	opts.Familiar = familiar.NewIronTitan()
	e := newTestEngine(t, l, set, opts)
	e.Start()
	assert.False(t, e.stupid)

	e.Target().Health = 10
	e.damageTarget(100, combat.Range, false, false)
	assert.True(t, e.stupid)
}

func TestSummoningRestore(t *testing.T) {
	l := newLoadout()
	e := newTestEngine(t, l, dice.NewFixedSet(2), fixedOptions())
	e.Start()
	e.Player().Summoning = 30

	for range 49 {
		e.Tick()
	}
	assert.Equal(t, 30, e.Player().Summoning)
	e.Tick()
	assert.Equal(t, 45, e.Player().Summoning)
	for range 50 {
		e.Tick()
	}
	assert.Equal(t, 60, e.Player().Summoning)
	for range 50 {
		e.Tick()
	}
	assert.Equal(t, 60, e.Player().Summoning)
}

func TestSimulate_FullRun(t *testing.T) {
	l := newLoadout()
	opts := fixedOptions()
	opts.Familiar = familiar.NewSteelTitan()
	opts.ScrollSeconds = 30
	e := newTestEngine(t, l, dice.NewFixedSet(2), opts)

	r := e.Simulate()

	assert.Equal(t, DefaultTicks, r.Ticks)
	assert.Positive(t, r.Kills)
	assert.Positive(t, r.Hits)
	assert.Zero(t, r.Misses)
	assert.LessOrEqual(t, r.FastestKill, r.SlowestKill)
	assert.GreaterOrEqual(t, r.TotalDamage, float64(r.Kills)*combat.DefaultTargetHealth)
	assert.NotEmpty(t, r.Events)
	assert.InDelta(t, float64(r.Kills), r.KillsPerHour(), 1e-9)
}

func TestSimulate_RestartsCleanly(t *testing.T) {
	l := newLoadout()
	e := newTestEngine(t, l, dice.NewFixedSet(2), fixedOptions())
	first := e.Simulate()
	second := e.Simulate()
	assert.Equal(t, first.Summary(), second.Summary())
	assert.Equal(t, first.Events, second.Events)
}

func TestSimulate_DeterministicWithSeededSource(t *testing.T) {
	run := func() Result {
		l := newLoadout()
		opts := fixedOptions()
		opts.Familiar = familiar.NewIronTitan()
		opts.ScrollSeconds = 12
		opts.Ring = true
		opts.Ticks = 3000
		set := dice.NewRandomSet(dice.NewSeededSource(7))
		e := newTestEngine(t, l, set, opts)
		return e.Simulate()
	}
	a, b := run(), run()
	assert.Equal(t, a.Summary(), b.Summary())
	assert.Equal(t, a.Events, b.Events)
}

func TestSimulate_DeterministicWithSequenceSource(t *testing.T) {
	run := func() Result {
		l := newLoadout()
		set := dice.NewRandomSet(dice.NewSequenceSource(0.1, 0.7, 0.35, 0.92, 0.5))
		opts := DefaultOptions()
		opts.Ticks = 1200
		e := newTestEngine(t, l, set, opts)
		return e.Simulate()
	}
	a, b := run(), run()
	assert.Equal(t, a.Summary(), b.Summary())
	assert.Nil(t, a.Events)
}

func TestNewEngine_ZeroTicksMeansDefault(t *testing.T) {
	l := newLoadout()
	opts := DefaultOptions()
	opts.Ticks = 0
	e := newTestEngine(t, l, dice.NewFixedSet(2), opts)
	assert.Equal(t, DefaultTicks, e.Options().Ticks)
}

func TestResult_Summary(t *testing.T) {
	r := newResult()
	s := r.Summary()
	assert.Contains(t, s, "fastest kill: n/a")

	r.Kills, r.FastestKill, r.SlowestKill, r.TotalDamage = 2, 300, 450, 41234
	r.Ticks = 3000
	s = r.Summary()
	assert.Contains(t, s, "total damage: 41,234")
	assert.Contains(t, s, "fastest kill: 300 ticks (180.0s)")
	assert.InDelta(t, 4.0, r.KillsPerHour(), 1e-9)
}

func TestResult_Accuracy(t *testing.T) {
	assert.Zero(t, Result{}.Accuracy())
	assert.InDelta(t, 0.75, Result{Hits: 3, Misses: 1}.Accuracy(), 1e-9)
}

func TestState_String(t *testing.T) {
	assert.Equal(t, "attacking", StateAttacking.String())
	assert.Equal(t, "idling", StateIdling.String())
	assert.Equal(t, "unknown", State(9).String())
}
