package scenario

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/cory-johannsen/demonsim/internal/game/combat"
	"github.com/cory-johannsen/demonsim/internal/game/dice"
	"github.com/cory-johannsen/demonsim/internal/game/familiar"
	"github.com/cory-johannsen/demonsim/internal/game/sim"
)

// Loadout is the combat half of a scenario: a fresh catalog and style table.
type Loadout struct {
	Catalog *combat.Catalog
	Styles  *combat.StyleTable
	ids     map[string]combat.AbilityID
}

// ID returns the catalog ID for a scenario ability id.
func (l *Loadout) ID(id string) (combat.AbilityID, bool) {
	a, ok := l.ids[id]
	return a, ok
}

// Loadout builds a catalog and style table. Each call returns independent
// cooldown state, so every run needs its own.
//
// Precondition: s passed Validate.
func (s *Scenario) Loadout() (*Loadout, error) {
	l := &Loadout{
		Catalog: combat.NewCatalog(),
		Styles:  combat.NewStyleTable(),
		ids:     make(map[string]combat.AbilityID, len(s.Abilities)),
	}
	for _, a := range s.Abilities {
		l.ids[a.ID] = l.Catalog.Add(combat.NewAbility(a.Name, a.Min, a.Max, a.Duration, a.Cooldown, a.Adrenaline, a.Delayed))
	}
	resolve := func(id string) (combat.AbilityID, error) {
		aid, ok := l.ids[id]
		if !ok {
			return combat.NoAbility, fmt.Errorf("%w: %q", combat.ErrUnknownAbility, id)
		}
		return aid, nil
	}

	// Iterate in Styles order so rotation IDs never depend on map order.
	for _, style := range combat.Styles {
		def, ok := s.styleDef(style)
		if !ok {
			continue
		}
		dt, err := combat.ParseDamageType(def.Weapon.DamageType)
		if err != nil {
			return nil, fmt.Errorf("style %s: %w", style, err)
		}
		l.Styles.SetWeapon(style, combat.Weapon{DamageType: dt, AbilityDamage: def.Weapon.Damage, Tier: def.Weapon.Tier})
		if def.Basic != "" {
			id, err := resolve(def.Basic)
			if err != nil {
				return nil, fmt.Errorf("style %s basic: %w", style, err)
			}
			l.Styles.SetBasic(style, id)
		}
		for i, r := range def.Rotations {
			steps := make([]combat.AbilityID, 0, len(r))
			for _, ref := range r {
				id, err := resolve(ref)
				if err != nil {
					return nil, fmt.Errorf("style %s rotation %d: %w", style, i, err)
				}
				steps = append(steps, id)
			}
			l.Styles.AddRotation(combat.NewRotation(style, steps...))
		}
	}
	return l, nil
}

// styleDef finds the definition for style under any accepted spelling.
func (s *Scenario) styleDef(style combat.Style) (StyleDef, bool) {
	for name, def := range s.Styles {
		if parsed, err := combat.ParseStyle(name); err == nil && parsed == style {
			return def, true
		}
	}
	return StyleDef{}, false
}

// Options layers the scenario's gear, target, sacrifice, and familiar on top of base.
// The caller owns the returned familiar via the engine's Close.
func (s *Scenario) Options(base sim.Options, l *Loadout, logger *zap.Logger) (sim.Options, error) {
	opts := base
	if s.DefaultStyle != "" {
		st, err := combat.ParseStyle(s.DefaultStyle)
		if err != nil {
			return opts, err
		}
		opts.DefaultStyle = st
	}
	if s.Gear.HelmAccuracy > 0 {
		opts.HelmAccuracy = s.Gear.HelmAccuracy
	}
	if s.Gear.HelmDamage > 0 {
		opts.HelmDamage = s.Gear.HelmDamage
	}
	opts.PotionBoost = s.Gear.PotionBoost
	opts.Ring = s.Gear.Ring

	if sc := s.Sacrifice; sc != nil {
		id, ok := l.ID(sc.Ability)
		if !ok {
			return opts, fmt.Errorf("sacrifice: %w: %q", combat.ErrUnknownAbility, sc.Ability)
		}
		opts.Sacrifice = &sim.Sacrifice{Threshold: sc.Threshold, Ability: id}
	}
	if t := s.Target; t != nil {
		if t.Health > 0 {
			opts.TargetHealth = t.Health
		}
		if t.Defence > 0 {
			opts.TargetDefence = t.Defence
		}
		if t.Prayer != "" {
			p, err := combat.ParseStyle(t.Prayer)
			if err != nil {
				return opts, err
			}
			opts.TargetPrayer = p
		}
	}
	if f := s.Familiar; f != nil {
		fam, err := f.build(logger)
		if err != nil {
			return opts, err
		}
		opts.Familiar = fam
		opts.ScrollSeconds = f.ScrollSeconds
	}
	return opts, nil
}

func (f *FamiliarDef) build(logger *zap.Logger) (*familiar.Familiar, error) {
	kind := familiar.Kind(f.Kind)
	if kind != familiar.Scripted {
		return familiar.ByKind(kind)
	}
	fallback := combat.Melee
	if f.Fallback != "" {
		st, err := combat.ParseStyle(f.Fallback)
		if err != nil {
			return nil, err
		}
		fallback = st
	}
	if f.Stats == nil {
		return nil, fmt.Errorf("%w: scripted familiar needs stats", ErrInvalidScenario)
	}
	return familiar.NewScripted(*f.Stats, f.ScriptSource, f.InstructionLimit, fallback, logger)
}

// Build assembles a fresh engine for one run.
//
// Precondition: s passed Validate; set passes dice.Set.Validate.
// Postcondition: Returns an engine the caller must Close, or an error.
func (s *Scenario) Build(base sim.Options, set dice.Set, logger *zap.Logger) (*sim.Engine, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	l, err := s.Loadout()
	if err != nil {
		return nil, fmt.Errorf("scenario %q: %w", s.Name, err)
	}
	opts, err := s.Options(base, l, logger)
	if err != nil {
		return nil, fmt.Errorf("scenario %q: %w", s.Name, err)
	}
	e, err := sim.NewEngine(l.Catalog, l.Styles, set, opts, logger.With(zap.String("scenario", s.Name)))
	if err != nil {
		if opts.Familiar != nil {
			opts.Familiar.Close()
		}
		return nil, fmt.Errorf("scenario %q: %w", s.Name, err)
	}
	return e, nil
}
