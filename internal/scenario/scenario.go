// Package scenario loads YAML loadouts (abilities, rotations, weapons, gear,
// familiar) and turns them into ready-to-run simulation engines.
package scenario

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/cory-johannsen/demonsim/internal/game/combat"
	"github.com/cory-johannsen/demonsim/internal/game/familiar"
)

// ErrInvalidScenario wraps every validation failure.
var ErrInvalidScenario = errors.New("invalid scenario")

// AbilityDef is one ability entry. Multi-hit abilities are modelled as
// several entries sharing a name.
type AbilityDef struct {
	ID   string  `yaml:"id"`
	Name string  `yaml:"name"`
	Min  float64 `yaml:"min"`
	Max  float64 `yaml:"max"`
	// Duration is in ticks; Cooldown is in seconds.
	Duration   int     `yaml:"duration"`
	Cooldown   float64 `yaml:"cooldown"`
	Adrenaline int     `yaml:"adrenaline"`
	Delayed    bool    `yaml:"delayed"`
}

// WeaponDef describes the weapon of one style.
type WeaponDef struct {
	DamageType string  `yaml:"damage_type"`
	Damage     float64 `yaml:"damage"`
	Tier       float64 `yaml:"tier"`
}

// StyleDef is the loadout of one combat style.
type StyleDef struct {
	Weapon WeaponDef `yaml:"weapon"`
	Basic  string    `yaml:"basic"`
	// Rotations are ability ID lists in preference order.
	Rotations [][]string `yaml:"rotations"`
}

// SacrificeDef enables the low-health finisher.
type SacrificeDef struct {
	Ability   string  `yaml:"ability"`
	Threshold float64 `yaml:"threshold"`
}

// GearDef holds the flat bonuses.
type GearDef struct {
	HelmAccuracy float64 `yaml:"helm_accuracy"`
	HelmDamage   float64 `yaml:"helm_damage"`
	PotionBoost  float64 `yaml:"potion_boost"`
	Ring         bool    `yaml:"ring"`
}

// FamiliarDef selects a familiar. Kind "scripted" requires Script (a path
// relative to the scenario file) or ScriptSource, plus Stats.
type FamiliarDef struct {
	Kind             string          `yaml:"kind"`
	ScrollSeconds    float64         `yaml:"scroll_seconds"`
	Script           string          `yaml:"script"`
	ScriptSource     string          `yaml:"script_source"`
	InstructionLimit int             `yaml:"instruction_limit"`
	Fallback         string          `yaml:"fallback"`
	Stats            *familiar.Stats `yaml:"stats"`
}

// TargetDef overrides the demon's starting stats.
type TargetDef struct {
	Health  float64 `yaml:"health"`
	Defence float64 `yaml:"defence"`
	Prayer  string  `yaml:"prayer"`
}

// Scenario is one complete loadout.
type Scenario struct {
	Name         string              `yaml:"name"`
	Description  string              `yaml:"description"`
	DefaultStyle string              `yaml:"default_style"`
	Abilities    []AbilityDef        `yaml:"abilities"`
	Styles       map[string]StyleDef `yaml:"styles"`
	Sacrifice    *SacrificeDef       `yaml:"sacrifice"`
	Gear         GearDef             `yaml:"gear"`
	Familiar     *FamiliarDef        `yaml:"familiar"`
	Target       *TargetDef          `yaml:"target"`
}

// Parse decodes and validates a scenario document. Unknown keys are rejected.
//
// Postcondition: Returns a valid Scenario, or an error wrapping ErrInvalidScenario
// for semantic problems.
func Parse(data []byte) (*Scenario, error) {
	var s Scenario
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&s); err != nil {
		return nil, fmt.Errorf("parsing scenario: %w", err)
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

// Load reads and parses the scenario at path. A familiar script path is
// resolved against the scenario's directory and its source inlined.
//
// Precondition: path must be a readable file.
func Load(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading scenario %q: %w", path, err)
	}
	s, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%q: %w", path, err)
	}
	if f := s.Familiar; f != nil && f.Script != "" {
		script := f.Script
		if !filepath.IsAbs(script) {
			script = filepath.Join(filepath.Dir(path), script)
		}
		src, err := os.ReadFile(script)
		if err != nil {
			return nil, fmt.Errorf("reading familiar script %q: %w", script, err)
		}
		f.ScriptSource = string(src)
	}
	if s.Name == "" {
		s.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	return s, nil
}

// LoadDirectory loads every *.yaml file in dir, keyed by scenario name.
//
// Postcondition: Returns a non-nil map, or the first load error.
func LoadDirectory(dir string) (map[string]*Scenario, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading scenario dir %q: %w", dir, err)
	}
	out := make(map[string]*Scenario)
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".yaml") {
			continue
		}
		s, err := Load(filepath.Join(dir, e.Name()))
		if err != nil {
			return nil, err
		}
		if _, dup := out[s.Name]; dup {
			return nil, fmt.Errorf("%w: duplicate scenario name %q", ErrInvalidScenario, s.Name)
		}
		out[s.Name] = s
	}
	return out, nil
}

// Validate reports every problem at once.
func (s *Scenario) Validate() error {
	var errs []error
	add := func(format string, args ...any) {
		errs = append(errs, fmt.Errorf(format, args...))
	}

	ids := make(map[string]bool, len(s.Abilities))
	for i, a := range s.Abilities {
		switch {
		case a.ID == "":
			add("ability %d: id is required", i)
		case ids[a.ID]:
			add("ability %q: duplicate id", a.ID)
		}
		ids[a.ID] = true
		if a.Min < 0 || a.Max < a.Min {
			add("ability %q: damage range [%v, %v] is invalid", a.ID, a.Min, a.Max)
		}
		if a.Duration < 0 || a.Cooldown < 0 {
			add("ability %q: duration and cooldown must be >= 0", a.ID)
		}
	}
	known := func(id string) bool { return ids[id] }

	if len(s.Styles) == 0 {
		add("at least one style is required")
	}
	seen := make(map[combat.Style]string, len(s.Styles))
	for name, st := range s.Styles {
		style, err := combat.ParseStyle(name)
		if err != nil {
			add("styles: %v", err)
			continue
		}
		if prev, ok := seen[style]; ok {
			first, second := prev, name
			if second < first {
				first, second = second, first
			}
			add("styles: %q is an alias of %q", second, first)
			continue
		}
		seen[style] = name
		if _, err := combat.ParseDamageType(st.Weapon.DamageType); err != nil {
			add("style %s: %v", name, err)
		}
		if st.Weapon.Damage <= 0 {
			add("style %s: weapon damage must be > 0", name)
		}
		if st.Basic != "" && !known(st.Basic) {
			add("style %s: basic %q: %v", name, st.Basic, combat.ErrUnknownAbility)
		}
		for i, r := range st.Rotations {
			if len(r) == 0 {
				add("style %s rotation %d: empty", name, i)
			}
			for _, id := range r {
				if !known(id) {
					add("style %s rotation %d: %q: %v", name, i, id, combat.ErrUnknownAbility)
				}
			}
		}
	}
	if s.DefaultStyle != "" {
		if _, err := combat.ParseStyle(s.DefaultStyle); err != nil {
			add("default_style: %v", err)
		}
	}
	if sc := s.Sacrifice; sc != nil {
		if !known(sc.Ability) {
			add("sacrifice %q: %v", sc.Ability, combat.ErrUnknownAbility)
		}
		if sc.Threshold <= 0 {
			add("sacrifice threshold must be > 0")
		}
	}
	if s.Gear.PotionBoost < 0 || s.Gear.HelmAccuracy < 0 || s.Gear.HelmDamage < 0 {
		add("gear bonuses must be >= 0")
	}
	if f := s.Familiar; f != nil {
		errs = append(errs, f.validate()...)
	}
	if t := s.Target; t != nil {
		if t.Health < 0 || t.Defence < 0 {
			add("target health and defence must be >= 0")
		}
		if t.Prayer != "" {
			if _, err := combat.ParseStyle(t.Prayer); err != nil {
				add("target prayer: %v", err)
			}
		}
	}

	if len(errs) == 0 {
		return nil
	}
	return fmt.Errorf("%w: %w", ErrInvalidScenario, errors.Join(errs...))
}

func (f *FamiliarDef) validate() []error {
	var errs []error
	if f.ScrollSeconds < 0 {
		errs = append(errs, fmt.Errorf("familiar scroll_seconds must be >= 0"))
	}
	if familiar.Kind(f.Kind) != familiar.Scripted {
		if _, err := familiar.ByKind(familiar.Kind(f.Kind)); err != nil {
			errs = append(errs, fmt.Errorf("familiar: %w", err))
		}
		return errs
	}
	if f.Script == "" && f.ScriptSource == "" {
		errs = append(errs, fmt.Errorf("scripted familiar needs script or script_source"))
	}
	if f.Stats == nil {
		errs = append(errs, fmt.Errorf("scripted familiar needs stats"))
	} else if err := f.Stats.Validate(); err != nil {
		errs = append(errs, err)
	}
	if f.Fallback != "" {
		if _, err := combat.ParseStyle(f.Fallback); err != nil {
			errs = append(errs, fmt.Errorf("familiar fallback: %w", err))
		}
	}
	return errs
}
