package sim

import (
	"errors"
	"fmt"

	"github.com/cory-johannsen/demonsim/internal/game/combat"
	"github.com/cory-johannsen/demonsim/internal/game/familiar"
)

// DefaultTicks is one hour of fighting at 0.6 seconds per tick.
const DefaultTicks = 6000

// PlayerLevel is the base level fed into the accuracy formula.
const PlayerLevel = 99.0

// DefaultPrayerBonus is the damage multiplier of the player's offensive prayer.
const DefaultPrayerBonus = 1.10

// RingChance is the chance an equipped ring refunds a threshold's adrenaline.
const RingChance = 0.1

// IntervalRange bounds a rolled delay in ticks.
type IntervalRange struct {
	Min int `yaml:"min"`
	Max int `yaml:"max"`
}

// Validate rejects negative or inverted bounds.
func (r IntervalRange) Validate() error {
	if r.Min < 0 || r.Max < r.Min {
		return fmt.Errorf("interval [%d, %d] is invalid", r.Min, r.Max)
	}
	return nil
}

// Sacrifice configures the low-health finisher.
type Sacrifice struct {
	// Threshold is the target health below which the ability is used.
	Threshold float64
	Ability   combat.AbilityID
}

// Options is the per-run configuration of an Engine. Build one from
// DefaultOptions: the zero Style is Magic, so a bare Options{} protects
// and equips Magic.
type Options struct {
	// Ticks is the run length; zero means DefaultTicks.
	Ticks int
	// GearSwitch is the delay of a non-instant gear swap.
	GearSwitch IntervalRange
	// Idle is the delay between a kill and the next encounter.
	Idle IntervalRange
	// DefaultStyle is the gear equipped at the start and after every kill.
	DefaultStyle combat.Style

	HelmAccuracy float64
	HelmDamage   float64
	PrayerBonus  float64
	// PotionBoost is the level boost from potions; it adds accuracy and a flat damage roll.
	PotionBoost float64
	Ring        bool
	// Sacrifice is disabled when nil.
	Sacrifice *Sacrifice

	// Familiar is optional. ScrollSeconds of zero disables empowered attacks.
	Familiar      *familiar.Familiar
	ScrollSeconds float64

	// Target starting stats; zero values take the combat defaults.
	TargetHealth  float64
	TargetDefence float64
	TargetPrayer  combat.Style
	// Weaknesses is the pair a re-roll chooses between, 50/50.
	Weaknesses [2]combat.DamageType

	// LogEvents records the human-readable event trace; LogTicks prefixes each line with its tick.
	LogEvents bool
	LogTicks  bool
}

// DefaultOptions returns a Range-first configuration with no familiar.
func DefaultOptions() Options {
	return Options{
		Ticks:         DefaultTicks,
		GearSwitch:    IntervalRange{Min: 4, Max: 6},
		Idle:          IntervalRange{Min: 5, Max: 7},
		DefaultStyle:  combat.Range,
		HelmAccuracy:  1,
		HelmDamage:    1,
		PrayerBonus:   DefaultPrayerBonus,
		TargetHealth:  combat.DefaultTargetHealth,
		TargetDefence: combat.DefaultTargetDefence,
		TargetPrayer:  combat.DefaultTargetPrayer,
		Weaknesses:    [2]combat.DamageType{combat.Fire, combat.Bolt},
	}
}

// withDefaults fills zero-valued numeric fields.
func (o Options) withDefaults() Options {
	d := DefaultOptions()
	if o.Ticks == 0 {
		o.Ticks = d.Ticks
	}
	if o.HelmAccuracy == 0 {
		o.HelmAccuracy = d.HelmAccuracy
	}
	if o.HelmDamage == 0 {
		o.HelmDamage = d.HelmDamage
	}
	if o.PrayerBonus == 0 {
		o.PrayerBonus = d.PrayerBonus
	}
	if o.TargetHealth == 0 {
		o.TargetHealth = d.TargetHealth
	}
	if o.TargetDefence == 0 {
		o.TargetDefence = d.TargetDefence
	}
	if o.Weaknesses == [2]combat.DamageType{} {
		o.Weaknesses = d.Weaknesses
	}
	return o
}

// Validate reports every violated constraint at once.
func (o Options) Validate() error {
	var errs []error
	if o.Ticks < 0 {
		errs = append(errs, fmt.Errorf("ticks must be >= 0, got %d", o.Ticks))
	}
	if err := o.GearSwitch.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("gear switch: %w", err))
	}
	if err := o.Idle.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("idle: %w", err))
	}
	if !o.DefaultStyle.Valid() {
		errs = append(errs, fmt.Errorf("default style %v is invalid", o.DefaultStyle))
	}
	if !o.TargetPrayer.Valid() {
		errs = append(errs, fmt.Errorf("target prayer %v is invalid", o.TargetPrayer))
	}
	if o.TargetHealth < 0 {
		errs = append(errs, fmt.Errorf("target health must be > 0, got %v", o.TargetHealth))
	}
	if o.HelmAccuracy < 0 || o.HelmDamage < 0 {
		errs = append(errs, fmt.Errorf("helm bonuses must be >= 0, got accuracy %v damage %v", o.HelmAccuracy, o.HelmDamage))
	}
	for i, w := range o.Weaknesses {
		if w < combat.Stab || w >= combat.NoDamageType {
			errs = append(errs, fmt.Errorf("weakness %d: %v is not a damage type", i, w))
		}
	}
	if o.PotionBoost < 0 {
		errs = append(errs, fmt.Errorf("potion boost must be >= 0, got %v", o.PotionBoost))
	}
	if o.ScrollSeconds < 0 {
		errs = append(errs, fmt.Errorf("scroll seconds must be >= 0, got %v", o.ScrollSeconds))
	}
	return errors.Join(errs...)
}
