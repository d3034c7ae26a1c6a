package dice

import "fmt"

func errMissing(capability string) error {
	return fmt.Errorf("dice: %s capability is nil", capability)
}

// DamageFunc adapts a function to DamageRoller.
type DamageFunc func(min, max float64) float64

func (f DamageFunc) Damage(min, max float64) float64 { return f(min, max) }

// AccuracyFunc adapts a function to AccuracyChecker.
type AccuracyFunc func(chance float64) bool

func (f AccuracyFunc) Hit(chance float64) bool { return f(chance) }

// IntervalFunc adapts a function to IntervalRoller.
type IntervalFunc func(min, max int) int

func (f IntervalFunc) Interval(min, max int) int { return f(min, max) }

// EffectFunc adapts a function to EffectChecker.
type EffectFunc func(probability float64) bool

func (f EffectFunc) Occurred(probability float64) bool { return f(probability) }

// RareDropFunc adapts a function to RareDropChecker.
type RareDropFunc func() bool

func (f RareDropFunc) RareDrop() bool { return f() }

// FixedDamage returns a DamageRoller that always lands at fraction of the range.
// 0 yields min, 1 yields max.
func FixedDamage(fraction float64) DamageRoller {
	return DamageFunc(func(min, max float64) float64 {
		return min + fraction*(max-min)
	})
}

// FixedAccuracy returns an AccuracyChecker that still honours the hard edges
// (chance >= 1 hits, chance <= 0 misses) and otherwise answers hit.
func FixedAccuracy(hit bool) AccuracyChecker {
	return AccuracyFunc(func(chance float64) bool {
		switch {
		case chance >= 1:
			return true
		case chance <= 0:
			return false
		}
		return hit
	})
}

// FixedInterval returns an IntervalRoller that always yields ticks.
func FixedInterval(ticks int) IntervalRoller {
	return IntervalFunc(func(int, int) int { return ticks })
}

// FixedEffect returns an EffectChecker that always yields occurred.
func FixedEffect(occurred bool) EffectChecker {
	return EffectFunc(func(float64) bool { return occurred })
}

// FixedRareDrop returns a RareDropChecker that always yields drop.
func FixedRareDrop(drop bool) RareDropChecker {
	return RareDropFunc(func() bool { return drop })
}

// FixedFamiliar is a FamiliarDecider with constant answers.
type FixedFamiliar struct {
	Value    float64
	Lands    bool
	IsStupid bool
}

func (f FixedFamiliar) StyleValue() float64 { return f.Value }
func (f FixedFamiliar) Hit(float64) bool    { return f.Lands }
func (f FixedFamiliar) Stupid(float64) bool { return f.IsStupid }

// NewFixedSet returns a fully deterministic Set: every attack lands at the
// midpoint of its range, intervals last ticks, effects never occur, the
// familiar always lands and is never stupid, and nothing rare drops.
//
// Postcondition: Returned Set passes Validate.
func NewFixedSet(ticks int) Set {
	return Set{
		Damage:   FixedDamage(0.5),
		Accuracy: FixedAccuracy(true),
		Interval: FixedInterval(ticks),
		Effect:   FixedEffect(false),
		Familiar: FixedFamiliar{Lands: true},
		RareDrop: FixedRareDrop(false),
	}
}
