// Package dice provides the randomness abstractions consumed by the
// simulation engine: a base Source and six independent decision capabilities.
//
// The engine never touches a Source directly; it only sees a Set. Swapping a
// capability for a deterministic stub makes any scenario reproducible.
package dice

// Source is the randomness provider backing the random capabilities.
type Source interface {
	// Intn returns a non-negative random int in [0, n).
	//
	// Precondition: n > 0.
	Intn(n int) int
	// Float64 returns a random float in [0, 1).
	Float64() float64
}

// DamageRoller picks a damage amount inside a range.
type DamageRoller interface {
	// Damage returns a value in [min, max].
	Damage(min, max float64) float64
}

// AccuracyChecker decides whether an attack lands.
type AccuracyChecker interface {
	// Hit reports true with probability chance.
	// chance >= 1 always hits; chance <= 0 never does.
	Hit(chance float64) bool
}

// IntervalRoller picks a delay in ticks.
type IntervalRoller interface {
	// Interval returns a tick count in [min, max); min when max <= min.
	Interval(min, max int) int
}

// EffectChecker decides whether a probabilistic effect occurs.
type EffectChecker interface {
	Occurred(probability float64) bool
}

// FamiliarDecider drives the familiar's per-attack decisions.
type FamiliarDecider interface {
	// StyleValue returns a draw in [0, 1) fed to the familiar's style policy.
	StyleValue() float64
	// Hit reports whether one familiar hit lands.
	Hit(chance float64) bool
	// Stupid reports whether the familiar idles for the whole encounter.
	Stupid(chance float64) bool
}

// RareDropChecker decides whether a kill yields the rare drop.
type RareDropChecker interface {
	RareDrop() bool
}

// RareDropOdds is the denominator of the fixed 1-in-N rare drop chance.
const RareDropOdds = 250

// Set bundles one implementation of every capability.
//
// Invariant: every field is non-nil once returned by a constructor in this package.
type Set struct {
	Damage   DamageRoller
	Accuracy AccuracyChecker
	Interval IntervalRoller
	Effect   EffectChecker
	Familiar FamiliarDecider
	RareDrop RareDropChecker
}

// Validate reports whether every capability is populated.
//
// Postcondition: Returns nil iff all six fields are non-nil.
func (s Set) Validate() error {
	switch {
	case s.Damage == nil:
		return errMissing("damage")
	case s.Accuracy == nil:
		return errMissing("accuracy")
	case s.Interval == nil:
		return errMissing("interval")
	case s.Effect == nil:
		return errMissing("effect")
	case s.Familiar == nil:
		return errMissing("familiar")
	case s.RareDrop == nil:
		return errMissing("rare drop")
	}
	return nil
}

// NewRandomSet returns a Set whose every capability draws from src.
//
// Precondition: src must be non-nil.
// Postcondition: Returned Set passes Validate.
func NewRandomSet(src Source) Set {
	if src == nil {
		panic("dice: NewRandomSet called with nil source")
	}
	return Set{
		Damage:   randomDamage{src},
		Accuracy: randomAccuracy{src},
		Interval: randomInterval{src},
		Effect:   randomEffect{src},
		Familiar: randomFamiliar{src},
		RareDrop: randomRareDrop{src},
	}
}
