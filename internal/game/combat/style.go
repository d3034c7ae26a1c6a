// Package combat holds the combat rules shared by the simulator: styles and
// damage types, the accuracy model, abilities and rotations, and the mutable
// player and target records.
package combat

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownStyle is returned when a style name cannot be parsed.
var ErrUnknownStyle = errors.New("unknown combat style")

// Style is one of the three offensive combat styles.
type Style int

const (
	Magic Style = iota
	Range
	Melee
	NoStyle
)

// Styles lists the three real combat styles in evaluation order.
var Styles = [3]Style{Magic, Range, Melee}

// String returns a human-readable style label.
func (s Style) String() string {
	switch s {
	case Magic:
		return "Magic"
	case Range:
		return "Range"
	case Melee:
		return "Melee"
	default:
		return "None"
	}
}

// Valid reports whether s is one of Magic, Range, or Melee.
func (s Style) Valid() bool { return s >= Magic && s <= Melee }

// ParseStyle converts a case-insensitive style name into a Style.
//
// Postcondition: Returns a valid Style or an error wrapping ErrUnknownStyle.
func ParseStyle(name string) (Style, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "magic", "mage":
		return Magic, nil
	case "range", "ranged":
		return Range, nil
	case "melee":
		return Melee, nil
	}
	return NoStyle, fmt.Errorf("%w: %q", ErrUnknownStyle, name)
}

// DamageType is the elemental or physical flavour of an attack.
type DamageType int

const (
	Stab DamageType = iota
	Slash
	Crush
	Bolt
	Arrow
	Thrown
	Air
	Water
	Earth
	Fire
	NoDamageType
)

var damageTypeNames = [...]string{"stab", "slash", "crush", "bolt", "arrow", "thrown", "air", "water", "earth", "fire", "none"}

// String returns the lower-case damage type name.
func (d DamageType) String() string {
	if d < Stab || d > NoDamageType {
		return "none"
	}
	return damageTypeNames[d]
}

// ParseDamageType converts a case-insensitive name into a DamageType.
func ParseDamageType(name string) (DamageType, error) {
	n := strings.ToLower(strings.TrimSpace(name))
	for i, candidate := range damageTypeNames {
		if candidate == n {
			return DamageType(i), nil
		}
	}
	return NoDamageType, fmt.Errorf("unknown damage type %q", name)
}

// Style returns the broad combat style family d belongs to.
func (d DamageType) Style() Style {
	switch d {
	case Stab, Slash, Crush:
		return Melee
	case Bolt, Arrow, Thrown:
		return Range
	case Air, Water, Earth, Fire:
		return Magic
	default:
		return NoStyle
	}
}

// Affinity classifies how well an offensive damage type fares against a weakness.
type Affinity int

const (
	Strong Affinity = iota
	Neutral
	Weak
	ExtraWeak
	Paper
)

// String returns a human-readable affinity label.
func (a Affinity) String() string {
	switch a {
	case Strong:
		return "strong"
	case Neutral:
		return "neutral"
	case Weak:
		return "weak"
	case ExtraWeak:
		return "extra weak"
	default:
		return "paper"
	}
}

// Modifier returns the defence multiplier for a.
// Paper has no defence at all.
func (a Affinity) Modifier() float64 {
	switch a {
	case Strong:
		return 7.5
	case Neutral:
		return 5.5
	case Weak:
		return 4.0
	case ExtraWeak:
		return 10.0 / 3.0
	default:
		return 0
	}
}

// beats maps each style family to the family whose defence it overwhelms.
var beats = map[Style]Style{
	Magic: Melee,
	Melee: Range,
	Range: Magic,
}

// Compare returns the affinity of an offensive damage type against the
// target's weakness.
//
//   - identical types are ExtraWeak
//   - same family, different type is Neutral
//   - offense family beating the weakness family is Strong, the reverse is Weak
//   - a target without a weakness has Paper defence
//
// Postcondition: Returns one of the five Affinity values.
func Compare(offense, weakness DamageType) Affinity {
	defence := weakness.Style()
	if defence == NoStyle {
		return Paper
	}
	if offense == weakness {
		return ExtraWeak
	}
	attack := offense.Style()
	switch {
	case attack == NoStyle, attack == defence:
		return Neutral
	case beats[attack] == defence:
		return Strong
	default:
		return Weak
	}
}
