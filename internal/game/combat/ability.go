package combat

import (
	"errors"
	"fmt"
	"math"
)

// TickSeconds is the real-time length of one simulation tick.
const TickSeconds = 0.6

// ThresholdAdrenaline is the adrenaline a threshold ability needs to start.
const ThresholdAdrenaline = 50

// ErrUnknownAbility is returned when an AbilityID is not registered in a Catalog.
var ErrUnknownAbility = errors.New("unknown ability")

// SecondsToTicks converts a cooldown in seconds into whole ticks, rounding up.
//
// Postcondition: Returns ceil(seconds/TickSeconds), never negative.
func SecondsToTicks(seconds float64) int {
	if seconds <= 0 {
		return 0
	}
	// The epsilon absorbs binary representation error in 0.6 so that exact
	// multiples (3s, 30s, 45s) do not round up an extra tick.
	return int(math.Ceil(seconds/TickSeconds - 1e-9))
}

// DamageRange is a min/max damage pair.
type DamageRange struct {
	Min float64
	Max float64
}

// Average returns the midpoint of the range.
func (d DamageRange) Average() float64 { return (d.Min + d.Max) / 2 }

// Scale multiplies both bounds by factor.
func (d DamageRange) Scale(factor float64) DamageRange {
	return DamageRange{Min: d.Min * factor, Max: d.Max * factor}
}

// Ability is the immutable definition of one action.
type Ability struct {
	Name string
	// MinDamage and MaxDamage are percentages of weapon ability damage (157 means 157%).
	MinDamage float64
	MaxDamage float64
	// Duration is the number of ticks before the next ability can fire.
	Duration int
	// Cooldown is the number of ticks before this ability can fire again.
	Cooldown int
	// Adrenaline is gained (positive) or spent (negative) when the ability fires.
	// A negative value marks a threshold ability.
	Adrenaline int
	// Delayed abilities land without triggering the target's prayer switch.
	Delayed bool
}

// NewAbility builds an Ability with its cooldown given in seconds.
//
// Precondition: duration >= 0; cooldownSeconds >= 0.
// Postcondition: Cooldown == SecondsToTicks(cooldownSeconds).
func NewAbility(name string, minDamage, maxDamage float64, duration int, cooldownSeconds float64, adrenaline int, delayed bool) Ability {
	if duration < 0 {
		duration = 0
	}
	return Ability{
		Name:       name,
		MinDamage:  minDamage,
		MaxDamage:  maxDamage,
		Duration:   duration,
		Cooldown:   SecondsToTicks(cooldownSeconds),
		Adrenaline: adrenaline,
		Delayed:    delayed,
	}
}

// IsThreshold reports whether the ability spends adrenaline.
func (a Ability) IsThreshold() bool { return a.Adrenaline < 0 }

// IsBasic reports whether the ability generates (or is neutral to) adrenaline.
func (a Ability) IsBasic() bool { return !a.IsThreshold() }

// Damage returns the base damage range for a weapon, before any modifier.
func (a Ability) Damage(weaponDamage float64) DamageRange {
	return DamageRange{
		Min: a.MinDamage / 100 * weaponDamage,
		Max: a.MaxDamage / 100 * weaponDamage,
	}
}

// AbilityID is a stable index into a Catalog.
type AbilityID int

// NoAbility marks an unset ability reference.
const NoAbility AbilityID = -1

// Catalog owns every registered ability together with its live cooldown.
// Rotations and styles refer to abilities only through AbilityID.
type Catalog struct {
	abilities []Ability
	cooldowns []int
	byName    map[string]AbilityID
}

// NewCatalog creates an empty Catalog.
func NewCatalog() *Catalog {
	return &Catalog{byName: make(map[string]AbilityID)}
}

// Add registers a and returns its ID. Duplicate names are allowed; Named
// resolves to the first registration.
//
// Postcondition: Cooldown(id) == 0.
func (c *Catalog) Add(a Ability) AbilityID {
	id := AbilityID(len(c.abilities))
	c.abilities = append(c.abilities, a)
	c.cooldowns = append(c.cooldowns, 0)
	if _, ok := c.byName[a.Name]; !ok {
		c.byName[a.Name] = id
	}
	return id
}

// Len returns the number of registered abilities.
func (c *Catalog) Len() int { return len(c.abilities) }

// Has reports whether id is registered.
func (c *Catalog) Has(id AbilityID) bool {
	return id >= 0 && int(id) < len(c.abilities)
}

// Lookup returns the ability for id.
//
// Postcondition: Returns an error wrapping ErrUnknownAbility when id is not registered.
func (c *Catalog) Lookup(id AbilityID) (Ability, error) {
	if !c.Has(id) {
		return Ability{}, fmt.Errorf("%w: id %d", ErrUnknownAbility, id)
	}
	return c.abilities[id], nil
}

// Get returns the ability for id.
//
// Precondition: Has(id).
func (c *Catalog) Get(id AbilityID) Ability {
	return c.abilities[id]
}

// Named returns the first ability registered under name.
func (c *Catalog) Named(name string) (AbilityID, bool) {
	id, ok := c.byName[name]
	return id, ok
}

// Cooldown returns the remaining cooldown of id, in ticks.
//
// Precondition: Has(id).
func (c *Catalog) Cooldown(id AbilityID) int { return c.cooldowns[id] }

// SetCooldown overrides the remaining cooldown of id, flooring at 0.
//
// Precondition: Has(id).
func (c *Catalog) SetCooldown(id AbilityID, ticks int) {
	c.cooldowns[id] = max(ticks, 0)
}

// Trigger starts the cooldown of id.
//
// Precondition: Has(id).
// Postcondition: Cooldown(id) == Get(id).Cooldown.
func (c *Catalog) Trigger(id AbilityID) {
	c.cooldowns[id] = c.abilities[id].Cooldown
}

// Ready reports whether id is off cooldown.
func (c *Catalog) Ready(id AbilityID) bool { return c.cooldowns[id] == 0 }

// Advance decrements every cooldown by one tick.
//
// Postcondition: Every cooldown is >= 0.
func (c *Catalog) Advance() {
	for i, cd := range c.cooldowns {
		if cd > 0 {
			c.cooldowns[i] = cd - 1
		}
	}
}

// Reset clears every cooldown.
func (c *Catalog) Reset() {
	for i := range c.cooldowns {
		c.cooldowns[i] = 0
	}
}
