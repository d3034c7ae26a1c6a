package combat

import "fmt"

// Rotation is a fixed, ordered sequence of abilities for one combat style.
// It is immutable; only the cooldowns of the referenced abilities change.
type Rotation struct {
	style     Style
	abilities []AbilityID
}

// NewRotation builds a Rotation for style from ids, in firing order.
//
// Postcondition: Len() == len(ids).
func NewRotation(style Style, ids ...AbilityID) Rotation {
	return Rotation{style: style, abilities: append([]AbilityID(nil), ids...)}
}

// Style returns the combat style the rotation is fired in.
func (r Rotation) Style() Style { return r.style }

// Len returns the number of abilities in the rotation.
func (r Rotation) Len() int { return len(r.abilities) }

// At returns the i-th ability ID.
//
// Precondition: 0 <= i < Len().
func (r Rotation) At(i int) AbilityID { return r.abilities[i] }

// Abilities returns a copy of the ability IDs.
func (r Rotation) Abilities() []AbilityID { return append([]AbilityID(nil), r.abilities...) }

// Validate checks that every ability is registered in c.
//
// Postcondition: Returns an error wrapping ErrUnknownAbility on the first unregistered ID.
func (r Rotation) Validate(c *Catalog) error {
	if !r.style.Valid() {
		return fmt.Errorf("rotation has invalid style %v", r.style)
	}
	for i, id := range r.abilities {
		if !c.Has(id) {
			return fmt.Errorf("%s rotation step %d: %w: id %d", r.style, i, ErrUnknownAbility, id)
		}
	}
	return nil
}

// AverageDamage sums the average base damage of every ability for weaponDamage.
func (r Rotation) AverageDamage(c *Catalog, weaponDamage float64) float64 {
	total := 0.0
	for _, id := range r.abilities {
		total += c.Get(id).Damage(weaponDamage).Average()
	}
	return total
}

// IsValid reports whether the whole rotation can be fired starting now with
// adrenaline in the pool.
//
// Each ability must be off cooldown by the time the abilities before it have
// finished, and every threshold must be reached with at least
// ThresholdAdrenaline projected adrenaline.
//
// Postcondition: If IsValid(c, a) then IsValid(c, a') for every a' > a.
func (r Rotation) IsValid(c *Catalog, adrenaline int) bool {
	projected := adrenaline
	elapsed := 0
	for _, id := range r.abilities {
		a := c.Get(id)
		if c.Cooldown(id) > elapsed {
			return false
		}
		if a.IsThreshold() && projected < ThresholdAdrenaline {
			return false
		}
		projected += a.Adrenaline
		elapsed += a.Duration
	}
	return true
}
