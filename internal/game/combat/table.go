package combat

import "fmt"

// Weapon describes the equipped weapon of one combat style.
type Weapon struct {
	DamageType DamageType
	// AbilityDamage is the weapon's base ability damage value.
	AbilityDamage float64
	// Tier is the weapon's accuracy tier.
	Tier float64
}

// StyleRecord is the loadout for one combat style.
type StyleRecord struct {
	Weapon Weapon
	// Basic is fired when a rotation finishes without forcing a prayer switch.
	Basic     AbilityID
	rotations []Rotation
}

// Rotations returns the style's rotations in preference order.
func (s *StyleRecord) Rotations() []Rotation {
	return append([]Rotation(nil), s.rotations...)
}

// PreferredRotation returns the first rotation that IsValid at adrenaline.
//
// Postcondition: Returns (rotation, true) or (zero, false) when every
// rotation is on cooldown or adrenaline-blocked.
func (s *StyleRecord) PreferredRotation(c *Catalog, adrenaline int) (Rotation, bool) {
	for _, r := range s.rotations {
		if r.IsValid(c, adrenaline) {
			return r, true
		}
	}
	return Rotation{}, false
}

// StyleTable holds one StyleRecord per combat style.
type StyleTable struct {
	records [len(Styles)]StyleRecord
}

// NewStyleTable creates a table with no weapons, basics, or rotations.
func NewStyleTable() *StyleTable {
	t := &StyleTable{}
	for i := range t.records {
		t.records[i].Basic = NoAbility
	}
	return t
}

// Record returns the mutable record for s.
//
// Precondition: s.Valid().
func (t *StyleTable) Record(s Style) *StyleRecord {
	return &t.records[s]
}

// SetWeapon equips w for style s.
func (t *StyleTable) SetWeapon(s Style, w Weapon) { t.records[s].Weapon = w }

// SetBasic sets the fallback basic for style s.
func (t *StyleTable) SetBasic(s Style, id AbilityID) { t.records[s].Basic = id }

// AddRotation appends r to its style's preference list.
//
// Precondition: r.Style().Valid().
func (t *StyleTable) AddRotation(r Rotation) {
	rec := &t.records[r.Style()]
	rec.rotations = append(rec.rotations, r)
}

// Validate checks every rotation and basic against c.
//
// Postcondition: Returns an error wrapping ErrUnknownAbility for the first
// reference to an unregistered ability.
func (t *StyleTable) Validate(c *Catalog) error {
	for _, s := range Styles {
		rec := &t.records[s]
		if rec.Basic != NoAbility && !c.Has(rec.Basic) {
			return fmt.Errorf("%s basic: %w: id %d", s, ErrUnknownAbility, rec.Basic)
		}
		for _, r := range rec.rotations {
			if err := r.Validate(c); err != nil {
				return err
			}
		}
	}
	return nil
}

// PreferredRotation returns the preferred valid rotation for style s.
func (t *StyleTable) PreferredRotation(s Style, c *Catalog, adrenaline int) (Rotation, bool) {
	return t.records[s].PreferredRotation(c, adrenaline)
}

// others returns the two styles other than current, in Styles order.
func others(current Style) (Style, Style) {
	var out []Style
	for _, s := range Styles {
		if s != current {
			out = append(out, s)
		}
	}
	return out[0], out[1]
}

// NextPreferredRotation picks a rotation in one of the two styles other than
// current. If both styles offer a rotation, the higher total average damage
// (using each style's own weapon damage) wins; ties go to the first style in
// Styles order.
//
// Postcondition: Returns (zero, false) when neither style has a valid rotation.
func (t *StyleTable) NextPreferredRotation(current Style, c *Catalog, adrenaline int) (Rotation, bool) {
	sa, sb := others(current)
	a, b := &t.records[sa], &t.records[sb]

	x, okX := a.PreferredRotation(c, adrenaline)
	y, okY := b.PreferredRotation(c, adrenaline)

	switch {
	case !okX && !okY:
		return Rotation{}, false
	case !okX:
		return y, true
	case !okY:
		return x, true
	}
	if x.AverageDamage(c, a.Weapon.AbilityDamage) >= y.AverageDamage(c, b.Weapon.AbilityDamage) {
		return x, true
	}
	return y, true
}
