package combat

// Target defaults.
const (
	DefaultTargetHealth       = 20000.0
	DefaultTargetDefence      = 85.0
	DefaultTargetPrayer       = Melee
	PlayerPressureThreshold   = 3100.0
	FamiliarPressureThreshold = 800.0
	// PressureFloor is the minimum pressure any off-prayer hit adds.
	PressureFloor = 200.0
)

// Target is the hostile entity being fought.
//
// Health may go negative on the killing blow; the remainder is overkill.
type Target struct {
	Health       float64
	MaxHealth    float64
	Prayer       Style
	Weakness     DamageType
	DefenceLevel float64
	// SpawnPrayer is the prayer restored on Reset.
	SpawnPrayer Style
	pressure    [len(Styles)]float64
}

// NewTarget creates a target at full health protecting prayer.
//
// Precondition: health > 0; prayer.Valid().
func NewTarget(health, defenceLevel float64, prayer Style) *Target {
	return &Target{
		Health:       health,
		MaxHealth:    health,
		Prayer:       prayer,
		SpawnPrayer:  prayer,
		Weakness:     NoDamageType,
		DefenceLevel: defenceLevel,
	}
}

// NewDefaultTarget creates a target with the default health, defence and prayer.
func NewDefaultTarget() *Target {
	return NewTarget(DefaultTargetHealth, DefaultTargetDefence, DefaultTargetPrayer)
}

// Pressure returns the accumulated pressure for s.
func (t *Target) Pressure(s Style) float64 {
	if !s.Valid() {
		return 0
	}
	return t.pressure[s]
}

// AddPressure adds max(damage, PressureFloor) to s and returns the new total.
func (t *Target) AddPressure(s Style, damage float64) float64 {
	if !s.Valid() {
		return 0
	}
	t.pressure[s] += max(damage, PressureFloor)
	return t.pressure[s]
}

// ResetPressure zeroes all three counters.
func (t *Target) ResetPressure() {
	t.pressure = [len(Styles)]float64{}
}

// Protects reports whether the target currently blocks style s.
func (t *Target) Protects(s Style) bool { return t.Prayer == s }

// Dead reports whether health has reached zero.
func (t *Target) Dead() bool { return t.Health <= 0 }

// Reset restores health, spawn prayer, and pressure for a fresh encounter.
// Weakness is left for the caller to re-roll.
//
// Postcondition: Health == MaxHealth; Prayer == SpawnPrayer; all pressure == 0.
func (t *Target) Reset() {
	t.Health = t.MaxHealth
	t.Prayer = t.SpawnPrayer
	t.ResetPressure()
}
