// Package familiar defines the helper units that fight alongside the player.
//
// Every familiar is the same Familiar struct; what varies between kinds is
// their stats and the style policy picked at construction time.
package familiar

import (
	"errors"
	"fmt"

	"github.com/cory-johannsen/demonsim/internal/game/combat"
)

// ErrUnknownKind is returned when a familiar kind is not in the catalog.
var ErrUnknownKind = errors.New("unknown familiar kind")

// Kind tags a familiar variant.
type Kind string

const (
	IronTitan  Kind = "iron_titan"
	SteelTitan Kind = "steel_titan"
	// StevTitan is a steel titan positioned so that it only ever melees.
	StevTitan Kind = "stev_titan"
	Scripted  Kind = "scripted"
)

// Stats are the per-kind constants of a familiar.
type Stats struct {
	// AttackInterval is the number of ticks between attacks.
	AttackInterval int `yaml:"attack_interval"`
	// ScrollCost is the summoning cost of an empowered attack.
	ScrollCost int `yaml:"scroll_cost"`
	// ScrollHits is the number of hits an empowered attack performs.
	ScrollHits int `yaml:"scroll_hits"`
	// HitChance is the chance each hit lands.
	HitChance float64 `yaml:"hit_chance"`
	// StupidChance is the chance the familiar contributes nothing to an encounter.
	StupidChance float64 `yaml:"stupid_chance"`
	// MaxHit caps a single hit.
	MaxHit float64 `yaml:"max_hit"`
}

// Validate checks the stat invariants.
func (s Stats) Validate() error {
	switch {
	case s.AttackInterval < 1:
		return fmt.Errorf("familiar attack_interval must be >= 1, got %d", s.AttackInterval)
	case s.ScrollCost < 0:
		return fmt.Errorf("familiar scroll_cost must be >= 0, got %d", s.ScrollCost)
	case s.ScrollHits < 1:
		return fmt.Errorf("familiar scroll_hits must be >= 1, got %d", s.ScrollHits)
	case s.HitChance < 0 || s.HitChance > 1:
		return fmt.Errorf("familiar hit_chance must be in [0, 1], got %v", s.HitChance)
	case s.StupidChance < 0 || s.StupidChance > 1:
		return fmt.Errorf("familiar stupid_chance must be in [0, 1], got %v", s.StupidChance)
	case s.MaxHit < 1:
		return fmt.Errorf("familiar max_hit must be >= 1, got %v", s.MaxHit)
	}
	return nil
}

// StyleFunc maps a uniform draw in [0, 1) and the empowered flag to an attack style.
// A draw of 0 should map to the familiar's favourite style.
type StyleFunc func(value float64, scroll bool) combat.Style

// Familiar is one configured helper unit.
type Familiar struct {
	Kind Kind
	Stats
	choose StyleFunc
	closer func()
}

// New builds a familiar with an explicit style policy.
//
// Precondition: choose must be non-nil.
// Postcondition: Returns a Familiar or a Stats validation error.
func New(kind Kind, stats Stats, choose StyleFunc) (*Familiar, error) {
	if choose == nil {
		return nil, fmt.Errorf("familiar %q: nil style policy", kind)
	}
	if err := stats.Validate(); err != nil {
		return nil, fmt.Errorf("familiar %q: %w", kind, err)
	}
	return &Familiar{Kind: kind, Stats: stats, choose: choose}, nil
}

// Style returns the attack style for a draw.
func (f *Familiar) Style(value float64, scroll bool) combat.Style {
	return f.choose(value, scroll)
}

// Close releases any resources held by the style policy.
func (f *Familiar) Close() {
	if f.closer != nil {
		f.closer()
	}
}

var builtins = map[Kind]func() *Familiar{
	IronTitan:  NewIronTitan,
	SteelTitan: NewSteelTitan,
	StevTitan:  NewStevTitan,
}

// ByKind returns a fresh built-in familiar.
//
// Postcondition: Returns an error wrapping ErrUnknownKind for Scripted or any
// unregistered kind.
func ByKind(kind Kind) (*Familiar, error) {
	ctor, ok := builtins[kind]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownKind, kind)
	}
	return ctor(), nil
}

// NewIronTitan returns an iron titan: mostly melee, occasionally magic, and
// prone to loafing around.
func NewIronTitan() *Familiar {
	return &Familiar{
		Kind: IronTitan,
		Stats: Stats{
			AttackInterval: 8,
			ScrollCost:     12,
			ScrollHits:     3,
			HitChance:      0.5,
			StupidChance:   0.33,
			MaxHit:         1200,
		},
		choose: func(value float64, scroll bool) combat.Style {
			if scroll || value < 0.9 {
				return combat.Melee
			}
			return combat.Magic
		},
	}
}

// NewSteelTitan returns a steel titan that favours range.
func NewSteelTitan() *Familiar {
	return &Familiar{
		Kind:  SteelTitan,
		Stats: steelStats(0.1),
		choose: func(value float64, scroll bool) combat.Style {
			switch {
			case value < 0.6:
				return combat.Range
			case scroll || value < 0.9:
				return combat.Melee
			default:
				return combat.Magic
			}
		},
	}
}

// NewStevTitan returns a steel titan placed so that it can only melee.
func NewStevTitan() *Familiar {
	return &Familiar{
		Kind:   StevTitan,
		Stats:  steelStats(0.5),
		choose: func(float64, bool) combat.Style { return combat.Melee },
	}
}

func steelStats(stupid float64) Stats {
	return Stats{
		AttackInterval: 8,
		ScrollCost:     18,
		ScrollHits:     4,
		HitChance:      0.75,
		StupidChance:   stupid,
		MaxHit:         1800,
	}
}
