package sim

import (
	"math"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/cory-johannsen/demonsim/internal/game/combat"
)

// Result is the statistics of one finished run.
type Result struct {
	Ticks int `json:"ticks"`

	TotalDamage    float64 `json:"total_damage"`
	OverkillDamage float64 `json:"overkill_damage"`
	// HealingPotential is the healing a soul-split style effect would have
	// provided over the run. It never touches a health pool.
	HealingPotential float64 `json:"healing_potential"`

	Hits   int `json:"hits"`
	Misses int `json:"misses"`
	Kills  int `json:"kills"`

	// FastestKill is math.MaxInt and SlowestKill math.MinInt until the first kill.
	FastestKill int `json:"fastest_kill"`
	SlowestKill int `json:"slowest_kill"`

	RareDrops    int `json:"rare_drops"`
	Inefficiency int `json:"inefficiency"`

	Events []string `json:"events,omitempty"`
}

func newResult() Result {
	return Result{FastestKill: math.MaxInt, SlowestKill: math.MinInt}
}

// HasKills reports whether any kill was recorded.
func (r Result) HasKills() bool { return r.Kills > 0 }

// Accuracy returns the fraction of player attacks that landed.
func (r Result) Accuracy() float64 {
	if r.Hits+r.Misses == 0 {
		return 0
	}
	return float64(r.Hits) / float64(r.Hits+r.Misses)
}

// KillsPerHour scales Kills to one hour of ticks.
func (r Result) KillsPerHour() float64 {
	if r.Ticks == 0 {
		return 0
	}
	return float64(r.Kills) * DefaultTicks / float64(r.Ticks)
}

// Summary renders the result as a stable, human-readable block.
// Two runs with equal statistics yield byte-identical summaries.
func (r Result) Summary() string {
	p := message.NewPrinter(language.English)
	fastest, slowest := "n/a", "n/a"
	if r.HasKills() {
		fastest = p.Sprintf("%d ticks (%.1fs)", r.FastestKill, float64(r.FastestKill)*combat.TickSeconds)
		slowest = p.Sprintf("%d ticks (%.1fs)", r.SlowestKill, float64(r.SlowestKill)*combat.TickSeconds)
	}
	return p.Sprintf("ticks: %d\nkills: %d\ntotal damage: %.0f\noverkill damage: %.0f\nhealing potential: %.0f\nhits: %d\nmisses: %d\nfastest kill: %s\nslowest kill: %s\nrare drops: %d\ninefficiency: %d\n",
		r.Ticks, r.Kills, r.TotalDamage, r.OverkillDamage, r.HealingPotential,
		r.Hits, r.Misses, fastest, slowest, r.RareDrops, r.Inefficiency)
}
