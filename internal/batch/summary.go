package batch

import (
	"math"
	"sort"

	"github.com/cory-johannsen/demonsim/internal/game/sim"
)

// Stats summarizes an integer sample.
type Stats struct {
	Mean   float64 `json:"mean"`
	StdDev float64 `json:"stddev"`
	P50    float64 `json:"p50"`
	P90    float64 `json:"p90"`
	P99    float64 `json:"p99"`
}

// calcStats computes mean, population standard deviation, and interpolated percentiles.
func calcStats(xs []int) Stats {
	n := len(xs)
	if n == 0 {
		return Stats{}
	}
	var sum float64
	for _, v := range xs {
		sum += float64(v)
	}
	mean := sum / float64(n)

	var acc float64
	for _, v := range xs {
		d := float64(v) - mean
		acc += d * d
	}

	sorted := append([]int(nil), xs...)
	sort.Ints(sorted)
	percentile := func(p float64) float64 {
		pos := p * float64(n-1)
		i := int(math.Floor(pos))
		if i+1 >= n {
			return float64(sorted[n-1])
		}
		f := pos - float64(i)
		return float64(sorted[i])*(1-f) + float64(sorted[i+1])*f
	}

	return Stats{
		Mean:   mean,
		StdDev: math.Sqrt(acc / float64(n)),
		P50:    percentile(0.50),
		P90:    percentile(0.90),
		P99:    percentile(0.99),
	}
}

// Summary aggregates a batch of results.
type Summary struct {
	Runs int `json:"runs"`

	AvgKills        float64 `json:"avg_kills"`
	AvgDamage       float64 `json:"avg_damage"`
	AvgOverkill     float64 `json:"avg_overkill"`
	AvgHealing      float64 `json:"avg_healing"`
	AvgHits         float64 `json:"avg_hits"`
	AvgMisses       float64 `json:"avg_misses"`
	AvgInefficiency float64 `json:"avg_inefficiency"`

	MinKills int `json:"min_kills"`
	MaxKills int `json:"max_kills"`
	// FastestKill and SlowestKill span every run; they keep the
	// math.MaxInt / math.MinInt sentinels when no run killed anything.
	FastestKill int `json:"fastest_kill"`
	SlowestKill int `json:"slowest_kill"`
	RareDrops   int `json:"rare_drops"`

	Kills Stats `json:"kills"`
}

// Summarize aggregates results.
//
// Postcondition: A zero-length input yields a Summary with Runs == 0.
func Summarize(results []sim.Result) Summary {
	s := Summary{
		Runs:        len(results),
		MinKills:    math.MaxInt,
		MaxKills:    math.MinInt,
		FastestKill: math.MaxInt,
		SlowestKill: math.MinInt,
	}
	if len(results) == 0 {
		s.MinKills, s.MaxKills = 0, 0
		return s
	}
	kills := make([]int, len(results))
	for i, r := range results {
		kills[i] = r.Kills
		s.AvgKills += float64(r.Kills)
		s.AvgDamage += r.TotalDamage
		s.AvgOverkill += r.OverkillDamage
		s.AvgHealing += r.HealingPotential
		s.AvgHits += float64(r.Hits)
		s.AvgMisses += float64(r.Misses)
		s.AvgInefficiency += float64(r.Inefficiency)
		s.RareDrops += r.RareDrops
		s.MinKills = min(s.MinKills, r.Kills)
		s.MaxKills = max(s.MaxKills, r.Kills)
		s.FastestKill = min(s.FastestKill, r.FastestKill)
		s.SlowestKill = max(s.SlowestKill, r.SlowestKill)
	}
	n := float64(len(results))
	s.AvgKills /= n
	s.AvgDamage /= n
	s.AvgOverkill /= n
	s.AvgHealing /= n
	s.AvgHits /= n
	s.AvgMisses /= n
	s.AvgInefficiency /= n
	s.Kills = calcStats(kills)
	return s
}

// HasKills reports whether any run recorded a kill.
func (s Summary) HasKills() bool { return s.FastestKill != math.MaxInt }
