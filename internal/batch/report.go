package batch

import (
	"fmt"
	"io"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/cory-johannsen/demonsim/internal/game/combat"
)

// WriteReport prints the human-readable batch report. Large numbers are
// grouped with thousands separators.
func WriteReport(w io.Writer, b *Batch, perRun bool) error {
	p := message.NewPrinter(language.English)
	s := b.Summary
	lines := []string{
		p.Sprintf("%d run(s) of demon slaying averaged...", s.Runs),
		p.Sprintf("... %.2f kills per run (p50 %.0f, p90 %.0f, stddev %.2f)", s.AvgKills, s.Kills.P50, s.Kills.P90, s.Kills.StdDev),
		p.Sprintf("... %.0f damage per run", s.AvgDamage),
		p.Sprintf("... %.0f overkill damage per run", s.AvgOverkill),
		p.Sprintf("... %.0f health possibly restored by Soul Split", s.AvgHealing),
		p.Sprintf("... %.0f attacks connected, while %.0f were off the mark", s.AvgHits, s.AvgMisses),
		p.Sprintf("... %d max kills in a run, %d min kills", s.MaxKills, s.MinKills),
		"",
	}
	if s.HasKills() {
		lines = append(lines,
			p.Sprintf("The fastest kill took %d ticks (%.1f seconds).", s.FastestKill, float64(s.FastestKill)*combat.TickSeconds),
			p.Sprintf("The slowest kill took %d ticks (%.1f seconds).", s.SlowestKill, float64(s.SlowestKill)*combat.TickSeconds),
		)
	} else {
		lines = append(lines, "No demon was slain.")
	}
	if perRun {
		for _, run := range b.Runs {
			r := run.Result
			lines = append(lines, "",
				fmt.Sprintf("Run %04d (seed %d) resulted in %d rare drop(s) and:", run.Index, run.Seed, r.RareDrops),
				p.Sprintf("\t- %d kill(s)", r.Kills),
				p.Sprintf("\t- %.0f damage dealt and %.0f overkill", r.TotalDamage, r.OverkillDamage),
				p.Sprintf("\t- %.0f health restored by Soul Split", r.HealingPotential),
				p.Sprintf("\t- %d attack(s) landed, while %d missed", r.Hits, r.Misses),
				p.Sprintf("\t- %d inefficient tick(s)", r.Inefficiency),
			)
		}
	}
	lines = append(lines, "", p.Sprintf("Rare drops across every run: %d.", s.RareDrops))

	for _, l := range lines {
		if _, err := fmt.Fprintln(w, l); err != nil {
			return fmt.Errorf("writing report: %w", err)
		}
	}
	return nil
}
