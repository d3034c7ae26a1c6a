// Package sim runs the tick-driven fight between a player, an optional
// familiar, and an endless queue of demons.
package sim

import (
	"fmt"
	"math"

	"go.uber.org/zap"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/cory-johannsen/demonsim/internal/game/combat"
	"github.com/cory-johannsen/demonsim/internal/game/dice"
	"github.com/cory-johannsen/demonsim/internal/game/familiar"
)

// Engine owns every piece of mutable state of one run.
//
// An Engine is not safe for concurrent use. Parallel runs each build their own.
type Engine struct {
	catalog  *combat.Catalog
	styles   *combat.StyleTable
	dice     dice.Set
	opts     Options
	logger   *zap.Logger
	printer  *message.Printer
	familiar *familiar.Familiar

	target *combat.Target
	player *combat.Player

	state       State
	gear        combat.Style
	nextGear    combat.Style
	rotation    combat.Rotation
	hasRotation bool
	// index is the next step of rotation to fire.
	index int

	globalCooldown int
	idleCooldown   int
	tick           int
	demonAge       int

	summoningTicks   int
	familiarCooldown int
	scrollCooldown   int
	scrollInterval   int
	stupid           bool

	result  Result
	started bool
}

// NewEngine validates the configuration and builds an engine ready to Start.
//
// Precondition: catalog and styles must be non-nil; opts should be derived from DefaultOptions.
// Postcondition: Returns an error wrapping combat.ErrUnknownAbility when any
// rotation, basic, or the sacrifice references an unregistered ability.
func NewEngine(catalog *combat.Catalog, styles *combat.StyleTable, set dice.Set, opts Options, logger *zap.Logger) (*Engine, error) {
	if catalog == nil || styles == nil {
		return nil, fmt.Errorf("sim: catalog and style table are required")
	}
	if err := set.Validate(); err != nil {
		return nil, fmt.Errorf("sim: %w", err)
	}
	opts = opts.withDefaults()
	if err := opts.Validate(); err != nil {
		return nil, fmt.Errorf("sim: invalid options: %w", err)
	}
	if err := styles.Validate(catalog); err != nil {
		return nil, fmt.Errorf("sim: %w", err)
	}
	if opts.Sacrifice != nil && !catalog.Has(opts.Sacrifice.Ability) {
		return nil, fmt.Errorf("sim: sacrifice: %w: id %d", combat.ErrUnknownAbility, opts.Sacrifice.Ability)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	e := &Engine{
		catalog:  catalog,
		styles:   styles,
		dice:     set,
		opts:     opts,
		logger:   logger,
		printer:  message.NewPrinter(language.English),
		familiar: opts.Familiar,
	}
	if e.familiar != nil && opts.ScrollSeconds > 0 {
		e.scrollInterval = int(opts.ScrollSeconds / combat.TickSeconds)
	}
	e.reset()
	return e, nil
}

// reset puts every piece of run state back to its pre-Start value.
func (e *Engine) reset() {
	e.catalog.Reset()
	e.target = combat.NewTarget(e.opts.TargetHealth, e.opts.TargetDefence, e.opts.TargetPrayer)
	e.player = combat.NewPlayer()
	e.state = StateIdling
	e.gear = e.opts.DefaultStyle
	e.nextGear = e.opts.DefaultStyle
	e.rotation, e.hasRotation, e.index = combat.Rotation{}, false, 0
	e.globalCooldown, e.idleCooldown = 0, 0
	e.tick, e.demonAge = 0, 0
	e.summoningTicks, e.familiarCooldown, e.scrollCooldown = 0, 0, 0
	e.stupid = false
	e.result = newResult()
	e.started = false
}

// Start prepares a fresh run: default gear, first rotation, first weakness.
// Calling Start again discards all progress.
func (e *Engine) Start() {
	e.reset()
	e.started = true
	e.nextRotation()
	if e.familiar != nil {
		e.familiarCooldown = e.familiar.AttackInterval
	}
	e.rollWeakness()
}

// Tick advances the run by exactly one tick.
// Order: ability cooldowns, familiar, then player.
func (e *Engine) Tick() {
	if !e.started {
		e.Start()
	}
	e.demonAge++
	e.tick++
	e.result.Ticks++

	e.catalog.Advance()
	e.updateFamiliar()
	e.updatePlayer()
}

// Simulate runs a fresh run for the configured number of ticks.
//
// Postcondition: Result.Ticks == opts.Ticks.
func (e *Engine) Simulate() Result {
	e.Start()
	for range e.opts.Ticks {
		e.Tick()
	}
	return e.Result()
}

// Result returns a copy of the statistics so far.
func (e *Engine) Result() Result {
	r := e.result
	r.Events = append([]string(nil), e.result.Events...)
	if !e.opts.LogEvents {
		r.Events = nil
	}
	return r
}

// Close releases resources held by the familiar's style policy.
func (e *Engine) Close() {
	if e.familiar != nil {
		e.familiar.Close()
	}
}

// State returns the player's current state.
func (e *Engine) State() State { return e.state }

// Gear returns the currently equipped style.
func (e *Engine) Gear() combat.Style { return e.gear }

// Target exposes the live target.
func (e *Engine) Target() *combat.Target { return e.target }

// Player exposes the live player resources.
func (e *Engine) Player() *combat.Player { return e.player }

// Options returns the effective options after defaults.
func (e *Engine) Options() Options { return e.opts }

// event appends one line to the trace when tracing is on.
func (e *Engine) event(format string, args ...any) {
	if !e.opts.LogEvents {
		return
	}
	msg := e.printer.Sprintf(format, args...)
	if e.opts.LogTicks {
		msg = fmt.Sprintf("[%d]: %s", e.tick, msg)
	}
	e.result.Events = append(e.result.Events, msg)
}

func (e *Engine) rollWeakness() {
	if e.dice.Effect.Occurred(0.5) {
		e.target.Weakness = e.opts.Weaknesses[0]
	} else {
		e.target.Weakness = e.opts.Weaknesses[1]
	}
}

// nextDemon records the kill duration and spawns a fresh target.
func (e *Engine) nextDemon() {
	e.event("The demon was slain in %d ticks (%.1f seconds)!", e.demonAge, float64(e.demonAge)*combat.TickSeconds)
	e.logger.Debug("demon slain",
		zap.Int("tick", e.tick),
		zap.Int("age", e.demonAge),
		zap.Int("kills", e.result.Kills),
	)

	e.target.Reset()
	e.rollWeakness()
	e.result.FastestKill = min(e.result.FastestKill, e.demonAge)
	e.result.SlowestKill = max(e.result.SlowestKill, e.demonAge)
	e.demonAge = 0

	if e.familiar != nil {
		e.stupid = e.dice.Familiar.Stupid(e.familiar.StupidChance)
		if e.stupid {
			e.event("The familiar is loafing around!")
		} else {
			e.event("The familiar is ready for the next demon.")
		}
	}

	e.switchGear(e.opts.DefaultStyle, true)

	// Swapping gear and walking to the next demon happen together; the longer one wins.
	gear := e.dice.Interval.Interval(e.opts.GearSwitch.Min, e.opts.GearSwitch.Max)
	walk := e.dice.Interval.Interval(e.opts.Idle.Min, e.opts.Idle.Max)
	idle := max(gear, walk)
	e.state = StateIdling
	e.idleCooldown = idle
	e.event("Idling for %d ticks (%.1f seconds).", idle, float64(idle)*combat.TickSeconds)
}

// damageTarget applies one landed hit of style.
//
// Precondition: dmg >= 0.
// Postcondition: Blocked hits (style == prayer) change nothing. Otherwise
// pressure, health, and TotalDamage advance, and a kill or a prayer switch
// is resolved.
func (e *Engine) damageTarget(dmg float64, style combat.Style, fromFamiliar, delayed bool) {
	dmg = math.Floor(dmg)
	t := e.target
	if t.Protects(style) {
		return
	}

	pressure := t.AddPressure(style, dmg)
	threshold := combat.PlayerPressureThreshold
	if fromFamiliar {
		threshold = combat.FamiliarPressureThreshold
	}
	switched := false
	if !delayed && pressure >= threshold {
		t.Prayer = style
		switched = true
	}

	t.Health -= dmg
	e.result.TotalDamage += dmg

	if t.Dead() {
		e.result.Kills++
		if e.dice.RareDrop.RareDrop() {
			e.result.RareDrops++
			e.event("A golden beam shines over one of your items.")
		}
		e.result.OverkillDamage += math.Abs(t.Health)
		e.nextDemon()
		return
	}
	if !switched {
		return
	}

	t.ResetPressure()
	e.rollWeakness()
	e.event("The demon switched to protect from %s after taking %.0f total damage from that style!", style, pressure)
	e.logger.Debug("prayer switch",
		zap.Int("tick", e.tick),
		zap.Stringer("prayer", style),
		zap.Bool("familiar", fromFamiliar),
	)

	// A player between rotations notices the switch at once. Mid-rotation, or
	// after a familiar hit, the swap waits for the rotation to finish.
	if (!fromFamiliar && e.index == e.rotation.Len()) || e.index == 0 {
		e.swapGear()
	}
}
