package dice

import "go.uber.org/zap"

// NewLoggedSet wraps every capability of set so that each decision is logged
// at debug level with its inputs and outcome.
//
// Precondition: set must pass Validate; logger must be non-nil.
// Postcondition: Returned Set answers exactly as set does.
func NewLoggedSet(set Set, logger *zap.Logger) Set {
	return Set{
		Damage:   loggedDamage{set.Damage, logger},
		Accuracy: loggedAccuracy{set.Accuracy, logger},
		Interval: loggedInterval{set.Interval, logger},
		Effect:   loggedEffect{set.Effect, logger},
		Familiar: loggedFamiliar{set.Familiar, logger},
		RareDrop: loggedRareDrop{set.RareDrop, logger},
	}
}

type loggedDamage struct {
	next   DamageRoller
	logger *zap.Logger
}

func (l loggedDamage) Damage(min, max float64) float64 {
	v := l.next.Damage(min, max)
	l.logger.Debug("damage roll",
		zap.Float64("min", min),
		zap.Float64("max", max),
		zap.Float64("value", v),
	)
	return v
}

type loggedAccuracy struct {
	next   AccuracyChecker
	logger *zap.Logger
}

func (l loggedAccuracy) Hit(chance float64) bool {
	v := l.next.Hit(chance)
	l.logger.Debug("accuracy check", zap.Float64("chance", chance), zap.Bool("hit", v))
	return v
}

type loggedInterval struct {
	next   IntervalRoller
	logger *zap.Logger
}

func (l loggedInterval) Interval(min, max int) int {
	v := l.next.Interval(min, max)
	l.logger.Debug("interval roll", zap.Int("min", min), zap.Int("max", max), zap.Int("ticks", v))
	return v
}

type loggedEffect struct {
	next   EffectChecker
	logger *zap.Logger
}

func (l loggedEffect) Occurred(probability float64) bool {
	v := l.next.Occurred(probability)
	l.logger.Debug("effect check", zap.Float64("probability", probability), zap.Bool("occurred", v))
	return v
}

type loggedFamiliar struct {
	next   FamiliarDecider
	logger *zap.Logger
}

func (l loggedFamiliar) StyleValue() float64 {
	v := l.next.StyleValue()
	l.logger.Debug("familiar style draw", zap.Float64("value", v))
	return v
}

func (l loggedFamiliar) Hit(chance float64) bool {
	v := l.next.Hit(chance)
	l.logger.Debug("familiar hit check", zap.Float64("chance", chance), zap.Bool("hit", v))
	return v
}

func (l loggedFamiliar) Stupid(chance float64) bool {
	v := l.next.Stupid(chance)
	l.logger.Debug("familiar stupidity check", zap.Float64("chance", chance), zap.Bool("stupid", v))
	return v
}

type loggedRareDrop struct {
	next   RareDropChecker
	logger *zap.Logger
}

func (l loggedRareDrop) RareDrop() bool {
	v := l.next.RareDrop()
	l.logger.Debug("rare drop check", zap.Bool("drop", v))
	return v
}
