package familiar

import (
	"fmt"

	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"

	"github.com/cory-johannsen/demonsim/internal/game/combat"
	"github.com/cory-johannsen/demonsim/internal/scripting"
)

// StyleHook is the Lua global a scripted familiar must define:
//
//	function choose_style(value, scroll) return "melee" end
const StyleHook = "choose_style"

// NewScripted builds a familiar whose style policy is a Lua function.
// Script failures and unknown style names fall back to fallback and are
// logged at warn level.
//
// Precondition: source defines StyleHook; logger must be non-nil.
// Postcondition: Returns a Familiar owning a Lua state (release with Close),
// or an error if the script fails to load or lacks StyleHook.
func NewScripted(stats Stats, source string, instLimit int, fallback combat.Style, logger *zap.Logger) (*Familiar, error) {
	if err := stats.Validate(); err != nil {
		return nil, fmt.Errorf("familiar %q: %w", Scripted, err)
	}
	if !fallback.Valid() {
		return nil, fmt.Errorf("familiar %q: invalid fallback style %v", Scripted, fallback)
	}
	script, err := scripting.Load(string(Scripted), source, instLimit)
	if err != nil {
		return nil, fmt.Errorf("familiar %q: %w", Scripted, err)
	}
	if !script.HasFunction(StyleHook) {
		script.Close()
		return nil, fmt.Errorf("familiar %q: script does not define %s", Scripted, StyleHook)
	}

	choose := func(value float64, scroll bool) combat.Style {
		ret, err := script.Call(StyleHook, lua.LNumber(value), lua.LBool(scroll))
		if err != nil {
			logger.Warn("familiar script failed", zap.Error(err))
			return fallback
		}
		style, err := combat.ParseStyle(lua.LVAsString(ret))
		if err != nil {
			logger.Warn("familiar script returned unknown style", zap.String("style", ret.String()))
			return fallback
		}
		return style
	}
	return &Familiar{Kind: Scripted, Stats: stats, choose: choose, closer: script.Close}, nil
}
