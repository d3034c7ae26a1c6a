package scripting

import (
	"context"
	"fmt"
	"strings"

	lua "github.com/yuin/gopher-lua"
)

// Script is a loaded chunk living in its own sandboxed state.
//
// A Script is not safe for concurrent use; every simulation run loads its own.
type Script struct {
	L         *lua.LState
	instLimit int
}

// Load compiles and runs source in a fresh sandbox so its global functions
// become callable.
//
// Precondition: instLimit >= 0; 0 uses DefaultInstructionLimit.
// Postcondition: Returns a ready Script or an error describing the load failure.
func Load(name, source string, instLimit int) (*Script, error) {
	if instLimit <= 0 {
		instLimit = DefaultInstructionLimit
	}
	s := &Script{L: NewSandboxedState(), instLimit: instLimit}
	cancel := s.arm()
	defer cancel()
	fn, err := s.L.Load(strings.NewReader(source), name)
	if err != nil {
		s.L.Close()
		return nil, fmt.Errorf("scripting: compiling %q: %w", name, err)
	}
	s.L.Push(fn)
	if err := s.L.PCall(0, lua.MultRet, nil); err != nil {
		s.L.Close()
		return nil, fmt.Errorf("scripting: running %q: %w", name, err)
	}
	return s, nil
}

// arm installs a fresh instruction budget for the next call.
func (s *Script) arm() context.CancelFunc {
	b := newBudget(s.instLimit)
	s.L.SetContext(b)
	return b.cancel
}

// HasFunction reports whether fn is a global Lua function.
func (s *Script) HasFunction(fn string) bool {
	return s.L.GetGlobal(fn).Type() == lua.LTFunction
}

// Call invokes the global function fn with args and returns its first result.
// Each call gets its own instruction budget.
//
// Postcondition: Returns (LNil, error) if fn is undefined, errors, or
// exceeds the instruction limit.
func (s *Script) Call(fn string, args ...lua.LValue) (lua.LValue, error) {
	f := s.L.GetGlobal(fn)
	if f.Type() != lua.LTFunction {
		return lua.LNil, fmt.Errorf("scripting: %q is not a function", fn)
	}
	cancel := s.arm()
	defer cancel()
	if err := s.L.CallByParam(lua.P{Fn: f, NRet: 1, Protect: true}, args...); err != nil {
		return lua.LNil, fmt.Errorf("scripting: calling %q: %w", fn, err)
	}
	ret := s.L.Get(-1)
	s.L.Pop(1)
	return ret, nil
}

// Close releases the Lua state.
func (s *Script) Close() { s.L.Close() }
