// Package scripting provides a sandboxed GopherLua execution environment for
// user-supplied behaviour scripts. It has no dependency on simulation
// packages; callers pass plain Lua values in and read plain values out.
package scripting

import (
	"context"

	lua "github.com/yuin/gopher-lua"
)

// DefaultInstructionLimit is the maximum number of Lua opcodes allowed per
// call when no explicit limit is configured.
const DefaultInstructionLimit = 100_000

// unsafeGlobals are base-library functions that reach the filesystem, load
// arbitrary chunks, or tamper with the collector.
var unsafeGlobals = []string{"dofile", "loadfile", "load", "loadstring", "collectgarbage", "require", "module"}

// opcodeBudget cancels itself once Done has been polled more than limit
// times. The VM polls Done once per opcode, so the budget is an exact
// instruction count. A budget belongs to one Script call on one goroutine.
type opcodeBudget struct {
	context.Context
	cancel context.CancelFunc
	left   int
}

func (b *opcodeBudget) Done() <-chan struct{} {
	b.left--
	if b.left <= 0 {
		b.cancel()
	}
	return b.Context.Done()
}

// newBudget returns a budget of limit opcodes.
//
// Precondition: limit > 0.
func newBudget(limit int) *opcodeBudget {
	ctx, cancel := context.WithCancel(context.Background())
	return &opcodeBudget{Context: ctx, cancel: cancel, left: limit}
}

// NewSandboxedState creates a GopherLua LState with only the base, table,
// string, and math libraries, and with unsafeGlobals removed. No instruction
// budget is attached; Script installs a fresh one per call.
//
// Postcondition: Returns a non-nil LState. The caller owns it and must Close it.
func NewSandboxedState() *lua.LState {
	L := lua.NewState(lua.Options{SkipOpenLibs: true})
	for _, open := range []lua.LGFunction{lua.OpenBase, lua.OpenTable, lua.OpenString, lua.OpenMath} {
		open(L)
	}
	for _, name := range unsafeGlobals {
		L.SetGlobal(name, lua.LNil)
	}
	return L
}
