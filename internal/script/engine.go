// Package script runs optional user Lua hooks for triggers and aliases.
//
// A script file may define two functions:
//
//	on_line(line)   -- called for every completed output line
//	on_input(line)  -- called before a typed line is sent; returning a
//	                   string replaces the line, returning false drops it
//
// and may call the builtin send(text) to transmit a line itself.
//
// gopher-lua's LState is not goroutine-safe; the engine must only be
// used from the session loop.
package script

import (
	"fmt"

	lua "github.com/yuin/gopher-lua"
)

// Engine wraps a Lua state with the client's hook surface. The zero
// engine (no script loaded) is inert: every hook is a cheap no-op.
type Engine struct {
	state  *lua.LState
	send   func(string)
	loaded bool
}

// New creates an engine. send is invoked for the Lua send() builtin and
// must not be nil.
func New(send func(string)) *Engine {
	return &Engine{send: send}
}

// Load executes the script file at path, making its hooks active.
func (e *Engine) Load(path string) error {
	L := lua.NewState()
	L.SetGlobal("send", L.NewFunction(func(L *lua.LState) int {
		e.send(L.CheckString(1))
		return 0
	}))

	if err := L.DoFile(path); err != nil {
		L.Close()
		return fmt.Errorf("loading script %s: %w", path, err)
	}

	e.state = L
	e.loaded = true
	return nil
}

// Close releases the Lua state.
func (e *Engine) Close() {
	if e.state != nil {
		e.state.Close()
		e.state = nil
		e.loaded = false
	}
}

// OnLine invokes the on_line hook for one completed output line. Hook
// errors are returned for display as warnings; they never stop the
// session.
func (e *Engine) OnLine(line string) error {
	fn, ok := e.hook("on_line")
	if !ok {
		return nil
	}
	return e.state.CallByParam(lua.P{Fn: fn, NRet: 0, Protect: true}, lua.LString(line))
}

// OnInput invokes the on_input hook for a line the user submitted. It
// returns the (possibly rewritten) line and whether it should be sent.
func (e *Engine) OnInput(line string) (string, bool, error) {
	fn, ok := e.hook("on_input")
	if !ok {
		return line, true, nil
	}

	err := e.state.CallByParam(lua.P{Fn: fn, NRet: 1, Protect: true}, lua.LString(line))
	if err != nil {
		return line, true, err
	}

	ret := e.state.Get(-1)
	e.state.Pop(1)

	switch v := ret.(type) {
	case lua.LString:
		return string(v), true, nil
	case lua.LBool:
		return line, bool(v), nil
	default:
		return line, true, nil
	}
}

// hook looks up a global hook function by name.
func (e *Engine) hook(name string) (*lua.LFunction, bool) {
	if !e.loaded {
		return nil, false
	}
	fn, ok := e.state.GetGlobal(name).(*lua.LFunction)
	return fn, ok
}
