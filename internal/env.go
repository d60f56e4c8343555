package internal

import (
	"sort"
	"sync/atomic"

	"github.com/sirupsen/logrus"
)

// A Frame is a string-keyed scope. The global scope is a Frame, each active
// closure call owns one, and dict() produces them as plain records.
type Frame struct {
	vars map[string]Value
}

// NewFrame creates an empty Frame.
func NewFrame() *Frame {
	return &Frame{vars: make(map[string]Value)}
}

// Lookup returns the value bound to key.
func (f *Frame) Lookup(key string) (Value, bool) {
	v, ok := f.vars[key]
	return v, ok
}

// Store binds key to v.
func (f *Frame) Store(key string, v Value) error {
	f.vars[key] = v
	return nil
}

// Delete removes key.
func (f *Frame) Delete(key string) {
	delete(f.vars, key)
}

// Len returns the number of bindings.
func (f *Frame) Len() int {
	return len(f.vars)
}

// Keys returns the bound names in sorted order.
func (f *Frame) Keys() []string {
	keys := make([]string, 0, len(f.vars))
	for k := range f.vars {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Bindings is a set of names and values to install at once.
type Bindings map[string]Value

// Env is the variable environment of one Shell: the global scope plus the
// stack of frames of active closure calls.
//
// With no active call, names resolve in the global scope. During a call,
// assignments go to the innermost frame, and lookups check only the innermost
// frame and then the global scope; frames of outer calls are never visible.
type Env struct {
	globals *Frame
	frames  []*Frame

	// hostCalls counts host function calls in progress. Script callbacks
	// handed to host code may only run while it is nonzero.
	hostCalls atomic.Int32

	// Types is the registry of host symbols resolvable by dotted name.
	Types *Registry
	// Log receives faults that have no script to report to, such as errors
	// in callbacks that host code runs after the call that received them.
	Log logrus.FieldLogger
}

// NewEnv creates an Env with the core builtins and every registered core
// extension installed.
func NewEnv() *Env {
	haveEnv = true
	env := &Env{
		globals: NewFrame(),
		Types:   NewRegistry(),
		Log:     logrus.StandardLogger(),
	}
	env.initCore()
	for _, ext := range coreExt {
		ext(env)
	}
	return env
}

// Register registers a core extension, which is run on every new Env after the
// core builtins are installed. Extensions typically call SetGlobals and
// Types.Use. Register must be called before any Env is created, typically from
// an init function.
func Register(f func(*Env)) {
	if haveEnv {
		panic("cscript/internal: Register must be called before any Env is created")
	}
	coreExt = append(coreExt, f)
}

// coreExt is a list of core extensions that have been registered.
var coreExt = make([]func(*Env), 0, 8)

// haveEnv becomes true once NewEnv has been called.
var haveEnv = false

// Lookup resolves a name in the current scope.
func (env *Env) Lookup(name string) (Value, bool) {
	if n := len(env.frames); n > 0 {
		if v, ok := env.frames[n-1].Lookup(name); ok {
			return v, true
		}
	}
	return env.globals.Lookup(name)
}

// Set binds a name in the current scope: the innermost frame during a call,
// otherwise the global scope.
func (env *Env) Set(name string, v Value) {
	if n := len(env.frames); n > 0 {
		env.frames[n-1].Store(name, v)
		return
	}
	env.globals.Store(name, v)
}

// Global returns the value of a global.
func (env *Env) Global(name string) (Value, bool) {
	return env.globals.Lookup(name)
}

// SetGlobal binds a global regardless of the current scope.
func (env *Env) SetGlobal(name string, v Value) {
	env.globals.Store(name, v)
}

// SetGlobals binds several globals.
func (env *Env) SetGlobals(b Bindings) {
	for k, v := range b {
		env.globals.Store(k, v)
	}
}

// Globals returns the global scope.
func (env *Env) Globals() *Frame {
	return env.globals
}

// Depth returns the number of active call frames.
func (env *Env) Depth() int {
	return len(env.frames)
}

// push makes f the innermost frame. Every push must be paired with a deferred
// pop.
func (env *Env) push(f *Frame) {
	env.frames = append(env.frames, f)
}

// pop removes the innermost frame.
func (env *Env) pop() {
	n := len(env.frames) - 1
	env.frames[n] = nil
	env.frames = env.frames[:n]
}
