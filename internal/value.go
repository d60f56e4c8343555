package internal

import (
	"fmt"
	"reflect"
	"runtime"
)

// Value is any value a script can hold. Literals evaluate to int32, int64,
// float32, float64, string, or Char; host values are whatever Go values the
// host exposes. nil is both null and the absence of a value.
type Value = interface{}

// Char is the value of a single-quoted character literal.
type Char rune

// String returns the character as a string.
func (c Char) String() string {
	return string(c)
}

// Stop represents the reason for flow control.
type Stop int

// Control flow reasons.
const (
	// NoStop indicates normal execution.
	NoStop Stop = iota
	// ReturnStop indicates that the accompanying value is a return and the
	// innermost statement sequence must exit immediately.
	ReturnStop
)

var stopNames = [...]string{"normal", "return"}

// String returns a string representation of the Stop.
func (s Stop) String() string {
	if s < NoStop || s > ReturnStop {
		return fmt.Sprintf("Stop(%d)", s)
	}
	return stopNames[s]
}

// Callable is any value that scripts can call with an ordered argument list.
// A callable reports ReturnStop when its result is a return that should keep
// unwinding, which only user closures and control-flow builtins do.
type Callable interface {
	Call(env *Env, args []Value) (Value, Stop, error)
}

// An Fn is a statically compiled function which can be called from scripts.
type Fn func(env *Env, args []Value) (Value, Stop, error)

// A Builtin is a host function written against the script calling
// convention. Its Stop passes through call expressions, so builtins that run
// script callbacks can propagate returns.
type Builtin struct {
	Name string
	Fn   Fn
}

// NewBuiltin creates a new Builtin wrapping f. If name is empty, the name of
// the Go function is used.
func NewBuiltin(name string, f Fn) *Builtin {
	if name == "" {
		name = runtime.FuncForPC(reflect.ValueOf(f).Pointer()).Name()
	}
	return &Builtin{Name: name, Fn: f}
}

// Call calls the wrapped function.
func (b *Builtin) Call(env *Env, args []Value) (Value, Stop, error) {
	return b.Fn(env, args)
}

// String returns the builtin's name.
func (b *Builtin) String() string {
	return b.Name
}

// Iterator is a lazily consumed stream of values, used by forEach.
type Iterator interface {
	HasNext() bool
	Next() Value
}

// Mapping is a string-keyed container which the accessor reads and writes by
// direct key lookup instead of by reflection.
type Mapping interface {
	Lookup(key string) (Value, bool)
	Store(key string, v Value) error
}

// Truthy reports whether v counts as true for conditionals. nil and false are
// false; every other value is true.
func Truthy(v Value) bool {
	switch v := v.(type) {
	case nil:
		return false
	case bool:
		return v
	}
	return true
}

// TypeName returns a short name for the type of v for use in messages.
func TypeName(v Value) string {
	switch v := v.(type) {
	case nil:
		return "null"
	case *FunctionLiteral:
		return "closure"
	case *Builtin:
		return "builtin"
	case *BoundMethod:
		return "method"
	case *HostFunc:
		return "function"
	case *TypeValue:
		return "type " + v.String()
	case *Package:
		return "package " + v.Path
	case *Frame:
		return "dict"
	}
	return reflect.TypeOf(v).String()
}
