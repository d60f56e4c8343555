/*
Package cscript implements a small scripting language for in-game debug
consoles.

The language has no operators and no statements other than expressions. Every
statement is an expression followed by a semicolon, and every expression is a
literal, a variable or property path, an assignment, a call, a function
literal, or a type resolution:

	greeting = "hello";
	print(greeting);
	square = (x) { return(mul(x, x)); };
	square(7);
	sb = .strings.Builder();
	sb.writeString("abc");
	sb.len();

Literals are integers (int32, or int64 with an l suffix), floating point
numbers (float32, or float64 with a d suffix), double-quoted strings, and
single-quoted characters. Strings have no escapes.

A dotted path like player.inventory.count reads the variable player and then
each property in turn. Properties are found on host values by reflection:
mapping keys, struct fields (exported or not), methods, and nested types.
Script names match Go names exactly or with the first letter upper-cased, so
sb.len() calls the Len method. Reading a property of null is an error.

A leading dot resolves a name against the host types an embedder registered,
using the same tables yaegi generates for its symbol exports. Calling a type
constructs a value, using the package's New functions first and then a zero
value. Calling a method chooses the first overload whose parameters accept
the arguments.

Function literals evaluate to closures. A closure captures nothing. Each call
gets a fresh scope holding only its parameters and the variables it assigns;
names not found there are looked up in the global scope, never in the scope
of the caller. Assignment inside a call creates a local, and the global
variable globals can be used to assign globals explicitly. A closure produces
a value only through return(value); falling off the end produces none.

Control flow is provided by builtins taking closures: ifThen, ifElse,
forEach, whileLoop, and tryCatch. A return inside one of their callbacks
leaves the closure that called the builtin, not only the callback.

To embed the language, create a Shell with a Console, register host types in
its Env, and call Run or Eval. Core extensions installed by importing
github.com/zephyrtronium/cscript/coreext provide arithmetic, ranges, dates,
text encodings, and the Go standard library.
*/
package cscript

import (
	"github.com/sirupsen/logrus"
	"github.com/traefik/yaegi/interp"

	"github.com/zephyrtronium/cscript/internal"
)

// Value is any value a script can hold.
type Value = internal.Value

// Char is the value of a single-quoted character literal.
type Char = internal.Char

// Stop represents the reason for flow control.
type Stop = internal.Stop

// Control flow reasons.
const (
	NoStop     = internal.NoStop
	ReturnStop = internal.ReturnStop
)

// Env is the variable environment of one Shell.
type Env = internal.Env

// A Frame is a string-keyed scope.
type Frame = internal.Frame

// Bindings is a set of names and values to install at once.
type Bindings = internal.Bindings

// Callable is any value that scripts can call.
type Callable = internal.Callable

// An Fn is a statically compiled function which can be called from scripts.
type Fn = internal.Fn

// A Builtin is a host function written against the script calling convention.
type Builtin = internal.Builtin

// Iterator is a lazily consumed stream of values, used by forEach.
type Iterator = internal.Iterator

// Mapping is a string-keyed container accessed by key lookup.
type Mapping = internal.Mapping

// Node is a parsed expression.
type Node = internal.Node

// Registry holds the host symbols that type resolution can name.
type Registry = internal.Registry

// TypeValue is a host type used as a value.
type TypeValue = internal.TypeValue

// Shell couples an Env with a Console as a read-eval-print loop.
type Shell = internal.Shell

// Console is the device a Shell reads chunks from and prints to.
type Console = internal.Console

// Error types.
type (
	ParseError     = internal.ParseError
	AccessError    = internal.AccessError
	ArityError     = internal.ArityError
	IterationError = internal.IterationError
	TypeError      = internal.TypeError
	HostFault      = internal.HostFault
)

// Exports is the shape of host symbol tables passed to Registry.Use.
type Exports = interp.Exports

// NewEnv creates an Env with the core builtins and every registered core
// extension installed.
func NewEnv() *Env {
	return internal.NewEnv()
}

// NewShell creates a Shell with a fresh Env. If log is nil, the standard
// logrus logger is used.
func NewShell(c Console, log logrus.FieldLogger) *Shell {
	return internal.NewShell(c, log)
}

// NewBuiltin creates a new Builtin wrapping f.
func NewBuiltin(name string, f Fn) *Builtin {
	return internal.NewBuiltin(name, f)
}

// Parse parses a source chunk into its statements.
func Parse(src string) ([]Node, error) {
	return internal.Parse(src)
}

// Display renders v on one line the way consoles print results.
func Display(v Value) string {
	return internal.Display(v)
}

// IsScriptError reports whether err is a script-level error.
func IsScriptError(err error) bool {
	return internal.IsScriptError(err)
}

// ErrorKind names the category of err as shown to console users.
func ErrorKind(err error) string {
	return internal.ErrorKind(err)
}
