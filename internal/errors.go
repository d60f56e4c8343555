package internal

import (
	"errors"
	"fmt"
)

// Pos is a one-based position in a source chunk.
type Pos struct {
	Line, Col int
}

func (p Pos) String() string {
	return fmt.Sprintf("%d:%d", p.Line, p.Col)
}

// ParseError is malformed syntax within one source chunk.
type ParseError struct {
	Pos Pos
	Msg string
	// Incomplete is true when the chunk ended before the construct did, so
	// that more input could complete it.
	Incomplete bool
}

func (err *ParseError) Error() string {
	return fmt.Sprintf("%v: %s", err.Pos, err.Msg)
}

// AccessError is an unknown property, method, or type; an access through a
// null value; or a call that matched no method overload or constructor.
type AccessError struct {
	Msg string
}

func (err *AccessError) Error() string {
	return err.Msg
}

func accessErrorf(format string, args ...interface{}) error {
	return &AccessError{Msg: fmt.Sprintf(format, args...)}
}

// ArityError is a call with the wrong number of arguments.
type ArityError struct {
	Name       string
	Want, Have int
	// Variadic is true when Want is a minimum.
	Variadic bool
}

func (err *ArityError) Error() string {
	if err.Variadic {
		return fmt.Sprintf("%s takes at least %d arguments, got %d", err.Name, err.Want, err.Have)
	}
	return fmt.Sprintf("%s takes %d arguments, got %d", err.Name, err.Want, err.Have)
}

// IterationError is an attempt to iterate over a value that is not iterable.
type IterationError struct {
	Value Value
}

func (err *IterationError) Error() string {
	return fmt.Sprintf("cannot iterate over %s", TypeName(err.Value))
}

// TypeError is a builtin argument of the wrong kind.
type TypeError struct {
	Msg string
}

func (err *TypeError) Error() string {
	return err.Msg
}

func typeErrorf(format string, args ...interface{}) error {
	return &TypeError{Msg: fmt.Sprintf(format, args...)}
}

// HostFault is an unexpected failure inside host code reached through
// interop, such as a host method returning an error or panicking.
type HostFault struct {
	// Category is "host error" for returned errors and "panic" for
	// recovered panics.
	Category string
	Err      error
}

func (err *HostFault) Error() string {
	return err.Err.Error()
}

func (err *HostFault) Unwrap() error {
	return err.Err
}

// IsScriptError reports whether err is a script-level error, as opposed to an
// unexpected host fault.
func IsScriptError(err error) bool {
	var (
		pe *ParseError
		ae *AccessError
		re *ArityError
		ie *IterationError
		te *TypeError
	)
	return errors.As(err, &pe) || errors.As(err, &ae) || errors.As(err, &re) ||
		errors.As(err, &ie) || errors.As(err, &te)
}

// ErrorKind names the category of err as shown to console users.
func ErrorKind(err error) string {
	var (
		pe *ParseError
		ae *AccessError
		re *ArityError
		ie *IterationError
		te *TypeError
		hf *HostFault
	)
	switch {
	case errors.As(err, &pe):
		return "ParseError"
	case errors.As(err, &ae):
		return "AccessError"
	case errors.As(err, &re):
		return "ArityError"
	case errors.As(err, &ie):
		return "IterationError"
	case errors.As(err, &te):
		return "TypeError"
	case errors.As(err, &hf):
		return hf.Category
	}
	return "error"
}
