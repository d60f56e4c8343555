// Package testutils provides utilities for testing scripts in Go.
package testutils

import (
	"errors"
	"reflect"
	"strings"
	"sync"
	"testing"

	"github.com/zephyrtronium/cscript/internal"
)

// testEnv is the Env used for all tests.
var testEnv *internal.Env

var testEnvInit sync.Once

// TestingEnv returns an Env for testing scripts. The Env is shared by all
// tests that use this package.
func TestingEnv() *internal.Env {
	testEnvInit.Do(ResetTestingEnv)
	return testEnv
}

// ResetTestingEnv reinitializes the Env returned by TestingEnv. It is not safe
// to call this in parallel tests.
func ResetTestingEnv() {
	testEnv = internal.NewEnv()
}

// Buffer is a Console which feeds fixed chunks and records everything
// printed, for testing Shells.
type Buffer struct {
	Chunks  []string
	Printed []internal.Value
	Closed  bool
}

// NewBuffer creates a Buffer console which will yield chunks in order.
func NewBuffer(chunks ...string) *Buffer {
	return &Buffer{Chunks: chunks}
}

// Print records v.
func (b *Buffer) Print(v internal.Value) {
	b.Printed = append(b.Printed, v)
}

// HasNext reports whether chunks remain.
func (b *Buffer) HasNext() bool {
	return len(b.Chunks) > 0
}

// Next returns the next chunk.
func (b *Buffer) Next() string {
	s := b.Chunks[0]
	b.Chunks = b.Chunks[1:]
	return s
}

// Close marks the buffer closed.
func (b *Buffer) Close() error {
	b.Closed = true
	return nil
}

// Lines returns the display forms of everything printed.
func (b *Buffer) Lines() []string {
	r := make([]string, len(b.Printed))
	for i, v := range b.Printed {
		r[i] = internal.Display(v)
	}
	return r
}

// A SourceTestCase is a test case containing source code and a predicate to
// check the result.
type SourceTestCase struct {
	// Source is the source code to execute.
	Source string
	// Pass is a predicate taking the result of executing Source. If Pass
	// returns false, then the test fails.
	Pass func(result internal.Value, control internal.Stop, err error) bool
}

// TestFunc returns a test function for the test case. This uses TestingEnv to
// parse and execute the code.
func (c SourceTestCase) TestFunc(name string) func(*testing.T) {
	return func(t *testing.T) {
		env := TestingEnv()
		r, s, err := env.DoString(c.Source)
		if !c.Pass(r, s, err) {
			if err != nil {
				t.Errorf("%q produced wrong result; an error occurred: %s: %v", c.Source, internal.ErrorKind(err), err)
			} else {
				t.Errorf("%q produced wrong result; got %s (%T, %s)", c.Source, internal.Display(r), r, s)
			}
		}
		if n := env.Depth(); n != 0 {
			t.Errorf("%q left %d frames on the stack", c.Source, n)
		}
	}
}

// PassEqual returns a Pass function for a SourceTestCase that predicates on
// deep equality of values, including their types. If an error occurs or the
// Stop is not NoStop, then the predicate returns false.
func PassEqual(want internal.Value) func(internal.Value, internal.Stop, error) bool {
	return func(result internal.Value, control internal.Stop, err error) bool {
		if err != nil || control != internal.NoStop {
			return false
		}
		return reflect.DeepEqual(want, result)
	}
}

// PassIdentical returns a Pass function for a SourceTestCase that predicates
// on identity, i.e. the result must be exactly the given value. If an error
// occurs or the Stop is not NoStop, then the predicate returns false.
func PassIdentical(want internal.Value) func(internal.Value, internal.Stop, error) bool {
	return func(result internal.Value, control internal.Stop, err error) bool {
		if err != nil || control != internal.NoStop {
			return false
		}
		return want == result
	}
}

// PassControl returns a Pass function for a SourceTestCase that predicates on
// equality with a certain control flow status. The control flow check precedes
// the value check. Equality here has the same semantics as in PassEqual.
func PassControl(want internal.Value, stop internal.Stop) func(internal.Value, internal.Stop, error) bool {
	return func(result internal.Value, control internal.Stop, err error) bool {
		if err != nil || control != stop {
			return false
		}
		return reflect.DeepEqual(want, result)
	}
}

// PassType returns a Pass function for a SourceTestCase that predicates on the
// Go type of the result.
func PassType(want reflect.Type) func(internal.Value, internal.Stop, error) bool {
	return func(result internal.Value, control internal.Stop, err error) bool {
		if err != nil || control != internal.NoStop || result == nil {
			return false
		}
		return reflect.TypeOf(result) == want
	}
}

// PassFailure returns a Pass function for a SourceTestCase that returns true
// iff an error occurred.
func PassFailure() func(internal.Value, internal.Stop, error) bool {
	return func(result internal.Value, control internal.Stop, err error) bool {
		return err != nil
	}
}

// PassError returns a Pass function for a SourceTestCase that returns true iff
// an error of the given kind occurred and its message contains substr.
func PassError(kind, substr string) func(internal.Value, internal.Stop, error) bool {
	return func(result internal.Value, control internal.Stop, err error) bool {
		return err != nil && internal.ErrorKind(err) == kind && strings.Contains(err.Error(), substr)
	}
}

// PassErrorAs returns a Pass function for a SourceTestCase that returns true
// iff an error occurred which errors.As can assign to target.
func PassErrorAs(target interface{}) func(internal.Value, internal.Stop, error) bool {
	return func(result internal.Value, control internal.Stop, err error) bool {
		return err != nil && errors.As(err, target)
	}
}

// PassSuccess returns a Pass function for a SourceTestCase that returns true
// iff no error occurred and the control flow status is NoStop.
func PassSuccess() func(internal.Value, internal.Stop, error) bool {
	return func(result internal.Value, control internal.Stop, err error) bool {
		return err == nil && control == internal.NoStop
	}
}

// CheckGlobals is a testing helper to check that an Env has each of the given
// globals.
func CheckGlobals(t *testing.T, env *internal.Env, names []string) {
	t.Helper()
	for _, name := range names {
		t.Run("Have_"+name, func(t *testing.T) {
			if _, ok := env.Global(name); !ok {
				t.Fatal("no global", name)
			}
		})
	}
}
