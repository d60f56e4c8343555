// Package iter provides ranges and explicit iterators for forEach.
//
// Range(start, stop) yields the int32 values from start to stop inclusive.
// Range(start, stop, step) counts by step, which may be negative. iter(v)
// returns the iterator forEach would use for v, which scripts can drive by
// hand with hasNext and next.
package iter

import (
	"fmt"
	"reflect"

	"github.com/traefik/yaegi/interp"

	"github.com/zephyrtronium/cscript/internal"
)

// Symbols are the exports of this package for type resolution as .cscript.iter.
var Symbols = interp.Exports{
	"cscript/iter/iter": {
		"Range":        reflect.ValueOf((*Range)(nil)),
		"NewRange":     reflect.ValueOf(NewRange),
		"NewRangeStep": reflect.ValueOf(NewRangeStep),
	},
}

func init() {
	internal.Register(initIter)
}

func initIter(env *internal.Env) {
	if err := env.Types.Use(Symbols); err != nil {
		panic(err)
	}
	r, _, err := env.Types.Resolve([]string{"cscript", "iter", "Range"})
	if err != nil {
		panic(err)
	}
	env.SetGlobals(internal.Bindings{
		"Range": r,
		"iter":  internal.NewBuiltin("iter", iterate),
	})
}

// Range yields the terms of an arithmetic sequence of int32 values, including
// both ends when the step reaches the stop exactly.
type Range struct {
	// Index is the number of terms yielded so far.
	Index int64
	// Last is the index of the final term, or -1 if the range is empty.
	Last int64

	Start, Step int32
}

// NewRange creates a range counting by one from start to stop inclusive.
func NewRange(start, stop int32) *Range {
	r := &Range{}
	r.SetRange(start, stop, 1)
	return r
}

// NewRangeStep creates a range counting by step from start toward stop. The
// step must not be zero.
func NewRangeStep(start, stop, step int32) (*Range, error) {
	if step == 0 {
		return nil, fmt.Errorf("range step must not be zero")
	}
	r := &Range{}
	r.SetRange(start, stop, step)
	return r, nil
}

// SetRange sets up the range with the given start, stop, and step and rewinds
// it.
func (r *Range) SetRange(start, stop, step int32) {
	last := (int64(stop) - int64(start)) / int64(step)
	if last < 0 {
		last = -1
	}
	r.Index = 0
	r.Last = last
	r.Start = start
	r.Step = step
}

// Value returns the current term of the range. This succeeds regardless of
// whether the cursor is in bounds.
func (r *Range) Value() int32 {
	return int32(int64(r.Start) + r.Index*int64(r.Step))
}

// HasNext reports whether the range has terms left.
func (r *Range) HasNext() bool {
	return r.Index <= r.Last
}

// Next returns the current term and advances the cursor. It returns null once
// the range is exhausted.
func (r *Range) Next() internal.Value {
	if !r.HasNext() {
		return nil
	}
	v := r.Value()
	r.Index++
	return v
}

// Previous moves the cursor back one term and returns its value. It returns
// null at the beginning of the range.
func (r *Range) Previous() internal.Value {
	if r.Index <= 0 {
		return nil
	}
	r.Index--
	return r.Value()
}

// At returns the nth term of the range.
func (r *Range) At(n int32) (int32, error) {
	if n < 0 || int64(n) > r.Last {
		return 0, fmt.Errorf("index %d out of bounds", n)
	}
	return int32(int64(r.Start) + int64(n)*int64(r.Step)), nil
}

// Contains reports whether v is a term of the range.
func (r *Range) Contains(v int32) bool {
	d := int64(v) - int64(r.Start)
	if d%int64(r.Step) != 0 {
		return false
	}
	k := d / int64(r.Step)
	return k >= 0 && k <= r.Last
}

// Len returns the number of terms in the range.
func (r *Range) Len() int32 {
	return int32(r.Last + 1)
}

// Rewind moves the cursor to the beginning of the range.
func (r *Range) Rewind() {
	r.Index = 0
}

func (r *Range) String() string {
	return fmt.Sprintf("Range(%d, %d, %d)", r.Start, int64(r.Start)+r.Last*int64(r.Step), r.Step)
}

// iterate is a builtin.
//
// iter returns an iterator over its argument.
func iterate(env *internal.Env, args []internal.Value) (internal.Value, internal.Stop, error) {
	if err := internal.CheckArgs("iter", args, 1); err != nil {
		return nil, internal.NoStop, err
	}
	it, err := internal.Iterate(args[0])
	return it, internal.NoStop, err
}
