// Package ops provides arithmetic, comparison, logic, and list builtins. The
// language has no operator syntax, so these are how scripts compute.
package ops

import (
	"fmt"
	"reflect"
	"strings"
	"unicode/utf8"

	"github.com/zephyrtronium/cscript/internal"
)

func init() {
	internal.Register(initOps)
}

func initOps(env *internal.Env) {
	env.SetGlobals(internal.Bindings{
		"add":    internal.NewBuiltin("add", Add),
		"sub":    internal.NewBuiltin("sub", Sub),
		"mul":    internal.NewBuiltin("mul", Mul),
		"div":    internal.NewBuiltin("div", Div),
		"mod":    internal.NewBuiltin("mod", Mod),
		"neg":    internal.NewBuiltin("neg", Neg),
		"eq":     internal.NewBuiltin("eq", Eq),
		"ne":     internal.NewBuiltin("ne", Ne),
		"lt":     internal.NewBuiltin("lt", Lt),
		"le":     internal.NewBuiltin("le", Le),
		"gt":     internal.NewBuiltin("gt", Gt),
		"ge":     internal.NewBuiltin("ge", Ge),
		"not":    internal.NewBuiltin("not", Not),
		"and":    internal.NewBuiltin("and", And),
		"or":     internal.NewBuiltin("or", Or),
		"concat": internal.NewBuiltin("concat", Concat),
		"len":    internal.NewBuiltin("len", Len),
		"get":    internal.NewBuiltin("get", Get),
		"list":   internal.NewBuiltin("list", List),
	})
}

// rank orders numeric result types. An operation on two numbers produces the
// type of the higher rank.
type rank int

const (
	notNumber rank = iota
	rankInt32
	rankInt64
	rankFloat32
	rankFloat64
)

// number is a numeric argument widened for computation.
type number struct {
	r rank
	i int64
	f float64
}

// numberOf classifies v. Host integers of other sizes compute as int64 and
// other floats as float64.
func numberOf(v internal.Value) number {
	switch v := v.(type) {
	case int32:
		return number{r: rankInt32, i: int64(v), f: float64(v)}
	case int64:
		return number{r: rankInt64, i: v, f: float64(v)}
	case float32:
		return number{r: rankFloat32, f: float64(v)}
	case float64:
		return number{r: rankFloat64, f: v}
	case nil, internal.Char:
		return number{}
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return number{r: rankInt64, i: rv.Int(), f: float64(rv.Int())}
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return number{r: rankInt64, i: int64(rv.Uint()), f: float64(rv.Uint())}
	case reflect.Float32, reflect.Float64:
		return number{r: rankFloat64, f: rv.Float()}
	}
	return number{}
}

func (n number) value() internal.Value {
	switch n.r {
	case rankInt32:
		return int32(n.i)
	case rankInt64:
		return n.i
	case rankFloat32:
		return float32(n.f)
	}
	return n.f
}

func (n number) isFloat() bool {
	return n.r >= rankFloat32
}

// operands returns the two arguments of a binary arithmetic builtin widened to
// their common rank.
func operands(name string, args []internal.Value) (a, b number, err error) {
	if err := internal.CheckArgs(name, args, 2); err != nil {
		return a, b, err
	}
	a, b = numberOf(args[0]), numberOf(args[1])
	if a.r == notNumber {
		return a, b, typeError(name, 0, args[0])
	}
	if b.r == notNumber {
		return a, b, typeError(name, 1, args[1])
	}
	r := a.r
	if b.r > r {
		r = b.r
	}
	a.r, b.r = r, r
	return a, b, nil
}

func typeError(name string, i int, v internal.Value) error {
	return &internal.TypeError{Msg: fmt.Sprintf("argument %d to %s must be a number, not %s", i, name, internal.TypeName(v))}
}

type arith struct {
	ints   func(a, b int64) int64
	floats func(a, b float64) float64
}

func (op arith) apply(name string, args []internal.Value) (internal.Value, internal.Stop, error) {
	a, b, err := operands(name, args)
	if err != nil {
		return nil, internal.NoStop, err
	}
	if a.isFloat() {
		a.f = op.floats(a.f, b.f)
	} else {
		a.i = op.ints(a.i, b.i)
	}
	return a.value(), internal.NoStop, nil
}

// Add is a builtin.
//
// add returns the sum of two numbers.
func Add(env *internal.Env, args []internal.Value) (internal.Value, internal.Stop, error) {
	return arith{
		ints:   func(a, b int64) int64 { return a + b },
		floats: func(a, b float64) float64 { return a + b },
	}.apply("add", args)
}

// Sub is a builtin.
//
// sub returns the difference of two numbers.
func Sub(env *internal.Env, args []internal.Value) (internal.Value, internal.Stop, error) {
	return arith{
		ints:   func(a, b int64) int64 { return a - b },
		floats: func(a, b float64) float64 { return a - b },
	}.apply("sub", args)
}

// Mul is a builtin.
//
// mul returns the product of two numbers.
func Mul(env *internal.Env, args []internal.Value) (internal.Value, internal.Stop, error) {
	return arith{
		ints:   func(a, b int64) int64 { return a * b },
		floats: func(a, b float64) float64 { return a * b },
	}.apply("mul", args)
}

// Div is a builtin.
//
// div returns the quotient of two numbers. Integer division truncates, and
// integer division by zero is an error.
func Div(env *internal.Env, args []internal.Value) (internal.Value, internal.Stop, error) {
	a, b, err := operands("div", args)
	if err != nil {
		return nil, internal.NoStop, err
	}
	if a.isFloat() {
		a.f /= b.f
		return a.value(), internal.NoStop, nil
	}
	if b.i == 0 {
		return nil, internal.NoStop, &internal.TypeError{Msg: "div: integer division by zero"}
	}
	a.i /= b.i
	return a.value(), internal.NoStop, nil
}

// Mod is a builtin.
//
// mod returns the remainder of integer division. Both arguments must be
// integers.
func Mod(env *internal.Env, args []internal.Value) (internal.Value, internal.Stop, error) {
	a, b, err := operands("mod", args)
	if err != nil {
		return nil, internal.NoStop, err
	}
	if a.isFloat() {
		return nil, internal.NoStop, &internal.TypeError{Msg: "mod: arguments must be integers"}
	}
	if b.i == 0 {
		return nil, internal.NoStop, &internal.TypeError{Msg: "mod: integer division by zero"}
	}
	a.i %= b.i
	return a.value(), internal.NoStop, nil
}

// Neg is a builtin.
//
// neg returns the negation of a number.
func Neg(env *internal.Env, args []internal.Value) (internal.Value, internal.Stop, error) {
	if err := internal.CheckArgs("neg", args, 1); err != nil {
		return nil, internal.NoStop, err
	}
	a := numberOf(args[0])
	if a.r == notNumber {
		return nil, internal.NoStop, typeError("neg", 0, args[0])
	}
	a.i, a.f = -a.i, -a.f
	return a.value(), internal.NoStop, nil
}

// equal reports whether two values are equal. Numbers compare by value across
// types; other values compare by identity or, for comparable Go values, by ==.
func equal(x, y internal.Value) bool {
	a, b := numberOf(x), numberOf(y)
	if a.r != notNumber && b.r != notNumber {
		if a.isFloat() || b.isFloat() {
			return a.f == b.f
		}
		return a.i == b.i
	}
	if x == nil || y == nil {
		return x == nil && y == nil
	}
	if xs, ok := stringOf(x); ok {
		ys, ok := stringOf(y)
		return ok && xs == ys
	}
	tx, ty := reflect.TypeOf(x), reflect.TypeOf(y)
	if tx != ty || !tx.Comparable() {
		return false
	}
	return sameValue(x, y)
}

// sameValue compares x and y with ==. Types like structs with interface
// fields are comparable but panic when those fields hold uncomparable values,
// in which case x and y are unequal.
func sameValue(x, y internal.Value) (eq bool) {
	defer func() {
		if recover() != nil {
			eq = false
		}
	}()
	return x == y
}

func stringOf(v internal.Value) (string, bool) {
	switch v := v.(type) {
	case string:
		return v, true
	case internal.Char:
		return string(v), true
	}
	return "", false
}

// Eq is a builtin.
//
// eq reports whether two values are equal.
func Eq(env *internal.Env, args []internal.Value) (internal.Value, internal.Stop, error) {
	if err := internal.CheckArgs("eq", args, 2); err != nil {
		return nil, internal.NoStop, err
	}
	return equal(args[0], args[1]), internal.NoStop, nil
}

// Ne is a builtin.
//
// ne reports whether two values are not equal.
func Ne(env *internal.Env, args []internal.Value) (internal.Value, internal.Stop, error) {
	if err := internal.CheckArgs("ne", args, 2); err != nil {
		return nil, internal.NoStop, err
	}
	return !equal(args[0], args[1]), internal.NoStop, nil
}

// compare orders two numbers or two strings.
func compare(name string, args []internal.Value) (int, error) {
	if err := internal.CheckArgs(name, args, 2); err != nil {
		return 0, err
	}
	if x, ok := stringOf(args[0]); ok {
		y, ok := stringOf(args[1])
		if !ok {
			return 0, &internal.TypeError{Msg: name + ": cannot compare string with " + internal.TypeName(args[1])}
		}
		return strings.Compare(x, y), nil
	}
	a, b, err := operands(name, args)
	if err != nil {
		return 0, err
	}
	switch {
	case a.isFloat() && a.f < b.f, !a.isFloat() && a.i < b.i:
		return -1, nil
	case a.isFloat() && a.f > b.f, !a.isFloat() && a.i > b.i:
		return 1, nil
	}
	return 0, nil
}

// Lt is a builtin.
//
// lt reports whether the first argument is less than the second.
func Lt(env *internal.Env, args []internal.Value) (internal.Value, internal.Stop, error) {
	c, err := compare("lt", args)
	return c < 0, internal.NoStop, err
}

// Le is a builtin.
//
// le reports whether the first argument is at most the second.
func Le(env *internal.Env, args []internal.Value) (internal.Value, internal.Stop, error) {
	c, err := compare("le", args)
	return c <= 0, internal.NoStop, err
}

// Gt is a builtin.
//
// gt reports whether the first argument is greater than the second.
func Gt(env *internal.Env, args []internal.Value) (internal.Value, internal.Stop, error) {
	c, err := compare("gt", args)
	return c > 0, internal.NoStop, err
}

// Ge is a builtin.
//
// ge reports whether the first argument is at least the second.
func Ge(env *internal.Env, args []internal.Value) (internal.Value, internal.Stop, error) {
	c, err := compare("ge", args)
	return c >= 0, internal.NoStop, err
}

// Not is a builtin.
//
// not returns true if its argument is false or null.
func Not(env *internal.Env, args []internal.Value) (internal.Value, internal.Stop, error) {
	if err := internal.CheckArgs("not", args, 1); err != nil {
		return nil, internal.NoStop, err
	}
	return !internal.Truthy(args[0]), internal.NoStop, nil
}

// And is a builtin.
//
// and returns true if all of its arguments are true. Arguments are evaluated
// before the call, so there is no short circuit.
func And(env *internal.Env, args []internal.Value) (internal.Value, internal.Stop, error) {
	for _, arg := range args {
		if !internal.Truthy(arg) {
			return false, internal.NoStop, nil
		}
	}
	return true, internal.NoStop, nil
}

// Or is a builtin.
//
// or returns true if any of its arguments is true.
func Or(env *internal.Env, args []internal.Value) (internal.Value, internal.Stop, error) {
	for _, arg := range args {
		if internal.Truthy(arg) {
			return true, internal.NoStop, nil
		}
	}
	return false, internal.NoStop, nil
}

// Concat is a builtin.
//
// concat joins the display forms of its arguments into a string.
func Concat(env *internal.Env, args []internal.Value) (internal.Value, internal.Stop, error) {
	b := strings.Builder{}
	for _, arg := range args {
		b.WriteString(internal.Display(arg))
	}
	return b.String(), internal.NoStop, nil
}

// Len is a builtin.
//
// len returns the number of characters in a string, elements in a list, or
// entries in a dict or map, as an int32.
func Len(env *internal.Env, args []internal.Value) (internal.Value, internal.Stop, error) {
	if err := internal.CheckArgs("len", args, 1); err != nil {
		return nil, internal.NoStop, err
	}
	switch v := args[0].(type) {
	case string:
		return int32(utf8.RuneCountInString(v)), internal.NoStop, nil
	case *internal.Frame:
		return int32(v.Len()), internal.NoStop, nil
	case nil:
		return nil, internal.NoStop, &internal.TypeError{Msg: "len: argument 0 has no length: null"}
	}
	rv := reflect.ValueOf(args[0])
	switch rv.Kind() {
	case reflect.Slice, reflect.Array, reflect.Map, reflect.Chan:
		return int32(rv.Len()), internal.NoStop, nil
	}
	return nil, internal.NoStop, &internal.TypeError{Msg: "len: argument 0 has no length: " + internal.TypeName(args[0])}
}

// Get is a builtin.
//
// get returns the element of a list at an integer index or the entry of a
// dict or map with a string key.
func Get(env *internal.Env, args []internal.Value) (internal.Value, internal.Stop, error) {
	if err := internal.CheckArgs("get", args, 2); err != nil {
		return nil, internal.NoStop, err
	}
	if key, ok := stringOf(args[1]); ok {
		switch c := args[0].(type) {
		case internal.Mapping:
			v, ok := c.Lookup(key)
			if !ok {
				return nil, internal.NoStop, &internal.AccessError{Msg: "get: no key " + key + " in " + internal.TypeName(c)}
			}
			return v, internal.NoStop, nil
		}
		rv := reflect.ValueOf(args[0])
		if rv.Kind() == reflect.Map && rv.Type().Key().Kind() == reflect.String {
			e := rv.MapIndex(reflect.ValueOf(key).Convert(rv.Type().Key()))
			if !e.IsValid() {
				return nil, internal.NoStop, &internal.AccessError{Msg: "get: no key " + key + " in " + internal.TypeName(args[0])}
			}
			return e.Interface(), internal.NoStop, nil
		}
		return nil, internal.NoStop, &internal.TypeError{Msg: "get: cannot index " + internal.TypeName(args[0]) + " with a string"}
	}
	n := numberOf(args[1])
	if n.r == notNumber || n.isFloat() {
		return nil, internal.NoStop, &internal.TypeError{Msg: "get: index must be an integer or string, not " + internal.TypeName(args[1])}
	}
	if s, ok := args[0].(string); ok {
		r := []rune(s)
		if n.i < 0 || n.i >= int64(len(r)) {
			return nil, internal.NoStop, &internal.AccessError{Msg: "get: index out of range"}
		}
		return internal.Char(r[n.i]), internal.NoStop, nil
	}
	if args[0] == nil {
		return nil, internal.NoStop, &internal.AccessError{Msg: "get: cannot index a null value"}
	}
	rv := reflect.ValueOf(args[0])
	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		if n.i < 0 || n.i >= int64(rv.Len()) {
			return nil, internal.NoStop, &internal.AccessError{Msg: "get: index out of range"}
		}
		e := rv.Index(int(n.i))
		if (e.Kind() == reflect.Interface || e.Kind() == reflect.Ptr) && e.IsNil() {
			return nil, internal.NoStop, nil
		}
		return e.Interface(), internal.NoStop, nil
	}
	return nil, internal.NoStop, &internal.TypeError{Msg: "get: cannot index " + internal.TypeName(args[0])}
}

// List is a builtin.
//
// list returns its arguments as a list.
func List(env *internal.Env, args []internal.Value) (internal.Value, internal.Stop, error) {
	r := make([]internal.Value, len(args))
	copy(r, args)
	return r, internal.NoStop, nil
}
