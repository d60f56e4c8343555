package internal

import (
	"reflect"
	"sort"
)

// initCore installs the core builtins into a new Env.
func (env *Env) initCore() {
	env.SetGlobals(Bindings{
		"true":    true,
		"false":   false,
		"null":    nil,
		"globals": env.globals,

		"return":    NewBuiltin("return", Return),
		"ifThen":    NewBuiltin("ifThen", IfThen),
		"ifElse":    NewBuiltin("ifElse", IfElse),
		"forEach":   NewBuiltin("forEach", ForEach),
		"whileLoop": NewBuiltin("whileLoop", WhileLoop),
		"tryCatch":  NewBuiltin("tryCatch", TryCatch),
		"dict":      NewBuiltin("dict", Dict),
	})
}

// CheckArgs returns an ArityError if args does not have exactly n elements.
func CheckArgs(name string, args []Value, n int) error {
	if len(args) != n {
		return &ArityError{Name: name, Want: n, Have: len(args)}
	}
	return nil
}

// CheckArgRange returns an ArityError if args has fewer than min or more than
// max elements.
func CheckArgRange(name string, args []Value, min, max int) error {
	if len(args) < min {
		return &ArityError{Name: name, Want: min, Have: len(args), Variadic: true}
	}
	if len(args) > max {
		return &ArityError{Name: name, Want: max, Have: len(args)}
	}
	return nil
}

// CallableArg returns args[i] as a Callable, or a TypeError if it is not one.
func CallableArg(name string, args []Value, i int) (Callable, error) {
	f, ok := asCallable(args[i])
	if !ok {
		return nil, typeErrorf("argument %d to %s must be callable, not %s", i, name, TypeName(args[i]))
	}
	return f, nil
}

// StringArg returns args[i] as a string, or a TypeError if it is not one.
// Characters are accepted as one-character strings.
func StringArg(name string, args []Value, i int) (string, error) {
	switch s := args[i].(type) {
	case string:
		return s, nil
	case Char:
		return string(s), nil
	}
	return "", typeErrorf("argument %d to %s must be a string, not %s", i, name, TypeName(args[i]))
}

// Return is a builtin.
//
// return yields its argument, or null if there is none, as a return from the
// innermost closure call.
func Return(env *Env, args []Value) (Value, Stop, error) {
	if err := CheckArgRange("return", args, 0, 1); err != nil {
		return nil, NoStop, err
	}
	if len(args) == 0 {
		return nil, ReturnStop, nil
	}
	return args[0], ReturnStop, nil
}

// condition evaluates a condition argument. A callable is called with no
// arguments and its result is used; any other value is used directly.
func condition(env *Env, v Value) (bool, error) {
	if f, ok := asCallable(v); ok {
		r, _, err := f.Call(env, nil)
		if err != nil {
			return false, err
		}
		return Truthy(r), nil
	}
	return Truthy(v), nil
}

// IfThen is a builtin.
//
// ifThen calls its second argument if the first is true. The condition may be
// a value or a callable producing one.
func IfThen(env *Env, args []Value) (Value, Stop, error) {
	if err := CheckArgs("ifThen", args, 2); err != nil {
		return nil, NoStop, err
	}
	then, err := CallableArg("ifThen", args, 1)
	if err != nil {
		return nil, NoStop, err
	}
	c, err := condition(env, args[0])
	if err != nil || !c {
		return nil, NoStop, err
	}
	return then.Call(env, nil)
}

// IfElse is a builtin.
//
// ifElse calls its second argument if the first is true and its third
// otherwise.
func IfElse(env *Env, args []Value) (Value, Stop, error) {
	if err := CheckArgs("ifElse", args, 3); err != nil {
		return nil, NoStop, err
	}
	then, err := CallableArg("ifElse", args, 1)
	if err != nil {
		return nil, NoStop, err
	}
	otherwise, err := CallableArg("ifElse", args, 2)
	if err != nil {
		return nil, NoStop, err
	}
	c, err := condition(env, args[0])
	if err != nil {
		return nil, NoStop, err
	}
	if c {
		return then.Call(env, nil)
	}
	return otherwise.Call(env, nil)
}

// ForEach is a builtin.
//
// forEach calls its second argument with each element of the first. A return
// from the callback ends the iteration and keeps unwinding.
func ForEach(env *Env, args []Value) (Value, Stop, error) {
	if err := CheckArgs("forEach", args, 2); err != nil {
		return nil, NoStop, err
	}
	f, err := CallableArg("forEach", args, 1)
	if err != nil {
		return nil, NoStop, err
	}
	it, err := Iterate(args[0])
	if err != nil {
		return nil, NoStop, err
	}
	for it.HasNext() {
		v, stop, err := f.Call(env, []Value{it.Next()})
		if err != nil || stop != NoStop {
			return v, stop, err
		}
	}
	return nil, NoStop, nil
}

// WhileLoop is a builtin.
//
// whileLoop calls its second argument as long as the first, which is called
// before each iteration, produces a true value.
func WhileLoop(env *Env, args []Value) (Value, Stop, error) {
	if err := CheckArgs("whileLoop", args, 2); err != nil {
		return nil, NoStop, err
	}
	cond, err := CallableArg("whileLoop", args, 0)
	if err != nil {
		return nil, NoStop, err
	}
	body, err := CallableArg("whileLoop", args, 1)
	if err != nil {
		return nil, NoStop, err
	}
	for {
		c, err := condition(env, cond)
		if err != nil || !c {
			return nil, NoStop, err
		}
		v, stop, err := body.Call(env, nil)
		if err != nil || stop != NoStop {
			return v, stop, err
		}
	}
}

// TryCatch is a builtin.
//
// tryCatch calls its first argument. If that raises an error, the second
// argument is called with the error instead.
func TryCatch(env *Env, args []Value) (Value, Stop, error) {
	if err := CheckArgs("tryCatch", args, 2); err != nil {
		return nil, NoStop, err
	}
	body, err := CallableArg("tryCatch", args, 0)
	if err != nil {
		return nil, NoStop, err
	}
	handler, err := CallableArg("tryCatch", args, 1)
	if err != nil {
		return nil, NoStop, err
	}
	v, stop, err := body.Call(env, nil)
	if err == nil {
		return v, stop, nil
	}
	return handler.Call(env, []Value{err})
}

// Dict is a builtin.
//
// dict creates a new empty record. Its properties are read and written like
// any other mapping.
func Dict(env *Env, args []Value) (Value, Stop, error) {
	if err := CheckArgs("dict", args, 0); err != nil {
		return nil, NoStop, err
	}
	return NewFrame(), NoStop, nil
}

// Iterate returns an iterator over v. Besides Iterators themselves, slices and
// arrays yield their elements, strings yield their characters, Frames and maps
// yield their keys in order, and channels yield values until they are closed.
// Other host values iterate if they have hasNext and next methods taking no
// arguments, whatever type next returns.
func Iterate(v Value) (Iterator, error) {
	switch v := v.(type) {
	case Iterator:
		return v, nil
	case string:
		return &sliceIter{v: reflect.ValueOf([]rune(v)), char: true}, nil
	case *Frame:
		return keyIter(v.Keys()), nil
	case nil:
		return nil, &IterationError{Value: v}
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		return &sliceIter{v: rv}, nil
	case reflect.Map:
		keys := rv.MapKeys()
		sort.Slice(keys, func(i, j int) bool { return lessKey(keys[i], keys[j]) })
		r := make([]Value, len(keys))
		for i, k := range keys {
			r[i] = valueOf(k)
		}
		return &sliceIter{v: reflect.ValueOf(r)}, nil
	case reflect.Chan:
		if rv.Type().ChanDir()&reflect.RecvDir != 0 {
			return &chanIter{ch: rv}, nil
		}
	}
	if it, ok := hostIterOf(rv); ok {
		return it, nil
	}
	return nil, &IterationError{Value: v}
}

// hostIter iterates a host value through its own HasNext and Next methods.
type hostIter struct {
	hasNext, next reflect.Value
}

// hostIterOf finds the iteration methods of rv. Values that are not pointers
// are copied once so that methods with pointer receivers share state.
func hostIterOf(rv reflect.Value) (*hostIter, bool) {
	if rv.Kind() != reflect.Ptr && rv.Kind() != reflect.Interface {
		p := reflect.New(rv.Type())
		p.Elem().Set(rv)
		rv = p
	}
	var it hostIter
	for _, m := range methodsOf(rv, "hasNext") {
		t := m.Type()
		if t.NumIn() == 0 && t.NumOut() == 1 && t.Out(0).Kind() == reflect.Bool {
			it.hasNext = m
			break
		}
	}
	for _, m := range methodsOf(rv, "next") {
		t := m.Type()
		if t.NumIn() == 0 && t.NumOut() >= 1 {
			it.next = m
			break
		}
	}
	return &it, it.hasNext.IsValid() && it.next.IsValid()
}

func (it *hostIter) HasNext() bool {
	return it.hasNext.Call(nil)[0].Bool()
}

func (it *hostIter) Next() Value {
	return valueOf(it.next.Call(nil)[0])
}

func keyIter(keys []string) Iterator {
	return &sliceIter{v: reflect.ValueOf(keys)}
}

// lessKey orders map keys of basic kinds. Other keys keep an arbitrary order.
func lessKey(a, b reflect.Value) bool {
	switch familyOf(a.Kind()) {
	case signedFamily:
		return a.Int() < b.Int()
	case unsignedFamily:
		return a.Uint() < b.Uint()
	case floatFamily:
		return a.Float() < b.Float()
	case stringFamily:
		return a.String() < b.String()
	}
	return false
}

type sliceIter struct {
	v    reflect.Value
	i    int
	char bool
}

func (it *sliceIter) HasNext() bool {
	return it.i < it.v.Len()
}

func (it *sliceIter) Next() Value {
	e := it.v.Index(it.i)
	it.i++
	if it.char {
		return Char(e.Interface().(rune))
	}
	return valueOf(e)
}

type chanIter struct {
	ch   reflect.Value
	next reflect.Value
	ok   bool
	done bool
}

func (it *chanIter) HasNext() bool {
	if it.done {
		return false
	}
	if !it.ok {
		it.next, it.ok = it.ch.Recv()
		if !it.ok {
			it.done = true
			return false
		}
	}
	return true
}

func (it *chanIter) Next() Value {
	if !it.HasNext() {
		return nil
	}
	it.ok = false
	return valueOf(it.next)
}
