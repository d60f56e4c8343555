package internal

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/sirupsen/logrus"
)

// Call runs the closure. A fresh frame is pushed before the parameters are
// bound and popped on every way out. If the body returns, the result carries
// ReturnStop so that Go callers can tell a return from falling off the end,
// which yields no value.
func (n *FunctionLiteral) Call(env *Env, args []Value) (Value, Stop, error) {
	f := NewFrame()
	env.push(f)
	defer env.pop()
	if n.Variadic < 0 {
		if len(args) != len(n.Params) {
			return nil, NoStop, &ArityError{Name: "closure " + n.signature(), Want: len(n.Params), Have: len(args)}
		}
		for i, p := range n.Params {
			f.Store(p, args[i])
		}
	} else {
		if len(args) < n.Variadic {
			return nil, NoStop, &ArityError{Name: "closure " + n.signature(), Want: n.Variadic, Have: len(args), Variadic: true}
		}
		for i, p := range n.Params[:n.Variadic] {
			f.Store(p, args[i])
		}
		rest := make([]Value, len(args)-n.Variadic)
		copy(rest, args[n.Variadic:])
		f.Store(n.Params[n.Variadic], rest)
	}
	for _, stmt := range n.Body {
		v, stop, err := stmt.Eval(env)
		if err != nil {
			return nil, NoStop, err
		}
		if stop == ReturnStop {
			return v, ReturnStop, nil
		}
	}
	return nil, NoStop, nil
}

// signature renders the closure's parameter list.
func (n *FunctionLiteral) signature() string {
	s := n.String()
	return s[:strings.IndexByte(s, ')')+1]
}

// HostFunc is a host function resolved by name, such as a package-level Go
// function from the type registry.
type HostFunc struct {
	Name string
	Fn   reflect.Value
}

// Call calls the function if the arguments are compatible with it.
func (h *HostFunc) Call(env *Env, args []Value) (Value, Stop, error) {
	v, err := env.invoke(h.Name, []reflect.Value{h.Fn}, args)
	return v, NoStop, err
}

func (h *HostFunc) String() string {
	return h.Name
}

// BoundMethod is a method name paired with the instance or type it was
// resolved on. The concrete method is chosen only when it is called.
type BoundMethod struct {
	// Recv is the receiver, or a *TypeValue for a method expression taking
	// the receiver as its first argument.
	Recv Value
	Name string
}

// Call chooses the first method with a matching name and arity whose
// parameters accept the arguments and calls it.
func (m *BoundMethod) Call(env *Env, args []Value) (Value, Stop, error) {
	var cands []reflect.Value
	if tv, ok := m.Recv.(*TypeValue); ok {
		cands = methodExprs(tv.Type, m.Name)
	} else {
		cands = methodsOf(reflect.ValueOf(m.Recv), m.Name)
	}
	v, err := env.invoke(TypeName(m.Recv)+"."+m.Name, cands, args)
	return v, NoStop, err
}

func (m *BoundMethod) String() string {
	return TypeName(m.Recv) + "." + m.Name
}

// Call constructs an instance of the type using the first constructor whose
// arity and parameter types accept the arguments.
func (tv *TypeValue) Call(env *Env, args []Value) (Value, Stop, error) {
	v, err := env.invoke("constructor of "+tv.String(), tv.constructors(), args)
	return v, NoStop, err
}

// asCallable converts v to a Callable. Besides script callables, Go func
// values obtained from host objects can be called.
func asCallable(v Value) (Callable, bool) {
	if c, ok := v.(Callable); ok {
		return c, true
	}
	if v == nil {
		return nil, false
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Func || rv.IsNil() {
		return nil, false
	}
	return &HostFunc{Name: rv.Type().String(), Fn: rv}, true
}

// invoke calls the first candidate whose parameters accept args.
func (env *Env) invoke(name string, cands []reflect.Value, args []Value) (Value, error) {
	for _, fn := range cands {
		if in, ok := env.convertArgs(fn.Type(), args); ok {
			return env.callHost(fn, in)
		}
	}
	types := make([]string, len(args))
	for i, arg := range args {
		types[i] = TypeName(arg)
	}
	return nil, accessErrorf("no %s accepts %d arguments (%s)", name, len(args), strings.Join(types, ", "))
}

// convertArgs converts each argument to the corresponding parameter type of
// ft. It fails if the arity differs or any argument is incompatible.
func (env *Env) convertArgs(ft reflect.Type, args []Value) ([]reflect.Value, bool) {
	n := ft.NumIn()
	if ft.IsVariadic() {
		if len(args) < n-1 {
			return nil, false
		}
	} else if len(args) != n {
		return nil, false
	}
	in := make([]reflect.Value, len(args))
	for i, arg := range args {
		var t reflect.Type
		if ft.IsVariadic() && i >= n-1 {
			t = ft.In(n - 1).Elem()
		} else {
			t = ft.In(i)
		}
		v, ok := convert(env, arg, t)
		if !ok {
			return nil, false
		}
		in[i] = v
	}
	return in, true
}

// scriptPanic carries an error from a script callback out through the host
// code that called it.
type scriptPanic struct {
	err error
}

var errorType = reflect.TypeOf((*error)(nil)).Elem()

// callHost calls a host function. A trailing error result and any panic become
// a HostFault. Script callbacks passed to fn may run on env until it returns.
func (env *Env) callHost(fn reflect.Value, in []reflect.Value) (result Value, err error) {
	env.hostCalls.Add(1)
	defer func() {
		env.hostCalls.Add(-1)
		r := recover()
		switch r := r.(type) {
		case nil:
		case scriptPanic:
			result, err = nil, r.err
		case error:
			result, err = nil, &HostFault{Category: "panic", Err: r}
		default:
			result, err = nil, &HostFault{Category: "panic", Err: fmt.Errorf("%v", r)}
		}
	}()
	out := fn.Call(in)
	if n := len(out); n > 0 && fn.Type().Out(n-1) == errorType {
		if e := out[n-1]; !e.IsNil() {
			return nil, &HostFault{Category: "host error", Err: e.Interface().(error)}
		}
		out = out[:n-1]
	}
	switch len(out) {
	case 0:
		return nil, nil
	case 1:
		return valueOf(out[0]), nil
	}
	r := make([]Value, len(out))
	for i, v := range out {
		r[i] = valueOf(v)
	}
	return r, nil
}

// valueOf converts a reflected host value to a script value. Nil pointers,
// interfaces, and the like become null.
func valueOf(v reflect.Value) Value {
	switch v.Kind() {
	case reflect.Invalid:
		return nil
	case reflect.Ptr, reflect.Interface, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan:
		if v.IsNil() {
			return nil
		}
	}
	return elevate(v).Interface()
}

type family int

const (
	noFamily family = iota
	signedFamily
	unsignedFamily
	floatFamily
	stringFamily
	boolFamily
)

func familyOf(k reflect.Kind) family {
	switch k {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return signedFamily
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return unsignedFamily
	case reflect.Float32, reflect.Float64:
		return floatFamily
	case reflect.String:
		return stringFamily
	case reflect.Bool:
		return boolFamily
	}
	return noFamily
}

// convert converts a script value to a host value of type t. Compatible values
// are those assignable to t; numbers, strings, and booleans of the same family
// whose value fits; null for types that have a nil value; script callables for
// func types when env is not nil; and lists whose elements all convert to the
// element type of a slice type.
func convert(env *Env, x Value, t reflect.Type) (reflect.Value, bool) {
	if x == nil {
		switch t.Kind() {
		case reflect.Ptr, reflect.Interface, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan:
			return reflect.Zero(t), true
		}
		return reflect.Value{}, false
	}
	rv := reflect.ValueOf(x)
	if rv.Type().AssignableTo(t) {
		return rv, true
	}
	if c, ok := x.(Callable); ok && env != nil && t.Kind() == reflect.Func {
		return env.wrapCallable(c, t), true
	}
	fam := familyOf(rv.Kind())
	if fam != noFamily && fam == familyOf(t.Kind()) {
		z := reflect.Zero(t)
		switch fam {
		case signedFamily:
			if z.OverflowInt(rv.Int()) {
				return reflect.Value{}, false
			}
		case unsignedFamily:
			if z.OverflowUint(rv.Uint()) {
				return reflect.Value{}, false
			}
		case floatFamily:
			if z.OverflowFloat(rv.Float()) {
				return reflect.Value{}, false
			}
		}
		return rv.Convert(t), true
	}
	if l, ok := x.([]Value); ok && t.Kind() == reflect.Slice {
		s := reflect.MakeSlice(t, len(l), len(l))
		for i, e := range l {
			v, ok := convert(env, e, t.Elem())
			if !ok {
				return reflect.Value{}, false
			}
			s.Index(i).Set(v)
		}
		return s, true
	}
	return reflect.Value{}, false
}

// errDetached is the error a script callback gives when host code runs it
// after the host call that received it has returned.
var errDetached = errors.New("script callback called outside of a host call")

// wrapCallable makes a Go function of type t which calls c. Errors from the
// call are returned through a trailing error result if t has one and are
// otherwise carried out by panicking to the enclosing callHost.
//
// Host code may keep the function and call it later, possibly from another
// goroutine. With no host call in progress, the function does not touch env:
// it returns errDetached through a trailing error result if t has one, and
// otherwise logs the dropped call and returns zero values.
func (env *Env) wrapCallable(c Callable, t reflect.Type) reflect.Value {
	return reflect.MakeFunc(t, func(in []reflect.Value) []reflect.Value {
		out := make([]reflect.Value, t.NumOut())
		for i := range out {
			out[i] = reflect.Zero(t.Out(i))
		}
		n := len(out)
		fail := func(err error) []reflect.Value {
			if n > 0 && t.Out(n-1) == errorType {
				out[n-1] = reflect.ValueOf(&err).Elem()
				return out
			}
			panic(scriptPanic{err})
		}
		if env.hostCalls.Load() == 0 {
			if n > 0 && t.Out(n-1) == errorType {
				return fail(errDetached)
			}
			env.Log.WithFields(logrus.Fields{
				"callback": Display(c),
				"type":     t.String(),
			}).Warn("dropped script callback called outside of a host call")
			return out
		}
		args := make([]Value, len(in))
		for i, v := range in {
			args[i] = valueOf(v)
		}
		r, _, err := c.Call(env, args)
		if err != nil {
			return fail(err)
		}
		if n > 0 && t.Out(0) != errorType {
			v, ok := convert(env, r, t.Out(0))
			if !ok {
				return fail(typeErrorf("callback returned %s where %v is required", TypeName(r), t.Out(0)))
			}
			out[0] = v
		}
		return out
	})
}
