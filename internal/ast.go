package internal

import (
	"strings"
)

// A Node is one parsed expression. Evaluating a node yields a value and the
// control status under which it was produced. Nodes are immutable once parsed.
type Node interface {
	Eval(env *Env) (Value, Stop, error)
	String() string
}

// Constant is a literal value.
type Constant struct {
	Value Value
	// Text is the literal's source form.
	Text string
}

// Eval returns the constant.
func (n *Constant) Eval(env *Env) (Value, Stop, error) {
	return n.Value, NoStop, nil
}

func (n *Constant) String() string {
	return n.Text
}

// Access reads a variable and then walks the rest of its dotted path through
// the host-object accessor.
type Access struct {
	Path []string
}

// Eval resolves the path. The final segment may resolve to a bound method.
func (n *Access) Eval(env *Env) (Value, Stop, error) {
	v, err := env.resolve(n.Path, true)
	return v, NoStop, err
}

func (n *Access) String() string {
	return strings.Join(n.Path, ".")
}

// resolve looks up the root of path and resolves the remainder. A bare name
// that is not bound is an error; the root of a longer path that is not bound
// is null, so the first property access on it fails.
func (env *Env) resolve(path []string, methods bool) (Value, error) {
	root, ok := env.Lookup(path[0])
	if !ok && len(path) == 1 {
		return nil, accessErrorf("variable %q not found", path[0])
	}
	return env.walk(root, path[1:], methods)
}

// Assignment stores a value into a variable or a property of a host value.
// It evaluates to the stored value.
type Assignment struct {
	Target *Access
	Value  Node
}

// Eval evaluates the value and assigns it.
func (n *Assignment) Eval(env *Env) (Value, Stop, error) {
	v, stop, err := n.Value.Eval(env)
	if err != nil || stop != NoStop {
		return v, stop, err
	}
	path := n.Target.Path
	if len(path) == 1 {
		env.Set(path[0], v)
		return v, NoStop, nil
	}
	root, _ := env.Lookup(path[0])
	container, err := env.walk(root, path[1:len(path)-1], false)
	if err != nil {
		return nil, NoStop, err
	}
	if err := env.assign(container, path[len(path)-1], v); err != nil {
		return nil, NoStop, err
	}
	return v, NoStop, nil
}

func (n *Assignment) String() string {
	return n.Target.String() + " = " + n.Value.String()
}

// FunctionCall calls the value of Callee with the values of Args.
type FunctionCall struct {
	Callee Node
	Args   []Node
}

// Eval evaluates the callee, then each argument in order, then performs the
// call. A return from a user closure ends at the call; a return reported by a
// builtin keeps unwinding.
func (n *FunctionCall) Eval(env *Env) (Value, Stop, error) {
	callee, stop, err := n.Callee.Eval(env)
	if err != nil || stop != NoStop {
		return callee, stop, err
	}
	args := make([]Value, len(n.Args))
	for i, arg := range n.Args {
		args[i], stop, err = arg.Eval(env)
		if err != nil || stop != NoStop {
			return args[i], stop, err
		}
	}
	f, ok := asCallable(callee)
	if !ok {
		return nil, NoStop, accessErrorf("%s is not callable (%s)", n.Callee, TypeName(callee))
	}
	result, stop, err := f.Call(env, args)
	if _, closure := f.(*FunctionLiteral); closure {
		stop = NoStop
	}
	return result, stop, err
}

func (n *FunctionCall) String() string {
	b := strings.Builder{}
	b.WriteString(n.Callee.String())
	b.WriteByte('(')
	for i, arg := range n.Args {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(arg.String())
	}
	b.WriteByte(')')
	return b.String()
}

// FunctionLiteral is a user-defined function. It is also the closure value it
// evaluates to: closures capture nothing but their own definition.
type FunctionLiteral struct {
	Params []string
	// Variadic is the index of the variadic parameter, which is always the
	// last, or -1 if there is none.
	Variadic int
	Body     []Node
}

// Eval returns the literal itself as a closure.
func (n *FunctionLiteral) Eval(env *Env) (Value, Stop, error) {
	return n, NoStop, nil
}

func (n *FunctionLiteral) String() string {
	b := strings.Builder{}
	b.WriteByte('(')
	for i, p := range n.Params {
		if i > 0 {
			b.WriteString(", ")
		}
		if i == n.Variadic {
			b.WriteString("...")
		}
		b.WriteString(p)
	}
	b.WriteString(") {")
	for _, stmt := range n.Body {
		b.WriteByte(' ')
		b.WriteString(stmt.String())
		b.WriteByte(';')
	}
	if len(n.Body) > 0 {
		b.WriteByte(' ')
	}
	b.WriteByte('}')
	return b.String()
}

// TypeResolution resolves a dotted host name against the type registry. Any
// segments left after the longest prefix naming a type are walked as a
// property path from it.
type TypeResolution struct {
	Name string
}

// Eval resolves the name.
func (n *TypeResolution) Eval(env *Env) (Value, Stop, error) {
	segs := strings.Split(n.Name, ".")
	v, rest, err := env.Types.Resolve(segs)
	if err != nil {
		return nil, NoStop, err
	}
	v, err = env.walk(v, rest, true)
	return v, NoStop, err
}

func (n *TypeResolution) String() string {
	return "." + n.Name
}
