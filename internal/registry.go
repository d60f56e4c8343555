package internal

import (
	"fmt"
	"go/constant"
	"reflect"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/traefik/yaegi/interp"
)

// Registry holds the host symbols that type-resolution literals can name.
// Symbols are registered in the same shape yaegi uses for its exports: a map
// from "import/path/name" to the package's symbols, where each type is a nil
// pointer to it, each variable is addressable, and functions and constants are
// plain values.
type Registry struct {
	pkgs  map[string]*Package
	types map[reflect.Type]*TypeValue
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		pkgs:  make(map[string]*Package),
		types: make(map[reflect.Type]*TypeValue),
	}
}

// Use registers exported symbols. A key such as "encoding/json/json" is made
// resolvable as .encoding.json; symbols may themselves contain dots to declare
// nested types, as in "Outer.Inner". The "." key, which yaegi uses for
// interpreter metadata rather than a package, is ignored.
func (r *Registry) Use(values interp.Exports) error {
	for key, syms := range values {
		if key == "." {
			continue
		}
		i := strings.LastIndexByte(key, '/')
		if i <= 0 {
			return fmt.Errorf("cscript: malformed export key %q", key)
		}
		path := strings.ReplaceAll(key[:i], "/", ".")
		pkg := r.pkgs[path]
		if pkg == nil {
			pkg = &Package{Path: path, Name: key[i+1:], symbols: make(map[string]reflect.Value), reg: r}
			r.pkgs[path] = pkg
		}
		for name, v := range syms {
			if strings.HasPrefix(name, "_") || !v.IsValid() {
				// yaegi's interface wrappers and anything unusable.
				continue
			}
			pkg.symbols[name] = v
			pkg.names = nil
			if isTypeSymbol(v) {
				t := v.Type().Elem()
				r.types[t] = &TypeValue{Type: t, Pkg: pkg, Name: name}
			}
		}
	}
	return nil
}

// Resolve finds the longest prefix of segs naming a registered type and
// returns it along with the unconsumed segments. If no prefix names a type, the
// longest prefix naming any other symbol or a package is used instead.
func (r *Registry) Resolve(segs []string) (Value, []string, error) {
	for i := len(segs); i > 0; i-- {
		for j := 1; j < i; j++ {
			pkg := r.pkgs[strings.Join(segs[:j], ".")]
			if pkg == nil {
				continue
			}
			if t := pkg.typeNamed(strings.Join(segs[j:i], ".")); t != nil {
				return t, segs[i:], nil
			}
		}
	}
	for i := len(segs); i > 0; i-- {
		for j := 1; j < i; j++ {
			pkg := r.pkgs[strings.Join(segs[:j], ".")]
			if pkg == nil {
				continue
			}
			if v, ok := pkg.Lookup(strings.Join(segs[j:i], ".")); ok {
				return v, segs[i:], nil
			}
		}
		if pkg := r.pkgs[strings.Join(segs[:i], ".")]; pkg != nil {
			return pkg, segs[i:], nil
		}
	}
	return nil, nil, accessErrorf("unknown type .%s", strings.Join(segs, "."))
}

// TypeOf returns the TypeValue for t, which is unregistered if no package
// exports it.
func (r *Registry) TypeOf(t reflect.Type) *TypeValue {
	if tv := r.types[t]; tv != nil {
		return tv
	}
	return &TypeValue{Type: t, Name: t.String()}
}

var constantType = reflect.TypeOf((*constant.Value)(nil)).Elem()

// constantValue converts an untyped constant, as yaegi exports them, to the
// value it has when given its default type. Integers too large for int64
// become float64.
func constantValue(c constant.Value) Value {
	switch c.Kind() {
	case constant.Bool:
		return constant.BoolVal(c)
	case constant.String:
		return constant.StringVal(c)
	case constant.Int:
		if i, ok := constant.Int64Val(c); ok {
			return i
		}
	}
	f, _ := constant.Float64Val(constant.ToFloat(c))
	return f
}

// isTypeSymbol reports whether an exported symbol represents a type rather
// than a value.
func isTypeSymbol(v reflect.Value) bool {
	return v.Kind() == reflect.Ptr && v.IsNil() && !v.CanAddr()
}

// A Package is a registered namespace of host symbols. Scripts reach it
// through a type-resolution literal and read its symbols like a mapping.
type Package struct {
	// Path is the dotted path scripts use to name the package.
	Path string
	// Name is the package name.
	Name string

	symbols map[string]reflect.Value
	names   []string
	reg     *Registry
}

// Lookup returns the symbol named key: a TypeValue for types, a HostFunc for
// functions, and the current value of variables and constants.
func (p *Package) Lookup(key string) (Value, bool) {
	for _, name := range goNames(key) {
		v, ok := p.symbols[name]
		if !ok {
			continue
		}
		switch {
		case isTypeSymbol(v):
			return p.reg.types[v.Type().Elem()], true
		case v.Kind() == reflect.Func && !v.CanAddr():
			return &HostFunc{Name: p.Path + "." + name, Fn: v}, true
		case v.Type().Implements(constantType):
			return constantValue(v.Interface().(constant.Value)), true
		}
		return valueOf(v), true
	}
	return nil, false
}

// Store sets the package variable named key.
func (p *Package) Store(key string, x Value) error {
	for _, name := range goNames(key) {
		v, ok := p.symbols[name]
		if !ok {
			continue
		}
		if !v.CanSet() {
			return accessErrorf("cannot assign to %s.%s", p.Path, name)
		}
		c, ok := convert(nil, x, v.Type())
		if !ok {
			return accessErrorf("cannot assign %s to %s.%s of type %v", TypeName(x), p.Path, name, v.Type())
		}
		v.Set(c)
		return nil
	}
	return accessErrorf("no symbol %q in package %s", key, p.Path)
}

func (p *Package) String() string {
	return "." + p.Path
}

// typeNamed returns the registered type with the given name, or nil.
func (p *Package) typeNamed(name string) *TypeValue {
	v, ok := p.symbols[name]
	if !ok || !isTypeSymbol(v) {
		return nil
	}
	return p.reg.types[v.Type().Elem()]
}

// sortedNames returns the package's symbol names in order.
func (p *Package) sortedNames() []string {
	if p.names == nil {
		p.names = make([]string, 0, len(p.symbols))
		for name := range p.symbols {
			p.names = append(p.names, name)
		}
		sort.Strings(p.names)
	}
	return p.names
}

// TypeValue is a host type used as a value: the result of a type-resolution
// literal or of naming a nested type. Calling it constructs an instance.
type TypeValue struct {
	Type reflect.Type
	// Pkg is the package which registered the type, or nil.
	Pkg *Package
	// Name is the type's name within Pkg.
	Name string
}

func (tv *TypeValue) String() string {
	if tv.Pkg == nil {
		return tv.Name
	}
	return "." + tv.Pkg.Path + "." + tv.Name
}

// nested returns the type registered as a member of tv named seg.
func (tv *TypeValue) nested(seg string) *TypeValue {
	if tv.Pkg == nil {
		return nil
	}
	for _, name := range goNames(seg) {
		if t := tv.Pkg.typeNamed(tv.Name + "." + name); t != nil {
			return t
		}
	}
	return nil
}

// constructors lists the functions which construct tv, in the order they are
// tried: the package's New functions whose first result is the type or a
// pointer to it, sorted by name, then the zero-value constructor, then, for
// types other than structs, conversion from a compatible value.
func (tv *TypeValue) constructors() []reflect.Value {
	t := tv.Type
	var r []reflect.Value
	if tv.Pkg != nil {
		for _, name := range tv.Pkg.sortedNames() {
			v := tv.Pkg.symbols[name]
			if !strings.HasPrefix(name, "New") || v.Kind() != reflect.Func || v.CanAddr() {
				continue
			}
			ft := v.Type()
			if ft.NumOut() > 0 && (ft.Out(0) == t || ft.Out(0) == reflect.PtrTo(t)) {
				r = append(r, v)
			}
		}
	}
	if t.Kind() == reflect.Struct {
		ft := reflect.FuncOf(nil, []reflect.Type{reflect.PtrTo(t)}, false)
		r = append(r, reflect.MakeFunc(ft, func([]reflect.Value) []reflect.Value {
			return []reflect.Value{reflect.New(t)}
		}))
		return r
	}
	ft := reflect.FuncOf(nil, []reflect.Type{t}, false)
	r = append(r, reflect.MakeFunc(ft, func([]reflect.Value) []reflect.Value {
		return []reflect.Value{reflect.Zero(t)}
	}))
	ft = reflect.FuncOf([]reflect.Type{t}, []reflect.Type{t}, false)
	r = append(r, reflect.MakeFunc(ft, func(in []reflect.Value) []reflect.Value {
		return in
	}))
	return r
}

// goNames returns the Go identifiers a script name may refer to: the name
// itself and, if it starts in lower case, the exported spelling.
func goNames(name string) []string {
	r, n := utf8.DecodeRuneInString(name)
	if !unicode.IsLower(r) {
		return []string{name}
	}
	return []string{name, string(unicode.ToUpper(r)) + name[n:]}
}
