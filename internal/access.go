package internal

import (
	"reflect"
	"unsafe"

	"github.com/zephyrtronium/contains"
)

// walk resolves each segment of path in turn, starting from root. Method
// references are allowed only for the final segment and only if methods is
// true.
func (env *Env) walk(root Value, path []string, methods bool) (Value, error) {
	cur := root
	for i, seg := range path {
		v, err := env.step(cur, seg, methods && i == len(path)-1)
		if err != nil {
			return nil, err
		}
		cur = v
	}
	return cur, nil
}

// step resolves one property of cur. In order, it tries key lookup on
// mappings, members of types, exported fields, methods if allowed, and then
// the embedding hierarchy for nested types and unexported fields.
func (env *Env) step(cur Value, seg string, methods bool) (Value, error) {
	switch c := cur.(type) {
	case nil:
		return nil, accessErrorf("cannot access property %q on a null value", seg)
	case Mapping:
		if v, ok := c.Lookup(seg); ok {
			return v, nil
		}
		return nil, accessErrorf("no property %q in %s", seg, TypeName(cur))
	case *TypeValue:
		return env.typeMember(c, seg, methods)
	}
	rv := reflect.ValueOf(cur)
	if rv.Kind() == reflect.Map && rv.Type().Key().Kind() == reflect.String {
		e := rv.MapIndex(reflect.ValueOf(seg).Convert(rv.Type().Key()))
		if !e.IsValid() {
			return nil, accessErrorf("no property %q in %s", seg, TypeName(cur))
		}
		return valueOf(e), nil
	}
	if f, ok := exportedField(rv, seg); ok {
		return valueOf(f), nil
	}
	if methods && len(methodsOf(rv, seg)) > 0 {
		return &BoundMethod{Recv: cur, Name: seg}, nil
	}
	if t := env.Types.TypeOf(indirectType(rv.Type())).nested(seg); t != nil {
		return t, nil
	}
	if f, ok := hiddenField(rv, seg); ok {
		return valueOf(f), nil
	}
	return nil, accessErrorf("no property %q on %s", seg, TypeName(cur))
}

// typeMember resolves a property of a type used as a value: a nested type or
// a method expression. Fields of instances cannot be read through the type.
func (env *Env) typeMember(tv *TypeValue, seg string, methods bool) (Value, error) {
	if t := tv.nested(seg); t != nil {
		return t, nil
	}
	if methods && len(methodExprs(tv.Type, seg)) > 0 {
		return &BoundMethod{Recv: tv, Name: seg}, nil
	}
	if st := indirectType(tv.Type); st.Kind() == reflect.Struct {
		for _, name := range goNames(seg) {
			if _, ok := st.FieldByName(name); ok {
				return nil, accessErrorf("cannot read field %q of %s without an instance", seg, tv)
			}
		}
	}
	return nil, accessErrorf("no member %q in type %s", seg, tv)
}

// assign sets the property seg of container to v.
func (env *Env) assign(container Value, seg string, v Value) error {
	switch c := container.(type) {
	case nil:
		return accessErrorf("cannot assign property %q on a null value", seg)
	case Mapping:
		return c.Store(seg, v)
	case *TypeValue:
		return accessErrorf("cannot assign %q on type %s", seg, c)
	}
	rv := reflect.ValueOf(container)
	if rv.Kind() == reflect.Map && rv.Type().Key().Kind() == reflect.String {
		x, ok := convert(env, v, rv.Type().Elem())
		if !ok {
			return accessErrorf("cannot store %s in %s", TypeName(v), TypeName(container))
		}
		if rv.IsNil() {
			return accessErrorf("cannot assign property %q on a nil map", seg)
		}
		rv.SetMapIndex(reflect.ValueOf(seg).Convert(rv.Type().Key()), x)
		return nil
	}
	if s, ok := structOf(rv); !ok || !s.CanAddr() {
		return accessErrorf("no settable field %q on %s", seg, TypeName(container))
	}
	f, ok := exportedField(rv, seg)
	if !ok {
		f, ok = hiddenField(rv, seg)
	}
	if !ok || !f.CanSet() {
		return accessErrorf("no settable field %q on %s", seg, TypeName(container))
	}
	x, ok := convert(env, v, f.Type())
	if !ok {
		return accessErrorf("cannot assign %s to field %q of type %v", TypeName(v), seg, f.Type())
	}
	f.Set(x)
	return nil
}

// indirectType strips pointers from t.
func indirectType(t reflect.Type) reflect.Type {
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	return t
}

// structOf dereferences rv to a struct, if it is one. The result is
// addressable when rv is a pointer.
func structOf(rv reflect.Value) (reflect.Value, bool) {
	for rv.Kind() == reflect.Ptr || rv.Kind() == reflect.Interface {
		if rv.IsNil() {
			return reflect.Value{}, false
		}
		rv = rv.Elem()
	}
	return rv, rv.Kind() == reflect.Struct
}

// addressable returns s itself if it is addressable, or else an addressable
// copy of it.
func addressable(s reflect.Value) reflect.Value {
	if s.CanAddr() {
		return s
	}
	c := reflect.New(s.Type()).Elem()
	c.Set(s)
	return c
}

// elevate grants full access to an addressable field reached through an
// unexported field.
func elevate(f reflect.Value) reflect.Value {
	if f.CanInterface() || !f.CanAddr() {
		return f
	}
	return reflect.NewAt(f.Type(), unsafe.Pointer(f.UnsafeAddr())).Elem()
}

// exportedField finds an exported field, including promoted fields.
func exportedField(rv reflect.Value, seg string) (reflect.Value, bool) {
	s, ok := structOf(rv)
	if !ok {
		return reflect.Value{}, false
	}
	s = addressable(s)
	for _, name := range goNames(seg) {
		sf, ok := s.Type().FieldByName(name)
		if !ok || sf.PkgPath != "" {
			continue
		}
		f, err := s.FieldByIndexErr(sf.Index)
		if err != nil {
			// Promoted through a nil embedded pointer.
			return reflect.Value{}, false
		}
		return elevate(f), true
	}
	return reflect.Value{}, false
}

// hiddenField finds an unexported field named seg by walking the struct and
// its embedded structs, breadth first, and elevates access to it. A struct
// which is not addressable is searched through a copy.
func hiddenField(rv reflect.Value, seg string) (reflect.Value, bool) {
	s, ok := structOf(rv)
	if !ok {
		return reflect.Value{}, false
	}
	s = addressable(s)
	seen := contains.Set{}
	queue := []reflect.Value{s}
	for len(queue) > 0 {
		s := queue[0]
		queue = queue[1:]
		if !seen.Add(typeID(s.Type())) {
			continue
		}
		for i := 0; i < s.NumField(); i++ {
			sf := s.Type().Field(i)
			f := s.Field(i)
			if sf.Name == seg {
				return elevate(f), true
			}
			if sf.Anonymous {
				if e, ok := structOf(f); ok && e.CanAddr() {
					queue = append(queue, e)
				}
			}
		}
	}
	return reflect.Value{}, false
}

// typeID identifies a type for visited sets.
func typeID(t reflect.Type) uintptr {
	return reflect.ValueOf(t).Pointer()
}

// methodsOf returns the methods of rv which seg may name. Methods with
// pointer receivers are found on a copy when rv is not a pointer.
func methodsOf(rv reflect.Value, seg string) []reflect.Value {
	var r []reflect.Value
	for _, name := range goNames(seg) {
		if m := rv.MethodByName(name); m.IsValid() {
			r = append(r, m)
			continue
		}
		if rv.Kind() != reflect.Ptr && rv.Kind() != reflect.Interface {
			p := reflect.New(rv.Type())
			p.Elem().Set(rv)
			if m := p.MethodByName(name); m.IsValid() {
				r = append(r, m)
			}
		}
	}
	return r
}

// methodExprs returns the method expressions of t which seg may name. Each
// takes the receiver as its first argument.
func methodExprs(t reflect.Type, seg string) []reflect.Value {
	if t.Kind() == reflect.Interface {
		return nil
	}
	var r []reflect.Value
	for _, name := range goNames(seg) {
		if m, ok := t.MethodByName(name); ok {
			r = append(r, m.Func)
		}
		if t.Kind() != reflect.Ptr {
			if m, ok := reflect.PtrTo(t).MethodByName(name); ok {
				r = append(r, m.Func)
			}
		}
	}
	return r
}
