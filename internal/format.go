package internal

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"
)

// Display renders v on one line the way consoles print results. Strings and
// characters appear bare at the top level and quoted within containers.
func Display(v Value) string {
	switch v := v.(type) {
	case string:
		return v
	case Char:
		return string(v)
	}
	b := strings.Builder{}
	writeValue(&b, v)
	return b.String()
}

func writeValue(b *strings.Builder, v Value) {
	switch v := v.(type) {
	case nil:
		b.WriteString("null")
	case string:
		b.WriteString(strconv.Quote(v))
	case Char:
		b.WriteString(strconv.QuoteRune(rune(v)))
	case float32:
		b.WriteString(strconv.FormatFloat(float64(v), 'g', -1, 32))
	case float64:
		b.WriteString(strconv.FormatFloat(v, 'g', -1, 64))
	case []Value:
		b.WriteByte('[')
		for i, e := range v {
			if i > 0 {
				b.WriteString(", ")
			}
			writeValue(b, e)
		}
		b.WriteByte(']')
	case *Frame:
		b.WriteString("dict{")
		for i, k := range v.Keys() {
			if i > 0 {
				b.WriteString(", ")
			}
			b.WriteString(k)
			b.WriteString(": ")
			e, _ := v.Lookup(k)
			if e == v {
				b.WriteString("...")
				continue
			}
			writeValue(b, e)
		}
		b.WriteByte('}')
	case *FunctionLiteral, *Builtin, *HostFunc, *BoundMethod, *TypeValue, *Package:
		fmt.Fprintf(b, "<%s %v>", kindOf(v), v)
	case error:
		b.WriteString(v.Error())
	case fmt.Stringer:
		b.WriteString(v.String())
	default:
		if rv := reflect.ValueOf(v); rv.Kind() == reflect.Ptr && !rv.IsNil() && rv.Elem().Kind() == reflect.Struct {
			fmt.Fprintf(b, "&%+v", rv.Elem().Interface())
			return
		}
		fmt.Fprint(b, v)
	}
}

func kindOf(v Value) string {
	switch v.(type) {
	case *FunctionLiteral:
		return "closure"
	case *Builtin:
		return "builtin"
	case *HostFunc:
		return "function"
	case *BoundMethod:
		return "method"
	case *TypeValue:
		return "type"
	}
	return "package"
}
