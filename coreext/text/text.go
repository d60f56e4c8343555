// Package text provides builtins converting between strings and bytes in
// various text encodings.
package text

import (
	"fmt"
	"strings"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/encoding/unicode/utf32"

	"github.com/zephyrtronium/cscript/internal"
)

func init() {
	internal.Register(initText)
}

func initText(env *internal.Env) {
	env.SetGlobals(internal.Bindings{
		"encode": internal.NewBuiltin("encode", encode),
		"decode": internal.NewBuiltin("decode", decode),
	})
}

// Encoding returns the encoding with the given name. Names are case
// insensitive. UTF-16 and UTF-32 are little endian unless the name ends in
// "be".
func Encoding(name string) (encoding.Encoding, error) {
	switch strings.ToLower(name) {
	case "utf8", "utf-8":
		return unicode.UTF8, nil
	case "ascii", "latin1", "windows1252":
		return charmap.Windows1252, nil
	case "iso8859-1":
		return charmap.ISO8859_1, nil
	case "utf16", "utf-16", "utf16le", "ucs2":
		return unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM), nil
	case "utf16be":
		return unicode.UTF16(unicode.BigEndian, unicode.IgnoreBOM), nil
	case "utf32", "utf-32", "utf32le", "ucs4":
		return utf32.UTF32(utf32.LittleEndian, utf32.IgnoreBOM), nil
	case "utf32be":
		return utf32.UTF32(utf32.BigEndian, utf32.IgnoreBOM), nil
	}
	return nil, fmt.Errorf("unsupported encoding %q", name)
}

// encode is a builtin.
//
// encode converts a string to bytes in the named encoding.
func encode(env *internal.Env, args []internal.Value) (internal.Value, internal.Stop, error) {
	if err := internal.CheckArgs("encode", args, 2); err != nil {
		return nil, internal.NoStop, err
	}
	s, err := internal.StringArg("encode", args, 0)
	if err != nil {
		return nil, internal.NoStop, err
	}
	enc, err := encodingArg("encode", args, 1)
	if err != nil {
		return nil, internal.NoStop, err
	}
	b, err := enc.NewEncoder().Bytes([]byte(s))
	if err != nil {
		return nil, internal.NoStop, &internal.TypeError{Msg: fmt.Sprintf("encode: %v", err)}
	}
	return b, internal.NoStop, nil
}

// decode is a builtin.
//
// decode converts bytes in the named encoding to a string. The bytes may be
// given as a byte slice, a string, or a list of integers.
func decode(env *internal.Env, args []internal.Value) (internal.Value, internal.Stop, error) {
	if err := internal.CheckArgs("decode", args, 2); err != nil {
		return nil, internal.NoStop, err
	}
	b, err := bytesArg("decode", args, 0)
	if err != nil {
		return nil, internal.NoStop, err
	}
	enc, err := encodingArg("decode", args, 1)
	if err != nil {
		return nil, internal.NoStop, err
	}
	r, err := enc.NewDecoder().Bytes(b)
	if err != nil {
		return nil, internal.NoStop, &internal.TypeError{Msg: fmt.Sprintf("decode: %v", err)}
	}
	return string(r), internal.NoStop, nil
}

func encodingArg(name string, args []internal.Value, i int) (encoding.Encoding, error) {
	s, err := internal.StringArg(name, args, i)
	if err != nil {
		return nil, err
	}
	enc, err := Encoding(s)
	if err != nil {
		return nil, &internal.TypeError{Msg: fmt.Sprintf("%s: %v", name, err)}
	}
	return enc, nil
}

func bytesArg(name string, args []internal.Value, i int) ([]byte, error) {
	switch v := args[i].(type) {
	case []byte:
		return v, nil
	case string:
		return []byte(v), nil
	case []internal.Value:
		b := make([]byte, len(v))
		for k, x := range v {
			switch x := x.(type) {
			case int32:
				b[k] = byte(x)
			case int64:
				b[k] = byte(x)
			case uint8:
				b[k] = x
			default:
				return nil, &internal.TypeError{Msg: fmt.Sprintf("%s: element %d is %s, not a byte", name, k, internal.TypeName(x))}
			}
		}
		return b, nil
	}
	return nil, &internal.TypeError{Msg: fmt.Sprintf("argument %d to %s must be bytes, not %s", i, name, internal.TypeName(args[i]))}
}
