// Package date provides clock and calendar builtins.
package date

import (
	"time"

	"github.com/zephyrtronium/cscript/internal"

	"gitlab.com/variadico/lctime"
)

// DefaultFormat is the strftime format used when none is given.
const DefaultFormat = "%Y-%m-%d %H:%M:%S %Z"

func init() {
	internal.Register(initDate)
}

func initDate(env *internal.Env) {
	start := time.Now()
	env.SetGlobals(internal.Bindings{
		"now":      internal.NewBuiltin("now", now),
		"strftime": internal.NewBuiltin("strftime", strftime),
		"clock": internal.NewBuiltin("clock", func(env *internal.Env, args []internal.Value) (internal.Value, internal.Stop, error) {
			if err := internal.CheckArgs("clock", args, 0); err != nil {
				return nil, internal.NoStop, err
			}
			return time.Since(start).Seconds(), internal.NoStop, nil
		}),
	})
}

// ArgAt returns args[n] as a time.Time, or a TypeError if it is not one.
func ArgAt(name string, args []internal.Value, n int) (time.Time, error) {
	switch d := args[n].(type) {
	case time.Time:
		return d, nil
	case *time.Time:
		if d != nil {
			return *d, nil
		}
	}
	return time.Time{}, &internal.TypeError{Msg: "argument to " + name + " must be a time, not " + internal.TypeName(args[n])}
}

// now is a builtin.
//
// now returns the current local time.
func now(env *internal.Env, args []internal.Value) (internal.Value, internal.Stop, error) {
	if err := internal.CheckArgs("now", args, 0); err != nil {
		return nil, internal.NoStop, err
	}
	return time.Now(), internal.NoStop, nil
}

// strftime is a builtin.
//
// strftime formats a time using ANSI C datetime directives. With one argument,
// the format is DefaultFormat. See https://godoc.org/github.com/variadico/lctime
// for the full list of supported directives.
func strftime(env *internal.Env, args []internal.Value) (internal.Value, internal.Stop, error) {
	if err := internal.CheckArgRange("strftime", args, 1, 2); err != nil {
		return nil, internal.NoStop, err
	}
	d, err := ArgAt("strftime", args, len(args)-1)
	if err != nil {
		return nil, internal.NoStop, err
	}
	format := DefaultFormat
	if len(args) == 2 {
		format, err = internal.StringArg("strftime", args, 0)
		if err != nil {
			return nil, internal.NoStop, err
		}
	}
	return lctime.Strftime(format, d), internal.NoStop, nil
}
