// Package system provides builtins describing the host process and platform.
package system

import (
	"os"
	"runtime"

	"github.com/google/uuid"

	"github.com/zephyrtronium/cscript/internal"
)

// platformVersion describes the running kernel where the platform can report
// it.
var platformVersion = unameVersion()

func init() {
	internal.Register(initSystem)
}

func initSystem(env *internal.Env) {
	env.SetGlobals(internal.Bindings{
		"platform":        runtime.GOOS,
		"platformVersion": platformVersion,
		"arch":            runtime.GOARCH,
		"goVersion":       runtime.Version(),
		"pid":             int64(os.Getpid()),
		"getEnv":          internal.NewBuiltin("getEnv", getEnv),
		"uuid":            internal.NewBuiltin("uuid", newUUID),
	})
}

// getEnv is a builtin.
//
// getEnv returns the value of an environment variable, or null if it is not
// set.
func getEnv(env *internal.Env, args []internal.Value) (internal.Value, internal.Stop, error) {
	if err := internal.CheckArgs("getEnv", args, 1); err != nil {
		return nil, internal.NoStop, err
	}
	name, err := internal.StringArg("getEnv", args, 0)
	if err != nil {
		return nil, internal.NoStop, err
	}
	v, ok := os.LookupEnv(name)
	if !ok {
		return nil, internal.NoStop, nil
	}
	return v, internal.NoStop, nil
}

// newUUID is a builtin.
//
// uuid returns a new random UUID as a string.
func newUUID(env *internal.Env, args []internal.Value) (internal.Value, internal.Stop, error) {
	if err := internal.CheckArgs("uuid", args, 0); err != nil {
		return nil, internal.NoStop, err
	}
	return uuid.NewString(), internal.NoStop, nil
}
