// Package gostd makes the Go standard library resolvable by type resolution,
// using the symbol tables yaegi generates for it. For example, .strings.Builder
// names strings.Builder and .time.Now names time.Now.
package gostd

import (
	"fmt"

	"github.com/traefik/yaegi/stdlib"

	"github.com/zephyrtronium/cscript/internal"
)

func init() {
	internal.Register(initGoStd)
}

func initGoStd(env *internal.Env) {
	if err := env.Types.Use(stdlib.Symbols); err != nil {
		panic(fmt.Errorf("cscript: registering standard library: %w", err))
	}
}
