// Package coreext installs every core extension. Import it for side effects.
package coreext

import (
	// importing for side effects
	_ "github.com/zephyrtronium/cscript/coreext/date"
	_ "github.com/zephyrtronium/cscript/coreext/gostd"
	_ "github.com/zephyrtronium/cscript/coreext/iter"
	_ "github.com/zephyrtronium/cscript/coreext/ops"
	_ "github.com/zephyrtronium/cscript/coreext/system"
	_ "github.com/zephyrtronium/cscript/coreext/text"
)
