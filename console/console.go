// Package console provides Consoles for Shells: a plain reader for pipes and
// script files, a line-editing terminal, and a websocket transport for remote
// debugging. Each gathers lines into chunks by parsing what it has read so far
// and reading more while the parser reports that the input ended early.
package console

import (
	"errors"
	"strings"

	"github.com/zephyrtronium/cscript/internal"
)

// Complete reports whether src is ready to evaluate: it parses, or it has an
// error that more input cannot fix.
func Complete(src string) bool {
	_, err := internal.Parse(src)
	var pe *internal.ParseError
	return !errors.As(err, &pe) || !pe.Incomplete
}

// chunker accumulates lines until they form a complete chunk.
type chunker struct {
	b strings.Builder
}

// add appends a line. If the accumulated source is complete, add returns it
// and resets.
func (c *chunker) add(line string) (string, bool) {
	if c.b.Len() > 0 {
		c.b.WriteByte('\n')
	}
	c.b.WriteString(line)
	src := c.b.String()
	if strings.TrimSpace(src) == "" {
		c.b.Reset()
		return "", false
	}
	if !Complete(src) {
		return "", false
	}
	c.b.Reset()
	return src, true
}

// pending reports whether a partial chunk has been read.
func (c *chunker) pending() bool {
	return c.b.Len() > 0
}

// flush returns whatever partial chunk remains.
func (c *chunker) flush() string {
	s := c.b.String()
	c.b.Reset()
	return s
}
