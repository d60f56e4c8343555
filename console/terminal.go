package console

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/peterh/liner"

	"github.com/zephyrtronium/cscript/internal"
)

// Terminal is an interactive Console with line editing and history.
type Terminal struct {
	ln      *liner.State
	cfg     *Config
	next    string
	done    bool
	history string
}

// NewTerminal takes over the terminal. History is loaded from cfg.History if
// it is set and saved there on Close.
func NewTerminal(cfg *Config) *Terminal {
	ln := liner.NewLiner()
	ln.SetCtrlCAborts(true)
	t := &Terminal{ln: ln, cfg: cfg, history: expandHome(cfg.History)}
	if t.history != "" {
		if f, err := os.Open(t.history); err == nil {
			ln.ReadHistory(f)
			f.Close()
		}
	}
	return t
}

// HasNext prompts for lines until a chunk is complete. Interrupting abandons
// the partial chunk; end of input ends the session.
func (t *Terminal) HasNext() bool {
	if t.next != "" {
		return true
	}
	var c chunker
	for !t.done {
		prompt := t.cfg.Prompt
		if c.pending() {
			prompt = t.cfg.Continue
		}
		line, err := t.ln.Prompt(prompt)
		switch {
		case errors.Is(err, io.EOF):
			t.done = true
			fmt.Println()
			return false
		case errors.Is(err, liner.ErrPromptAborted):
			c.flush()
			continue
		case err != nil:
			t.done = true
			return false
		}
		if src, ok := c.add(line); ok {
			t.ln.AppendHistory(strings.ReplaceAll(src, "\n", " "))
			t.next = src
			return true
		}
	}
	return false
}

// Next returns the chunk HasNext read.
func (t *Terminal) Next() string {
	s := t.next
	t.next = ""
	return s
}

// Print writes the display form of v on its own line.
func (t *Terminal) Print(v internal.Value) {
	fmt.Println(internal.Display(v))
}

// Close saves history and restores the terminal.
func (t *Terminal) Close() error {
	var err error
	if t.history != "" {
		var f *os.File
		if f, err = os.Create(t.history); err == nil {
			_, err = t.ln.WriteHistory(f)
			if cerr := f.Close(); err == nil {
				err = cerr
			}
		}
	}
	if cerr := t.ln.Close(); err == nil {
		err = cerr
	}
	return err
}
