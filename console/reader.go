package console

import (
	"bufio"
	"fmt"
	"io"

	"github.com/zephyrtronium/cscript/internal"
)

// Reader is a Console reading chunks from an io.Reader and printing to an
// io.Writer. A partial chunk at the end of input is still returned so that its
// parse error is reported.
type Reader struct {
	in   *bufio.Scanner
	out  io.Writer
	c    chunker
	next string
	done bool
	err  error
}

// NewReader creates a Reader console.
func NewReader(in io.Reader, out io.Writer) *Reader {
	return &Reader{in: bufio.NewScanner(in), out: out}
}

// HasNext reads lines until a chunk is complete or the input ends.
func (r *Reader) HasNext() bool {
	if r.next != "" {
		return true
	}
	for !r.done {
		if !r.in.Scan() {
			r.done = true
			r.err = r.in.Err()
			if r.c.pending() {
				r.next = r.c.flush()
				return true
			}
			return false
		}
		if src, ok := r.c.add(r.in.Text()); ok {
			r.next = src
			return true
		}
	}
	return false
}

// Next returns the chunk HasNext found.
func (r *Reader) Next() string {
	s := r.next
	r.next = ""
	return s
}

// Print writes the display form of v on its own line.
func (r *Reader) Print(v internal.Value) {
	fmt.Fprintln(r.out, internal.Display(v))
}

// Close returns any error encountered reading input.
func (r *Reader) Close() error {
	return r.err
}
