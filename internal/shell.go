package internal

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// DoString parses and evaluates a source chunk. The result is the value of the
// last statement. A return at the top level ends the chunk early with its
// value, and the returned Stop is ReturnStop. If the chunk does not parse,
// nothing in it is evaluated.
func (env *Env) DoString(src string) (Value, Stop, error) {
	stmts, err := Parse(src)
	if err != nil {
		return nil, NoStop, err
	}
	return env.Run(stmts)
}

// Run evaluates parsed statements in order. Any panic escaping host code is
// recovered into a HostFault.
func (env *Env) Run(stmts []Node) (result Value, stop Stop, err error) {
	defer func() {
		if r := recover(); r != nil {
			e, ok := r.(error)
			if !ok {
				e = fmt.Errorf("%v", r)
			}
			result, stop, err = nil, NoStop, &HostFault{Category: "panic", Err: e}
		}
	}()
	for _, stmt := range stmts {
		result, stop, err = stmt.Eval(env)
		if err != nil {
			return nil, NoStop, err
		}
		if stop != NoStop {
			return result, stop, nil
		}
	}
	return result, NoStop, nil
}

// Console is the line-oriented device a Shell reads chunks from and prints
// to. Deciding where one chunk ends and the next begins is the console's
// concern.
type Console interface {
	// Print displays a value.
	Print(v Value)
	// Next returns the next source chunk.
	Next() string
	// HasNext reports whether another chunk is available. It may block.
	HasNext() bool
	// Close releases the console.
	Close() error
}

// Shell couples an Env with a Console as a read-eval-print loop. The global
// scope persists across every chunk a Shell evaluates. A Shell must be driven
// by one goroutine at a time.
type Shell struct {
	Env     *Env
	Console Console
	Log     logrus.FieldLogger
	// ID identifies the shell's session in logs and to scripts.
	ID uuid.UUID
}

// NewShell creates a Shell with a fresh Env. If log is nil, the standard
// logrus logger is used.
func NewShell(c Console, log logrus.FieldLogger) *Shell {
	if log == nil {
		log = logrus.StandardLogger()
	}
	id := uuid.New()
	s := &Shell{
		Env:     NewEnv(),
		Console: c,
		Log:     log.WithField("session", id.String()),
		ID:      id,
	}
	s.Env.Log = s.Log
	s.Env.SetGlobals(Bindings{
		"print":   NewBuiltin("print", s.print),
		"session": id.String(),
	})
	return s
}

// print is a builtin.
//
// print writes each argument to the console.
func (s *Shell) print(env *Env, args []Value) (Value, Stop, error) {
	for _, arg := range args {
		s.Console.Print(arg)
	}
	return nil, NoStop, nil
}

// Eval evaluates a source chunk and returns the value of its last statement
// or its top-level return.
func (s *Shell) Eval(src string) (Value, error) {
	s.Log.WithField("bytes", len(src)).Debug("evaluating chunk")
	v, _, err := s.Env.DoString(src)
	if n := s.Env.Depth(); n != 0 {
		// Every call pops its own frame, even on errors.
		s.Log.WithField("depth", n).Error("frames left on the stack after evaluation")
	}
	return v, err
}

// Run reads, evaluates, and prints chunks until the console is exhausted,
// then closes it. Errors are reported and do not stop the loop. A chunk
// producing no value prints nothing.
func (s *Shell) Run() error {
	s.Log.Info("shell started")
	for s.Console.HasNext() {
		v, err := s.Eval(s.Console.Next())
		if err != nil {
			s.Report(err)
			continue
		}
		if v != nil {
			s.Console.Print(v)
		}
	}
	s.Log.Info("shell finished")
	return s.Console.Close()
}

// Report prints an error line for err. Script errors print as their kind and
// message; anything else is reported as unexpected.
func (s *Shell) Report(err error) {
	if IsScriptError(err) {
		s.Log.WithError(err).Debug("script error")
		s.Console.Print(ErrorKind(err) + ": " + err.Error())
		return
	}
	s.Log.WithError(err).Warn("unexpected fault")
	s.Console.Print("unexpected " + ErrorKind(err) + ": " + err.Error())
}
