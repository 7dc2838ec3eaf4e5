// Package session defines the interfaces the front-end uses to create and
// drive script interpreters, independent of how they are implemented.
package session

import (
	"context"
	"io"

	"github.com/vk/gmicli/internal/ctxlog"
	"github.com/vk/gmicli/internal/interp"
)

// Interpreter runs scripts against an item list.
type Interpreter interface {
	AddCommands(src []byte, filename string) error
	SetVariable(name, value string)
	Verbosity() int
	SetVerbosity(level int)
	SetOutput(w io.Writer)
	Run(ctx context.Context, script string, list *interp.List) error
}

// Factory creates interpreters that know only the built-in vocabulary.
type Factory interface {
	NewInterpreter(ctx context.Context, out io.Writer) (Interpreter, error)
	// Stdlib returns the built-in definition source.
	Stdlib() []byte
}

// Session holds the main interpreter of a run and the streams it reports to.
type Session struct {
	Interpreter Interpreter
	Factory     Factory
	// Stdout receives help output.
	Stdout io.Writer
	// Diag receives messages, warnings and error reports.
	Diag io.Writer
}

// New creates a session whose main interpreter writes to diag.
func New(ctx context.Context, f Factory, stdout, diag io.Writer) (*Session, error) {
	it, err := f.NewInterpreter(ctx, diag)
	if err != nil {
		return nil, err
	}
	ctxlog.FromContext(ctx).Debug("Session created.")
	return &Session{Interpreter: it, Factory: f, Stdout: stdout, Diag: diag}, nil
}

// Fresh returns a new built-in-only interpreter writing to out, together with
// an item list holding the built-in definitions.
func (s *Session) Fresh(ctx context.Context, out io.Writer) (Interpreter, *interp.List, error) {
	it, err := s.Factory.NewInterpreter(ctx, out)
	if err != nil {
		return nil, nil, err
	}
	list := &interp.List{}
	list.Append(interp.Item{Name: interp.StdlibName, Data: s.Factory.Stdlib()})
	return it, list, nil
}
