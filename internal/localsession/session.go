// Package localsession provides the in-process implementation of
// session.Factory backed by the interp package.
package localsession

import (
	"context"
	"io"

	"github.com/vk/gmicli/internal/console"
	"github.com/vk/gmicli/internal/ctxlog"
	"github.com/vk/gmicli/internal/interp"
	"github.com/vk/gmicli/internal/session"
)

// Factory implements session.Factory for local runs.
type Factory struct{}

// NewFactory returns a local interpreter factory.
func NewFactory() *Factory {
	return &Factory{}
}

// NewInterpreter creates an interpreter with the standard library
// registered. Its writes to out are serialized with the console lock.
func (f *Factory) NewInterpreter(ctx context.Context, out io.Writer) (session.Interpreter, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("localsession.Factory.NewInterpreter called")
	return &Interpreter{
		Interpreter: interp.New(interp.WithOutput(console.NewStream(out)), interp.WithLogger(logger)),
	}, nil
}

// Stdlib returns the embedded standard library.
func (f *Factory) Stdlib() []byte {
	return interp.Stdlib()
}

// Interpreter adapts *interp.Interpreter to session.Interpreter.
type Interpreter struct {
	*interp.Interpreter
}

// SetOutput wraps w in a console stream before handing it over.
func (i *Interpreter) SetOutput(w io.Writer) {
	i.Interpreter.SetOutput(console.NewStream(w))
}
