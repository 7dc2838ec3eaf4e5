package testutil

import (
	"context"
	"io"
	"sync"

	"github.com/vk/gmicli/internal/interp"
	"github.com/vk/gmicli/internal/session"
)

// Call records one Run of a FakeInterpreter.
type Call struct {
	Script    string
	Verbosity int
	// Items are the names of the list items at the time of the call.
	Items []string
	// Data is the content of the list items at the time of the call.
	Data [][]byte
	Out  io.Writer
}

// FakeInterpreter implements session.Interpreter and records what it is
// asked to do. RunFunc and AddFunc script the outcomes.
type FakeInterpreter struct {
	mu        sync.Mutex
	out       io.Writer
	verbosity int

	Vars    map[string]string
	Added   []string
	Calls   []Call
	RunFunc func(script string, list *interp.List) error
	AddFunc func(src []byte, filename string) error
}

var _ session.Interpreter = (*FakeInterpreter)(nil)

// NewFakeInterpreter returns a fake whose runs and registrations succeed.
func NewFakeInterpreter(out io.Writer) *FakeInterpreter {
	return &FakeInterpreter{out: out, Vars: make(map[string]string)}
}

func (f *FakeInterpreter) AddCommands(src []byte, filename string) error {
	f.mu.Lock()
	f.Added = append(f.Added, filename)
	fn := f.AddFunc
	f.mu.Unlock()
	if fn != nil {
		return fn(src, filename)
	}
	return nil
}

func (f *FakeInterpreter) SetVariable(name, value string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Vars[name] = value
}

func (f *FakeInterpreter) Verbosity() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.verbosity
}

func (f *FakeInterpreter) SetVerbosity(level int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.verbosity = level
}

func (f *FakeInterpreter) SetOutput(w io.Writer) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.out = w
}

// Output returns the current output writer.
func (f *FakeInterpreter) Output() io.Writer {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.out
}

func (f *FakeInterpreter) Run(_ context.Context, script string, list *interp.List) error {
	f.mu.Lock()
	call := Call{Script: script, Verbosity: f.verbosity, Out: f.out}
	if list != nil {
		call.Items = list.Names()
		for _, item := range list.Items {
			call.Data = append(call.Data, item.Data)
		}
	}
	f.Calls = append(f.Calls, call)
	fn := f.RunFunc
	f.mu.Unlock()
	if fn != nil {
		return fn(script, list)
	}
	return nil
}

// FakeFactory implements session.Factory with FakeInterpreters.
type FakeFactory struct {
	mu sync.Mutex
	// Created lists every interpreter handed out, in order.
	Created []*FakeInterpreter
	// Configure, when set, is applied to each new interpreter.
	Configure func(n int, it *FakeInterpreter)
	// Err makes NewInterpreter fail.
	Err        error
	StdlibData []byte
}

var _ session.Factory = (*FakeFactory)(nil)

func (f *FakeFactory) NewInterpreter(_ context.Context, out io.Writer) (session.Interpreter, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.Err != nil {
		return nil, f.Err
	}
	it := NewFakeInterpreter(out)
	if f.Configure != nil {
		f.Configure(len(f.Created), it)
	}
	f.Created = append(f.Created, it)
	return it, nil
}

func (f *FakeFactory) Stdlib() []byte {
	if f.StdlibData == nil {
		return []byte("#@gmic\n")
	}
	return f.StdlibData
}
