package interp

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/vk/gmicli/internal/argscan"
)

// maxDepth bounds nested command calls and local blocks.
const maxDepth = 64

// Interpreter runs scripts. It is not safe for concurrent use.
type Interpreter struct {
	out       io.Writer
	logger    *slog.Logger
	verbosity int
	debug     bool
	vars      map[string]string
	commands  map[string]*Command
}

// Option configures an Interpreter.
type Option func(*Interpreter)

// WithOutput sets where messages, warnings and help text are written.
func WithOutput(w io.Writer) Option {
	return func(it *Interpreter) { it.out = w }
}

// WithLogger sets the logger used for tracing.
func WithLogger(l *slog.Logger) Option {
	return func(it *Interpreter) { it.logger = l }
}

// New returns an interpreter with the standard library registered.
func New(opts ...Option) *Interpreter {
	it := &Interpreter{
		out:      io.Discard,
		logger:   slog.New(slog.DiscardHandler),
		vars:     make(map[string]string),
		commands: make(map[string]*Command),
	}
	for _, opt := range opts {
		opt(it)
	}
	if err := it.AddCommands(Stdlib(), StdlibName); err != nil {
		panic(fmt.Errorf("embedded standard library is invalid: %w", err))
	}
	return it
}

// SetOutput redirects messages and help text.
func (it *Interpreter) SetOutput(w io.Writer) {
	it.out = w
}

// Verbosity returns the current verbosity level.
func (it *Interpreter) Verbosity() int {
	return it.verbosity
}

// SetVerbosity sets the verbosity level. Negative levels silence messages.
func (it *Interpreter) SetVerbosity(level int) {
	it.verbosity = level
}

// SetVariable defines a variable visible to scripts as $name.
func (it *Interpreter) SetVariable(name, value string) {
	it.vars[name] = value
}

// Variable returns the value of a variable.
func (it *Interpreter) Variable(name string) (string, bool) {
	v, ok := it.vars[name]
	return v, ok
}

// Lookup returns a registered user-defined command.
func (it *Interpreter) Lookup(name string) (*Command, bool) {
	c, ok := it.commands[name]
	return c, ok
}

// AddCommands parses src and registers its commands. Later definitions
// replace earlier ones with the same name. Nothing is registered when the
// source is invalid.
func (it *Interpreter) AddCommands(src []byte, filename string) error {
	cmds, err := ParseDefinitions(src, filename)
	if err != nil {
		return commandError("command", "%v.", err)
	}
	for _, c := range cmds {
		it.commands[c.Name] = c
	}
	it.logger.Debug("Registered command definitions.", "source", filename, "count", len(cmds))
	return nil
}

// Run executes script against list. A nil list is treated as empty.
// Structured failures are returned as *Error and, when the verbosity is not
// negative, also printed on the output.
func (it *Interpreter) Run(ctx context.Context, script string, list *List) error {
	if list == nil {
		list = &List{}
	}
	_, err := it.exec(ctx, tokenize(script), list, 0, "")
	var ie *Error
	if errors.As(err, &ie) && it.verbosity >= 0 {
		fmt.Fprintf(it.out, "[gmic] *** Error *** %s\n", ie.Message)
	}
	return err
}

// exec runs toks and reports whether the script asked to quit.
func (it *Interpreter) exec(ctx context.Context, toks []string, list *List, depth int, caller string) (bool, error) {
	if depth > maxDepth {
		return false, &Error{Message: "Maximum recursion depth reached.", Command: caller}
	}

	for i := 0; i < len(toks); i++ {
		if err := ctx.Err(); err != nil {
			return false, err
		}

		tok := expandVariables(toks[i], it.vars)
		name, selection, hasSelection := splitCommand(tok)

		switch name {
		case "l", "local":
			onfail, end, err := it.findBlock(toks, i+1)
			if err != nil {
				return false, err
			}
			body, handler := toks[i+1:end], []string(nil)
			if onfail >= 0 {
				body, handler = toks[i+1:onfail], toks[onfail+1:end]
			}
			quit, err := it.local(ctx, body, handler, selection, hasSelection, list, depth, caller)
			if err != nil || quit {
				return quit, err
			}
			i = end
			continue
		case "onfail", "endl", "endlocal", "done":
			return false, commandError(name, "Not associated to a 'local' command.")
		}

		if cmd, ok := it.commands[name]; ok {
			arg := ""
			if cmd.TakesArgument() && i+1 < len(toks) {
				i++
				arg = expandVariables(toks[i], it.vars)
			}
			if it.debug {
				it.logger.Debug("Calling command.", "command", name, "argument", arg)
			}
			quit, err := it.exec(ctx, tokenize(expandPositional(cmd.Body, arg)), list, depth+1, name)
			if err != nil || quit {
				return quit, err
			}
			continue
		}

		if b, ok := lookupBuiltin(name); ok {
			arg := ""
			if b.hasArg && i+1 < len(toks) {
				i++
				arg = expandVariables(toks[i], it.vars)
			}
			if it.debug {
				it.logger.Debug("Calling built-in command.", "command", b.name, "argument", arg)
			}
			quit, err := b.run(ctx, it, arg, list, caller)
			if err != nil || quit {
				return quit, err
			}
			continue
		}

		if m := assignment.FindStringSubmatch(tok); m != nil {
			it.vars[m[1]] = m[2]
			continue
		}

		if strings.EqualFold(argscan.Extension(tok), "gmic") {
			if _, err := os.Stat(tok); err == nil {
				if _, err := importFile(ctx, it, tok, list, caller); err != nil {
					return false, err
				}
				continue
			}
		}

		return false, &Error{Message: fmt.Sprintf("Unknown command or filename '%s'.", tok)}
	}
	return false, nil
}

// findBlock locates the optional onfail and the closing endl of the local
// block whose body starts at start. Arguments of commands are skipped so a
// quoted "endl" passed to echo does not close the block.
func (it *Interpreter) findBlock(toks []string, start int) (onfail, end int, err error) {
	onfail, nested := -1, 0
	for i := start; i < len(toks); i++ {
		name, _, _ := splitCommand(toks[i])
		switch name {
		case "l", "local":
			nested++
		case "endl", "endlocal", "done":
			if nested == 0 {
				return onfail, i, nil
			}
			nested--
		case "onfail":
			if nested == 0 && onfail < 0 {
				onfail = i
			}
		default:
			if it.takesArgument(name) {
				i++
			}
		}
	}
	return -1, -1, commandError("local", "Missing associated 'endl' command.")
}

func (it *Interpreter) takesArgument(name string) bool {
	if c, ok := it.commands[name]; ok {
		return c.TakesArgument()
	}
	if b, ok := lookupBuiltin(name); ok {
		return b.hasArg
	}
	return false
}

// local runs body in a local environment. With an empty selection ("l[]")
// the body works on a fresh list whose items are appended to list at the
// end. A structured failure in body runs handler instead of propagating.
func (it *Interpreter) local(ctx context.Context, body, handler []string, selection string, hasSelection bool, list *List, depth int, caller string) (bool, error) {
	target := list
	if hasSelection && strings.TrimSpace(selection) == "" {
		target = &List{}
	}

	quit, err := it.exec(ctx, body, target, depth+1, caller)
	var ie *Error
	if err != nil && handler != nil && errors.As(err, &ie) {
		it.logger.Debug("Local block failed, running onfail handler.", "error", ie.Message)
		it.vars["_error"] = ie.Message
		quit, err = it.exec(ctx, handler, target, depth+1, caller)
	}

	if target != list {
		list.Append(target.Items...)
	}
	return quit, err
}
