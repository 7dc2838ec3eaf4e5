package interp

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

type builtin struct {
	name   string
	hasArg bool
	run    func(ctx context.Context, it *Interpreter, arg string, list *List, caller string) (quit bool, err error)
}

var builtins = map[string]*builtin{}

// aliases maps short spellings onto canonical built-in names.
var aliases = map[string]string{
	"v":  "verbose",
	"q":  "quit",
	"rm": "remove",
	"rv": "reverse",
	"i":  "input",
	"m":  "command",
	"e":  "echo",
}

func init() {
	for _, b := range []*builtin{
		{name: "verbose", hasArg: true, run: runVerbose},
		{name: "quit", run: func(context.Context, *Interpreter, string, *List, string) (bool, error) { return true, nil }},
		{name: "remove", run: runRemove},
		{name: "reverse", run: runReverse},
		{name: "input", hasArg: true, run: runInput},
		{name: "command", hasArg: true, run: importFile},
		{name: "help", hasArg: true, run: runHelp},
		{name: "echo", hasArg: true, run: runEcho},
		{name: "warn", hasArg: true, run: runWarn},
		{name: "error", hasArg: true, run: runError},
		{name: "debug", run: runDebug},
	} {
		builtins[b.name] = b
	}
}

func lookupBuiltin(name string) (*builtin, bool) {
	if canonical, ok := aliases[name]; ok {
		name = canonical
	}
	b, ok := builtins[name]
	return b, ok
}

func runVerbose(_ context.Context, it *Interpreter, arg string, _ *List, _ string) (bool, error) {
	switch arg {
	case "-":
		it.verbosity--
	case "+":
		it.verbosity++
	default:
		n, err := strconv.Atoi(arg)
		if err != nil {
			return false, commandError("verbose", "Invalid argument '%s'.", arg)
		}
		it.verbosity = n
	}
	return false, nil
}

func runRemove(_ context.Context, _ *Interpreter, _ string, list *List, _ string) (bool, error) {
	list.Clear()
	return false, nil
}

func runReverse(_ context.Context, _ *Interpreter, _ string, list *List, _ string) (bool, error) {
	list.Reverse()
	return false, nil
}

// valueTypes are the accepted suffixes of a raw: input specification.
var valueTypes = map[string]bool{"char": true, "uchar": true, "uint8": true, "int8": true}

// runInput supports raw:path[,type], which appends the file bytes as one item.
func runInput(_ context.Context, it *Interpreter, arg string, list *List, _ string) (bool, error) {
	item, ok := strings.CutPrefix(arg, "raw:")
	if !ok {
		return false, commandError("input", "Unsupported input specification '%s'.", arg)
	}
	path := item
	if i := strings.LastIndexByte(item, ','); i >= 0 && valueTypes[item[i+1:]] {
		path = item[:i]
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return false, commandError("input", "Unable to load raw file '%s'.", path)
	}
	list.Append(Item{Name: filepath.Base(path), Data: data})
	it.logger.Debug("Loaded raw file.", "path", path, "bytes", len(data))
	return false, nil
}

// importFile registers the command definitions found in a file.
func importFile(_ context.Context, it *Interpreter, path string, _ *List, _ string) (bool, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return false, commandError("command", "Unable to read file '%s'.", path)
	}
	if err := it.AddCommands(data, path); err != nil {
		return false, err
	}
	return false, nil
}

// runHelp accepts "name" or "name,display" where display is 0 or 1.
func runHelp(_ context.Context, it *Interpreter, arg string, list *List, _ string) (bool, error) {
	name, header := arg, true
	if i := strings.LastIndexByte(arg, ','); i >= 0 {
		switch arg[i+1:] {
		case "0":
			name, header = arg[:i], false
		case "1":
			name = arg[:i]
		}
	}
	return false, it.renderHelp(strings.TrimSpace(name), header, list)
}

func runEcho(_ context.Context, it *Interpreter, arg string, _ *List, _ string) (bool, error) {
	if it.verbosity >= 0 {
		fmt.Fprintf(it.out, "[gmic] %s\n", arg)
	}
	return false, nil
}

func runWarn(_ context.Context, it *Interpreter, arg string, _ *List, _ string) (bool, error) {
	if it.verbosity >= 0 {
		fmt.Fprintf(it.out, "[gmic] *** Warning *** %s\n", arg)
	}
	return false, nil
}

// runError raises arg as a structured failure blamed on the calling
// user-defined command, if any.
func runError(_ context.Context, _ *Interpreter, arg string, _ *List, caller string) (bool, error) {
	return false, &Error{Message: arg, Command: caller}
}

func runDebug(_ context.Context, it *Interpreter, _ string, _ *List, _ string) (bool, error) {
	it.debug = true
	return false, nil
}
