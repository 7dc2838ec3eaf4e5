package cli

import (
	"fmt"

	"github.com/vk/gmicli/internal/argscan"
	"github.com/vk/gmicli/internal/help"
)

// ExitError is a custom error type that includes a specific exit code.
type ExitError struct {
	Code    int
	Message string
}

// Error implements the error interface for ExitError.
func (e *ExitError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("exit status %d", e.Code)
	}
	return e.Message
}

// Invocation is what the command line asks for.
type Invocation struct {
	// Args are the raw arguments, unchanged.
	Args []string
	// Debug routes diagnostics to standard output and enables debug logs.
	Debug bool
	// Help is set when a help switch is present.
	Help *help.Request
}

// Parse inspects args. It never fails: anything it does not recognize is
// left for the interpreter.
func Parse(args []string) *Invocation {
	inv := &Invocation{
		Args:  args,
		Debug: argscan.Bool(args, "-debug", false) || argscan.Bool(args, "debug", false),
	}
	if req, ok := help.Detect(args); ok {
		inv.Help = &req
	}
	return inv
}
