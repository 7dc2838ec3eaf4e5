package interp

import "fmt"

// Error is a structured failure raised while running a script.
type Error struct {
	Message string
	// Command names the command whose misuse caused the failure. It is empty
	// when no single command is to blame.
	Command string
}

// Error implements the error interface.
func (e *Error) Error() string {
	return e.Message
}

// CommandHelp returns the command the failure points at, or "".
func (e *Error) CommandHelp() string {
	return e.Command
}

// commandError builds an Error blaming cmd.
func commandError(cmd, format string, args ...any) *Error {
	return &Error{
		Message: fmt.Sprintf("Command '%s': ", cmd) + fmt.Sprintf(format, args...),
		Command: cmd,
	}
}
