// Package help renders help when the command line asks for it, falling back
// to a clean built-in-only interpreter when the main one cannot.
package help

import "github.com/vk/gmicli/internal/argscan"

// Aliases are the help switches, in the order they are looked for.
var Aliases = []string{"--h", "-h", "h", "--help", "-help", "help"}

// Request is a detected help invocation.
type Request struct {
	// Alias is the switch that was found.
	Alias string
	// Argument is the token following Alias, or Alias itself when it was
	// the last token.
	Argument string
	// IsGlobal is true when no command was named.
	IsGlobal bool
}

// Command returns the command help was asked for, or "" for global help.
func (r Request) Command() string {
	if r.IsGlobal {
		return ""
	}
	return r.Argument
}

// Detect looks for the first alias, in priority order, present in args.
func Detect(args []string) (Request, bool) {
	for _, alias := range Aliases {
		if v, ok := argscan.Value(args, alias); ok {
			return Request{Alias: alias, Argument: v, IsGlobal: v == alias}, true
		}
	}
	return Request{}, false
}
