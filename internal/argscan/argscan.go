// Package argscan looks up options in a raw argument list without consuming
// or reordering it. The argument list is the script itself, so options are
// detected in place and left for the interpreter to see.
package argscan

import "strings"

// Value finds the first token equal to name. It returns the token that
// follows it, or name itself when name is the last token. ok is false when
// name does not occur.
func Value(args []string, name string) (value string, ok bool) {
	for i, a := range args {
		if a != name {
			continue
		}
		if i == len(args)-1 {
			return a, true
		}
		return args[i+1], true
	}
	return "", false
}

// Bool reports whether the flag name is set. A following token of "false",
// "off" or "0" (any case) switches it off; anything else, including no
// following token, switches it on. def is returned when name is absent.
func Bool(args []string, name string, def bool) bool {
	v, ok := Value(args, name)
	if !ok {
		return def
	}
	switch strings.ToLower(v) {
	case "false", "off", "0":
		return false
	}
	return true
}

// Extension returns the text after the last dot of a path or URL, provided
// no path separator follows that dot.
func Extension(path string) string {
	for i := len(path) - 1; i >= 0; i-- {
		switch path[i] {
		case '.':
			return path[i+1:]
		case '/', '\\':
			return ""
		}
	}
	return ""
}
