package interp

import (
	"regexp"
	"strconv"
	"strings"
)

// Quote wraps s in double quotes for use as one script argument. Quotes
// inside s are escaped.
func Quote(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `\"`) + `"`
}

// tokenize splits a script on unquoted whitespace. Double quotes group text
// and are removed; a quoted section glues onto adjacent unquoted text, so
// raw:"a b",char is one token. \" inside the script yields a literal quote.
func tokenize(s string) []string {
	var toks []string
	var b strings.Builder
	inToken, quoted := false, false
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c == '\\' && i+1 < len(s) && s[i+1] == '"':
			b.WriteByte('"')
			i++
			inToken = true
		case c == '"':
			quoted = !quoted
			inToken = true
		case !quoted && isSpace(c):
			if inToken {
				toks = append(toks, b.String())
				b.Reset()
				inToken = false
			}
		default:
			b.WriteByte(c)
			inToken = true
		}
	}
	if inToken {
		toks = append(toks, b.String())
	}
	return toks
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r' || c == Terminator
}

var (
	bracedVar  = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)\}`)
	plainVar   = regexp.MustCompile(`\$([A-Za-z_][A-Za-z0-9_]*)`)
	assignment = regexp.MustCompile(`^([A-Za-z_][A-Za-z0-9_]*)=(.*)$`)
)

// expandVariables substitutes $name and ${name} for defined variables.
// References to undefined names are left as they are.
func expandVariables(tok string, vars map[string]string) string {
	if !strings.Contains(tok, "$") {
		return tok
	}
	repl := func(re *regexp.Regexp) func(string) string {
		return func(m string) string {
			name := re.FindStringSubmatch(m)[1]
			if v, ok := vars[name]; ok {
				return v
			}
			return m
		}
	}
	tok = bracedVar.ReplaceAllStringFunc(tok, repl(bracedVar))
	return plainVar.ReplaceAllStringFunc(tok, repl(plainVar))
}

// expandPositional substitutes $*, $#, $1..$9 and their braced forms in a
// command body with the comma-separated values of arg.
func expandPositional(body, arg string) string {
	var args []string
	if arg != "" {
		args = strings.Split(arg, ",")
	}
	return positionalRef.ReplaceAllStringFunc(body, func(m string) string {
		key := strings.Trim(m[1:], "{}")
		switch key {
		case "*":
			return arg
		case "#":
			return strconv.Itoa(len(args))
		}
		n := int(key[0] - '0')
		if n <= len(args) {
			return args[n-1]
		}
		return ""
	})
}

// splitCommand strips the optional leading '-' of a command token and
// separates a trailing [selection]. hasSelection is true for "l[]".
func splitCommand(tok string) (name, selection string, hasSelection bool) {
	name = tok
	if len(name) > 1 && name[0] == '-' && (isLetter(name[1]) || name[1] == '_') {
		name = name[1:]
	}
	if i := strings.IndexByte(name, '['); i > 0 && strings.HasSuffix(name, "]") {
		return name[:i], name[i+1 : len(name)-1], true
	}
	return name, "", false
}

func isLetter(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}
