package interp

import (
	"bytes"
	"fmt"
	"regexp"
	"strings"
)

// Terminator closes a definition source held in memory. Anything after the
// first Terminator is ignored by the parsers.
const Terminator byte = 0

// Marker is the leading tag of a well-formed definition file.
const Marker = "#@gmic"

var (
	definitionLine = regexp.MustCompile(`^([A-Za-z_][A-Za-z0-9_]*)\s*:(.*)$`)
	docLine        = regexp.MustCompile(`^#@cli\s+([A-Za-z_][A-Za-z0-9_]*)\s*:\s*(.*)$`)
	docContinued   = regexp.MustCompile(`^#@cli\s*:\s?(.*)$`)
	positionalRef  = regexp.MustCompile(`\$(\*|#|[1-9]|\{[1-9*#]\})`)
)

// Command is a user-defined command.
type Command struct {
	Name   string
	Body   string
	Source string
}

// TakesArgument reports whether the command consumes the following token.
func (c *Command) TakesArgument() bool {
	return positionalRef.MatchString(c.Body)
}

// Doc is the help entry of one command.
type Doc struct {
	Name    string
	Summary string
	Lines   []string
	// Documented is set when at least one #@cli line names the command.
	Documented bool
	// Defined is set when the source also defines the command.
	Defined bool
}

func truncate(src []byte) []byte {
	if i := bytes.IndexByte(src, Terminator); i >= 0 {
		return src[:i]
	}
	return src
}

func splitLines(src []byte) []string {
	return strings.Split(strings.ReplaceAll(string(truncate(src)), "\r\n", "\n"), "\n")
}

// ParseDefinitions parses a definition source. A definition is a line
// "name : body" starting in the first column; indented lines continue the
// previous body; lines starting with '#' are comments.
func ParseDefinitions(src []byte, filename string) ([]*Command, error) {
	where := filename
	if where == "" {
		where = "<definitions>"
	}

	var cmds []*Command
	var cur *Command
	for i, line := range splitLines(src) {
		trimmed := strings.TrimSpace(line)
		switch {
		case trimmed == "" || strings.HasPrefix(trimmed, "#"):
			continue
		case line[0] == ' ' || line[0] == '\t':
			if cur == nil {
				return nil, fmt.Errorf("%s:%d: continuation line outside of a command definition", where, i+1)
			}
			cur.Body = strings.TrimSpace(cur.Body + " " + trimmed)
		default:
			m := definitionLine.FindStringSubmatch(line)
			if m == nil {
				return nil, fmt.Errorf("%s:%d: invalid command definition '%s'", where, i+1, trimmed)
			}
			cur = &Command{Name: m[1], Body: strings.TrimSpace(m[2]), Source: filename}
			cmds = append(cmds, cur)
		}
	}
	return cmds, nil
}

// ScanDocs extracts help entries from a definition source. It never fails:
// lines it does not understand are skipped.
func ScanDocs(src []byte) []*Doc {
	var docs []*Doc
	byName := make(map[string]*Doc)
	get := func(name string) *Doc {
		d, ok := byName[name]
		if !ok {
			d = &Doc{Name: name}
			byName[name] = d
			docs = append(docs, d)
		}
		return d
	}

	var last *Doc
	for _, line := range splitLines(src) {
		trimmed := strings.TrimSpace(line)
		if m := docLine.FindStringSubmatch(trimmed); m != nil {
			d := get(m[1])
			if d.Documented {
				last = nil
				continue
			}
			d.Documented = true
			d.Summary = strings.TrimSpace(m[2])
			last = d
			continue
		}
		if m := docContinued.FindStringSubmatch(trimmed); m != nil {
			if last != nil {
				last.Lines = append(last.Lines, strings.TrimRight(m[1], " \t"))
			}
			continue
		}
		if line != "" && line[0] != ' ' && line[0] != '\t' && line[0] != '#' {
			if m := definitionLine.FindStringSubmatch(line); m != nil {
				get(m[1]).Defined = true
			}
		}
	}
	return docs
}

// HasMarker reports whether src starts, after optional whitespace, with the
// definition file marker.
func HasMarker(src []byte) bool {
	return bytes.HasPrefix(bytes.TrimLeft(src, " \t\r\n\v\f"), []byte(Marker))
}
