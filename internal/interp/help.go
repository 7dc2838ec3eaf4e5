package interp

import (
	"fmt"
	"strings"
)

// helpIndex merges the help entries of several sources. The first source
// that documents a command wins.
type helpIndex struct {
	order  []*Doc
	byName map[string]*Doc
}

func newHelpIndex(sources [][]byte) *helpIndex {
	idx := &helpIndex{byName: make(map[string]*Doc)}
	for _, src := range sources {
		for _, d := range ScanDocs(src) {
			cur, ok := idx.byName[d.Name]
			switch {
			case !ok:
				cp := *d
				idx.byName[d.Name] = &cp
				idx.order = append(idx.order, &cp)
			case !cur.Documented && d.Documented:
				cur.Summary, cur.Lines, cur.Documented = d.Summary, d.Lines, true
				cur.Defined = cur.Defined || d.Defined
			default:
				cur.Defined = cur.Defined || d.Defined
			}
		}
	}
	return idx
}

// helpSources returns the definition sources help reads: the items of list,
// or the built-in definitions when list holds none. Commands registered with
// AddCommands are not read.
func helpSources(list *List) [][]byte {
	if list == nil || list.Len() == 0 {
		return [][]byte{stdlib}
	}
	sources := make([][]byte, 0, list.Len())
	for _, item := range list.Items {
		sources = append(sources, item.Data)
	}
	return sources
}

// renderHelp writes the help of one command, or the command list when name
// is empty. header adds the title block.
func (it *Interpreter) renderHelp(name string, header bool, list *List) error {
	idx := newHelpIndex(helpSources(list))
	if name == "" {
		it.renderCommandList(idx)
		return nil
	}

	d, ok := idx.byName[name]
	if !ok || !d.Documented {
		if canonical, isAlias := aliases[name]; isAlias {
			if cd, found := idx.byName[canonical]; found && cd.Documented {
				d, ok = cd, true
			}
		}
	}
	if !ok {
		if _, isBuiltin := lookupBuiltin(name); !isBuiltin {
			return &Error{Message: fmt.Sprintf("Command 'help': Unknown command '%s'.", name)}
		}
		d = &Doc{Name: name}
	}

	var b strings.Builder
	if header {
		title := fmt.Sprintf("  Command '%s':", name)
		fmt.Fprintf(&b, "\n%s\n  %s\n\n", title, strings.Repeat("-", len(title)-2))
	}
	if !d.Documented {
		fmt.Fprintf(&b, "    No description available for command '%s'.\n", name)
	} else {
		if d.Summary != "" {
			fmt.Fprintf(&b, "    %s %s\n", d.Name, d.Summary)
		}
		for _, line := range d.Lines {
			fmt.Fprintf(&b, "    %s\n", line)
		}
	}
	b.WriteString("\n")
	_, err := fmt.Fprint(it.out, b.String())
	return err
}

func (it *Interpreter) renderCommandList(idx *helpIndex) {
	var b strings.Builder
	b.WriteString("\n  List of commands:\n  -----------------\n\n")
	n := 0
	for _, d := range idx.order {
		if !d.Documented || strings.HasPrefix(d.Name, "_") {
			continue
		}
		summary := ""
		if len(d.Lines) > 0 {
			summary = d.Lines[0]
		}
		fmt.Fprintf(&b, "    %-16s %s\n", d.Name, summary)
		n++
	}
	if n == 0 {
		b.WriteString("    (no documented commands)\n")
	}
	b.WriteString("\n")
	fmt.Fprint(it.out, b.String())
}
