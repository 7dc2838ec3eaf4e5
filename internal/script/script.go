// Package script turns the raw command-line arguments into the script the
// interpreter runs.
package script

import (
	"fmt"
	"strings"

	"github.com/vk/gmicli/internal/interp"
)

const (
	// NoArgs is run when the CLI gets no argument at all.
	NoArgs = "l[] cli_noarg onfail endl"
	// StartMarker is the command inserted before the user's script.
	StartMarker = "cli_start"
)

// verbosityPrefixes are the leading fragments after which the start marker
// is placed, so a verbosity change applies to it as well.
var verbosityPrefixes = []string{"-v ", "v ", "-verbose ", "verbose "}

// Item is one fragment of the assembled script. Separated fragments are
// followed by a single space. The fragment closing the last argument is
// Terminated instead, so anything inserted after it stays a separate token.
type Item struct {
	Text       string
	Separated  bool
	Terminated bool
}

// String renders the fragment with its separator.
func (i Item) String() string {
	switch {
	case i.Separated:
		return i.Text + " "
	case i.Terminated:
		return i.Text + string(interp.Terminator)
	}
	return i.Text
}

// Script is an assembled script and the verbosity it should start with.
type Script struct {
	Items     []Item
	Verbosity int
}

// String concatenates all fragments.
func (s *Script) String() string {
	return Join(s.Items)
}

// Join concatenates fragments in order.
func Join(items []Item) string {
	var b strings.Builder
	for _, it := range items {
		b.WriteString(it.String())
	}
	return b.String()
}

// Warnings names the definition files the interpreter rejected. Empty
// fields mean no warning.
type Warnings struct {
	Update string
	User   string
}

// Warning returns the fragment that reports path as an invalid command file.
func Warning(path string) Item {
	return Item{Text: fmt.Sprintf(`warn "File '%s' is not a valid G'MIC command file."`, path), Separated: true}
}

// Assemble builds the script for args. Arguments containing a space are
// wrapped in double quotes. All arguments but the last are followed by a
// space, the last one by the terminator. The start marker and any warnings are inserted in front of the
// arguments, or after the first two fragments when the script starts with a
// verbosity command.
func Assemble(args []string, w Warnings) *Script {
	if len(args) == 0 {
		return &Script{Items: []Item{{Text: NoArgs}}, Verbosity: -1}
	}

	var items []Item
	for i, arg := range args {
		last := i == len(args)-1
		if strings.Contains(arg, " ") {
			items = append(items, Item{Text: `"`}, Item{Text: arg}, Item{Text: `"`, Separated: !last, Terminated: last})
		} else {
			items = append(items, Item{Text: arg, Separated: !last, Terminated: last})
		}
	}

	pos := 0
	if len(items) > 1 {
		first := items[0].String()
		for _, p := range verbosityPrefixes {
			if strings.HasPrefix(first, p) {
				pos = 2
				break
			}
		}
	}

	items = insert(items, pos, Item{Text: StartMarker, Separated: true})
	if w.User != "" {
		items = insert(items, pos, Warning(w.User))
	}
	if w.Update != "" {
		items = insert(items, pos, Warning(w.Update))
	}
	return &Script{Items: items, Verbosity: 0}
}

func insert(items []Item, pos int, item Item) []Item {
	items = append(items, Item{})
	copy(items[pos+1:], items[pos:])
	items[pos] = item
	return items
}
