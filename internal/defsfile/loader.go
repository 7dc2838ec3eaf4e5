// Package defsfile loads command definition files. A file is either the
// native text format the interpreter reads, or a structured HCL file whose
// command blocks are rendered to native text.
package defsfile

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/vk/gmicli/internal/ctxlog"
	"github.com/vk/gmicli/internal/interp"
	"github.com/zclconf/go-cty/cty"
)

var (
	// ErrNotFound is returned when a definition file does not exist.
	ErrNotFound = errors.New("definition file not found")
	// ErrNoCommands is returned when a structured file declares no command.
	ErrNoCommands = errors.New("no command blocks")
)

// Loader reads definition files.
type Loader struct {
	// Version is exposed to structured files as gmic_version.
	Version int
}

// NewLoader creates a loader for the given interpreter version.
func NewLoader(version int) *Loader {
	return &Loader{Version: version}
}

// fileRoot is the top level of a structured definition file.
type fileRoot struct {
	Commands []*commandBlock `hcl:"command,block"`
}

type commandBlock struct {
	Name        string   `hcl:"name,label"`
	Description string   `hcl:"description,optional"`
	Usage       string   `hcl:"usage,optional"`
	Body        string   `hcl:"body"`
	Examples    []string `hcl:"examples,optional"`
}

// Load reads path and returns native definition text. Structured files are
// rendered; anything else is returned as raw bytes.
func (l *Loader) Load(ctx context.Context, path string) ([]byte, error) {
	logger := ctxlog.FromContext(ctx)

	data, err := l.LoadRaw(ctx, path)
	if err != nil {
		return nil, err
	}

	rendered, err := l.Structured(ctx, data, path)
	if err != nil {
		logger.Debug("Not a structured definition file, using raw content.", "path", path, "reason", err)
		return data, nil
	}
	logger.Debug("Loaded structured definition file.", "path", path, "bytes", len(rendered))
	return rendered, nil
}

// LoadRaw reads path as is.
func (l *Loader) LoadRaw(ctx context.Context, path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
		}
		return nil, fmt.Errorf("failed to read definition file %s: %w", path, err)
	}
	ctxlog.FromContext(ctx).Debug("Read definition file.", "path", path, "bytes", len(data))
	return data, nil
}

// Structured parses data as an HCL definition file and renders its command
// blocks to native text, marker line first.
func (l *Loader) Structured(ctx context.Context, data []byte, filename string) ([]byte, error) {
	parser := hclparse.NewParser()
	file, diags := parser.ParseHCL(data, filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse HCL file %s: %w", filename, diags)
	}

	var root fileRoot
	diags = gohcl.DecodeBody(file.Body, l.evalContext(), &root)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode HCL file %s: %w", filename, diags)
	}
	if len(root.Commands) == 0 {
		return nil, fmt.Errorf("%s: %w", filename, ErrNoCommands)
	}

	ctxlog.FromContext(ctx).Debug("Decoded structured definitions.", "file", filename, "commands", len(root.Commands))
	return render(root.Commands), nil
}

func (l *Loader) evalContext() *hcl.EvalContext {
	return &hcl.EvalContext{
		Variables: map[string]cty.Value{
			"gmic_version": cty.NumberIntVal(int64(l.Version)),
		},
	}
}

// render writes command blocks in the native format: documentation lines,
// then "name : first body line" and indented continuation lines.
func render(cmds []*commandBlock) []byte {
	var b strings.Builder
	b.WriteString(interp.Marker)
	b.WriteString("\n")
	for _, c := range cmds {
		b.WriteString("\n")
		if c.Usage != "" || c.Description != "" {
			fmt.Fprintf(&b, "#@cli %s : %s\n", c.Name, strings.TrimSpace(c.Usage))
			for _, line := range nonEmptyLines(c.Description) {
				fmt.Fprintf(&b, "#@cli : %s\n", line)
			}
			for _, ex := range c.Examples {
				fmt.Fprintf(&b, "#@cli : $ %s\n", strings.TrimSpace(ex))
			}
		}

		body := nonEmptyLines(c.Body)
		if len(body) == 0 {
			fmt.Fprintf(&b, "%s :\n", c.Name)
			continue
		}
		fmt.Fprintf(&b, "%s : %s\n", c.Name, body[0])
		for _, line := range body[1:] {
			fmt.Fprintf(&b, "  %s\n", line)
		}
	}
	return []byte(b.String())
}

func nonEmptyLines(s string) []string {
	var lines []string
	for _, line := range strings.Split(s, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			lines = append(lines, line)
		}
	}
	return lines
}
