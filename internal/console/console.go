// Package console owns the diagnostic output stream. Every writer created here
// shares one process-wide lock, so the crash guard can print its report
// without tearing a message the interpreter is writing at the same moment.
package console

import (
	"io"
	"sync"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"
)

// Prefix starts every message the CLI prints on its own behalf.
const Prefix = "[gmic]"

var mu sync.Mutex

// Lock acquires the diagnostic output lock.
func Lock() { mu.Lock() }

// Unlock releases the diagnostic output lock.
func Unlock() { mu.Unlock() }

// Stream serializes writes to an underlying writer through the shared lock.
type Stream struct {
	w io.Writer
}

// NewStream wraps w. Wrapping a Stream again returns it unchanged.
func NewStream(w io.Writer) *Stream {
	if s, ok := w.(*Stream); ok {
		return s
	}
	return &Stream{w: w}
}

// Write implements io.Writer.
func (s *Stream) Write(p []byte) (int, error) {
	mu.Lock()
	defer mu.Unlock()
	return s.w.Write(p)
}

// WriteLocked writes p while the caller already holds the lock.
func (s *Stream) WriteLocked(p []byte) (int, error) {
	return s.w.Write(p)
}

// Sync flushes the underlying writer when it supports it. It does not take
// the lock, so it may be called while holding it.
func (s *Stream) Sync() error {
	if f, ok := s.w.(interface{ Sync() error }); ok {
		return f.Sync()
	}
	return nil
}

// Unwrap returns the decorated writer.
func (s *Stream) Unwrap() io.Writer {
	return s.w
}

// IsTerminal reports whether w, after unwrapping decorators, is an
// interactive terminal.
func IsTerminal(w io.Writer) bool {
	for {
		u, ok := w.(interface{ Unwrap() io.Writer })
		if !ok {
			break
		}
		w = u.Unwrap()
	}
	f, ok := w.(interface{ Fd() uintptr })
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// Highlight renders text in bold red when w is a colour-capable terminal,
// and returns it unchanged otherwise.
func Highlight(w io.Writer, text string) string {
	if !IsTerminal(w) {
		return text
	}
	if s, ok := w.(*Stream); ok {
		w = s.w
	}
	r := lipgloss.NewRenderer(w)
	return r.NewStyle().Bold(true).Foreground(lipgloss.Color("9")).Render(text)
}
