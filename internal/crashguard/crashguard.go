// Package crashguard reports fatal memory faults with a short diagnostic
// before the process exits.
package crashguard

import (
	"io"
	"os"
	"os/signal"
	"runtime"
	"runtime/debug"
	"strings"
	"sync"
	"syscall"

	"github.com/vk/gmicli/internal/console"
)

// Report is written when a fatal fault is caught.
const Report = "\n\n" + console.Prefix + " G'MIC encountered a fatal error. Please submit a bug report, at: https://framagit.org/dtschump/gmic/issues\n\n"

// Guard traps SIGSEGV and SIGBUS and, through Recover, memory fault panics.
type Guard struct {
	out  *console.Stream
	exit func(int)

	sigs     chan os.Signal
	done     chan struct{}
	stopOnce sync.Once
	prev     bool
}

// Option configures a Guard.
type Option func(*Guard)

// WithExit replaces os.Exit.
func WithExit(fn func(int)) Option {
	return func(g *Guard) { g.exit = fn }
}

// Install starts trapping fatal signals and turns memory faults in the
// calling goroutine into panics Recover can catch. The report goes to out.
func Install(out io.Writer, opts ...Option) *Guard {
	g := &Guard{
		out:  console.NewStream(out),
		exit: os.Exit,
		sigs: make(chan os.Signal, 1),
		done: make(chan struct{}),
	}
	for _, opt := range opts {
		opt(g)
	}
	signal.Notify(g.sigs, syscall.SIGSEGV, syscall.SIGBUS)
	g.prev = debug.SetPanicOnFault(true)
	go g.watch()
	return g
}

func (g *Guard) watch() {
	select {
	case <-g.sigs:
		g.fail()
	case <-g.done:
	}
}

// Stop stops trapping signals and restores the previous fault behaviour.
func (g *Guard) Stop() {
	g.stopOnce.Do(func() {
		signal.Stop(g.sigs)
		close(g.done)
		debug.SetPanicOnFault(g.prev)
	})
}

// Recover must be deferred directly. It reports memory fault panics and
// exits; any other panic continues unwinding.
func (g *Guard) Recover() {
	r := recover()
	if r == nil {
		return
	}
	if !isFault(r) {
		panic(r)
	}
	g.fail()
}

func (g *Guard) fail() {
	console.Lock()
	g.out.WriteLocked([]byte(Report))
	g.out.Sync()
	console.Unlock()
	g.exit(1)
}

// isFault reports whether a recovered value is a memory access fault.
func isFault(r any) bool {
	err, ok := r.(runtime.Error)
	if !ok {
		return false
	}
	if _, ok := err.(interface{ Addr() uintptr }); ok {
		return true
	}
	return strings.Contains(err.Error(), "invalid memory address")
}
