package help

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/vk/gmicli/internal/argscan"
	"github.com/vk/gmicli/internal/bootstrap"
	"github.com/vk/gmicli/internal/ctxlog"
	"github.com/vk/gmicli/internal/fetch"
	"github.com/vk/gmicli/internal/interp"
	"github.com/vk/gmicli/internal/session"
)

// importFlags take the following token as a definition file to read.
var importFlags = map[string]bool{"-m": true, "m": true, "-command": true, "command": true}

// Loader reads definition files.
type Loader interface {
	Load(ctx context.Context, path string) ([]byte, error)
}

// Dispatcher renders help for a Request.
type Dispatcher struct {
	Session *session.Session
	Loader  Loader
	Fetcher fetch.Fetcher
}

// Render prints the requested help on the session's standard output. The
// main interpreter is tried first with the bootstrapped sources and any
// definition files named in args; a fresh interpreter that knows only the
// built-in definitions is tried next. The error of that last attempt is
// returned. Global help run by that interpreter is told it serves the CLI
// host.
func (d *Dispatcher) Render(ctx context.Context, req Request, args []string, sources bootstrap.Sources) error {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Rendering help.", "alias", req.Alias, "command", req.Command(), "global", req.IsGlobal)

	list := d.baseList(req, sources)
	d.ingest(ctx, args, list)

	primary := d.Session.Interpreter
	primary.SetOutput(d.Session.Stdout)

	body := helpScript(req)
	return session.Fallback(ctx,
		session.Tier{Name: "main interpreter", Run: func(ctx context.Context) error {
			primary.SetVerbosity(-1)
			return primary.Run(ctx, "v - "+body, list)
		}},
		session.Tier{Name: "built-in interpreter", Run: func(ctx context.Context) error {
			it, stdlib, err := d.Session.Fresh(ctx, d.Session.Stdout)
			if err != nil {
				return err
			}
			if req.IsGlobal {
				it.SetVariable("_host", "cli")
				return it.Run(ctx, "v - _host=cli "+body, stdlib)
			}
			return it.Run(ctx, "v - "+body, stdlib)
		}},
	)
}

func helpScript(req Request) string {
	if req.IsGlobal {
		return `l help "" onfail endl q`
	}
	return fmt.Sprintf(`l help %s,1 onfail endl q`, interp.Quote(req.Argument))
}

// baseList layers the definition sources help reads: the user source for
// command help, the update source when there is one, and the built-in
// definitions for command help or when no update source exists.
func (d *Dispatcher) baseList(req Request, sources bootstrap.Sources) *interp.List {
	list := &interp.List{}
	if !req.IsGlobal && sources.User.Present() {
		list.Append(interp.Item{Name: string(bootstrap.OriginUser), Data: sources.User.Content})
	}
	if sources.Update.Present() {
		list.Append(interp.Item{Name: string(bootstrap.OriginUpdate), Data: sources.Update.Content})
	}
	if !req.IsGlobal || !sources.Update.Present() {
		list.Append(interp.Item{Name: interp.StdlibName, Data: d.Session.Factory.Stdlib()})
	}
	return list
}

// ingest puts every definition file named in args at the front of list,
// each followed by a newline item. Files are named after an import flag or
// directly by a .gmic extension; URLs are downloaded first. Files that
// cannot be read are skipped.
func (d *Dispatcher) ingest(ctx context.Context, args []string, list *interp.List) {
	for i := 0; i < len(args); i++ {
		var path string
		switch {
		case importFlags[args[i]] && i+1 < len(args):
			i++
			path = args[i]
		case strings.EqualFold(argscan.Extension(args[i]), "gmic"):
			path = args[i]
		default:
			continue
		}

		data, ok := d.read(ctx, path)
		if !ok {
			continue
		}
		list.Insert(0, interp.Item{Name: path, Data: data})
		list.Insert(1, interp.Item{Name: "separator", Data: []byte("\n")})
	}
}

func (d *Dispatcher) read(ctx context.Context, path string) ([]byte, bool) {
	logger := ctxlog.FromContext(ctx).With("path", path)

	local := path
	if fetch.IsURL(path) {
		if d.Fetcher == nil {
			return nil, false
		}
		tmp, err := d.Fetcher.Fetch(ctx, path)
		if err != nil {
			logger.Debug("Unable to fetch definition file.", "error", err)
			return nil, false
		}
		defer os.Remove(tmp)
		local = tmp
	}

	data, err := d.Loader.Load(ctx, local)
	if err != nil {
		logger.Debug("Unable to read definition file.", "error", err)
		return nil, false
	}
	logger.Debug("Added definition file to help sources.", "bytes", len(data))
	return data, true
}
