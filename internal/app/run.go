package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/vk/gmicli/internal/cli"
	"github.com/vk/gmicli/internal/console"
	"github.com/vk/gmicli/internal/ctxlog"
	"github.com/vk/gmicli/internal/help"
	"github.com/vk/gmicli/internal/interp"
	"github.com/vk/gmicli/internal/script"
	"github.com/vk/gmicli/internal/session"
)

// Outcome is the result of running the assembled script.
type Outcome struct {
	Success bool
	Message string
	// CommandHelp names the command a structured failure points at.
	CommandHelp string
	// Structured is set when the interpreter reported the failure itself.
	Structured bool
}

// Run renders help when inv asks for it and runs the assembled script
// otherwise. Help always ends with a nil error; a help failure is only
// printed. Script failures are printed on the diagnostic stream and returned
// as *cli.ExitError.
func (a *App) Run(ctx context.Context, inv *cli.Invocation) error {
	ctx = ctxlog.WithLogger(ctx, a.logger)
	a.logger.Debug("App.Run method started.", "args", len(inv.Args))

	if inv.Help != nil {
		d := &help.Dispatcher{Session: a.session, Loader: a.loader, Fetcher: a.fetcher}
		if err := d.Render(ctx, *inv.Help, inv.Args, a.sources); err != nil {
			a.logger.Error("Help rendering failed.", "error", err)
			fmt.Fprintf(a.session.Diag, "%s Unable to render help: %v\n", console.Prefix, err)
		}
		return nil
	}

	sc := script.Assemble(inv.Args, a.warnings())
	out := a.Execute(ctx, sc)
	if out.Success {
		a.logger.Debug("App.Run method finished.")
		return nil
	}
	if !out.Structured {
		a.logger.Error("Script execution failed.", "error", out.Message)
		fmt.Fprintf(a.session.Diag, "%s %s\n", console.Prefix, out.Message)
		return &cli.ExitError{Code: 1}
	}
	if err := a.report(ctx, out); err != nil {
		a.logger.Error("Command help rendering failed.", "error", err)
		fmt.Fprintf(a.session.Diag, "%s Unable to render help: %v\n", console.Prefix, err)
		return &cli.ExitError{Code: 1}
	}
	return &cli.ExitError{Code: -1}
}

// warnings lists the definition files the interpreter rejected.
func (a *App) warnings() script.Warnings {
	var w script.Warnings
	if a.sources.Update.Invalid {
		w.Update = a.sources.Update.Path
	}
	if a.sources.User.Invalid {
		w.User = a.sources.User.Path
	}
	return w
}

// Execute runs sc on the main interpreter against an empty item list.
func (a *App) Execute(ctx context.Context, sc *script.Script) Outcome {
	it := a.session.Interpreter
	it.SetVerbosity(sc.Verbosity)
	text := sc.String()
	ctxlog.FromContext(ctx).Debug("Running script.", "script", text, "verbosity", sc.Verbosity)

	err := it.Run(ctx, text, &interp.List{})
	if err == nil {
		return Outcome{Success: true}
	}
	var ie *interp.Error
	if errors.As(err, &ie) {
		return Outcome{Message: ie.Message, CommandHelp: ie.CommandHelp(), Structured: true}
	}
	return Outcome{Message: err.Error()}
}

// report prints a structured failure the interpreter kept quiet about, then
// describes the command it points at.
func (a *App) report(ctx context.Context, out Outcome) error {
	diag := a.session.Diag
	if a.session.Interpreter.Verbosity() < 0 {
		fmt.Fprintf(diag, "\n%s %s", console.Prefix, console.Highlight(diag, out.Message))
	}
	if out.CommandHelp == "" {
		fmt.Fprint(diag, "\n\n")
		return nil
	}
	fmt.Fprintf(diag, "\n%s Command '%s' has the following description: \n", console.Prefix, out.CommandHelp)
	return a.recoverHelp(ctx, out.CommandHelp)
}

// recoverHelp describes cmd with a fresh interpreter: first from the update
// and user files and the built-in definitions, then from the built-in
// definitions alone.
func (a *App) recoverHelp(ctx context.Context, cmd string) error {
	update, user := interp.Quote(a.cfg.UpdateFile()), interp.Quote(a.cfg.UserFile)
	name := interp.Quote(cmd)
	layered := fmt.Sprintf(`v - l[] i raw:%s,char m %s onfail rm endl l[] i raw:%s,char m %s onfail rm endl rv help %s,0 q`,
		update, update, user, user, name)
	builtin := fmt.Sprintf(`v - help %s,1 q`, name)

	run := func(text string) func(context.Context) error {
		return func(ctx context.Context) error {
			it, list, err := a.session.Fresh(ctx, a.session.Diag)
			if err != nil {
				return err
			}
			return it.Run(ctx, text, list)
		}
	}
	return session.Fallback(ctx,
		session.Tier{Name: "layered definitions", Run: run(layered)},
		session.Tier{Name: "built-in definitions", Run: run(builtin)},
	)
}
