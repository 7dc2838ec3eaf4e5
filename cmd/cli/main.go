package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/vk/gmicli/internal/app"
	"github.com/vk/gmicli/internal/cli"
	"github.com/vk/gmicli/internal/config"
	"github.com/vk/gmicli/internal/console"
	"github.com/vk/gmicli/internal/crashguard"
	"github.com/vk/gmicli/internal/localsession"
)

// main is the entrypoint for the gmic command-line interface.
func main() {
	// The real main function handles errors and exit codes.
	if err := run(context.Background(), os.Args[1:], os.Getenv, os.Stdout, os.Stderr); err != nil {
		var exitErr *cli.ExitError
		if errors.As(err, &exitErr) {
			if exitErr.Message != "" {
				fmt.Fprintln(os.Stderr, exitErr.Message)
			}
			os.Exit(exitErr.Code)
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// run encapsulates the main application logic for easier testing and error handling.
// Every message run prints goes to the diagnostic stream, which is stdout
// under -debug; returned exit errors carry only the status.
func run(ctx context.Context, args []string, getenv func(string) string, stdout, stderr io.Writer) error {
	inv := cli.Parse(args)

	diagW := stderr
	if inv.Debug {
		diagW = stdout
	}
	diag := console.NewStream(diagW)

	guard := crashguard.Install(diag)
	defer guard.Stop()
	defer guard.Recover()

	cfg, err := config.New(getenv, inv.Debug)
	if err != nil {
		fmt.Fprintf(diag, "%s %v\n", console.Prefix, err)
		return &cli.ExitError{Code: 1}
	}
	if err := config.EnsureResourcesDir(cfg); err != nil {
		fmt.Fprintf(diag, "\n%s Unable to create resources folder.\n", console.Prefix)
	}

	a, err := app.NewApp(ctx, cfg, localsession.NewFactory(), stdout, diag)
	if err != nil {
		fmt.Fprintf(diag, "%s %v\n", console.Prefix, err)
		return &cli.ExitError{Code: 1}
	}
	return a.Run(ctx, inv)
}
