package app

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/gmicli/internal/cli"
	"github.com/vk/gmicli/internal/config"
	"github.com/vk/gmicli/internal/interp"
	"github.com/vk/gmicli/internal/localsession"
	"github.com/vk/gmicli/internal/script"
	"github.com/vk/gmicli/internal/session"
	"github.com/vk/gmicli/internal/testutil"
)

type testApp struct {
	*App
	cfg    *config.Config
	stdout *testutil.SafeBuffer
	diag   *testutil.SafeBuffer
}

func newTestConfig(t *testing.T, update, user string) *config.Config {
	t.Helper()
	dir := t.TempDir()
	cfg := config.DefaultConfig()
	cfg.ResourcesDir = filepath.Join(dir, "gmic")
	cfg.UserFile = filepath.Join(dir, ".gmic")
	require.NoError(t, config.EnsureResourcesDir(cfg))
	if update != "" {
		require.NoError(t, os.WriteFile(cfg.UpdateFile(), []byte(update), 0o644))
	}
	if user != "" {
		require.NoError(t, os.WriteFile(cfg.UserFile, []byte(user), 0o644))
	}
	return cfg
}

func setupApp(t *testing.T, cfg *config.Config, f session.Factory) *testApp {
	t.Helper()
	ta := &testApp{cfg: cfg, stdout: &testutil.SafeBuffer{}, diag: &testutil.SafeBuffer{}}
	a, err := NewApp(context.Background(), cfg, f, ta.stdout, ta.diag, WithLogger(slog.New(slog.DiscardHandler)))
	require.NoError(t, err)
	ta.App = a

	t.Cleanup(func() {
		if os.Getenv("GMIC_TEST_LOGS") == "true" {
			t.Logf("--- stdout ---\n%s\n--- diag ---\n%s", ta.stdout.String(), ta.diag.String())
		}
	})
	return ta
}

func requireExitCode(t *testing.T, err error, code int) *cli.ExitError {
	t.Helper()
	var exitErr *cli.ExitError
	require.ErrorAs(t, err, &exitErr)
	assert.Equal(t, code, exitErr.Code)
	return exitErr
}

func TestNewApp_RegistersHostCommands(t *testing.T) {
	ta := setupApp(t, newTestConfig(t, "", ""), localsession.NewFactory())

	require.NoError(t, ta.Run(context.Background(), cli.Parse([]string{"e", "$_host"})))
	assert.Equal(t, "[gmic] cli\n", ta.diag.String())
}

func TestNewApp_LoadsSources(t *testing.T) {
	cfg := newTestConfig(t, "#@gmic\nupd : e update\n", "mine : e mine\n")
	ta := setupApp(t, cfg, localsession.NewFactory())

	sources := ta.Sources()
	assert.True(t, sources.Update.Present())
	assert.True(t, sources.User.Present())

	require.NoError(t, ta.Run(context.Background(), cli.Parse([]string{"upd", "mine"})))
	assert.Equal(t, "[gmic] update\n[gmic] mine\n", ta.diag.String())
}

func TestNewApp_FactoryFailure(t *testing.T) {
	_, err := NewApp(context.Background(), newTestConfig(t, "", ""), &testutil.FakeFactory{Err: errors.New("no interpreter")},
		&testutil.SafeBuffer{}, &testutil.SafeBuffer{}, WithLogger(slog.New(slog.DiscardHandler)))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no interpreter")
}

func TestRun_Success(t *testing.T) {
	ta := setupApp(t, newTestConfig(t, "", ""), localsession.NewFactory())

	require.NoError(t, ta.Run(context.Background(), cli.Parse([]string{"hello", "Bob"})))
	assert.Equal(t, "[gmic] Hello Bob!\n", ta.diag.String())
	assert.Empty(t, ta.stdout.String())
}

func TestRun_NoArguments(t *testing.T) {
	ta := setupApp(t, newTestConfig(t, "", ""), localsession.NewFactory())

	require.NoError(t, ta.Run(context.Background(), cli.Parse(nil)))
	assert.Contains(t, ta.diag.String(), "Usage: gmic")
	assert.Contains(t, ta.diag.String(), "Type 'gmic help'")
}

func TestRun_UnknownCommand(t *testing.T) {
	ta := setupApp(t, newTestConfig(t, "", ""), localsession.NewFactory())

	err := ta.Run(context.Background(), cli.Parse([]string{"nope"}))
	exitErr := requireExitCode(t, err, -1)
	assert.Empty(t, exitErr.Message)
	assert.Equal(t, "[gmic] *** Error *** Unknown command or filename 'nope'.\n\n\n", ta.diag.String())
}

func TestRun_SilentFailureIsReported(t *testing.T) {
	ta := setupApp(t, newTestConfig(t, "", ""), localsession.NewFactory())

	err := ta.Run(context.Background(), cli.Parse([]string{"v", "-", "nope"}))
	requireExitCode(t, err, -1)
	assert.Equal(t, "\n[gmic] Unknown command or filename 'nope'.\n\n", ta.diag.String())
}

func TestRun_FailureDescribesCommand(t *testing.T) {
	user := "#@cli boom : \n#@cli : Fails on purpose.\nboom : error oops\n"
	ta := setupApp(t, newTestConfig(t, "", user), localsession.NewFactory())

	err := ta.Run(context.Background(), cli.Parse([]string{"boom"}))
	requireExitCode(t, err, -1)

	diag := ta.diag.String()
	assert.Contains(t, diag, "*** Error *** oops")
	assert.Contains(t, diag, "\n[gmic] Command 'boom' has the following description: \n")
	assert.Contains(t, diag, "    Fails on purpose.\n")
	assert.NotContains(t, diag, "Command 'boom':\n", "the layered description has no header")
}

func TestRun_FailureDescribesBuiltin(t *testing.T) {
	ta := setupApp(t, newTestConfig(t, "", ""), localsession.NewFactory())

	err := ta.Run(context.Background(), cli.Parse([]string{"v", "loud"}))
	requireExitCode(t, err, -1)

	diag := ta.diag.String()
	assert.Contains(t, diag, "Command 'verbose' has the following description:")
	assert.Contains(t, diag, "Set or increment/decrement the verbosity level.")
}

func TestRun_InvalidSourcesEmitWarnings(t *testing.T) {
	cfg := newTestConfig(t, "#@gmic\nbroken update\n", "broken user\n")
	ta := setupApp(t, cfg, localsession.NewFactory())

	require.NoError(t, ta.Run(context.Background(), cli.Parse([]string{"e", "hi"})))

	diag := ta.diag.String()
	updateWarn := "*** Warning *** File '" + cfg.UpdateFile() + "' is not a valid G'MIC command file."
	userWarn := "*** Warning *** File '" + cfg.UserFile + "' is not a valid G'MIC command file."
	require.Contains(t, diag, updateWarn)
	require.Contains(t, diag, userWarn)
	assert.Less(t, strings.Index(diag, updateWarn), strings.Index(diag, userWarn))
	assert.Less(t, strings.Index(diag, userWarn), strings.Index(diag, "[gmic] hi"))
}

func TestRun_UpdateWithoutMarkerIsSilent(t *testing.T) {
	cfg := newTestConfig(t, "upd : e update\n", "")
	ta := setupApp(t, cfg, localsession.NewFactory())

	assert.False(t, ta.Sources().Update.Present())
	require.NoError(t, ta.Run(context.Background(), cli.Parse([]string{"upd"})))
	assert.Equal(t, "[gmic] update\n", ta.diag.String())
}

func TestRun_Help(t *testing.T) {
	ta := setupApp(t, newTestConfig(t, "", ""), localsession.NewFactory())

	require.NoError(t, ta.Run(context.Background(), cli.Parse([]string{"help", "hello"})))
	assert.Contains(t, ta.stdout.String(), "Command 'hello':")
	assert.Empty(t, ta.diag.String())
}

func TestRun_HelpFailureStillExitsZero(t *testing.T) {
	f := &testutil.FakeFactory{Configure: func(_ int, it *testutil.FakeInterpreter) {
		it.RunFunc = func(string, *interp.List) error { return errors.New("broken") }
	}}
	ta := setupApp(t, newTestConfig(t, "", ""), f)

	require.NoError(t, ta.Run(context.Background(), cli.Parse([]string{"-h"})))
	assert.Contains(t, ta.diag.String(), "[gmic] Unable to render help: broken\n")
	assert.Empty(t, ta.stdout.String())
	assert.Len(t, f.Created, 2)
}

func TestRun_HelpHidesUpdateWithoutMarker(t *testing.T) {
	cfg := newTestConfig(t, "#@cli upd : \n#@cli : Update doc.\nupd : e update\n", "")
	ta := setupApp(t, cfg, localsession.NewFactory())
	require.False(t, ta.Sources().Update.Present())

	require.NoError(t, ta.Run(context.Background(), cli.Parse([]string{"help", "upd"})))
	assert.NotContains(t, ta.stdout.String(), "Update doc.")

	ta.stdout.Reset()
	require.NoError(t, ta.Run(context.Background(), cli.Parse([]string{"help"})))
	assert.NotContains(t, ta.stdout.String(), "upd")
	assert.Contains(t, ta.stdout.String(), "hello")
}

func TestRun_HelpShowsUpdateWithMarker(t *testing.T) {
	cfg := newTestConfig(t, "#@gmic\n#@cli upd : \n#@cli : Update doc.\nupd : e update\n", "")
	ta := setupApp(t, cfg, localsession.NewFactory())
	require.True(t, ta.Sources().Update.Present())

	require.NoError(t, ta.Run(context.Background(), cli.Parse([]string{"help", "upd"})))
	assert.Contains(t, ta.stdout.String(), "    Update doc.\n")

	ta.stdout.Reset()
	require.NoError(t, ta.Run(context.Background(), cli.Parse([]string{"help"})))
	assert.Contains(t, ta.stdout.String(), "Update doc.")
}

func TestRun_GlobalHelpLeavesOutUserCommands(t *testing.T) {
	cfg := newTestConfig(t, "", "#@cli mine : \n#@cli : Mine doc.\nmine : e mine\n")
	ta := setupApp(t, cfg, localsession.NewFactory())

	require.NoError(t, ta.Run(context.Background(), cli.Parse([]string{"help"})))
	assert.Contains(t, ta.stdout.String(), "List of commands:")
	assert.NotContains(t, ta.stdout.String(), "mine")

	ta.stdout.Reset()
	require.NoError(t, ta.Run(context.Background(), cli.Parse([]string{"help", "mine"})))
	assert.Contains(t, ta.stdout.String(), "Command 'mine':")
	assert.Contains(t, ta.stdout.String(), "    Mine doc.\n")
}

func TestRun_NonStructuredFailure(t *testing.T) {
	f := &testutil.FakeFactory{Configure: func(n int, it *testutil.FakeInterpreter) {
		if n == 0 {
			it.RunFunc = func(string, *interp.List) error { return errors.New("disk on fire") }
		}
	}}
	ta := setupApp(t, newTestConfig(t, "", ""), f)

	err := ta.Run(context.Background(), cli.Parse([]string{"blur", "3"}))
	exitErr := requireExitCode(t, err, 1)
	assert.Empty(t, exitErr.Message)
	assert.Contains(t, ta.diag.String(), "[gmic] disk on fire\n")
	assert.Len(t, f.Created, 1, "no help is attempted")
}

func TestRun_RecoverHelpTiers(t *testing.T) {
	f := &testutil.FakeFactory{Configure: func(n int, it *testutil.FakeInterpreter) {
		if n == 0 {
			it.RunFunc = func(string, *interp.List) error { return &interp.Error{Message: "bad", Command: "blur"} }
			return
		}
		it.RunFunc = func(string, *interp.List) error { return errors.New("no help") }
	}}
	cfg := newTestConfig(t, "", "")
	ta := setupApp(t, cfg, f)

	err := ta.Run(context.Background(), cli.Parse([]string{"blur"}))
	requireExitCode(t, err, 1)
	assert.Contains(t, ta.diag.String(), "Command 'blur' has the following description: \n")
	assert.Contains(t, ta.diag.String(), "[gmic] Unable to render help: no help\n")

	require.Len(t, f.Created, 3)
	layered := f.Created[1].Calls[0]
	assert.Equal(t,
		`v - l[] i raw:"`+cfg.UpdateFile()+`",char m "`+cfg.UpdateFile()+`" onfail rm endl `+
			`l[] i raw:"`+cfg.UserFile+`",char m "`+cfg.UserFile+`" onfail rm endl rv help "blur",0 q`,
		layered.Script)
	assert.Equal(t, []string{interp.StdlibName}, layered.Items)

	builtin := f.Created[2].Calls[0]
	assert.Equal(t, `v - help "blur",1 q`, builtin.Script)
}

func TestRun_RecoverHelpEscapesCommandName(t *testing.T) {
	f := &testutil.FakeFactory{Configure: func(n int, it *testutil.FakeInterpreter) {
		if n == 0 {
			it.RunFunc = func(string, *interp.List) error { return &interp.Error{Message: "bad", Command: `we"ird`} }
			return
		}
		it.RunFunc = func(string, *interp.List) error { return errors.New("no help") }
	}}
	ta := setupApp(t, newTestConfig(t, "", ""), f)

	requireExitCode(t, ta.Run(context.Background(), cli.Parse([]string{"blur"})), 1)
	require.Len(t, f.Created, 3)
	assert.True(t, strings.HasSuffix(f.Created[1].Calls[0].Script, ` rv help "we\"ird",0 q`))
	assert.Equal(t, `v - help "we\"ird",1 q`, f.Created[2].Calls[0].Script)
}

func TestRun_MainInterpreterSetup(t *testing.T) {
	f := &testutil.FakeFactory{}
	ta := setupApp(t, newTestConfig(t, "", ""), f)

	main := f.Created[0]
	assert.Equal(t, "cli", main.Vars["_host"])
	require.NotEmpty(t, main.Added)

	require.NoError(t, ta.Run(context.Background(), cli.Parse([]string{"-v", "3", "blur"})))
	require.Len(t, main.Calls, 1)
	assert.Equal(t, "-v 3 cli_start blur\x00", main.Calls[0].Script)
	assert.Equal(t, 0, main.Calls[0].Verbosity)
	assert.Empty(t, main.Calls[0].Items)
}

func TestExecute(t *testing.T) {
	ta := setupApp(t, newTestConfig(t, "", ""), localsession.NewFactory())

	out := ta.Execute(context.Background(), script.Assemble([]string{"error", "bad"}, script.Warnings{}))
	assert.False(t, out.Success)
	assert.True(t, out.Structured)
	assert.Equal(t, "bad", out.Message)
	assert.Empty(t, out.CommandHelp)

	out = ta.Execute(context.Background(), script.Assemble([]string{"e", "ok"}, script.Warnings{}))
	assert.True(t, out.Success)
}
