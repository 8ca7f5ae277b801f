// Package app wires configuration, logging and the YouVersion client into
// the yvctl command line.
package app

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/PandaWhoCodes/youversion/internal/config"
	"github.com/PandaWhoCodes/youversion/internal/platform/logger"
	"github.com/PandaWhoCodes/youversion/pkg/apierr"
	"github.com/PandaWhoCodes/youversion/pkg/result"
	"github.com/PandaWhoCodes/youversion/pkg/retry"
	"github.com/PandaWhoCodes/youversion/pkg/youversion"
)

// Exit codes returned by Main.
const (
	ExitOK     = 0
	ExitDomain = 1 // the API answered with not found or invalid input
	ExitInfra  = 2 // the call itself failed
	ExitUsage  = 64
)

// ErrUsage marks command line mistakes.
var ErrUsage = errors.New("usage")

// App wires application components.
type App struct {
	cfg config.Config
	log *slog.Logger
	out io.Writer
	now func() time.Time

	json    bool
	retries int
	// retryPolicy overrides the policy built from retries.
	retryPolicy *retry.Policy
}

type command struct {
	name    string
	usage   string
	summary string
	// offline commands run without an app key.
	offline bool
	run     func(ctx context.Context, a *App, args []string) error
}

var commands = map[string]command{}

func register(c command) { commands[c.name] = c }

// New creates an App writing command output to out.
func New(cfg config.Config, log *slog.Logger, out io.Writer) *App {
	return &App{cfg: cfg, log: log, out: out, now: time.Now, retries: cfg.Defaults.Retries}
}

// Main loads configuration, runs one command and returns the process exit code.
func Main(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(stderr, "yvctl:", err)
		return ExitUsage
	}
	log := logger.New(logger.Options{
		Env:       cfg.Env,
		Level:     cfg.Log.ConsoleLevel,
		FileLevel: cfg.Log.FileLevel,
		File:      cfg.Log.File,
		App:       "yvctl",
		Console:   stderr,
		Secrets:   []string{cfg.API.Key},
	})
	defer logger.Close(log)

	err = New(cfg, log, stdout).Run(ctx, args)
	code := ExitCode(err)
	switch {
	case code == ExitUsage:
		fmt.Fprintln(stderr, "yvctl:", err)
		fmt.Fprint(stderr, Usage())
	case code != ExitOK:
		fmt.Fprintln(stderr, "yvctl:", err)
	}
	return code
}

// Run parses global flags and dispatches to a command.
func (a *App) Run(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("yvctl", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	fs.BoolVar(&a.json, "json", false, "print JSON instead of a table")
	fs.IntVar(&a.retries, "retries", a.retries, "retry rate limits, server and connection errors up to n times")
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("%w: %v", ErrUsage, err)
	}
	if a.retries < 0 {
		return fmt.Errorf("%w: -retries cannot be negative", ErrUsage)
	}
	if fs.NArg() == 0 {
		return fmt.Errorf("%w: missing command", ErrUsage)
	}

	name := fs.Arg(0)
	cmd, ok := commands[name]
	if !ok {
		return fmt.Errorf("%w: unknown command %q", ErrUsage, name)
	}
	if !cmd.offline {
		if err := a.cfg.RequireAPIKey(); err != nil {
			return err
		}
	}
	a.log.Debug("running command", slog.String("command", name), slog.Bool("json", a.json), slog.Int("retries", a.retries))
	return cmd.run(ctx, a, fs.Args()[1:])
}

// Usage lists the available commands.
func Usage() string {
	names := make([]string, 0, len(commands))
	for n := range commands {
		names = append(names, n)
	}
	sort.Strings(names)

	var b strings.Builder
	b.WriteString("usage: yvctl [-json] [-retries n] <command> [flags] [args]\n\ncommands:\n")
	for _, n := range names {
		c := commands[n]
		fmt.Fprintf(&b, "  %-40s %s\n", c.name+" "+c.usage, c.summary)
	}
	return b.String()
}

// ExitCode maps an error returned by Run to a process exit code.
func ExitCode(err error) int {
	switch {
	case err == nil:
		return ExitOK
	case errors.Is(err, ErrUsage), errors.Is(err, config.ErrNoAPIKey):
		return ExitUsage
	case apierr.IsDomain(err):
		return ExitDomain
	default:
		return ExitInfra
	}
}

func (a *App) options() []youversion.Option {
	return []youversion.Option{
		youversion.WithBaseURL(a.cfg.API.BaseURL),
		youversion.WithTimeout(a.cfg.API.Timeout),
		youversion.WithLogger(a.log),
	}
}

func (a *App) client() (*youversion.Client, error) {
	return youversion.New(a.cfg.API.Key, a.options()...)
}

func (a *App) policy() retry.Policy {
	if a.retryPolicy != nil {
		return *a.retryPolicy
	}
	p := retry.WithAttempts(a.retries + 1)
	p.OnRetry = func(attempt int, err error, delay time.Duration) {
		a.log.Warn("retrying", slog.Int("attempt", attempt), slog.Duration("delay", delay), slog.Any("error", err))
	}
	return p
}

// attempt runs fn once, or under the retry policy when retries are enabled.
func attempt[T any](ctx context.Context, a *App, fn func(context.Context) (T, error)) (T, error) {
	if a.retries == 0 && a.retryPolicy == nil {
		return fn(ctx)
	}
	return retry.Call(ctx, a.policy(), fn)
}

// fetch runs one client call under the retry policy and turns a domain
// failure into an error for the command line.
func fetch[T any](ctx context.Context, a *App, fn func(context.Context) (result.Result[T], error)) (T, error) {
	res, err := attempt(ctx, a, fn)
	if err != nil {
		var zero T
		return zero, err
	}
	v, ok := res.Get()
	if !ok {
		return v, res.Err()
	}
	return v, nil
}

// withClient runs fn with a fresh client that is closed afterwards.
func (a *App) withClient(ctx context.Context, fn func(context.Context, *youversion.Client) error) error {
	return youversion.With(ctx, a.cfg.API.Key, fn, a.options()...)
}

func newFlagSet(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	return fs
}

// parse parses flags then requires exactly n positional arguments, or any
// number when n is negative. Flags may follow positional arguments until
// "--", after which everything is positional.
func parse(fs *flag.FlagSet, args []string, n int) ([]string, error) {
	var pos []string
	for {
		if err := fs.Parse(args); err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrUsage, fs.Name(), err)
		}
		rest := fs.Args()
		if consumed := len(args) - len(rest); consumed > 0 && args[consumed-1] == "--" {
			pos = append(pos, rest...)
			break
		}
		if len(rest) == 0 {
			break
		}
		pos = append(pos, rest[0])
		args = rest[1:]
	}
	if n >= 0 && len(pos) != n {
		return nil, fmt.Errorf("%w: %s expects %d argument(s), got %d", ErrUsage, fs.Name(), n, len(pos))
	}
	return pos, nil
}
