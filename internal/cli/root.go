// Package cli wires the day log engine to the todo command line.
package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/jamzrob/todoer/internal/config"
	"github.com/jamzrob/todoer/internal/daykey"
	"github.com/jamzrob/todoer/internal/logging"
	"github.com/jamzrob/todoer/internal/model"
	"github.com/jamzrob/todoer/internal/store/daylog"
	"github.com/jamzrob/todoer/internal/ui"
)

// Exit codes returned by Run.
const (
	ExitOK    = 0
	ExitError = 1
	ExitUsage = 2
)

// usageError marks errors caused by how the command was invoked.
type usageError struct{ err error }

func (e *usageError) Error() string { return e.err.Error() }
func (e *usageError) Unwrap() error { return e.err }

func usage(format string, args ...any) error {
	return &usageError{err: fmt.Errorf(format, args...)}
}

// flags are the persistent root flags.
type flags struct {
	config  string
	dir     string
	day     string
	file    string
	render  string
	theme   string
	noColor bool
}

// app is the state shared by every command of one invocation.
type app struct {
	getenv         config.Getenv
	now            func() time.Time
	stdout, stderr io.Writer

	flags   flags
	cfg     *config.Config
	logger  *log.Logger
	closer  io.Closer
	journal *daylog.Journal
	mode    model.RenderMode
}

// Option customizes the command tree, mostly for tests.
type Option func(*app)

// WithGetenv replaces the environment lookup.
func WithGetenv(getenv config.Getenv) Option {
	return func(a *app) { a.getenv = getenv }
}

// WithClock replaces the wall clock used to pick today's key.
func WithClock(now func() time.Time) Option {
	return func(a *app) { a.now = now }
}

// WithOutput redirects command output and errors.
func WithOutput(stdout, stderr io.Writer) Option {
	return func(a *app) { a.stdout, a.stderr = stdout, stderr }
}

// NewRootCommand returns the todo command tree. Without a subcommand it
// lists today.
func NewRootCommand(opts ...Option) *cobra.Command {
	return newApp(opts...).command()
}

func newApp(opts ...Option) *app {
	a := &app{getenv: os.Getenv, now: time.Now}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

func (a *app) command() *cobra.Command {
	root := &cobra.Command{
		Use:   "todo",
		Short: "Daily todo lists kept in plain text files",
		Long: `todo keeps one list per day in a plain text file.

Items are addressed by their number in the list. Removing an item
renumbers the ones after it. The first time a day is opened, the
unfinished items of the day before are carried over.

Examples:
  todo add "buy milk"
  todo done 0
  todo rm 1
  todo --day yesterday
  todo all`,
		Args:              usageArgs(cobra.NoArgs),
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: a.setup,
		RunE:              a.runList,
	}
	if a.stdout != nil {
		root.SetOut(a.stdout)
	}
	if a.stderr != nil {
		root.SetErr(a.stderr)
	}
	root.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return &usageError{err: err}
	})

	pf := root.PersistentFlags()
	pf.StringVarP(&a.flags.config, "config", "c", "", "config file (default $XDG_CONFIG_HOME/todoer/config.toml)")
	pf.StringVar(&a.flags.dir, "dir", "", "directory holding the day files")
	pf.StringVarP(&a.flags.day, "day", "d", "", `day to open: a date, "yesterday", "last friday" or a custom name; single words like "may" read as dates, "=may" forces a literal name`)
	pf.StringVarP(&a.flags.file, "file", "f", "", "open this file directly instead of a day")
	pf.StringVar(&a.flags.render, "render", "", "render mode: numbered or bullet")
	pf.StringVar(&a.flags.theme, "theme", "", "color theme: classic, neon or mono")
	pf.BoolVar(&a.flags.noColor, "no-color", false, "disable colored output")
	root.MarkFlagsMutuallyExclusive("day", "file")

	root.AddCommand(
		a.listCommand(),
		a.addCommand(),
		a.doneCommand(),
		a.removeCommand(),
		a.allCommand(),
		a.daysCommand(),
		a.pastCommand(),
		a.interactiveCommand(),
		a.tuiCommand(),
		a.serveCommand(),
	)
	return root
}

// Run executes the command line and returns the process exit code: 0 on
// success, 2 for usage errors and out of range ordinals, 1 otherwise.
func Run(args []string, opts ...Option) int {
	a := newApp(opts...)
	defer a.teardown()

	root := a.command()
	root.SetArgs(args)
	err := root.Execute()
	if err == nil {
		return ExitOK
	}
	stderr := root.ErrOrStderr()
	ui.Fail(stderr, err.Error())
	code := exitCode(err)
	if errors.Is(err, model.ErrOutOfRange) {
		fmt.Fprintln(stderr, ui.C(stderr, ui.Current().Muted, "Hint: run `todo ls` to see valid numbers"))
	} else if code == ExitUsage {
		fmt.Fprintln(stderr, ui.C(stderr, ui.Current().Muted, "Run `todo --help` for usage."))
	}
	return code
}

func exitCode(err error) int {
	var ue *usageError
	switch {
	case err == nil:
		return ExitOK
	case errors.As(err, &ue), errors.Is(err, model.ErrOutOfRange):
		return ExitUsage
	default:
		return ExitError
	}
}

func usageArgs(v cobra.PositionalArgs) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if err := v(cmd, args); err != nil {
			return &usageError{err: err}
		}
		return nil
	}
}

// setup resolves configuration once flags are parsed.
func (a *app) setup(cmd *cobra.Command, _ []string) error {
	// Skip initialization for help commands
	if cmd.Name() == "help" || cmd.Name() == "completion" ||
		(cmd.HasParent() && cmd.Parent().Name() == "completion") {
		return nil
	}
	cfg, err := config.Load(a.flags.config, a.getenv)
	if err != nil {
		return err
	}
	f := cmd.Flags()
	if f.Changed("dir") {
		cfg.Dir = a.flags.dir
	}
	if f.Changed("render") {
		cfg.Render = a.flags.render
	}
	if f.Changed("theme") {
		cfg.Theme = a.flags.theme
	}
	if a.flags.noColor {
		cfg.NoColor = true
	}

	mode, err := model.ParseRenderMode(cfg.Render)
	if err != nil {
		return &usageError{err: err}
	}

	a.cfg = cfg
	a.mode = mode
	a.journal = cfg.Journal()
	a.logger, a.closer = logging.New(cfg.Log, "todo")
	ui.SetTheme(cfg.Theme)
	ui.SetNoColor(cfg.NoColor)

	a.logger.Debug("config resolved", "dir", cfg.Dir, "ext", a.journal.Ext, "render", mode)
	return nil
}

func (a *app) teardown() {
	if a.closer != nil {
		_ = a.closer.Close()
	}
}

// open loads the log the flags point at: an explicit file, a resolved day,
// or today.
func (a *app) open() (*daylog.DayLog, error) {
	if a.flags.file != "" {
		a.logger.Debug("opening file", "path", a.flags.file)
		return daylog.OpenFile(a.flags.file)
	}
	now := a.now()
	key, err := daykey.Resolve(a.flags.day, now, a.cfg.DateLayout)
	if err != nil {
		return nil, &usageError{err: err}
	}
	past := daykey.IsPast(key, now, a.cfg.DateLayout)
	a.logger.Debug("loading day", "key", key, "past", past)
	return a.journal.Load(key, past)
}

// update loads the current log, applies op and saves.
func (a *app) update(op func(*model.Store) error) (*daylog.DayLog, error) {
	l, err := a.open()
	if err != nil {
		return nil, err
	}
	if err := op(l.Store); err != nil {
		return nil, err
	}
	if err := l.Save(); err != nil {
		return nil, err
	}
	a.logger.Debug("saved", "path", l.Path, "size", l.Store.Size(), "done", l.Store.DoneCount())
	return l, nil
}
