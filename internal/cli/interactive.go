package cli

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/jamzrob/todoer/internal/store/daylog"
	"github.com/jamzrob/todoer/internal/tui"
	"github.com/jamzrob/todoer/internal/ui"
)

func (a *app) interactiveCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "interactive",
		Aliases: []string{"i"},
		Short:   "Print the list, then prompt for one change",
		Args:    usageArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, _ []string) error {
			l, err := a.open()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			a.show(out, l)

			op, err := tui.PickOperation(false)
			if err != nil {
				return quietAbort(err)
			}
			return a.prompted(out, l, op)
		},
	}
}

func (a *app) pastCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "past",
		Short: "Pick an earlier day and edit it",
		Long: `Pick a day from the directory, then add, complete or remove items on
it until you choose quit. Past days never pick up unfinished items
from the day before.`,
		Args: usageArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, _ []string) error {
			agg, err := a.scan()
			if err != nil {
				return err
			}
			key, err := tui.PickDay(agg.Keys())
			if err != nil {
				return quietAbort(err)
			}
			l, err := a.journal.Load(key, true)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			for {
				if ui.IsTTY(out) {
					fmt.Fprint(out, "\x1bc")
				}
				a.show(out, l)
				op, err := tui.PickOperation(true)
				if err != nil {
					return quietAbort(err)
				}
				if op == tui.OpQuit {
					return nil
				}
				if err := a.prompted(out, l, op); err != nil {
					return err
				}
			}
		},
	}
}

func (a *app) tuiCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "tui",
		Short: "Browse and edit the list full screen",
		Args:  usageArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, _ []string) error {
			l, err := a.open()
			if err != nil {
				return err
			}
			return tui.Run(l, func(l *daylog.DayLog) error {
				if err := l.Save(); err != nil {
					return err
				}
				a.logger.Debug("saved", "path", l.Path)
				return nil
			})
		},
	}
}

// prompted applies one prompted change to l and saves it.
func (a *app) prompted(out io.Writer, l *daylog.DayLog, op tui.Operation) error {
	changed, err := tui.Apply(l.Store, op)
	switch {
	case errors.Is(err, tui.ErrNothingToPick):
		ui.Fail(out, fmt.Sprintf("nothing to %s", op))
		return nil
	case err != nil:
		return quietAbort(err)
	case !changed:
		return nil
	}
	if err := l.Save(); err != nil {
		return err
	}
	ui.OK(out, string(op))
	return nil
}

// show prints l the way ls does.
func (a *app) show(out io.Writer, l *daylog.DayLog) {
	if ui.IsTTY(out) {
		ui.Panel(out, a.panelLines(out, l))
		return
	}
	fmt.Fprintln(out, l.Render(a.mode))
}

// quietAbort turns a cancelled prompt into a clean exit.
func quietAbort(err error) error {
	if errors.Is(err, tui.ErrAborted) {
		return nil
	}
	return err
}
