package cli

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jamzrob/todoer/internal/model"
	"github.com/jamzrob/todoer/internal/store/daylog"
	"github.com/jamzrob/todoer/internal/ui"
)

func (a *app) listCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "ls",
		Aliases: []string{"list", "print"},
		Short:   "Print the day's list",
		Args:    usageArgs(cobra.NoArgs),
		RunE:    a.runList,
	}
}

func (a *app) runList(cmd *cobra.Command, _ []string) error {
	l, err := a.open()
	if err != nil {
		return err
	}
	a.show(cmd.OutOrStdout(), l)
	return nil
}

// panelLines draws a log for the terminal: counts, progress and both
// sections, numbered the way the commands expect.
func (a *app) panelLines(w io.Writer, l *daylog.DayLog) []string {
	t := ui.Current()
	done, pending := l.Store.Stats()
	header := fmt.Sprintf("%s  %s   %s %d  %s %d  %s %d",
		ui.C(w, t.Title, "Todos"),
		ui.C(w, t.Muted, l.Key),
		ui.C(w, t.Success, t.SymDone), done,
		ui.C(w, t.Pending, t.SymPending), pending,
		ui.C(w, t.Accent, "Total"), done+pending,
	)
	lines := []string{
		header,
		ui.C(w, t.Muted, ui.ProgressBar(done, done+pending, 28)),
		"",
		ui.C(w, t.Accent, "Todo"),
	}

	var todo, finished []string
	for i, it := range l.Store.All() {
		prefix := strings.TrimSuffix(a.mode.Line(i, ""), " \n")
		if it.Done {
			finished = append(finished, fmt.Sprintf("%s %s %s",
				ui.C(w, t.Muted, prefix), ui.C(w, t.Success, t.BoxChecked), ui.C(w, t.DoneText, it.Name)))
		} else {
			todo = append(todo, fmt.Sprintf("%s %s %s",
				ui.C(w, t.Muted, prefix), ui.C(w, t.Muted, t.BoxUnchecked), it.Name))
		}
	}
	lines = append(lines, orNone(w, todo)...)
	lines = append(lines, "", ui.C(w, t.Accent, "Done"))
	lines = append(lines, orNone(w, finished)...)
	if done+pending == 0 {
		lines = append(lines, "", ui.C(w, t.Muted, "Tip: add with `todo add \"buy milk\"`"))
	}
	return lines
}

func orNone(w io.Writer, lines []string) []string {
	if len(lines) == 0 {
		return []string{ui.C(w, ui.Current().Muted, "(none)")}
	}
	return lines
}

func (a *app) addCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "add <name...>",
		Short: "Append an item",
		Long: `Append an item to the end of the day's list. Words are joined with
single spaces, so quoting is optional.`,
		Args: usageArgs(cobra.MinimumNArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := strings.TrimSpace(strings.Join(args, " "))
			if name == "" {
				return usage("add: empty name")
			}
			if strings.ContainsAny(name, "\r\n") {
				return usage("add: name must be a single line")
			}
			var idx int
			if _, err := a.update(func(s *model.Store) error {
				idx = s.Append(name)
				return nil
			}); err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			ui.OK(out, fmt.Sprintf("added %s", strings.TrimSuffix(a.mode.Line(idx, name), "\n")))
			return nil
		},
	}
}

func (a *app) doneCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "done <number>",
		Short: "Mark an item done",
		Args:  usageArgs(cobra.ExactArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withOrdinal(cmd, args[0], "done", func(s *model.Store, i int) error {
				return s.MarkDone(i)
			})
		},
	}
}

func (a *app) removeCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "rm <number>",
		Aliases: []string{"remove"},
		Short:   "Remove an item and renumber the rest",
		Args:    usageArgs(cobra.ExactArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withOrdinal(cmd, args[0], "removed", func(s *model.Store, i int) error {
				return s.Remove(i)
			})
		},
	}
}

func (a *app) withOrdinal(cmd *cobra.Command, arg, verb string, op func(*model.Store, int) error) error {
	idx, err := strconv.Atoi(strings.TrimSpace(arg))
	if err != nil {
		return usage("%s: not a number: %s", cmd.Name(), arg)
	}
	var name string
	if _, err := a.update(func(s *model.Store) error {
		if err := op(s, idx); err != nil {
			return err
		}
		if names := s.Names(); verb != "removed" && idx < len(names) {
			name = names[idx]
		}
		return nil
	}); err != nil {
		return fmt.Errorf("%s: %w", cmd.Name(), err)
	}
	msg := fmt.Sprintf("%s %d", verb, idx)
	if name != "" {
		msg += " " + name
	}
	ui.OK(cmd.OutOrStdout(), msg)
	return nil
}

func (a *app) allCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "all",
		Short: "Print every day merged into one list",
		Long: `Print every day in the directory merged into one list. Pending and
done items are numbered separately across all days.`,
		Args: usageArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, _ []string) error {
			agg, err := a.scan()
			if err != nil {
				return err
			}
			_, err = io.WriteString(cmd.OutOrStdout(), agg.RenderMerged(a.mode)+"\n")
			return err
		},
	}
}

func (a *app) daysCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "days",
		Short: "Print every day in turn",
		Args:  usageArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, _ []string) error {
			agg, err := a.scan()
			if err != nil {
				return err
			}
			_, err = io.WriteString(cmd.OutOrStdout(), agg.RenderEach(a.mode)+"\n")
			return err
		},
	}
}

func (a *app) scan() (*daylog.Aggregate, error) {
	agg, err := a.journal.Scan()
	if err != nil {
		return nil, err
	}
	for _, err := range agg.Skipped {
		a.logger.Warn("skipping unreadable day", "err", err)
	}
	return agg, nil
}
