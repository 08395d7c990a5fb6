// Package tui holds the interactive front ends: a full screen list browser
// and the one-shot prompts used by the interactive commands.
package tui

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/jamzrob/todoer/internal/model"
	"github.com/jamzrob/todoer/internal/store/daylog"
	"github.com/jamzrob/todoer/internal/ui"
)

// listItem adapts one stored item to bubbles/list.Item.
type listItem struct {
	ordinal int
	name    string
	done    bool
}

func (i listItem) Title() string       { return i.name }
func (i listItem) Description() string { return "" }
func (i listItem) FilterValue() string { return i.name }

// listItems maps the store's items in ordinal order.
func listItems(s *model.Store) []list.Item {
	all := s.All()
	out := make([]list.Item, 0, len(all))
	for i, it := range all {
		out = append(out, listItem{ordinal: i, name: it.Name, done: it.Done})
	}
	return out
}

// itemDelegate renders single line rows.
type itemDelegate struct{}

func (d itemDelegate) Height() int                               { return 1 }
func (d itemDelegate) Spacing() int                              { return 0 }
func (d itemDelegate) Update(msg tea.Msg, m *list.Model) tea.Cmd { return nil }
func (d itemDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	it, ok := item.(listItem)
	if !ok {
		return
	}
	t := ui.Current()
	box := t.Muted.Render(t.BoxUnchecked)
	text := it.name
	if it.done {
		box = t.Success.Render(t.BoxChecked)
		text = t.DoneText.Render(text)
	}
	prefix := "  "
	if index == m.Index() {
		prefix = t.Selected.Render(">") + " "
	}
	fmt.Fprintf(w, "%s%s %s %s", prefix, t.Muted.Render(fmt.Sprintf("%2d)", it.ordinal)), box, text)
}

var (
	doneKey   = key.NewBinding(key.WithKeys(" "), key.WithHelp("space", "done"))
	removeKey = key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "remove"))
	addKey    = key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "add"))
)

// Browser is the Bubble Tea model of the list browser. Every change is
// applied to the day log and saved straight away.
type Browser struct {
	log  *daylog.DayLog
	save func(*daylog.DayLog) error

	list   list.Model
	adding bool
	input  textinput.Model
	status string
	err    error

	width, height int
}

// NewBrowser returns a browser over l. save persists l after each change.
func NewBrowser(l *daylog.DayLog, save func(*daylog.DayLog) error) Browser {
	t := ui.Current()
	lm := list.New(listItems(l.Store), itemDelegate{}, 0, 0)
	lm.SetShowHelp(true)
	lm.SetShowStatusBar(true)
	lm.SetFilteringEnabled(true)
	lm.Styles.Title = t.Title
	lm.FilterInput.Prompt = "/ "
	lm.SetStatusBarItemName("item", "items")
	lm.AdditionalShortHelpKeys = func() []key.Binding { return []key.Binding{doneKey, removeKey, addKey} }
	lm.AdditionalFullHelpKeys = lm.AdditionalShortHelpKeys

	ti := textinput.New()
	ti.Prompt = "> "
	ti.Placeholder = "New item..."
	ti.CharLimit = 200

	w, h := ui.Size()
	lm.SetSize(w-4, h-4)
	b := Browser{log: l, save: save, list: lm, input: ti, width: w, height: h}
	b.refresh()
	return b
}

// Run starts the browser on the alternate screen and blocks until the user
// quits.
func Run(l *daylog.DayLog, save func(*daylog.DayLog) error) error {
	final, err := tea.NewProgram(NewBrowser(l, save), tea.WithAltScreen()).Run()
	if err != nil {
		return err
	}
	if b, ok := final.(Browser); ok && b.err != nil {
		return b.err
	}
	return nil
}

// refresh rebuilds rows and title from the store. Ordinals shift after a
// remove, so rows are never patched in place.
func (b *Browser) refresh() {
	t := ui.Current()
	done, pending := b.log.Store.Stats()
	b.list.Title = fmt.Sprintf("%s  %s   %s %d  %s %d",
		t.Title.Render("Todos"),
		t.Muted.Render(b.log.Key),
		t.Success.Render(t.SymDone), done,
		t.Pending.Render(t.SymPending), pending,
	)
	idx := b.list.Index()
	b.list.SetItems(listItems(b.log.Store))
	if n := len(b.list.Items()); idx >= n && n > 0 {
		idx = n - 1
	}
	b.list.Select(idx)
}

// apply runs one mutation, saves, and rebuilds the rows. A change that
// cannot be saved is rolled back so the rows keep matching the store.
func (b *Browser) apply(verb string, op func(*model.Store) error) {
	before := b.log.Store.Clone()
	if err := op(b.log.Store); err != nil {
		b.log.Store = before
		b.status = ui.Current().Error.Render(err.Error())
		return
	}
	if err := b.save(b.log); err != nil {
		b.log.Store = before
		b.err = err
		b.status = ui.Current().Error.Render("save failed: " + err.Error())
		b.refresh()
		return
	}
	b.status = ui.Current().Success.Render(verb)
	b.refresh()
}

func (b *Browser) selected() (listItem, bool) {
	it, ok := b.list.SelectedItem().(listItem)
	return it, ok
}

// Init implements tea.Model.
func (b Browser) Init() tea.Cmd { return nil }

// Update implements tea.Model.
func (b Browser) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if ws, ok := msg.(tea.WindowSizeMsg); ok {
		b.width, b.height = ws.Width, ws.Height
		return b, nil
	}

	if b.adding {
		return b.updateAdding(msg)
	}

	km, ok := msg.(tea.KeyMsg)
	if !ok || b.list.FilterState() == list.Filtering {
		var cmd tea.Cmd
		b.list, cmd = b.list.Update(msg)
		return b, cmd
	}

	switch {
	case km.String() == "q", km.String() == "ctrl+c":
		return b, tea.Quit
	case key.Matches(km, doneKey):
		if it, ok := b.selected(); ok {
			if it.done {
				b.status = ui.Current().Muted.Render("already done")
				return b, nil
			}
			b.apply("done", func(s *model.Store) error { return s.MarkDone(it.ordinal) })
		}
		return b, nil
	case key.Matches(km, removeKey):
		if it, ok := b.selected(); ok {
			b.apply("removed", func(s *model.Store) error { return s.Remove(it.ordinal) })
		}
		return b, nil
	case key.Matches(km, addKey):
		b.adding = true
		b.status = ""
		b.input.SetValue("")
		return b, b.input.Focus()
	}

	var cmd tea.Cmd
	b.list, cmd = b.list.Update(msg)
	return b, cmd
}

func (b Browser) updateAdding(msg tea.Msg) (tea.Model, tea.Cmd) {
	if km, ok := msg.(tea.KeyMsg); ok {
		switch km.String() {
		case "enter":
			name := strings.TrimSpace(b.input.Value())
			if err := validateName(name); err != nil {
				b.status = ui.Current().Error.Render(err.Error())
				return b, nil
			}
			b.adding = false
			b.input.Blur()
			b.apply("added", func(s *model.Store) error {
				s.Append(name)
				return nil
			})
			b.list.Select(len(b.list.Items()) - 1)
			return b, nil
		case "esc":
			b.adding = false
			b.status = ""
			b.input.Blur()
			return b, nil
		}
	}
	var cmd tea.Cmd
	b.input, cmd = b.input.Update(msg)
	return b, cmd
}

// View implements tea.Model.
func (b Browser) View() string {
	theme := ui.Current()
	listHeight := b.height - 4
	if b.adding {
		listHeight -= 3
	}
	if b.status != "" {
		listHeight--
	}
	b.list.SetSize(b.width-4, listHeight)

	content := b.list.View()
	if b.adding {
		bar := lipgloss.NewStyle().
			Border(theme.Border).
			BorderForeground(theme.BorderColor).
			Padding(0, 1)
		content += "\n" + bar.Render("Add item\n"+b.input.View())
	}
	if b.status != "" {
		content += "\n" + b.status
	}
	return lipgloss.NewStyle().
		Border(theme.Border).
		BorderForeground(theme.BorderColor).
		Padding(0, 1).
		Render(content)
}
