package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Theme bundles palette, symbols and border.
// All UI helpers pull from `current`.
type Theme struct {
	Name string

	Title, Muted, Accent, Success, Error, Pending lipgloss.Style
	Selected, DoneText                            lipgloss.Style

	BoxUnchecked, BoxChecked string
	SymDone, SymPending      string
	SymOK, SymFail           string
	Border                   lipgloss.Border
	BorderColor              lipgloss.TerminalColor
}

var current = classic()

// SetTheme switches the active theme. Unknown names fall back to classic.
func SetTheme(name string) {
	switch strings.ToLower(name) {
	case "neon":
		t := classic()
		t.Name = "neon"
		t.Title = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("13"))
		t.Accent = lipgloss.NewStyle().Foreground(lipgloss.Color("14"))
		t.Pending = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
		t.BoxUnchecked, t.BoxChecked = "◻", "◼"
		t.BorderColor = lipgloss.Color("13")
		current = t
	case "mono":
		plain := lipgloss.NewStyle()
		current = Theme{
			Name:  "mono",
			Title: plain, Muted: plain, Accent: plain,
			Success: plain, Error: plain, Pending: plain,
			Selected: plain.Reverse(true), DoneText: plain,
			BoxUnchecked: "[ ]", BoxChecked: "[x]",
			SymDone: "x", SymPending: "-",
			SymOK: "ok", SymFail: "error:",
			Border:      lipgloss.NormalBorder(),
			BorderColor: lipgloss.NoColor{},
		}
	default:
		current = classic()
	}
}

func classic() Theme {
	return Theme{
		Name:     "classic",
		Title:    lipgloss.NewStyle().Bold(true),
		Muted:    lipgloss.NewStyle().Faint(true),
		Accent:   lipgloss.NewStyle().Foreground(lipgloss.Color("12")),
		Success:  lipgloss.NewStyle().Foreground(lipgloss.Color("42")),
		Error:    lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true),
		Pending:  lipgloss.NewStyle().Foreground(lipgloss.Color("214")),
		Selected: lipgloss.NewStyle().Bold(true).Reverse(true),
		DoneText: lipgloss.NewStyle().Faint(true).Strikethrough(true),

		BoxUnchecked: "☐", BoxChecked: "☑",
		SymDone: "✔", SymPending: "•",
		SymOK: "✔", SymFail: "✖",
		Border:      lipgloss.RoundedBorder(),
		BorderColor: lipgloss.Color("8"),
	}
}

// Current returns the active theme.
func Current() Theme { return current }
