// Package ui holds terminal styling shared by the CLI commands.
package ui

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"
)

var noColor bool

// SetNoColor turns styling off even on a terminal.
func SetNoColor(off bool) { noColor = off }

// IsTTY reports whether w is an interactive terminal.
func IsTTY(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// Colored reports whether styling should be applied to output on w.
func Colored(w io.Writer) bool {
	return !noColor && IsTTY(w)
}

// C renders s with style when w takes color, otherwise returns s as is.
func C(w io.Writer, style lipgloss.Style, s string) string {
	if !Colored(w) {
		return s
	}
	return style.Render(s)
}

// OK prints a success line.
func OK(w io.Writer, msg string) {
	t := Current()
	fmt.Fprintln(w, C(w, t.Success, t.SymOK+" "+msg))
}

// Fail prints an error line.
func Fail(w io.Writer, msg string) {
	t := Current()
	fmt.Fprintln(w, C(w, t.Error, t.SymFail+" "+msg))
}

// ProgressBar renders done out of total as a bar of width cells followed by
// the percentage. The ratio is capped at one.
func ProgressBar(done, total, width int) string {
	width = max(width, 5)
	ratio := 0.0
	if total > 0 {
		ratio = min(float64(done)/float64(total), 1)
	}
	filled := int(ratio * float64(width))

	var b strings.Builder
	for i := 0; i < width; i++ {
		if i < filled {
			b.WriteString("█")
		} else {
			b.WriteString("░")
		}
	}
	fmt.Fprintf(&b, " %3d%%", int(ratio*100))
	return b.String()
}

// Panel draws lines inside a framed box using the current theme.
func Panel(w io.Writer, lines []string) {
	t := Current()
	box := lipgloss.NewStyle().
		Border(t.Border).
		BorderForeground(t.BorderColor).
		Padding(0, 1)
	fmt.Fprintln(w, box.Render(strings.Join(lines, "\n")))
}

// Size returns the terminal size, or 80x24 when it cannot be determined.
func Size() (int, int) {
	w, h, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || w <= 0 || h <= 0 {
		return 80, 24
	}
	return w, h
}
