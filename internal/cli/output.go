package cli

import (
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"golang.org/x/term"
)

// Color palette - keeping it minimal and accessible.
var (
	colorPrimary   = lipgloss.Color("39")  // Blue
	colorSecondary = lipgloss.Color("245") // Gray
	colorSuccess   = lipgloss.Color("34")  // Green
	colorError     = lipgloss.Color("196") // Red
)

// styles renders command output. The zero value prints plain text.
type styles struct {
	title   lipgloss.Style
	header  lipgloss.Style
	cell    lipgloss.Style
	muted   lipgloss.Style
	success lipgloss.Style
	failure lipgloss.Style
	border  lipgloss.Style
}

const (
	symbolCheck   = "✓"
	symbolCross   = "✗"
	symbolDefault = "*"
)

// useColor reports whether w is an interactive terminal that accepts colour.
//
// Returns false if:
//   - NO_COLOR is set (accessibility/automation indicator)
//   - CI is set (common CI/CD convention)
//   - w is not a terminal (piped output, files, test buffers)
func useColor(w io.Writer) bool {
	if os.Getenv("NO_COLOR") != "" || os.Getenv("CI") != "" {
		return false
	}
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return term.IsTerminal(int(f.Fd()))
}

func newStyles(w io.Writer) styles {
	plain := lipgloss.NewStyle()
	s := styles{
		title:   plain,
		header:  plain,
		cell:    plain.Padding(0, 1),
		muted:   plain,
		success: plain,
		failure: plain,
		border:  plain,
	}
	if !useColor(w) {
		s.header = plain.Padding(0, 1)
		return s
	}

	s.title = plain.Bold(true).Foreground(colorPrimary)
	s.header = plain.Bold(true).Foreground(colorPrimary).Padding(0, 1)
	s.muted = plain.Foreground(colorSecondary)
	s.success = plain.Foreground(colorSuccess)
	s.failure = plain.Foreground(colorError)
	s.border = plain.Foreground(colorSecondary)
	return s
}

// table renders rows under headers with rounded borders.
func (s styles) table(headers []string, rows [][]string) string {
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(s.border).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return s.header
			}
			return s.cell
		}).
		Headers(headers...).
		Rows(rows...).
		String()
}
