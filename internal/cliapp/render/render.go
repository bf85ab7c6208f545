// Package render formats diagnostics for a terminal, the non-interactive
// half of the teacher's internal/cli/formatter: severity-colored lines, no
// TUI. The scheduling core never imports this package — only the CLI
// driver does.
package render

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/chronoplan/chronoplan/internal/diagnostics"
)

var (
	colorInfo    = lipgloss.Color("#83a598")
	colorHint    = lipgloss.Color("#928374")
	colorWarning = lipgloss.Color("#fabd2f")
	colorError   = lipgloss.Color("#fb4934")

	styleInfo    = lipgloss.NewStyle().Foreground(colorInfo)
	styleHint    = lipgloss.NewStyle().Foreground(colorHint)
	styleWarning = lipgloss.NewStyle().Foreground(colorWarning)
	styleError   = lipgloss.NewStyle().Foreground(colorError).Bold(true)
)

func styleFor(sev diagnostics.Severity) lipgloss.Style {
	switch sev {
	case diagnostics.SeverityError:
		return styleError
	case diagnostics.SeverityWarning:
		return styleWarning
	case diagnostics.SeverityHint:
		return styleHint
	default:
		return styleInfo
	}
}

// Diagnostics writes one colored line per diagnostic to w. plain disables
// color (non-interactive output, e.g. piped to a file).
func Diagnostics(w io.Writer, diags []diagnostics.Diagnostic, plain bool) {
	for _, d := range diags {
		line := formatLine(d)
		if plain {
			fmt.Fprintln(w, line)
			continue
		}
		fmt.Fprintln(w, styleFor(d.Severity).Render(line))
	}
}

func formatLine(d diagnostics.Diagnostic) string {
	var loc string
	switch {
	case d.TaskID != "" && d.ResourceID != "":
		loc = fmt.Sprintf(" [task=%s resource=%s]", d.TaskID, d.ResourceID)
	case d.TaskID != "":
		loc = fmt.Sprintf(" [task=%s]", d.TaskID)
	case d.ResourceID != "":
		loc = fmt.Sprintf(" [resource=%s]", d.ResourceID)
	}
	return fmt.Sprintf("%s %s: %s%s", strings.ToUpper(d.Severity.String()), d.Code, d.Message, loc)
}

// Summary renders a one-line counts-by-severity footer, e.g.
// "1 hint, 2 warnings" (severities in info, hint, warning, error order).
func Summary(w io.Writer, diags []diagnostics.Diagnostic) {
	var counts [4]int
	for _, d := range diags {
		counts[d.Severity]++
	}
	var parts []string
	labels := []string{"info", "hint", "warning", "error"}
	for i, n := range counts {
		if n == 0 {
			continue
		}
		label := labels[i]
		if n != 1 {
			label += "s"
		}
		parts = append(parts, fmt.Sprintf("%d %s", n, label))
	}
	if len(parts) == 0 {
		fmt.Fprintln(w, "no diagnostics")
		return
	}
	fmt.Fprintln(w, strings.Join(parts, ", "))
}
