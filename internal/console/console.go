// Package console renders the diagnostic log for a terminal.
package console

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/vadiminshakov/btccmon/internal/logbuffer"
)

// Terminal palette shared by the log dump and the setup wizard.
var (
	Subtle    = lipgloss.AdaptiveColor{Light: "#9C9C9C", Dark: "#5C5C5C"}
	Highlight = lipgloss.AdaptiveColor{Light: "#874BFD", Dark: "#7D56F4"}
	Success   = lipgloss.AdaptiveColor{Light: "#43BF6D", Dark: "#73F59F"}
	Warning   = lipgloss.AdaptiveColor{Light: "#A36B00", Dark: "#F5C26B"}
	Failure   = lipgloss.AdaptiveColor{Light: "#B00020", Dark: "#FF6B6B"}
)

var (
	timeStyle = lipgloss.NewStyle().Foreground(Subtle)

	severityStyles = map[logbuffer.Severity]lipgloss.Style{
		logbuffer.SeverityInfo:    lipgloss.NewStyle(),
		logbuffer.SeverityWarning: lipgloss.NewStyle().Foreground(Warning),
		logbuffer.SeverityError:   lipgloss.NewStyle().Foreground(Failure).Bold(true),
	}

	labels = map[logbuffer.Severity]string{
		logbuffer.SeverityInfo:    "INFO ",
		logbuffer.SeverityWarning: "WARN ",
		logbuffer.SeverityError:   "ERROR",
	}
)

// Render formats entries one per line, oldest first. Returns "" for no entries.
func Render(entries []logbuffer.Entry) string {
	if len(entries) == 0 {
		return ""
	}

	var sb strings.Builder
	for _, e := range entries {
		style, ok := severityStyles[e.Severity]
		if !ok {
			style = severityStyles[logbuffer.SeverityInfo]
		}
		label, ok := labels[e.Severity]
		if !ok {
			label = e.Severity.String()
		}

		sb.WriteString(timeStyle.Render(e.Time.Format("15:04:05")))
		sb.WriteByte(' ')
		sb.WriteString(style.Render(label + " " + e.Message))
		sb.WriteByte('\n')
	}
	return sb.String()
}
