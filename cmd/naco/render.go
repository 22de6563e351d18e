package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/microsoft/qdk-sub000/compiler/trace"
)

var (
	stepStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#7aa2f7")).
			Padding(0, 1)

	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#ff9e64"))

	moveStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#9ece6a"))
)

// render draws one bordered box per trace step, moves tinted apart from
// gates.
func render(t *trace.Trace) string {
	var sb strings.Builder

	for i, step := range t.Steps {
		var lines []string

		for _, op := range step {
			s := op.String()
			if op.IsMove {
				s = moveStyle.Render(s)
			}

			lines = append(lines, s)
		}

		box := stepStyle.Render(strings.Join(lines, "\n"))

		sb.WriteString(headerStyle.Render(fmt.Sprintf("step %d", i)))
		sb.WriteByte('\n')
		sb.WriteString(box)
		sb.WriteByte('\n')
	}

	return sb.String()
}
