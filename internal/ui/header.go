package ui

import (
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// HeaderConfig describes the banner printed before a discovery run
type HeaderConfig struct {
	Title   string            // e.g. "Discovery"
	Command string            // e.g. "yee scan --count 2"
	Params  map[string]string // e.g. {"Policy": "count 2"}
	Width   int               // zero uses the terminal width
}

// RenderCommandHeader renders the title, the command line and the sorted
// parameters inside a rounded box
func RenderCommandHeader(config HeaderConfig) string {
	width := config.Width
	if width == 0 {
		width = GetTerminalWidth()
	}
	width = max(width, MinTerminalWidth)

	sections := []string{
		HeaderTitleStyle.Render(strings.ToUpper(config.Title)),
		HeaderCommandStyle.Render(config.Command),
	}
	if len(config.Params) > 0 {
		rule := lipgloss.NewStyle().
			Foreground(PrimaryColor).
			Render(strings.Repeat("─", max(width-6, 10)))
		sections = append(sections, rule)
		sections = append(sections, pairs(config.Params, "", HeaderParamKeyStyle, HeaderParamValueStyle)...)
	}

	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(PrimaryColor).
		Width(width - 2).
		Render(lipgloss.JoinVertical(lipgloss.Left, sections...))
}

// pairs renders "key: value" lines sorted by key
func pairs(values map[string]string, indent string, keyStyle, valueStyle lipgloss.Style) []string {
	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	lines := make([]string, 0, len(keys))
	for _, k := range keys {
		lines = append(lines, keyStyle.Render(indent+k+":")+" "+valueStyle.Render(values[k]))
	}
	return lines
}
