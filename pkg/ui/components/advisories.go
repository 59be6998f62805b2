// Package components provides reusable TUI components.
package components

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// AdvisoryRow represents one advisory line.
type AdvisoryRow struct {
	Impact string // "positive", "neutral", "negative"
	Title  string
	Body   string
}

// AdvisoriesComponent renders the trade insight list.
type AdvisoriesComponent struct {
	rows []AdvisoryRow
}

// NewAdvisoriesComponent creates a new advisories component.
func NewAdvisoriesComponent() *AdvisoriesComponent {
	return &AdvisoriesComponent{}
}

// Update replaces the advisory rows. Order is preserved.
func (a *AdvisoriesComponent) Update(rows []AdvisoryRow) {
	a.rows = rows
}

// Clear removes all advisories.
func (a *AdvisoriesComponent) Clear() {
	a.rows = nil
}

// View renders the advisories component.
func (a *AdvisoriesComponent) View() string {
	headerStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#7C3AED"))
	dimStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#6B7280"))
	positiveStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#10B981"))
	negativeStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#EF4444"))

	var sb strings.Builder
	sb.WriteString(headerStyle.Render("INSIGHTS"))
	sb.WriteString("\n\n")

	if len(a.rows) == 0 {
		sb.WriteString(dimStyle.Render("  No insights for this trade"))
		return sb.String()
	}

	for _, row := range a.rows {
		var icon string
		var style lipgloss.Style
		switch row.Impact {
		case "positive":
			icon = "▲"
			style = positiveStyle
		case "negative":
			icon = "▼"
			style = negativeStyle
		default:
			icon = "•"
			style = dimStyle
		}

		sb.WriteString("  " + style.Render(icon+" "+row.Title) + "\n")
		if row.Body != "" {
			sb.WriteString(dimStyle.Render("    "+row.Body) + "\n")
		}
	}

	return sb.String()
}
