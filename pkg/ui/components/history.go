// Package components provides reusable TUI components.
package components

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/shopspring/decimal"
)

// TradeRow represents one completed swap in the history panel.
type TradeRow struct {
	FromSymbol string
	ToSymbol   string
	FromAmount decimal.Decimal
	ToAmount   decimal.Decimal
	Protocol   string
	ExecutedAt time.Time
}

// HistoryComponent renders the recent trades panel, newest first.
type HistoryComponent struct {
	rows []TradeRow
}

// NewHistoryComponent creates a new history component.
func NewHistoryComponent() *HistoryComponent {
	return &HistoryComponent{}
}

// Update replaces the trade rows.
func (h *HistoryComponent) Update(rows []TradeRow) {
	h.rows = rows
}

// View renders the history component.
func (h *HistoryComponent) View() string {
	headerStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#7C3AED"))
	dimStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#6B7280"))
	positiveStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#10B981"))

	var sb strings.Builder
	sb.WriteString(headerStyle.Render("RECENT TRADES"))
	sb.WriteString("\n\n")

	if len(h.rows) == 0 {
		sb.WriteString(dimStyle.Render("  No trades yet"))
		return sb.String()
	}

	for _, row := range h.rows {
		line := fmt.Sprintf("  %s  %s %s → %s %s",
			dimStyle.Render(row.ExecutedAt.Format("15:04:05")),
			row.FromAmount.Round(6).String(), row.FromSymbol,
			positiveStyle.Render(row.ToAmount.Round(6).String()), row.ToSymbol)
		if row.Protocol != "" {
			line += dimStyle.Render("  via " + row.Protocol)
		}
		sb.WriteString(line + "\n")
	}

	return sb.String()
}
