// Package components provides reusable TUI components.
package components

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/shopspring/decimal"
)

// QuoteView holds display-ready quote data. All values are pre-calculated by
// the domain; the component only formats them.
type QuoteView struct {
	FromSymbol      string
	ToSymbol        string
	FromAmount      decimal.Decimal
	ToAmount        decimal.Decimal
	Rate            decimal.Decimal
	MinimumReceived decimal.Decimal
	PriceImpactPct  decimal.Decimal
	NetworkFeeUSD   decimal.Decimal
	GasSavingsUSD   decimal.Decimal
	Protocol        string
	Fallback        bool
	Age             time.Duration
	SlippageBps     int64
}

// QuoteComponent renders the live quote panel.
type QuoteComponent struct {
	state string // "idle", "debouncing", "fetching", "ready"
	hint  string // shown in the idle state
	quote *QuoteView
}

// NewQuoteComponent creates a new quote component.
func NewQuoteComponent() *QuoteComponent {
	return &QuoteComponent{state: "idle"}
}

// SetState sets the lifecycle state and clears the quote unless ready.
func (q *QuoteComponent) SetState(state string) {
	q.state = state
	if state != "ready" {
		q.quote = nil
	}
}

// SetHint sets the idle-state hint line.
func (q *QuoteComponent) SetHint(hint string) {
	q.hint = hint
}

// SetQuote sets the quote to display and marks the component ready.
func (q *QuoteComponent) SetQuote(view QuoteView) {
	q.quote = &view
	q.state = "ready"
}

// View renders the quote component.
func (q *QuoteComponent) View() string {
	headerStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#7C3AED"))
	dimStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#6B7280"))
	warnStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#F59E0B"))
	negativeStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#EF4444"))
	positiveStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#10B981"))

	var sb strings.Builder
	sb.WriteString(headerStyle.Render("QUOTE"))
	sb.WriteString("\n\n")

	switch q.state {
	case "idle":
		hint := q.hint
		if hint == "" {
			hint = "Enter an amount to get a quote"
		}
		sb.WriteString(dimStyle.Render("  " + hint))
		return sb.String()
	case "debouncing", "fetching":
		sb.WriteString(warnStyle.Render("  Fetching quote..."))
		return sb.String()
	}

	if q.quote == nil {
		sb.WriteString(dimStyle.Render("  Waiting for quote..."))
		return sb.String()
	}

	v := q.quote

	sb.WriteString(fmt.Sprintf("  %s %s → %s %s\n",
		v.FromAmount.String(), v.FromSymbol,
		positiveStyle.Render(v.ToAmount.String()), v.ToSymbol))
	sb.WriteString(dimStyle.Render("  " + strings.Repeat("─", 44)))
	sb.WriteString("\n")

	sb.WriteString(fmt.Sprintf("  Rate:          1 %s = %s %s\n",
		v.FromSymbol, v.Rate.Round(6).String(), v.ToSymbol))
	sb.WriteString(fmt.Sprintf("  Min. received: %s %s %s\n",
		v.MinimumReceived.Round(6).String(), v.ToSymbol,
		dimStyle.Render(fmt.Sprintf("(%.2f%% slippage)", float64(v.SlippageBps)/100))))

	impactStyle := dimStyle
	if v.PriceImpactPct.GreaterThan(decimal.NewFromInt(1)) {
		impactStyle = negativeStyle
	}
	sb.WriteString(fmt.Sprintf("  Price impact:  %s\n",
		impactStyle.Render(v.PriceImpactPct.Round(4).String()+"%")))
	sb.WriteString(fmt.Sprintf("  Network fee:   $%s\n", v.NetworkFeeUSD.Round(2).String()))

	if v.GasSavingsUSD.IsPositive() {
		sb.WriteString(fmt.Sprintf("  Gas savings:   %s\n",
			positiveStyle.Render("$"+v.GasSavingsUSD.Round(2).String())))
	}
	if v.Protocol != "" {
		sb.WriteString(fmt.Sprintf("  Route:         %s\n", dimStyle.Render(v.Protocol)))
	}

	sb.WriteString("\n")
	if v.Fallback {
		sb.WriteString(warnStyle.Render("  ~ estimated locally, live route unavailable"))
	} else {
		sb.WriteString(dimStyle.Render(fmt.Sprintf("  live quote · %s old", v.Age.Round(time.Second))))
	}

	return sb.String()
}
