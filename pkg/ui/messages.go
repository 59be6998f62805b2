// Package ui provides the Bubble Tea TUI for the swap desk.
package ui

import (
	"time"

	advisoryDomain "github.com/mevshield/swapdesk/business/advisory/domain"
	executionDomain "github.com/mevshield/swapdesk/business/execution/domain"
	quotingApp "github.com/mevshield/swapdesk/business/quoting/app"
)

// Message types for TUI updates

// QuoteMsg is sent whenever the quote controller changes state.
type QuoteMsg struct {
	Snapshot quotingApp.Snapshot
}

// AdvisoriesMsg carries freshly evaluated advisories for the active quote.
type AdvisoriesMsg struct {
	Advisories []advisoryDomain.Advisory
}

// ResultMsg is sent when a swap execution attempt finishes.
type ResultMsg struct {
	Result executionDomain.SwapResult
}

// HistoryMsg carries the recent trade log after a successful swap.
type HistoryMsg struct {
	Entries []executionDomain.TradeHistoryEntry
}

// ConnectionStatusMsg is sent when a collaborator's status changes.
type ConnectionStatusMsg struct {
	Name      string
	Connected bool
	Detail    string
}

// ErrorMsg is sent when an error occurs.
type ErrorMsg struct {
	Error error
}

// TickMsg is sent periodically for UI updates.
type TickMsg struct{}

// LogMsg is sent to display a log message in the UI.
type LogMsg struct {
	Level   string // "info", "warn", "error"
	Message string
}

// WelcomeCompleteMsg signals the welcome screen is done (timeout or keypress).
type WelcomeCompleteMsg struct{}

// resultExpiredMsg clears the success/failure banner after the display hold.
type resultExpiredMsg struct {
	shownAt time.Time
}
