package domain

import (
	"sync"
	"time"

	"github.com/shopspring/decimal"
)

// HistoryCapacity bounds the trade history log.
const HistoryCapacity = 5

// TradeHistoryEntry is an immutable snapshot of a successful swap.
type TradeHistoryEntry struct {
	ID         string
	FromSymbol string
	ToSymbol   string
	FromAmount decimal.Decimal
	ToAmount   decimal.Decimal
	Rate       decimal.Decimal
	Protocol   string
	ExecutedAt time.Time
}

// TradeHistoryLog keeps the most recent successful swaps, newest first.
// Entries are never mutated after insertion; pushing at capacity evicts the
// oldest.
type TradeHistoryLog struct {
	mu      sync.RWMutex
	entries []TradeHistoryEntry
}

// NewTradeHistoryLog creates an empty log.
func NewTradeHistoryLog() *TradeHistoryLog {
	return &TradeHistoryLog{
		entries: make([]TradeHistoryEntry, 0, HistoryCapacity),
	}
}

// Push prepends an entry, evicting the oldest when the log is full.
func (l *TradeHistoryLog) Push(entry TradeHistoryEntry) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.entries = append([]TradeHistoryEntry{entry}, l.entries...)
	if len(l.entries) > HistoryCapacity {
		l.entries = l.entries[:HistoryCapacity]
	}
}

// List returns the entries newest first. The returned slice is a copy.
func (l *TradeHistoryLog) List() []TradeHistoryEntry {
	l.mu.RLock()
	defer l.mu.RUnlock()

	out := make([]TradeHistoryEntry, len(l.entries))
	copy(out, l.entries)
	return out
}

// Len returns the number of retained entries.
func (l *TradeHistoryLog) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.entries)
}
