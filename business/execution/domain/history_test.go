package domain

import (
	"fmt"
	"testing"

	"github.com/shopspring/decimal"
)

func entry(id string) TradeHistoryEntry {
	return TradeHistoryEntry{
		ID:         id,
		FromSymbol: "ETH",
		ToSymbol:   "USDC",
		FromAmount: decimal.NewFromInt(1),
		ToAmount:   decimal.NewFromInt(2340),
	}
}

func TestTradeHistoryLog_BoundedNewestFirst(t *testing.T) {
	log := NewTradeHistoryLog()

	for i := 1; i <= 6; i++ {
		log.Push(entry(fmt.Sprintf("trade-%d", i)))
	}

	got := log.List()
	if len(got) != HistoryCapacity {
		t.Fatalf("expected %d entries, got %d", HistoryCapacity, len(got))
	}

	// Newest first: 6, 5, 4, 3, 2. The very first push is evicted.
	want := []string{"trade-6", "trade-5", "trade-4", "trade-3", "trade-2"}
	for i, id := range want {
		if got[i].ID != id {
			t.Errorf("position %d: expected %s, got %s", i, id, got[i].ID)
		}
	}

	for _, e := range got {
		if e.ID == "trade-1" {
			t.Error("oldest entry must be evicted")
		}
	}
}

func TestTradeHistoryLog_ListReturnsCopy(t *testing.T) {
	log := NewTradeHistoryLog()
	log.Push(entry("trade-1"))

	got := log.List()
	got[0].ID = "mutated"

	if log.List()[0].ID != "trade-1" {
		t.Error("mutating the listed slice must not affect the log")
	}
}

func TestTradeHistoryLog_Empty(t *testing.T) {
	log := NewTradeHistoryLog()

	if log.Len() != 0 {
		t.Errorf("expected empty log, got %d", log.Len())
	}
	if got := log.List(); len(got) != 0 {
		t.Errorf("expected empty list, got %d entries", len(got))
	}
}
