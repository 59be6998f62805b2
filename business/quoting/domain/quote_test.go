package domain

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestQuote_MinimumReceived(t *testing.T) {
	tests := []struct {
		name        string
		exact       decimal.Decimal
		slippageBps int64
		want        decimal.Decimal
	}{
		{name: "default 50bps", exact: d("100"), slippageBps: 50, want: d("99.5")},
		{name: "150bps on 100", exact: d("100"), slippageBps: 150, want: d("98.5")},
		{name: "100bps", exact: d("2340.5"), slippageBps: 100, want: d("2317.095")},
		{name: "zero slippage", exact: d("100"), slippageBps: 0, want: d("100")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := Quote{ToAmountExact: tt.exact}

			got := q.MinimumReceived(tt.slippageBps)
			if !got.Equal(tt.want) {
				t.Errorf("expected %s, got %s", tt.want, got)
			}
		})
	}
}

func TestQuote_MinimumReceivedUsesExactAmount(t *testing.T) {
	// The display value is rounded; slippage math must not be.
	q := Quote{
		ToAmount:      d("0.333333"),
		ToAmountExact: d("1").Div(d("3")),
	}

	want := q.ToAmountExact.Mul(d("0.995"))
	if got := q.MinimumReceived(50); !got.Equal(want) {
		t.Errorf("expected %s, got %s", want, got)
	}
}
