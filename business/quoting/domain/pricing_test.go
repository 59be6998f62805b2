package domain

import (
	"testing"

	"github.com/shopspring/decimal"

	"github.com/mevshield/swapdesk/internal/token"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func tok(symbol, price string) token.Token {
	return token.Token{Symbol: symbol, PriceUSD: d(price)}
}

func TestPricingModel_Estimate(t *testing.T) {
	model := NewPricingModel(d("1000000"), d("2.5"))

	tests := []struct {
		name         string
		from         token.Token
		to           token.Token
		amount       decimal.Decimal
		wantRate     decimal.Decimal
		wantToAmount decimal.Decimal
	}{
		{
			name:         "ETH to USDC",
			from:         tok("ETH", "2340.5"),
			to:           tok("USDC", "1.0"),
			amount:       d("1"),
			wantRate:     d("2340.5"),
			wantToAmount: d("2340.5"),
		},
		{
			name:         "USDC to ETH",
			from:         tok("USDC", "1.0"),
			to:           tok("ETH", "2000"),
			amount:       d("500"),
			wantRate:     d("0.0005"),
			wantToAmount: d("0.25"),
		},
		{
			name:         "zero receive-side price guards division",
			from:         tok("ETH", "2340.5"),
			to:           tok("XYZ", "0"),
			amount:       d("1"),
			wantRate:     d("0"),
			wantToAmount: d("0"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := model.Estimate(tt.from, tt.to, tt.amount)

			if !got.Rate.Equal(tt.wantRate) {
				t.Errorf("rate: expected %s, got %s", tt.wantRate, got.Rate)
			}
			if !got.ToAmountExact.Equal(tt.wantToAmount) {
				t.Errorf("toAmount: expected %s, got %s", tt.wantToAmount, got.ToAmountExact)
			}
			if !got.NetworkFeeUSD.Equal(d("2.5")) {
				t.Errorf("fee: expected 2.5, got %s", got.NetworkFeeUSD)
			}
		})
	}
}

func TestPricingModel_RateInvariantToNotional(t *testing.T) {
	model := NewPricingModel(d("1000000"), d("2.5"))
	from := tok("ETH", "2340.5")
	to := tok("USDC", "1.0")

	small := model.Estimate(from, to, d("1"))
	large := model.Estimate(from, to, d("2"))

	if !small.Rate.Equal(large.Rate) {
		t.Errorf("rate must not depend on notional: %s vs %s", small.Rate, large.Rate)
	}
	if !large.ToAmountExact.Equal(small.ToAmountExact.Mul(d("2"))) {
		t.Errorf("toAmount must scale linearly: %s vs 2x%s", large.ToAmountExact, small.ToAmountExact)
	}
}

func TestPricingModel_ImpactMonotonic(t *testing.T) {
	model := NewPricingModel(d("1000000"), d("2.5"))
	from := tok("ETH", "2340.5")
	to := tok("USDC", "1.0")

	amounts := []string{"0.1", "1", "10", "100", "10000"}
	prev := decimal.NewFromInt(-1)

	for _, a := range amounts {
		got := model.Estimate(from, to, d(a))
		if got.PriceImpactPct.LessThan(prev) {
			t.Fatalf("impact decreased at amount %s: %s < %s", a, got.PriceImpactPct, prev)
		}
		if got.PriceImpactPct.IsNegative() {
			t.Fatalf("impact must be non-negative, got %s", got.PriceImpactPct)
		}
		prev = got.PriceImpactPct
	}

	// 1 ETH at 2340.5 against 1M liquidity: 2340.5/1000000*100 = 0.23405%
	one := model.Estimate(from, to, d("1"))
	if !one.PriceImpactPct.Equal(d("0.23405")) {
		t.Errorf("expected impact 0.23405, got %s", one.PriceImpactPct)
	}
	if !one.PriceImpactPct.IsPositive() {
		t.Error("impact must be positive for a positive notional")
	}
}

func TestPricingModel_Deterministic(t *testing.T) {
	model := NewPricingModel(d("1000000"), d("2.5"))
	from := tok("ETH", "2340.5")
	to := tok("USDC", "1.0")

	first := model.Estimate(from, to, d("3.14"))
	second := model.Estimate(from, to, d("3.14"))

	if !first.Rate.Equal(second.Rate) ||
		!first.ToAmountExact.Equal(second.ToAmountExact) ||
		!first.PriceImpactPct.Equal(second.PriceImpactPct) {
		t.Errorf("repeated calls diverged: %+v vs %+v", first, second)
	}
}

func TestPricingModel_ImpactCapped(t *testing.T) {
	model := NewPricingModel(d("1000000"), d("2.5"))
	got := model.Estimate(tok("ETH", "2340.5"), tok("USDC", "1.0"), d("1000000"))

	if !got.PriceImpactPct.Equal(d("100")) {
		t.Errorf("expected impact capped at 100, got %s", got.PriceImpactPct)
	}
}
