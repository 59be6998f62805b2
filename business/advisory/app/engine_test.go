package app

import (
	"reflect"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/mevshield/swapdesk/business/advisory/domain"
	qdomain "github.com/mevshield/swapdesk/business/quoting/domain"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func baseQuote() *qdomain.Quote {
	return &qdomain.Quote{
		FromSymbol:     "ETH",
		ToSymbol:       "USDC",
		FromAmount:     d("1"),
		ToAmount:       d("2340.5"),
		ToAmountExact:  d("2340.5"),
		Rate:           d("2340.5"),
		PriceImpactPct: d("0.23"),
		Source:         qdomain.SourceRemote,
	}
}

func baseParams() qdomain.SwapParameters {
	return qdomain.SwapParameters{
		FromSymbol:  "ETH",
		ToSymbol:    "USDC",
		Amount:      "1",
		SlippageBps: qdomain.DefaultSlippageBps,
	}
}

func TestEngine_Evaluate_NilQuote(t *testing.T) {
	engine := NewEngine(DefaultConfig())

	if got := engine.Evaluate(nil, baseParams(), true, 3); got != nil {
		t.Errorf("expected no advisories without a quote, got %d", len(got))
	}
}

func TestEngine_Evaluate_AllRulesFireInOrder(t *testing.T) {
	engine := NewEngine(DefaultConfig())

	quote := baseQuote()
	quote.GasSavingsUSD = d("12.5")
	quote.PriceImpactPct = d("2.4")

	params := baseParams()
	params.SlippageBps = 150

	got := engine.Evaluate(quote, params, true, 15)
	if len(got) != 5 {
		t.Fatalf("expected 5 advisories, got %d: %+v", len(got), got)
	}

	wantKinds := []domain.Kind{
		domain.KindSavings,
		domain.KindSafety,
		domain.KindTiming,
		domain.KindSafety,
		domain.KindSafety,
	}
	wantImpacts := []domain.Impact{
		domain.ImpactPositive,
		domain.ImpactPositive,
		domain.ImpactNegative,
		domain.ImpactNegative,
		domain.ImpactNeutral,
	}

	for i := range got {
		if got[i].Kind != wantKinds[i] {
			t.Errorf("advisory %d: expected kind %s, got %s", i, wantKinds[i], got[i].Kind)
		}
		if got[i].Impact != wantImpacts[i] {
			t.Errorf("advisory %d: expected impact %s, got %s", i, wantImpacts[i], got[i].Impact)
		}
	}

	if !got[0].SavingsUSD.Equal(d("12.5")) {
		t.Errorf("savings advisory must carry the amount, got %s", got[0].SavingsUSD)
	}
}

func TestEngine_Evaluate_SavingsRequiresRemoteSource(t *testing.T) {
	engine := NewEngine(DefaultConfig())

	quote := baseQuote()
	quote.Source = qdomain.SourceFallback
	quote.GasSavingsUSD = d("5")

	got := engine.Evaluate(quote, baseParams(), false, 10)
	for _, a := range got {
		if a.Kind == domain.KindSavings {
			t.Error("fallback quotes must not produce savings advisories")
		}
	}
}

func TestEngine_Evaluate_TimingWindows(t *testing.T) {
	engine := NewEngine(DefaultConfig())

	tests := []struct {
		hour       int
		wantTiming bool
		wantImpact domain.Impact
	}{
		{hour: 1, wantTiming: false},
		{hour: 2, wantTiming: true, wantImpact: domain.ImpactPositive},
		{hour: 4, wantTiming: true, wantImpact: domain.ImpactPositive},
		{hour: 6, wantTiming: true, wantImpact: domain.ImpactPositive},
		{hour: 7, wantTiming: false},
		{hour: 13, wantTiming: false},
		{hour: 14, wantTiming: true, wantImpact: domain.ImpactNegative},
		{hour: 18, wantTiming: true, wantImpact: domain.ImpactNegative},
		{hour: 19, wantTiming: false},
		{hour: 23, wantTiming: false},
	}

	for _, tt := range tests {
		got := engine.Evaluate(baseQuote(), baseParams(), false, tt.hour)

		var timing *domain.Advisory
		for i := range got {
			if got[i].Kind == domain.KindTiming {
				timing = &got[i]
			}
		}

		if tt.wantTiming && timing == nil {
			t.Errorf("hour %d: expected a timing advisory", tt.hour)
			continue
		}
		if !tt.wantTiming && timing != nil {
			t.Errorf("hour %d: unexpected timing advisory", tt.hour)
			continue
		}
		if timing != nil && timing.Impact != tt.wantImpact {
			t.Errorf("hour %d: expected impact %s, got %s", tt.hour, tt.wantImpact, timing.Impact)
		}
	}
}

func TestEngine_Evaluate_ImpactThresholdIsStrict(t *testing.T) {
	engine := NewEngine(DefaultConfig())

	quote := baseQuote()
	quote.PriceImpactPct = d("1.0")

	got := engine.Evaluate(quote, baseParams(), false, 10)
	if len(got) != 0 {
		t.Errorf("impact of exactly 1.0%% must not fire, got %+v", got)
	}

	quote.PriceImpactPct = d("1.01")
	got = engine.Evaluate(quote, baseParams(), false, 10)
	if len(got) != 1 || got[0].Impact != domain.ImpactNegative {
		t.Errorf("impact above 1.0%% must fire a negative safety advisory, got %+v", got)
	}
}

func TestEngine_Evaluate_HighSlippage(t *testing.T) {
	engine := NewEngine(DefaultConfig())

	params := baseParams()
	params.SlippageBps = 150

	got := engine.Evaluate(baseQuote(), params, false, 10)
	if len(got) != 1 {
		t.Fatalf("expected 1 advisory, got %d", len(got))
	}
	if got[0].Kind != domain.KindSafety || got[0].Impact != domain.ImpactNeutral {
		t.Errorf("expected neutral safety advisory, got %+v", got[0])
	}

	// 100 bps is the threshold itself, not above it.
	params.SlippageBps = 100
	if got := engine.Evaluate(baseQuote(), params, false, 10); len(got) != 0 {
		t.Errorf("slippage of exactly 100 bps must not fire, got %+v", got)
	}
}

func TestEngine_Evaluate_Pure(t *testing.T) {
	engine := NewEngine(DefaultConfig())

	quote := baseQuote()
	quote.GasSavingsUSD = d("3")
	params := baseParams()
	params.SlippageBps = 200

	first := engine.Evaluate(quote, params, true, 4)
	second := engine.Evaluate(quote, params, true, 4)

	if !reflect.DeepEqual(first, second) {
		t.Errorf("repeated evaluation diverged:\n%+v\n%+v", first, second)
	}
}
