// Package app implements the advisory rules engine.
package app

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/mevshield/swapdesk/business/advisory/domain"
	qdomain "github.com/mevshield/swapdesk/business/quoting/domain"
)

// Favorable and unfavorable execution windows, in local clock hours,
// inclusive on both ends.
const (
	quietHourStart = 2
	quietHourEnd   = 6
	peakHourStart  = 14
	peakHourEnd    = 18
)

// Config holds the rule thresholds.
type Config struct {
	HighImpactPct   decimal.Decimal // price impact above this is flagged
	HighSlippageBps int64           // slippage tolerance above this is flagged
}

// DefaultConfig returns the production thresholds: 1% impact, 100 bps
// slippage.
func DefaultConfig() Config {
	return Config{
		HighImpactPct:   decimal.NewFromInt(1),
		HighSlippageBps: 100,
	}
}

// Engine evaluates the advisory rules. Evaluate is pure: it reads nothing
// but its arguments and the fixed thresholds, so identical inputs always
// yield identical, identically ordered output.
type Engine struct {
	cfg Config
}

// NewEngine creates an engine with the given thresholds.
func NewEngine(cfg Config) *Engine {
	if !cfg.HighImpactPct.IsPositive() {
		cfg.HighImpactPct = DefaultConfig().HighImpactPct
	}
	if cfg.HighSlippageBps <= 0 {
		cfg.HighSlippageBps = DefaultConfig().HighSlippageBps
	}
	return &Engine{cfg: cfg}
}

// Evaluate runs every rule in fixed order. Rules are independent; one firing
// never suppresses another. A nil quote yields no advisories.
func (e *Engine) Evaluate(quote *qdomain.Quote, params qdomain.SwapParameters, mevProtection bool, clockHour int) []domain.Advisory {
	if quote == nil {
		return nil
	}

	var out []domain.Advisory

	// 1. Remote route savings.
	if quote.Source == qdomain.SourceRemote && quote.GasSavingsUSD.IsPositive() {
		out = append(out, domain.Advisory{
			Kind:       domain.KindSavings,
			Impact:     domain.ImpactPositive,
			Title:      "Savings found",
			Body:       fmt.Sprintf("This route saves $%s compared to the default path", quote.GasSavingsUSD.StringFixed(2)),
			SavingsUSD: quote.GasSavingsUSD,
		})
	}

	// 2. MEV protection.
	if mevProtection {
		out = append(out, domain.Advisory{
			Kind:   domain.KindSafety,
			Impact: domain.ImpactPositive,
			Title:  "MEV protection active",
			Body:   "Your transaction is shielded from frontrunning and sandwich attacks",
		})
	}

	// 3. Execution timing.
	switch {
	case clockHour >= quietHourStart && clockHour <= quietHourEnd:
		out = append(out, domain.Advisory{
			Kind:   domain.KindTiming,
			Impact: domain.ImpactPositive,
			Title:  "Favorable timing",
			Body:   "Network activity is low right now, so fees and MEV risk are reduced",
		})
	case clockHour >= peakHourStart && clockHour <= peakHourEnd:
		out = append(out, domain.Advisory{
			Kind:   domain.KindTiming,
			Impact: domain.ImpactNegative,
			Title:  "Peak trading hours",
			Body:   "Network activity is high right now, expect elevated fees and MEV risk",
		})
	}

	// 4. High price impact.
	if quote.PriceImpactPct.GreaterThan(e.cfg.HighImpactPct) {
		out = append(out, domain.Advisory{
			Kind:   domain.KindSafety,
			Impact: domain.ImpactNegative,
			Title:  "High price impact",
			Body:   fmt.Sprintf("This trade moves the price by %s%%, consider splitting it into smaller trades", quote.PriceImpactPct.StringFixed(2)),
		})
	}

	// 5. High slippage tolerance.
	if params.SlippageBps > e.cfg.HighSlippageBps {
		out = append(out, domain.Advisory{
			Kind:   domain.KindSafety,
			Impact: domain.ImpactNeutral,
			Title:  "High slippage tolerance",
			Body:   "Your slippage tolerance is above 1%, lowering it to 0.5% reduces the worst-case fill",
		})
	}

	return out
}
