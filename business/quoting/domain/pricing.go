package domain

import (
	"github.com/shopspring/decimal"

	"github.com/mevshield/swapdesk/internal/token"
)

var hundred = decimal.NewFromInt(100)

// Estimate is the output of the local pricing model.
type Estimate struct {
	ToAmount       decimal.Decimal // rounded to DisplayPrecision
	ToAmountExact  decimal.Decimal
	Rate           decimal.Decimal
	PriceImpactPct decimal.Decimal
	NetworkFeeUSD  decimal.Decimal
}

// PricingModel derives a quote from reference prices when no remote quote is
// available. It is deterministic: identical inputs yield identical output.
type PricingModel struct {
	liquidityUSD  decimal.Decimal
	networkFeeUSD decimal.Decimal
}

// NewPricingModel creates a pricing model. liquidityUSD shapes the impact
// curve and must be positive; networkFeeUSD is the flat fee estimate.
func NewPricingModel(liquidityUSD, networkFeeUSD decimal.Decimal) *PricingModel {
	if !liquidityUSD.IsPositive() {
		liquidityUSD = decimal.NewFromInt(1_000_000)
	}
	if networkFeeUSD.IsNegative() {
		networkFeeUSD = decimal.Zero
	}
	return &PricingModel{
		liquidityUSD:  liquidityUSD,
		networkFeeUSD: networkFeeUSD,
	}
}

// Estimate converts reference prices into an exchange rate, receive amount,
// and impact estimate. A zero price on the receive side yields a zero rate
// and zero amount rather than a division error.
func (m *PricingModel) Estimate(from, to token.Token, amount decimal.Decimal) Estimate {
	est := Estimate{
		Rate:           decimal.Zero,
		ToAmount:       decimal.Zero,
		ToAmountExact:  decimal.Zero,
		PriceImpactPct: m.impact(from, amount),
		NetworkFeeUSD:  m.networkFeeUSD,
	}

	if !to.PriceUSD.IsPositive() {
		return est
	}

	est.Rate = from.PriceUSD.Div(to.PriceUSD)
	est.ToAmountExact = amount.Mul(est.Rate)
	est.ToAmount = est.ToAmountExact.Round(DisplayPrecision)
	return est
}

// impact models price impact as trade notional over assumed pool liquidity,
// in percent, non-decreasing in notional and capped at 100.
func (m *PricingModel) impact(from token.Token, amount decimal.Decimal) decimal.Decimal {
	notional := amount.Mul(from.PriceUSD)
	if !notional.IsPositive() {
		return decimal.Zero
	}

	pct := notional.Div(m.liquidityUSD).Mul(hundred)
	if pct.GreaterThan(hundred) {
		return hundred
	}
	return pct
}
