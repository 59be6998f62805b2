package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Source identifies where a quote came from.
type Source string

const (
	SourceRemote   Source = "remote"
	SourceFallback Source = "fallback"
)

// DisplayPrecision is the number of fractional digits shown for receive
// amounts. Slippage math always runs on the exact value.
const DisplayPrecision = 6

// Quote is a priced estimate of a swap outcome, valid for exactly one
// parameter snapshot. RequestID orders quotes; a quote whose RequestID is
// older than the latest issued one is stale and must be discarded.
type Quote struct {
	FromSymbol     string
	ToSymbol       string
	FromAmount     decimal.Decimal
	ToAmount       decimal.Decimal // rounded to DisplayPrecision
	ToAmountExact  decimal.Decimal
	Rate           decimal.Decimal // to-token units per from-token unit
	PriceImpactPct decimal.Decimal
	NetworkFeeUSD  decimal.Decimal
	GasSavingsUSD  decimal.Decimal // zero unless the remote route found savings
	Protocol       string
	Source         Source
	RequestID      uint64
	CreatedAt      time.Time
}

// MinimumReceived returns toAmount scaled down by the slippage tolerance:
// exact × (1 − bps/10000).
func (q Quote) MinimumReceived(slippageBps int64) decimal.Decimal {
	tolerance := decimal.NewFromInt(slippageBps).Div(decimal.NewFromInt(10000))
	return q.ToAmountExact.Mul(decimal.NewFromInt(1).Sub(tolerance))
}

// Age returns how long ago the quote was produced.
func (q Quote) Age() time.Duration {
	return time.Since(q.CreatedAt)
}

// IsFallback reports whether the quote was computed locally.
func (q Quote) IsFallback() bool {
	return q.Source == SourceFallback
}
