// Package app contains the quoting use cases: the debounced quote
// controller and the ports it drives.
package app

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/mevshield/swapdesk/business/quoting/domain"
	"github.com/mevshield/swapdesk/internal/token"
)

// RemoteQuote is the normalized response of the trading service's quote
// endpoint. Optional fields are nil when the service omitted them.
type RemoteQuote struct {
	ToAmount       decimal.Decimal
	PriceImpactPct *decimal.Decimal
	NetworkFeeUSD  *decimal.Decimal
	GasSavingsUSD  decimal.Decimal
	Protocol       string
}

// QuoteClient abstracts the remote quoting service. Implementations must
// honor ctx cancellation and return an error for any unusable payload.
type QuoteClient interface {
	GetSwapQuote(ctx context.Context, params domain.SwapParameters) (RemoteQuote, error)
}

// TokenSource resolves reference prices for fallback pricing.
type TokenSource interface {
	Get(symbol string) (token.Token, bool)
}
