// Package app contains the market data use cases: portfolio refresh and the
// streaming price feed.
package app

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/mevshield/swapdesk/internal/token"
)

// PortfolioProvider fetches the wallet's token balances and reference prices.
type PortfolioProvider interface {
	FetchPortfolio(ctx context.Context, wallet string, chainID uint64) ([]token.Token, error)
}

// PriceUpdate is one tick from the streaming price feed.
type PriceUpdate struct {
	Symbol    string
	PriceUSD  decimal.Decimal
	Change24h decimal.Decimal
}

// PriceStream delivers live price ticks. Implementations reconnect on their
// own; Updates stays open across reconnects and closes only on Close.
type PriceStream interface {
	Connect(ctx context.Context) error
	Updates() <-chan PriceUpdate
	Close() error
}
