// Package di contains dependency injection tokens for the market context.
package di

import (
	"github.com/mevshield/swapdesk/business/market/app"
	"github.com/mevshield/swapdesk/internal/di"
)

// Public service tokens - exposed to other modules
var (
	MarketService = di.NewToken[*app.MarketService]("market.MarketService")
)

// Private dependency tokens - internal to the market module
var (
	PortfolioProvider = di.NewToken[app.PortfolioProvider]("market:portfolioProvider")
	PriceStream       = di.NewToken[app.PriceStream]("market:priceStream")
)

// Helper functions for type-safe access
func GetMarketService(c di.ServiceRegistry) *app.MarketService {
	return di.GetToken(c, MarketService)
}

func GetPortfolioProvider(c di.ServiceRegistry) app.PortfolioProvider {
	return di.GetToken(c, PortfolioProvider)
}

func GetPriceStream(c di.ServiceRegistry) app.PriceStream {
	return di.GetToken(c, PriceStream)
}
