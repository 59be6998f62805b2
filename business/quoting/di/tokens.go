// Package di contains dependency injection tokens for the quoting context.
package di

import (
	"github.com/mevshield/swapdesk/business/quoting/app"
	"github.com/mevshield/swapdesk/business/quoting/infra/tradesvc"
	"github.com/mevshield/swapdesk/internal/di"
)

// Public service tokens - exposed to other modules
var (
	QuoteController = di.NewToken[*app.QuoteController]("quoting.QuoteController")

	// TradeClient is the shared trading service client. The execution
	// context reuses it as its SwapService.
	TradeClient = di.NewToken[*tradesvc.Client]("quoting.TradeClient")
)

// Private dependency tokens - internal to the quoting module
var (
	QuoteClient = di.NewToken[app.QuoteClient]("quoting:quoteClient")
)

// Helper functions for type-safe access
func GetQuoteController(c di.ServiceRegistry) *app.QuoteController {
	return di.GetToken(c, QuoteController)
}

func GetTradeClient(c di.ServiceRegistry) *tradesvc.Client {
	return di.GetToken(c, TradeClient)
}
