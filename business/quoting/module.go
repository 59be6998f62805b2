// Package quoting implements the quoting bounded context: the debounced,
// race-safe quote pipeline backed by the remote trading service.
package quoting

import (
	"context"

	"github.com/mevshield/swapdesk/business/quoting/app"
	quotingDI "github.com/mevshield/swapdesk/business/quoting/di"
	"github.com/mevshield/swapdesk/business/quoting/domain"
	"github.com/mevshield/swapdesk/business/quoting/infra/tradesvc"
	"github.com/mevshield/swapdesk/internal/config"
	"github.com/mevshield/swapdesk/internal/di"
	"github.com/mevshield/swapdesk/internal/logger"
	"github.com/mevshield/swapdesk/internal/monolith"
	"github.com/mevshield/swapdesk/internal/token"
)

// Module implements the quoting bounded context.
type Module struct{}

// RegisterServices registers all quoting services with the DI container.
func (m *Module) RegisterServices(c di.Container) error {
	// Register the trading service client (public - execution reuses it)
	di.RegisterToken(c, quotingDI.TradeClient, func(sr di.ServiceRegistry) *tradesvc.Client {
		cfg := sr.Get("config").(*config.Config)
		log := sr.Get("logger").(logger.LoggerInterface)

		client, err := tradesvc.New(tradesvc.Config{
			BaseURL:           cfg.TradingService.BaseURL,
			Timeout:           cfg.TradingService.QuoteTimeout,
			RequestsPerMinute: cfg.TradingService.RequestsPerMinute,
		}, log)
		if err != nil {
			panic("failed to create trading service client: " + err.Error())
		}
		return client
	})

	// Register QuoteClient - private dependency
	di.RegisterToken(c, quotingDI.QuoteClient, func(sr di.ServiceRegistry) app.QuoteClient {
		return quotingDI.GetTradeClient(sr)
	})

	// Register QuoteController (public - exposed to other modules)
	di.RegisterToken(c, quotingDI.QuoteController, func(sr di.ServiceRegistry) *app.QuoteController {
		cfg := sr.Get("config").(*config.Config)
		log := sr.Get("logger").(logger.LoggerInterface)
		registry := sr.Get("tokenRegistry").(*token.Registry)

		pricing := domain.NewPricingModel(
			cfg.Swap.LiquidityUSDDecimal(),
			cfg.Swap.NetworkFeeUSDDecimal(),
		)

		ctrlCfg := app.DefaultConfig()
		if cfg.Swap.DebounceDelay > 0 {
			ctrlCfg.DebounceDelay = cfg.Swap.DebounceDelay
		}
		if cfg.TradingService.QuoteTimeout > 0 {
			ctrlCfg.QuoteTimeout = cfg.TradingService.QuoteTimeout
		}

		client := di.GetToken(sr, quotingDI.QuoteClient)
		ctrl, err := app.NewQuoteController(log, client, registry, pricing, ctrlCfg)
		if err != nil {
			panic("failed to create quote controller: " + err.Error())
		}
		return ctrl
	})

	return nil
}

// Startup initializes the quoting module.
func (m *Module) Startup(ctx context.Context, mono monolith.Monolith) error {
	mono.Logger().Info(ctx, "quoting module started",
		"trading_service", mono.Config().TradingService.BaseURL)
	return nil
}
