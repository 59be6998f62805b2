// Package market implements the market bounded context: the wallet
// portfolio refresh loop and the live price stream feeding the token
// registry.
package market

import (
	"context"

	"github.com/mevshield/swapdesk/business/market/app"
	marketDI "github.com/mevshield/swapdesk/business/market/di"
	"github.com/mevshield/swapdesk/business/market/infra/portfolio"
	"github.com/mevshield/swapdesk/business/market/infra/pricestream"
	"github.com/mevshield/swapdesk/internal/config"
	"github.com/mevshield/swapdesk/internal/di"
	"github.com/mevshield/swapdesk/internal/logger"
	"github.com/mevshield/swapdesk/internal/monolith"
	"github.com/mevshield/swapdesk/internal/token"
)

// Module implements the market bounded context.
type Module struct{}

// RegisterServices registers all market services with the DI container.
func (m *Module) RegisterServices(c di.Container) error {
	// Register PortfolioProvider - private dependency
	di.RegisterToken(c, marketDI.PortfolioProvider, func(sr di.ServiceRegistry) app.PortfolioProvider {
		cfg := sr.Get("config").(*config.Config)
		log := sr.Get("logger").(logger.LoggerInterface)

		client, err := portfolio.New(portfolio.Config{
			BaseURL:     cfg.MarketFeed.PortfolioURL,
			MetadataTTL: cfg.MarketFeed.MetadataTTL,
		}, log)
		if err != nil {
			panic("failed to create portfolio client: " + err.Error())
		}
		return client
	})

	// Register PriceStream - private dependency
	di.RegisterToken(c, marketDI.PriceStream, func(sr di.ServiceRegistry) app.PriceStream {
		cfg := sr.Get("config").(*config.Config)
		log := sr.Get("logger").(logger.LoggerInterface)

		stream, err := pricestream.New(pricestream.Config{
			URL: cfg.MarketFeed.PriceStreamURL,
		}, log)
		if err != nil {
			panic("failed to create price stream: " + err.Error())
		}
		return stream
	})

	// Register MarketService (public - exposed to other modules)
	di.RegisterToken(c, marketDI.MarketService, func(sr di.ServiceRegistry) *app.MarketService {
		cfg := sr.Get("config").(*config.Config)
		log := sr.Get("logger").(logger.LoggerInterface)
		registry := sr.Get("tokenRegistry").(*token.Registry)

		provider := marketDI.GetPortfolioProvider(sr)

		// The stream is optional: without a URL the registry still gets
		// prices from periodic portfolio refreshes.
		var stream app.PriceStream
		if cfg.MarketFeed.PriceStreamURL != "" {
			stream = marketDI.GetPriceStream(sr)
		}

		return app.NewMarketService(log, provider, stream, registry, app.Config{
			WalletAddress:   cfg.Wallet.Address,
			ChainID:         cfg.Wallet.ChainID,
			RefreshInterval: cfg.MarketFeed.RefreshInterval,
		})
	})

	return nil
}

// Startup initializes the market module and begins feeding the registry.
func (m *Module) Startup(ctx context.Context, mono monolith.Monolith) error {
	svc := marketDI.GetMarketService(mono.Services())
	if err := svc.Start(ctx); err != nil {
		return err
	}
	mono.Logger().Info(ctx, "market module started",
		"wallet", mono.Config().Wallet.Address,
		"chain_id", mono.Config().Wallet.ChainID)
	return nil
}
