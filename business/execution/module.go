// Package execution implements the execution bounded context: the
// single-flight swap executor and the recent trade log.
package execution

import (
	"context"

	"github.com/mevshield/swapdesk/business/execution/app"
	executionDI "github.com/mevshield/swapdesk/business/execution/di"
	"github.com/mevshield/swapdesk/business/execution/domain"
	quotingDI "github.com/mevshield/swapdesk/business/quoting/di"
	"github.com/mevshield/swapdesk/internal/config"
	"github.com/mevshield/swapdesk/internal/di"
	"github.com/mevshield/swapdesk/internal/logger"
	"github.com/mevshield/swapdesk/internal/monolith"
)

// Module implements the execution bounded context.
type Module struct{}

// RegisterServices registers all execution services with the DI container.
func (m *Module) RegisterServices(c di.Container) error {
	// Register TradeHistory (public - the UI reads it)
	di.RegisterToken(c, executionDI.TradeHistory, func(sr di.ServiceRegistry) *domain.TradeHistoryLog {
		return domain.NewTradeHistoryLog()
	})

	// Register SwapExecutor (public - exposed to other modules)
	di.RegisterToken(c, executionDI.SwapExecutor, func(sr di.ServiceRegistry) *app.SwapExecutor {
		cfg := sr.Get("config").(*config.Config)
		log := sr.Get("logger").(logger.LoggerInterface)

		service := quotingDI.GetTradeClient(sr)
		history := executionDI.GetTradeHistory(sr)

		// After a successful swap the quote form resets once the success
		// state has been shown.
		reset := func() {
			quotingDI.GetQuoteController(sr).Reset()
		}

		exec, err := app.NewSwapExecutor(log, service, history, reset, app.Config{
			DisplayHold: cfg.Swap.DisplayHold,
		})
		if err != nil {
			panic("failed to create swap executor: " + err.Error())
		}
		return exec
	})

	return nil
}

// Startup initializes the execution module.
func (m *Module) Startup(ctx context.Context, mono monolith.Monolith) error {
	mono.Logger().Info(ctx, "execution module started")
	return nil
}
