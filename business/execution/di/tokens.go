// Package di contains dependency injection tokens for the execution context.
package di

import (
	"github.com/mevshield/swapdesk/business/execution/app"
	"github.com/mevshield/swapdesk/business/execution/domain"
	"github.com/mevshield/swapdesk/internal/di"
)

// Public service tokens - exposed to other modules
var (
	SwapExecutor = di.NewToken[*app.SwapExecutor]("execution.SwapExecutor")
	TradeHistory = di.NewToken[*domain.TradeHistoryLog]("execution.TradeHistory")
)

// Helper functions for type-safe access
func GetSwapExecutor(c di.ServiceRegistry) *app.SwapExecutor {
	return di.GetToken(c, SwapExecutor)
}

func GetTradeHistory(c di.ServiceRegistry) *domain.TradeHistoryLog {
	return di.GetToken(c, TradeHistory)
}
