// Package di contains dependency injection tokens for the advisory context.
package di

import (
	"github.com/mevshield/swapdesk/business/advisory/app"
	"github.com/mevshield/swapdesk/internal/di"
)

// Public service tokens - exposed to other modules
var (
	Engine = di.NewToken[*app.Engine]("advisory.Engine")
)

// Helper functions for type-safe access
func GetEngine(c di.ServiceRegistry) *app.Engine {
	return di.GetToken(c, Engine)
}
