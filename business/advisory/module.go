// Package advisory implements the advisory bounded context: deterministic
// trade insights derived from the active quote and parameters.
package advisory

import (
	"context"

	"github.com/mevshield/swapdesk/business/advisory/app"
	advisoryDI "github.com/mevshield/swapdesk/business/advisory/di"
	"github.com/mevshield/swapdesk/internal/di"
	"github.com/mevshield/swapdesk/internal/monolith"
)

// Module implements the advisory bounded context.
type Module struct{}

// RegisterServices registers all advisory services with the DI container.
func (m *Module) RegisterServices(c di.Container) error {
	di.RegisterToken(c, advisoryDI.Engine, func(sr di.ServiceRegistry) *app.Engine {
		return app.NewEngine(app.DefaultConfig())
	})
	return nil
}

// Startup initializes the advisory module.
func (m *Module) Startup(ctx context.Context, mono monolith.Monolith) error {
	mono.Logger().Info(ctx, "advisory module started")
	return nil
}
