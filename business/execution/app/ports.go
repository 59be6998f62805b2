// Package app implements the swap execution use case.
package app

import (
	"context"

	qdomain "github.com/mevshield/swapdesk/business/quoting/domain"
)

// SwapService abstracts the remote execution endpoint. It returns the
// service's confirmation message, or an error whose message is shown to the
// user verbatim.
type SwapService interface {
	ExecuteSwap(ctx context.Context, params qdomain.SwapParameters) (string, error)
}
