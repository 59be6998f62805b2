package app

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/mevshield/swapdesk/internal/logger"
	"github.com/mevshield/swapdesk/internal/token"
)

// Config holds the market service settings.
type Config struct {
	WalletAddress   string
	ChainID         uint64
	RefreshInterval time.Duration
}

// MarketService keeps the token registry current: a periodic full portfolio
// refresh plus live price patches from the stream. The registry is the only
// state it owns; swaps read from it, never from the feeds directly.
type MarketService struct {
	log      logger.LoggerInterface
	provider PortfolioProvider
	stream   PriceStream // nil disables live prices
	registry *token.Registry
	cfg      Config

	mu          sync.RWMutex
	lastRefresh time.Time
	lastErr     error
}

// NewMarketService creates the service. stream may be nil.
func NewMarketService(log logger.LoggerInterface, provider PortfolioProvider, stream PriceStream, registry *token.Registry, cfg Config) *MarketService {
	if cfg.RefreshInterval <= 0 {
		cfg.RefreshInterval = 30 * time.Second
	}
	return &MarketService{
		log:      log,
		provider: provider,
		stream:   stream,
		registry: registry,
		cfg:      cfg,
	}
}

// Refresh fetches the portfolio once and replaces the registry contents.
func (s *MarketService) Refresh(ctx context.Context) error {
	tokens, err := s.provider.FetchPortfolio(ctx, s.cfg.WalletAddress, s.cfg.ChainID)

	s.mu.Lock()
	s.lastErr = err
	if err == nil {
		s.lastRefresh = time.Now()
	}
	s.mu.Unlock()

	if err != nil {
		return err
	}

	s.registry.Replace(tokens)
	s.log.Debug(ctx, "portfolio refreshed", "tokens", len(tokens))
	return nil
}

// Start performs an initial refresh and launches the background loops. A
// failing initial refresh is logged, not fatal: the loop retries on the next
// tick and the UI starts with an empty token list.
func (s *MarketService) Start(ctx context.Context) error {
	if err := s.Refresh(ctx); err != nil {
		s.log.Warn(ctx, "initial portfolio refresh failed", "error", err.Error())
	}

	go s.refreshLoop(ctx)

	if s.stream != nil {
		if err := s.stream.Connect(ctx); err != nil {
			s.log.Warn(ctx, "price stream connect failed", "error", err.Error())
		} else {
			go s.consumeUpdates(ctx)
		}
	}

	return nil
}

func (s *MarketService) refreshLoop(ctx context.Context) {
	ticker := time.NewTicker(s.cfg.RefreshInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := s.Refresh(ctx); err != nil {
				s.log.Warn(ctx, "portfolio refresh failed", "error", err.Error())
			}
		}
	}
}

func (s *MarketService) consumeUpdates(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case update, ok := <-s.stream.Updates():
			if !ok {
				return
			}
			s.registry.UpdatePrice(update.Symbol, update.PriceUSD, update.Change24h)
		}
	}
}

// Healthy reports whether market data is usable, for the health endpoint.
func (s *MarketService) Healthy(ctx context.Context) (bool, string) {
	s.mu.RLock()
	lastRefresh := s.lastRefresh
	lastErr := s.lastErr
	s.mu.RUnlock()

	if lastRefresh.IsZero() {
		if lastErr != nil {
			return false, fmt.Sprintf("no portfolio data: %v", lastErr)
		}
		return false, "no portfolio data yet"
	}
	return true, fmt.Sprintf("%d tokens, refreshed %s ago", s.registry.Count(), time.Since(lastRefresh).Round(time.Second))
}
