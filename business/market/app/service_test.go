package app

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/mevshield/swapdesk/internal/token"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

type noopLogger struct{}

func (noopLogger) Debug(ctx context.Context, msg string, args ...any)              {}
func (noopLogger) Info(ctx context.Context, msg string, args ...any)               {}
func (noopLogger) Warn(ctx context.Context, msg string, args ...any)               {}
func (noopLogger) Error(ctx context.Context, msg string, args ...any)              {}
func (noopLogger) Debugc(ctx context.Context, caller int, msg string, args ...any) {}
func (noopLogger) Infoc(ctx context.Context, caller int, msg string, args ...any)  {}
func (noopLogger) Warnc(ctx context.Context, caller int, msg string, args ...any)  {}
func (noopLogger) Errorc(ctx context.Context, caller int, msg string, args ...any) {}

type stubProvider struct {
	tokens []token.Token
	err    error
}

func (s *stubProvider) FetchPortfolio(ctx context.Context, wallet string, chainID uint64) ([]token.Token, error) {
	return s.tokens, s.err
}

type stubStream struct {
	connected bool
	updates   chan PriceUpdate
}

func (s *stubStream) Connect(ctx context.Context) error {
	s.connected = true
	return nil
}

func (s *stubStream) Updates() <-chan PriceUpdate { return s.updates }

func (s *stubStream) Close() error {
	close(s.updates)
	return nil
}

func TestMarketService_RefreshReplacesRegistry(t *testing.T) {
	provider := &stubProvider{
		tokens: []token.Token{
			{Symbol: "ETH", Balance: d("2"), PriceUSD: d("2340.5")},
			{Symbol: "USDC", Balance: d("100"), PriceUSD: d("1")},
		},
	}

	registry := token.NewRegistry()
	svc := NewMarketService(noopLogger{}, provider, nil, registry, Config{WalletAddress: "0xabc", ChainID: 1})

	if err := svc.Refresh(context.Background()); err != nil {
		t.Fatalf("Refresh failed: %v", err)
	}
	if registry.Count() != 2 {
		t.Fatalf("expected 2 tokens, got %d", registry.Count())
	}

	// A later refresh replaces wholesale, not merges.
	provider.tokens = []token.Token{{Symbol: "DAI", Balance: d("50"), PriceUSD: d("1")}}
	if err := svc.Refresh(context.Background()); err != nil {
		t.Fatalf("Refresh failed: %v", err)
	}
	if registry.Count() != 1 {
		t.Errorf("expected registry replaced, got %d tokens", registry.Count())
	}
	if _, ok := registry.Get("ETH"); ok {
		t.Error("stale token must be gone after replace")
	}
}

func TestMarketService_RefreshFailureKeepsRegistry(t *testing.T) {
	provider := &stubProvider{tokens: []token.Token{{Symbol: "ETH", Balance: d("1"), PriceUSD: d("2000")}}}
	registry := token.NewRegistry()
	svc := NewMarketService(noopLogger{}, provider, nil, registry, Config{})

	if err := svc.Refresh(context.Background()); err != nil {
		t.Fatalf("Refresh failed: %v", err)
	}

	provider.err = errors.New("feed down")
	if err := svc.Refresh(context.Background()); err == nil {
		t.Fatal("expected refresh error")
	}
	if registry.Count() != 1 {
		t.Errorf("failed refresh must keep previous data, got %d tokens", registry.Count())
	}
}

func TestMarketService_StreamPatchesPrices(t *testing.T) {
	provider := &stubProvider{tokens: []token.Token{{Symbol: "ETH", Balance: d("1"), PriceUSD: d("2000")}}}
	stream := &stubStream{updates: make(chan PriceUpdate, 1)}
	registry := token.NewRegistry()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	svc := NewMarketService(noopLogger{}, provider, stream, registry, Config{RefreshInterval: time.Hour})
	if err := svc.Start(ctx); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	if !stream.connected {
		t.Fatal("stream must be connected on start")
	}

	stream.updates <- PriceUpdate{Symbol: "ETH", PriceUSD: d("2100.25"), Change24h: d("3.1")}

	deadline := time.After(2 * time.Second)
	for {
		got, _ := registry.Get("ETH")
		if got.PriceUSD.Equal(d("2100.25")) {
			if !got.PriceChange24h.Equal(d("3.1")) {
				t.Errorf("expected change 3.1, got %s", got.PriceChange24h)
			}
			return
		}
		select {
		case <-deadline:
			t.Fatalf("price never patched, still %s", got.PriceUSD)
		case <-time.After(5 * time.Millisecond):
		}
	}
}

func TestMarketService_Healthy(t *testing.T) {
	provider := &stubProvider{err: errors.New("feed down")}
	registry := token.NewRegistry()
	svc := NewMarketService(noopLogger{}, provider, nil, registry, Config{})

	if ok, _ := svc.Healthy(context.Background()); ok {
		t.Error("expected unhealthy before any successful refresh")
	}

	provider.err = nil
	provider.tokens = []token.Token{{Symbol: "ETH", Balance: d("1"), PriceUSD: d("2000")}}
	if err := svc.Refresh(context.Background()); err != nil {
		t.Fatalf("Refresh failed: %v", err)
	}

	if ok, msg := svc.Healthy(context.Background()); !ok {
		t.Errorf("expected healthy after refresh, got %q", msg)
	}
}
