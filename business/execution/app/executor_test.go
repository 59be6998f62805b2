package app

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/mevshield/swapdesk/business/execution/domain"
	qdomain "github.com/mevshield/swapdesk/business/quoting/domain"
	"github.com/mevshield/swapdesk/internal/apperror"
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

type stubSwapService struct {
	mu    sync.Mutex
	calls int
	fn    func(ctx context.Context, params qdomain.SwapParameters) (string, error)
}

func (s *stubSwapService) ExecuteSwap(ctx context.Context, params qdomain.SwapParameters) (string, error) {
	s.mu.Lock()
	s.calls++
	fn := s.fn
	s.mu.Unlock()

	if fn == nil {
		return "swap submitted", nil
	}
	return fn(ctx, params)
}

func (s *stubSwapService) callCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

func validParams() qdomain.SwapParameters {
	return qdomain.SwapParameters{
		FromSymbol:  "ETH",
		ToSymbol:    "USDC",
		Amount:      "1",
		SlippageBps: qdomain.DefaultSlippageBps,
		ChainID:     1,
	}
}

func readyQuote() *qdomain.Quote {
	return &qdomain.Quote{
		FromSymbol:    "ETH",
		ToSymbol:      "USDC",
		FromAmount:    d("1"),
		ToAmount:      d("2340.5"),
		ToAmountExact: d("2340.5"),
		Rate:          d("2340.5"),
		Source:        qdomain.SourceRemote,
		Protocol:      "uniswap-v3",
	}
}

func newExecutor(t *testing.T, service *stubSwapService, reset ResetFn) (*SwapExecutor, *domain.TradeHistoryLog) {
	t.Helper()
	history := domain.NewTradeHistoryLog()
	exec, err := NewSwapExecutor(noopLogger{}, service, history, reset, Config{DisplayHold: 0})
	if err != nil {
		t.Fatalf("creating executor: %v", err)
	}
	return exec, history
}

func TestSwapExecutor_Preconditions(t *testing.T) {
	tests := []struct {
		name       string
		params     qdomain.SwapParameters
		quote      *qdomain.Quote
		connected  bool
		wantReason string
	}{
		{
			name: "zero amount",
			params: func() qdomain.SwapParameters {
				p := validParams()
				p.Amount = "0"
				return p
			}(),
			quote:      readyQuote(),
			connected:  true,
			wantReason: "enter an amount",
		},
		{
			name: "empty amount",
			params: func() qdomain.SwapParameters {
				p := validParams()
				p.Amount = ""
				return p
			}(),
			quote:      readyQuote(),
			connected:  true,
			wantReason: "enter an amount",
		},
		{
			name:       "wallet disconnected",
			params:     validParams(),
			quote:      readyQuote(),
			connected:  false,
			wantReason: "connect wallet",
		},
		{
			name:       "no quote",
			params:     validParams(),
			quote:      nil,
			connected:  true,
			wantReason: "quote not ready",
		},
		{
			name: "same token both sides",
			params: func() qdomain.SwapParameters {
				p := validParams()
				p.ToSymbol = "ETH"
				return p
			}(),
			quote:      readyQuote(),
			connected:  true,
			wantReason: "select two different tokens",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service := &stubSwapService{}
			exec, history := newExecutor(t, service, nil)

			result := exec.Execute(context.Background(), tt.params, tt.quote, tt.connected)

			if result.Succeeded() {
				t.Fatal("expected failure")
			}
			if result.FailureReason != tt.wantReason {
				t.Errorf("expected reason %q, got %q", tt.wantReason, result.FailureReason)
			}
			if service.callCount() != 0 {
				t.Errorf("precondition failure must not call the service, got %d calls", service.callCount())
			}
			if history.Len() != 0 {
				t.Errorf("precondition failure must not write history, got %d entries", history.Len())
			}
			if exec.Busy() {
				t.Error("busy flag must be cleared after precondition rejection")
			}
		})
	}
}

func TestSwapExecutor_Success(t *testing.T) {
	service := &stubSwapService{}
	resetCalled := false
	exec, history := newExecutor(t, service, func() { resetCalled = true })

	result := exec.Execute(context.Background(), validParams(), readyQuote(), true)

	if !result.Succeeded() {
		t.Fatalf("expected success, got %q", result.FailureReason)
	}
	if result.Confirmation != "swap submitted" {
		t.Errorf("expected confirmation message, got %q", result.Confirmation)
	}
	if history.Len() != 1 {
		t.Fatalf("expected 1 history entry, got %d", history.Len())
	}

	entry := history.List()[0]
	if entry.ID == "" {
		t.Error("history entry must carry an id")
	}
	if entry.FromSymbol != "ETH" || entry.ToSymbol != "USDC" {
		t.Errorf("unexpected entry pair %s/%s", entry.FromSymbol, entry.ToSymbol)
	}
	if !entry.ToAmount.Equal(d("2340.5")) {
		t.Errorf("expected entry amount 2340.5, got %s", entry.ToAmount)
	}

	if !resetCalled {
		t.Error("form reset must fire after a successful swap")
	}
	if exec.Busy() {
		t.Error("busy flag must be cleared after success")
	}
}

func TestSwapExecutor_RemoteFailure(t *testing.T) {
	service := &stubSwapService{
		fn: func(ctx context.Context, params qdomain.SwapParameters) (string, error) {
			return "", apperror.New(apperror.CodeExecuteFailed,
				apperror.WithMessage("insufficient liquidity for pair"))
		},
	}

	resetCalled := false
	exec, history := newExecutor(t, service, func() { resetCalled = true })

	result := exec.Execute(context.Background(), validParams(), readyQuote(), true)

	if result.Succeeded() {
		t.Fatal("expected failure")
	}
	if result.FailureReason != "insufficient liquidity for pair" {
		t.Errorf("expected verbatim service reason, got %q", result.FailureReason)
	}
	if history.Len() != 0 {
		t.Errorf("failed swap must not write history, got %d entries", history.Len())
	}
	if resetCalled {
		t.Error("failed swap must not reset the form")
	}

	// The flag is cleared, so an immediate retry goes through.
	service.fn = nil
	retry := exec.Execute(context.Background(), validParams(), readyQuote(), true)
	if !retry.Succeeded() {
		t.Errorf("retry after failure should succeed, got %q", retry.FailureReason)
	}
}

func TestSwapExecutor_SingleFlight(t *testing.T) {
	release := make(chan struct{})
	service := &stubSwapService{
		fn: func(ctx context.Context, params qdomain.SwapParameters) (string, error) {
			<-release
			return "swap submitted", nil
		},
	}

	exec, history := newExecutor(t, service, nil)

	results := make(chan domain.SwapResult, 2)
	started := make(chan struct{})

	go func() {
		close(started)
		results <- exec.Execute(context.Background(), validParams(), readyQuote(), true)
	}()

	<-started
	// Wait until the first call holds the busy flag, then race the second.
	for !exec.Busy() {
		time.Sleep(time.Millisecond)
	}

	go func() {
		results <- exec.Execute(context.Background(), validParams(), readyQuote(), true)
	}()

	// The rejected call returns without the service being released.
	first := <-results
	if first.Succeeded() {
		t.Fatal("expected the racing call to be rejected while busy")
	}
	if first.FailureReason != "swap already in progress" {
		t.Errorf("expected in-flight rejection, got %q", first.FailureReason)
	}

	close(release)
	second := <-results
	if !second.Succeeded() {
		t.Fatalf("expected the original call to succeed, got %q", second.FailureReason)
	}

	if service.callCount() != 1 {
		t.Errorf("expected exactly 1 service call, got %d", service.callCount())
	}
	if history.Len() != 1 {
		t.Errorf("expected exactly 1 history entry, got %d", history.Len())
	}
}
