package tradesvc

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/mevshield/swapdesk/business/quoting/domain"
	"github.com/mevshield/swapdesk/internal/apperror"
	"github.com/mevshield/swapdesk/internal/logger"
)

func newTestLogger() logger.LoggerInterface {
	return logger.New(discardWriter{}, logger.LevelInfo, "test", nil)
}

type discardWriter struct{}

func (discardWriter) Write(p []byte) (int, error) { return len(p), nil }

func testParams() domain.SwapParameters {
	return domain.SwapParameters{
		FromSymbol:  "ETH",
		ToSymbol:    "USDC",
		Amount:      "2",
		SlippageBps: 50,
		ChainID:     1,
	}
}

func newTestClient(t *testing.T, handler http.HandlerFunc) (*Client, *httptest.Server) {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client, err := New(Config{BaseURL: server.URL}, newTestLogger())
	if err != nil {
		t.Fatalf("failed to create client: %v", err)
	}
	return client, server
}

func TestClient_GetSwapQuote_Success(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != quoteEndpoint {
			t.Errorf("unexpected path %s", r.URL.Path)
		}

		var req quoteRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("bad request body: %v", err)
		}
		if req.FromToken != "ETH" || req.ToToken != "USDC" || req.Amount != "2" {
			t.Errorf("unexpected request: %+v", req)
		}

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"success":true,"data":{"toAmount":4681,"priceImpact":"0.42","gasSavings":12.5,"protocol":"uniswap-v3"}}`))
	})

	remote, err := client.GetSwapQuote(context.Background(), testParams())
	if err != nil {
		t.Fatalf("GetSwapQuote failed: %v", err)
	}

	if !remote.ToAmount.Equal(decimal.RequireFromString("4681")) {
		t.Errorf("expected toAmount 4681, got %s", remote.ToAmount)
	}
	if remote.PriceImpactPct == nil || !remote.PriceImpactPct.Equal(decimal.RequireFromString("0.42")) {
		t.Errorf("expected impact 0.42, got %v", remote.PriceImpactPct)
	}
	if !remote.GasSavingsUSD.Equal(decimal.RequireFromString("12.5")) {
		t.Errorf("expected savings 12.5, got %s", remote.GasSavingsUSD)
	}
	if remote.Protocol != "uniswap-v3" {
		t.Errorf("expected protocol uniswap-v3, got %s", remote.Protocol)
	}
}

func TestClient_GetSwapQuote_EstimatedAmountVariant(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"success":true,"data":{"estimatedAmount":"123.456"}}`))
	})

	remote, err := client.GetSwapQuote(context.Background(), testParams())
	if err != nil {
		t.Fatalf("GetSwapQuote failed: %v", err)
	}
	if !remote.ToAmount.Equal(decimal.RequireFromString("123.456")) {
		t.Errorf("expected toAmount 123.456, got %s", remote.ToAmount)
	}
	if remote.PriceImpactPct != nil {
		t.Errorf("expected no impact, got %v", remote.PriceImpactPct)
	}
}

func TestClient_GetSwapQuote_MalformedPayloads(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{name: "no data", body: `{"success":true}`},
		{name: "no amount", body: `{"success":true,"data":{"protocol":"x"}}`},
		{name: "zero amount", body: `{"success":true,"data":{"toAmount":0}}`},
		{name: "negative amount", body: `{"success":true,"data":{"toAmount":"-5"}}`},
		{name: "negative impact", body: `{"success":true,"data":{"toAmount":10,"priceImpact":-1}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				w.Write([]byte(tt.body))
			})

			_, err := client.GetSwapQuote(context.Background(), testParams())
			if err == nil {
				t.Fatal("expected error for malformed payload")
			}
			if got := apperror.GetCode(err); got != apperror.CodeMalformedQuote {
				t.Errorf("expected code %s, got %s", apperror.CodeMalformedQuote, got)
			}
		})
	}
}

func TestClient_GetSwapQuote_ServiceRejection(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"success":false,"error":"pair not supported"}`))
	})

	_, err := client.GetSwapQuote(context.Background(), testParams())
	if err == nil {
		t.Fatal("expected error")
	}
	if got := apperror.GetCode(err); got != apperror.CodeQuoteFetchFailed {
		t.Errorf("expected code %s, got %s", apperror.CodeQuoteFetchFailed, got)
	}
}

func TestClient_GetSwapQuote_CircuitOpensAfterRepeatedFailures(t *testing.T) {
	var hits atomic.Int32
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		http.Error(w, `{"error":"boom"}`, http.StatusInternalServerError)
	})

	ctx := context.Background()
	for i := 0; i < 3; i++ {
		if _, err := client.GetSwapQuote(ctx, testParams()); err == nil {
			t.Fatal("expected failure")
		}
	}

	before := hits.Load()
	if _, err := client.GetSwapQuote(ctx, testParams()); err == nil {
		t.Fatal("expected open-circuit failure")
	}
	if hits.Load() != before {
		t.Errorf("open circuit must not reach the service: %d -> %d hits", before, hits.Load())
	}
	if client.CircuitState() != "open" {
		t.Errorf("expected circuit state open, got %s", client.CircuitState())
	}
}

func TestClient_ExecuteSwap_Success(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != executeEndpoint {
			t.Errorf("unexpected path %s", r.URL.Path)
		}

		var req executeRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("bad request body: %v", err)
		}
		if !req.MEVProtection {
			t.Error("expected mevProtection to be forwarded")
		}

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"success":true,"message":"swap submitted"}`))
	})

	params := testParams()
	params.MEVProtection = true

	msg, err := client.ExecuteSwap(context.Background(), params)
	if err != nil {
		t.Fatalf("ExecuteSwap failed: %v", err)
	}
	if msg != "swap submitted" {
		t.Errorf("expected confirmation message, got %q", msg)
	}
}

func TestClient_ExecuteSwap_RejectionSurfacesMessageVerbatim(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"success":false,"message":"insufficient liquidity for pair"}`))
	})

	_, err := client.ExecuteSwap(context.Background(), testParams())
	if err == nil {
		t.Fatal("expected error")
	}
	if got := apperror.GetCode(err); got != apperror.CodeExecuteFailed {
		t.Errorf("expected code %s, got %s", apperror.CodeExecuteFailed, got)
	}

	var appErr *apperror.AppError
	if !errors.As(err, &appErr) {
		t.Fatalf("expected *apperror.AppError, got %T", err)
	}
	if appErr.Message != "insufficient liquidity for pair" {
		t.Errorf("expected verbatim service message, got %q", appErr.Message)
	}
}
