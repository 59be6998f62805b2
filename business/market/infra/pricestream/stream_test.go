package pricestream

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/coder/websocket"
	"github.com/shopspring/decimal"

	"github.com/mevshield/swapdesk/internal/logger"
)

type discardWriter struct{}

func (discardWriter) Write(p []byte) (int, error) { return len(p), nil }

func newTestLogger() logger.LoggerInterface {
	return logger.New(discardWriter{}, logger.LevelError, "test", nil)
}

// mockFeed accepts one connection, reads the subscription, then sends the
// given raw messages.
func mockFeed(t *testing.T, messages []string, gotSub chan<- subscribeRequest) *httptest.Server {
	t.Helper()

	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := websocket.Accept(w, r, nil)
		if err != nil {
			t.Logf("accept error: %v", err)
			return
		}
		defer conn.Close(websocket.StatusNormalClosure, "")

		ctx := context.Background()

		_, data, err := conn.Read(ctx)
		if err != nil {
			return
		}
		var sub subscribeRequest
		if err := json.Unmarshal(data, &sub); err == nil && gotSub != nil {
			gotSub <- sub
		}

		for _, msg := range messages {
			if err := conn.Write(ctx, websocket.MessageText, []byte(msg)); err != nil {
				return
			}
		}
		time.Sleep(200 * time.Millisecond)
	}))
}

func TestStream_DeliversParsedTicks(t *testing.T) {
	gotSub := make(chan subscribeRequest, 1)
	server := mockFeed(t, []string{
		`{"symbol":"ETH","price":"2340.5","change24h":-1.2}`,
		`{"symbol":"","price":"1"}`,
		`{"symbol":"USDC","price":"not-a-number"}`,
		`{"symbol":"USDC","price":1.0001}`,
	}, gotSub)
	defer server.Close()

	wsURL := "ws" + strings.TrimPrefix(server.URL, "http")

	stream, err := New(Config{URL: wsURL, Symbols: []string{"ETH", "USDC"}}, newTestLogger())
	if err != nil {
		t.Fatalf("failed to create stream: %v", err)
	}
	defer stream.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := stream.Connect(ctx); err != nil {
		t.Fatalf("Connect failed: %v", err)
	}

	select {
	case sub := <-gotSub:
		if sub.Method != "SUBSCRIBE" || len(sub.Symbols) != 2 {
			t.Errorf("unexpected subscription %+v", sub)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("feed never received subscription")
	}

	// Only the two well-formed ticks come through.
	var got []string
	timeout := time.After(2 * time.Second)
	for len(got) < 2 {
		select {
		case update := <-stream.Updates():
			got = append(got, update.Symbol)
			if update.Symbol == "ETH" {
				if !update.PriceUSD.Equal(decimal.RequireFromString("2340.5")) {
					t.Errorf("expected ETH price 2340.5, got %s", update.PriceUSD)
				}
				if !update.Change24h.Equal(decimal.RequireFromString("-1.2")) {
					t.Errorf("expected change -1.2, got %s", update.Change24h)
				}
			}
		case <-timeout:
			t.Fatalf("timed out, got updates %v", got)
		}
	}

	if got[0] != "ETH" || got[1] != "USDC" {
		t.Errorf("expected [ETH USDC], got %v", got)
	}

	// The malformed ticks were dropped, nothing else arrives.
	select {
	case update := <-stream.Updates():
		t.Errorf("unexpected extra update %+v", update)
	case <-time.After(100 * time.Millisecond):
	}
}
