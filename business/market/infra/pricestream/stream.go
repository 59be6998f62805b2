// Package pricestream implements the PriceStream port over the feed's
// WebSocket endpoint.
package pricestream

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/mevshield/swapdesk/business/market/app"
	"github.com/mevshield/swapdesk/internal/apperror"
	"github.com/mevshield/swapdesk/internal/logger"
	"github.com/mevshield/swapdesk/internal/wsconn"
)

const updateBuffer = 256

// Config holds price stream configuration.
type Config struct {
	URL     string
	Symbols []string // empty subscribes to everything
}

// Stream is a reconnecting WebSocket price feed. Malformed ticks are dropped
// with a log line; the channel carries only parsed updates.
type Stream struct {
	conn    *wsconn.Client
	cfg     Config
	logger  logger.LoggerInterface
	updates chan app.PriceUpdate
}

// New creates a price stream.
func New(cfg Config, log logger.LoggerInterface) (*Stream, error) {
	conn, err := wsconn.New(wsconn.DefaultConfig(cfg.URL, "pricestream"))
	if err != nil {
		return nil, apperror.New(apperror.CodeWebSocketConnectionError,
			apperror.WithCause(err),
			apperror.WithContext("creating price stream client"))
	}

	s := &Stream{
		conn:    conn,
		cfg:     cfg,
		logger:  log,
		updates: make(chan app.PriceUpdate, updateBuffer),
	}

	conn.OnMessage(s.handleMessage)
	conn.OnStateChange(func(state wsconn.State, err error) {
		if err != nil {
			log.Warn(context.Background(), "price stream state changed",
				"state", string(state), "error", err.Error())
			return
		}
		log.Debug(context.Background(), "price stream state changed", "state", string(state))
	})

	return s, nil
}

// subscribeRequest is the feed's subscription message.
type subscribeRequest struct {
	Method  string   `json:"method"`
	Symbols []string `json:"symbols,omitempty"`
}

// tick is one price message from the feed.
type tick struct {
	Symbol    string          `json:"symbol"`
	Price     json.RawMessage `json:"price"`
	Change24h json.RawMessage `json:"change24h"`
}

// Connect dials the feed and subscribes.
func (s *Stream) Connect(ctx context.Context) error {
	if err := s.conn.Connect(ctx); err != nil {
		return apperror.New(apperror.CodeWebSocketConnectionError,
			apperror.WithCause(err),
			apperror.WithContext("connecting price stream"))
	}

	if err := s.conn.SendJSON(ctx, subscribeRequest{Method: "SUBSCRIBE", Symbols: s.cfg.Symbols}); err != nil {
		return apperror.New(apperror.CodeWebSocketSendError,
			apperror.WithCause(err),
			apperror.WithContext("subscribing to price updates"))
	}

	return nil
}

// Updates returns the tick channel. It stays open across reconnects.
func (s *Stream) Updates() <-chan app.PriceUpdate {
	return s.updates
}

// Close tears down the connection and closes the update channel.
func (s *Stream) Close() error {
	err := s.conn.Close()
	close(s.updates)
	return err
}

func (s *Stream) handleMessage(ctx context.Context, msg []byte) {
	var t tick
	if err := json.Unmarshal(msg, &t); err != nil || t.Symbol == "" {
		s.logger.Warn(ctx, "dropping malformed price tick", "payload", string(msg))
		return
	}

	price, err := parseRawDecimal(t.Price)
	if err != nil {
		s.logger.Warn(ctx, "dropping price tick with bad price",
			"symbol", t.Symbol, "error", err.Error())
		return
	}
	change, err := parseRawDecimal(t.Change24h)
	if err != nil {
		change = decimal.Zero
	}

	update := app.PriceUpdate{Symbol: t.Symbol, PriceUSD: price, Change24h: change}

	// Drop the tick when the consumer lags; the next one supersedes it.
	select {
	case s.updates <- update:
	default:
	}
}

// parseRawDecimal accepts a JSON number or a numeric string.
func parseRawDecimal(raw json.RawMessage) (decimal.Decimal, error) {
	if len(raw) == 0 {
		return decimal.Zero, fmt.Errorf("missing value")
	}

	s := string(raw)
	if s[0] == '"' {
		if err := json.Unmarshal(raw, &s); err != nil {
			return decimal.Zero, err
		}
	}
	return decimal.NewFromString(s)
}
