// Package portfolio implements the PortfolioProvider port against the
// balance/price feed's REST API.
package portfolio

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/ethereum/go-ethereum/common"
	gocache "github.com/patrickmn/go-cache"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/mevshield/swapdesk/internal/apperror"
	"github.com/mevshield/swapdesk/internal/httpclient"
	"github.com/mevshield/swapdesk/internal/logger"
	"github.com/mevshield/swapdesk/internal/token"
)

const (
	portfolioEndpoint = "/v1/portfolio"

	tracerName = "swapdesk/portfolio"

	defaultTimeout = 10 * time.Second
	defaultTTL     = 5 * time.Minute
)

// Config holds portfolio client configuration.
type Config struct {
	BaseURL     string
	Timeout     time.Duration
	MetadataTTL time.Duration // cache window for identical portfolio requests
}

// Client fetches wallet portfolios. Responses are cached per wallet/chain for
// MetadataTTL so UI-triggered refreshes do not hammer the feed.
type Client struct {
	http   httpclient.Client
	cache  *gocache.Cache
	logger logger.LoggerInterface
	tracer trace.Tracer
}

// New creates a portfolio client.
func New(cfg Config, log logger.LoggerInterface) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, apperror.New(apperror.CodeConfigurationError,
			apperror.WithContext("portfolio feed base URL is required"))
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	ttl := cfg.MetadataTTL
	if ttl <= 0 {
		ttl = defaultTTL
	}

	tracer := otel.Tracer(tracerName)

	client, err := httpclient.NewInstrumentedClient(
		httpclient.WithProviderName("portfolio"),
		httpclient.WithBaseURL(cfg.BaseURL),
		httpclient.WithRequestTimeout(timeout),
		httpclient.WithTraceOptions(tracer, httpclient.TraceResponse),
		httpclient.WithHeaders(map[string]string{
			"Accept": "application/json",
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create HTTP client: %w", err)
	}

	return &Client{
		http:   client,
		cache:  gocache.New(ttl, 2*ttl),
		logger: log,
		tracer: tracer,
	}, nil
}

// tokenRow is one entry of the feed's response.
type tokenRow struct {
	Symbol         string `json:"symbol"`
	Name           string `json:"name"`
	Balance        string `json:"balance"`
	Price          string `json:"price"`
	PriceChange24h string `json:"priceChange24h"`
	Address        string `json:"address"`
}

type portfolioResponse struct {
	Success bool       `json:"success"`
	Error   string     `json:"error,omitempty"`
	Data    []tokenRow `json:"data"`
}

// FetchPortfolio returns the wallet's tokens for the chain.
func (c *Client) FetchPortfolio(ctx context.Context, wallet string, chainID uint64) ([]token.Token, error) {
	ctx, span := c.tracer.Start(ctx, "portfolio.fetch",
		trace.WithAttributes(
			attribute.String("wallet", wallet),
			attribute.Int64("chain_id", int64(chainID)),
		),
	)
	defer span.End()

	cacheKey := fmt.Sprintf("%s:%d", wallet, chainID)
	if cached, ok := c.cache.Get(cacheKey); ok {
		span.SetAttributes(attribute.Bool("cache_hit", true))
		return cached.([]token.Token), nil
	}

	var result portfolioResponse
	resp, err := c.http.NewRequestWithOptions(
		httpclient.WithLabels(httpclient.NewLabel("endpoint", "portfolio")),
	).
		SetQueryParam("address", wallet).
		SetQueryParam("chainId", strconv.FormatUint(chainID, 10)).
		SetResult(&result).
		Get(ctx, portfolioEndpoint)

	if err != nil {
		span.RecordError(err)
		return nil, apperror.New(apperror.CodePortfolioFetchError,
			apperror.WithCause(err),
			apperror.WithContext("fetching wallet portfolio"))
	}
	if resp.IsError() {
		return nil, apperror.New(apperror.CodePortfolioFetchError,
			apperror.WithContext(fmt.Sprintf("portfolio feed returned HTTP %d", resp.StatusCode)))
	}
	if !result.Success {
		return nil, apperror.New(apperror.CodePortfolioFetchError,
			apperror.WithContext(fmt.Sprintf("portfolio feed rejected request: %s", result.Error)))
	}

	tokens := lo.FilterMap(result.Data, func(row tokenRow, _ int) (token.Token, bool) {
		t, err := rowToToken(row, chainID)
		if err != nil {
			c.logger.Warn(ctx, "dropping malformed portfolio row",
				"symbol", row.Symbol, "error", err.Error())
			return token.Token{}, false
		}
		return t, true
	})

	c.cache.Set(cacheKey, tokens, gocache.DefaultExpiration)

	span.SetAttributes(attribute.Int("tokens", len(tokens)))
	c.logger.Debug(ctx, "fetched portfolio", "wallet", wallet, "tokens", len(tokens))

	return tokens, nil
}

// Invalidate drops the cached portfolio for a wallet/chain, forcing the next
// fetch to hit the feed.
func (c *Client) Invalidate(wallet string, chainID uint64) {
	c.cache.Delete(fmt.Sprintf("%s:%d", wallet, chainID))
}

func rowToToken(row tokenRow, chainID uint64) (token.Token, error) {
	if row.Symbol == "" {
		return token.Token{}, fmt.Errorf("missing symbol")
	}

	balance, err := decimalField(row.Balance, "balance")
	if err != nil {
		return token.Token{}, err
	}
	price, err := decimalField(row.Price, "price")
	if err != nil {
		return token.Token{}, err
	}
	change, err := decimalField(row.PriceChange24h, "priceChange24h")
	if err != nil {
		return token.Token{}, err
	}

	t := token.Token{
		Symbol:         token.NormalizeSymbol(row.Symbol),
		Name:           row.Name,
		ChainID:        chainID,
		Balance:        balance,
		PriceUSD:       price,
		PriceChange24h: change,
	}

	if row.Address != "" {
		if !common.IsHexAddress(row.Address) {
			return token.Token{}, fmt.Errorf("invalid address %q", row.Address)
		}
		addr := common.HexToAddress(row.Address)
		t.Address = &addr
	}

	return t, nil
}

func decimalField(raw, field string) (decimal.Decimal, error) {
	if raw == "" {
		return decimal.Zero, nil
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid %s %q", field, raw)
	}
	return d, nil
}
