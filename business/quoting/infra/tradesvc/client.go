package tradesvc

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sony/gobreaker/v2"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/mevshield/swapdesk/business/quoting/app"
	"github.com/mevshield/swapdesk/business/quoting/domain"
	"github.com/mevshield/swapdesk/internal/apperror"
	"github.com/mevshield/swapdesk/internal/circuitbreaker"
	"github.com/mevshield/swapdesk/internal/httpclient"
	"github.com/mevshield/swapdesk/internal/logger"
	"github.com/mevshield/swapdesk/internal/ratelimit"
)

const (
	quoteEndpoint   = "/v1/swap/quote"
	executeEndpoint = "/v1/swap/execute"

	tracerName = "swapdesk/tradesvc"

	defaultTimeout = 5 * time.Second
	defaultRPM     = 120
)

// Config holds trading service client configuration.
type Config struct {
	BaseURL           string
	Timeout           time.Duration
	RequestsPerMinute int
}

// Client talks to the remote trading service. Quote calls run through a
// circuit breaker and a rate limiter; execute calls do neither, because an
// execution must be surfaced however long it takes.
type Client struct {
	http    httpclient.Client
	breaker *circuitbreaker.Breaker[app.RemoteQuote]
	limiter *ratelimit.Limiter
	logger  logger.LoggerInterface
	tracer  trace.Tracer
}

// New creates a trading service client.
func New(cfg Config, log logger.LoggerInterface) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, apperror.New(apperror.CodeConfigurationError,
			apperror.WithContext("trading service base URL is required"))
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	rpm := cfg.RequestsPerMinute
	if rpm <= 0 {
		rpm = defaultRPM
	}

	tracer := otel.Tracer(tracerName)

	client, err := httpclient.NewInstrumentedClient(
		httpclient.WithProviderName("tradesvc"),
		httpclient.WithBaseURL(cfg.BaseURL),
		httpclient.WithRequestTimeout(timeout),
		httpclient.WithTraceOptions(tracer, httpclient.TraceRequest, httpclient.TraceResponse),
		httpclient.WithHeaders(map[string]string{
			"Accept":       "application/json",
			"Content-Type": "application/json",
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create HTTP client: %w", err)
	}

	breakerCfg := circuitbreaker.DefaultConfig("tradesvc-quote")
	breakerCfg.OnStateChange = func(name string, from, to gobreaker.State) {
		log.Warn(context.Background(), "trading service circuit state changed",
			"breaker", name, "from", from.String(), "to", to.String())
	}

	return &Client{
		http:    client,
		breaker: circuitbreaker.New[app.RemoteQuote](breakerCfg),
		limiter: ratelimit.New(rpm),
		logger:  log,
		tracer:  tracer,
	}, nil
}

// GetSwapQuote fetches a quote for the given parameter snapshot.
func (c *Client) GetSwapQuote(ctx context.Context, params domain.SwapParameters) (app.RemoteQuote, error) {
	ctx, span := c.tracer.Start(ctx, "tradesvc.get_swap_quote",
		trace.WithAttributes(
			attribute.String("from", params.FromSymbol),
			attribute.String("to", params.ToSymbol),
			attribute.String("amount", params.Amount),
		),
	)
	defer span.End()

	if err := c.limiter.Wait(ctx); err != nil {
		return app.RemoteQuote{}, apperror.Wrap(err, apperror.CodeRateLimitExceeded,
			"waiting for quote rate limit")
	}

	remote, err := c.breaker.Execute(func() (app.RemoteQuote, error) {
		return c.fetchQuote(ctx, params)
	})
	if err != nil {
		span.RecordError(err)
		return app.RemoteQuote{}, err
	}

	span.SetAttributes(attribute.String("to_amount", remote.ToAmount.String()))
	return remote, nil
}

func (c *Client) fetchQuote(ctx context.Context, params domain.SwapParameters) (app.RemoteQuote, error) {
	var result quoteResponse
	resp, err := c.http.NewRequestWithOptions(
		httpclient.WithLabels(httpclient.NewLabel("endpoint", "quote")),
		httpclient.WithResponseErrorHandler(tradesvcErrorHandler),
	).
		SetBody(quoteRequest{
			FromToken:   params.FromSymbol,
			ToToken:     params.ToSymbol,
			Amount:      params.Amount,
			SlippageBps: params.SlippageBps,
			ChainID:     params.ChainID,
		}).
		SetResult(&result).
		Post(ctx, quoteEndpoint)

	if err != nil {
		return app.RemoteQuote{}, apperror.New(apperror.CodeQuoteFetchFailed,
			apperror.WithCause(err),
			apperror.WithContext("requesting swap quote"))
	}
	if resp.IsError() {
		return app.RemoteQuote{}, apperror.New(apperror.CodeQuoteFetchFailed,
			apperror.WithContext(fmt.Sprintf("quote endpoint returned HTTP %d", resp.StatusCode)))
	}
	if !result.Success {
		return app.RemoteQuote{}, apperror.New(apperror.CodeQuoteFetchFailed,
			apperror.WithContext(fmt.Sprintf("trading service rejected quote: %s", result.Error)))
	}

	remote, err := normalizeQuote(result.Data)
	if err != nil {
		return app.RemoteQuote{}, err
	}

	c.logger.Debug(ctx, "fetched swap quote",
		"from", params.FromSymbol,
		"to", params.ToSymbol,
		"toAmount", remote.ToAmount.String(),
		"protocol", remote.Protocol)

	return remote, nil
}

// ExecuteSwap submits the trade. On rejection the service's message is
// returned verbatim inside the error so callers can show it unchanged.
func (c *Client) ExecuteSwap(ctx context.Context, params domain.SwapParameters) (string, error) {
	ctx, span := c.tracer.Start(ctx, "tradesvc.execute_swap",
		trace.WithAttributes(
			attribute.String("from", params.FromSymbol),
			attribute.String("to", params.ToSymbol),
			attribute.String("amount", params.Amount),
			attribute.Bool("mev_protection", params.MEVProtection),
		),
	)
	defer span.End()

	var result executeResponse
	resp, err := c.http.NewRequestWithOptions(
		httpclient.WithLabels(httpclient.NewLabel("endpoint", "execute")),
		httpclient.WithResponseErrorHandler(tradesvcErrorHandler),
	).
		SetBody(executeRequest{
			FromToken:     params.FromSymbol,
			ToToken:       params.ToSymbol,
			Amount:        params.Amount,
			SlippageBps:   params.SlippageBps,
			ChainID:       params.ChainID,
			Recipient:     params.Recipient,
			MEVProtection: params.MEVProtection,
		}).
		SetResult(&result).
		Post(ctx, executeEndpoint)

	if err != nil {
		span.RecordError(err)

		// Surface the service's own wording when it gave one.
		msg := result.Message
		var svcErr *serviceError
		if msg == "" && errors.As(err, &svcErr) {
			msg = svcErr.Message
		}

		opts := []apperror.Option{
			apperror.WithCause(err),
			apperror.WithContext("submitting swap execution"),
		}
		if msg != "" {
			opts = append(opts, apperror.WithMessage(msg))
		}
		return "", apperror.New(apperror.CodeExecuteFailed, opts...)
	}
	if resp.IsError() {
		return "", apperror.New(apperror.CodeExecuteFailed,
			apperror.WithMessage(result.Message),
			apperror.WithContext(fmt.Sprintf("execute endpoint returned HTTP %d", resp.StatusCode)))
	}
	if !result.Success {
		return "", apperror.New(apperror.CodeExecuteFailed,
			apperror.WithMessage(result.Message),
			apperror.WithContext("trading service rejected execution"))
	}

	c.logger.Info(ctx, "swap executed",
		"from", params.FromSymbol,
		"to", params.ToSymbol,
		"amount", params.Amount)

	return result.Message, nil
}

// CircuitState exposes the quote breaker state for health checks.
func (c *Client) CircuitState() string {
	return c.breaker.State().String()
}
