package app

import (
	"context"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/mevshield/swapdesk/business/quoting/domain"
	"github.com/mevshield/swapdesk/internal/logger"
	"github.com/mevshield/swapdesk/internal/token"
)

const meterName = "swapdesk/quoting"

// State is the quoting lifecycle state.
type State string

const (
	StateIdle       State = "idle"
	StateDebouncing State = "debouncing"
	StateFetching   State = "fetching"
	StateReady      State = "ready"
)

// Snapshot is an immutable view of the controller handed to observers.
// Quote is nil unless State is StateReady.
type Snapshot struct {
	State  State
	Params domain.SwapParameters
	Quote  *domain.Quote
}

// NotifyFn receives a snapshot after every state change. It is called
// outside the controller's lock and may call back into the controller.
type NotifyFn func(Snapshot)

// Config tunes the controller's timing.
type Config struct {
	DebounceDelay time.Duration
	QuoteTimeout  time.Duration
}

// DefaultConfig returns the production timing.
func DefaultConfig() Config {
	return Config{
		DebounceDelay: 500 * time.Millisecond,
		QuoteTimeout:  5 * time.Second,
	}
}

// QuoteController turns parameter edits into at most one live quote request.
// Every edit issues a new monotonic request id; a response carrying an older
// id than the latest issued is discarded without effect. Remote failures are
// absorbed by the local pricing model and never surfaced to the caller.
type QuoteController struct {
	log     logger.LoggerInterface
	client  QuoteClient
	tokens  TokenSource
	pricing *domain.PricingModel
	cfg     Config

	mu        sync.Mutex
	state     State
	params    domain.SwapParameters
	quote     *domain.Quote
	requestID uint64 // latest issued; the only id allowed to resolve
	debounce  *time.Timer
	notify    NotifyFn

	metrics controllerMetrics
}

type controllerMetrics struct {
	quotesServed  metric.Int64Counter
	staleDiscards metric.Int64Counter
}

// NewQuoteController creates a controller in the idle state.
func NewQuoteController(log logger.LoggerInterface, client QuoteClient, tokens TokenSource, pricing *domain.PricingModel, cfg Config) (*QuoteController, error) {
	if cfg.DebounceDelay <= 0 {
		cfg.DebounceDelay = DefaultConfig().DebounceDelay
	}
	if cfg.QuoteTimeout <= 0 {
		cfg.QuoteTimeout = DefaultConfig().QuoteTimeout
	}

	c := &QuoteController{
		log:     log,
		client:  client,
		tokens:  tokens,
		pricing: pricing,
		cfg:     cfg,
		state:   StateIdle,
		params:  domain.SwapParameters{SlippageBps: domain.DefaultSlippageBps},
	}

	if err := c.initMetrics(); err != nil {
		return nil, err
	}

	return c, nil
}

func (c *QuoteController) initMetrics() error {
	meter := otel.Meter(meterName)
	var err error

	c.metrics.quotesServed, err = meter.Int64Counter(
		"quotes_served_total",
		metric.WithDescription("Quotes delivered to observers, by source"),
	)
	if err != nil {
		return err
	}

	c.metrics.staleDiscards, err = meter.Int64Counter(
		"quote_stale_discards_total",
		metric.WithDescription("Quote results discarded for carrying a superseded request id"),
	)
	return err
}

// OnChange registers the snapshot observer. Must be called before the first
// SetParams.
func (c *QuoteController) OnChange(fn NotifyFn) {
	c.mu.Lock()
	c.notify = fn
	c.mu.Unlock()
}

// SetParams applies one form edit. Any pending debounce or in-flight fetch
// for the previous snapshot is rendered stale immediately, even though its
// network call is not aborted at the transport level.
func (c *QuoteController) SetParams(params domain.SwapParameters) {
	c.mu.Lock()

	c.params = params
	if c.debounce != nil {
		c.debounce.Stop()
		c.debounce = nil
	}

	// Invalidate whatever was in flight. Done unconditionally so a late
	// response for the previous snapshot can never resolve.
	c.requestID++
	rid := c.requestID

	if !params.HasAmount() || params.Validate() != nil {
		c.state = StateIdle
		c.quote = nil
		c.notifyLocked()
		return
	}

	c.state = StateDebouncing
	c.debounce = time.AfterFunc(c.cfg.DebounceDelay, func() {
		c.fire(rid)
	})
	c.notifyLocked()
}

// Reset clears the form back to idle, dropping the current quote.
func (c *QuoteController) Reset() {
	c.mu.Lock()
	reset := c.params
	reset.Amount = ""
	c.mu.Unlock()

	c.SetParams(reset)
}

// Snapshot returns the current state.
func (c *QuoteController) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

// Quote returns the current quote, or nil when none is ready.
func (c *QuoteController) Quote() *domain.Quote {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.quote == nil {
		return nil
	}
	q := *c.quote
	return &q
}

// Close cancels any pending debounce timer.
func (c *QuoteController) Close() {
	c.mu.Lock()
	if c.debounce != nil {
		c.debounce.Stop()
		c.debounce = nil
	}
	c.mu.Unlock()
}

// fire runs when the debounce timer expires uncanceled.
func (c *QuoteController) fire(rid uint64) {
	c.mu.Lock()
	if rid != c.requestID || c.state != StateDebouncing {
		c.mu.Unlock()
		return
	}
	c.state = StateFetching
	params := c.params
	c.notifyLocked()

	go c.fetch(rid, params)
}

func (c *QuoteController) fetch(rid uint64, params domain.SwapParameters) {
	ctx, cancel := context.WithTimeout(context.Background(), c.cfg.QuoteTimeout)
	defer cancel()

	remote, err := c.client.GetSwapQuote(ctx, params)
	c.resolve(rid, params, remote, err)
}

// resolve applies a finished fetch. The request id check is the staleness
// rule: results are ordered by id, not by arrival time.
func (c *QuoteController) resolve(rid uint64, params domain.SwapParameters, remote RemoteQuote, err error) {
	c.mu.Lock()

	if rid != c.requestID {
		latest := c.requestID
		c.mu.Unlock()
		c.metrics.staleDiscards.Add(context.Background(), 1)
		c.log.Debug(context.Background(), "discarding stale quote result",
			"requestID", rid, "latest", latest)
		return
	}

	var quote domain.Quote
	if err != nil {
		c.log.Warn(context.Background(), "remote quote failed, using fallback pricing",
			"requestID", rid, "error", err.Error())
		quote = c.fallbackQuote(rid, params)
	} else {
		quote = c.remoteQuote(rid, params, remote)
	}

	c.quote = &quote
	c.state = StateReady
	c.metrics.quotesServed.Add(context.Background(), 1,
		metric.WithAttributes(attribute.String("source", string(quote.Source))))
	c.notifyLocked()
}

func (c *QuoteController) remoteQuote(rid uint64, params domain.SwapParameters, remote RemoteQuote) domain.Quote {
	amount, _ := params.AmountDecimal()

	quote := domain.Quote{
		FromSymbol:    token.NormalizeSymbol(params.FromSymbol),
		ToSymbol:      token.NormalizeSymbol(params.ToSymbol),
		FromAmount:    amount,
		ToAmountExact: remote.ToAmount,
		ToAmount:      remote.ToAmount.Round(domain.DisplayPrecision),
		GasSavingsUSD: remote.GasSavingsUSD,
		Protocol:      remote.Protocol,
		Source:        domain.SourceRemote,
		RequestID:     rid,
		CreatedAt:     time.Now(),
	}

	if amount.IsPositive() {
		quote.Rate = remote.ToAmount.Div(amount)
	}

	from, _ := c.tokens.Get(params.FromSymbol)
	local := c.pricing.Estimate(from, token.Token{}, amount)

	if remote.PriceImpactPct != nil {
		quote.PriceImpactPct = *remote.PriceImpactPct
	} else {
		quote.PriceImpactPct = local.PriceImpactPct
	}
	if remote.NetworkFeeUSD != nil {
		quote.NetworkFeeUSD = *remote.NetworkFeeUSD
	} else {
		quote.NetworkFeeUSD = local.NetworkFeeUSD
	}

	return quote
}

func (c *QuoteController) fallbackQuote(rid uint64, params domain.SwapParameters) domain.Quote {
	amount, _ := params.AmountDecimal()
	from, _ := c.tokens.Get(params.FromSymbol)
	to, _ := c.tokens.Get(params.ToSymbol)

	est := c.pricing.Estimate(from, to, amount)

	return domain.Quote{
		FromSymbol:     token.NormalizeSymbol(params.FromSymbol),
		ToSymbol:       token.NormalizeSymbol(params.ToSymbol),
		FromAmount:     amount,
		ToAmount:       est.ToAmount,
		ToAmountExact:  est.ToAmountExact,
		Rate:           est.Rate,
		PriceImpactPct: est.PriceImpactPct,
		NetworkFeeUSD:  est.NetworkFeeUSD,
		Source:         domain.SourceFallback,
		RequestID:      rid,
		CreatedAt:      time.Now(),
	}
}

func (c *QuoteController) snapshotLocked() Snapshot {
	snap := Snapshot{State: c.state, Params: c.params}
	if c.quote != nil {
		q := *c.quote
		snap.Quote = &q
	}
	return snap
}

// notifyLocked snapshots under the lock, releases it, then calls the
// observer. Callers must hold the lock and must not touch it afterwards.
func (c *QuoteController) notifyLocked() {
	snap := c.snapshotLocked()
	fn := c.notify
	c.mu.Unlock()

	if fn != nil {
		fn(snap)
	}
}
