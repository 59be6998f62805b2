package app

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/mevshield/swapdesk/business/execution/domain"
	qdomain "github.com/mevshield/swapdesk/business/quoting/domain"
	"github.com/mevshield/swapdesk/internal/apperror"
	"github.com/mevshield/swapdesk/internal/logger"
)

const meterName = "swapdesk/execution"

// ResetFn clears the swap form after a successful trade.
type ResetFn func()

// Config tunes the executor.
type Config struct {
	// DisplayHold is how long the success state stays visible before the
	// form reset fires. Zero resets synchronously.
	DisplayHold time.Duration
}

// SwapExecutor drives the execute step. It is single-flight: while one
// execution is outstanding, further calls are rejected locally without
// touching the service.
type SwapExecutor struct {
	log     logger.LoggerInterface
	service SwapService
	history *domain.TradeHistoryLog
	reset   ResetFn
	cfg     Config

	busy atomic.Bool

	executions metric.Int64Counter
}

// NewSwapExecutor creates an executor. reset may be nil.
func NewSwapExecutor(log logger.LoggerInterface, service SwapService, history *domain.TradeHistoryLog, reset ResetFn, cfg Config) (*SwapExecutor, error) {
	executions, err := otel.Meter(meterName).Int64Counter(
		"swap_executions_total",
		metric.WithDescription("Swap execution attempts, by outcome"),
	)
	if err != nil {
		return nil, err
	}

	return &SwapExecutor{
		log:        log,
		service:    service,
		history:    history,
		reset:      reset,
		cfg:        cfg,
		executions: executions,
	}, nil
}

// Busy reports whether an execution is currently outstanding.
func (e *SwapExecutor) Busy() bool {
	return e.busy.Load()
}

// Execute validates preconditions, submits the trade, and records it.
//
// Precondition violations and in-flight rejections are local failures; no
// network call is made and the form state is untouched. Remote failures are
// surfaced verbatim with the form preserved for retry. Only a success writes
// a history entry and schedules the form reset.
func (e *SwapExecutor) Execute(ctx context.Context, params qdomain.SwapParameters, quote *qdomain.Quote, walletConnected bool) domain.SwapResult {
	if !e.busy.CompareAndSwap(false, true) {
		return e.failure(params, quote, apperror.New(apperror.CodeExecuteInFlight,
			apperror.WithContext("rejecting concurrent execution")))
	}
	defer e.busy.Store(false)

	if err := e.checkPreconditions(params, quote, walletConnected); err != nil {
		return e.failure(params, quote, err)
	}

	confirmation, err := e.service.ExecuteSwap(ctx, params)
	if err != nil {
		e.log.Warn(ctx, "swap execution failed",
			"from", params.FromSymbol,
			"to", params.ToSymbol,
			"error", err.Error())
		return e.failure(params, quote, err)
	}

	executedAt := time.Now()
	e.history.Push(domain.TradeHistoryEntry{
		ID:         uuid.NewString(),
		FromSymbol: quote.FromSymbol,
		ToSymbol:   quote.ToSymbol,
		FromAmount: quote.FromAmount,
		ToAmount:   quote.ToAmount,
		Rate:       quote.Rate,
		Protocol:   quote.Protocol,
		ExecutedAt: executedAt,
	})

	e.log.Info(ctx, "swap executed",
		"from", quote.FromSymbol,
		"to", quote.ToSymbol,
		"amount", quote.FromAmount.String())

	e.scheduleReset()
	e.executions.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", "success")))

	return domain.SwapResult{
		Outcome:      domain.OutcomeSuccess,
		FromSymbol:   quote.FromSymbol,
		ToSymbol:     quote.ToSymbol,
		FromAmount:   quote.FromAmount,
		ToAmount:     quote.ToAmount,
		ExecutedAt:   executedAt,
		Confirmation: confirmation,
	}
}

// checkPreconditions runs the local checks in fixed order, each with its own
// failure reason.
func (e *SwapExecutor) checkPreconditions(params qdomain.SwapParameters, quote *qdomain.Quote, walletConnected bool) error {
	if !params.HasAmount() {
		return apperror.New(apperror.CodeAmountMissing,
			apperror.WithContext("executing swap"))
	}
	if !walletConnected {
		return apperror.New(apperror.CodeWalletNotConnected,
			apperror.WithContext("executing swap"))
	}
	if quote == nil {
		return apperror.New(apperror.CodeQuoteNotReady,
			apperror.WithContext("executing swap"))
	}
	if params.SameTokens() {
		return apperror.New(apperror.CodeSameToken,
			apperror.WithContext("executing swap"))
	}
	return nil
}

func (e *SwapExecutor) scheduleReset() {
	if e.reset == nil {
		return
	}
	if e.cfg.DisplayHold <= 0 {
		e.reset()
		return
	}
	time.AfterFunc(e.cfg.DisplayHold, e.reset)
}

func (e *SwapExecutor) failure(params qdomain.SwapParameters, quote *qdomain.Quote, err error) domain.SwapResult {
	e.executions.Add(context.Background(), 1,
		metric.WithAttributes(attribute.String("outcome", "failure")))

	result := domain.SwapResult{
		Outcome:       domain.OutcomeFailure,
		FromSymbol:    params.FromSymbol,
		ToSymbol:      params.ToSymbol,
		ExecutedAt:    time.Now(),
		FailureReason: failureReason(err),
	}
	if quote != nil {
		result.FromAmount = quote.FromAmount
		result.ToAmount = quote.ToAmount
	}
	return result
}

// failureReason extracts the user-facing wording of an error.
func failureReason(err error) string {
	var appErr *apperror.AppError
	if errors.As(err, &appErr) {
		return appErr.Message
	}
	return err.Error()
}
