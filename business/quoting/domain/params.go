// Package domain contains the swap quoting entities and the local pricing
// model used when the remote quote service is unavailable.
package domain

import (
	"github.com/shopspring/decimal"

	"github.com/mevshield/swapdesk/internal/apperror"
	"github.com/mevshield/swapdesk/internal/token"
)

// Slippage tolerance bounds, in basis points.
const (
	DefaultSlippageBps int64 = 50
	MaxSlippageBps     int64 = 10000
)

// SwapParameters is one snapshot of the swap form. The controller treats
// every mutation as a new snapshot; nothing here is shared state.
type SwapParameters struct {
	FromSymbol    string
	ToSymbol      string
	Amount        string // raw user input, decimal string
	SlippageBps   int64
	ChainID       uint64
	Recipient     string
	MEVProtection bool
}

// HasAmount reports whether the form carries a positive amount. Unparseable
// input counts as no amount; the quoting pipeline stays idle on it.
func (p SwapParameters) HasAmount() bool {
	amt, err := decimal.NewFromString(p.Amount)
	return err == nil && amt.IsPositive()
}

// AmountDecimal parses the entered amount.
func (p SwapParameters) AmountDecimal() (decimal.Decimal, error) {
	amt, err := decimal.NewFromString(p.Amount)
	if err != nil {
		return decimal.Zero, apperror.New(apperror.CodeAmountMissing,
			apperror.WithContext("parsing swap amount"),
			apperror.WithCause(err))
	}
	if !amt.IsPositive() {
		return decimal.Zero, apperror.New(apperror.CodeAmountMissing,
			apperror.WithContext("swap amount must be positive"))
	}
	return amt, nil
}

// SameTokens reports whether both sides of the form point at the same token.
func (p SwapParameters) SameTokens() bool {
	return token.NormalizeSymbol(p.FromSymbol) == token.NormalizeSymbol(p.ToSymbol)
}

// Validate checks the snapshot is quotable. Each violation maps to its own
// error code so callers can show a precise hint.
func (p SwapParameters) Validate() error {
	if p.SameTokens() {
		return apperror.New(apperror.CodeSameToken,
			apperror.WithContext("validating swap parameters"))
	}

	if _, err := p.AmountDecimal(); err != nil {
		return err
	}

	if p.SlippageBps <= 0 || p.SlippageBps >= MaxSlippageBps {
		return apperror.New(apperror.CodeInvalidSlippage,
			apperror.WithContext("validating swap parameters"))
	}

	return nil
}
