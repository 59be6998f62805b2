// Package domain defines swap execution outcomes and the bounded trade
// history log.
package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Outcome is the result of one execution attempt.
type Outcome string

const (
	OutcomeSuccess Outcome = "success"
	OutcomeFailure Outcome = "failure"
)

// SwapResult reports one execution attempt to the caller. FailureReason is
// set exactly when Outcome is OutcomeFailure.
type SwapResult struct {
	Outcome       Outcome
	FromSymbol    string
	ToSymbol      string
	FromAmount    decimal.Decimal
	ToAmount      decimal.Decimal
	ExecutedAt    time.Time
	Confirmation  string // service confirmation message on success
	FailureReason string
}

// Succeeded reports whether the attempt went through.
func (r SwapResult) Succeeded() bool {
	return r.Outcome == OutcomeSuccess
}
