// Package domain defines the advisory message model. Advisories are derived
// from the current quote and parameters, never persisted.
package domain

import "github.com/shopspring/decimal"

// Kind classifies an advisory.
type Kind string

const (
	KindSavings Kind = "savings"
	KindSafety  Kind = "safety"
	KindTiming  Kind = "timing"
	KindRoute   Kind = "route"
)

// Impact is the advisory's direction for the user.
type Impact string

const (
	ImpactPositive Impact = "positive"
	ImpactNeutral  Impact = "neutral"
	ImpactNegative Impact = "negative"
)

// Advisory is one derived recommendation shown alongside a quote.
type Advisory struct {
	Kind       Kind
	Impact     Impact
	Title      string
	Body       string
	SavingsUSD decimal.Decimal // set only for savings advisories
}
