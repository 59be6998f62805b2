// Package tradesvc implements the QuoteClient and SwapService ports against
// the remote trading service's REST API.
package tradesvc

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/mevshield/swapdesk/business/quoting/app"
	"github.com/mevshield/swapdesk/internal/apperror"
)

// quoteRequest is the body of POST /v1/swap/quote.
type quoteRequest struct {
	FromToken   string `json:"fromToken"`
	ToToken     string `json:"toToken"`
	Amount      string `json:"amount"`
	SlippageBps int64  `json:"slippageBps"`
	ChainID     uint64 `json:"chainId"`
}

// executeRequest is the body of POST /v1/swap/execute.
type executeRequest struct {
	FromToken     string `json:"fromToken"`
	ToToken       string `json:"toToken"`
	Amount        string `json:"amount"`
	SlippageBps   int64  `json:"slippageBps"`
	ChainID       uint64 `json:"chainId"`
	Recipient     string `json:"recipient,omitempty"`
	MEVProtection bool   `json:"mevProtection"`
}

type quoteResponse struct {
	Success bool       `json:"success"`
	Error   string     `json:"error,omitempty"`
	Data    *quoteData `json:"data,omitempty"`
}

// quoteData mirrors the service's loosely typed quote payload. The service
// emits amounts either as JSON numbers or as numeric strings, and uses
// toAmount or estimatedAmount interchangeably.
type quoteData struct {
	ToAmount        flexNumber `json:"toAmount"`
	EstimatedAmount flexNumber `json:"estimatedAmount"`
	PriceImpact     flexNumber `json:"priceImpact"`
	NetworkFee      flexNumber `json:"networkFee"`
	GasSavings      flexNumber `json:"gasSavings"`
	Protocol        string     `json:"protocol"`
}

type executeResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}

// flexNumber decodes a JSON number or a numeric string into a decimal.
// Absent and null fields leave set false.
type flexNumber struct {
	val decimal.Decimal
	set bool
}

func (f *flexNumber) UnmarshalJSON(b []byte) error {
	if bytes.Equal(b, []byte("null")) {
		return nil
	}

	s := string(b)
	if len(s) >= 2 && s[0] == '"' {
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
	}
	if s == "" {
		return nil
	}

	d, err := decimal.NewFromString(s)
	if err != nil {
		return fmt.Errorf("tradesvc: invalid numeric value %q", s)
	}

	f.val = d
	f.set = true
	return nil
}

// normalizeQuote is the single validation step between the wire payload and
// the typed quote. Malformed payloads are rejected, never coerced.
func normalizeQuote(data *quoteData) (app.RemoteQuote, error) {
	if data == nil {
		return app.RemoteQuote{}, apperror.New(apperror.CodeMalformedQuote,
			apperror.WithContext("quote response has no data"))
	}

	amount := data.ToAmount
	if !amount.set {
		amount = data.EstimatedAmount
	}
	if !amount.set || !amount.val.IsPositive() {
		return app.RemoteQuote{}, apperror.New(apperror.CodeMalformedQuote,
			apperror.WithContext("quote response carries no usable receive amount"))
	}

	remote := app.RemoteQuote{
		ToAmount: amount.val,
		Protocol: data.Protocol,
	}

	if data.PriceImpact.set {
		if data.PriceImpact.val.IsNegative() {
			return app.RemoteQuote{}, apperror.New(apperror.CodeMalformedQuote,
				apperror.WithContext("negative price impact in quote response"))
		}
		impact := data.PriceImpact.val
		remote.PriceImpactPct = &impact
	}

	if data.NetworkFee.set {
		if data.NetworkFee.val.IsNegative() {
			return app.RemoteQuote{}, apperror.New(apperror.CodeMalformedQuote,
				apperror.WithContext("negative network fee in quote response"))
		}
		fee := data.NetworkFee.val
		remote.NetworkFeeUSD = &fee
	}

	if data.GasSavings.set && data.GasSavings.val.IsPositive() {
		remote.GasSavingsUSD = data.GasSavings.val
	}

	return remote, nil
}

// serviceError is an error body from the trading service.
type serviceError struct {
	Code    int    `json:"code"`
	Message string `json:"error"`
}

func (e *serviceError) Error() string {
	return fmt.Sprintf("trading service error %d: %s", e.Code, e.Message)
}

// tradesvcErrorHandler parses error bodies on non-2xx responses.
func tradesvcErrorHandler(statusCode int, body []byte) error {
	if statusCode >= 400 {
		var apiErr serviceError
		if err := json.Unmarshal(body, &apiErr); err == nil && apiErr.Message != "" {
			apiErr.Code = statusCode
			return &apiErr
		}
		return fmt.Errorf("HTTP %d: %s", statusCode, string(body))
	}
	return nil
}
