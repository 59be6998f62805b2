// Package token holds the wallet token model shared across contexts.
package token

import (
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"
)

// Token is a fungible asset held in the wallet, enriched with the latest
// known market data.
type Token struct {
	Symbol         string
	Name           string
	ChainID        uint64
	Address        *common.Address // nil for the chain's native coin
	Decimals       int
	Balance        decimal.Decimal
	PriceUSD       decimal.Decimal
	PriceChange24h decimal.Decimal // percent, signed
}

// IsNative reports whether the token is the chain's native coin.
func (t Token) IsNative() bool {
	return t.Address == nil
}

// ValueUSD returns the USD value of the wallet balance.
func (t Token) ValueUSD() decimal.Decimal {
	return t.Balance.Mul(t.PriceUSD)
}

// ID returns a stable identifier of the form "chainID:symbol".
func (t Token) ID() string {
	return fmt.Sprintf("%d:%s", t.ChainID, t.Symbol)
}

func (t Token) String() string {
	return fmt.Sprintf("%s (%s) balance=%s price=%s",
		t.Symbol, t.Name, t.Balance.String(), t.PriceUSD.String())
}

// NormalizeSymbol upper-cases and trims a user-supplied symbol.
func NormalizeSymbol(symbol string) string {
	return strings.ToUpper(strings.TrimSpace(symbol))
}
