package token

import (
	"sort"
	"sync"

	"github.com/shopspring/decimal"
)

// Registry is a thread-safe view of the wallet's tokens. The portfolio
// refresher replaces the whole set; the price stream patches prices in place.
type Registry struct {
	mu       sync.RWMutex
	bySymbol map[string]Token
	order    []string
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		bySymbol: make(map[string]Token),
	}
}

// Replace swaps the full token set. Listing order follows descending USD
// value so the UI shows the largest positions first.
func (r *Registry) Replace(tokens []Token) {
	bySymbol := make(map[string]Token, len(tokens))
	order := make([]string, 0, len(tokens))

	for _, t := range tokens {
		sym := NormalizeSymbol(t.Symbol)
		if sym == "" {
			continue
		}
		if _, dup := bySymbol[sym]; dup {
			continue
		}
		t.Symbol = sym
		bySymbol[sym] = t
		order = append(order, sym)
	}

	sort.SliceStable(order, func(i, j int) bool {
		return bySymbol[order[i]].ValueUSD().GreaterThan(bySymbol[order[j]].ValueUSD())
	})

	r.mu.Lock()
	r.bySymbol = bySymbol
	r.order = order
	r.mu.Unlock()
}

// Get retrieves a token by symbol.
func (r *Registry) Get(symbol string) (Token, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	t, ok := r.bySymbol[NormalizeSymbol(symbol)]
	return t, ok
}

// UpdatePrice patches the market data of one token. It is a no-op for
// unknown symbols and does not change the listing order.
func (r *Registry) UpdatePrice(symbol string, priceUSD, change24h decimal.Decimal) {
	sym := NormalizeSymbol(symbol)

	r.mu.Lock()
	defer r.mu.Unlock()

	t, ok := r.bySymbol[sym]
	if !ok {
		return
	}
	t.PriceUSD = priceUSD
	t.PriceChange24h = change24h
	r.bySymbol[sym] = t
}

// UpdateBalance patches the balance of one token.
func (r *Registry) UpdateBalance(symbol string, balance decimal.Decimal) {
	sym := NormalizeSymbol(symbol)

	r.mu.Lock()
	defer r.mu.Unlock()

	t, ok := r.bySymbol[sym]
	if !ok {
		return
	}
	t.Balance = balance
	r.bySymbol[sym] = t
}

// All returns the tokens in listing order.
func (r *Registry) All() []Token {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]Token, 0, len(r.order))
	for _, sym := range r.order {
		result = append(result, r.bySymbol[sym])
	}
	return result
}

// Count returns the number of tokens.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.bySymbol)
}
