// Package token holds priced tokens, the immutable catalog built from the
// price feed, and the rules for picking a default trading pair.
package token

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Token is a priced tradable unit. Values handed out by a Catalog are
// shared and must be treated as read-only.
type Token struct {
	Symbol   string
	Price    decimal.Decimal
	USDPrice decimal.Decimal
	IconURL  string
	// Date is the quote time used to keep the freshest feed entry.
	Date time.Time
}

// IconURL derives the icon location for symbol.
func IconURL(base, symbol string) string {
	return base + symbol + ".svg"
}

// Catalog is an ordered snapshot of tokens, unique by symbol, all with a
// positive price. A new load produces a new Catalog.
type Catalog struct {
	tokens []*Token
	index  map[string]int
}

// NewCatalog builds a catalog keeping the given order. Tokens with a
// non-positive price are excluded; for duplicate symbols the first wins.
func NewCatalog(tokens ...Token) Catalog {
	c := Catalog{
		tokens: make([]*Token, 0, len(tokens)),
		index:  make(map[string]int, len(tokens)),
	}
	for _, t := range tokens {
		if !t.Price.IsPositive() {
			continue
		}
		if _, dup := c.index[t.Symbol]; dup {
			continue
		}
		tok := t
		c.index[tok.Symbol] = len(c.tokens)
		c.tokens = append(c.tokens, &tok)
	}
	return c
}

// Len returns the number of tokens.
func (c Catalog) Len() int {
	return len(c.tokens)
}

// At returns the i-th token or nil when out of range.
func (c Catalog) At(i int) *Token {
	if i < 0 || i >= len(c.tokens) {
		return nil
	}
	return c.tokens[i]
}

// Find looks a token up by symbol.
func (c Catalog) Find(symbol string) (*Token, bool) {
	i, ok := c.index[symbol]
	if !ok {
		return nil, false
	}
	return c.tokens[i], true
}

// Tokens returns the tokens in catalog order. The slice is a copy.
func (c Catalog) Tokens() []*Token {
	out := make([]*Token, len(c.tokens))
	copy(out, c.tokens)
	return out
}

// Symbols returns the symbols in catalog order.
func (c Catalog) Symbols() []string {
	out := make([]string, len(c.tokens))
	for i, t := range c.tokens {
		out[i] = t.Symbol
	}
	return out
}

// Filter returns tokens whose symbol contains query, case-insensitively.
// An empty query returns every token.
func (c Catalog) Filter(query string) []*Token {
	if query == "" {
		return c.Tokens()
	}
	q := strings.ToLower(query)
	var out []*Token
	for _, t := range c.tokens {
		if strings.Contains(strings.ToLower(t.Symbol), q) {
			out = append(out, t)
		}
	}
	return out
}
