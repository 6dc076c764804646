package token

import "github.com/shopspring/decimal"

// Default feed and icon locations.
const (
	DefaultPricesURL   = "https://interview.switcheo.com/prices.json"
	DefaultIconBaseURL = "https://raw.githubusercontent.com/Switcheo/token-icons/main/tokens/"
)

// Preferences are ordered symbol lists tried when picking a default pair.
type Preferences struct {
	From []string
	To   []string
}

// DefaultPreferences returns ETH/ATOM as source and USDC/USD as destination.
func DefaultPreferences() Preferences {
	return Preferences{
		From: []string{"ETH", "ATOM"},
		To:   []string{"USDC", "USD"},
	}
}

// DefaultSampleAmount is used for symbols missing from the sample table.
const DefaultSampleAmount = "1"

// DefaultSampleAmounts maps symbols onto a reasonable starting amount.
func DefaultSampleAmounts() map[string]string {
	return map[string]string{
		"ETH":  "1",
		"ATOM": "10",
		"USDC": "100",
	}
}

// FallbackCatalog is served when the live feed cannot be used.
func FallbackCatalog(iconBase string) Catalog {
	mk := func(symbol, price string) Token {
		p := decimal.RequireFromString(price)
		return Token{
			Symbol:   symbol,
			Price:    p,
			USDPrice: p,
			IconURL:  IconURL(iconBase, symbol),
		}
	}
	return NewCatalog(
		mk("ETH", "1645.93"),
		mk("USDC", "0.989832"),
		mk("USD", "1"),
		mk("ATOM", "7.186657"),
		mk("BLUR", "0.208115"),
	)
}

// SelectDefaultPair picks the source from prefs.From (else the first token)
// and the destination from prefs.To (else the first token with a different
// symbol, else the second token). Unresolved sides are nil.
func SelectDefaultPair(c Catalog, prefs Preferences) (from, to *Token) {
	from = firstPreferred(c, prefs.From)
	if from == nil {
		from = c.At(0)
	}

	to = firstPreferred(c, prefs.To)
	if to == nil && from != nil {
		for _, t := range c.tokens {
			if t.Symbol != from.Symbol {
				to = t
				break
			}
		}
	}
	if to == nil {
		to = c.At(1)
	}
	return from, to
}

func firstPreferred(c Catalog, symbols []string) *Token {
	for _, s := range symbols {
		if t, ok := c.Find(s); ok {
			return t
		}
	}
	return nil
}

// SampleAmount returns the starting amount for t from table, or
// DefaultSampleAmount when t is nil or unmapped.
func SampleAmount(t *Token, table map[string]string) string {
	if t == nil {
		return DefaultSampleAmount
	}
	if amount, ok := table[t.Symbol]; ok && amount != "" {
		return amount
	}
	return DefaultSampleAmount
}
