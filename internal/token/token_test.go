package token

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testIconBase = "https://icons.test/"

func tok(symbol, price string) Token {
	p := decimal.RequireFromString(price)
	return Token{Symbol: symbol, Price: p, USDPrice: p, IconURL: IconURL(testIconBase, symbol)}
}

func TestNewCatalogExcludesInvalid(t *testing.T) {
	c := NewCatalog(tok("ETH", "1645.93"), tok("ZERO", "0"), tok("NEG", "-1"), tok("ETH", "1"), tok("ATOM", "7.1"))

	assert.Equal(t, []string{"ETH", "ATOM"}, c.Symbols())
	eth, ok := c.Find("ETH")
	require.True(t, ok)
	assert.Equal(t, "1645.93", eth.Price.String(), "first duplicate wins")

	_, ok = c.Find("ZERO")
	assert.False(t, ok)
	assert.Nil(t, c.At(5))
	assert.Nil(t, c.At(-1))
}

func TestCatalogTokensIsCopy(t *testing.T) {
	c := NewCatalog(tok("ETH", "1"), tok("USDC", "1"))
	tokens := c.Tokens()
	tokens[0] = nil
	assert.NotNil(t, c.At(0))
}

func TestCatalogFilter(t *testing.T) {
	c := FallbackCatalog(testIconBase)

	assert.Len(t, c.Filter(""), 5)

	got := c.Filter("us")
	var symbols []string
	for _, t := range got {
		symbols = append(symbols, t.Symbol)
	}
	assert.Equal(t, []string{"USDC", "USD"}, symbols)

	assert.Empty(t, c.Filter("doge"))
}

func TestSelectDefaultPair(t *testing.T) {
	prefs := DefaultPreferences()

	tests := []struct {
		name     string
		catalog  Catalog
		wantFrom string
		wantTo   string
	}{
		{"preferred pair", FallbackCatalog(testIconBase), "ETH", "USDC"},
		{"second preferences", NewCatalog(tok("ATOM", "7"), tok("BLUR", "0.2"), tok("USD", "1")), "ATOM", "USD"},
		{"first token and first other", NewCatalog(tok("BLUR", "0.2"), tok("SWTH", "0.004")), "BLUR", "SWTH"},
		{"single token", NewCatalog(tok("BLUR", "0.2")), "BLUR", ""},
		{"empty", NewCatalog(), "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			from, to := SelectDefaultPair(tt.catalog, prefs)
			if tt.wantFrom == "" {
				assert.Nil(t, from)
			} else {
				require.NotNil(t, from)
				assert.Equal(t, tt.wantFrom, from.Symbol)
			}
			if tt.wantTo == "" {
				assert.Nil(t, to)
			} else {
				require.NotNil(t, to)
				assert.Equal(t, tt.wantTo, to.Symbol)
			}
		})
	}
}

func TestSampleAmount(t *testing.T) {
	table := DefaultSampleAmounts()
	eth := tok("ETH", "1")
	atom := tok("ATOM", "7")
	usdc := tok("USDC", "1")
	blur := tok("BLUR", "0.2")

	assert.Equal(t, "1", SampleAmount(&eth, table))
	assert.Equal(t, "10", SampleAmount(&atom, table))
	assert.Equal(t, "100", SampleAmount(&usdc, table))
	assert.Equal(t, "1", SampleAmount(&blur, table))
	assert.Equal(t, "1", SampleAmount(nil, table))
	assert.Equal(t, "1", SampleAmount(&atom, nil))
}

func TestFallbackCatalog(t *testing.T) {
	c := FallbackCatalog(testIconBase)
	assert.Equal(t, []string{"ETH", "USDC", "USD", "ATOM", "BLUR"}, c.Symbols())

	usdc, ok := c.Find("USDC")
	require.True(t, ok)
	assert.Equal(t, "0.989832", usdc.Price.String())
	assert.True(t, usdc.Price.Equal(usdc.USDPrice))
	assert.Equal(t, "https://icons.test/USDC.svg", usdc.IconURL)
}
