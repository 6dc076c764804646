package format

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/rovshanmuradov/token-swap/internal/numeric"
)

func TestAmount(t *testing.T) {
	f := New(numeric.Default())

	tests := []struct {
		in   string
		want string
	}{
		{"", ""},
		{"abc", ""},
		{"1.5", "1.5"},
		{"1", "1"},
		{"100", "100"},
		{"0", "0"},
		{"1662.837734080126728576162419481286", "1662.837734"},
		{"1662.8377345", "1662.837735"},
		{"0.123456789", "0.12345679"},
		{"0.01", "0.01"},
		{"0.000601381589739539348574969774", "0.00060138159"},
		{"0.0000000000001", "0"},
		{"-2.5", "-2.5"},
		{"9007199254740993", "9007199254740993"},
		{"123456789012345678901234567890", "123456789012345678901234567890"},
		{"9007199254740993.25", "9007199254740993.25"},
		{"1.5e+21", "1500000000000000000000"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, f.Amount(tt.in), "Amount(%q)", tt.in)
	}
}

func TestPrice(t *testing.T) {
	f := New(numeric.Default())

	tests := []struct {
		in   string
		want string
	}{
		{"", "0"},
		{"nope", "0"},
		{"1645.93", "1645.93"},
		{"1645.935", "1645.94"},
		{"1.10", "1.1"},
		{"0.989832", "0.9898"},
		{"0.0123456", "0.0123"},
		{"0.00001234567", "0.00001235"},
		{"12345678901234567890", "12345678901234567890"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, f.Price(tt.in), "Price(%q)", tt.in)
	}
}

func TestNoTrailingSeparatorOrZeros(t *testing.T) {
	f := New(numeric.Default())
	for _, in := range []string{"1.000000", "10.0", "0.10000000", "0.050", "3.1400"} {
		for _, out := range []string{f.Amount(in), f.Price(in)} {
			assert.NotRegexp(t, `\.$`, out)
			assert.NotRegexp(t, `\.\d*0$`, out)
		}
	}
}

func TestUSD(t *testing.T) {
	f := New(numeric.Default())

	assert.Equal(t, "$1,645.93", f.USD(decimal.RequireFromString("1645.93")))
	assert.Equal(t, "$1,234,567.5", f.USD(decimal.RequireFromString("1234567.499")))
	assert.Equal(t, "$0.9898", f.USD(decimal.RequireFromString("0.989832")))
	assert.Equal(t, "$0", f.USD(decimal.Zero))
}

func TestRate(t *testing.T) {
	f := New(numeric.Default())
	rate := decimal.RequireFromString("1662.837734080126728576162419481286")
	assert.Equal(t, "1 ETH = 1662.837734 USDC", f.Rate("ETH", "USDC", rate))
}

func TestTrimZerosAndGrouping(t *testing.T) {
	assert.Equal(t, "100", TrimZeros("100"))
	assert.Equal(t, "100", TrimZeros("100.000"))
	assert.Equal(t, "1.05", TrimZeros("1.0500"))
	assert.Equal(t, "1662.7", StripGrouping("1,662.7"))
}

func TestPlaces(t *testing.T) {
	assert.Equal(t, int32(6), AmountPlaces(decimal.NewFromInt(1)))
	assert.Equal(t, int32(8), AmountPlaces(decimal.RequireFromString("0.01")))
	assert.Equal(t, int32(12), AmountPlaces(decimal.RequireFromString("0.00999")))
	assert.Equal(t, int32(6), AmountPlaces(decimal.NewFromInt(-3)))

	assert.Equal(t, int32(2), PricePlaces(decimal.NewFromInt(5)))
	assert.Equal(t, int32(4), PricePlaces(decimal.RequireFromString("0.5")))
	assert.Equal(t, int32(8), PricePlaces(decimal.RequireFromString("0.001")))
}
