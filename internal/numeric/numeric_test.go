package numeric

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigValidate(t *testing.T) {
	assert.NoError(t, DefaultConfig().Validate())

	cfg := DefaultConfig()
	cfg.DecimalPlaces = 10
	assert.Error(t, cfg.Validate(), "fewer than 30 places must be rejected")

	cfg = DefaultConfig()
	cfg.Rounding = RoundingMode(42)
	assert.Error(t, cfg.Validate())

	_, err := New(cfg)
	assert.Error(t, err)
}

func TestParse(t *testing.T) {
	e := Default()

	d, err := e.Parse("1645.93")
	require.NoError(t, err)
	assert.True(t, d.Equal(decimal.RequireFromString("1645.93")))

	for _, bad := range []string{"", "   ", "abc", "1.2.3", "NaN", "Infinity", "-Infinity", "."} {
		_, err := e.Parse(bad)
		assert.ErrorIs(t, err, ErrInvalidNumber, "input %q", bad)
	}

	assert.True(t, e.ParseOrZero("garbage").IsZero())
}

func TestDivUsesConfiguredPlaces(t *testing.T) {
	e := Default()

	rate, err := e.Div(decimal.RequireFromString("1645.93"), decimal.RequireFromString("0.989832"))
	require.NoError(t, err)
	assert.Equal(t, "1662.837734080126728576162419481286", rate.String())

	third, err := e.Div(decimal.NewFromInt(2), decimal.NewFromInt(3))
	require.NoError(t, err)
	assert.Equal(t, "0.666666666666666666666666666667", third.String(), "half-up on the last place")

	_, err = e.Div(decimal.NewFromInt(1), decimal.Zero)
	assert.ErrorIs(t, err, ErrDivisionByZero)
}

func TestDivRoundDown(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Rounding = RoundDown
	e, err := New(cfg)
	require.NoError(t, err)

	third, err := e.Div(decimal.NewFromInt(2), decimal.NewFromInt(3))
	require.NoError(t, err)
	assert.Equal(t, "0.666666666666666666666666666666", third.String())
	assert.Equal(t, "1.99", e.Fixed(decimal.RequireFromString("1.999"), 2))
}

func TestFixed(t *testing.T) {
	e := Default()
	assert.Equal(t, "1.500000", e.Fixed(decimal.RequireFromString("1.5"), 6))
	assert.Equal(t, "0.13", e.Fixed(decimal.RequireFromString("0.125"), 2))
	assert.Equal(t, "-0.13", e.Fixed(decimal.RequireFromString("-0.125"), 2))
}

func TestBigInt(t *testing.T) {
	e := Default()

	_, ok := e.BigInt(decimal.RequireFromString("9007199254740991"))
	assert.False(t, ok, "max safe integer itself stays decimal")

	v, ok := e.BigInt(decimal.RequireFromString("9007199254740993"))
	require.True(t, ok)
	assert.Equal(t, "9007199254740993", v.String())

	v, ok = e.BigInt(decimal.RequireFromString("-123456789012345678901234567890"))
	require.True(t, ok)
	assert.Equal(t, "-123456789012345678901234567890", v.String())

	_, ok = e.BigInt(decimal.RequireFromString("9007199254740993.5"))
	assert.False(t, ok)
}

func TestString(t *testing.T) {
	e := Default()

	tests := []struct {
		in   string
		want string
	}{
		{"0", "0"},
		{"1662.837734080126728576162419481286", "1662.837734080126728576162419481286"},
		{"1.5000", "1.5"},
		{"100000000000000000000", "100000000000000000000"},
		{"1500000000000000000000", "1.5e+21"},
		{"0.00000000000000001", "0.00000000000000001"},
		{"0.000000000000000001", "1e-18"},
		{"0.0000000000000000001", "1e-19"},
		{"-0.00000000000000000025", "-2.5e-19"},
	}
	for _, tt := range tests {
		got := e.String(decimal.RequireFromString(tt.in))
		assert.Equal(t, tt.want, got, "String(%s)", tt.in)

		back, err := e.Parse(got)
		require.NoError(t, err)
		assert.True(t, back.Equal(decimal.RequireFromString(tt.in)), "round trip of %s", tt.in)
	}
}

func TestParseRoundingMode(t *testing.T) {
	m, err := ParseRoundingMode("HALF_UP")
	require.NoError(t, err)
	assert.Equal(t, RoundHalfUp, m)

	m, err = ParseRoundingMode("down")
	require.NoError(t, err)
	assert.Equal(t, RoundDown, m)

	_, err = ParseRoundingMode("banker")
	assert.Error(t, err)
}
