// Package format renders decimals for display using magnitude tiers.
// Rendered strings are for the screen only and never fed back into math,
// except where a caller deliberately reseeds input from what was shown.
package format

import (
	"fmt"
	"strings"

	"github.com/leekchan/accounting"
	"github.com/shopspring/decimal"

	"github.com/rovshanmuradov/token-swap/internal/numeric"
)

// NoUSDValue is shown when a side has no computable USD value.
const NoUSDValue = "$0.00"

var (
	one      = decimal.NewFromInt(1)
	oneCent  = decimal.RequireFromString("0.01")
	minPlace = int32(2)
)

// Formatter renders amounts and USD prices.
type Formatter struct {
	engine *numeric.Engine
}

// New returns a Formatter using engine for parsing and rounding.
func New(engine *numeric.Engine) *Formatter {
	return &Formatter{engine: engine}
}

// AmountPlaces returns the display places for a token amount:
// 6 from 1 upwards, 8 from 0.01, 12 below.
func AmountPlaces(d decimal.Decimal) int32 {
	return tier(d, 6, 8, 12)
}

// PricePlaces returns the display places for a USD price:
// 2 from 1 upwards, 4 from 0.01, 8 below.
func PricePlaces(d decimal.Decimal) int32 {
	return tier(d, minPlace, 4, 8)
}

func tier(d decimal.Decimal, large, medium, small int32) int32 {
	abs := d.Abs()
	switch {
	case abs.GreaterThanOrEqual(one):
		return large
	case abs.GreaterThanOrEqual(oneCent):
		return medium
	default:
		return small
	}
}

// Amount formats a numeric string as a token amount. Empty or invalid
// input renders as "".
func (f *Formatter) Amount(value string) string {
	if value == "" {
		return ""
	}
	d, err := f.engine.Parse(value)
	if err != nil {
		return ""
	}
	return f.AmountDecimal(d)
}

// AmountDecimal formats d as a token amount.
func (f *Formatter) AmountDecimal(d decimal.Decimal) string {
	return f.render(d, AmountPlaces(d))
}

// Price formats a numeric string as a USD price. Empty or invalid input
// renders as "0".
func (f *Formatter) Price(value string) string {
	if value == "" {
		return "0"
	}
	d, err := f.engine.Parse(value)
	if err != nil {
		return "0"
	}
	return f.PriceDecimal(d)
}

// PriceDecimal formats d as a USD price.
func (f *Formatter) PriceDecimal(d decimal.Decimal) string {
	return f.render(d, PricePlaces(d))
}

// USD renders d as a dollar value with thousands grouping, e.g. "$1,645.93".
func (f *Formatter) USD(d decimal.Decimal) string {
	if v, ok := f.engine.BigInt(d); ok {
		return "$" + v.String()
	}
	places := PricePlaces(d)
	rounded := f.engine.Round(d, places)
	grouped := accounting.FormatNumberDecimal(rounded, int(places), ",", ".")
	return "$" + TrimZeros(grouped)
}

// Rate renders the "1 FROM = x TO" line.
func (f *Formatter) Rate(fromSymbol, toSymbol string, rate decimal.Decimal) string {
	return fmt.Sprintf("1 %s = %s %s", fromSymbol, f.AmountDecimal(rate), toSymbol)
}

func (f *Formatter) render(d decimal.Decimal, places int32) string {
	if v, ok := f.engine.BigInt(d); ok {
		return v.String()
	}
	return TrimZeros(f.engine.Fixed(d, places))
}

// TrimZeros strips trailing fractional zeros and a bare trailing separator.
// Strings without a separator are returned unchanged.
func TrimZeros(s string) string {
	if !strings.Contains(s, ".") {
		return s
	}
	s = strings.TrimRight(s, "0")
	return strings.TrimSuffix(s, ".")
}

// StripGrouping removes thousands separators from a displayed amount.
func StripGrouping(s string) string {
	return strings.ReplaceAll(s, ",", "")
}
