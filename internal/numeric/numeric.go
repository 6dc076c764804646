// Package numeric wraps shopspring/decimal with an explicit, immutable
// configuration for precision, rounding and string rendering.
package numeric

import (
	"errors"
	"fmt"
	"math/big"
	"strings"

	"github.com/shopspring/decimal"
)

var (
	// ErrInvalidNumber is returned when text cannot be parsed as a finite decimal.
	ErrInvalidNumber = errors.New("invalid number")
	// ErrDivisionByZero is returned by Div when the divisor is zero.
	ErrDivisionByZero = errors.New("division by zero")
)

// MaxSafeInteger is the largest integer a float64 represents exactly (2^53-1).
var MaxSafeInteger = decimal.NewFromInt(1<<53 - 1)

// RoundingMode selects how results are rounded to a fixed number of places.
type RoundingMode int

const (
	// RoundHalfUp rounds half away from zero.
	RoundHalfUp RoundingMode = iota
	// RoundDown truncates toward zero.
	RoundDown
)

func (m RoundingMode) String() string {
	switch m {
	case RoundHalfUp:
		return "half_up"
	case RoundDown:
		return "down"
	default:
		return "unknown"
	}
}

// ParseRoundingMode maps a configuration string onto a RoundingMode.
func ParseRoundingMode(s string) (RoundingMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "half_up":
		return RoundHalfUp, nil
	case "down":
		return RoundDown, nil
	default:
		return 0, fmt.Errorf("unknown rounding mode %q", s)
	}
}

// Config is fixed once an Engine is built.
type Config struct {
	// DecimalPlaces is the number of fractional digits kept by division.
	DecimalPlaces int32
	Rounding      RoundingMode
	// String switches to exponential notation when the decimal exponent
	// is <= ExponentialAtNeg or > ExponentialAtPos.
	ExponentialAtNeg int32
	ExponentialAtPos int32
}

const minDecimalPlaces = 30

// DefaultConfig returns 30 places, half-up rounding and exponential
// notation outside [-18, 20].
func DefaultConfig() Config {
	return Config{
		DecimalPlaces:    minDecimalPlaces,
		Rounding:         RoundHalfUp,
		ExponentialAtNeg: -18,
		ExponentialAtPos: 20,
	}
}

// Validate checks the configuration invariants.
func (c Config) Validate() error {
	if c.DecimalPlaces < minDecimalPlaces {
		return fmt.Errorf("decimal places must be at least %d, got %d", minDecimalPlaces, c.DecimalPlaces)
	}
	if c.Rounding != RoundHalfUp && c.Rounding != RoundDown {
		return fmt.Errorf("unsupported rounding mode %d", c.Rounding)
	}
	if c.ExponentialAtNeg > 0 || c.ExponentialAtPos < 0 {
		return errors.New("exponential thresholds must straddle zero")
	}
	return nil
}

// Engine performs all decimal math for the conversion core.
// It holds no mutable state and is safe for concurrent use.
type Engine struct {
	cfg Config
}

// New builds an Engine for cfg.
func New(cfg Config) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("numeric config: %w", err)
	}
	return &Engine{cfg: cfg}, nil
}

// Default returns an Engine with DefaultConfig.
func Default() *Engine {
	return &Engine{cfg: DefaultConfig()}
}

// Config returns a copy of the engine configuration.
func (e *Engine) Config() Config {
	return e.cfg
}

// Parse converts s into a decimal. Empty, malformed and non-finite input
// (NaN, Infinity) fails with ErrInvalidNumber.
func (e *Engine) Parse(s string) (decimal.Decimal, error) {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return decimal.Zero, fmt.Errorf("%w: empty input", ErrInvalidNumber)
	}
	d, err := decimal.NewFromString(trimmed)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %q", ErrInvalidNumber, s)
	}
	return d, nil
}

// ParseOrZero is the display-safety variant of Parse. Never use it for validation.
func (e *Engine) ParseOrZero(s string) decimal.Decimal {
	d, err := e.Parse(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}

// Div returns a/b rounded to the configured number of decimal places.
func (e *Engine) Div(a, b decimal.Decimal) (decimal.Decimal, error) {
	if b.IsZero() {
		return decimal.Zero, ErrDivisionByZero
	}
	if e.cfg.Rounding == RoundDown {
		q, _ := a.QuoRem(b, e.cfg.DecimalPlaces)
		return q, nil
	}
	return a.DivRound(b, e.cfg.DecimalPlaces), nil
}

// Mul returns the exact product.
func (e *Engine) Mul(a, b decimal.Decimal) decimal.Decimal {
	return a.Mul(b)
}

// Round rounds d to places using the configured mode.
func (e *Engine) Round(d decimal.Decimal, places int32) decimal.Decimal {
	if e.cfg.Rounding == RoundDown {
		return d.Truncate(places)
	}
	return d.Round(places)
}

// Fixed renders d with exactly places fractional digits.
func (e *Engine) Fixed(d decimal.Decimal, places int32) string {
	return e.Round(d, places).StringFixed(places)
}

// BigInt returns d as an integer when d is an exact integer whose magnitude
// exceeds MaxSafeInteger. Smaller or fractional values report false.
func (e *Engine) BigInt(d decimal.Decimal) (*big.Int, bool) {
	if !d.IsInteger() || d.Abs().LessThanOrEqual(MaxSafeInteger) {
		return nil, false
	}
	return d.BigInt(), true
}

// String renders d without rounding. Values whose decimal exponent lies
// outside the configured thresholds use exponential notation ("1.5e+21").
func (e *Engine) String(d decimal.Decimal) string {
	if d.IsZero() {
		return "0"
	}
	digits, exp := significand(d)
	sciExp := int32(len(digits)-1) + exp
	if sciExp > e.cfg.ExponentialAtNeg && sciExp <= e.cfg.ExponentialAtPos {
		return d.String()
	}

	var b strings.Builder
	if d.Sign() < 0 {
		b.WriteByte('-')
	}
	b.WriteByte(digits[0])
	if len(digits) > 1 {
		b.WriteByte('.')
		b.WriteString(digits[1:])
	}
	b.WriteByte('e')
	if sciExp >= 0 {
		b.WriteByte('+')
	}
	fmt.Fprintf(&b, "%d", sciExp)
	return b.String()
}

// significand returns the coefficient digits of |d| with trailing zeros
// removed, and the matching base-10 exponent.
func significand(d decimal.Decimal) (string, int32) {
	digits := new(big.Int).Abs(d.Coefficient()).String()
	exp := d.Exponent()
	trimmed := strings.TrimRight(digits, "0")
	exp += int32(len(digits) - len(trimmed))
	return trimmed, exp
}
