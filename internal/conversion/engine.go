// Package conversion holds the swap form state and derives the converted
// amount and exchange rate from it.
package conversion

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/rovshanmuradov/token-swap/internal/format"
	"github.com/rovshanmuradov/token-swap/internal/input"
	"github.com/rovshanmuradov/token-swap/internal/numeric"
	"github.com/rovshanmuradov/token-swap/internal/token"
)

// ErrMissingSelection means a side has no token yet. It is a normal
// intermediate state and is only reported by Validate.
var ErrMissingSelection = errors.New("select tokens to continue")

// Side names one half of the swap form.
type Side int

const (
	From Side = iota
	To
)

func (s Side) String() string {
	switch s {
	case From:
		return "from"
	case To:
		return "to"
	default:
		return fmt.Sprintf("side(%d)", int(s))
	}
}

// Opposite returns the other side.
func (s Side) Opposite() Side {
	if s == From {
		return To
	}
	return From
}

// State is a snapshot of the form. ToAmountText and ExchangeRate are
// derived from the other three fields and are never set directly.
type State struct {
	FromToken      *token.Token
	ToToken        *token.Token
	FromAmountText string
	// ToAmountText is the unrounded product; format it for display.
	ToAmountText string
	ExchangeRate decimal.Decimal
	HasRate      bool
}

// Engine owns a single swap form. It is not safe for concurrent use;
// callers serialize access (see session.Driver).
type Engine struct {
	num       *numeric.Engine
	formatter *format.Formatter

	state   State
	fromErr error
	toErr   error
}

// New creates an Engine with every field unset.
func New(num *numeric.Engine, formatter *format.Formatter) *Engine {
	return &Engine{num: num, formatter: formatter}
}

// State returns a copy of the current form.
func (e *Engine) State() State {
	return e.state
}

// ValidationError returns the pending error for side, or nil.
func (e *Engine) ValidationError(side Side) error {
	if side == From {
		return e.fromErr
	}
	return e.toErr
}

// SelectToken sets the token for side. A nil token unsets it.
func (e *Engine) SelectToken(side Side, t *token.Token) {
	if side == From {
		e.state.FromToken = t
	} else {
		e.state.ToToken = t
	}
	e.Recompute()
}

// SetAmount sanitizes raw and stores it as the source amount. Invalid
// non-empty text stays in place so editing can continue, but it raises
// a validation error on the from side and suppresses the output.
func (e *Engine) SetAmount(raw string) {
	e.state.FromAmountText = input.Sanitize(raw)
	e.Recompute()
}

// SetSampleAmount seeds the amount for the current source token from
// table. Without a source token it does nothing.
func (e *Engine) SetSampleAmount(table map[string]string) {
	if e.state.FromToken == nil {
		return
	}
	e.SetAmount(token.SampleAmount(e.state.FromToken, table))
}

// Recompute derives ToAmountText and ExchangeRate. It is the only path
// that writes them.
func (e *Engine) Recompute() {
	e.fromErr = nil
	e.toErr = nil
	e.state.ToAmountText = ""
	e.state.ExchangeRate = decimal.Zero
	e.state.HasRate = false

	text := e.state.FromAmountText
	var amount decimal.Decimal
	if text != "" {
		if err := input.ValidateAmount(e.num, text); err != nil {
			e.fromErr = err
			return
		}
		amount = e.num.ParseOrZero(text)
	}

	from, to := e.state.FromToken, e.state.ToToken
	if from == nil || to == nil || text == "" {
		return
	}

	rate, err := e.num.Div(from.Price, to.Price)
	if err != nil {
		// Catalog tokens always have a positive price.
		e.toErr = err
		return
	}
	e.state.ExchangeRate = rate
	e.state.HasRate = true
	e.state.ToAmountText = e.num.String(e.num.Mul(amount, rate))
}

// Rate returns the exchange rate, if one is set.
func (e *Engine) Rate() (decimal.Decimal, bool) {
	return e.state.ExchangeRate, e.state.HasRate
}

// USDValue returns amount * usdPrice for side, or zero when either is
// missing or invalid.
func (e *Engine) USDValue(side Side) decimal.Decimal {
	t, text := e.state.FromToken, e.state.FromAmountText
	if side == To {
		t, text = e.state.ToToken, e.state.ToAmountText
	}
	if t == nil || !input.IsValidAmount(e.num, text) {
		return decimal.Zero
	}
	return e.num.Mul(e.num.ParseOrZero(text), t.USDPrice)
}

// DisplayedOutput is the output amount as shown on screen.
func (e *Engine) DisplayedOutput() string {
	return e.formatter.Amount(e.state.ToAmountText)
}

// Swap flips the pair. When both amounts are present the new source
// amount is the previously displayed output, so the user keeps editing
// the digits that were on screen. Precision past the display tier is
// dropped. Swap does nothing unless both tokens are selected.
func (e *Engine) Swap() {
	if e.state.FromToken == nil || e.state.ToToken == nil {
		return
	}
	shown := e.DisplayedOutput()
	e.state.FromToken, e.state.ToToken = e.state.ToToken, e.state.FromToken
	if e.state.FromAmountText != "" && shown != "" {
		e.state.FromAmountText = format.StripGrouping(shown)
	}
	e.Recompute()
}

// Reset clears both amounts and keeps the pair.
func (e *Engine) Reset() {
	e.state.FromAmountText = ""
	e.Recompute()
}

// Validate reports why the form cannot be confirmed, or nil.
func (e *Engine) Validate() error {
	if e.state.FromToken == nil || e.state.ToToken == nil {
		return ErrMissingSelection
	}
	if err := input.ValidateAmount(e.num, e.state.FromAmountText); err != nil {
		return err
	}
	if !e.num.ParseOrZero(e.state.FromAmountText).IsPositive() {
		return fmt.Errorf("%w: amount must be greater than 0", input.ErrValidationFailed)
	}
	return nil
}

// CanConfirm reports whether both tokens are set and the amount is a
// valid number greater than zero.
func (e *Engine) CanConfirm() bool {
	return e.Validate() == nil
}
