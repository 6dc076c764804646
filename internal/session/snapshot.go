package session

import (
	"github.com/rovshanmuradov/token-swap/internal/conversion"
	"github.com/rovshanmuradov/token-swap/internal/format"
	"github.com/rovshanmuradov/token-swap/internal/input"
)

// Snapshot is everything the UI renders, taken under one lock.
type Snapshot struct {
	State conversion.State

	// Typed is the raw amount still waiting for the debounce, if any.
	Typed        string
	PendingInput bool

	ToDisplay string
	FromUSD   string
	ToUSD     string
	RateLine  string

	Status     conversion.Status
	CanConfirm bool
	Submitting bool
	Started    bool

	FromError error
	ToError   error
	Notice    *Notice
}

// ButtonLabel is the confirm button caption.
func (s Snapshot) ButtonLabel() string {
	if s.Submitting {
		return "Swapping..."
	}
	return s.Status.Label()
}

// Snapshot returns the current view of the form.
func (d *Driver) Snapshot() Snapshot {
	d.mu.Lock()
	defer d.mu.Unlock()

	state := d.engine.State()
	snap := Snapshot{
		State:        state,
		Typed:        d.typed,
		PendingInput: d.hasTyped,
		ToDisplay:    d.formatter.Amount(state.ToAmountText),
		FromUSD:      d.usd(conversion.From, state.FromAmountText),
		ToUSD:        d.usd(conversion.To, state.ToAmountText),
		Status:       d.engine.Status(),
		CanConfirm:   d.engine.CanConfirm() && !d.submitting,
		Submitting:   d.submitting,
		Started:      d.started,
		FromError:    d.engine.ValidationError(conversion.From),
		ToError:      d.engine.ValidationError(conversion.To),
	}
	if state.HasRate {
		snap.RateLine = d.formatter.Rate(state.FromToken.Symbol, state.ToToken.Symbol, state.ExchangeRate)
	}
	if d.notice != nil {
		n := *d.notice
		snap.Notice = &n
	}
	return snap
}

func (d *Driver) usd(side conversion.Side, text string) string {
	state := d.engine.State()
	t := state.FromToken
	if side == conversion.To {
		t = state.ToToken
	}
	if t == nil || !input.IsValidAmount(d.cfg.Numeric, text) {
		return format.NoUSDValue
	}
	return d.formatter.USD(d.engine.USDValue(side))
}
