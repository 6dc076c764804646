package conversion

import (
	"errors"
	"fmt"

	"github.com/rovshanmuradov/token-swap/internal/token"
)

// ErrUnknownToken is returned when a command names a symbol that is not
// in the catalog.
var ErrUnknownToken = errors.New("unknown token")

// Command is a single user intent applied to an Engine.
type Command interface {
	Apply(e *Engine) error
	Name() string
}

// SelectTokenCommand picks Symbol from Catalog for Side. An empty
// Symbol clears the side.
type SelectTokenCommand struct {
	Side    Side
	Symbol  string
	Catalog token.Catalog
}

func (c SelectTokenCommand) Name() string { return "select_token" }

func (c SelectTokenCommand) Apply(e *Engine) error {
	if c.Symbol == "" {
		e.SelectToken(c.Side, nil)
		return nil
	}
	t, ok := c.Catalog.Find(c.Symbol)
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownToken, c.Symbol)
	}
	e.SelectToken(c.Side, t)
	return nil
}

// SetAmountCommand enters raw text as the source amount.
type SetAmountCommand struct {
	Raw string
}

func (c SetAmountCommand) Name() string { return "set_amount" }

func (c SetAmountCommand) Apply(e *Engine) error {
	e.SetAmount(c.Raw)
	return e.ValidationError(From)
}

// SwapCommand flips the pair.
type SwapCommand struct{}

func (SwapCommand) Name() string { return "swap" }

func (SwapCommand) Apply(e *Engine) error {
	e.Swap()
	return nil
}

// ResetCommand clears the amounts.
type ResetCommand struct{}

func (ResetCommand) Name() string { return "reset" }

func (ResetCommand) Apply(e *Engine) error {
	e.Reset()
	return nil
}

// RefreshCommand recomputes derived fields without changing inputs.
type RefreshCommand struct{}

func (RefreshCommand) Name() string { return "refresh" }

func (RefreshCommand) Apply(e *Engine) error {
	e.Recompute()
	return nil
}

// Dispatch applies cmd. The returned error describes a rejected or
// invalid input; the form is still consistent afterwards.
func (e *Engine) Dispatch(cmd Command) error {
	if err := cmd.Apply(e); err != nil {
		return fmt.Errorf("%s: %w", cmd.Name(), err)
	}
	return nil
}
