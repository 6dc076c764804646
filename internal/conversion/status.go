package conversion

// Status is the confirm button state.
type Status int

const (
	StatusReady Status = iota
	StatusSelectTokens
	StatusEnterAmount
	StatusAmountNotPositive
)

// Label is the button caption for s.
func (s Status) Label() string {
	switch s {
	case StatusReady:
		return "Confirm Swap"
	case StatusSelectTokens:
		return "Select tokens to continue"
	case StatusEnterAmount:
		return "Enter amount"
	case StatusAmountNotPositive:
		return "Enter amount greater than 0"
	default:
		return "Enter valid amount"
	}
}

func (s Status) String() string {
	return s.Label()
}

// Status reports the button state for the current form.
func (e *Engine) Status() Status {
	switch {
	case e.CanConfirm():
		return StatusReady
	case e.state.FromToken == nil || e.state.ToToken == nil:
		return StatusSelectTokens
	case e.state.FromAmountText == "" || e.fromErr != nil:
		return StatusEnterAmount
	default:
		return StatusAmountNotPositive
	}
}
