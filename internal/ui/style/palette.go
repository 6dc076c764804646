package style

import "github.com/charmbracelet/lipgloss"

// Outcome is the visual state of a swap submission.
type Outcome int

const (
	OutcomeSettled Outcome = iota
	OutcomeFailed
	OutcomePending
)

// Palette names colours by what they mark on the swap screens rather than
// by hue. Focus follows the active field; Action is the confirm button.
type Palette struct {
	Focus  lipgloss.Color
	Action lipgloss.Color

	Positive lipgloss.Color
	Negative lipgloss.Color
	Pending  lipgloss.Color
	Neutral  lipgloss.Color

	Surface       lipgloss.Color
	SurfaceRaised lipgloss.Color
	Ink           lipgloss.Color
	InkSoft       lipgloss.Color
	InkFaint      lipgloss.Color
}

// DefaultPalette is the dark theme used by every screen.
func DefaultPalette() Palette {
	return Palette{
		Focus:  lipgloss.Color("#00E5FF"),
		Action: lipgloss.Color("#FF1B6B"),

		Positive: lipgloss.Color("#2AFFAA"),
		Negative: lipgloss.Color("#FF5555"),
		Pending:  lipgloss.Color("#FFB500"),
		Neutral:  lipgloss.Color("#3B82F6"),

		Surface:       lipgloss.Color("#1B1D23"),
		SurfaceRaised: lipgloss.Color("#262831"),
		Ink:           lipgloss.Color("#ECEFF4"),
		InkSoft:       lipgloss.Color("#B4BCC8"),
		InkFaint:      lipgloss.Color("#6C7280"),
	}
}

// ForOutcome returns the colour of a submission result.
func (p Palette) ForOutcome(o Outcome) lipgloss.Color {
	switch o {
	case OutcomeSettled:
		return p.Positive
	case OutcomePending:
		return p.Pending
	default:
		return p.Negative
	}
}
