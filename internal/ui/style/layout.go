package style

import (
	"github.com/charmbracelet/lipgloss"
)

var palette = DefaultPalette()

// Header styles
var (
	TitleStyle = lipgloss.NewStyle().
			Foreground(palette.Focus).
			Bold(true).
			Margin(1, 0)

	SubHeaderStyle = lipgloss.NewStyle().
			Foreground(palette.Action).
			Bold(true)
)

// Layout styles
var (
	PanelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(palette.InkFaint).
			Padding(0, 2)

	ActivePanelStyle = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(palette.Focus).
				Padding(0, 2)
)

// Button styles
var (
	ButtonStyle = lipgloss.NewStyle().
			Foreground(palette.Surface).
			Background(palette.Action).
			Padding(0, 2).
			Bold(true)

	ButtonActiveStyle = lipgloss.NewStyle().
				Foreground(palette.Surface).
				Background(palette.Focus).
				Padding(0, 2).
				Bold(true)

	ButtonDisabledStyle = lipgloss.NewStyle().
				Foreground(palette.InkFaint).
				Background(palette.SurfaceRaised).
				Padding(0, 2)
)

// Form styles
var (
	FormLabelStyle = lipgloss.NewStyle().
			Foreground(palette.InkSoft)

	FormErrorStyle = lipgloss.NewStyle().
			Foreground(palette.Negative)

	MutedStyle = lipgloss.NewStyle().
			Foreground(palette.InkFaint)

	AmountStyle = lipgloss.NewStyle().
			Foreground(palette.Ink).
			Bold(true)
)

// Status styles
var (
	SuccessStyle = lipgloss.NewStyle().
			Foreground(palette.Positive).
			Bold(true)

	ErrorStyle = lipgloss.NewStyle().
			Foreground(palette.Negative).
			Bold(true)

	WarningStyle = lipgloss.NewStyle().
			Foreground(palette.Pending).
			Bold(true)

	InfoStyle = lipgloss.NewStyle().
			Foreground(palette.Neutral)
)

// Modal is the frame used for the swap outcome dialog.
func Modal(o Outcome) lipgloss.Style {
	return lipgloss.NewStyle().
		Border(lipgloss.DoubleBorder()).
		BorderForeground(palette.ForOutcome(o)).
		Padding(1, 3)
}

// AdaptiveJoinHorizontal stacks blocks vertically on narrow screens.
func AdaptiveJoinHorizontal(width int, blocks ...string) string {
	if width < 80 {
		return lipgloss.JoinVertical(lipgloss.Left, blocks...)
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, blocks...)
}

// AdaptiveWidth returns percentage of width, or nearly all of it on
// narrow screens.
func AdaptiveWidth(width, percentage int) int {
	if width < 80 {
		return width - 4
	}
	return (width * percentage) / 100
}
