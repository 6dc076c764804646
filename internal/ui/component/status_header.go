package component

import (
	"fmt"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/rovshanmuradov/token-swap/internal/ui/style"
)

// StatusHeader provides a clean header with essential status information
type StatusHeader struct {
	title      string
	tokens     int
	updated    time.Time
	submitting bool
	succeeded  int
	failed     int
	style      StatusHeaderStyle
	width      int
}

// StatusHeaderStyle contains all styling for the status header
type StatusHeaderStyle struct {
	container lipgloss.Style
	title     lipgloss.Style
	muted     lipgloss.Style
	busy      lipgloss.Style
	good      lipgloss.Style
	bad       lipgloss.Style
}

// NewStatusHeader creates a new status header component
func NewStatusHeader(title string) *StatusHeader {
	palette := style.DefaultPalette()

	return &StatusHeader{
		title: title,
		style: StatusHeaderStyle{
			container: lipgloss.NewStyle().
				Foreground(palette.Ink).
				Border(lipgloss.RoundedBorder()).
				BorderForeground(palette.Focus).
				Padding(0, 2),

			title: lipgloss.NewStyle().
				Foreground(palette.Focus).
				Bold(true),

			muted: lipgloss.NewStyle().
				Foreground(palette.InkSoft),

			busy: lipgloss.NewStyle().
				Foreground(palette.Pending).
				Bold(true),

			good: lipgloss.NewStyle().
				Foreground(palette.Positive).
				Bold(true),

			bad: lipgloss.NewStyle().
				Foreground(palette.Negative).
				Bold(true),
		},
	}
}

// SetCatalog records the number of tokens and when prices were loaded.
func (sh *StatusHeader) SetCatalog(tokens int, updated time.Time) {
	sh.tokens = tokens
	sh.updated = updated
}

// SetSubmitting marks a swap as in flight.
func (sh *StatusHeader) SetSubmitting(submitting bool) {
	sh.submitting = submitting
}

// SetTotals updates the session swap counters.
func (sh *StatusHeader) SetTotals(succeeded, failed int) {
	sh.succeeded = succeeded
	sh.failed = failed
}

// SetWidth sets the component width for responsive layout
func (sh *StatusHeader) SetWidth(width int) {
	sh.width = width
	if width > 4 {
		sh.style.container = sh.style.container.Width(width - 2)
	}
}

// View renders the header
func (sh *StatusHeader) View() string {
	prices := "loading prices..."
	if !sh.updated.IsZero() {
		prices = fmt.Sprintf("%d tokens • prices %s", sh.tokens, sh.updated.Format("15:04:05"))
	}

	parts := []string{
		sh.style.title.Render(sh.title),
		sh.style.muted.Render(prices),
	}
	if sh.submitting {
		parts = append(parts, sh.style.busy.Render("⏳ swapping"))
	}
	if sh.succeeded+sh.failed > 0 {
		parts = append(parts,
			sh.style.good.Render(fmt.Sprintf("✓ %d", sh.succeeded))+" "+
				sh.style.bad.Render(fmt.Sprintf("✗ %d", sh.failed)))
	}

	line := parts[0]
	for _, p := range parts[1:] {
		line += sh.style.muted.Render("  │  ") + p
	}
	return sh.style.container.Render(line)
}
