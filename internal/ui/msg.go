package ui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/rovshanmuradov/token-swap/internal/export"
)

// Tea message types for UI communication

// RouterMsg represents navigation between screens
type RouterMsg struct {
	To Route
}

// SessionChangedMsg tells the current screen to re-read the session
// snapshot. It carries no data: the snapshot is the source of truth.
type SessionChangedMsg struct{}

// SwapResultMsg carries the outcome of a confirmed swap.
type SwapResultMsg struct {
	Record export.Record
	Err    error
}

// RefreshDoneMsg is sent when a catalog refresh completes.
type RefreshDoneMsg struct {
	Err error
}

// ExportDoneMsg is sent when a history export completes.
type ExportDoneMsg struct {
	Path string
	Err  error
}

// ErrorMsg represents error conditions
type ErrorMsg struct {
	Error error
	Title string
}

// Route represents different screens in the application
type Route int

const (
	RouteSwap Route = iota
	RouteHistory
	RouteLogs
)

// String returns the string representation of the route
func (r Route) String() string {
	switch r {
	case RouteSwap:
		return "swap"
	case RouteHistory:
		return "history"
	case RouteLogs:
		return "logs"
	default:
		return "unknown"
	}
}

// Navigate returns a command that routes to r.
func Navigate(r Route) tea.Cmd {
	return func() tea.Msg { return RouterMsg{To: r} }
}
