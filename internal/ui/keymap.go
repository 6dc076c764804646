package ui

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines keyboard shortcuts for the application. Letters are kept
// free on the swap screen because the token search consumes them.
type KeyMap struct {
	// Global navigation
	Quit key.Binding
	Back key.Binding

	// Navigation
	Up       key.Binding
	Down     key.Binding
	Enter    key.Binding
	Tab      key.Binding
	ShiftTab key.Binding

	// Swap form
	Confirm  key.Binding
	Flip     key.Binding
	Refresh  key.Binding
	Pick     key.Binding
	History  key.Binding
	Logs     key.Binding
	LogsPane key.Binding

	// History
	ExportCSV  key.Binding
	ExportJSON key.Binding
	ExportYAML key.Binding

	// Logs
	FilterInfo  key.Binding
	FilterWarn  key.Binding
	FilterError key.Binding
	FilterDebug key.Binding
}

// DefaultKeyMap returns the default key bindings
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Quit: key.NewBinding(
			key.WithKeys("ctrl+c"),
			key.WithHelp("ctrl+c", "quit"),
		),
		Back: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "back"),
		),

		Up: key.NewBinding(
			key.WithKeys("up"),
			key.WithHelp("↑", "up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down"),
			key.WithHelp("↓", "down"),
		),
		Enter: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "select"),
		),
		Tab: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("tab", "next"),
		),
		ShiftTab: key.NewBinding(
			key.WithKeys("shift+tab"),
			key.WithHelp("shift+tab", "prev"),
		),

		Confirm: key.NewBinding(
			key.WithKeys("ctrl+o"),
			key.WithHelp("ctrl+o", "confirm swap"),
		),
		Flip: key.NewBinding(
			key.WithKeys("ctrl+s"),
			key.WithHelp("ctrl+s", "flip pair"),
		),
		Refresh: key.NewBinding(
			key.WithKeys("ctrl+r", "f5"),
			key.WithHelp("ctrl+r", "refresh prices"),
		),
		Pick: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "choose token"),
		),
		History: key.NewBinding(
			key.WithKeys("f2"),
			key.WithHelp("F2", "history"),
		),
		Logs: key.NewBinding(
			key.WithKeys("f12"),
			key.WithHelp("F12", "logs"),
		),
		LogsPane: key.NewBinding(
			key.WithKeys("ctrl+l"),
			key.WithHelp("ctrl+l", "toggle logs"),
		),

		ExportCSV: key.NewBinding(
			key.WithKeys("c"),
			key.WithHelp("c", "export csv"),
		),
		ExportJSON: key.NewBinding(
			key.WithKeys("j"),
			key.WithHelp("j", "export json"),
		),
		ExportYAML: key.NewBinding(
			key.WithKeys("y"),
			key.WithHelp("y", "export yaml"),
		),

		FilterInfo: key.NewBinding(
			key.WithKeys("f1"),
			key.WithHelp("F1", "info"),
		),
		FilterWarn: key.NewBinding(
			key.WithKeys("f2"),
			key.WithHelp("F2", "warn"),
		),
		FilterError: key.NewBinding(
			key.WithKeys("f3"),
			key.WithHelp("F3", "error"),
		),
		FilterDebug: key.NewBinding(
			key.WithKeys("f4"),
			key.WithHelp("F4", "debug"),
		),
	}
}

// ContextualHelp returns help text based on the current route
func (k KeyMap) ContextualHelp(route Route) []key.Binding {
	switch route {
	case RouteSwap:
		return []key.Binding{k.Tab, k.Pick, k.Flip, k.Confirm, k.Refresh, k.History, k.Logs, k.Quit}
	case RouteHistory:
		return []key.Binding{k.Up, k.Down, k.ExportCSV, k.ExportJSON, k.ExportYAML, k.Back, k.Quit}
	case RouteLogs:
		return []key.Binding{k.FilterInfo, k.FilterWarn, k.FilterError, k.FilterDebug, k.Back, k.Quit}
	default:
		return []key.Binding{k.Back, k.Quit}
	}
}
