// internal/ui/component/compact_logs.go
package component

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/rovshanmuradov/token-swap/internal/logger"
	"github.com/rovshanmuradov/token-swap/internal/ui/style"
)

// LogFilter defines what log levels to show
type LogFilter struct {
	ShowError   bool
	ShowWarning bool
	ShowInfo    bool
	ShowDebug   bool
}

// LogSource is what the viewer reads entries from.
type LogSource interface {
	GetRecentLogs(limit int) []logger.LogEntry
}

// CompactLogViewer shows the tail of the session log buffer.
type CompactLogViewer struct {
	source   LogSource
	viewport viewport.Model
	filter   LogFilter
	style    CompactLogStyle
	limit    int
	width    int
	height   int
	visible  bool
	follow   bool
	title    string
}

// CompactLogStyle contains all styling for the log viewer
type CompactLogStyle struct {
	container lipgloss.Style
	title     lipgloss.Style
	entry     lipgloss.Style
	timestamp lipgloss.Style
	error     lipgloss.Style
	warning   lipgloss.Style
	info      lipgloss.Style
	debug     lipgloss.Style
}

// NewCompactLogViewer creates a viewer over source showing at most limit
// entries. Debug entries are hidden until toggled.
func NewCompactLogViewer(source LogSource, title string, limit int) *CompactLogViewer {
	palette := style.DefaultPalette()
	if limit <= 0 {
		limit = 50
	}

	return &CompactLogViewer{
		source:  source,
		visible: true,
		follow:  true,
		limit:   limit,
		title:   title,
		filter: LogFilter{
			ShowError:   true,
			ShowWarning: true,
			ShowInfo:    true,
		},
		style: CompactLogStyle{
			container: lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(palette.Neutral).
				Padding(0, 1),

			title: lipgloss.NewStyle().
				Foreground(palette.Neutral).
				Bold(true),

			entry: lipgloss.NewStyle().
				Foreground(palette.Ink),

			timestamp: lipgloss.NewStyle().
				Foreground(palette.InkFaint),

			error: lipgloss.NewStyle().
				Foreground(palette.Negative).
				Bold(true),

			warning: lipgloss.NewStyle().
				Foreground(palette.Pending).
				Bold(true),

			info: lipgloss.NewStyle().
				Foreground(palette.Neutral),

			debug: lipgloss.NewStyle().
				Foreground(palette.InkFaint),
		},
		viewport: viewport.New(50, 4),
	}
}

// SetSize sets the component dimensions
func (clv *CompactLogViewer) SetSize(width, height int) {
	clv.width = width
	clv.height = height
	clv.style.container = clv.style.container.Width(width - 2)

	// Border, padding and title
	viewportWidth := width - 4
	viewportHeight := height - 3
	if viewportHeight < 2 {
		viewportHeight = 2
	}
	if viewportWidth < 10 {
		viewportWidth = 10
	}

	clv.viewport.Width = viewportWidth
	clv.viewport.Height = viewportHeight
	clv.Refresh()
}

// SetVisible toggles the visibility of the log viewer
func (clv *CompactLogViewer) SetVisible(visible bool) {
	clv.visible = visible
}

// IsVisible returns whether the log viewer is visible
func (clv *CompactLogViewer) IsVisible() bool {
	return clv.visible
}

// Filter returns the active filter.
func (clv *CompactLogViewer) Filter() LogFilter {
	return clv.filter
}

// ToggleLogLevel toggles a specific log level
func (clv *CompactLogViewer) ToggleLogLevel(level string) {
	switch level {
	case "error":
		clv.filter.ShowError = !clv.filter.ShowError
	case "warn":
		clv.filter.ShowWarning = !clv.filter.ShowWarning
	case "info":
		clv.filter.ShowInfo = !clv.filter.ShowInfo
	case "debug":
		clv.filter.ShowDebug = !clv.filter.ShowDebug
	}
	clv.Refresh()
}

// Update forwards scrolling keys to the viewport. Scrolling away from the
// bottom stops following new entries until the bottom is reached again.
func (clv *CompactLogViewer) Update(msg tea.Msg) tea.Cmd {
	if !clv.visible {
		return nil
	}

	var cmd tea.Cmd
	clv.viewport, cmd = clv.viewport.Update(msg)
	clv.follow = clv.viewport.AtBottom()
	return cmd
}

// View renders the compact log viewer
func (clv *CompactLogViewer) View() string {
	if !clv.visible {
		return ""
	}

	content := lipgloss.JoinVertical(
		lipgloss.Left,
		clv.style.title.Render(clv.title),
		clv.viewport.View(),
	)
	return clv.style.container.Render(content)
}

// Refresh reloads the viewport content from the source.
func (clv *CompactLogViewer) Refresh() {
	lines := clv.Lines()
	if clv.source == nil {
		clv.viewport.SetContent("No log buffer available")
		return
	}
	if len(lines) == 0 {
		clv.viewport.SetContent("No logs match current filter")
		return
	}

	clv.viewport.SetContent(strings.Join(lines, "\n"))
	if clv.follow {
		clv.viewport.GotoBottom()
	}
}

// Lines returns the rendered entries that pass the filter, oldest first.
func (clv *CompactLogViewer) Lines() []string {
	if clv.source == nil {
		return nil
	}

	var lines []string
	for _, entry := range clv.source.GetRecentLogs(clv.limit) {
		if clv.shouldShowEntry(entry) {
			lines = append(lines, clv.formatLogEntry(entry))
		}
	}
	return lines
}

func (clv *CompactLogViewer) shouldShowEntry(entry logger.LogEntry) bool {
	switch strings.ToLower(entry.Level) {
	case "error", "dpanic", "panic", "fatal":
		return clv.filter.ShowError
	case "warning", "warn":
		return clv.filter.ShowWarning
	case "debug":
		return clv.filter.ShowDebug
	default:
		return clv.filter.ShowInfo
	}
}

func (clv *CompactLogViewer) formatLogEntry(entry logger.LogEntry) string {
	timestamp := clv.style.timestamp.Render(entry.Timestamp.Format("15:04:05"))

	var styled string
	switch strings.ToLower(entry.Level) {
	case "error", "dpanic", "panic", "fatal":
		styled = clv.style.error.Render(entry.Message)
	case "warning", "warn":
		styled = clv.style.warning.Render(entry.Message)
	case "info":
		styled = clv.style.info.Render(entry.Message)
	case "debug":
		styled = clv.style.debug.Render(entry.Message)
	default:
		styled = clv.style.entry.Render(entry.Message)
	}

	return fmt.Sprintf("%s %s", timestamp, styled)
}

// GetHeight returns the component height for layout calculations
func (clv *CompactLogViewer) GetHeight() int {
	if !clv.visible {
		return 0
	}
	return clv.height
}

// GetFilterStatus returns current filter status as string
func (clv *CompactLogViewer) GetFilterStatus() string {
	var active []string
	if clv.filter.ShowError {
		active = append(active, "Error")
	}
	if clv.filter.ShowWarning {
		active = append(active, "Warning")
	}
	if clv.filter.ShowInfo {
		active = append(active, "Info")
	}
	if clv.filter.ShowDebug {
		active = append(active, "Debug")
	}

	if len(active) == 0 {
		return "No filters active"
	}

	return fmt.Sprintf("Showing: %s", strings.Join(active, ", "))
}
