package screen

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/rovshanmuradov/token-swap/internal/ui"
	"github.com/rovshanmuradov/token-swap/internal/ui/component"
	"github.com/rovshanmuradov/token-swap/internal/ui/router"
	"github.com/rovshanmuradov/token-swap/internal/ui/style"
)

const logsScreenLimit = 500

// LogsScreen shows the session log buffer full screen with level filters.
type LogsScreen struct {
	width   int
	height  int
	keyMap  ui.KeyMap
	viewer  *component.CompactLogViewer
	helpBar *component.HelpBar
}

// NewLogsScreen creates the logs screen
func NewLogsScreen(deps Deps) *LogsScreen {
	keyMap := ui.DefaultKeyMap()
	return &LogsScreen{
		keyMap:  keyMap,
		viewer:  component.NewCompactLogViewer(deps.logSource(), "Session log", logsScreenLimit),
		helpBar: component.NewHelpBar().SetKeyBindings(keyMap.ContextualHelp(ui.RouteLogs)),
	}
}

// Init initializes the screen
func (l *LogsScreen) Init() tea.Cmd {
	l.viewer.Refresh()
	return nil
}

// SetSize sets the screen dimensions
func (l *LogsScreen) SetSize(width, height int) {
	l.width = width
	l.height = height
	l.viewer.SetSize(width, height-4)
	l.helpBar.SetWidth(width)
}

// Update handles screen updates
func (l *LogsScreen) Update(msg tea.Msg) (router.Screen, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch {
		case key.Matches(msg, l.keyMap.Quit):
			return l, tea.Quit
		case key.Matches(msg, l.keyMap.FilterInfo):
			l.viewer.ToggleLogLevel("info")
			return l, nil
		case key.Matches(msg, l.keyMap.FilterWarn):
			l.viewer.ToggleLogLevel("warn")
			return l, nil
		case key.Matches(msg, l.keyMap.FilterError):
			l.viewer.ToggleLogLevel("error")
			return l, nil
		case key.Matches(msg, l.keyMap.FilterDebug):
			l.viewer.ToggleLogLevel("debug")
			return l, nil
		}
		return l, l.viewer.Update(msg)
	}

	// Anything else means something happened; pick up new entries.
	l.viewer.Refresh()
	return l, nil
}

// View renders the logs screen
func (l *LogsScreen) View() string {
	var b strings.Builder
	b.WriteString(style.TitleStyle.Render("📋 Logs"))
	b.WriteString("  ")
	b.WriteString(style.MutedStyle.Render(l.viewer.GetFilterStatus()))
	b.WriteString("\n")
	b.WriteString(l.viewer.View())
	b.WriteString("\n")
	b.WriteString(l.helpBar.View())
	return b.String()
}
