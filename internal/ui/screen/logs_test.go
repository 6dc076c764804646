package screen

import (
	"path/filepath"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/rovshanmuradov/token-swap/internal/export"
	"github.com/rovshanmuradov/token-swap/internal/logger"
	"github.com/rovshanmuradov/token-swap/internal/ui"
)

func newExporter(t *testing.T) *export.ReceiptExporter {
	t.Helper()
	return export.NewReceiptExporter(zaptest.NewLogger(t))
}

func newLogBuffer(t *testing.T) *logger.LogBuffer {
	t.Helper()
	buf, err := logger.NewLogBuffer(50, filepath.Join(t.TempDir(), "spill.log"), zaptest.NewLogger(t))
	require.NoError(t, err)
	t.Cleanup(func() { _ = buf.Close() })
	return buf
}

func TestLogsScreenFilters(t *testing.T) {
	buf := newLogBuffer(t)
	require.NoError(t, buf.Add("info", "Session started", nil))
	require.NoError(t, buf.Add("warn", "Price feed unavailable", nil))
	require.NoError(t, buf.Add("debug", "Quote refreshed", nil))

	l := NewLogsScreen(Deps{Logs: buf})
	l.SetSize(120, 30)
	l.Init()

	view := l.View()
	assert.Contains(t, view, "Session started")
	assert.Contains(t, view, "Price feed unavailable")
	assert.NotContains(t, view, "Quote refreshed")

	l.Update(tea.KeyMsg{Type: tea.KeyF4})
	assert.Contains(t, l.View(), "Quote refreshed")

	l.Update(tea.KeyMsg{Type: tea.KeyF1})
	view = l.View()
	assert.NotContains(t, view, "Session started")
	assert.Contains(t, view, "Price feed unavailable")
}

func TestLogsScreenPicksUpNewEntries(t *testing.T) {
	buf := newLogBuffer(t)
	l := NewLogsScreen(Deps{Logs: buf})
	l.SetSize(120, 30)
	l.Init()
	assert.Contains(t, l.View(), "No logs match current filter")

	require.NoError(t, buf.Add("error", "Swap failed", nil))
	l.Update(ui.SessionChangedMsg{})
	assert.Contains(t, l.View(), "Swap failed")
}

func TestLogsScreenWithoutBuffer(t *testing.T) {
	l := NewLogsScreen(Deps{})
	l.SetSize(100, 20)
	l.Init()
	assert.Contains(t, l.View(), "No log buffer available")
}
