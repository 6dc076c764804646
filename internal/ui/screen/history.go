package screen

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/rovshanmuradov/token-swap/internal/export"
	"github.com/rovshanmuradov/token-swap/internal/ui"
	"github.com/rovshanmuradov/token-swap/internal/ui/component"
	"github.com/rovshanmuradov/token-swap/internal/ui/router"
	"github.com/rovshanmuradov/token-swap/internal/ui/style"
)

// HistoryScreen lists the swaps submitted in this session and exports
// them.
type HistoryScreen struct {
	deps    Deps
	keyMap  ui.KeyMap
	width   int
	height  int
	table   *component.Table
	helpBar *component.HelpBar

	records   []export.Record
	status    string
	statusErr bool
	exporting bool
}

// NewHistoryScreen creates the history screen
func NewHistoryScreen(deps Deps) *HistoryScreen {
	keyMap := ui.DefaultKeyMap()
	table := component.NewTable().SetColumns([]component.TableColumn{
		{Header: "Time", Width: 8},
		{Header: "Pair", Width: 11},
		{Header: "Paid", Align: lipgloss.Right},
		{Header: "Received", Align: lipgloss.Right},
		{Header: "USD", Width: 12, Align: lipgloss.Right},
		{Header: "Status", Width: 6},
	})

	return &HistoryScreen{
		deps:    deps,
		keyMap:  keyMap,
		table:   table,
		helpBar: component.NewHelpBar().SetKeyBindings(keyMap.ContextualHelp(ui.RouteHistory)),
	}
}

// Init loads the records
func (h *HistoryScreen) Init() tea.Cmd {
	h.reload()
	return nil
}

// SetSize sets the screen dimensions
func (h *HistoryScreen) SetSize(width, height int) {
	h.width = width
	h.height = height
	rows := height - 14
	if rows < 3 {
		rows = 3
	}
	h.table.SetSize(width-2, rows)
	h.helpBar.SetWidth(width)
}

func (h *HistoryScreen) reload() {
	h.records = h.deps.Driver.History()
	rows := make([][]string, len(h.records))
	for i, r := range h.records {
		status := "✓"
		if !r.Success {
			status = "✗"
		}
		rows[i] = []string{
			r.Timestamp.Format("15:04:05"),
			r.Pair(),
			r.FromAmount + " " + r.FromSymbol,
			r.ToAmount + " " + r.ToSymbol,
			h.usd(r.USDValue),
			status,
		}
	}
	h.table.SetRows(rows).SelectLast()
}

func (h *HistoryScreen) usd(value string) string {
	f := h.deps.formatter()
	d, err := h.deps.engine().Parse(value)
	if err != nil {
		return value
	}
	return f.USD(d)
}

// Update handles screen updates
func (h *HistoryScreen) Update(msg tea.Msg) (router.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case ui.SessionChangedMsg, ui.SwapResultMsg:
		h.reload()

	case ui.ExportDoneMsg:
		h.exporting = false
		if msg.Err != nil {
			h.status, h.statusErr = "Export failed: "+msg.Err.Error(), true
		} else {
			h.status, h.statusErr = "Exported to "+msg.Path, false
		}

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, h.keyMap.Quit):
			return h, tea.Quit
		case key.Matches(msg, h.keyMap.Up):
			h.table.MoveUp()
		case key.Matches(msg, h.keyMap.Down):
			h.table.MoveDown()
		case key.Matches(msg, h.keyMap.ExportCSV):
			return h, h.export(export.FormatCSV)
		case key.Matches(msg, h.keyMap.ExportJSON):
			return h, h.export(export.FormatJSON)
		case key.Matches(msg, h.keyMap.ExportYAML):
			return h, h.export(export.FormatYAML)
		}
	}
	return h, nil
}

func (h *HistoryScreen) export(format export.ExportFormat) tea.Cmd {
	if h.deps.Exporter == nil || h.exporting {
		return nil
	}
	if len(h.records) == 0 {
		h.status, h.statusErr = "Nothing to export yet", true
		return nil
	}

	h.exporting = true
	h.status, h.statusErr = "Exporting...", false
	exporter, records := h.deps.Exporter, h.records
	opts := export.ExportOptions{Format: format, OutputDir: h.deps.ExportDir}
	return func() tea.Msg {
		path, err := exporter.ExportRecords(records, opts)
		return ui.ExportDoneMsg{Path: path, Err: err}
	}
}

// View renders the history screen
func (h *HistoryScreen) View() string {
	var b strings.Builder
	b.WriteString(style.TitleStyle.Render("📜 Swap History"))
	b.WriteString("\n")

	if len(h.records) == 0 {
		b.WriteString(style.MutedStyle.Render("No swaps yet. Confirm a swap and it will show up here."))
	} else {
		b.WriteString(h.renderSummary())
		b.WriteString("\n\n")
		b.WriteString(h.table.View())
		if detail := h.renderDetail(); detail != "" {
			b.WriteString("\n")
			b.WriteString(detail)
		}
	}

	if h.status != "" {
		b.WriteString("\n\n")
		if h.statusErr {
			b.WriteString(style.ErrorStyle.Render(h.status))
		} else {
			b.WriteString(style.SuccessStyle.Render(h.status))
		}
	}

	b.WriteString("\n")
	b.WriteString(h.helpBar.View())
	return b.String()
}

func (h *HistoryScreen) renderSummary() string {
	sum := export.Summarize(h.records)
	return style.InfoStyle.Render(fmt.Sprintf(
		"%d swaps • %d ok • %d failed • %.0f%% success • volume %s",
		sum.TotalSwaps, sum.SuccessfulSwaps, sum.FailedSwaps, sum.SuccessRate, h.usd(sum.TotalUSDVolume)))
}

func (h *HistoryScreen) renderDetail() string {
	i := h.table.GetSelectedRow()
	if i < 0 || i >= len(h.records) {
		return ""
	}
	r := h.records[i]
	line := fmt.Sprintf("tx %s • rate %s • %dms", r.ID, r.Rate, r.DelayMS)
	if r.Error != "" {
		line += " • " + r.Error
	}
	return style.MutedStyle.Render(line)
}
