package component

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/rovshanmuradov/token-swap/internal/ui/style"
)

// TableColumn represents a column configuration. A zero Width shares the
// space left by fixed columns.
type TableColumn struct {
	Header string
	Width  int
	Align  lipgloss.Position
}

// Table is a selectable, scrolling data table.
type Table struct {
	columns     []TableColumn
	rows        [][]string
	width       int
	height      int
	selectedRow int
	offset      int

	headerStyle      lipgloss.Style
	rowStyle         lipgloss.Style
	altRowStyle      lipgloss.Style
	selectedRowStyle lipgloss.Style
	borderStyle      lipgloss.Style
}

// NewTable creates a new table component
func NewTable() *Table {
	palette := style.DefaultPalette()

	return &Table{
		headerStyle: lipgloss.NewStyle().
			Foreground(palette.Action).
			Bold(true).
			Padding(0, 1),

		rowStyle: lipgloss.NewStyle().
			Foreground(palette.Ink).
			Padding(0, 1),

		altRowStyle: lipgloss.NewStyle().
			Foreground(palette.Ink).
			Background(palette.SurfaceRaised).
			Padding(0, 1),

		selectedRowStyle: lipgloss.NewStyle().
			Foreground(palette.Surface).
			Background(palette.Focus).
			Padding(0, 1),

		borderStyle: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(palette.InkFaint),
	}
}

// SetColumns sets the table columns
func (t *Table) SetColumns(columns []TableColumn) *Table {
	t.columns = columns
	return t
}

// SetRows replaces the rows, keeping the selection in range.
func (t *Table) SetRows(rows [][]string) *Table {
	t.rows = rows
	t.clampSelection()
	return t
}

// SetSize sets the table dimensions. height counts data rows only.
func (t *Table) SetSize(width, height int) *Table {
	t.width = width
	t.height = height
	t.clampSelection()
	return t
}

// SelectLast moves the selection to the newest row.
func (t *Table) SelectLast() *Table {
	t.selectedRow = len(t.rows) - 1
	t.clampSelection()
	return t
}

// GetSelectedRow returns the currently selected row index
func (t *Table) GetSelectedRow() int {
	return t.selectedRow
}

// MoveUp moves selection up
func (t *Table) MoveUp() *Table {
	if t.selectedRow > 0 {
		t.selectedRow--
	}
	t.clampSelection()
	return t
}

// MoveDown moves selection down
func (t *Table) MoveDown() *Table {
	if t.selectedRow < len(t.rows)-1 {
		t.selectedRow++
	}
	t.clampSelection()
	return t
}

func (t *Table) clampSelection() {
	if t.selectedRow >= len(t.rows) {
		t.selectedRow = len(t.rows) - 1
	}
	if t.selectedRow < 0 {
		t.selectedRow = 0
	}
	visible := t.visibleRows()
	if t.selectedRow < t.offset {
		t.offset = t.selectedRow
	}
	if t.selectedRow >= t.offset+visible {
		t.offset = t.selectedRow - visible + 1
	}
}

func (t *Table) visibleRows() int {
	if t.height <= 0 {
		return len(t.rows) + 1
	}
	return t.height
}

// View renders the table
func (t *Table) View() string {
	if len(t.columns) == 0 {
		return ""
	}
	widths := t.columnWidths()

	var lines []string
	var header, separator []string
	for i, col := range t.columns {
		header = append(header, renderCell(col.Header, widths[i], col.Align, t.headerStyle))
		separator = append(separator, strings.Repeat("─", lipgloss.Width(header[i])))
	}
	lines = append(lines, strings.Join(header, "│"), strings.Join(separator, "┼"))

	end := t.offset + t.visibleRows()
	if end > len(t.rows) {
		end = len(t.rows)
	}
	for i := t.offset; i < end; i++ {
		rowStyle := t.rowStyle
		switch {
		case i == t.selectedRow:
			rowStyle = t.selectedRowStyle
		case i%2 == 1:
			rowStyle = t.altRowStyle
		}

		cells := make([]string, len(t.columns))
		for c, col := range t.columns {
			value := ""
			if c < len(t.rows[i]) {
				value = t.rows[i][c]
			}
			cells[c] = renderCell(value, widths[c], col.Align, rowStyle)
		}
		lines = append(lines, strings.Join(cells, "│"))
	}

	return t.borderStyle.Render(strings.Join(lines, "\n"))
}

// renderCell truncates content to width runes and aligns it.
func renderCell(content string, width int, align lipgloss.Position, s lipgloss.Style) string {
	runes := []rune(content)
	if len(runes) > width {
		if width > 1 {
			content = string(runes[:width-1]) + "…"
		} else {
			content = string(runes[:width])
		}
	}
	return s.Width(width + 2).Align(align).Render(content)
}

// columnWidths gives auto-width columns an equal share of what fixed
// columns leave over, never less than the header.
func (t *Table) columnWidths() []int {
	widths := make([]int, len(t.columns))
	fixed, auto := 0, 0
	for i, col := range t.columns {
		if col.Width > 0 {
			widths[i] = col.Width
			fixed += col.Width + 2
		} else {
			auto++
		}
	}
	if auto == 0 {
		return widths
	}

	// Cell padding, separators and the border.
	available := t.width - fixed - 2*auto - (len(t.columns) - 1) - 2
	share := 0
	if available > 0 {
		share = available / auto
	}
	for i, col := range t.columns {
		if col.Width > 0 {
			continue
		}
		widths[i] = share
		if w := lipgloss.Width(col.Header); widths[i] < w {
			widths[i] = w
		}
	}
	return widths
}

// GetSelectedRowData returns the data of the currently selected row
func (t *Table) GetSelectedRowData() []string {
	if t.selectedRow >= 0 && t.selectedRow < len(t.rows) {
		return t.rows[t.selectedRow]
	}
	return nil
}
