package component

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/rovshanmuradov/token-swap/internal/format"
	"github.com/rovshanmuradov/token-swap/internal/token"
	"github.com/rovshanmuradov/token-swap/internal/ui/style"
)

// PickerResult reports what a key press did to the picker.
type PickerResult struct {
	// Query is set when the search text changed.
	Query        string
	QueryChanged bool
	// Chosen is the selected symbol after enter.
	Chosen string
	Closed bool
}

// TokenPicker is a searchable token list. The caller owns filtering: it
// forwards Query changes and feeds the filtered list back via SetTokens.
type TokenPicker struct {
	title     string
	current   string
	search    textinput.Model
	tokens    []*token.Token
	cursor    int
	offset    int
	rows      int
	width     int
	formatter *format.Formatter

	itemStyle     lipgloss.Style
	selectedStyle lipgloss.Style
	priceStyle    lipgloss.Style
	container     lipgloss.Style
}

// NewTokenPicker creates a picker that renders USD prices with formatter.
func NewTokenPicker(formatter *format.Formatter) *TokenPicker {
	palette := style.DefaultPalette()

	search := textinput.New()
	search.Placeholder = "Search tokens..."
	search.Prompt = "🔍 "
	search.CharLimit = 32

	return &TokenPicker{
		search:    search,
		rows:      8,
		width:     40,
		formatter: formatter,

		itemStyle: lipgloss.NewStyle().
			Foreground(palette.Ink).
			Padding(0, 1),

		selectedStyle: lipgloss.NewStyle().
			Foreground(palette.Surface).
			Background(palette.Focus).
			Padding(0, 1).
			Bold(true),

		priceStyle: lipgloss.NewStyle().
			Foreground(palette.InkFaint),

		container: style.ActivePanelStyle,
	}
}

// Open resets the search and places the cursor on current.
func (p *TokenPicker) Open(title, current string) tea.Cmd {
	p.title = title
	p.current = current
	p.search.SetValue("")
	p.tokens = nil
	p.cursor = 0
	p.offset = 0
	return p.search.Focus()
}

// Close blurs the search field.
func (p *TokenPicker) Close() {
	p.search.Blur()
}

// SetSize sets the picker width and visible row count.
func (p *TokenPicker) SetSize(width, rows int) {
	if width > 20 {
		p.width = width
	}
	if rows > 0 {
		p.rows = rows
	}
	p.search.Width = p.width - 8
	p.clamp()
}

// SetTokens replaces the list. The cursor stays on the highlighted
// symbol, else moves to the current selection, else to the top.
func (p *TokenPicker) SetTokens(tokens []*token.Token) {
	keep := p.Highlighted()
	p.tokens = tokens
	p.cursor = 0
	if i := indexOf(tokens, keep); i >= 0 {
		p.cursor = i
	} else if i := indexOf(tokens, p.current); i >= 0 {
		p.cursor = i
	}
	p.clamp()
}

func indexOf(tokens []*token.Token, symbol string) int {
	if symbol == "" {
		return -1
	}
	for i, t := range tokens {
		if t.Symbol == symbol {
			return i
		}
	}
	return -1
}

// Query returns the search text.
func (p *TokenPicker) Query() string {
	return p.search.Value()
}

// Highlighted returns the symbol under the cursor, if any.
func (p *TokenPicker) Highlighted() string {
	if p.cursor < len(p.tokens) {
		return p.tokens[p.cursor].Symbol
	}
	return ""
}

// Update handles one key press.
func (p *TokenPicker) Update(msg tea.KeyMsg) (PickerResult, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		return PickerResult{Closed: true}, nil
	case tea.KeyEnter:
		if symbol := p.Highlighted(); symbol != "" {
			return PickerResult{Chosen: symbol, Closed: true}, nil
		}
		return PickerResult{}, nil
	case tea.KeyUp:
		if p.cursor > 0 {
			p.cursor--
		}
		p.clamp()
		return PickerResult{}, nil
	case tea.KeyDown:
		if p.cursor < len(p.tokens)-1 {
			p.cursor++
		}
		p.clamp()
		return PickerResult{}, nil
	}

	before := p.search.Value()
	var cmd tea.Cmd
	p.search, cmd = p.search.Update(msg)
	after := p.search.Value()
	if after == before {
		return PickerResult{}, cmd
	}
	return PickerResult{Query: after, QueryChanged: true}, cmd
}

func (p *TokenPicker) clamp() {
	if p.cursor >= len(p.tokens) {
		p.cursor = len(p.tokens) - 1
	}
	if p.cursor < 0 {
		p.cursor = 0
	}
	if p.cursor < p.offset {
		p.offset = p.cursor
	}
	if p.cursor >= p.offset+p.rows {
		p.offset = p.cursor - p.rows + 1
	}
}

// View renders the picker
func (p *TokenPicker) View() string {
	lines := []string{
		style.SubHeaderStyle.Render(p.title),
		p.search.View(),
		"",
	}

	if len(p.tokens) == 0 {
		lines = append(lines, style.MutedStyle.Render("No tokens found"))
	}

	end := p.offset + p.rows
	if end > len(p.tokens) {
		end = len(p.tokens)
	}
	inner := p.width - 8
	for i := p.offset; i < end; i++ {
		t := p.tokens[i]
		marker := "  "
		if t.Symbol == p.current {
			marker = "• "
		}
		price := "$" + p.formatter.PriceDecimal(t.USDPrice)
		gap := inner - len(marker) - len(t.Symbol) - len(price)
		if gap < 1 {
			gap = 1
		}
		row := marker + t.Symbol + strings.Repeat(" ", gap) + p.priceStyle.Render(price)
		if i == p.cursor {
			lines = append(lines, p.selectedStyle.Render(marker+t.Symbol+strings.Repeat(" ", gap)+price))
			continue
		}
		lines = append(lines, p.itemStyle.Render(row))
	}

	if len(p.tokens) > p.rows {
		lines = append(lines, style.MutedStyle.Render(fmt.Sprintf("%d/%d", p.cursor+1, len(p.tokens))))
	}

	return p.container.Width(p.width).Render(strings.Join(lines, "\n"))
}
