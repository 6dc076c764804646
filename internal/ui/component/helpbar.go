package component

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/lipgloss"
	"github.com/rovshanmuradov/token-swap/internal/ui/style"
)

const helpSeparator = " • "

// HelpBar lists the shortcuts of the current screen under its content.
// The full form wraps onto as many lines as it needs; the compact form
// shows keys only and keeps to a single line.
type HelpBar struct {
	bindings []key.Binding
	width    int
	compact  bool

	keyStyle  lipgloss.Style
	descStyle lipgloss.Style
	separator string
	frame     lipgloss.Style
}

func NewHelpBar() *HelpBar {
	palette := style.DefaultPalette()
	faint := lipgloss.NewStyle().Foreground(palette.InkFaint)
	return &HelpBar{
		width:     80,
		keyStyle:  lipgloss.NewStyle().Foreground(palette.Focus).Bold(true),
		descStyle: faint,
		separator: faint.Render(helpSeparator),
		frame:     lipgloss.NewStyle().Padding(0, 1).Margin(1, 0, 0, 0),
	}
}

func (h *HelpBar) SetKeyBindings(bindings []key.Binding) *HelpBar {
	h.bindings = bindings
	return h
}

func (h *HelpBar) SetWidth(width int) *HelpBar {
	h.width = width
	return h
}

func (h *HelpBar) SetCompact(compact bool) *HelpBar {
	h.compact = compact
	return h
}

func (h *HelpBar) View() string {
	items := h.items()
	if len(items) == 0 {
		return ""
	}
	// Two columns of padding on each side.
	lines := packLines(items, h.width-4, h.separator)
	if h.compact {
		lines = lines[:1]
	}
	return h.frame.Width(h.width).Render(strings.Join(lines, "\n"))
}

// items renders the enabled bindings. Bindings without a caption are
// skipped, and so are bindings without a description in the full form.
func (h *HelpBar) items() []string {
	items := make([]string, 0, len(h.bindings))
	for _, b := range h.bindings {
		caption := keyCaption(b)
		if !b.Enabled() || caption == "" {
			continue
		}
		if h.compact {
			items = append(items, h.keyStyle.Render(caption))
			continue
		}
		desc := b.Help().Desc
		if desc == "" {
			continue
		}
		items = append(items, h.keyStyle.Render(caption)+" "+h.descStyle.Render(desc))
	}
	return items
}

// keyCaption prefers the help key ("F12") over the raw key ("f12").
func keyCaption(b key.Binding) string {
	if k := b.Help().Key; k != "" {
		return k
	}
	if keys := b.Keys(); len(keys) > 0 {
		return keys[0]
	}
	return ""
}

// packLines fills lines greedily. An item wider than width gets a line
// of its own rather than being cut.
func packLines(items []string, width int, sep string) []string {
	var lines []string
	line := ""
	for _, item := range items {
		switch {
		case line == "":
			line = item
		case lipgloss.Width(line+sep+item) <= width:
			line += sep + item
		default:
			lines = append(lines, line)
			line = item
		}
	}
	if line != "" {
		lines = append(lines, line)
	}
	return lines
}
