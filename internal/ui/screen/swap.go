// internal/ui/screen/swap.go
package screen

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/rovshanmuradov/token-swap/internal/conversion"
	"github.com/rovshanmuradov/token-swap/internal/input"
	"github.com/rovshanmuradov/token-swap/internal/session"
	"github.com/rovshanmuradov/token-swap/internal/token"
	"github.com/rovshanmuradov/token-swap/internal/ui"
	"github.com/rovshanmuradov/token-swap/internal/ui/component"
	"github.com/rovshanmuradov/token-swap/internal/ui/router"
	"github.com/rovshanmuradov/token-swap/internal/ui/style"
)

type field int

const (
	fieldFromToken field = iota
	fieldAmount
	fieldToToken
	fieldButton
	fieldCount
)

// SwapScreen is the conversion form.
type SwapScreen struct {
	ctx    context.Context
	deps   Deps
	keyMap ui.KeyMap
	width  int
	height int

	header  *component.StatusHeader
	helpBar *component.HelpBar
	logs    *component.CompactLogViewer
	picker  *component.TokenPicker
	amount  textinput.Model

	focus      field
	picking    bool
	pickerSide conversion.Side
	snap       session.Snapshot
	flash      string
	started    bool
}

// NewSwapScreen creates the swap form. ctx bounds catalog loads and swap
// submissions started from it.
func NewSwapScreen(ctx context.Context, deps Deps) *SwapScreen {
	keyMap := ui.DefaultKeyMap()

	amount := textinput.New()
	amount.Placeholder = "0.0"
	amount.Prompt = ""
	amount.CharLimit = 64

	s := &SwapScreen{
		ctx:     ctx,
		deps:    deps,
		keyMap:  keyMap,
		header:  component.NewStatusHeader("⇄ Token Swap"),
		helpBar: component.NewHelpBar().SetKeyBindings(keyMap.ContextualHelp(ui.RouteSwap)),
		logs:    component.NewCompactLogViewer(deps.logSource(), "Recent Logs", 50),
		picker:  component.NewTokenPicker(deps.formatter()),
		amount:  amount,
		focus:   fieldAmount,
	}
	s.logs.SetVisible(deps.Logs != nil)
	s.amount.Focus()
	return s
}

// Init loads the catalog the first time the screen is shown.
func (s *SwapScreen) Init() tea.Cmd {
	s.sync()
	if s.started {
		return textinput.Blink
	}
	s.started = true
	driver, ctx := s.deps.Driver, s.ctx
	return tea.Batch(textinput.Blink, func() tea.Msg {
		return ui.RefreshDoneMsg{Err: driver.Start(ctx)}
	})
}

// SetSize sets the screen dimensions
func (s *SwapScreen) SetSize(width, height int) {
	s.width = width
	s.height = height

	formWidth := style.AdaptiveWidth(width, 55)
	s.header.SetWidth(width)
	s.helpBar.SetWidth(width)
	s.picker.SetSize(formWidth, 8)
	s.amount.Width = formWidth - 24
	logsWidth := width - formWidth - 2
	if width < 80 {
		logsWidth = width
	}
	s.logs.SetSize(logsWidth, 14)
}

// Update handles screen updates
func (s *SwapScreen) Update(msg tea.Msg) (router.Screen, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case ui.SessionChangedMsg:
		s.sync()

	case ui.RefreshDoneMsg:
		if msg.Err != nil && !errors.Is(msg.Err, context.Canceled) {
			s.flash = "Refresh failed: " + msg.Err.Error()
		}
		s.header.SetCatalog(s.deps.Driver.Catalog().Len(), time.Now())
		s.sync()

	case ui.SwapResultMsg:
		s.sync()
		s.flash = ""
		if msg.Err != nil && s.snap.Notice == nil {
			// Rejected before submission; there is no outcome dialog.
			s.flash = msg.Err.Error()
		}

	case tea.KeyMsg:
		cmd = s.handleKey(msg)
		s.sync()
	}

	s.logs.Refresh()
	return s, cmd
}

func (s *SwapScreen) handleKey(msg tea.KeyMsg) tea.Cmd {
	if key.Matches(msg, s.keyMap.Quit) {
		return tea.Quit
	}

	// The outcome dialog is modal: enter or esc closes it.
	if s.snap.Notice != nil {
		if msg.Type == tea.KeyEnter || msg.Type == tea.KeyEsc {
			s.deps.Driver.DismissNotice()
		}
		return nil
	}

	if s.picking {
		return s.handlePickerKey(msg)
	}

	switch {
	case key.Matches(msg, s.keyMap.History):
		return ui.Navigate(ui.RouteHistory)
	case key.Matches(msg, s.keyMap.Logs):
		return ui.Navigate(ui.RouteLogs)
	case key.Matches(msg, s.keyMap.LogsPane):
		s.logs.SetVisible(!s.logs.IsVisible() && s.deps.Logs != nil)
		return nil
	case key.Matches(msg, s.keyMap.Tab), key.Matches(msg, s.keyMap.Down):
		s.setFocus((s.focus + 1) % fieldCount)
		return nil
	case key.Matches(msg, s.keyMap.ShiftTab), key.Matches(msg, s.keyMap.Up):
		s.setFocus((s.focus + fieldCount - 1) % fieldCount)
		return nil
	case key.Matches(msg, s.keyMap.Flip):
		s.flash = ""
		s.deps.Driver.Swap()
		return nil
	case key.Matches(msg, s.keyMap.Refresh):
		s.flash = ""
		driver, ctx := s.deps.Driver, s.ctx
		return func() tea.Msg {
			return ui.RefreshDoneMsg{Err: driver.Refresh(ctx)}
		}
	case key.Matches(msg, s.keyMap.Confirm):
		return s.confirm()
	}

	switch s.focus {
	case fieldFromToken, fieldToToken:
		if key.Matches(msg, s.keyMap.Pick) {
			return s.openPicker()
		}
	case fieldButton:
		if key.Matches(msg, s.keyMap.Enter) {
			return s.confirm()
		}
	case fieldAmount:
		if key.Matches(msg, s.keyMap.Enter) {
			s.deps.Driver.FlushInput()
			return nil
		}
		return s.editAmount(msg)
	}
	return nil
}

// editAmount passes allowed keys to the amount field and forwards the
// text to the session, which applies it after the debounce.
func (s *SwapScreen) editAmount(msg tea.KeyMsg) tea.Cmd {
	if msg.Type == tea.KeyRunes {
		// Pasted text arrives as one message; filter it rune by rune.
		current := s.amount.Value()
		var kept []rune
		for _, r := range msg.Runes {
			if input.AllowKey(string(r), current+string(kept)) {
				kept = append(kept, r)
			}
		}
		if len(kept) == 0 {
			return nil
		}
		msg.Runes = kept
	} else if !input.AllowKey(msg.String(), s.amount.Value()) {
		return nil
	}

	before := s.amount.Value()
	var cmd tea.Cmd
	s.amount, cmd = s.amount.Update(msg)
	if after := s.amount.Value(); after != before {
		s.flash = ""
		s.deps.Driver.InputAmount(after)
	}
	return cmd
}

func (s *SwapScreen) openPicker() tea.Cmd {
	s.picking = true
	s.pickerSide = conversion.From
	title := "Select source token"
	current := s.snap.State.FromToken
	if s.focus == fieldToToken {
		s.pickerSide = conversion.To
		title = "Select destination token"
		current = s.snap.State.ToToken
	}

	s.deps.Driver.SetSearch(s.pickerSide, "")
	cmd := s.picker.Open(title, symbolOf(current))
	s.picker.SetTokens(s.deps.Driver.Filtered(s.pickerSide))
	return cmd
}

func (s *SwapScreen) handlePickerKey(msg tea.KeyMsg) tea.Cmd {
	res, cmd := s.picker.Update(msg)
	if res.QueryChanged {
		s.deps.Driver.SetSearch(s.pickerSide, res.Query)
	}
	if res.Chosen != "" {
		if err := s.deps.Driver.SelectToken(s.pickerSide, res.Chosen); err != nil {
			s.flash = err.Error()
		}
	}
	if res.Closed {
		s.picking = false
		s.picker.Close()
		s.deps.Driver.SetSearch(s.pickerSide, "")
	}
	return cmd
}

func (s *SwapScreen) confirm() tea.Cmd {
	s.deps.Driver.FlushInput()
	if !s.deps.Driver.Snapshot().CanConfirm {
		return nil
	}
	driver, ctx := s.deps.Driver, s.ctx
	return func() tea.Msg {
		record, err := driver.Confirm(ctx)
		return ui.SwapResultMsg{Record: record, Err: err}
	}
}

func (s *SwapScreen) setFocus(f field) {
	s.focus = f
	if f == fieldAmount {
		s.amount.Focus()
	} else {
		s.amount.Blur()
	}
}

// sync pulls a fresh snapshot. The amount field takes the session's
// sanitized text once no typed input is pending.
func (s *SwapScreen) sync() {
	s.snap = s.deps.Driver.Snapshot()
	if !s.snap.PendingInput && s.amount.Value() != s.snap.State.FromAmountText {
		s.amount.SetValue(s.snap.State.FromAmountText)
		s.amount.CursorEnd()
	}
	if s.picking {
		s.picker.SetTokens(s.deps.Driver.Filtered(s.pickerSide))
	}

	var ok, failed int
	for _, r := range s.deps.Driver.History() {
		if r.Success {
			ok++
		} else {
			failed++
		}
	}
	s.header.SetTotals(ok, failed)
	s.header.SetSubmitting(s.snap.Submitting)
}

// View renders the swap screen
func (s *SwapScreen) View() string {
	if s.width == 0 || s.height == 0 {
		return "Loading..."
	}

	var body string
	switch {
	case s.snap.Notice != nil:
		body = s.renderNotice(*s.snap.Notice)
	case s.picking:
		body = s.picker.View()
	default:
		body = s.renderForm()
	}

	if s.logs.IsVisible() {
		body = style.AdaptiveJoinHorizontal(s.width, body, s.logs.View())
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		s.header.View(),
		body,
		s.helpBar.View(),
	)
}

func (s *SwapScreen) renderForm() string {
	snap := s.snap
	if !snap.Started {
		return style.PanelStyle.Render(style.MutedStyle.Render("Loading prices..."))
	}

	fromSymbol := symbolOf(snap.State.FromToken)
	toSymbol := symbolOf(snap.State.ToToken)

	var lines []string
	lines = append(lines, style.FormLabelStyle.Render("You pay"))
	lines = append(lines, s.renderTokenField(fieldFromToken, fromSymbol)+"  "+s.renderAmountField())
	lines = append(lines, style.MutedStyle.Render("≈ "+snap.FromUSD))
	if snap.FromError != nil {
		lines = append(lines, style.FormErrorStyle.Render(amountError(snap.FromError)))
	}

	lines = append(lines, "", style.MutedStyle.Render("        ⇅  ctrl+s"), "")

	lines = append(lines, style.FormLabelStyle.Render("You receive"))
	output := snap.ToDisplay
	if output == "" {
		output = style.MutedStyle.Render("0.0")
	} else {
		output = style.AmountStyle.Render(output)
	}
	lines = append(lines, s.renderTokenField(fieldToToken, toSymbol)+"  "+output)
	lines = append(lines, style.MutedStyle.Render("≈ "+snap.ToUSD))

	if snap.RateLine != "" {
		lines = append(lines, "", style.InfoStyle.Render(snap.RateLine))
	}

	lines = append(lines, "", s.renderButton())
	if s.flash != "" {
		lines = append(lines, style.WarningStyle.Render(s.flash))
	}

	panel := style.PanelStyle
	if s.focus != fieldButton {
		panel = style.ActivePanelStyle
	}
	return panel.Width(style.AdaptiveWidth(s.width, 55)).Render(strings.Join(lines, "\n"))
}

func (s *SwapScreen) renderTokenField(f field, symbol string) string {
	if symbol == "" {
		symbol = "Select"
	}
	text := "[" + symbol + " ▾]"
	if s.focus == f {
		return style.ButtonActiveStyle.Render(text)
	}
	return style.ButtonStyle.Render(text)
}

func (s *SwapScreen) renderAmountField() string {
	view := s.amount.View()
	if s.focus == fieldAmount {
		return style.AmountStyle.Render(view)
	}
	return view
}

func (s *SwapScreen) renderButton() string {
	label := s.snap.ButtonLabel()
	switch {
	case !s.snap.CanConfirm:
		return style.ButtonDisabledStyle.Render(label)
	case s.focus == fieldButton:
		return style.ButtonActiveStyle.Render("▶ " + label)
	default:
		return style.ButtonStyle.Render(label)
	}
}

func (s *SwapScreen) renderNotice(n session.Notice) string {
	outcome, title := style.OutcomeFailed, style.ErrorStyle.Render("✗ "+n.Title)
	switch {
	case n.Success:
		outcome, title = style.OutcomeSettled, style.SuccessStyle.Render("✓ "+n.Title)
	case n.Pending:
		outcome, title = style.OutcomePending, style.WarningStyle.Render("… "+n.Title)
	}
	body := lipgloss.JoinVertical(lipgloss.Left,
		title,
		"",
		n.Text,
		"",
		style.MutedStyle.Render("enter to close"),
	)
	return style.Modal(outcome).Render(body)
}

func amountError(err error) string {
	if errors.Is(err, input.ErrValidationFailed) {
		return "Please enter a valid number"
	}
	return err.Error()
}

func symbolOf(t *token.Token) string {
	if t == nil {
		return ""
	}
	return t.Symbol
}
