// Package session drives one swap form: it loads the catalog, debounces
// user input into the conversion engine and submits confirmed swaps.
package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/rovshanmuradov/token-swap/internal/conversion"
	"github.com/rovshanmuradov/token-swap/internal/events"
	"github.com/rovshanmuradov/token-swap/internal/export"
	"github.com/rovshanmuradov/token-swap/internal/format"
	"github.com/rovshanmuradov/token-swap/internal/numeric"
	"github.com/rovshanmuradov/token-swap/internal/schedule"
	"github.com/rovshanmuradov/token-swap/internal/token"
	"github.com/rovshanmuradov/token-swap/internal/transaction"
)

var (
	// ErrBusy is returned by Confirm while a submission is in flight.
	ErrBusy = errors.New("a swap is already being submitted")
	// ErrNotStarted is returned before Start has loaded a catalog.
	ErrNotStarted = errors.New("session not started")
	// ErrAbandoned is returned by Confirm when ctx ends before the
	// submission settles. The outcome is unknown and nothing is recorded.
	ErrAbandoned = errors.New("stopped waiting for swap outcome")
)

const (
	failureMessage   = "Transaction failed. Please try again."
	abandonedMessage = "Stopped waiting for the result. The swap may still complete."
)

// CatalogLoader supplies the token catalog.
type CatalogLoader interface {
	Load(ctx context.Context) token.Catalog
}

// Submitter performs a swap.
type Submitter interface {
	Submit(ctx context.Context) (transaction.Receipt, error)
}

// Journal keeps a durable copy of every settled swap.
type Journal interface {
	Append(record export.Record) error
}

// Config wires a Driver. Loader and Submitter are required.
type Config struct {
	Loader         CatalogLoader
	Submitter      Submitter
	Numeric        *numeric.Engine
	Scheduler      schedule.Scheduler
	Preferences    token.Preferences
	SampleAmounts  map[string]string
	AmountDebounce time.Duration
	SearchDebounce time.Duration
	Bus            *events.Bus
	Journal        Journal
	Logger         *zap.Logger
	// OnChange is called, without locks held, after every visible change.
	OnChange func()
}

// Notice is the outcome banner of the last submission.
type Notice struct {
	Success bool
	// Pending is set when the outcome was not observed.
	Pending bool
	Title   string
	Text    string
}

// Driver serializes every engine mutation behind one mutex so debounced
// callbacks and UI calls never interleave.
type Driver struct {
	cfg       Config
	logger    *zap.Logger
	formatter *format.Formatter

	amountDebounce *schedule.Debouncer
	searchDebounce map[conversion.Side]*schedule.Debouncer

	mu         sync.Mutex
	engine     *conversion.Engine
	catalog    token.Catalog
	started    bool
	typed      string
	hasTyped   bool
	search     map[conversion.Side]string
	submitting bool
	notice     *Notice
	history    []export.Record
}

// New validates cfg and builds an idle Driver.
func New(cfg Config) (*Driver, error) {
	if cfg.Loader == nil || cfg.Submitter == nil {
		return nil, errors.New("session: loader and submitter are required")
	}
	if cfg.Numeric == nil {
		cfg.Numeric = numeric.Default()
	}
	if cfg.Scheduler == nil {
		cfg.Scheduler = schedule.RealScheduler{}
	}
	if cfg.SampleAmounts == nil {
		cfg.SampleAmounts = token.DefaultSampleAmounts()
	}
	if len(cfg.Preferences.From) == 0 && len(cfg.Preferences.To) == 0 {
		cfg.Preferences = token.DefaultPreferences()
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}

	formatter := format.New(cfg.Numeric)
	return &Driver{
		cfg:            cfg,
		logger:         cfg.Logger.Named("session"),
		formatter:      formatter,
		amountDebounce: schedule.NewDebouncer(cfg.Scheduler, cfg.AmountDebounce),
		searchDebounce: map[conversion.Side]*schedule.Debouncer{
			conversion.From: schedule.NewDebouncer(cfg.Scheduler, cfg.SearchDebounce),
			conversion.To:   schedule.NewDebouncer(cfg.Scheduler, cfg.SearchDebounce),
		},
		engine: conversion.New(cfg.Numeric, formatter),
		search: make(map[conversion.Side]string),
	}, nil
}

func (d *Driver) changed() {
	if d.cfg.OnChange != nil {
		d.cfg.OnChange()
	}
}

func (d *Driver) publish(e events.Event) {
	if d.cfg.Bus == nil {
		return
	}
	if err := d.cfg.Bus.Publish(e); err != nil {
		d.logger.Debug("Event not published", zap.String("event_type", string(e.Type())), zap.Error(err))
	}
}

// Start loads the catalog, picks the default pair and seeds the sample
// amount for the source token.
func (d *Driver) Start(ctx context.Context) error {
	catalog := d.cfg.Loader.Load(ctx)
	if err := ctx.Err(); err != nil {
		return err
	}

	d.mu.Lock()
	d.catalog = catalog
	from, to := token.SelectDefaultPair(catalog, d.cfg.Preferences)
	d.engine.SelectToken(conversion.From, from)
	d.engine.SelectToken(conversion.To, to)
	d.engine.SetSampleAmount(d.cfg.SampleAmounts)
	d.started = true
	d.mu.Unlock()

	d.logger.Info("Session started",
		zap.Int("tokens", catalog.Len()),
		zap.String("pair", pairName(from, to)))
	d.publish(events.CatalogLoadedEvent{
		BaseEvent: events.NewBase(events.CatalogLoaded),
		Tokens:    catalog.Len(),
		Symbols:   catalog.Symbols(),
	})
	d.changed()
	return nil
}

// Refresh reloads the catalog and reprices the current pair. Selections
// survive when their symbols are still listed; otherwise defaults apply.
func (d *Driver) Refresh(ctx context.Context) error {
	catalog := d.cfg.Loader.Load(ctx)
	if err := ctx.Err(); err != nil {
		return err
	}

	d.mu.Lock()
	state := d.engine.State()
	defFrom, defTo := token.SelectDefaultPair(catalog, d.cfg.Preferences)
	d.engine.SelectToken(conversion.From, reselect(catalog, state.FromToken, defFrom))
	d.engine.SelectToken(conversion.To, reselect(catalog, state.ToToken, defTo))
	d.catalog = catalog
	d.started = true
	d.mu.Unlock()

	d.logger.Debug("Catalog refreshed", zap.Int("tokens", catalog.Len()))
	d.changed()
	return nil
}

func reselect(c token.Catalog, current, fallback *token.Token) *token.Token {
	if current != nil {
		if t, ok := c.Find(current.Symbol); ok {
			return t
		}
	}
	return fallback
}

// InputAmount records typed text and applies it after the amount debounce.
func (d *Driver) InputAmount(raw string) {
	d.mu.Lock()
	d.typed = raw
	d.hasTyped = true
	d.mu.Unlock()

	d.amountDebounce.Trigger(func() {
		d.applyAmount(raw)
	})
}

func (d *Driver) applyAmount(raw string) {
	d.mu.Lock()
	err := d.engine.Dispatch(conversion.SetAmountCommand{Raw: raw})
	if d.typed == raw {
		d.hasTyped = false
	}
	state := d.engine.State()
	d.mu.Unlock()

	if err != nil {
		d.logger.Debug("Amount rejected", zap.String("amount", state.FromAmountText), zap.Error(err))
	} else if state.ToAmountText != "" {
		d.logger.Debug("Quote refreshed",
			zap.String("pair", pairName(state.FromToken, state.ToToken)),
			zap.String("amount", state.FromAmountText),
			zap.String("output", d.formatter.Amount(state.ToAmountText)))
	}
	d.changed()
}

// FlushInput applies any pending typed amount immediately.
func (d *Driver) FlushInput() {
	d.amountDebounce.Flush()
}

// SetSearch filters the token list for side. Clearing the query applies
// at once; other queries wait for the search debounce.
func (d *Driver) SetSearch(side conversion.Side, query string) {
	apply := func() {
		d.mu.Lock()
		d.search[side] = query
		d.mu.Unlock()
		d.changed()
	}

	debouncer := d.searchDebounce[side]
	if query == "" {
		debouncer.Cancel()
		apply()
		return
	}
	debouncer.Trigger(apply)
}

// Search returns the applied query for side.
func (d *Driver) Search(side conversion.Side) string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.search[side]
}

// Filtered lists the catalog tokens matching the applied query for side.
func (d *Driver) Filtered(side conversion.Side) []*token.Token {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.catalog.Filter(d.search[side])
}

// SelectToken picks symbol for side and clears that side's search.
func (d *Driver) SelectToken(side conversion.Side, symbol string) error {
	d.searchDebounce[side].Cancel()

	d.mu.Lock()
	if !d.started {
		d.mu.Unlock()
		return ErrNotStarted
	}
	err := d.engine.Dispatch(conversion.SelectTokenCommand{Side: side, Symbol: symbol, Catalog: d.catalog})
	if err == nil {
		d.search[side] = ""
	}
	d.mu.Unlock()

	if err != nil {
		return err
	}
	d.changed()
	return nil
}

// Swap flips the pair, applying any pending amount first.
func (d *Driver) Swap() {
	d.FlushInput()

	d.mu.Lock()
	_ = d.engine.Dispatch(conversion.SwapCommand{})
	d.mu.Unlock()

	d.changed()
}

// DismissNotice clears the last submission banner.
func (d *Driver) DismissNotice() {
	d.mu.Lock()
	d.notice = nil
	d.mu.Unlock()
	d.changed()
}

// Confirm submits the current quote and waits for the outcome. On
// success the amounts are cleared. ctx bounds the wait only.
func (d *Driver) Confirm(ctx context.Context) (export.Record, error) {
	d.FlushInput()

	d.mu.Lock()
	if d.submitting {
		d.mu.Unlock()
		return export.Record{}, ErrBusy
	}
	if err := d.engine.Validate(); err != nil {
		d.mu.Unlock()
		return export.Record{}, fmt.Errorf("cannot confirm: %w", err)
	}
	details := d.details()
	usd := d.engine.USDValue(conversion.From)
	d.submitting = true
	d.notice = nil
	d.mu.Unlock()

	d.publish(events.SwapSubmittedEvent{BaseEvent: events.NewBase(events.SwapSubmitted), Swap: details})
	d.changed()

	receipt, err := d.cfg.Submitter.Submit(ctx)
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return d.abandon(receipt, err)
	}

	record := export.Record{
		ID:         receipt.ID.String(),
		Timestamp:  receipt.SubmittedAt,
		FromSymbol: details.FromSymbol,
		ToSymbol:   details.ToSymbol,
		FromAmount: details.FromAmount,
		ToAmount:   details.ToAmount,
		Rate:       details.Rate,
		USDValue:   usd.String(),
		DelayMS:    receipt.Delay.Milliseconds(),
		Success:    err == nil,
	}
	if err != nil {
		record.Error = err.Error()
	}

	d.mu.Lock()
	d.submitting = false
	d.history = append(d.history, record)
	if err == nil {
		d.notice = &Notice{
			Success: true,
			Title:   "Swap Successful!",
			Text: fmt.Sprintf("Successfully swapped %s %s for %s %s",
				details.FromAmount, details.FromSymbol, details.ToAmount, details.ToSymbol),
		}
		_ = d.engine.Dispatch(conversion.ResetCommand{})
	} else {
		d.notice = &Notice{Title: "Swap Failed", Text: failureMessage}
	}
	d.mu.Unlock()

	d.journal(record)
	if err != nil {
		d.logger.Debug("Swap recorded", zap.String("tx_id", record.ID), zap.Bool("success", false), zap.Error(err))
		d.publish(events.SwapFailedEvent{
			BaseEvent: events.NewBase(events.SwapFailed),
			TxID:      receipt.ID,
			Swap:      details,
			Error:     err,
		})
	} else {
		d.logger.Debug("Swap recorded", zap.String("tx_id", record.ID), zap.Bool("success", true), zap.String("pair", record.Pair()))
		d.publish(events.SwapSucceededEvent{
			BaseEvent: events.NewBase(events.SwapSucceeded),
			TxID:      receipt.ID,
			Swap:      details,
			Delay:     receipt.Delay,
		})
	}
	d.changed()

	return record, err
}

// abandon ends a Confirm whose wait was cut short. The swap stays quoted so
// it can be submitted again; history, journal and outcome events only see
// settled submissions.
func (d *Driver) abandon(receipt transaction.Receipt, err error) (export.Record, error) {
	d.mu.Lock()
	d.submitting = false
	d.notice = &Notice{Pending: true, Title: "Swap Pending", Text: abandonedMessage}
	d.mu.Unlock()

	d.logger.Warn("Stopped waiting for swap outcome",
		zap.String("tx_id", receipt.ID.String()),
		zap.Error(err))
	d.changed()
	return export.Record{}, fmt.Errorf("%w: %w", ErrAbandoned, err)
}

// details captures the displayed quote. Callers hold d.mu.
func (d *Driver) details() events.SwapDetails {
	state := d.engine.State()
	details := events.SwapDetails{
		FromSymbol: state.FromToken.Symbol,
		ToSymbol:   state.ToToken.Symbol,
		FromAmount: d.formatter.Amount(state.FromAmountText),
		ToAmount:   d.formatter.Amount(state.ToAmountText),
	}
	if state.HasRate {
		details.Rate = d.formatter.AmountDecimal(state.ExchangeRate)
	}
	return details
}

func (d *Driver) journal(record export.Record) {
	if d.cfg.Journal == nil {
		return
	}
	if err := d.cfg.Journal.Append(record); err != nil {
		d.logger.Error("Failed to journal swap", zap.String("tx_id", record.ID), zap.Error(err))
	}
}

// History returns a copy of the finished submissions, oldest first.
func (d *Driver) History() []export.Record {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]export.Record(nil), d.history...)
}

// Catalog returns the loaded catalog.
func (d *Driver) Catalog() token.Catalog {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.catalog
}

// Formatter returns the display formatter the session renders with.
func (d *Driver) Formatter() *format.Formatter {
	return d.formatter
}

// Close cancels pending debounced work.
func (d *Driver) Close() {
	d.amountDebounce.Cancel()
	for _, db := range d.searchDebounce {
		db.Cancel()
	}
}

func pairName(from, to *token.Token) string {
	sym := func(t *token.Token) string {
		if t == nil {
			return "?"
		}
		return t.Symbol
	}
	return sym(from) + "/" + sym(to)
}
