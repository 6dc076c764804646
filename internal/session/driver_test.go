package session

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/rovshanmuradov/token-swap/internal/conversion"
	"github.com/rovshanmuradov/token-swap/internal/events"
	"github.com/rovshanmuradov/token-swap/internal/export"
	"github.com/rovshanmuradov/token-swap/internal/format"
	"github.com/rovshanmuradov/token-swap/internal/input"
	"github.com/rovshanmuradov/token-swap/internal/schedule"
	"github.com/rovshanmuradov/token-swap/internal/token"
	"github.com/rovshanmuradov/token-swap/internal/transaction"
)

type stubLoader struct {
	mu      sync.Mutex
	catalog token.Catalog
	calls   int
}

func (l *stubLoader) Load(context.Context) token.Catalog {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.calls++
	return l.catalog
}

func (l *stubLoader) set(c token.Catalog) {
	l.mu.Lock()
	l.catalog = c
	l.mu.Unlock()
}

type stubSubmitter struct {
	err     error
	release chan struct{}
	calls   atomic.Int32
}

func (s *stubSubmitter) Submit(ctx context.Context) (transaction.Receipt, error) {
	s.calls.Add(1)
	if s.release != nil {
		select {
		case <-s.release:
		case <-ctx.Done():
			return transaction.Receipt{}, ctx.Err()
		}
	}
	r := transaction.Receipt{
		ID:          uuid.New(),
		SubmittedAt: time.Now(),
		CompletedAt: time.Now(),
		Delay:       2500 * time.Millisecond,
		Outcome:     transaction.OutcomeSuccess,
	}
	if s.err != nil {
		r.Outcome = transaction.OutcomeFailed
	}
	return r, s.err
}

type memJournal struct {
	mu      sync.Mutex
	records []export.Record
}

func (j *memJournal) Append(record export.Record) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.records = append(j.records, record)
	return nil
}

func (j *memJournal) len() int {
	j.mu.Lock()
	defer j.mu.Unlock()
	return len(j.records)
}

type fixture struct {
	driver    *Driver
	clock     *schedule.ManualScheduler
	loader    *stubLoader
	submitter *stubSubmitter
	journal   *memJournal
	changes   atomic.Int32
}

func newFixture(t *testing.T, mutate ...func(*Config)) *fixture {
	t.Helper()
	f := &fixture{
		clock:     schedule.NewManualScheduler(),
		loader:    &stubLoader{catalog: token.FallbackCatalog(token.DefaultIconBaseURL)},
		submitter: &stubSubmitter{},
		journal:   &memJournal{},
	}
	cfg := Config{
		Loader:         f.loader,
		Submitter:      f.submitter,
		Scheduler:      f.clock,
		AmountDebounce: 300 * time.Millisecond,
		SearchDebounce: 500 * time.Millisecond,
		Journal:        f.journal,
		Logger:         zaptest.NewLogger(t),
		OnChange:       func() { f.changes.Add(1) },
	}
	for _, m := range mutate {
		m(&cfg)
	}
	d, err := New(cfg)
	require.NoError(t, err)
	t.Cleanup(d.Close)
	f.driver = d
	return f
}

func (f *fixture) start(t *testing.T) {
	t.Helper()
	require.NoError(t, f.driver.Start(context.Background()))
}

func TestNewRequiresCollaborators(t *testing.T) {
	_, err := New(Config{})
	assert.Error(t, err)
}

func TestStartSelectsDefaultPair(t *testing.T) {
	f := newFixture(t)
	f.start(t)

	snap := f.driver.Snapshot()
	require.NotNil(t, snap.State.FromToken)
	require.NotNil(t, snap.State.ToToken)
	assert.Equal(t, "ETH", snap.State.FromToken.Symbol)
	assert.Equal(t, "USDC", snap.State.ToToken.Symbol)
	assert.Equal(t, "1", snap.State.FromAmountText)
	assert.Equal(t, "1662.837734", snap.ToDisplay)
	assert.Equal(t, "1 ETH = 1662.837734 USDC", snap.RateLine)
	assert.Equal(t, "$1,645.93", snap.FromUSD)
	assert.True(t, snap.CanConfirm)
	assert.True(t, snap.Started)
	assert.Equal(t, "Confirm Swap", snap.ButtonLabel())
	assert.Positive(t, f.changes.Load())
}

func TestStartCancelled(t *testing.T) {
	f := newFixture(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := f.driver.Start(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	assert.False(t, f.driver.Snapshot().Started)
}

func TestStartPublishesCatalogLoaded(t *testing.T) {
	bus := events.NewBus(zaptest.NewLogger(t), 8)
	t.Cleanup(func() { _ = bus.Shutdown(context.Background()) })

	got := make(chan events.CatalogLoadedEvent, 1)
	bus.SubscribeFunc(events.CatalogLoaded, func(_ context.Context, e events.Event) error {
		got <- e.(events.CatalogLoadedEvent)
		return nil
	})

	f := newFixture(t, func(c *Config) { c.Bus = bus })
	f.start(t)

	select {
	case e := <-got:
		assert.Equal(t, 5, e.Tokens)
		assert.Contains(t, e.Symbols, "BLUR")
	case <-time.After(time.Second):
		t.Fatal("catalog event not delivered")
	}
}

func TestInputAmountIsDebounced(t *testing.T) {
	f := newFixture(t)
	f.start(t)

	f.driver.InputAmount("3")
	f.clock.Advance(100 * time.Millisecond)
	f.driver.InputAmount("2")

	snap := f.driver.Snapshot()
	assert.True(t, snap.PendingInput)
	assert.Equal(t, "2", snap.Typed)
	assert.Equal(t, "1", snap.State.FromAmountText)

	f.clock.Advance(299 * time.Millisecond)
	assert.Equal(t, "1", f.driver.Snapshot().State.FromAmountText)

	f.clock.Advance(time.Millisecond)
	snap = f.driver.Snapshot()
	assert.False(t, snap.PendingInput)
	assert.Equal(t, "2", snap.State.FromAmountText)
	assert.Equal(t, "3325.675468", snap.ToDisplay)
	assert.Equal(t, "$3,291.86", snap.FromUSD)
	assert.Zero(t, f.clock.Pending())
}

func TestInputAmountSanitizesAndReportsErrors(t *testing.T) {
	f := newFixture(t)
	f.start(t)

	f.driver.InputAmount("1,234.5.6abc")
	f.driver.FlushInput()
	assert.Equal(t, "1234.56", f.driver.Snapshot().State.FromAmountText)

	f.driver.InputAmount("")
	f.driver.FlushInput()
	snap := f.driver.Snapshot()
	assert.Empty(t, snap.ToDisplay)
	assert.Equal(t, format.NoUSDValue, snap.FromUSD)
	assert.Equal(t, format.NoUSDValue, snap.ToUSD)
	assert.Empty(t, snap.RateLine)
	assert.False(t, snap.CanConfirm)
	assert.Equal(t, conversion.StatusEnterAmount, snap.Status)

	f.driver.InputAmount("0")
	f.driver.FlushInput()
	snap = f.driver.Snapshot()
	assert.Equal(t, "Enter amount greater than 0", snap.ButtonLabel())
	assert.False(t, snap.CanConfirm)
}

func TestSearchDebounceAndClear(t *testing.T) {
	f := newFixture(t)
	f.start(t)

	f.driver.SetSearch(conversion.To, "us")
	assert.Len(t, f.driver.Filtered(conversion.To), 5)

	f.clock.Advance(500 * time.Millisecond)
	assert.Equal(t, "us", f.driver.Search(conversion.To))
	symbols := func(ts []*token.Token) []string {
		var out []string
		for _, t := range ts {
			out = append(out, t.Symbol)
		}
		return out
	}
	assert.Equal(t, []string{"USDC", "USD"}, symbols(f.driver.Filtered(conversion.To)))
	assert.Len(t, f.driver.Filtered(conversion.From), 5)

	f.driver.SetSearch(conversion.To, "bl")
	f.driver.SetSearch(conversion.To, "")
	assert.Empty(t, f.driver.Search(conversion.To))
	f.clock.Advance(time.Second)
	assert.Empty(t, f.driver.Search(conversion.To))
}

func TestSelectToken(t *testing.T) {
	f := newFixture(t)
	assert.ErrorIs(t, f.driver.SelectToken(conversion.From, "ATOM"), ErrNotStarted)

	f.start(t)
	f.driver.SetSearch(conversion.From, "at")
	f.clock.Advance(500 * time.Millisecond)

	require.NoError(t, f.driver.SelectToken(conversion.From, "ATOM"))
	snap := f.driver.Snapshot()
	assert.Equal(t, "ATOM", snap.State.FromToken.Symbol)
	assert.Empty(t, f.driver.Search(conversion.From))

	err := f.driver.SelectToken(conversion.To, "DOGE")
	assert.ErrorIs(t, err, conversion.ErrUnknownToken)
	assert.Equal(t, "USDC", f.driver.Snapshot().State.ToToken.Symbol)
}

func TestSwapFlushesPendingInput(t *testing.T) {
	f := newFixture(t)
	f.start(t)

	f.driver.InputAmount("2.5")
	f.driver.Swap()

	snap := f.driver.Snapshot()
	assert.Equal(t, "USDC", snap.State.FromToken.Symbol)
	assert.Equal(t, "ETH", snap.State.ToToken.Symbol)
	assert.Equal(t, "4157.094335", snap.State.FromAmountText)
	assert.Equal(t, "2.5", snap.ToDisplay)
	assert.Zero(t, f.clock.Pending())
}

func TestConfirmSuccess(t *testing.T) {
	bus := events.NewBus(zaptest.NewLogger(t), 8)
	t.Cleanup(func() { _ = bus.Shutdown(context.Background()) })
	succeeded := make(chan events.SwapSucceededEvent, 1)
	bus.SubscribeFunc(events.SwapSucceeded, func(_ context.Context, e events.Event) error {
		succeeded <- e.(events.SwapSucceededEvent)
		return nil
	})

	f := newFixture(t, func(c *Config) { c.Bus = bus })
	f.start(t)
	f.driver.InputAmount("2")

	record, err := f.driver.Confirm(context.Background())
	require.NoError(t, err)
	assert.True(t, record.Success)
	assert.Equal(t, "ETH", record.FromSymbol)
	assert.Equal(t, "USDC", record.ToSymbol)
	assert.Equal(t, "2", record.FromAmount)
	assert.Equal(t, "3325.675468", record.ToAmount)
	assert.Equal(t, "1662.837734", record.Rate)
	assert.Equal(t, "3291.86", record.USDValue)
	assert.Equal(t, int64(2500), record.DelayMS)

	snap := f.driver.Snapshot()
	require.NotNil(t, snap.Notice)
	assert.True(t, snap.Notice.Success)
	assert.Equal(t, "Swap Successful!", snap.Notice.Title)
	assert.Equal(t, "Successfully swapped 2 ETH for 3325.675468 USDC", snap.Notice.Text)
	assert.Empty(t, snap.State.FromAmountText)
	assert.Empty(t, snap.State.ToAmountText)
	assert.Equal(t, "ETH", snap.State.FromToken.Symbol)
	assert.False(t, snap.Submitting)

	assert.Equal(t, []string{record.ID}, ids(f.driver.History()))
	require.Len(t, f.journal.records, 1)
	assert.Equal(t, record, f.journal.records[0])

	select {
	case e := <-succeeded:
		assert.Equal(t, record.ID, e.TxID.String())
		assert.Equal(t, "3325.675468", e.Swap.ToAmount)
	case <-time.After(time.Second):
		t.Fatal("success event not delivered")
	}

	f.driver.DismissNotice()
	assert.Nil(t, f.driver.Snapshot().Notice)
}

func TestConfirmFailureKeepsAmounts(t *testing.T) {
	f := newFixture(t)
	f.submitter.err = transaction.ErrTransactionFailed
	f.start(t)

	record, err := f.driver.Confirm(context.Background())
	assert.ErrorIs(t, err, transaction.ErrTransactionFailed)
	assert.False(t, record.Success)
	assert.NotEmpty(t, record.Error)

	snap := f.driver.Snapshot()
	require.NotNil(t, snap.Notice)
	assert.False(t, snap.Notice.Success)
	assert.Equal(t, "Swap Failed", snap.Notice.Title)
	assert.Equal(t, "Transaction failed. Please try again.", snap.Notice.Text)
	assert.Equal(t, "1", snap.State.FromAmountText)
	assert.True(t, snap.CanConfirm)
	assert.Len(t, f.driver.History(), 1)
}

func TestConfirmRejectsInvalidForm(t *testing.T) {
	f := newFixture(t)
	f.start(t)
	f.driver.InputAmount("0")

	_, err := f.driver.Confirm(context.Background())
	assert.ErrorIs(t, err, input.ErrValidationFailed)

	require.NoError(t, f.driver.SelectToken(conversion.To, ""))
	f.driver.InputAmount("1")
	_, err = f.driver.Confirm(context.Background())
	assert.ErrorIs(t, err, conversion.ErrMissingSelection)

	assert.Zero(t, f.submitter.calls.Load())
	assert.Empty(t, f.driver.History())
}

func TestConfirmWhileBusy(t *testing.T) {
	f := newFixture(t)
	f.submitter.release = make(chan struct{})
	f.start(t)

	done := make(chan error, 1)
	go func() {
		_, err := f.driver.Confirm(context.Background())
		done <- err
	}()

	require.Eventually(t, func() bool {
		return f.driver.Snapshot().Submitting
	}, time.Second, time.Millisecond)

	snap := f.driver.Snapshot()
	assert.False(t, snap.CanConfirm)
	assert.Equal(t, "Swapping...", snap.ButtonLabel())

	_, err := f.driver.Confirm(context.Background())
	assert.ErrorIs(t, err, ErrBusy)

	close(f.submitter.release)
	require.NoError(t, <-done)
	assert.Equal(t, int32(1), f.submitter.calls.Load())
}

func TestConfirmAbandonedWhenContextEnds(t *testing.T) {
	bus := events.NewBus(zaptest.NewLogger(t), 8)
	t.Cleanup(func() { _ = bus.Shutdown(context.Background()) })
	var failed atomic.Int32
	bus.SubscribeFunc(events.SwapFailed, func(context.Context, events.Event) error {
		failed.Add(1)
		return nil
	})

	f := newFixture(t, func(c *Config) { c.Bus = bus })
	f.submitter.release = make(chan struct{})
	defer close(f.submitter.release)
	f.start(t)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		_, err := f.driver.Confirm(ctx)
		done <- err
	}()
	require.Eventually(t, func() bool {
		return f.driver.Snapshot().Submitting
	}, time.Second, time.Millisecond)
	cancel()

	var err error
	select {
	case err = <-done:
	case <-time.After(time.Second):
		t.Fatal("Confirm did not return after cancel")
	}
	assert.ErrorIs(t, err, ErrAbandoned)
	assert.ErrorIs(t, err, context.Canceled)
	assert.NotErrorIs(t, err, transaction.ErrTransactionFailed)

	snap := f.driver.Snapshot()
	require.NotNil(t, snap.Notice)
	assert.True(t, snap.Notice.Pending)
	assert.False(t, snap.Notice.Success)
	assert.Equal(t, "Swap Pending", snap.Notice.Title)
	assert.False(t, snap.Submitting)
	assert.Equal(t, "1", snap.State.FromAmountText, "quote kept for a retry")

	assert.Empty(t, f.driver.History())
	assert.Zero(t, f.journal.len())
	assert.Never(t, func() bool { return failed.Load() > 0 }, 50*time.Millisecond, 5*time.Millisecond)
}

func TestConfirmDeadlineIsAbandoned(t *testing.T) {
	f := newFixture(t)
	f.submitter.release = make(chan struct{})
	defer close(f.submitter.release)
	f.start(t)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err := f.driver.Confirm(ctx)
	assert.ErrorIs(t, err, ErrAbandoned)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Empty(t, f.driver.History())
	assert.Zero(t, f.journal.len())
}

func TestConfirmWithSimulator(t *testing.T) {
	clock := schedule.NewManualScheduler()
	sim, err := transaction.NewSimulator(transaction.Config{
		MinDelay:  2 * time.Second,
		MaxDelay:  3 * time.Second,
		Scheduler: clock,
		Logger:    zaptest.NewLogger(t),
	})
	require.NoError(t, err)

	f := newFixture(t, func(c *Config) { c.Submitter = sim })
	f.start(t)

	done := make(chan error, 1)
	go func() {
		_, err := f.driver.Confirm(context.Background())
		done <- err
	}()

	require.Eventually(t, func() bool { return clock.Pending() == 1 }, time.Second, time.Millisecond)
	clock.Advance(3 * time.Second)

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("confirm did not return")
	}
	history := f.driver.History()
	require.Len(t, history, 1)
	assert.GreaterOrEqual(t, history[0].DelayMS, int64(2000))
	assert.LessOrEqual(t, history[0].DelayMS, int64(3000))
}

func TestRefreshKeepsSelection(t *testing.T) {
	f := newFixture(t)
	f.start(t)
	require.NoError(t, f.driver.SelectToken(conversion.From, "ATOM"))

	require.NoError(t, f.driver.Refresh(context.Background()))
	snap := f.driver.Snapshot()
	assert.Equal(t, "ATOM", snap.State.FromToken.Symbol)
	assert.Equal(t, "USDC", snap.State.ToToken.Symbol)
	assert.Equal(t, 2, f.loader.calls)

	f.loader.set(token.NewCatalog(
		token.Token{Symbol: "ETH", Price: dec("2000"), USDPrice: dec("2000")},
		token.Token{Symbol: "USD", Price: dec("1"), USDPrice: dec("1")},
	))
	require.NoError(t, f.driver.Refresh(context.Background()))
	snap = f.driver.Snapshot()
	assert.Equal(t, "ETH", snap.State.FromToken.Symbol)
	assert.Equal(t, "USD", snap.State.ToToken.Symbol)
	assert.Equal(t, "1 ETH = 2000 USD", snap.RateLine)
}

func TestCloseCancelsPendingInput(t *testing.T) {
	f := newFixture(t)
	f.start(t)

	f.driver.InputAmount("5")
	f.driver.Close()
	f.clock.Advance(time.Second)
	assert.Equal(t, "1", f.driver.Snapshot().State.FromAmountText)
}

func TestJournalErrorDoesNotFailConfirm(t *testing.T) {
	f := newFixture(t, func(c *Config) { c.Journal = failingJournal{} })
	f.start(t)

	_, err := f.driver.Confirm(context.Background())
	assert.NoError(t, err)
	assert.Len(t, f.driver.History(), 1)
}

type failingJournal struct{}

func (failingJournal) Append(export.Record) error { return errors.New("disk full") }

func ids(records []export.Record) []string {
	out := make([]string, len(records))
	for i, r := range records {
		out[i] = r.ID
	}
	return out
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}
