// internal/transaction/simulator.go
package transaction

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/rovshanmuradov/token-swap/internal/schedule"
)

// ErrTransactionFailed is the terminal outcome of a failed submission.
// Nothing retries it.
var ErrTransactionFailed = errors.New("transaction failed")

// Outcome of a submission.
type Outcome string

const (
	OutcomeSuccess Outcome = "success"
	OutcomeFailed  Outcome = "failed"
)

// Defaults match the delay and failure odds of the hosted demo.
const (
	DefaultMinDelay    = 2 * time.Second
	DefaultMaxDelay    = 3 * time.Second
	DefaultFailureRate = 0.1
)

// Receipt describes one finished submission.
type Receipt struct {
	ID          uuid.UUID
	SubmittedAt time.Time
	CompletedAt time.Time
	Delay       time.Duration
	Outcome     Outcome
}

// Config configures a Simulator. Zero delays fall back to the defaults.
// FailureRate is taken as given, so zero never fails.
type Config struct {
	MinDelay    time.Duration
	MaxDelay    time.Duration
	FailureRate float64

	Scheduler  schedule.Scheduler
	Rand       rand.Source
	Registerer prometheus.Registerer
	Logger     *zap.Logger
}

func (c *Config) setDefaults() {
	if c.MinDelay == 0 && c.MaxDelay == 0 {
		c.MinDelay = DefaultMinDelay
		c.MaxDelay = DefaultMaxDelay
	}
	if c.Scheduler == nil {
		c.Scheduler = schedule.RealScheduler{}
	}
	if c.Rand == nil {
		c.Rand = rand.NewPCG(uint64(time.Now().UnixNano()), 0x5eed)
	}
	if c.Logger == nil {
		c.Logger = zap.NewNop()
	}
}

func (c *Config) validate() error {
	if c.MinDelay < 0 || c.MaxDelay < c.MinDelay {
		return fmt.Errorf("invalid delay range [%s, %s]", c.MinDelay, c.MaxDelay)
	}
	if c.FailureRate < 0 || c.FailureRate > 1 {
		return fmt.Errorf("failure rate %.3f outside [0, 1]", c.FailureRate)
	}
	return nil
}

// Simulator stands in for a swap submission: it waits a random delay and
// fails with a fixed probability.
type Simulator struct {
	cfg     Config
	metrics *Metrics
	logger  *zap.Logger

	mu  sync.Mutex
	rnd *rand.Rand
}

// NewSimulator validates cfg and registers the simulator metrics.
func NewSimulator(cfg Config) (*Simulator, error) {
	cfg.setDefaults()
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("transaction simulator: %w", err)
	}
	return &Simulator{
		cfg:     cfg,
		metrics: NewMetrics(cfg.Registerer),
		logger:  cfg.Logger.Named("transaction"),
		rnd:     rand.New(cfg.Rand),
	}, nil
}

type result struct {
	receipt Receipt
	err     error
}

// Submit starts a simulated transaction and waits for it. The delay itself
// is never cancelled: if ctx ends first Submit returns ctx.Err() and the
// transaction still completes and is counted in the background.
func (s *Simulator) Submit(ctx context.Context) (Receipt, error) {
	receipt := Receipt{
		ID:          uuid.New(),
		SubmittedAt: time.Now(),
		Delay:       s.drawDelay(),
	}
	logger := s.logger.With(
		zap.String("tx_id", receipt.ID.String()),
		zap.Duration("delay", receipt.Delay),
	)
	logger.Debug("Submitting swap")
	s.metrics.started()

	done := make(chan result, 1)
	s.cfg.Scheduler.AfterFunc(receipt.Delay, func() {
		r := receipt
		r.CompletedAt = time.Now()
		r.Outcome = OutcomeSuccess
		var err error
		if s.drawFailure() {
			r.Outcome = OutcomeFailed
			err = ErrTransactionFailed
			logger.Warn("Swap failed")
		} else {
			logger.Info("Swap confirmed")
		}
		s.metrics.finished(r.Outcome, r.Delay)
		done <- result{receipt: r, err: err}
	})

	select {
	case r := <-done:
		return r.receipt, r.err
	case <-ctx.Done():
		logger.Debug("Stopped waiting for swap", zap.Error(ctx.Err()))
		return receipt, ctx.Err()
	}
}

func (s *Simulator) drawDelay() time.Duration {
	span := int64(s.cfg.MaxDelay - s.cfg.MinDelay)
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cfg.MinDelay + time.Duration(s.rnd.Int64N(span+1))
}

func (s *Simulator) drawFailure() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rnd.Float64() < s.cfg.FailureRate
}
