// internal/app/service.go
package app

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/rovshanmuradov/token-swap/internal/config"
	"github.com/rovshanmuradov/token-swap/internal/events"
	"github.com/rovshanmuradov/token-swap/internal/export"
	"github.com/rovshanmuradov/token-swap/internal/metrics"
	"github.com/rovshanmuradov/token-swap/internal/numeric"
	"github.com/rovshanmuradov/token-swap/internal/schedule"
	"github.com/rovshanmuradov/token-swap/internal/session"
	"github.com/rovshanmuradov/token-swap/internal/token"
	"github.com/rovshanmuradov/token-swap/internal/transaction"
)

const journalFlushInterval = 5 * time.Second

// ServiceConfig configures a Service. Config and Logger are required.
type ServiceConfig struct {
	Config *config.Config
	Logger *zap.Logger

	// Optional overrides, mostly for tests.
	Feed      token.FeedClient
	Scheduler schedule.Scheduler
	Registry  *prometheus.Registry

	// OnChange is forwarded to the session driver.
	OnChange func()
}

// Service wires the swap session to its collaborators: price feed,
// transaction simulator, event bus, metrics, journal and exporter.
type Service struct {
	cfg      *config.Config
	logger   *zap.Logger
	numeric  *numeric.Engine
	bus      *events.Bus
	metrics  *metrics.Collector
	registry *prometheus.Registry
	exporter *export.ReceiptExporter
	driver   *session.Driver
	shutdown *ShutdownHandler
}

// NewService builds every component described by sc.Config.
func NewService(sc ServiceConfig) (*Service, error) {
	if sc.Config == nil {
		return nil, errors.New("app: config is required")
	}
	if sc.Logger == nil {
		return nil, errors.New("app: logger is required")
	}
	cfg := sc.Config
	log := sc.Logger.Named("app")

	nc, err := cfg.NumericConfig()
	if err != nil {
		return nil, err
	}
	engine, err := numeric.New(nc)
	if err != nil {
		return nil, err
	}

	registry := sc.Registry
	if registry == nil {
		registry = prometheus.NewRegistry()
	}
	scheduler := sc.Scheduler
	if scheduler == nil {
		scheduler = schedule.RealScheduler{}
	}

	feed := sc.Feed
	if feed == nil {
		feed = token.NewHTTPFeed(cfg.PriceFeedURL, cfg.FeedTimeout())
	}
	loader := token.NewLoader(token.LoaderConfig{
		Feed:        feed,
		IconBaseURL: cfg.IconBaseURL,
		MaxTries:    uint(cfg.FeedRetries) + 1,
		Logger:      sc.Logger,
	})

	simulator, err := transaction.NewSimulator(transaction.Config{
		MinDelay:    cfg.TxMinDelay(),
		MaxDelay:    cfg.TxMaxDelay(),
		FailureRate: cfg.TxFailureRate,
		Scheduler:   scheduler,
		Registerer:  registry,
		Logger:      sc.Logger,
	})
	if err != nil {
		return nil, err
	}

	s := &Service{
		cfg:      cfg,
		logger:   log,
		numeric:  engine,
		registry: registry,
		exporter: export.NewReceiptExporter(sc.Logger),
		shutdown: NewShutdownHandler(log, 0),
	}

	s.bus = events.NewBus(sc.Logger, 0)
	s.shutdown.AddFunc("event_bus", func() error {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		return s.bus.Shutdown(ctx)
	})

	s.metrics = metrics.NewCollector(registry, sc.Logger)
	s.metrics.Attach(s.bus)
	s.shutdown.AddFunc("metrics", func() error {
		s.metrics.Detach()
		return nil
	})

	var journal session.Journal
	if cfg.JournalFile != "" {
		w, err := export.OpenJournal(cfg.JournalFile, journalFlushInterval, sc.Logger)
		if err != nil {
			_ = s.shutdown.Shutdown(context.Background())
			return nil, fmt.Errorf("open journal: %w", err)
		}
		s.shutdown.Add("journal", w)
		journal = w
	}

	s.driver, err = session.New(session.Config{
		Loader:         loader,
		Submitter:      simulator,
		Numeric:        engine,
		Scheduler:      scheduler,
		Preferences:    cfg.Preferences(),
		SampleAmounts:  cfg.SampleAmounts,
		AmountDebounce: cfg.AmountDebounce(),
		SearchDebounce: cfg.SearchDebounce(),
		Bus:            s.bus,
		Journal:        journal,
		Logger:         sc.Logger,
		OnChange:       sc.OnChange,
	})
	if err != nil {
		_ = s.shutdown.Shutdown(context.Background())
		return nil, err
	}
	s.shutdown.AddFunc("session", func() error {
		s.driver.Close()
		return nil
	})

	log.Debug("Service initialized",
		zap.String("feed", cfg.PriceFeedURL),
		zap.Bool("journal", journal != nil))
	return s, nil
}

func (s *Service) Driver() *session.Driver { return s.driver }
func (s *Service) Numeric() *numeric.Engine { return s.numeric }
func (s *Service) Exporter() *export.ReceiptExporter { return s.exporter }
func (s *Service) Registry() *prometheus.Registry { return s.registry }
func (s *Service) Bus() *events.Bus { return s.bus }
func (s *Service) Config() *config.Config { return s.cfg }

// ServeMetrics exposes the registry on addr at /metrics and returns the
// bound address. The listener is closed by Close.
func (s *Service) ServeMetrics(addr string) (string, error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return "", fmt.Errorf("metrics listener: %w", err)
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{}))
	srv := &http.Server{
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("Metrics server stopped", zap.Error(err))
		}
	}()
	s.shutdown.AddFunc("metrics_server", func() error {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		return srv.Shutdown(ctx)
	})

	bound := ln.Addr().String()
	s.logger.Info("Serving metrics", zap.String("addr", bound))
	return bound, nil
}

// Close stops the session and releases everything NewService opened.
func (s *Service) Close(ctx context.Context) error {
	return s.shutdown.Shutdown(ctx)
}
