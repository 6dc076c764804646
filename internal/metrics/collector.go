// internal/metrics/collector.go
package metrics

import (
	"context"
	"fmt"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/rovshanmuradov/token-swap/internal/events"
)

// Collector turns session events into prometheus metrics.
type Collector struct {
	swaps        *prometheus.CounterVec
	swapDuration *prometheus.HistogramVec
	submitted    prometheus.Counter
	catalogSize  prometheus.Gauge
	catalogLoads prometheus.Counter

	logger *zap.Logger

	mu   sync.Mutex
	subs []events.Subscription
}

// NewCollector creates the collectors and registers them on reg. A nil
// reg uses a private registry.
func NewCollector(reg prometheus.Registerer, logger *zap.Logger) *Collector {
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	c := &Collector{
		swaps: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "token_swap",
				Name:      "swaps_total",
				Help:      "Confirmed swaps by pair and status",
			},
			[]string{"pair", "status"},
		),
		swapDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "token_swap",
				Name:      "swap_duration_seconds",
				Help:      "Time from confirmation to a successful result",
				Buckets:   prometheus.ExponentialBuckets(0.25, 2, 6),
			},
			[]string{"pair"},
		),
		submitted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "token_swap",
			Name:      "swaps_submitted_total",
			Help:      "Swaps handed to the transaction simulator",
		}),
		catalogSize: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "token_swap",
			Name:      "catalog_tokens",
			Help:      "Tokens in the current catalog",
		}),
		catalogLoads: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "token_swap",
			Name:      "catalog_loads_total",
			Help:      "Catalog loads completed",
		}),
		logger: logger.Named("metrics"),
	}

	reg.MustRegister(c.swaps, c.swapDuration, c.submitted, c.catalogSize, c.catalogLoads)
	return c
}

// Attach subscribes the collector to bus. Detach undoes it.
func (c *Collector) Attach(bus *events.Bus) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, t := range []events.EventType{
		events.CatalogLoaded,
		events.SwapSubmitted,
		events.SwapSucceeded,
		events.SwapFailed,
	} {
		c.subs = append(c.subs, bus.SubscribeFunc(t, c.handle))
	}
}

// Detach removes every subscription made by Attach.
func (c *Collector) Detach() {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, s := range c.subs {
		s.Unsubscribe()
	}
	c.subs = nil
}

func (c *Collector) handle(_ context.Context, event events.Event) error {
	switch e := event.(type) {
	case events.CatalogLoadedEvent:
		c.catalogLoads.Inc()
		c.catalogSize.Set(float64(e.Tokens))
	case events.SwapSubmittedEvent:
		c.submitted.Inc()
	case events.SwapSucceededEvent:
		pair := pairLabel(e.Swap)
		c.swaps.WithLabelValues(pair, "success").Inc()
		c.swapDuration.WithLabelValues(pair).Observe(e.Delay.Seconds())
	case events.SwapFailedEvent:
		c.swaps.WithLabelValues(pairLabel(e.Swap), "failed").Inc()
	default:
		return fmt.Errorf("unexpected event %T", event)
	}

	c.logger.Debug("Event recorded", zap.String("event_type", string(event.Type())))
	return nil
}

// Reset clears every metric (useful in tests).
func (c *Collector) Reset() {
	c.swaps.Reset()
	c.swapDuration.Reset()
	c.catalogSize.Set(0)
}

func pairLabel(s events.SwapDetails) string {
	return s.FromSymbol + "/" + s.ToSymbol
}
