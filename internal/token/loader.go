package token

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v5"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// LoaderConfig configures catalog loading.
type LoaderConfig struct {
	Feed          FeedClient
	IconBaseURL   string
	MaxTries      uint
	RetryInterval time.Duration
	Logger        *zap.Logger
}

// Loader fetches the price feed and builds a catalog, falling back to the
// built-in catalog on any failure. Concurrent Load calls share one fetch.
type Loader struct {
	feed          FeedClient
	iconBase      string
	maxTries      uint
	retryInterval time.Duration
	logger        *zap.Logger
	group         singleflight.Group
}

// NewLoader creates a Loader from cfg.
func NewLoader(cfg LoaderConfig) *Loader {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	maxTries := cfg.MaxTries
	if maxTries == 0 {
		maxTries = 1
	}
	interval := cfg.RetryInterval
	if interval <= 0 {
		interval = 500 * time.Millisecond
	}
	return &Loader{
		feed:          cfg.Feed,
		iconBase:      cfg.IconBaseURL,
		maxTries:      maxTries,
		retryInterval: interval,
		logger:        logger.Named("catalog"),
	}
}

// Load returns a fresh catalog. It never fails: feed problems are logged
// and answered with FallbackCatalog.
func (l *Loader) Load(ctx context.Context) Catalog {
	v, _, shared := l.group.Do("catalog", func() (interface{}, error) {
		return l.load(ctx), nil
	})
	if shared {
		l.logger.Debug("Joined in-flight catalog load")
	}
	return v.(Catalog)
}

func (l *Loader) load(ctx context.Context) Catalog {
	if l.feed == nil {
		l.logger.Warn("No price feed configured, using fallback catalog")
		return FallbackCatalog(l.iconBase)
	}

	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = l.retryInterval
	policy.MaxInterval = l.retryInterval * 10

	notify := func(err error, d time.Duration) {
		l.logger.Info("Retrying price feed", zap.Error(err), zap.Duration("backoff", d))
	}

	start := time.Now()
	raw, err := backoff.Retry(ctx, func() ([]RawPrice, error) {
		return l.feed.FetchPrices(ctx)
	},
		backoff.WithBackOff(policy),
		backoff.WithMaxTries(l.maxTries),
		backoff.WithNotify(notify))
	if err != nil {
		l.logger.Warn("Price feed unavailable, using fallback catalog", zap.Error(err))
		return FallbackCatalog(l.iconBase)
	}

	catalog, rejected := Normalize(raw, l.iconBase)
	for _, r := range rejected {
		l.logger.Debug("Rejected price entry", zap.Error(r))
	}
	if len(rejected) > 0 {
		l.logger.Warn("Rejected malformed price entries",
			zap.Int("rejected", len(rejected)),
			zap.Int("entries", len(raw)))
	}
	if catalog.Len() == 0 {
		l.logger.Warn("Price feed returned no usable tokens, using fallback catalog",
			zap.Int("entries", len(raw)))
		return FallbackCatalog(l.iconBase)
	}

	l.logger.Info("Catalog loaded",
		zap.Int("count", catalog.Len()),
		zap.Int("rejected", len(rejected)),
		zap.Duration("duration", time.Since(start)))
	return catalog
}
