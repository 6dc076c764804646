// =================================
// File: internal/config/config.go
// =================================
package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/spf13/viper"

	"github.com/rovshanmuradov/token-swap/internal/numeric"
	"github.com/rovshanmuradov/token-swap/internal/token"
)

// EnvPrefix prefixes every environment override, e.g. TOKEN_SWAP_PRICE_FEED_URL.
const EnvPrefix = "TOKEN_SWAP"

type Config struct {
	PriceFeedURL     string            `mapstructure:"price_feed_url"`
	IconBaseURL      string            `mapstructure:"icon_base_url"`
	FeedTimeoutMS    int               `mapstructure:"feed_timeout_ms"`
	FeedRetries      int               `mapstructure:"feed_retries"`
	FromPreferences  []string          `mapstructure:"from_preferences"`
	ToPreferences    []string          `mapstructure:"to_preferences"`
	SampleAmounts    map[string]string `mapstructure:"sample_amounts"`
	AmountDebounceMS int               `mapstructure:"amount_debounce_ms"`
	SearchDebounceMS int               `mapstructure:"search_debounce_ms"`
	DecimalPlaces    int               `mapstructure:"decimal_places"`
	Rounding         string            `mapstructure:"rounding"`
	TxMinDelayMS     int               `mapstructure:"tx_min_delay_ms"`
	TxMaxDelayMS     int               `mapstructure:"tx_max_delay_ms"`
	TxFailureRate    float64           `mapstructure:"tx_failure_rate"`
	DebugLogging     bool              `mapstructure:"debug_logging"`
	LogFile          string            `mapstructure:"log_file"`
	JournalFile      string            `mapstructure:"journal_file"`
	ExportDir        string            `mapstructure:"export_dir"`
	MetricsAddr      string            `mapstructure:"metrics_addr"`
}

const (
	DefaultFeedTimeoutMS    = 10000
	DefaultFeedRetries      = 3
	DefaultAmountDebounceMS = 300
	DefaultSearchDebounceMS = 500
	DefaultDecimalPlaces    = 30
	DefaultTxMinDelayMS     = 2000
	DefaultTxMaxDelayMS     = 3000
	DefaultTxFailureRate    = 0.1
	DefaultLogFile          = "logs/token-swap.log"
	DefaultExportDir        = "exports"
)

func defaults() map[string]interface{} {
	prefs := token.DefaultPreferences()
	return map[string]interface{}{
		"price_feed_url":     token.DefaultPricesURL,
		"icon_base_url":      token.DefaultIconBaseURL,
		"feed_timeout_ms":    DefaultFeedTimeoutMS,
		"feed_retries":       DefaultFeedRetries,
		"from_preferences":   prefs.From,
		"to_preferences":     prefs.To,
		"sample_amounts":     token.DefaultSampleAmounts(),
		"amount_debounce_ms": DefaultAmountDebounceMS,
		"search_debounce_ms": DefaultSearchDebounceMS,
		"decimal_places":     DefaultDecimalPlaces,
		"rounding":           numeric.RoundHalfUp.String(),
		"tx_min_delay_ms":    DefaultTxMinDelayMS,
		"tx_max_delay_ms":    DefaultTxMaxDelayMS,
		"tx_failure_rate":    DefaultTxFailureRate,
		"debug_logging":      false,
		"log_file":           DefaultLogFile,
		"journal_file":       "",
		"export_dir":         DefaultExportDir,
		"metrics_addr":       "",
	}
}

// LoadConfig reads path (json, yaml or toml by extension) over the
// defaults, then applies TOKEN_SWAP_* environment overrides. An empty
// path skips the file.
func LoadConfig(path string) (*Config, error) {
	v := viper.New()

	for key, value := range defaults() {
		v.SetDefault(key, value)
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}

	normalize(&cfg)
	if err := validateConfig(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// normalize upper-cases symbols; viper lower-cases map keys on read.
func normalize(cfg *Config) {
	cfg.FromPreferences = cleanSymbols(cfg.FromPreferences)
	cfg.ToPreferences = cleanSymbols(cfg.ToPreferences)

	amounts := make(map[string]string, len(cfg.SampleAmounts))
	for symbol, amount := range cfg.SampleAmounts {
		amounts[strings.ToUpper(strings.TrimSpace(symbol))] = strings.TrimSpace(amount)
	}
	cfg.SampleAmounts = amounts
}

func cleanSymbols(in []string) []string {
	var out []string
	for _, raw := range in {
		// Env values arrive as one comma separated string.
		for _, s := range strings.Split(raw, ",") {
			if clean := strings.ToUpper(strings.TrimSpace(s)); clean != "" {
				out = append(out, clean)
			}
		}
	}
	return out
}

func validateConfig(cfg *Config) error {
	if err := validateURLWithCache(cfg.PriceFeedURL, "http"); err != nil {
		return fmt.Errorf("price_feed_url: %w", err)
	}
	if err := validateURLWithCache(cfg.IconBaseURL, "http"); err != nil {
		return fmt.Errorf("icon_base_url: %w", err)
	}
	if err := validateNumericParams(cfg); err != nil {
		return err
	}
	if _, err := cfg.NumericConfig(); err != nil {
		return err
	}
	num := numeric.Default()
	for symbol, amount := range cfg.SampleAmounts {
		if d, err := num.Parse(amount); err != nil || !d.IsPositive() {
			return fmt.Errorf("sample_amounts: invalid amount %q for %s", amount, symbol)
		}
	}
	return nil
}

func validateNumericParams(cfg *Config) error {
	if cfg.FeedTimeoutMS <= 0 {
		return errors.New("invalid feed_timeout_ms")
	}
	if cfg.FeedRetries < 0 {
		return errors.New("invalid feed_retries")
	}
	if cfg.AmountDebounceMS < 0 {
		return errors.New("invalid amount_debounce_ms")
	}
	if cfg.SearchDebounceMS < 0 {
		return errors.New("invalid search_debounce_ms")
	}
	if cfg.TxMinDelayMS < 0 || cfg.TxMaxDelayMS < cfg.TxMinDelayMS {
		return errors.New("invalid tx_min_delay_ms/tx_max_delay_ms range")
	}
	if cfg.TxFailureRate < 0 || cfg.TxFailureRate > 1 {
		return errors.New("tx_failure_rate must be within [0, 1]")
	}
	return nil
}

var urlCache sync.Map

func validateURLWithCache(rawURL string, protocol string) error {
	if _, ok := urlCache.Load(rawURL); ok {
		return nil
	}
	parsed, err := url.Parse(rawURL)
	if err != nil || parsed.Host == "" {
		return errors.New("invalid URL format")
	}
	if !strings.HasPrefix(parsed.Scheme, protocol) {
		return errors.New("invalid URL protocol")
	}
	urlCache.Store(rawURL, parsed)
	return nil
}

// NumericConfig builds the decimal engine settings.
func (c *Config) NumericConfig() (numeric.Config, error) {
	mode, err := numeric.ParseRoundingMode(c.Rounding)
	if err != nil {
		return numeric.Config{}, err
	}
	nc := numeric.DefaultConfig()
	nc.DecimalPlaces = int32(c.DecimalPlaces)
	nc.Rounding = mode
	if err := nc.Validate(); err != nil {
		return numeric.Config{}, fmt.Errorf("decimal_places: %w", err)
	}
	return nc, nil
}

// Preferences returns the default pair preferences.
func (c *Config) Preferences() token.Preferences {
	return token.Preferences{From: c.FromPreferences, To: c.ToPreferences}
}

func (c *Config) FeedTimeout() time.Duration {
	return time.Duration(c.FeedTimeoutMS) * time.Millisecond
}

func (c *Config) AmountDebounce() time.Duration {
	return time.Duration(c.AmountDebounceMS) * time.Millisecond
}

func (c *Config) SearchDebounce() time.Duration {
	return time.Duration(c.SearchDebounceMS) * time.Millisecond
}

func (c *Config) TxMinDelay() time.Duration {
	return time.Duration(c.TxMinDelayMS) * time.Millisecond
}

func (c *Config) TxMaxDelay() time.Duration {
	return time.Duration(c.TxMaxDelayMS) * time.Millisecond
}
