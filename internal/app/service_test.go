package app

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/rovshanmuradov/token-swap/internal/config"
	"github.com/rovshanmuradov/token-swap/internal/export"
)

const feedBody = `[
	{"currency":"ETH","date":"2023-08-29T07:10:52.000Z","price":1645.93},
	{"currency":"USDC","date":"2023-08-29T07:10:40.000Z","price":0.989832},
	{"currency":"ATOM","date":"2023-08-29T07:10:50.000Z","price":7.186657}
]`

func newTestConfig(t *testing.T) *config.Config {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, feedBody)
	}))
	t.Cleanup(srv.Close)

	cfg, err := config.LoadConfig("")
	require.NoError(t, err)
	cfg.PriceFeedURL = srv.URL
	cfg.TxMinDelayMS = 5
	cfg.TxMaxDelayMS = 10
	cfg.TxFailureRate = 0
	cfg.JournalFile = filepath.Join(t.TempDir(), "journal.csv")
	return cfg
}

func TestServiceSwapRoundTrip(t *testing.T) {
	cfg := newTestConfig(t)
	svc, err := NewService(ServiceConfig{Config: cfg, Logger: zaptest.NewLogger(t)})
	require.NoError(t, err)

	ctx := context.Background()
	driver := svc.Driver()
	require.NoError(t, driver.Start(ctx))
	assert.Equal(t, []string{"ATOM", "ETH", "USDC"}, driver.Catalog().Symbols())

	snap := driver.Snapshot()
	assert.Equal(t, "ETH", snap.State.FromToken.Symbol)
	assert.Equal(t, "USDC", snap.State.ToToken.Symbol)

	record, err := driver.Confirm(ctx)
	require.NoError(t, err)
	assert.True(t, record.Success)
	assert.Equal(t, "1662.837734", record.ToAmount)

	require.NoError(t, svc.Close(ctx))

	data, err := os.ReadFile(cfg.JournalFile)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, strings.Join(export.CSVHeaders(), ","), lines[0])
	assert.Contains(t, lines[1], record.ID)
}

func TestServiceServesMetrics(t *testing.T) {
	cfg := newTestConfig(t)
	svc, err := NewService(ServiceConfig{Config: cfg, Logger: zaptest.NewLogger(t)})
	require.NoError(t, err)

	addr, err := svc.ServeMetrics("127.0.0.1:0")
	require.NoError(t, err)

	ctx := context.Background()
	require.NoError(t, svc.Driver().Start(ctx))
	_, err = svc.Driver().Confirm(ctx)
	require.NoError(t, err)

	scrape := func() string {
		resp, err := http.Get("http://" + addr + "/metrics")
		if err != nil {
			return ""
		}
		defer resp.Body.Close()
		body, _ := io.ReadAll(resp.Body)
		return string(body)
	}

	require.Eventually(t, func() bool {
		body := scrape()
		return strings.Contains(body, "token_swap_catalog_tokens 3") &&
			strings.Contains(body, `token_swap_swaps_total{pair="ETH/USDC",status="success"} 1`)
	}, 2*time.Second, 20*time.Millisecond)
	assert.Contains(t, scrape(), `token_swap_tx_submissions_total{outcome="success"} 1`)

	require.NoError(t, svc.Close(ctx))
	_, err = http.Get("http://" + addr + "/metrics")
	assert.Error(t, err)
}

func TestServiceRequiresConfig(t *testing.T) {
	_, err := NewService(ServiceConfig{Logger: zaptest.NewLogger(t)})
	assert.Error(t, err)

	cfg := newTestConfig(t)
	_, err = NewService(ServiceConfig{Config: cfg})
	assert.Error(t, err)
}

func TestServiceBadJournalPath(t *testing.T) {
	cfg := newTestConfig(t)
	blocker := filepath.Join(t.TempDir(), "file")
	require.NoError(t, os.WriteFile(blocker, nil, 0o644))
	cfg.JournalFile = filepath.Join(blocker, "journal.csv")

	_, err := NewService(ServiceConfig{Config: cfg, Logger: zaptest.NewLogger(t)})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "open journal")
}
