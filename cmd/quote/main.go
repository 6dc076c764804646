// ====================================
// File: cmd/quote/main.go
// ====================================
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/rovshanmuradov/token-swap/internal/app"
	"github.com/rovshanmuradov/token-swap/internal/config"
	"github.com/rovshanmuradov/token-swap/internal/conversion"
	"github.com/rovshanmuradov/token-swap/internal/export"
	"github.com/rovshanmuradov/token-swap/internal/logger"
	"github.com/rovshanmuradov/token-swap/internal/session"
)

type options struct {
	configPath string
	from       string
	to         string
	amount     string
	swap       bool
	export     string
	list       bool
	history    bool
	debug      bool
}

func parseFlags() options {
	var o options
	flag.StringVar(&o.configPath, "config", "", "Path to config file (json, yaml or toml)")
	flag.StringVar(&o.from, "from", "", "Source token symbol (default: preferred pair)")
	flag.StringVar(&o.to, "to", "", "Destination token symbol (default: preferred pair)")
	flag.StringVar(&o.amount, "amount", "", "Amount of the source token (default: sample amount)")
	flag.BoolVar(&o.swap, "swap", false, "Submit the quoted swap to the simulator")
	flag.StringVar(&o.export, "export", "", "Export the swap receipt as csv, json or yaml")
	flag.BoolVar(&o.list, "list", false, "List available tokens and exit")
	flag.BoolVar(&o.history, "history", false, "Summarize the swap journal and exit")
	flag.BoolVar(&o.debug, "debug", false, "Enable debug logging")
	flag.Parse()
	return o
}

func main() {
	opts := parseFlags()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.LoadConfig(opts.configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	appLogger, err := logger.CreatePrettyLogger(opts.debug || cfg.DebugLogging)
	if err != nil {
		log.Fatalf("Failed to init logger: %v", err)
	}

	svc, err := app.NewService(app.ServiceConfig{Config: cfg, Logger: appLogger})
	if err != nil {
		appLogger.Fatal("Failed to start session", zap.Error(err))
	}

	runErr := run(ctx, svc, opts)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := svc.Close(shutdownCtx); err != nil {
		appLogger.Warn("Shutdown finished with errors", zap.Error(err))
	}
	_ = logger.IgnoreTTYSyncError(appLogger.Sync())

	if runErr != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", runErr)
		cancel()
		stop()
		os.Exit(1)
	}
}

func run(ctx context.Context, svc *app.Service, opts options) error {
	if opts.history {
		return printJournal(svc.Config().JournalFile)
	}

	driver := svc.Driver()
	if err := driver.Start(ctx); err != nil {
		return err
	}

	if opts.list {
		printCatalog(svc)
		return nil
	}

	if opts.from != "" {
		if err := driver.SelectToken(conversion.From, strings.ToUpper(opts.from)); err != nil {
			return fmt.Errorf("from: %w", err)
		}
	}
	if opts.to != "" {
		if err := driver.SelectToken(conversion.To, strings.ToUpper(opts.to)); err != nil {
			return fmt.Errorf("to: %w", err)
		}
	}
	if opts.amount != "" {
		driver.InputAmount(opts.amount)
		driver.FlushInput()
	}

	snap := driver.Snapshot()
	printQuote(snap)
	if !opts.swap {
		return nil
	}

	record, err := driver.Confirm(ctx)
	if notice := driver.Snapshot().Notice; notice != nil {
		fmt.Printf("\n%s\n%s\n", notice.Title, notice.Text)
	}
	if err != nil && record.ID == "" {
		// Rejected or abandoned: nothing was recorded.
		return err
	}

	if opts.export != "" {
		format, err := export.ParseFormat(opts.export)
		if err != nil {
			return err
		}
		path, err := svc.Exporter().ExportRecords(driver.History(), export.ExportOptions{
			Format:    format,
			OutputDir: svc.Config().ExportDir,
		})
		if err != nil {
			return fmt.Errorf("export: %w", err)
		}
		fmt.Printf("Receipt written to %s\n", path)
	}

	return err
}

func printQuote(snap session.Snapshot) {
	from, to := snap.State.FromToken, snap.State.ToToken
	if from == nil || to == nil {
		fmt.Println(snap.Status.Label())
		return
	}

	fmt.Printf("You pay:     %s %s (%s)\n", snap.State.FromAmountText, from.Symbol, snap.FromUSD)
	if snap.FromError != nil {
		fmt.Printf("             %v\n", snap.FromError)
	}
	fmt.Printf("You receive: %s %s (%s)\n", snap.ToDisplay, to.Symbol, snap.ToUSD)
	if snap.RateLine != "" {
		fmt.Printf("Rate:        %s\n", snap.RateLine)
	}
	fmt.Printf("Status:      %s\n", snap.ButtonLabel())
}

func printJournal(path string) error {
	if path == "" {
		return errors.New("no journal_file configured")
	}
	records, err := export.ReadJournal(path)
	if err != nil {
		return fmt.Errorf("read journal: %w", err)
	}
	for _, r := range records {
		status := "ok"
		if !r.Success {
			status = "failed"
		}
		fmt.Printf("%s  %-10s %s -> %s  %s\n",
			r.Timestamp.Local().Format("2006-01-02 15:04:05"), r.Pair(), r.FromAmount, r.ToAmount, status)
	}
	s := export.Summarize(records)
	fmt.Printf("%d swaps, %d ok, %d failed, volume $%s\n",
		s.TotalSwaps, s.SuccessfulSwaps, s.FailedSwaps, s.TotalUSDVolume)
	return nil
}

func printCatalog(svc *app.Service) {
	catalog := svc.Driver().Catalog()
	formatter := svc.Driver().Formatter()
	for _, t := range catalog.Tokens() {
		fmt.Printf("%-8s $%s\n", t.Symbol, formatter.PriceDecimal(t.USDPrice))
	}
}
