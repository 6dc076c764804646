package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/rovshanmuradov/token-swap/internal/app"
	"github.com/rovshanmuradov/token-swap/internal/config"
	"github.com/rovshanmuradov/token-swap/internal/logger"
	"github.com/rovshanmuradov/token-swap/internal/ui"
	"github.com/rovshanmuradov/token-swap/internal/ui/router"
	"github.com/rovshanmuradov/token-swap/internal/ui/screen"
)

const logBufferSize = 1000

// AppModel represents the main TUI application model
type AppModel struct {
	router *router.Router
	width  int
	height int
}

// NewAppModel creates a new application model
func NewAppModel(r *router.Router) *AppModel {
	return &AppModel{router: r}
}

// Init initializes the application
func (m *AppModel) Init() tea.Cmd {
	return m.router.Init()
}

// Update handles application-level updates
func (m *AppModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
	}

	_, cmd := m.router.Update(msg)
	return m, cmd
}

// View renders the application
func (m *AppModel) View() string {
	if m.width == 0 || m.height == 0 {
		return "Initializing..."
	}
	return m.router.View()
}

func main() {
	configPath := flag.String("config", "", "Path to config file (json, yaml or toml)")
	debug := flag.Bool("debug", false, "Enable debug logging")
	flag.Parse()

	rootCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if *debug {
		cfg.DebugLogging = true
	}

	// The terminal belongs to the TUI: logs go to the in-memory buffer
	// shown on the logs screen and to the rotating file.
	logBuffer, err := logger.NewLogBuffer(logBufferSize, cfg.LogFile+".overflow", zap.NewNop())
	if err != nil {
		log.Fatalf("Failed to create log buffer: %v", err)
	}
	fileCfg := logger.DefaultFileConfig()
	fileCfg.LogFile = cfg.LogFile
	fileCfg.Development = cfg.DebugLogging
	fileCore, err := logger.NewFileCore(fileCfg)
	if err != nil {
		log.Fatalf("Failed to init log file: %v", err)
	}
	appLogger, err := logger.CreateTUILoggerWithBuffer(cfg.DebugLogging, logBuffer, fileCore)
	if err != nil {
		log.Fatalf("Failed to init logger: %v", err)
	}

	appLogger.Info("🚀 Starting token swap TUI", zap.String("feed", cfg.PriceFeedURL))

	sender := ui.NewUpdateSender(0, appLogger)
	svc, err := app.NewService(app.ServiceConfig{
		Config:   cfg,
		Logger:   appLogger,
		OnChange: sender.NotifyChanged,
	})
	if err != nil {
		appLogger.Error("💥 Failed to start session", zap.Error(err))
		log.Fatalf("Failed to start session: %v", err)
	}

	if cfg.MetricsAddr != "" {
		if _, err := svc.ServeMetrics(cfg.MetricsAddr); err != nil {
			appLogger.Warn("Metrics endpoint disabled", zap.Error(err))
		}
	}

	factory := screen.NewFactory(rootCtx, screen.Deps{
		Driver:    svc.Driver(),
		Numeric:   svc.Numeric(),
		Logs:      logBuffer,
		Exporter:  svc.Exporter(),
		ExportDir: cfg.ExportDir,
	})
	program := tea.NewProgram(
		NewAppModel(router.New(ui.RouteSwap, factory)),
		tea.WithAltScreen(),
		tea.WithContext(rootCtx),
	)

	go sender.Pump(rootCtx, program.Send)

	exitCode := 0
	if _, err := program.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		appLogger.Error("💥 TUI application failed", zap.Error(err))
		exitCode = 1
	}

	appLogger.Info("🛑 Shutting down")
	sender.Close()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := svc.Close(shutdownCtx); err != nil {
		appLogger.Warn("Shutdown finished with errors", zap.Error(err))
	}
	if err := logger.IgnoreTTYSyncError(appLogger.Sync()); err != nil {
		fmt.Fprintf(os.Stderr, "failed to sync logger: %v\n", err)
	}
	if err := logBuffer.Close(); err != nil {
		fmt.Fprintf(os.Stderr, "failed to close log buffer: %v\n", err)
	}

	if exitCode != 0 {
		cancel()
		stop()
		os.Exit(exitCode)
	}
}
