// Package main is the entry point for the SwapDesk terminal wallet.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/sony/gobreaker/v2"

	"github.com/mevshield/swapdesk/business/advisory"
	advisoryDI "github.com/mevshield/swapdesk/business/advisory/di"
	"github.com/mevshield/swapdesk/business/execution"
	executionDI "github.com/mevshield/swapdesk/business/execution/di"
	"github.com/mevshield/swapdesk/business/market"
	marketDI "github.com/mevshield/swapdesk/business/market/di"
	"github.com/mevshield/swapdesk/business/quoting"
	quotingApp "github.com/mevshield/swapdesk/business/quoting/app"
	quotingDI "github.com/mevshield/swapdesk/business/quoting/di"
	"github.com/mevshield/swapdesk/internal/apm"
	"github.com/mevshield/swapdesk/internal/config"
	"github.com/mevshield/swapdesk/internal/health"
	"github.com/mevshield/swapdesk/internal/logger"
	"github.com/mevshield/swapdesk/internal/metrics"
	"github.com/mevshield/swapdesk/internal/monolith"
	"github.com/mevshield/swapdesk/pkg/ui"
)

var (
	version   = "dev"
	commit    = "none"
	buildDate = "unknown"
)

func main() {
	// Load .env file if present (ignore error if not found)
	_ = godotenv.Load()

	// Parse flags
	configPath := flag.String("config", "", "Path to configuration file")
	cliMode := flag.Bool("cli", false, "Run in CLI mode with logs (no TUI)")
	showVersion := flag.Bool("version", false, "Show version information")
	flag.Parse()

	if *showVersion {
		fmt.Printf("swapdesk %s (commit: %s, built: %s)\n", version, commit, buildDate)
		os.Exit(0)
	}

	// TUI is the default, CLI is for debugging
	tuiMode := !*cliMode

	// Setup context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle shutdown signals
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		if !tuiMode {
			fmt.Fprintf(os.Stderr, "received shutdown signal: %v\n", sig)
		}
		cancel()
	}()

	// Run application
	if err := run(ctx, *configPath, tuiMode); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, configPath string, tuiMode bool) error {
	// Load configuration
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// Setup logger (only log to stderr in CLI mode)
	logLevel := logger.LevelInfo
	switch cfg.App.LogLevel {
	case "debug":
		logLevel = logger.LevelDebug
	case "warn":
		logLevel = logger.LevelWarn
	case "error":
		logLevel = logger.LevelError
	}

	var log *logger.Logger
	if tuiMode {
		// In TUI mode, suppress logs (discard output)
		log = logger.New(io.Discard, logLevel, cfg.App.Name, nil)
	} else {
		log = logger.New(os.Stderr, logLevel, cfg.App.Name, nil)
		log.Info(ctx, "starting swapdesk",
			"version", version,
			"environment", cfg.App.Environment,
		)
	}

	// Initialize observability if enabled
	var traceProvider apm.TraceProvider
	if cfg.Telemetry.Enabled {
		if cfg.Telemetry.ServiceName != "" {
			os.Setenv("OTEL_SERVICE_NAME", cfg.Telemetry.ServiceName)
		}
		if cfg.Telemetry.OTLPEndpoint != "" {
			os.Setenv("OTEL_EXPORTER_OTLP_ENDPOINT", cfg.Telemetry.OTLPEndpoint)
		}

		traceProvider = apm.NewTraceProvider(log, apm.WithProvider(apm.ZipkinProvider, log))
		log.Info(ctx, "tracing initialized", "provider", "zipkin", "endpoint", cfg.Telemetry.OTLPEndpoint)

		metrics.NewMetricProvider(
			metrics.WithServiceName(cfg.Telemetry.ServiceName),
			metrics.WithProviderConfig(metrics.ProviderCfg{
				Provider: metrics.PrometheusProvider,
			}),
		)

		port := cfg.Telemetry.PrometheusPort
		if port == 0 {
			port = 9090
		}
		go metrics.ServePrometheusMetrics(metrics.WithPort(strconv.Itoa(port)))
		log.Info(ctx, "prometheus metrics server started", "port", port)
	}
	defer func() {
		if traceProvider != nil {
			traceProvider.Stop()
		}
	}()

	// Create monolith (application container)
	mono, err := monolith.New(cfg, log)
	if err != nil {
		return fmt.Errorf("failed to create monolith: %w", err)
	}

	// Define modules in dependency order
	modules := []monolith.Module{
		&market.Module{},    // Feeds the token registry
		&quoting.Module{},   // Depends on market for token prices
		&advisory.Module{},  // Reads quotes
		&execution.Module{}, // Depends on quoting for the trade client
	}

	// Register all module services
	if err := mono.RegisterModules(modules...); err != nil {
		return fmt.Errorf("failed to register modules: %w", err)
	}
	if err := mono.StartModules(ctx, modules...); err != nil {
		return fmt.Errorf("failed to start modules: %w", err)
	}

	// Start health check server on port 8081
	healthServer := health.NewServer(8081, version)
	healthServer.RegisterCheck("market", marketDI.GetMarketService(mono.Services()).Healthy)
	healthServer.RegisterCheck("trading", func(ctx context.Context) (bool, string) {
		state := quotingDI.GetTradeClient(mono.Services()).CircuitState()
		return state != gobreaker.StateOpen.String(), "circuit " + state
	})
	if err := healthServer.Start(); err != nil {
		log.Warn(ctx, "failed to start health server", "error", err)
	} else {
		log.Info(ctx, "health server started", "port", 8081)
	}
	defer healthServer.Stop(ctx)

	if tuiMode {
		return runTUI(ctx, mono)
	}
	return runCLI(ctx, mono, log)
}

func runCLI(ctx context.Context, mono monolith.Monolith, log *logger.Logger) error {
	log.Info(ctx, "all modules started, running headless")

	// Wait for shutdown
	<-ctx.Done()

	log.Info(ctx, "shutting down")
	quotingDI.GetQuoteController(mono.Services()).Close()
	return nil
}

func runTUI(ctx context.Context, mono monolith.Monolith) error {
	cfg := mono.Config()
	controller := quotingDI.GetQuoteController(mono.Services())
	defer controller.Close()

	// Forward controller snapshots to the TUI. The buffered channel keeps
	// notification order while moving Send off the Update goroutine.
	snaps := make(chan quotingApp.Snapshot, 64)
	controller.OnChange(func(snap quotingApp.Snapshot) {
		select {
		case snaps <- snap:
		default:
		}
	})
	go func() {
		for snap := range snaps {
			ui.Send(ui.QuoteMsg{Snapshot: snap})
		}
	}()

	// Poll collaborator status for the status bar.
	go func() {
		ticker := time.NewTicker(2 * time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				state := quotingDI.GetTradeClient(mono.Services()).CircuitState()
				ui.Send(ui.ConnectionStatusMsg{
					Name:      "Trading",
					Connected: state != gobreaker.StateOpen.String(),
					Detail:    "circuit " + state,
				})

				healthy, detail := marketDI.GetMarketService(mono.Services()).Healthy(ctx)
				ui.Send(ui.ConnectionStatusMsg{
					Name:      "Prices",
					Connected: healthy,
					Detail:    detail,
				})
			}
		}
	}()

	deps := ui.Deps{
		Controller:    controller,
		Advisor:       advisoryDI.GetEngine(mono.Services()),
		Executor:      executionDI.GetSwapExecutor(mono.Services()),
		History:       executionDI.GetTradeHistory(mono.Services()),
		Tokens:        mono.TokenRegistry(),
		WalletAddress: cfg.Wallet.Address,
		ChainID:       cfg.Wallet.ChainID,
		SlippageBps:   cfg.Swap.DefaultSlippageBps,
		MEVProtection: cfg.Swap.MEVProtection,
	}

	if err := ui.Run(deps); err != nil {
		return fmt.Errorf("TUI error: %w", err)
	}
	return nil
}
