/*
main.go - Application entry point

PURPOSE:
  Initializes and starts the attendance reconciliation server.
  Handles configuration, dependency injection, and graceful shutdown.

STARTUP SEQUENCE:
  1. Load configuration (.env, environment, flags)
  2. Initialize SQLite store
  3. Create API handler with dependencies
  4. Load schedule configs file and/or demo scenario, if configured
  5. Start the background inconsistency scanner
  6. Configure HTTP router
  7. Start server with graceful shutdown

COMMAND-LINE FLAGS (environment fallback in brackets):
  -port           HTTP server port (default: 8080) [MARCACION_PORT]
  -db             SQLite database path (default: marcacion.db) [MARCACION_DB]
                  Use ":memory:" for in-memory database
  -schedules      YAML/JSON schedule configs to load [MARCACION_SCHEDULES]
  -seed           Demo scenario to load, resets the database [MARCACION_SEED]
  -scan-interval  Background scan interval, 0 disables [MARCACION_SCAN_INTERVAL]
  -scan-lookback  Days per background scan [MARCACION_SCAN_LOOKBACK]
  -verbose        Debug logging [MARCACION_VERBOSE]

GRACEFUL SHUTDOWN:
  On SIGINT/SIGTERM:
  1. Stop the scanner
  2. Stop accepting new connections
  3. Wait for active requests to complete (shutdown timeout)
  4. Close database connection

EXAMPLES:
  # Run with file database and a schedules file
  ./server -db="./data/marcacion.db" -schedules=./schedules.yaml

  # Demo with in-memory database
  ./server -db=":memory:" -seed=missing-punches

SEE ALSO:
  - config/config.go: Configuration loading
  - api/server.go: Router configuration
  - store/sqlite/sqlite.go: Database implementation
*/
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/warp/marcacion/api"
	"github.com/warp/marcacion/attendance"
	"github.com/warp/marcacion/config"
	"github.com/warp/marcacion/store/sqlite"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load(flag.CommandLine, os.Args[1:])
	if err != nil {
		return err
	}

	level := slog.LevelInfo
	if cfg.Verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	// Initialize store
	store, err := sqlite.New(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer store.Close()

	// Initialize handler
	handler := api.NewHandler(store, logger)
	ctx := context.Background()

	if cfg.Seed != "" {
		if err := handler.LoadScenario(ctx, cfg.Seed); err != nil {
			return fmt.Errorf("failed to load scenario %q: %w", cfg.Seed, err)
		}
	}
	if cfg.SchedulesFile != "" {
		if err := loadSchedulesFile(ctx, handler, cfg.SchedulesFile); err != nil {
			return err
		}
	}

	scanner := api.NewInconsistencyScanner(handler)
	scanner.CheckInterval = cfg.ScanInterval
	scanner.Lookback = cfg.ScanLookback
	scanner.Start()
	defer scanner.Stop()

	// Create router
	router := api.NewRouter(handler, api.RouterOptions{
		AllowedOrigins: cfg.AllowedOrigins,
		Scanner:        scanner,
	})

	// Create server
	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}

	// Start server in goroutine
	serverErr := make(chan error, 1)
	go func() {
		logger.Info("server starting", "addr", fmt.Sprintf("http://localhost:%d/api", cfg.Port), "db", cfg.DBPath)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case err := <-serverErr:
		return fmt.Errorf("server failed: %w", err)
	case <-quit:
	}

	logger.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	logger.Info("server stopped")
	return nil
}

// loadSchedulesFile stores the schedule configs of a .yaml, .yml or .json file.
func loadSchedulesFile(ctx context.Context, h *api.Handler, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read schedules: %w", err)
	}

	var configs []attendance.ScheduleConfig
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		configs, err = h.ScheduleFactory.ParseJSON(data)
	case ".yaml", ".yml":
		configs, err = h.ScheduleFactory.ParseYAML(data)
	default:
		return fmt.Errorf("schedules file %s: unsupported extension", path)
	}
	if err != nil {
		return fmt.Errorf("schedules file %s: %w", path, err)
	}

	for _, cfg := range configs {
		if err := h.Store.SaveScheduleConfig(ctx, cfg); err != nil {
			return fmt.Errorf("failed to save schedule: %w", err)
		}
	}
	h.Logger.Info("schedule configs loaded", "file", path, "count", len(configs))
	return nil
}
