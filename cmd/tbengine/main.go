// Command tbengine runs the Treasury book engine: it replays the sample
// trades/prices/marketdata/inquiries feeds under Input/ through the full
// trade-booking → position → risk, market-data → algo-execution →
// execution, pricing → algo-streaming → streaming, and inquiry pipelines,
// writing results and historical logs under Output/, and optionally serves
// a read-only dashboard over HTTP/WebSocket.
//
// Architecture:
//
//	main.go                    — entry point: loads config, starts engine, waits for SIGINT/SIGTERM
//	internal/engine/engine.go  — orchestrator: wires every service/listener/connector, supervises replay legs
//	internal/tradebook         — trade booking service + subscribe connector
//	internal/position          — position service + trade listener (incl. reversal)
//	internal/risk              — PV01 + bucketed-sector risk service
//	internal/marketdata        — multi-venue order-book aggregation
//	internal/pricing           — pricing → algo-streaming → streaming
//	internal/execution         — algo-execution → execution + venue routing
//	internal/inquiry           — customer-inquiry quote workflow
//	internal/historical        — five append-only historical sinks
//	internal/dashboard         — optional read-only HTTP/WebSocket monitoring surface
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"log/slog"

	"treasury-book-engine/internal/config"
	"treasury-book-engine/internal/engine"
)

func main() {
	cfgPath := "configs/config.yaml"
	if p := os.Getenv("TBE_CONFIG"); p != "" {
		cfgPath = p
	}

	cfg, err := config.Load(cfgPath)
	if err != nil {
		slog.Error("failed to load config", "error", err, "path", cfgPath)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		slog.Error("invalid config", "error", err)
		os.Exit(1)
	}

	logger := slog.New(newHandler(cfg.Logging))

	eng, err := engine.New(cfg, logger)
	if err != nil {
		logger.Error("failed to build engine", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() { errCh <- eng.Start(ctx) }()

	logger.Info("treasury book engine started",
		"input_dir", cfg.Feeds.InputDir,
		"output_dir", cfg.Feeds.OutputDir,
		"dashboard_enabled", cfg.Dashboard.Enabled,
		"dashboard_addr", cfg.Dashboard.Addr,
	)

	hardFailure := false
	select {
	case <-ctx.Done():
		logger.Info("received shutdown signal")
	case err := <-errCh:
		if err != nil && err != context.Canceled {
			logger.Error("engine stopped with error", "error", err)
			hardFailure = true
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := eng.Stop(shutdownCtx); err != nil {
		logger.Error("failed to stop engine cleanly", "error", err)
		hardFailure = true
	}

	if hardFailure {
		os.Exit(1)
	}
}

func newHandler(cfg config.LoggingConfig) slog.Handler {
	opts := &slog.HandlerOptions{Level: parseLogLevel(cfg.Level)}
	if cfg.Format == "text" {
		return slog.NewTextHandler(os.Stdout, opts)
	}
	return slog.NewJSONHandler(os.Stdout, opts)
}

func parseLogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
