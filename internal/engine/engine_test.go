package engine

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"treasury-book-engine/internal/config"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

// newTestEngine builds an engine over a scratch input/output tree with the
// dashboard disabled, seeded with one record on each feed except market data,
// which gets two: only the second, an aggregated-book update, triggers
// algo-execution.
func newTestEngine(t *testing.T) (*Engine, *config.Config) {
	t.Helper()
	dir := t.TempDir()
	inputDir := filepath.Join(dir, "Input")
	outputDir := filepath.Join(dir, "Output")
	if err := os.MkdirAll(inputDir, 0o755); err != nil {
		t.Fatal(err)
	}

	writeFile(t, filepath.Join(inputDir, "trades.txt"), "T1,912828M80,TRSY1,1000000,BUY,99.5\n")
	writeFile(t, filepath.Join(inputDir, "prices.txt"), "912828M80,100-000,100-040,2\n")
	writeFile(t, filepath.Join(inputDir, "marketdata.txt"), "912828M80,99-160,99-200\n912828M80,99-160,99-200\n")
	writeFile(t, filepath.Join(inputDir, "inquiries.txt"), "IQ1,912828M80,BUY,1000000,99-160\n")

	pv01Path := filepath.Join(dir, "pv01.yaml")
	writeFile(t, pv01Path, "912828M80: 0.295\n")
	sectorsPath := filepath.Join(dir, "sectors.yaml")
	writeFile(t, sectorsPath, "front_end: [912828M80]\nbelly: []\nlong_end: []\n")

	cfg := &config.Config{
		Feeds: config.FeedsConfig{
			InputDir: inputDir, OutputDir: outputDir,
			TradeCount: 1, PriceCount: 1, MarketDataCount: 2, InquiryCount: 1,
		},
		Risk:      config.RiskConfig{PV01TablePath: pv01Path, SectorsPath: sectorsPath},
		Dashboard: config.DashboardConfig{Enabled: false},
		Logging:   config.LoggingConfig{Level: "info", Format: "text"},
	}

	e, err := New(cfg, testLogger())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return e, cfg
}

// TestEndToEndReplayProducesAllOutputs checks the wiring end to end: the
// records seeded on each feed should flow through every leg and leave a trace in
// the corresponding output/historical file.
func TestEndToEndReplayProducesAllOutputs(t *testing.T) {
	e, cfg := newTestEngine(t)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := e.Start(ctx); err != nil {
		t.Fatalf("Start: %v", err)
	}

	pos := e.positionSvc.GetData("912828M80")
	if pos.Positions["TRSY1"] != 1_000_000 {
		t.Fatalf("position TRSY1 = %d, want 1000000", pos.Positions["TRSY1"])
	}

	histDir := filepath.Join(cfg.Feeds.OutputDir, "Historical")
	for _, f := range []string{"position.txt", "risk.txt", "executions.txt", "streaming.txt", "allinquiries.txt"} {
		data, err := os.ReadFile(filepath.Join(histDir, f))
		if err != nil {
			t.Fatalf("expected %s to exist: %v", f, err)
		}
		if strings.TrimSpace(string(data)) == "" {
			t.Fatalf("expected %s to contain at least one line", f)
		}
	}

	for _, f := range []string{"PriceStreams.txt", "ExecutionOrders.txt"} {
		if _, err := os.Stat(filepath.Join(cfg.Feeds.OutputDir, f)); err != nil {
			t.Fatalf("expected %s to exist: %v", f, err)
		}
	}
}

func TestStopWithoutDashboardIsNoop(t *testing.T) {
	e, _ := newTestEngine(t)
	if err := e.Stop(context.Background()); err != nil {
		t.Fatalf("Stop: %v", err)
	}
}
