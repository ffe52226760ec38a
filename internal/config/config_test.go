package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeTemp(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	return path
}

func TestLoadAppliesDefaults(t *testing.T) {
	path := writeTemp(t, "config.yaml", "logging:\n  level: debug\n")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Feeds.InputDir != "Input" || cfg.Feeds.OutputDir != "Output" {
		t.Fatalf("feeds defaults not applied: %+v", cfg.Feeds)
	}
	if cfg.Feeds.TradeCount != 18 || cfg.Feeds.PriceCount != 36 {
		t.Fatalf("feed counts = %+v, want source defaults", cfg.Feeds)
	}
	if cfg.Dashboard.ThrottleInterval != 300*time.Millisecond {
		t.Fatalf("throttle default = %v, want 300ms", cfg.Dashboard.ThrottleInterval)
	}
	if cfg.Logging.Level != "debug" {
		t.Fatalf("logging.level = %q, want override debug", cfg.Logging.Level)
	}
}

func TestValidateRejectsBadFormat(t *testing.T) {
	cfg := &Config{
		Feeds:     FeedsConfig{InputDir: "in", OutputDir: "out"},
		Risk:      RiskConfig{PV01TablePath: "p.yaml", SectorsPath: "s.yaml"},
		Dashboard: DashboardConfig{Enabled: false},
		Logging:   LoggingConfig{Format: "xml"},
	}
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for unsupported logging.format")
	}
}

func TestLoadPV01Table(t *testing.T) {
	path := writeTemp(t, "pv01.yaml", "ABC: 0.295\nDEF: 0.102\n")

	table, err := LoadPV01Table(path)
	if err != nil {
		t.Fatalf("LoadPV01Table: %v", err)
	}
	if table["ABC"] != 0.295 || table["DEF"] != 0.102 {
		t.Fatalf("table = %+v", table)
	}
}

func TestLoadSectors(t *testing.T) {
	path := writeTemp(t, "sectors.yaml", "front_end: [A, B]\nbelly: [C]\nlong_end: []\n")

	sectors, err := LoadSectors(path)
	if err != nil {
		t.Fatalf("LoadSectors: %v", err)
	}
	if len(sectors) != 3 {
		t.Fatalf("sectors = %d, want 3", len(sectors))
	}
	if sectors[0].Products[0] != "A" || sectors[0].Products[1] != "B" {
		t.Fatalf("front_end = %+v", sectors[0])
	}
}
