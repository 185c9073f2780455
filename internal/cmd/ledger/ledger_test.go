package ledger

import (
	"flag"
	"testing"
)

func TestParseConfigDefaults(t *testing.T) {
	fs := flag.NewFlagSet("ledger", flag.ContinueOnError)
	cfg, err := ParseConfig(fs, nil)
	if err != nil {
		t.Fatalf("parse config: %v", err)
	}
	if cfg.Port != 8090 {
		t.Fatalf("expected default port 8090, got %d", cfg.Port)
	}
	if cfg.ListenAddr() != ":8090" {
		t.Fatalf("expected listen addr :8090, got %q", cfg.ListenAddr())
	}
	if cfg.Server.RateLimitBurst != 100 {
		t.Fatalf("expected default burst 100, got %d", cfg.Server.RateLimitBurst)
	}
}

func TestParseConfigOverrides(t *testing.T) {
	t.Setenv("LEDGERWORKS_LEDGER_DB_PATH", "env.db")
	t.Setenv("LEDGERWORKS_LEDGER_METRICS_ADDR", "localhost:9100")
	fs := flag.NewFlagSet("ledger", flag.ContinueOnError)
	cfg, err := ParseConfig(fs, []string{"-addr", "127.0.0.1:9999", "-db", "flag.db"})
	if err != nil {
		t.Fatalf("parse config: %v", err)
	}
	if cfg.ListenAddr() != "127.0.0.1:9999" {
		t.Fatalf("expected addr override, got %q", cfg.ListenAddr())
	}
	if cfg.Server.DBPath != "flag.db" {
		t.Fatalf("expected flag db path, got %q", cfg.Server.DBPath)
	}
	if cfg.Server.MetricsAddr != "localhost:9100" {
		t.Fatalf("expected env metrics addr, got %q", cfg.Server.MetricsAddr)
	}
}
