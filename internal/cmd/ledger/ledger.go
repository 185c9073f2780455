// Package ledger parses ledger command flags and starts the ledger server.
package ledger

import (
	"context"
	"flag"
	"fmt"

	entrypoint "github.com/louisbranch/ledgerworks/internal/platform/cmd"
	server "github.com/louisbranch/ledgerworks/internal/services/ledger/app"
)

// Config holds ledger command configuration.
type Config struct {
	Port int    `env:"LEDGERWORKS_LEDGER_PORT" envDefault:"8090"`
	Addr string `env:"LEDGERWORKS_LEDGER_LISTEN_ADDR"`

	Server server.Config
}

// ParseConfig parses environment and flags into a Config.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	if err := entrypoint.ParseConfig(&cfg); err != nil {
		return Config{}, err
	}
	fs.IntVar(&cfg.Port, "port", cfg.Port, "The ledger server port")
	fs.StringVar(&cfg.Addr, "addr", cfg.Addr, "The ledger server listen address (overrides -port)")
	fs.StringVar(&cfg.Server.DBPath, "db", cfg.Server.DBPath, "SQLite journal path (in memory when empty)")
	fs.StringVar(&cfg.Server.MetricsAddr, "metrics-addr", cfg.Server.MetricsAddr, "Prometheus metrics listen address")
	if err := entrypoint.ParseArgs(fs, args); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// ListenAddr resolves the gRPC listen address.
func (c Config) ListenAddr() string {
	if c.Addr != "" {
		return c.Addr
	}
	return fmt.Sprintf(":%d", c.Port)
}

// Run starts the ledger API service.
func Run(ctx context.Context, cfg Config) error {
	return entrypoint.RunWithTelemetry(ctx, entrypoint.ServiceLedger, func(ctx context.Context) error {
		return server.Run(ctx, cfg.ListenAddr(), cfg.Server)
	})
}
