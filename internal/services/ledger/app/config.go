package server

import (
	"time"

	"github.com/louisbranch/ledgerworks/internal/platform/config"
	"github.com/louisbranch/ledgerworks/internal/services/ledger/sink"
)

// Config holds process settings that are not flags.
type Config struct {
	// DBPath selects the SQLite journal. The journal is kept in memory when
	// empty.
	DBPath      string `env:"LEDGERWORKS_LEDGER_DB_PATH"`
	MetricsAddr string `env:"LEDGERWORKS_LEDGER_METRICS_ADDR"`

	RateLimitRPS     float64       `env:"LEDGERWORKS_LEDGER_RATE_LIMIT_RPS" envDefault:"50"`
	RateLimitBurst   int           `env:"LEDGERWORKS_LEDGER_RATE_LIMIT_BURST" envDefault:"100"`
	RateLimitIdleTTL time.Duration `env:"LEDGERWORKS_LEDGER_RATE_LIMIT_IDLE_TTL" envDefault:"10m"`

	// LogEvents writes one log line per committed event.
	LogEvents bool `env:"LEDGERWORKS_LEDGER_LOG_EVENTS" envDefault:"true"`

	// NATS publishes committed events when NATS.URL is set.
	NATS sink.JetStreamConfig
}

// LoadConfig reads Config from the environment.
func LoadConfig() (Config, error) {
	var cfg Config
	if err := config.ParseEnv(&cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
