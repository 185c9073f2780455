// Package capabilitykey parses capability-key flags and either generates a
// signing key pair or issues a grant with the configured private key.
package capabilitykey

import (
	"errors"
	"flag"
	"io"
	"time"

	entrypoint "github.com/louisbranch/ledgerworks/internal/platform/cmd"
	"github.com/louisbranch/ledgerworks/internal/services/ledger/domain/capability"
	"github.com/louisbranch/ledgerworks/internal/tools/capabilitykey"
)

// Config holds capability-key command configuration.
type Config struct {
	Issue   bool
	Subject string
	Scopes  string
	TTL     time.Duration
}

// ParseConfig parses flags into a Config.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	cfg := Config{TTL: time.Hour}
	fs.BoolVar(&cfg.Issue, "issue", false, "Issue a grant instead of generating keys")
	fs.StringVar(&cfg.Subject, "subject", "", "Grant subject")
	fs.StringVar(&cfg.Scopes, "scopes", "", "Comma-separated scopes: ledger.mint, escrow.settle, ledger.act")
	fs.DurationVar(&cfg.TTL, "ttl", cfg.TTL, "Grant lifetime")
	if err := entrypoint.ParseArgs(fs, args); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Run writes a key pair, or a grant when cfg.Issue is set.
func Run(out io.Writer, cfg Config) error {
	if !cfg.Issue {
		return capabilitykey.GenerateKeys(out, nil)
	}
	if cfg.Subject == "" {
		return errors.New("-subject is required with -issue")
	}
	scopes, err := capabilitykey.ParseScopes(cfg.Scopes)
	if err != nil {
		return err
	}
	issuer, err := capability.IssuerFromEnv(time.Now)
	if err != nil {
		return err
	}
	return capabilitykey.IssueGrant(out, issuer, cfg.Subject, cfg.TTL, scopes)
}
