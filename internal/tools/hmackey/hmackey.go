// Package hmackey generates journal signing keys for the ledger keyring.
package hmackey

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"flag"
	"fmt"
	"io"
	"strings"
)

// Config holds configuration for HMAC key generation.
type Config struct {
	Bytes int
	KeyID string
	// Existing is the current LEDGERWORKS_EVENT_HMAC_KEYS value. When set,
	// the new key is appended and becomes active so older streams still
	// verify.
	Existing string
}

// ParseConfig parses flags into a Config.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	cfg := Config{Bytes: 32, KeyID: "v1"}
	fs.IntVar(&cfg.Bytes, "bytes", cfg.Bytes, "number of random bytes (default: 32)")
	fs.StringVar(&cfg.KeyID, "key-id", cfg.KeyID, "id of the generated key")
	fs.StringVar(&cfg.Existing, "rotate", "", "current LEDGERWORKS_EVENT_HMAC_KEYS value to rotate from")
	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Run generates the key and writes shell exports to out.
func Run(cfg Config, out io.Writer, reader io.Reader) error {
	if cfg.Bytes <= 0 {
		return errors.New("bytes must be greater than zero")
	}
	if out == nil {
		return errors.New("output is required")
	}
	keyID := strings.TrimSpace(cfg.KeyID)
	if keyID == "" || strings.ContainsAny(keyID, "=,") {
		return fmt.Errorf("invalid key id %q", cfg.KeyID)
	}
	if reader == nil {
		reader = rand.Reader
	}

	buf := make([]byte, cfg.Bytes)
	if _, err := io.ReadFull(reader, buf); err != nil {
		return fmt.Errorf("generate random bytes: %w", err)
	}
	key := hex.EncodeToString(buf)

	existing := strings.TrimSpace(cfg.Existing)
	if existing == "" {
		_, err := fmt.Fprintf(out, "export LEDGERWORKS_EVENT_HMAC_KEY=%s\nexport LEDGERWORKS_EVENT_HMAC_KEY_ID=%s\n", key, keyID)
		return err
	}
	for _, entry := range strings.Split(existing, ",") {
		id, _, _ := strings.Cut(strings.TrimSpace(entry), "=")
		if strings.TrimSpace(id) == keyID {
			return fmt.Errorf("key id %q is already in the keyring", keyID)
		}
	}
	_, err := fmt.Fprintf(out, "export LEDGERWORKS_EVENT_HMAC_KEYS=%s,%s=%s\nexport LEDGERWORKS_EVENT_HMAC_KEY_ID=%s\n", existing, keyID, key, keyID)
	return err
}
