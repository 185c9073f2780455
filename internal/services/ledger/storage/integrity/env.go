package integrity

import (
	"fmt"
	"strings"

	"github.com/louisbranch/ledgerworks/internal/platform/config"
)

const (
	envHMACKeys  = "LEDGERWORKS_EVENT_HMAC_KEYS"
	envHMACKey   = "LEDGERWORKS_EVENT_HMAC_KEY"
	envHMACKeyID = "LEDGERWORKS_EVENT_HMAC_KEY_ID"
	defaultKeyID = "v1"
)

type keyringEnv struct {
	Keys  string `env:"LEDGERWORKS_EVENT_HMAC_KEYS"`
	Key   string `env:"LEDGERWORKS_EVENT_HMAC_KEY"`
	KeyID string `env:"LEDGERWORKS_EVENT_HMAC_KEY_ID" envDefault:"v1"`
}

// KeyringFromEnv loads the HMAC keyring. LEDGERWORKS_EVENT_HMAC_KEYS takes
// "id=secret,id=secret" pairs; otherwise LEDGERWORKS_EVENT_HMAC_KEY is used
// under the active key id.
func KeyringFromEnv() (*Keyring, error) {
	var raw keyringEnv
	if err := config.ParseEnv(&raw); err != nil {
		return nil, err
	}
	keyID := strings.TrimSpace(raw.KeyID)
	if keyID == "" {
		keyID = defaultKeyID
	}

	keySpec := strings.TrimSpace(raw.Keys)
	if keySpec == "" {
		key := strings.TrimSpace(raw.Key)
		if key == "" {
			return nil, fmt.Errorf("%s is required", envHMACKey)
		}
		return NewKeyring(map[string][]byte{keyID: []byte(key)}, keyID)
	}

	keys := make(map[string][]byte)
	for _, entry := range strings.Split(keySpec, ",") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		id, value, ok := strings.Cut(entry, "=")
		id = strings.TrimSpace(id)
		value = strings.TrimSpace(value)
		if !ok || id == "" || value == "" {
			return nil, fmt.Errorf("invalid %s entry", envHMACKeys)
		}
		keys[id] = []byte(value)
	}
	return NewKeyring(keys, keyID)
}
