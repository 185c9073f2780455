// Package integrity signs and verifies the hash chain of journal streams.
package integrity

import (
	"crypto/hkdf"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/louisbranch/ledgerworks/internal/services/ledger/domain/event"
)

// Keyring stores root HMAC keys and the active key id.
type Keyring struct {
	keys        map[string][]byte
	activeKeyID string
}

// NewKeyring constructs a keyring for HMAC signing and verification.
func NewKeyring(keys map[string][]byte, activeKeyID string) (*Keyring, error) {
	if len(keys) == 0 {
		return nil, fmt.Errorf("hmac keys are required")
	}
	activeKeyID = strings.TrimSpace(activeKeyID)
	if activeKeyID == "" {
		return nil, fmt.Errorf("active hmac key id is required")
	}
	if _, ok := keys[activeKeyID]; !ok {
		return nil, fmt.Errorf("active hmac key id is not configured")
	}
	return &Keyring{keys: keys, activeKeyID: activeKeyID}, nil
}

// ActiveKeyID returns the configured signing key id.
func (k *Keyring) ActiveKeyID() string {
	if k == nil {
		return ""
	}
	return k.activeKeyID
}

// Sign signs a stream's chain hash with the active key.
func (k *Keyring) Sign(streamID, chainHash string) (signature, keyID string, err error) {
	if k == nil {
		return "", "", fmt.Errorf("hmac keyring is not configured")
	}
	key, err := k.streamKey(k.activeKeyID, streamID)
	if err != nil {
		return "", "", err
	}
	return hmacSHA256Hex(key, chainHash), k.activeKeyID, nil
}

// Verify validates a chain hash signature made by any configured key.
func (k *Keyring) Verify(streamID, chainHash, signature, keyID string) error {
	if k == nil {
		return fmt.Errorf("hmac keyring is not configured")
	}
	keyID = strings.TrimSpace(keyID)
	if keyID == "" {
		return fmt.Errorf("signature key id is required")
	}
	key, err := k.streamKey(keyID, streamID)
	if err != nil {
		return err
	}
	if !hmac.Equal([]byte(hmacSHA256Hex(key, chainHash)), []byte(signature)) {
		return fmt.Errorf("signature mismatch")
	}
	return nil
}

func (k *Keyring) streamKey(keyID, streamID string) ([]byte, error) {
	rootKey, ok := k.keys[keyID]
	if !ok {
		return nil, fmt.Errorf("hmac key id %q is unknown", keyID)
	}
	streamID = strings.TrimSpace(streamID)
	if streamID == "" {
		return nil, fmt.Errorf("stream id is required")
	}
	key, err := hkdf.Key(sha256.New, rootKey, nil, "stream:"+streamID, 32)
	if err != nil {
		return nil, fmt.Errorf("derive stream key: %w", err)
	}
	return key, nil
}

func hmacSHA256Hex(key []byte, value string) string {
	mac := hmac.New(sha256.New, key)
	_, _ = mac.Write([]byte(value))
	return hex.EncodeToString(mac.Sum(nil))
}

// Link assigns hash, prev hash, and chain hash to evt. evt.Seq must already
// be set; prevChainHash is the chain hash of the previous event in the stream.
func Link(evt event.Event, prevChainHash string) (event.Event, error) {
	hash, err := event.EventHash(evt)
	if err != nil {
		return event.Event{}, fmt.Errorf("event hash: %w", err)
	}
	evt.Hash = hash
	chainHash, err := event.ChainHash(evt, prevChainHash)
	if err != nil {
		return event.Event{}, fmt.Errorf("chain hash: %w", err)
	}
	evt.PrevHash = prevChainHash
	evt.ChainHash = chainHash
	return evt, nil
}

// Seal links evt into its stream and signs the chain hash.
func Seal(k *Keyring, evt event.Event, prevChainHash string) (event.Event, error) {
	evt, err := Link(evt, prevChainHash)
	if err != nil {
		return event.Event{}, err
	}
	signature, keyID, err := k.Sign(evt.StreamID, evt.ChainHash)
	if err != nil {
		return event.Event{}, fmt.Errorf("sign: %w", err)
	}
	evt.Signature = signature
	evt.SignatureKeyID = keyID
	return evt, nil
}

// VerifyStream checks sequence continuity, content hashes, chain links, and
// signatures of a complete stream listed in seq order.
func VerifyStream(k *Keyring, streamID string, events []event.Event) error {
	prevChainHash := ""
	var lastSeq uint64
	for _, evt := range events {
		if evt.StreamID != streamID {
			return fmt.Errorf("event stream mismatch stream_id=%s seq=%d", streamID, evt.Seq)
		}
		if evt.Seq != lastSeq+1 {
			return fmt.Errorf("event sequence gap stream_id=%s expected=%d got=%d", streamID, lastSeq+1, evt.Seq)
		}
		if evt.PrevHash != prevChainHash {
			return fmt.Errorf("prev hash mismatch stream_id=%s seq=%d", streamID, evt.Seq)
		}
		hash, err := event.EventHash(evt)
		if err != nil {
			return fmt.Errorf("compute event hash stream_id=%s seq=%d: %w", streamID, evt.Seq, err)
		}
		if hash != evt.Hash {
			return fmt.Errorf("event hash mismatch stream_id=%s seq=%d", streamID, evt.Seq)
		}
		chainHash, err := event.ChainHash(evt, prevChainHash)
		if err != nil {
			return fmt.Errorf("compute chain hash stream_id=%s seq=%d: %w", streamID, evt.Seq, err)
		}
		if chainHash != evt.ChainHash {
			return fmt.Errorf("chain hash mismatch stream_id=%s seq=%d", streamID, evt.Seq)
		}
		if err := k.Verify(streamID, chainHash, evt.Signature, evt.SignatureKeyID); err != nil {
			return fmt.Errorf("signature mismatch stream_id=%s seq=%d: %w", streamID, evt.Seq, err)
		}
		prevChainHash = evt.ChainHash
		lastSeq = evt.Seq
	}
	return nil
}
