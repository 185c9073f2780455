package event

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
)

// envelope fixes the field set and order that the content hash covers.
// Seq, RecordedAt, and signatures are assigned by the journal and excluded.
type envelope struct {
	StreamID    string          `json:"stream_id"`
	Type        string          `json:"type"`
	Day         uint64          `json:"day"`
	ActorID     string          `json:"actor_id"`
	RequestID   string          `json:"request_id"`
	EntityType  string          `json:"entity_type"`
	EntityID    string          `json:"entity_id"`
	PayloadJSON json.RawMessage `json:"payload"`
}

type chainEnvelope struct {
	PrevHash string `json:"prev_hash"`
	Seq      uint64 `json:"seq"`
	Hash     string `json:"hash"`
}

// EventHash returns the hex SHA-256 of the event's canonical content.
func EventHash(evt Event) (string, error) {
	payload, err := compact(evt.PayloadJSON)
	if err != nil {
		return "", err
	}
	return hashJSON(envelope{
		StreamID:    evt.StreamID,
		Type:        string(evt.Type),
		Day:         uint64(evt.Day),
		ActorID:     evt.ActorID,
		RequestID:   evt.RequestID,
		EntityType:  evt.EntityType,
		EntityID:    evt.EntityID,
		PayloadJSON: payload,
	})
}

// ChainHash links evt (with Seq and Hash set) to the previous chain hash.
func ChainHash(evt Event, prevChainHash string) (string, error) {
	if evt.Hash == "" {
		return "", fmt.Errorf("event hash is required")
	}
	return hashJSON(chainEnvelope{PrevHash: prevChainHash, Seq: evt.Seq, Hash: evt.Hash})
}

func compact(payload []byte) (json.RawMessage, error) {
	if len(payload) == 0 {
		return json.RawMessage("{}"), nil
	}
	var buf bytes.Buffer
	if err := json.Compact(&buf, payload); err != nil {
		return nil, fmt.Errorf("compact payload: %w", err)
	}
	return buf.Bytes(), nil
}

func hashJSON(v any) (string, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("marshal hash envelope: %w", err)
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:]), nil
}
