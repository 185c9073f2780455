// Package cursor provides opaque pagination token encoding/decoding for
// journal listings.
package cursor

import (
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"fmt"
)

// Cursor represents the internal state of a pagination cursor. Pages walk
// the journal in append order, so Position is the append position of the
// last event returned.
type Cursor struct {
	Position uint64 `json:"pos"`
	// FilterHash invalidates tokens if the filter changes.
	FilterHash string `json:"filter_hash,omitempty"`
	// StreamID invalidates tokens reused against another stream.
	StreamID string `json:"stream_id,omitempty"`
}

// New creates the cursor that follows position for the given query.
func New(position uint64, streamID, filter string) Cursor {
	return Cursor{Position: position, FilterHash: HashFilter(filter), StreamID: streamID}
}

// Encode encodes a cursor to an opaque base64 string.
func Encode(c Cursor) (string, error) {
	data, err := json.Marshal(c)
	if err != nil {
		return "", fmt.Errorf("marshal cursor: %w", err)
	}
	return base64.URLEncoding.EncodeToString(data), nil
}

// Decode decodes an opaque base64 string to a cursor.
func Decode(token string) (Cursor, error) {
	if token == "" {
		return Cursor{}, fmt.Errorf("empty token")
	}
	data, err := base64.URLEncoding.DecodeString(token)
	if err != nil {
		return Cursor{}, fmt.Errorf("decode base64: %w", err)
	}
	var c Cursor
	if err := json.Unmarshal(data, &c); err != nil {
		return Cursor{}, fmt.Errorf("unmarshal cursor: %w", err)
	}
	return c, nil
}

// Resume decodes token and checks it belongs to the same query. An empty
// token starts from the beginning.
func Resume(token, streamID, filter string) (uint64, error) {
	if token == "" {
		return 0, nil
	}
	c, err := Decode(token)
	if err != nil {
		return 0, err
	}
	if c.FilterHash != HashFilter(filter) {
		return 0, fmt.Errorf("filter changed since cursor was created")
	}
	if c.StreamID != streamID {
		return 0, fmt.Errorf("stream changed since cursor was created")
	}
	return c.Position, nil
}

// HashFilter computes a short hash of the filter string for cursor validation.
// Returns empty string for empty filter.
func HashFilter(filter string) string {
	if filter == "" {
		return ""
	}
	h := sha256.Sum256([]byte(filter))
	return hex.EncodeToString(h[:8])
}
