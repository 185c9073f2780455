// Package sink delivers appended journal events to downstream consumers.
// Delivery is fire-and-forget from the ledger's point of view: the engine
// logs and counts failures but never fails a command because of them.
package sink

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"time"

	"github.com/louisbranch/ledgerworks/internal/services/ledger/domain/event"
)

// Sink receives events after they are committed to the journal.
type Sink interface {
	Emit(ctx context.Context, evt event.Event) error
}

// Func adapts a function to Sink.
type Func func(ctx context.Context, evt event.Event) error

// Emit calls f.
func (f Func) Emit(ctx context.Context, evt event.Event) error { return f(ctx, evt) }

// Nop discards events.
type Nop struct{}

// Emit implements Sink.
func (Nop) Emit(context.Context, event.Event) error { return nil }

// Multi fans an event out to every sink and joins their errors.
type Multi []Sink

// Emit implements Sink.
func (m Multi) Emit(ctx context.Context, evt event.Event) error {
	var errs []error
	for _, s := range m {
		if s == nil {
			continue
		}
		if err := s.Emit(ctx, evt); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Log writes one line per event with the standard logger.
type Log struct {
	Logf func(format string, args ...any)
}

// Emit implements Sink.
func (l Log) Emit(_ context.Context, evt event.Event) error {
	logf := l.Logf
	if logf == nil {
		logf = log.Printf
	}
	logf("event type=%s stream_id=%s seq=%d day=%d actor_id=%s entity=%s/%s",
		evt.Type, evt.StreamID, evt.Seq, evt.Day, evt.ActorID, evt.EntityType, evt.EntityID)
	return nil
}

// Record is the wire form of an event published to brokers.
type Record struct {
	StreamID   string          `json:"stream_id"`
	Seq        uint64          `json:"seq"`
	Type       string          `json:"type"`
	Day        uint64          `json:"day"`
	RecordedAt time.Time       `json:"recorded_at"`
	ActorID    string          `json:"actor_id,omitempty"`
	RequestID  string          `json:"request_id,omitempty"`
	EntityType string          `json:"entity_type"`
	EntityID   string          `json:"entity_id"`
	Hash       string          `json:"hash"`
	ChainHash  string          `json:"chain_hash"`
	Payload    json.RawMessage `json:"payload"`
}

// NewRecord converts evt to its wire form.
func NewRecord(evt event.Event) Record {
	payload := json.RawMessage(evt.PayloadJSON)
	if len(payload) == 0 {
		payload = json.RawMessage("{}")
	}
	return Record{
		StreamID:   evt.StreamID,
		Seq:        evt.Seq,
		Type:       string(evt.Type),
		Day:        uint64(evt.Day),
		RecordedAt: evt.RecordedAt,
		ActorID:    evt.ActorID,
		RequestID:  evt.RequestID,
		EntityType: evt.EntityType,
		EntityID:   evt.EntityID,
		Hash:       evt.Hash,
		ChainHash:  evt.ChainHash,
		Payload:    payload,
	}
}
