// Package storage defines the journal boundary: append-only, per-stream
// ordered events that the engine replays to rebuild record state.
package storage

import (
	"context"
	"errors"

	"github.com/louisbranch/ledgerworks/internal/services/ledger/domain/event"
	"github.com/louisbranch/ledgerworks/internal/services/ledger/storage/filter"
)

// ErrSeqConflict indicates another writer appended to the stream after the
// caller loaded it.
var ErrSeqConflict = errors.New("stream sequence conflict")

// EventStore owns the event stream boundary that drives replay; this is the
// source of truth for state reconstruction.
type EventStore interface {
	// AppendEvents atomically appends events to streamID when its latest seq
	// equals expectedSeq, returning them with seq, hashes, and signatures set.
	AppendEvents(ctx context.Context, streamID string, expectedSeq uint64, events []event.Event) ([]event.Event, error)
	// ListEvents returns events with seq > afterSeq ordered ascending. A
	// limit <= 0 returns the rest of the stream.
	ListEvents(ctx context.Context, streamID string, afterSeq uint64, limit int) ([]event.Event, error)
	// LatestSeq returns the latest seq of streamID, 0 when empty.
	LatestSeq(ctx context.Context, streamID string) (uint64, error)
	// ListEventsPage returns a filtered page of events.
	ListEventsPage(ctx context.Context, req ListEventsPageRequest) (ListEventsPageResult, error)
	// ListStreams returns every stream id with at least one event.
	ListStreams(ctx context.Context) ([]string, error)
}

const (
	DefaultPageSize = 50
	MaxPageSize     = 200
)

// ListEventsPageRequest describes request filters for event history views.
type ListEventsPageRequest struct {
	// StreamID scopes the query to one record; empty lists every stream.
	StreamID string
	// AfterSeq returns only events with seq greater than this value. It
	// requires StreamID.
	AfterSeq uint64
	// PageSize is the maximum number of events to return (default 50, max 200).
	PageSize int
	// PageToken is the opaque cursor returned as NextPageToken.
	PageToken string
	// Filter restricts the events returned.
	Filter filter.Filter
}

// ListEventsPageResult is one page of events.
type ListEventsPageResult struct {
	Events        []event.Event
	NextPageToken string
}

// NormalizePageSize clamps size into [1, MaxPageSize].
func NormalizePageSize(size int) int {
	if size <= 0 {
		return DefaultPageSize
	}
	if size > MaxPageSize {
		return MaxPageSize
	}
	return size
}
