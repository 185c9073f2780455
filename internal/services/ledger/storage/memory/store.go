// Package memory provides an in-process journal used by tests and by the
// ledger when no database path is configured.
package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/louisbranch/ledgerworks/internal/services/ledger/domain/event"
	"github.com/louisbranch/ledgerworks/internal/services/ledger/storage"
	"github.com/louisbranch/ledgerworks/internal/services/ledger/storage/cursor"
	"github.com/louisbranch/ledgerworks/internal/services/ledger/storage/integrity"
)

// Store is an EventStore kept in memory. Events are sealed with the keyring
// when one is configured and only hash-linked otherwise.
type Store struct {
	mu      sync.RWMutex
	keyring *integrity.Keyring
	now     func() time.Time
	// log holds every event in append order; streams index into it.
	log     []event.Event
	streams map[string][]int
}

// New creates an empty store.
func New(keyring *integrity.Keyring) *Store {
	return &Store{
		keyring: keyring,
		now:     time.Now,
		streams: make(map[string][]int),
	}
}

// AppendEvents implements storage.EventStore.
func (s *Store) AppendEvents(ctx context.Context, streamID string, expectedSeq uint64, events []event.Event) ([]event.Event, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	streamID = strings.TrimSpace(streamID)
	if streamID == "" {
		return nil, fmt.Errorf("stream id is required")
	}
	if len(events) == 0 {
		return nil, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	indexes := s.streams[streamID]
	latest := uint64(len(indexes))
	if latest != expectedSeq {
		return nil, fmt.Errorf("%w: stream_id=%s expected=%d latest=%d", storage.ErrSeqConflict, streamID, expectedSeq, latest)
	}
	prevChainHash := ""
	if latest > 0 {
		prevChainHash = s.log[indexes[latest-1]].ChainHash
	}

	recordedAt := s.now().UTC().Truncate(time.Millisecond)
	stored := make([]event.Event, len(events))
	for i, evt := range events {
		if evt.StreamID != streamID {
			return nil, fmt.Errorf("event %d: stream %q does not match %q", i, evt.StreamID, streamID)
		}
		evt.Seq = latest + uint64(i) + 1
		evt.RecordedAt = recordedAt
		var err error
		if s.keyring != nil {
			evt, err = integrity.Seal(s.keyring, evt, prevChainHash)
		} else {
			evt, err = integrity.Link(evt, prevChainHash)
		}
		if err != nil {
			return nil, fmt.Errorf("event %d: %w", i, err)
		}
		prevChainHash = evt.ChainHash
		stored[i] = evt
	}
	for _, evt := range stored {
		s.streams[streamID] = append(s.streams[streamID], len(s.log))
		s.log = append(s.log, evt)
	}
	return append([]event.Event(nil), stored...), nil
}

// ListEvents implements storage.EventStore.
func (s *Store) ListEvents(ctx context.Context, streamID string, afterSeq uint64, limit int) ([]event.Event, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	indexes := s.streams[strings.TrimSpace(streamID)]
	if afterSeq >= uint64(len(indexes)) {
		return nil, nil
	}
	indexes = indexes[afterSeq:]
	if limit > 0 && len(indexes) > limit {
		indexes = indexes[:limit]
	}
	out := make([]event.Event, 0, len(indexes))
	for _, idx := range indexes {
		out = append(out, s.log[idx])
	}
	return out, nil
}

// LatestSeq implements storage.EventStore.
func (s *Store) LatestSeq(ctx context.Context, streamID string) (uint64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return uint64(len(s.streams[strings.TrimSpace(streamID)])), nil
}

// ListStreams implements storage.EventStore.
func (s *Store) ListStreams(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]string, 0, len(s.streams))
	for id := range s.streams {
		out = append(out, id)
	}
	sort.Strings(out)
	return out, nil
}

// ListEventsPage implements storage.EventStore. Page tokens carry the log
// index the next page starts at.
func (s *Store) ListEventsPage(ctx context.Context, req storage.ListEventsPageRequest) (storage.ListEventsPageResult, error) {
	if err := ctx.Err(); err != nil {
		return storage.ListEventsPageResult{}, err
	}
	streamID := strings.TrimSpace(req.StreamID)
	if req.AfterSeq > 0 && streamID == "" {
		return storage.ListEventsPageResult{}, fmt.Errorf("after seq requires a stream id")
	}
	start, err := cursor.Resume(req.PageToken, streamID, req.Filter.String())
	if err != nil {
		return storage.ListEventsPageResult{}, err
	}
	pageSize := storage.NormalizePageSize(req.PageSize)

	s.mu.RLock()
	defer s.mu.RUnlock()

	var result storage.ListEventsPageResult
	for pos := start; pos < uint64(len(s.log)); pos++ {
		evt := s.log[pos]
		if streamID != "" && evt.StreamID != streamID {
			continue
		}
		if evt.Seq <= req.AfterSeq && streamID != "" {
			continue
		}
		ok, err := req.Filter.Match(evt)
		if err != nil {
			return storage.ListEventsPageResult{}, err
		}
		if !ok {
			continue
		}
		if len(result.Events) == pageSize {
			token, err := cursor.Encode(cursor.New(pos, streamID, req.Filter.String()))
			if err != nil {
				return storage.ListEventsPageResult{}, err
			}
			result.NextPageToken = token
			break
		}
		result.Events = append(result.Events, evt)
	}
	return result, nil
}

var _ storage.EventStore = (*Store)(nil)
