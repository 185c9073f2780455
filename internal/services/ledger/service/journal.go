package service

import (
	"context"
	"strings"

	apperrors "github.com/louisbranch/ledgerworks/internal/platform/errors"
	"github.com/louisbranch/ledgerworks/internal/services/ledger/storage"
	"github.com/louisbranch/ledgerworks/internal/services/ledger/storage/cursor"
	"github.com/louisbranch/ledgerworks/internal/services/ledger/storage/filter"
	"github.com/louisbranch/ledgerworks/internal/services/ledger/storage/integrity"
)

// Journal reads and verifies the event journal.
type Journal struct {
	store   storage.EventStore
	keyring *integrity.Keyring
}

// ListRequest selects a page of journal events.
type ListRequest struct {
	StreamID  string
	AfterSeq  uint64
	PageSize  int
	PageToken string
	// Filter is an AIP-160 expression over event fields.
	Filter string
}

// List returns one page of events.
func (j *Journal) List(ctx context.Context, req ListRequest) (storage.ListEventsPageResult, error) {
	streamID := strings.TrimSpace(req.StreamID)
	if req.AfterSeq > 0 && streamID == "" {
		return storage.ListEventsPageResult{}, apperrors.WithMetadata(apperrors.CodeInvalidArgument, "after_seq requires stream_id", map[string]string{"field": "after_seq"})
	}
	parsed, err := filter.Parse(req.Filter)
	if err != nil {
		return storage.ListEventsPageResult{}, apperrors.WithMetadata(apperrors.CodeInvalidArgument, err.Error(), map[string]string{"field": "filter"})
	}
	if _, err := cursor.Resume(req.PageToken, streamID, parsed.String()); err != nil {
		return storage.ListEventsPageResult{}, apperrors.WithMetadata(apperrors.CodeInvalidArgument, err.Error(), map[string]string{"field": "page_token"})
	}
	return j.store.ListEventsPage(ctx, storage.ListEventsPageRequest{
		StreamID:  streamID,
		AfterSeq:  req.AfterSeq,
		PageSize:  req.PageSize,
		PageToken: req.PageToken,
		Filter:    parsed,
	})
}

// Streams lists every record with journaled events.
func (j *Journal) Streams(ctx context.Context) ([]string, error) {
	return j.store.ListStreams(ctx)
}

// Verify checks the hash chain and signatures of one stream and returns its
// length.
func (j *Journal) Verify(ctx context.Context, streamID string) (int, error) {
	if j.keyring == nil {
		return 0, apperrors.New(apperrors.CodeJournalIntegrity, "journal signing keys are not configured")
	}
	streamID = strings.TrimSpace(streamID)
	if streamID == "" {
		return 0, apperrors.WithMetadata(apperrors.CodeInvalidArgument, "stream id is required", map[string]string{"field": "stream_id"})
	}
	events, err := j.store.ListEvents(ctx, streamID, 0, 0)
	if err != nil {
		return 0, err
	}
	if err := integrity.VerifyStream(j.keyring, streamID, events); err != nil {
		return 0, apperrors.Wrap(apperrors.CodeJournalIntegrity, err.Error(), err)
	}
	return len(events), nil
}
