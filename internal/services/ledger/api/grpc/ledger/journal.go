package ledger

import (
	"context"
	"strings"

	"github.com/louisbranch/ledgerworks/internal/services/ledger/service"
	"github.com/louisbranch/ledgerworks/internal/services/ledger/sink"
)

func (s *Server) ListEvents(ctx context.Context, in *ListEventsRequest) (*ListEventsResponse, error) {
	page, err := s.ledger.Journal.List(ctx, service.ListRequest{
		StreamID:  in.StreamID,
		AfterSeq:  in.AfterSeq,
		PageSize:  in.PageSize,
		PageToken: in.PageToken,
		Filter:    in.Filter,
	})
	if err != nil {
		return nil, err
	}
	out := &ListEventsResponse{
		Events:        make([]sink.Record, 0, len(page.Events)),
		NextPageToken: page.NextPageToken,
	}
	for _, evt := range page.Events {
		out.Events = append(out.Events, sink.NewRecord(evt))
	}
	return out, nil
}

func (s *Server) VerifyStream(ctx context.Context, in *VerifyStreamRequest) (*VerifyStreamResponse, error) {
	streamID := strings.TrimSpace(in.StreamID)
	if streamID == "" {
		return nil, required("stream_id")
	}
	count, err := s.ledger.Journal.Verify(ctx, streamID)
	if err != nil {
		return nil, err
	}
	return &VerifyStreamResponse{StreamID: streamID, Events: count}, nil
}
