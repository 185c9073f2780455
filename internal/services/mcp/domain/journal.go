package domain

import (
	"context"
	"encoding/json"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	ledgerapi "github.com/louisbranch/ledgerworks/internal/services/ledger/api/grpc/ledger"
)

// EventListInput represents the MCP tool input for listing journal events.
type EventListInput struct {
	StreamID  string `json:"stream_id,omitempty" jsonschema:"registry, wager, or pool identifier; all streams when empty"`
	AfterSeq  uint64 `json:"after_seq,omitempty" jsonschema:"only events after this sequence number (requires stream_id)"`
	PageSize  int    `json:"page_size,omitempty" jsonschema:"maximum events to return"`
	PageToken string `json:"page_token,omitempty" jsonschema:"token from a previous page"`
	Filter    string `json:"filter,omitempty" jsonschema:"AIP-160 filter, e.g. domain = \"escrow\" AND day >= 3"`
}

// EventListResult is one page of journal events.
type EventListResult struct {
	Events        []EventRecord `json:"events"`
	NextPageToken string        `json:"next_page_token,omitempty"`
}

// EventRecord is a journal event as reported to agents.
type EventRecord struct {
	StreamID   string `json:"stream_id"`
	Seq        uint64 `json:"seq"`
	Type       string `json:"type"`
	Day        uint64 `json:"day"`
	RecordedAt string `json:"recorded_at"`
	ActorID    string `json:"actor_id,omitempty"`
	RequestID  string `json:"request_id,omitempty"`
	EntityType string `json:"entity_type"`
	EntityID   string `json:"entity_id"`
	Payload    any    `json:"payload"`
}

// StreamVerifyInput represents the MCP tool input for checking a stream.
type StreamVerifyInput struct {
	StreamID string `json:"stream_id" jsonschema:"registry, wager, or pool identifier"`
}

// EventListTool defines the MCP tool schema for listing events.
func EventListTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "journal_event_list",
		Description: "Lists journal events with optional filtering and paging",
	}
}

// StreamVerifyTool defines the MCP tool schema for integrity checks.
func StreamVerifyTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "journal_stream_verify",
		Description: "Checks the hash chain and signatures of one journal stream",
	}
}

func EventListHandler(client LedgerClient) mcp.ToolHandlerFor[EventListInput, EventListResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, in EventListInput) (*mcp.CallToolResult, EventListResult, error) {
		result, page, err := invoke(ctx, "event list", &ledgerapi.ListEventsRequest{
			StreamID:  in.StreamID,
			AfterSeq:  in.AfterSeq,
			PageSize:  in.PageSize,
			PageToken: in.PageToken,
			Filter:    in.Filter,
		}, client.ListEvents)
		if err != nil {
			return nil, EventListResult{}, err
		}
		out := EventListResult{
			Events:        make([]EventRecord, 0, len(page.Events)),
			NextPageToken: page.NextPageToken,
		}
		for _, record := range page.Events {
			var payload any
			if err := json.Unmarshal(record.Payload, &payload); err != nil {
				payload = string(record.Payload)
			}
			out.Events = append(out.Events, EventRecord{
				StreamID:   record.StreamID,
				Seq:        record.Seq,
				Type:       record.Type,
				Day:        record.Day,
				RecordedAt: record.RecordedAt.UTC().Format(time.RFC3339),
				ActorID:    record.ActorID,
				RequestID:  record.RequestID,
				EntityType: record.EntityType,
				EntityID:   record.EntityID,
				Payload:    payload,
			})
		}
		return result, out, nil
	}
}

func StreamVerifyHandler(client LedgerClient) mcp.ToolHandlerFor[StreamVerifyInput, ledgerapi.VerifyStreamResponse] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, in StreamVerifyInput) (*mcp.CallToolResult, ledgerapi.VerifyStreamResponse, error) {
		return invoke(ctx, "stream verify", &ledgerapi.VerifyStreamRequest{StreamID: in.StreamID}, client.VerifyStream)
	}
}
