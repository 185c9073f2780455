package domain

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/metadata"

	apperrors "github.com/louisbranch/ledgerworks/internal/platform/errors"
	"github.com/louisbranch/ledgerworks/internal/platform/requestctx"
	ledgerapi "github.com/louisbranch/ledgerworks/internal/services/ledger/api/grpc/ledger"
)

type fakeLedger struct {
	LedgerClient

	lastRequestID string
	lastAuth      string
	wager         *ledgerapi.Wager
	events        *ledgerapi.ListEventsResponse
	err           error
}

func (f *fakeLedger) record(ctx context.Context) {
	md, _ := metadata.FromOutgoingContext(ctx)
	if values := md.Get(requestctx.RequestIDHeader); len(values) > 0 {
		f.lastRequestID = values[0]
	}
	f.lastAuth = ""
	if values := md.Get(ledgerapi.AuthorizationHeader); len(values) > 0 {
		f.lastAuth = values[0]
	}
}

func (f *fakeLedger) GetWager(ctx context.Context, _ *ledgerapi.WagerRequest, _ ...grpc.CallOption) (*ledgerapi.Wager, error) {
	f.record(ctx)
	return f.wager, f.err
}

func (f *fakeLedger) DisputeWager(ctx context.Context, _ *ledgerapi.WagerRequest, _ ...grpc.CallOption) (*ledgerapi.Empty, error) {
	f.record(ctx)
	return &ledgerapi.Empty{}, f.err
}

func (f *fakeLedger) ListEvents(ctx context.Context, _ *ledgerapi.ListEventsRequest, _ ...grpc.CallOption) (*ledgerapi.ListEventsResponse, error) {
	f.record(ctx)
	return f.events, f.err
}

func TestHandlerReturnsResponseAndTagsRequest(t *testing.T) {
	fake := &fakeLedger{wager: &ledgerapi.Wager{WagerID: "w1", Status: "active", Custody: 20}}
	_, out, err := WagerGetHandler(fake)(context.Background(), nil, WagerInput{WagerID: "w1"})
	if err != nil {
		t.Fatalf("handler: %v", err)
	}
	if out.WagerID != "w1" || out.Custody != 20 {
		t.Fatalf("out = %+v", out)
	}
	if fake.lastRequestID == "" {
		t.Fatal("expected request id metadata on the ledger call")
	}
}

func TestHandlerErrorCarriesCode(t *testing.T) {
	fake := &fakeLedger{err: apperrors.New(apperrors.CodeWagerNotActive, "wager not active")}
	_, out, err := WagerDisputeHandler(fake)(context.Background(), nil, WagerInput{WagerID: "w1", Grant: "resolver-grant"})
	if err == nil {
		t.Fatal("expected error")
	}
	if out.OK {
		t.Fatal("expected zero output on error")
	}
	if !strings.Contains(err.Error(), "WAGER_NOT_ACTIVE") || !strings.HasPrefix(err.Error(), "wager dispute failed") {
		t.Fatalf("err = %q", err)
	}
}

func TestActingToolsForwardGrant(t *testing.T) {
	fake := &fakeLedger{}
	if _, _, err := WagerDisputeHandler(fake)(context.Background(), nil, WagerInput{WagerID: "w1", Grant: "resolver-grant"}); err != nil {
		t.Fatalf("dispute: %v", err)
	}
	if fake.lastAuth != "Bearer resolver-grant" {
		t.Fatalf("authorization = %q, want %q", fake.lastAuth, "Bearer resolver-grant")
	}
	if _, _, err := WagerDisputeHandler(fake)(context.Background(), nil, WagerInput{WagerID: "w1"}); err != nil {
		t.Fatalf("dispute: %v", err)
	}
	if fake.lastAuth != "" {
		t.Fatalf("authorization = %q, want none", fake.lastAuth)
	}
}

func TestHandlerRejectsMissingResponse(t *testing.T) {
	fake := &fakeLedger{}
	if _, _, err := WagerGetHandler(fake)(context.Background(), nil, WagerInput{WagerID: "w1"}); err == nil {
		t.Fatal("expected error for nil response")
	}
}

func TestEventListDecodesPayloads(t *testing.T) {
	recorded := time.Date(2026, 5, 1, 9, 30, 0, 0, time.FixedZone("x", 3600))
	fake := &fakeLedger{events: &ledgerapi.ListEventsResponse{
		NextPageToken: "next",
	}}
	fake.events.Events = append(fake.events.Events, recordFixture(recorded))

	_, out, err := EventListHandler(fake)(context.Background(), nil, EventListInput{Filter: `domain = "escrow"`})
	if err != nil {
		t.Fatalf("handler: %v", err)
	}
	if out.NextPageToken != "next" || len(out.Events) != 1 {
		t.Fatalf("out = %+v", out)
	}
	got := out.Events[0]
	if got.RecordedAt != "2026-05-01T08:30:00Z" {
		t.Fatalf("recorded_at = %q", got.RecordedAt)
	}
	payload, ok := got.Payload.(map[string]any)
	if !ok || payload["winner"] != "p1" {
		t.Fatalf("payload = %#v", got.Payload)
	}
}

func TestToolErrorFallsBackToErrorText(t *testing.T) {
	err := toolError("balance", errors.New("connection refused"))
	if err.Error() != "balance failed: UNKNOWN: connection refused" {
		t.Fatalf("err = %q", err)
	}
}
