package memory

import (
	"context"
	"errors"
	"testing"

	"github.com/louisbranch/ledgerworks/internal/services/ledger/domain/event"
	"github.com/louisbranch/ledgerworks/internal/services/ledger/storage"
	"github.com/louisbranch/ledgerworks/internal/services/ledger/storage/filter"
	"github.com/louisbranch/ledgerworks/internal/services/ledger/storage/integrity"
)

func testEvent(streamID string, eventType event.Type) event.Event {
	return event.Event{
		StreamID:    streamID,
		Type:        eventType,
		ActorID:     "alice",
		EntityType:  "stake",
		EntityID:    "s1",
		PayloadJSON: []byte(`{}`),
	}
}

func TestAppendAssignsSeqAndChain(t *testing.T) {
	keyring, err := integrity.NewKeyring(map[string][]byte{"v1": []byte("k")}, "v1")
	if err != nil {
		t.Fatalf("keyring: %v", err)
	}
	store := New(keyring)
	ctx := context.Background()

	first, err := store.AppendEvents(ctx, "pool-1", 0, []event.Event{
		testEvent("pool-1", "staking.pool_created"),
		testEvent("pool-1", "staking.staked"),
	})
	if err != nil {
		t.Fatalf("append: %v", err)
	}
	if first[0].Seq != 1 || first[1].Seq != 2 || first[1].PrevHash != first[0].ChainHash {
		t.Fatalf("events = %+v", first)
	}
	if first[0].Signature == "" || first[0].RecordedAt.IsZero() {
		t.Fatal("expected signature and recorded time")
	}

	if _, err := store.AppendEvents(ctx, "pool-1", 1, []event.Event{testEvent("pool-1", "staking.staked")}); !errors.Is(err, storage.ErrSeqConflict) {
		t.Fatalf("err = %v, want ErrSeqConflict", err)
	}

	all, err := store.ListEvents(ctx, "pool-1", 0, 0)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if err := integrity.VerifyStream(keyring, "pool-1", all); err != nil {
		t.Fatalf("verify: %v", err)
	}
	latest, _ := store.LatestSeq(ctx, "pool-1")
	if latest != 2 {
		t.Fatalf("latest = %d, want 2", latest)
	}
}

func TestAppendRejectsForeignStream(t *testing.T) {
	store := New(nil)
	_, err := store.AppendEvents(context.Background(), "a", 0, []event.Event{testEvent("b", "staking.staked")})
	if err == nil {
		t.Fatal("expected stream mismatch")
	}
	if latest, _ := store.LatestSeq(context.Background(), "a"); latest != 0 {
		t.Fatalf("latest = %d, want 0", latest)
	}
}

func TestListEventsAfterSeq(t *testing.T) {
	store := New(nil)
	ctx := context.Background()
	for i := 0; i < 5; i++ {
		if _, err := store.AppendEvents(ctx, "w", uint64(i), []event.Event{testEvent("w", "escrow.disputed")}); err != nil {
			t.Fatalf("append %d: %v", i, err)
		}
	}
	events, err := store.ListEvents(ctx, "w", 2, 2)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(events) != 2 || events[0].Seq != 3 || events[1].Seq != 4 {
		t.Fatalf("events = %+v", events)
	}
	if events, _ := store.ListEvents(ctx, "w", 9, 0); len(events) != 0 {
		t.Fatalf("expected no events past end, got %d", len(events))
	}
}

func TestListEventsPage(t *testing.T) {
	store := New(nil)
	ctx := context.Background()
	_, _ = store.AppendEvents(ctx, "pool-1", 0, []event.Event{testEvent("pool-1", "staking.pool_created")})
	_, _ = store.AppendEvents(ctx, "wager-1", 0, []event.Event{testEvent("wager-1", "escrow.locked")})
	_, _ = store.AppendEvents(ctx, "pool-1", 1, []event.Event{testEvent("pool-1", "staking.staked"), testEvent("pool-1", "staking.staked")})

	f, err := filter.Parse(`domain = "staking"`)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	page, err := store.ListEventsPage(ctx, storage.ListEventsPageRequest{PageSize: 2, Filter: f})
	if err != nil {
		t.Fatalf("page 1: %v", err)
	}
	if len(page.Events) != 2 || page.NextPageToken == "" {
		t.Fatalf("page 1 = %d events, token %q", len(page.Events), page.NextPageToken)
	}
	next, err := store.ListEventsPage(ctx, storage.ListEventsPageRequest{PageSize: 2, Filter: f, PageToken: page.NextPageToken})
	if err != nil {
		t.Fatalf("page 2: %v", err)
	}
	if len(next.Events) != 1 || next.NextPageToken != "" || next.Events[0].Seq != 3 {
		t.Fatalf("page 2 = %+v", next)
	}

	if _, err := store.ListEventsPage(ctx, storage.ListEventsPageRequest{PageToken: page.NextPageToken}); err == nil {
		t.Fatal("expected error when filter changes between pages")
	}

	scoped, err := store.ListEventsPage(ctx, storage.ListEventsPageRequest{StreamID: "pool-1", AfterSeq: 1})
	if err != nil {
		t.Fatalf("scoped: %v", err)
	}
	if len(scoped.Events) != 2 {
		t.Fatalf("scoped = %d events, want 2", len(scoped.Events))
	}
	streams, _ := store.ListStreams(ctx)
	if len(streams) != 2 || streams[0] != "pool-1" {
		t.Fatalf("streams = %v", streams)
	}
}
