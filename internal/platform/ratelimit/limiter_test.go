package ratelimit

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/louisbranch/ledgerworks/internal/platform/requestctx"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/peer"
	"google.golang.org/grpc/status"
)

func TestNewReturnsNilForInvalidArgs(t *testing.T) {
	if New(0, 1, 0) != nil || New(1, 0, 0) != nil {
		t.Fatal("expected nil limiter")
	}
	var l *KeyLimiter
	if !l.Allow("k", time.Now()) {
		t.Fatal("nil limiter should allow")
	}
}

func TestAllowPerKeyBurst(t *testing.T) {
	l := New(1, 2, time.Minute)
	now := time.Unix(1000, 0)

	if !l.Allow("a", now) || !l.Allow("a", now) {
		t.Fatal("expected burst of two")
	}
	if l.Allow("a", now) {
		t.Fatal("expected third call to be limited")
	}
	if !l.Allow("b", now) {
		t.Fatal("expected independent bucket for b")
	}
	if !l.Allow("a", now.Add(time.Second)) {
		t.Fatal("expected refill after one second")
	}
	if !l.Allow("  ", now) {
		t.Fatal("blank keys are not limited")
	}
}

func TestAllowEvictsIdleKeys(t *testing.T) {
	l := New(100, 100, time.Second)
	start := time.Unix(1000, 0)
	l.Allow("stale", start)

	later := start.Add(time.Minute)
	for i := 0; i < sweepEvery; i++ {
		l.Allow("fresh", later)
	}
	if got := l.Len(); got != 1 {
		t.Fatalf("tracked keys = %d, want 1", got)
	}
}

func TestCallerKey(t *testing.T) {
	ctx := requestctx.WithSubject(context.Background(), "alice")
	if got := CallerKey(ctx); got != "subject:alice" {
		t.Fatalf("key = %q, want %q", got, "subject:alice")
	}

	ctx = peer.NewContext(context.Background(), &peer.Peer{Addr: &net.TCPAddr{IP: net.IPv4(10, 0, 0, 1), Port: 5}})
	if got := CallerKey(ctx); got != "peer:10.0.0.1:5" {
		t.Fatalf("key = %q, want %q", got, "peer:10.0.0.1:5")
	}

	if got := CallerKey(context.Background()); got != "" {
		t.Fatalf("key = %q, want empty", got)
	}
}

func TestCallerKeyIgnoresClientMetadata(t *testing.T) {
	addr := &net.TCPAddr{IP: net.IPv4(10, 0, 0, 2), Port: 7}
	base := peer.NewContext(context.Background(), &peer.Peer{Addr: addr})
	for _, claimed := range []string{"alice", "bob", "carol"} {
		ctx := metadata.NewIncomingContext(base, metadata.Pairs("x-ledger-caller", claimed, "x-caller", claimed))
		if got := CallerKey(ctx); got != "peer:10.0.0.2:7" {
			t.Fatalf("key for claimed %q = %q, want peer key", claimed, got)
		}
	}
}

func TestUnaryServerInterceptor(t *testing.T) {
	l := New(1, 1, time.Minute)
	now := time.Unix(1000, 0)
	interceptor := l.UnaryServerInterceptor(func() time.Time { return now })
	ctx := requestctx.WithSubject(context.Background(), "bob")
	info := &grpc.UnaryServerInfo{FullMethod: "/ledger.v1.LedgerService/Vote"}
	handler := func(context.Context, any) (any, error) { return "ok", nil }

	if _, err := interceptor(ctx, nil, info, handler); err != nil {
		t.Fatalf("first call: %v", err)
	}
	_, err := interceptor(ctx, nil, info, handler)
	if status.Code(err) != codes.ResourceExhausted {
		t.Fatalf("code = %v, want ResourceExhausted", status.Code(err))
	}
	if _, err := interceptor(requestctx.WithSubject(context.Background(), "carol"), nil, info, handler); err != nil {
		t.Fatalf("other subject: %v", err)
	}
}

func TestUnaryServerInterceptorSharesPeerBucketAcrossClaimedCallers(t *testing.T) {
	l := New(1, 1, time.Minute)
	now := time.Unix(1000, 0)
	interceptor := l.UnaryServerInterceptor(func() time.Time { return now })
	base := peer.NewContext(context.Background(), &peer.Peer{Addr: &net.TCPAddr{IP: net.IPv4(10, 0, 0, 3), Port: 9}})
	info := &grpc.UnaryServerInfo{FullMethod: "/ledger.v1.LedgerService/Vote"}
	handler := func(context.Context, any) (any, error) { return "ok", nil }

	first := metadata.NewIncomingContext(base, metadata.Pairs("x-ledger-caller", "one"))
	if _, err := interceptor(first, nil, info, handler); err != nil {
		t.Fatalf("first call: %v", err)
	}
	second := metadata.NewIncomingContext(base, metadata.Pairs("x-ledger-caller", "two"))
	_, err := interceptor(second, nil, info, handler)
	if status.Code(err) != codes.ResourceExhausted {
		t.Fatalf("code = %v, want ResourceExhausted", status.Code(err))
	}
}
