package metrics

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

func TestRecordCommand(t *testing.T) {
	m := New()
	m.RecordCommand("staking", "staking.stake", OutcomeAccepted, 10*time.Millisecond)
	m.RecordCommand("staking", "staking.stake", OutcomeAccepted, time.Millisecond)
	m.RecordCommand("staking", "staking.withdraw", OutcomeRejected, time.Millisecond)

	if got := testutil.ToFloat64(m.commands.WithLabelValues("staking", "staking.stake", OutcomeAccepted)); got != 2 {
		t.Fatalf("accepted stakes = %v, want 2", got)
	}
	if got := testutil.ToFloat64(m.commands.WithLabelValues("staking", "staking.withdraw", OutcomeRejected)); got != 1 {
		t.Fatalf("rejected withdrawals = %v, want 1", got)
	}
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	m.RecordCommand("governance", "governance.vote", OutcomeAccepted, time.Second)
	m.RecordEventAppended("governance.vote_cast")
	m.RecordSinkFailure("nats")

	interceptor := m.UnaryServerInterceptor()
	resp, err := interceptor(context.Background(), "req", &grpc.UnaryServerInfo{FullMethod: "/x/Y"}, func(context.Context, any) (any, error) {
		return "ok", nil
	})
	if err != nil || resp != "ok" {
		t.Fatalf("resp = %v, err = %v", resp, err)
	}
}

func TestUnaryServerInterceptorRecordsCode(t *testing.T) {
	m := New()
	interceptor := m.UnaryServerInterceptor()
	info := &grpc.UnaryServerInfo{FullMethod: "/ledger.v1.LedgerService/Withdraw"}

	_, err := interceptor(context.Background(), nil, info, func(context.Context, any) (any, error) {
		return nil, status.Error(codes.FailedPrecondition, "locked")
	})
	if status.Code(err) != codes.FailedPrecondition {
		t.Fatalf("code = %v", status.Code(err))
	}
	_, _ = interceptor(context.Background(), nil, info, func(context.Context, any) (any, error) {
		return nil, errors.New("plain")
	})

	if got := testutil.ToFloat64(m.requests.WithLabelValues(info.FullMethod, codes.FailedPrecondition.String())); got != 1 {
		t.Fatalf("failed precondition requests = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.requests.WithLabelValues(info.FullMethod, codes.Unknown.String())); got != 1 {
		t.Fatalf("unknown requests = %v, want 1", got)
	}
}

func TestHandlerExposesMetrics(t *testing.T) {
	m := New()
	m.RecordEventAppended("escrow.locked")
	m.RecordSinkFailure("nats")

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	body := rec.Body.String()
	for _, want := range []string{
		`ledgerworks_journal_events_appended_total{type="escrow.locked"} 1`,
		`ledgerworks_sink_failures_total{sink="nats"} 1`,
	} {
		if !strings.Contains(body, want) {
			t.Fatalf("expected %q in exposition", want)
		}
	}
}
