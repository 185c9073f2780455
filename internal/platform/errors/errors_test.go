package errors

import (
	"context"
	stderrors "errors"
	"fmt"
	"testing"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

func TestErrorIsMatchesByCode(t *testing.T) {
	sentinel := New(CodeStakeLocked, "stake is locked")
	err := fmt.Errorf("withdraw: %w", WithMetadata(CodeStakeLocked, "locked until 30", map[string]string{"day": "30"}))

	if !stderrors.Is(err, sentinel) {
		t.Fatal("expected errors.Is to match by code")
	}
	if stderrors.Is(err, New(CodeNotOwner, "x")) {
		t.Fatal("expected different codes not to match")
	}
	if CodeOf(err) != CodeStakeLocked {
		t.Fatalf("code = %s, want %s", CodeOf(err), CodeStakeLocked)
	}
	if CodeOf(stderrors.New("plain")) != CodeUnknown {
		t.Fatal("expected unknown code for plain errors")
	}
}

func TestWrapUnwraps(t *testing.T) {
	cause := stderrors.New("disk full")
	err := Wrap(CodeUnknown, "append events", cause)
	if !stderrors.Is(err, cause) {
		t.Fatal("expected wrapped cause")
	}
}

func TestGRPCCodeMapping(t *testing.T) {
	tests := []struct {
		code Code
		want codes.Code
	}{
		{CodeWagerInvalid, codes.InvalidArgument},
		{CodeProposalNotFound, codes.NotFound},
		{CodeAlreadyVoted, codes.AlreadyExists},
		{CodeUnauthorized, codes.PermissionDenied},
		{CodeCapabilityExpired, codes.Unauthenticated},
		{CodeStakeLocked, codes.FailedPrecondition},
		{CodeArithmeticOverflow, codes.OutOfRange},
		{CodeRateLimited, codes.ResourceExhausted},
		{CodeUnknown, codes.Internal},
	}
	for _, tt := range tests {
		if got := tt.code.GRPCCode(); got != tt.want {
			t.Fatalf("%s.GRPCCode() = %v, want %v", tt.code, got, tt.want)
		}
	}
}

func TestGRPCRoundTrip(t *testing.T) {
	original := WithMetadata(CodeStakeLocked, "stake locked", map[string]string{"day": "30"})

	grpcErr := ToGRPC(fmt.Errorf("withdraw: %w", original), "pt-BR")
	st, ok := status.FromError(grpcErr)
	if !ok {
		t.Fatal("expected status error")
	}
	if st.Code() != codes.FailedPrecondition {
		t.Fatalf("status code = %v", st.Code())
	}
	if got := LocalizedMessage(grpcErr); got != "O stake está bloqueado até o dia 30." {
		t.Fatalf("localized message = %q", got)
	}

	back := FromGRPCError(grpcErr)
	if back.Code != CodeStakeLocked {
		t.Fatalf("code = %s, want %s", back.Code, CodeStakeLocked)
	}
	if back.Metadata["day"] != "30" {
		t.Fatalf("metadata = %v", back.Metadata)
	}
	if !stderrors.Is(back, original) {
		t.Fatal("expected rebuilt error to match sentinel")
	}
}

func TestToGRPCPassesThroughStatusAndContextErrors(t *testing.T) {
	st := status.Error(codes.Unavailable, "down")
	if got := ToGRPC(st, ""); got != st {
		t.Fatalf("expected status passthrough, got %v", got)
	}
	if got := status.Code(ToGRPC(context.DeadlineExceeded, "")); got != codes.DeadlineExceeded {
		t.Fatalf("code = %v, want DeadlineExceeded", got)
	}
	if got := status.Code(ToGRPC(stderrors.New("boom"), "")); got != codes.Internal {
		t.Fatalf("code = %v, want Internal", got)
	}
	if ToGRPC(nil, "") != nil {
		t.Fatal("expected nil for nil error")
	}
}

func TestFromGRPCErrorWithoutDetails(t *testing.T) {
	err := FromGRPCError(status.Error(codes.Unavailable, "down"))
	if err.Code != CodeUnknown {
		t.Fatalf("code = %s, want %s", err.Code, CodeUnknown)
	}
	if FromGRPCError(nil) != nil {
		t.Fatal("expected nil")
	}
}
