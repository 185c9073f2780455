package ledger

import (
	"context"
	"strings"

	"google.golang.org/grpc"
	"google.golang.org/grpc/metadata"

	apperrors "github.com/louisbranch/ledgerworks/internal/platform/errors"
	"github.com/louisbranch/ledgerworks/internal/platform/requestctx"
	"github.com/louisbranch/ledgerworks/internal/services/ledger/domain/capability"
)

// AuthorizationHeader carries "Bearer <grant>" on calls that act for a
// caller. The grant must hold the ledger.act scope; its subject is the
// caller and the wallet the call may spend from.
const AuthorizationHeader = "authorization"

const bearerPrefix = "bearer "

type credentialContextKey struct{}

// WithGrant attaches grant to outgoing calls made with ctx. An empty grant
// leaves ctx anonymous.
func WithGrant(ctx context.Context, grant string) context.Context {
	grant = strings.TrimSpace(grant)
	if grant == "" {
		return ctx
	}
	return metadata.AppendToOutgoingContext(ctx, AuthorizationHeader, "Bearer "+grant)
}

// UnaryAuthInterceptor verifies the bearer grant of an incoming call and
// stores its subject in context for the interceptors and handlers after it.
// Calls without a grant continue anonymously; handlers that act for a
// caller refuse them.
func (s *Server) UnaryAuthInterceptor() grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, _ *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		authed, err := s.authenticate(ctx)
		if err != nil {
			return nil, apperrors.ToGRPC(err, requestctx.LocaleFromIncoming(ctx))
		}
		return handler(authed, req)
	}
}

// authenticate verifies the bearer grant once per call.
func (s *Server) authenticate(ctx context.Context) (context.Context, error) {
	if _, ok := ctx.Value(credentialContextKey{}).(capability.Credential); ok {
		return ctx, nil
	}
	grant, present, err := bearerGrant(ctx)
	if err != nil || !present {
		return ctx, err
	}
	cred, err := s.verifier.Verify(grant, capability.ScopeAct)
	if err != nil {
		return ctx, err
	}
	ctx = context.WithValue(ctx, credentialContextKey{}, cred)
	return requestctx.WithSubject(ctx, cred.Subject()), nil
}

// caller returns the verified subject of the call's bearer grant.
func (s *Server) caller(ctx context.Context) (string, error) {
	ctx, err := s.authenticate(ctx)
	if err != nil {
		return "", err
	}
	cred, ok := ctx.Value(credentialContextKey{}).(capability.Credential)
	if !ok {
		return "", apperrors.WithMetadata(apperrors.CodeCapabilityInvalid, "caller grant is required", map[string]string{"field": AuthorizationHeader})
	}
	return cred.Subject(), nil
}

func bearerGrant(ctx context.Context) (grant string, present bool, err error) {
	md, ok := metadata.FromIncomingContext(ctx)
	if !ok {
		return "", false, nil
	}
	values := md.Get(AuthorizationHeader)
	if len(values) == 0 {
		return "", false, nil
	}
	value := strings.TrimSpace(values[0])
	if len(value) <= len(bearerPrefix) || !strings.EqualFold(value[:len(bearerPrefix)], bearerPrefix) {
		return "", true, apperrors.New(apperrors.CodeCapabilityInvalid, "authorization must be a bearer grant")
	}
	return strings.TrimSpace(value[len(bearerPrefix):]), true, nil
}
