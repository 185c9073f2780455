// Package ratelimit throttles callers with one token bucket per key.
package ratelimit

import (
	"context"
	"strings"
	"sync"
	"time"

	apperrors "github.com/louisbranch/ledgerworks/internal/platform/errors"
	"github.com/louisbranch/ledgerworks/internal/platform/requestctx"
	"golang.org/x/time/rate"
	"google.golang.org/grpc"
	"google.golang.org/grpc/peer"
)

const sweepEvery = 512

// KeyLimiter applies a token bucket per key and evicts idle keys.
// A nil *KeyLimiter allows everything.
type KeyLimiter struct {
	limit   rate.Limit
	burst   int
	idleTTL time.Duration

	mu    sync.Mutex
	byKey map[string]*bucket
	hits  uint64
}

type bucket struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// New creates a limiter; it returns nil (unlimited) when rps or burst is not
// positive.
func New(rps float64, burst int, idleTTL time.Duration) *KeyLimiter {
	if rps <= 0 || burst <= 0 {
		return nil
	}
	if idleTTL <= 0 {
		idleTTL = 10 * time.Minute
	}
	return &KeyLimiter{
		limit:   rate.Limit(rps),
		burst:   burst,
		idleTTL: idleTTL,
		byKey:   make(map[string]*bucket),
	}
}

// Allow reports whether key may spend one token at now.
func (l *KeyLimiter) Allow(key string, now time.Time) bool {
	if l == nil {
		return true
	}
	key = strings.TrimSpace(key)
	if key == "" {
		return true
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	b, ok := l.byKey[key]
	if !ok {
		b = &bucket{limiter: rate.NewLimiter(l.limit, l.burst)}
		l.byKey[key] = b
	}
	b.lastSeen = now
	allowed := b.limiter.AllowN(now, 1)

	l.hits++
	if l.hits%sweepEvery == 0 {
		cutoff := now.Add(-l.idleTTL)
		for k, v := range l.byKey {
			if v.lastSeen.Before(cutoff) {
				delete(l.byKey, k)
			}
		}
	}
	return allowed
}

// Len reports how many keys are tracked.
func (l *KeyLimiter) Len() int {
	if l == nil {
		return 0
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.byKey)
}

// CallerKey derives the limiter key for an incoming call: the verified
// subject when an earlier interceptor stored one, else the peer address.
// Client-set metadata never picks the bucket.
func CallerKey(ctx context.Context) string {
	if subject := requestctx.SubjectFromContext(ctx); subject != "" {
		return "subject:" + subject
	}
	if p, ok := peer.FromContext(ctx); ok && p.Addr != nil {
		return "peer:" + p.Addr.String()
	}
	return ""
}

// UnaryServerInterceptor rejects calls over the limit with RATE_LIMITED.
func (l *KeyLimiter) UnaryServerInterceptor(now func() time.Time) grpc.UnaryServerInterceptor {
	if now == nil {
		now = time.Now
	}
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		if !l.Allow(CallerKey(ctx), now()) {
			err := apperrors.WithMetadata(apperrors.CodeRateLimited, "rate limited", map[string]string{"method": info.FullMethod})
			return nil, apperrors.ToGRPC(err, "")
		}
		return handler(ctx, req)
	}
}
