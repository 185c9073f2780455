// Package value models the fungible value token the ledger moves around.
//
// A *Token is a linear handle: every operation that takes a token consumes
// it, and using a consumed token fails with ErrTokenConsumed. Value is only
// created by Supply.Mint, which requires the MintCapability that NewSupply
// hands out, and only destroyed by Supply.Burn or Token.Destroy on an empty
// token.
package value

import (
	"math"
	"strconv"
	"sync"
	"sync/atomic"

	apperrors "github.com/louisbranch/ledgerworks/internal/platform/errors"
)

var (
	ErrTokenConsumed      = apperrors.New(apperrors.CodeTokenConsumed, "token already consumed")
	ErrTokenNotEmpty      = apperrors.New(apperrors.CodeTokenNotEmpty, "token is not empty")
	ErrTokenLive          = apperrors.New(apperrors.CodeInvalidArgument, "token is still live")
	ErrArithmeticOverflow = apperrors.New(apperrors.CodeArithmeticOverflow, "value overflows uint64")
	ErrInsufficientFunds  = apperrors.New(apperrors.CodeInsufficientFunds, "insufficient value")
	ErrCapabilityMismatch = apperrors.New(apperrors.CodeCapabilityMismatch, "mint capability belongs to another supply")
)

var tokenSeq atomic.Uint64

// Token holds an amount of value.
type Token struct {
	id       uint64
	mu       sync.Mutex
	amount   uint64
	consumed bool
}

func newToken(amount uint64) *Token {
	return &Token{id: tokenSeq.Add(1), amount: amount}
}

// Zero returns an empty token.
func Zero() *Token {
	return newToken(0)
}

// Value reports the amount held. A consumed or nil token is worth zero.
func (t *Token) Value() uint64 {
	if t == nil {
		return 0
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.consumed {
		return 0
	}
	return t.amount
}

// Live reports whether the token can still be used.
func (t *Token) Live() bool {
	if t == nil {
		return false
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	return !t.consumed
}

// take consumes the token and returns its amount.
func (t *Token) take() (uint64, error) {
	if t == nil {
		return 0, ErrTokenConsumed
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.consumed {
		return 0, ErrTokenConsumed
	}
	t.consumed = true
	amount := t.amount
	t.amount = 0
	return amount, nil
}

// revive makes a consumed token live again holding amount.
func (t *Token) revive(amount uint64) error {
	if t == nil {
		return ErrTokenConsumed
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.consumed {
		return ErrTokenLive
	}
	t.consumed = false
	t.amount = amount
	return nil
}

// Split consumes t and returns the remainder and a token holding amount.
func (t *Token) Split(amount uint64) (remainder, extracted *Token, err error) {
	if t == nil {
		return nil, nil, ErrTokenConsumed
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.consumed {
		return nil, nil, ErrTokenConsumed
	}
	if amount > t.amount {
		return nil, nil, apperrors.WithMetadata(apperrors.CodeInsufficientFunds, "split exceeds token value", map[string]string{
			"have": strconv.FormatUint(t.amount, 10),
			"want": strconv.FormatUint(amount, 10),
		})
	}
	t.consumed = true
	rest := t.amount - amount
	t.amount = 0
	return newToken(rest), newToken(amount), nil
}

// Join consumes a and b and returns a token holding their sum. Neither is
// consumed when the join fails.
func Join(a, b *Token) (*Token, error) {
	if a == nil || b == nil || a == b {
		return nil, ErrTokenConsumed
	}
	first, second := a, b
	// Lock in a stable order so concurrent joins cannot deadlock.
	if first.id > second.id {
		first, second = second, first
	}
	first.mu.Lock()
	defer first.mu.Unlock()
	second.mu.Lock()
	defer second.mu.Unlock()

	if a.consumed || b.consumed {
		return nil, ErrTokenConsumed
	}
	if a.amount > math.MaxUint64-b.amount {
		return nil, ErrArithmeticOverflow
	}
	sum := a.amount + b.amount
	a.consumed, b.consumed = true, true
	a.amount, b.amount = 0, 0
	return newToken(sum), nil
}

// Destroy consumes an empty token.
func (t *Token) Destroy() error {
	if t == nil {
		return ErrTokenConsumed
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.consumed {
		return ErrTokenConsumed
	}
	if t.amount != 0 {
		return ErrTokenNotEmpty
	}
	t.consumed = true
	return nil
}
