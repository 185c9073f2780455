package value

import (
	"math"
	"sync"
)

// MintCapability authorizes minting and burning against one Supply.
// Possessing the pointer is the authorization.
type MintCapability struct {
	supply *Supply
}

// Supply tracks the total value in circulation.
type Supply struct {
	mu    sync.Mutex
	total uint64
}

// NewSupply creates an empty supply and the only capability able to mint
// into it.
func NewSupply() (*Supply, *MintCapability) {
	s := &Supply{}
	return s, &MintCapability{supply: s}
}

// Total reports the value minted and not yet burned.
func (s *Supply) Total() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.total
}

func (s *Supply) authorize(capability *MintCapability) error {
	if capability == nil || capability.supply != s {
		return ErrCapabilityMismatch
	}
	return nil
}

// Mint creates a token holding amount.
func (s *Supply) Mint(capability *MintCapability, amount uint64) (*Token, error) {
	if err := s.authorize(capability); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.total > math.MaxUint64-amount {
		return nil, ErrArithmeticOverflow
	}
	s.total += amount
	return newToken(amount), nil
}

// Burn consumes token and removes its value from circulation.
func (s *Supply) Burn(capability *MintCapability, token *Token) (uint64, error) {
	if err := s.authorize(capability); err != nil {
		return 0, err
	}
	amount, err := token.take()
	if err != nil {
		return 0, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.total -= amount
	return amount, nil
}

// Supply returns the supply this capability mints into.
func (c *MintCapability) Supply() *Supply {
	if c == nil {
		return nil
	}
	return c.supply
}
