package ledger

import (
	"context"
	"strings"

	"github.com/louisbranch/ledgerworks/internal/services/ledger/domain/capability"
)

// Mint credits new value to a wallet under a ledger.mint grant.
func (s *Server) Mint(_ context.Context, in *MintRequest) (*BalanceResponse, error) {
	cred, err := s.credential(in.Grant, "grant", capability.ScopeMint)
	if err != nil {
		return nil, err
	}
	if err := s.ledger.Treasury.Mint(cred, in.Address, in.Amount); err != nil {
		return nil, err
	}
	s.logf("ledger api: minted amount=%d address=%s grant_id=%s subject=%s", in.Amount, in.Address, cred.GrantID(), cred.Subject())
	return s.balance(in.Address), nil
}

func (s *Server) GetBalance(_ context.Context, in *BalanceRequest) (*BalanceResponse, error) {
	if strings.TrimSpace(in.Address) == "" {
		return nil, required("address")
	}
	return s.balance(in.Address), nil
}

func (s *Server) balance(addr string) *BalanceResponse {
	addr = strings.TrimSpace(addr)
	return &BalanceResponse{
		Address: addr,
		Balance: s.ledger.Treasury.Balance(addr),
		Supply:  s.ledger.Treasury.Supply(),
	}
}
