package ledger

import (
	"context"

	"github.com/louisbranch/ledgerworks/internal/services/ledger/domain/capability"
	"github.com/louisbranch/ledgerworks/internal/services/ledger/domain/escrow"
	"github.com/louisbranch/ledgerworks/internal/services/ledger/service"
)

// LockWager withdraws the wager amount from both players' wallets. The
// caller is player one; player two consents with their own grant.
func (s *Server) LockWager(ctx context.Context, in *LockWagerRequest) (*LockWagerResponse, error) {
	playerOne, err := s.caller(ctx)
	if err != nil {
		return nil, err
	}
	consent, err := s.credential(in.PlayerTwoGrant, "player_two_grant", capability.ScopeAct)
	if err != nil {
		return nil, err
	}
	playerTwo := consent.Subject()

	stakeOne, restoreOne, err := s.withdraw(playerOne, in.Amount)
	if err != nil {
		return nil, err
	}
	defer restoreOne()
	stakeTwo, restoreTwo, err := s.withdraw(playerTwo, in.Amount)
	if err != nil {
		return nil, err
	}
	defer restoreTwo()

	wagerID, err := s.ledger.Escrow.Lock(ctx, service.LockRequest{
		PlayerOne: playerOne,
		PlayerTwo: playerTwo,
		Resolver:  in.Resolver,
		Amount:    in.Amount,
		StakeOne:  stakeOne,
		StakeTwo:  stakeTwo,
	})
	if err != nil {
		return nil, err
	}
	return &LockWagerResponse{WagerID: wagerID}, nil
}

func (s *Server) DisputeWager(ctx context.Context, in *WagerRequest) (*Empty, error) {
	caller, err := s.caller(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.ledger.Escrow.Dispute(ctx, in.WagerID, caller); err != nil {
		return nil, err
	}
	return &Empty{}, nil
}

func (s *Server) ReleaseWager(ctx context.Context, in *ReleaseWagerRequest) (*Empty, error) {
	caller, err := s.caller(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.ledger.Escrow.Release(ctx, in.WagerID, caller, in.Winner); err != nil {
		return nil, err
	}
	return &Empty{}, nil
}

func (s *Server) ForceResolveWager(ctx context.Context, in *WagerRequest) (*Empty, error) {
	caller, err := s.caller(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.ledger.Escrow.ForceResolve(ctx, in.WagerID, caller); err != nil {
		return nil, err
	}
	return &Empty{}, nil
}

func (s *Server) SettleWager(ctx context.Context, in *SettleWagerRequest) (*Empty, error) {
	cred, err := s.credential(in.Grant, "grant", capability.ScopeEscrowSettle)
	if err != nil {
		return nil, err
	}
	if err := s.ledger.Escrow.Settle(ctx, cred, in.WagerID, escrow.Disposition(in.Disposition), in.Recipient); err != nil {
		return nil, err
	}
	return &Empty{}, nil
}

func (s *Server) GetWager(ctx context.Context, in *WagerRequest) (*Wager, error) {
	state, err := s.ledger.Escrow.Wager(ctx, in.WagerID)
	if err != nil {
		return nil, err
	}
	return &Wager{
		WagerID:      state.WagerID,
		PlayerOne:    state.PlayerOne,
		PlayerTwo:    state.PlayerTwo,
		Resolver:     state.Resolver,
		Amount:       state.Amount,
		CreatedAtDay: uint64(state.CreatedAtDay),
		Status:       string(state.Status),
		Winner:       state.Winner,
		Settled:      state.Settled,
		Disposition:  string(state.Disposition),
		SettledTo:    state.SettledTo,
		Custody:      s.ledger.Escrow.Custody(state.WagerID),
	}, nil
}
