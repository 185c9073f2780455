package ledger

import (
	"context"

	"github.com/louisbranch/ledgerworks/internal/services/ledger/domain/staking"
)

func (s *Server) CreatePool(ctx context.Context, in *CreatePoolRequest) (*CreatePoolResponse, error) {
	creator, err := s.caller(ctx)
	if err != nil {
		return nil, err
	}
	poolID, err := s.ledger.Staking.CreatePool(ctx, creator, in.RewardRateBps, in.MinLockPeriodDays)
	if err != nil {
		return nil, err
	}
	return &CreatePoolResponse{PoolID: poolID}, nil
}

// Stake withdraws the principal from the caller's wallet.
func (s *Server) Stake(ctx context.Context, in *StakeRequest) (*Stake, error) {
	owner, err := s.caller(ctx)
	if err != nil {
		return nil, err
	}
	principal, restore, err := s.withdraw(owner, in.Amount)
	if err != nil {
		return nil, err
	}
	defer restore()
	stake, err := s.ledger.Staking.Stake(ctx, in.PoolID, owner, principal, in.LockPeriodDays)
	if err != nil {
		return nil, err
	}
	out := stakeView(in.PoolID, stake)
	return &out, nil
}

// ClaimRewards pays the accrued reward into the caller's wallet.
func (s *Server) ClaimRewards(ctx context.Context, in *StakeRefRequest) (*AmountResponse, error) {
	caller, err := s.caller(ctx)
	if err != nil {
		return nil, err
	}
	reward, err := s.ledger.Staking.ClaimRewards(ctx, in.PoolID, in.StakeID, caller, s.ledger.Treasury.MintCapability())
	if err != nil {
		return nil, err
	}
	amount, err := s.pay(caller, reward)
	if err != nil {
		return nil, err
	}
	return &AmountResponse{Amount: amount}, nil
}

// Withdraw pays the principal into the caller's wallet.
func (s *Server) Withdraw(ctx context.Context, in *StakeRefRequest) (*AmountResponse, error) {
	caller, err := s.caller(ctx)
	if err != nil {
		return nil, err
	}
	principal, err := s.ledger.Staking.Withdraw(ctx, in.PoolID, in.StakeID, caller)
	if err != nil {
		return nil, err
	}
	amount, err := s.pay(caller, principal)
	if err != nil {
		return nil, err
	}
	return &AmountResponse{Amount: amount}, nil
}

func (s *Server) GetPool(ctx context.Context, in *GetPoolRequest) (*Pool, error) {
	pool, err := s.ledger.Staking.Pool(ctx, in.PoolID)
	if err != nil {
		return nil, err
	}
	stakes := pool.Stakes()
	out := &Pool{
		PoolID:            pool.PoolID,
		Creator:           pool.Creator,
		RewardRateBps:     pool.RewardRateBps,
		MinLockPeriodDays: pool.MinLockPeriodDays,
		TotalStaked:       pool.TotalStaked,
		Custody:           s.ledger.Staking.Custody(pool.PoolID),
		Stakes:            make([]Stake, 0, len(stakes)),
	}
	for _, stake := range stakes {
		out.Stakes = append(out.Stakes, stakeView(pool.PoolID, stake))
	}
	return out, nil
}

func (s *Server) GetStake(ctx context.Context, in *StakeRefRequest) (*Stake, error) {
	stake, err := s.ledger.Staking.StakeInfo(ctx, in.PoolID, in.StakeID)
	if err != nil {
		return nil, err
	}
	pending, err := s.ledger.Staking.PendingReward(ctx, in.PoolID, in.StakeID)
	if err != nil {
		return nil, err
	}
	out := stakeView(in.PoolID, stake)
	out.PendingReward = pending
	return &out, nil
}

func stakeView(poolID string, stake staking.Stake) Stake {
	return Stake{
		PoolID:             poolID,
		StakeID:            stake.ID,
		Owner:              stake.Owner,
		Amount:             stake.Amount,
		StakedAtDay:        uint64(stake.StakedAtDay),
		LockPeriodDays:     stake.LockPeriodDays,
		LastRewardClaimDay: uint64(stake.LastRewardClaimDay),
	}
}
