package service

import (
	"context"
	"fmt"

	apperrors "github.com/louisbranch/ledgerworks/internal/platform/errors"
	"github.com/louisbranch/ledgerworks/internal/platform/id"
	"github.com/louisbranch/ledgerworks/internal/services/ledger/domain/clock"
	"github.com/louisbranch/ledgerworks/internal/services/ledger/domain/engine"
	"github.com/louisbranch/ledgerworks/internal/services/ledger/domain/event"
	"github.com/louisbranch/ledgerworks/internal/services/ledger/domain/staking"
	"github.com/louisbranch/ledgerworks/internal/services/ledger/domain/value"
)

// Staking runs stake pools. Principal sits in the pool's vault custody
// account; rewards are minted on claim.
type Staking struct {
	handler *engine.Handler[staking.State]
	vault   *value.Vault
	supply  *value.Supply
	clock   clock.Clock
	logf    func(string, ...any)
}

// CreatePool opens a pool and returns its id.
func (s *Staking) CreatePool(ctx context.Context, creator string, rewardRateBps, minLockPeriodDays uint64) (string, error) {
	poolID, err := id.NewID()
	if err != nil {
		return "", err
	}
	cmd, err := newCommand(ctx, poolID, staking.CommandTypeCreatePool, creator, staking.CreatePoolPayload{
		RewardRateBps:     rewardRateBps,
		MinLockPeriodDays: minLockPeriodDays,
	})
	if err != nil {
		return "", err
	}
	if _, err := s.handler.Execute(ctx, cmd); err != nil {
		return "", err
	}
	return poolID, nil
}

// Stake locks token's value in the pool for lockPeriodDays.
func (s *Staking) Stake(ctx context.Context, poolID, owner string, token *value.Token, lockPeriodDays uint64) (staking.Stake, error) {
	if !token.Live() {
		return staking.Stake{}, value.ErrTokenConsumed
	}
	stakeID, err := id.NewID()
	if err != nil {
		return staking.Stake{}, err
	}
	cmd, err := newCommand(ctx, poolID, staking.CommandTypeStake, owner, staking.StakePayload{
		StakeID:        stakeID,
		Amount:         token.Value(),
		LockPeriodDays: lockPeriodDays,
	})
	if err != nil {
		return staking.Stake{}, err
	}
	custody := value.PoolAccount(poolID)
	result, err := s.handler.ExecuteWith(ctx, cmd, func(events []event.Event) (func(), error) {
		staked, err := findPayload[staking.StakedPayload](events, staking.EventTypeStaked)
		if err != nil {
			return nil, err
		}
		if token.Value() != staked.Amount {
			return nil, apperrors.New(apperrors.CodeInvalidArgument, "stake token changed while staking")
		}
		if err := s.vault.Deposit(custody, token); err != nil {
			return nil, err
		}
		return func() {
			if err := s.vault.Return(custody, token, staked.Amount); err != nil {
				s.logf("staking: return stake of %d from %s: %v", staked.Amount, custody, err)
			}
		}, nil
	})
	if err != nil {
		return staking.Stake{}, err
	}
	stake, ok := result.State.Stake(stakeID)
	if !ok {
		return staking.Stake{}, fmt.Errorf("stake %s missing after stake", stakeID)
	}
	return stake, nil
}

// ClaimRewards mints the reward accrued since the last claim. mint must be
// the capability of the ledger's supply.
func (s *Staking) ClaimRewards(ctx context.Context, poolID, stakeID, caller string, mint *value.MintCapability) (*value.Token, error) {
	supply := s.supply
	if mint.Supply() != supply {
		return nil, value.ErrCapabilityMismatch
	}
	cmd, err := newCommand(ctx, poolID, staking.CommandTypeClaimRewards, caller, staking.StakeRefPayload{StakeID: stakeID})
	if err != nil {
		return nil, err
	}
	var reward *value.Token
	_, err = s.handler.ExecuteWith(ctx, cmd, func(events []event.Event) (func(), error) {
		claimed, err := findPayload[staking.RewardsClaimedPayload](events, staking.EventTypeRewardsClaimed)
		if err != nil {
			return nil, err
		}
		minted, err := supply.Mint(mint, claimed.Reward)
		if err != nil {
			return nil, err
		}
		reward = minted
		return func() {
			if _, err := supply.Burn(mint, minted); err != nil {
				s.logf("staking: burn unclaimed reward: %v", err)
			}
			reward = nil
		}, nil
	})
	if err != nil {
		return nil, err
	}
	return reward, nil
}

// Withdraw closes an unlocked stake and returns its principal.
func (s *Staking) Withdraw(ctx context.Context, poolID, stakeID, caller string) (*value.Token, error) {
	cmd, err := newCommand(ctx, poolID, staking.CommandTypeWithdraw, caller, staking.StakeRefPayload{StakeID: stakeID})
	if err != nil {
		return nil, err
	}
	custody := value.PoolAccount(poolID)
	var principal *value.Token
	_, err = s.handler.ExecuteWith(ctx, cmd, func(events []event.Event) (func(), error) {
		withdrawn, err := findPayload[staking.WithdrawnPayload](events, staking.EventTypeWithdrawn)
		if err != nil {
			return nil, err
		}
		token, err := s.vault.Withdraw(custody, withdrawn.Amount)
		if err != nil {
			return nil, err
		}
		principal = token
		return func() {
			if err := s.vault.Deposit(custody, token); err != nil {
				s.logf("staking: restore principal to %s: %v", custody, err)
			}
			principal = nil
		}, nil
	})
	if err != nil {
		return nil, err
	}
	return principal, nil
}

// Pool returns the pool record.
func (s *Staking) Pool(ctx context.Context, poolID string) (staking.State, error) {
	state, _, err := s.handler.State(ctx, poolID)
	if err != nil {
		return staking.State{}, err
	}
	if !state.Created {
		return staking.State{}, staking.ErrPoolNotFound
	}
	return state, nil
}

// StakeInfo returns one stake of a pool.
func (s *Staking) StakeInfo(ctx context.Context, poolID, stakeID string) (staking.Stake, error) {
	pool, err := s.Pool(ctx, poolID)
	if err != nil {
		return staking.Stake{}, err
	}
	stake, ok := pool.Stake(stakeID)
	if !ok {
		return staking.Stake{}, staking.ErrStakeNotFound
	}
	return stake, nil
}

// PendingReward reports what a claim would pay today.
func (s *Staking) PendingReward(ctx context.Context, poolID, stakeID string) (uint64, error) {
	pool, err := s.Pool(ctx, poolID)
	if err != nil {
		return 0, err
	}
	stake, ok := pool.Stake(stakeID)
	if !ok {
		return 0, staking.ErrStakeNotFound
	}
	var elapsed uint64
	if today := s.clock.Today(); today > stake.LastRewardClaimDay {
		elapsed = uint64(today - stake.LastRewardClaimDay)
	}
	reward, ok := staking.Reward(stake.Amount, pool.RewardRateBps, elapsed)
	if !ok {
		return 0, staking.ErrArithmeticOverflow
	}
	return reward, nil
}

// Custody reports the principal held for a pool.
func (s *Staking) Custody(poolID string) uint64 {
	return s.vault.Balance(value.PoolAccount(poolID))
}
