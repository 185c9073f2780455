package staking

import "github.com/louisbranch/ledgerworks/internal/services/ledger/domain/clock"

// CreatePoolPayload captures the payload for staking.create_pool.
type CreatePoolPayload struct {
	RewardRateBps     uint64 `json:"reward_rate_bps"`
	MinLockPeriodDays uint64 `json:"min_lock_period_days"`
}

// PoolCreatedPayload captures the payload for staking.pool_created.
type PoolCreatedPayload struct {
	RewardRateBps     uint64 `json:"reward_rate_bps"`
	MinLockPeriodDays uint64 `json:"min_lock_period_days"`
}

// StakePayload captures the payload for staking.stake. Amount is the value
// of the tendered token.
type StakePayload struct {
	StakeID        string `json:"stake_id"`
	Amount         uint64 `json:"amount"`
	LockPeriodDays uint64 `json:"lock_period_days"`
}

// StakedPayload captures the payload for staking.staked.
type StakedPayload struct {
	StakeID        string    `json:"stake_id"`
	Amount         uint64    `json:"amount"`
	LockPeriodDays uint64    `json:"lock_period_days"`
	StakedAtDay    clock.Day `json:"staked_at_day"`
}

// StakeRefPayload addresses a stake for claim and withdraw.
type StakeRefPayload struct {
	StakeID string `json:"stake_id"`
}

// RewardsClaimedPayload captures the payload for staking.rewards_claimed.
type RewardsClaimedPayload struct {
	StakeID     string    `json:"stake_id"`
	Reward      uint64    `json:"reward"`
	ElapsedDays uint64    `json:"elapsed_days"`
	ClaimedAt   clock.Day `json:"claimed_at_day"`
}

// WithdrawnPayload captures the payload for staking.withdrawn.
type WithdrawnPayload struct {
	StakeID string `json:"stake_id"`
	Amount  uint64 `json:"amount"`
}
