package ledger

import "github.com/louisbranch/ledgerworks/internal/services/ledger/sink"

// Empty is the response of calls that return nothing.
type Empty struct{}

// CreateRegistryRequest creates a registry owned by the caller.
type CreateRegistryRequest struct {
	MinVotingPower     uint64 `json:"min_voting_power"`
	VotingPeriodDays   uint64 `json:"voting_period_days"`
	ExecutionDelayDays uint64 `json:"execution_delay_days"`
}

type CreateRegistryResponse struct {
	RegistryID string `json:"registry_id"`
}

// CreateProposalRequest measures VotingPower from the caller's wallet; the
// value stays in the wallet.
type CreateProposalRequest struct {
	RegistryID  string `json:"registry_id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	VotingPower uint64 `json:"voting_power"`
}

type CreateProposalResponse struct {
	ProposalID uint64 `json:"proposal_id"`
}

// VoteRequest casts the caller's vote, measuring VotingPower from their
// wallet.
type VoteRequest struct {
	RegistryID  string `json:"registry_id"`
	ProposalID  uint64 `json:"proposal_id"`
	VotingPower uint64 `json:"voting_power"`
	Approve     bool   `json:"approve"`
}

type VoteResponse struct {
	ProposalID  uint64 `json:"proposal_id"`
	Voter       string `json:"voter"`
	Approve     bool   `json:"approve"`
	VotingPower uint64 `json:"voting_power"`
}

// ProposalRequest addresses one proposal.
type ProposalRequest struct {
	RegistryID string `json:"registry_id"`
	ProposalID uint64 `json:"proposal_id"`
}

type FinalizeProposalResponse struct {
	Status string `json:"status"`
}

type Proposal struct {
	RegistryID   string `json:"registry_id"`
	ID           uint64 `json:"id"`
	Creator      string `json:"creator"`
	Title        string `json:"title"`
	Description  string `json:"description"`
	CreatedAtDay uint64 `json:"created_at_day"`
	YesVotes     uint64 `json:"yes_votes"`
	NoVotes      uint64 `json:"no_votes"`
	Status       string `json:"status"`
	Executed     bool   `json:"executed"`
	Voters       int    `json:"voters"`
}

type GetRegistryRequest struct {
	RegistryID string `json:"registry_id"`
}

type Registry struct {
	RegistryID         string `json:"registry_id"`
	MinVotingPower     uint64 `json:"min_voting_power"`
	VotingPeriodDays   uint64 `json:"voting_period_days"`
	ExecutionDelayDays uint64 `json:"execution_delay_days"`
	ProposalCount      int    `json:"proposal_count"`
}

// LockWagerRequest withdraws Amount from each player's wallet into escrow.
// The caller is player one. PlayerTwoGrant is player two's ledger.act
// grant; its subject is player two.
type LockWagerRequest struct {
	PlayerTwoGrant string `json:"player_two_grant"`
	Resolver       string `json:"resolver"`
	Amount         uint64 `json:"amount"`
}

type LockWagerResponse struct {
	WagerID string `json:"wager_id"`
}

// WagerRequest addresses one wager.
type WagerRequest struct {
	WagerID string `json:"wager_id"`
}

type ReleaseWagerRequest struct {
	WagerID string `json:"wager_id"`
	Winner  string `json:"winner"`
}

// SettleWagerRequest carries a signed grant with the escrow.settle scope.
type SettleWagerRequest struct {
	WagerID     string `json:"wager_id"`
	Grant       string `json:"grant"`
	Disposition string `json:"disposition"`
	Recipient   string `json:"recipient,omitempty"`
}

type Wager struct {
	WagerID      string `json:"wager_id"`
	PlayerOne    string `json:"player_one"`
	PlayerTwo    string `json:"player_two"`
	Resolver     string `json:"resolver"`
	Amount       uint64 `json:"amount"`
	CreatedAtDay uint64 `json:"created_at_day"`
	Status       string `json:"status"`
	Winner       string `json:"winner,omitempty"`
	Settled      bool   `json:"settled"`
	Disposition  string `json:"disposition,omitempty"`
	SettledTo    string `json:"settled_to,omitempty"`
	Custody      uint64 `json:"custody"`
}

type CreatePoolRequest struct {
	RewardRateBps     uint64 `json:"reward_rate_bps"`
	MinLockPeriodDays uint64 `json:"min_lock_period_days"`
}

type CreatePoolResponse struct {
	PoolID string `json:"pool_id"`
}

// StakeRequest withdraws Amount from the caller's wallet into the pool.
type StakeRequest struct {
	PoolID         string `json:"pool_id"`
	Amount         uint64 `json:"amount"`
	LockPeriodDays uint64 `json:"lock_period_days"`
}

// StakeRefRequest addresses one stake.
type StakeRefRequest struct {
	PoolID  string `json:"pool_id"`
	StakeID string `json:"stake_id"`
}

// AmountResponse reports value paid into the caller's wallet.
type AmountResponse struct {
	Amount uint64 `json:"amount"`
}

type Stake struct {
	PoolID             string `json:"pool_id"`
	StakeID            string `json:"stake_id"`
	Owner              string `json:"owner"`
	Amount             uint64 `json:"amount"`
	StakedAtDay        uint64 `json:"staked_at_day"`
	LockPeriodDays     uint64 `json:"lock_period_days"`
	LastRewardClaimDay uint64 `json:"last_reward_claim_day"`
	PendingReward      uint64 `json:"pending_reward"`
}

type GetPoolRequest struct {
	PoolID string `json:"pool_id"`
}

type Pool struct {
	PoolID            string  `json:"pool_id"`
	Creator           string  `json:"creator"`
	RewardRateBps     uint64  `json:"reward_rate_bps"`
	MinLockPeriodDays uint64  `json:"min_lock_period_days"`
	TotalStaked       uint64  `json:"total_staked"`
	Custody           uint64  `json:"custody"`
	Stakes            []Stake `json:"stakes"`
}

// MintRequest carries a signed grant with the ledger.mint scope.
type MintRequest struct {
	Grant   string `json:"grant"`
	Address string `json:"address"`
	Amount  uint64 `json:"amount"`
}

type BalanceRequest struct {
	Address string `json:"address"`
}

type BalanceResponse struct {
	Address string `json:"address"`
	Balance uint64 `json:"balance"`
	Supply  uint64 `json:"supply"`
}

type ListEventsRequest struct {
	StreamID  string `json:"stream_id,omitempty"`
	AfterSeq  uint64 `json:"after_seq,omitempty"`
	PageSize  int    `json:"page_size,omitempty"`
	PageToken string `json:"page_token,omitempty"`
	Filter    string `json:"filter,omitempty"`
}

type ListEventsResponse struct {
	Events        []sink.Record `json:"events"`
	NextPageToken string        `json:"next_page_token,omitempty"`
}

type VerifyStreamRequest struct {
	StreamID string `json:"stream_id"`
}

type VerifyStreamResponse struct {
	StreamID string `json:"stream_id"`
	Events   int    `json:"events"`
}
