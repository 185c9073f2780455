package domain

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	ledgerapi "github.com/louisbranch/ledgerworks/internal/services/ledger/api/grpc/ledger"
)

// PoolCreateInput represents the MCP tool input for opening a stake pool.
type PoolCreateInput struct {
	Grant             string `json:"grant" jsonschema:"signed ledger.act grant; its subject creates the pool"`
	RewardRateBps     uint64 `json:"reward_rate_bps" jsonschema:"annual reward rate in basis points"`
	MinLockPeriodDays uint64 `json:"min_lock_period_days,omitempty" jsonschema:"shortest lock a stake may choose"`
}

// StakeInput represents the MCP tool input for staking.
type StakeInput struct {
	PoolID         string `json:"pool_id" jsonschema:"pool identifier"`
	Grant          string `json:"grant" jsonschema:"signed ledger.act grant; principal is taken from its subject's wallet"`
	Amount         uint64 `json:"amount" jsonschema:"principal to stake"`
	LockPeriodDays uint64 `json:"lock_period_days,omitempty" jsonschema:"days before the stake may be withdrawn"`
}

// StakeRefInput addresses one stake.
type StakeRefInput struct {
	PoolID  string `json:"pool_id" jsonschema:"pool identifier"`
	StakeID string `json:"stake_id" jsonschema:"stake identifier"`
	Grant   string `json:"grant,omitempty" jsonschema:"signed ledger.act grant; its subject must own the stake for claims and withdrawals"`
}

// PoolGetInput addresses one pool.
type PoolGetInput struct {
	PoolID string `json:"pool_id" jsonschema:"pool identifier"`
}

// PoolCreateTool defines the MCP tool schema for opening a pool.
func PoolCreateTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "staking_pool_create",
		Description: "Opens a stake pool with a reward rate and minimum lock",
	}
}

// StakeTool defines the MCP tool schema for staking.
func StakeTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "staking_stake",
		Description: "Stakes wallet value into a pool for a lock period",
	}
}

// RewardsClaimTool defines the MCP tool schema for claiming rewards.
func RewardsClaimTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "staking_rewards_claim",
		Description: "Pays rewards accrued since the last claim into the owner's wallet",
	}
}

// WithdrawTool defines the MCP tool schema for withdrawing a stake.
func WithdrawTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "staking_withdraw",
		Description: "Closes an unlocked stake and returns its principal to the owner's wallet",
	}
}

// PoolGetTool defines the MCP tool schema for reading a pool.
func PoolGetTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "staking_pool_get",
		Description: "Returns a pool with its open stakes",
	}
}

// StakeGetTool defines the MCP tool schema for reading a stake.
func StakeGetTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "staking_stake_get",
		Description: "Returns a stake with the reward a claim would pay today",
	}
}

func PoolCreateHandler(client LedgerClient) mcp.ToolHandlerFor[PoolCreateInput, ledgerapi.CreatePoolResponse] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, in PoolCreateInput) (*mcp.CallToolResult, ledgerapi.CreatePoolResponse, error) {
		return invoke(ledgerapi.WithGrant(ctx, in.Grant), "pool create", &ledgerapi.CreatePoolRequest{
			RewardRateBps:     in.RewardRateBps,
			MinLockPeriodDays: in.MinLockPeriodDays,
		}, client.CreatePool)
	}
}

func StakeHandler(client LedgerClient) mcp.ToolHandlerFor[StakeInput, ledgerapi.Stake] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, in StakeInput) (*mcp.CallToolResult, ledgerapi.Stake, error) {
		return invoke(ledgerapi.WithGrant(ctx, in.Grant), "stake", &ledgerapi.StakeRequest{
			PoolID:         in.PoolID,
			Amount:         in.Amount,
			LockPeriodDays: in.LockPeriodDays,
		}, client.Stake)
	}
}

func RewardsClaimHandler(client LedgerClient) mcp.ToolHandlerFor[StakeRefInput, ledgerapi.AmountResponse] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, in StakeRefInput) (*mcp.CallToolResult, ledgerapi.AmountResponse, error) {
		return invoke(ledgerapi.WithGrant(ctx, in.Grant), "rewards claim", in.request(), client.ClaimRewards)
	}
}

func WithdrawHandler(client LedgerClient) mcp.ToolHandlerFor[StakeRefInput, ledgerapi.AmountResponse] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, in StakeRefInput) (*mcp.CallToolResult, ledgerapi.AmountResponse, error) {
		return invoke(ledgerapi.WithGrant(ctx, in.Grant), "withdraw", in.request(), client.Withdraw)
	}
}

func PoolGetHandler(client LedgerClient) mcp.ToolHandlerFor[PoolGetInput, ledgerapi.Pool] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, in PoolGetInput) (*mcp.CallToolResult, ledgerapi.Pool, error) {
		return invoke(ctx, "pool get", &ledgerapi.GetPoolRequest{PoolID: in.PoolID}, client.GetPool)
	}
}

func StakeGetHandler(client LedgerClient) mcp.ToolHandlerFor[StakeRefInput, ledgerapi.Stake] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, in StakeRefInput) (*mcp.CallToolResult, ledgerapi.Stake, error) {
		return invoke(ctx, "stake get", in.request(), client.GetStake)
	}
}

func (in StakeRefInput) request() *ledgerapi.StakeRefRequest {
	return &ledgerapi.StakeRefRequest{PoolID: in.PoolID, StakeID: in.StakeID}
}
