package ledger

import (
	"context"
	"errors"

	"google.golang.org/grpc"

	apperrors "github.com/louisbranch/ledgerworks/internal/platform/errors"
)

// Client calls the ledger service. Failed calls return *apperrors.Error
// rebuilt from the status, so errors.Is matches domain sentinels.
type Client struct {
	conn grpc.ClientConnInterface
}

// NewClient creates a ledger client over conn.
func NewClient(conn grpc.ClientConnInterface) (*Client, error) {
	if conn == nil {
		return nil, errors.New("gRPC connection is required")
	}
	return &Client{conn: conn}, nil
}

func invoke[Resp any](ctx context.Context, c *Client, method string, in any, opts ...grpc.CallOption) (*Resp, error) {
	out := new(Resp)
	opts = append([]grpc.CallOption{grpc.CallContentSubtype(CodecName)}, opts...)
	if err := c.conn.Invoke(ctx, FullMethod(method), in, out, opts...); err != nil {
		return nil, apperrors.FromGRPCError(err)
	}
	return out, nil
}

func (c *Client) CreateRegistry(ctx context.Context, in *CreateRegistryRequest, opts ...grpc.CallOption) (*CreateRegistryResponse, error) {
	return invoke[CreateRegistryResponse](ctx, c, MethodCreateRegistry, in, opts...)
}

func (c *Client) GetRegistry(ctx context.Context, in *GetRegistryRequest, opts ...grpc.CallOption) (*Registry, error) {
	return invoke[Registry](ctx, c, MethodGetRegistry, in, opts...)
}

func (c *Client) CreateProposal(ctx context.Context, in *CreateProposalRequest, opts ...grpc.CallOption) (*CreateProposalResponse, error) {
	return invoke[CreateProposalResponse](ctx, c, MethodCreateProposal, in, opts...)
}

func (c *Client) Vote(ctx context.Context, in *VoteRequest, opts ...grpc.CallOption) (*VoteResponse, error) {
	return invoke[VoteResponse](ctx, c, MethodVote, in, opts...)
}

func (c *Client) FinalizeProposal(ctx context.Context, in *ProposalRequest, opts ...grpc.CallOption) (*FinalizeProposalResponse, error) {
	return invoke[FinalizeProposalResponse](ctx, c, MethodFinalizeProposal, in, opts...)
}

func (c *Client) ExecuteProposal(ctx context.Context, in *ProposalRequest, opts ...grpc.CallOption) (*Empty, error) {
	return invoke[Empty](ctx, c, MethodExecuteProposal, in, opts...)
}

func (c *Client) GetProposal(ctx context.Context, in *ProposalRequest, opts ...grpc.CallOption) (*Proposal, error) {
	return invoke[Proposal](ctx, c, MethodGetProposal, in, opts...)
}

func (c *Client) LockWager(ctx context.Context, in *LockWagerRequest, opts ...grpc.CallOption) (*LockWagerResponse, error) {
	return invoke[LockWagerResponse](ctx, c, MethodLockWager, in, opts...)
}

func (c *Client) DisputeWager(ctx context.Context, in *WagerRequest, opts ...grpc.CallOption) (*Empty, error) {
	return invoke[Empty](ctx, c, MethodDisputeWager, in, opts...)
}

func (c *Client) ReleaseWager(ctx context.Context, in *ReleaseWagerRequest, opts ...grpc.CallOption) (*Empty, error) {
	return invoke[Empty](ctx, c, MethodReleaseWager, in, opts...)
}

func (c *Client) ForceResolveWager(ctx context.Context, in *WagerRequest, opts ...grpc.CallOption) (*Empty, error) {
	return invoke[Empty](ctx, c, MethodForceResolveWager, in, opts...)
}

func (c *Client) SettleWager(ctx context.Context, in *SettleWagerRequest, opts ...grpc.CallOption) (*Empty, error) {
	return invoke[Empty](ctx, c, MethodSettleWager, in, opts...)
}

func (c *Client) GetWager(ctx context.Context, in *WagerRequest, opts ...grpc.CallOption) (*Wager, error) {
	return invoke[Wager](ctx, c, MethodGetWager, in, opts...)
}

func (c *Client) CreatePool(ctx context.Context, in *CreatePoolRequest, opts ...grpc.CallOption) (*CreatePoolResponse, error) {
	return invoke[CreatePoolResponse](ctx, c, MethodCreatePool, in, opts...)
}

func (c *Client) Stake(ctx context.Context, in *StakeRequest, opts ...grpc.CallOption) (*Stake, error) {
	return invoke[Stake](ctx, c, MethodStake, in, opts...)
}

func (c *Client) ClaimRewards(ctx context.Context, in *StakeRefRequest, opts ...grpc.CallOption) (*AmountResponse, error) {
	return invoke[AmountResponse](ctx, c, MethodClaimRewards, in, opts...)
}

func (c *Client) Withdraw(ctx context.Context, in *StakeRefRequest, opts ...grpc.CallOption) (*AmountResponse, error) {
	return invoke[AmountResponse](ctx, c, MethodWithdraw, in, opts...)
}

func (c *Client) GetPool(ctx context.Context, in *GetPoolRequest, opts ...grpc.CallOption) (*Pool, error) {
	return invoke[Pool](ctx, c, MethodGetPool, in, opts...)
}

func (c *Client) GetStake(ctx context.Context, in *StakeRefRequest, opts ...grpc.CallOption) (*Stake, error) {
	return invoke[Stake](ctx, c, MethodGetStake, in, opts...)
}

func (c *Client) Mint(ctx context.Context, in *MintRequest, opts ...grpc.CallOption) (*BalanceResponse, error) {
	return invoke[BalanceResponse](ctx, c, MethodMint, in, opts...)
}

func (c *Client) GetBalance(ctx context.Context, in *BalanceRequest, opts ...grpc.CallOption) (*BalanceResponse, error) {
	return invoke[BalanceResponse](ctx, c, MethodGetBalance, in, opts...)
}

func (c *Client) ListEvents(ctx context.Context, in *ListEventsRequest, opts ...grpc.CallOption) (*ListEventsResponse, error) {
	return invoke[ListEventsResponse](ctx, c, MethodListEvents, in, opts...)
}

func (c *Client) VerifyStream(ctx context.Context, in *VerifyStreamRequest, opts ...grpc.CallOption) (*VerifyStreamResponse, error) {
	return invoke[VerifyStreamResponse](ctx, c, MethodVerifyStream, in, opts...)
}
