package domain

import (
	"context"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"google.golang.org/grpc"
	"google.golang.org/grpc/metadata"

	apperrors "github.com/louisbranch/ledgerworks/internal/platform/errors"
	"github.com/louisbranch/ledgerworks/internal/platform/id"
	"github.com/louisbranch/ledgerworks/internal/platform/requestctx"
	"github.com/louisbranch/ledgerworks/internal/platform/timeouts"
	ledgerapi "github.com/louisbranch/ledgerworks/internal/services/ledger/api/grpc/ledger"
)

// LedgerClient is the part of the ledger API the tools call.
type LedgerClient interface {
	CreateRegistry(context.Context, *ledgerapi.CreateRegistryRequest, ...grpc.CallOption) (*ledgerapi.CreateRegistryResponse, error)
	GetRegistry(context.Context, *ledgerapi.GetRegistryRequest, ...grpc.CallOption) (*ledgerapi.Registry, error)
	CreateProposal(context.Context, *ledgerapi.CreateProposalRequest, ...grpc.CallOption) (*ledgerapi.CreateProposalResponse, error)
	Vote(context.Context, *ledgerapi.VoteRequest, ...grpc.CallOption) (*ledgerapi.VoteResponse, error)
	FinalizeProposal(context.Context, *ledgerapi.ProposalRequest, ...grpc.CallOption) (*ledgerapi.FinalizeProposalResponse, error)
	ExecuteProposal(context.Context, *ledgerapi.ProposalRequest, ...grpc.CallOption) (*ledgerapi.Empty, error)
	GetProposal(context.Context, *ledgerapi.ProposalRequest, ...grpc.CallOption) (*ledgerapi.Proposal, error)

	LockWager(context.Context, *ledgerapi.LockWagerRequest, ...grpc.CallOption) (*ledgerapi.LockWagerResponse, error)
	DisputeWager(context.Context, *ledgerapi.WagerRequest, ...grpc.CallOption) (*ledgerapi.Empty, error)
	ReleaseWager(context.Context, *ledgerapi.ReleaseWagerRequest, ...grpc.CallOption) (*ledgerapi.Empty, error)
	ForceResolveWager(context.Context, *ledgerapi.WagerRequest, ...grpc.CallOption) (*ledgerapi.Empty, error)
	SettleWager(context.Context, *ledgerapi.SettleWagerRequest, ...grpc.CallOption) (*ledgerapi.Empty, error)
	GetWager(context.Context, *ledgerapi.WagerRequest, ...grpc.CallOption) (*ledgerapi.Wager, error)

	CreatePool(context.Context, *ledgerapi.CreatePoolRequest, ...grpc.CallOption) (*ledgerapi.CreatePoolResponse, error)
	Stake(context.Context, *ledgerapi.StakeRequest, ...grpc.CallOption) (*ledgerapi.Stake, error)
	ClaimRewards(context.Context, *ledgerapi.StakeRefRequest, ...grpc.CallOption) (*ledgerapi.AmountResponse, error)
	Withdraw(context.Context, *ledgerapi.StakeRefRequest, ...grpc.CallOption) (*ledgerapi.AmountResponse, error)
	GetPool(context.Context, *ledgerapi.GetPoolRequest, ...grpc.CallOption) (*ledgerapi.Pool, error)
	GetStake(context.Context, *ledgerapi.StakeRefRequest, ...grpc.CallOption) (*ledgerapi.Stake, error)

	Mint(context.Context, *ledgerapi.MintRequest, ...grpc.CallOption) (*ledgerapi.BalanceResponse, error)
	GetBalance(context.Context, *ledgerapi.BalanceRequest, ...grpc.CallOption) (*ledgerapi.BalanceResponse, error)
	ListEvents(context.Context, *ledgerapi.ListEventsRequest, ...grpc.CallOption) (*ledgerapi.ListEventsResponse, error)
	VerifyStream(context.Context, *ledgerapi.VerifyStreamRequest, ...grpc.CallOption) (*ledgerapi.VerifyStreamResponse, error)
}

var _ LedgerClient = (*ledgerapi.Client)(nil)

// Done is the output of tools whose ledger call returns nothing.
type Done struct {
	OK bool `json:"ok"`
}

// invoke runs one ledger call under the request timeout with a fresh
// request id, so journal events written by the call can be traced back to
// the tool invocation.
func invoke[Req, Resp any](ctx context.Context, op string, req *Req, call func(context.Context, *Req, ...grpc.CallOption) (*Resp, error)) (*mcp.CallToolResult, Resp, error) {
	var zero Resp
	requestID, err := id.NewID()
	if err != nil {
		return nil, zero, fmt.Errorf("generate request id: %w", err)
	}
	callCtx, cancel := context.WithTimeout(ctx, timeouts.GRPCRequest)
	defer cancel()
	callCtx = metadata.AppendToOutgoingContext(callCtx, requestctx.RequestIDHeader, requestID)

	resp, err := call(callCtx, req)
	if err != nil {
		return nil, zero, toolError(op, err)
	}
	if resp == nil {
		return nil, zero, fmt.Errorf("%s: response is missing", op)
	}
	return nil, *resp, nil
}

// done adapts calls that return Empty.
func done[Req any](ctx context.Context, op string, req *Req, call func(context.Context, *Req, ...grpc.CallOption) (*ledgerapi.Empty, error)) (*mcp.CallToolResult, Done, error) {
	result, _, err := invoke(ctx, op, req, call)
	if err != nil {
		return nil, Done{}, err
	}
	return result, Done{OK: true}, nil
}

func toolError(op string, err error) error {
	code := apperrors.CodeOf(err)
	message := strings.TrimSpace(apperrors.LocalizedMessage(err))
	if message == "" {
		message = err.Error()
	}
	return fmt.Errorf("%s failed: %s: %s", op, code, message)
}
