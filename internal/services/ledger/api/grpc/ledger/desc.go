package ledger

import (
	"context"

	"google.golang.org/grpc"

	apperrors "github.com/louisbranch/ledgerworks/internal/platform/errors"
	"github.com/louisbranch/ledgerworks/internal/platform/requestctx"
)

// ServiceName is the fully qualified gRPC service name.
const ServiceName = "ledger.v1.LedgerService"

// Method names of the ledger service.
const (
	MethodCreateRegistry    = "CreateRegistry"
	MethodGetRegistry       = "GetRegistry"
	MethodCreateProposal    = "CreateProposal"
	MethodVote              = "Vote"
	MethodFinalizeProposal  = "FinalizeProposal"
	MethodExecuteProposal   = "ExecuteProposal"
	MethodGetProposal       = "GetProposal"
	MethodLockWager         = "LockWager"
	MethodDisputeWager      = "DisputeWager"
	MethodReleaseWager      = "ReleaseWager"
	MethodForceResolveWager = "ForceResolveWager"
	MethodSettleWager       = "SettleWager"
	MethodGetWager          = "GetWager"
	MethodCreatePool        = "CreatePool"
	MethodStake             = "Stake"
	MethodClaimRewards      = "ClaimRewards"
	MethodWithdraw          = "Withdraw"
	MethodGetPool           = "GetPool"
	MethodGetStake          = "GetStake"
	MethodMint              = "Mint"
	MethodGetBalance        = "GetBalance"
	MethodListEvents        = "ListEvents"
	MethodVerifyStream      = "VerifyStream"
)

// FullMethod returns the gRPC path of method.
func FullMethod(method string) string {
	return "/" + ServiceName + "/" + method
}

// LedgerServer is the server API of the ledger service.
type LedgerServer interface {
	CreateRegistry(context.Context, *CreateRegistryRequest) (*CreateRegistryResponse, error)
	GetRegistry(context.Context, *GetRegistryRequest) (*Registry, error)
	CreateProposal(context.Context, *CreateProposalRequest) (*CreateProposalResponse, error)
	Vote(context.Context, *VoteRequest) (*VoteResponse, error)
	FinalizeProposal(context.Context, *ProposalRequest) (*FinalizeProposalResponse, error)
	ExecuteProposal(context.Context, *ProposalRequest) (*Empty, error)
	GetProposal(context.Context, *ProposalRequest) (*Proposal, error)

	LockWager(context.Context, *LockWagerRequest) (*LockWagerResponse, error)
	DisputeWager(context.Context, *WagerRequest) (*Empty, error)
	ReleaseWager(context.Context, *ReleaseWagerRequest) (*Empty, error)
	ForceResolveWager(context.Context, *WagerRequest) (*Empty, error)
	SettleWager(context.Context, *SettleWagerRequest) (*Empty, error)
	GetWager(context.Context, *WagerRequest) (*Wager, error)

	CreatePool(context.Context, *CreatePoolRequest) (*CreatePoolResponse, error)
	Stake(context.Context, *StakeRequest) (*Stake, error)
	ClaimRewards(context.Context, *StakeRefRequest) (*AmountResponse, error)
	Withdraw(context.Context, *StakeRefRequest) (*AmountResponse, error)
	GetPool(context.Context, *GetPoolRequest) (*Pool, error)
	GetStake(context.Context, *StakeRefRequest) (*Stake, error)

	Mint(context.Context, *MintRequest) (*BalanceResponse, error)
	GetBalance(context.Context, *BalanceRequest) (*BalanceResponse, error)
	ListEvents(context.Context, *ListEventsRequest) (*ListEventsResponse, error)
	VerifyStream(context.Context, *VerifyStreamRequest) (*VerifyStreamResponse, error)
}

// ServiceDesc describes the ledger service for grpc.Server registration.
var ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*LedgerServer)(nil),
	Methods: []grpc.MethodDesc{
		unary(MethodCreateRegistry, LedgerServer.CreateRegistry),
		unary(MethodGetRegistry, LedgerServer.GetRegistry),
		unary(MethodCreateProposal, LedgerServer.CreateProposal),
		unary(MethodVote, LedgerServer.Vote),
		unary(MethodFinalizeProposal, LedgerServer.FinalizeProposal),
		unary(MethodExecuteProposal, LedgerServer.ExecuteProposal),
		unary(MethodGetProposal, LedgerServer.GetProposal),
		unary(MethodLockWager, LedgerServer.LockWager),
		unary(MethodDisputeWager, LedgerServer.DisputeWager),
		unary(MethodReleaseWager, LedgerServer.ReleaseWager),
		unary(MethodForceResolveWager, LedgerServer.ForceResolveWager),
		unary(MethodSettleWager, LedgerServer.SettleWager),
		unary(MethodGetWager, LedgerServer.GetWager),
		unary(MethodCreatePool, LedgerServer.CreatePool),
		unary(MethodStake, LedgerServer.Stake),
		unary(MethodClaimRewards, LedgerServer.ClaimRewards),
		unary(MethodWithdraw, LedgerServer.Withdraw),
		unary(MethodGetPool, LedgerServer.GetPool),
		unary(MethodGetStake, LedgerServer.GetStake),
		unary(MethodMint, LedgerServer.Mint),
		unary(MethodGetBalance, LedgerServer.GetBalance),
		unary(MethodListEvents, LedgerServer.ListEvents),
		unary(MethodVerifyStream, LedgerServer.VerifyStream),
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "ledger/v1/ledger.json",
}

// RegisterLedgerServer registers srv on registrar.
func RegisterLedgerServer(registrar grpc.ServiceRegistrar, srv LedgerServer) {
	registrar.RegisterService(&ServiceDesc, srv)
}

// unary adapts a typed LedgerServer method to a grpc.MethodDesc. Domain
// errors leave the handler as statuses localized for the caller's
// Accept-Language, so interceptors observe final status codes.
func unary[Req, Resp any](method string, call func(LedgerServer, context.Context, *Req) (*Resp, error)) grpc.MethodDesc {
	return grpc.MethodDesc{
		MethodName: method,
		Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
			in := new(Req)
			if err := dec(in); err != nil {
				return nil, err
			}
			handler := func(ctx context.Context, req any) (any, error) {
				resp, err := call(srv.(LedgerServer), ctx, req.(*Req))
				if err != nil {
					return nil, apperrors.ToGRPC(err, requestctx.LocaleFromIncoming(ctx))
				}
				return resp, nil
			}
			if interceptor == nil {
				return handler(ctx, in)
			}
			info := &grpc.UnaryServerInfo{Server: srv, FullMethod: FullMethod(method)}
			return interceptor(ctx, in, info, handler)
		},
	}
}
