package service

import (
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/louisbranch/ledgerworks/internal/services/mcp/domain"
)

func registerGovernanceTools(server *mcp.Server, client domain.LedgerClient) {
	mcp.AddTool(server, domain.RegistryCreateTool(), domain.RegistryCreateHandler(client))
	mcp.AddTool(server, domain.ProposalCreateTool(), domain.ProposalCreateHandler(client))
	mcp.AddTool(server, domain.VoteTool(), domain.VoteHandler(client))
	mcp.AddTool(server, domain.ProposalFinalizeTool(), domain.ProposalFinalizeHandler(client))
	mcp.AddTool(server, domain.ProposalExecuteTool(), domain.ProposalExecuteHandler(client))
	mcp.AddTool(server, domain.ProposalGetTool(), domain.ProposalGetHandler(client))
}

func registerEscrowTools(server *mcp.Server, client domain.LedgerClient) {
	mcp.AddTool(server, domain.WagerLockTool(), domain.WagerLockHandler(client))
	mcp.AddTool(server, domain.WagerDisputeTool(), domain.WagerDisputeHandler(client))
	mcp.AddTool(server, domain.WagerReleaseTool(), domain.WagerReleaseHandler(client))
	mcp.AddTool(server, domain.WagerForceResolveTool(), domain.WagerForceResolveHandler(client))
	mcp.AddTool(server, domain.WagerSettleTool(), domain.WagerSettleHandler(client))
	mcp.AddTool(server, domain.WagerGetTool(), domain.WagerGetHandler(client))
}

func registerStakingTools(server *mcp.Server, client domain.LedgerClient) {
	mcp.AddTool(server, domain.PoolCreateTool(), domain.PoolCreateHandler(client))
	mcp.AddTool(server, domain.StakeTool(), domain.StakeHandler(client))
	mcp.AddTool(server, domain.RewardsClaimTool(), domain.RewardsClaimHandler(client))
	mcp.AddTool(server, domain.WithdrawTool(), domain.WithdrawHandler(client))
	mcp.AddTool(server, domain.PoolGetTool(), domain.PoolGetHandler(client))
	mcp.AddTool(server, domain.StakeGetTool(), domain.StakeGetHandler(client))
}

func registerVaultTools(server *mcp.Server, client domain.LedgerClient) {
	mcp.AddTool(server, domain.MintTool(), domain.MintHandler(client))
	mcp.AddTool(server, domain.BalanceTool(), domain.BalanceHandler(client))
}

func registerJournalTools(server *mcp.Server, client domain.LedgerClient) {
	mcp.AddTool(server, domain.EventListTool(), domain.EventListHandler(client))
	mcp.AddTool(server, domain.StreamVerifyTool(), domain.StreamVerifyHandler(client))
}
