package domain

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	ledgerapi "github.com/louisbranch/ledgerworks/internal/services/ledger/api/grpc/ledger"
)

// RegistryCreateInput represents the MCP tool input for opening a governance registry.
type RegistryCreateInput struct {
	Grant              string `json:"grant" jsonschema:"signed ledger.act grant; its subject creates the registry"`
	MinVotingPower     uint64 `json:"min_voting_power" jsonschema:"voting power required to open a proposal"`
	VotingPeriodDays   uint64 `json:"voting_period_days" jsonschema:"days a proposal stays open for votes"`
	ExecutionDelayDays uint64 `json:"execution_delay_days,omitempty" jsonschema:"days after voting ends before a passed proposal may execute"`
}

// ProposalCreateInput represents the MCP tool input for opening a proposal.
type ProposalCreateInput struct {
	RegistryID  string `json:"registry_id" jsonschema:"registry identifier"`
	Grant       string `json:"grant" jsonschema:"signed ledger.act grant; voting power is measured from its subject's wallet"`
	Title       string `json:"title" jsonschema:"proposal title"`
	Description string `json:"description,omitempty" jsonschema:"proposal body"`
	VotingPower uint64 `json:"voting_power" jsonschema:"wallet value to present as voting power"`
}

// VoteInput represents the MCP tool input for voting.
type VoteInput struct {
	RegistryID  string `json:"registry_id" jsonschema:"registry identifier"`
	ProposalID  uint64 `json:"proposal_id" jsonschema:"proposal number"`
	Grant       string `json:"grant" jsonschema:"signed ledger.act grant; power is measured from its subject's wallet"`
	VotingPower uint64 `json:"voting_power" jsonschema:"wallet value to vote with"`
	Approve     bool   `json:"approve,omitempty" jsonschema:"true for yes, false for no"`
}

// ProposalInput addresses one proposal.
type ProposalInput struct {
	RegistryID string `json:"registry_id" jsonschema:"registry identifier"`
	ProposalID uint64 `json:"proposal_id" jsonschema:"proposal number"`
	Grant      string `json:"grant,omitempty" jsonschema:"signed ledger.act grant; its subject is the caller"`
}

// RegistryCreateTool defines the MCP tool schema for opening a registry.
func RegistryCreateTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "governance_registry_create",
		Description: "Opens a governance registry with fixed voting parameters",
	}
}

// ProposalCreateTool defines the MCP tool schema for opening a proposal.
func ProposalCreateTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "governance_proposal_create",
		Description: "Opens a proposal; the creator's wallet must hold the registry minimum",
	}
}

// VoteTool defines the MCP tool schema for voting.
func VoteTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "governance_vote",
		Description: "Casts one vote on an active proposal weighted by wallet value",
	}
}

// ProposalFinalizeTool defines the MCP tool schema for closing voting.
func ProposalFinalizeTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "governance_proposal_finalize",
		Description: "Closes voting after the period ends and reports passed or rejected",
	}
}

// ProposalExecuteTool defines the MCP tool schema for executing a proposal.
func ProposalExecuteTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "governance_proposal_execute",
		Description: "Marks a passed proposal executed once its delay has elapsed",
	}
}

// ProposalGetTool defines the MCP tool schema for reading a proposal.
func ProposalGetTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "governance_proposal_get",
		Description: "Returns a proposal with its tallies and status",
	}
}

func RegistryCreateHandler(client LedgerClient) mcp.ToolHandlerFor[RegistryCreateInput, ledgerapi.CreateRegistryResponse] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, in RegistryCreateInput) (*mcp.CallToolResult, ledgerapi.CreateRegistryResponse, error) {
		return invoke(ledgerapi.WithGrant(ctx, in.Grant), "registry create", &ledgerapi.CreateRegistryRequest{
			MinVotingPower:     in.MinVotingPower,
			VotingPeriodDays:   in.VotingPeriodDays,
			ExecutionDelayDays: in.ExecutionDelayDays,
		}, client.CreateRegistry)
	}
}

func ProposalCreateHandler(client LedgerClient) mcp.ToolHandlerFor[ProposalCreateInput, ledgerapi.CreateProposalResponse] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, in ProposalCreateInput) (*mcp.CallToolResult, ledgerapi.CreateProposalResponse, error) {
		return invoke(ledgerapi.WithGrant(ctx, in.Grant), "proposal create", &ledgerapi.CreateProposalRequest{
			RegistryID:  in.RegistryID,
			Title:       in.Title,
			Description: in.Description,
			VotingPower: in.VotingPower,
		}, client.CreateProposal)
	}
}

func VoteHandler(client LedgerClient) mcp.ToolHandlerFor[VoteInput, ledgerapi.VoteResponse] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, in VoteInput) (*mcp.CallToolResult, ledgerapi.VoteResponse, error) {
		return invoke(ledgerapi.WithGrant(ctx, in.Grant), "vote", &ledgerapi.VoteRequest{
			RegistryID:  in.RegistryID,
			ProposalID:  in.ProposalID,
			VotingPower: in.VotingPower,
			Approve:     in.Approve,
		}, client.Vote)
	}
}

func ProposalFinalizeHandler(client LedgerClient) mcp.ToolHandlerFor[ProposalInput, ledgerapi.FinalizeProposalResponse] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, in ProposalInput) (*mcp.CallToolResult, ledgerapi.FinalizeProposalResponse, error) {
		return invoke(ledgerapi.WithGrant(ctx, in.Grant), "proposal finalize", in.request(), client.FinalizeProposal)
	}
}

func ProposalExecuteHandler(client LedgerClient) mcp.ToolHandlerFor[ProposalInput, Done] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, in ProposalInput) (*mcp.CallToolResult, Done, error) {
		return done(ledgerapi.WithGrant(ctx, in.Grant), "proposal execute", in.request(), client.ExecuteProposal)
	}
}

func ProposalGetHandler(client LedgerClient) mcp.ToolHandlerFor[ProposalInput, ledgerapi.Proposal] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, in ProposalInput) (*mcp.CallToolResult, ledgerapi.Proposal, error) {
		return invoke(ctx, "proposal get", in.request(), client.GetProposal)
	}
}

func (in ProposalInput) request() *ledgerapi.ProposalRequest {
	return &ledgerapi.ProposalRequest{RegistryID: in.RegistryID, ProposalID: in.ProposalID}
}
