package domain

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	ledgerapi "github.com/louisbranch/ledgerworks/internal/services/ledger/api/grpc/ledger"
)

// WagerLockInput represents the MCP tool input for locking a wager.
type WagerLockInput struct {
	Grant          string `json:"grant" jsonschema:"first player's signed ledger.act grant"`
	PlayerTwoGrant string `json:"player_two_grant" jsonschema:"second player's signed ledger.act grant"`
	Resolver       string `json:"resolver" jsonschema:"address allowed to dispute and release"`
	Amount         uint64 `json:"amount" jsonschema:"stake taken from each player's wallet"`
}

// WagerInput addresses one wager.
type WagerInput struct {
	WagerID string `json:"wager_id" jsonschema:"wager identifier"`
	Grant   string `json:"grant,omitempty" jsonschema:"signed ledger.act grant; its subject is the caller"`
}

// WagerReleaseInput represents the MCP tool input for paying out a wager.
type WagerReleaseInput struct {
	WagerID string `json:"wager_id" jsonschema:"wager identifier"`
	Grant   string `json:"grant" jsonschema:"resolver's signed ledger.act grant"`
	Winner  string `json:"winner" jsonschema:"player receiving the pot"`
}

// WagerSettleInput represents the MCP tool input for settling an expired wager.
type WagerSettleInput struct {
	WagerID     string `json:"wager_id" jsonschema:"wager identifier"`
	Grant       string `json:"grant" jsonschema:"signed capability grant with the escrow.settle scope"`
	Disposition string `json:"disposition" jsonschema:"refund or award"`
	Recipient   string `json:"recipient,omitempty" jsonschema:"player receiving the pot when disposition is award"`
}

// WagerLockTool defines the MCP tool schema for locking a wager.
func WagerLockTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "escrow_wager_lock",
		Description: "Locks equal stakes from two players' wallets into a new wager",
	}
}

// WagerDisputeTool defines the MCP tool schema for disputing a wager.
func WagerDisputeTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "escrow_wager_dispute",
		Description: "Flags an active wager as disputed (resolver only)",
	}
}

// WagerReleaseTool defines the MCP tool schema for releasing a wager.
func WagerReleaseTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "escrow_wager_release",
		Description: "Pays the pot to the winning player (resolver only)",
	}
}

// WagerForceResolveTool defines the MCP tool schema for expiring a wager.
func WagerForceResolveTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "escrow_wager_force_resolve",
		Description: "Expires a disputed wager after the timeout period",
	}
}

// WagerSettleTool defines the MCP tool schema for settling a wager.
func WagerSettleTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "escrow_wager_settle",
		Description: "Refunds or awards the pot of an expired wager under a settle grant",
	}
}

// WagerGetTool defines the MCP tool schema for reading a wager.
func WagerGetTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "escrow_wager_get",
		Description: "Returns a wager with its status and custody balance",
	}
}

func WagerLockHandler(client LedgerClient) mcp.ToolHandlerFor[WagerLockInput, ledgerapi.LockWagerResponse] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, in WagerLockInput) (*mcp.CallToolResult, ledgerapi.LockWagerResponse, error) {
		return invoke(ledgerapi.WithGrant(ctx, in.Grant), "wager lock", &ledgerapi.LockWagerRequest{
			PlayerTwoGrant: in.PlayerTwoGrant,
			Resolver:       in.Resolver,
			Amount:         in.Amount,
		}, client.LockWager)
	}
}

func WagerDisputeHandler(client LedgerClient) mcp.ToolHandlerFor[WagerInput, Done] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, in WagerInput) (*mcp.CallToolResult, Done, error) {
		return done(in.withGrant(ctx), "wager dispute", in.request(), client.DisputeWager)
	}
}

func WagerReleaseHandler(client LedgerClient) mcp.ToolHandlerFor[WagerReleaseInput, Done] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, in WagerReleaseInput) (*mcp.CallToolResult, Done, error) {
		return done(ledgerapi.WithGrant(ctx, in.Grant), "wager release", &ledgerapi.ReleaseWagerRequest{
			WagerID: in.WagerID,
			Winner:  in.Winner,
		}, client.ReleaseWager)
	}
}

func WagerForceResolveHandler(client LedgerClient) mcp.ToolHandlerFor[WagerInput, Done] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, in WagerInput) (*mcp.CallToolResult, Done, error) {
		return done(in.withGrant(ctx), "wager force resolve", in.request(), client.ForceResolveWager)
	}
}

func WagerSettleHandler(client LedgerClient) mcp.ToolHandlerFor[WagerSettleInput, Done] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, in WagerSettleInput) (*mcp.CallToolResult, Done, error) {
		return done(ctx, "wager settle", &ledgerapi.SettleWagerRequest{
			WagerID:     in.WagerID,
			Grant:       in.Grant,
			Disposition: in.Disposition,
			Recipient:   in.Recipient,
		}, client.SettleWager)
	}
}

func WagerGetHandler(client LedgerClient) mcp.ToolHandlerFor[WagerInput, ledgerapi.Wager] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, in WagerInput) (*mcp.CallToolResult, ledgerapi.Wager, error) {
		return invoke(ctx, "wager get", in.request(), client.GetWager)
	}
}

func (in WagerInput) request() *ledgerapi.WagerRequest {
	return &ledgerapi.WagerRequest{WagerID: in.WagerID}
}

func (in WagerInput) withGrant(ctx context.Context) context.Context {
	return ledgerapi.WithGrant(ctx, in.Grant)
}
