package domain

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	ledgerapi "github.com/louisbranch/ledgerworks/internal/services/ledger/api/grpc/ledger"
)

// MintInput represents the MCP tool input for minting into a wallet.
type MintInput struct {
	Grant   string `json:"grant" jsonschema:"signed capability grant with the ledger.mint scope"`
	Address string `json:"address" jsonschema:"wallet receiving the value"`
	Amount  uint64 `json:"amount" jsonschema:"value to mint"`
}

// BalanceInput represents the MCP tool input for reading a wallet.
type BalanceInput struct {
	Address string `json:"address" jsonschema:"wallet address"`
}

// MintTool defines the MCP tool schema for minting.
func MintTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "vault_mint",
		Description: "Mints new value into a wallet under a mint grant",
	}
}

// BalanceTool defines the MCP tool schema for reading a wallet.
func BalanceTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "vault_balance",
		Description: "Returns a wallet balance and the total supply",
	}
}

func MintHandler(client LedgerClient) mcp.ToolHandlerFor[MintInput, ledgerapi.BalanceResponse] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, in MintInput) (*mcp.CallToolResult, ledgerapi.BalanceResponse, error) {
		return invoke(ctx, "mint", &ledgerapi.MintRequest{Grant: in.Grant, Address: in.Address, Amount: in.Amount}, client.Mint)
	}
}

func BalanceHandler(client LedgerClient) mcp.ToolHandlerFor[BalanceInput, ledgerapi.BalanceResponse] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, in BalanceInput) (*mcp.CallToolResult, ledgerapi.BalanceResponse, error) {
		return invoke(ctx, "balance", &ledgerapi.BalanceRequest{Address: in.Address}, client.GetBalance)
	}
}
