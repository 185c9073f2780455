// Package domain holds the MCP tool handlers that bridge tool calls to the
// ledger gRPC API.
//
// Each handler converts a tool input into one ledger call and returns the
// call's response as structured tool output. Ledger errors become tool errors
// carrying the error code so agents can branch on it.
package domain
