// Package service wires protocol transport to the ledger tool handlers.
//
// It knows how to run MCP over stdio or streamable HTTP and delegates every
// tool call to handlers in the domain package.
package service
