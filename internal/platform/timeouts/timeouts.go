// Package timeouts defines shared timeout constants used across binaries.
package timeouts

import "time"

// GRPCDial caps the wait for a gRPC peer to become healthy.
const GRPCDial = 5 * time.Second

// GRPCRequest caps a single MCP-initiated gRPC request.
const GRPCRequest = 5 * time.Second

// ReadHeader limits how long an HTTP server waits for request headers.
const ReadHeader = 5 * time.Second

// Shutdown limits graceful shutdown of servers.
const Shutdown = 5 * time.Second
