// Package server assembles the ledger process: journal storage, services,
// event sinks, the gRPC API, and the metrics endpoint.
package server
