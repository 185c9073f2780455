// Package metrics provides Prometheus collectors for ledgerworks.
//
// The engine records one observation per command (domain, command type,
// outcome) and per appended event; sinks report delivery failures; the gRPC
// interceptor records request counts and latency by method and status code.
// Handler exposes the registry for scraping.
package metrics
