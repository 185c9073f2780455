// Package telemetry groups operational observability for ledgerworks.
//
// The event journal is the system of record for ledger activity and is not
// telemetry. Operational signals (command outcomes, latency, sink health,
// request counts) live in telemetry/metrics and are exposed in Prometheus
// format; traces are configured by platform/otel.
package telemetry
