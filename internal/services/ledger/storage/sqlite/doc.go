// Package sqlite implements the ledger event journal on SQLite.
//
// Every appended event is validated against the event registry, linked into
// its stream's hash chain, and signed with the integrity keyring inside the
// append transaction. Schema changes ship as embedded migrations.
package sqlite
