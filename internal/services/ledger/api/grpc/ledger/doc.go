// Package ledger serves the ledger.v1.LedgerService gRPC API and provides its
// Go client.
//
// Messages are plain Go structs encoded with the JSON codec registered by this
// package; clients select it with the "json" content subtype. Callers move
// value through vault wallets: operations that take tokens withdraw them from
// the named wallet and operations that pay out deposit into it.
package ledger
