// Package engine runs ledger commands against journaled record state.
//
// A Handler owns one domain (governance, escrow, or staking). For each
// command it validates the envelope, rebuilds the record by replaying the
// journal (cached between calls), asks the domain decider for a decision,
// and on acceptance appends the events and folds them into the cached
// state. Commands on the same stream are serialized; commands on different
// streams run concurrently.
//
// A rejected command has no side effects: nothing reaches the journal, the
// cache, or the sink.
package engine
