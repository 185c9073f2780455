// Package service is the in-process ledger API. It turns caller intents into
// engine commands and moves value tokens for accepted decisions.
//
// Value only moves inside engine effects, after a decision is accepted and
// before its events are journaled. A rejected operation leaves every input
// token live and untouched. If the journal append fails after custody was
// taken, the value is credited to the tendering callers' vault wallets.
package service
