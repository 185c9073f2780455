// Package governance implements the proposal and voting lifecycle of a
// governance registry.
//
// A registry is one journal stream. Proposals are numbered from 1 within the
// registry and move Active -> Passed|Rejected -> Executed. Voting power is
// measured from a value token the caller tenders; the token is only
// inspected, never kept. All deadlines are whole days taken from the clock
// value the engine passes to Decide.
package governance
