// Package staking implements a stake pool with linear per-day reward
// accrual.
//
// Each pool is one journal stream. Stakes are indexed by id inside the pool
// state and removed on withdraw.
package staking
