// Package escrow implements peer-to-peer wagers held in escrow until a
// resolver names the winner.
//
// A wager moves Active -> Disputed -> Resolved|Expired, or Active -> Resolved
// directly. Expired wagers carry their pot until an operator holding an
// escrow.settle credential settles them.
package escrow
