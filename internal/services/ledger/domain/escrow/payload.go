package escrow

import "github.com/louisbranch/ledgerworks/internal/services/ledger/domain/clock"

// LockPayload captures the payload for escrow.lock. Amount is taken from
// each player.
type LockPayload struct {
	PlayerOne string `json:"player_one"`
	PlayerTwo string `json:"player_two"`
	Amount    uint64 `json:"amount"`
	Resolver  string `json:"resolver"`
}

// LockedPayload captures the payload for escrow.locked.
type LockedPayload struct {
	PlayerOne    string    `json:"player_one"`
	PlayerTwo    string    `json:"player_two"`
	Amount       uint64    `json:"amount"`
	Resolver     string    `json:"resolver"`
	CreatedAtDay clock.Day `json:"created_at_day"`
}

// ReleasePayload captures the payload for escrow.release.
type ReleasePayload struct {
	Winner string `json:"winner"`
}

// ResolvedPayload captures the payload for escrow.resolved.
type ResolvedPayload struct {
	Winner string `json:"winner"`
	Payout uint64 `json:"payout"`
}

// SettlePayload captures the payload for escrow.settle. Recipient is used
// by the award disposition only.
type SettlePayload struct {
	Disposition Disposition `json:"disposition"`
	Recipient   string      `json:"recipient,omitempty"`
}

// Payout is one transfer out of the escrow pot.
type Payout struct {
	Account string `json:"account"`
	Amount  uint64 `json:"amount"`
}

// SettledPayload captures the payload for escrow.settled.
type SettledPayload struct {
	Disposition Disposition `json:"disposition"`
	Recipient   string      `json:"recipient,omitempty"`
	Payouts     []Payout    `json:"payouts"`
}

// emptyPayload is used by escrow.dispute, escrow.force_resolve and their
// events.
type emptyPayload struct{}
