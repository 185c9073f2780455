package escrow

import "github.com/louisbranch/ledgerworks/internal/services/ledger/domain/clock"

// Status is the lifecycle position of a wager.
type Status string

const (
	StatusActive   Status = "active"
	StatusDisputed Status = "disputed"
	StatusResolved Status = "resolved"
	StatusExpired  Status = "expired"
)

// Disposition says how an expired pot was paid out.
type Disposition string

const (
	DispositionRefund Disposition = "refund"
	DispositionAward  Disposition = "award"
)

// TimeoutPeriodDays is how long after creation a disputed wager may be
// forced to Expired.
const TimeoutPeriodDays uint64 = 30

// State is the folded view of one wager stream.
type State struct {
	Created      bool
	WagerID      string
	PlayerOne    string
	PlayerTwo    string
	Amount       uint64
	Resolver     string
	CreatedAtDay clock.Day
	Status       Status
	// Winner is set only when Status is Resolved.
	Winner string

	Settled     bool
	Disposition Disposition
	// SettledTo is the award recipient of a settled pot.
	SettledTo string
}

// Pot is the value held in escrow for the wager.
func (s State) Pot() uint64 {
	return s.Amount * 2
}

// Held is the value the wager keeps in custody: the pot while Active or
// Disputed, and while Expired until settled.
func (s State) Held() uint64 {
	if !s.Created {
		return 0
	}
	switch s.Status {
	case StatusActive, StatusDisputed:
		return s.Pot()
	case StatusExpired:
		if !s.Settled {
			return s.Pot()
		}
	}
	return 0
}

// IsPlayer reports whether addr is one of the two players.
func (s State) IsPlayer(addr string) bool {
	return addr != "" && (addr == s.PlayerOne || addr == s.PlayerTwo)
}

// Terminal reports whether no further status transitions exist.
func (s State) Terminal() bool {
	return s.Status == StatusResolved || s.Status == StatusExpired
}

// Unsettled reports whether the wager expired with its pot still held.
func (s State) Unsettled() bool {
	return s.Status == StatusExpired && !s.Settled
}

// TimeoutAfter is the last day force_resolve is still refused.
func (s State) TimeoutAfter() (clock.Day, bool) {
	return clock.AddDays(s.CreatedAtDay, TimeoutPeriodDays)
}
