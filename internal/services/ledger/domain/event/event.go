// Package event defines the journal event envelope and its registry.
package event

import (
	"strings"
	"time"

	"github.com/louisbranch/ledgerworks/internal/services/ledger/domain/clock"
)

// Type identifies an event, namespaced by domain ("staking.withdrawn").
type Type string

// Domain returns the namespace before the first dot.
func (t Type) Domain() string {
	domain, _, _ := strings.Cut(string(t), ".")
	return domain
}

// Event is one journal entry. StreamID names the ledger record (registry,
// wager, or pool) whose history the event belongs to.
type Event struct {
	StreamID       string
	Seq            uint64
	Hash           string
	PrevHash       string
	ChainHash      string
	Signature      string
	SignatureKeyID string
	Day            clock.Day
	RecordedAt     time.Time
	Type           Type
	ActorID        string
	RequestID      string
	EntityType     string
	EntityID       string
	PayloadJSON    []byte
}
