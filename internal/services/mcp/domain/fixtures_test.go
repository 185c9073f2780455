package domain

import (
	"encoding/json"
	"time"

	"github.com/louisbranch/ledgerworks/internal/services/ledger/sink"
)

func recordFixture(at time.Time) sink.Record {
	return sink.Record{
		StreamID:   "w1",
		Seq:        3,
		Type:       "escrow.resolved",
		Day:        4,
		RecordedAt: at,
		ActorID:    "r",
		EntityType: "wager",
		EntityID:   "w1",
		Payload:    json.RawMessage(`{"winner":"p1","amount":200}`),
	}
}
