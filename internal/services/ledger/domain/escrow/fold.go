package escrow

import (
	"encoding/json"
	"fmt"

	"github.com/louisbranch/ledgerworks/internal/services/ledger/domain/event"
)

// Fold applies an escrow event to wager state.
func Fold(state State, evt event.Event) (State, error) {
	switch evt.Type {
	case EventTypeLocked:
		var payload LockedPayload
		if err := json.Unmarshal(evt.PayloadJSON, &payload); err != nil {
			return state, fmt.Errorf("escrow fold %s: %w", evt.Type, err)
		}
		state = State{
			Created:      true,
			WagerID:      evt.StreamID,
			PlayerOne:    payload.PlayerOne,
			PlayerTwo:    payload.PlayerTwo,
			Amount:       payload.Amount,
			Resolver:     payload.Resolver,
			CreatedAtDay: payload.CreatedAtDay,
			Status:       StatusActive,
		}
	case EventTypeDisputed:
		state.Status = StatusDisputed
	case EventTypeResolved:
		var payload ResolvedPayload
		if err := json.Unmarshal(evt.PayloadJSON, &payload); err != nil {
			return state, fmt.Errorf("escrow fold %s: %w", evt.Type, err)
		}
		state.Status = StatusResolved
		state.Winner = payload.Winner
	case EventTypeExpired:
		state.Status = StatusExpired
	case EventTypeSettled:
		var payload SettledPayload
		if err := json.Unmarshal(evt.PayloadJSON, &payload); err != nil {
			return state, fmt.Errorf("escrow fold %s: %w", evt.Type, err)
		}
		state.Settled = true
		state.Disposition = payload.Disposition
		state.SettledTo = payload.Recipient
	}
	return state, nil
}
