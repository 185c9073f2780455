package staking

import (
	"encoding/json"
	"fmt"

	"github.com/louisbranch/ledgerworks/internal/services/ledger/domain/event"
)

// Fold applies a staking event to pool state. The stake index is copied on
// write.
func Fold(state State, evt event.Event) (State, error) {
	switch evt.Type {
	case EventTypePoolCreated:
		var payload PoolCreatedPayload
		if err := json.Unmarshal(evt.PayloadJSON, &payload); err != nil {
			return state, fmt.Errorf("staking fold %s: %w", evt.Type, err)
		}
		state.Created = true
		state.PoolID = evt.StreamID
		state.Creator = evt.ActorID
		state.RewardRateBps = payload.RewardRateBps
		state.MinLockPeriodDays = payload.MinLockPeriodDays
	case EventTypeStaked:
		var payload StakedPayload
		if err := json.Unmarshal(evt.PayloadJSON, &payload); err != nil {
			return state, fmt.Errorf("staking fold %s: %w", evt.Type, err)
		}
		stake := Stake{
			ID:                 payload.StakeID,
			Owner:              evt.ActorID,
			Amount:             payload.Amount,
			StakedAtDay:        payload.StakedAtDay,
			LockPeriodDays:     payload.LockPeriodDays,
			LastRewardClaimDay: payload.StakedAtDay,
		}
		state = state.withStakes(func(m map[string]Stake) { m[stake.ID] = stake })
		state.TotalStaked += payload.Amount
	case EventTypeRewardsClaimed:
		var payload RewardsClaimedPayload
		if err := json.Unmarshal(evt.PayloadJSON, &payload); err != nil {
			return state, fmt.Errorf("staking fold %s: %w", evt.Type, err)
		}
		stake, ok := state.stakes[payload.StakeID]
		if !ok {
			return state, fmt.Errorf("staking fold %s: unknown stake %s", evt.Type, payload.StakeID)
		}
		stake.LastRewardClaimDay = payload.ClaimedAt
		state = state.withStakes(func(m map[string]Stake) { m[stake.ID] = stake })
	case EventTypeWithdrawn:
		var payload WithdrawnPayload
		if err := json.Unmarshal(evt.PayloadJSON, &payload); err != nil {
			return state, fmt.Errorf("staking fold %s: %w", evt.Type, err)
		}
		stake, ok := state.stakes[payload.StakeID]
		if !ok {
			return state, fmt.Errorf("staking fold %s: unknown stake %s", evt.Type, payload.StakeID)
		}
		state = state.withStakes(func(m map[string]Stake) { delete(m, stake.ID) })
		state.TotalStaked -= stake.Amount
	}
	return state, nil
}
