package staking

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"

	apperrors "github.com/louisbranch/ledgerworks/internal/platform/errors"
	"github.com/louisbranch/ledgerworks/internal/services/ledger/domain/clock"
	"github.com/louisbranch/ledgerworks/internal/services/ledger/domain/command"
	"github.com/louisbranch/ledgerworks/internal/services/ledger/domain/event"
)

// Decide returns the decision for a staking command against state.
func Decide(state State, cmd command.Command, today clock.Day) command.Decision {
	if cmd.Type == CommandTypeCreatePool {
		if state.Created {
			return reject(apperrors.CodeRecordExists, "pool already exists", nil)
		}
		var payload CreatePoolPayload
		_ = json.Unmarshal(cmd.PayloadJSON, &payload)
		return command.Accept(newEvent(cmd, EventTypePoolCreated, today, EntityTypePool, cmd.StreamID, PoolCreatedPayload(payload)))
	}
	if !state.Created {
		return reject(apperrors.CodePoolNotFound, "pool not found", nil)
	}
	switch cmd.Type {
	case CommandTypeStake:
		return decideStake(state, cmd, today)
	case CommandTypeClaimRewards:
		return decideClaim(state, cmd, today)
	case CommandTypeWithdraw:
		return decideWithdraw(state, cmd, today)
	default:
		return reject(apperrors.CodeInvalidArgument, "unsupported staking command "+string(cmd.Type), nil)
	}
}

func decideStake(state State, cmd command.Command, today clock.Day) command.Decision {
	var payload StakePayload
	_ = json.Unmarshal(cmd.PayloadJSON, &payload)
	stakeID := strings.TrimSpace(payload.StakeID)
	if _, exists := state.stakes[stakeID]; exists {
		return reject(apperrors.CodeRecordExists, "stake already exists", map[string]string{"stake_id": stakeID})
	}
	if payload.LockPeriodDays < state.MinLockPeriodDays {
		return reject(apperrors.CodeInsufficientStake, "lock period below pool minimum", map[string]string{
			"min":  strconv.FormatUint(state.MinLockPeriodDays, 10),
			"have": strconv.FormatUint(payload.LockPeriodDays, 10),
		})
	}
	if state.TotalStaked > math.MaxUint64-payload.Amount {
		return reject(apperrors.CodeArithmeticOverflow, "pool total overflows", nil)
	}
	staked := StakedPayload{
		StakeID:        stakeID,
		Amount:         payload.Amount,
		LockPeriodDays: payload.LockPeriodDays,
		StakedAtDay:    today,
	}
	return command.Accept(newEvent(cmd, EventTypeStaked, today, EntityTypeStake, stakeID, staked))
}

func decideClaim(state State, cmd command.Command, today clock.Day) command.Decision {
	stake, decision, ok := ownedStake(state, cmd)
	if !ok {
		return decision
	}
	var elapsed uint64
	if today > stake.LastRewardClaimDay {
		elapsed = uint64(today - stake.LastRewardClaimDay)
	}
	reward, fits := Reward(stake.Amount, state.RewardRateBps, elapsed)
	if !fits {
		return reject(apperrors.CodeArithmeticOverflow, "reward exceeds value range", map[string]string{
			"stake_id": stake.ID,
		})
	}
	claimed := RewardsClaimedPayload{
		StakeID:     stake.ID,
		Reward:      reward,
		ElapsedDays: elapsed,
		ClaimedAt:   today,
	}
	return command.Accept(newEvent(cmd, EventTypeRewardsClaimed, today, EntityTypeStake, stake.ID, claimed))
}

func decideWithdraw(state State, cmd command.Command, today clock.Day) command.Decision {
	stake, decision, ok := ownedStake(state, cmd)
	if !ok {
		return decision
	}
	unlocks, fits := stake.UnlocksAt()
	if !fits || today < unlocks {
		return reject(apperrors.CodeStakeLocked, "stake is still locked", map[string]string{
			"day": unlocks.String(),
		})
	}
	withdrawn := WithdrawnPayload{StakeID: stake.ID, Amount: stake.Amount}
	return command.Accept(newEvent(cmd, EventTypeWithdrawn, today, EntityTypeStake, stake.ID, withdrawn))
}

func ownedStake(state State, cmd command.Command) (Stake, command.Decision, bool) {
	var payload StakeRefPayload
	_ = json.Unmarshal(cmd.PayloadJSON, &payload)
	stakeID := strings.TrimSpace(payload.StakeID)
	stake, ok := state.stakes[stakeID]
	if !ok {
		return Stake{}, reject(apperrors.CodeStakeNotFound, "stake not found", map[string]string{"stake_id": stakeID}), false
	}
	if stake.Owner != cmd.ActorID {
		return Stake{}, reject(apperrors.CodeNotOwner, "caller does not own the stake", map[string]string{"stake_id": stakeID}), false
	}
	return stake, command.Decision{}, true
}

func newEvent(cmd command.Command, eventType event.Type, today clock.Day, entityType, entityID string, payload any) event.Event {
	payloadJSON, _ := json.Marshal(payload)
	return event.Event{
		StreamID:    cmd.StreamID,
		Type:        eventType,
		Day:         today,
		ActorID:     cmd.ActorID,
		RequestID:   cmd.RequestID,
		EntityType:  entityType,
		EntityID:    entityID,
		PayloadJSON: payloadJSON,
	}
}

func reject(code apperrors.Code, message string, metadata map[string]string) command.Decision {
	return command.Reject(command.Rejection{Code: string(code), Message: message, Metadata: metadata})
}
