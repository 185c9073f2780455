package escrow

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

// Decide returns the decision for an escrow command against state.
func Decide(state State, cmd command.Command, today clock.Day) command.Decision {
	if cmd.Type == CommandTypeLock {
		return decideLock(state, cmd, today)
	}
	if !state.Created {
		return reject(apperrors.CodeWagerNotFound, "wager not found", nil)
	}
	switch cmd.Type {
	case CommandTypeDispute:
		return decideDispute(state, cmd, today)
	case CommandTypeRelease:
		return decideRelease(state, cmd, today)
	case CommandTypeForceResolve:
		return decideForceResolve(state, cmd, today)
	case CommandTypeSettle:
		return decideSettle(state, cmd, today)
	default:
		return reject(apperrors.CodeInvalidArgument, "unsupported escrow command "+string(cmd.Type), nil)
	}
}

func decideLock(state State, cmd command.Command, today clock.Day) command.Decision {
	if state.Created {
		return reject(apperrors.CodeRecordExists, "wager already exists", nil)
	}
	var payload LockPayload
	_ = json.Unmarshal(cmd.PayloadJSON, &payload)
	locked := LockedPayload{
		PlayerOne:    strings.TrimSpace(payload.PlayerOne),
		PlayerTwo:    strings.TrimSpace(payload.PlayerTwo),
		Amount:       payload.Amount,
		Resolver:     strings.TrimSpace(payload.Resolver),
		CreatedAtDay: today,
	}
	switch {
	case locked.PlayerOne == "" || locked.PlayerTwo == "":
		return invalid("both players are required", "players")
	case locked.PlayerOne == locked.PlayerTwo:
		return invalid("players must differ", "players")
	case locked.Resolver == "":
		return invalid("resolver is required", "resolver")
	case locked.Amount == 0:
		return invalid("amount must be positive", "amount")
	case locked.Amount > math.MaxUint64/2:
		return reject(apperrors.CodeArithmeticOverflow, "wager pot overflows", map[string]string{
			"amount": strconv.FormatUint(locked.Amount, 10),
		})
	}
	return command.Accept(newEvent(cmd, EventTypeLocked, today, locked))
}

func decideDispute(state State, cmd command.Command, today clock.Day) command.Decision {
	if state.Status != StatusActive {
		return notActive(state)
	}
	if cmd.ActorID != state.Resolver {
		return unauthorized()
	}
	return command.Accept(newEvent(cmd, EventTypeDisputed, today, emptyPayload{}))
}

func decideRelease(state State, cmd command.Command, today clock.Day) command.Decision {
	if state.Status != StatusActive && state.Status != StatusDisputed {
		return notActive(state)
	}
	if cmd.ActorID != state.Resolver {
		return unauthorized()
	}
	var payload ReleasePayload
	_ = json.Unmarshal(cmd.PayloadJSON, &payload)
	winner := strings.TrimSpace(payload.Winner)
	if !state.IsPlayer(winner) {
		return invalidWinner(winner)
	}
	return command.Accept(newEvent(cmd, EventTypeResolved, today, ResolvedPayload{
		Winner: winner,
		Payout: state.Pot(),
	}))
}

func decideForceResolve(state State, cmd command.Command, today clock.Day) command.Decision {
	if state.Status != StatusDisputed {
		return reject(apperrors.CodeWagerNotDisputed, "wager is not disputed", map[string]string{
			"status": string(state.Status),
		})
	}
	after, ok := state.TimeoutAfter()
	if !ok || today <= after {
		return reject(apperrors.CodeTimeoutNotElapsed, "timeout has not elapsed", map[string]string{
			"day": after.String(),
		})
	}
	return command.Accept(newEvent(cmd, EventTypeExpired, today, emptyPayload{}))
}

func decideSettle(state State, cmd command.Command, today clock.Day) command.Decision {
	if state.Status != StatusExpired {
		return reject(apperrors.CodeWagerNotExpired, "wager is not expired", map[string]string{
			"status": string(state.Status),
		})
	}
	if state.Settled {
		return reject(apperrors.CodeWagerAlreadySettled, "wager already settled", nil)
	}
	var payload SettlePayload
	_ = json.Unmarshal(cmd.PayloadJSON, &payload)
	settled := SettledPayload{Disposition: payload.Disposition}
	switch payload.Disposition {
	case DispositionRefund:
		settled.Payouts = []Payout{
			{Account: state.PlayerOne, Amount: state.Amount},
			{Account: state.PlayerTwo, Amount: state.Amount},
		}
	case DispositionAward:
		recipient := strings.TrimSpace(payload.Recipient)
		if !state.IsPlayer(recipient) {
			return invalidWinner(recipient)
		}
		settled.Recipient = recipient
		settled.Payouts = []Payout{{Account: recipient, Amount: state.Pot()}}
	default:
		return reject(apperrors.CodeInvalidArgument, "unknown disposition", map[string]string{
			"disposition": string(payload.Disposition),
		})
	}
	return command.Accept(newEvent(cmd, EventTypeSettled, today, settled))
}

func newEvent(cmd command.Command, eventType event.Type, today clock.Day, payload any) event.Event {
	payloadJSON, _ := json.Marshal(payload)
	return event.Event{
		StreamID:    cmd.StreamID,
		Type:        eventType,
		Day:         today,
		ActorID:     cmd.ActorID,
		RequestID:   cmd.RequestID,
		EntityType:  EntityTypeWager,
		EntityID:    cmd.StreamID,
		PayloadJSON: payloadJSON,
	}
}

func reject(code apperrors.Code, message string, metadata map[string]string) command.Decision {
	return command.Reject(command.Rejection{Code: string(code), Message: message, Metadata: metadata})
}

func invalid(message, field string) command.Decision {
	return reject(apperrors.CodeWagerInvalid, message, map[string]string{"field": field})
}

func notActive(state State) command.Decision {
	return reject(apperrors.CodeWagerNotActive, "wager is not active", map[string]string{
		"status": string(state.Status),
	})
}

func unauthorized() command.Decision {
	return reject(apperrors.CodeUnauthorized, "caller is not the assigned resolver", nil)
}

func invalidWinner(winner string) command.Decision {
	return reject(apperrors.CodeInvalidWinner, "winner must be one of the players", map[string]string{
		"winner": winner,
	})
}
