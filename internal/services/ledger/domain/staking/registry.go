package staking

import (
	"encoding/json"
	"errors"
	"strings"

	"github.com/louisbranch/ledgerworks/internal/services/ledger/domain/command"
	"github.com/louisbranch/ledgerworks/internal/services/ledger/domain/event"
)

const (
	CommandTypeCreatePool   command.Type = "staking.create_pool"
	CommandTypeStake        command.Type = "staking.stake"
	CommandTypeClaimRewards command.Type = "staking.claim_rewards"
	CommandTypeWithdraw     command.Type = "staking.withdraw"

	EventTypePoolCreated    event.Type = "staking.pool_created"
	EventTypeStaked         event.Type = "staking.staked"
	EventTypeRewardsClaimed event.Type = "staking.rewards_claimed"
	EventTypeWithdrawn      event.Type = "staking.withdrawn"

	EntityTypePool  = "pool"
	EntityTypeStake = "stake"
)

// RegisterCommands registers staking commands with the registry.
func RegisterCommands(registry *command.Registry) error {
	if registry == nil {
		return errors.New("command registry is required")
	}
	definitions := []command.Definition{
		{Type: CommandTypeCreatePool, ValidatePayload: validateCreatePoolPayload, Anonymous: true},
		{Type: CommandTypeStake, ValidatePayload: validateStakePayload},
		{Type: CommandTypeClaimRewards, ValidatePayload: validateStakeRef},
		{Type: CommandTypeWithdraw, ValidatePayload: validateStakeRef},
	}
	for _, def := range definitions {
		if err := registry.Register(def); err != nil {
			return err
		}
	}
	return nil
}

// RegisterEvents registers staking events with the registry.
func RegisterEvents(registry *event.Registry) error {
	if registry == nil {
		return errors.New("event registry is required")
	}
	definitions := []event.Definition{
		{Type: EventTypePoolCreated, ValidatePayload: validateCreatePoolPayload},
		{Type: EventTypeStaked, ValidatePayload: validateStakePayload},
		{Type: EventTypeRewardsClaimed, ValidatePayload: validateStakeRef},
		{Type: EventTypeWithdrawn, ValidatePayload: validateStakeRef},
	}
	for _, def := range definitions {
		if err := registry.Register(def); err != nil {
			return err
		}
	}
	return nil
}

// FoldHandledTypes returns the event types handled by Fold.
func FoldHandledTypes() []event.Type {
	return []event.Type{
		EventTypePoolCreated,
		EventTypeStaked,
		EventTypeRewardsClaimed,
		EventTypeWithdrawn,
	}
}

func validateCreatePoolPayload(raw json.RawMessage) error {
	var payload CreatePoolPayload
	return json.Unmarshal(raw, &payload)
}

func validateStakePayload(raw json.RawMessage) error {
	var payload StakePayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return err
	}
	if strings.TrimSpace(payload.StakeID) == "" {
		return errors.New("stake id is required")
	}
	return nil
}

func validateStakeRef(raw json.RawMessage) error {
	var payload StakeRefPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return err
	}
	if strings.TrimSpace(payload.StakeID) == "" {
		return errors.New("stake id is required")
	}
	return nil
}
