package escrow

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/louisbranch/ledgerworks/internal/services/ledger/domain/command"
	"github.com/louisbranch/ledgerworks/internal/services/ledger/domain/event"
)

const (
	CommandTypeLock         command.Type = "escrow.lock"
	CommandTypeDispute      command.Type = "escrow.dispute"
	CommandTypeRelease      command.Type = "escrow.release"
	CommandTypeForceResolve command.Type = "escrow.force_resolve"
	CommandTypeSettle       command.Type = "escrow.settle"

	EventTypeLocked   event.Type = "escrow.locked"
	EventTypeDisputed event.Type = "escrow.disputed"
	EventTypeResolved event.Type = "escrow.resolved"
	EventTypeExpired  event.Type = "escrow.expired"
	EventTypeSettled  event.Type = "escrow.settled"

	EntityTypeWager = "wager"
)

// RegisterCommands registers escrow commands with the registry.
func RegisterCommands(registry *command.Registry) error {
	if registry == nil {
		return errors.New("command registry is required")
	}
	definitions := []command.Definition{
		{Type: CommandTypeLock, ValidatePayload: validateLockPayload, Anonymous: true},
		{Type: CommandTypeDispute, ValidatePayload: validateEmptyPayload},
		{Type: CommandTypeRelease, ValidatePayload: validateReleasePayload},
		{Type: CommandTypeForceResolve, ValidatePayload: validateEmptyPayload},
		{Type: CommandTypeSettle, ValidatePayload: validateSettlePayload},
	}
	for _, def := range definitions {
		if err := registry.Register(def); err != nil {
			return err
		}
	}
	return nil
}

// RegisterEvents registers escrow events with the registry.
func RegisterEvents(registry *event.Registry) error {
	if registry == nil {
		return errors.New("event registry is required")
	}
	definitions := []event.Definition{
		{Type: EventTypeLocked, ValidatePayload: validateLockedPayload},
		{Type: EventTypeDisputed, ValidatePayload: validateEmptyPayload},
		{Type: EventTypeResolved, ValidatePayload: validateResolvedPayload},
		{Type: EventTypeExpired, ValidatePayload: validateEmptyPayload},
		{Type: EventTypeSettled, ValidatePayload: validateSettledPayload},
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
		EventTypeLocked,
		EventTypeDisputed,
		EventTypeResolved,
		EventTypeExpired,
		EventTypeSettled,
	}
}

func validateLockPayload(raw json.RawMessage) error {
	var payload LockPayload
	return json.Unmarshal(raw, &payload)
}

func validateEmptyPayload(raw json.RawMessage) error {
	var payload emptyPayload
	return json.Unmarshal(raw, &payload)
}

func validateReleasePayload(raw json.RawMessage) error {
	var payload ReleasePayload
	return json.Unmarshal(raw, &payload)
}

func validateSettlePayload(raw json.RawMessage) error {
	var payload SettlePayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return err
	}
	switch payload.Disposition {
	case DispositionRefund, DispositionAward:
		return nil
	default:
		return fmt.Errorf("disposition must be refund or award, got %q", payload.Disposition)
	}
}

func validateLockedPayload(raw json.RawMessage) error {
	var payload LockedPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return err
	}
	if payload.PlayerOne == "" || payload.PlayerTwo == "" || payload.Resolver == "" {
		return errors.New("players and resolver are required")
	}
	return nil
}

func validateResolvedPayload(raw json.RawMessage) error {
	var payload ResolvedPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return err
	}
	if payload.Winner == "" {
		return errors.New("winner is required")
	}
	return nil
}

func validateSettledPayload(raw json.RawMessage) error {
	if err := validateSettlePayload(raw); err != nil {
		return err
	}
	var payload SettledPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return err
	}
	if len(payload.Payouts) == 0 {
		return errors.New("payouts are required")
	}
	return nil
}
