package governance

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/louisbranch/ledgerworks/internal/services/ledger/domain/command"
	"github.com/louisbranch/ledgerworks/internal/services/ledger/domain/event"
)

const (
	CommandTypeCreateRegistry   command.Type = "governance.create_registry"
	CommandTypeCreateProposal   command.Type = "governance.create_proposal"
	CommandTypeVote             command.Type = "governance.vote"
	CommandTypeFinalizeProposal command.Type = "governance.finalize_proposal"
	CommandTypeExecuteProposal  command.Type = "governance.execute_proposal"

	EventTypeRegistryCreated   event.Type = "governance.registry_created"
	EventTypeProposalCreated   event.Type = "governance.proposal_created"
	EventTypeVoteCast          event.Type = "governance.vote_cast"
	EventTypeProposalFinalized event.Type = "governance.proposal_finalized"
	EventTypeProposalExecuted  event.Type = "governance.proposal_executed"

	// EntityTypeRegistry and EntityTypeProposal address events.
	EntityTypeRegistry = "registry"
	EntityTypeProposal = "proposal"

	// MaxTitleLength bounds proposal titles.
	MaxTitleLength = 200
)

// RegisterCommands registers governance commands with the registry.
func RegisterCommands(registry *command.Registry) error {
	if registry == nil {
		return errors.New("command registry is required")
	}
	definitions := []command.Definition{
		{Type: CommandTypeCreateRegistry, ValidatePayload: validateCreateRegistryPayload, Anonymous: true},
		{Type: CommandTypeCreateProposal, ValidatePayload: validateCreateProposalPayload},
		{Type: CommandTypeVote, ValidatePayload: validateProposalRef},
		{Type: CommandTypeFinalizeProposal, ValidatePayload: validateProposalRef, Anonymous: true},
		{Type: CommandTypeExecuteProposal, ValidatePayload: validateProposalRef, Anonymous: true},
	}
	for _, def := range definitions {
		if err := registry.Register(def); err != nil {
			return err
		}
	}
	return nil
}

// RegisterEvents registers governance events with the registry.
func RegisterEvents(registry *event.Registry) error {
	if registry == nil {
		return errors.New("event registry is required")
	}
	definitions := []event.Definition{
		{Type: EventTypeRegistryCreated, ValidatePayload: validateCreateRegistryPayload},
		{Type: EventTypeProposalCreated, ValidatePayload: validateProposalCreatedPayload},
		{Type: EventTypeVoteCast, ValidatePayload: validateProposalRef},
		{Type: EventTypeProposalFinalized, ValidatePayload: validateProposalFinalizedPayload},
		{Type: EventTypeProposalExecuted, ValidatePayload: validateProposalRef},
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
		EventTypeRegistryCreated,
		EventTypeProposalCreated,
		EventTypeVoteCast,
		EventTypeProposalFinalized,
		EventTypeProposalExecuted,
	}
}

func validateCreateRegistryPayload(raw json.RawMessage) error {
	var payload CreateRegistryPayload
	return json.Unmarshal(raw, &payload)
}

func validateCreateProposalPayload(raw json.RawMessage) error {
	var payload CreateProposalPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return err
	}
	if strings.TrimSpace(payload.Title) == "" {
		return errors.New("title is required")
	}
	if len(payload.Title) > MaxTitleLength {
		return fmt.Errorf("title exceeds %d bytes", MaxTitleLength)
	}
	return nil
}

func validateProposalCreatedPayload(raw json.RawMessage) error {
	var payload ProposalCreatedPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return err
	}
	if payload.ProposalID == 0 {
		return errors.New("proposal id is required")
	}
	return nil
}

func validateProposalRef(raw json.RawMessage) error {
	var payload ProposalRefPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return err
	}
	if payload.ProposalID == 0 {
		return errors.New("proposal id is required")
	}
	return nil
}

func validateProposalFinalizedPayload(raw json.RawMessage) error {
	var payload ProposalFinalizedPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return err
	}
	switch payload.Status {
	case StatusPassed, StatusRejected:
		return nil
	default:
		return fmt.Errorf("finalized status must be passed or rejected, got %q", payload.Status)
	}
}
