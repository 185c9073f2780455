package governance

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

// Decide returns the decision for a governance command against state. today
// is the clock reading for this command.
func Decide(state State, cmd command.Command, today clock.Day) command.Decision {
	if cmd.Type == CommandTypeCreateRegistry {
		return decideCreateRegistry(state, cmd, today)
	}
	if !state.Created {
		return reject(apperrors.CodeRegistryNotFound, "registry not found", nil)
	}
	switch cmd.Type {
	case CommandTypeCreateProposal:
		return decideCreateProposal(state, cmd, today)
	case CommandTypeVote:
		return decideVote(state, cmd, today)
	case CommandTypeFinalizeProposal:
		return decideFinalize(state, cmd, today)
	case CommandTypeExecuteProposal:
		return decideExecute(state, cmd, today)
	default:
		return reject(apperrors.CodeInvalidArgument, "unsupported governance command "+string(cmd.Type), nil)
	}
}

func decideCreateRegistry(state State, cmd command.Command, today clock.Day) command.Decision {
	if state.Created {
		return reject(apperrors.CodeRecordExists, "registry already exists", nil)
	}
	var payload CreateRegistryPayload
	_ = json.Unmarshal(cmd.PayloadJSON, &payload)
	return command.Accept(newEvent(cmd, EventTypeRegistryCreated, today, EntityTypeRegistry, cmd.StreamID, RegistryCreatedPayload(payload)))
}

func decideCreateProposal(state State, cmd command.Command, today clock.Day) command.Decision {
	var payload CreateProposalPayload
	_ = json.Unmarshal(cmd.PayloadJSON, &payload)
	if payload.VotingPower < state.Config.MinVotingPower {
		return reject(apperrors.CodeInsufficientVotingPower, "voting power below registry minimum", map[string]string{
			"min":  strconv.FormatUint(state.Config.MinVotingPower, 10),
			"have": strconv.FormatUint(payload.VotingPower, 10),
		})
	}
	if state.NextProposalID == math.MaxUint64 {
		return reject(apperrors.CodeArithmeticOverflow, "proposal id space exhausted", nil)
	}
	proposalID := state.NextProposalID + 1
	created := ProposalCreatedPayload{
		ProposalID:   proposalID,
		Title:        strings.TrimSpace(payload.Title),
		Description:  strings.TrimSpace(payload.Description),
		CreatedAtDay: today,
	}
	return command.Accept(newEvent(cmd, EventTypeProposalCreated, today, EntityTypeProposal, proposalEntityID(proposalID), created))
}

func decideVote(state State, cmd command.Command, today clock.Day) command.Decision {
	var payload VotePayload
	_ = json.Unmarshal(cmd.PayloadJSON, &payload)
	proposal, ok := state.proposals[payload.ProposalID]
	if !ok {
		return proposalNotFound(payload.ProposalID)
	}
	if proposal.Status != StatusActive {
		return proposalNotActive(payload.ProposalID, "proposal is not active")
	}
	if end, ok := proposal.VotingEndsAfter(state.Config); ok && today > end {
		return proposalNotActive(payload.ProposalID, "voting period has ended")
	}
	if proposal.HasVoted(cmd.ActorID) {
		return reject(apperrors.CodeAlreadyVoted, "voter already voted", map[string]string{
			"proposal_id": strconv.FormatUint(payload.ProposalID, 10),
		})
	}
	tally := proposal.NoVotes
	if payload.Approve {
		tally = proposal.YesVotes
	}
	if tally > math.MaxUint64-payload.VotingPower {
		return reject(apperrors.CodeArithmeticOverflow, "vote tally overflows", nil)
	}
	cast := VoteCastPayload{
		ProposalID:  payload.ProposalID,
		Approve:     payload.Approve,
		VotingPower: payload.VotingPower,
	}
	return command.Accept(newEvent(cmd, EventTypeVoteCast, today, EntityTypeProposal, proposalEntityID(payload.ProposalID), cast))
}

func decideFinalize(state State, cmd command.Command, today clock.Day) command.Decision {
	var payload ProposalRefPayload
	_ = json.Unmarshal(cmd.PayloadJSON, &payload)
	proposal, ok := state.proposals[payload.ProposalID]
	if !ok {
		return proposalNotFound(payload.ProposalID)
	}
	if proposal.Status != StatusActive {
		return proposalNotActive(payload.ProposalID, "proposal already finalized")
	}
	end, ok := proposal.VotingEndsAfter(state.Config)
	if !ok || today <= end {
		return votingNotEnded(end)
	}
	status := StatusRejected
	if proposal.YesVotes > proposal.NoVotes {
		status = StatusPassed
	}
	finalized := ProposalFinalizedPayload{
		ProposalID: payload.ProposalID,
		Status:     status,
		YesVotes:   proposal.YesVotes,
		NoVotes:    proposal.NoVotes,
	}
	return command.Accept(newEvent(cmd, EventTypeProposalFinalized, today, EntityTypeProposal, proposalEntityID(payload.ProposalID), finalized))
}

func decideExecute(state State, cmd command.Command, today clock.Day) command.Decision {
	var payload ProposalRefPayload
	_ = json.Unmarshal(cmd.PayloadJSON, &payload)
	proposal, ok := state.proposals[payload.ProposalID]
	if !ok {
		return proposalNotFound(payload.ProposalID)
	}
	if proposal.Executed {
		return reject(apperrors.CodeAlreadyExecuted, "proposal already executed", map[string]string{
			"proposal_id": strconv.FormatUint(payload.ProposalID, 10),
		})
	}
	if proposal.Status != StatusPassed {
		return proposalNotActive(payload.ProposalID, "only passed proposals can be executed")
	}
	from, ok := proposal.ExecutableFrom(state.Config)
	if !ok || today < from {
		return votingNotEnded(from)
	}
	executed := ProposalExecutedPayload{ProposalID: payload.ProposalID}
	return command.Accept(newEvent(cmd, EventTypeProposalExecuted, today, EntityTypeProposal, proposalEntityID(payload.ProposalID), executed))
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

func proposalEntityID(id uint64) string {
	return strconv.FormatUint(id, 10)
}

func reject(code apperrors.Code, message string, metadata map[string]string) command.Decision {
	return command.Reject(command.Rejection{Code: string(code), Message: message, Metadata: metadata})
}

func proposalNotFound(id uint64) command.Decision {
	return reject(apperrors.CodeProposalNotFound, "proposal not found", map[string]string{
		"proposal_id": strconv.FormatUint(id, 10),
	})
}

func proposalNotActive(id uint64, message string) command.Decision {
	return reject(apperrors.CodeProposalNotActive, message, map[string]string{
		"proposal_id": strconv.FormatUint(id, 10),
	})
}

func votingNotEnded(day clock.Day) command.Decision {
	return reject(apperrors.CodeVotingPeriodNotEnded, "window has not ended", map[string]string{
		"day": day.String(),
	})
}
