package governance

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/louisbranch/ledgerworks/internal/services/ledger/domain/event"
)

// Fold applies a governance event to registry state. State values are never
// mutated in place, so earlier snapshots stay valid.
func Fold(state State, evt event.Event) (State, error) {
	switch evt.Type {
	case EventTypeRegistryCreated:
		var payload RegistryCreatedPayload
		if err := json.Unmarshal(evt.PayloadJSON, &payload); err != nil {
			return state, fmt.Errorf("governance fold %s: %w", evt.Type, err)
		}
		state.Created = true
		state.RegistryID = evt.StreamID
		state.Creator = evt.ActorID
		state.Config = payload.Config
	case EventTypeProposalCreated:
		var payload ProposalCreatedPayload
		if err := json.Unmarshal(evt.PayloadJSON, &payload); err != nil {
			return state, fmt.Errorf("governance fold %s: %w", evt.Type, err)
		}
		state = state.putProposal(Proposal{
			ID:           payload.ProposalID,
			Creator:      evt.ActorID,
			Title:        payload.Title,
			Description:  payload.Description,
			CreatedAtDay: payload.CreatedAtDay,
			Status:       StatusActive,
			voters:       map[string]struct{}{},
		})
		if payload.ProposalID > state.NextProposalID {
			state.NextProposalID = payload.ProposalID
		}
	case EventTypeVoteCast:
		var payload VoteCastPayload
		if err := json.Unmarshal(evt.PayloadJSON, &payload); err != nil {
			return state, fmt.Errorf("governance fold %s: %w", evt.Type, err)
		}
		proposal, err := foldProposal(state, evt, payload.ProposalID)
		if err != nil {
			return state, err
		}
		proposal.voters[evt.ActorID] = struct{}{}
		if payload.Approve {
			proposal.YesVotes += payload.VotingPower
		} else {
			proposal.NoVotes += payload.VotingPower
		}
		state = state.putProposal(proposal)
	case EventTypeProposalFinalized:
		var payload ProposalFinalizedPayload
		if err := json.Unmarshal(evt.PayloadJSON, &payload); err != nil {
			return state, fmt.Errorf("governance fold %s: %w", evt.Type, err)
		}
		proposal, err := foldProposal(state, evt, payload.ProposalID)
		if err != nil {
			return state, err
		}
		proposal.Status = payload.Status
		state = state.putProposal(proposal)
	case EventTypeProposalExecuted:
		var payload ProposalExecutedPayload
		if err := json.Unmarshal(evt.PayloadJSON, &payload); err != nil {
			return state, fmt.Errorf("governance fold %s: %w", evt.Type, err)
		}
		proposal, err := foldProposal(state, evt, payload.ProposalID)
		if err != nil {
			return state, err
		}
		proposal.Executed = true
		proposal.Status = StatusExecuted
		state = state.putProposal(proposal)
	}
	return state, nil
}

func foldProposal(state State, evt event.Event, id uint64) (Proposal, error) {
	proposal, ok := state.Proposal(id)
	if !ok {
		return Proposal{}, fmt.Errorf("governance fold %s: unknown proposal %s", evt.Type, strconv.FormatUint(id, 10))
	}
	if proposal.voters == nil {
		proposal.voters = map[string]struct{}{}
	}
	return proposal, nil
}
