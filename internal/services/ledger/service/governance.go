package service

import (
	"context"
	"fmt"

	"github.com/louisbranch/ledgerworks/internal/platform/id"
	"github.com/louisbranch/ledgerworks/internal/services/ledger/domain/engine"
	"github.com/louisbranch/ledgerworks/internal/services/ledger/domain/governance"
	"github.com/louisbranch/ledgerworks/internal/services/ledger/domain/value"
)

// Governance runs registries of proposals voted on with tendered power.
// Power tokens are measured, never consumed.
type Governance struct {
	handler *engine.Handler[governance.State]
}

// VoteReceipt is returned to a voter after a vote is recorded.
type VoteReceipt struct {
	ProposalID  uint64
	Voter       string
	Approve     bool
	VotingPower uint64
}

// CreateRegistry opens a new registry with cfg and returns its id.
func (g *Governance) CreateRegistry(ctx context.Context, creator string, cfg governance.Config) (string, error) {
	registryID, err := id.NewID()
	if err != nil {
		return "", err
	}
	cmd, err := newCommand(ctx, registryID, governance.CommandTypeCreateRegistry, creator, governance.CreateRegistryPayload{Config: cfg})
	if err != nil {
		return "", err
	}
	if _, err := g.handler.Execute(ctx, cmd); err != nil {
		return "", err
	}
	return registryID, nil
}

// CreateProposal opens a proposal when power meets the registry minimum.
func (g *Governance) CreateProposal(ctx context.Context, registryID, creator string, power *value.Token, title, description string) (uint64, error) {
	if !power.Live() {
		return 0, value.ErrTokenConsumed
	}
	cmd, err := newCommand(ctx, registryID, governance.CommandTypeCreateProposal, creator, governance.CreateProposalPayload{
		Title:       title,
		Description: description,
		VotingPower: power.Value(),
	})
	if err != nil {
		return 0, err
	}
	result, err := g.handler.Execute(ctx, cmd)
	if err != nil {
		return 0, err
	}
	created, err := findPayload[governance.ProposalCreatedPayload](result.Events, governance.EventTypeProposalCreated)
	if err != nil {
		return 0, err
	}
	return created.ProposalID, nil
}

// Vote adds power's value to the yes or no tally of a proposal.
func (g *Governance) Vote(ctx context.Context, registryID string, proposalID uint64, voter string, power *value.Token, approve bool) (VoteReceipt, error) {
	if !power.Live() {
		return VoteReceipt{}, value.ErrTokenConsumed
	}
	votingPower := power.Value()
	cmd, err := newCommand(ctx, registryID, governance.CommandTypeVote, voter, governance.VotePayload{
		ProposalID:  proposalID,
		Approve:     approve,
		VotingPower: votingPower,
	})
	if err != nil {
		return VoteReceipt{}, err
	}
	result, err := g.handler.Execute(ctx, cmd)
	if err != nil {
		return VoteReceipt{}, err
	}
	return VoteReceipt{
		ProposalID:  proposalID,
		Voter:       result.Events[0].ActorID,
		Approve:     approve,
		VotingPower: votingPower,
	}, nil
}

// Finalize closes voting and reports the resulting status.
func (g *Governance) Finalize(ctx context.Context, registryID string, proposalID uint64, caller string) (governance.Status, error) {
	cmd, err := newCommand(ctx, registryID, governance.CommandTypeFinalizeProposal, caller, governance.ProposalRefPayload{ProposalID: proposalID})
	if err != nil {
		return "", err
	}
	result, err := g.handler.Execute(ctx, cmd)
	if err != nil {
		return "", err
	}
	proposal, ok := result.State.Proposal(proposalID)
	if !ok {
		return "", fmt.Errorf("proposal %d missing after finalize", proposalID)
	}
	return proposal.Status, nil
}

// Execute marks a passed proposal executed once its delay has elapsed.
func (g *Governance) Execute(ctx context.Context, registryID string, proposalID uint64, caller string) error {
	cmd, err := newCommand(ctx, registryID, governance.CommandTypeExecuteProposal, caller, governance.ProposalRefPayload{ProposalID: proposalID})
	if err != nil {
		return err
	}
	_, err = g.handler.Execute(ctx, cmd)
	return err
}

// Config returns the registry parameters.
func (g *Governance) Config(ctx context.Context, registryID string) (governance.Config, error) {
	state, err := g.registry(ctx, registryID)
	if err != nil {
		return governance.Config{}, err
	}
	return state.Config, nil
}

// Proposal returns the full proposal view.
func (g *Governance) Proposal(ctx context.Context, registryID string, proposalID uint64) (governance.Proposal, error) {
	state, err := g.registry(ctx, registryID)
	if err != nil {
		return governance.Proposal{}, err
	}
	proposal, ok := state.Proposal(proposalID)
	if !ok {
		return governance.Proposal{}, governance.ErrProposalNotFound
	}
	return proposal, nil
}

// Status returns a proposal's lifecycle status.
func (g *Governance) Status(ctx context.Context, registryID string, proposalID uint64) (governance.Status, error) {
	proposal, err := g.Proposal(ctx, registryID, proposalID)
	if err != nil {
		return "", err
	}
	return proposal.Status, nil
}

// Votes returns the yes and no tallies of a proposal.
func (g *Governance) Votes(ctx context.Context, registryID string, proposalID uint64) (yes, no uint64, err error) {
	proposal, err := g.Proposal(ctx, registryID, proposalID)
	if err != nil {
		return 0, 0, err
	}
	return proposal.YesVotes, proposal.NoVotes, nil
}

// ProposalCount reports how many proposals the registry holds.
func (g *Governance) ProposalCount(ctx context.Context, registryID string) (int, error) {
	state, err := g.registry(ctx, registryID)
	if err != nil {
		return 0, err
	}
	return state.ProposalCount(), nil
}

func (g *Governance) registry(ctx context.Context, registryID string) (governance.State, error) {
	state, _, err := g.handler.State(ctx, registryID)
	if err != nil {
		return governance.State{}, err
	}
	if !state.Created {
		return governance.State{}, governance.ErrRegistryNotFound
	}
	return state, nil
}
