package ledger

import (
	"context"

	"github.com/louisbranch/ledgerworks/internal/services/ledger/domain/governance"
)

func (s *Server) CreateRegistry(ctx context.Context, in *CreateRegistryRequest) (*CreateRegistryResponse, error) {
	creator, err := s.caller(ctx)
	if err != nil {
		return nil, err
	}
	registryID, err := s.ledger.Governance.CreateRegistry(ctx, creator, governance.Config{
		MinVotingPower:     in.MinVotingPower,
		VotingPeriodDays:   in.VotingPeriodDays,
		ExecutionDelayDays: in.ExecutionDelayDays,
	})
	if err != nil {
		return nil, err
	}
	return &CreateRegistryResponse{RegistryID: registryID}, nil
}

func (s *Server) GetRegistry(ctx context.Context, in *GetRegistryRequest) (*Registry, error) {
	cfg, err := s.ledger.Governance.Config(ctx, in.RegistryID)
	if err != nil {
		return nil, err
	}
	count, err := s.ledger.Governance.ProposalCount(ctx, in.RegistryID)
	if err != nil {
		return nil, err
	}
	return &Registry{
		RegistryID:         in.RegistryID,
		MinVotingPower:     cfg.MinVotingPower,
		VotingPeriodDays:   cfg.VotingPeriodDays,
		ExecutionDelayDays: cfg.ExecutionDelayDays,
		ProposalCount:      count,
	}, nil
}

// CreateProposal measures the caller's voting power from their wallet.
func (s *Server) CreateProposal(ctx context.Context, in *CreateProposalRequest) (*CreateProposalResponse, error) {
	creator, err := s.caller(ctx)
	if err != nil {
		return nil, err
	}
	power, restore, err := s.withdraw(creator, in.VotingPower)
	if err != nil {
		return nil, err
	}
	defer restore()
	proposalID, err := s.ledger.Governance.CreateProposal(ctx, in.RegistryID, creator, power, in.Title, in.Description)
	if err != nil {
		return nil, err
	}
	return &CreateProposalResponse{ProposalID: proposalID}, nil
}

func (s *Server) Vote(ctx context.Context, in *VoteRequest) (*VoteResponse, error) {
	voter, err := s.caller(ctx)
	if err != nil {
		return nil, err
	}
	power, restore, err := s.withdraw(voter, in.VotingPower)
	if err != nil {
		return nil, err
	}
	defer restore()
	receipt, err := s.ledger.Governance.Vote(ctx, in.RegistryID, in.ProposalID, voter, power, in.Approve)
	if err != nil {
		return nil, err
	}
	return &VoteResponse{
		ProposalID:  receipt.ProposalID,
		Voter:       receipt.Voter,
		Approve:     receipt.Approve,
		VotingPower: receipt.VotingPower,
	}, nil
}

func (s *Server) FinalizeProposal(ctx context.Context, in *ProposalRequest) (*FinalizeProposalResponse, error) {
	caller, err := s.caller(ctx)
	if err != nil {
		return nil, err
	}
	status, err := s.ledger.Governance.Finalize(ctx, in.RegistryID, in.ProposalID, caller)
	if err != nil {
		return nil, err
	}
	return &FinalizeProposalResponse{Status: string(status)}, nil
}

func (s *Server) ExecuteProposal(ctx context.Context, in *ProposalRequest) (*Empty, error) {
	caller, err := s.caller(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.ledger.Governance.Execute(ctx, in.RegistryID, in.ProposalID, caller); err != nil {
		return nil, err
	}
	return &Empty{}, nil
}

func (s *Server) GetProposal(ctx context.Context, in *ProposalRequest) (*Proposal, error) {
	proposal, err := s.ledger.Governance.Proposal(ctx, in.RegistryID, in.ProposalID)
	if err != nil {
		return nil, err
	}
	return &Proposal{
		RegistryID:   in.RegistryID,
		ID:           proposal.ID,
		Creator:      proposal.Creator,
		Title:        proposal.Title,
		Description:  proposal.Description,
		CreatedAtDay: uint64(proposal.CreatedAtDay),
		YesVotes:     proposal.YesVotes,
		NoVotes:      proposal.NoVotes,
		Status:       string(proposal.Status),
		Executed:     proposal.Executed,
		Voters:       proposal.VoterCount(),
	}, nil
}
