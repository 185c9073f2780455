package governance

import "github.com/louisbranch/ledgerworks/internal/services/ledger/domain/clock"

// CreateRegistryPayload captures the payload for governance.create_registry.
type CreateRegistryPayload struct {
	Config
}

// RegistryCreatedPayload captures the payload for governance.registry_created.
type RegistryCreatedPayload struct {
	Config
}

// CreateProposalPayload captures the payload for governance.create_proposal.
// VotingPower is the value of the tendered token.
type CreateProposalPayload struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	VotingPower uint64 `json:"voting_power"`
}

// ProposalCreatedPayload captures the payload for governance.proposal_created.
type ProposalCreatedPayload struct {
	ProposalID   uint64    `json:"proposal_id"`
	Title        string    `json:"title"`
	Description  string    `json:"description"`
	CreatedAtDay clock.Day `json:"created_at_day"`
}

// VotePayload captures the payload for governance.vote.
type VotePayload struct {
	ProposalID  uint64 `json:"proposal_id"`
	Approve     bool   `json:"approve"`
	VotingPower uint64 `json:"voting_power"`
}

// VoteCastPayload captures the payload for governance.vote_cast.
type VoteCastPayload struct {
	ProposalID  uint64 `json:"proposal_id"`
	Approve     bool   `json:"approve"`
	VotingPower uint64 `json:"voting_power"`
}

// ProposalRefPayload addresses a proposal for finalize and execute.
type ProposalRefPayload struct {
	ProposalID uint64 `json:"proposal_id"`
}

// ProposalFinalizedPayload captures the payload for governance.proposal_finalized.
type ProposalFinalizedPayload struct {
	ProposalID uint64 `json:"proposal_id"`
	Status     Status `json:"status"`
	YesVotes   uint64 `json:"yes_votes"`
	NoVotes    uint64 `json:"no_votes"`
}

// ProposalExecutedPayload captures the payload for governance.proposal_executed.
type ProposalExecutedPayload struct {
	ProposalID uint64 `json:"proposal_id"`
}
