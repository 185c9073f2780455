package governance

import (
	"maps"

	"github.com/louisbranch/ledgerworks/internal/services/ledger/domain/clock"
)

// Status is the lifecycle position of a proposal.
type Status string

const (
	StatusActive   Status = "active"
	StatusPassed   Status = "passed"
	StatusRejected Status = "rejected"
	StatusExecuted Status = "executed"
)

// Config holds the registry parameters fixed at creation.
type Config struct {
	MinVotingPower     uint64 `json:"min_voting_power"`
	VotingPeriodDays   uint64 `json:"voting_period_days"`
	ExecutionDelayDays uint64 `json:"execution_delay_days"`
}

// Proposal is one governance proposal.
type Proposal struct {
	ID           uint64
	Creator      string
	Title        string
	Description  string
	CreatedAtDay clock.Day
	YesVotes     uint64
	NoVotes      uint64
	Status       Status
	Executed     bool
	voters       map[string]struct{}
}

// HasVoted reports whether voter already voted on the proposal.
func (p Proposal) HasVoted(voter string) bool {
	_, ok := p.voters[voter]
	return ok
}

// VoterCount reports how many distinct voters participated.
func (p Proposal) VoterCount() int {
	return len(p.voters)
}

// VotingEndsAfter is the last day on which votes are accepted. ok is false
// when the period overflows and voting never closes.
func (p Proposal) VotingEndsAfter(cfg Config) (clock.Day, bool) {
	return clock.AddDays(p.CreatedAtDay, cfg.VotingPeriodDays)
}

// ExecutableFrom is the first day execution is allowed.
func (p Proposal) ExecutableFrom(cfg Config) (clock.Day, bool) {
	end, ok := p.VotingEndsAfter(cfg)
	if !ok {
		return 0, false
	}
	return clock.AddDays(end, cfg.ExecutionDelayDays)
}

func (p Proposal) clone() Proposal {
	p.voters = maps.Clone(p.voters)
	return p
}

// State is the folded view of one registry stream.
type State struct {
	Created        bool
	RegistryID     string
	Creator        string
	Config         Config
	NextProposalID uint64
	proposals      map[uint64]Proposal
}

// Proposal returns a copy of proposal id.
func (s State) Proposal(id uint64) (Proposal, bool) {
	p, ok := s.proposals[id]
	if !ok {
		return Proposal{}, false
	}
	return p.clone(), true
}

// ProposalCount reports how many proposals exist.
func (s State) ProposalCount() int {
	return len(s.proposals)
}

// putProposal stores p in a fresh map so earlier State values stay intact.
func (s State) putProposal(p Proposal) State {
	next := make(map[uint64]Proposal, len(s.proposals)+1)
	maps.Copy(next, s.proposals)
	next[p.ID] = p
	s.proposals = next
	return s
}
