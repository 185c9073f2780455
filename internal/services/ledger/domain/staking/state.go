package staking

import (
	"maps"
	"sort"

	"github.com/louisbranch/ledgerworks/internal/services/ledger/domain/clock"
)

// Stake is one owner's locked principal in a pool.
type Stake struct {
	ID                 string
	Owner              string
	Amount             uint64
	StakedAtDay        clock.Day
	LockPeriodDays     uint64
	LastRewardClaimDay clock.Day
}

// UnlocksAt is the first day the stake may be withdrawn.
func (s Stake) UnlocksAt() (clock.Day, bool) {
	return clock.AddDays(s.StakedAtDay, s.LockPeriodDays)
}

// State is the folded view of one pool stream.
type State struct {
	Created           bool
	PoolID            string
	Creator           string
	RewardRateBps     uint64
	MinLockPeriodDays uint64
	TotalStaked       uint64
	stakes            map[string]Stake
}

// Stake returns the stake with id.
func (s State) Stake(id string) (Stake, bool) {
	stake, ok := s.stakes[id]
	return stake, ok
}

// StakeCount reports how many stakes are open.
func (s State) StakeCount() int {
	return len(s.stakes)
}

// Stakes lists open stakes ordered by id.
func (s State) Stakes() []Stake {
	out := make([]Stake, 0, len(s.stakes))
	for _, stake := range s.stakes {
		out = append(out, stake)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (s State) withStakes(mutate func(map[string]Stake)) State {
	next := make(map[string]Stake, len(s.stakes)+1)
	maps.Copy(next, s.stakes)
	mutate(next)
	s.stakes = next
	return s
}
