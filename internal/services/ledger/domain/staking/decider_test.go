package staking

import (
	"encoding/json"
	"math"
	"testing"

	apperrors "github.com/louisbranch/ledgerworks/internal/platform/errors"
	"github.com/louisbranch/ledgerworks/internal/services/ledger/domain/clock"
	"github.com/louisbranch/ledgerworks/internal/services/ledger/domain/command"
)

const testPoolID = "pool-1"

func apply(t *testing.T, state State, cmd command.Command, day clock.Day) (State, command.Decision) {
	t.Helper()
	decision := Decide(state, cmd, day)
	for _, evt := range decision.Events {
		next, err := Fold(state, evt)
		if err != nil {
			t.Fatalf("fold %s: %v", evt.Type, err)
		}
		state = next
	}
	return state, decision
}

func mustAccept(t *testing.T, state State, cmd command.Command, day clock.Day) (State, command.Decision) {
	t.Helper()
	next, decision := apply(t, state, cmd, day)
	if decision.Rejected() {
		t.Fatalf("%s rejected: %+v", cmd.Type, decision.Rejections)
	}
	return next, decision
}

func mustReject(t *testing.T, state State, cmd command.Command, day clock.Day, want apperrors.Code) {
	t.Helper()
	_, decision := apply(t, state, cmd, day)
	if !decision.Rejected() {
		t.Fatalf("%s accepted, want rejection %s", cmd.Type, want)
	}
	if got := decision.Rejections[0].Code; got != string(want) {
		t.Fatalf("rejection code = %s, want %s", got, want)
	}
}

func cmd(t *testing.T, cmdType command.Type, actor string, payload any) command.Command {
	t.Helper()
	data, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("marshal payload: %v", err)
	}
	return command.Command{StreamID: testPoolID, Type: cmdType, ActorID: actor, PayloadJSON: data}
}

func newPool(t *testing.T) State {
	t.Helper()
	state, _ := mustAccept(t, State{}, cmd(t, CommandTypeCreatePool, "admin", CreatePoolPayload{
		RewardRateBps:     500,
		MinLockPeriodDays: 30,
	}), 0)
	return state
}

func withStake(t *testing.T) State {
	t.Helper()
	state, _ := mustAccept(t, newPool(t), cmd(t, CommandTypeStake, "alice", StakePayload{
		StakeID:        "s1",
		Amount:         1000,
		LockPeriodDays: 30,
	}), 0)
	return state
}

func claimedReward(t *testing.T, decision command.Decision) RewardsClaimedPayload {
	t.Helper()
	var payload RewardsClaimedPayload
	if err := json.Unmarshal(decision.Events[0].PayloadJSON, &payload); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	return payload
}

func TestCreatePool(t *testing.T) {
	state := newPool(t)
	if !state.Created || state.PoolID != testPoolID || state.RewardRateBps != 500 || state.MinLockPeriodDays != 30 {
		t.Fatalf("state = %+v", state)
	}
	mustReject(t, state, cmd(t, CommandTypeCreatePool, "admin", CreatePoolPayload{}), 0, apperrors.CodeRecordExists)
	mustReject(t, State{}, cmd(t, CommandTypeStake, "alice", StakePayload{StakeID: "s"}), 0, apperrors.CodePoolNotFound)
}

func TestStake(t *testing.T) {
	state := withStake(t)
	stake, ok := state.Stake("s1")
	if !ok {
		t.Fatal("expected stake s1")
	}
	if stake.Owner != "alice" || stake.Amount != 1000 || stake.StakedAtDay != 0 || stake.LastRewardClaimDay != 0 {
		t.Fatalf("stake = %+v", stake)
	}
	if state.TotalStaked != 1000 || state.StakeCount() != 1 {
		t.Fatalf("total = %d, count = %d", state.TotalStaked, state.StakeCount())
	}

	mustReject(t, state, cmd(t, CommandTypeStake, "bob", StakePayload{StakeID: "s1", Amount: 1, LockPeriodDays: 30}), 0, apperrors.CodeRecordExists)
	mustReject(t, state, cmd(t, CommandTypeStake, "bob", StakePayload{StakeID: "s2", Amount: 1, LockPeriodDays: 29}), 0, apperrors.CodeInsufficientStake)
	mustReject(t, state, cmd(t, CommandTypeStake, "bob", StakePayload{StakeID: "s2", Amount: math.MaxUint64, LockPeriodDays: 30}), 0, apperrors.CodeArithmeticOverflow)
}

func TestStakePoolScenario(t *testing.T) {
	state := withStake(t)

	state, decision := mustAccept(t, state, cmd(t, CommandTypeClaimRewards, "alice", StakeRefPayload{StakeID: "s1"}), 10)
	if reward := claimedReward(t, decision).Reward; reward != 5 {
		t.Fatalf("reward = %d, want 5", reward)
	}
	stake, _ := state.Stake("s1")
	if stake.LastRewardClaimDay != 10 {
		t.Fatalf("last claim = %d, want 10", stake.LastRewardClaimDay)
	}

	mustReject(t, state, cmd(t, CommandTypeWithdraw, "alice", StakeRefPayload{StakeID: "s1"}), 29, apperrors.CodeStakeLocked)

	state, decision = mustAccept(t, state, cmd(t, CommandTypeWithdraw, "alice", StakeRefPayload{StakeID: "s1"}), 30)
	var withdrawn WithdrawnPayload
	if err := json.Unmarshal(decision.Events[0].PayloadJSON, &withdrawn); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if withdrawn.Amount != 1000 {
		t.Fatalf("principal = %d, want 1000", withdrawn.Amount)
	}
	if _, ok := state.Stake("s1"); ok || state.TotalStaked != 0 {
		t.Fatalf("stake still present, total = %d", state.TotalStaked)
	}

	mustReject(t, state, cmd(t, CommandTypeWithdraw, "alice", StakeRefPayload{StakeID: "s1"}), 31, apperrors.CodeStakeNotFound)
}

func TestClaimRepeatable(t *testing.T) {
	state := withStake(t)
	state, first := mustAccept(t, state, cmd(t, CommandTypeClaimRewards, "alice", StakeRefPayload{StakeID: "s1"}), 20)
	_, second := mustAccept(t, state, cmd(t, CommandTypeClaimRewards, "alice", StakeRefPayload{StakeID: "s1"}), 20)

	if got := claimedReward(t, first); got.Reward != 10 || got.ElapsedDays != 20 {
		t.Fatalf("first claim = %+v", got)
	}
	if got := claimedReward(t, second); got.Reward != 0 || got.ElapsedDays != 0 {
		t.Fatalf("second claim = %+v", got)
	}
}

func TestOwnershipChecks(t *testing.T) {
	state := withStake(t)
	mustReject(t, state, cmd(t, CommandTypeClaimRewards, "mallory", StakeRefPayload{StakeID: "s1"}), 10, apperrors.CodeNotOwner)
	mustReject(t, state, cmd(t, CommandTypeWithdraw, "mallory", StakeRefPayload{StakeID: "s1"}), 40, apperrors.CodeNotOwner)
	mustReject(t, state, cmd(t, CommandTypeClaimRewards, "alice", StakeRefPayload{StakeID: "missing"}), 10, apperrors.CodeStakeNotFound)
}

func TestClaimOverflow(t *testing.T) {
	state, _ := mustAccept(t, State{}, cmd(t, CommandTypeCreatePool, "admin", CreatePoolPayload{RewardRateBps: math.MaxUint64}), 0)
	state, _ = mustAccept(t, state, cmd(t, CommandTypeStake, "alice", StakePayload{StakeID: "big", Amount: math.MaxUint64}), 0)
	mustReject(t, state, cmd(t, CommandTypeClaimRewards, "alice", StakeRefPayload{StakeID: "big"}), 1000, apperrors.CodeArithmeticOverflow)

	stake, _ := state.Stake("big")
	if stake.LastRewardClaimDay != 0 {
		t.Fatalf("rejected claim moved last claim to %d", stake.LastRewardClaimDay)
	}
}

func TestFoldKeepsEarlierSnapshots(t *testing.T) {
	before := withStake(t)
	after, _ := mustAccept(t, before, cmd(t, CommandTypeWithdraw, "alice", StakeRefPayload{StakeID: "s1"}), 30)
	if _, ok := before.Stake("s1"); !ok {
		t.Fatal("earlier snapshot lost stake")
	}
	if after.StakeCount() != 0 || len(after.Stakes()) != 0 {
		t.Fatalf("after count = %d", after.StakeCount())
	}
}
