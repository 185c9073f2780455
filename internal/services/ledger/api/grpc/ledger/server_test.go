package ledger

import (
	"context"
	"crypto/ed25519"
	"crypto/rand"
	"errors"
	"net"
	"testing"
	"time"

	gogrpc "google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/test/bufconn"

	apperrors "github.com/louisbranch/ledgerworks/internal/platform/errors"
	"github.com/louisbranch/ledgerworks/internal/platform/requestctx"
	"github.com/louisbranch/ledgerworks/internal/services/ledger/domain/capability"
	"github.com/louisbranch/ledgerworks/internal/services/ledger/domain/clock"
	"github.com/louisbranch/ledgerworks/internal/services/ledger/domain/escrow"
	"github.com/louisbranch/ledgerworks/internal/services/ledger/domain/governance"
	"github.com/louisbranch/ledgerworks/internal/services/ledger/domain/staking"
	"github.com/louisbranch/ledgerworks/internal/services/ledger/service"
	"github.com/louisbranch/ledgerworks/internal/services/ledger/storage/integrity"
	"github.com/louisbranch/ledgerworks/internal/services/ledger/storage/memory"
)

type harness struct {
	client   *Client
	day      *clock.Manual
	issuer   *capability.Issuer
	verifier *capability.Verifier
	ledger   *service.Ledger
}

func startServer(t *testing.T) harness {
	t.Helper()
	keyring, err := integrity.NewKeyring(map[string][]byte{"v1": []byte("api-test-key")}, "v1")
	if err != nil {
		t.Fatalf("keyring: %v", err)
	}
	registries, err := service.NewRegistries()
	if err != nil {
		t.Fatalf("registries: %v", err)
	}
	day := clock.NewManual(0)
	ledger, err := service.New(service.Deps{
		Store:      memory.New(keyring),
		Registries: registries,
		Clock:      day,
		Keyring:    keyring,
		Logf:       func(string, ...any) {},
	})
	if err != nil {
		t.Fatalf("new ledger: %v", err)
	}

	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		t.Fatalf("generate key: %v", err)
	}
	cfg := capability.Config{Issuer: "ledgerworks", Audience: "ledger"}
	issuer, err := capability.NewIssuer(cfg, priv)
	if err != nil {
		t.Fatalf("new issuer: %v", err)
	}
	verifier, err := capability.NewVerifier(cfg, pub)
	if err != nil {
		t.Fatalf("new verifier: %v", err)
	}
	server, err := NewServer(ledger, verifier, func(string, ...any) {})
	if err != nil {
		t.Fatalf("new server: %v", err)
	}

	lis := bufconn.Listen(1 << 16)
	srv := gogrpc.NewServer(gogrpc.ChainUnaryInterceptor(requestctx.UnaryServerInterceptor(), server.UnaryAuthInterceptor()))
	RegisterLedgerServer(srv, server)
	go func() { _ = srv.Serve(lis) }()
	t.Cleanup(srv.Stop)

	conn, err := gogrpc.NewClient("passthrough:///bufnet",
		gogrpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		}),
		gogrpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	if err != nil {
		t.Fatalf("new client conn: %v", err)
	}
	t.Cleanup(func() { _ = conn.Close() })
	client, err := NewClient(conn)
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	return harness{client: client, day: day, issuer: issuer, verifier: verifier, ledger: ledger}
}

func (h harness) grant(t *testing.T, scopes ...capability.Scope) string {
	t.Helper()
	return h.grantFor(t, "ops", scopes...)
}

func (h harness) grantFor(t *testing.T, subject string, scopes ...capability.Scope) string {
	t.Helper()
	grant, err := h.issuer.Issue(subject, time.Hour, scopes...)
	if err != nil {
		t.Fatalf("issue grant: %v", err)
	}
	return grant
}

// as returns a context whose calls act as subject.
func (h harness) as(t *testing.T, subject string) context.Context {
	t.Helper()
	return WithGrant(context.Background(), h.grantFor(t, subject, capability.ScopeAct))
}

// consent is subject's grant for fields that name a second party.
func (h harness) consent(t *testing.T, subject string) string {
	t.Helper()
	return h.grantFor(t, subject, capability.ScopeAct)
}

func (h harness) fund(t *testing.T, addr string, amount uint64) {
	t.Helper()
	_, err := h.client.Mint(context.Background(), &MintRequest{Grant: h.grant(t, capability.ScopeMint), Address: addr, Amount: amount})
	if err != nil {
		t.Fatalf("mint to %s: %v", addr, err)
	}
}

func (h harness) balance(t *testing.T, addr string) uint64 {
	t.Helper()
	resp, err := h.client.GetBalance(context.Background(), &BalanceRequest{Address: addr})
	if err != nil {
		t.Fatalf("balance of %s: %v", addr, err)
	}
	return resp.Balance
}

func TestMintRequiresGrant(t *testing.T) {
	ctx := context.Background()
	h := startServer(t)

	resp, err := h.client.Mint(ctx, &MintRequest{Grant: h.grant(t, capability.ScopeMint), Address: "alice", Amount: 50})
	if err != nil {
		t.Fatalf("mint: %v", err)
	}
	if resp.Balance != 50 || resp.Supply != 50 {
		t.Fatalf("resp = %+v", resp)
	}

	_, err = h.client.Mint(ctx, &MintRequest{Grant: h.grant(t, capability.ScopeEscrowSettle), Address: "alice", Amount: 50})
	if apperrors.CodeOf(err) != apperrors.CodeCapabilityScope {
		t.Fatalf("code = %s, want %s", apperrors.CodeOf(err), apperrors.CodeCapabilityScope)
	}
	_, err = h.client.Mint(ctx, &MintRequest{Grant: "not-a-grant", Address: "alice", Amount: 50})
	if apperrors.CodeOf(err) != apperrors.CodeCapabilityInvalid {
		t.Fatalf("code = %s, want %s", apperrors.CodeOf(err), apperrors.CodeCapabilityInvalid)
	}
	_, err = h.client.Mint(ctx, &MintRequest{Address: "alice", Amount: 50})
	if apperrors.CodeOf(err) != apperrors.CodeInvalidArgument {
		t.Fatalf("code = %s, want %s", apperrors.CodeOf(err), apperrors.CodeInvalidArgument)
	}
	if got := h.balance(t, "alice"); got != 50 {
		t.Fatalf("balance = %d, want 50", got)
	}
}

func TestWagerLifecycle(t *testing.T) {
	ctx := context.Background()
	h := startServer(t)
	h.fund(t, "p1", 100)
	h.fund(t, "p2", 100)

	locked, err := h.client.LockWager(h.as(t, "p1"), &LockWagerRequest{PlayerTwoGrant: h.consent(t, "p2"), Resolver: "r", Amount: 100})
	if err != nil {
		t.Fatalf("lock: %v", err)
	}
	if h.balance(t, "p1") != 0 || h.balance(t, "p2") != 0 {
		t.Fatal("expected stakes withdrawn from wallets")
	}
	if _, err := h.client.DisputeWager(h.as(t, "r"), &WagerRequest{WagerID: locked.WagerID}); err != nil {
		t.Fatalf("dispute: %v", err)
	}
	if _, err := h.client.ReleaseWager(h.as(t, "r"), &ReleaseWagerRequest{WagerID: locked.WagerID, Winner: "p1"}); err != nil {
		t.Fatalf("release: %v", err)
	}
	if got := h.balance(t, "p1"); got != 200 {
		t.Fatalf("p1 balance = %d, want 200", got)
	}
	_, err = h.client.ReleaseWager(h.as(t, "r"), &ReleaseWagerRequest{WagerID: locked.WagerID, Winner: "p1"})
	if !errors.Is(err, escrow.ErrNotActive) {
		t.Fatalf("err = %v, want %v", err, escrow.ErrNotActive)
	}

	wager, err := h.client.GetWager(ctx, &WagerRequest{WagerID: locked.WagerID})
	if err != nil {
		t.Fatalf("get wager: %v", err)
	}
	if wager.Status != string(escrow.StatusResolved) || wager.Winner != "p1" || wager.PlayerOne != "p1" || wager.PlayerTwo != "p2" || wager.Custody != 0 {
		t.Fatalf("wager = %+v", wager)
	}
	if _, err := h.client.GetWager(ctx, &WagerRequest{WagerID: "missing"}); !errors.Is(err, escrow.ErrWagerNotFound) {
		t.Fatalf("err = %v, want %v", err, escrow.ErrWagerNotFound)
	}
}

func TestFailedLockRestoresWallets(t *testing.T) {
	h := startServer(t)
	h.fund(t, "p1", 100)
	h.fund(t, "p2", 50)

	_, err := h.client.LockWager(h.as(t, "p1"), &LockWagerRequest{PlayerTwoGrant: h.consent(t, "p2"), Resolver: "r", Amount: 100})
	if apperrors.CodeOf(err) != apperrors.CodeInsufficientFunds {
		t.Fatalf("code = %s, want %s", apperrors.CodeOf(err), apperrors.CodeInsufficientFunds)
	}
	_, err = h.client.LockWager(h.as(t, "p1"), &LockWagerRequest{PlayerTwoGrant: h.consent(t, "p2"), Resolver: "", Amount: 50})
	if !errors.Is(err, escrow.ErrWagerInvalid) {
		t.Fatalf("err = %v, want %v", err, escrow.ErrWagerInvalid)
	}
	if h.balance(t, "p1") != 100 || h.balance(t, "p2") != 50 {
		t.Fatalf("balances = %d/%d, want 100/50", h.balance(t, "p1"), h.balance(t, "p2"))
	}
}

func TestLockWagerNeedsBothPlayersGrants(t *testing.T) {
	h := startServer(t)
	h.fund(t, "victim", 500)
	h.fund(t, "mallory", 500)

	tests := []struct {
		name string
		ctx  context.Context
		in   *LockWagerRequest
		want apperrors.Code
	}{
		{
			name: "anonymous caller",
			ctx:  context.Background(),
			in:   &LockWagerRequest{PlayerTwoGrant: h.consent(t, "mallory"), Resolver: "mallory", Amount: 500},
			want: apperrors.CodeCapabilityInvalid,
		},
		{
			name: "second player without grant",
			ctx:  h.as(t, "mallory"),
			in:   &LockWagerRequest{Resolver: "mallory", Amount: 500},
			want: apperrors.CodeInvalidArgument,
		},
		{
			name: "second player grant is forged",
			ctx:  h.as(t, "mallory"),
			in:   &LockWagerRequest{PlayerTwoGrant: "victim", Resolver: "mallory", Amount: 500},
			want: apperrors.CodeCapabilityInvalid,
		},
		{
			name: "second player grant lacks act scope",
			ctx:  h.as(t, "mallory"),
			in:   &LockWagerRequest{PlayerTwoGrant: h.grantFor(t, "victim", capability.ScopeEscrowSettle), Resolver: "mallory", Amount: 500},
			want: apperrors.CodeCapabilityScope,
		},
		{
			name: "caller grant lacks act scope",
			ctx:  WithGrant(context.Background(), h.grantFor(t, "victim", capability.ScopeMint)),
			in:   &LockWagerRequest{PlayerTwoGrant: h.consent(t, "mallory"), Resolver: "mallory", Amount: 500},
			want: apperrors.CodeCapabilityScope,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := h.client.LockWager(tt.ctx, tt.in)
			if apperrors.CodeOf(err) != tt.want {
				t.Fatalf("code = %s, want %s (err %v)", apperrors.CodeOf(err), tt.want, err)
			}
		})
	}
	if got := h.balance(t, "victim"); got != 500 {
		t.Fatalf("victim balance = %d, want 500", got)
	}
	if got := h.balance(t, "mallory"); got != 500 {
		t.Fatalf("mallory balance = %d, want 500", got)
	}
}

func TestWagerCallsActAsGrantSubject(t *testing.T) {
	h := startServer(t)
	h.fund(t, "p1", 100)
	h.fund(t, "p2", 100)
	locked, err := h.client.LockWager(h.as(t, "p1"), &LockWagerRequest{PlayerTwoGrant: h.consent(t, "p2"), Resolver: "judge", Amount: 100})
	if err != nil {
		t.Fatalf("lock: %v", err)
	}

	// Only the resolver's own grant releases the pot.
	_, err = h.client.ReleaseWager(h.as(t, "p1"), &ReleaseWagerRequest{WagerID: locked.WagerID, Winner: "p1"})
	if !errors.Is(err, escrow.ErrUnauthorized) {
		t.Fatalf("err = %v, want %v", err, escrow.ErrUnauthorized)
	}
	_, err = h.client.ReleaseWager(context.Background(), &ReleaseWagerRequest{WagerID: locked.WagerID, Winner: "p1"})
	if apperrors.CodeOf(err) != apperrors.CodeCapabilityInvalid {
		t.Fatalf("code = %s, want %s", apperrors.CodeOf(err), apperrors.CodeCapabilityInvalid)
	}
	if h.balance(t, "p1") != 0 {
		t.Fatalf("p1 balance = %d, want 0", h.balance(t, "p1"))
	}
	if _, err := h.client.ReleaseWager(h.as(t, "judge"), &ReleaseWagerRequest{WagerID: locked.WagerID, Winner: "p2"}); err != nil {
		t.Fatalf("release: %v", err)
	}
	if h.balance(t, "p2") != 200 {
		t.Fatalf("p2 balance = %d, want 200", h.balance(t, "p2"))
	}
}

func TestSettleExpiredWager(t *testing.T) {
	ctx := context.Background()
	h := startServer(t)
	h.fund(t, "p1", 10)
	h.fund(t, "p2", 10)
	locked, err := h.client.LockWager(h.as(t, "p1"), &LockWagerRequest{PlayerTwoGrant: h.consent(t, "p2"), Resolver: "r", Amount: 10})
	if err != nil {
		t.Fatalf("lock: %v", err)
	}
	if _, err := h.client.DisputeWager(h.as(t, "r"), &WagerRequest{WagerID: locked.WagerID}); err != nil {
		t.Fatalf("dispute: %v", err)
	}
	h.day.Set(31)
	if _, err := h.client.ForceResolveWager(h.as(t, "p2"), &WagerRequest{WagerID: locked.WagerID}); err != nil {
		t.Fatalf("force resolve: %v", err)
	}

	_, err = h.client.SettleWager(ctx, &SettleWagerRequest{WagerID: locked.WagerID, Grant: h.grant(t, capability.ScopeMint), Disposition: "award", Recipient: "p2"})
	if apperrors.CodeOf(err) != apperrors.CodeCapabilityScope {
		t.Fatalf("code = %s, want %s", apperrors.CodeOf(err), apperrors.CodeCapabilityScope)
	}
	_, err = h.client.SettleWager(ctx, &SettleWagerRequest{WagerID: locked.WagerID, Grant: h.grant(t, capability.ScopeEscrowSettle), Disposition: "award", Recipient: "p2"})
	if err != nil {
		t.Fatalf("settle: %v", err)
	}
	if h.balance(t, "p2") != 20 || h.balance(t, "p1") != 0 {
		t.Fatalf("balances = %d/%d, want 0/20", h.balance(t, "p1"), h.balance(t, "p2"))
	}
	wager, err := h.client.GetWager(ctx, &WagerRequest{WagerID: locked.WagerID})
	if err != nil {
		t.Fatalf("get wager: %v", err)
	}
	if wager.Status != string(escrow.StatusExpired) || wager.Winner != "" || wager.SettledTo != "p2" {
		t.Fatalf("wager = %+v", wager)
	}
}

func TestGovernanceMeasuresWalletPower(t *testing.T) {
	ctx := context.Background()
	h := startServer(t)
	h.fund(t, "alice", 1000)
	h.fund(t, "bob", 400)

	reg, err := h.client.CreateRegistry(h.as(t, "dao"), &CreateRegistryRequest{MinVotingPower: 1000, VotingPeriodDays: 7, ExecutionDelayDays: 2})
	if err != nil {
		t.Fatalf("create registry: %v", err)
	}
	created, err := h.client.CreateProposal(h.as(t, "alice"), &CreateProposalRequest{RegistryID: reg.RegistryID, Title: "t", Description: "d", VotingPower: 1000})
	if err != nil {
		t.Fatalf("create proposal: %v", err)
	}
	if h.balance(t, "alice") != 1000 {
		t.Fatal("expected proposal power to stay in the wallet")
	}
	_, err = h.client.CreateProposal(h.as(t, "bob"), &CreateProposalRequest{RegistryID: reg.RegistryID, Title: "t", Description: "d", VotingPower: 400})
	if !errors.Is(err, governance.ErrInsufficientVotingPower) {
		t.Fatalf("err = %v, want %v", err, governance.ErrInsufficientVotingPower)
	}

	vote, err := h.client.Vote(h.as(t, "bob"), &VoteRequest{RegistryID: reg.RegistryID, ProposalID: created.ProposalID, VotingPower: 400, Approve: true})
	if err != nil {
		t.Fatalf("vote: %v", err)
	}
	if vote.Voter != "bob" || vote.VotingPower != 400 || h.balance(t, "bob") != 400 {
		t.Fatalf("vote = %+v balance = %d", vote, h.balance(t, "bob"))
	}
	_, err = h.client.Vote(h.as(t, "bob"), &VoteRequest{RegistryID: reg.RegistryID, ProposalID: created.ProposalID, VotingPower: 1000})
	if apperrors.CodeOf(err) != apperrors.CodeInsufficientFunds {
		t.Fatalf("code = %s, want %s", apperrors.CodeOf(err), apperrors.CodeInsufficientFunds)
	}

	h.day.Set(8)
	finalized, err := h.client.FinalizeProposal(h.as(t, "x"), &ProposalRequest{RegistryID: reg.RegistryID, ProposalID: created.ProposalID})
	if err != nil {
		t.Fatalf("finalize: %v", err)
	}
	if finalized.Status != string(governance.StatusPassed) {
		t.Fatalf("status = %s, want passed", finalized.Status)
	}
	h.day.Set(10)
	if _, err := h.client.ExecuteProposal(h.as(t, "x"), &ProposalRequest{RegistryID: reg.RegistryID, ProposalID: created.ProposalID}); err != nil {
		t.Fatalf("execute: %v", err)
	}
	proposal, err := h.client.GetProposal(ctx, &ProposalRequest{RegistryID: reg.RegistryID, ProposalID: created.ProposalID})
	if err != nil {
		t.Fatalf("get proposal: %v", err)
	}
	if !proposal.Executed || proposal.YesVotes != 400 || proposal.Voters != 1 || proposal.Creator != "alice" {
		t.Fatalf("proposal = %+v", proposal)
	}
	registry, err := h.client.GetRegistry(ctx, &GetRegistryRequest{RegistryID: reg.RegistryID})
	if err != nil {
		t.Fatalf("get registry: %v", err)
	}
	if registry.ProposalCount != 1 || registry.MinVotingPower != 1000 {
		t.Fatalf("registry = %+v", registry)
	}
}

func TestVoteCannotBorrowAnotherWallet(t *testing.T) {
	h := startServer(t)
	h.fund(t, "whale", 10000)
	h.fund(t, "mallory", 1)
	reg, err := h.client.CreateRegistry(h.as(t, "dao"), &CreateRegistryRequest{MinVotingPower: 1, VotingPeriodDays: 7})
	if err != nil {
		t.Fatalf("create registry: %v", err)
	}
	created, err := h.client.CreateProposal(h.as(t, "mallory"), &CreateProposalRequest{RegistryID: reg.RegistryID, Title: "t", VotingPower: 1})
	if err != nil {
		t.Fatalf("create proposal: %v", err)
	}

	// Mallory's grant spends Mallory's wallet, whatever the request asks for.
	_, err = h.client.Vote(h.as(t, "mallory"), &VoteRequest{RegistryID: reg.RegistryID, ProposalID: created.ProposalID, VotingPower: 10000, Approve: true})
	if apperrors.CodeOf(err) != apperrors.CodeInsufficientFunds {
		t.Fatalf("code = %s, want %s", apperrors.CodeOf(err), apperrors.CodeInsufficientFunds)
	}
	_, err = h.client.Vote(context.Background(), &VoteRequest{RegistryID: reg.RegistryID, ProposalID: created.ProposalID, VotingPower: 10000, Approve: true})
	if apperrors.CodeOf(err) != apperrors.CodeCapabilityInvalid {
		t.Fatalf("code = %s, want %s", apperrors.CodeOf(err), apperrors.CodeCapabilityInvalid)
	}
	forged := metadata.AppendToOutgoingContext(context.Background(), AuthorizationHeader, "Bearer whale")
	_, err = h.client.Vote(forged, &VoteRequest{RegistryID: reg.RegistryID, ProposalID: created.ProposalID, VotingPower: 10000, Approve: true})
	if apperrors.CodeOf(err) != apperrors.CodeCapabilityInvalid {
		t.Fatalf("code = %s, want %s", apperrors.CodeOf(err), apperrors.CodeCapabilityInvalid)
	}
	basic := metadata.AppendToOutgoingContext(context.Background(), AuthorizationHeader, "Basic d2hhbGU6")
	_, err = h.client.Vote(basic, &VoteRequest{RegistryID: reg.RegistryID, ProposalID: created.ProposalID, VotingPower: 10000, Approve: true})
	if apperrors.CodeOf(err) != apperrors.CodeCapabilityInvalid {
		t.Fatalf("code = %s, want %s", apperrors.CodeOf(err), apperrors.CodeCapabilityInvalid)
	}

	proposal, err := h.client.GetProposal(context.Background(), &ProposalRequest{RegistryID: reg.RegistryID, ProposalID: created.ProposalID})
	if err != nil {
		t.Fatalf("get proposal: %v", err)
	}
	if proposal.YesVotes != 0 || proposal.Voters != 0 {
		t.Fatalf("proposal = %+v, want no votes", proposal)
	}
}

func TestStakingPaysIntoWallets(t *testing.T) {
	ctx := context.Background()
	h := startServer(t)
	h.fund(t, "alice", 1000)

	pool, err := h.client.CreatePool(h.as(t, "admin"), &CreatePoolRequest{RewardRateBps: 500, MinLockPeriodDays: 30})
	if err != nil {
		t.Fatalf("create pool: %v", err)
	}
	stake, err := h.client.Stake(h.as(t, "alice"), &StakeRequest{PoolID: pool.PoolID, Amount: 1000, LockPeriodDays: 30})
	if err != nil {
		t.Fatalf("stake: %v", err)
	}
	if h.balance(t, "alice") != 0 || stake.Owner != "alice" {
		t.Fatalf("stake = %+v balance = %d", stake, h.balance(t, "alice"))
	}

	h.day.Set(10)
	info, err := h.client.GetStake(ctx, &StakeRefRequest{PoolID: pool.PoolID, StakeID: stake.StakeID})
	if err != nil {
		t.Fatalf("get stake: %v", err)
	}
	if info.PendingReward != 5 {
		t.Fatalf("pending = %d, want 5", info.PendingReward)
	}
	_, err = h.client.ClaimRewards(h.as(t, "mallory"), &StakeRefRequest{PoolID: pool.PoolID, StakeID: stake.StakeID})
	if !errors.Is(err, staking.ErrNotOwner) {
		t.Fatalf("err = %v, want %v", err, staking.ErrNotOwner)
	}
	claimed, err := h.client.ClaimRewards(h.as(t, "alice"), &StakeRefRequest{PoolID: pool.PoolID, StakeID: stake.StakeID})
	if err != nil {
		t.Fatalf("claim: %v", err)
	}
	if claimed.Amount != 5 || h.balance(t, "alice") != 5 {
		t.Fatalf("claimed = %d balance = %d", claimed.Amount, h.balance(t, "alice"))
	}

	h.day.Set(29)
	_, err = h.client.Withdraw(h.as(t, "alice"), &StakeRefRequest{PoolID: pool.PoolID, StakeID: stake.StakeID})
	if !errors.Is(err, staking.ErrStakeLocked) {
		t.Fatalf("err = %v, want %v", err, staking.ErrStakeLocked)
	}
	h.day.Set(30)
	_, err = h.client.Withdraw(h.as(t, "mallory"), &StakeRefRequest{PoolID: pool.PoolID, StakeID: stake.StakeID})
	if !errors.Is(err, staking.ErrNotOwner) {
		t.Fatalf("err = %v, want %v", err, staking.ErrNotOwner)
	}
	if got := h.balance(t, "mallory"); got != 0 {
		t.Fatalf("mallory balance = %d, want 0", got)
	}
	withdrawn, err := h.client.Withdraw(h.as(t, "alice"), &StakeRefRequest{PoolID: pool.PoolID, StakeID: stake.StakeID})
	if err != nil {
		t.Fatalf("withdraw: %v", err)
	}
	if withdrawn.Amount != 1000 || h.balance(t, "alice") != 1005 {
		t.Fatalf("withdrawn = %d balance = %d", withdrawn.Amount, h.balance(t, "alice"))
	}
	view, err := h.client.GetPool(ctx, &GetPoolRequest{PoolID: pool.PoolID})
	if err != nil {
		t.Fatalf("get pool: %v", err)
	}
	if view.TotalStaked != 0 || view.Custody != 0 || len(view.Stakes) != 0 {
		t.Fatalf("pool = %+v", view)
	}
}

func TestListAndVerifyEvents(t *testing.T) {
	ctx := context.Background()
	h := startServer(t)
	pool, err := h.client.CreatePool(h.as(t, "admin"), &CreatePoolRequest{RewardRateBps: 1})
	if err != nil {
		t.Fatalf("create pool: %v", err)
	}
	h.fund(t, "alice", 10)
	if _, err := h.client.Stake(h.as(t, "alice"), &StakeRequest{PoolID: pool.PoolID, Amount: 10}); err != nil {
		t.Fatalf("stake: %v", err)
	}

	ctx = metadata.AppendToOutgoingContext(ctx, requestctx.RequestIDHeader, "req-7")
	page, err := h.client.ListEvents(ctx, &ListEventsRequest{StreamID: pool.PoolID})
	if err != nil {
		t.Fatalf("list events: %v", err)
	}
	if len(page.Events) != 2 {
		t.Fatalf("events = %d, want 2", len(page.Events))
	}
	if page.Events[1].Type != string(staking.EventTypeStaked) || page.Events[1].ActorID != "alice" {
		t.Fatalf("event = %+v", page.Events[1])
	}
	verified, err := h.client.VerifyStream(ctx, &VerifyStreamRequest{StreamID: pool.PoolID})
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if verified.Events != 2 {
		t.Fatalf("verified = %d, want 2", verified.Events)
	}
	_, err = h.client.ListEvents(ctx, &ListEventsRequest{Filter: "type ="})
	if apperrors.CodeOf(err) != apperrors.CodeInvalidArgument {
		t.Fatalf("code = %s, want %s", apperrors.CodeOf(err), apperrors.CodeInvalidArgument)
	}
}

func TestErrorsAreLocalized(t *testing.T) {
	h := startServer(t)
	ctx := metadata.AppendToOutgoingContext(context.Background(), requestctx.LocaleHeader, "pt-BR")
	_, errPT := h.client.GetWager(ctx, &WagerRequest{WagerID: "missing"})
	_, errEN := h.client.GetWager(context.Background(), &WagerRequest{WagerID: "missing"})

	pt, en := apperrors.LocalizedMessage(errPT), apperrors.LocalizedMessage(errEN)
	if pt == "" || en == "" {
		t.Fatalf("expected localized messages, got %q and %q", pt, en)
	}
	if pt == en {
		t.Fatalf("expected pt-BR message to differ from en-US, both %q", pt)
	}
}

func TestNewServerRequiresLedger(t *testing.T) {
	if _, err := NewServer(nil, nil, nil); err == nil {
		t.Fatal("expected error for nil ledger")
	}
	if _, err := NewClient(nil); err == nil {
		t.Fatal("expected error for nil connection")
	}
}
