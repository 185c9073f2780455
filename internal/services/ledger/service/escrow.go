package service

import (
	"context"
	"strconv"

	apperrors "github.com/louisbranch/ledgerworks/internal/platform/errors"
	"github.com/louisbranch/ledgerworks/internal/platform/id"
	"github.com/louisbranch/ledgerworks/internal/services/ledger/domain/capability"
	"github.com/louisbranch/ledgerworks/internal/services/ledger/domain/engine"
	"github.com/louisbranch/ledgerworks/internal/services/ledger/domain/escrow"
	"github.com/louisbranch/ledgerworks/internal/services/ledger/domain/event"
	"github.com/louisbranch/ledgerworks/internal/services/ledger/domain/value"
)

// Escrow holds wager pots in vault custody until a resolver decides them.
type Escrow struct {
	handler *engine.Handler[escrow.State]
	vault   *value.Vault
	logf    func(string, ...any)
}

// LockRequest opens a wager. Each stake token must be worth exactly Amount.
type LockRequest struct {
	PlayerOne string
	PlayerTwo string
	Resolver  string
	Amount    uint64
	StakeOne  *value.Token
	StakeTwo  *value.Token
}

// Lock opens a wager and takes both stakes into custody.
func (e *Escrow) Lock(ctx context.Context, req LockRequest) (string, error) {
	wagerID, err := id.NewID()
	if err != nil {
		return "", err
	}
	cmd, err := newCommand(ctx, wagerID, escrow.CommandTypeLock, req.PlayerOne, escrow.LockPayload{
		PlayerOne: req.PlayerOne,
		PlayerTwo: req.PlayerTwo,
		Amount:    req.Amount,
		Resolver:  req.Resolver,
	})
	if err != nil {
		return "", err
	}
	custody := value.WagerAccount(wagerID)
	_, err = e.handler.ExecuteWith(ctx, cmd, func(events []event.Event) (func(), error) {
		locked, err := findPayload[escrow.LockedPayload](events, escrow.EventTypeLocked)
		if err != nil {
			return nil, err
		}
		if req.StakeOne == req.StakeTwo {
			return nil, apperrors.WithMetadata(apperrors.CodeWagerInvalid, "each player must tender a separate stake", map[string]string{"field": "stake_two"})
		}
		if err := checkStake(req.StakeOne, locked.Amount, "stake_one"); err != nil {
			return nil, err
		}
		if err := checkStake(req.StakeTwo, locked.Amount, "stake_two"); err != nil {
			return nil, err
		}
		if err := e.vault.Deposit(custody, req.StakeOne); err != nil {
			return nil, err
		}
		if err := e.vault.Deposit(custody, req.StakeTwo); err != nil {
			e.unstake(custody, req.StakeOne, locked.Amount)
			return nil, err
		}
		// Undo leaves both stakes live again.
		return func() {
			e.unstake(custody, req.StakeTwo, locked.Amount)
			e.unstake(custody, req.StakeOne, locked.Amount)
		}, nil
	})
	if err != nil {
		return "", err
	}
	return wagerID, nil
}

// checkStake fails before any value moves when a stake is spent, reused, or
// not worth the wager amount.
func checkStake(token *value.Token, amount uint64, field string) error {
	if !token.Live() {
		return value.ErrTokenConsumed
	}
	if got := token.Value(); got != amount {
		return apperrors.WithMetadata(apperrors.CodeWagerInvalid, "stake does not match wager amount", map[string]string{
			"field": field,
			"have":  strconv.FormatUint(got, 10),
			"want":  strconv.FormatUint(amount, 10),
		})
	}
	return nil
}

func (e *Escrow) unstake(custody string, stake *value.Token, amount uint64) {
	if err := e.vault.Return(custody, stake, amount); err != nil {
		e.logf("escrow: return stake of %d from %s: %v", amount, custody, err)
	}
}

// Dispute flags an active wager as disputed. Only the resolver may call it.
func (e *Escrow) Dispute(ctx context.Context, wagerID, caller string) error {
	cmd, err := newCommand(ctx, wagerID, escrow.CommandTypeDispute, caller, struct{}{})
	if err != nil {
		return err
	}
	_, err = e.handler.Execute(ctx, cmd)
	return err
}

// Release pays the pot to winner's wallet. Only the resolver may call it.
func (e *Escrow) Release(ctx context.Context, wagerID, caller, winner string) error {
	cmd, err := newCommand(ctx, wagerID, escrow.CommandTypeRelease, caller, escrow.ReleasePayload{Winner: winner})
	if err != nil {
		return err
	}
	custody := value.WagerAccount(wagerID)
	_, err = e.handler.ExecuteWith(ctx, cmd, func(events []event.Event) (func(), error) {
		resolved, err := findPayload[escrow.ResolvedPayload](events, escrow.EventTypeResolved)
		if err != nil {
			return nil, err
		}
		return transferAll(e.vault, []transfer{{
			from:   custody,
			to:     value.WalletAccount(resolved.Winner),
			amount: resolved.Payout,
		}}, e.logf)
	})
	return err
}

// ForceResolve expires a disputed wager whose timeout has elapsed. The pot
// stays in custody until Settle.
func (e *Escrow) ForceResolve(ctx context.Context, wagerID, caller string) error {
	cmd, err := newCommand(ctx, wagerID, escrow.CommandTypeForceResolve, caller, struct{}{})
	if err != nil {
		return err
	}
	_, err = e.handler.Execute(ctx, cmd)
	return err
}

// Settle disposes of an expired wager's pot. cred must carry the
// escrow.settle scope.
func (e *Escrow) Settle(ctx context.Context, cred capability.Credential, wagerID string, disposition escrow.Disposition, recipient string) error {
	if !cred.Allows(capability.ScopeEscrowSettle) {
		return apperrors.WithMetadata(apperrors.CodeCapabilityScope, "credential lacks scope", map[string]string{
			"scope": string(capability.ScopeEscrowSettle),
		})
	}
	cmd, err := newCommand(ctx, wagerID, escrow.CommandTypeSettle, cred.Subject(), escrow.SettlePayload{
		Disposition: disposition,
		Recipient:   recipient,
	})
	if err != nil {
		return err
	}
	custody := value.WagerAccount(wagerID)
	_, err = e.handler.ExecuteWith(ctx, cmd, func(events []event.Event) (func(), error) {
		settled, err := findPayload[escrow.SettledPayload](events, escrow.EventTypeSettled)
		if err != nil {
			return nil, err
		}
		transfers := make([]transfer, 0, len(settled.Payouts))
		for _, payout := range settled.Payouts {
			transfers = append(transfers, transfer{from: custody, to: value.WalletAccount(payout.Account), amount: payout.Amount})
		}
		return transferAll(e.vault, transfers, e.logf)
	})
	return err
}

// Wager returns the wager record.
func (e *Escrow) Wager(ctx context.Context, wagerID string) (escrow.State, error) {
	state, _, err := e.handler.State(ctx, wagerID)
	if err != nil {
		return escrow.State{}, err
	}
	if !state.Created {
		return escrow.State{}, escrow.ErrWagerNotFound
	}
	return state, nil
}

// Custody reports the value currently held for a wager.
func (e *Escrow) Custody(wagerID string) uint64 {
	return e.vault.Balance(value.WagerAccount(wagerID))
}
