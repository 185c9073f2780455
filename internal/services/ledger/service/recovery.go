package service

import (
	"context"
	"fmt"

	"github.com/louisbranch/ledgerworks/internal/services/ledger/domain/escrow"
	"github.com/louisbranch/ledgerworks/internal/services/ledger/domain/staking"
	"github.com/louisbranch/ledgerworks/internal/services/ledger/domain/value"
)

// RestoreCustody rebuilds the custody accounts of journaled records from
// their folded state: each wager holds its pot until released or settled,
// and each pool holds its total stake. Value missing from an account is
// minted into it. Run it once after opening an existing journal and before
// serving commands. It returns the value restored.
func (l *Ledger) RestoreCustody(ctx context.Context) (uint64, error) {
	streams, err := l.store.ListStreams(ctx)
	if err != nil {
		return 0, fmt.Errorf("list journal streams: %w", err)
	}
	var restored uint64
	for _, streamID := range streams {
		account, held, err := l.custodyOf(ctx, streamID)
		if err != nil {
			return restored, err
		}
		if account == "" {
			continue
		}
		have := l.Vault.Balance(account)
		if held <= have {
			continue
		}
		missing := held - have
		token, err := l.Treasury.supply.Mint(l.Treasury.mint, missing)
		if err != nil {
			return restored, fmt.Errorf("restore %s: %w", account, err)
		}
		if err := l.Vault.Deposit(account, token); err != nil {
			if _, burnErr := l.Treasury.supply.Burn(l.Treasury.mint, token); burnErr != nil {
				return restored, burnErr
			}
			return restored, fmt.Errorf("restore %s: %w", account, err)
		}
		restored += missing
	}
	return restored, nil
}

// custodyOf returns the custody account of a stream and the value its
// record holds. Streams without custody return an empty account.
func (l *Ledger) custodyOf(ctx context.Context, streamID string) (string, uint64, error) {
	first, err := l.store.ListEvents(ctx, streamID, 0, 1)
	if err != nil {
		return "", 0, fmt.Errorf("read %s: %w", streamID, err)
	}
	if len(first) == 0 {
		return "", 0, nil
	}
	switch first[0].Type {
	case escrow.EventTypeLocked:
		wager, err := l.Escrow.Wager(ctx, streamID)
		if err != nil {
			return "", 0, fmt.Errorf("replay wager %s: %w", streamID, err)
		}
		return value.WagerAccount(streamID), wager.Held(), nil
	case staking.EventTypePoolCreated:
		pool, err := l.Staking.Pool(ctx, streamID)
		if err != nil {
			return "", 0, fmt.Errorf("replay pool %s: %w", streamID, err)
		}
		return value.PoolAccount(streamID), pool.TotalStaked, nil
	default:
		return "", 0, nil
	}
}
