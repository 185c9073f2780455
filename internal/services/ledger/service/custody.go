package service

import (
	"github.com/louisbranch/ledgerworks/internal/services/ledger/domain/value"
)

type transfer struct {
	from   string
	to     string
	amount uint64
}

// transferAll applies transfers in order. If one fails, the applied ones
// are reversed before the error is returned.
func transferAll(vault *value.Vault, transfers []transfer, logf func(string, ...any)) (func(), error) {
	applied := make([]transfer, 0, len(transfers))
	reverse := func() {
		for i := len(applied) - 1; i >= 0; i-- {
			t := applied[i]
			if err := vault.Transfer(t.to, t.from, t.amount); err != nil {
				logf("custody: reverse %d from %s to %s: %v", t.amount, t.to, t.from, err)
			}
		}
	}
	for _, t := range transfers {
		if err := vault.Transfer(t.from, t.to, t.amount); err != nil {
			reverse()
			return nil, err
		}
		applied = append(applied, t)
	}
	return reverse, nil
}
