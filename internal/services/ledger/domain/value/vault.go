package value

import (
	"math"
	"sort"
	"strconv"
	"strings"
	"sync"

	apperrors "github.com/louisbranch/ledgerworks/internal/platform/errors"
)

// Account prefixes for custody held on behalf of ledger records.
const (
	WalletAccountPrefix = "wallet/"
	WagerAccountPrefix  = "wager/"
	PoolAccountPrefix   = "pool/"
)

// WalletAccount names the spendable account of an address.
func WalletAccount(addr string) string { return WalletAccountPrefix + strings.TrimSpace(addr) }

// WagerAccount names the custody account of a wager pot.
func WagerAccount(wagerID string) string { return WagerAccountPrefix + wagerID }

// PoolAccount names the custody account of a stake pool.
func PoolAccount(poolID string) string { return PoolAccountPrefix + poolID }

// Vault keeps token value at rest in named accounts: player wallets and
// custody accounts for escrow pots and stake pools.
type Vault struct {
	mu       sync.Mutex
	balances map[string]uint64
}

// NewVault creates an empty vault.
func NewVault() *Vault {
	return &Vault{balances: make(map[string]uint64)}
}

// Balance reports the value held by account.
func (v *Vault) Balance(account string) uint64 {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.balances[strings.TrimSpace(account)]
}

// Deposit consumes token into account.
func (v *Vault) Deposit(account string, token *Token) error {
	account = strings.TrimSpace(account)
	if account == "" {
		return apperrors.New(apperrors.CodeInvalidArgument, "account is required")
	}
	v.mu.Lock()
	defer v.mu.Unlock()
	// Check the sum before taking the token so a failed deposit leaves it live.
	if v.balances[account] > math.MaxUint64-token.Value() {
		return ErrArithmeticOverflow
	}
	amount, err := token.take()
	if err != nil {
		return err
	}
	if amount > 0 {
		v.balances[account] += amount
	}
	return nil
}

// Withdraw removes amount from account as a new token.
func (v *Vault) Withdraw(account string, amount uint64) (*Token, error) {
	account = strings.TrimSpace(account)
	v.mu.Lock()
	defer v.mu.Unlock()
	have := v.balances[account]
	if amount > have {
		return nil, apperrors.WithMetadata(apperrors.CodeInsufficientFunds, "insufficient balance", map[string]string{
			"account": account,
			"have":    strconv.FormatUint(have, 10),
			"want":    strconv.FormatUint(amount, 10),
		})
	}
	if have == amount {
		delete(v.balances, account)
	} else {
		v.balances[account] = have - amount
	}
	return newToken(amount), nil
}

// Return reverses a Deposit: amount leaves account and token, which the
// deposit consumed, is live again holding it.
func (v *Vault) Return(account string, token *Token, amount uint64) error {
	account = strings.TrimSpace(account)
	v.mu.Lock()
	defer v.mu.Unlock()
	have := v.balances[account]
	if amount > have {
		return apperrors.WithMetadata(apperrors.CodeInsufficientFunds, "insufficient balance", map[string]string{
			"account": account,
			"have":    strconv.FormatUint(have, 10),
			"want":    strconv.FormatUint(amount, 10),
		})
	}
	if err := token.revive(amount); err != nil {
		return err
	}
	if have == amount {
		delete(v.balances, account)
	} else {
		v.balances[account] = have - amount
	}
	return nil
}

// Transfer moves amount between accounts. Either both balances change or
// neither does.
func (v *Vault) Transfer(from, to string, amount uint64) error {
	from, to = strings.TrimSpace(from), strings.TrimSpace(to)
	if from == "" || to == "" {
		return apperrors.New(apperrors.CodeInvalidArgument, "account is required")
	}
	if from == to || amount == 0 {
		return nil
	}
	v.mu.Lock()
	defer v.mu.Unlock()
	have := v.balances[from]
	if amount > have {
		return apperrors.WithMetadata(apperrors.CodeInsufficientFunds, "insufficient balance", map[string]string{
			"account": from,
			"have":    strconv.FormatUint(have, 10),
			"want":    strconv.FormatUint(amount, 10),
		})
	}
	if v.balances[to] > math.MaxUint64-amount {
		return ErrArithmeticOverflow
	}
	if have == amount {
		delete(v.balances, from)
	} else {
		v.balances[from] = have - amount
	}
	v.balances[to] += amount
	return nil
}

// Accounts lists accounts with a non-zero balance, sorted.
func (v *Vault) Accounts() []string {
	v.mu.Lock()
	defer v.mu.Unlock()
	out := make([]string, 0, len(v.balances))
	for account := range v.balances {
		out = append(out, account)
	}
	sort.Strings(out)
	return out
}

// Total reports the value held across all accounts.
func (v *Vault) Total() uint64 {
	v.mu.Lock()
	defer v.mu.Unlock()
	var total uint64
	for _, balance := range v.balances {
		total += balance
	}
	return total
}
