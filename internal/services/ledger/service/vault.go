package service

import (
	"strings"

	apperrors "github.com/louisbranch/ledgerworks/internal/platform/errors"
	"github.com/louisbranch/ledgerworks/internal/services/ledger/domain/capability"
	"github.com/louisbranch/ledgerworks/internal/services/ledger/domain/value"
)

// Treasury mints into and pays out of vault wallets. It holds the mint
// capability of the ledger's supply; callers prove the right to use it with
// a credential.
type Treasury struct {
	vault  *value.Vault
	supply *value.Supply
	mint   *value.MintCapability
}

// NewTreasury creates a treasury over vault minting with mint.
func NewTreasury(vault *value.Vault, mint *value.MintCapability) *Treasury {
	return &Treasury{vault: vault, supply: mint.Supply(), mint: mint}
}

// Mint credits amount of new value to addr's wallet. cred must carry the
// ledger.mint scope.
func (t *Treasury) Mint(cred capability.Credential, addr string, amount uint64) error {
	if !cred.Allows(capability.ScopeMint) {
		return apperrors.WithMetadata(apperrors.CodeCapabilityScope, "credential lacks scope", map[string]string{
			"scope": string(capability.ScopeMint),
		})
	}
	if strings.TrimSpace(addr) == "" {
		return apperrors.WithMetadata(apperrors.CodeInvalidArgument, "address is required", map[string]string{"field": "address"})
	}
	token, err := t.supply.Mint(t.mint, amount)
	if err != nil {
		return err
	}
	if err := t.vault.Deposit(value.WalletAccount(addr), token); err != nil {
		if _, burnErr := t.supply.Burn(t.mint, token); burnErr != nil {
			return burnErr
		}
		return err
	}
	return nil
}

// Take withdraws amount from addr's wallet as a token.
func (t *Treasury) Take(addr string, amount uint64) (*value.Token, error) {
	return t.vault.Withdraw(value.WalletAccount(addr), amount)
}

// Give deposits token into addr's wallet.
func (t *Treasury) Give(addr string, token *value.Token) error {
	return t.vault.Deposit(value.WalletAccount(addr), token)
}

// Balance reports addr's wallet balance.
func (t *Treasury) Balance(addr string) uint64 {
	return t.vault.Balance(value.WalletAccount(addr))
}

// Supply reports the total value minted and not burned.
func (t *Treasury) Supply() uint64 {
	return t.supply.Total()
}

// MintCapability exposes the capability for reward minting.
func (t *Treasury) MintCapability() *value.MintCapability {
	return t.mint
}
