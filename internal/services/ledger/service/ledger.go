package service

import (
	"errors"
	"log"

	"github.com/louisbranch/ledgerworks/internal/platform/telemetry/metrics"
	"github.com/louisbranch/ledgerworks/internal/services/ledger/domain/clock"
	"github.com/louisbranch/ledgerworks/internal/services/ledger/domain/engine"
	"github.com/louisbranch/ledgerworks/internal/services/ledger/domain/escrow"
	"github.com/louisbranch/ledgerworks/internal/services/ledger/domain/governance"
	"github.com/louisbranch/ledgerworks/internal/services/ledger/domain/staking"
	"github.com/louisbranch/ledgerworks/internal/services/ledger/domain/value"
	"github.com/louisbranch/ledgerworks/internal/services/ledger/sink"
	"github.com/louisbranch/ledgerworks/internal/services/ledger/storage"
	"github.com/louisbranch/ledgerworks/internal/services/ledger/storage/integrity"
)

// Deps are the collaborators shared by every ledger service.
type Deps struct {
	Store      storage.EventStore
	Registries Registries
	Clock      clock.Clock
	Vault      *value.Vault
	// Mint is the capability of the supply rewards and wallet mints come
	// from. A fresh supply is created when nil.
	Mint *value.MintCapability
	// Keyring verifies journal signatures. Optional.
	Keyring *integrity.Keyring
	Sink    sink.Sink
	Metrics *metrics.Metrics
	Logf    func(format string, args ...any)
}

// Ledger groups the ledger services over one journal and vault.
type Ledger struct {
	Governance *Governance
	Escrow     *Escrow
	Staking    *Staking
	Journal    *Journal
	Treasury   *Treasury
	Vault      *value.Vault
	Clock      clock.Clock

	store storage.EventStore
}

// New builds the ledger services.
func New(deps Deps) (*Ledger, error) {
	if deps.Store == nil {
		return nil, errors.New("event store is required")
	}
	if deps.Clock == nil {
		return nil, errors.New("clock is required")
	}
	if deps.Registries.Events == nil {
		return nil, errors.New("registries are required")
	}
	if deps.Vault == nil {
		deps.Vault = value.NewVault()
	}
	if deps.Mint == nil {
		_, deps.Mint = value.NewSupply()
	}
	if deps.Logf == nil {
		deps.Logf = log.Printf
	}

	gov, err := engine.New(engine.Config[governance.State]{
		Domain:   "governance",
		Commands: deps.Registries.Governance,
		Events:   deps.Registries.Events,
		Store:    deps.Store,
		Clock:    deps.Clock,
		Decide:   governance.Decide,
		Fold:     governance.Fold,
		Sink:     deps.Sink,
		Metrics:  deps.Metrics,
		Logf:     deps.Logf,
	})
	if err != nil {
		return nil, err
	}
	esc, err := engine.New(engine.Config[escrow.State]{
		Domain:   "escrow",
		Commands: deps.Registries.Escrow,
		Events:   deps.Registries.Events,
		Store:    deps.Store,
		Clock:    deps.Clock,
		Decide:   escrow.Decide,
		Fold:     escrow.Fold,
		Sink:     deps.Sink,
		Metrics:  deps.Metrics,
		Logf:     deps.Logf,
	})
	if err != nil {
		return nil, err
	}
	stk, err := engine.New(engine.Config[staking.State]{
		Domain:   "staking",
		Commands: deps.Registries.Staking,
		Events:   deps.Registries.Events,
		Store:    deps.Store,
		Clock:    deps.Clock,
		Decide:   staking.Decide,
		Fold:     staking.Fold,
		Sink:     deps.Sink,
		Metrics:  deps.Metrics,
		Logf:     deps.Logf,
	})
	if err != nil {
		return nil, err
	}

	return &Ledger{
		Governance: &Governance{handler: gov},
		Escrow:     &Escrow{handler: esc, vault: deps.Vault, logf: deps.Logf},
		Staking:    &Staking{handler: stk, vault: deps.Vault, supply: deps.Mint.Supply(), clock: deps.Clock, logf: deps.Logf},
		Journal:    &Journal{store: deps.Store, keyring: deps.Keyring},
		Treasury:   NewTreasury(deps.Vault, deps.Mint),
		Vault:      deps.Vault,
		Clock:      deps.Clock,
		store:      deps.Store,
	}, nil
}
