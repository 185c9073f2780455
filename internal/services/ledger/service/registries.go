package service

import (
	"fmt"

	"github.com/louisbranch/ledgerworks/internal/services/ledger/domain/command"
	"github.com/louisbranch/ledgerworks/internal/services/ledger/domain/escrow"
	"github.com/louisbranch/ledgerworks/internal/services/ledger/domain/event"
	"github.com/louisbranch/ledgerworks/internal/services/ledger/domain/governance"
	"github.com/louisbranch/ledgerworks/internal/services/ledger/domain/staking"
)

// Registries holds one command registry per domain and the shared event
// registry used by the journal.
type Registries struct {
	Governance *command.Registry
	Escrow     *command.Registry
	Staking    *command.Registry
	Events     *event.Registry
}

// NewRegistries registers every ledger command and event type.
func NewRegistries() (Registries, error) {
	r := Registries{
		Governance: command.NewRegistry(),
		Escrow:     command.NewRegistry(),
		Staking:    command.NewRegistry(),
		Events:     event.NewRegistry(),
	}
	steps := []struct {
		name string
		fn   func() error
	}{
		{"governance commands", func() error { return governance.RegisterCommands(r.Governance) }},
		{"escrow commands", func() error { return escrow.RegisterCommands(r.Escrow) }},
		{"staking commands", func() error { return staking.RegisterCommands(r.Staking) }},
		{"governance events", func() error { return governance.RegisterEvents(r.Events) }},
		{"escrow events", func() error { return escrow.RegisterEvents(r.Events) }},
		{"staking events", func() error { return staking.RegisterEvents(r.Events) }},
	}
	for _, step := range steps {
		if err := step.fn(); err != nil {
			return Registries{}, fmt.Errorf("register %s: %w", step.name, err)
		}
	}
	return r, nil
}
