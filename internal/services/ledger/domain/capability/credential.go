// Package capability issues and verifies signed grants that authorize
// privileged ledger operations.
//
// Privileged operations take a Credential value. Outside this package a
// Credential can only be obtained by verifying a grant signed with the
// configured Ed25519 key, or by Local for operators running in-process.
package capability

import (
	"slices"
	"strings"
	"time"
)

// Scope names a privileged operation family.
type Scope string

const (
	// ScopeMint allows minting value into accounts and paying rewards.
	ScopeMint Scope = "ledger.mint"
	// ScopeEscrowSettle allows settling expired wagers.
	ScopeEscrowSettle Scope = "escrow.settle"
	// ScopeAct allows acting as the grant subject: spending its wallet and
	// signing its votes, wagers and stakes.
	ScopeAct Scope = "ledger.act"
)

// KnownScope reports whether s is a scope the ledger understands.
func KnownScope(s Scope) bool {
	switch s {
	case ScopeMint, ScopeEscrowSettle, ScopeAct:
		return true
	default:
		return false
	}
}

// Credential is proof that the holder was granted scopes.
type Credential struct {
	subject   string
	scopes    []Scope
	grantID   string
	expiresAt time.Time
}

// Local mints a credential without a signed grant, for operators that hold
// the ledger process itself.
func Local(subject string, scopes ...Scope) Credential {
	return Credential{subject: strings.TrimSpace(subject), scopes: slices.Clone(scopes)}
}

// Subject is the principal the grant was issued to.
func (c Credential) Subject() string { return c.subject }

// GrantID is the grant's jti, empty for local credentials.
func (c Credential) GrantID() string { return c.grantID }

// ExpiresAt is the grant expiry, zero for local credentials.
func (c Credential) ExpiresAt() time.Time { return c.expiresAt }

// Scopes returns a copy of the granted scopes.
func (c Credential) Scopes() []Scope { return slices.Clone(c.scopes) }

// Allows reports whether the credential carries scope.
func (c Credential) Allows(scope Scope) bool {
	return slices.Contains(c.scopes, scope)
}
