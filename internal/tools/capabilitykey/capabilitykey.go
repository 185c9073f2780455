// Package capabilitykey generates capability signing keys and issues grants.
package capabilitykey

import (
	"crypto/ed25519"
	"crypto/rand"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/louisbranch/ledgerworks/internal/services/ledger/domain/capability"
)

// GenerateKeys writes a fresh Ed25519 key pair as shell exports.
func GenerateKeys(out io.Writer, reader io.Reader) error {
	if out == nil {
		return errors.New("output is required")
	}
	if reader == nil {
		reader = rand.Reader
	}
	publicKey, privateKey, err := ed25519.GenerateKey(reader)
	if err != nil {
		return fmt.Errorf("generate capability key: %w", err)
	}
	if _, err := fmt.Fprintf(out, "export LEDGERWORKS_CAPABILITY_PRIVATE_KEY=%s\n", capability.EncodeKey(privateKey)); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(out, "export LEDGERWORKS_CAPABILITY_PUBLIC_KEY=%s\n", capability.EncodeKey(publicKey)); err != nil {
		return err
	}
	return nil
}

// ParseScopes splits a comma-separated scope list and rejects unknown names.
func ParseScopes(value string) ([]capability.Scope, error) {
	var scopes []capability.Scope
	for _, part := range strings.Split(value, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		scope := capability.Scope(part)
		if !capability.KnownScope(scope) {
			return nil, fmt.Errorf("unknown scope %q", part)
		}
		scopes = append(scopes, scope)
	}
	if len(scopes) == 0 {
		return nil, errors.New("at least one scope is required")
	}
	return scopes, nil
}

// IssueGrant signs a grant and writes it on one line.
func IssueGrant(out io.Writer, issuer *capability.Issuer, subject string, ttl time.Duration, scopes []capability.Scope) error {
	if out == nil {
		return errors.New("output is required")
	}
	if issuer == nil {
		return errors.New("issuer is required")
	}
	grant, err := issuer.Issue(subject, ttl, scopes...)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(out, grant)
	return err
}
