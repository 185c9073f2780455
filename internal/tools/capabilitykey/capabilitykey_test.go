package capabilitykey

import (
	"bytes"
	"crypto/ed25519"
	"strings"
	"testing"
	"time"

	"github.com/louisbranch/ledgerworks/internal/services/ledger/domain/capability"
)

func TestGenerateKeysRequiresOutput(t *testing.T) {
	if err := GenerateKeys(nil, bytes.NewReader([]byte{1})); err == nil {
		t.Fatal("expected error when output is nil")
	}
}

func TestGenerateKeysWritesExports(t *testing.T) {
	buf := &bytes.Buffer{}
	reader := bytes.NewReader(bytes.Repeat([]byte{1}, 64))
	if err := GenerateKeys(buf, reader); err != nil {
		t.Fatalf("generate: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %d", len(lines))
	}
	private := strings.TrimPrefix(lines[0], "export LEDGERWORKS_CAPABILITY_PRIVATE_KEY=")
	public := strings.TrimPrefix(lines[1], "export LEDGERWORKS_CAPABILITY_PUBLIC_KEY=")
	if private == lines[0] || public == lines[1] {
		t.Fatalf("unexpected output format: %q", buf.String())
	}
	privateBytes, err := capability.DecodeKey(private)
	if err != nil {
		t.Fatalf("decode private key: %v", err)
	}
	publicBytes, err := capability.DecodeKey(public)
	if err != nil {
		t.Fatalf("decode public key: %v", err)
	}
	if len(privateBytes) != ed25519.PrivateKeySize || len(publicBytes) != ed25519.PublicKeySize {
		t.Fatalf("key sizes = %d/%d", len(privateBytes), len(publicBytes))
	}
}

func TestParseScopes(t *testing.T) {
	tests := []struct {
		name    string
		value   string
		want    int
		wantErr bool
	}{
		{name: "single", value: "ledger.mint", want: 1},
		{name: "both with spaces", value: " ledger.mint , escrow.settle ", want: 2},
		{name: "act", value: "ledger.act", want: 1},
		{name: "empty", value: " , ", wantErr: true},
		{name: "unknown", value: "ledger.burn", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			scopes, err := ParseScopes(tt.value)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("parse scopes: %v", err)
			}
			if len(scopes) != tt.want {
				t.Fatalf("scopes = %v, want %d", scopes, tt.want)
			}
		})
	}
}

func TestIssueGrantVerifies(t *testing.T) {
	pub, priv, err := ed25519.GenerateKey(bytes.NewReader(bytes.Repeat([]byte{7}, 64)))
	if err != nil {
		t.Fatalf("generate key: %v", err)
	}
	cfg := capability.Config{Issuer: "ledgerworks", Audience: "ledgerworks-ledger"}
	issuer, err := capability.NewIssuer(cfg, priv)
	if err != nil {
		t.Fatalf("new issuer: %v", err)
	}
	verifier, err := capability.NewVerifier(cfg, pub)
	if err != nil {
		t.Fatalf("new verifier: %v", err)
	}

	buf := &bytes.Buffer{}
	if err := IssueGrant(buf, issuer, "ops", time.Hour, []capability.Scope{capability.ScopeEscrowSettle}); err != nil {
		t.Fatalf("issue: %v", err)
	}
	cred, err := verifier.Verify(strings.TrimSpace(buf.String()), capability.ScopeEscrowSettle)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if cred.Subject() != "ops" {
		t.Fatalf("subject = %q, want ops", cred.Subject())
	}
}

func TestIssueGrantRequiresIssuer(t *testing.T) {
	if err := IssueGrant(&bytes.Buffer{}, nil, "ops", time.Hour, []capability.Scope{capability.ScopeMint}); err == nil {
		t.Fatal("expected error")
	}
}
