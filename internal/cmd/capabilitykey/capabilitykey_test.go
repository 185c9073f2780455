package capabilitykey

import (
	"bytes"
	"crypto/ed25519"
	"crypto/rand"
	"flag"
	"strings"
	"testing"
	"time"

	"github.com/louisbranch/ledgerworks/internal/services/ledger/domain/capability"
)

func TestParseConfigDefaults(t *testing.T) {
	cfg, err := ParseConfig(flag.NewFlagSet("capability-key", flag.ContinueOnError), nil)
	if err != nil {
		t.Fatalf("parse config: %v", err)
	}
	if cfg.Issue || cfg.TTL != time.Hour {
		t.Fatalf("cfg = %+v", cfg)
	}
}

func TestRunGeneratesKeys(t *testing.T) {
	buf := &bytes.Buffer{}
	if err := Run(buf, Config{}); err != nil {
		t.Fatalf("run: %v", err)
	}
	if !strings.Contains(buf.String(), "LEDGERWORKS_CAPABILITY_PUBLIC_KEY=") {
		t.Fatalf("output = %q", buf.String())
	}
}

func TestRunIssuesGrantFromEnv(t *testing.T) {
	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		t.Fatalf("generate key: %v", err)
	}
	t.Setenv("LEDGERWORKS_CAPABILITY_PRIVATE_KEY", capability.EncodeKey(priv))

	cfg, err := ParseConfig(flag.NewFlagSet("capability-key", flag.ContinueOnError),
		[]string{"-issue", "-subject", "ops", "-scopes", "ledger.mint", "-ttl", "10m"})
	if err != nil {
		t.Fatalf("parse config: %v", err)
	}
	buf := &bytes.Buffer{}
	if err := Run(buf, cfg); err != nil {
		t.Fatalf("run: %v", err)
	}

	verifier, err := capability.NewVerifier(capability.Config{Issuer: "ledgerworks", Audience: "ledgerworks-ledger"}, pub)
	if err != nil {
		t.Fatalf("new verifier: %v", err)
	}
	if _, err := verifier.Verify(strings.TrimSpace(buf.String()), capability.ScopeMint); err != nil {
		t.Fatalf("verify issued grant: %v", err)
	}
}

func TestRunIssueRequiresSubject(t *testing.T) {
	if err := Run(&bytes.Buffer{}, Config{Issue: true, Scopes: "ledger.mint", TTL: time.Minute}); err == nil {
		t.Fatal("expected error")
	}
}
