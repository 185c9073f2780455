package capability

import (
	"crypto/ed25519"
	"crypto/rand"
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	apperrors "github.com/louisbranch/ledgerworks/internal/platform/errors"
)

var fixedNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func testPair(t *testing.T) (*Issuer, *Verifier) {
	t.Helper()
	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		t.Fatalf("generate key: %v", err)
	}
	cfg := Config{Issuer: "ledgerworks", Audience: "ledger", Now: func() time.Time { return fixedNow }}
	issuer, err := NewIssuer(cfg, priv)
	if err != nil {
		t.Fatalf("new issuer: %v", err)
	}
	verifier, err := NewVerifier(cfg, pub)
	if err != nil {
		t.Fatalf("new verifier: %v", err)
	}
	return issuer, verifier
}

func TestIssueAndVerify(t *testing.T) {
	issuer, verifier := testPair(t)
	grant, err := issuer.Issue("treasury", time.Hour, ScopeMint, ScopeEscrowSettle)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	cred, err := verifier.Verify(grant, ScopeEscrowSettle)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if cred.Subject() != "treasury" || cred.GrantID() == "" {
		t.Fatalf("credential = %+v", cred)
	}
	if !cred.Allows(ScopeMint) {
		t.Fatal("expected mint scope")
	}
	if !cred.ExpiresAt().Equal(fixedNow.Add(time.Hour)) {
		t.Fatalf("expires at = %v", cred.ExpiresAt())
	}
}

func TestVerifyRejectsMissingScope(t *testing.T) {
	issuer, verifier := testPair(t)
	grant, _ := issuer.Issue("judge", time.Hour, ScopeEscrowSettle)

	_, err := verifier.Verify(grant, ScopeMint)
	if apperrors.CodeOf(err) != apperrors.CodeCapabilityScope {
		t.Fatalf("code = %s, want %s", apperrors.CodeOf(err), apperrors.CodeCapabilityScope)
	}
}

func TestVerifyRejectsExpired(t *testing.T) {
	issuer, verifier := testPair(t)
	grant, _ := issuer.Issue("judge", time.Minute, ScopeEscrowSettle)
	verifier.cfg.Now = func() time.Time { return fixedNow.Add(2 * time.Minute) }

	_, err := verifier.Verify(grant, ScopeEscrowSettle)
	if apperrors.CodeOf(err) != apperrors.CodeCapabilityExpired {
		t.Fatalf("code = %s, want %s", apperrors.CodeOf(err), apperrors.CodeCapabilityExpired)
	}
}

func TestVerifyRejectsForeignSignature(t *testing.T) {
	issuer, _ := testPair(t)
	_, otherVerifier := testPair(t)
	grant, _ := issuer.Issue("judge", time.Hour, ScopeMint)

	_, err := otherVerifier.Verify(grant, ScopeMint)
	if !errors.Is(err, apperrors.New(apperrors.CodeCapabilityInvalid, "")) {
		t.Fatalf("err = %v, want invalid capability", err)
	}
}

func TestVerifyRejectsWrongAlgorithm(t *testing.T) {
	_, verifier := testPair(t)
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Issuer:    "ledgerworks",
		Audience:  jwt.ClaimStrings{"ledger"},
		ExpiresAt: jwt.NewNumericDate(fixedNow.Add(time.Hour)),
	})
	signed, err := token.SignedString([]byte("secret"))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	if _, err := verifier.Verify(signed, ScopeMint); apperrors.CodeOf(err) != apperrors.CodeCapabilityInvalid {
		t.Fatalf("err = %v", err)
	}
}

func TestVerifyRejectsAudienceMismatch(t *testing.T) {
	issuer, verifier := testPair(t)
	issuer.cfg.Audience = "elsewhere"
	grant, _ := issuer.Issue("judge", time.Hour, ScopeMint)

	if _, err := verifier.Verify(grant, ScopeMint); apperrors.CodeOf(err) != apperrors.CodeCapabilityInvalid {
		t.Fatalf("err = %v", err)
	}
}

func TestVerifyBlankAndNil(t *testing.T) {
	_, verifier := testPair(t)
	if _, err := verifier.Verify(" ", ScopeMint); apperrors.CodeOf(err) != apperrors.CodeCapabilityInvalid {
		t.Fatalf("err = %v", err)
	}
	var nilVerifier *Verifier
	if _, err := nilVerifier.Verify("x", ScopeMint); apperrors.CodeOf(err) != apperrors.CodeCapabilityInvalid {
		t.Fatalf("err = %v", err)
	}
}

func TestIssueValidation(t *testing.T) {
	issuer, _ := testPair(t)
	if _, err := issuer.Issue("", time.Hour, ScopeMint); err == nil {
		t.Fatal("expected subject error")
	}
	if _, err := issuer.Issue("x", 0, ScopeMint); err == nil {
		t.Fatal("expected ttl error")
	}
	if _, err := issuer.Issue("x", time.Hour); err == nil {
		t.Fatal("expected scope error")
	}
	if _, err := issuer.Issue("x", time.Hour, Scope("root")); err == nil {
		t.Fatal("expected unknown scope error")
	}
}

func TestVerifierFromEnv(t *testing.T) {
	t.Setenv("LEDGERWORKS_CAPABILITY_PUBLIC_KEY", "")
	v, err := VerifierFromEnv(nil)
	if err != nil || v != nil {
		t.Fatalf("verifier = %v, err = %v; want disabled", v, err)
	}

	pub, _, _ := ed25519.GenerateKey(rand.Reader)
	t.Setenv("LEDGERWORKS_CAPABILITY_PUBLIC_KEY", EncodeKey(pub))
	v, err = VerifierFromEnv(nil)
	if err != nil || v == nil {
		t.Fatalf("verifier = %v, err = %v", v, err)
	}

	t.Setenv("LEDGERWORKS_CAPABILITY_PUBLIC_KEY", "AAAA")
	if _, err := VerifierFromEnv(nil); err == nil {
		t.Fatal("expected short key error")
	}
}

func TestIssuerFromEnv(t *testing.T) {
	t.Setenv("LEDGERWORKS_CAPABILITY_PRIVATE_KEY", "")
	if _, err := IssuerFromEnv(nil); err == nil {
		t.Fatal("expected missing key error")
	}
	_, priv, _ := ed25519.GenerateKey(rand.Reader)
	t.Setenv("LEDGERWORKS_CAPABILITY_PRIVATE_KEY", EncodeKey(priv))
	if _, err := IssuerFromEnv(nil); err != nil {
		t.Fatalf("issuer from env: %v", err)
	}
}

func TestLocalCredential(t *testing.T) {
	cred := Local(" ops ", ScopeEscrowSettle)
	if cred.Subject() != "ops" || !cred.Allows(ScopeEscrowSettle) || cred.Allows(ScopeMint) {
		t.Fatalf("credential = %+v", cred)
	}
	var zero Credential
	if zero.Allows(ScopeMint) {
		t.Fatal("zero credential must allow nothing")
	}
}
