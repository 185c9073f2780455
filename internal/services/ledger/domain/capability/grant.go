package capability

import (
	"crypto/ed25519"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/louisbranch/ledgerworks/internal/platform/config"
	apperrors "github.com/louisbranch/ledgerworks/internal/platform/errors"
	"github.com/louisbranch/ledgerworks/internal/platform/id"
)

// verifierEnv holds raw env values before validation.
type verifierEnv struct {
	Issuer    string `env:"LEDGERWORKS_CAPABILITY_ISSUER" envDefault:"ledgerworks"`
	Audience  string `env:"LEDGERWORKS_CAPABILITY_AUDIENCE" envDefault:"ledgerworks-ledger"`
	PublicKey string `env:"LEDGERWORKS_CAPABILITY_PUBLIC_KEY"`
}

type issuerEnv struct {
	verifierEnv
	PrivateKey string `env:"LEDGERWORKS_CAPABILITY_PRIVATE_KEY"`
}

// Config describes how grants are signed and checked.
type Config struct {
	Issuer   string
	Audience string
	Now      func() time.Time
}

type grantClaims struct {
	jwt.RegisteredClaims
	Scopes []string `json:"scopes"`
}

// Verifier checks signed grants.
type Verifier struct {
	cfg Config
	key ed25519.PublicKey
}

// NewVerifier creates a verifier for grants signed by key.
func NewVerifier(cfg Config, key ed25519.PublicKey) (*Verifier, error) {
	if strings.TrimSpace(cfg.Issuer) == "" || strings.TrimSpace(cfg.Audience) == "" {
		return nil, errors.New("capability issuer and audience are required")
	}
	if len(key) != ed25519.PublicKeySize {
		return nil, fmt.Errorf("capability public key must be %d bytes", ed25519.PublicKeySize)
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &Verifier{cfg: cfg, key: key}, nil
}

// VerifierFromEnv loads verifier configuration. It returns nil and no error
// when no public key is configured, leaving privileged remote calls disabled.
func VerifierFromEnv(now func() time.Time) (*Verifier, error) {
	var raw verifierEnv
	if err := config.ParseEnv(&raw); err != nil {
		return nil, err
	}
	if strings.TrimSpace(raw.PublicKey) == "" {
		return nil, nil
	}
	keyBytes, err := DecodeKey(raw.PublicKey)
	if err != nil {
		return nil, fmt.Errorf("decode capability public key: %w", err)
	}
	return NewVerifier(Config{Issuer: raw.Issuer, Audience: raw.Audience, Now: now}, ed25519.PublicKey(keyBytes))
}

// Verify parses grant and returns a credential when it is valid and
// carries scope.
func (v *Verifier) Verify(grant string, scope Scope) (Credential, error) {
	if v == nil {
		return Credential{}, apperrors.New(apperrors.CodeCapabilityInvalid, "capability verification is not configured")
	}
	grant = strings.TrimSpace(grant)
	if grant == "" {
		return Credential{}, apperrors.New(apperrors.CodeCapabilityInvalid, "capability grant is required")
	}

	var parsed grantClaims
	_, err := jwt.ParseWithClaims(grant, &parsed, func(*jwt.Token) (any, error) {
		return v.key, nil
	},
		jwt.WithValidMethods([]string{"EdDSA"}),
		jwt.WithoutClaimsValidation(),
	)
	if err != nil {
		return Credential{}, mapJWTError(err)
	}

	if parsed.Issuer != v.cfg.Issuer {
		return Credential{}, apperrors.WithMetadata(apperrors.CodeCapabilityInvalid, "capability issuer mismatch", map[string]string{"field": "issuer"})
	}
	if !audienceContains(parsed.Audience, v.cfg.Audience) {
		return Credential{}, apperrors.WithMetadata(apperrors.CodeCapabilityInvalid, "capability audience mismatch", map[string]string{"field": "audience"})
	}
	if parsed.ID == "" || strings.TrimSpace(parsed.Subject) == "" {
		return Credential{}, apperrors.New(apperrors.CodeCapabilityInvalid, "capability jti and sub are required")
	}
	if parsed.ExpiresAt == nil {
		return Credential{}, apperrors.New(apperrors.CodeCapabilityInvalid, "capability exp is required")
	}
	now := v.cfg.Now().UTC()
	exp := parsed.ExpiresAt.Time.UTC()
	if !exp.After(now) {
		return Credential{}, apperrors.New(apperrors.CodeCapabilityExpired, "capability grant is expired")
	}
	if parsed.NotBefore != nil && now.Before(parsed.NotBefore.Time) {
		return Credential{}, apperrors.New(apperrors.CodeCapabilityInvalid, "capability grant not active yet")
	}

	cred := Credential{subject: parsed.Subject, grantID: parsed.ID, expiresAt: exp}
	for _, s := range parsed.Scopes {
		cred.scopes = append(cred.scopes, Scope(s))
	}
	if !cred.Allows(scope) {
		return Credential{}, apperrors.WithMetadata(apperrors.CodeCapabilityScope, "capability grant lacks scope", map[string]string{"scope": string(scope)})
	}
	return cred, nil
}

// Issuer signs grants.
type Issuer struct {
	cfg Config
	key ed25519.PrivateKey
}

// NewIssuer creates an issuer signing with key.
func NewIssuer(cfg Config, key ed25519.PrivateKey) (*Issuer, error) {
	if strings.TrimSpace(cfg.Issuer) == "" || strings.TrimSpace(cfg.Audience) == "" {
		return nil, errors.New("capability issuer and audience are required")
	}
	if len(key) != ed25519.PrivateKeySize {
		return nil, fmt.Errorf("capability private key must be %d bytes", ed25519.PrivateKeySize)
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &Issuer{cfg: cfg, key: key}, nil
}

// IssuerFromEnv loads issuer configuration from the environment.
func IssuerFromEnv(now func() time.Time) (*Issuer, error) {
	var raw issuerEnv
	if err := config.ParseEnv(&raw); err != nil {
		return nil, err
	}
	if strings.TrimSpace(raw.PrivateKey) == "" {
		return nil, errors.New("LEDGERWORKS_CAPABILITY_PRIVATE_KEY is required")
	}
	keyBytes, err := DecodeKey(raw.PrivateKey)
	if err != nil {
		return nil, fmt.Errorf("decode capability private key: %w", err)
	}
	return NewIssuer(Config{Issuer: raw.Issuer, Audience: raw.Audience, Now: now}, ed25519.PrivateKey(keyBytes))
}

// Issue signs a grant of scopes to subject valid for ttl.
func (i *Issuer) Issue(subject string, ttl time.Duration, scopes ...Scope) (string, error) {
	subject = strings.TrimSpace(subject)
	if subject == "" {
		return "", errors.New("subject is required")
	}
	if ttl <= 0 {
		return "", errors.New("ttl must be positive")
	}
	if len(scopes) == 0 {
		return "", errors.New("at least one scope is required")
	}
	names := make([]string, 0, len(scopes))
	for _, s := range scopes {
		if !KnownScope(s) {
			return "", fmt.Errorf("unknown scope %q", s)
		}
		names = append(names, string(s))
	}
	jti, err := id.NewID()
	if err != nil {
		return "", err
	}
	now := i.cfg.Now().UTC()
	claims := grantClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    i.cfg.Issuer,
			Subject:   subject,
			Audience:  jwt.ClaimStrings{i.cfg.Audience},
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			ID:        jti,
		},
		Scopes: names,
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodEdDSA, claims).SignedString(i.key)
	if err != nil {
		return "", fmt.Errorf("sign capability grant: %w", err)
	}
	return signed, nil
}

// mapJWTError translates jwt library errors to application errors.
func mapJWTError(err error) error {
	if errors.Is(err, jwt.ErrTokenSignatureInvalid) || errors.Is(err, jwt.ErrEd25519Verification) {
		return apperrors.New(apperrors.CodeCapabilityInvalid, "capability signature is invalid")
	}
	if errors.Is(err, jwt.ErrTokenUnverifiable) {
		return apperrors.New(apperrors.CodeCapabilityInvalid, "capability alg is invalid")
	}
	return apperrors.Wrap(apperrors.CodeCapabilityInvalid, "capability grant is invalid", err)
}

func audienceContains(aud jwt.ClaimStrings, value string) bool {
	for _, item := range aud {
		if item == value {
			return true
		}
	}
	return false
}

// EncodeKey renders key material the way DecodeKey reads it.
func EncodeKey(key []byte) string {
	return base64.RawStdEncoding.EncodeToString(key)
}

// DecodeKey accepts raw or padded standard base64.
func DecodeKey(value string) ([]byte, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil, errors.New("empty base64 value")
	}
	decoded, err := base64.RawStdEncoding.DecodeString(value)
	if err == nil {
		return decoded, nil
	}
	return base64.StdEncoding.DecodeString(value)
}
