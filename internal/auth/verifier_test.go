package auth

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"errors"
	"testing"
	"time"

	jose "github.com/go-jose/go-jose/v4"
	"github.com/golang-jwt/jwt/v5"
)

const (
	testIssuer = "https://cognito-idp.us-east-1.amazonaws.com/us-east-1_TEST"
	testKID    = "test-key-1"
)

type staticKeySource struct {
	set     *jose.JSONWebKeySet
	err     error
	fetches int
}

func (s *staticKeySource) Fetch(ctx context.Context) (*jose.JSONWebKeySet, error) {
	s.fetches++
	if s.err != nil {
		return nil, s.err
	}
	return s.set, nil
}

func newTestKeys(t *testing.T) (*rsa.PrivateKey, *jose.JSONWebKeySet) {
	t.Helper()
	priv, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatalf("generate key: %v", err)
	}
	set := &jose.JSONWebKeySet{Keys: []jose.JSONWebKey{{
		Key:       &priv.PublicKey,
		KeyID:     testKID,
		Algorithm: "RS256",
		Use:       "sig",
	}}}
	return priv, set
}

func signToken(t *testing.T, priv *rsa.PrivateKey, kid string, claims jwt.MapClaims) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodRS256, claims)
	token.Header["kid"] = kid
	signed, err := token.SignedString(priv)
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return signed
}

func baseClaims() jwt.MapClaims {
	now := time.Now()
	return jwt.MapClaims{
		"sub":       "user-123",
		"username":  "alice",
		"iss":       testIssuer,
		"iat":       now.Add(-time.Minute).Unix(),
		"exp":       now.Add(time.Hour).Unix(),
		"token_use": "access",
		"scope":     "todos/read todos/write",
	}
}

func newTestVerifier(source KeySource, cfg VerifierConfig) *Verifier {
	if cfg.Issuer == "" {
		cfg.Issuer = testIssuer
	}
	if cfg.TokenUse == "" {
		cfg.TokenUse = "access"
	}
	return NewVerifier(cfg, source)
}

func TestVerifyValidToken(t *testing.T) {
	priv, set := newTestKeys(t)
	v := newTestVerifier(&staticKeySource{set: set}, VerifierConfig{})

	principal, err := v.Verify(context.Background(), signToken(t, priv, testKID, baseClaims()))
	if err != nil {
		t.Fatalf("Verify() error = %v", err)
	}
	if principal.Sub != "user-123" {
		t.Errorf("principal.Sub = %q, want user-123", principal.Sub)
	}
	if principal.Username != "alice" {
		t.Errorf("principal.Username = %q, want alice", principal.Username)
	}
	if principal.Scope != "todos/read todos/write" {
		t.Errorf("principal.Scope = %q", principal.Scope)
	}
}

func TestVerifyCognitoUsernameFallback(t *testing.T) {
	priv, set := newTestKeys(t)
	v := newTestVerifier(&staticKeySource{set: set}, VerifierConfig{})

	claims := baseClaims()
	delete(claims, "username")
	claims["cognito:username"] = "bob"

	principal, err := v.Verify(context.Background(), signToken(t, priv, testKID, claims))
	if err != nil {
		t.Fatalf("Verify() error = %v", err)
	}
	if principal.Username != "bob" {
		t.Errorf("principal.Username = %q, want bob", principal.Username)
	}
}

func TestVerifyFailures(t *testing.T) {
	priv, set := newTestKeys(t)
	otherPriv, _ := newTestKeys(t)

	tests := []struct {
		name     string
		cfg      VerifierConfig
		mutate   func(jwt.MapClaims)
		kid      string
		priv     *rsa.PrivateKey
		wantCode string
	}{
		{
			name:     "expired",
			mutate:   func(c jwt.MapClaims) { c["exp"] = time.Now().Add(-time.Hour).Unix() },
			wantCode: "TOKEN_EXPIRED",
		},
		{
			name:     "wrong issuer",
			mutate:   func(c jwt.MapClaims) { c["iss"] = "https://evil.example.com" },
			wantCode: "INVALID_TOKEN",
		},
		{
			name:     "missing exp",
			mutate:   func(c jwt.MapClaims) { delete(c, "exp") },
			wantCode: "INVALID_TOKEN",
		},
		{
			name:     "missing iat",
			mutate:   func(c jwt.MapClaims) { delete(c, "iat") },
			wantCode: "INVALID_TOKEN",
		},
		{
			name:     "wrong token use",
			mutate:   func(c jwt.MapClaims) { c["token_use"] = "id" },
			wantCode: "INVALID_TOKEN",
		},
		{
			name:     "unknown kid",
			kid:      "other-key",
			wantCode: "INVALID_TOKEN",
		},
		{
			name:     "wrong signing key",
			priv:     otherPriv,
			wantCode: "INVALID_TOKEN",
		},
		{
			name:     "audience mismatch",
			cfg:      VerifierConfig{Audience: "client-1"},
			mutate:   func(c jwt.MapClaims) { c["aud"] = "client-2" },
			wantCode: "INVALID_TOKEN",
		},
		{
			name:     "required group absent",
			cfg:      VerifierConfig{RequiredGroup: "admins"},
			mutate:   func(c jwt.MapClaims) { c["cognito:groups"] = []string{"users"} },
			wantCode: "INVALID_TOKEN",
		},
		{
			name:     "no group claim at all",
			cfg:      VerifierConfig{RequiredGroup: "admins"},
			wantCode: "INVALID_TOKEN",
		},
		{
			name:     "garbage token",
			wantCode: "INVALID_TOKEN",
			mutate:   nil,
			kid:      "garbage",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := newTestVerifier(&staticKeySource{set: set}, tt.cfg)

			claims := baseClaims()
			if tt.mutate != nil {
				tt.mutate(claims)
			}
			kid := tt.kid
			if kid == "" {
				kid = testKID
			}
			signer := tt.priv
			if signer == nil {
				signer = priv
			}

			raw := signToken(t, signer, kid, claims)
			if tt.name == "garbage token" {
				raw = "not.a.jwt"
			}

			_, err := v.Verify(context.Background(), raw)
			var authErr *Error
			if !errors.As(err, &authErr) {
				t.Fatalf("Verify() error = %v, want *auth.Error", err)
			}
			if authErr.Code != tt.wantCode {
				t.Errorf("Verify() code = %s, want %s", authErr.Code, tt.wantCode)
			}
		})
	}
}

func TestVerifyAudienceSkippedWhenUnconfigured(t *testing.T) {
	priv, set := newTestKeys(t)
	v := newTestVerifier(&staticKeySource{set: set}, VerifierConfig{})

	claims := baseClaims()
	claims["aud"] = "whatever-client"
	if _, err := v.Verify(context.Background(), signToken(t, priv, testKID, claims)); err != nil {
		t.Fatalf("Verify() error = %v, want nil when no audience configured", err)
	}
}

func TestVerifyRequiredGroupPresent(t *testing.T) {
	priv, set := newTestKeys(t)
	v := newTestVerifier(&staticKeySource{set: set}, VerifierConfig{RequiredGroup: "admins"})

	claims := baseClaims()
	claims["cognito:groups"] = []string{"users", "admins"}

	principal, err := v.Verify(context.Background(), signToken(t, priv, testKID, claims))
	if err != nil {
		t.Fatalf("Verify() error = %v", err)
	}
	if len(principal.Groups) != 2 {
		t.Errorf("principal.Groups = %v, want both groups", principal.Groups)
	}
}

func TestVerifyPlainGroupsClaimFallback(t *testing.T) {
	priv, set := newTestKeys(t)
	v := newTestVerifier(&staticKeySource{set: set}, VerifierConfig{RequiredGroup: "admins"})

	claims := baseClaims()
	claims["groups"] = []string{"admins"}

	if _, err := v.Verify(context.Background(), signToken(t, priv, testKID, claims)); err != nil {
		t.Fatalf("Verify() error = %v, want nil with plain groups claim", err)
	}
}

func TestVerifyKeySetUnavailable(t *testing.T) {
	v := newTestVerifier(&staticKeySource{err: errors.New("connection refused")}, VerifierConfig{})

	_, err := v.Verify(context.Background(), "irrelevant")
	var authErr *Error
	if !errors.As(err, &authErr) {
		t.Fatalf("Verify() error = %v, want *auth.Error", err)
	}
	if authErr.Code != "JWKS_FETCH_FAILED" {
		t.Errorf("Verify() code = %s, want JWKS_FETCH_FAILED", authErr.Code)
	}
	if authErr.Status != 502 {
		t.Errorf("Verify() status = %d, want 502", authErr.Status)
	}
}

func TestKeyCacheTTL(t *testing.T) {
	_, set := newTestKeys(t)
	source := &staticKeySource{set: set}

	now := time.Unix(1_700_000_000, 0)
	c := NewKeyCache(source, time.Hour)
	c.now = func() time.Time { return now }

	ctx := context.Background()
	for i := 0; i < 3; i++ {
		if _, err := c.Keys(ctx); err != nil {
			t.Fatalf("Keys() error = %v", err)
		}
	}
	if source.fetches != 1 {
		t.Errorf("fetches within TTL = %d, want 1", source.fetches)
	}

	now = now.Add(2 * time.Hour)
	if _, err := c.Keys(ctx); err != nil {
		t.Fatalf("Keys() error = %v", err)
	}
	if source.fetches != 2 {
		t.Errorf("fetches after TTL expiry = %d, want 2", source.fetches)
	}
}
