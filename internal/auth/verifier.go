package auth

import (
	"context"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/biey-root/serverless-rest-api/internal/domain"
)

// TokenVerifier validates a raw bearer token and produces the request
// principal. Failures are *Error values.
type TokenVerifier interface {
	Verify(ctx context.Context, rawToken string) (domain.Principal, error)
}

// VerifierConfig carries the expectations a token must meet.
type VerifierConfig struct {
	Issuer string
	// Audience is skipped when empty.
	Audience string
	// TokenUse is the expected token_use claim, e.g. "access" or "id".
	TokenUse string
	// RequiredGroup, when set, must appear in the token's group claim.
	RequiredGroup string
	// KeyTTL bounds how long a fetched key set is reused.
	KeyTTL time.Duration
}

// Verifier checks RS256 signatures against the identity provider's published
// key set, plus issuer, audience, expiry, token use and group membership.
type Verifier struct {
	cfg  VerifierConfig
	keys *KeyCache
}

func NewVerifier(cfg VerifierConfig, source KeySource) *Verifier {
	ttl := cfg.KeyTTL
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &Verifier{cfg: cfg, keys: NewKeyCache(source, ttl)}
}

func (v *Verifier) Verify(ctx context.Context, rawToken string) (domain.Principal, error) {
	set, err := v.keys.Keys(ctx)
	if err != nil {
		return domain.Principal{}, errKeySetUnavailable()
	}

	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{"RS256"}),
		jwt.WithIssuer(v.cfg.Issuer),
		jwt.WithExpirationRequired(),
		jwt.WithIssuedAt(),
	}
	if v.cfg.Audience != "" {
		opts = append(opts, jwt.WithAudience(v.cfg.Audience))
	}

	claims := jwt.MapClaims{}
	_, err = jwt.NewParser(opts...).ParseWithClaims(rawToken, claims, func(t *jwt.Token) (any, error) {
		kid, _ := t.Header["kid"].(string)
		if kid == "" {
			return nil, errors.New("token header missing kid")
		}
		for _, key := range set.Key(kid) {
			if key.Use == "" || key.Use == "sig" {
				return key.Key, nil
			}
		}
		return nil, errors.New("no matching signing key")
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return domain.Principal{}, errExpired()
		}
		return domain.Principal{}, errInvalidToken(err.Error())
	}

	if _, ok := claims["iat"]; !ok {
		return domain.Principal{}, errInvalidToken("token missing iat claim")
	}
	if v.cfg.TokenUse != "" {
		if use, _ := claims["token_use"].(string); use != v.cfg.TokenUse {
			return domain.Principal{}, errInvalidToken("token_use must be '" + v.cfg.TokenUse + "'")
		}
	}

	groups := claimGroups(claims)
	if v.cfg.RequiredGroup != "" && !contains(groups, v.cfg.RequiredGroup) {
		return domain.Principal{}, errInvalidToken("required group missing")
	}

	return principalFromClaims(claims, groups), nil
}

func principalFromClaims(claims jwt.MapClaims, groups []string) domain.Principal {
	sub, _ := claims["sub"].(string)
	username, _ := claims["username"].(string)
	if username == "" {
		username, _ = claims["cognito:username"].(string)
	}
	scope, _ := claims["scope"].(string)
	return domain.Principal{
		Sub:      sub,
		Username: username,
		Scope:    scope,
		Groups:   groups,
		Claims:   claims,
	}
}

func claimGroups(claims jwt.MapClaims) []string {
	raw, ok := claims["cognito:groups"].([]any)
	if !ok {
		raw, _ = claims["groups"].([]any)
	}
	groups := make([]string, 0, len(raw))
	for _, g := range raw {
		if s, ok := g.(string); ok {
			groups = append(groups, s)
		}
	}
	return groups
}

func contains(list []string, want string) bool {
	for _, v := range list {
		if v == want {
			return true
		}
	}
	return false
}
