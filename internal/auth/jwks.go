package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync/atomic"
	"time"

	jose "github.com/go-jose/go-jose/v4"
)

// KeySource fetches the identity provider's current signing-key set.
type KeySource interface {
	Fetch(ctx context.Context) (*jose.JSONWebKeySet, error)
}

// HTTPKeySource retrieves the key set from a JWKS well-known endpoint.
type HTTPKeySource struct {
	URL    string
	Client *http.Client
}

func NewHTTPKeySource(url string) *HTTPKeySource {
	return &HTTPKeySource{
		URL:    url,
		Client: &http.Client{Timeout: 5 * time.Second},
	}
}

func (s *HTTPKeySource) Fetch(ctx context.Context) (*jose.JSONWebKeySet, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.URL, nil)
	if err != nil {
		return nil, fmt.Errorf("jwks request: %w", err)
	}
	resp, err := s.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("jwks fetch: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("jwks fetch: unexpected status %d", resp.StatusCode)
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("jwks read: %w", err)
	}
	var set jose.JSONWebKeySet
	if err := json.Unmarshal(body, &set); err != nil {
		return nil, fmt.Errorf("jwks decode: %w", err)
	}
	return &set, nil
}

type cachedKeys struct {
	set       *jose.JSONWebKeySet
	fetchedAt time.Time
}

// KeyCache holds the signing-key set together with its fetch time and swaps
// it atomically on refresh, so concurrent readers never observe a
// half-written entry. Concurrent refreshes after TTL expiry are allowed;
// they are idempotent, at worst wasteful.
type KeyCache struct {
	source KeySource
	ttl    time.Duration
	now    func() time.Time

	current atomic.Pointer[cachedKeys]
}

func NewKeyCache(source KeySource, ttl time.Duration) *KeyCache {
	return &KeyCache{source: source, ttl: ttl, now: time.Now}
}

// Keys returns the cached key set, refreshing it from the source when the
// TTL has elapsed or nothing is cached yet.
func (c *KeyCache) Keys(ctx context.Context) (*jose.JSONWebKeySet, error) {
	if cached := c.current.Load(); cached != nil && c.now().Sub(cached.fetchedAt) <= c.ttl {
		return cached.set, nil
	}
	set, err := c.source.Fetch(ctx)
	if err != nil {
		return nil, err
	}
	c.current.Store(&cachedKeys{set: set, fetchedAt: c.now()})
	return set, nil
}
