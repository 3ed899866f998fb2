package oidc

import (
	"context"
	"crypto/rsa"
	"encoding/base64"
	"encoding/json"
	"errors"
	"math/big"
	"net/http"
	"sync"
	"time"
)

const (
	jwksTTL           = 5 * time.Minute
	jwksFetchTimeout  = 5 * time.Second
	jwksFetchAttempts = 3
	jwksRetryBase     = 200 * time.Millisecond
)

// jwksCache holds the issuer's RSA keys for jwksTTL. An unknown kid forces a
// refresh; concurrent refreshes collapse into one fetch.
type jwksCache struct {
	url        string
	httpClient *http.Client
	now        func() time.Time

	mu        sync.RWMutex
	keys      map[string]*rsa.PublicKey
	fetchedAt time.Time
	gen       uint64

	refreshMu sync.Mutex
}

type jwk struct {
	Kty string `json:"kty"`
	Kid string `json:"kid"`
	N   string `json:"n"`
	E   string `json:"e"`
}

func newJWKSCache(url string, httpClient *http.Client) *jwksCache {
	return &jwksCache{
		url:        url,
		httpClient: httpClient,
		now:        time.Now,
		keys:       map[string]*rsa.PublicKey{},
	}
}

func (c *jwksCache) getKey(ctx context.Context, kid string) (*rsa.PublicKey, error) {
	if kid == "" {
		return nil, errors.New("kid is required")
	}
	gen := c.generation()
	if key, ok := c.lookup(kid); ok {
		return key, nil
	}

	c.refreshMu.Lock()
	defer c.refreshMu.Unlock()
	// another caller refreshed while we waited
	if c.generation() != gen {
		if key, ok := c.lookup(kid); ok {
			return key, nil
		}
	}
	if err := c.refresh(ctx); err != nil {
		return nil, err
	}
	if key, ok := c.lookup(kid); ok {
		return key, nil
	}
	return nil, errors.New("jwks key not found")
}

func (c *jwksCache) lookup(kid string) (*rsa.PublicKey, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.fetchedAt.IsZero() || c.now().Sub(c.fetchedAt) > jwksTTL {
		return nil, false
	}
	key, ok := c.keys[kid]
	return key, ok
}

func (c *jwksCache) generation() uint64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.gen
}

func (c *jwksCache) refresh(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, jwksFetchTimeout)
	defer cancel()

	var lastErr error
	delay := jwksRetryBase
	for attempt := 0; attempt < jwksFetchAttempts; attempt++ {
		if attempt > 0 {
			timer := time.NewTimer(delay)
			select {
			case <-ctx.Done():
				timer.Stop()
				return ctx.Err()
			case <-timer.C:
			}
			delay *= 2
		}
		keys, err := c.fetch(ctx)
		if err == nil {
			c.mu.Lock()
			c.keys = keys
			c.fetchedAt = c.now()
			c.gen++
			c.mu.Unlock()
			return nil
		}
		lastErr = err
	}
	return lastErr
}

func (c *jwksCache) fetch(ctx context.Context) (map[string]*rsa.PublicKey, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, errors.New("jwks fetch failed")
	}
	var payload struct {
		Keys []jwk `json:"keys"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, err
	}
	keys := make(map[string]*rsa.PublicKey, len(payload.Keys))
	for _, k := range payload.Keys {
		if k.Kty != "RSA" || k.Kid == "" {
			continue
		}
		pub, err := rsaPublicKey(k)
		if err != nil {
			continue
		}
		keys[k.Kid] = pub
	}
	if len(keys) == 0 {
		return nil, errors.New("jwks contains no usable keys")
	}
	return keys, nil
}

func rsaPublicKey(k jwk) (*rsa.PublicKey, error) {
	nBytes, err := base64.RawURLEncoding.DecodeString(k.N)
	if err != nil || len(nBytes) == 0 {
		return nil, errors.New("invalid rsa modulus")
	}
	eBytes, err := base64.RawURLEncoding.DecodeString(k.E)
	if err != nil || len(eBytes) == 0 || len(eBytes) > 4 {
		return nil, errors.New("invalid rsa exponent")
	}
	e := new(big.Int).SetBytes(eBytes).Int64()
	if e <= 1 {
		return nil, errors.New("invalid rsa exponent")
	}
	return &rsa.PublicKey{N: new(big.Int).SetBytes(nBytes), E: int(e)}, nil
}
