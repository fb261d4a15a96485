package connectors

import (
	"sync"

	"github.com/benbjohnson/clock"
)

// TokenCache holds at most one credential and answers whether it is still
// usable according to its clock.
type TokenCache struct {
	mu    sync.RWMutex
	clock clock.Clock
	cred  *Credential
}

func NewTokenCache(clk clock.Clock) *TokenCache {
	if clk == nil {
		clk = clock.New()
	}
	return &TokenCache{clock: clk}
}

// Get returns the cached token when its expiry is strictly in the future.
func (c *TokenCache) Get() (string, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.cred == nil || c.cred.AccessToken == "" {
		return "", false
	}
	if !c.cred.ExpiresAt.After(c.clock.Now()) {
		return "", false
	}
	return c.cred.AccessToken, true
}

// Set overwrites the cached credential. Credentials without an expiry are
// dropped.
func (c *TokenCache) Set(cred Credential) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if cred.ExpiresAt.IsZero() {
		c.cred = nil
		return
	}
	c.cred = &cred
}

func (c *TokenCache) Invalidate() {
	c.mu.Lock()
	c.cred = nil
	c.mu.Unlock()
}
