package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"sync"
	"time"
)

// IdentifierLookupCache remembers login identifiers that matched no user so
// repeated attempts skip the store. Entries expire after the configured TTL
// and are forgotten as soon as a user claims the identifier.
type IdentifierLookupCache interface {
	IsKnownMissing(ctx context.Context, kind, value string) (bool, error)
	MarkMissing(ctx context.Context, kind, value string) error
	Forget(ctx context.Context, kind, value string) error
}

type NoopIdentifierLookupCache struct{}

func NewNoopIdentifierLookupCache() *NoopIdentifierLookupCache {
	return &NoopIdentifierLookupCache{}
}

func (NoopIdentifierLookupCache) IsKnownMissing(context.Context, string, string) (bool, error) {
	return false, nil
}

func (NoopIdentifierLookupCache) MarkMissing(context.Context, string, string) error { return nil }

func (NoopIdentifierLookupCache) Forget(context.Context, string, string) error { return nil }

type InMemoryIdentifierLookupCache struct {
	mu      sync.Mutex
	ttl     time.Duration
	now     func() time.Time
	entries map[string]time.Time
}

func NewInMemoryIdentifierLookupCache(ttl time.Duration) *InMemoryIdentifierLookupCache {
	return &InMemoryIdentifierLookupCache{
		ttl:     ttl,
		now:     time.Now,
		entries: make(map[string]time.Time),
	}
}

func (c *InMemoryIdentifierLookupCache) IsKnownMissing(_ context.Context, kind, value string) (bool, error) {
	key := identifierCacheKey(kind, value)
	c.mu.Lock()
	defer c.mu.Unlock()
	expiresAt, ok := c.entries[key]
	if !ok {
		return false, nil
	}
	if !c.now().Before(expiresAt) {
		delete(c.entries, key)
		return false, nil
	}
	return true, nil
}

func (c *InMemoryIdentifierLookupCache) MarkMissing(_ context.Context, kind, value string) error {
	if c.ttl <= 0 {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[identifierCacheKey(kind, value)] = c.now().Add(c.ttl)
	return nil
}

func (c *InMemoryIdentifierLookupCache) Forget(_ context.Context, kind, value string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, identifierCacheKey(kind, value))
	return nil
}

// identifierCacheKey never exposes the raw identifier in cache keys.
func identifierCacheKey(kind, value string) string {
	sum := sha256.Sum256([]byte(strings.TrimSpace(value)))
	return normalizeKind(kind) + ":" + hex.EncodeToString(sum[:])
}

func normalizeKind(kind string) string {
	v := strings.ToLower(strings.TrimSpace(kind))
	if v == "" {
		return "unknown"
	}
	return v
}
