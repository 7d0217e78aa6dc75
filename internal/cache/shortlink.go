package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/tautlabs/taut/internal/model"
)

// Cache key prefixes and TTLs.
const (
	shortLinkKeyPrefix = "shortlink:"
	negCacheKeySuffix  = ":neg"

	// DefaultShortLinkTTL is the TTL for cached short link data.
	DefaultShortLinkTTL = 24 * time.Hour

	// NegativeCacheTTL is the TTL for negative cache entries.
	NegativeCacheTTL = 5 * time.Minute
)

// Common cache errors.
var (
	ErrCacheMiss = errors.New("cache miss")
)

// GetShortLink retrieves a short link from cache by short code.
// Returns ErrCacheMiss if not found.
func (c *Cache) GetShortLink(ctx context.Context, shortCode string) (*model.CachedShortLink, error) {
	key := shortLinkKeyPrefix + shortCode

	result, err := c.client.HGetAll(ctx, key).Result()
	if err != nil {
		return nil, fmt.Errorf("redis hgetall failed: %w", err)
	}

	if len(result) == 0 {
		return nil, ErrCacheMiss
	}

	cached := &model.CachedShortLink{
		Destination: result["destination"],
		Protected:   result["protected"],
		ExpiresAt:   result["expires_at"],
		OwnerID:     result["owner_id"],
		LinkID:      result["link_id"],
	}

	return cached, nil
}

// SetShortLink stores a short link in cache. The password hash is never
// cached; only the protected flag is, so the verification path always
// re-reads from PostgreSQL.
func (c *Cache) SetShortLink(ctx context.Context, shortCode string, link *model.ShortLink) error {
	key := shortLinkKeyPrefix + shortCode
	cached := link.ToCachedShortLink()

	ttl := DefaultShortLinkTTL
	if link.ExpiresAt != nil {
		expiresIn := time.Until(*link.ExpiresAt)
		if expiresIn <= 0 {
			c.client.Del(ctx, key, key+negCacheKeySuffix)
			return nil
		}
		if expiresIn < ttl {
			ttl = expiresIn
		}
	}

	fields := map[string]any{
		"destination": cached.Destination,
		"protected":   cached.Protected,
		"owner_id":    cached.OwnerID,
		"link_id":     cached.LinkID,
	}

	if cached.ExpiresAt != "" {
		fields["expires_at"] = cached.ExpiresAt
	}

	pipe := c.client.Pipeline()
	pipe.HSet(ctx, key, fields)
	pipe.Expire(ctx, key, ttl)

	_, err := pipe.Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to cache short link: %w", err)
	}

	// Remove negative cache if exists
	c.client.Del(ctx, key+negCacheKeySuffix)

	return nil
}

// DeleteShortLink removes a short link from cache.
func (c *Cache) DeleteShortLink(ctx context.Context, shortCode string) error {
	key := shortLinkKeyPrefix + shortCode

	pipe := c.client.Pipeline()
	pipe.Del(ctx, key)
	pipe.Del(ctx, key+negCacheKeySuffix)

	_, err := pipe.Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to delete short link from cache: %w", err)
	}

	return nil
}

// IsNegativelyCached checks if a short code is in negative cache.
func (c *Cache) IsNegativelyCached(ctx context.Context, shortCode string) (bool, error) {
	key := shortLinkKeyPrefix + shortCode + negCacheKeySuffix

	exists, err := c.client.Exists(ctx, key).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check negative cache: %w", err)
	}

	return exists > 0, nil
}

// SetNegativeCache marks a short code as not found.
func (c *Cache) SetNegativeCache(ctx context.Context, shortCode string) error {
	key := shortLinkKeyPrefix + shortCode + negCacheKeySuffix

	err := c.client.SetEx(ctx, key, "", NegativeCacheTTL).Err()
	if err != nil {
		return fmt.Errorf("failed to set negative cache: %w", err)
	}

	return nil
}
