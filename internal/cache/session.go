package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/tautlabs/taut/internal/model"
)

const (
	// sessionCachePrefix is the Redis key prefix for session user cache.
	sessionCachePrefix = "session:user:"
	// sessionCacheTTL is the time-to-live for cached session users.
	sessionCacheTTL = 5 * time.Minute
)

// cachedSessionUser represents a session's user stored in Redis.
type cachedSessionUser struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
	Image string `json:"image"`
}

// GetSessionUser retrieves a cached user by session cache key.
// Returns nil if not found (cache miss).
func (c *Cache) GetSessionUser(ctx context.Context, cacheKey string) (*model.User, error) {
	key := sessionCachePrefix + cacheKey

	data, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		// Cache miss is not an error
		return nil, nil //nolint:nilerr
	}

	var cached cachedSessionUser
	if err := json.Unmarshal(data, &cached); err != nil {
		// Corrupted cache entry - treat as miss
		return nil, nil //nolint:nilerr
	}

	return &model.User{
		ID:    cached.ID,
		Email: cached.Email,
		Name:  cached.Name,
		Image: cached.Image,
	}, nil
}

// SetSessionUser caches the user resolved from a session token.
func (c *Cache) SetSessionUser(ctx context.Context, cacheKey string, user *model.User) error {
	key := sessionCachePrefix + cacheKey

	cached := cachedSessionUser{
		ID:    user.ID,
		Email: user.Email,
		Name:  user.Name,
		Image: user.Image,
	}

	data, err := json.Marshal(cached)
	if err != nil {
		return fmt.Errorf("marshal session user: %w", err)
	}

	return c.client.Set(ctx, key, data, sessionCacheTTL).Err()
}

// DeleteSessionUser removes a cached session user.
// Used on logout.
func (c *Cache) DeleteSessionUser(ctx context.Context, cacheKey string) error {
	key := sessionCachePrefix + cacheKey
	return c.client.Del(ctx, key).Err()
}
