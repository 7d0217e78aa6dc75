// Package model defines domain entities for the application.
package model

import (
	"strconv"
	"time"
)

// ShortLink represents a shortened URL entity.
// The short code is immutable once created and globally unique.
type ShortLink struct {
	ID           string     `json:"id"`
	ShortCode    string     `json:"short_code"`
	Destination  string     `json:"destination"`
	PasswordHash string     `json:"-"` // Argon2id PHC string, empty when unprotected
	ExpiresAt    *time.Time `json:"expires_at,omitempty"`
	OwnerID      string     `json:"owner_id"`
	CreatedAt    time.Time  `json:"created_at"`
}

// IsExpired returns true if the link has an expiry timestamp in the past.
func (l *ShortLink) IsExpired() bool {
	return l.ExpiresAt != nil && time.Now().After(*l.ExpiresAt)
}

// IsProtected returns true if the link requires a password before redirecting.
func (l *ShortLink) IsProtected() bool {
	return l.PasswordHash != ""
}

// CachedShortLink represents short link data stored in Redis.
// Uses string types for Redis hash compatibility. The password hash is
// never cached; the verification path always re-reads from the store.
type CachedShortLink struct {
	Destination string `redis:"destination"`
	Protected   string `redis:"protected"`  // "1" or "0"
	ExpiresAt   string `redis:"expires_at"` // Unix timestamp or empty
	OwnerID     string `redis:"owner_id"`
	LinkID      string `redis:"link_id"`
}

// ToShortLink converts CachedShortLink to the domain model.
// The PasswordHash field is left empty; callers must treat Protected
// separately via the returned protected flag.
func (c *CachedShortLink) ToShortLink(shortCode string) (*ShortLink, bool) {
	link := &ShortLink{
		ID:          c.LinkID,
		ShortCode:   shortCode,
		Destination: c.Destination,
		OwnerID:     c.OwnerID,
	}

	if c.ExpiresAt != "" {
		if ts, err := strconv.ParseInt(c.ExpiresAt, 10, 64); err == nil {
			t := time.Unix(ts, 0)
			link.ExpiresAt = &t
		}
	}

	return link, c.Protected == "1"
}

// ToCachedShortLink converts the domain model to its cache representation.
func (l *ShortLink) ToCachedShortLink() *CachedShortLink {
	cached := &CachedShortLink{
		Destination: l.Destination,
		Protected:   boolToString(l.IsProtected()),
		OwnerID:     l.OwnerID,
		LinkID:      l.ID,
	}

	if l.ExpiresAt != nil {
		cached.ExpiresAt = strconv.FormatInt(l.ExpiresAt.Unix(), 10)
	}

	return cached
}

// boolToString converts boolean to "1" or "0".
func boolToString(b bool) string {
	if b {
		return "1"
	}
	return "0"
}
