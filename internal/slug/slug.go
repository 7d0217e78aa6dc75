// Package slug provides validation and generation for the path segments
// used as lookup keys: short link codes and microsite slugs. Both
// namespaces share the same character-class rules and reserved-word
// blacklist so the two creation paths cannot diverge.
package slug

import (
	"errors"
	"regexp"
	"strings"
)

// Length bounds per namespace.
const (
	// MinAliasLength is the minimum length for a custom short code.
	MinAliasLength = 3

	// MaxAliasLength is the maximum length for a custom short code.
	MaxAliasLength = 32

	// MinSlugLength is the minimum length for a microsite slug.
	MinSlugLength = 2

	// MaxSlugLength is the maximum length for a microsite slug.
	MaxSlugLength = 60
)

// Validation errors.
var (
	ErrTooShort    = errors.New("slug is too short")
	ErrTooLong     = errors.New("slug exceeds maximum length")
	ErrInvalidChar = errors.New("slug contains invalid characters")
	ErrReserved    = errors.New("slug is reserved")
)

// reserved contains path segments that cannot be claimed in either
// namespace. These are system routes and common abuse targets.
var reserved = map[string]bool{
	// System routes
	"api":      true,
	"auth":     true,
	"healthz":  true,
	"readyz":   true,
	"metrics":  true,
	"static":   true,
	"assets":   true,
	"l":        true,
	"m":        true,

	// Auth flows
	"login":    true,
	"logout":   true,
	"oauth":    true,
	"callback": true,

	// App surface
	"dashboard": true,
	"settings":  true,
	"analytics": true,

	// Brand protection
	"taut": true,

	// Common abuse targets
	"admin":    true,
	"password": true,
	"reset":    true,
	"verify":   true,
	"confirm":  true,

	// Crawler paths
	"robots":     true,
	"sitemap":    true,
	"favicon":    true,
	"well-known": true,
}

// aliasPattern matches valid short code characters.
// Allowed: a-z, A-Z, 0-9, hyphen, underscore.
var aliasPattern = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)

// slugCleanPattern matches runs of characters that are stripped from
// microsite slugs during normalization.
var slugCleanPattern = regexp.MustCompile(`[^a-z0-9-]+`)

// dashRunPattern collapses consecutive dashes.
var dashRunPattern = regexp.MustCompile(`-+`)

// IsReserved reports whether the given segment is on the shared
// reserved-word blacklist. The check is case-insensitive.
func IsReserved(s string) bool {
	return reserved[strings.ToLower(s)]
}

// ValidateAlias validates a user-chosen short code. Aliases are used
// verbatim, so no normalization is applied.
func ValidateAlias(alias string) error {
	if len(alias) < MinAliasLength {
		return ErrTooShort
	}
	if len(alias) > MaxAliasLength {
		return ErrTooLong
	}
	if !aliasPattern.MatchString(alias) {
		return ErrInvalidChar
	}
	if IsReserved(alias) {
		return ErrReserved
	}
	return nil
}

// NormalizeSlug lowercases a raw microsite slug, replaces disallowed
// characters with dashes, collapses dash runs, and trims leading and
// trailing dashes.
func NormalizeSlug(raw string) string {
	s := strings.ToLower(strings.TrimSpace(raw))
	s = slugCleanPattern.ReplaceAllString(s, "-")
	s = dashRunPattern.ReplaceAllString(s, "-")
	return strings.Trim(s, "-")
}

// ValidateSlug normalizes and validates a microsite slug, returning the
// normalized form on success.
func ValidateSlug(raw string) (string, error) {
	s := NormalizeSlug(raw)
	if len(s) < MinSlugLength {
		return "", ErrTooShort
	}
	if len(s) > MaxSlugLength {
		return "", ErrTooLong
	}
	if IsReserved(s) {
		return "", ErrReserved
	}
	return s, nil
}
