// Package model defines domain entities for the application.
package model

import "time"

// Theme is the visual theme of a microsite page.
type Theme string

const (
	ThemeDark     Theme = "dark"
	ThemeLight    Theme = "light"
	ThemeGradient Theme = "gradient"
)

// IsValid checks if the theme is one of the known values.
func (t Theme) IsValid() bool {
	return t == ThemeDark || t == ThemeLight || t == ThemeGradient
}

// NormalizeTheme maps an arbitrary input string to a valid theme.
// Unknown values fall back to the dark theme.
func NormalizeTheme(s string) Theme {
	t := Theme(s)
	if !t.IsValid() {
		return ThemeDark
	}
	return t
}

// Microsite represents a themed public page listing an ordered set of
// outbound links under a single slug.
type Microsite struct {
	ID          string    `json:"id"`
	Slug        string    `json:"slug"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	Theme       Theme     `json:"theme"`
	CoverImage  string    `json:"cover_image,omitempty"`
	AvatarImage string    `json:"avatar_image,omitempty"`
	Published   bool      `json:"published"`
	OwnerID     string    `json:"owner_id"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// MicrositeLink belongs to exactly one microsite. Position is dense,
// zero-based, and unique within the parent; it determines display order.
type MicrositeLink struct {
	ID          string    `json:"id"`
	MicrositeID string    `json:"microsite_id"`
	Title       string    `json:"title"`
	URL         string    `json:"url"`
	Icon        string    `json:"icon,omitempty"`
	Position    int       `json:"position"`
	Active      bool      `json:"active"`
	CreatedAt   time.Time `json:"created_at"`
}
