// Package model defines domain entities for the application.
package model

import "time"

// ShortLinkClick is an append-only event recorded once per successful
// short link resolution (after the password gate, if any, passes).
type ShortLinkClick struct {
	ID          string `json:"id"`       // ULID (time-sortable)
	EventID     string `json:"event_id"` // Idempotency key (Redis stream ID)
	ShortLinkID string `json:"short_link_id"`
	ShortCode   string `json:"short_code"`

	// Request metadata
	UserAgent string `json:"user_agent,omitempty"` // UA string (truncated 500 chars)
	Country   string `json:"country,omitempty"`    // ISO 3166-1 alpha-2 or "unknown"

	ClickedAt time.Time `json:"clicked_at"`
	CreatedAt time.Time `json:"created_at"` // DB insertion time
}

// MicrositeClick is an append-only event for a microsite. LinkID is empty
// for page views and set when a specific link redirect was followed.
type MicrositeClick struct {
	ID          string `json:"id"`
	EventID     string `json:"event_id"`
	MicrositeID string `json:"microsite_id"`
	LinkID      string `json:"link_id,omitempty"`

	UserAgent string `json:"user_agent,omitempty"`
	Country   string `json:"country,omitempty"`

	ClickedAt time.Time `json:"clicked_at"`
	CreatedAt time.Time `json:"created_at"`
}

// IsPageView returns true when the event records a page view rather
// than a specific link click.
func (c *MicrositeClick) IsPageView() bool {
	return c.LinkID == ""
}
