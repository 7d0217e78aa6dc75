// Package analytics provides click event capture and processing.
package analytics

import "fmt"

const (
	minShortCodeLength = 3
	maxShortCodeLength = 50
	maxMetaLength      = 500
	maxCountryLength   = 7 // fits both ISO codes and "unknown"
)

// ValidateClickEventPayload validates click event payload fields.
func ValidateClickEventPayload(payload ClickEventPayload) error {
	switch payload.Kind {
	case KindShortLink:
		if payload.ShortLinkID == "" {
			return fmt.Errorf("short_link_id is required")
		}
		if payload.ShortCode == "" {
			return fmt.Errorf("short_code is required")
		}
		if len(payload.ShortCode) < minShortCodeLength || len(payload.ShortCode) > maxShortCodeLength {
			return fmt.Errorf("short_code length out of bounds")
		}
		if payload.MicrositeID != "" || payload.LinkID != "" {
			return fmt.Errorf("microsite fields not allowed on short link events")
		}
	case KindMicrositeView:
		if payload.MicrositeID == "" {
			return fmt.Errorf("microsite_id is required")
		}
		if payload.LinkID != "" {
			return fmt.Errorf("link_id not allowed on page view events")
		}
	case KindMicrositeLink:
		if payload.MicrositeID == "" {
			return fmt.Errorf("microsite_id is required")
		}
		if payload.LinkID == "" {
			return fmt.Errorf("link_id is required")
		}
	default:
		return fmt.Errorf("unknown event kind %q", payload.Kind)
	}

	if payload.OccurredAt <= 0 {
		return fmt.Errorf("occurred_at must be set")
	}
	if len(payload.UserAgent) > maxMetaLength {
		return fmt.Errorf("user_agent too long")
	}
	if len(payload.Country) > maxCountryLength {
		return fmt.Errorf("country too long")
	}
	return nil
}
