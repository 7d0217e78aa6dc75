package dto

import (
	"time"

	"github.com/tautlabs/taut/internal/model"
)

// CreateShortLinkRequest represents the request body for creating a short link.
type CreateShortLinkRequest struct {
	Destination string     `json:"destination"`
	Alias       string     `json:"alias,omitempty"`
	Password    string     `json:"password,omitempty"`
	ExpiresAt   *time.Time `json:"expires_at,omitempty"`
}

// ShortLinkResponse represents a short link in API responses.
// The password hash never leaves the server; only the protected flag does.
type ShortLinkResponse struct {
	ID          string     `json:"id"`
	ShortCode   string     `json:"short_code"`
	ShortURL    string     `json:"short_url"`
	Destination string     `json:"destination"`
	Protected   bool       `json:"protected"`
	ExpiresAt   *time.Time `json:"expires_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}

// ShortLinkListResponse represents the owner's short links, newest first.
type ShortLinkListResponse struct {
	Data []ShortLinkResponse `json:"data"`
}

// ToShortLinkResponse converts a ShortLink model to its response DTO.
func ToShortLinkResponse(link *model.ShortLink, shortURL string) *ShortLinkResponse {
	return &ShortLinkResponse{
		ID:          link.ID,
		ShortCode:   link.ShortCode,
		ShortURL:    shortURL,
		Destination: link.Destination,
		Protected:   link.IsProtected(),
		ExpiresAt:   link.ExpiresAt,
		CreatedAt:   link.CreatedAt,
	}
}
