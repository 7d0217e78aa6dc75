package dto

import (
	"time"

	"github.com/tautlabs/taut/internal/model"
)

// CreateMicrositeRequest represents the request body for creating a microsite.
type CreateMicrositeRequest struct {
	Slug        string `json:"slug"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	Theme       string `json:"theme,omitempty"`
}

// UpdateMicrositeRequest represents a partial microsite update.
// Nil fields are left unchanged.
type UpdateMicrositeRequest struct {
	Slug        *string `json:"slug,omitempty"`
	Title       *string `json:"title,omitempty"`
	Description *string `json:"description,omitempty"`
	Theme       *string `json:"theme,omitempty"`
	CoverImage  *string `json:"cover_image,omitempty"`
	AvatarImage *string `json:"avatar_image,omitempty"`
	Published   *bool   `json:"published,omitempty"`
}

// MicrositeResponse represents a microsite in API responses.
type MicrositeResponse struct {
	ID          string    `json:"id"`
	Slug        string    `json:"slug"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	Theme       string    `json:"theme"`
	CoverImage  string    `json:"cover_image,omitempty"`
	AvatarImage string    `json:"avatar_image,omitempty"`
	Published   bool      `json:"published"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// MicrositeListResponse represents the owner's microsites.
type MicrositeListResponse struct {
	Data []MicrositeResponse `json:"data"`
}

// AddMicrositeLinkRequest represents the request body for adding a link
// to a microsite. New links are appended at the end of the list.
type AddMicrositeLinkRequest struct {
	Title string `json:"title"`
	URL   string `json:"url"`
	Icon  string `json:"icon,omitempty"`
}

// UpdateMicrositeLinkRequest represents a partial microsite link update.
type UpdateMicrositeLinkRequest struct {
	Title  *string `json:"title,omitempty"`
	URL    *string `json:"url,omitempty"`
	Icon   *string `json:"icon,omitempty"`
	Active *bool   `json:"active,omitempty"`
}

// ReorderLinksRequest lists every link of a microsite in the desired
// display order.
type ReorderLinksRequest struct {
	LinkIDs []string `json:"link_ids"`
}

// MicrositeLinkResponse represents a microsite link in API responses.
type MicrositeLinkResponse struct {
	ID          string    `json:"id"`
	MicrositeID string    `json:"microsite_id"`
	Title       string    `json:"title"`
	URL         string    `json:"url"`
	Icon        string    `json:"icon,omitempty"`
	Position    int       `json:"position"`
	Active      bool      `json:"active"`
	CreatedAt   time.Time `json:"created_at"`
}

// MicrositeLinkListResponse represents a microsite's links in display order.
type MicrositeLinkListResponse struct {
	Data []MicrositeLinkResponse `json:"data"`
}

// ToMicrositeResponse converts a Microsite model to its response DTO.
func ToMicrositeResponse(site *model.Microsite) *MicrositeResponse {
	return &MicrositeResponse{
		ID:          site.ID,
		Slug:        site.Slug,
		Title:       site.Title,
		Description: site.Description,
		Theme:       string(site.Theme),
		CoverImage:  site.CoverImage,
		AvatarImage: site.AvatarImage,
		Published:   site.Published,
		CreatedAt:   site.CreatedAt,
		UpdatedAt:   site.UpdatedAt,
	}
}

// ToMicrositeListResponse converts a slice of Microsite models.
func ToMicrositeListResponse(sites []*model.Microsite) *MicrositeListResponse {
	responses := make([]MicrositeResponse, len(sites))
	for i, site := range sites {
		responses[i] = *ToMicrositeResponse(site)
	}
	return &MicrositeListResponse{Data: responses}
}

// ToMicrositeLinkResponse converts a MicrositeLink model to its response DTO.
func ToMicrositeLinkResponse(link *model.MicrositeLink) *MicrositeLinkResponse {
	return &MicrositeLinkResponse{
		ID:          link.ID,
		MicrositeID: link.MicrositeID,
		Title:       link.Title,
		URL:         link.URL,
		Icon:        link.Icon,
		Position:    link.Position,
		Active:      link.Active,
		CreatedAt:   link.CreatedAt,
	}
}

// ToMicrositeLinkListResponse converts a slice of MicrositeLink models.
func ToMicrositeLinkListResponse(links []*model.MicrositeLink) *MicrositeLinkListResponse {
	responses := make([]MicrositeLinkResponse, len(links))
	for i, link := range links {
		responses[i] = *ToMicrositeLinkResponse(link)
	}
	return &MicrositeLinkListResponse{Data: responses}
}
