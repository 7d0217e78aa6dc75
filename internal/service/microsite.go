package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/tautlabs/taut/internal/metrics"
	"github.com/tautlabs/taut/internal/model"
	"github.com/tautlabs/taut/internal/repository"
	"github.com/tautlabs/taut/internal/slug"
)

// Microsite service errors.
var (
	ErrInvalidSlug           = errors.New("invalid slug format")
	ErrSlugReserved          = errors.New("slug is reserved")
	ErrSlugExists            = errors.New("slug already exists")
	ErrTitleRequired         = errors.New("title is required")
	ErrInvalidLinkURL        = errors.New("invalid link URL")
	ErrMicrositeNotFound     = errors.New("microsite not found")
	ErrMicrositeLinkNotFound = errors.New("microsite link not found")
	ErrReorderMismatch       = errors.New("reorder must list every link exactly once")
)

const maxTitleLength = 120

// MicrositeService handles microsite and microsite link management.
type MicrositeService struct {
	store   MicrositeStore
	metrics metrics.Recorder
}

// NewMicrositeService creates a new MicrositeService.
func NewMicrositeService(store MicrositeStore, recorder metrics.Recorder) *MicrositeService {
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	return &MicrositeService{
		store:   store,
		metrics: recorder,
	}
}

// CreateMicrositeInput defines input for creating a microsite.
type CreateMicrositeInput struct {
	Slug        string
	Title       string
	Description string
	Theme       string
	OwnerID     string
}

// CreateMicrosite creates a microsite. New microsites start unpublished;
// they are invisible on the public path until published.
func (s *MicrositeService) CreateMicrosite(ctx context.Context, input CreateMicrositeInput) (*model.Microsite, error) {
	normalized, err := slug.ValidateSlug(input.Slug)
	if err != nil {
		if errors.Is(err, slug.ErrReserved) {
			return nil, ErrSlugReserved
		}
		return nil, ErrInvalidSlug
	}

	if err := validateTitle(input.Title); err != nil {
		return nil, err
	}

	// Pre-check for a friendlier error; the unique constraint still
	// backstops concurrent creates.
	taken, err := s.store.SlugExists(ctx, normalized)
	if err != nil {
		return nil, fmt.Errorf("failed to check slug availability: %w", err)
	}
	if taken {
		return nil, ErrSlugExists
	}

	now := time.Now().UTC()
	site := &model.Microsite{
		ID:          ulid.Make().String(),
		Slug:        normalized,
		Title:       input.Title,
		Description: input.Description,
		Theme:       model.NormalizeTheme(input.Theme),
		Published:   false,
		OwnerID:     input.OwnerID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.store.CreateMicrosite(ctx, site); err != nil {
		if errors.Is(err, repository.ErrSlugExists) {
			return nil, ErrSlugExists
		}
		return nil, fmt.Errorf("failed to create microsite: %w", err)
	}

	s.metrics.IncMicrositeCreated()

	return site, nil
}

// GetMicrosite retrieves an owned microsite by ID.
func (s *MicrositeService) GetMicrosite(ctx context.Context, id, ownerID string) (*model.Microsite, error) {
	site, err := s.store.GetMicrositeByID(ctx, id, ownerID)
	if err != nil {
		if errors.Is(err, repository.ErrMicrositeNotFound) {
			return nil, ErrMicrositeNotFound
		}
		return nil, err
	}
	return site, nil
}

// ListMicrosites returns all microsites owned by a user, newest first.
func (s *MicrositeService) ListMicrosites(ctx context.Context, ownerID string) ([]*model.Microsite, error) {
	return s.store.ListMicrositesByOwner(ctx, ownerID)
}

// UpdateMicrositeInput defines input for updating a microsite.
// Nil fields are left unchanged. Updates are last-write-wins.
type UpdateMicrositeInput struct {
	ID          string
	OwnerID     string
	Slug        *string
	Title       *string
	Description *string
	Theme       *string
	CoverImage  *string
	AvatarImage *string
	Published   *bool
}

// UpdateMicrosite updates a microsite's mutable fields.
func (s *MicrositeService) UpdateMicrosite(ctx context.Context, input UpdateMicrositeInput) (*model.Microsite, error) {
	site, err := s.store.GetMicrositeByID(ctx, input.ID, input.OwnerID)
	if err != nil {
		if errors.Is(err, repository.ErrMicrositeNotFound) {
			return nil, ErrMicrositeNotFound
		}
		return nil, err
	}

	if input.Slug != nil {
		normalized, err := slug.ValidateSlug(*input.Slug)
		if err != nil {
			if errors.Is(err, slug.ErrReserved) {
				return nil, ErrSlugReserved
			}
			return nil, ErrInvalidSlug
		}
		site.Slug = normalized
	}

	if input.Title != nil {
		if err := validateTitle(*input.Title); err != nil {
			return nil, err
		}
		site.Title = *input.Title
	}

	if input.Description != nil {
		site.Description = *input.Description
	}

	if input.Theme != nil {
		site.Theme = model.NormalizeTheme(*input.Theme)
	}

	if input.CoverImage != nil {
		site.CoverImage = *input.CoverImage
	}

	if input.AvatarImage != nil {
		site.AvatarImage = *input.AvatarImage
	}

	if input.Published != nil {
		site.Published = *input.Published
	}

	if err := s.store.UpdateMicrosite(ctx, site); err != nil {
		if errors.Is(err, repository.ErrSlugExists) {
			return nil, ErrSlugExists
		}
		if errors.Is(err, repository.ErrMicrositeNotFound) {
			return nil, ErrMicrositeNotFound
		}
		return nil, err
	}

	s.metrics.IncMicrositeUpdated()

	return site, nil
}

// DeleteMicrosite removes a microsite and, via cascade, its links and
// click events.
func (s *MicrositeService) DeleteMicrosite(ctx context.Context, id, ownerID string) error {
	if err := s.store.DeleteMicrosite(ctx, id, ownerID); err != nil {
		if errors.Is(err, repository.ErrMicrositeNotFound) {
			return ErrMicrositeNotFound
		}
		return err
	}

	s.metrics.IncMicrositeDeleted()

	return nil
}

// AddLinkInput defines input for adding a link to a microsite.
type AddLinkInput struct {
	MicrositeID string
	OwnerID     string
	Title       string
	URL         string
	Icon        string
}

// AddLink appends a link to the end of a microsite's link list.
func (s *MicrositeService) AddLink(ctx context.Context, input AddLinkInput) (*model.MicrositeLink, error) {
	if err := validateTitle(input.Title); err != nil {
		return nil, err
	}
	if err := validateDestination(input.URL); err != nil {
		return nil, ErrInvalidLinkURL
	}

	link := &model.MicrositeLink{
		ID:          ulid.Make().String(),
		MicrositeID: input.MicrositeID,
		Title:       input.Title,
		URL:         input.URL,
		Icon:        input.Icon,
		Active:      true,
		CreatedAt:   time.Now().UTC(),
	}

	if err := s.store.CreateMicrositeLink(ctx, input.OwnerID, link); err != nil {
		if errors.Is(err, repository.ErrMicrositeNotFound) {
			return nil, ErrMicrositeNotFound
		}
		return nil, fmt.Errorf("failed to add link: %w", err)
	}

	return link, nil
}

// ListLinks returns all links of an owned microsite in display order,
// including inactive ones.
func (s *MicrositeService) ListLinks(ctx context.Context, micrositeID, ownerID string) ([]*model.MicrositeLink, error) {
	links, err := s.store.ListMicrositeLinks(ctx, micrositeID, ownerID)
	if err != nil {
		if errors.Is(err, repository.ErrMicrositeNotFound) {
			return nil, ErrMicrositeNotFound
		}
		return nil, err
	}
	return links, nil
}

// UpdateLinkInput defines input for updating a microsite link.
type UpdateLinkInput struct {
	ID      string
	OwnerID string
	Title   *string
	URL     *string
	Icon    *string
	Active  *bool
}

// UpdateLink updates a microsite link's mutable fields.
func (s *MicrositeService) UpdateLink(ctx context.Context, input UpdateLinkInput) (*model.MicrositeLink, error) {
	link, err := s.store.GetMicrositeLinkForOwner(ctx, input.ID, input.OwnerID)
	if err != nil {
		if errors.Is(err, repository.ErrMicrositeLinkNotFound) {
			return nil, ErrMicrositeLinkNotFound
		}
		return nil, err
	}

	if input.Title != nil {
		if err := validateTitle(*input.Title); err != nil {
			return nil, err
		}
		link.Title = *input.Title
	}

	if input.URL != nil {
		if err := validateDestination(*input.URL); err != nil {
			return nil, ErrInvalidLinkURL
		}
		link.URL = *input.URL
	}

	if input.Icon != nil {
		link.Icon = *input.Icon
	}

	if input.Active != nil {
		link.Active = *input.Active
	}

	if err := s.store.UpdateMicrositeLink(ctx, input.OwnerID, link); err != nil {
		if errors.Is(err, repository.ErrMicrositeLinkNotFound) {
			return nil, ErrMicrositeLinkNotFound
		}
		return nil, err
	}

	return link, nil
}

// DeleteLink removes a microsite link. Positions of the remaining links
// are left as-is; ordering stays stable and new links append after the
// current maximum.
func (s *MicrositeService) DeleteLink(ctx context.Context, id, ownerID string) error {
	if err := s.store.DeleteMicrositeLink(ctx, id, ownerID); err != nil {
		if errors.Is(err, repository.ErrMicrositeLinkNotFound) {
			return ErrMicrositeLinkNotFound
		}
		return err
	}
	return nil
}

// ReorderLinks reassigns positions so the links appear in the given
// order. orderedIDs must contain every link of the microsite exactly
// once. Concurrent reorders are last-write-wins.
func (s *MicrositeService) ReorderLinks(ctx context.Context, micrositeID, ownerID string, orderedIDs []string) error {
	current, err := s.store.ListMicrositeLinks(ctx, micrositeID, ownerID)
	if err != nil {
		if errors.Is(err, repository.ErrMicrositeNotFound) {
			return ErrMicrositeNotFound
		}
		return err
	}

	if len(orderedIDs) != len(current) {
		return ErrReorderMismatch
	}
	known := make(map[string]bool, len(current))
	for _, link := range current {
		known[link.ID] = true
	}
	seen := make(map[string]bool, len(orderedIDs))
	for _, id := range orderedIDs {
		if !known[id] || seen[id] {
			return ErrReorderMismatch
		}
		seen[id] = true
	}

	if err := s.store.ReorderMicrositeLinks(ctx, micrositeID, ownerID, orderedIDs); err != nil {
		if errors.Is(err, repository.ErrMicrositeNotFound) {
			return ErrMicrositeNotFound
		}
		return err
	}

	return nil
}

func validateTitle(title string) error {
	if title == "" || len(title) > maxTitleLength {
		return ErrTitleRequired
	}
	return nil
}
