package service

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/tautlabs/taut/internal/auth"
	"github.com/tautlabs/taut/internal/metrics"
	"github.com/tautlabs/taut/internal/model"
	"github.com/tautlabs/taut/internal/repository"
	"github.com/tautlabs/taut/internal/slug"
)

// Service errors.
var (
	ErrInvalidDestination = errors.New("invalid destination URL")
	ErrURLTooLong         = errors.New("destination URL too long")
	ErrInvalidAlias       = errors.New("invalid alias format")
	ErrAliasReserved      = errors.New("alias is reserved")
	ErrAliasExists        = errors.New("alias already exists")
	ErrExpiresInPast      = errors.New("expires_at must be in the future")
	ErrShortLinkNotFound  = errors.New("short link not found")
)

const maxDestinationLength = 2048

// ShortLinkService handles short link management.
type ShortLinkService struct {
	store   ShortLinkStore
	cache   LinkCache
	codes   *slug.Generator
	baseURL string
	metrics metrics.Recorder
}

// NewShortLinkService creates a new ShortLinkService.
// linkCache may be nil when caching is disabled.
func NewShortLinkService(store ShortLinkStore, linkCache LinkCache, codes *slug.Generator, baseURL string, recorder metrics.Recorder) *ShortLinkService {
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	return &ShortLinkService{
		store:   store,
		cache:   linkCache,
		codes:   codes,
		baseURL: strings.TrimSuffix(baseURL, "/"),
		metrics: recorder,
	}
}

// CreateShortLinkInput defines input for creating a short link.
type CreateShortLinkInput struct {
	Destination string
	Alias       string // optional custom short code
	Password    string // optional, hashed before storage
	ExpiresAt   *time.Time
	OwnerID     string
}

// CreateShortLink creates a new short link.
func (s *ShortLinkService) CreateShortLink(ctx context.Context, input CreateShortLinkInput) (*model.ShortLink, error) {
	if err := validateDestination(input.Destination); err != nil {
		return nil, err
	}

	if input.ExpiresAt != nil && input.ExpiresAt.Before(time.Now()) {
		return nil, ErrExpiresInPast
	}

	shortCode := input.Alias
	if shortCode != "" {
		if err := slug.ValidateAlias(shortCode); err != nil {
			if errors.Is(err, slug.ErrReserved) {
				return nil, ErrAliasReserved
			}
			return nil, ErrInvalidAlias
		}
	} else {
		var err error
		shortCode, err = s.codes.Unique(ctx, s.store.ShortCodeExists)
		if err != nil {
			return nil, fmt.Errorf("failed to generate short code: %w", err)
		}
	}

	var passwordHash string
	if input.Password != "" {
		var err error
		passwordHash, err = auth.HashPassword(input.Password)
		if err != nil {
			return nil, fmt.Errorf("failed to hash password: %w", err)
		}
	}

	link := &model.ShortLink{
		ID:           ulid.Make().String(),
		ShortCode:    shortCode,
		Destination:  input.Destination,
		PasswordHash: passwordHash,
		ExpiresAt:    input.ExpiresAt,
		OwnerID:      input.OwnerID,
		CreatedAt:    time.Now().UTC(),
	}

	if err := s.store.CreateShortLink(ctx, link); err != nil {
		if errors.Is(err, repository.ErrShortCodeExists) {
			return nil, ErrAliasExists
		}
		return nil, fmt.Errorf("failed to create short link: %w", err)
	}

	s.metrics.IncShortLinkCreated()

	return link, nil
}

// ListShortLinks returns all short links owned by a user, newest first.
func (s *ShortLinkService) ListShortLinks(ctx context.Context, ownerID string) ([]*model.ShortLink, error) {
	return s.store.ListShortLinksByOwner(ctx, ownerID)
}

// DeleteShortLink removes a short link and invalidates its cache entry.
// Deleting a link owned by someone else reports not-found.
func (s *ShortLinkService) DeleteShortLink(ctx context.Context, id, ownerID string) error {
	shortCode, err := s.store.DeleteShortLink(ctx, id, ownerID)
	if err != nil {
		if errors.Is(err, repository.ErrShortLinkNotFound) {
			return ErrShortLinkNotFound
		}
		return err
	}

	s.metrics.IncShortLinkDeleted()

	if s.cache != nil {
		// Eventual consistency is acceptable; the cache entry also expires.
		_ = s.cache.DeleteShortLink(ctx, shortCode)
	}

	return nil
}

// ShortURL returns the public URL for a short code.
func (s *ShortLinkService) ShortURL(shortCode string) string {
	return s.baseURL + "/" + shortCode
}

// validateDestination validates a destination URL.
func validateDestination(dest string) error {
	if dest == "" {
		return ErrInvalidDestination
	}

	if len(dest) > maxDestinationLength {
		return ErrURLTooLong
	}

	parsed, err := url.Parse(dest)
	if err != nil {
		return ErrInvalidDestination
	}

	// Only allow http and https schemes
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return ErrInvalidDestination
	}

	// Must have a host
	if parsed.Host == "" {
		return ErrInvalidDestination
	}

	return nil
}
