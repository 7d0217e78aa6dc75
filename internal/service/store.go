// Package service provides business logic for the application.
package service

import (
	"context"

	"github.com/tautlabs/taut/internal/analytics"
	"github.com/tautlabs/taut/internal/model"
)

// ShortLinkStore is the persistence surface used by ShortLinkService.
// *repository.Repository satisfies it; tests use in-memory fakes.
type ShortLinkStore interface {
	CreateShortLink(ctx context.Context, link *model.ShortLink) error
	GetShortLinkByCode(ctx context.Context, shortCode string) (*model.ShortLink, error)
	ListShortLinksByOwner(ctx context.Context, ownerID string) ([]*model.ShortLink, error)
	DeleteShortLink(ctx context.Context, id, ownerID string) (string, error)
	ShortCodeExists(ctx context.Context, shortCode string) (bool, error)
}

// MicrositeStore is the persistence surface used by MicrositeService.
type MicrositeStore interface {
	CreateMicrosite(ctx context.Context, site *model.Microsite) error
	GetMicrositeByID(ctx context.Context, id, ownerID string) (*model.Microsite, error)
	ListMicrositesByOwner(ctx context.Context, ownerID string) ([]*model.Microsite, error)
	UpdateMicrosite(ctx context.Context, site *model.Microsite) error
	DeleteMicrosite(ctx context.Context, id, ownerID string) error
	SlugExists(ctx context.Context, slug string) (bool, error)
	CreateMicrositeLink(ctx context.Context, ownerID string, link *model.MicrositeLink) error
	GetMicrositeLinkForOwner(ctx context.Context, id, ownerID string) (*model.MicrositeLink, error)
	ListMicrositeLinks(ctx context.Context, micrositeID, ownerID string) ([]*model.MicrositeLink, error)
	UpdateMicrositeLink(ctx context.Context, ownerID string, link *model.MicrositeLink) error
	DeleteMicrositeLink(ctx context.Context, id, ownerID string) error
	ReorderMicrositeLinks(ctx context.Context, micrositeID, ownerID string, orderedIDs []string) error
}

// ResolverStore is the read surface the public resolution path needs.
type ResolverStore interface {
	GetShortLinkByCode(ctx context.Context, shortCode string) (*model.ShortLink, error)
	GetPublishedMicrositeBySlug(ctx context.Context, slug string) (*model.Microsite, []*model.MicrositeLink, *model.User, error)
	GetMicrositeLinkByID(ctx context.Context, id string) (*model.MicrositeLink, error)
}

// LinkCache is the optional Redis-backed short link cache.
// A nil LinkCache disables caching; the resolver falls back to the store.
type LinkCache interface {
	GetShortLink(ctx context.Context, shortCode string) (*model.CachedShortLink, error)
	SetShortLink(ctx context.Context, shortCode string, link *model.ShortLink) error
	DeleteShortLink(ctx context.Context, shortCode string) error
	IsNegativelyCached(ctx context.Context, shortCode string) (bool, error)
	SetNegativeCache(ctx context.Context, shortCode string) error
}

// EventPublisher records click events without blocking the caller.
type EventPublisher interface {
	PublishAsync(event analytics.ClickEventPayload)
}
