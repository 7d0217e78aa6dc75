package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/lib/pq"

	"github.com/tautlabs/taut/internal/model"
)

// Common errors for microsite repository operations.
var (
	ErrMicrositeNotFound     = errors.New("microsite not found")
	ErrSlugExists            = errors.New("slug already exists")
	ErrMicrositeLinkNotFound = errors.New("microsite link not found")
)

// CreateMicrosite inserts a new microsite into the database.
func (r *Repository) CreateMicrosite(ctx context.Context, site *model.Microsite) error {
	query := `
		INSERT INTO microsites (id, slug, title, description, theme, cover_image, avatar_image, published, owner_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`

	_, err := r.pool.Exec(ctx, query,
		site.ID,
		site.Slug,
		site.Title,
		nullableString(site.Description),
		string(site.Theme),
		nullableString(site.CoverImage),
		nullableString(site.AvatarImage),
		site.Published,
		site.OwnerID,
		site.CreatedAt,
		site.UpdatedAt,
	)

	if err != nil {
		if isUniqueViolation(err) {
			return ErrSlugExists
		}
		return fmt.Errorf("failed to create microsite: %w", err)
	}

	return nil
}

// GetMicrositeByID retrieves a microsite owned by the given user.
// A non-owner lookup reports not-found to avoid leaking existence.
func (r *Repository) GetMicrositeByID(ctx context.Context, id, ownerID string) (*model.Microsite, error) {
	query := micrositeSelect + ` WHERE id = $1 AND owner_id = $2`

	site, err := scanMicrosite(r.pool.QueryRow(ctx, query, id, ownerID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrMicrositeNotFound
		}
		return nil, fmt.Errorf("failed to get microsite by ID: %w", err)
	}

	return site, nil
}

// GetPublishedMicrositeBySlug retrieves a published microsite by slug,
// together with its active links in position order and the owner's
// display attributes. Unpublished microsites are indistinguishable
// from absent ones.
func (r *Repository) GetPublishedMicrositeBySlug(ctx context.Context, slug string) (*model.Microsite, []*model.MicrositeLink, *model.User, error) {
	query := micrositeSelect + ` WHERE slug = $1 AND published = TRUE`

	site, err := scanMicrosite(r.pool.QueryRow(ctx, query, slug))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil, nil, ErrMicrositeNotFound
		}
		return nil, nil, nil, fmt.Errorf("failed to get microsite by slug: %w", err)
	}

	links, err := r.listMicrositeLinks(ctx, site.ID, true)
	if err != nil {
		return nil, nil, nil, err
	}

	owner, err := r.GetUserByID(ctx, site.OwnerID)
	if err != nil && !errors.Is(err, ErrUserNotFound) {
		return nil, nil, nil, err
	}

	return site, links, owner, nil
}

// ListMicrositesByOwner retrieves all microsites owned by a user,
// newest first.
func (r *Repository) ListMicrositesByOwner(ctx context.Context, ownerID string) ([]*model.Microsite, error) {
	query := micrositeSelect + ` WHERE owner_id = $1 ORDER BY created_at DESC, id DESC`

	rows, err := r.pool.Query(ctx, query, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list microsites: %w", err)
	}
	defer rows.Close()

	var sites []*model.Microsite
	for rows.Next() {
		site, err := scanMicrosite(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan microsite: %w", err)
		}
		sites = append(sites, site)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating microsites: %w", err)
	}

	return sites, nil
}

// UpdateMicrosite updates a microsite's mutable fields, owner-scoped.
func (r *Repository) UpdateMicrosite(ctx context.Context, site *model.Microsite) error {
	query := `
		UPDATE microsites
		SET slug = $3, title = $4, description = $5, theme = $6, cover_image = $7, avatar_image = $8, published = $9, updated_at = NOW()
		WHERE id = $1 AND owner_id = $2
	`

	result, err := r.pool.Exec(ctx, query,
		site.ID,
		site.OwnerID,
		site.Slug,
		site.Title,
		nullableString(site.Description),
		string(site.Theme),
		nullableString(site.CoverImage),
		nullableString(site.AvatarImage),
		site.Published,
	)

	if err != nil {
		if isUniqueViolation(err) {
			return ErrSlugExists
		}
		return fmt.Errorf("failed to update microsite: %w", err)
	}

	if result.RowsAffected() == 0 {
		return ErrMicrositeNotFound
	}

	return nil
}

// DeleteMicrosite removes a microsite owned by the given user.
// Links and click events cascade.
func (r *Repository) DeleteMicrosite(ctx context.Context, id, ownerID string) error {
	query := `DELETE FROM microsites WHERE id = $1 AND owner_id = $2`

	result, err := r.pool.Exec(ctx, query, id, ownerID)
	if err != nil {
		return fmt.Errorf("failed to delete microsite: %w", err)
	}

	if result.RowsAffected() == 0 {
		return ErrMicrositeNotFound
	}

	return nil
}

// SlugExists checks if a microsite slug is already taken.
func (r *Repository) SlugExists(ctx context.Context, slug string) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM microsites WHERE slug = $1)`

	var exists bool
	if err := r.pool.QueryRow(ctx, query, slug).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check slug existence: %w", err)
	}

	return exists, nil
}

// CreateMicrositeLink appends a link to a microsite, assigning the next
// position. The parent must be owned by the given user.
func (r *Repository) CreateMicrositeLink(ctx context.Context, ownerID string, link *model.MicrositeLink) error {
	query := `
		INSERT INTO microsite_links (id, microsite_id, title, url, icon, position, active, created_at)
		SELECT $1, m.id, $3, $4, $5,
		       COALESCE((SELECT MAX(position) + 1 FROM microsite_links WHERE microsite_id = m.id), 0),
		       $6, $7
		FROM microsites m
		WHERE m.id = $2 AND m.owner_id = $8
		RETURNING position
	`

	err := r.pool.QueryRow(ctx, query,
		link.ID,
		link.MicrositeID,
		link.Title,
		link.URL,
		nullableString(link.Icon),
		link.Active,
		link.CreatedAt,
		ownerID,
	).Scan(&link.Position)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrMicrositeNotFound
		}
		return fmt.Errorf("failed to create microsite link: %w", err)
	}

	return nil
}

// GetMicrositeLinkByID retrieves a microsite link by its ID. Used by
// the public per-link redirect, so it is not owner-scoped.
func (r *Repository) GetMicrositeLinkByID(ctx context.Context, id string) (*model.MicrositeLink, error) {
	query := `
		SELECT id, microsite_id, title, url, COALESCE(icon, ''), position, active, created_at
		FROM microsite_links
		WHERE id = $1
	`

	link, err := scanMicrositeLink(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrMicrositeLinkNotFound
		}
		return nil, fmt.Errorf("failed to get microsite link by ID: %w", err)
	}

	return link, nil
}

// GetMicrositeLinkForOwner retrieves a microsite link only if its parent
// microsite belongs to the given owner. A non-owner read reports
// not-found to avoid leaking existence.
func (r *Repository) GetMicrositeLinkForOwner(ctx context.Context, id, ownerID string) (*model.MicrositeLink, error) {
	query := `
		SELECT l.id, l.microsite_id, l.title, l.url, COALESCE(l.icon, ''), l.position, l.active, l.created_at
		FROM microsite_links l
		JOIN microsites m ON m.id = l.microsite_id
		WHERE l.id = $1 AND m.owner_id = $2
	`

	link, err := scanMicrositeLink(r.pool.QueryRow(ctx, query, id, ownerID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrMicrositeLinkNotFound
		}
		return nil, fmt.Errorf("failed to get microsite link: %w", err)
	}

	return link, nil
}

// ListMicrositeLinks retrieves all links of a microsite owned by the
// given user, in position order, including inactive ones.
func (r *Repository) ListMicrositeLinks(ctx context.Context, micrositeID, ownerID string) ([]*model.MicrositeLink, error) {
	if err := r.requireMicrositeOwner(ctx, micrositeID, ownerID); err != nil {
		return nil, err
	}
	return r.listMicrositeLinks(ctx, micrositeID, false)
}

// UpdateMicrositeLink updates a link's mutable fields. Ownership is
// checked transitively through the parent microsite.
func (r *Repository) UpdateMicrositeLink(ctx context.Context, ownerID string, link *model.MicrositeLink) error {
	query := `
		UPDATE microsite_links l
		SET title = $2, url = $3, icon = $4, active = $5
		FROM microsites m
		WHERE l.id = $1 AND l.microsite_id = m.id AND m.owner_id = $6
	`

	result, err := r.pool.Exec(ctx, query,
		link.ID,
		link.Title,
		link.URL,
		nullableString(link.Icon),
		link.Active,
		ownerID,
	)

	if err != nil {
		return fmt.Errorf("failed to update microsite link: %w", err)
	}

	if result.RowsAffected() == 0 {
		return ErrMicrositeLinkNotFound
	}

	return nil
}

// DeleteMicrositeLink removes a link, owner-scoped through the parent.
func (r *Repository) DeleteMicrositeLink(ctx context.Context, id, ownerID string) error {
	query := `
		DELETE FROM microsite_links l
		USING microsites m
		WHERE l.id = $1 AND l.microsite_id = m.id AND m.owner_id = $2
	`

	result, err := r.pool.Exec(ctx, query, id, ownerID)
	if err != nil {
		return fmt.Errorf("failed to delete microsite link: %w", err)
	}

	if result.RowsAffected() == 0 {
		return ErrMicrositeLinkNotFound
	}

	return nil
}

// ReorderMicrositeLinks reassigns positions so the links rank in
// exactly the submitted id order. Ids not belonging to the microsite
// are ignored; concurrent reorders are last-write-wins.
func (r *Repository) ReorderMicrositeLinks(ctx context.Context, micrositeID, ownerID string, orderedIDs []string) error {
	if err := r.requireMicrositeOwner(ctx, micrositeID, ownerID); err != nil {
		return err
	}

	positions := make([]int64, len(orderedIDs))
	for i := range orderedIDs {
		positions[i] = int64(i)
	}

	query := `
		UPDATE microsite_links l
		SET position = u.position
		FROM unnest($2::text[], $3::bigint[]) AS u(id, position)
		WHERE l.id = u.id AND l.microsite_id = $1
	`

	_, err := r.pool.Exec(ctx, query, micrositeID, pq.Array(orderedIDs), pq.Array(positions))
	if err != nil {
		return fmt.Errorf("failed to reorder microsite links: %w", err)
	}

	return nil
}

// requireMicrositeOwner verifies ownership of a microsite, reporting
// not-found on violation.
func (r *Repository) requireMicrositeOwner(ctx context.Context, micrositeID, ownerID string) error {
	query := `SELECT EXISTS(SELECT 1 FROM microsites WHERE id = $1 AND owner_id = $2)`

	var owned bool
	if err := r.pool.QueryRow(ctx, query, micrositeID, ownerID).Scan(&owned); err != nil {
		return fmt.Errorf("failed to check microsite ownership: %w", err)
	}
	if !owned {
		return ErrMicrositeNotFound
	}
	return nil
}

// listMicrositeLinks retrieves links of a microsite in position order.
func (r *Repository) listMicrositeLinks(ctx context.Context, micrositeID string, activeOnly bool) ([]*model.MicrositeLink, error) {
	query := `
		SELECT id, microsite_id, title, url, COALESCE(icon, ''), position, active, created_at
		FROM microsite_links
		WHERE microsite_id = $1
	`
	if activeOnly {
		query += ` AND active = TRUE`
	}
	query += ` ORDER BY position ASC`

	rows, err := r.pool.Query(ctx, query, micrositeID)
	if err != nil {
		return nil, fmt.Errorf("failed to list microsite links: %w", err)
	}
	defer rows.Close()

	var links []*model.MicrositeLink
	for rows.Next() {
		link, err := scanMicrositeLink(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan microsite link: %w", err)
		}
		links = append(links, link)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating microsite links: %w", err)
	}

	return links, nil
}

const micrositeSelect = `
	SELECT id, slug, title, COALESCE(description, ''), theme, COALESCE(cover_image, ''), COALESCE(avatar_image, ''), published, owner_id, created_at, updated_at
	FROM microsites`

// scanMicrosite scans a single row into a Microsite model.
func scanMicrosite(row pgx.Row) (*model.Microsite, error) {
	var site model.Microsite
	var theme string
	err := row.Scan(
		&site.ID,
		&site.Slug,
		&site.Title,
		&site.Description,
		&theme,
		&site.CoverImage,
		&site.AvatarImage,
		&site.Published,
		&site.OwnerID,
		&site.CreatedAt,
		&site.UpdatedAt,
	)
	site.Theme = model.NormalizeTheme(theme)
	return &site, err
}

// scanMicrositeLink scans a single row into a MicrositeLink model.
func scanMicrositeLink(row pgx.Row) (*model.MicrositeLink, error) {
	var link model.MicrositeLink
	err := row.Scan(
		&link.ID,
		&link.MicrositeID,
		&link.Title,
		&link.URL,
		&link.Icon,
		&link.Position,
		&link.Active,
		&link.CreatedAt,
	)
	return &link, err
}
