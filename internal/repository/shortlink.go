package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/tautlabs/taut/internal/model"
)

// Common errors for short link repository operations.
var (
	ErrShortLinkNotFound = errors.New("short link not found")
	ErrShortCodeExists   = errors.New("short code already exists")
)

// CreateShortLink inserts a new short link into the database.
func (r *Repository) CreateShortLink(ctx context.Context, link *model.ShortLink) error {
	query := `
		INSERT INTO short_links (id, short_code, destination, password_hash, expires_at, owner_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err := r.pool.Exec(ctx, query,
		link.ID,
		link.ShortCode,
		link.Destination,
		nullableString(link.PasswordHash),
		link.ExpiresAt,
		link.OwnerID,
		link.CreatedAt,
	)

	if err != nil {
		if isUniqueViolation(err) {
			return ErrShortCodeExists
		}
		return fmt.Errorf("failed to create short link: %w", err)
	}

	return nil
}

// GetShortLinkByCode retrieves a short link by its short code.
// This is the hot path for slug resolution.
func (r *Repository) GetShortLinkByCode(ctx context.Context, shortCode string) (*model.ShortLink, error) {
	query := `
		SELECT id, short_code, destination, COALESCE(password_hash, ''), expires_at, owner_id, created_at
		FROM short_links
		WHERE short_code = $1
	`

	link, err := scanShortLink(r.pool.QueryRow(ctx, query, shortCode))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrShortLinkNotFound
		}
		return nil, fmt.Errorf("failed to get short link by code: %w", err)
	}

	return link, nil
}

// ListShortLinksByOwner retrieves all short links owned by a user,
// newest first.
func (r *Repository) ListShortLinksByOwner(ctx context.Context, ownerID string) ([]*model.ShortLink, error) {
	query := `
		SELECT id, short_code, destination, COALESCE(password_hash, ''), expires_at, owner_id, created_at
		FROM short_links
		WHERE owner_id = $1
		ORDER BY created_at DESC, id DESC
	`

	rows, err := r.pool.Query(ctx, query, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list short links: %w", err)
	}
	defer rows.Close()

	var links []*model.ShortLink
	for rows.Next() {
		link, err := scanShortLink(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan short link: %w", err)
		}
		links = append(links, link)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating short links: %w", err)
	}

	return links, nil
}

// DeleteShortLink removes a short link owned by the given user and
// returns its short code for cache invalidation.
// Click events are removed by the ON DELETE CASCADE constraint.
// A non-owner delete reports not-found to avoid leaking existence.
func (r *Repository) DeleteShortLink(ctx context.Context, id, ownerID string) (string, error) {
	query := `DELETE FROM short_links WHERE id = $1 AND owner_id = $2 RETURNING short_code`

	var shortCode string
	if err := r.pool.QueryRow(ctx, query, id, ownerID).Scan(&shortCode); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", ErrShortLinkNotFound
		}
		return "", fmt.Errorf("failed to delete short link: %w", err)
	}

	return shortCode, nil
}

// ShortCodeExists checks if a short code is already taken.
func (r *Repository) ShortCodeExists(ctx context.Context, shortCode string) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM short_links WHERE short_code = $1)`

	var exists bool
	if err := r.pool.QueryRow(ctx, query, shortCode).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check short code existence: %w", err)
	}

	return exists, nil
}

// scanShortLink scans a single row into a ShortLink model.
func scanShortLink(row pgx.Row) (*model.ShortLink, error) {
	var link model.ShortLink
	err := row.Scan(
		&link.ID,
		&link.ShortCode,
		&link.Destination,
		&link.PasswordHash,
		&link.ExpiresAt,
		&link.OwnerID,
		&link.CreatedAt,
	)
	return &link, err
}

// nullableString converts an empty string to nil for nullable columns.
func nullableString(s string) any {
	if s == "" {
		return nil
	}
	return s
}
