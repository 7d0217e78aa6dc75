package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/tautlabs/taut/internal/model"
)

// BulkInsertShortLinkClicks inserts click events with idempotency via
// ON CONFLICT DO NOTHING on the stream-derived event id. Events whose
// parent link vanished between publish and insert are skipped.
func (r *Repository) BulkInsertShortLinkClicks(ctx context.Context, clicks []*model.ShortLinkClick) error {
	if len(clicks) == 0 {
		return nil
	}

	batch := &pgx.Batch{}

	query := `
		INSERT INTO short_link_clicks (id, event_id, short_link_id, user_agent, country, clicked_at, created_at)
		SELECT $1, $2, l.id, $4, $5, $6, NOW()
		FROM short_links l
		WHERE l.id = $3
		ON CONFLICT (event_id) DO NOTHING
	`

	for _, click := range clicks {
		batch.Queue(query,
			click.ID,
			click.EventID,
			click.ShortLinkID,
			nullableString(click.UserAgent),
			nullableString(click.Country),
			click.ClickedAt,
		)
	}

	results := r.pool.SendBatch(ctx, batch)
	defer results.Close()

	for i := 0; i < len(clicks); i++ {
		if _, err := results.Exec(); err != nil {
			return fmt.Errorf("batch insert short link click %d: %w", i, err)
		}
	}

	return nil
}

// BulkInsertMicrositeClicks inserts page-view and link-click events for
// microsites. LinkID is stored as NULL for page views.
func (r *Repository) BulkInsertMicrositeClicks(ctx context.Context, clicks []*model.MicrositeClick) error {
	if len(clicks) == 0 {
		return nil
	}

	batch := &pgx.Batch{}

	query := `
		INSERT INTO microsite_clicks (id, event_id, microsite_id, link_id, user_agent, country, clicked_at, created_at)
		SELECT $1, $2, m.id, $4, $5, $6, $7, NOW()
		FROM microsites m
		WHERE m.id = $3
		ON CONFLICT (event_id) DO NOTHING
	`

	for _, click := range clicks {
		batch.Queue(query,
			click.ID,
			click.EventID,
			click.MicrositeID,
			nullableString(click.LinkID),
			nullableString(click.UserAgent),
			nullableString(click.Country),
			click.ClickedAt,
		)
	}

	results := r.pool.SendBatch(ctx, batch)
	defer results.Close()

	for i := 0; i < len(clicks); i++ {
		if _, err := results.Exec(); err != nil {
			return fmt.Errorf("batch insert microsite click %d: %w", i, err)
		}
	}

	return nil
}

// CountShortLinkClicks returns the number of recorded clicks for a link.
func (r *Repository) CountShortLinkClicks(ctx context.Context, shortLinkID string) (int64, error) {
	var count int64
	err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM short_link_clicks WHERE short_link_id = $1`,
		shortLinkID,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count short link clicks: %w", err)
	}
	return count, nil
}

// CountMicrositeClicks returns the number of recorded events for a
// microsite, page views included.
func (r *Repository) CountMicrositeClicks(ctx context.Context, micrositeID string) (int64, error) {
	var count int64
	err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM microsite_clicks WHERE microsite_id = $1`,
		micrositeID,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count microsite clicks: %w", err)
	}
	return count, nil
}
