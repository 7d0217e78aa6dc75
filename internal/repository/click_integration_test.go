//go:build integration

package repository

import (
	"testing"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/tautlabs/taut/internal/model"
	"github.com/tautlabs/taut/internal/testutil"
)

func TestIntegrationClickRepository_BulkInsertShortLinkClicks(t *testing.T) {
	ctx, repo := newTestEnv(t)
	owner := mustCreateUser(t, ctx, repo)

	link := testutil.NewTestShortLink(t, testutil.UniqueShortCode("clk"), owner.ID)
	if err := repo.CreateShortLink(ctx, link); err != nil {
		t.Fatalf("CreateShortLink failed: %v", err)
	}

	now := time.Now().UTC()
	clicks := []*model.ShortLinkClick{
		{
			ID:          ulid.Make().String(),
			EventID:     "1700000000000-0",
			ShortLinkID: link.ID,
			UserAgent:   "Mozilla/5.0",
			Country:     "DE",
			ClickedAt:   now,
		},
		{
			ID:          ulid.Make().String(),
			EventID:     "1700000000000-1",
			ShortLinkID: link.ID,
			Country:     "unknown",
			ClickedAt:   now,
		},
	}

	if err := repo.BulkInsertShortLinkClicks(ctx, clicks); err != nil {
		t.Fatalf("BulkInsertShortLinkClicks failed: %v", err)
	}

	count, err := repo.CountShortLinkClicks(ctx, link.ID)
	if err != nil {
		t.Fatalf("CountShortLinkClicks failed: %v", err)
	}
	if count != 2 {
		t.Errorf("count = %d, want 2", count)
	}
}

func TestIntegrationClickRepository_ShortLinkClicks_Idempotent(t *testing.T) {
	ctx, repo := newTestEnv(t)
	owner := mustCreateUser(t, ctx, repo)

	link := testutil.NewTestShortLink(t, testutil.UniqueShortCode("idem"), owner.ID)
	if err := repo.CreateShortLink(ctx, link); err != nil {
		t.Fatalf("CreateShortLink failed: %v", err)
	}

	click := &model.ShortLinkClick{
		ID:          ulid.Make().String(),
		EventID:     "1700000000001-0",
		ShortLinkID: link.ID,
		ClickedAt:   time.Now().UTC(),
	}

	if err := repo.BulkInsertShortLinkClicks(ctx, []*model.ShortLinkClick{click}); err != nil {
		t.Fatalf("first insert failed: %v", err)
	}

	// Redelivery: same event id under a fresh row id must be a no-op.
	replay := *click
	replay.ID = ulid.Make().String()
	if err := repo.BulkInsertShortLinkClicks(ctx, []*model.ShortLinkClick{&replay}); err != nil {
		t.Fatalf("replay insert failed: %v", err)
	}

	count, err := repo.CountShortLinkClicks(ctx, link.ID)
	if err != nil {
		t.Fatalf("CountShortLinkClicks failed: %v", err)
	}
	if count != 1 {
		t.Errorf("count = %d, want 1 after replay", count)
	}
}

func TestIntegrationClickRepository_ShortLinkClicks_VanishedLink(t *testing.T) {
	ctx, repo := newTestEnv(t)

	click := &model.ShortLinkClick{
		ID:          ulid.Make().String(),
		EventID:     "1700000000002-0",
		ShortLinkID: "never-existed",
		ClickedAt:   time.Now().UTC(),
	}

	// The insert joins against short_links; a vanished parent is skipped,
	// not an error.
	if err := repo.BulkInsertShortLinkClicks(ctx, []*model.ShortLinkClick{click}); err != nil {
		t.Fatalf("insert for vanished link should not fail: %v", err)
	}
}

func TestIntegrationClickRepository_MicrositeClicks(t *testing.T) {
	ctx, repo := newTestEnv(t)
	owner := mustCreateUser(t, ctx, repo)
	site := mustCreateMicrosite(t, ctx, repo, owner.ID)

	link := testutil.NewTestMicrositeLink(t, site.ID, "blog")
	if err := repo.CreateMicrositeLink(ctx, owner.ID, link); err != nil {
		t.Fatalf("CreateMicrositeLink failed: %v", err)
	}

	now := time.Now().UTC()
	clicks := []*model.MicrositeClick{
		{
			ID:          ulid.Make().String(),
			EventID:     "1700000000003-0",
			MicrositeID: site.ID,
			Country:     "SE",
			ClickedAt:   now,
		},
		{
			ID:          ulid.Make().String(),
			EventID:     "1700000000003-1",
			MicrositeID: site.ID,
			LinkID:      link.ID,
			ClickedAt:   now,
		},
	}

	if err := repo.BulkInsertMicrositeClicks(ctx, clicks); err != nil {
		t.Fatalf("BulkInsertMicrositeClicks failed: %v", err)
	}

	count, err := repo.CountMicrositeClicks(ctx, site.ID)
	if err != nil {
		t.Fatalf("CountMicrositeClicks failed: %v", err)
	}
	if count != 2 {
		t.Errorf("count = %d, want 2", count)
	}
}
