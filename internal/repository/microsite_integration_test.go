//go:build integration

package repository

import (
	"context"
	"errors"
	"testing"

	"github.com/tautlabs/taut/internal/model"
	"github.com/tautlabs/taut/internal/testutil"
)

func mustCreateMicrosite(t *testing.T, ctx context.Context, repo *Repository, ownerID string) *model.Microsite {
	t.Helper()
	site := testutil.NewTestMicrosite(t, testutil.UniqueShortCode("site"), ownerID)
	if err := repo.CreateMicrosite(ctx, site); err != nil {
		t.Fatalf("CreateMicrosite failed: %v", err)
	}
	return site
}

func TestIntegrationMicrositeRepository_CreateAndGet(t *testing.T) {
	ctx, repo := newTestEnv(t)
	owner := mustCreateUser(t, ctx, repo)

	site := testutil.NewTestMicrosite(t, "launch-day", owner.ID)
	site.Description = "Launch announcements"
	site.Theme = model.ThemeGradient

	if err := repo.CreateMicrosite(ctx, site); err != nil {
		t.Fatalf("CreateMicrosite failed: %v", err)
	}

	retrieved, err := repo.GetMicrositeByID(ctx, site.ID, owner.ID)
	if err != nil {
		t.Fatalf("GetMicrositeByID failed: %v", err)
	}
	if retrieved.Slug != "launch-day" {
		t.Errorf("Slug = %q, want launch-day", retrieved.Slug)
	}
	if retrieved.Theme != model.ThemeGradient {
		t.Errorf("Theme = %q, want gradient", retrieved.Theme)
	}
	if retrieved.Published {
		t.Error("new microsite should start unpublished")
	}
}

func TestIntegrationMicrositeRepository_Create_DuplicateSlug(t *testing.T) {
	ctx, repo := newTestEnv(t)
	owner := mustCreateUser(t, ctx, repo)

	first := testutil.NewTestMicrosite(t, "taken", owner.ID)
	if err := repo.CreateMicrosite(ctx, first); err != nil {
		t.Fatalf("CreateMicrosite (first) failed: %v", err)
	}

	second := testutil.NewTestMicrosite(t, "taken", owner.ID)
	err := repo.CreateMicrosite(ctx, second)
	if !errors.Is(err, ErrSlugExists) {
		t.Errorf("expected ErrSlugExists, got: %v", err)
	}
}

func TestIntegrationMicrositeRepository_UpdateSlug(t *testing.T) {
	ctx, repo := newTestEnv(t)
	owner := mustCreateUser(t, ctx, repo)

	site := mustCreateMicrosite(t, ctx, repo, owner.ID)
	oldSlug := site.Slug
	site.Slug = testutil.UniqueShortCode("renamed")
	site.Published = true

	if err := repo.UpdateMicrosite(ctx, site); err != nil {
		t.Fatalf("UpdateMicrosite failed: %v", err)
	}

	// The rename must be visible on the public path, and the old slug
	// must stop resolving.
	got, _, _, err := repo.GetPublishedMicrositeBySlug(ctx, site.Slug)
	if err != nil {
		t.Fatalf("GetPublishedMicrositeBySlug failed after rename: %v", err)
	}
	if got.ID != site.ID {
		t.Errorf("site ID = %q, want %q", got.ID, site.ID)
	}
	_, _, _, err = repo.GetPublishedMicrositeBySlug(ctx, oldSlug)
	if !errors.Is(err, ErrMicrositeNotFound) {
		t.Errorf("expected ErrMicrositeNotFound for old slug, got: %v", err)
	}
}

func TestIntegrationMicrositeRepository_UpdateSlug_Taken(t *testing.T) {
	ctx, repo := newTestEnv(t)
	owner := mustCreateUser(t, ctx, repo)

	first := mustCreateMicrosite(t, ctx, repo, owner.ID)
	second := mustCreateMicrosite(t, ctx, repo, owner.ID)

	second.Slug = first.Slug
	err := repo.UpdateMicrosite(ctx, second)
	if !errors.Is(err, ErrSlugExists) {
		t.Errorf("expected ErrSlugExists, got: %v", err)
	}
}

func TestIntegrationMicrositeRepository_GetByID_WrongOwner(t *testing.T) {
	ctx, repo := newTestEnv(t)
	owner := mustCreateUser(t, ctx, repo)
	other := mustCreateUser(t, ctx, repo)

	site := mustCreateMicrosite(t, ctx, repo, owner.ID)

	_, err := repo.GetMicrositeByID(ctx, site.ID, other.ID)
	if !errors.Is(err, ErrMicrositeNotFound) {
		t.Errorf("expected ErrMicrositeNotFound for foreign owner, got: %v", err)
	}
}

func TestIntegrationMicrositeRepository_GetPublishedBySlug(t *testing.T) {
	ctx, repo := newTestEnv(t)
	owner := mustCreateUser(t, ctx, repo)

	site := mustCreateMicrosite(t, ctx, repo, owner.ID)

	// Unpublished sites are invisible on the public path.
	_, _, _, err := repo.GetPublishedMicrositeBySlug(ctx, site.Slug)
	if !errors.Is(err, ErrMicrositeNotFound) {
		t.Errorf("expected ErrMicrositeNotFound for unpublished site, got: %v", err)
	}

	site.Published = true
	if err := repo.UpdateMicrosite(ctx, site); err != nil {
		t.Fatalf("UpdateMicrosite failed: %v", err)
	}

	active := testutil.NewTestMicrositeLink(t, site.ID, "blog")
	if err := repo.CreateMicrositeLink(ctx, owner.ID, active); err != nil {
		t.Fatalf("CreateMicrositeLink failed: %v", err)
	}
	inactive := testutil.NewTestMicrositeLink(t, site.ID, "hidden")
	if err := repo.CreateMicrositeLink(ctx, owner.ID, inactive); err != nil {
		t.Fatalf("CreateMicrositeLink failed: %v", err)
	}
	inactive.Active = false
	if err := repo.UpdateMicrositeLink(ctx, owner.ID, inactive); err != nil {
		t.Fatalf("UpdateMicrositeLink failed: %v", err)
	}

	got, links, gotOwner, err := repo.GetPublishedMicrositeBySlug(ctx, site.Slug)
	if err != nil {
		t.Fatalf("GetPublishedMicrositeBySlug failed: %v", err)
	}
	if got.ID != site.ID {
		t.Errorf("site ID = %q, want %q", got.ID, site.ID)
	}
	if len(links) != 1 || links[0].ID != active.ID {
		t.Errorf("expected only the active link, got %d links", len(links))
	}
	if gotOwner == nil || gotOwner.ID != owner.ID {
		t.Error("owner attribution missing from public lookup")
	}
}

func TestIntegrationMicrositeRepository_LinkPositions(t *testing.T) {
	ctx, repo := newTestEnv(t)
	owner := mustCreateUser(t, ctx, repo)
	site := mustCreateMicrosite(t, ctx, repo, owner.ID)

	var ids []string
	for _, title := range []string{"one", "two", "three"} {
		link := testutil.NewTestMicrositeLink(t, site.ID, title)
		if err := repo.CreateMicrositeLink(ctx, owner.ID, link); err != nil {
			t.Fatalf("CreateMicrositeLink failed: %v", err)
		}
		ids = append(ids, link.ID)
	}

	links, err := repo.ListMicrositeLinks(ctx, site.ID, owner.ID)
	if err != nil {
		t.Fatalf("ListMicrositeLinks failed: %v", err)
	}
	if len(links) != 3 {
		t.Fatalf("len(links) = %d, want 3", len(links))
	}
	for i, link := range links {
		if link.Position != i {
			t.Errorf("links[%d].Position = %d, want %d", i, link.Position, i)
		}
		if link.ID != ids[i] {
			t.Errorf("links[%d].ID = %q, want insertion order", i, link.ID)
		}
	}
}

func TestIntegrationMicrositeRepository_ReorderLinks(t *testing.T) {
	ctx, repo := newTestEnv(t)
	owner := mustCreateUser(t, ctx, repo)
	site := mustCreateMicrosite(t, ctx, repo, owner.ID)

	var ids []string
	for _, title := range []string{"a", "b", "c"} {
		link := testutil.NewTestMicrositeLink(t, site.ID, title)
		if err := repo.CreateMicrositeLink(ctx, owner.ID, link); err != nil {
			t.Fatalf("CreateMicrositeLink failed: %v", err)
		}
		ids = append(ids, link.ID)
	}

	reversed := []string{ids[2], ids[1], ids[0]}
	if err := repo.ReorderMicrositeLinks(ctx, site.ID, owner.ID, reversed); err != nil {
		t.Fatalf("ReorderMicrositeLinks failed: %v", err)
	}

	links, err := repo.ListMicrositeLinks(ctx, site.ID, owner.ID)
	if err != nil {
		t.Fatalf("ListMicrositeLinks failed: %v", err)
	}
	for i, link := range links {
		if link.ID != reversed[i] {
			t.Errorf("links[%d].ID = %q, want %q", i, link.ID, reversed[i])
		}
		if link.Position != i {
			t.Errorf("links[%d].Position = %d, want %d", i, link.Position, i)
		}
	}
}

func TestIntegrationMicrositeRepository_DeleteCascadesLinks(t *testing.T) {
	ctx, repo := newTestEnv(t)
	owner := mustCreateUser(t, ctx, repo)
	site := mustCreateMicrosite(t, ctx, repo, owner.ID)

	link := testutil.NewTestMicrositeLink(t, site.ID, "gone")
	if err := repo.CreateMicrositeLink(ctx, owner.ID, link); err != nil {
		t.Fatalf("CreateMicrositeLink failed: %v", err)
	}

	if err := repo.DeleteMicrosite(ctx, site.ID, owner.ID); err != nil {
		t.Fatalf("DeleteMicrosite failed: %v", err)
	}

	_, err := repo.GetMicrositeLinkByID(ctx, link.ID)
	if !errors.Is(err, ErrMicrositeLinkNotFound) {
		t.Errorf("expected link to cascade away, got: %v", err)
	}
}
