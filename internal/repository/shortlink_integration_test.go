//go:build integration

package repository

import (
	"errors"
	"testing"
	"time"

	"github.com/tautlabs/taut/internal/testutil"
)

func TestIntegrationShortLinkRepository_Create(t *testing.T) {
	ctx, repo := newTestEnv(t)
	owner := mustCreateUser(t, ctx, repo)

	shortCode := testutil.UniqueShortCode("create")
	link := testutil.NewTestShortLink(t, shortCode, owner.ID)

	if err := repo.CreateShortLink(ctx, link); err != nil {
		t.Fatalf("CreateShortLink failed: %v", err)
	}

	retrieved, err := repo.GetShortLinkByCode(ctx, shortCode)
	if err != nil {
		t.Fatalf("GetShortLinkByCode failed: %v", err)
	}

	if retrieved.ID != link.ID {
		t.Errorf("ID mismatch: got %q, want %q", retrieved.ID, link.ID)
	}
	if retrieved.Destination != link.Destination {
		t.Errorf("Destination mismatch: got %q, want %q", retrieved.Destination, link.Destination)
	}
	if retrieved.PasswordHash != "" {
		t.Errorf("PasswordHash should be empty, got %q", retrieved.PasswordHash)
	}
	if retrieved.ExpiresAt != nil {
		t.Error("ExpiresAt should be nil")
	}
}

func TestIntegrationShortLinkRepository_Create_DuplicateCode(t *testing.T) {
	ctx, repo := newTestEnv(t)
	owner := mustCreateUser(t, ctx, repo)

	shortCode := testutil.UniqueShortCode("dup")
	first := testutil.NewTestShortLink(t, shortCode, owner.ID)
	second := testutil.NewTestShortLink(t, shortCode, owner.ID)

	if err := repo.CreateShortLink(ctx, first); err != nil {
		t.Fatalf("CreateShortLink (first) failed: %v", err)
	}

	err := repo.CreateShortLink(ctx, second)
	if !errors.Is(err, ErrShortCodeExists) {
		t.Errorf("expected ErrShortCodeExists, got: %v", err)
	}
}

func TestIntegrationShortLinkRepository_PasswordAndExpiry(t *testing.T) {
	ctx, repo := newTestEnv(t)
	owner := mustCreateUser(t, ctx, repo)

	expires := time.Now().Add(time.Hour).UTC().Truncate(time.Second)
	link := testutil.NewTestShortLink(t, testutil.UniqueShortCode("prot"), owner.ID)
	link.PasswordHash = "$argon2id$v=19$m=65536,t=3,p=2$c2FsdA$aGFzaA"
	link.ExpiresAt = &expires

	if err := repo.CreateShortLink(ctx, link); err != nil {
		t.Fatalf("CreateShortLink failed: %v", err)
	}

	retrieved, err := repo.GetShortLinkByCode(ctx, link.ShortCode)
	if err != nil {
		t.Fatalf("GetShortLinkByCode failed: %v", err)
	}

	if retrieved.PasswordHash != link.PasswordHash {
		t.Errorf("PasswordHash mismatch: got %q", retrieved.PasswordHash)
	}
	if retrieved.ExpiresAt == nil || !retrieved.ExpiresAt.Equal(expires) {
		t.Errorf("ExpiresAt mismatch: got %v, want %v", retrieved.ExpiresAt, expires)
	}
}

func TestIntegrationShortLinkRepository_ListByOwner(t *testing.T) {
	ctx, repo := newTestEnv(t)
	owner := mustCreateUser(t, ctx, repo)
	other := mustCreateUser(t, ctx, repo)

	for i := 0; i < 3; i++ {
		link := testutil.NewTestShortLink(t, testutil.UniqueShortCode("list"), owner.ID)
		if err := repo.CreateShortLink(ctx, link); err != nil {
			t.Fatalf("CreateShortLink failed: %v", err)
		}
		time.Sleep(time.Millisecond)
	}
	otherLink := testutil.NewTestShortLink(t, testutil.UniqueShortCode("other"), other.ID)
	if err := repo.CreateShortLink(ctx, otherLink); err != nil {
		t.Fatalf("CreateShortLink failed: %v", err)
	}

	links, err := repo.ListShortLinksByOwner(ctx, owner.ID)
	if err != nil {
		t.Fatalf("ListShortLinksByOwner failed: %v", err)
	}

	if len(links) != 3 {
		t.Fatalf("len(links) = %d, want 3", len(links))
	}
	for i := 1; i < len(links); i++ {
		if links[i].CreatedAt.After(links[i-1].CreatedAt) {
			t.Error("links should be ordered newest first")
		}
	}
}

func TestIntegrationShortLinkRepository_Delete(t *testing.T) {
	ctx, repo := newTestEnv(t)
	owner := mustCreateUser(t, ctx, repo)

	link := testutil.NewTestShortLink(t, testutil.UniqueShortCode("del"), owner.ID)
	if err := repo.CreateShortLink(ctx, link); err != nil {
		t.Fatalf("CreateShortLink failed: %v", err)
	}

	code, err := repo.DeleteShortLink(ctx, link.ID, owner.ID)
	if err != nil {
		t.Fatalf("DeleteShortLink failed: %v", err)
	}
	if code != link.ShortCode {
		t.Errorf("returned code = %q, want %q", code, link.ShortCode)
	}

	_, err = repo.GetShortLinkByCode(ctx, link.ShortCode)
	if !errors.Is(err, ErrShortLinkNotFound) {
		t.Errorf("expected ErrShortLinkNotFound after delete, got: %v", err)
	}
}

func TestIntegrationShortLinkRepository_Delete_WrongOwner(t *testing.T) {
	ctx, repo := newTestEnv(t)
	owner := mustCreateUser(t, ctx, repo)
	other := mustCreateUser(t, ctx, repo)

	link := testutil.NewTestShortLink(t, testutil.UniqueShortCode("own"), owner.ID)
	if err := repo.CreateShortLink(ctx, link); err != nil {
		t.Fatalf("CreateShortLink failed: %v", err)
	}

	_, err := repo.DeleteShortLink(ctx, link.ID, other.ID)
	if !errors.Is(err, ErrShortLinkNotFound) {
		t.Errorf("expected ErrShortLinkNotFound for foreign owner, got: %v", err)
	}

	if _, err := repo.GetShortLinkByCode(ctx, link.ShortCode); err != nil {
		t.Errorf("link should survive a foreign delete attempt: %v", err)
	}
}

func TestIntegrationShortLinkRepository_ShortCodeExists(t *testing.T) {
	ctx, repo := newTestEnv(t)
	owner := mustCreateUser(t, ctx, repo)

	link := testutil.NewTestShortLink(t, testutil.UniqueShortCode("exists"), owner.ID)
	if err := repo.CreateShortLink(ctx, link); err != nil {
		t.Fatalf("CreateShortLink failed: %v", err)
	}

	exists, err := repo.ShortCodeExists(ctx, link.ShortCode)
	if err != nil {
		t.Fatalf("ShortCodeExists failed: %v", err)
	}
	if !exists {
		t.Error("expected existing code to report true")
	}

	exists, err = repo.ShortCodeExists(ctx, "never-created")
	if err != nil {
		t.Fatalf("ShortCodeExists failed: %v", err)
	}
	if exists {
		t.Error("expected missing code to report false")
	}
}
