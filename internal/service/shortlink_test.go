package service

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/tautlabs/taut/internal/auth"
	"github.com/tautlabs/taut/internal/model"
	"github.com/tautlabs/taut/internal/repository"
	"github.com/tautlabs/taut/internal/slug"
)

// fakeShortLinkStore is an in-memory ShortLinkStore.
type fakeShortLinkStore struct {
	mu     sync.Mutex
	byID   map[string]*model.ShortLink
	byCode map[string]*model.ShortLink
}

func newFakeShortLinkStore() *fakeShortLinkStore {
	return &fakeShortLinkStore{
		byID:   make(map[string]*model.ShortLink),
		byCode: make(map[string]*model.ShortLink),
	}
}

func (f *fakeShortLinkStore) CreateShortLink(ctx context.Context, link *model.ShortLink) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, exists := f.byCode[link.ShortCode]; exists {
		return repository.ErrShortCodeExists
	}
	copied := *link
	f.byID[link.ID] = &copied
	f.byCode[link.ShortCode] = &copied
	return nil
}

func (f *fakeShortLinkStore) GetShortLinkByCode(ctx context.Context, shortCode string) (*model.ShortLink, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	link, ok := f.byCode[shortCode]
	if !ok {
		return nil, repository.ErrShortLinkNotFound
	}
	return link, nil
}

func (f *fakeShortLinkStore) ListShortLinksByOwner(ctx context.Context, ownerID string) ([]*model.ShortLink, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*model.ShortLink
	for _, link := range f.byID {
		if link.OwnerID == ownerID {
			out = append(out, link)
		}
	}
	return out, nil
}

func (f *fakeShortLinkStore) DeleteShortLink(ctx context.Context, id, ownerID string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	link, ok := f.byID[id]
	if !ok || link.OwnerID != ownerID {
		return "", repository.ErrShortLinkNotFound
	}
	delete(f.byID, id)
	delete(f.byCode, link.ShortCode)
	return link.ShortCode, nil
}

func (f *fakeShortLinkStore) ShortCodeExists(ctx context.Context, shortCode string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, exists := f.byCode[shortCode]
	return exists, nil
}

func newShortLinkService(t *testing.T, store ShortLinkStore, linkCache LinkCache) *ShortLinkService {
	t.Helper()
	codes, err := slug.NewGenerator(slug.DefaultCodeLength)
	if err != nil {
		t.Fatalf("NewGenerator failed: %v", err)
	}
	return NewShortLinkService(store, linkCache, codes, "https://taut.sh/", nil)
}

func TestCreateShortLink_GeneratedCode(t *testing.T) {
	store := newFakeShortLinkStore()
	svc := newShortLinkService(t, store, nil)

	link, err := svc.CreateShortLink(context.Background(), CreateShortLinkInput{
		Destination: "https://example.com/page",
		OwnerID:     "user-1",
	})
	if err != nil {
		t.Fatalf("CreateShortLink failed: %v", err)
	}

	if len(link.ShortCode) != slug.DefaultCodeLength {
		t.Errorf("code length = %d, want %d", len(link.ShortCode), slug.DefaultCodeLength)
	}
	if link.ID == "" {
		t.Error("ID should be assigned")
	}
	if link.PasswordHash != "" {
		t.Error("no password given, hash should be empty")
	}

	stored, err := store.GetShortLinkByCode(context.Background(), link.ShortCode)
	if err != nil {
		t.Fatalf("link not persisted: %v", err)
	}
	if stored.Destination != "https://example.com/page" {
		t.Errorf("destination = %q", stored.Destination)
	}
}

func TestCreateShortLink_CustomAlias(t *testing.T) {
	store := newFakeShortLinkStore()
	svc := newShortLinkService(t, store, nil)

	link, err := svc.CreateShortLink(context.Background(), CreateShortLinkInput{
		Destination: "https://example.com",
		Alias:       "my-launch_2026",
		OwnerID:     "user-1",
	})
	if err != nil {
		t.Fatalf("CreateShortLink failed: %v", err)
	}
	if link.ShortCode != "my-launch_2026" {
		t.Errorf("ShortCode = %q", link.ShortCode)
	}
}

func TestCreateShortLink_AliasValidation(t *testing.T) {
	store := newFakeShortLinkStore()
	svc := newShortLinkService(t, store, nil)

	tests := []struct {
		name    string
		alias   string
		wantErr error
	}{
		{"too short", "ab", ErrInvalidAlias},
		{"too long", strings.Repeat("a", 33), ErrInvalidAlias},
		{"bad characters", "has space", ErrInvalidAlias},
		{"reserved word", "api", ErrAliasReserved},
		{"reserved word uppercase", "Login", ErrAliasReserved},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.CreateShortLink(context.Background(), CreateShortLinkInput{
				Destination: "https://example.com",
				Alias:       tt.alias,
				OwnerID:     "user-1",
			})
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("err = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestCreateShortLink_AliasCollision(t *testing.T) {
	store := newFakeShortLinkStore()
	svc := newShortLinkService(t, store, nil)

	input := CreateShortLinkInput{
		Destination: "https://example.com",
		Alias:       "taken123",
		OwnerID:     "user-1",
	}
	if _, err := svc.CreateShortLink(context.Background(), input); err != nil {
		t.Fatalf("first create failed: %v", err)
	}

	_, err := svc.CreateShortLink(context.Background(), input)
	if !errors.Is(err, ErrAliasExists) {
		t.Fatalf("err = %v, want ErrAliasExists", err)
	}
}

func TestCreateShortLink_DestinationValidation(t *testing.T) {
	store := newFakeShortLinkStore()
	svc := newShortLinkService(t, store, nil)

	tests := []struct {
		name    string
		dest    string
		wantErr error
	}{
		{"empty", "", ErrInvalidDestination},
		{"no scheme", "example.com/page", ErrInvalidDestination},
		{"ftp scheme", "ftp://example.com/file", ErrInvalidDestination},
		{"javascript scheme", "javascript:alert(1)", ErrInvalidDestination},
		{"no host", "https://", ErrInvalidDestination},
		{"too long", "https://example.com/" + strings.Repeat("a", 2048), ErrURLTooLong},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.CreateShortLink(context.Background(), CreateShortLinkInput{
				Destination: tt.dest,
				OwnerID:     "user-1",
			})
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("err = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestCreateShortLink_ExpiryInPast(t *testing.T) {
	store := newFakeShortLinkStore()
	svc := newShortLinkService(t, store, nil)

	past := time.Now().Add(-time.Hour)
	_, err := svc.CreateShortLink(context.Background(), CreateShortLinkInput{
		Destination: "https://example.com",
		ExpiresAt:   &past,
		OwnerID:     "user-1",
	})
	if !errors.Is(err, ErrExpiresInPast) {
		t.Fatalf("err = %v, want ErrExpiresInPast", err)
	}
}

func TestCreateShortLink_PasswordHashed(t *testing.T) {
	store := newFakeShortLinkStore()
	svc := newShortLinkService(t, store, nil)

	link, err := svc.CreateShortLink(context.Background(), CreateShortLinkInput{
		Destination: "https://example.com",
		Password:    "hunter2",
		OwnerID:     "user-1",
	})
	if err != nil {
		t.Fatalf("CreateShortLink failed: %v", err)
	}

	if link.PasswordHash == "" || link.PasswordHash == "hunter2" {
		t.Fatal("password must be stored as a hash")
	}
	ok, err := auth.VerifyPassword("hunter2", link.PasswordHash)
	if err != nil || !ok {
		t.Fatalf("stored hash does not verify: ok=%v err=%v", ok, err)
	}
}

func TestDeleteShortLink_InvalidatesCache(t *testing.T) {
	store := newFakeShortLinkStore()
	linkCache := newFakeLinkCache()
	svc := newShortLinkService(t, store, linkCache)

	link, err := svc.CreateShortLink(context.Background(), CreateShortLinkInput{
		Destination: "https://example.com",
		Alias:       "bye1234",
		OwnerID:     "user-1",
	})
	if err != nil {
		t.Fatalf("CreateShortLink failed: %v", err)
	}
	if err := linkCache.SetShortLink(context.Background(), link.ShortCode, link); err != nil {
		t.Fatalf("SetShortLink failed: %v", err)
	}

	if err := svc.DeleteShortLink(context.Background(), link.ID, "user-1"); err != nil {
		t.Fatalf("DeleteShortLink failed: %v", err)
	}

	if len(linkCache.deletes) == 0 {
		t.Error("delete should invalidate the cache entry")
	}
	if _, err := store.GetShortLinkByCode(context.Background(), "bye1234"); !errors.Is(err, repository.ErrShortLinkNotFound) {
		t.Error("link should be removed from the store")
	}
}

func TestDeleteShortLink_WrongOwnerReportsNotFound(t *testing.T) {
	store := newFakeShortLinkStore()
	svc := newShortLinkService(t, store, nil)

	link, err := svc.CreateShortLink(context.Background(), CreateShortLinkInput{
		Destination: "https://example.com",
		OwnerID:     "user-1",
	})
	if err != nil {
		t.Fatalf("CreateShortLink failed: %v", err)
	}

	err = svc.DeleteShortLink(context.Background(), link.ID, "user-2")
	if !errors.Is(err, ErrShortLinkNotFound) {
		t.Fatalf("err = %v, want ErrShortLinkNotFound", err)
	}
}

func TestShortURL(t *testing.T) {
	svc := newShortLinkService(t, newFakeShortLinkStore(), nil)

	if got := svc.ShortURL("abc1234"); got != "https://taut.sh/abc1234" {
		t.Errorf("ShortURL = %q", got)
	}
}
