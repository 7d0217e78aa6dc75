//go:build integration

package repository

import (
	"context"
	"testing"

	"github.com/tautlabs/taut/internal/model"
	"github.com/tautlabs/taut/internal/testutil"
)

// newTestEnv connects to the test database, serializes access, and
// resets the schema. Every integration test starts from a clean slate.
func newTestEnv(t *testing.T) (context.Context, *Repository) {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping integration tests in short mode")
	}

	ctx := context.Background()
	dbURL := testutil.RequireEnv(t, "DATABASE_URL")

	repo, err := New(ctx, dbURL)
	if err != nil {
		t.Fatalf("connect db: %v", err)
	}
	t.Cleanup(repo.Close)

	unlock, err := testutil.AcquireDBLock(ctx, repo.Pool())
	if err != nil {
		t.Fatalf("acquire db lock: %v", err)
	}
	t.Cleanup(func() {
		_ = unlock()
	})

	if err := testutil.ResetSchema(ctx, repo.Pool()); err != nil {
		t.Fatalf("reset schema: %v", err)
	}

	return ctx, repo
}

// mustCreateUser inserts a fresh owner for fixtures that need one.
func mustCreateUser(t *testing.T, ctx context.Context, repo *Repository) *model.User {
	t.Helper()
	user, err := repo.UpsertUser(ctx, testutil.NewTestUser(t, testutil.UniqueID("owner")+"@example.com"))
	if err != nil {
		t.Fatalf("create user: %v", err)
	}
	return user
}
