//go:build integration

package repository

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/penshort/user-service/internal/testutil"
)

// ============================================================================
// User Repository Integration Tests
// ============================================================================

func TestIntegrationUserRepository_CreateAndGet(t *testing.T) {
	ctx, repo := newUserTestEnv(t)

	username := testutil.UniqueName("alice")
	email := testutil.UniqueEmail("alice")

	created, err := repo.CreateUser(ctx, username, email)
	if err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}
	if created.ID <= 0 {
		t.Errorf("expected positive ID, got %d", created.ID)
	}
	if created.CreatedAt.IsZero() {
		t.Error("CreatedAt should be set by the database")
	}

	retrieved, err := repo.GetUserByID(ctx, created.ID)
	if err != nil {
		t.Fatalf("GetUserByID failed: %v", err)
	}
	if retrieved.Username != username {
		t.Errorf("Username mismatch: got %q, want %q", retrieved.Username, username)
	}
	if retrieved.Email != email {
		t.Errorf("Email mismatch: got %q, want %q", retrieved.Email, email)
	}
	if !retrieved.CreatedAt.Equal(created.CreatedAt) {
		t.Errorf("CreatedAt mismatch: got %v, want %v", retrieved.CreatedAt, created.CreatedAt)
	}
}

func TestIntegrationUserRepository_IDsIncrease(t *testing.T) {
	ctx, repo := newUserTestEnv(t)

	var last int64
	for i := 0; i < 3; i++ {
		user, err := repo.CreateUser(ctx, testutil.UniqueName("seq"), testutil.UniqueEmail("seq"))
		if err != nil {
			t.Fatalf("CreateUser #%d failed: %v", i, err)
		}
		if user.ID <= last {
			t.Errorf("ID %d is not greater than previous %d", user.ID, last)
		}
		last = user.ID
	}
}

func TestIntegrationUserRepository_DuplicateUsername(t *testing.T) {
	ctx, repo := newUserTestEnv(t)

	username := testutil.UniqueName("dup")
	if _, err := repo.CreateUser(ctx, username, testutil.UniqueEmail("first")); err != nil {
		t.Fatalf("CreateUser (first) failed: %v", err)
	}

	before := mustCount(t, ctx, repo)

	_, err := repo.CreateUser(ctx, username, testutil.UniqueEmail("second"))
	if !errors.Is(err, ErrUserExists) {
		t.Fatalf("expected ErrUserExists, got %v", err)
	}

	if after := mustCount(t, ctx, repo); after != before {
		t.Errorf("row count changed after conflict: before=%d after=%d", before, after)
	}
}

func TestIntegrationUserRepository_DuplicateEmail(t *testing.T) {
	ctx, repo := newUserTestEnv(t)

	email := testutil.UniqueEmail("shared")
	if _, err := repo.CreateUser(ctx, testutil.UniqueName("one"), email); err != nil {
		t.Fatalf("CreateUser (first) failed: %v", err)
	}

	_, err := repo.CreateUser(ctx, testutil.UniqueName("two"), email)
	if !errors.Is(err, ErrUserExists) {
		t.Fatalf("expected ErrUserExists, got %v", err)
	}
}

func TestIntegrationUserRepository_ConcurrentDuplicates(t *testing.T) {
	ctx, repo := newUserTestEnv(t)

	username := testutil.UniqueName("race")
	email := testutil.UniqueEmail("race")

	const workers = 8
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		created   int
		conflicts int
	)

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := repo.CreateUser(ctx, username, email)
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				created++
			case errors.Is(err, ErrUserExists):
				conflicts++
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	if created != 1 {
		t.Errorf("expected exactly one insert to win, got %d", created)
	}
	if conflicts != workers-1 {
		t.Errorf("expected %d conflicts, got %d", workers-1, conflicts)
	}
}

func TestIntegrationUserRepository_GetNotFound(t *testing.T) {
	ctx, repo := newUserTestEnv(t)

	_, err := repo.GetUserByID(ctx, 1<<40)
	if !errors.Is(err, ErrUserNotFound) {
		t.Errorf("expected ErrUserNotFound, got %v", err)
	}
}

func TestIntegrationUserRepository_List(t *testing.T) {
	ctx, repo := newUserTestEnv(t)

	users, err := repo.ListUsers(ctx)
	if err != nil {
		t.Fatalf("ListUsers failed: %v", err)
	}
	if len(users) != 0 {
		t.Fatalf("expected empty table, got %d users", len(users))
	}

	first, err := repo.CreateUser(ctx, testutil.UniqueName("a"), testutil.UniqueEmail("a"))
	if err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}
	second, err := repo.CreateUser(ctx, testutil.UniqueName("b"), testutil.UniqueEmail("b"))
	if err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}

	users, err = repo.ListUsers(ctx)
	if err != nil {
		t.Fatalf("ListUsers failed: %v", err)
	}
	if len(users) != 2 {
		t.Fatalf("expected 2 users, got %d", len(users))
	}
	if users[0].ID != first.ID || users[1].ID != second.ID {
		t.Errorf("unexpected order: got [%d %d], want [%d %d]", users[0].ID, users[1].ID, first.ID, second.ID)
	}
}

func TestIntegrationUserRepository_EnsureSchemaIdempotent(t *testing.T) {
	ctx, repo := newUserTestEnv(t)

	if err := repo.EnsureSchema(ctx); err != nil {
		t.Fatalf("second EnsureSchema should not fail: %v", err)
	}
}

// ============================================================================
// Test Environment Setup
// ============================================================================

func newUserTestEnv(t *testing.T) (context.Context, *Repository) {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping integration tests in short mode")
	}

	ctx := context.Background()
	dbURL := testutil.RequireEnv(t, "DATABASE_URL")

	repo, err := New(ctx, dbURL, 10)
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

	if err := testutil.DropUsersTable(ctx, repo.Pool()); err != nil {
		t.Fatalf("reset users table: %v", err)
	}
	if err := repo.EnsureSchema(ctx); err != nil {
		t.Fatalf("ensure schema: %v", err)
	}

	return ctx, repo
}

func mustCount(t *testing.T, ctx context.Context, repo *Repository) int64 {
	t.Helper()
	count, err := repo.CountUsers(ctx)
	if err != nil {
		t.Fatalf("CountUsers failed: %v", err)
	}
	return count
}
