package repo

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Homme-Noir/Taskflow/internal/model"
)

func TestUserRepo(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()

	pool.Exec(context.Background(), "TRUNCATE users CASCADE")

	r := NewUserRepo(pool)
	ctx := context.Background()

	created, err := r.Create(ctx, model.User{ID: "u-1", Email: "alice@example.com", PasswordHash: "hash"})
	require.NoError(t, err)
	assert.False(t, created.CreatedAt.IsZero())

	got, err := r.GetByEmail(ctx, "alice@example.com")
	require.NoError(t, err)
	assert.Equal(t, "u-1", got.ID)

	_, err = r.Create(ctx, model.User{ID: "u-2", Email: "alice@example.com", PasswordHash: "hash"})
	assert.ErrorIs(t, err, ErrorConflict)

	_, err = r.Get(ctx, "nope")
	assert.ErrorIs(t, err, ErrorNotFound)
}

func TestSessionRepo_DeleteExpired(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()

	ctx := context.Background()
	pool.Exec(ctx, "TRUNCATE users, sessions CASCADE")

	users := NewUserRepo(pool)
	_, err := users.Create(ctx, model.User{ID: "u-1", Email: "a@b.c", PasswordHash: "x"})
	require.NoError(t, err)

	r := NewSessionRepo(pool)
	now := time.Now()

	require.NoError(t, r.Create(ctx, model.Session{Token: "stale", UserID: "u-1", ExpiresAt: now.Add(-time.Hour)}))
	require.NoError(t, r.Create(ctx, model.Session{Token: "fresh", UserID: "u-1", ExpiresAt: now.Add(time.Hour)}))

	deleted, err := r.DeleteExpired(ctx, now)
	require.NoError(t, err)
	assert.Equal(t, int64(1), deleted)

	_, err = r.Get(ctx, "stale")
	assert.ErrorIs(t, err, ErrorNotFound)

	fresh, err := r.Get(ctx, "fresh")
	require.NoError(t, err)
	assert.Equal(t, "u-1", fresh.UserID)
}

func TestTaskRepo_DeleteStaleIdempotencyKeys(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()

	r := NewTaskRepo(pool)
	ctx := context.Background()

	require.NoError(t, r.SaveIdempotencyKey(ctx, "old-key", "owner-a", 1))
	require.NoError(t, r.SaveIdempotencyKey(ctx, "new-key", "owner-a", 2))

	// Age one key past the retention cutoff.
	_, err := pool.Exec(ctx, "UPDATE idempotency_keys SET created_at = now() - interval '48 hours' WHERE key = 'old-key'")
	require.NoError(t, err)

	deleted, err := r.DeleteStaleIdempotencyKeys(ctx, time.Now().Add(-24*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, int64(1), deleted)

	_, err = r.GetIdempotencyKey(ctx, "old-key", "owner-a")
	assert.ErrorIs(t, err, ErrorNotFound)

	id, err := r.GetIdempotencyKey(ctx, "new-key", "owner-a")
	require.NoError(t, err)
	assert.Equal(t, int64(2), id)
}
