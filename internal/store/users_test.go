// SPDX-License-Identifier: MIT

package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserStore_CreateAndFetch(t *testing.T) {
	_, users := newTestDB(t)
	ctx := context.Background()

	created, err := users.Create(ctx, "user@example.com", "hashed-secret")
	require.NoError(t, err)
	assert.Positive(t, created.ID)
	assert.False(t, created.IsVerified)

	got, err := users.ByEmail(ctx, "user@example.com")
	require.NoError(t, err)
	assert.Equal(t, created.ID, got.ID)
	assert.Equal(t, "hashed-secret", got.HashedPassword)
	assert.Nil(t, got.AvatarURL)
}

func TestUserStore_DuplicateEmail(t *testing.T) {
	_, users := newTestDB(t)
	ctx := context.Background()

	_, err := users.Create(ctx, "user@example.com", "h1")
	require.NoError(t, err)

	_, err = users.Create(ctx, "user@example.com", "h2")
	assert.ErrorIs(t, err, ErrDuplicateEmail)
}

func TestUserStore_ByEmailNotFound(t *testing.T) {
	_, users := newTestDB(t)

	_, err := users.ByEmail(context.Background(), "ghost@example.com")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUserStore_MarkVerified(t *testing.T) {
	_, users := newTestDB(t)
	ctx := context.Background()

	_, err := users.Create(ctx, "user@example.com", "h")
	require.NoError(t, err)

	require.NoError(t, users.MarkVerified(ctx, "user@example.com"))

	got, err := users.ByEmail(ctx, "user@example.com")
	require.NoError(t, err)
	assert.True(t, got.IsVerified)

	assert.ErrorIs(t, users.MarkVerified(ctx, "ghost@example.com"), ErrNotFound)
}

func TestUserStore_SetAvatarURL(t *testing.T) {
	_, users := newTestDB(t)
	ctx := context.Background()

	_, err := users.Create(ctx, "user@example.com", "h")
	require.NoError(t, err)

	require.NoError(t, users.SetAvatarURL(ctx, "user@example.com", "https://cdn.example.com/a.png"))

	got, err := users.ByEmail(ctx, "user@example.com")
	require.NoError(t, err)
	require.NotNil(t, got.AvatarURL)
	assert.Equal(t, "https://cdn.example.com/a.png", *got.AvatarURL)

	assert.ErrorIs(t, users.SetAvatarURL(ctx, "ghost@example.com", "x"), ErrNotFound)
}

func TestVerifyIntegrity_HealthyDB(t *testing.T) {
	ctx := context.Background()

	dbPath := t.TempDir() + "/verify.db"
	db, err := Open(dbPath, DefaultConfig())
	require.NoError(t, err)
	require.NoError(t, Migrate(ctx, db))

	contacts := NewContactStore(db)
	_, err = contacts.Create(ctx, testContact(t, "a@example.com", "123"))
	require.NoError(t, err)
	require.NoError(t, db.Close())

	problems, err := VerifyIntegrity(dbPath, "quick")
	require.NoError(t, err)
	assert.Empty(t, problems)

	problems, err = VerifyIntegrity(dbPath, "full")
	require.NoError(t, err)
	assert.Empty(t, problems)
}
