package document_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fastygo/marketplace/domain"
	"github.com/fastygo/marketplace/internal/infrastructure/store"
	"github.com/fastygo/marketplace/repository"
	"github.com/fastygo/marketplace/repository/document"
)

func TestSessionLifecycle(t *testing.T) {
	ctx := context.Background()
	repo := document.NewSessionRepository(store.NewMemory(), time.Hour)
	created := time.Date(2026, 2, 1, 10, 0, 0, 0, time.UTC)

	s := &domain.Session{ID: "s1", UserID: "u1", CreatedAt: created}
	require.NoError(t, repo.Save(ctx, s))
	assert.Equal(t, created.Add(time.Hour), s.ExpiresAt, "ttl applied when expiry is unset")

	got, err := repo.Get(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, "u1", got.UserID)

	until := created.Add(48 * time.Hour)
	require.NoError(t, repo.Extend(ctx, "s1", until))
	got, err = repo.Get(ctx, "s1")
	require.NoError(t, err)
	assert.True(t, got.ExpiresAt.Equal(until))

	assert.ErrorIs(t, repo.Extend(ctx, "missing", until), domain.ErrSessionNotFound)

	require.NoError(t, repo.Delete(ctx, "s1"))
	_, err = repo.Get(ctx, "s1")
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)
}

func TestSessionPurgeExpired(t *testing.T) {
	ctx := context.Background()
	repo := document.NewSessionRepository(store.NewMemory(), time.Hour)
	now := time.Date(2026, 2, 1, 10, 0, 0, 0, time.UTC)

	require.NoError(t, repo.Save(ctx, &domain.Session{ID: "old", CreatedAt: now.Add(-2 * time.Hour), ExpiresAt: now.Add(-time.Hour)}))
	require.NoError(t, repo.Save(ctx, &domain.Session{ID: "edge", CreatedAt: now.Add(-time.Hour), ExpiresAt: now}))
	require.NoError(t, repo.Save(ctx, &domain.Session{ID: "live", CreatedAt: now, ExpiresAt: now.Add(time.Hour)}))

	purger, ok := repo.(repository.SessionPurger)
	require.True(t, ok)

	n, err := purger.PurgeExpired(ctx, now)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	_, err = repo.Get(ctx, "live")
	assert.NoError(t, err)
	_, err = repo.Get(ctx, "old")
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)

	n, err = purger.PurgeExpired(ctx, now)
	require.NoError(t, err)
	assert.Zero(t, n)
}
