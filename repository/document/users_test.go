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

func newStore(t *testing.T) (*document.Store, store.Store) {
	t.Helper()
	backend := store.NewMemory()
	return document.NewStore(backend), backend
}

func createUser(t *testing.T, s repository.Store, u domain.User) {
	t.Helper()
	require.NoError(t, s.Update(context.Background(), func(tx repository.Tx) error {
		return tx.Users().Create(context.Background(), &u)
	}))
}

func TestUserEmailLookupIsCaseInsensitive(t *testing.T) {
	s, _ := newStore(t)
	ctx := context.Background()
	createUser(t, s, domain.User{ID: "u1", Email: "Maya@GreenGarden.local", Role: domain.RoleBusiness})

	require.NoError(t, s.View(ctx, func(tx repository.Tx) error {
		u, err := tx.Users().GetByEmail(ctx, "  maya@greengarden.LOCAL")
		require.NoError(t, err)
		assert.Equal(t, "u1", u.ID)

		_, err = tx.Users().GetByEmail(ctx, "nobody@example.com")
		assert.ErrorIs(t, err, domain.ErrUserNotFound)
		return nil
	}))
}

func TestUserCreateRejectsDuplicateEmail(t *testing.T) {
	s, _ := newStore(t)
	ctx := context.Background()
	createUser(t, s, domain.User{ID: "u1", Email: "a@example.com"})

	err := s.Update(ctx, func(tx repository.Tx) error {
		return tx.Users().Create(ctx, &domain.User{ID: "u2", Email: "A@example.com"})
	})
	assert.ErrorIs(t, err, domain.ErrEmailTaken)
	assert.True(t, domain.IsDomainError(err, domain.ErrCodeConflict))

	require.NoError(t, s.View(ctx, func(tx repository.Tx) error {
		users, err := tx.Users().List(ctx, repository.UserFilter{})
		assert.Len(t, users, 1)
		return err
	}))
}

func TestUserUpdateMovesEmailIndex(t *testing.T) {
	s, _ := newStore(t)
	ctx := context.Background()
	createUser(t, s, domain.User{ID: "u1", Email: "old@example.com"})
	createUser(t, s, domain.User{ID: "u2", Email: "taken@example.com"})

	err := s.Update(ctx, func(tx repository.Tx) error {
		return tx.Users().Update(ctx, &domain.User{ID: "u1", Email: "taken@example.com"})
	})
	assert.ErrorIs(t, err, domain.ErrEmailTaken)

	require.NoError(t, s.Update(ctx, func(tx repository.Tx) error {
		return tx.Users().Update(ctx, &domain.User{ID: "u1", Email: "new@example.com"})
	}))

	require.NoError(t, s.View(ctx, func(tx repository.Tx) error {
		_, err := tx.Users().GetByEmail(ctx, "old@example.com")
		assert.ErrorIs(t, err, domain.ErrUserNotFound)
		u, err := tx.Users().GetByEmail(ctx, "new@example.com")
		require.NoError(t, err)
		assert.Equal(t, "u1", u.ID)
		return nil
	}))

	// the old address is free again
	createUser(t, s, domain.User{ID: "u3", Email: "old@example.com"})
}

func TestUserListFilters(t *testing.T) {
	s, _ := newStore(t)
	ctx := context.Background()
	base := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	createUser(t, s, domain.User{ID: "a", Name: "Ann", Email: "ann@x.io", Role: domain.RoleCustomer, Status: domain.UserActive, CreatedAt: base})
	createUser(t, s, domain.User{ID: "b", Name: "Bob", Email: "bob@x.io", Role: domain.RoleBusiness, Status: domain.UserActive, CreatedAt: base.Add(time.Hour),
		BusinessProfile: domain.BusinessProfile{BusinessName: "Daily Bread Bakery"}})
	createUser(t, s, domain.User{ID: "c", Name: "Cid", Email: "cid@x.io", Role: domain.RoleCustomer, Status: domain.UserBlocked, CreatedAt: base.Add(2 * time.Hour)})

	require.NoError(t, s.View(ctx, func(tx repository.Tx) error {
		all, err := tx.Users().List(ctx, repository.UserFilter{})
		require.NoError(t, err)
		require.Len(t, all, 3)
		assert.Equal(t, "c", all[0].ID, "newest first")

		customers, err := tx.Users().List(ctx, repository.UserFilter{Role: domain.RoleCustomer, Status: domain.UserActive})
		require.NoError(t, err)
		require.Len(t, customers, 1)
		assert.Equal(t, "a", customers[0].ID)

		bakery, err := tx.Users().List(ctx, repository.UserFilter{Search: "bread"})
		require.NoError(t, err)
		require.Len(t, bakery, 1)
		assert.Equal(t, "b", bakery[0].ID)
		return nil
	}))
}
