package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/fastygo/marketplace/domain"
	"github.com/fastygo/marketplace/internal/infrastructure/store"
	"github.com/fastygo/marketplace/pkg/password"
	"github.com/fastygo/marketplace/repository"
	"github.com/fastygo/marketplace/repository/document"
)

// Epoch is the default start time of test clocks.
var Epoch = time.Date(2026, 6, 1, 9, 0, 0, 0, time.UTC)

// Env is an in-memory backend with its repository view.
type Env struct {
	Backend store.Store
	Repos   *document.Store
	Clock   *Clock
	Hasher  *password.Hasher
}

func NewEnv() *Env {
	backend := store.NewMemory()
	return &Env{
		Backend: backend,
		Repos:   document.NewStore(backend),
		Clock:   NewClock(Epoch),
		Hasher:  password.NewHasher(bcrypt.MinCost),
	}
}

// User stores an active user with the given role and password "secret123".
func (e *Env) User(t *testing.T, role domain.Role, email string) *domain.User {
	t.Helper()
	hash, err := e.Hasher.Hash("secret123")
	require.NoError(t, err)
	u := &domain.User{
		ID:           uuid.NewString(),
		Name:         email,
		Email:        email,
		Role:         role,
		Status:       domain.UserActive,
		PasswordHash: hash,
		CreatedAt:    e.Clock.Now(),
	}
	if role == domain.RoleBusiness {
		u.BusinessName = "Biz " + email
		u.BusinessAddress = "1 Market St"
	}
	require.NoError(t, e.Repos.Update(context.Background(), func(tx repository.Tx) error {
		return tx.Users().Create(context.Background(), u)
	}))
	return u
}

// Listing stores an active listing owned by owner expiring in ttl.
func (e *Env) Listing(t *testing.T, owner *domain.User, name string, category domain.Category, original, discounted string, quantity int, ttl time.Duration) *domain.Listing {
	t.Helper()
	l := &domain.Listing{
		ID:              uuid.NewString(),
		BusinessID:      owner.ID,
		BusinessName:    owner.DisplayBusinessName(),
		FoodName:        name,
		Category:        category,
		OriginalPrice:   decimal.RequireFromString(original),
		DiscountedPrice: decimal.RequireFromString(discounted),
		Quantity:        quantity,
		ExpiryDate:      e.Clock.Now().Add(ttl),
		PickupOnly:      true,
		Status:          domain.ListingActive,
		CreatedAt:       e.Clock.Now(),
	}
	require.NoError(t, e.Repos.Update(context.Background(), func(tx repository.Tx) error {
		return tx.Listings().Save(context.Background(), l)
	}))
	return l
}

// LoadListing reads a listing straight from the store.
func (e *Env) LoadListing(t *testing.T, id string) *domain.Listing {
	t.Helper()
	var l *domain.Listing
	require.NoError(t, e.Repos.View(context.Background(), func(tx repository.Tx) error {
		var err error
		l, err = tx.Listings().GetByID(context.Background(), id)
		return err
	}))
	return l
}

// Activity returns the whole activity log, oldest first.
func (e *Env) Activity(t *testing.T) []domain.Activity {
	t.Helper()
	var entries []domain.Activity
	require.NoError(t, e.Repos.View(context.Background(), func(tx repository.Tx) error {
		var err error
		entries, err = tx.Activity().Since(context.Background(), "", 10000)
		return err
	}))
	return entries
}
