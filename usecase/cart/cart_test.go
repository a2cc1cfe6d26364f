package cart

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fastygo/marketplace/domain"
	"github.com/fastygo/marketplace/internal/testutil"
)

func setup(t *testing.T) (*UseCase, *testutil.Env, *domain.User) {
	t.Helper()
	env := testutil.NewEnv()
	biz := env.User(t, domain.RoleBusiness, "biz@example.com")
	return New(env.Repos, env.Clock, nil), env, biz
}

func TestGetEmptyCart(t *testing.T) {
	uc, _, _ := setup(t)
	view, err := uc.Get(context.Background(), "sess-1")
	require.NoError(t, err)
	assert.NotNil(t, view.Items)
	assert.Empty(t, view.Items)
	assert.Zero(t, view.ItemCount)
	assert.True(t, view.Total.IsZero())

	_, err = uc.Get(context.Background(), "")
	assert.ErrorIs(t, err, domain.ErrInvalidPayload)
}

func TestAddSnapshotsListingAndTotals(t *testing.T) {
	uc, env, biz := setup(t)
	ctx := context.Background()
	bowl := env.Listing(t, biz, "Roasted Vegetable Bowl", domain.CategoryMeals, "12.99", "7.99", 5, time.Hour)

	view, err := uc.Add(ctx, "sess-1", bowl.ID, 2)
	require.NoError(t, err)
	require.Len(t, view.Items, 1)
	line := view.Items[0]
	assert.Equal(t, bowl.ID, line.ListingID)
	assert.Equal(t, "Roasted Vegetable Bowl", line.Name)
	assert.Equal(t, biz.ID, line.BusinessID)
	assert.Equal(t, 2, line.Quantity)
	assert.Equal(t, 2, view.ItemCount)
	assert.Equal(t, "15.98", view.Subtotal.StringFixed(2))
	assert.Equal(t, "10.00", view.Savings.StringFixed(2))
	assert.Equal(t, "1.28", view.Tax.StringFixed(2))
	assert.Equal(t, "17.26", view.Total.StringFixed(2))

	view, err = uc.Add(ctx, "sess-1", bowl.ID, 1)
	require.NoError(t, err)
	require.Len(t, view.Items, 1, "same listing merges into one line")
	assert.Equal(t, 3, view.Items[0].Quantity)

	other, err := uc.Get(ctx, "sess-2")
	require.NoError(t, err)
	assert.Empty(t, other.Items, "carts are isolated per id")
}

func TestAddRespectsStock(t *testing.T) {
	uc, env, biz := setup(t)
	ctx := context.Background()
	l := env.Listing(t, biz, "Muffin", domain.CategoryBakery, "3", "1", 2, time.Hour)

	_, err := uc.Add(ctx, "s", l.ID, 3)
	assert.True(t, domain.IsDomainError(err, domain.ErrCodeInvalid))

	_, err = uc.Add(ctx, "s", l.ID, 2)
	require.NoError(t, err)

	_, err = uc.Add(ctx, "s", l.ID, 1)
	assert.True(t, domain.IsDomainError(err, domain.ErrCodeInvalid), "existing plus new exceeds stock")

	view, err := uc.Get(ctx, "s")
	require.NoError(t, err)
	assert.Equal(t, 2, view.ItemCount, "failed add leaves the cart unchanged")

	_, err = uc.Add(ctx, "s", l.ID, 0)
	assert.True(t, domain.IsDomainError(err, domain.ErrCodeInvalid))

	_, err = uc.Add(ctx, "s", "missing", 1)
	assert.ErrorIs(t, err, domain.ErrListingNotFound)
}

func TestAddRejectsUnavailableListings(t *testing.T) {
	uc, env, biz := setup(t)
	ctx := context.Background()
	soon := env.Listing(t, biz, "Yogurt", domain.CategoryDairy, "3", "1", 2, time.Minute)
	empty := env.Listing(t, biz, "Cheese", domain.CategoryDairy, "3", "1", 0, time.Hour)

	_, err := uc.Add(ctx, "s", empty.ID, 1)
	assert.True(t, domain.IsDomainError(err, domain.ErrCodeInvalid))

	env.Clock.Advance(time.Minute)
	_, err = uc.Add(ctx, "s", soon.ID, 1)
	assert.True(t, domain.IsDomainError(err, domain.ErrCodeInvalid), "expired listings cannot be added")
}

func TestSetQuantity(t *testing.T) {
	uc, env, biz := setup(t)
	ctx := context.Background()
	l := env.Listing(t, biz, "Bread", domain.CategoryBakery, "4", "2", 3, time.Hour)

	_, err := uc.SetQuantity(ctx, "s", l.ID, 1)
	assert.ErrorIs(t, err, domain.ErrCartItemNotFound)

	_, err = uc.Add(ctx, "s", l.ID, 1)
	require.NoError(t, err)

	view, err := uc.SetQuantity(ctx, "s", l.ID, 3)
	require.NoError(t, err)
	assert.Equal(t, 3, view.ItemCount)

	_, err = uc.SetQuantity(ctx, "s", l.ID, 4)
	assert.True(t, domain.IsDomainError(err, domain.ErrCodeInvalid))

	view, err = uc.SetQuantity(ctx, "s", l.ID, 0)
	require.NoError(t, err)
	assert.Empty(t, view.Items)
}

func TestRemoveAndClear(t *testing.T) {
	uc, env, biz := setup(t)
	ctx := context.Background()
	a := env.Listing(t, biz, "A", domain.CategoryMeals, "4", "2", 3, time.Hour)
	b := env.Listing(t, biz, "B", domain.CategoryMeals, "4", "2", 3, time.Hour)

	_, err := uc.Add(ctx, "s", a.ID, 1)
	require.NoError(t, err)
	_, err = uc.Add(ctx, "s", b.ID, 2)
	require.NoError(t, err)

	view, err := uc.Remove(ctx, "s", a.ID)
	require.NoError(t, err)
	require.Len(t, view.Items, 1)
	assert.Equal(t, b.ID, view.Items[0].ListingID)

	_, err = uc.Remove(ctx, "s", "not-in-cart")
	require.NoError(t, err)

	require.NoError(t, uc.Clear(ctx, "s"))
	view, err = uc.Get(ctx, "s")
	require.NoError(t, err)
	assert.Empty(t, view.Items)
}
