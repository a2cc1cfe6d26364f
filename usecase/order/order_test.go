package order

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fastygo/marketplace/domain"
	"github.com/fastygo/marketplace/internal/testutil"
	"github.com/fastygo/marketplace/repository"
	cartUC "github.com/fastygo/marketplace/usecase/cart"
)

type fakeCodes struct {
	calls int
	err   error
}

func (f *fakeCodes) Generate(_ context.Context, o *domain.Order) ([]byte, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return []byte("png:" + o.ID), nil
}

type fixture struct {
	env      *testutil.Env
	orders   *UseCase
	carts    *cartUC.UseCase
	codes    *fakeCodes
	biz      *domain.User
	customer *domain.User
}

func setup(t *testing.T) *fixture {
	t.Helper()
	env := testutil.NewEnv()
	codes := &fakeCodes{}
	return &fixture{
		env:      env,
		orders:   New(env.Repos, codes, env.Clock, nil),
		carts:    cartUC.New(env.Repos, env.Clock, nil),
		codes:    codes,
		biz:      env.User(t, domain.RoleBusiness, "maya@greengarden.local"),
		customer: env.User(t, domain.RoleCustomer, "cust@example.com"),
	}
}

func (f *fixture) details() PlaceOrderInput {
	return PlaceOrderInput{
		CustomerName:  "Casey",
		CustomerEmail: "cust@example.com",
		CustomerPhone: "555-0100",
		PickupTime:    f.env.Clock.Now().Add(2 * time.Hour),
		Notes:         "side door",
	}
}

func (f *fixture) place(t *testing.T, cartID string, listing *domain.Listing, qty int) *domain.Order {
	t.Helper()
	_, err := f.carts.Add(context.Background(), cartID, listing.ID, qty)
	require.NoError(t, err)
	o, err := f.orders.PlaceOrder(context.Background(), f.customer, cartID, f.details())
	require.NoError(t, err)
	return o
}

func TestPlaceOrderSellsOut(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	bowl := f.env.Listing(t, f.biz, "Roasted Vegetable Bowl", domain.CategoryMeals, "12.99", "7.99", 2, 4*time.Hour)

	_, err := f.carts.Add(ctx, "sess", bowl.ID, 2)
	require.NoError(t, err)

	order, err := f.orders.PlaceOrder(ctx, f.customer, "sess", f.details())
	require.NoError(t, err)
	assert.Equal(t, domain.OrderPending, order.Status)
	assert.Equal(t, f.customer.ID, order.UserID)
	assert.Equal(t, "Casey", order.CustomerName)
	require.Len(t, order.Items, 1)
	assert.Equal(t, 2, order.Items[0].Quantity)
	assert.Equal(t, "15.98", order.Subtotal.StringFixed(2))
	assert.Equal(t, "17.26", order.Total.StringFixed(2))

	stored := f.env.LoadListing(t, bowl.ID)
	assert.Equal(t, 0, stored.Quantity)
	assert.Equal(t, domain.ListingSoldOut, stored.Status)

	cart, err := f.carts.Get(ctx, "sess")
	require.NoError(t, err)
	assert.Empty(t, cart.Items)

	log := f.env.Activity(t)
	require.Len(t, log, 1)
	assert.Equal(t, domain.ActivityOrderPlaced, log[0].Kind)
	assert.Equal(t, []string{f.biz.ID}, log[0].BusinessIDs)
}

func TestPlaceOrderConflictingStock(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	last := f.env.Listing(t, f.biz, "Last Croissant", domain.CategoryBakery, "4", "2", 1, time.Hour)

	_, err := f.carts.Add(ctx, "first", last.ID, 1)
	require.NoError(t, err)
	_, err = f.carts.Add(ctx, "second", last.ID, 1)
	require.NoError(t, err)

	_, err = f.orders.PlaceOrder(ctx, f.customer, "first", f.details())
	require.NoError(t, err)

	_, err = f.orders.PlaceOrder(ctx, f.customer, "second", f.details())
	assert.True(t, domain.IsDomainError(err, domain.ErrCodeInvalid))

	cart, err := f.carts.Get(ctx, "second")
	require.NoError(t, err)
	assert.Len(t, cart.Items, 1, "failed checkout keeps the cart")

	orders, err := f.orders.List(ctx, f.customer, repository.OrderFilter{})
	require.NoError(t, err)
	assert.Len(t, orders, 1)
}

func TestPlaceOrderIsAtomic(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	plenty := f.env.Listing(t, f.biz, "Apples", domain.CategoryProduce, "5", "2", 10, time.Hour)
	scarce := f.env.Listing(t, f.biz, "Pears", domain.CategoryProduce, "5", "2", 2, time.Hour)

	_, err := f.carts.Add(ctx, "sess", plenty.ID, 3)
	require.NoError(t, err)
	_, err = f.carts.Add(ctx, "sess", scarce.ID, 2)
	require.NoError(t, err)

	// someone else buys the pears first
	f.place(t, "other", scarce, 1)

	_, err = f.orders.PlaceOrder(ctx, f.customer, "sess", f.details())
	require.Error(t, err)
	assert.Equal(t, 10, f.env.LoadListing(t, plenty.ID).Quantity, "no partial decrement")
}

func TestPlaceOrderValidation(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	l := f.env.Listing(t, f.biz, "Soup", domain.CategoryMeals, "6", "3", 5, time.Hour)

	_, err := f.orders.PlaceOrder(ctx, nil, "sess", f.details())
	assert.ErrorIs(t, err, domain.ErrUnauthorized)

	_, err = f.orders.PlaceOrder(ctx, f.customer, "sess", f.details())
	assert.ErrorIs(t, err, domain.ErrEmptyCart)

	_, err = f.carts.Add(ctx, "sess", l.ID, 1)
	require.NoError(t, err)

	bad := f.details()
	bad.PickupTime = f.env.Clock.Now()
	_, err = f.orders.PlaceOrder(ctx, f.customer, "sess", bad)
	assert.True(t, domain.IsDomainError(err, domain.ErrCodeInvalid))

	bad = f.details()
	bad.CustomerEmail = "not-an-email"
	_, err = f.orders.PlaceOrder(ctx, f.customer, "sess", bad)
	assert.True(t, domain.IsDomainError(err, domain.ErrCodeInvalid))

	bad = f.details()
	bad.CustomerPhone = "  "
	_, err = f.orders.PlaceOrder(ctx, f.customer, "sess", bad)
	assert.True(t, domain.IsDomainError(err, domain.ErrCodeInvalid))

	assert.Equal(t, 5, f.env.LoadListing(t, l.ID).Quantity)
}

func TestPlaceOrderSkipsDeletedListing(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	gone := f.env.Listing(t, f.biz, "Gone", domain.CategoryOther, "5", "1", 3, time.Hour)

	_, err := f.carts.Add(ctx, "sess", gone.ID, 1)
	require.NoError(t, err)
	require.NoError(t, f.env.Repos.Update(ctx, func(tx repository.Tx) error {
		return tx.Listings().Delete(ctx, gone.ID)
	}))

	order, err := f.orders.PlaceOrder(ctx, f.customer, "sess", f.details())
	require.NoError(t, err)
	assert.Len(t, order.Items, 1, "the order keeps the snapshot")
}

func TestUpdateStatusTransitions(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	l := f.env.Listing(t, f.biz, "Tart", domain.CategoryBakery, "6", "3", 5, time.Hour)
	admin := f.env.User(t, domain.RoleAdmin, "admin@example.com")
	rival := f.env.User(t, domain.RoleBusiness, "rival@example.com")

	first := f.place(t, "a", l, 1)
	second := f.place(t, "b", l, 1)

	_, err := f.orders.UpdateStatus(ctx, f.customer, first.ID, domain.OrderCancelled)
	assert.True(t, domain.IsDomainError(err, domain.ErrCodeForbidden))
	_, err = f.orders.UpdateStatus(ctx, rival, first.ID, domain.OrderCompleted)
	assert.True(t, domain.IsDomainError(err, domain.ErrCodeForbidden))

	done, err := f.orders.UpdateStatus(ctx, f.biz, first.ID, domain.OrderCompleted)
	require.NoError(t, err)
	assert.Equal(t, domain.OrderCompleted, done.Status)
	require.NotNil(t, done.UpdatedAt)

	_, err = f.orders.UpdateStatus(ctx, admin, first.ID, domain.OrderCancelled)
	assert.True(t, domain.IsDomainError(err, domain.ErrCodeInvalid), "completed is terminal")

	cancelled, err := f.orders.UpdateStatus(ctx, admin, second.ID, domain.OrderCancelled)
	require.NoError(t, err)
	assert.Equal(t, domain.OrderCancelled, cancelled.Status)

	_, err = f.orders.UpdateStatus(ctx, admin, second.ID, domain.OrderStatus("lost"))
	assert.True(t, domain.IsDomainError(err, domain.ErrCodeInvalid))
	_, err = f.orders.UpdateStatus(ctx, admin, "missing", domain.OrderCompleted)
	assert.ErrorIs(t, err, domain.ErrOrderNotFound)
}

func TestListAndGetAreScoped(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	l := f.env.Listing(t, f.biz, "Bowl", domain.CategoryMeals, "6", "3", 5, time.Hour)
	admin := f.env.User(t, domain.RoleAdmin, "admin@example.com")
	rival := f.env.User(t, domain.RoleBusiness, "rival@example.com")
	stranger := f.env.User(t, domain.RoleCustomer, "stranger@example.com")

	o := f.place(t, "a", l, 1)

	for _, caller := range []*domain.User{admin, f.biz, f.customer} {
		list, err := f.orders.List(ctx, caller, repository.OrderFilter{})
		require.NoError(t, err)
		assert.Len(t, list, 1, caller.Email)

		got, err := f.orders.Get(ctx, caller, o.ID)
		require.NoError(t, err)
		assert.Equal(t, o.ID, got.ID)
	}

	for _, caller := range []*domain.User{rival, stranger} {
		list, err := f.orders.List(ctx, caller, repository.OrderFilter{UserID: f.customer.ID})
		require.NoError(t, err)
		assert.Empty(t, list, caller.Email)

		_, err = f.orders.Get(ctx, caller, o.ID)
		assert.True(t, domain.IsDomainError(err, domain.ErrCodeForbidden), caller.Email)
	}

	_, err := f.orders.List(ctx, nil, repository.OrderFilter{})
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}

func TestPickupCode(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	l := f.env.Listing(t, f.biz, "Bowl", domain.CategoryMeals, "6", "3", 5, time.Hour)
	o := f.place(t, "a", l, 1)

	png, err := f.orders.PickupCode(ctx, f.customer, o.ID)
	require.NoError(t, err)
	assert.Equal(t, "png:"+o.ID, string(png))

	f.codes.err = errors.New("encoder down")
	_, err = f.orders.PickupCode(ctx, f.customer, o.ID)
	assert.True(t, domain.IsDomainError(err, domain.ErrCodeInternal))
	f.codes.err = nil

	_, err = f.orders.UpdateStatus(ctx, f.biz, o.ID, domain.OrderCancelled)
	require.NoError(t, err)
	_, err = f.orders.PickupCode(ctx, f.customer, o.ID)
	assert.True(t, domain.IsDomainError(err, domain.ErrCodeInvalid))

	noCodes := New(f.env.Repos, nil, f.env.Clock, nil)
	_, err = noCodes.PickupCode(ctx, f.customer, o.ID)
	assert.ErrorIs(t, err, ErrPickupCodeUnavailable)
}
