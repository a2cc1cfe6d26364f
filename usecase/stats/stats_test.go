package stats

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fastygo/marketplace/domain"
	"github.com/fastygo/marketplace/internal/testutil"
	"github.com/fastygo/marketplace/usecase/cart"
	"github.com/fastygo/marketplace/usecase/order"
)

type scenario struct {
	env      *testutil.Env
	stats    *UseCase
	admin    *domain.User
	garden   *domain.User
	bakery   *domain.User
	customer *domain.User
}

// build sells 2 bowls (garden) and 1 loaf (bakery) in one order, then a
// second order of 1 bowl that gets cancelled.
func build(t *testing.T) *scenario {
	t.Helper()
	ctx := context.Background()
	env := testutil.NewEnv()
	s := &scenario{
		env:      env,
		stats:    New(env.Repos, env.Clock, nil),
		admin:    env.User(t, domain.RoleAdmin, "admin@example.com"),
		garden:   env.User(t, domain.RoleBusiness, "maya@greengarden.local"),
		bakery:   env.User(t, domain.RoleBusiness, "bread@example.com"),
		customer: env.User(t, domain.RoleCustomer, "cust@example.com"),
	}
	bowl := env.Listing(t, s.garden, "Roasted Vegetable Bowl", domain.CategoryMeals, "12.99", "7.99", 5, 4*time.Hour)
	loaf := env.Listing(t, s.bakery, "Sourdough", domain.CategoryBakery, "6.00", "3.00", 2, 4*time.Hour)
	env.Listing(t, s.bakery, "Old Bagels", domain.CategoryBakery, "4.00", "1.00", 2, time.Minute)

	carts := cart.New(env.Repos, env.Clock, nil)
	orders := order.New(env.Repos, nil, env.Clock, nil)
	details := order.PlaceOrderInput{
		CustomerName:  "Casey",
		CustomerEmail: "cust@example.com",
		CustomerPhone: "555-0100",
		PickupTime:    env.Clock.Now().Add(time.Hour),
	}

	_, err := carts.Add(ctx, "s1", bowl.ID, 2)
	require.NoError(t, err)
	_, err = carts.Add(ctx, "s1", loaf.ID, 1)
	require.NoError(t, err)
	_, err = orders.PlaceOrder(ctx, s.customer, "s1", details)
	require.NoError(t, err)

	env.Clock.Advance(time.Second)
	_, err = carts.Add(ctx, "s2", bowl.ID, 1)
	require.NoError(t, err)
	second, err := orders.PlaceOrder(ctx, s.customer, "s2", details)
	require.NoError(t, err)
	env.Clock.Advance(time.Second)
	_, err = orders.UpdateStatus(ctx, s.admin, second.ID, domain.OrderCancelled)
	require.NoError(t, err)

	env.Clock.Advance(2 * time.Minute)
	return s
}

func TestStatsRequiresSellerOrAdmin(t *testing.T) {
	s := build(t)
	_, err := s.stats.Stats(context.Background(), s.customer)
	assert.True(t, domain.IsDomainError(err, domain.ErrCodeForbidden))
	_, err = s.stats.Stats(context.Background(), nil)
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}

func TestStatsGlobal(t *testing.T) {
	s := build(t)
	st, err := s.stats.Stats(context.Background(), s.admin)
	require.NoError(t, err)

	assert.Equal(t, domain.ScopeGlobal, st.Scope)
	assert.Equal(t, 4, st.Users)
	assert.Equal(t, 2, st.UsersByRole[domain.RoleBusiness])
	assert.Equal(t, 4, st.UsersByStatus[domain.UserActive])

	assert.Equal(t, 3, st.Listings)
	assert.Equal(t, 2, st.ListingsByStatus[domain.ListingActive])
	assert.Equal(t, 1, st.ListingsByStatus[domain.ListingExpired], "expiry is observed without a sweep")
	assert.Equal(t, 2, st.Categories[domain.CategoryBakery])

	assert.Equal(t, 2, st.Orders)
	assert.Equal(t, 1, st.OrdersByStatus[domain.OrderCancelled])
	assert.Equal(t, 3, st.ItemsSold)
	// 2 x 7.99 + 3.00 = 18.98, plus 8% tax
	assert.Equal(t, "20.50", st.Revenue.StringFixed(2))
	assert.Equal(t, "13.00", st.Savings.StringFixed(2))

	require.NotEmpty(t, st.RecentActivity)
	assert.Equal(t, domain.ActivityOrderCancelled, st.RecentActivity[0].Kind, "newest first")
}

func TestStatsBusinessScope(t *testing.T) {
	s := build(t)
	st, err := s.stats.Stats(context.Background(), s.garden)
	require.NoError(t, err)

	assert.Equal(t, domain.ScopeBusiness, st.Scope)
	assert.Equal(t, s.garden.ID, st.BusinessID)
	assert.Zero(t, st.Users)
	assert.Nil(t, st.UsersByRole)

	assert.Equal(t, 1, st.Listings)
	assert.Equal(t, 2, st.Orders)
	assert.Equal(t, 2, st.ItemsSold)
	assert.Equal(t, "15.98", st.Revenue.StringFixed(2))
	assert.Equal(t, "10.00", st.Savings.StringFixed(2))

	for _, a := range st.RecentActivity {
		assert.True(t, a.Touches(s.garden.ID), string(a.Kind))
	}

	bakery, err := s.stats.Stats(context.Background(), s.bakery)
	require.NoError(t, err)
	assert.Equal(t, 2, bakery.Listings)
	assert.Equal(t, 1, bakery.Orders)
	assert.Equal(t, "3.00", bakery.Revenue.StringFixed(2))
}
