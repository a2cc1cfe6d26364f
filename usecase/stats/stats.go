package stats

import (
	"context"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/fastygo/marketplace/domain"
	"github.com/fastygo/marketplace/repository"
	"github.com/fastygo/marketplace/usecase"
)

// RecentActivityLimit caps the activity feed attached to a Stats value.
const RecentActivityLimit = 10

type UseCase struct {
	store  repository.Store
	clock  usecase.Clock
	logger *zap.Logger
}

func New(store repository.Store, clock usecase.Clock, logger *zap.Logger) *UseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UseCase{
		store:  store,
		clock:  usecase.ClockOrSystem(clock),
		logger: logger,
	}
}

// Stats aggregates the marketplace for caller: admins get global numbers,
// businesses numbers restricted to their own listings and order lines.
func (uc *UseCase) Stats(ctx context.Context, caller *domain.User) (*domain.Stats, error) {
	if caller == nil {
		return nil, domain.ErrUnauthorized
	}
	switch caller.Role {
	case domain.RoleAdmin:
		return uc.collect(ctx, "")
	case domain.RoleBusiness:
		return uc.collect(ctx, caller.ID)
	default:
		return nil, domain.Forbidden("statistics are available to business and admin accounts")
	}
}

// collect builds global stats when businessID is empty.
func (uc *UseCase) collect(ctx context.Context, businessID string) (*domain.Stats, error) {
	now := uc.clock.Now()
	out := &domain.Stats{
		Scope:            domain.ScopeGlobal,
		ListingsByStatus: map[domain.ListingStatus]int{},
		Categories:       map[domain.Category]int{},
		OrdersByStatus:   map[domain.OrderStatus]int{},
		Revenue:          decimal.Zero,
		Savings:          decimal.Zero,
		RecentActivity:   []domain.Activity{},
	}
	if businessID != "" {
		out.Scope = domain.ScopeBusiness
		out.BusinessID = businessID
	}

	err := uc.store.View(ctx, func(tx repository.Tx) error {
		if businessID == "" {
			users, err := tx.Users().List(ctx, repository.UserFilter{})
			if err != nil {
				return err
			}
			out.Users = len(users)
			out.UsersByRole = map[domain.Role]int{}
			out.UsersByStatus = map[domain.UserStatus]int{}
			for _, u := range users {
				out.UsersByRole[u.Role]++
				out.UsersByStatus[u.Status]++
			}
		}

		listings, err := tx.Listings().All(ctx)
		if err != nil {
			return err
		}
		for i := range listings {
			l := &listings[i]
			if businessID != "" && l.BusinessID != businessID {
				continue
			}
			out.Listings++
			out.ListingsByStatus[l.EffectiveStatus(now)]++
			out.Categories[l.Category]++
		}

		orders, err := tx.Orders().List(ctx, repository.OrderFilter{BusinessID: businessID})
		if err != nil {
			return err
		}
		for i := range orders {
			addOrder(out, &orders[i], businessID)
		}

		var match func(domain.Activity) bool
		if businessID != "" {
			match = func(a domain.Activity) bool { return a.Touches(businessID) }
		}
		recent, err := tx.Activity().Recent(ctx, RecentActivityLimit, match)
		if err != nil {
			return err
		}
		if recent != nil {
			out.RecentActivity = recent
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// addOrder folds one order into out. Cancelled orders are counted but earn
// nothing; a business only earns from its own lines, before tax.
func addOrder(out *domain.Stats, o *domain.Order, businessID string) {
	out.Orders++
	out.OrdersByStatus[o.Status]++
	if o.Status == domain.OrderCancelled {
		return
	}
	if businessID == "" {
		out.Revenue = out.Revenue.Add(o.Total)
		out.Savings = out.Savings.Add(o.Savings)
		for _, item := range o.Items {
			out.ItemsSold += item.Quantity
		}
		return
	}
	for _, item := range o.LinesOf(businessID) {
		out.Revenue = out.Revenue.Add(item.LineTotal())
		out.Savings = out.Savings.Add(item.LineSavings())
		out.ItemsSold += item.Quantity
	}
}
