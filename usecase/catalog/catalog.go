package catalog

import (
	"context"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/fastygo/marketplace/domain"
	"github.com/fastygo/marketplace/repository"
	"github.com/fastygo/marketplace/usecase"
)

// Sort keys accepted by List.
const (
	SortNewest    = ""
	SortExpiry    = "expiry"
	SortPriceLow  = "price-low"
	SortPriceHigh = "price-high"
	SortDiscount  = "discount"
)

// CategoryAll disables the category filter.
const CategoryAll = "all"

type Filter struct {
	BusinessID string
	Status     domain.ListingStatus
	Category   string
	Search     string
	Sort       string
	Limit      int
}

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

// List filters, sorts and caps the catalog as seen at the current time.
// It never writes; expired listings read as expired through their effective status.
func (uc *UseCase) List(ctx context.Context, filter Filter) ([]domain.ListingView, error) {
	switch filter.Sort {
	case SortNewest, SortExpiry, SortPriceLow, SortPriceHigh, SortDiscount:
	default:
		return nil, domain.Invalid("unknown sort %q", filter.Sort)
	}
	if filter.Status != "" && !filter.Status.Valid() {
		return nil, domain.Invalid("unknown status %q", filter.Status)
	}

	var listings []domain.Listing
	err := uc.store.View(ctx, func(tx repository.Tx) error {
		var err error
		listings, err = tx.Listings().All(ctx)
		return err
	})
	if err != nil {
		return nil, err
	}

	now := uc.clock.Now()
	search := strings.ToLower(strings.TrimSpace(filter.Search))
	views := make([]domain.ListingView, 0, len(listings))
	for _, l := range listings {
		view := l.ViewAt(now)
		if filter.BusinessID != "" && view.BusinessID != filter.BusinessID {
			continue
		}
		if filter.Status != "" && view.Status != filter.Status {
			continue
		}
		if filter.Category != "" && filter.Category != CategoryAll && string(view.Category) != filter.Category {
			continue
		}
		if search != "" && !matches(search, view.FoodName, view.Description, view.BusinessName) {
			continue
		}
		views = append(views, view)
	}

	sortViews(views, filter.Sort)
	if filter.Limit > 0 && len(views) > filter.Limit {
		views = views[:filter.Limit]
	}
	return views, nil
}

// Get returns one listing as seen at the current time.
func (uc *UseCase) Get(ctx context.Context, id string) (*domain.ListingView, error) {
	var listing *domain.Listing
	err := uc.store.View(ctx, func(tx repository.Tx) error {
		var err error
		listing, err = tx.Listings().GetByID(ctx, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	view := listing.ViewAt(uc.clock.Now())
	return &view, nil
}

// ReconcileExpired persists the active -> expired flip for every listing
// past its expiry date and returns how many were flipped.
func (uc *UseCase) ReconcileExpired(ctx context.Context) (int, error) {
	now := uc.clock.Now()
	flipped := 0
	err := uc.store.Update(ctx, func(tx repository.Tx) error {
		flipped = 0
		listings, err := tx.Listings().All(ctx)
		if err != nil {
			return err
		}
		for i := range listings {
			l := &listings[i]
			if l.Status != domain.ListingActive || !l.IsPastExpiry(now) {
				continue
			}
			l.Status = domain.ListingExpired
			l.UpdatedAt = &now
			if err := tx.Listings().Save(ctx, l); err != nil {
				return err
			}
			entry := domain.NewActivity(domain.ActivityListingExpired, "", l.ID, l.FoodName+" expired", now)
			entry.BusinessIDs = []string{l.BusinessID}
			if err := tx.Activity().Append(ctx, entry); err != nil {
				return err
			}
			flipped++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	if flipped > 0 {
		uc.logger.Info("expired listings reconciled", zap.Int("count", flipped))
	}
	return flipped, nil
}

func matches(needle string, fields ...string) bool {
	for _, f := range fields {
		if strings.Contains(strings.ToLower(f), needle) {
			return true
		}
	}
	return false
}

func sortViews(views []domain.ListingView, key string) {
	var less func(a, b *domain.ListingView) bool
	switch key {
	case SortExpiry:
		less = func(a, b *domain.ListingView) bool { return a.ExpiryDate.Before(b.ExpiryDate) }
	case SortPriceLow:
		less = func(a, b *domain.ListingView) bool { return a.DiscountedPrice.LessThan(b.DiscountedPrice) }
	case SortPriceHigh:
		less = func(a, b *domain.ListingView) bool { return a.DiscountedPrice.GreaterThan(b.DiscountedPrice) }
	case SortDiscount:
		less = func(a, b *domain.ListingView) bool { return a.DiscountBadge > b.DiscountBadge }
	default:
		less = func(a, b *domain.ListingView) bool { return a.CreatedAt.After(b.CreatedAt) }
	}
	sort.SliceStable(views, func(i, j int) bool { return less(&views[i], &views[j]) })
}

func checkExpiry(expiry, now time.Time) error {
	if expiry.IsZero() {
		return domain.Invalid("expiry_date is required")
	}
	if !expiry.After(now) {
		return domain.Invalid("expiry_date must be in the future")
	}
	return nil
}
