package cart

import (
	"context"

	"go.uber.org/zap"

	"github.com/fastygo/marketplace/domain"
	"github.com/fastygo/marketplace/repository"
	"github.com/fastygo/marketplace/usecase"
)

// View is a cart together with its derived amounts.
type View struct {
	domain.Cart
	domain.Totals
	ItemCount int `json:"item_count"`
}

func viewOf(c *domain.Cart) *View {
	if c.Items == nil {
		c.Items = []domain.CartItem{}
	}
	return &View{Cart: *c, Totals: c.Totals(), ItemCount: c.ItemCount()}
}

// UseCase applies cart operations with the stock bound checked against the
// live listing on every add or quantity change.
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

func (uc *UseCase) Get(ctx context.Context, cartID string) (*View, error) {
	if cartID == "" {
		return nil, domain.ErrInvalidPayload
	}
	var cart *domain.Cart
	err := uc.store.View(ctx, func(tx repository.Tx) error {
		var err error
		cart, err = tx.Carts().Get(ctx, cartID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return viewOf(cart), nil
}

// Add puts quantity units of a listing into the cart, merging with an existing line.
func (uc *UseCase) Add(ctx context.Context, cartID, listingID string, quantity int) (*View, error) {
	if cartID == "" || listingID == "" {
		return nil, domain.ErrInvalidPayload
	}
	if quantity < 1 {
		return nil, domain.Invalid("quantity must be at least 1")
	}
	return uc.mutate(ctx, cartID, func(tx repository.Tx, cart *domain.Cart) error {
		listing, err := uc.purchasable(ctx, tx, listingID)
		if err != nil {
			return err
		}
		if want := cart.QuantityOf(listingID) + quantity; want > listing.Quantity {
			return domain.Invalid("only %d of %s available", listing.Quantity, listing.FoodName)
		}
		cart.Add(domain.SnapshotListing(listing, quantity), quantity)
		return nil
	})
}

// SetQuantity replaces a line's quantity; zero or less removes the line.
func (uc *UseCase) SetQuantity(ctx context.Context, cartID, listingID string, quantity int) (*View, error) {
	if cartID == "" || listingID == "" {
		return nil, domain.ErrInvalidPayload
	}
	return uc.mutate(ctx, cartID, func(tx repository.Tx, cart *domain.Cart) error {
		if cart.Find(listingID) < 0 {
			return domain.ErrCartItemNotFound
		}
		if quantity <= 0 {
			cart.Remove(listingID)
			return nil
		}
		listing, err := uc.purchasable(ctx, tx, listingID)
		if err != nil {
			return err
		}
		if quantity > listing.Quantity {
			return domain.Invalid("only %d of %s available", listing.Quantity, listing.FoodName)
		}
		cart.SetQuantity(listingID, quantity)
		return nil
	})
}

// Remove drops a line; removing an absent line is a no-op.
func (uc *UseCase) Remove(ctx context.Context, cartID, listingID string) (*View, error) {
	if cartID == "" {
		return nil, domain.ErrInvalidPayload
	}
	return uc.mutate(ctx, cartID, func(_ repository.Tx, cart *domain.Cart) error {
		cart.Remove(listingID)
		return nil
	})
}

func (uc *UseCase) Clear(ctx context.Context, cartID string) error {
	if cartID == "" {
		return domain.ErrInvalidPayload
	}
	return uc.store.Update(ctx, func(tx repository.Tx) error {
		return tx.Carts().Delete(ctx, cartID)
	})
}

func (uc *UseCase) mutate(ctx context.Context, cartID string, fn func(tx repository.Tx, cart *domain.Cart) error) (*View, error) {
	var cart *domain.Cart
	err := uc.store.Update(ctx, func(tx repository.Tx) error {
		var err error
		if cart, err = tx.Carts().Get(ctx, cartID); err != nil {
			return err
		}
		if err := fn(tx, cart); err != nil {
			return err
		}
		cart.UpdatedAt = uc.clock.Now()
		return tx.Carts().Save(ctx, cart)
	})
	if err != nil {
		return nil, err
	}
	return viewOf(cart), nil
}

func (uc *UseCase) purchasable(ctx context.Context, tx repository.Tx, listingID string) (*domain.Listing, error) {
	listing, err := tx.Listings().GetByID(ctx, listingID)
	if err != nil {
		return nil, err
	}
	if !listing.Purchasable(uc.clock.Now()) {
		return nil, domain.Invalid("%s is no longer available", listing.FoodName)
	}
	return listing, nil
}
