package order

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/fastygo/marketplace/domain"
	"github.com/fastygo/marketplace/pkg/validate"
	"github.com/fastygo/marketplace/repository"
	"github.com/fastygo/marketplace/usecase"
)

var ErrPickupCodeUnavailable = domain.NewError(domain.ErrCodeInternal, "pickup codes are not configured")

type PlaceOrderInput struct {
	CustomerName          string    `json:"customer_name" validate:"required,max=120"`
	CustomerEmail         string    `json:"customer_email" validate:"required,email"`
	CustomerPhone         string    `json:"customer_phone" validate:"required,max=40"`
	PickupTime            time.Time `json:"pickup_time"`
	PickupLocationID      string    `json:"pickup_location_id"`
	PickupLocationName    string    `json:"pickup_location_name"`
	PickupLocationAddress string    `json:"pickup_location_address"`
	Notes                 string    `json:"notes" validate:"max=1000"`
}

type UseCase struct {
	store  repository.Store
	codes  usecase.PickupCodeGenerator
	clock  usecase.Clock
	logger *zap.Logger
}

func New(store repository.Store, codes usecase.PickupCodeGenerator, clock usecase.Clock, logger *zap.Logger) *UseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UseCase{
		store:  store,
		codes:  codes,
		clock:  usecase.ClockOrSystem(clock),
		logger: logger,
	}
}

// PlaceOrder checks out the cart in one transaction: the order is written,
// stock is decremented and the cart is cleared together or not at all.
func (uc *UseCase) PlaceOrder(ctx context.Context, caller *domain.User, cartID string, in PlaceOrderInput) (*domain.Order, error) {
	if caller == nil {
		return nil, domain.ErrUnauthorized
	}
	if cartID == "" {
		return nil, domain.ErrInvalidPayload
	}

	now := uc.clock.Now()
	var order *domain.Order
	err := uc.store.Update(ctx, func(tx repository.Tx) error {
		cart, err := tx.Carts().Get(ctx, cartID)
		if err != nil {
			return err
		}
		if cart.IsEmpty() {
			return domain.ErrEmptyCart
		}
		if err := checkDetails(&in, now); err != nil {
			return err
		}

		items := cart.Snapshot()
		for _, item := range items {
			if err := reserve(ctx, tx, item, now); err != nil {
				return err
			}
		}

		order = &domain.Order{
			ID:            uuid.NewString(),
			UserID:        caller.ID,
			UserName:      caller.Name,
			UserEmail:     caller.Email,
			Items:         items,
			CustomerName:  in.CustomerName,
			CustomerEmail: in.CustomerEmail,
			CustomerPhone: in.CustomerPhone,
			PickupTime:    in.PickupTime,
			PickupLocation: domain.PickupLocation{
				ID:      in.PickupLocationID,
				Name:    in.PickupLocationName,
				Address: in.PickupLocationAddress,
			},
			Notes:     in.Notes,
			Status:    domain.OrderPending,
			CreatedAt: now,
		}
		order.ApplyTotals(domain.ComputeTotals(items))
		if err := tx.Orders().Save(ctx, order); err != nil {
			return err
		}
		if err := tx.Carts().Delete(ctx, cartID); err != nil {
			return err
		}

		entry := domain.NewActivity(domain.ActivityOrderPlaced, caller.ID, order.ID,
			fmt.Sprintf("%s placed an order of %s", caller.Name, order.Total.StringFixed(2)), now)
		entry.BusinessIDs = order.BusinessIDs()
		return tx.Activity().Append(ctx, entry)
	})
	if err != nil {
		return nil, err
	}

	uc.logger.Info("order placed",
		zap.String("order_id", order.ID),
		zap.String("user_id", caller.ID),
		zap.Int("lines", len(order.Items)),
		zap.String("total", order.Total.StringFixed(2)),
	)
	return order, nil
}

// UpdateStatus moves a pending order to completed or cancelled. Admins may
// touch any order, businesses only orders containing their items.
func (uc *UseCase) UpdateStatus(ctx context.Context, caller *domain.User, orderID string, status domain.OrderStatus) (*domain.Order, error) {
	if caller == nil {
		return nil, domain.ErrUnauthorized
	}
	if !status.Valid() {
		return nil, domain.Invalid("status must be one of: pending, completed, cancelled")
	}

	now := uc.clock.Now()
	var updated *domain.Order
	err := uc.store.Update(ctx, func(tx repository.Tx) error {
		order, err := tx.Orders().GetByID(ctx, orderID)
		if err != nil {
			return err
		}
		if !caller.IsAdmin() && !(caller.Role == domain.RoleBusiness && order.HasBusiness(caller.ID)) {
			return domain.Forbidden("you cannot manage this order")
		}
		if !order.Status.CanTransitionTo(status) {
			return domain.Invalid("order cannot move from %s to %s", order.Status, status)
		}
		order.Status = status
		order.UpdatedAt = &now
		if err := tx.Orders().Save(ctx, order); err != nil {
			return err
		}

		kind := domain.ActivityOrderCompleted
		if status == domain.OrderCancelled {
			kind = domain.ActivityOrderCancelled
		}
		entry := domain.NewActivity(kind, caller.ID, order.ID, fmt.Sprintf("Order %s %s", shortID(order.ID), status), now)
		entry.BusinessIDs = order.BusinessIDs()
		if err := tx.Activity().Append(ctx, entry); err != nil {
			return err
		}
		updated = order
		return nil
	})
	if err != nil {
		return nil, err
	}

	uc.logger.Info("order status changed", zap.String("order_id", orderID), zap.String("status", string(status)), zap.String("actor_id", caller.ID))
	return updated, nil
}

// List returns the orders visible to caller, newest first. Admins may filter
// freely; businesses see orders with their items and customers their own.
func (uc *UseCase) List(ctx context.Context, caller *domain.User, filter repository.OrderFilter) ([]domain.Order, error) {
	if caller == nil {
		return nil, domain.ErrUnauthorized
	}
	if filter.Status != "" && !filter.Status.Valid() {
		return nil, domain.Invalid("unknown status %q", filter.Status)
	}
	switch caller.Role {
	case domain.RoleAdmin:
	case domain.RoleBusiness:
		filter.BusinessID = caller.ID
		filter.UserID = ""
	default:
		filter.UserID = caller.ID
		filter.BusinessID = ""
	}

	var orders []domain.Order
	err := uc.store.View(ctx, func(tx repository.Tx) error {
		var err error
		orders, err = tx.Orders().List(ctx, filter)
		return err
	})
	return orders, err
}

func (uc *UseCase) Get(ctx context.Context, caller *domain.User, orderID string) (*domain.Order, error) {
	if caller == nil {
		return nil, domain.ErrUnauthorized
	}
	var order *domain.Order
	err := uc.store.View(ctx, func(tx repository.Tx) error {
		var err error
		order, err = tx.Orders().GetByID(ctx, orderID)
		return err
	})
	if err != nil {
		return nil, err
	}
	if !canView(caller, order) {
		return nil, domain.Forbidden("you cannot view this order")
	}
	return order, nil
}

// PickupCode renders the code the customer shows when collecting the order.
func (uc *UseCase) PickupCode(ctx context.Context, caller *domain.User, orderID string) ([]byte, error) {
	if uc.codes == nil {
		return nil, ErrPickupCodeUnavailable
	}
	order, err := uc.Get(ctx, caller, orderID)
	if err != nil {
		return nil, err
	}
	if order.Status == domain.OrderCancelled {
		return nil, domain.Invalid("order was cancelled")
	}
	png, err := uc.codes.Generate(ctx, order)
	if err != nil {
		return nil, domain.WrapError(domain.ErrCodeInternal, "failed to render pickup code", err)
	}
	return png, nil
}

// reserve takes item.Quantity units from the live listing. A listing deleted
// since it was carted is skipped.
func reserve(ctx context.Context, tx repository.Tx, item domain.CartItem, now time.Time) error {
	listing, err := tx.Listings().GetByID(ctx, item.ListingID)
	if errors.Is(err, domain.ErrListingNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	if listing.EffectiveStatus(now) != domain.ListingActive {
		return domain.Invalid("%s is no longer available", listing.FoodName)
	}
	if listing.Quantity < item.Quantity {
		return domain.Invalid("only %d of %s left", listing.Quantity, listing.FoodName)
	}
	listing.Quantity -= item.Quantity
	if listing.Quantity <= 0 {
		listing.Quantity = 0
		listing.Status = domain.ListingSoldOut
	}
	listing.UpdatedAt = &now
	return tx.Listings().Save(ctx, listing)
}

func checkDetails(in *PlaceOrderInput, now time.Time) error {
	in.CustomerName = strings.TrimSpace(in.CustomerName)
	in.CustomerEmail = strings.TrimSpace(in.CustomerEmail)
	in.CustomerPhone = strings.TrimSpace(in.CustomerPhone)
	if err := validate.Struct(in); err != nil {
		return err
	}
	if in.PickupTime.IsZero() {
		return domain.Invalid("pickup_time is required")
	}
	if !in.PickupTime.After(now) {
		return domain.Invalid("pickup_time must be in the future")
	}
	return nil
}

func canView(caller *domain.User, order *domain.Order) bool {
	switch {
	case caller.IsAdmin():
		return true
	case order.UserID == caller.ID:
		return true
	case caller.Role == domain.RoleBusiness:
		return order.HasBusiness(caller.ID)
	}
	return false
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
