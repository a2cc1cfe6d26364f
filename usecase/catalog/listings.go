package catalog

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/fastygo/marketplace/domain"
	"github.com/fastygo/marketplace/pkg/validate"
	"github.com/fastygo/marketplace/repository"
)

type ListingInput struct {
	FoodName        string          `json:"food_name" validate:"required,max=200"`
	Category        domain.Category `json:"category" validate:"required,oneof=meals bakery produce dairy other"`
	Description     string          `json:"description" validate:"max=2000"`
	OriginalPrice   decimal.Decimal `json:"original_price"`
	DiscountedPrice decimal.Decimal `json:"discounted_price"`
	Quantity        int             `json:"quantity" validate:"gte=1"`
	ExpiryDate      time.Time       `json:"expiry_date"`
	ImageURL        string          `json:"image_url" validate:"omitempty,url"`
	PickupOnly      bool            `json:"pickup_only"`
	PickupAddress   string          `json:"pickup_address"`
}

// ListingPatch lists the fields an update may change. Nil means keep.
type ListingPatch struct {
	FoodName        *string               `json:"food_name,omitempty" validate:"omitempty,min=1,max=200"`
	Category        *domain.Category      `json:"category,omitempty" validate:"omitempty,oneof=meals bakery produce dairy other"`
	Description     *string               `json:"description,omitempty" validate:"omitempty,max=2000"`
	OriginalPrice   *decimal.Decimal      `json:"original_price,omitempty"`
	DiscountedPrice *decimal.Decimal      `json:"discounted_price,omitempty"`
	Quantity        *int                  `json:"quantity,omitempty" validate:"omitempty,gte=0"`
	ExpiryDate      *time.Time            `json:"expiry_date,omitempty"`
	ImageURL        *string               `json:"image_url,omitempty" validate:"omitempty,url"`
	PickupOnly      *bool                 `json:"pickup_only,omitempty"`
	PickupAddress   *string               `json:"pickup_address,omitempty"`
	Status          *domain.ListingStatus `json:"status,omitempty" validate:"omitempty,oneof=active sold-out expired"`
}

// Create publishes a listing owned by the caller.
func (uc *UseCase) Create(ctx context.Context, caller *domain.User, in ListingInput) (*domain.ListingView, error) {
	if caller == nil {
		return nil, domain.ErrUnauthorized
	}
	if !caller.CanSell() {
		return nil, domain.Forbidden("only business accounts can create listings")
	}
	if err := validate.Struct(in); err != nil {
		return nil, err
	}
	if strings.TrimSpace(in.FoodName) == "" {
		return nil, domain.Invalid("food_name is required")
	}
	if err := domain.CheckPrices(in.OriginalPrice, in.DiscountedPrice); err != nil {
		return nil, err
	}
	now := uc.clock.Now()
	if err := checkExpiry(in.ExpiryDate, now); err != nil {
		return nil, err
	}

	// Caller fields are stored as given.
	listing := &domain.Listing{
		ID:              uuid.NewString(),
		BusinessID:      caller.ID,
		BusinessName:    caller.DisplayBusinessName(),
		FoodName:        in.FoodName,
		Category:        in.Category,
		Description:     in.Description,
		OriginalPrice:   in.OriginalPrice,
		DiscountedPrice: in.DiscountedPrice,
		Quantity:        in.Quantity,
		ExpiryDate:      in.ExpiryDate,
		ImageURL:        in.ImageURL,
		PickupOnly:      in.PickupOnly,
		PickupAddress:   in.PickupAddress,
		Status:          domain.ListingActive,
		CreatedAt:       now,
	}

	err := uc.store.Update(ctx, func(tx repository.Tx) error {
		if err := tx.Listings().Save(ctx, listing); err != nil {
			return err
		}
		entry := domain.NewActivity(domain.ActivityListingCreated, caller.ID, listing.ID, listing.BusinessName+" listed "+listing.FoodName, now)
		entry.BusinessIDs = []string{listing.BusinessID}
		return tx.Activity().Append(ctx, entry)
	})
	if err != nil {
		return nil, err
	}

	uc.logger.Info("listing created", zap.String("listing_id", listing.ID), zap.String("business_id", listing.BusinessID))
	view := listing.ViewAt(now)
	return &view, nil
}

// Update merges patch into a listing the caller owns (or any listing, for admins).
func (uc *UseCase) Update(ctx context.Context, caller *domain.User, id string, patch ListingPatch) (*domain.ListingView, error) {
	if caller == nil {
		return nil, domain.ErrUnauthorized
	}
	if err := validate.Struct(patch); err != nil {
		return nil, err
	}

	now := uc.clock.Now()
	var updated *domain.Listing
	err := uc.store.Update(ctx, func(tx repository.Tx) error {
		listing, err := tx.Listings().GetByID(ctx, id)
		if err != nil {
			return err
		}
		if !caller.IsAdmin() && !listing.OwnedBy(caller.ID) {
			return domain.Forbidden("you can only edit your own listings")
		}
		if err := applyPatch(listing, patch, now); err != nil {
			return err
		}
		listing.UpdatedAt = &now
		if err := tx.Listings().Save(ctx, listing); err != nil {
			return err
		}
		entry := domain.NewActivity(domain.ActivityListingUpdated, caller.ID, listing.ID, listing.FoodName+" was updated", now)
		entry.BusinessIDs = []string{listing.BusinessID}
		if err := tx.Activity().Append(ctx, entry); err != nil {
			return err
		}
		updated = listing
		return nil
	})
	if err != nil {
		return nil, err
	}

	view := updated.ViewAt(now)
	return &view, nil
}

// Delete removes a listing permanently. Orders keep their own snapshots.
func (uc *UseCase) Delete(ctx context.Context, caller *domain.User, id string) error {
	if caller == nil {
		return domain.ErrUnauthorized
	}
	now := uc.clock.Now()
	err := uc.store.Update(ctx, func(tx repository.Tx) error {
		listing, err := tx.Listings().GetByID(ctx, id)
		if err != nil {
			return err
		}
		if !caller.IsAdmin() && !listing.OwnedBy(caller.ID) {
			return domain.Forbidden("you can only delete your own listings")
		}
		if err := tx.Listings().Delete(ctx, id); err != nil {
			return err
		}
		entry := domain.NewActivity(domain.ActivityListingDeleted, caller.ID, id, listing.FoodName+" was removed", now)
		entry.BusinessIDs = []string{listing.BusinessID}
		return tx.Activity().Append(ctx, entry)
	})
	if err != nil {
		return err
	}
	uc.logger.Info("listing deleted", zap.String("listing_id", id), zap.String("actor_id", caller.ID))
	return nil
}

func applyPatch(l *domain.Listing, p ListingPatch, now time.Time) error {
	if p.FoodName != nil {
		if strings.TrimSpace(*p.FoodName) == "" {
			return domain.Invalid("food_name is required")
		}
		l.FoodName = *p.FoodName
	}
	if p.Category != nil {
		l.Category = *p.Category
	}
	if p.Description != nil {
		l.Description = *p.Description
	}
	if p.OriginalPrice != nil {
		l.OriginalPrice = *p.OriginalPrice
	}
	if p.DiscountedPrice != nil {
		l.DiscountedPrice = *p.DiscountedPrice
	}
	if p.OriginalPrice != nil || p.DiscountedPrice != nil {
		if err := domain.CheckPrices(l.OriginalPrice, l.DiscountedPrice); err != nil {
			return err
		}
	}
	if p.ExpiryDate != nil {
		if err := checkExpiry(*p.ExpiryDate, now); err != nil {
			return err
		}
		l.ExpiryDate = *p.ExpiryDate
		if l.Status == domain.ListingExpired {
			l.Status = domain.ListingActive
		}
	}
	if p.ImageURL != nil {
		l.ImageURL = *p.ImageURL
	}
	if p.PickupOnly != nil {
		l.PickupOnly = *p.PickupOnly
	}
	if p.PickupAddress != nil {
		l.PickupAddress = *p.PickupAddress
	}
	if p.Quantity != nil {
		l.Quantity = *p.Quantity
		switch {
		case l.Quantity == 0 && l.Status == domain.ListingActive:
			l.Status = domain.ListingSoldOut
		case l.Quantity > 0 && l.Status == domain.ListingSoldOut:
			l.Status = domain.ListingActive
		}
	}
	if p.Status != nil {
		l.Status = *p.Status
	}
	return nil
}
