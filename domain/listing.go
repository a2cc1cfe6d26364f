package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Category enumerates the food categories a listing can belong to.
type Category string

const (
	CategoryMeals   Category = "meals"
	CategoryBakery  Category = "bakery"
	CategoryProduce Category = "produce"
	CategoryDairy   Category = "dairy"
	CategoryOther   Category = "other"
)

// Categories lists every category in display order.
var Categories = []Category{CategoryMeals, CategoryBakery, CategoryProduce, CategoryDairy, CategoryOther}

func (c Category) Valid() bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}

// ListingStatus enumerates listing states.
type ListingStatus string

const (
	ListingActive  ListingStatus = "active"
	ListingSoldOut ListingStatus = "sold-out"
	ListingExpired ListingStatus = "expired"
)

func (s ListingStatus) Valid() bool {
	switch s {
	case ListingActive, ListingSoldOut, ListingExpired:
		return true
	}
	return false
}

// Listing is a sellable quantity of discounted food offered by a business.
type Listing struct {
	ID              string          `json:"id"`
	BusinessID      string          `json:"business_id"`
	BusinessName    string          `json:"business_name"`
	FoodName        string          `json:"food_name"`
	Category        Category        `json:"category"`
	Description     string          `json:"description,omitempty"`
	OriginalPrice   decimal.Decimal `json:"original_price"`
	DiscountedPrice decimal.Decimal `json:"discounted_price"`
	Quantity        int             `json:"quantity"`
	ExpiryDate      time.Time       `json:"expiry_date"`
	ImageURL        string          `json:"image_url,omitempty"`
	PickupOnly      bool            `json:"pickup_only"`
	PickupAddress   string          `json:"pickup_address,omitempty"`
	Status          ListingStatus   `json:"status"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       *time.Time      `json:"updated_at,omitempty"`
}

// IsPastExpiry reports whether the expiry date has been reached at now.
func (l *Listing) IsPastExpiry(now time.Time) bool {
	return l != nil && !l.ExpiryDate.After(now)
}

// EffectiveStatus is the status a reader observes at now: an active listing
// past its expiry date reads as expired whether or not the flip was persisted.
func (l *Listing) EffectiveStatus(now time.Time) ListingStatus {
	if l == nil {
		return ""
	}
	if l.Status == ListingActive && l.IsPastExpiry(now) {
		return ListingExpired
	}
	return l.Status
}

// Purchasable reports whether the listing can be put into a cart at now.
func (l *Listing) Purchasable(now time.Time) bool {
	return l.EffectiveStatus(now) == ListingActive && l.Quantity > 0
}

// DiscountPercent is round((original-discounted)/original*100).
func (l *Listing) DiscountPercent() int {
	if l == nil {
		return 0
	}
	return DiscountPercent(l.OriginalPrice, l.DiscountedPrice)
}

// OwnedBy reports whether userID owns the listing.
func (l *Listing) OwnedBy(userID string) bool {
	return l != nil && userID != "" && l.BusinessID == userID
}

// CheckPrices enforces original > 0 and 0 <= discounted < original.
func CheckPrices(original, discounted decimal.Decimal) error {
	if !original.IsPositive() {
		return Invalid("original_price must be greater than 0")
	}
	if discounted.IsNegative() {
		return Invalid("discounted_price must not be negative")
	}
	if !discounted.LessThan(original) {
		return Invalid("discounted_price must be lower than original_price")
	}
	return nil
}

// DiscountPercent computes the rounded discount badge for a price pair.
func DiscountPercent(original, discounted decimal.Decimal) int {
	if !original.IsPositive() {
		return 0
	}
	pct := original.Sub(discounted).Div(original).Mul(decimal.NewFromInt(100))
	return int(pct.Round(0).IntPart())
}

// ListingView is a listing as served to readers.
type ListingView struct {
	Listing
	DiscountBadge int `json:"discount_badge"`
}

// ViewAt builds the reader-facing projection of l at now.
func (l Listing) ViewAt(now time.Time) ListingView {
	l.Status = l.EffectiveStatus(now)
	return ListingView{Listing: l, DiscountBadge: l.DiscountPercent()}
}
