package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// TaxRate is applied to the subtotal of every cart and order.
var TaxRate = decimal.NewFromFloat(0.08)

// CartItem is a snapshot of a listing taken when it was added to a cart.
type CartItem struct {
	ListingID       string          `json:"id"`
	BusinessID      string          `json:"business_id"`
	BusinessName    string          `json:"business_name"`
	Name            string          `json:"name"`
	OriginalPrice   decimal.Decimal `json:"original_price"`
	DiscountedPrice decimal.Decimal `json:"discounted_price"`
	Quantity        int             `json:"quantity"`
	ImageURL        string          `json:"image_url,omitempty"`
	ExpiryDate      time.Time       `json:"expiry_date"`
	PickupOnly      bool            `json:"pickup_only"`
	PickupAddress   string          `json:"pickup_address,omitempty"`
}

// SnapshotListing copies the listing fields a cart line carries.
func SnapshotListing(l *Listing, quantity int) CartItem {
	return CartItem{
		ListingID:       l.ID,
		BusinessID:      l.BusinessID,
		BusinessName:    l.BusinessName,
		Name:            l.FoodName,
		OriginalPrice:   l.OriginalPrice,
		DiscountedPrice: l.DiscountedPrice,
		Quantity:        quantity,
		ImageURL:        l.ImageURL,
		ExpiryDate:      l.ExpiryDate,
		PickupOnly:      l.PickupOnly,
		PickupAddress:   l.PickupAddress,
	}
}

// LineTotal is discountedPrice × quantity.
func (i CartItem) LineTotal() decimal.Decimal {
	return i.DiscountedPrice.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// LineSavings is (originalPrice - discountedPrice) × quantity.
func (i CartItem) LineSavings() decimal.Decimal {
	return i.OriginalPrice.Sub(i.DiscountedPrice).Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// Totals are the derived money amounts of a set of cart lines.
type Totals struct {
	Subtotal decimal.Decimal `json:"subtotal"`
	Savings  decimal.Decimal `json:"savings"`
	Tax      decimal.Decimal `json:"tax"`
	Total    decimal.Decimal `json:"total"`
}

// ComputeTotals derives subtotal, savings, tax and total from items.
func ComputeTotals(items []CartItem) Totals {
	subtotal := decimal.Zero
	savings := decimal.Zero
	for _, item := range items {
		subtotal = subtotal.Add(item.LineTotal())
		savings = savings.Add(item.LineSavings())
	}
	tax := subtotal.Mul(TaxRate).Round(2)
	return Totals{
		Subtotal: subtotal,
		Savings:  savings,
		Tax:      tax,
		Total:    subtotal.Add(tax),
	}
}

// Cart is a customer's unpurchased selection, keyed by an opaque cart id.
type Cart struct {
	ID        string     `json:"id"`
	Items     []CartItem `json:"items"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// Find returns the index of the line for listingID, or -1.
func (c *Cart) Find(listingID string) int {
	for i := range c.Items {
		if c.Items[i].ListingID == listingID {
			return i
		}
	}
	return -1
}

// QuantityOf returns the quantity held for listingID.
func (c *Cart) QuantityOf(listingID string) int {
	if idx := c.Find(listingID); idx >= 0 {
		return c.Items[idx].Quantity
	}
	return 0
}

// Add increases an existing line by quantity or appends item as a new line.
// Stock bounds are the caller's responsibility.
func (c *Cart) Add(item CartItem, quantity int) {
	if idx := c.Find(item.ListingID); idx >= 0 {
		c.Items[idx].Quantity += quantity
		return
	}
	item.Quantity = quantity
	c.Items = append(c.Items, item)
}

// SetQuantity sets a line's quantity; zero or less removes it.
func (c *Cart) SetQuantity(listingID string, quantity int) bool {
	idx := c.Find(listingID)
	if idx < 0 {
		return false
	}
	if quantity <= 0 {
		c.Remove(listingID)
		return true
	}
	c.Items[idx].Quantity = quantity
	return true
}

// Remove drops the line for listingID if present.
func (c *Cart) Remove(listingID string) {
	if idx := c.Find(listingID); idx >= 0 {
		c.Items = append(c.Items[:idx], c.Items[idx+1:]...)
	}
}

func (c *Cart) Clear() {
	c.Items = nil
}

func (c *Cart) IsEmpty() bool {
	return c == nil || len(c.Items) == 0
}

// ItemCount is the number of units across all lines.
func (c *Cart) ItemCount() int {
	n := 0
	for _, item := range c.Items {
		n += item.Quantity
	}
	return n
}

func (c *Cart) Totals() Totals {
	if c == nil {
		return ComputeTotals(nil)
	}
	return ComputeTotals(c.Items)
}

// Snapshot returns a deep copy of the lines for an order.
func (c *Cart) Snapshot() []CartItem {
	if c == nil {
		return nil
	}
	items := make([]CartItem, len(c.Items))
	copy(items, c.Items)
	return items
}
