package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// OrderStatus enumerates order states.
type OrderStatus string

const (
	OrderPending   OrderStatus = "pending"
	OrderCompleted OrderStatus = "completed"
	OrderCancelled OrderStatus = "cancelled"
)

func (s OrderStatus) Valid() bool {
	switch s {
	case OrderPending, OrderCompleted, OrderCancelled:
		return true
	}
	return false
}

// CanTransitionTo reports whether next is reachable from s.
func (s OrderStatus) CanTransitionTo(next OrderStatus) bool {
	return s == OrderPending && (next == OrderCompleted || next == OrderCancelled)
}

// PickupLocation is where the customer collects an order.
type PickupLocation struct {
	ID      string `json:"pickup_location_id,omitempty"`
	Name    string `json:"pickup_location_name,omitempty"`
	Address string `json:"pickup_location_address,omitempty"`
}

// Order is an immutable record of a cart checkout; only Status and UpdatedAt change.
type Order struct {
	ID        string     `json:"id"`
	UserID    string     `json:"user_id"`
	UserName  string     `json:"user_name"`
	UserEmail string     `json:"user_email"`
	Items     []CartItem `json:"items"`

	CustomerName  string `json:"customer_name"`
	CustomerEmail string `json:"customer_email"`
	CustomerPhone string `json:"customer_phone"`

	PickupTime time.Time `json:"pickup_time"`
	PickupLocation
	Notes string `json:"notes,omitempty"`

	Subtotal decimal.Decimal `json:"subtotal"`
	Savings  decimal.Decimal `json:"savings"`
	Tax      decimal.Decimal `json:"tax"`
	Total    decimal.Decimal `json:"total"`

	Status    OrderStatus `json:"status"`
	CreatedAt time.Time   `json:"created_at"`
	UpdatedAt *time.Time  `json:"updated_at,omitempty"`
}

// BusinessIDs returns the distinct businesses with at least one line in the order.
func (o *Order) BusinessIDs() []string {
	seen := make(map[string]struct{}, len(o.Items))
	var ids []string
	for _, item := range o.Items {
		if _, ok := seen[item.BusinessID]; ok {
			continue
		}
		seen[item.BusinessID] = struct{}{}
		ids = append(ids, item.BusinessID)
	}
	return ids
}

// HasBusiness reports whether businessID owns any line of the order.
func (o *Order) HasBusiness(businessID string) bool {
	for _, item := range o.Items {
		if item.BusinessID == businessID {
			return true
		}
	}
	return false
}

// LinesOf returns the lines belonging to businessID.
func (o *Order) LinesOf(businessID string) []CartItem {
	var lines []CartItem
	for _, item := range o.Items {
		if item.BusinessID == businessID {
			lines = append(lines, item)
		}
	}
	return lines
}

// ApplyTotals copies t onto the order.
func (o *Order) ApplyTotals(t Totals) {
	o.Subtotal = t.Subtotal
	o.Savings = t.Savings
	o.Tax = t.Tax
	o.Total = t.Total
}
