package domain

import "github.com/shopspring/decimal"

// StatsScope says whose data a Stats value aggregates.
type StatsScope string

const (
	ScopeGlobal   StatsScope = "global"
	ScopeBusiness StatsScope = "business"
)

// Stats is a read-only aggregate over users, listings and orders.
type Stats struct {
	Scope      StatsScope `json:"scope"`
	BusinessID string     `json:"business_id,omitempty"`

	Users         int                `json:"users,omitempty"`
	UsersByRole   map[Role]int       `json:"users_by_role,omitempty"`
	UsersByStatus map[UserStatus]int `json:"users_by_status,omitempty"`

	Listings         int                   `json:"listings"`
	ListingsByStatus map[ListingStatus]int `json:"listings_by_status"`
	Categories       map[Category]int      `json:"categories"`

	Orders         int                 `json:"orders"`
	OrdersByStatus map[OrderStatus]int `json:"orders_by_status"`
	ItemsSold      int                 `json:"items_sold"`
	Revenue        decimal.Decimal     `json:"revenue"`
	Savings        decimal.Decimal     `json:"savings"`

	RecentActivity []Activity `json:"recent_activity"`
}
