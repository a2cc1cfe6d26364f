package repository

import "context"

// Tx groups the repositories bound to one transaction.
type Tx interface {
	Users() UserRepository
	Listings() ListingRepository
	Orders() OrderRepository
	Carts() CartRepository
	Activity() ActivityRepository
}

// Store runs use-case work against a consistent snapshot. Writes made inside
// Update are committed together or not at all.
type Store interface {
	View(ctx context.Context, fn func(tx Tx) error) error
	Update(ctx context.Context, fn func(tx Tx) error) error
}
