package repository

import (
	"context"

	"github.com/fastygo/marketplace/domain"
)

type CartRepository interface {
	// Get returns the cart for id, or an empty cart when none was saved.
	Get(ctx context.Context, id string) (*domain.Cart, error)
	Save(ctx context.Context, cart *domain.Cart) error
	Delete(ctx context.Context, id string) error
}
