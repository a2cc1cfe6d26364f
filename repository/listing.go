package repository

import (
	"context"

	"github.com/fastygo/marketplace/domain"
)

type ListingRepository interface {
	GetByID(ctx context.Context, id string) (*domain.Listing, error)
	// All returns every stored listing; filtering happens in the catalog.
	All(ctx context.Context) ([]domain.Listing, error)
	Save(ctx context.Context, listing *domain.Listing) error
	Delete(ctx context.Context, id string) error
}
