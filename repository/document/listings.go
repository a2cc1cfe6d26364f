package document

import (
	"context"
	"errors"

	"github.com/fastygo/marketplace/domain"
	"github.com/fastygo/marketplace/internal/infrastructure/store"
)

type listingRepository struct {
	tx store.Tx
}

func (r *listingRepository) GetByID(ctx context.Context, id string) (*domain.Listing, error) {
	var listing domain.Listing
	if err := load(r.tx, store.Listings, id, &listing, domain.ErrListingNotFound); err != nil {
		return nil, err
	}
	return &listing, nil
}

func (r *listingRepository) All(ctx context.Context) ([]domain.Listing, error) {
	var listings []domain.Listing
	err := each(r.tx, store.Listings, func(l domain.Listing) error {
		listings = append(listings, l)
		return nil
	})
	return listings, err
}

func (r *listingRepository) Save(ctx context.Context, listing *domain.Listing) error {
	if listing == nil || listing.ID == "" {
		return domain.ErrInvalidPayload
	}
	return save(r.tx, store.Listings, listing.ID, listing)
}

func (r *listingRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.tx.Get(store.Listings, id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.ErrListingNotFound
		}
		return err
	}
	return r.tx.Delete(store.Listings, id)
}
