package document

import (
	"context"
	"errors"

	"github.com/fastygo/marketplace/domain"
	"github.com/fastygo/marketplace/internal/infrastructure/store"
)

type cartRepository struct {
	tx store.Tx
}

var errNoCart = errors.New("cart not saved")

func (r *cartRepository) Get(ctx context.Context, id string) (*domain.Cart, error) {
	var cart domain.Cart
	if err := load(r.tx, store.Carts, id, &cart, errNoCart); err != nil {
		if errors.Is(err, errNoCart) {
			return &domain.Cart{ID: id}, nil
		}
		return nil, err
	}
	return &cart, nil
}

func (r *cartRepository) Save(ctx context.Context, cart *domain.Cart) error {
	if cart == nil || cart.ID == "" {
		return domain.ErrInvalidPayload
	}
	if cart.IsEmpty() {
		return r.tx.Delete(store.Carts, cart.ID)
	}
	return save(r.tx, store.Carts, cart.ID, cart)
}

func (r *cartRepository) Delete(ctx context.Context, id string) error {
	return r.tx.Delete(store.Carts, id)
}
