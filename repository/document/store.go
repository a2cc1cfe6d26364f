// Package document implements the repository ports on top of a store.Store,
// one JSON document per entity.
package document

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/fastygo/marketplace/internal/infrastructure/store"
	"github.com/fastygo/marketplace/repository"
)

// Store adapts a store.Store to repository.Store.
type Store struct {
	backend store.Store
}

func NewStore(backend store.Store) *Store {
	return &Store{backend: backend}
}

func (s *Store) View(ctx context.Context, fn func(tx repository.Tx) error) error {
	return s.backend.View(ctx, func(tx store.Tx) error {
		return fn(bind(tx))
	})
}

func (s *Store) Update(ctx context.Context, fn func(tx repository.Tx) error) error {
	return s.backend.Update(ctx, func(tx store.Tx) error {
		return fn(bind(tx))
	})
}

type boundTx struct {
	users    *userRepository
	listings *listingRepository
	orders   *orderRepository
	carts    *cartRepository
	activity *activityRepository
}

func bind(tx store.Tx) *boundTx {
	return &boundTx{
		users:    &userRepository{tx: tx},
		listings: &listingRepository{tx: tx},
		orders:   &orderRepository{tx: tx},
		carts:    &cartRepository{tx: tx},
		activity: &activityRepository{tx: tx},
	}
}

func (b *boundTx) Users() repository.UserRepository { return b.users }
func (b *boundTx) Listings() repository.ListingRepository { return b.listings }
func (b *boundTx) Orders() repository.OrderRepository { return b.orders }
func (b *boundTx) Carts() repository.CartRepository { return b.carts }
func (b *boundTx) Activity() repository.ActivityRepository { return b.activity }

var _ repository.Store = (*Store)(nil)

// load decodes the document at collection/key into dst, mapping a miss to notFound.
func load(tx store.Tx, collection, key string, dst interface{}, notFound error) error {
	raw, err := tx.Get(collection, key)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return notFound
		}
		return err
	}
	return json.Unmarshal(raw, dst)
}

func save(tx store.Tx, collection, key string, v interface{}) error {
	payload, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return tx.Put(collection, key, payload)
}

// each decodes every document of a collection into a fresh T.
func each[T any](tx store.Tx, collection string, fn func(T) error) error {
	return tx.Scan(collection, "", func(_ string, raw []byte) (bool, error) {
		var v T
		if err := json.Unmarshal(raw, &v); err != nil {
			return false, err
		}
		return true, fn(v)
	})
}
