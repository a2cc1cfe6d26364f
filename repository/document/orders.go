package document

import (
	"context"
	"sort"

	"github.com/fastygo/marketplace/domain"
	"github.com/fastygo/marketplace/internal/infrastructure/store"
	"github.com/fastygo/marketplace/repository"
)

type orderRepository struct {
	tx store.Tx
}

func (r *orderRepository) GetByID(ctx context.Context, id string) (*domain.Order, error) {
	var order domain.Order
	if err := load(r.tx, store.Orders, id, &order, domain.ErrOrderNotFound); err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *orderRepository) List(ctx context.Context, filter repository.OrderFilter) ([]domain.Order, error) {
	var orders []domain.Order
	err := each(r.tx, store.Orders, func(o domain.Order) error {
		if filter.UserID != "" && o.UserID != filter.UserID {
			return nil
		}
		if filter.BusinessID != "" && !o.HasBusiness(filter.BusinessID) {
			return nil
		}
		if filter.Status != "" && o.Status != filter.Status {
			return nil
		}
		orders = append(orders, o)
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.SliceStable(orders, func(i, j int) bool {
		return orders[i].CreatedAt.After(orders[j].CreatedAt)
	})
	return orders, nil
}

func (r *orderRepository) Save(ctx context.Context, order *domain.Order) error {
	if order == nil || order.ID == "" {
		return domain.ErrInvalidPayload
	}
	return save(r.tx, store.Orders, order.ID, order)
}
