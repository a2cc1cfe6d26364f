package repository

import (
	"context"

	"github.com/fastygo/marketplace/domain"
)

type OrderFilter struct {
	UserID     string
	BusinessID string
	Status     domain.OrderStatus
}

type OrderRepository interface {
	GetByID(ctx context.Context, id string) (*domain.Order, error)
	// List returns matching orders, newest first.
	List(ctx context.Context, filter OrderFilter) ([]domain.Order, error)
	Save(ctx context.Context, order *domain.Order) error
}
