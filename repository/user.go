package repository

import (
	"context"

	"github.com/fastygo/marketplace/domain"
)

type UserFilter struct {
	Role   domain.Role
	Status domain.UserStatus
	Search string
}

type UserRepository interface {
	GetByID(ctx context.Context, id string) (*domain.User, error)
	// GetByEmail matches case-insensitively.
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	List(ctx context.Context, filter UserFilter) ([]domain.User, error)
	// Create fails with domain.ErrEmailTaken when the email is already registered.
	Create(ctx context.Context, user *domain.User) error
	// Update rewrites the user and its email index entry.
	Update(ctx context.Context, user *domain.User) error
}
