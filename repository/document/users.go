package document

import (
	"context"
	"errors"
	"sort"
	"strings"

	"github.com/fastygo/marketplace/domain"
	"github.com/fastygo/marketplace/internal/infrastructure/store"
	"github.com/fastygo/marketplace/repository"
)

// userRepository keeps users by id plus a lower(email) -> id index for
// case-insensitive lookups and uniqueness.
type userRepository struct {
	tx store.Tx
}

func (r *userRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	var user domain.User
	if err := load(r.tx, store.Users, id, &user, domain.ErrUserNotFound); err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	id, err := r.lookupEmail(email)
	if err != nil {
		return nil, err
	}
	return r.GetByID(ctx, id)
}

func (r *userRepository) List(ctx context.Context, filter repository.UserFilter) ([]domain.User, error) {
	search := strings.ToLower(strings.TrimSpace(filter.Search))
	var users []domain.User
	err := each(r.tx, store.Users, func(u domain.User) error {
		if filter.Role != "" && u.Role != filter.Role {
			return nil
		}
		if filter.Status != "" && u.Status != filter.Status {
			return nil
		}
		if search != "" && !containsAny(search, u.Name, u.Email, u.BusinessName) {
			return nil
		}
		users = append(users, u)
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.SliceStable(users, func(i, j int) bool {
		return users[i].CreatedAt.After(users[j].CreatedAt)
	})
	return users, nil
}

func (r *userRepository) Create(ctx context.Context, user *domain.User) error {
	if user == nil || user.ID == "" {
		return domain.ErrInvalidPayload
	}
	if _, err := r.lookupEmail(user.Email); err == nil {
		return domain.ErrEmailTaken
	} else if !errors.Is(err, domain.ErrUserNotFound) {
		return err
	}
	if err := save(r.tx, store.UserEmails, domain.NormalizeEmail(user.Email), user.ID); err != nil {
		return err
	}
	return save(r.tx, store.Users, user.ID, user)
}

func (r *userRepository) Update(ctx context.Context, user *domain.User) error {
	if user == nil || user.ID == "" {
		return domain.ErrInvalidPayload
	}
	current, err := r.GetByID(ctx, user.ID)
	if err != nil {
		return err
	}

	oldKey := domain.NormalizeEmail(current.Email)
	newKey := domain.NormalizeEmail(user.Email)
	if oldKey != newKey {
		if owner, err := r.lookupEmail(user.Email); err == nil && owner != user.ID {
			return domain.ErrEmailTaken
		} else if err != nil && !errors.Is(err, domain.ErrUserNotFound) {
			return err
		}
		if err := r.tx.Delete(store.UserEmails, oldKey); err != nil {
			return err
		}
		if err := save(r.tx, store.UserEmails, newKey, user.ID); err != nil {
			return err
		}
	}
	return save(r.tx, store.Users, user.ID, user)
}

func (r *userRepository) lookupEmail(email string) (string, error) {
	var id string
	if err := load(r.tx, store.UserEmails, domain.NormalizeEmail(email), &id, domain.ErrUserNotFound); err != nil {
		return "", err
	}
	return id, nil
}

func containsAny(needle string, haystacks ...string) bool {
	for _, h := range haystacks {
		if strings.Contains(strings.ToLower(h), needle) {
			return true
		}
	}
	return false
}
