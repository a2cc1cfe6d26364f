package auth

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/fastygo/marketplace/domain"
	"github.com/fastygo/marketplace/pkg/validate"
	"github.com/fastygo/marketplace/repository"
)

// ProfilePatch lists the fields a profile update may change. Nil means keep.
type ProfilePatch struct {
	Name                *string      `json:"name,omitempty" validate:"omitempty,min=1,max=120"`
	Email               *string      `json:"email,omitempty" validate:"omitempty,email"`
	Password            *string      `json:"password,omitempty" validate:"omitempty,min=6,max=72"`
	Role                *domain.Role `json:"role,omitempty" validate:"omitempty,oneof=customer business admin"`
	BusinessName        *string      `json:"business_name,omitempty" validate:"omitempty,max=120"`
	BusinessType        *string      `json:"business_type,omitempty"`
	BusinessAddress     *string      `json:"business_address,omitempty"`
	BusinessDescription *string      `json:"business_description,omitempty"`
}

// ListUsers returns users matching filter. Admin only.
func (uc *UseCase) ListUsers(ctx context.Context, caller *domain.User, filter repository.UserFilter) ([]domain.User, error) {
	if err := requireAdmin(caller); err != nil {
		return nil, err
	}
	var users []domain.User
	err := uc.store.View(ctx, func(tx repository.Tx) error {
		var err error
		users, err = tx.Users().List(ctx, filter)
		return err
	})
	if err != nil {
		return nil, err
	}
	for i := range users {
		users[i] = users[i].Public()
	}
	return users, nil
}

// UpdateUserStatus lets an admin activate, block or park another account.
func (uc *UseCase) UpdateUserStatus(ctx context.Context, caller *domain.User, targetID string, status domain.UserStatus) (*domain.User, error) {
	if err := requireAdmin(caller); err != nil {
		return nil, err
	}
	if !status.Valid() {
		return nil, domain.Invalid("status must be one of: active, blocked, pending")
	}
	if targetID == caller.ID {
		return nil, domain.Invalid("you cannot change your own status")
	}

	var updated *domain.User
	err := uc.store.Update(ctx, func(tx repository.Tx) error {
		user, err := tx.Users().GetByID(ctx, targetID)
		if err != nil {
			return err
		}
		now := uc.clock.Now()
		user.Status = status
		user.UpdatedAt = &now
		if err := tx.Users().Update(ctx, user); err != nil {
			return err
		}
		entry := domain.NewActivity(domain.ActivityUserStatusChanged, caller.ID, user.ID, user.Name+" is now "+string(status), now)
		entry.Metadata = map[string]string{"status": string(status)}
		if err := tx.Activity().Append(ctx, entry); err != nil {
			return err
		}
		updated = user
		return nil
	})
	if err != nil {
		return nil, err
	}
	uc.logger.Info("user status changed", zap.String("user_id", targetID), zap.String("status", string(status)), zap.String("admin_id", caller.ID))
	public := updated.Public()
	return &public, nil
}

// UpdateUserProfile merges patch into the target user. Callers edit
// themselves; admins edit anyone and are the only ones whose role changes apply.
func (uc *UseCase) UpdateUserProfile(ctx context.Context, caller *domain.Principal, targetID string, patch ProfilePatch) (*domain.User, error) {
	if caller == nil || caller.User == nil {
		return nil, domain.ErrUnauthorized
	}
	self := caller.User.ID == targetID
	if !self && !caller.User.IsAdmin() {
		return nil, domain.ErrForbidden
	}
	if err := validate.Struct(patch); err != nil {
		return nil, err
	}

	var hash string
	if patch.Password != nil {
		var err error
		if hash, err = uc.hasher.Hash(*patch.Password); err != nil {
			return nil, domain.WrapError(domain.ErrCodeInvalid, "password cannot be used", err)
		}
	}

	var updated *domain.User
	err := uc.store.Update(ctx, func(tx repository.Tx) error {
		user, err := tx.Users().GetByID(ctx, targetID)
		if err != nil {
			return err
		}
		applyPatch(user, patch, caller.User.IsAdmin())
		if hash != "" {
			user.PasswordHash = hash
		}
		if user.Role == domain.RoleBusiness && user.BusinessName == "" {
			return domain.Invalid("business_name is required for business accounts")
		}
		now := uc.clock.Now()
		user.UpdatedAt = &now
		if err := tx.Users().Update(ctx, user); err != nil {
			return err
		}
		if err := tx.Activity().Append(ctx, domain.NewActivity(domain.ActivityUserUpdated, caller.User.ID, user.ID, user.Name+" updated their profile", now)); err != nil {
			return err
		}
		updated = user
		return nil
	})
	if err != nil {
		return nil, err
	}

	if self && caller.Session != nil {
		session := *caller.Session
		session.Denormalize(updated)
		if err := uc.sessions.Save(ctx, &session); err != nil {
			uc.logger.Warn("failed to refresh session after profile update", zap.String("session_id", session.ID), zap.Error(err))
		} else {
			caller.Session = &session
		}
	}

	public := updated.Public()
	return &public, nil
}

// EnsureAdmin creates the bootstrap admin when no account uses email yet.
// It reports whether an account was created.
func (uc *UseCase) EnsureAdmin(ctx context.Context, name, email, password string) (bool, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return false, nil
	}
	if name == "" {
		name = "Administrator"
	}
	hash, err := uc.hasher.Hash(password)
	if err != nil {
		return false, err
	}
	now := uc.clock.Now()
	admin := &domain.User{
		ID:           uuid.NewString(),
		Name:         name,
		Email:        email,
		Role:         domain.RoleAdmin,
		Status:       domain.UserActive,
		PasswordHash: hash,
		CreatedAt:    now,
	}
	err = uc.store.Update(ctx, func(tx repository.Tx) error {
		return tx.Users().Create(ctx, admin)
	})
	if errors.Is(err, domain.ErrEmailTaken) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	uc.logger.Info("bootstrap admin created", zap.String("email", email))
	return true, nil
}

func applyPatch(user *domain.User, patch ProfilePatch, asAdmin bool) {
	if patch.Name != nil {
		user.Name = strings.TrimSpace(*patch.Name)
	}
	if patch.Email != nil {
		user.Email = strings.TrimSpace(*patch.Email)
	}
	if patch.Role != nil && asAdmin {
		user.Role = *patch.Role
	}
	if patch.BusinessName != nil {
		user.BusinessName = strings.TrimSpace(*patch.BusinessName)
	}
	if patch.BusinessType != nil {
		user.BusinessType = strings.TrimSpace(*patch.BusinessType)
	}
	if patch.BusinessAddress != nil {
		user.BusinessAddress = strings.TrimSpace(*patch.BusinessAddress)
	}
	if patch.BusinessDescription != nil {
		user.BusinessDescription = strings.TrimSpace(*patch.BusinessDescription)
	}
}

func requireAdmin(caller *domain.User) error {
	if caller == nil {
		return domain.ErrUnauthorized
	}
	if !caller.IsAdmin() {
		return domain.ErrForbidden
	}
	return nil
}
