package auth

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/fastygo/marketplace/domain"
	"github.com/fastygo/marketplace/pkg/validate"
	"github.com/fastygo/marketplace/repository"
	"github.com/fastygo/marketplace/usecase"
)

type UseCase struct {
	store    repository.Store
	sessions repository.SessionRepository
	hasher   usecase.PasswordHasher
	clock    usecase.Clock
	ttl      time.Duration
	logger   *zap.Logger
}

type Option func(*UseCase)

func WithClock(c usecase.Clock) Option {
	return func(uc *UseCase) { uc.clock = usecase.ClockOrSystem(c) }
}

func WithSessionTTL(ttl time.Duration) Option {
	return func(uc *UseCase) {
		if ttl > 0 {
			uc.ttl = ttl
		}
	}
}

func New(store repository.Store, sessions repository.SessionRepository, hasher usecase.PasswordHasher, logger *zap.Logger, opts ...Option) *UseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	uc := &UseCase{
		store:    store,
		sessions: sessions,
		hasher:   hasher,
		clock:    usecase.SystemClock{},
		ttl:      domain.DefaultSessionTTL,
		logger:   logger,
	}
	for _, opt := range opts {
		opt(uc)
	}
	return uc
}

type RegisterInput struct {
	Name                string      `json:"name" validate:"required,max=120"`
	Email               string      `json:"email" validate:"required,email"`
	Password            string      `json:"password" validate:"required,min=6,max=72"`
	Role                domain.Role `json:"role" validate:"required,oneof=customer business"`
	BusinessName        string      `json:"business_name" validate:"max=120"`
	BusinessType        string      `json:"business_type"`
	BusinessAddress     string      `json:"business_address"`
	BusinessDescription string      `json:"business_description"`
}

// Result is what a successful register or login hands back.
type Result struct {
	User    domain.User     `json:"user"`
	Session *domain.Session `json:"session"`
	Message string          `json:"message"`
}

// Register creates an active account and logs it in.
func (uc *UseCase) Register(ctx context.Context, in RegisterInput) (*Result, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.TrimSpace(in.Email)
	in.BusinessName = strings.TrimSpace(in.BusinessName)
	if err := validate.Struct(in); err != nil {
		return nil, err
	}
	if in.Role == domain.RoleBusiness && in.BusinessName == "" {
		return nil, domain.Invalid("business_name is required for business accounts")
	}

	hash, err := uc.hasher.Hash(in.Password)
	if err != nil {
		return nil, domain.WrapError(domain.ErrCodeInvalid, "password cannot be used", err)
	}

	now := uc.clock.Now()
	user := &domain.User{
		ID:           uuid.NewString(),
		Name:         in.Name,
		Email:        in.Email,
		Role:         in.Role,
		Status:       domain.UserActive,
		PasswordHash: hash,
		CreatedAt:    now,
	}
	if in.Role == domain.RoleBusiness {
		user.BusinessProfile = domain.BusinessProfile{
			BusinessName:        in.BusinessName,
			BusinessType:        strings.TrimSpace(in.BusinessType),
			BusinessAddress:     strings.TrimSpace(in.BusinessAddress),
			BusinessDescription: strings.TrimSpace(in.BusinessDescription),
		}
	}

	err = uc.store.Update(ctx, func(tx repository.Tx) error {
		if err := tx.Users().Create(ctx, user); err != nil {
			return err
		}
		entry := domain.NewActivity(domain.ActivityUserRegistered, user.ID, user.ID, "New "+string(user.Role)+" registered: "+user.Name, now)
		if user.Role == domain.RoleBusiness {
			entry.BusinessIDs = []string{user.ID}
		}
		return tx.Activity().Append(ctx, entry)
	})
	if err != nil {
		return nil, err
	}

	session, err := uc.openSession(ctx, user)
	if err != nil {
		return nil, err
	}
	uc.logger.Info("user registered", zap.String("user_id", user.ID), zap.String("role", string(user.Role)))
	return &Result{User: user.Public(), Session: session, Message: "Registration successful"}, nil
}

// Login verifies credentials and opens a new session.
func (uc *UseCase) Login(ctx context.Context, email, password string) (*Result, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return nil, domain.Invalid("email and password are required")
	}

	var user *domain.User
	err := uc.store.View(ctx, func(tx repository.Tx) error {
		var err error
		user, err = tx.Users().GetByEmail(ctx, email)
		return err
	})
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, domain.ErrInvalidCredentials
		}
		return nil, err
	}
	if !uc.hasher.Verify(password, user.PasswordHash) {
		return nil, domain.ErrInvalidCredentials
	}
	if user.IsBlocked() {
		uc.logger.Warn("blocked user attempted login", zap.String("user_id", user.ID))
		return nil, domain.ErrAccountBlocked
	}

	session, err := uc.openSession(ctx, user)
	if err != nil {
		return nil, err
	}
	return &Result{User: user.Public(), Session: session, Message: "Login successful"}, nil
}

// Logout destroys the session. Unknown sessions are not an error.
func (uc *UseCase) Logout(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return nil
	}
	if err := uc.sessions.Delete(ctx, sessionID); err != nil && !errors.Is(err, domain.ErrSessionNotFound) {
		return err
	}
	return nil
}

// Authenticate resolves a session id to its caller. Expired sessions, and
// sessions whose user is gone or blocked, are deleted and reported as
// ErrUnauthorized.
func (uc *UseCase) Authenticate(ctx context.Context, sessionID string) (*domain.Principal, error) {
	if sessionID == "" {
		return nil, domain.ErrUnauthorized
	}
	session, err := uc.sessions.Get(ctx, sessionID)
	if err != nil {
		if errors.Is(err, domain.ErrSessionNotFound) {
			return nil, domain.ErrUnauthorized
		}
		return nil, err
	}
	if session.IsExpired(uc.clock.Now()) {
		uc.dropSession(ctx, sessionID, "expired")
		return nil, domain.ErrUnauthorized
	}

	var user *domain.User
	err = uc.store.View(ctx, func(tx repository.Tx) error {
		var err error
		user, err = tx.Users().GetByID(ctx, session.UserID)
		return err
	})
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			uc.dropSession(ctx, sessionID, "user missing")
			return nil, domain.ErrUnauthorized
		}
		return nil, err
	}
	if user.IsBlocked() {
		uc.dropSession(ctx, sessionID, "user blocked")
		return nil, domain.ErrUnauthorized
	}

	public := user.Public()
	return &domain.Principal{Session: session, User: &public}, nil
}

// CurrentUser returns the user behind a valid session, or nil when there is none.
func (uc *UseCase) CurrentUser(ctx context.Context, sessionID string) (*domain.User, error) {
	principal, err := uc.Authenticate(ctx, sessionID)
	if err != nil {
		if errors.Is(err, domain.ErrUnauthorized) {
			return nil, nil
		}
		return nil, err
	}
	return principal.User, nil
}

// RefreshSession pushes a valid session's expiry one TTL past now.
func (uc *UseCase) RefreshSession(ctx context.Context, sessionID string) (*domain.Session, error) {
	principal, err := uc.Authenticate(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	until := uc.clock.Now().Add(uc.ttl)
	if err := uc.sessions.Extend(ctx, sessionID, until); err != nil {
		return nil, err
	}
	session := *principal.Session
	session.ExpiresAt = until
	return &session, nil
}

func (uc *UseCase) openSession(ctx context.Context, user *domain.User) (*domain.Session, error) {
	now := uc.clock.Now()
	session := &domain.Session{
		ID:        uuid.NewString(),
		CreatedAt: now,
		ExpiresAt: now.Add(uc.ttl),
	}
	session.Denormalize(user)
	if err := uc.sessions.Save(ctx, session); err != nil {
		return nil, err
	}
	return session, nil
}

func (uc *UseCase) dropSession(ctx context.Context, sessionID, reason string) {
	if err := uc.sessions.Delete(ctx, sessionID); err != nil && !errors.Is(err, domain.ErrSessionNotFound) {
		uc.logger.Warn("failed to delete session", zap.String("session_id", sessionID), zap.Error(err))
		return
	}
	uc.logger.Debug("session dropped", zap.String("session_id", sessionID), zap.String("reason", reason))
}
