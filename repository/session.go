package repository

import (
	"context"
	"time"

	"github.com/fastygo/marketplace/domain"
)

type SessionRepository interface {
	Get(ctx context.Context, id string) (*domain.Session, error)
	Save(ctx context.Context, session *domain.Session) error
	Delete(ctx context.Context, id string) error
	// Extend moves the session's expiry to until.
	Extend(ctx context.Context, id string, until time.Time) error
}

// SessionPurger is implemented by session stores that do not expire entries on their own.
type SessionPurger interface {
	PurgeExpired(ctx context.Context, now time.Time) (int, error)
}
