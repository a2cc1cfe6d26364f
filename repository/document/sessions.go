package document

import (
	"context"
	"time"

	"github.com/fastygo/marketplace/domain"
	"github.com/fastygo/marketplace/internal/infrastructure/store"
	"github.com/fastygo/marketplace/repository"
)

// sessionRepository keeps sessions in the store's sessions collection. Unlike
// Redis nothing expires by itself, so it also implements repository.SessionPurger.
type sessionRepository struct {
	backend store.Store
	ttl     time.Duration
}

func NewSessionRepository(backend store.Store, ttl time.Duration) repository.SessionRepository {
	if ttl <= 0 {
		ttl = domain.DefaultSessionTTL
	}
	return &sessionRepository{backend: backend, ttl: ttl}
}

func (r *sessionRepository) Get(ctx context.Context, id string) (*domain.Session, error) {
	var session domain.Session
	err := r.backend.View(ctx, func(tx store.Tx) error {
		return load(tx, store.Sessions, id, &session, domain.ErrSessionNotFound)
	})
	if err != nil {
		return nil, err
	}
	return &session, nil
}

func (r *sessionRepository) Save(ctx context.Context, session *domain.Session) error {
	if session == nil || session.ID == "" {
		return domain.ErrInvalidPayload
	}
	if session.CreatedAt.IsZero() {
		session.CreatedAt = time.Now()
	}
	if !session.ExpiresAt.After(session.CreatedAt) {
		session.ExpiresAt = session.CreatedAt.Add(r.ttl)
	}
	return r.backend.Update(ctx, func(tx store.Tx) error {
		return save(tx, store.Sessions, session.ID, session)
	})
}

func (r *sessionRepository) Delete(ctx context.Context, id string) error {
	return r.backend.Update(ctx, func(tx store.Tx) error {
		return tx.Delete(store.Sessions, id)
	})
}

func (r *sessionRepository) Extend(ctx context.Context, id string, until time.Time) error {
	return r.backend.Update(ctx, func(tx store.Tx) error {
		var session domain.Session
		if err := load(tx, store.Sessions, id, &session, domain.ErrSessionNotFound); err != nil {
			return err
		}
		session.ExpiresAt = until
		return save(tx, store.Sessions, id, &session)
	})
}

func (r *sessionRepository) PurgeExpired(ctx context.Context, now time.Time) (int, error) {
	purged := 0
	err := r.backend.Update(ctx, func(tx store.Tx) error {
		var expired []string
		if err := each(tx, store.Sessions, func(s domain.Session) error {
			if s.IsExpired(now) {
				expired = append(expired, s.ID)
			}
			return nil
		}); err != nil {
			return err
		}
		for _, id := range expired {
			if err := tx.Delete(store.Sessions, id); err != nil {
				return err
			}
		}
		purged = len(expired)
		return nil
	})
	return purged, err
}

var _ repository.SessionPurger = (*sessionRepository)(nil)
