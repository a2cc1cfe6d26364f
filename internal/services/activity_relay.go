package services

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/fastygo/marketplace/domain"
	"github.com/fastygo/marketplace/repository"
	"github.com/fastygo/marketplace/usecase"
)

// RelayCursor names the meta cursor the relay advances.
const RelayCursor = "activity_relay"

type RelayConfig struct {
	BatchSize  int
	MaxRetries int
}

// ActivityRelay ships the activity log to a publisher in order, remembering
// how far it got in the store so restarts resume where they stopped.
type ActivityRelay struct {
	store     repository.Store
	publisher usecase.ActivityPublisher
	cfg       RelayConfig
	logger    *zap.Logger

	mu       sync.Mutex
	failures int
}

func NewActivityRelay(store repository.Store, publisher usecase.ActivityPublisher, cfg RelayConfig, logger *zap.Logger) *ActivityRelay {
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 100
	}
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = 3
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ActivityRelay{
		store:     store,
		publisher: publisher,
		cfg:       cfg,
		logger:    logger,
	}
}

// Drain publishes batches until the log is caught up. A batch that keeps
// failing is skipped after MaxRetries attempts.
func (r *ActivityRelay) Drain(ctx context.Context) error {
	if r == nil || r.publisher == nil {
		return nil
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	for {
		cursor, batch, err := r.next(ctx)
		if err != nil {
			return err
		}
		if len(batch) == 0 {
			return nil
		}

		if err := r.publisher.Publish(ctx, batch); err != nil {
			r.failures++
			r.logger.Error("failed to publish activity",
				zap.String("cursor", cursor),
				zap.Int("entries", len(batch)),
				zap.Int("attempt", r.failures),
				zap.Error(err))
			if r.failures < r.cfg.MaxRetries {
				return nil
			}
			r.logger.Warn("dropping activity batch (max retries reached)", zap.String("cursor", cursor), zap.Int("entries", len(batch)))
		}

		r.failures = 0
		last := batch[len(batch)-1].Sequence
		if err := r.store.Update(ctx, func(tx repository.Tx) error {
			return tx.Activity().SetCursor(ctx, RelayCursor, last)
		}); err != nil {
			return err
		}
		if len(batch) < r.cfg.BatchSize {
			return nil
		}
	}
}

// Backlog counts entries not yet relayed, up to limit.
func (r *ActivityRelay) Backlog(ctx context.Context, limit int) (int, error) {
	if limit <= 0 {
		limit = 1000
	}
	var n int
	err := r.store.View(ctx, func(tx repository.Tx) error {
		cursor, err := tx.Activity().Cursor(ctx, RelayCursor)
		if err != nil {
			return err
		}
		pending, err := tx.Activity().Since(ctx, cursor, limit)
		n = len(pending)
		return err
	})
	return n, err
}

func (r *ActivityRelay) next(ctx context.Context) (string, []domain.Activity, error) {
	var (
		cursor string
		batch  []domain.Activity
	)
	err := r.store.View(ctx, func(tx repository.Tx) error {
		var err error
		if cursor, err = tx.Activity().Cursor(ctx, RelayCursor); err != nil {
			return err
		}
		batch, err = tx.Activity().Since(ctx, cursor, r.cfg.BatchSize)
		return err
	})
	return cursor, batch, err
}
