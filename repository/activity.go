package repository

import (
	"context"

	"github.com/fastygo/marketplace/domain"
)

type ActivityRepository interface {
	Append(ctx context.Context, entries ...domain.Activity) error
	// Since returns up to limit entries with a sequence after cursor, oldest first.
	Since(ctx context.Context, cursor string, limit int) ([]domain.Activity, error)
	// Recent returns up to limit entries accepted by match, newest first.
	Recent(ctx context.Context, limit int, match func(domain.Activity) bool) ([]domain.Activity, error)
	Cursor(ctx context.Context, name string) (string, error)
	SetCursor(ctx context.Context, name, cursor string) error
}
