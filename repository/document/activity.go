package document

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/fastygo/marketplace/domain"
	"github.com/fastygo/marketplace/internal/infrastructure/store"
)

type activityRepository struct {
	tx store.Tx
}

const sequenceKey = "seq:activity"

// Append numbers entries from a counter kept in meta. The counter is read and
// bumped inside the caller's write transaction, so sequence order is commit
// order no matter when the entries were stamped.
func (r *activityRepository) Append(ctx context.Context, entries ...domain.Activity) error {
	if len(entries) == 0 {
		return nil
	}
	var last uint64
	if err := load(r.tx, store.Meta, sequenceKey, &last, store.ErrNotFound); err != nil && !errors.Is(err, store.ErrNotFound) {
		return err
	}
	for _, entry := range entries {
		if entry.ID == "" {
			return domain.ErrInvalidPayload
		}
		last++
		entry.Sequence = formatSequence(last)
		if err := save(r.tx, store.Activity, entry.Sequence, entry); err != nil {
			return err
		}
	}
	return save(r.tx, store.Meta, sequenceKey, last)
}

func formatSequence(n uint64) string {
	return fmt.Sprintf("%020d", n)
}

func (r *activityRepository) Since(ctx context.Context, cursor string, limit int) ([]domain.Activity, error) {
	if limit <= 0 {
		limit = 100
	}
	var out []domain.Activity
	err := r.tx.Scan(store.Activity, cursor, func(_ string, raw []byte) (bool, error) {
		var entry domain.Activity
		if err := json.Unmarshal(raw, &entry); err != nil {
			return false, err
		}
		out = append(out, entry)
		return len(out) < limit, nil
	})
	return out, err
}

// Recent walks the whole log; the activity collection is append-only and
// small enough for a dashboard read.
func (r *activityRepository) Recent(ctx context.Context, limit int, match func(domain.Activity) bool) ([]domain.Activity, error) {
	if limit <= 0 {
		limit = 10
	}
	var window []domain.Activity
	err := each(r.tx, store.Activity, func(entry domain.Activity) error {
		if match != nil && !match(entry) {
			return nil
		}
		window = append(window, entry)
		if len(window) > limit {
			window = window[1:]
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	for i, j := 0, len(window)-1; i < j; i, j = i+1, j-1 {
		window[i], window[j] = window[j], window[i]
	}
	return window, nil
}

func (r *activityRepository) Cursor(ctx context.Context, name string) (string, error) {
	var cursor string
	if err := load(r.tx, store.Meta, cursorKey(name), &cursor, store.ErrNotFound); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return "", nil
		}
		return "", err
	}
	return cursor, nil
}

func (r *activityRepository) SetCursor(ctx context.Context, name, cursor string) error {
	return save(r.tx, store.Meta, cursorKey(name), cursor)
}

func cursorKey(name string) string {
	return "cursor:" + name
}
