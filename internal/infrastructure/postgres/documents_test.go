package postgres

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"

	"github.com/fastygo/marketplace/internal/infrastructure/store"
)

func TestIsSerializationFailure(t *testing.T) {
	conflict := &pgconn.PgError{Code: serializationFailure}
	assert.True(t, isSerializationFailure(conflict))
	assert.True(t, isSerializationFailure(fmt.Errorf("commit: %w", conflict)))
	assert.False(t, isSerializationFailure(&pgconn.PgError{Code: "23505"}))
	assert.False(t, isSerializationFailure(errors.New("network down")))
	assert.False(t, isSerializationFailure(nil))
}

func TestReadOnlyTxRejectsWrites(t *testing.T) {
	tx := &documentsTx{}
	assert.ErrorIs(t, tx.Put(store.Users, "u1", []byte(`{}`)), store.ErrReadOnly)
	assert.ErrorIs(t, tx.Delete(store.Users, "u1"), store.ErrReadOnly)
}
