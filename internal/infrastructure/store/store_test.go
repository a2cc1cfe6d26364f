package store_test

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fastygo/marketplace/internal/infrastructure/store"
)

func backends(t *testing.T) map[string]store.Store {
	t.Helper()
	bolt, err := store.OpenBolt(filepath.Join(t.TempDir(), "nested", "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = bolt.Close() })

	return map[string]store.Store{
		"memory": store.NewMemory(),
		"bolt":   bolt,
	}
}

func TestStoreContract(t *testing.T) {
	for name, s := range backends(t) {
		s := s
		t.Run(name, func(t *testing.T) {
			t.Run("put get delete", func(t *testing.T) { testPutGetDelete(t, s) })
			t.Run("rollback on error", func(t *testing.T) { testRollback(t, s) })
			t.Run("scan order", func(t *testing.T) { testScan(t, s) })
			t.Run("read only", func(t *testing.T) { testReadOnly(t, s) })
			t.Run("unknown collection", func(t *testing.T) { testUnknownCollection(t, s) })
		})
	}
}

func testPutGetDelete(t *testing.T, s store.Store) {
	ctx := context.Background()
	require.NoError(t, s.Update(ctx, func(tx store.Tx) error {
		return tx.Put(store.Users, "u1", []byte(`{"id":"u1"}`))
	}))

	require.NoError(t, s.View(ctx, func(tx store.Tx) error {
		v, err := tx.Get(store.Users, "u1")
		require.NoError(t, err)
		assert.JSONEq(t, `{"id":"u1"}`, string(v))
		return nil
	}))

	require.NoError(t, s.Update(ctx, func(tx store.Tx) error {
		if err := tx.Delete(store.Users, "u1"); err != nil {
			return err
		}
		_, err := tx.Get(store.Users, "u1")
		assert.ErrorIs(t, err, store.ErrNotFound, "deletes are visible inside the transaction")
		return nil
	}))

	require.NoError(t, s.View(ctx, func(tx store.Tx) error {
		_, err := tx.Get(store.Users, "u1")
		assert.ErrorIs(t, err, store.ErrNotFound)
		return nil
	}))
}

func testRollback(t *testing.T, s store.Store) {
	ctx := context.Background()
	boom := errors.New("boom")

	err := s.Update(ctx, func(tx store.Tx) error {
		if err := tx.Put(store.Listings, "l1", []byte(`{}`)); err != nil {
			return err
		}
		if err := tx.Put(store.Orders, "o1", []byte(`{}`)); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)

	require.NoError(t, s.View(ctx, func(tx store.Tx) error {
		_, err := tx.Get(store.Listings, "l1")
		assert.ErrorIs(t, err, store.ErrNotFound)
		_, err = tx.Get(store.Orders, "o1")
		assert.ErrorIs(t, err, store.ErrNotFound)
		return nil
	}))
}

func testScan(t *testing.T, s store.Store) {
	ctx := context.Background()
	require.NoError(t, s.Update(ctx, func(tx store.Tx) error {
		for _, k := range []string{"c", "a", "d", "b"} {
			if err := tx.Put(store.Activity, k, []byte(k)); err != nil {
				return err
			}
		}
		return nil
	}))

	collect := func(after string, limit int) []string {
		var keys []string
		require.NoError(t, s.View(ctx, func(tx store.Tx) error {
			return tx.Scan(store.Activity, after, func(key string, _ []byte) (bool, error) {
				keys = append(keys, key)
				return len(keys) < limit, nil
			})
		}))
		return keys
	}

	assert.Equal(t, []string{"a", "b", "c", "d"}, collect("", 10))
	assert.Equal(t, []string{"c", "d"}, collect("b", 10))
	assert.Equal(t, []string{"b", "c"}, collect("a", 2))
	assert.Equal(t, []string{"c", "d"}, collect("bb", 10), "after need not be an existing key")
	assert.Empty(t, collect("d", 10))
}

func testReadOnly(t *testing.T, s store.Store) {
	err := s.View(context.Background(), func(tx store.Tx) error {
		return tx.Put(store.Meta, "k", []byte("v"))
	})
	assert.ErrorIs(t, err, store.ErrReadOnly)
}

func testUnknownCollection(t *testing.T, s store.Store) {
	err := s.View(context.Background(), func(tx store.Tx) error {
		_, err := tx.Get("nope", "k")
		return err
	})
	assert.ErrorIs(t, err, store.ErrUnknownCollection)
}

func TestStoreRejectsCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	for name, s := range backends(t) {
		err := s.Update(ctx, func(store.Tx) error { return nil })
		assert.ErrorIs(t, err, context.Canceled, name)
	}
}

func TestMemoryClosed(t *testing.T) {
	m := store.NewMemory()
	require.NoError(t, m.Close())
	assert.ErrorIs(t, m.Ping(context.Background()), store.ErrClosed)
}

func TestBoltReopenKeepsData(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data.db")
	ctx := context.Background()

	db, err := store.OpenBolt(path)
	require.NoError(t, err)
	require.NoError(t, db.Update(ctx, func(tx store.Tx) error {
		return tx.Put(store.Meta, "cursor", []byte("42"))
	}))
	require.NoError(t, db.Close())

	db, err = store.OpenBolt(path)
	require.NoError(t, err)
	defer db.Close()
	require.NoError(t, db.View(ctx, func(tx store.Tx) error {
		v, err := tx.Get(store.Meta, "cursor")
		require.NoError(t, err)
		assert.Equal(t, "42", string(v))
		return nil
	}))
}
