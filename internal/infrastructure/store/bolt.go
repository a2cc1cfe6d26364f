package store

import (
	"context"
	"os"
	"path/filepath"
	"time"

	bolt "go.etcd.io/bbolt"
)

// Bolt keeps every collection in its own bucket of a single BoltDB file.
type Bolt struct {
	db *bolt.DB
}

// OpenBolt initializes the BoltDB file and ensures all buckets exist.
func OpenBolt(path string) (*Bolt, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, err
	}

	if err := db.Update(func(tx *bolt.Tx) error {
		for _, name := range Collections {
			if _, err := tx.CreateBucketIfNotExists([]byte(name)); err != nil {
				return err
			}
		}
		return nil
	}); err != nil {
		db.Close()
		return nil, err
	}

	return &Bolt{db: db}, nil
}

func (s *Bolt) View(ctx context.Context, fn func(tx Tx) error) error {
	if s == nil || s.db == nil {
		return bolt.ErrDatabaseNotOpen
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.db.View(func(tx *bolt.Tx) error {
		return fn(boltTx{tx: tx})
	})
}

func (s *Bolt) Update(ctx context.Context, fn func(tx Tx) error) error {
	if s == nil || s.db == nil {
		return bolt.ErrDatabaseNotOpen
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		return fn(boltTx{tx: tx})
	})
}

func (s *Bolt) Ping(ctx context.Context) error {
	return s.View(ctx, func(Tx) error { return nil })
}

// Close closes the Bolt database.
func (s *Bolt) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Stats exposes Bolt statistics for monitoring endpoints.
func (s *Bolt) Stats() bolt.Stats {
	if s == nil || s.db == nil {
		return bolt.Stats{}
	}
	return s.db.Stats()
}

type boltTx struct {
	tx *bolt.Tx
}

func (t boltTx) bucket(collection string) (*bolt.Bucket, error) {
	b := t.tx.Bucket([]byte(collection))
	if b == nil {
		return nil, ErrUnknownCollection
	}
	return b, nil
}

func (t boltTx) Get(collection, key string) ([]byte, error) {
	b, err := t.bucket(collection)
	if err != nil {
		return nil, err
	}
	v := b.Get([]byte(key))
	if v == nil {
		return nil, ErrNotFound
	}
	return append([]byte(nil), v...), nil
}

func (t boltTx) Put(collection, key string, value []byte) error {
	if !t.tx.Writable() {
		return ErrReadOnly
	}
	b, err := t.bucket(collection)
	if err != nil {
		return err
	}
	return b.Put([]byte(key), value)
}

func (t boltTx) Delete(collection, key string) error {
	if !t.tx.Writable() {
		return ErrReadOnly
	}
	b, err := t.bucket(collection)
	if err != nil {
		return err
	}
	return b.Delete([]byte(key))
}

func (t boltTx) Scan(collection, after string, fn ScanFunc) error {
	b, err := t.bucket(collection)
	if err != nil {
		return err
	}
	c := b.Cursor()
	var k, v []byte
	if after == "" {
		k, v = c.First()
	} else {
		k, v = c.Seek([]byte(after))
		if k != nil && string(k) == after {
			k, v = c.Next()
		}
	}
	for ; k != nil; k, v = c.Next() {
		more, err := fn(string(k), v)
		if err != nil {
			return err
		}
		if !more {
			return nil
		}
	}
	return nil
}
