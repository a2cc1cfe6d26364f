package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/fastygo/marketplace/internal/infrastructure/store"
)

const serializationFailure = "40001"

// Documents is a store.Store over the documents table. Update transactions run
// serializable and are retried when Postgres aborts them on a conflict.
type Documents struct {
	pool     *pgxpool.Pool
	attempts int
}

// NewDocuments wraps an open pool.
func NewDocuments(pool *pgxpool.Pool) *Documents {
	return &Documents{pool: pool, attempts: 3}
}

func (d *Documents) View(ctx context.Context, fn func(tx store.Tx) error) error {
	return pgx.BeginTxFunc(ctx, d.pool, pgx.TxOptions{AccessMode: pgx.ReadOnly}, func(tx pgx.Tx) error {
		return fn(&documentsTx{ctx: ctx, tx: tx})
	})
}

func (d *Documents) Update(ctx context.Context, fn func(tx store.Tx) error) error {
	var err error
	for attempt := 0; attempt < d.attempts; attempt++ {
		err = pgx.BeginTxFunc(ctx, d.pool, pgx.TxOptions{IsoLevel: pgx.Serializable}, func(tx pgx.Tx) error {
			return fn(&documentsTx{ctx: ctx, tx: tx, writable: true})
		})
		if !isSerializationFailure(err) {
			return err
		}
	}
	return err
}

func (d *Documents) Ping(ctx context.Context) error {
	return d.pool.Ping(ctx)
}

func (d *Documents) Close() error {
	d.pool.Close()
	return nil
}

type documentsTx struct {
	ctx      context.Context
	tx       pgx.Tx
	writable bool
}

func (t *documentsTx) Get(collection, key string) ([]byte, error) {
	query := `SELECT value FROM documents WHERE collection = $1 AND key = $2`
	if t.writable {
		query += ` FOR UPDATE`
	}
	var value []byte
	if err := t.tx.QueryRow(t.ctx, query, collection, key).Scan(&value); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, err
	}
	return value, nil
}

func (t *documentsTx) Put(collection, key string, value []byte) error {
	if !t.writable {
		return store.ErrReadOnly
	}
	const query = `
	INSERT INTO documents (collection, key, value, updated_at)
	VALUES ($1, $2, $3, NOW())
	ON CONFLICT (collection, key) DO UPDATE
	SET value = EXCLUDED.value,
		updated_at = NOW()
	`
	_, err := t.tx.Exec(t.ctx, query, collection, key, value)
	return err
}

func (t *documentsTx) Delete(collection, key string) error {
	if !t.writable {
		return store.ErrReadOnly
	}
	_, err := t.tx.Exec(t.ctx, `DELETE FROM documents WHERE collection = $1 AND key = $2`, collection, key)
	return err
}

func (t *documentsTx) Scan(collection, after string, fn store.ScanFunc) error {
	const query = `
	SELECT key, value
	FROM documents
	WHERE collection = $1 AND key > $2
	ORDER BY key
	`
	rows, err := t.tx.Query(t.ctx, query, collection, after)
	if err != nil {
		return err
	}

	// Drain before calling fn: the connection cannot serve other queries while rows are open.
	type document struct {
		key   string
		value []byte
	}
	var docs []document
	for rows.Next() {
		var doc document
		if err := rows.Scan(&doc.key, &doc.value); err != nil {
			rows.Close()
			return err
		}
		docs = append(docs, doc)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return err
	}

	for _, doc := range docs {
		more, err := fn(doc.key, doc.value)
		if err != nil {
			return err
		}
		if !more {
			return nil
		}
	}
	return nil
}

func isSerializationFailure(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == serializationFailure
}
