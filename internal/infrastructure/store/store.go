// Package store is the persistence leaf: named collections mapping string
// keys to JSON documents, read and written inside transactions.
package store

import (
	"context"
	"errors"
)

// Collection names.
const (
	Users      = "users"
	UserEmails = "user_emails"
	Listings   = "listings"
	Orders     = "orders"
	Carts      = "carts"
	Sessions   = "sessions"
	Activity   = "activity"
	Meta       = "meta"
)

// Collections is every collection a backend must provision.
var Collections = []string{Users, UserEmails, Listings, Orders, Carts, Sessions, Activity, Meta}

var (
	ErrNotFound          = errors.New("store: document not found")
	ErrUnknownCollection = errors.New("store: unknown collection")
	ErrReadOnly          = errors.New("store: write in read-only transaction")
	ErrClosed            = errors.New("store: closed")
)

// ScanFunc receives documents in ascending key order; returning false stops the scan.
type ScanFunc func(key string, value []byte) (bool, error)

// Tx is a consistent view of the store. Values handed to ScanFunc or returned
// by Get must not be retained after the transaction ends unless copied.
type Tx interface {
	Get(collection, key string) ([]byte, error)
	Put(collection, key string, value []byte) error
	Delete(collection, key string) error
	// Scan visits keys strictly greater than after ("" starts at the beginning).
	Scan(collection, after string, fn ScanFunc) error
}

// Store runs transactions. Update commits every write of fn or none of them;
// concurrent Updates are serialized.
type Store interface {
	View(ctx context.Context, fn func(tx Tx) error) error
	Update(ctx context.Context, fn func(tx Tx) error) error
	Ping(ctx context.Context) error
	Close() error
}

func known(collection string) bool {
	for _, c := range Collections {
		if c == collection {
			return true
		}
	}
	return false
}
