package store

import (
	"context"
	"sort"
	"sync"
)

// Memory is a process-local Store. Update stages writes and applies them
// only when fn returns nil.
type Memory struct {
	mu     sync.RWMutex
	data   map[string]map[string][]byte
	closed bool
}

func NewMemory() *Memory {
	data := make(map[string]map[string][]byte, len(Collections))
	for _, name := range Collections {
		data[name] = make(map[string][]byte)
	}
	return &Memory{data: data}
}

func (m *Memory) View(ctx context.Context, fn func(tx Tx) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.closed {
		return ErrClosed
	}
	return fn(&memoryTx{store: m})
}

func (m *Memory) Update(ctx context.Context, fn func(tx Tx) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return ErrClosed
	}
	tx := &memoryTx{store: m, writable: true, pending: make(map[string]map[string][]byte)}
	if err := fn(tx); err != nil {
		return err
	}
	tx.commit()
	return nil
}

func (m *Memory) Ping(ctx context.Context) error {
	return m.View(ctx, func(Tx) error { return nil })
}

func (m *Memory) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

// memoryTx overlays pending writes (nil value = deletion) on the committed data.
type memoryTx struct {
	store    *Memory
	writable bool
	pending  map[string]map[string][]byte
}

func (t *memoryTx) Get(collection, key string) ([]byte, error) {
	if !known(collection) {
		return nil, ErrUnknownCollection
	}
	if staged, ok := t.pending[collection][key]; ok {
		if staged == nil {
			return nil, ErrNotFound
		}
		return append([]byte(nil), staged...), nil
	}
	v, ok := t.store.data[collection][key]
	if !ok {
		return nil, ErrNotFound
	}
	return append([]byte(nil), v...), nil
}

func (t *memoryTx) Put(collection, key string, value []byte) error {
	return t.stage(collection, key, append([]byte{}, value...))
}

func (t *memoryTx) Delete(collection, key string) error {
	return t.stage(collection, key, nil)
}

func (t *memoryTx) stage(collection, key string, value []byte) error {
	if !t.writable {
		return ErrReadOnly
	}
	if !known(collection) {
		return ErrUnknownCollection
	}
	bucket, ok := t.pending[collection]
	if !ok {
		bucket = make(map[string][]byte)
		t.pending[collection] = bucket
	}
	bucket[key] = value
	return nil
}

func (t *memoryTx) Scan(collection, after string, fn ScanFunc) error {
	if !known(collection) {
		return ErrUnknownCollection
	}
	merged := make(map[string][]byte, len(t.store.data[collection]))
	for k, v := range t.store.data[collection] {
		merged[k] = v
	}
	for k, v := range t.pending[collection] {
		if v == nil {
			delete(merged, k)
			continue
		}
		merged[k] = v
	}

	keys := make([]string, 0, len(merged))
	for k := range merged {
		if k > after {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)

	for _, k := range keys {
		more, err := fn(k, merged[k])
		if err != nil {
			return err
		}
		if !more {
			return nil
		}
	}
	return nil
}

func (t *memoryTx) commit() {
	for collection, writes := range t.pending {
		for k, v := range writes {
			if v == nil {
				delete(t.store.data[collection], k)
				continue
			}
			t.store.data[collection][k] = v
		}
	}
}
