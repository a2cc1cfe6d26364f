package monitor

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/alicebob/miniredis/v2"
	redislib "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fastygo/marketplace/internal/infrastructure/store"
)

type fixedBacklog struct {
	n   int
	err error
}

func (f fixedBacklog) Backlog(context.Context, int) (int, error) { return f.n, f.err }

func TestRefreshStoreOnly(t *testing.T) {
	mem := store.NewMemory()
	m := New(mem, "memory", nil, nil, 0, nil)
	m.Refresh()

	st := m.GetStatus()
	assert.True(t, st.Store)
	assert.Equal(t, "memory", st.StoreDriver)
	assert.False(t, st.RedisConfigured)
	assert.False(t, st.Relay)
	assert.True(t, m.IsOnline())
	assert.Nil(t, st.StoreTx)

	require.NoError(t, mem.Close())
	m.Refresh()
	assert.False(t, m.IsOnline())
}

func TestRefreshWithRedisAndRelay(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redislib.NewClient(&redislib.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	m := New(store.NewMemory(), "bolt", client, fixedBacklog{n: 7}, 0, nil)
	m.Start()
	defer m.Stop()

	st := m.GetStatus()
	assert.True(t, st.Redis)
	assert.True(t, st.Relay)
	assert.Equal(t, 7, st.RelayBacklog)
	assert.True(t, m.IsOnline())

	mr.Close()
	m.Refresh()
	assert.False(t, m.GetStatus().Redis)
	assert.False(t, m.IsOnline(), "configured redis must answer")

	m.Stop()
}

func TestRelayFailureDoesNotFailHealth(t *testing.T) {
	m := New(store.NewMemory(), "memory", nil, fixedBacklog{err: errors.New("scan failed")}, 0, nil)
	m.Refresh()
	assert.False(t, m.GetStatus().Relay)
	assert.True(t, m.IsOnline())
}

func TestRefreshReportsBoltTransactions(t *testing.T) {
	db, err := store.OpenBolt(filepath.Join(t.TempDir(), "health.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	m := New(db, "bolt", nil, nil, 0, nil)
	m.Refresh()
	first := m.GetStatus().StoreTx
	require.NotNil(t, first)
	assert.GreaterOrEqual(t, first.Started, 1)
	assert.Zero(t, first.Open)

	m.Refresh()
	assert.Greater(t, m.GetStatus().StoreTx.Started, first.Started)
}
