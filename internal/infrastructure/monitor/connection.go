package monitor

import (
	"context"
	"sync"
	"time"

	redislib "github.com/redis/go-redis/v9"
	bolt "go.etcd.io/bbolt"
	"go.uber.org/zap"
)

// Pinger is satisfied by every store backend.
type Pinger interface {
	Ping(ctx context.Context) error
}

// StatsReporter is satisfied by the bolt store.
type StatsReporter interface {
	Stats() bolt.Stats
}

// BacklogReporter is satisfied by the activity relay.
type BacklogReporter interface {
	Backlog(ctx context.Context, limit int) (int, error)
}

type Monitor struct {
	store       Pinger
	storeDriver string
	redis       *redislib.Client
	relay       BacklogReporter

	status   Status
	mu       sync.RWMutex
	interval time.Duration
	stopCh   chan struct{}
	stopOnce sync.Once
	logger   *zap.Logger
}

// New builds a monitor. redis and relay may be nil when not configured.
func New(store Pinger, storeDriver string, redis *redislib.Client, relay BacklogReporter, interval time.Duration, logger *zap.Logger) *Monitor {
	if interval <= 0 {
		interval = 10 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Monitor{
		store:       store,
		storeDriver: storeDriver,
		redis:       redis,
		relay:       relay,
		interval:    interval,
		stopCh:      make(chan struct{}),
		logger:      logger,
	}
}

func (m *Monitor) Start() {
	m.Refresh()
	go m.loop()
}

func (m *Monitor) Stop() {
	m.stopOnce.Do(func() { close(m.stopCh) })
}

// IsOnline reports whether the last check found every configured dependency up.
func (m *Monitor) IsOnline() bool {
	return m.GetStatus().Healthy()
}

func (m *Monitor) GetStatus() Status {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.status
}

func (m *Monitor) loop() {
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			m.Refresh()
		case <-m.stopCh:
			return
		}
	}
}

// Refresh runs every check once and records the result.
func (m *Monitor) Refresh() {
	relayOK, backlog := m.checkRelay()
	status := Status{
		Store:           m.checkStore(),
		StoreDriver:     m.storeDriver,
		Redis:           m.checkRedis(),
		RedisConfigured: m.redis != nil,
		Relay:           relayOK,
		RelayBacklog:    backlog,
		LastCheck:       time.Now(),
	}
	if stats, ok := m.store.(StatsReporter); ok {
		s := stats.Stats()
		status.StoreTx = &TxStats{Started: s.TxN, Open: s.OpenTxN}
	}

	m.mu.Lock()
	previous := m.status
	m.status = status
	m.mu.Unlock()

	if !previous.LastCheck.IsZero() && previous.Healthy() != status.Healthy() {
		m.logger.Warn("dependency health changed", zap.Bool("healthy", status.Healthy()), zap.Bool("store", status.Store), zap.Bool("redis", status.Redis))
	}
}

func (m *Monitor) checkStore() bool {
	if m.store == nil {
		return false
	}
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	return m.store.Ping(ctx) == nil
}

func (m *Monitor) checkRedis() bool {
	if m.redis == nil {
		return false
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	return m.redis.Ping(ctx).Err() == nil
}

func (m *Monitor) checkRelay() (bool, int) {
	if m.relay == nil {
		return false, 0
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	backlog, err := m.relay.Backlog(ctx, 10000)
	if err != nil {
		m.logger.Warn("relay backlog check failed", zap.Error(err))
		return false, 0
	}
	return true, backlog
}
