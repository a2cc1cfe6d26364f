package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// JobFunc is one scheduled unit of background work.
type JobFunc func(ctx context.Context) error

// Scheduler runs named jobs on fixed intervals. Each run gets a context bounded
// by the job's interval, and a run is skipped while the previous one is busy.
type Scheduler struct {
	cron   *cron.Cron
	logger *zap.Logger

	mu   sync.Mutex
	jobs map[string]cron.EntryID
}

func NewScheduler(logger *zap.Logger) *Scheduler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Scheduler{
		cron: cron.New(
			cron.WithSeconds(),
			cron.WithChain(cron.Recover(cron.DiscardLogger), cron.SkipIfStillRunning(cron.DiscardLogger)),
		),
		logger: logger,
		jobs:   make(map[string]cron.EntryID),
	}
}

// Every registers fn under name to run each interval. A non-positive interval
// disables the job.
func (s *Scheduler) Every(name string, interval time.Duration, fn JobFunc) error {
	if interval <= 0 || fn == nil {
		s.logger.Info("scheduled job disabled", zap.String("job", name))
		return nil
	}
	seconds := int(interval.Seconds())
	if seconds < 1 {
		seconds = 1
	}
	schedule := fmt.Sprintf("@every %ds", seconds)

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.jobs[name]; exists {
		return fmt.Errorf("scheduler: job %q already registered", name)
	}
	id, err := s.cron.AddFunc(schedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Duration(seconds)*time.Second)
		defer cancel()
		s.run(ctx, name, fn)
	})
	if err != nil {
		return fmt.Errorf("scheduler: add %q: %w", name, err)
	}
	s.jobs[name] = id
	return nil
}

// RunNow executes fn once, synchronously, with the same logging as a scheduled run.
func (s *Scheduler) RunNow(ctx context.Context, name string, fn JobFunc) {
	s.run(ctx, name, fn)
}

func (s *Scheduler) run(ctx context.Context, name string, fn JobFunc) {
	started := time.Now()
	if err := fn(ctx); err != nil {
		s.logger.Error("scheduled job failed", zap.String("job", name), zap.Error(err))
		return
	}
	s.logger.Debug("scheduled job finished", zap.String("job", name), zap.Duration("took", time.Since(started)))
}

// Jobs lists registered job names.
func (s *Scheduler) Jobs() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	names := make([]string, 0, len(s.jobs))
	for name := range s.jobs {
		names = append(names, name)
	}
	return names
}

// Start launches the cron scheduler.
func (s *Scheduler) Start() {
	s.cron.Start()
	s.logger.Info("scheduler started", zap.Int("jobs", len(s.cron.Entries())))
}

// Stop waits for running jobs or ctx, whichever ends first.
func (s *Scheduler) Stop(ctx context.Context) error {
	stopCtx := s.cron.Stop()
	select {
	case <-stopCtx.Done():
	case <-ctx.Done():
		return ctx.Err()
	}
	s.logger.Info("scheduler stopped")
	return nil
}
