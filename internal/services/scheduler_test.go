package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestSchedulerRegistersJobs(t *testing.T) {
	s := NewScheduler(nil)
	noop := func(context.Context) error { return nil }

	require.NoError(t, s.Every("sweep", time.Minute, noop))
	require.NoError(t, s.Every("disabled", 0, noop))
	assert.Error(t, s.Every("sweep", time.Second, noop), "names are unique")

	assert.ElementsMatch(t, []string{"sweep"}, s.Jobs())
}

func TestSchedulerRunsJobs(t *testing.T) {
	s := NewScheduler(nil)
	ran := make(chan struct{}, 1)
	require.NoError(t, s.Every("tick", time.Second, func(context.Context) error {
		select {
		case ran <- struct{}{}:
		default:
		}
		return nil
	}))

	s.Start()
	defer func() { _ = s.Stop(context.Background()) }()

	select {
	case <-ran:
	case <-time.After(3 * time.Second):
		t.Fatal("job did not run")
	}
}

func TestRunNowLogsFailures(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	s := NewScheduler(zap.New(core))

	s.RunNow(context.Background(), "broken", func(context.Context) error { return errors.New("boom") })
	require.Equal(t, 1, logs.FilterMessage("scheduled job failed").Len())
	assert.Equal(t, "broken", logs.All()[0].ContextMap()["job"])
}
