package lifecycle

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type closer struct{ closed bool }

func (c *closer) Close() error {
	c.closed = true
	return nil
}

func TestShutdownRunsHooksInReverse(t *testing.T) {
	m := New(time.Second, nil)
	var order []string
	for _, name := range []string{"store", "scheduler", "http_server"} {
		name := name
		m.Register(name, func(context.Context) error {
			order = append(order, name)
			return nil
		})
	}
	c := &closer{}
	m.RegisterCloser("redis", c)
	m.Register("ignored", nil)

	assert.Equal(t, []string{"redis", "http_server", "scheduler", "store"}, m.Components())
	require.NoError(t, m.Shutdown(context.Background()))
	assert.Equal(t, []string{"http_server", "scheduler", "store"}, order)
	assert.True(t, c.closed)

	require.NoError(t, m.Shutdown(context.Background()))
	assert.Len(t, order, 3, "second shutdown is a no-op")
}

func TestShutdownJoinsErrors(t *testing.T) {
	m := New(0, nil)
	first := errors.New("first")
	second := errors.New("second")
	ran := false
	m.Register("a", func(context.Context) error { return first })
	m.Register("b", func(context.Context) error {
		ran = true
		return nil
	})
	m.Register("c", func(context.Context) error { return second })

	err := m.Shutdown(context.Background())
	assert.ErrorIs(t, err, first)
	assert.ErrorIs(t, err, second)
	assert.True(t, ran, "a failing hook does not stop the rest")
}

func TestShutdownHonoursTimeout(t *testing.T) {
	m := New(10*time.Millisecond, nil)
	m.Register("slow", func(ctx context.Context) error {
		<-ctx.Done()
		return ctx.Err()
	})
	assert.ErrorIs(t, m.Shutdown(context.Background()), context.DeadlineExceeded)
}
