package lifecycle

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestShutdownReleasesInReverseOrderOnce(t *testing.T) {
	m := New(time.Second, nil)
	var order []string
	m.Register("storage", func(context.Context) error {
		order = append(order, "storage")
		return nil
	})
	m.RegisterCloser("logger", func() error {
		order = append(order, "logger")
		return nil
	})
	m.Register("ignored", nil)

	assert.NoError(t, m.Shutdown(context.Background()))
	assert.NoError(t, m.Shutdown(context.Background()))
	assert.Equal(t, []string{"logger", "storage"}, order)
}

func TestShutdownJoinsErrors(t *testing.T) {
	m := New(0, nil)
	first := errors.New("first")
	second := errors.New("second")
	m.RegisterCloser("a", func() error { return first })
	m.RegisterCloser("b", func() error { return second })

	err := m.Shutdown(context.Background())
	assert.ErrorIs(t, err, first)
	assert.ErrorIs(t, err, second)
}

func TestShutdownIsBounded(t *testing.T) {
	m := New(20*time.Millisecond, nil)
	m.Register("slow", func(ctx context.Context) error {
		<-ctx.Done()
		return ctx.Err()
	})

	err := m.Shutdown(context.Background())
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestSignalContextFollowsParent(t *testing.T) {
	m := New(time.Second, nil)
	parent, cancel := context.WithCancel(context.Background())
	ctx, stop := m.SignalContext(parent)
	defer stop()

	cancel()
	<-ctx.Done()
	assert.ErrorIs(t, ctx.Err(), context.Canceled)
}
