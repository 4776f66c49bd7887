package lifecycle

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"go.uber.org/zap"
)

// ReleaseFunc frees one resource held by the console process.
type ReleaseFunc func(ctx context.Context) error

type resource struct {
	name    string
	release ReleaseFunc
}

// Manager releases the process resources (session storage, watchers) in
// reverse acquisition order, bounded by a timeout.
type Manager struct {
	timeout time.Duration
	logger  *zap.Logger

	mu        sync.Mutex
	resources []resource
	released  bool
}

// New creates a lifecycle manager with the desired timeout.
func New(timeout time.Duration, logger *zap.Logger) *Manager {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Manager{
		timeout: timeout,
		logger:  logger,
	}
}

// Register adds a resource. Resources are released in reverse order.
func (m *Manager) Register(name string, fn ReleaseFunc) {
	if fn == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.resources = append(m.resources, resource{name: name, release: fn})
}

// RegisterCloser adapts a plain Close method.
func (m *Manager) RegisterCloser(name string, closeFn func() error) {
	if closeFn == nil {
		return
	}
	m.Register(name, func(context.Context) error { return closeFn() })
}

// Shutdown releases every registered resource once. Later calls are no-ops.
func (m *Manager) Shutdown(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, cancel := context.WithTimeout(ctx, m.timeout)
	defer cancel()

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.released {
		return nil
	}
	m.released = true

	var result error
	for i := len(m.resources) - 1; i >= 0; i-- {
		r := m.resources[i]
		if err := r.release(ctx); err != nil {
			m.logger.Error("release failed", zap.String("component", r.name), zap.Error(err))
			result = errors.Join(result, err)
			continue
		}
		m.logger.Debug("component released", zap.String("component", r.name))
	}
	return result
}

// SignalContext returns a child of parent that is cancelled on SIGINT or
// SIGTERM.
func (m *Manager) SignalContext(parent context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
}
