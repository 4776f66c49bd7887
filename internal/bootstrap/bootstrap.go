// Package bootstrap rehydrates the session before the console shows anything.
package bootstrap

import (
	"context"
	"sync"

	"go.uber.org/zap"
)

// Restorer loads a persisted session into memory.
type Restorer interface {
	Restore(ctx context.Context)
	IsAuthenticated() bool
}

// Bootstrapper runs the restore step at most once per process. It never
// touches the network; a stale credential is only discovered when the
// gateway sees a 401.
type Bootstrapper struct {
	session Restorer
	logger  *zap.Logger
	once    sync.Once
}

func New(session Restorer, logger *zap.Logger) *Bootstrapper {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Bootstrapper{session: session, logger: logger}
}

// Run restores the session on the first call and reports whether a caller
// is authenticated afterwards.
func (b *Bootstrapper) Run(ctx context.Context) bool {
	b.once.Do(func() {
		b.session.Restore(ctx)
		b.logger.Debug("bootstrap complete", zap.Bool("authenticated", b.session.IsAuthenticated()))
	})
	return b.session.IsAuthenticated()
}
