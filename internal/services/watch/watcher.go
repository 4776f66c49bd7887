package watch

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/fastygo/dsp-console/domain"
)

// Summarizer produces a dashboard snapshot.
type Summarizer interface {
	Summary(ctx context.Context) (*domain.Dashboard, error)
}

// Status is the last observed refresh outcome.
type Status struct {
	Dashboard *domain.Dashboard
	Err       error
	LastCheck time.Time
}

// Watcher refreshes the dashboard on a fixed interval and hands every
// result to a callback.
type Watcher struct {
	source   Summarizer
	interval time.Duration
	onUpdate func(Status)
	logger   *zap.Logger
	cron     *cron.Cron

	mu     sync.RWMutex
	status Status
}

func New(source Summarizer, interval time.Duration, onUpdate func(Status), logger *zap.Logger) (*Watcher, error) {
	if interval < time.Second {
		interval = 30 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	w := &Watcher{
		source:   source,
		interval: interval,
		onUpdate: onUpdate,
		logger:   logger,
		cron:     cron.New(cron.WithSeconds()),
	}

	schedule := fmt.Sprintf("@every %ds", int(interval.Seconds()))
	if _, err := w.cron.AddFunc(schedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), interval)
		defer cancel()
		w.Refresh(ctx)
	}); err != nil {
		return nil, err
	}
	return w, nil
}

// Start refreshes immediately and then launches the scheduler.
func (w *Watcher) Start(ctx context.Context) {
	w.Refresh(ctx)
	w.cron.Start()
	w.logger.Info("dashboard watch started", zap.Duration("interval", w.interval))
}

// Stop waits for a running refresh to finish or for ctx to expire.
func (w *Watcher) Stop(ctx context.Context) {
	stopCtx := w.cron.Stop()
	select {
	case <-stopCtx.Done():
	case <-ctx.Done():
	}
	w.logger.Info("dashboard watch stopped")
}

// Refresh runs one summary synchronously.
func (w *Watcher) Refresh(ctx context.Context) Status {
	summary, err := w.source.Summary(ctx)
	status := Status{Dashboard: summary, Err: err, LastCheck: time.Now()}
	if err != nil {
		w.logger.Warn("dashboard refresh failed", zap.Error(err))
	}

	w.mu.Lock()
	if err == nil || w.status.Dashboard == nil {
		w.status = status
	} else {
		// keep the last good dashboard, surface the error
		w.status.Err = err
		w.status.LastCheck = status.LastCheck
	}
	current := w.status
	w.mu.Unlock()

	if w.onUpdate != nil {
		w.onUpdate(current)
	}
	return current
}

// GetStatus returns the last refresh outcome.
func (w *Watcher) GetStatus() Status {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.status
}
