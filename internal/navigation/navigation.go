// Package navigation models the client's jump back to its login surface.
package navigation

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"go.uber.org/zap"
)

// DefaultLoginPath is the entry surface of the console.
const DefaultLoginPath = "/login"

// Event records one redirect to the login surface.
type Event struct {
	Target string
	Reason string
	At     time.Time
}

// Navigator sends the user back to the login surface.
type Navigator interface {
	RedirectToLogin(ctx context.Context, reason string)
}

// Func adapts a function to Navigator.
type Func func(ctx context.Context, reason string)

func (f Func) RedirectToLogin(ctx context.Context, reason string) {
	if f != nil {
		f(ctx, reason)
	}
}

// Recorder remembers every redirect. Safe for concurrent use.
type Recorder struct {
	target string

	mu     sync.Mutex
	events []Event
}

func NewRecorder(target string) *Recorder {
	if target == "" {
		target = DefaultLoginPath
	}
	return &Recorder{target: target}
}

func (r *Recorder) RedirectToLogin(_ context.Context, reason string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, Event{Target: r.target, Reason: reason, At: time.Now()})
}

// Events returns a copy of the recorded redirects.
func (r *Recorder) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Event(nil), r.events...)
}

// Count returns the number of redirects seen so far.
func (r *Recorder) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.events)
}

// Notifier is the terminal login surface: it tells the operator once per
// process that the session ended and how to start a new one.
type Notifier struct {
	out     io.Writer
	target  string
	command string
	logger  *zap.Logger
	once    sync.Once
}

// NewNotifier writes the notice to out. target names the login surface in
// logs; loginCommand is what the operator is told to run.
func NewNotifier(out io.Writer, target, loginCommand string, logger *zap.Logger) *Notifier {
	if logger == nil {
		logger = zap.NewNop()
	}
	if target == "" {
		target = DefaultLoginPath
	}
	return &Notifier{out: out, target: target, command: loginCommand, logger: logger}
}

func (n *Notifier) RedirectToLogin(_ context.Context, reason string) {
	n.logger.Info("redirecting to login", zap.String("target", n.target), zap.String("reason", reason))
	n.once.Do(func() {
		if n.out == nil {
			return
		}
		fmt.Fprintf(n.out, "Session ended (%s). Run `%s` to sign in again.\n", reason, n.command)
	})
}

// Multi fans a redirect out to several navigators.
type Multi []Navigator

func (m Multi) RedirectToLogin(ctx context.Context, reason string) {
	for _, n := range m {
		if n != nil {
			n.RedirectToLogin(ctx, reason)
		}
	}
}
