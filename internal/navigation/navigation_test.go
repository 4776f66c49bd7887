package navigation

import (
	"bytes"
	"context"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecorder(t *testing.T) {
	r := NewRecorder("")
	r.RedirectToLogin(context.Background(), "unauthorized")
	r.RedirectToLogin(context.Background(), "credential expired")

	events := r.Events()
	require.Len(t, events, 2)
	assert.Equal(t, DefaultLoginPath, events[0].Target)
	assert.Equal(t, "credential expired", events[1].Reason)
	assert.False(t, events[0].At.IsZero())
}

func TestNotifierPrintsOnce(t *testing.T) {
	var out bytes.Buffer
	n := NewNotifier(&out, "", "dspctl login", nil)

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			n.RedirectToLogin(context.Background(), "unauthorized")
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, strings.Count(out.String(), "Session ended"))
	assert.Contains(t, out.String(), "`dspctl login`")
}

func TestMultiAndFunc(t *testing.T) {
	var calls []string
	rec := NewRecorder("/signin")
	m := Multi{
		rec,
		nil,
		Func(func(_ context.Context, reason string) { calls = append(calls, reason) }),
		Func(nil),
	}

	m.RedirectToLogin(context.Background(), "unauthorized")

	assert.Equal(t, []string{"unauthorized"}, calls)
	assert.Equal(t, "/signin", rec.Events()[0].Target)
}
