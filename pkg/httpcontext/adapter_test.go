package httpcontext

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/valyala/fasthttp"

	appLogger "github.com/fastygo/dsp-console/pkg/logger"
)

func TestAttachGeneratesRequestID(t *testing.T) {
	req := fasthttp.AcquireRequest()
	defer fasthttp.ReleaseRequest(req)

	ctx, cancel := NewAdapter(time.Second).Attach(context.Background(), req)
	defer cancel()

	id := string(req.Header.Peek(HeaderRequestID))
	assert.NotEmpty(t, id)
	assert.Equal(t, id, appLogger.RequestID(ctx))

	deadline, ok := ctx.Deadline()
	assert.True(t, ok)
	assert.WithinDuration(t, time.Now().Add(time.Second), deadline, 100*time.Millisecond)
}

func TestAttachReusesContextRequestID(t *testing.T) {
	req := fasthttp.AcquireRequest()
	defer fasthttp.ReleaseRequest(req)

	parent := appLogger.ContextWithRequestID(context.Background(), "req-42")
	ctx, cancel := NewAdapter(0).Attach(parent, req)
	defer cancel()

	assert.Equal(t, "req-42", string(req.Header.Peek(HeaderRequestID)))
	_, hasDeadline := ctx.Deadline()
	assert.False(t, hasDeadline)
}

func TestAttachPrefersHeader(t *testing.T) {
	req := fasthttp.AcquireRequest()
	defer fasthttp.ReleaseRequest(req)
	req.Header.Set(HeaderRequestID, "from-header")

	ctx, cancel := NewAdapter(0).Attach(appLogger.ContextWithRequestID(context.Background(), "from-ctx"), req)
	defer cancel()

	assert.Equal(t, "from-header", appLogger.RequestID(ctx))
}
