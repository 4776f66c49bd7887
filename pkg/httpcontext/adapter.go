package httpcontext

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/valyala/fasthttp"

	appLogger "github.com/fastygo/dsp-console/pkg/logger"
)

// HeaderRequestID carries the correlation id of an outbound call.
const HeaderRequestID = "X-Request-ID"

// Adapter prepares the context of an outbound backend call: it bounds the
// call with a deadline and tags it with a request id.
type Adapter struct {
	timeout time.Duration
}

// NewAdapter constructs a new Adapter using the provided timeout. A zero or
// negative timeout leaves calls bounded only by the caller's context.
func NewAdapter(timeout time.Duration) *Adapter {
	return &Adapter{
		timeout: timeout,
	}
}

// Attach derives a context for req with the adapter timeout and makes sure
// req carries an X-Request-ID that matches the one stored in the context.
func (a *Adapter) Attach(ctx context.Context, req *fasthttp.Request) (context.Context, context.CancelFunc) {
	if ctx == nil {
		ctx = context.Background()
	}

	var cancel context.CancelFunc
	if a != nil && a.timeout > 0 {
		ctx, cancel = context.WithTimeout(ctx, a.timeout)
	} else {
		ctx, cancel = context.WithCancel(ctx)
	}

	reqID := getRequestID(ctx, req)
	ctx = appLogger.ContextWithRequestID(ctx, reqID)
	if req != nil {
		req.Header.Set(HeaderRequestID, reqID)
	}
	return ctx, cancel
}

func getRequestID(ctx context.Context, req *fasthttp.Request) string {
	if req != nil {
		if header := string(req.Header.Peek(HeaderRequestID)); strings.TrimSpace(header) != "" {
			return header
		}
	}
	if reqID := appLogger.RequestID(ctx); reqID != "" {
		return reqID
	}
	return uuid.NewString()
}
