package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/fastygo/dsp-console/api/transport"
	"github.com/fastygo/dsp-console/domain"
	"github.com/fastygo/dsp-console/internal/navigation"
	"github.com/fastygo/dsp-console/pkg/httpcontext"
	appLogger "github.com/fastygo/dsp-console/pkg/logger"
)

// Session is the part of the session store the gateway depends on.
type Session interface {
	Credential() string
	Logout(ctx context.Context) error
	Expired(now time.Time) bool
}

// Doer is satisfied by *fasthttp.Client and *fasthttp.HostClient.
type Doer interface {
	Do(req *fasthttp.Request, resp *fasthttp.Response) error
	DoDeadline(req *fasthttp.Request, resp *fasthttp.Response, deadline time.Time) error
}

// Config controls how the gateway reaches the backend.
type Config struct {
	BaseURL string
	Timeout time.Duration
	// ProactiveExpiry tears the session down before dispatch when the
	// credential's own expiry has passed. Off by default: expiry is
	// otherwise only learnt from a 401.
	ProactiveExpiry bool
	UserAgent       string
}

// Request describes one backend call. Path is relative to the base URL.
type Request struct {
	Method string
	Path   string
	Query  url.Values
	// Form is sent as application/x-www-form-urlencoded.
	Form url.Values
	// JSON is marshalled as the request body when Form is empty.
	JSON any
	// Credential overrides the session credential for this call only.
	Credential string
	// SkipTeardown passes a 401 through to the caller without touching the
	// session. Used by the login exchange, whose failures must leave the
	// current session unchanged.
	SkipTeardown bool
}

// Response is a fully read backend answer.
type Response struct {
	Status      int
	ContentType string
	Body        []byte
}

// OK reports a 2xx status.
func (r *Response) OK() bool {
	return r != nil && r.Status >= 200 && r.Status < 300
}

// Gateway is the single chokepoint for backend calls. It attaches the
// current bearer credential and turns every 401 into a logout plus a
// redirect to the login surface.
type Gateway struct {
	client    Doer
	session   Session
	navigator navigation.Navigator
	adapter   *httpcontext.Adapter
	base      *url.URL
	cfg       Config
	logger    *zap.Logger
	now       func() time.Time
}

// New builds a gateway. client defaults to a fresh fasthttp.Client.
func New(cfg Config, client Doer, session Session, navigator navigation.Navigator, logger *zap.Logger) (*Gateway, error) {
	base, err := ParseBaseURL(cfg.BaseURL)
	if err != nil {
		return nil, err
	}
	if client == nil {
		client = &fasthttp.Client{
			Name:                     cfg.UserAgent,
			NoDefaultUserAgentHeader: cfg.UserAgent == "",
		}
	}
	if navigator == nil {
		navigator = navigation.Func(nil)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Gateway{
		client:    client,
		session:   session,
		navigator: navigator,
		adapter:   httpcontext.NewAdapter(cfg.Timeout),
		base:      base,
		cfg:       cfg,
		logger:    logger,
		now:       time.Now,
	}, nil
}

// ParseBaseURL validates an absolute http(s) base address and makes sure
// its path ends with a slash so relative paths resolve beneath it.
func ParseBaseURL(raw string) (*url.URL, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, domain.WrapError(domain.ErrCodeInvalid, "backend base url is empty", nil)
	}
	u, err := url.Parse(raw)
	if err != nil {
		return nil, domain.WrapError(domain.ErrCodeInvalid, "backend base url is malformed", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, domain.WrapError(domain.ErrCodeInvalid, fmt.Sprintf("backend base url scheme %q not supported", u.Scheme), nil)
	}
	if u.Host == "" {
		return nil, domain.WrapError(domain.ErrCodeInvalid, "backend base url has no host", nil)
	}
	if !strings.HasSuffix(u.Path, "/") {
		u.Path += "/"
	}
	return u, nil
}

// BaseURL returns the normalized backend address.
func (g *Gateway) BaseURL() string {
	return g.base.String()
}

// Do sends req. Non-2xx answers other than 401 are returned as a Response
// with a nil error; the caller decides what they mean. A 401 clears the
// session, redirects to login and is returned as a *domain.APIError.
func (g *Gateway) Do(ctx context.Context, req Request) (*Response, error) {
	credential := req.Credential
	if credential == "" && g.session != nil {
		if g.cfg.ProactiveExpiry && !req.SkipTeardown && g.session.Expired(g.now()) {
			g.teardown(ctx, "credential expired")
			return nil, domain.ErrSessionExpired
		}
		credential = g.session.Credential()
	}

	freq := fasthttp.AcquireRequest()
	fresp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(freq)
	defer fasthttp.ReleaseResponse(fresp)

	if err := g.build(freq, req, credential); err != nil {
		return nil, err
	}

	callCtx, cancel := g.adapter.Attach(ctx, freq)
	defer cancel()
	log := appLogger.WithRequestID(callCtx, g.logger).With(
		zap.String("method", string(freq.Header.Method())),
		zap.String("path", req.Path),
	)

	if err := callCtx.Err(); err != nil {
		return nil, err
	}

	started := g.now()
	var err error
	if deadline, ok := callCtx.Deadline(); ok {
		err = g.client.DoDeadline(freq, fresp, deadline)
	} else {
		err = g.client.Do(freq, fresp)
	}
	if err != nil {
		log.Warn("backend call failed", zap.Error(err))
		return nil, fmt.Errorf("%s %s: %w", freq.Header.Method(), req.Path, err)
	}

	resp := &Response{
		Status:      fresp.StatusCode(),
		ContentType: string(fresp.Header.ContentType()),
		Body:        append([]byte(nil), fresp.Body()...),
	}
	log.Debug("backend call",
		zap.Int("status", resp.Status),
		zap.Duration("elapsed", g.now().Sub(started)),
		zap.Bool("authenticated", credential != ""),
	)

	if resp.Status == http.StatusUnauthorized && !req.SkipTeardown {
		g.teardown(callCtx, "unauthorized")
		return resp, &domain.APIError{
			Status: resp.Status,
			Detail: transport.DecodeDetail(resp.Body),
			Body:   resp.Body,
		}
	}
	return resp, nil
}

// DoJSON sends req and decodes a 2xx body into out. Any other status
// becomes a *domain.APIError.
func (g *Gateway) DoJSON(ctx context.Context, req Request, out any) error {
	resp, err := g.Do(ctx, req)
	if err != nil {
		return err
	}
	if err := Check(resp); err != nil {
		return err
	}
	if out == nil || len(resp.Body) == 0 {
		return nil
	}
	if err := json.Unmarshal(resp.Body, out); err != nil {
		return domain.WrapError(domain.ErrCodeInternal, "decode backend response", err)
	}
	return nil
}

// Check converts a non-2xx response into a *domain.APIError.
func Check(resp *Response) error {
	if resp == nil {
		return errors.New("nil backend response")
	}
	if resp.OK() {
		return nil
	}
	return &domain.APIError{
		Status: resp.Status,
		Detail: transport.DecodeDetail(resp.Body),
		Body:   resp.Body,
	}
}

func (g *Gateway) build(freq *fasthttp.Request, req Request, credential string) error {
	method := req.Method
	if method == "" {
		method = fasthttp.MethodGet
	}

	target := g.base.ResolveReference(&url.URL{Path: strings.TrimLeft(req.Path, "/")})
	if len(req.Query) > 0 {
		target.RawQuery = req.Query.Encode()
	}

	freq.Header.SetMethod(method)
	freq.SetRequestURI(target.String())
	freq.Header.Set(fasthttp.HeaderAccept, "application/json")
	if credential != "" {
		freq.Header.Set(fasthttp.HeaderAuthorization, "Bearer "+credential)
	}

	switch {
	case len(req.Form) > 0:
		args := fasthttp.AcquireArgs()
		defer fasthttp.ReleaseArgs(args)
		for key, values := range req.Form {
			for _, v := range values {
				args.Add(key, v)
			}
		}
		freq.Header.SetContentType("application/x-www-form-urlencoded")
		freq.SetBody(args.QueryString())
	case req.JSON != nil:
		body, err := json.Marshal(req.JSON)
		if err != nil {
			return domain.WrapError(domain.ErrCodeInvalid, "encode request body", err)
		}
		freq.Header.SetContentType("application/json")
		freq.SetBody(body)
	}
	return nil
}

func (g *Gateway) teardown(ctx context.Context, reason string) {
	// The triggering call may already be past its deadline; the logout
	// must still reach durable storage.
	ctx = context.WithoutCancel(ctx)
	if g.session != nil {
		if err := g.session.Logout(ctx); err != nil {
			g.logger.Warn("logout after rejection failed", zap.Error(err))
		}
	}
	g.navigator.RedirectToLogin(ctx, reason)
}
