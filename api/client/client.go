// Package client is the typed backend API used by the console. Every call
// goes through the authorized request gateway.
package client

import (
	"context"

	"go.uber.org/zap"

	"github.com/fastygo/dsp-console/internal/gateway"
)

// Backend endpoint paths, relative to the configured base address.
const (
	pathLogin     = "auth/login"
	pathMe        = "auth/me"
	pathRegister  = "auth/register"
	pathLocations = "locations/"
	pathCameras   = "cameras/"
	pathEmployees = "employees/"
	pathAnalytics = "analytics/locations/"
)

// Requester is the gateway surface the client needs.
type Requester interface {
	Do(ctx context.Context, req gateway.Request) (*gateway.Response, error)
	DoJSON(ctx context.Context, req gateway.Request, out any) error
}

// Client groups the backend resources.
type Client struct {
	gw     Requester
	logger *zap.Logger
}

func New(gw Requester, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{gw: gw, logger: logger}
}
