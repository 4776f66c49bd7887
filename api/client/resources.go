package client

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/valyala/fasthttp"

	"github.com/fastygo/dsp-console/domain"
	"github.com/fastygo/dsp-console/internal/gateway"
)

// ListLocations returns every location visible to the caller.
func (c *Client) ListLocations(ctx context.Context) ([]domain.Location, error) {
	var out []domain.Location
	err := c.gw.DoJSON(ctx, gateway.Request{Path: pathLocations}, &out)
	return out, err
}

func (c *Client) GetLocation(ctx context.Context, id int64) (*domain.Location, error) {
	var out domain.Location
	if err := c.gw.DoJSON(ctx, gateway.Request{Path: itemPath(pathLocations, id)}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) CreateLocation(ctx context.Context, in domain.LocationInput) (*domain.Location, error) {
	if err := in.ValidateCreate(); err != nil {
		return nil, err
	}
	var out domain.Location
	err := c.gw.DoJSON(ctx, gateway.Request{Method: fasthttp.MethodPost, Path: pathLocations, JSON: in}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) UpdateLocation(ctx context.Context, id int64, in domain.LocationInput) (*domain.Location, error) {
	var out domain.Location
	err := c.gw.DoJSON(ctx, gateway.Request{Method: fasthttp.MethodPut, Path: itemPath(pathLocations, id), JSON: in}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) DeleteLocation(ctx context.Context, id int64) error {
	return c.gw.DoJSON(ctx, gateway.Request{Method: fasthttp.MethodDelete, Path: itemPath(pathLocations, id)}, nil)
}

// ListCameras returns cameras, narrowed to one location when locationID > 0.
func (c *Client) ListCameras(ctx context.Context, locationID int64) ([]domain.Camera, error) {
	var out []domain.Camera
	err := c.gw.DoJSON(ctx, gateway.Request{Path: pathCameras, Query: locationFilter(locationID)}, &out)
	return out, err
}

// CameraStatus asks the vision service for the live status of a camera.
func (c *Client) CameraStatus(ctx context.Context, id int64) (domain.Payload, error) {
	var out domain.Payload
	err := c.gw.DoJSON(ctx, gateway.Request{Path: fmt.Sprintf("%s%d/status", pathCameras, id)}, &out)
	return out, err
}

// ConnectCamera probes an IP camera by address.
func (c *Client) ConnectCamera(ctx context.Context, conn domain.CameraConnection) (domain.Payload, error) {
	if err := conn.Normalize(); err != nil {
		return nil, err
	}
	query := url.Values{}
	query.Set("ip_address", conn.IPAddress)
	query.Set("port", strconv.Itoa(conn.Port))
	if conn.Username != "" {
		query.Set("username", conn.Username)
	}
	if conn.Password != "" {
		query.Set("password", conn.Password)
	}

	var out domain.Payload
	err := c.gw.DoJSON(ctx, gateway.Request{Method: fasthttp.MethodPost, Path: pathCameras + "connect", Query: query}, &out)
	return out, err
}

// AnalyzeCamera starts an analysis job on the camera stream. A zero
// duration lets the backend pick its default.
func (c *Client) AnalyzeCamera(ctx context.Context, id int64, durationSeconds int) (domain.Payload, error) {
	var query url.Values
	if durationSeconds > 0 {
		query = url.Values{"duration": []string{strconv.Itoa(durationSeconds)}}
	}
	var out domain.Payload
	err := c.gw.DoJSON(ctx, gateway.Request{
		Method: fasthttp.MethodPost,
		Path:   fmt.Sprintf("%s%d/analyze", pathCameras, id),
		Query:  query,
	}, &out)
	return out, err
}

// ListEmployees returns employees, narrowed to one location when locationID > 0.
func (c *Client) ListEmployees(ctx context.Context, locationID int64) ([]domain.Employee, error) {
	var out []domain.Employee
	err := c.gw.DoJSON(ctx, gateway.Request{Path: pathEmployees, Query: locationFilter(locationID)}, &out)
	return out, err
}

func (c *Client) GetEmployee(ctx context.Context, id int64) (*domain.Employee, error) {
	var out domain.Employee
	if err := c.gw.DoJSON(ctx, gateway.Request{Path: itemPath(pathEmployees, id)}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// LocationAnalytics returns the daily analytics rows of a location.
func (c *Client) LocationAnalytics(ctx context.Context, locationID int64) ([]domain.Analytics, error) {
	var out []domain.Analytics
	err := c.gw.DoJSON(ctx, gateway.Request{Path: fmt.Sprintf("%s%d", pathAnalytics, locationID)}, &out)
	return out, err
}

// LocationRisk returns the latest risk score of a location.
func (c *Client) LocationRisk(ctx context.Context, locationID int64) (*domain.RiskScore, error) {
	var out domain.RiskScore
	if err := c.gw.DoJSON(ctx, gateway.Request{Path: fmt.Sprintf("%s%d/risk", pathAnalytics, locationID)}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func itemPath(collection string, id int64) string {
	return fmt.Sprintf("%s%d", collection, id)
}

func locationFilter(locationID int64) url.Values {
	if locationID <= 0 {
		return nil
	}
	return url.Values{"location_id": []string{strconv.FormatInt(locationID, 10)}}
}
