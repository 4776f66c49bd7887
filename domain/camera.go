package domain

import "encoding/json"

// Camera is an IP camera attached to a location.
type Camera struct {
	ID         int64     `json:"id"`
	LocationID int64     `json:"location_id"`
	Name       string    `json:"name"`
	IPAddress  string    `json:"ip_address"`
	Port       int       `json:"port"`
	CameraType string    `json:"camera_type,omitempty"`
	StreamURL  string    `json:"stream_url,omitempty"`
	Resolution string    `json:"resolution,omitempty"`
	FPS        int       `json:"fps,omitempty"`
	IsActive   bool      `json:"is_active"`
	CreatedAt  Timestamp `json:"created_at"`
}

// CameraConnection holds the parameters for probing a camera by address.
type CameraConnection struct {
	IPAddress string
	Port      int
	Username  string
	Password  string
}

// DefaultCameraPort is used when a connection does not name a port.
const DefaultCameraPort = 80

// Normalize fills in defaults and validates the address.
func (c *CameraConnection) Normalize() error {
	if c.IPAddress == "" {
		return WrapError(ErrCodeInvalid, "camera ip address is required", nil)
	}
	if c.Port <= 0 {
		c.Port = DefaultCameraPort
	}
	if c.Port > 65535 {
		return WrapError(ErrCodeInvalid, "camera port out of range", nil)
	}
	return nil
}

// Payload is an opaque JSON document from the vision service (camera
// status, connection probe, analysis result). Its shape belongs to the
// backend.
type Payload = json.RawMessage
