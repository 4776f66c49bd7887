package domain

// Location is a monitored business point (shop, cafe, pharmacy...).
type Location struct {
	ID           int64     `json:"id"`
	Name         string    `json:"name"`
	Address      string    `json:"address"`
	LocationType string    `json:"location_type"`
	Latitude     *float64  `json:"latitude,omitempty"`
	Longitude    *float64  `json:"longitude,omitempty"`
	TaxID        string    `json:"tax_id,omitempty"`
	OwnerID      *int64    `json:"owner_id,omitempty"`
	IsActive     bool      `json:"is_active"`
	CreatedAt    Timestamp `json:"created_at"`
	UpdatedAt    Timestamp `json:"updated_at"`
}

// LocationInput is the body for create and update calls. Nil fields are
// left out so partial updates do not clobber stored values.
type LocationInput struct {
	Name         *string  `json:"name,omitempty"`
	Address      *string  `json:"address,omitempty"`
	LocationType *string  `json:"location_type,omitempty"`
	Latitude     *float64 `json:"latitude,omitempty"`
	Longitude    *float64 `json:"longitude,omitempty"`
	TaxID        *string  `json:"tax_id,omitempty"`
	IsActive     *bool    `json:"is_active,omitempty"`
}

// ValidateCreate checks the fields a create call cannot do without.
func (in LocationInput) ValidateCreate() error {
	if in.Name == nil || *in.Name == "" {
		return WrapError(ErrCodeInvalid, "location name is required", nil)
	}
	if in.Address == nil || *in.Address == "" {
		return WrapError(ErrCodeInvalid, "location address is required", nil)
	}
	if in.LocationType == nil || *in.LocationType == "" {
		return WrapError(ErrCodeInvalid, "location type is required", nil)
	}
	return nil
}
