package domain

// Employee is a person working at a location.
type Employee struct {
	ID             int64     `json:"id"`
	LocationID     int64     `json:"location_id"`
	FullName       string    `json:"full_name"`
	Position       string    `json:"position,omitempty"`
	Phone          string    `json:"phone,omitempty"`
	Email          string    `json:"email,omitempty"`
	PassportNumber string    `json:"passport_number,omitempty"`
	IsRegistered   bool      `json:"is_registered"`
	IsActive       bool      `json:"is_active"`
	HireDate       Timestamp `json:"hire_date"`
	CreatedAt      Timestamp `json:"created_at"`
}
