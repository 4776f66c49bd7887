package domain

// Analytics is one daily analytics row for a location.
type Analytics struct {
	ID                    int64     `json:"id"`
	LocationID            int64     `json:"location_id"`
	Date                  Timestamp `json:"date"`
	RealCustomers         int       `json:"real_customers"`
	ReportedRevenue       float64   `json:"reported_revenue"`
	EstimatedRevenue      float64   `json:"estimated_revenue"`
	AverageCheck          float64   `json:"average_check"`
	Discrepancy           float64   `json:"discrepancy"`
	DiscrepancyPercentage float64   `json:"discrepancy_percentage"`
}

// RiskScore is the latest risk assessment for a location.
type RiskScore struct {
	ID                    int64          `json:"id"`
	LocationID            int64          `json:"location_id"`
	Date                  Timestamp      `json:"date"`
	RiskScore             float64        `json:"risk_score"`
	RiskLevel             string         `json:"risk_level"`
	Factors               map[string]any `json:"factors,omitempty"`
	UnregisteredEmployees int            `json:"unregistered_employees"`
	RevenueDiscrepancy    float64        `json:"revenue_discrepancy"`
}

// Dashboard is the summary shown on the console landing view.
type Dashboard struct {
	Locations       int       `json:"locations"`
	ActiveLocations int       `json:"active_locations"`
	Cameras         int       `json:"cameras"`
	ActiveCameras   int       `json:"active_cameras"`
	Employees       int       `json:"employees"`
	Unregistered    int       `json:"unregistered_employees"`
	RefreshedAt     Timestamp `json:"refreshed_at"`
}
