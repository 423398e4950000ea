// internal/models/vehicle.go
package models

// Vehicle is one inventory record served by the search worker.
type Vehicle struct {
	ID          string  `json:"id"`
	Make        string  `json:"make"`
	Model       string  `json:"model"`
	Year        int     `json:"year"`
	Price       float64 `json:"price"`
	Color       string  `json:"color,omitempty"`
	Mileage     int     `json:"mileage,omitempty"`
	Description string  `json:"description,omitempty"`
	ImageURL    string  `json:"imageUrl,omitempty"`
	DealerID    string  `json:"dealerId,omitempty"`
	Status      string  `json:"status"`
}
