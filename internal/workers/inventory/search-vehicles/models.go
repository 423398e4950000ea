// internal/workers/inventory/search-vehicles/models.go
package searchvehicles

import "lending-workers/internal/models"

type Pagination struct {
	From int `json:"from"`
	Size int `json:"size"`
}

type Input struct {
	// MaxPrice caps the listing price; zero means no cap.
	MaxPrice float64 `json:"maxPrice,omitempty"`
	// Sort is one of price_asc, price_desc, year_desc, newest.
	Sort       string     `json:"sort,omitempty"`
	Keywords   string     `json:"keywords,omitempty"`
	DealerID   string     `json:"dealerId,omitempty"`
	Pagination Pagination `json:"pagination,omitempty"`
}

type Output struct {
	Vehicles  []models.Vehicle `json:"vehicles"`
	TotalHits int64            `json:"totalHits"`
	Took      int64            `json:"took"`
}
