// internal/workers/application/persist-decision/models.go
package persistdecision

import "lending-workers/internal/models"

type Input struct {
	ApplicationID string         `json:"applicationId"`
	UserID        string         `json:"userId"`
	Eligible      bool           `json:"eligible"`
	Reason        string         `json:"reason"`
	FicoScore     int            `json:"ficoScore"`
	CreditFactors []string       `json:"creditFactors"`
	Offers        []models.Offer `json:"offers"`
}

type Output struct {
	ApplicationID string `json:"applicationId"`
	Status        string `json:"status"`
	OfferCount    int    `json:"offerCount"`
}
