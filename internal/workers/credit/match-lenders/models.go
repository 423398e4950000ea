// internal/workers/credit/match-lenders/models.go
package matchlenders

import "lending-workers/internal/models"

type Input struct {
	ApplicationID    string                     `json:"applicationId"`
	ValidatedRequest *models.ApplicationRequest `json:"validatedRequest"`
	FicoScore        int                        `json:"ficoScore"`
}

type Output struct {
	Offers     []models.Offer `json:"offers"`
	OfferCount int            `json:"offerCount"`
}
