// internal/workers/application/validate-application/models.go
package validateapplication

import (
	"lending-workers/internal/credit/intake"
	"lending-workers/internal/models"
)

type Input struct {
	ApplicationData map[string]interface{} `json:"applicationData"`
	UserID          string                 `json:"userId"`
}

type Output struct {
	IsValid          bool                       `json:"isValid"`
	ValidatedRequest *models.ApplicationRequest `json:"validatedRequest,omitempty"`
	ValidationErrors []intake.FieldError        `json:"validationErrors"`
}
