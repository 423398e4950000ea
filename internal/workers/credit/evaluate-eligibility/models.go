// internal/workers/credit/evaluate-eligibility/models.go
package evaluateeligibility

import "lending-workers/internal/models"

type Input struct {
	ValidatedRequest *models.ApplicationRequest `json:"validatedRequest"`
	FicoScore        int                        `json:"ficoScore"`
}

// Output carries the verdict as plain variables so the process gateway
// can branch on eligible without unwrapping anything.
type Output struct {
	Eligible bool   `json:"eligible"`
	Reason   string `json:"reason,omitempty"`
}
