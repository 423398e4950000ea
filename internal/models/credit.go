// internal/models/credit.go
package models

// CreditAssessment is the result of one soft-pull credit inquiry.
// Produced once per submission attempt and treated as a fact afterwards.
type CreditAssessment struct {
	FicoScore int      `json:"ficoScore"` // in [300, 850]
	Factors   []string `json:"factors"`   // ordered contributing-factor descriptions
	Approved  bool     `json:"approved"`  // hint: score >= 580
	Provider  string   `json:"provider,omitempty"`
	PulledAt  string   `json:"pulledAt,omitempty"`
}

// ApprovedHintFloor is the score at which the bureau's approved hint flips.
const ApprovedHintFloor = 580
