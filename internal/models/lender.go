// internal/models/lender.go
package models

// LenderProfile is read-only reference data describing one lender on the
// panel. The engine never mutates it.
type LenderProfile struct {
	ID              string   `json:"id"`
	Name            string   `json:"name"`
	MinLoan         float64  `json:"minLoan"`
	MaxLoan         float64  `json:"maxLoan"`
	MinAPR          float64  `json:"minApr"`
	MaxAPR          float64  `json:"maxApr"`
	SupportedStates []string `json:"supportedStates"`
	ContactEmail    string   `json:"contactEmail,omitempty"`
}

// SupportsState reports whether the lender operates in the given region code.
func (l LenderProfile) SupportsState(state string) bool {
	for _, s := range l.SupportedStates {
		if s == state {
			return true
		}
	}
	return false
}

// Offer is a lender-specific pre-approval. Immutable after creation; one
// per eligible lender per application.
type Offer struct {
	ID             string  `json:"id,omitempty"`
	ApplicationID  string  `json:"applicationId,omitempty"`
	LenderID       string  `json:"lenderId"`
	LenderName     string  `json:"lenderName"`
	MaxLoanAmount  float64 `json:"maxLoanAmount"`
	InterestRate   float64 `json:"interestRate"`   // APR, rounded to 2 decimal places
	MonthlyPayment float64 `json:"monthlyPayment"` // rounded to whole currency units
	TermMonths     int     `json:"terms"`
	Approved       bool    `json:"approved"`
}
