// internal/models/application.go
package models

// ApplicationStatus is the lifecycle state of a loan application.
// pending is initial; approved and declined are terminal. There is no
// re-entry: a resubmission is a new application.
type ApplicationStatus string

const (
	StatusPending  ApplicationStatus = "pending"
	StatusApproved ApplicationStatus = "approved"
	StatusDeclined ApplicationStatus = "declined"
)

// IsTerminal reports whether the status permits no further transition.
func (s ApplicationStatus) IsTerminal() bool {
	return s == StatusApproved || s == StatusDeclined
}

// EmploymentStatus is the fixed set of accepted employment situations.
type EmploymentStatus string

const (
	EmploymentEmployed     EmploymentStatus = "employed"
	EmploymentSelfEmployed EmploymentStatus = "self-employed"
	EmploymentRetired      EmploymentStatus = "retired"
)

// ValidEmploymentStatus reports membership in the accepted enum.
func ValidEmploymentStatus(s string) bool {
	switch EmploymentStatus(s) {
	case EmploymentEmployed, EmploymentSelfEmployed, EmploymentRetired:
		return true
	}
	return false
}

// ApplicationRequest is a fully validated loan application payload.
// It is constructed only by the intake validator; downstream components
// never re-validate or coerce its fields.
type ApplicationRequest struct {
	FirstName        string  `json:"firstName"`
	LastName         string  `json:"lastName"`
	Email            string  `json:"email"`
	Phone            string  `json:"phone"`
	SSN              string  `json:"ssn"`
	DOB              string  `json:"dob"` // ISO date, already parse-checked
	Address          string  `json:"address"`
	City             string  `json:"city"`
	State            string  `json:"state"`
	ZipCode          string  `json:"zipCode"`
	AnnualIncome     float64 `json:"annualIncome"`
	EmploymentStatus string  `json:"employmentStatus"`
	DownPayment      float64 `json:"downPayment"`
	DesiredLoanAmount float64 `json:"desiredLoanAmount"`
	LoanTermMonths   int     `json:"loanTerm"`
}

// Application is the aggregate root persisted across the decision pipeline.
type Application struct {
	ID            string             `json:"id"`
	UserID        string             `json:"userId,omitempty"`
	Request       ApplicationRequest `json:"request"`
	Status        ApplicationStatus  `json:"status"`
	FicoScore     int                `json:"ficoScore,omitempty"`
	CreditFactors []string           `json:"creditFactors,omitempty"`
	Offers        []Offer            `json:"offers,omitempty"`
	CreatedAt     string             `json:"createdAt"`
	UpdatedAt     string             `json:"updatedAt"`
}
