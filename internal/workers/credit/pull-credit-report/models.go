// internal/workers/credit/pull-credit-report/models.go
package pullcreditreport

type Input struct {
	ApplicationID string `json:"applicationId"`
	FirstName     string `json:"firstName"`
	LastName      string `json:"lastName"`
	SSN           string `json:"ssn"`
	DOB           string `json:"dob"`
}

type Output struct {
	FicoScore     int      `json:"ficoScore"`
	CreditFactors []string `json:"creditFactors"`
	Approved      bool     `json:"approved"`
	Provider      string   `json:"provider"`
	PulledAt      string   `json:"pulledAt"`
}
