// internal/credit/eligibility/evaluator.go

// Package eligibility implements the applicant-side decision gate. It is
// independent of any specific lender: failing here means no lender panel
// is ever consulted.
package eligibility

import (
	"fmt"
	"time"

	"lending-workers/internal/models"
)

const (
	MinAge         = 18
	MinIncome      = 50000
	MinCreditScore = 550
)

// Result is the evaluator's verdict. Reason is set only on decline and
// names the first rule that failed.
type Result struct {
	Eligible bool   `json:"eligible"`
	Reason   string `json:"reason,omitempty"`
}

// Evaluate applies the four applicant gates in order: age, income, credit
// score, employment status. The first failing rule supplies the decline
// reason. Deterministic and side-effect free.
func Evaluate(req *models.ApplicationRequest, creditScore int, now time.Time) Result {
	if age := ageAtYear(req.DOB, now); age < MinAge {
		return Result{Reason: fmt.Sprintf("Applicant must be at least %d years old", MinAge)}
	}
	if req.AnnualIncome < MinIncome {
		return Result{Reason: fmt.Sprintf("Annual income must be at least $%d", MinIncome)}
	}
	if creditScore < MinCreditScore {
		return Result{Reason: fmt.Sprintf("Credit score must be at least %d", MinCreditScore)}
	}
	if !models.ValidEmploymentStatus(req.EmploymentStatus) {
		return Result{Reason: "Employment status is not accepted"}
	}
	return Result{Eligible: true}
}

// ageAtYear is year arithmetic only: current year minus birth year, not
// adjusted for month or day. Applicants within a year of the cutoff get
// the benefit of the doubt.
func ageAtYear(dob string, now time.Time) int {
	birth, err := time.Parse("2006-01-02", dob)
	if err != nil {
		// Intake guarantees a parseable date; an unparseable one here
		// fails the age gate rather than panicking.
		return 0
	}
	return now.Year() - birth.Year()
}
