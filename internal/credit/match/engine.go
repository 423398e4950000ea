// internal/credit/match/engine.go

// Package match implements the lender-side decision gate: it walks a
// lender directory and produces one pre-approval Offer per lender whose
// criteria the application satisfies.
package match

import (
	"github.com/google/uuid"

	"lending-workers/internal/credit/finance"
	"lending-workers/internal/models"
)

// MinLenderScore is the panel-wide credit score cutoff. It is stricter
// than the eligibility evaluator's floor: an applicant can be eligible
// yet match zero lenders.
const MinLenderScore = 580

// Request is the slice of application data the matcher consumes.
type Request struct {
	ApplicationID string
	State         string
	LoanAmount    float64
	CreditScore   int
}

// Match filters the directory and prices an Offer per surviving lender.
// Filters apply in order: state, amount range, score floor. A failing
// lender is skipped, never an error; an empty result is a successful
// match against zero lenders. Offers preserve directory order.
func Match(req Request, directory []models.LenderProfile) []models.Offer {
	offers := make([]models.Offer, 0, len(directory))

	for _, lender := range directory {
		if !lender.SupportsState(req.State) {
			continue
		}
		if req.LoanAmount < lender.MinLoan || req.LoanAmount > lender.MaxLoan {
			continue
		}
		if req.CreditScore < MinLenderScore {
			continue
		}
		offers = append(offers, buildOffer(req, lender))
	}

	return offers
}

// buildOffer prices a single pre-approval. APR rises linearly below a
// 680 reference score at 0.1 bps per point, floored at the lender's
// minimum by construction and capped at its maximum.
func buildOffer(req Request, lender models.LenderProfile) models.Offer {
	adjustment := float64(680-req.CreditScore) * 0.001
	if adjustment < 0 {
		adjustment = 0
	}
	apr := lender.MinAPR + adjustment
	if apr > lender.MaxAPR {
		apr = lender.MaxAPR
	}

	// The payment is priced off the exact APR; each output is rounded
	// independently so the rounding never compounds.
	payment := finance.RoundPayment(finance.MonthlyPayment(req.LoanAmount, apr, finance.DefaultTermMonths))

	return models.Offer{
		ID:             uuid.New().String(),
		ApplicationID:  req.ApplicationID,
		LenderID:       lender.ID,
		LenderName:     lender.Name,
		MaxLoanAmount:  req.LoanAmount,
		InterestRate:   finance.RoundAPR(apr),
		MonthlyPayment: payment,
		TermMonths:     finance.DefaultTermMonths,
		Approved:       true,
	}
}
