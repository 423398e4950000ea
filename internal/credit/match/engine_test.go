// internal/credit/match/engine_test.go
package match

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lending-workers/internal/credit/finance"
	"lending-workers/internal/models"
)

func caLender() models.LenderProfile {
	return models.LenderProfile{
		ID:              "lender-1",
		Name:            "Prestige Financial Group",
		MinLoan:         80000,
		MaxLoan:         500000,
		MinAPR:          3.99,
		MaxAPR:          8.99,
		SupportedStates: []string{"CA", "NY"},
	}
}

func TestMatch_SingleLenderNoAdjustment(t *testing.T) {
	// Score 700 sits above the 680 reference: APR stays at the lender floor.
	req := Request{ApplicationID: "app-1", State: "CA", LoanAmount: 150000, CreditScore: 700}

	offers := Match(req, []models.LenderProfile{caLender()})
	require.Len(t, offers, 1)

	offer := offers[0]
	assert.Equal(t, "lender-1", offer.LenderID)
	assert.Equal(t, "Prestige Financial Group", offer.LenderName)
	assert.Equal(t, 3.99, offer.InterestRate)
	assert.Equal(t, float64(150000), offer.MaxLoanAmount)
	assert.Equal(t, finance.DefaultTermMonths, offer.TermMonths)
	assert.True(t, offer.Approved)
	assert.NotEmpty(t, offer.ID)

	wantPayment := finance.RoundPayment(finance.MonthlyPayment(150000, 3.99, finance.DefaultTermMonths))
	assert.Equal(t, wantPayment, offer.MonthlyPayment)
}

func TestMatch_APRAdjustmentBelowReference(t *testing.T) {
	// Score 650: adjustment = (680-650)*0.001 = 0.03 on top of the floor.
	lender := caLender()
	lender.MinAPR = 4.49
	lender.MaxAPR = 9.49

	offers := Match(Request{State: "CA", LoanAmount: 150000, CreditScore: 650}, []models.LenderProfile{lender})
	require.Len(t, offers, 1)
	assert.Equal(t, 4.52, offers[0].InterestRate)
}

func TestMatch_APRCappedAtLenderMax(t *testing.T) {
	lender := caLender()
	lender.MinAPR = 8.9
	lender.MaxAPR = 8.99

	// Score 580: adjustment = 0.1, which would overshoot the max.
	offers := Match(Request{State: "CA", LoanAmount: 150000, CreditScore: 580}, []models.LenderProfile{lender})
	require.Len(t, offers, 1)
	assert.Equal(t, 8.99, offers[0].InterestRate)
}

func TestMatch_FilterRules(t *testing.T) {
	tests := []struct {
		name string
		req  Request
	}{
		{"unsupported state", Request{State: "WA", LoanAmount: 150000, CreditScore: 700}},
		{"amount below lender minimum", Request{State: "CA", LoanAmount: 79999, CreditScore: 700}},
		{"amount above lender maximum", Request{State: "CA", LoanAmount: 500001, CreditScore: 700}},
		{"score below panel floor", Request{State: "CA", LoanAmount: 150000, CreditScore: 579}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			offers := Match(tt.req, []models.LenderProfile{caLender()})
			assert.Empty(t, offers, "a filtered lender is skipped, not an error")
			assert.NotNil(t, offers, "empty match is a successful result")
		})
	}
}

func TestMatch_BoundariesInclusive(t *testing.T) {
	lender := caLender()

	offers := Match(Request{State: "CA", LoanAmount: 80000, CreditScore: 580}, []models.LenderProfile{lender})
	assert.Len(t, offers, 1, "min loan and panel score floor are inclusive")

	offers = Match(Request{State: "CA", LoanAmount: 500000, CreditScore: 580}, []models.LenderProfile{lender})
	assert.Len(t, offers, 1, "max loan is inclusive")
}

func TestMatch_PreservesDirectoryOrder(t *testing.T) {
	first := caLender()
	second := caLender()
	second.ID = "lender-2"
	second.Name = "Luxury Auto Capital"
	third := caLender()
	third.ID = "lender-3"
	third.SupportedStates = []string{"TX"}

	offers := Match(Request{State: "CA", LoanAmount: 150000, CreditScore: 700},
		[]models.LenderProfile{first, second, third})

	require.Len(t, offers, 2)
	assert.Equal(t, "lender-1", offers[0].LenderID)
	assert.Equal(t, "lender-2", offers[1].LenderID)
}

func TestMatch_OfferAPRWithinLenderRange(t *testing.T) {
	// Property: every produced offer's APR stays inside [minAPR, maxAPR].
	lender := caLender()
	for score := 580; score <= 850; score += 10 {
		offers := Match(Request{State: "CA", LoanAmount: 200000, CreditScore: score}, []models.LenderProfile{lender})
		require.Len(t, offers, 1, "score %d", score)
		apr := offers[0].InterestRate
		assert.GreaterOrEqual(t, apr, lender.MinAPR, "score %d", score)
		assert.LessOrEqual(t, apr, lender.MaxAPR, "score %d", score)
	}
}

func TestMatch_PaymentPricedFromExactAPR(t *testing.T) {
	// Scores in (580, 680) produce a three-decimal APR. The quoted rate
	// is rounded to 2dp but the installment must come from the exact
	// rate; pricing off the rounded rate shifts the payment by a dollar
	// on many (score, amount) pairs.
	offers := Match(Request{State: "CA", LoanAmount: 93000, CreditScore: 581}, []models.LenderProfile{caLender()})
	require.Len(t, offers, 1)
	assert.Equal(t, 4.09, offers[0].InterestRate, "quoted rate is rounded")
	assert.Equal(t, float64(1716), offers[0].MonthlyPayment, "installment uses the exact 4.089 rate")

	for score := 580; score < 680; score += 7 {
		offers := Match(Request{State: "CA", LoanAmount: 93000, CreditScore: score}, []models.LenderProfile{caLender()})
		require.Len(t, offers, 1, "score %d", score)
		exactAPR := 3.99 + float64(680-score)*0.001
		want := finance.RoundPayment(finance.MonthlyPayment(93000, exactAPR, finance.DefaultTermMonths))
		assert.Equal(t, want, offers[0].MonthlyPayment, "score %d", score)
	}
}

func TestMatch_EmptyDirectory(t *testing.T) {
	offers := Match(Request{State: "CA", LoanAmount: 150000, CreditScore: 700}, nil)
	assert.NotNil(t, offers)
	assert.Empty(t, offers)
}
