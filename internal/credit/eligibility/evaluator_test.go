// internal/credit/eligibility/evaluator_test.go
package eligibility

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"lending-workers/internal/models"
)

var evalNow = time.Date(2026, 8, 28, 0, 0, 0, 0, time.UTC)

func eligibleRequest() *models.ApplicationRequest {
	return &models.ApplicationRequest{
		DOB:              "1990-06-15",
		AnnualIncome:     120000,
		EmploymentStatus: "employed",
	}
}

func TestEvaluate_Eligible(t *testing.T) {
	res := Evaluate(eligibleRequest(), 700, evalNow)
	assert.True(t, res.Eligible)
	assert.Empty(t, res.Reason)
}

func TestEvaluate_DeclineRules(t *testing.T) {
	tests := []struct {
		name       string
		mutate     func(*models.ApplicationRequest)
		score      int
		wantReason string
	}{
		{
			name:       "under age",
			mutate:     func(r *models.ApplicationRequest) { r.DOB = "2010-01-01" },
			score:      700,
			wantReason: "at least 18 years old",
		},
		{
			name:       "income below floor",
			mutate:     func(r *models.ApplicationRequest) { r.AnnualIncome = 49999 },
			score:      700,
			wantReason: "Annual income",
		},
		{
			name:       "score below floor",
			mutate:     func(r *models.ApplicationRequest) {},
			score:      500,
			wantReason: "Credit score",
		},
		{
			name:       "employment not accepted",
			mutate:     func(r *models.ApplicationRequest) { r.EmploymentStatus = "student" },
			score:      700,
			wantReason: "Employment status",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := eligibleRequest()
			tt.mutate(req)

			res := Evaluate(req, tt.score, evalNow)
			assert.False(t, res.Eligible)
			assert.Contains(t, res.Reason, tt.wantReason)
		})
	}
}

func TestEvaluate_RuleOrderDeterminesReason(t *testing.T) {
	// Multiple failing rules: the age rule fires first.
	req := eligibleRequest()
	req.DOB = "2015-01-01"
	req.AnnualIncome = 10000

	res := Evaluate(req, 400, evalNow)
	assert.False(t, res.Eligible)
	assert.Contains(t, res.Reason, "years old")
}

func TestEvaluate_AgeIsYearArithmetic(t *testing.T) {
	// Born late in the year: month and day are ignored, so a December
	// 2008 birth date counts as 18 throughout 2026.
	req := eligibleRequest()
	req.DOB = "2008-12-31"

	res := Evaluate(req, 700, evalNow)
	assert.True(t, res.Eligible)
}

func TestEvaluate_ScoreBoundaries(t *testing.T) {
	assert.True(t, Evaluate(eligibleRequest(), 550, evalNow).Eligible)
	assert.False(t, Evaluate(eligibleRequest(), 549, evalNow).Eligible)
}
