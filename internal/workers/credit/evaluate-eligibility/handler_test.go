// internal/workers/credit/evaluate-eligibility/handler_test.go
package evaluateeligibility

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lending-workers/internal/common/logger"
	"lending-workers/internal/models"
)

func eligibleRequest() *models.ApplicationRequest {
	return &models.ApplicationRequest{
		DOB:              "1990-06-15",
		AnnualIncome:     120000,
		EmploymentStatus: "employed",
	}
}

func TestExecute_Eligible(t *testing.T) {
	handler := NewHandler(LoadConfig(), logger.NewTestLogger(t))

	output, err := handler.Execute(context.Background(), &Input{
		ValidatedRequest: eligibleRequest(),
		FicoScore:        700,
	})

	require.NoError(t, err)
	assert.True(t, output.Eligible)
	assert.Empty(t, output.Reason)
}

func TestExecute_IneligibleIsNotAFailure(t *testing.T) {
	handler := NewHandler(LoadConfig(), logger.NewTestLogger(t))

	output, err := handler.Execute(context.Background(), &Input{
		ValidatedRequest: eligibleRequest(),
		FicoScore:        500,
	})

	require.NoError(t, err, "a decline completes the job normally")
	assert.False(t, output.Eligible)
	assert.Contains(t, output.Reason, "Credit score")
}

func TestExecute_MalformedInput(t *testing.T) {
	handler := NewHandler(LoadConfig(), logger.NewTestLogger(t))

	_, err := handler.Execute(context.Background(), &Input{FicoScore: 700})
	assert.ErrorIs(t, err, ErrEligibilityEvaluationFailed)

	_, err = handler.Execute(context.Background(), &Input{
		ValidatedRequest: eligibleRequest(),
		FicoScore:        0,
	})
	assert.ErrorIs(t, err, ErrEligibilityEvaluationFailed)
}
