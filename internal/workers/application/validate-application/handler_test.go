// internal/workers/application/validate-application/handler_test.go
package validateapplication

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lending-workers/internal/common/logger"
	"lending-workers/internal/credit/intake"
)

func validApplicationData() map[string]interface{} {
	return map[string]interface{}{
		"firstName":         "Ava",
		"lastName":          "Sterling",
		"email":             "ava.sterling@example.com",
		"phone":             "4155550199",
		"ssn":               "123456789",
		"dob":               "1990-06-15",
		"address":           "12 Harbor View Drive",
		"city":              "San Francisco",
		"state":             "CA",
		"zipCode":           "94105",
		"annualIncome":      float64(120000),
		"employmentStatus":  "employed",
		"downPayment":       float64(40000),
		"desiredLoanAmount": float64(150000),
		"loanTerm":          float64(60),
	}
}

func TestExecute_ValidApplication(t *testing.T) {
	handler := NewHandler(LoadConfig(), logger.NewTestLogger(t))

	output, err := handler.Execute(context.Background(), &Input{
		ApplicationData: validApplicationData(),
		UserID:          "user-1",
	})

	require.NoError(t, err)
	assert.True(t, output.IsValid)
	require.NotNil(t, output.ValidatedRequest)
	assert.Equal(t, "Ava", output.ValidatedRequest.FirstName)
	assert.Empty(t, output.ValidationErrors)
}

func TestExecute_FieldFailuresSurfaceAsValidationError(t *testing.T) {
	handler := NewHandler(LoadConfig(), logger.NewTestLogger(t))

	data := validApplicationData()
	data["email"] = "bad"
	data["annualIncome"] = float64(1000)

	_, err := handler.Execute(context.Background(), &Input{ApplicationData: data})

	var verr *intake.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Len(t, verr.Fields, 2)
}

func TestExecute_MissingApplicationData(t *testing.T) {
	handler := NewHandler(LoadConfig(), logger.NewTestLogger(t))

	_, err := handler.Execute(context.Background(), &Input{UserID: "user-1"})
	assert.ErrorIs(t, err, ErrValidationFailed)
}
