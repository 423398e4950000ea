// internal/workers/application/update-application/handler_test.go
package updateapplication

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lending-workers/internal/common/logger"
	"lending-workers/internal/credit/intake"
	"lending-workers/internal/credit/lifecycle"
	"lending-workers/internal/models"
)

type stubStore struct {
	app       *models.Application
	getErr    error
	updateErr error
	updated   *models.ApplicationRequest
}

func (s *stubStore) GetApplication(context.Context, string) (*models.Application, error) {
	return s.app, s.getErr
}

func (s *stubStore) UpdateApplicant(_ context.Context, _ string, req *models.ApplicationRequest) error {
	if s.updateErr != nil {
		return s.updateErr
	}
	s.updated = req
	return nil
}

type stubAuditor struct {
	events []models.AuditEvent
}

func (a *stubAuditor) Emit(event models.AuditEvent) {
	a.events = append(a.events, event)
}

func pendingApp() *models.Application {
	return &models.Application{
		ID:     "app-1",
		Status: models.StatusPending,
		Request: models.ApplicationRequest{
			FirstName:         "Ava",
			LastName:          "Sterling",
			Email:             "ava.sterling@example.com",
			Phone:             "4155550199",
			SSN:               "123456789",
			DOB:               "1990-06-15",
			Address:           "12 Harbor View Drive",
			City:              "San Francisco",
			State:             "CA",
			ZipCode:           "94105",
			AnnualIncome:      120000,
			EmploymentStatus:  "employed",
			DownPayment:       40000,
			DesiredLoanAmount: 150000,
			LoanTermMonths:    60,
		},
	}
}

func TestExecute_PartialUpdate(t *testing.T) {
	store := &stubStore{app: pendingApp()}
	auditor := &stubAuditor{}
	handler := NewHandler(LoadConfig(), store, auditor, logger.NewTestLogger(t))

	diff := map[string]interface{}{"email": "new.address@example.com", "phone": "4155550200"}
	output, err := handler.Execute(context.Background(), &Input{
		ApplicationID: "app-1",
		UserID:        "user-1",
		Updates:       diff,
	})

	require.NoError(t, err)
	assert.True(t, output.Updated)

	require.NotNil(t, store.updated)
	assert.Equal(t, "new.address@example.com", store.updated.Email)
	assert.Equal(t, "Ava", store.updated.FirstName, "untouched fields survive")

	require.Len(t, auditor.events, 1)
	assert.Equal(t, models.AuditApplicationUpdated, auditor.events[0].Action)
	assert.Equal(t, diff, auditor.events[0].Details)
}

func TestExecute_InvalidDiffRejected(t *testing.T) {
	store := &stubStore{app: pendingApp()}
	handler := NewHandler(LoadConfig(), store, &stubAuditor{}, logger.NewTestLogger(t))

	_, err := handler.Execute(context.Background(), &Input{
		ApplicationID: "app-1",
		Updates:       map[string]interface{}{"annualIncome": float64(100)},
	})

	var verr *intake.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Nil(t, store.updated, "a failing diff writes nothing")
}

func TestExecute_DecidedApplication(t *testing.T) {
	store := &stubStore{app: pendingApp(), updateErr: lifecycle.ErrAlreadyDecided}
	auditor := &stubAuditor{}
	handler := NewHandler(LoadConfig(), store, auditor, logger.NewTestLogger(t))

	_, err := handler.Execute(context.Background(), &Input{
		ApplicationID: "app-1",
		Updates:       map[string]interface{}{"email": "x@example.com"},
	})

	assert.ErrorIs(t, err, lifecycle.ErrAlreadyDecided)
	assert.Empty(t, auditor.events)
}

func TestExecute_EmptyUpdates(t *testing.T) {
	handler := NewHandler(LoadConfig(), &stubStore{app: pendingApp()}, &stubAuditor{}, logger.NewTestLogger(t))

	_, err := handler.Execute(context.Background(), &Input{ApplicationID: "app-1"})
	assert.ErrorIs(t, err, ErrUpdateFailed)
}
