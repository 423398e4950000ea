// internal/workers/application/persist-decision/handler_test.go
package persistdecision

import (
	"context"
	stderrors "errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lending-workers/internal/common/errors"
	"lending-workers/internal/common/logger"
	"lending-workers/internal/credit/lifecycle"
	"lending-workers/internal/models"
)

type stubStore struct {
	err        error
	appID      string
	status     models.ApplicationStatus
	assessment *models.CreditAssessment
	offers     []models.Offer
}

func (s *stubStore) CommitDecision(_ context.Context, appID string, status models.ApplicationStatus, assessment *models.CreditAssessment, offers []models.Offer) error {
	if s.err != nil {
		return s.err
	}
	s.appID = appID
	s.status = status
	s.assessment = assessment
	s.offers = offers
	return nil
}

type stubAuditor struct {
	events []models.AuditEvent
}

func (a *stubAuditor) Emit(event models.AuditEvent) {
	a.events = append(a.events, event)
}

func approvedInput() *Input {
	return &Input{
		ApplicationID: "app-1",
		UserID:        "user-1",
		Eligible:      true,
		FicoScore:     700,
		CreditFactors: []string{"Payment history (35%)"},
		Offers: []models.Offer{{
			ID:       "offer-1",
			LenderID: "lender-1",
		}},
	}
}

func TestExecute_ApprovedCommitAndAudit(t *testing.T) {
	store := &stubStore{}
	auditor := &stubAuditor{}
	handler := NewHandler(LoadConfig(), store, auditor, logger.NewTestLogger(t))

	output, err := handler.Execute(context.Background(), approvedInput())

	require.NoError(t, err)
	assert.Equal(t, "approved", output.Status)
	assert.Equal(t, 1, output.OfferCount)
	assert.Equal(t, models.StatusApproved, store.status)
	assert.Len(t, store.offers, 1)

	require.Len(t, auditor.events, 1)
	assert.Equal(t, models.AuditApplicationSubmitted, auditor.events[0].Action)
}

func TestExecute_DeclineDropsOffers(t *testing.T) {
	store := &stubStore{}
	auditor := &stubAuditor{}
	handler := NewHandler(LoadConfig(), store, auditor, logger.NewTestLogger(t))

	input := approvedInput()
	input.Eligible = false
	input.Reason = "Credit score must be at least 550"
	input.FicoScore = 500

	output, err := handler.Execute(context.Background(), input)

	require.NoError(t, err)
	assert.Equal(t, "declined", output.Status)
	assert.Equal(t, 0, output.OfferCount)
	assert.Empty(t, store.offers, "declined applications persist no offers even when supplied")
	assert.Equal(t, 500, store.assessment.FicoScore, "assessment persists on decline")

	require.Len(t, auditor.events, 1)
	assert.Equal(t, models.AuditApplicationDeclined, auditor.events[0].Action)
	assert.Equal(t, input.Reason, auditor.events[0].Details["reason"])
}

func TestClassify_LifecycleErrors(t *testing.T) {
	handler := NewHandler(LoadConfig(), &stubStore{}, &stubAuditor{}, logger.NewTestLogger(t))
	input := approvedInput()

	tests := []struct {
		name     string
		err      error
		wantCode errors.ErrorCode
	}{
		{"already decided does not retry", lifecycle.ErrAlreadyDecided, errors.ErrCodeApplicationAlreadyDecided},
		{"not found", lifecycle.ErrNotFound, errors.ErrCodeApplicationNotFound},
		{"infrastructure failure retries", stderrors.New("connection reset"), errors.ErrCodePersistenceFailed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			classified := handler.classify(input, tt.err)

			var stdErr *errors.StandardError
			require.ErrorAs(t, classified, &stdErr)
			assert.Equal(t, tt.wantCode, stdErr.Code)
		})
	}
}

func TestExecute_CommitFailureSkipsAudit(t *testing.T) {
	auditor := &stubAuditor{}
	handler := NewHandler(LoadConfig(), &stubStore{err: lifecycle.ErrAlreadyDecided}, auditor, logger.NewTestLogger(t))

	_, err := handler.Execute(context.Background(), approvedInput())

	assert.ErrorIs(t, err, lifecycle.ErrAlreadyDecided)
	assert.Empty(t, auditor.events, "no audit event without a committed transition")
}
