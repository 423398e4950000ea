// internal/workers/application/export-to-lender/handler_test.go
package exporttolender

import (
	"context"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lending-workers/internal/common/logger"
	"lending-workers/internal/lenders"
	"lending-workers/internal/models"
)

type stubSES struct {
	inputs []*ses.SendEmailInput
	err    error
}

func (s *stubSES) SendEmail(_ context.Context, input *ses.SendEmailInput) (*ses.SendEmailOutput, error) {
	if s.err != nil {
		return nil, s.err
	}
	s.inputs = append(s.inputs, input)
	return &ses.SendEmailOutput{}, nil
}

type stubStore struct {
	app *models.Application
	err error
}

func (s *stubStore) GetApplication(context.Context, string) (*models.Application, error) {
	return s.app, s.err
}

type stubAuditor struct {
	events []models.AuditEvent
}

func (a *stubAuditor) Emit(event models.AuditEvent) {
	a.events = append(a.events, event)
}

type staticDirectory struct {
	profiles []models.LenderProfile
}

func (s *staticDirectory) Load(context.Context) (*lenders.Directory, error) {
	return lenders.NewDirectory(s.profiles), nil
}

func fixture(t *testing.T, sesClient SESService) (*Handler, *stubAuditor) {
	t.Helper()
	auditor := &stubAuditor{}
	directory := &staticDirectory{profiles: []models.LenderProfile{{
		ID:           "lender-1",
		Name:         "Prestige Financial Group",
		ContactEmail: "loans@prestigefinancial.example.com",
	}}}
	store := &stubStore{app: &models.Application{
		ID:        "app-1",
		FicoScore: 700,
		Request:   models.ApplicationRequest{FirstName: "Ava", LastName: "Sterling", State: "CA", DesiredLoanAmount: 150000},
	}}
	return NewHandler(LoadConfig(), directory, store, auditor, sesClient, logger.NewTestLogger(t)), auditor
}

func exportInput() *Input {
	return &Input{ApplicationID: "app-1", LenderID: "lender-1", UserID: "user-1"}
}

func TestExecute_ExportsAndEmails(t *testing.T) {
	sesClient := &stubSES{}
	handler, auditor := fixture(t, sesClient)

	output, err := handler.Execute(context.Background(), exportInput())

	require.NoError(t, err)
	assert.True(t, output.Exported)
	assert.True(t, output.EmailSent)
	assert.Equal(t, "Prestige Financial Group", output.LenderName)

	require.Len(t, auditor.events, 1)
	assert.Equal(t, models.AuditApplicationExported, auditor.events[0].Action)

	require.Len(t, sesClient.inputs, 1)
	assert.Equal(t, []string{"loans@prestigefinancial.example.com"}, sesClient.inputs[0].Destination.ToAddresses)
}

func TestExecute_UnknownLender(t *testing.T) {
	handler, auditor := fixture(t, &stubSES{})

	input := exportInput()
	input.LenderID = "lender-404"

	_, err := handler.Execute(context.Background(), input)

	assert.ErrorIs(t, err, ErrLenderNotFound)
	assert.Empty(t, auditor.events)
}

func TestExecute_EmailFailureStillExports(t *testing.T) {
	handler, auditor := fixture(t, &stubSES{err: errors.New("ses throttled")})

	output, err := handler.Execute(context.Background(), exportInput())

	require.NoError(t, err, "the audit event is the export of record")
	assert.True(t, output.Exported)
	assert.False(t, output.EmailSent)
	assert.Len(t, auditor.events, 1)
}

func TestExecute_MissingIdentifiers(t *testing.T) {
	handler, _ := fixture(t, &stubSES{})

	_, err := handler.Execute(context.Background(), &Input{ApplicationID: "app-1"})
	assert.ErrorIs(t, err, ErrExportFailed)
}
