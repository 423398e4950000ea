// internal/workers/application/export-to-lender/handler.go
package exporttolender

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"

	commonaws "lending-workers/internal/common/aws"
	"lending-workers/internal/common/logger"
	"lending-workers/internal/lenders"
	"lending-workers/internal/models"
)

const (
	TaskType = "export-to-lender"
)

var (
	ErrLenderNotFound = errors.New("LENDER_NOT_FOUND")
	ErrExportFailed   = errors.New("EXPORT_FAILED")
)

// SESService is the email surface, mockable in tests.
type SESService interface {
	SendEmail(ctx context.Context, input *ses.SendEmailInput) (*ses.SendEmailOutput, error)
}

// Store is the read surface the exporter needs.
type Store interface {
	GetApplication(ctx context.Context, appID string) (*models.Application, error)
}

type Auditor interface {
	Emit(event models.AuditEvent)
}

type Handler struct {
	config    *Config
	directory lenders.Source
	store     Store
	auditor   Auditor
	sesClient SESService
	logger    logger.Logger
}

func NewHandler(config *Config, directory lenders.Source, store Store, auditor Auditor, sesClient SESService, log logger.Logger) *Handler {
	return &Handler{
		config:    config,
		directory: directory,
		store:     store,
		auditor:   auditor,
		sesClient: sesClient,
		logger:    log.WithFields(map[string]interface{}{"taskType": TaskType}),
	}
}

func (h *Handler) Handle(client worker.JobClient, job entities.Job) {
	h.logger.Info("processing job", map[string]interface{}{
		"jobKey":      job.Key,
		"workflowKey": job.ProcessInstanceKey,
	})

	var input Input
	if err := json.Unmarshal([]byte(job.Variables), &input); err != nil {
		h.failJob(client, job, "PARSE_ERROR", err.Error())
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), h.config.Timeout)
	defer cancel()

	output, err := h.execute(ctx, &input)
	if err != nil {
		errorCode := "EXPORT_FAILED"
		if errors.Is(err, ErrLenderNotFound) {
			errorCode = "LENDER_NOT_FOUND"
		}
		h.failJob(client, job, errorCode, err.Error())
		return
	}

	cmd, err := client.NewCompleteJobCommand().
		JobKey(job.Key).
		VariablesFromObject(output)
	if err != nil {
		h.logger.Error("failed to create complete job command", map[string]interface{}{
			"error": err,
		})
		return
	}
	_, err = cmd.Send(context.Background())
	if err != nil {
		h.logger.Error("failed to complete job", map[string]interface{}{
			"error": err,
		})
	}
}

// execute records the applicant's lender selection. The audit event is
// the export of record; the email to the lender is best-effort on top.
func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	if input.ApplicationID == "" || input.LenderID == "" {
		return nil, fmt.Errorf("%w: applicationId and lenderId are required", ErrExportFailed)
	}

	dir, err := h.directory.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrExportFailed, err)
	}
	lender, ok := dir.Get(input.LenderID)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrLenderNotFound, input.LenderID)
	}

	app, err := h.store.GetApplication(ctx, input.ApplicationID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrExportFailed, err)
	}

	h.auditor.Emit(models.AuditEvent{
		UserID:        input.UserID,
		ApplicationID: app.ID,
		Action:        models.AuditApplicationExported,
		Details: map[string]interface{}{
			"lenderId":   lender.ID,
			"lenderName": lender.Name,
		},
	})

	emailSent := false
	if h.config.EmailEnabled && lender.ContactEmail != "" {
		if err := h.sendLenderEmail(ctx, app, lender); err != nil {
			h.logger.Warn("failed to email lender, export still recorded", map[string]interface{}{
				"lenderId": lender.ID,
				"error":    err,
			})
		} else {
			emailSent = true
		}
	}

	h.logger.Info("application exported", map[string]interface{}{
		"applicationId": app.ID,
		"lenderId":      lender.ID,
		"emailSent":     emailSent,
	})
	return &Output{
		Exported:   true,
		LenderID:   lender.ID,
		LenderName: lender.Name,
		EmailSent:  emailSent,
		ExportedAt: time.Now().UTC().Format(time.RFC3339),
	}, nil
}

func (h *Handler) sendLenderEmail(ctx context.Context, app *models.Application, lender models.LenderProfile) error {
	subject := fmt.Sprintf("New pre-approved application %s", app.ID)
	body := fmt.Sprintf(
		"Applicant %s %s selected %s.\n\nRequested amount: $%.0f\nCredit score: %d\nState: %s\n",
		app.Request.FirstName, app.Request.LastName, lender.Name,
		app.Request.DesiredLoanAmount, app.FicoScore, app.Request.State,
	)

	_, err := h.sesClient.SendEmail(ctx, commonaws.TextEmailInput(h.config.FromEmail, []string{lender.ContactEmail}, subject, body))
	return err
}

func (h *Handler) failJob(client worker.JobClient, job entities.Job, errorCode, errorMessage string) {
	h.logger.Error("job failed", map[string]interface{}{
		"jobKey":       job.Key,
		"errorCode":    errorCode,
		"errorMessage": errorMessage,
	})

	_, _ = client.NewThrowErrorCommand().
		JobKey(job.Key).
		ErrorCode(errorCode).
		ErrorMessage(errorMessage).
		Send(context.Background())
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}
