// internal/workers/application/update-application/handler.go
package updateapplication

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"

	"lending-workers/internal/common/logger"
	"lending-workers/internal/credit/intake"
	"lending-workers/internal/credit/lifecycle"
	"lending-workers/internal/models"
)

const (
	TaskType = "update-application"
)

var (
	ErrUpdateFailed = stderrors.New("UPDATE_FAILED")
)

// Store is the slice of the lifecycle store the updater needs.
type Store interface {
	GetApplication(ctx context.Context, appID string) (*models.Application, error)
	UpdateApplicant(ctx context.Context, appID string, req *models.ApplicationRequest) error
}

type Auditor interface {
	Emit(event models.AuditEvent)
}

type Handler struct {
	config  *Config
	store   Store
	auditor Auditor
	logger  logger.Logger
}

func NewHandler(config *Config, store Store, auditor Auditor, log logger.Logger) *Handler {
	return &Handler{
		config:  config,
		store:   store,
		auditor: auditor,
		logger:  log.WithFields(map[string]interface{}{"taskType": TaskType}),
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
		errorCode := "UPDATE_FAILED"
		var verr *intake.ValidationError
		switch {
		case stderrors.As(err, &verr):
			errorCode = "VALIDATION_FAILED"
		case stderrors.Is(err, lifecycle.ErrAlreadyDecided):
			errorCode = "APPLICATION_ALREADY_DECIDED"
		case stderrors.Is(err, lifecycle.ErrNotFound):
			errorCode = "APPLICATION_NOT_FOUND"
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

// execute overlays the diff onto the stored request, revalidates the
// whole payload, persists it, and audits the caller-supplied diff
// verbatim. Decided applications reject the write at the store.
func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	if input.ApplicationID == "" {
		return nil, fmt.Errorf("%w: applicationId is required", ErrUpdateFailed)
	}
	if len(input.Updates) == 0 {
		return nil, fmt.Errorf("%w: updates payload is empty", ErrUpdateFailed)
	}

	app, err := h.store.GetApplication(ctx, input.ApplicationID)
	if err != nil {
		return nil, err
	}

	merged := intake.MergeRequest(app.Request, input.Updates)
	req, verr := intake.Validate(merged)
	if verr != nil {
		return nil, verr
	}

	if err := h.store.UpdateApplicant(ctx, input.ApplicationID, req); err != nil {
		return nil, err
	}

	h.auditor.Emit(models.AuditEvent{
		UserID:        input.UserID,
		ApplicationID: input.ApplicationID,
		Action:        models.AuditApplicationUpdated,
		Details:       input.Updates,
	})

	h.logger.Info("application updated", map[string]interface{}{
		"applicationId": input.ApplicationID,
		"fieldCount":    len(input.Updates),
	})
	return &Output{
		Updated:       true,
		ApplicationID: input.ApplicationID,
		UpdatedAt:     time.Now().UTC().Format(time.RFC3339),
	}, nil
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
