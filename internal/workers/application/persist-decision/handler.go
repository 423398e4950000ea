// internal/workers/application/persist-decision/handler.go
package persistdecision

import (
	"context"
	"encoding/json"
	stderrors "errors"

	"lending-workers/internal/common/errors"
	"lending-workers/internal/common/logger"
	"lending-workers/internal/credit/lifecycle"
	"lending-workers/internal/models"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

const (
	TaskType = "persist-decision"
)

// Store is the slice of the lifecycle store this worker needs.
type Store interface {
	CommitDecision(ctx context.Context, appID string, status models.ApplicationStatus, assessment *models.CreditAssessment, offers []models.Offer) error
}

// Auditor records the transition fire-and-forget.
type Auditor interface {
	Emit(event models.AuditEvent)
}

type Handler struct {
	config       *Config
	store        Store
	auditor      Auditor
	errorHandler *errors.ErrorHandler
	logger       logger.Logger
}

func NewHandler(config *Config, store Store, auditor Auditor, log logger.Logger) *Handler {
	scoped := log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:       config,
		store:        store,
		auditor:      auditor,
		errorHandler: errors.NewErrorHandler(scoped),
		logger:       scoped,
	}
}

func (h *Handler) Handle(client worker.JobClient, job entities.Job) {
	h.logger.Info("processing job", map[string]interface{}{
		"jobKey":      job.Key,
		"workflowKey": job.ProcessInstanceKey,
	})

	var input Input
	if err := json.Unmarshal([]byte(job.Variables), &input); err != nil {
		h.errorHandler.HandleJobError(context.Background(), client, job, errors.NewValidationFailedError(err.Error()))
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), h.config.Timeout)
	defer cancel()

	output, err := h.execute(ctx, &input)
	if err != nil {
		h.errorHandler.HandleJobError(context.Background(), client, job, h.classify(&input, err))
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

// execute commits the terminal transition and audits it. The store's
// compare-and-set means a racing duplicate loses cleanly here.
func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	if input.ApplicationID == "" {
		return nil, errors.NewValidationFailedError("applicationId is required")
	}

	status := models.StatusDeclined
	offers := []models.Offer(nil)
	if input.Eligible {
		status = models.StatusApproved
		offers = input.Offers
	}

	assessment := &models.CreditAssessment{
		FicoScore: input.FicoScore,
		Factors:   input.CreditFactors,
		Approved:  input.FicoScore >= models.ApprovedHintFloor,
	}
	if err := h.store.CommitDecision(ctx, input.ApplicationID, status, assessment, offers); err != nil {
		return nil, err
	}

	h.audit(input, status, len(offers))

	return &Output{
		ApplicationID: input.ApplicationID,
		Status:        string(status),
		OfferCount:    len(offers),
	}, nil
}

func (h *Handler) audit(input *Input, status models.ApplicationStatus, offerCount int) {
	action := models.AuditApplicationSubmitted
	details := map[string]interface{}{
		"status":     string(status),
		"ficoScore":  input.FicoScore,
		"offerCount": offerCount,
	}
	if status == models.StatusDeclined {
		action = models.AuditApplicationDeclined
		details["reason"] = input.Reason
	}
	h.auditor.Emit(models.AuditEvent{
		UserID:        input.UserID,
		ApplicationID: input.ApplicationID,
		Action:        action,
		Details:       details,
	})
}

func (h *Handler) classify(input *Input, err error) error {
	var stdErr *errors.StandardError
	if stderrors.As(err, &stdErr) {
		return stdErr
	}
	if stderrors.Is(err, lifecycle.ErrAlreadyDecided) {
		return errors.NewApplicationAlreadyDecidedError(input.ApplicationID)
	}
	if stderrors.Is(err, lifecycle.ErrNotFound) {
		return errors.NewApplicationNotFoundError(input.ApplicationID)
	}
	return errors.NewPersistenceFailedError(err)
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}
