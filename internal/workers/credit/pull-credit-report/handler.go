// internal/workers/credit/pull-credit-report/handler.go
package pullcreditreport

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"

	"lending-workers/internal/common/errors"
	"lending-workers/internal/common/logger"
	"lending-workers/internal/credit/bureau"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

const (
	TaskType = "pull-credit-report"
)

type Handler struct {
	config       *Config
	inquirer     bureau.Inquirer
	errorHandler *errors.ErrorHandler
	logger       logger.Logger
}

func NewHandler(config *Config, inquirer bureau.Inquirer, log logger.Logger) *Handler {
	scoped := log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:       config,
		inquirer:     inquirer,
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
		h.errorHandler.HandleJobError(context.Background(), client, job, h.classify(err))
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

func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	if input.ApplicationID == "" {
		return nil, errors.NewValidationFailedError("applicationId is required")
	}

	assessment, err := h.inquirer.Inquire(ctx, bureau.Inquiry{
		ApplicationID: input.ApplicationID,
		FirstName:     input.FirstName,
		LastName:      input.LastName,
		SSN:           input.SSN,
		DOB:           input.DOB,
	})
	if err != nil {
		return nil, fmt.Errorf("credit inquiry for application %s: %w", input.ApplicationID, err)
	}

	h.logger.Info("credit report pulled", map[string]interface{}{
		"applicationId": input.ApplicationID,
		"provider":      assessment.Provider,
		"approved":      assessment.Approved,
	})

	return &Output{
		FicoScore:     assessment.FicoScore,
		CreditFactors: assessment.Factors,
		Approved:      assessment.Approved,
		Provider:      assessment.Provider,
		PulledAt:      assessment.PulledAt,
	}, nil
}

// classify maps bureau failures onto the fleet error taxonomy so retry
// policy lands correctly: timeouts and auth failures retry, rejections
// throw straight to the process.
func (h *Handler) classify(err error) error {
	var stdErr *errors.StandardError
	if stderrors.As(err, &stdErr) {
		return stdErr
	}

	var bureauErr *bureau.Error
	if stderrors.As(err, &bureauErr) {
		switch bureauErr.Kind {
		case bureau.KindTimeout:
			return errors.NewCreditBureauTimeoutError(bureauErr.Provider)
		case bureau.KindAuthFailure:
			return errors.NewCreditBureauAuthFailedError(bureauErr.Provider, bureauErr.Err)
		default:
			return errors.NewCreditBureauRejectedError(bureauErr.Provider, bureauErr.Err.Error())
		}
	}
	return err
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}
