// internal/workers/application/validate-application/handler.go
package validateapplication

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"lending-workers/internal/common/logger"
	"lending-workers/internal/credit/intake"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

const (
	TaskType = "validate-loan-application"
)

var (
	ErrValidationFailed = errors.New("VALIDATION_FAILED")
)

type Handler struct {
	logger logger.Logger
}

func NewHandler(config *Config, log logger.Logger) *Handler {
	return &Handler{
		logger: log.WithFields(map[string]interface{}{"taskType": TaskType}),
	}
}

func (h *Handler) Handle(client worker.JobClient, job entities.Job) {
	h.logger.Info("processing job", map[string]interface{}{
		"jobKey":      job.Key,
		"workflowKey": job.ProcessInstanceKey,
	})

	var input Input
	if err := json.Unmarshal([]byte(job.Variables), &input); err != nil {
		h.failJob(client, job, "PARSE_ERROR", err.Error(), nil)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	output, err := h.execute(ctx, &input)
	if err != nil {
		var verr *intake.ValidationError
		if errors.As(err, &verr) {
			// Field detail rides along so the process can surface it to
			// the caller; a validation failure is never retried.
			h.failJob(client, job, "VALIDATION_FAILED", verr.Error(), map[string]interface{}{
				"validationErrors": verr.Fields,
			})
			return
		}
		h.failJob(client, job, "VALIDATION_FAILED", err.Error(), nil)
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

func (h *Handler) execute(_ context.Context, input *Input) (*Output, error) {
	if input.ApplicationData == nil {
		return nil, fmt.Errorf("%w: applicationData is required", ErrValidationFailed)
	}

	req, verr := intake.Validate(input.ApplicationData)
	if verr != nil {
		h.logger.Info("validation completed", map[string]interface{}{
			"isValid":    false,
			"errorCount": len(verr.Fields),
		})
		return nil, verr
	}

	h.logger.Info("validation completed", map[string]interface{}{
		"isValid": true,
	})
	return &Output{
		IsValid:          true,
		ValidatedRequest: req,
		ValidationErrors: []intake.FieldError{},
	}, nil
}

func (h *Handler) failJob(client worker.JobClient, job entities.Job, errorCode, errorMessage string, vars map[string]interface{}) {
	h.logger.Error("job failed", map[string]interface{}{
		"jobKey":       job.Key,
		"errorCode":    errorCode,
		"errorMessage": errorMessage,
	})

	cmd := client.NewThrowErrorCommand().
		JobKey(job.Key).
		ErrorCode(errorCode).
		ErrorMessage(errorMessage)
	if len(vars) > 0 {
		if varsJSON, err := json.Marshal(vars); err == nil {
			if cmdWithVars, err := cmd.VariablesFromString(string(varsJSON)); err == nil {
				_, _ = cmdWithVars.Send(context.Background())
				return
			}
		}
	}
	_, _ = cmd.Send(context.Background())
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}
