// internal/workers/credit/evaluate-eligibility/handler.go
package evaluateeligibility

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"lending-workers/internal/common/logger"
	"lending-workers/internal/credit/eligibility"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

const (
	TaskType = "evaluate-eligibility"
)

var (
	ErrEligibilityEvaluationFailed = errors.New("ELIGIBILITY_EVALUATION_FAILED")
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
		h.failJob(client, job, "PARSE_ERROR", err.Error())
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	output, err := h.execute(ctx, &input)
	if err != nil {
		h.failJob(client, job, "ELIGIBILITY_EVALUATION_FAILED", err.Error())
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

// execute runs the pure evaluator. An ineligible applicant is a normal
// completion with eligible=false; only malformed input fails the job.
func (h *Handler) execute(_ context.Context, input *Input) (*Output, error) {
	if input.ValidatedRequest == nil {
		return nil, fmt.Errorf("%w: validatedRequest is required", ErrEligibilityEvaluationFailed)
	}
	if input.FicoScore < 300 || input.FicoScore > 850 {
		return nil, fmt.Errorf("%w: ficoScore %d outside valid range", ErrEligibilityEvaluationFailed, input.FicoScore)
	}

	verdict := eligibility.Evaluate(input.ValidatedRequest, input.FicoScore, time.Now())

	h.logger.Info("eligibility evaluated", map[string]interface{}{
		"eligible": verdict.Eligible,
		"reason":   verdict.Reason,
	})
	return &Output{
		Eligible: verdict.Eligible,
		Reason:   verdict.Reason,
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
