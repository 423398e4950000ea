// internal/workers/credit/match-lenders/handler.go
package matchlenders

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"lending-workers/internal/common/logger"
	"lending-workers/internal/credit/match"
	"lending-workers/internal/lenders"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

const (
	TaskType = "match-lenders"
)

var (
	ErrLenderMatchFailed = errors.New("LENDER_MATCH_FAILED")
)

type Handler struct {
	directory lenders.Source
	logger    logger.Logger
}

func NewHandler(config *Config, directory lenders.Source, log logger.Logger) *Handler {
	return &Handler{
		directory: directory,
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

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	output, err := h.execute(ctx, &input)
	if err != nil {
		h.failJob(client, job, "LENDER_MATCH_FAILED", err.Error())
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

// execute snapshots the directory and runs the pure matcher against it.
// Zero offers completes normally.
func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	if input.ValidatedRequest == nil {
		return nil, fmt.Errorf("%w: validatedRequest is required", ErrLenderMatchFailed)
	}

	dir, err := h.directory.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLenderMatchFailed, err)
	}

	offers := match.Match(match.Request{
		ApplicationID: input.ApplicationID,
		State:         input.ValidatedRequest.State,
		LoanAmount:    input.ValidatedRequest.DesiredLoanAmount,
		CreditScore:   input.FicoScore,
	}, dir.Lenders())

	h.logger.Info("lender matching completed", map[string]interface{}{
		"applicationId": input.ApplicationID,
		"panelSize":     dir.Len(),
		"offerCount":    len(offers),
	})
	return &Output{
		Offers:     offers,
		OfferCount: len(offers),
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
