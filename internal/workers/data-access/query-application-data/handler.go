// internal/workers/data-access/query-application-data/handler.go
package queryapplicationdata

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"lending-workers/internal/common/logger"
	"lending-workers/internal/credit/lifecycle"
	"lending-workers/internal/models"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

const (
	TaskType = "query-application-data"
)

var (
	ErrQueryExecutionFailed = errors.New("QUERY_EXECUTION_FAILED")
	ErrQueryTimeout         = errors.New("QUERY_TIMEOUT")
	ErrInvalidQueryType     = errors.New("INVALID_QUERY_TYPE")
	ErrApplicationNotFound  = errors.New("APPLICATION_NOT_FOUND")
)

// Store is the read surface this worker queries.
type Store interface {
	GetApplication(ctx context.Context, appID string) (*models.Application, error)
	ListOffers(ctx context.Context, appID string) ([]models.Offer, error)
}

type queryFunc func(ctx context.Context, store Store, appID string) (interface{}, int, error)

// registry maps query types to their executors. Unknown types fail fast
// with no database round trip.
var registry = map[QueryType]queryFunc{
	QueryTypeApplicationDetails: func(ctx context.Context, store Store, appID string) (interface{}, int, error) {
		app, err := store.GetApplication(ctx, appID)
		if err != nil {
			return nil, 0, err
		}
		return app, 1, nil
	},
	QueryTypeApplicationOffers: func(ctx context.Context, store Store, appID string) (interface{}, int, error) {
		offers, err := store.ListOffers(ctx, appID)
		if err != nil {
			return nil, 0, err
		}
		return offers, len(offers), nil
	},
	QueryTypeApplicationStatus: func(ctx context.Context, store Store, appID string) (interface{}, int, error) {
		app, err := store.GetApplication(ctx, appID)
		if err != nil {
			return nil, 0, err
		}
		return map[string]interface{}{
			"applicationId": app.ID,
			"status":        string(app.Status),
			"updatedAt":     app.UpdatedAt,
		}, 1, nil
	},
}

type Handler struct {
	config *Config
	store  Store
	logger logger.Logger
}

func NewHandler(config *Config, store Store, log logger.Logger) *Handler {
	return &Handler{
		config: config,
		store:  store,
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
		h.failJob(client, job, "PARSE_ERROR", fmt.Sprintf("parse input: %v", err), 0)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), h.config.Timeout)
	defer cancel()

	output, err := h.execute(ctx, &input)
	if err != nil {
		errorCode := "QUERY_EXECUTION_FAILED"
		retries := int32(3)
		switch {
		case errors.Is(err, ErrQueryTimeout):
			errorCode = "QUERY_TIMEOUT"
			retries = 2
		case errors.Is(err, ErrInvalidQueryType):
			errorCode = "INVALID_QUERY_TYPE"
			retries = 0
		case errors.Is(err, ErrApplicationNotFound):
			errorCode = "APPLICATION_NOT_FOUND"
			retries = 0
		}
		h.failJob(client, job, errorCode, err.Error(), retries)
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
		return nil, fmt.Errorf("%w: applicationId is required", ErrQueryExecutionFailed)
	}

	query, exists := registry[QueryType(input.QueryType)]
	if !exists {
		return nil, fmt.Errorf("%w: %s", ErrInvalidQueryType, input.QueryType)
	}

	start := time.Now()
	data, rowCount, err := query(ctx, h.store, input.ApplicationID)
	if err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return nil, ErrQueryTimeout
		}
		if errors.Is(err, lifecycle.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrApplicationNotFound, input.ApplicationID)
		}
		return nil, fmt.Errorf("%w: %v", ErrQueryExecutionFailed, err)
	}

	h.logger.Info("query executed", map[string]interface{}{
		"queryType": input.QueryType,
		"rowCount":  rowCount,
	})
	return &Output{
		Data:               data,
		RowCount:           rowCount,
		QueryExecutionTime: time.Since(start).Milliseconds(),
	}, nil
}

func (h *Handler) failJob(client worker.JobClient, job entities.Job, errorCode, errorMessage string, retries int32) {
	h.logger.Error("job failed", map[string]interface{}{
		"jobKey":       job.Key,
		"errorCode":    errorCode,
		"errorMessage": errorMessage,
		"retries":      retries,
	})

	if retries > 0 && job.Retries > 0 {
		retriesToUse := retries
		if job.Retries < retries {
			retriesToUse = job.Retries
		}
		_, _ = client.NewFailJobCommand().
			JobKey(job.Key).
			Retries(retriesToUse).
			ErrorMessage(errorMessage).
			Send(context.Background())
		return
	}

	_, _ = client.NewThrowErrorCommand().
		JobKey(job.Key).
		ErrorCode(errorCode).
		ErrorMessage(errorMessage).
		Send(context.Background())
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}
