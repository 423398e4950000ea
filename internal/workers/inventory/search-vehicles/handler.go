// internal/workers/inventory/search-vehicles/handler.go
package searchvehicles

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"

	"lending-workers/internal/common/logger"
	"lending-workers/internal/models"
)

const (
	TaskType = "search-vehicle-inventory"
)

var (
	ErrInventorySearchFailed  = errors.New("INVENTORY_SEARCH_FAILED")
	ErrInventorySearchTimeout = errors.New("INVENTORY_SEARCH_TIMEOUT")
	ErrInventoryIndexMissing  = errors.New("INVENTORY_INDEX_MISSING")
)

type Handler struct {
	config *Config
	client *elasticsearch.Client
	logger logger.Logger
}

func NewHandler(config *Config, client *elasticsearch.Client, log logger.Logger) *Handler {
	return &Handler{
		config: config,
		client: client,
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
		h.failJob(client, job, h.mapErrorToCode(err), err.Error(), h.getRetryCount(err))
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
		h.logger.Error("failed to send complete job command", map[string]interface{}{
			"error": err,
		})
	}
}

func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	if input == nil {
		return nil, errors.New("input cannot be nil")
	}

	page := clampPagination(input.Pagination)
	body, err := json.Marshal(buildSearchBody(input))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInventorySearchFailed, err)
	}

	req := esapi.SearchRequest{
		Index: []string{h.config.IndexName},
		Body:  bytes.NewReader(body),
		From:  &page.From,
		Size:  &page.Size,
	}

	start := time.Now()
	res, err := req.Do(ctx, h.client)
	if err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return nil, ErrInventorySearchTimeout
		}
		return nil, fmt.Errorf("%w: %v", ErrInventorySearchFailed, err)
	}
	defer res.Body.Close()

	if res.StatusCode == 404 {
		return nil, ErrInventoryIndexMissing
	}
	if res.IsError() {
		return nil, fmt.Errorf("%w: %s", ErrInventorySearchFailed, res.String())
	}

	var parsed struct {
		Hits struct {
			Total struct {
				Value int64 `json:"value"`
			} `json:"total"`
			Hits []struct {
				ID     string         `json:"_id"`
				Source models.Vehicle `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("%w: decode response: %v", ErrInventorySearchFailed, err)
	}

	vehicles := make([]models.Vehicle, 0, len(parsed.Hits.Hits))
	for _, hit := range parsed.Hits.Hits {
		v := hit.Source
		if v.ID == "" {
			v.ID = hit.ID
		}
		vehicles = append(vehicles, v)
	}

	h.logger.Info("inventory search complete", map[string]interface{}{
		"totalHits": parsed.Hits.Total.Value,
		"returned":  len(vehicles),
	})
	return &Output{
		Vehicles:  vehicles,
		TotalHits: parsed.Hits.Total.Value,
		Took:      time.Since(start).Milliseconds(),
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
		_, err := client.NewFailJobCommand().
			JobKey(job.Key).
			Retries(retriesToUse).
			ErrorMessage(errorMessage).
			Send(context.Background())
		if err != nil {
			h.logger.Error("failed to fail job", map[string]interface{}{"error": err})
		}
		return
	}

	_, err := client.NewThrowErrorCommand().
		JobKey(job.Key).
		ErrorCode(errorCode).
		ErrorMessage(errorMessage).
		Send(context.Background())
	if err != nil {
		h.logger.Error("failed to throw error", map[string]interface{}{"error": err})
	}
}

func (h *Handler) mapErrorToCode(err error) string {
	switch {
	case errors.Is(err, ErrInventoryIndexMissing):
		return "INVENTORY_INDEX_MISSING"
	case errors.Is(err, ErrInventorySearchTimeout):
		return "INVENTORY_SEARCH_TIMEOUT"
	case errors.Is(err, ErrInventorySearchFailed):
		return "INVENTORY_SEARCH_FAILED"
	}
	return "UNKNOWN_ERROR"
}

func (h *Handler) getRetryCount(err error) int32 {
	if errors.Is(err, ErrInventorySearchFailed) {
		return 3
	}
	if errors.Is(err, ErrInventorySearchTimeout) {
		return 2
	}
	return 0
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}
