// internal/credit/audit/emitter.go

// Package audit records decision-trail events. Emission is best-effort
// and never blocks or fails the decision pipeline: a full buffer or a
// failing sink drops the event and bumps a counter.
package audit

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"lending-workers/internal/common/logger"
	"lending-workers/internal/common/metrics"
	"lending-workers/internal/models"
)

// Sink stores one audit event.
type Sink interface {
	Record(ctx context.Context, event models.AuditEvent) error
}

// Emitter drains a bounded event channel into a Sink from a single
// background goroutine.
type Emitter struct {
	sink   Sink
	events chan models.AuditEvent
	logger logger.Logger

	wg       sync.WaitGroup
	shutdown chan struct{}
	once     sync.Once
}

// NewEmitter starts the drain goroutine. bufferSize bounds how many
// events may be in flight before Emit starts dropping.
func NewEmitter(sink Sink, bufferSize int, log logger.Logger) *Emitter {
	if bufferSize <= 0 {
		bufferSize = 256
	}
	e := &Emitter{
		sink:     sink,
		events:   make(chan models.AuditEvent, bufferSize),
		logger:   log,
		shutdown: make(chan struct{}),
	}
	e.wg.Add(1)
	go e.drain()
	return e
}

// Emit enqueues an event without blocking. Timestamp is stamped here so
// the trail reflects emission time, not sink write time.
func (e *Emitter) Emit(event models.AuditEvent) {
	if event.CreatedAt == "" {
		event.CreatedAt = time.Now().UTC().Format(time.RFC3339)
	}

	select {
	case e.events <- event:
	default:
		metrics.AuditEventsDropped.WithLabelValues(string(event.Action)).Inc()
		e.logger.Warn("audit buffer full, event dropped", map[string]interface{}{
			"action":        string(event.Action),
			"applicationId": event.ApplicationID,
		})
	}
}

// Close stops accepting events and flushes the buffer.
func (e *Emitter) Close() {
	e.once.Do(func() {
		close(e.shutdown)
		e.wg.Wait()
	})
}

func (e *Emitter) drain() {
	defer e.wg.Done()
	for {
		select {
		case event := <-e.events:
			e.record(event)
		case <-e.shutdown:
			for {
				select {
				case event := <-e.events:
					e.record(event)
				default:
					return
				}
			}
		}
	}
}

func (e *Emitter) record(event models.AuditEvent) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := e.sink.Record(ctx, event); err != nil {
		metrics.AuditEventsDropped.WithLabelValues(string(event.Action)).Inc()
		e.logger.Error("failed to record audit event", map[string]interface{}{
			"action":        string(event.Action),
			"applicationId": event.ApplicationID,
			"error":         err,
		})
		return
	}
	metrics.AuditEventsEmitted.WithLabelValues(string(event.Action)).Inc()
}

// PostgresSink appends events to the audit_log table.
type PostgresSink struct {
	db *sql.DB
}

func NewPostgresSink(db *sql.DB) *PostgresSink {
	return &PostgresSink{db: db}
}

func (s *PostgresSink) Record(ctx context.Context, event models.AuditEvent) error {
	details, err := json.Marshal(event.Details)
	if err != nil {
		return fmt.Errorf("failed to encode audit details: %w", err)
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO audit_log (user_id, application_id, action, details, ip_address, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		nullable(event.UserID), nullable(event.ApplicationID), event.Action, details, nullable(event.IPAddress), event.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert audit event: %w", err)
	}
	return nil
}

func nullable(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}
