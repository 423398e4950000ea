// internal/credit/bureau/compose.go
package bureau

import (
	"context"
	"errors"
	"time"

	"lending-workers/internal/common/config"
	"lending-workers/internal/common/logger"
	"lending-workers/internal/common/metrics"
	"lending-workers/internal/models"
)

// Fallback answers transient primary failures with a secondary inquirer.
// Rejections propagate: a bureau that answered "no" is not a bureau that
// was unreachable. The fallback decision lives here so the pipeline
// never branches on environment flags.
type Fallback struct {
	primary   Inquirer
	secondary Inquirer
	logger    logger.Logger
}

func NewFallback(primary, secondary Inquirer, log logger.Logger) *Fallback {
	return &Fallback{primary: primary, secondary: secondary, logger: log}
}

func (f *Fallback) Inquire(ctx context.Context, inq Inquiry) (*models.CreditAssessment, error) {
	assessment, err := f.primary.Inquire(ctx, inq)
	if err == nil {
		return assessment, nil
	}

	var bureauErr *Error
	if !errors.As(err, &bureauErr) || !bureauErr.Transient() {
		return nil, err
	}

	f.logger.Warn("primary credit bureau unavailable, using fallback provider", map[string]interface{}{
		"applicationId": inq.ApplicationID,
		"error":         err,
	})

	return f.secondary.Inquire(ctx, inq)
}

// New builds the process-wide inquirer from configuration. The synthetic
// generator stands in entirely when no provider is configured, and backs
// a real provider only when synthetic_fallback is set. Config validation
// rejects both situations in production.
func New(cfg config.BureauConfig, log logger.Logger) Inquirer {
	if cfg.Endpoint == "" || cfg.Provider == "" || cfg.Provider == "synthetic" {
		log.Info("credit bureau provider not configured, using synthetic generator", nil)
		return instrument(NewSynthetic(cfg.SyntheticSeed))
	}

	timeout := time.Duration(cfg.TimeoutMS) * time.Millisecond
	client := NewHTTPClient(cfg.Provider, cfg.Endpoint, cfg.APIKey, cfg.APISecret, timeout, log)

	if cfg.SyntheticFallback {
		return instrument(NewFallback(client, NewSynthetic(cfg.SyntheticSeed), log))
	}
	return instrument(client)
}

// instrumented counts inquiries per provider and outcome.
type instrumented struct {
	next Inquirer
}

func instrument(next Inquirer) Inquirer { return &instrumented{next: next} }

func (i *instrumented) Inquire(ctx context.Context, inq Inquiry) (*models.CreditAssessment, error) {
	assessment, err := i.next.Inquire(ctx, inq)
	if err != nil {
		provider := "unknown"
		var bureauErr *Error
		if errors.As(err, &bureauErr) {
			provider = bureauErr.Provider
		}
		metrics.BureauInquiries.WithLabelValues(provider, "error").Inc()
		return nil, err
	}
	metrics.BureauInquiries.WithLabelValues(assessment.Provider, "success").Inc()
	return assessment, nil
}
