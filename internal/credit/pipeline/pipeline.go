// internal/credit/pipeline/pipeline.go

// Package pipeline composes the decision engine: validate, inquire,
// evaluate, match, commit, audit, in that order per submission. The
// workers are thin shells over this package; it owns no transport.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"lending-workers/internal/common/logger"
	"lending-workers/internal/credit/bureau"
	"lending-workers/internal/credit/eligibility"
	"lending-workers/internal/credit/intake"
	"lending-workers/internal/credit/lifecycle"
	"lending-workers/internal/credit/match"
	"lending-workers/internal/lenders"
	"lending-workers/internal/models"
)

// inquiryTimeout bounds the credit bureau call for one submission.
const inquiryTimeout = 10 * time.Second

// Store is the persistence surface the pipeline needs.
type Store interface {
	CreateApplication(ctx context.Context, app *models.Application) error
	CommitDecision(ctx context.Context, appID string, status models.ApplicationStatus, assessment *models.CreditAssessment, offers []models.Offer) error
	GetApplication(ctx context.Context, appID string) (*models.Application, error)
	ListOffers(ctx context.Context, appID string) ([]models.Offer, error)
	UpdateApplicant(ctx context.Context, appID string, req *models.ApplicationRequest) error
}

// Auditor is the fire-and-forget audit surface.
type Auditor interface {
	Emit(event models.AuditEvent)
}

// Engine runs the decision pipeline.
type Engine struct {
	inquirer  bureau.Inquirer
	directory lenders.Source
	store     Store
	auditor   Auditor
	logger    logger.Logger
	now       func() time.Time
}

func NewEngine(inquirer bureau.Inquirer, directory lenders.Source, store Store, auditor Auditor, log logger.Logger) *Engine {
	return &Engine{
		inquirer:  inquirer,
		directory: directory,
		store:     store,
		auditor:   auditor,
		logger:    log,
		now:       time.Now,
	}
}

// Result is the outcome of a successful submission. A decline is a
// success with a negative decision, never an error.
type Result struct {
	ApplicationID string   `json:"applicationId"`
	Status        string   `json:"status"`
	Reason        string   `json:"reason,omitempty"`
	FicoScore     int      `json:"ficoScore,omitempty"`
	CreditFactors []string `json:"creditFactors,omitempty"`
	OfferCount    int      `json:"offerCount"`
}

// Submit runs one full submission: validate, create, inquire, evaluate,
// match, commit, audit. A bureau failure leaves the application pending
// with no transition; the caller may resubmit cleanly.
func (e *Engine) Submit(ctx context.Context, userID string, payload map[string]interface{}) (*Result, error) {
	req, verr := intake.Validate(payload)
	if verr != nil {
		return nil, verr
	}

	app := &models.Application{
		ID:      uuid.New().String(),
		UserID:  userID,
		Request: *req,
	}
	if err := e.store.CreateApplication(ctx, app); err != nil {
		return nil, fmt.Errorf("failed to create application: %w", err)
	}

	return e.Decide(ctx, app)
}

// Decide runs the post-intake pipeline for an already-persisted pending
// application. Split out so the worker fleet can drive each phase from
// process variables while the synchronous path stays a single call.
func (e *Engine) Decide(ctx context.Context, app *models.Application) (*Result, error) {
	assessment, err := e.inquire(ctx, app)
	if err != nil {
		// No transition: the application stays pending.
		return nil, err
	}

	verdict := eligibility.Evaluate(&app.Request, assessment.FicoScore, e.now())
	if !verdict.Eligible {
		if err := e.commit(ctx, app, models.StatusDeclined, assessment, nil); err != nil {
			return nil, err
		}
		e.auditor.Emit(models.AuditEvent{
			UserID:        app.UserID,
			ApplicationID: app.ID,
			Action:        models.AuditApplicationDeclined,
			Details: map[string]interface{}{
				"reason":    verdict.Reason,
				"ficoScore": assessment.FicoScore,
			},
		})
		return &Result{
			ApplicationID: app.ID,
			Status:        string(models.StatusDeclined),
			Reason:        verdict.Reason,
			FicoScore:     assessment.FicoScore,
			CreditFactors: assessment.Factors,
		}, nil
	}

	dir, err := e.directory.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load lender directory: %w", err)
	}
	offers := match.Match(match.Request{
		ApplicationID: app.ID,
		State:         app.Request.State,
		LoanAmount:    app.Request.DesiredLoanAmount,
		CreditScore:   assessment.FicoScore,
	}, dir.Lenders())

	// Zero matched lenders is still an approval.
	if err := e.commit(ctx, app, models.StatusApproved, assessment, offers); err != nil {
		return nil, err
	}
	e.auditor.Emit(models.AuditEvent{
		UserID:        app.UserID,
		ApplicationID: app.ID,
		Action:        models.AuditApplicationSubmitted,
		Details: map[string]interface{}{
			"status":     string(models.StatusApproved),
			"ficoScore":  assessment.FicoScore,
			"offerCount": len(offers),
		},
	})

	return &Result{
		ApplicationID: app.ID,
		Status:        string(models.StatusApproved),
		FicoScore:     assessment.FicoScore,
		CreditFactors: assessment.Factors,
		OfferCount:    len(offers),
	}, nil
}

// inquire runs the bounded bureau call and annotates the application
// aggregate in memory.
func (e *Engine) inquire(ctx context.Context, app *models.Application) (*models.CreditAssessment, error) {
	inqCtx, cancel := context.WithTimeout(ctx, inquiryTimeout)
	defer cancel()

	assessment, err := e.inquirer.Inquire(inqCtx, bureau.Inquiry{
		ApplicationID: app.ID,
		FirstName:     app.Request.FirstName,
		LastName:      app.Request.LastName,
		SSN:           app.Request.SSN,
		DOB:           app.Request.DOB,
	})
	if err != nil {
		e.logger.Error("credit inquiry failed, application remains pending", map[string]interface{}{
			"applicationId": app.ID,
			"error":         err,
		})
		return nil, err
	}
	app.FicoScore = assessment.FicoScore
	app.CreditFactors = assessment.Factors
	return assessment, nil
}

// commit lands the terminal transition. The store's compare-and-set
// guarantees at most one Submit per application ever commits; crucially
// the commit is detached from the caller's context so an abandoned
// request cannot leave a half-applied decision.
func (e *Engine) commit(parent context.Context, app *models.Application, status models.ApplicationStatus, assessment *models.CreditAssessment, offers []models.Offer) error {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(parent), 15*time.Second)
	defer cancel()

	if err := e.store.CommitDecision(ctx, app.ID, status, assessment, offers); err != nil {
		if errors.Is(err, lifecycle.ErrAlreadyDecided) {
			return err
		}
		return fmt.Errorf("failed to commit decision: %w", err)
	}
	app.Status = status
	app.Offers = offers
	return nil
}

// FetchOffers returns the persisted offers for an application.
func (e *Engine) FetchOffers(ctx context.Context, appID string) ([]models.Offer, error) {
	return e.store.ListOffers(ctx, appID)
}

// FetchApplication returns the full aggregate.
func (e *Engine) FetchApplication(ctx context.Context, appID string) (*models.Application, error) {
	return e.store.GetApplication(ctx, appID)
}

// ErrUnknownLender rejects exports naming a lender outside the directory.
var ErrUnknownLender = errors.New("LENDER_NOT_FOUND")

// Export records the applicant's lender selection as an audit event. The
// lender must exist in the current directory snapshot.
func (e *Engine) Export(ctx context.Context, appID, lenderID string) (models.LenderProfile, error) {
	dir, err := e.directory.Load(ctx)
	if err != nil {
		return models.LenderProfile{}, fmt.Errorf("failed to load lender directory: %w", err)
	}
	lender, ok := dir.Get(lenderID)
	if !ok {
		return models.LenderProfile{}, ErrUnknownLender
	}

	app, err := e.store.GetApplication(ctx, appID)
	if err != nil {
		return models.LenderProfile{}, err
	}

	e.auditor.Emit(models.AuditEvent{
		UserID:        app.UserID,
		ApplicationID: app.ID,
		Action:        models.AuditApplicationExported,
		Details: map[string]interface{}{
			"lenderId":   lender.ID,
			"lenderName": lender.Name,
		},
	})
	return lender, nil
}

// Update applies a partial update of mutable applicant fields to a
// pending application and audits the caller-supplied diff verbatim.
func (e *Engine) Update(ctx context.Context, appID string, diff map[string]interface{}) error {
	app, err := e.store.GetApplication(ctx, appID)
	if err != nil {
		return err
	}

	merged := intake.MergeRequest(app.Request, diff)
	req, verr := intake.Validate(merged)
	if verr != nil {
		return verr
	}
	if err := e.store.UpdateApplicant(ctx, appID, req); err != nil {
		return err
	}

	e.auditor.Emit(models.AuditEvent{
		UserID:        app.UserID,
		ApplicationID: app.ID,
		Action:        models.AuditApplicationUpdated,
		Details:       diff,
	})
	return nil
}
