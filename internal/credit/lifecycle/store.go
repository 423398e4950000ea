// internal/credit/lifecycle/store.go
package lifecycle

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"lending-workers/internal/common/logger"
	"lending-workers/internal/common/metrics"
	"lending-workers/internal/models"
)

// Store persists applications and their decisions in PostgreSQL.
type Store struct {
	db     *sql.DB
	logger logger.Logger
}

func NewStore(db *sql.DB, log logger.Logger) *Store {
	return &Store{db: db, logger: log}
}

// CreateApplication inserts a new application in pending status.
func (s *Store) CreateApplication(ctx context.Context, app *models.Application) error {
	request, err := json.Marshal(app.Request)
	if err != nil {
		return fmt.Errorf("failed to encode application request: %w", err)
	}

	now := time.Now().UTC().Format(time.RFC3339)
	app.Status = models.StatusPending
	app.CreatedAt = now
	app.UpdatedAt = now

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO applications (id, user_id, request, status, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		app.ID, app.UserID, request, app.Status, app.CreatedAt, app.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert application: %w", err)
	}
	return nil
}

// CommitDecision writes the terminal status, the credit assessment, and
// the offer set in one transaction. The status update is a compare-and-set
// against pending: when two submissions race, exactly one commit succeeds
// and the other receives ErrAlreadyDecided with no partial writes.
func (s *Store) CommitDecision(ctx context.Context, appID string, status models.ApplicationStatus, assessment *models.CreditAssessment, offers []models.Offer) error {
	if !status.IsTerminal() {
		return fmt.Errorf("decision status must be terminal, got %q", status)
	}

	factors, err := json.Marshal(assessment.Factors)
	if err != nil {
		return fmt.Errorf("failed to encode credit factors: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin decision transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		`UPDATE applications
		 SET status = $2, fico_score = $3, credit_factors = $4, updated_at = $5
		 WHERE id = $1 AND status = 'pending'`,
		appID, status, assessment.FicoScore, factors, time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("failed to update application status: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if affected == 0 {
		return s.classifyMissedUpdate(ctx, appID)
	}

	for position, offer := range offers {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO offers (id, application_id, position, lender_id, lender_name, max_loan_amount, interest_rate, monthly_payment, term_months, approved)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
			offer.ID, appID, position, offer.LenderID, offer.LenderName,
			offer.MaxLoanAmount, offer.InterestRate, offer.MonthlyPayment, offer.TermMonths, offer.Approved,
		)
		if err != nil {
			return fmt.Errorf("failed to insert offer for lender %s: %w", offer.LenderID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit decision: %w", err)
	}

	metrics.DecisionsCommitted.WithLabelValues(string(status)).Inc()
	s.logger.Info("decision committed", map[string]interface{}{
		"applicationId": appID,
		"status":        string(status),
		"offerCount":    len(offers),
	})
	return nil
}

// classifyMissedUpdate distinguishes a missing application from one that
// is already decided. Reads outside the losing transaction on purpose.
func (s *Store) classifyMissedUpdate(ctx context.Context, appID string) error {
	var status string
	err := s.db.QueryRowContext(ctx, `SELECT status FROM applications WHERE id = $1`, appID).Scan(&status)
	if err == sql.ErrNoRows {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to classify missed update: %w", err)
	}
	return ErrAlreadyDecided
}

// GetApplication loads the aggregate, offers included.
func (s *Store) GetApplication(ctx context.Context, appID string) (*models.Application, error) {
	app := &models.Application{ID: appID}
	var request []byte
	var factors sql.NullString
	var ficoScore sql.NullInt64
	var userID sql.NullString

	err := s.db.QueryRowContext(ctx,
		`SELECT user_id, request, status, fico_score, credit_factors, created_at, updated_at
		 FROM applications WHERE id = $1`,
		appID,
	).Scan(&userID, &request, &app.Status, &ficoScore, &factors, &app.CreatedAt, &app.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load application: %w", err)
	}

	app.UserID = userID.String
	if err := json.Unmarshal(request, &app.Request); err != nil {
		return nil, fmt.Errorf("failed to decode application request: %w", err)
	}
	if ficoScore.Valid {
		app.FicoScore = int(ficoScore.Int64)
	}
	if factors.Valid && factors.String != "" {
		if err := json.Unmarshal([]byte(factors.String), &app.CreditFactors); err != nil {
			return nil, fmt.Errorf("failed to decode credit factors: %w", err)
		}
	}

	offers, err := s.ListOffers(ctx, appID)
	if err != nil {
		return nil, err
	}
	app.Offers = offers
	return app, nil
}

// ListOffers returns the offers persisted for an application in the
// order CommitDecision received them. The position column carries the
// ordering; heap order alone would not.
func (s *Store) ListOffers(ctx context.Context, appID string) ([]models.Offer, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, lender_id, lender_name, max_loan_amount, interest_rate, monthly_payment, term_months, approved
		 FROM offers WHERE application_id = $1 ORDER BY position`,
		appID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query offers: %w", err)
	}
	defer rows.Close()

	offers := []models.Offer{}
	for rows.Next() {
		offer := models.Offer{ApplicationID: appID}
		if err := rows.Scan(&offer.ID, &offer.LenderID, &offer.LenderName,
			&offer.MaxLoanAmount, &offer.InterestRate, &offer.MonthlyPayment, &offer.TermMonths, &offer.Approved); err != nil {
			return nil, fmt.Errorf("failed to scan offer row: %w", err)
		}
		offers = append(offers, offer)
	}
	return offers, rows.Err()
}

// UpdateApplicant replaces the stored request payload for a still-pending
// application. Decided applications are immutable.
func (s *Store) UpdateApplicant(ctx context.Context, appID string, req *models.ApplicationRequest) error {
	request, err := json.Marshal(req)
	if err != nil {
		return fmt.Errorf("failed to encode application request: %w", err)
	}

	res, err := s.db.ExecContext(ctx,
		`UPDATE applications SET request = $2, updated_at = $3
		 WHERE id = $1 AND status = 'pending'`,
		appID, request, time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("failed to update applicant data: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if affected == 0 {
		return s.classifyMissedUpdate(ctx, appID)
	}
	return nil
}
