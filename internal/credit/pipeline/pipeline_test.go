// internal/credit/pipeline/pipeline_test.go
package pipeline

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lending-workers/internal/common/logger"
	"lending-workers/internal/credit/bureau"
	"lending-workers/internal/credit/intake"
	"lending-workers/internal/credit/lifecycle"
	"lending-workers/internal/lenders"
	"lending-workers/internal/models"
)

// memStore is an in-memory Store with the same compare-and-set contract
// as the Postgres implementation.
type memStore struct {
	mu      sync.Mutex
	apps    map[string]*models.Application
	commits int
}

func newMemStore() *memStore {
	return &memStore{apps: map[string]*models.Application{}}
}

func (m *memStore) CreateApplication(_ context.Context, app *models.Application) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	app.Status = models.StatusPending
	clone := *app
	m.apps[app.ID] = &clone
	return nil
}

func (m *memStore) CommitDecision(_ context.Context, appID string, status models.ApplicationStatus, assessment *models.CreditAssessment, offers []models.Offer) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	app, ok := m.apps[appID]
	if !ok {
		return lifecycle.ErrNotFound
	}
	if app.Status != models.StatusPending {
		return lifecycle.ErrAlreadyDecided
	}
	app.Status = status
	app.FicoScore = assessment.FicoScore
	app.CreditFactors = assessment.Factors
	app.Offers = offers
	m.commits++
	return nil
}

func (m *memStore) GetApplication(_ context.Context, appID string) (*models.Application, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	app, ok := m.apps[appID]
	if !ok {
		return nil, lifecycle.ErrNotFound
	}
	clone := *app
	return &clone, nil
}

func (m *memStore) ListOffers(_ context.Context, appID string) ([]models.Offer, error) {
	app, err := m.GetApplication(context.Background(), appID)
	if err != nil {
		return nil, err
	}
	return app.Offers, nil
}

func (m *memStore) UpdateApplicant(_ context.Context, appID string, req *models.ApplicationRequest) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	app, ok := m.apps[appID]
	if !ok {
		return lifecycle.ErrNotFound
	}
	if app.Status != models.StatusPending {
		return lifecycle.ErrAlreadyDecided
	}
	app.Request = *req
	return nil
}

type memAuditor struct {
	mu     sync.Mutex
	events []models.AuditEvent
}

func (a *memAuditor) Emit(event models.AuditEvent) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.events = append(a.events, event)
}

func (a *memAuditor) byAction(action models.AuditAction) []models.AuditEvent {
	a.mu.Lock()
	defer a.mu.Unlock()
	var out []models.AuditEvent
	for _, e := range a.events {
		if e.Action == action {
			out = append(out, e)
		}
	}
	return out
}

type staticDirectory struct {
	profiles []models.LenderProfile
}

func (s *staticDirectory) Load(context.Context) (*lenders.Directory, error) {
	return lenders.NewDirectory(s.profiles), nil
}

type fixedInquirer struct {
	score int
	err   error
}

func (f *fixedInquirer) Inquire(context.Context, bureau.Inquiry) (*models.CreditAssessment, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &models.CreditAssessment{
		FicoScore: f.score,
		Factors:   []string{"Payment history (35%)"},
		Approved:  f.score >= models.ApprovedHintFloor,
		Provider:  "test",
	}, nil
}

func defaultPanel() []models.LenderProfile {
	return []models.LenderProfile{{
		ID:              "lender-1",
		Name:            "Prestige Financial Group",
		MinLoan:         80000,
		MaxLoan:         500000,
		MinAPR:          3.99,
		MaxAPR:          8.99,
		SupportedStates: []string{"CA", "NY"},
	}}
}

func submissionPayload() map[string]interface{} {
	return map[string]interface{}{
		"firstName":         "Ava",
		"lastName":          "Sterling",
		"email":             "ava.sterling@example.com",
		"phone":             "4155550199",
		"ssn":               "123456789",
		"dob":               "1990-06-15",
		"address":           "12 Harbor View Drive",
		"city":              "San Francisco",
		"state":             "CA",
		"zipCode":           "94105",
		"annualIncome":      float64(120000),
		"employmentStatus":  "employed",
		"downPayment":       float64(40000),
		"desiredLoanAmount": float64(150000),
		"loanTerm":          float64(60),
	}
}

type fixture struct {
	engine  *Engine
	store   *memStore
	auditor *memAuditor
}

func newFixture(t *testing.T, inquirer bureau.Inquirer, panel []models.LenderProfile) *fixture {
	t.Helper()
	store := newMemStore()
	auditor := &memAuditor{}
	engine := NewEngine(inquirer, &staticDirectory{profiles: panel}, store, auditor, logger.NewTestLogger(t))
	return &fixture{engine: engine, store: store, auditor: auditor}
}

func TestSubmit_ApprovedWithOffer(t *testing.T) {
	f := newFixture(t, &fixedInquirer{score: 700}, defaultPanel())

	res, err := f.engine.Submit(context.Background(), "user-1", submissionPayload())
	require.NoError(t, err)

	assert.Equal(t, "approved", res.Status)
	assert.Equal(t, 700, res.FicoScore)
	assert.Equal(t, 1, res.OfferCount)

	app, err := f.store.GetApplication(context.Background(), res.ApplicationID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusApproved, app.Status)
	require.Len(t, app.Offers, 1)
	assert.Equal(t, 3.99, app.Offers[0].InterestRate)

	assert.Len(t, f.auditor.byAction(models.AuditApplicationSubmitted), 1)
}

func TestSubmit_DeclinedByScore(t *testing.T) {
	// Score 500 fails eligibility; the matcher never runs.
	f := newFixture(t, &fixedInquirer{score: 500}, defaultPanel())

	res, err := f.engine.Submit(context.Background(), "user-1", submissionPayload())
	require.NoError(t, err, "a decline is a successful outcome, not an error")

	assert.Equal(t, "declined", res.Status)
	assert.Contains(t, res.Reason, "Credit score")
	assert.Equal(t, 0, res.OfferCount)

	app, err := f.store.GetApplication(context.Background(), res.ApplicationID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusDeclined, app.Status)
	assert.Empty(t, app.Offers, "declined applications carry no offers")
	assert.Equal(t, 500, app.FicoScore, "assessment persists on decline for audit")

	assert.Len(t, f.auditor.byAction(models.AuditApplicationDeclined), 1)
}

func TestSubmit_NoLenderMatchStillApproves(t *testing.T) {
	// Panel supports CA/NY only; a WA applicant matches zero lenders.
	f := newFixture(t, &fixedInquirer{score: 700}, defaultPanel())
	payload := submissionPayload()
	payload["state"] = "WA"

	res, err := f.engine.Submit(context.Background(), "user-1", payload)
	require.NoError(t, err)

	assert.Equal(t, "approved", res.Status)
	assert.Equal(t, 0, res.OfferCount)

	app, _ := f.store.GetApplication(context.Background(), res.ApplicationID)
	assert.Equal(t, models.StatusApproved, app.Status)
}

func TestSubmit_ValidationFailureReturnsFieldErrors(t *testing.T) {
	f := newFixture(t, &fixedInquirer{score: 700}, defaultPanel())
	payload := submissionPayload()
	payload["email"] = "nope"
	delete(payload, "ssn")

	_, err := f.engine.Submit(context.Background(), "user-1", payload)

	var verr *intake.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Len(t, verr.Fields, 2)
	assert.Empty(t, f.store.apps, "nothing is persisted before validation passes")
}

func TestSubmit_BureauFailureLeavesPending(t *testing.T) {
	inqErr := &bureau.Error{Kind: bureau.KindTimeout, Provider: "equifax", Err: errors.New("deadline exceeded")}
	f := newFixture(t, &fixedInquirer{err: inqErr}, defaultPanel())

	_, err := f.engine.Submit(context.Background(), "user-1", submissionPayload())
	require.Error(t, err)

	var bureauErr *bureau.Error
	assert.ErrorAs(t, err, &bureauErr)

	// The application was created but not transitioned: clean resubmission.
	require.Len(t, f.store.apps, 1)
	for _, app := range f.store.apps {
		assert.Equal(t, models.StatusPending, app.Status)
	}
	assert.Equal(t, 0, f.store.commits)
}

func TestDecide_ConcurrentDuplicateCommitsOnce(t *testing.T) {
	f := newFixture(t, &fixedInquirer{score: 700}, defaultPanel())

	app := &models.Application{ID: "app-race", UserID: "user-1"}
	payload := submissionPayload()
	req, verr := intake.Validate(payload)
	require.Nil(t, verr)
	app.Request = *req
	require.NoError(t, f.store.CreateApplication(context.Background(), app))

	const attempts = 8
	var wg sync.WaitGroup
	results := make([]error, attempts)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			clone := *app
			_, err := f.engine.Decide(context.Background(), &clone)
			results[i] = err
		}(i)
	}
	wg.Wait()

	var wins, losses int
	for _, err := range results {
		if err == nil {
			wins++
		} else if errors.Is(err, lifecycle.ErrAlreadyDecided) {
			losses++
		}
	}
	assert.Equal(t, 1, wins, "exactly one pipeline run commits")
	assert.Equal(t, attempts-1, losses)
	assert.Equal(t, 1, f.store.commits)
}

func TestFetchOffers(t *testing.T) {
	f := newFixture(t, &fixedInquirer{score: 700}, defaultPanel())

	res, err := f.engine.Submit(context.Background(), "user-1", submissionPayload())
	require.NoError(t, err)

	offers, err := f.engine.FetchOffers(context.Background(), res.ApplicationID)
	require.NoError(t, err)
	assert.Len(t, offers, 1)

	_, err = f.engine.FetchOffers(context.Background(), "missing")
	assert.ErrorIs(t, err, lifecycle.ErrNotFound)
}

func TestExport_RecordsSelection(t *testing.T) {
	f := newFixture(t, &fixedInquirer{score: 700}, defaultPanel())

	res, err := f.engine.Submit(context.Background(), "user-1", submissionPayload())
	require.NoError(t, err)

	lender, err := f.engine.Export(context.Background(), res.ApplicationID, "lender-1")
	require.NoError(t, err)
	assert.Equal(t, "Prestige Financial Group", lender.Name)

	events := f.auditor.byAction(models.AuditApplicationExported)
	require.Len(t, events, 1)
	assert.Equal(t, "lender-1", events[0].Details["lenderId"])
}

func TestExport_UnknownLender(t *testing.T) {
	f := newFixture(t, &fixedInquirer{score: 700}, defaultPanel())

	res, err := f.engine.Submit(context.Background(), "user-1", submissionPayload())
	require.NoError(t, err)

	_, err = f.engine.Export(context.Background(), res.ApplicationID, "lender-404")
	assert.ErrorIs(t, err, ErrUnknownLender)
	assert.Empty(t, f.auditor.byAction(models.AuditApplicationExported))
}

func TestUpdate_MergesAndAudits(t *testing.T) {
	f := newFixture(t, &fixedInquirer{err: &bureau.Error{Kind: bureau.KindTimeout, Provider: "x", Err: errors.New("down")}}, defaultPanel())

	// Bureau down: application stays pending and remains updatable.
	_, err := f.engine.Submit(context.Background(), "user-1", submissionPayload())
	require.Error(t, err)

	var appID string
	for id := range f.store.apps {
		appID = id
	}

	diff := map[string]interface{}{"email": "new.address@example.com"}
	require.NoError(t, f.engine.Update(context.Background(), appID, diff))

	app, err := f.store.GetApplication(context.Background(), appID)
	require.NoError(t, err)
	assert.Equal(t, "new.address@example.com", app.Request.Email)
	assert.Equal(t, "Ava", app.Request.FirstName, "untouched fields survive the merge")

	events := f.auditor.byAction(models.AuditApplicationUpdated)
	require.Len(t, events, 1)
	assert.Equal(t, diff, events[0].Details)
}

func TestUpdate_RejectsInvalidDiff(t *testing.T) {
	f := newFixture(t, &fixedInquirer{err: &bureau.Error{Kind: bureau.KindTimeout, Provider: "x", Err: errors.New("down")}}, defaultPanel())

	_, err := f.engine.Submit(context.Background(), "user-1", submissionPayload())
	require.Error(t, err)

	var appID string
	for id := range f.store.apps {
		appID = id
	}

	err = f.engine.Update(context.Background(), appID, map[string]interface{}{"annualIncome": float64(100)})
	var verr *intake.ValidationError
	assert.ErrorAs(t, err, &verr)
}
