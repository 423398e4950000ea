// internal/workers/data-access/query-application-data/handler_test.go
package queryapplicationdata

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lending-workers/internal/common/logger"
	"lending-workers/internal/credit/lifecycle"
	"lending-workers/internal/models"
)

type stubStore struct {
	app    *models.Application
	offers []models.Offer
	err    error
}

func (s *stubStore) GetApplication(context.Context, string) (*models.Application, error) {
	return s.app, s.err
}

func (s *stubStore) ListOffers(context.Context, string) ([]models.Offer, error) {
	return s.offers, s.err
}

func testApp() *models.Application {
	return &models.Application{
		ID:        "app-1",
		Status:    models.StatusApproved,
		FicoScore: 700,
		UpdatedAt: "2026-08-28T00:00:00Z",
	}
}

func TestExecute_ApplicationDetails(t *testing.T) {
	handler := NewHandler(LoadConfig(), &stubStore{app: testApp()}, logger.NewTestLogger(t))

	output, err := handler.Execute(context.Background(), &Input{
		QueryType:     string(QueryTypeApplicationDetails),
		ApplicationID: "app-1",
	})

	require.NoError(t, err)
	assert.Equal(t, 1, output.RowCount)
	app, ok := output.Data.(*models.Application)
	require.True(t, ok)
	assert.Equal(t, "app-1", app.ID)
}

func TestExecute_ApplicationOffers(t *testing.T) {
	offers := []models.Offer{{ID: "offer-1"}, {ID: "offer-2"}}
	handler := NewHandler(LoadConfig(), &stubStore{offers: offers}, logger.NewTestLogger(t))

	output, err := handler.Execute(context.Background(), &Input{
		QueryType:     string(QueryTypeApplicationOffers),
		ApplicationID: "app-1",
	})

	require.NoError(t, err)
	assert.Equal(t, 2, output.RowCount)
}

func TestExecute_ApplicationStatus(t *testing.T) {
	handler := NewHandler(LoadConfig(), &stubStore{app: testApp()}, logger.NewTestLogger(t))

	output, err := handler.Execute(context.Background(), &Input{
		QueryType:     string(QueryTypeApplicationStatus),
		ApplicationID: "app-1",
	})

	require.NoError(t, err)
	data, ok := output.Data.(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "approved", data["status"])
}

func TestExecute_InvalidQueryType(t *testing.T) {
	handler := NewHandler(LoadConfig(), &stubStore{}, logger.NewTestLogger(t))

	_, err := handler.Execute(context.Background(), &Input{
		QueryType:     "drop_tables",
		ApplicationID: "app-1",
	})
	assert.ErrorIs(t, err, ErrInvalidQueryType)
}

func TestExecute_NotFound(t *testing.T) {
	handler := NewHandler(LoadConfig(), &stubStore{err: lifecycle.ErrNotFound}, logger.NewTestLogger(t))

	_, err := handler.Execute(context.Background(), &Input{
		QueryType:     string(QueryTypeApplicationDetails),
		ApplicationID: "missing",
	})
	assert.ErrorIs(t, err, ErrApplicationNotFound)
}

func TestExecute_MissingApplicationID(t *testing.T) {
	handler := NewHandler(LoadConfig(), &stubStore{}, logger.NewTestLogger(t))

	_, err := handler.Execute(context.Background(), &Input{QueryType: string(QueryTypeApplicationDetails)})
	assert.ErrorIs(t, err, ErrQueryExecutionFailed)
}
