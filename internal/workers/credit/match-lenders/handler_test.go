// internal/workers/credit/match-lenders/handler_test.go
package matchlenders

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lending-workers/internal/common/logger"
	"lending-workers/internal/lenders"
	"lending-workers/internal/models"
)

type staticDirectory struct {
	profiles []models.LenderProfile
	err      error
}

func (s *staticDirectory) Load(context.Context) (*lenders.Directory, error) {
	if s.err != nil {
		return nil, s.err
	}
	return lenders.NewDirectory(s.profiles), nil
}

func caPanel() []models.LenderProfile {
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

func matchInput(state string, score int) *Input {
	return &Input{
		ApplicationID: "app-1",
		ValidatedRequest: &models.ApplicationRequest{
			State:             state,
			DesiredLoanAmount: 150000,
		},
		FicoScore: score,
	}
}

func TestExecute_ProducesOffers(t *testing.T) {
	handler := NewHandler(LoadConfig(), &staticDirectory{profiles: caPanel()}, logger.NewTestLogger(t))

	output, err := handler.Execute(context.Background(), matchInput("CA", 700))

	require.NoError(t, err)
	assert.Equal(t, 1, output.OfferCount)
	require.Len(t, output.Offers, 1)
	assert.Equal(t, 3.99, output.Offers[0].InterestRate)
	assert.Equal(t, "app-1", output.Offers[0].ApplicationID)
}

func TestExecute_ZeroMatchesCompletes(t *testing.T) {
	handler := NewHandler(LoadConfig(), &staticDirectory{profiles: caPanel()}, logger.NewTestLogger(t))

	output, err := handler.Execute(context.Background(), matchInput("WA", 700))

	require.NoError(t, err, "an empty panel result is a successful match")
	assert.Equal(t, 0, output.OfferCount)
	assert.NotNil(t, output.Offers)
}

func TestExecute_DirectoryLoadFailure(t *testing.T) {
	handler := NewHandler(LoadConfig(), &staticDirectory{err: errors.New("file missing")}, logger.NewTestLogger(t))

	_, err := handler.Execute(context.Background(), matchInput("CA", 700))
	assert.ErrorIs(t, err, ErrLenderMatchFailed)
}

func TestExecute_MissingRequest(t *testing.T) {
	handler := NewHandler(LoadConfig(), &staticDirectory{profiles: caPanel()}, logger.NewTestLogger(t))

	_, err := handler.Execute(context.Background(), &Input{ApplicationID: "app-1", FicoScore: 700})
	assert.ErrorIs(t, err, ErrLenderMatchFailed)
}
