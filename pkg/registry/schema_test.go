// pkg/registry/schema_test.go
package registry

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const validDirectory = `{
  "version": 1,
  "lenders": [
    {
      "id": "lender-1",
      "name": "Prestige Financial Group",
      "minLoan": 80000,
      "maxLoan": 500000,
      "minApr": 3.99,
      "maxApr": 8.99,
      "supportedStates": ["CA", "NY"],
      "contactEmail": "loans@prestigefinancial.example.com"
    }
  ]
}`

func TestParse_ValidDirectory(t *testing.T) {
	file, err := Parse([]byte(validDirectory))
	require.NoError(t, err)

	assert.Equal(t, 1, file.Version)
	require.Len(t, file.Lenders, 1)
	assert.Equal(t, "Prestige Financial Group", file.Lenders[0].Name)
	assert.Equal(t, []string{"CA", "NY"}, file.Lenders[0].SupportedStates)
}

func TestParse_RejectsInvalidDocuments(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"not json", `{{{`},
		{"missing lenders", `{"version": 1}`},
		{"missing required lender field", `{"version": 1, "lenders": [{"id": "x", "name": "X"}]}`},
		{"lowercase state code", `{"version": 1, "lenders": [{"id": "x", "name": "X", "minLoan": 1, "maxLoan": 2, "minApr": 1, "maxApr": 2, "supportedStates": ["ca"]}]}`},
		{"empty state list", `{"version": 1, "lenders": [{"id": "x", "name": "X", "minLoan": 1, "maxLoan": 2, "minApr": 1, "maxApr": 2, "supportedStates": []}]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.raw))
			assert.Error(t, err)
		})
	}
}

func TestParse_SemanticRules(t *testing.T) {
	duplicate := `{"version": 1, "lenders": [
	  {"id": "x", "name": "A", "minLoan": 1, "maxLoan": 2, "minApr": 1, "maxApr": 2, "supportedStates": ["CA"]},
	  {"id": "x", "name": "B", "minLoan": 1, "maxLoan": 2, "minApr": 1, "maxApr": 2, "supportedStates": ["NY"]}
	]}`
	_, err := Parse([]byte(duplicate))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate lender id")

	invertedRange := `{"version": 1, "lenders": [
	  {"id": "x", "name": "A", "minLoan": 500000, "maxLoan": 80000, "minApr": 1, "maxApr": 2, "supportedStates": ["CA"]}
	]}`
	_, err = Parse([]byte(invertedRange))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "minLoan > maxLoan")
}
