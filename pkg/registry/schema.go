// pkg/registry/schema.go

// Package registry defines the lender directory file format and its
// structural validation. It is import-light so the directory-updater
// tool can share it with the worker fleet.
package registry

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

// File is the on-disk lender directory document.
type File struct {
	Version int           `json:"version"`
	Lenders []LenderEntry `json:"lenders"`
}

// LenderEntry is one lender record as written in the directory file.
type LenderEntry struct {
	ID              string   `json:"id"`
	Name            string   `json:"name"`
	MinLoan         float64  `json:"minLoan"`
	MaxLoan         float64  `json:"maxLoan"`
	MinAPR          float64  `json:"minApr"`
	MaxAPR          float64  `json:"maxApr"`
	SupportedStates []string `json:"supportedStates"`
	ContactEmail    string   `json:"contactEmail,omitempty"`
}

// directorySchema is the structural contract for the directory file.
// Semantic checks (range ordering, duplicate ids) live in Validate.
const directorySchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "required": ["version", "lenders"],
  "properties": {
    "version": {"type": "integer", "minimum": 1},
    "lenders": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["id", "name", "minLoan", "maxLoan", "minApr", "maxApr", "supportedStates"],
        "properties": {
          "id": {"type": "string", "minLength": 1},
          "name": {"type": "string", "minLength": 1},
          "minLoan": {"type": "number", "minimum": 0},
          "maxLoan": {"type": "number", "minimum": 0},
          "minApr": {"type": "number", "minimum": 0},
          "maxApr": {"type": "number", "minimum": 0},
          "supportedStates": {
            "type": "array",
            "minItems": 1,
            "items": {"type": "string", "pattern": "^[A-Z]{2}$"}
          },
          "contactEmail": {"type": "string", "format": "email"}
        }
      }
    }
  }
}`

// Parse validates raw directory bytes against the schema plus semantic
// rules and decodes them.
func Parse(raw []byte) (*File, error) {
	result, err := gojsonschema.Validate(
		gojsonschema.NewStringLoader(directorySchema),
		gojsonschema.NewBytesLoader(raw),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to validate lender directory: %w", err)
	}
	if !result.Valid() {
		details := make([]string, 0, len(result.Errors()))
		for _, desc := range result.Errors() {
			details = append(details, desc.String())
		}
		return nil, fmt.Errorf("lender directory is invalid: %s", strings.Join(details, "; "))
	}

	var file File
	if err := json.Unmarshal(raw, &file); err != nil {
		return nil, fmt.Errorf("failed to decode lender directory: %w", err)
	}
	if err := file.Validate(); err != nil {
		return nil, err
	}
	return &file, nil
}

// Validate applies the semantic rules the schema cannot express.
func (f *File) Validate() error {
	seen := make(map[string]bool, len(f.Lenders))
	for _, lender := range f.Lenders {
		if seen[lender.ID] {
			return fmt.Errorf("lender directory is invalid: duplicate lender id %q", lender.ID)
		}
		seen[lender.ID] = true
		if lender.MinLoan > lender.MaxLoan {
			return fmt.Errorf("lender directory is invalid: lender %q has minLoan > maxLoan", lender.ID)
		}
		if lender.MinAPR > lender.MaxAPR {
			return fmt.Errorf("lender directory is invalid: lender %q has minApr > maxApr", lender.ID)
		}
	}
	return nil
}
