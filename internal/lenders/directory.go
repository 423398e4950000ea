// internal/lenders/directory.go

// Package lenders provides the read-only lender directory consumed by
// the matching engine. The directory is an immutable snapshot: callers
// receive a value at load time and never observe in-place mutation.
package lenders

import (
	"context"
	"fmt"
	"os"

	"lending-workers/internal/models"
	"lending-workers/pkg/registry"
)

// Directory is an ordered, read-only lender panel with an id index.
type Directory struct {
	lenders []models.LenderProfile
	byID    map[string]models.LenderProfile
}

// NewDirectory builds a snapshot from lender profiles, preserving order.
func NewDirectory(profiles []models.LenderProfile) *Directory {
	d := &Directory{
		lenders: make([]models.LenderProfile, len(profiles)),
		byID:    make(map[string]models.LenderProfile, len(profiles)),
	}
	copy(d.lenders, profiles)
	for _, p := range d.lenders {
		d.byID[p.ID] = p
	}
	return d
}

// Lenders returns the panel in directory order. Callers must not mutate
// the returned slice's profiles.
func (d *Directory) Lenders() []models.LenderProfile {
	out := make([]models.LenderProfile, len(d.lenders))
	copy(out, d.lenders)
	return out
}

// Get looks a lender up by id.
func (d *Directory) Get(id string) (models.LenderProfile, bool) {
	p, ok := d.byID[id]
	return p, ok
}

// Len reports the panel size.
func (d *Directory) Len() int { return len(d.lenders) }

// Source loads a directory snapshot.
type Source interface {
	Load(ctx context.Context) (*Directory, error)
}

// FileSource reads and validates the directory from a JSON file.
type FileSource struct {
	path string
}

func NewFileSource(path string) *FileSource {
	return &FileSource{path: path}
}

func (s *FileSource) Load(_ context.Context) (*Directory, error) {
	raw, err := os.ReadFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("failed to read lender directory %s: %w", s.path, err)
	}
	file, err := registry.Parse(raw)
	if err != nil {
		return nil, err
	}
	return NewDirectory(FromEntries(file.Lenders)), nil
}

// FromEntries converts directory file records into domain profiles.
func FromEntries(entries []registry.LenderEntry) []models.LenderProfile {
	profiles := make([]models.LenderProfile, 0, len(entries))
	for _, e := range entries {
		profiles = append(profiles, models.LenderProfile{
			ID:              e.ID,
			Name:            e.Name,
			MinLoan:         e.MinLoan,
			MaxLoan:         e.MaxLoan,
			MinAPR:          e.MinAPR,
			MaxAPR:          e.MaxAPR,
			SupportedStates: e.SupportedStates,
			ContactEmail:    e.ContactEmail,
		})
	}
	return profiles
}
