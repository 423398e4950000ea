// internal/credit/bureau/bureau.go

// Package bureau provides the soft-pull credit inquiry capability. The
// decision pipeline depends on the Inquirer interface only; composition
// decides whether a real provider, the synthetic generator, or a
// fallback chain answers.
package bureau

import (
	"context"
	"fmt"

	"lending-workers/internal/models"
)

// Inquiry identifies the subject of a soft pull.
type Inquiry struct {
	ApplicationID string
	FirstName     string
	LastName      string
	SSN           string
	DOB           string
}

// Inquirer performs one soft-pull credit inquiry. Implementations never
// retry on their own; retry and fallback policy belong to the caller's
// composition root.
type Inquirer interface {
	Inquire(ctx context.Context, inq Inquiry) (*models.CreditAssessment, error)
}

// ErrorKind classifies bureau failures for the caller's policy.
type ErrorKind string

const (
	KindTimeout        ErrorKind = "TIMEOUT"
	KindAuthFailure    ErrorKind = "AUTH_FAILURE"
	KindBureauRejected ErrorKind = "BUREAU_REJECTED"
)

// Error is a classified bureau failure. Timeout and auth failures are
// transient; a rejection is not.
type Error struct {
	Kind     ErrorKind
	Provider string
	Err      error
}

func (e *Error) Error() string {
	return fmt.Sprintf("credit bureau %s: %s: %v", e.Provider, e.Kind, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Transient reports whether a fallback or caller retry can reasonably help.
func (e *Error) Transient() bool {
	return e.Kind == KindTimeout || e.Kind == KindAuthFailure
}
