// internal/credit/lifecycle/lifecycle.go

// Package lifecycle owns the application state machine and its persisted
// form. All status mutation goes through here; no other component writes
// application rows.
package lifecycle

import (
	"errors"

	"lending-workers/internal/models"
)

var (
	// ErrAlreadyDecided is returned when a write targets an application
	// that has already reached a terminal status. Concurrent duplicate
	// submissions surface as this error on the losing side.
	ErrAlreadyDecided = errors.New("APPLICATION_ALREADY_DECIDED")

	// ErrNotFound is returned when the application does not exist.
	ErrNotFound = errors.New("APPLICATION_NOT_FOUND")
)

// CanTransition reports whether the state machine permits moving from
// one status to another. Only pending -> approved and pending -> declined
// exist; terminal states permit nothing.
func CanTransition(from, to models.ApplicationStatus) bool {
	if from != models.StatusPending {
		return false
	}
	return to == models.StatusApproved || to == models.StatusDeclined
}
