// internal/models/audit.go
package models

// AuditAction tags one meaningful pipeline transition in the audit trail.
type AuditAction string

const (
	AuditApplicationSubmitted AuditAction = "application_submitted"
	AuditApplicationDeclined  AuditAction = "application_declined"
	AuditApplicationExported  AuditAction = "application_exported"
	AuditApplicationUpdated   AuditAction = "application_updated"
)

// AuditEvent is one append-only audit trail entry. UserID and
// ApplicationID are nullable: anonymous actors and system-level events
// are both legal.
type AuditEvent struct {
	UserID        string                 `json:"userId,omitempty"`
	ApplicationID string                 `json:"applicationId,omitempty"`
	Action        AuditAction            `json:"action"`
	Details       map[string]interface{} `json:"details,omitempty"`
	IPAddress     string                 `json:"ipAddress,omitempty"`
	CreatedAt     string                 `json:"createdAt,omitempty"`
}
