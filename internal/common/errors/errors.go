// Package errors provides standardized error handling for the lending decision workflow.
package errors

import (
	"fmt"
	"strings"
	"time"
)

// ==========================
// 1. Standard Error Types
// ==========================

// ErrorCode represents standardized internal error codes.
type ErrorCode string

const (
	// Intake / validation errors (non-retryable; the caller fixes the payload)
	ErrCodeValidationFailed ErrorCode = "VALIDATION_FAILED"
	ErrCodeParseFailed      ErrorCode = "PARSE_ERROR"

	// Credit bureau errors: timeout and auth are transient, rejection is final
	ErrCodeCreditBureauTimeout    ErrorCode = "CREDIT_BUREAU_TIMEOUT"
	ErrCodeCreditBureauAuthFailed ErrorCode = "CREDIT_BUREAU_AUTH_FAILED"
	ErrCodeCreditBureauRejected   ErrorCode = "CREDIT_BUREAU_REJECTED"

	// Persistence errors
	ErrCodeDatabaseConnectionFailed  ErrorCode = "DATABASE_CONNECTION_FAILED"
	ErrCodeQueryExecutionFailed      ErrorCode = "QUERY_EXECUTION_FAILED"
	ErrCodeQueryTimeout              ErrorCode = "QUERY_TIMEOUT"
	ErrCodeInvalidQueryType          ErrorCode = "INVALID_QUERY_TYPE"
	ErrCodePersistenceFailed         ErrorCode = "PERSISTENCE_FAILED"
	ErrCodeApplicationAlreadyDecided ErrorCode = "APPLICATION_ALREADY_DECIDED"
	ErrCodeApplicationNotFound       ErrorCode = "APPLICATION_NOT_FOUND"

	// Lender directory errors
	ErrCodeLenderNotFound         ErrorCode = "LENDER_NOT_FOUND"
	ErrCodeLenderDirectoryInvalid ErrorCode = "LENDER_DIRECTORY_INVALID"

	// Inventory search errors
	ErrCodeInventorySearchFailed ErrorCode = "INVENTORY_SEARCH_FAILED"
	ErrCodeInventorySearchTimeout ErrorCode = "INVENTORY_SEARCH_TIMEOUT"

	// Notification errors
	ErrCodeNotificationSendFailed ErrorCode = "NOTIFICATION_SEND_FAILED"
)

// StandardError represents a structured application error.
type StandardError struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Details   string                 `json:"details,omitempty"`
	Retryable bool                   `json:"retryable"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
}

func (e *StandardError) Error() string {
	return fmt.Sprintf("StandardError[%s]: %s", e.Code, e.Message)
}

// ==========================
// 2. BPMN Error Integration
// ==========================

// BPMNError represents an error that can be thrown to the Camunda workflow engine.
type BPMNError struct {
	Code           string                 `json:"code"`
	Message        string                 `json:"message"`
	Details        string                 `json:"details,omitempty"`
	Retryable      bool                   `json:"retryable"`
	Retries        int                    `json:"retries"`
	ErrorVariables map[string]interface{} `json:"errorVariables,omitempty"`
}

func (e *BPMNError) Error() string {
	return fmt.Sprintf("BPMNError[%s]: %s", e.Code, e.Message)
}

// ToErrorVariables returns a map suitable for setting Camunda job fail variables.
func (e *BPMNError) ToErrorVariables() map[string]interface{} {
	vars := map[string]interface{}{
		"errorCode":    e.Code,
		"errorMessage": e.Message,
		"errorDetails": e.Details,
		"retryable":    e.Retryable,
	}

	if e.ErrorVariables != nil {
		for k, v := range e.ErrorVariables {
			vars[k] = v
		}
	}

	return vars
}

// ==========================
// 3. Error Constructors
// ==========================

// NewValidationFailedError creates a non-retryable intake validation error.
// The caller recovers by re-submitting a corrected payload.
func NewValidationFailedError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeValidationFailed,
		Message:   "Application data validation failed",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewCreditBureauTimeoutError creates a retryable bureau timeout error.
func NewCreditBureauTimeoutError(provider string) *StandardError {
	return &StandardError{
		Code:      ErrCodeCreditBureauTimeout,
		Message:   "Credit bureau inquiry timed out",
		Details:   fmt.Sprintf("provider: %s", provider),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewCreditBureauAuthFailedError creates a non-retryable bureau authentication error.
func NewCreditBureauAuthFailedError(provider string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeCreditBureauAuthFailed,
		Message:   "Credit bureau authentication failed",
		Details:   fmt.Sprintf("provider: %s, error: %s", provider, err.Error()),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewCreditBureauRejectedError creates a non-retryable bureau rejection error.
func NewCreditBureauRejectedError(provider, details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeCreditBureauRejected,
		Message:   "Credit bureau rejected the inquiry",
		Details:   fmt.Sprintf("provider: %s, %s", provider, details),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewDatabaseConnectionFailedError creates a retryable database connection error.
func NewDatabaseConnectionFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeDatabaseConnectionFailed,
		Message:   "Database connection error",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewQueryExecutionFailedError creates a retryable query execution error.
func NewQueryExecutionFailedError(queryType string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeQueryExecutionFailed,
		Message:   "Database query execution error",
		Details:   fmt.Sprintf("queryType: %s, error: %s", queryType, err.Error()),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewQueryTimeoutError creates a retryable query timeout error.
func NewQueryTimeoutError(queryType string) *StandardError {
	return &StandardError{
		Code:      ErrCodeQueryTimeout,
		Message:   "Database query timeout",
		Details:   fmt.Sprintf("queryType: %s", queryType),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewInvalidQueryTypeError creates a non-retryable invalid query type error.
func NewInvalidQueryTypeError(queryType string) *StandardError {
	return &StandardError{
		Code:      ErrCodeInvalidQueryType,
		Message:   "Unsupported query type",
		Details:   fmt.Sprintf("queryType: %s", queryType),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewPersistenceFailedError creates a retryable persistence error.
func NewPersistenceFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodePersistenceFailed,
		Message:   "Decision persistence failed",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewApplicationAlreadyDecidedError creates a non-retryable duplicate-decision error.
// Raised when the status compare-and-set loses to a concurrent submission.
func NewApplicationAlreadyDecidedError(applicationID string) *StandardError {
	return &StandardError{
		Code:      ErrCodeApplicationAlreadyDecided,
		Message:   "Application already has a terminal decision",
		Details:   fmt.Sprintf("applicationId: %s", applicationID),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewApplicationNotFoundError creates a non-retryable lookup error.
func NewApplicationNotFoundError(applicationID string) *StandardError {
	return &StandardError{
		Code:      ErrCodeApplicationNotFound,
		Message:   "Application not found",
		Details:   fmt.Sprintf("applicationId: %s", applicationID),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewLenderNotFoundError creates a non-retryable lender lookup error.
func NewLenderNotFoundError(lenderID string) *StandardError {
	return &StandardError{
		Code:      ErrCodeLenderNotFound,
		Message:   "Lender not found in directory",
		Details:   fmt.Sprintf("lenderId: %s", lenderID),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewLenderDirectoryInvalidError creates a non-retryable directory load error.
func NewLenderDirectoryInvalidError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeLenderDirectoryInvalid,
		Message:   "Lender directory failed schema validation",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewInventorySearchFailedError creates a retryable Elasticsearch query error.
func NewInventorySearchFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeInventorySearchFailed,
		Message:   "Vehicle inventory search error",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewInventorySearchTimeoutError creates a retryable Elasticsearch timeout error.
func NewInventorySearchTimeoutError() *StandardError {
	return &StandardError{
		Code:      ErrCodeInventorySearchTimeout,
		Message:   "Vehicle inventory search timeout",
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewNotificationSendFailedError creates a retryable notification send error.
func NewNotificationSendFailedError(notificationType string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeNotificationSendFailed,
		Message:   "Notification delivery failed",
		Details:   fmt.Sprintf("type: %s, error: %s", notificationType, err.Error()),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// Generic constructors

func NewBusinessRuleError(message, details string) *StandardError {
	return &StandardError{
		Code:      "BUSINESS_RULE_VIOLATION",
		Message:   message,
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

func NewExternalServiceError(service string, err error) *StandardError {
	return &StandardError{
		Code:      "EXTERNAL_SERVICE_ERROR",
		Message:   fmt.Sprintf("External service '%s' error", service),
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

func NewTimeoutError(service string, err error) *StandardError {
	return &StandardError{
		Code:      "TIMEOUT_ERROR",
		Message:   fmt.Sprintf("Service '%s' timeout", service),
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

func NewResourceNotFoundError(service, details string) *StandardError {
	return &StandardError{
		Code:      "RESOURCE_NOT_FOUND",
		Message:   fmt.Sprintf("Resource not found in %s", service),
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

func NewAuthenticationError(details string) *StandardError {
	return &StandardError{
		Code:      "AUTHENTICATION_ERROR",
		Message:   "Authentication failed",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// ==========================
// 4. Error Conversion to BPMN
// ==========================

// BPMNErrorMapping maps internal error codes to BPMN error codes (identical by convention).
var BPMNErrorMapping = map[ErrorCode]string{
	ErrCodeValidationFailed:          "VALIDATION_FAILED",
	ErrCodeParseFailed:               "PARSE_ERROR",
	ErrCodeCreditBureauTimeout:       "CREDIT_BUREAU_TIMEOUT",
	ErrCodeCreditBureauAuthFailed:    "CREDIT_BUREAU_AUTH_FAILED",
	ErrCodeCreditBureauRejected:      "CREDIT_BUREAU_REJECTED",
	ErrCodeDatabaseConnectionFailed:  "DATABASE_CONNECTION_FAILED",
	ErrCodeQueryExecutionFailed:      "QUERY_EXECUTION_FAILED",
	ErrCodeQueryTimeout:              "QUERY_TIMEOUT",
	ErrCodeInvalidQueryType:          "INVALID_QUERY_TYPE",
	ErrCodePersistenceFailed:         "PERSISTENCE_FAILED",
	ErrCodeApplicationAlreadyDecided: "APPLICATION_ALREADY_DECIDED",
	ErrCodeApplicationNotFound:       "APPLICATION_NOT_FOUND",
	ErrCodeLenderNotFound:            "LENDER_NOT_FOUND",
	ErrCodeLenderDirectoryInvalid:    "LENDER_DIRECTORY_INVALID",
	ErrCodeInventorySearchFailed:     "INVENTORY_SEARCH_FAILED",
	ErrCodeInventorySearchTimeout:    "INVENTORY_SEARCH_TIMEOUT",
	ErrCodeNotificationSendFailed:    "NOTIFICATION_SEND_FAILED",
}

// GetRetryCount returns the recommended retry count per error code.
// The engine itself never retries a bureau call; retries here are the
// workflow engine re-delivering the job.
func GetRetryCount(code ErrorCode) int {
	switch code {
	case ErrCodeDatabaseConnectionFailed,
		ErrCodeQueryExecutionFailed,
		ErrCodePersistenceFailed,
		ErrCodeInventorySearchFailed,
		ErrCodeNotificationSendFailed:
		return 3 // Retryable technical errors

	case ErrCodeQueryTimeout,
		ErrCodeCreditBureauTimeout,
		ErrCodeInventorySearchTimeout:
		return 2 // Partial retry for timeouts

	default:
		return 0 // Validation, business and terminal errors: no retry
	}
}

// ConvertToBPMNError converts a StandardError to a BPMNError for Camunda.
func ConvertToBPMNError(stdErr *StandardError) *BPMNError {
	bpmnCode, exists := BPMNErrorMapping[stdErr.Code]
	if !exists {
		bpmnCode = string(stdErr.Code) // Fallback
	}

	retries := GetRetryCount(stdErr.Code)
	if !stdErr.Retryable {
		retries = 0
	}

	return &BPMNError{
		Code:      bpmnCode,
		Message:   stdErr.Message,
		Details:   stdErr.Details,
		Retryable: stdErr.Retryable,
		Retries:   retries,
		ErrorVariables: map[string]interface{}{
			"originalErrorCode": string(stdErr.Code),
			"timestamp":         stdErr.Timestamp.Format(time.RFC3339),
		},
	}
}

// ==========================
// 5. Utility Functions
// ==========================

// IsRetryableErrorCode checks if an error code is retryable.
func IsRetryableErrorCode(code ErrorCode) bool {
	return GetRetryCount(code) > 0
}

// GetErrorCategory returns the category of the error code.
func GetErrorCategory(code ErrorCode) string {
	codeStr := string(code)
	switch {
	case strings.Contains(codeStr, "BUREAU"):
		return "CREDIT_BUREAU"
	case strings.Contains(codeStr, "DATABASE") || strings.Contains(codeStr, "QUERY") || strings.Contains(codeStr, "PERSISTENCE"):
		return "PERSISTENCE"
	case strings.Contains(codeStr, "LENDER"):
		return "LENDER_DIRECTORY"
	case strings.Contains(codeStr, "INVENTORY"):
		return "INVENTORY"
	case strings.Contains(codeStr, "NOTIFICATION"):
		return "NOTIFICATION"
	case strings.Contains(codeStr, "VALIDATION") || strings.Contains(codeStr, "PARSE"):
		return "VALIDATION"
	default:
		return "OTHER"
	}
}
