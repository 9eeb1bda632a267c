// Package errors provides standardized error handling for BPMN workflow integration.
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
	ErrCodeAssessmentNotFound  ErrorCode = "ASSESSMENT_NOT_FOUND"
	ErrCodeAnswersLoadFailed   ErrorCode = "ANSWERS_LOAD_FAILED"
	ErrCodeUseCasesLoadFailed  ErrorCode = "USECASES_LOAD_FAILED"
	ErrCodeResponsesLoadFailed ErrorCode = "RESPONSES_LOAD_FAILED"

	ErrCodeCatalogLoadFailed       ErrorCode = "CATALOG_LOAD_FAILED"
	ErrCodePayloadValidationFailed ErrorCode = "PAYLOAD_VALIDATION_FAILED"

	ErrCodeDatabaseConnectionFailed ErrorCode = "DATABASE_CONNECTION_FAILED"

	ErrCodeReportSchemaInvalid       ErrorCode = "REPORT_SCHEMA_INVALID"
	ErrCodeReportIndexFailed         ErrorCode = "REPORT_INDEX_FAILED"
	ErrCodeReportIndexTimeout        ErrorCode = "REPORT_INDEX_TIMEOUT"
	ErrCodeValidationRecomputeFailed ErrorCode = "VALIDATION_RECOMPUTE_FAILED"

	ErrCodeActivityInsertFailed ErrorCode = "ACTIVITY_INSERT_FAILED"
	ErrCodeDuplicateActivity    ErrorCode = "DUPLICATE_ACTIVITY"

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

// NewAssessmentNotFoundError creates a non-retryable lookup error.
func NewAssessmentNotFoundError(assessmentID string) *StandardError {
	return &StandardError{
		Code:      ErrCodeAssessmentNotFound,
		Message:   "Assessment not found",
		Details:   fmt.Sprintf("assessmentId: %s", assessmentID),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewAnswersLoadFailedError creates a retryable database error.
func NewAnswersLoadFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeAnswersLoadFailed,
		Message:   "Database error loading global answers",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewUseCasesLoadFailedError creates a retryable database error.
func NewUseCasesLoadFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeUseCasesLoadFailed,
		Message:   "Database error loading selected use cases",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewResponsesLoadFailedError creates a retryable database error.
func NewResponsesLoadFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeResponsesLoadFailed,
		Message:   "Database error loading questionnaire responses",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewCatalogLoadFailedError creates a non-retryable catalog error.
func NewCatalogLoadFailedError(path string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeCatalogLoadFailed,
		Message:   "Use-case catalog could not be loaded",
		Details:   fmt.Sprintf("path: %s, error: %s", path, err.Error()),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewPayloadValidationFailedError creates a non-retryable input error.
func NewPayloadValidationFailedError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodePayloadValidationFailed,
		Message:   "Job payload validation failed",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewDatabaseConnectionFailedError creates a retryable connection error.
func NewDatabaseConnectionFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeDatabaseConnectionFailed,
		Message:   "Database connection error",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewReportSchemaInvalidError creates a non-retryable schema error.
func NewReportSchemaInvalidError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeReportSchemaInvalid,
		Message:   "Report document failed schema validation",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewReportIndexFailedError creates a retryable Elasticsearch error.
func NewReportIndexFailedError(index string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeReportIndexFailed,
		Message:   "Report document indexing failed",
		Details:   fmt.Sprintf("index: %s, error: %s", index, err.Error()),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewReportIndexTimeoutError creates a retryable indexing timeout error.
func NewReportIndexTimeoutError(index string) *StandardError {
	return &StandardError{
		Code:      ErrCodeReportIndexTimeout,
		Message:   "Report document indexing timeout",
		Details:   fmt.Sprintf("index: %s", index),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewValidationRecomputeFailedError creates a retryable error for a
// failed standalone rebuild of the validation results.
func NewValidationRecomputeFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeValidationRecomputeFailed,
		Message:   "Validation results could not be recomputed",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewActivityInsertFailedError creates a retryable database insert error.
func NewActivityInsertFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeActivityInsertFailed,
		Message:   "Activity insert operation failed",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewDuplicateActivityError creates a non-retryable duplicate error.
func NewDuplicateActivityError(assessmentID, useCaseID string) *StandardError {
	return &StandardError{
		Code:      ErrCodeDuplicateActivity,
		Message:   "Activities already generated for use case",
		Details:   fmt.Sprintf("assessmentId: %s, useCaseId: %s", assessmentID, useCaseID),
		Retryable: false,
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

func NewResourceNotFoundError(service, details string) *StandardError {
	return &StandardError{
		Code:      "RESOURCE_NOT_FOUND",
		Message:   fmt.Sprintf("Resource not found in '%s'", service),
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

func NewTimeoutError(service string, err error) *StandardError {
	return &StandardError{
		Code:      "TIMEOUT_ERROR",
		Message:   fmt.Sprintf("Service '%s' timeout", service),
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// ==========================
// 4. Error Conversion to BPMN
// ==========================

// BPMNErrorMapping maps internal error codes to BPMN error codes; the
// workflow models use the same identifiers.
var BPMNErrorMapping = map[ErrorCode]string{
	ErrCodeAssessmentNotFound:        "ASSESSMENT_NOT_FOUND",
	ErrCodeAnswersLoadFailed:         "ANSWERS_LOAD_FAILED",
	ErrCodeUseCasesLoadFailed:        "USECASES_LOAD_FAILED",
	ErrCodeResponsesLoadFailed:       "RESPONSES_LOAD_FAILED",
	ErrCodeCatalogLoadFailed:         "CATALOG_LOAD_FAILED",
	ErrCodePayloadValidationFailed:   "PAYLOAD_VALIDATION_FAILED",
	ErrCodeDatabaseConnectionFailed:  "DATABASE_CONNECTION_FAILED",
	ErrCodeReportSchemaInvalid:       "REPORT_SCHEMA_INVALID",
	ErrCodeReportIndexFailed:         "REPORT_INDEX_FAILED",
	ErrCodeReportIndexTimeout:        "REPORT_INDEX_TIMEOUT",
	ErrCodeValidationRecomputeFailed: "VALIDATION_RECOMPUTE_FAILED",
	ErrCodeActivityInsertFailed:      "ACTIVITY_INSERT_FAILED",
	ErrCodeDuplicateActivity:         "DUPLICATE_ACTIVITY",
	ErrCodeNotificationSendFailed:    "NOTIFICATION_SEND_FAILED",
}

// GetRetryCount returns the recommended retry count per error code.
func GetRetryCount(code ErrorCode) int {
	switch code {
	case ErrCodeAnswersLoadFailed,
		ErrCodeUseCasesLoadFailed,
		ErrCodeResponsesLoadFailed,
		ErrCodeDatabaseConnectionFailed,
		ErrCodeReportIndexFailed,
		ErrCodeValidationRecomputeFailed,
		ErrCodeActivityInsertFailed,
		ErrCodeNotificationSendFailed:
		return 3 // Retryable technical errors

	case ErrCodeReportIndexTimeout:
		return 2 // Partial retry for timeouts

	default:
		return 0 // Business errors: no retry
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
	case strings.Contains(codeStr, "ASSESSMENT") || strings.Contains(codeStr, "ANSWERS") ||
		strings.Contains(codeStr, "USECASES") || strings.Contains(codeStr, "RESPONSES"):
		return "ASSESSMENT"
	case strings.Contains(codeStr, "CATALOG"):
		return "CATALOG"
	case strings.Contains(codeStr, "DATABASE"):
		return "DATABASE"
	case strings.Contains(codeStr, "REPORT"):
		return "REPORTING"
	case strings.Contains(codeStr, "ACTIVITY"):
		return "ACTIVITY"
	case strings.Contains(codeStr, "NOTIFICATION"):
		return "NOTIFICATION"
	case strings.Contains(codeStr, "VALIDATION"):
		return "VALIDATION"
	default:
		return "OTHER"
	}
}
