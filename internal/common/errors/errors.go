// Package errors provides standardized error handling for the skin-scan
// BPMN workflow integration.
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
	ErrCodeSubscriptionInvalid     ErrorCode = "SUBSCRIPTION_INVALID"
	ErrCodeSubscriptionExpired     ErrorCode = "SUBSCRIPTION_EXPIRED"
	ErrCodeSubscriptionCheckFailed ErrorCode = "SUBSCRIPTION_CHECK_FAILED"
	ErrCodeScanLimitExceeded       ErrorCode = "SCAN_LIMIT_EXCEEDED"

	ErrCodeVisionAnalysisFailed ErrorCode = "VISION_ANALYSIS_FAILED"
	ErrCodeVisionAPITimeout     ErrorCode = "VISION_API_TIMEOUT"

	// MALFORMED_MODEL_OUTPUT is recorded for observability only. The
	// normalizer substitutes defaults instead of failing the job, because
	// the upstream vision model is inherently unreliable.
	ErrCodeMalformedModelOutput ErrorCode = "MALFORMED_MODEL_OUTPUT"

	// CONFIG_INVALID marks a broken constant table (missing metric default,
	// empty catalog). This is a deployment error and aborts process start.
	ErrCodeConfigInvalid ErrorCode = "CONFIG_INVALID"

	// PROJECTION_INCONSISTENT marks a restricted view whose issue_count
	// diverged from its preview length. Never served to a caller.
	ErrCodeProjectionInconsistent ErrorCode = "PROJECTION_INCONSISTENT"

	ErrCodeDatabaseConnectionFailed ErrorCode = "DATABASE_CONNECTION_FAILED"
	ErrCodeScanPersistFailed        ErrorCode = "SCAN_PERSIST_FAILED"
	ErrCodeScanIndexFailed          ErrorCode = "SCAN_INDEX_FAILED"
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

// NewSubscriptionInvalidError creates a non-retryable subscription error.
func NewSubscriptionInvalidError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeSubscriptionInvalid,
		Message:   "Invalid or not found subscription",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewSubscriptionExpiredError creates a non-retryable subscription error.
func NewSubscriptionExpiredError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeSubscriptionExpired,
		Message:   "Subscription has expired",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewSubscriptionCheckFailedError creates a retryable database error.
func NewSubscriptionCheckFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeSubscriptionCheckFailed,
		Message:   "Database error during subscription check",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewScanLimitExceededError creates a non-retryable quota error for free-tier users.
func NewScanLimitExceededError(userID string, used, limit int) *StandardError {
	return &StandardError{
		Code:      ErrCodeScanLimitExceeded,
		Message:   "Monthly scan limit reached for plan",
		Details:   fmt.Sprintf("userId: %s, used: %d, limit: %d", userID, used, limit),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewVisionAnalysisFailedError creates a retryable vision-model API error.
func NewVisionAnalysisFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeVisionAnalysisFailed,
		Message:   "Vision analysis API error",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewVisionAPITimeoutError creates a retryable vision-model timeout error.
func NewVisionAPITimeoutError() *StandardError {
	return &StandardError{
		Code:      ErrCodeVisionAPITimeout,
		Message:   "Vision analysis API timeout",
		Details:   "API call exceeded timeout threshold",
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewMalformedModelOutputError records a substituted vision-model field.
// It is logged, never thrown: the normalizer always produces a usable Analysis.
func NewMalformedModelOutputError(field, details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeMalformedModelOutput,
		Message:   "Vision model output field substituted with default",
		Details:   fmt.Sprintf("field: %s, %s", field, details),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewConfigInvalidError creates a non-retryable startup configuration error.
func NewConfigInvalidError(table, details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeConfigInvalid,
		Message:   "Rule table configuration is invalid",
		Details:   fmt.Sprintf("table: %s, %s", table, details),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewProjectionInconsistentError creates a non-retryable invariant violation error.
func NewProjectionInconsistentError(issueCount, previewLen int) *StandardError {
	return &StandardError{
		Code:      ErrCodeProjectionInconsistent,
		Message:   "Restricted view issue count diverged from preview length",
		Details:   fmt.Sprintf("issueCount: %d, previewLen: %d", issueCount, previewLen),
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

// NewScanPersistFailedError creates a retryable scan insert error.
func NewScanPersistFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeScanPersistFailed,
		Message:   "Scan record insert failed",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewScanIndexFailedError creates a retryable search index error.
func NewScanIndexFailedError(scanID string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeScanIndexFailed,
		Message:   "Scan search indexing failed",
		Details:   fmt.Sprintf("scanId: %s, error: %s", scanID, err.Error()),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// ==========================
// 4. Error Conversion to BPMN
// ==========================

// BPMNErrorMapping maps internal error codes to BPMN error codes (identical
// by convention, kept explicit so renames surface in review).
var BPMNErrorMapping = map[ErrorCode]string{
	ErrCodeSubscriptionInvalid:      "SUBSCRIPTION_INVALID",
	ErrCodeSubscriptionExpired:      "SUBSCRIPTION_EXPIRED",
	ErrCodeSubscriptionCheckFailed:  "SUBSCRIPTION_CHECK_FAILED",
	ErrCodeScanLimitExceeded:        "SCAN_LIMIT_EXCEEDED",
	ErrCodeVisionAnalysisFailed:     "VISION_ANALYSIS_FAILED",
	ErrCodeVisionAPITimeout:         "VISION_API_TIMEOUT",
	ErrCodeMalformedModelOutput:     "MALFORMED_MODEL_OUTPUT",
	ErrCodeConfigInvalid:            "CONFIG_INVALID",
	ErrCodeProjectionInconsistent:   "PROJECTION_INCONSISTENT",
	ErrCodeDatabaseConnectionFailed: "DATABASE_CONNECTION_FAILED",
	ErrCodeScanPersistFailed:        "SCAN_PERSIST_FAILED",
	ErrCodeScanIndexFailed:          "SCAN_INDEX_FAILED",
}

// GetRetryCount returns the recommended retry count per error code.
// The four pure pipeline stages never retry: identical input reproduces the
// identical result, so re-invocation cannot change the outcome.
func GetRetryCount(code ErrorCode) int {
	switch code {
	case ErrCodeSubscriptionCheckFailed,
		ErrCodeDatabaseConnectionFailed,
		ErrCodeScanPersistFailed,
		ErrCodeScanIndexFailed,
		ErrCodeVisionAnalysisFailed:
		return 3 // Retryable technical errors

	case ErrCodeVisionAPITimeout:
		return 2

	default:
		return 0 // Business errors and invariant violations: no retry
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
	case strings.Contains(codeStr, "SUBSCRIPTION") || strings.Contains(codeStr, "LIMIT"):
		return "SUBSCRIPTION"
	case strings.Contains(codeStr, "VISION") || strings.Contains(codeStr, "MODEL"):
		return "AI"
	case strings.Contains(codeStr, "DATABASE") || strings.Contains(codeStr, "PERSIST") || strings.Contains(codeStr, "INDEX"):
		return "DATABASE"
	case strings.Contains(codeStr, "CONFIG") || strings.Contains(codeStr, "PROJECTION"):
		return "INTERNAL"
	default:
		return "OTHER"
	}
}
