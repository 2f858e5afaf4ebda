// internal/common/errors/errors_test.go
package errors

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ==========================
// BPMN Conversion Tests
// ==========================

func TestConvertToBPMNError_RetryableTechnicalError(t *testing.T) {
	stdErr := NewScanPersistFailedError(fmt.Errorf("connection reset"))

	bpmnErr := ConvertToBPMNError(stdErr)

	assert.Equal(t, "SCAN_PERSIST_FAILED", bpmnErr.Code)
	assert.True(t, bpmnErr.Retryable)
	assert.Equal(t, 3, bpmnErr.Retries)
	assert.Equal(t, string(ErrCodeScanPersistFailed), bpmnErr.ErrorVariables["originalErrorCode"])
}

func TestConvertToBPMNError_BusinessErrorNeverRetries(t *testing.T) {
	stdErr := NewScanLimitExceededError("user-1", 4, 3)

	bpmnErr := ConvertToBPMNError(stdErr)

	assert.Equal(t, "SCAN_LIMIT_EXCEEDED", bpmnErr.Code)
	assert.False(t, bpmnErr.Retryable)
	assert.Equal(t, 0, bpmnErr.Retries)
}

func TestConvertToBPMNError_TimeoutRetriesTwice(t *testing.T) {
	bpmnErr := ConvertToBPMNError(NewVisionAPITimeoutError())

	assert.Equal(t, "VISION_API_TIMEOUT", bpmnErr.Code)
	assert.Equal(t, 2, bpmnErr.Retries)
}

// A code outside the mapping still reaches the engine verbatim.
func TestConvertToBPMNError_UnmappedCodePassesThrough(t *testing.T) {
	stdErr := &StandardError{
		Code:      "INPUT_PARSING_FAILED",
		Message:   "Failed to parse job variables",
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}

	bpmnErr := ConvertToBPMNError(stdErr)

	assert.Equal(t, "INPUT_PARSING_FAILED", bpmnErr.Code)
	assert.Equal(t, 0, bpmnErr.Retries)
}

// A non-retryable flag wins even when the code's retry budget is positive.
func TestConvertToBPMNError_NonRetryableFlagZeroesRetries(t *testing.T) {
	stdErr := &StandardError{
		Code:      ErrCodeScanPersistFailed,
		Message:   "insert rejected",
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}

	bpmnErr := ConvertToBPMNError(stdErr)

	assert.Equal(t, 0, bpmnErr.Retries)
}

func TestToErrorVariables(t *testing.T) {
	bpmnErr := ConvertToBPMNError(NewSubscriptionCheckFailedError(fmt.Errorf("timeout")))
	bpmnErr.ErrorVariables["jobAttempt"] = 2

	vars := bpmnErr.ToErrorVariables()

	assert.Equal(t, "SUBSCRIPTION_CHECK_FAILED", vars["errorCode"])
	assert.Equal(t, true, vars["retryable"])
	assert.Equal(t, 2, vars["jobAttempt"])
	require.Contains(t, vars, "timestamp")
	_, err := time.Parse(time.RFC3339, vars["timestamp"].(string))
	assert.NoError(t, err)
}

// ==========================
// Retry Policy Tests
// ==========================

func TestGetRetryCount(t *testing.T) {
	tests := []struct {
		code    ErrorCode
		retries int
	}{
		{ErrCodeSubscriptionCheckFailed, 3},
		{ErrCodeDatabaseConnectionFailed, 3},
		{ErrCodeScanPersistFailed, 3},
		{ErrCodeScanIndexFailed, 3},
		{ErrCodeVisionAnalysisFailed, 3},
		{ErrCodeVisionAPITimeout, 2},
		{ErrCodeSubscriptionInvalid, 0},
		{ErrCodeScanLimitExceeded, 0},
		{ErrCodeConfigInvalid, 0},
		{ErrCodeProjectionInconsistent, 0},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.retries, GetRetryCount(tt.code), "code %s", tt.code)
		assert.Equal(t, tt.retries > 0, IsRetryableErrorCode(tt.code), "code %s", tt.code)
	}
}

// ==========================
// Category Tests
// ==========================

func TestGetErrorCategory(t *testing.T) {
	tests := []struct {
		code     ErrorCode
		category string
	}{
		{ErrCodeSubscriptionExpired, "SUBSCRIPTION"},
		{ErrCodeScanLimitExceeded, "SUBSCRIPTION"},
		{ErrCodeVisionAPITimeout, "AI"},
		{ErrCodeMalformedModelOutput, "AI"},
		{ErrCodeDatabaseConnectionFailed, "DATABASE"},
		{ErrCodeScanPersistFailed, "DATABASE"},
		{ErrCodeScanIndexFailed, "DATABASE"},
		{ErrCodeConfigInvalid, "INTERNAL"},
		{ErrCodeProjectionInconsistent, "INTERNAL"},
		{"INPUT_PARSING_FAILED", "OTHER"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.category, GetErrorCategory(tt.code), "code %s", tt.code)
	}
}

// ==========================
// Constructor Tests
// ==========================

func TestDatabaseConnectionFailedError(t *testing.T) {
	err := NewDatabaseConnectionFailedError(fmt.Errorf("dial tcp: refused"))

	assert.Equal(t, ErrCodeDatabaseConnectionFailed, err.Code)
	assert.True(t, err.Retryable)
	assert.Contains(t, err.Details, "refused")
}

func TestMalformedModelOutputError(t *testing.T) {
	err := NewMalformedModelOutputError("skin_type", "expected string, got number")

	assert.Equal(t, ErrCodeMalformedModelOutput, err.Code)
	assert.False(t, err.Retryable)
	assert.Contains(t, err.Details, "skin_type")
}

func TestStandardError_ErrorString(t *testing.T) {
	err := NewConfigInvalidError("generate-routine", "missing profile")

	assert.Equal(t, "StandardError[CONFIG_INVALID]: Rule table configuration is invalid", err.Error())
}
