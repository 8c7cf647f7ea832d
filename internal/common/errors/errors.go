// Package errors provides the standardized error taxonomy of the loan intake flow.
package errors

import (
	stderrors "errors"
	"fmt"
	"strings"
	"time"
)

// ==========================
// 1. Standard Error Types
// ==========================

// ErrorCode represents standardized internal error codes.
type ErrorCode string

// Local validation errors never reach the network.
const (
	ErrCodeDocumentInvalid             ErrorCode = "DOCUMENT_INVALID"
	ErrCodeApplicationValidationFailed ErrorCode = "APPLICATION_VALIDATION_FAILED"
	ErrCodeSubmissionInFlight          ErrorCode = "SUBMISSION_IN_FLIGHT"
)

// Transport / decision service errors.
const (
	ErrCodeDecisionServiceUnavailable ErrorCode = "DECISION_SERVICE_UNAVAILABLE"
	ErrCodeDecisionRequestRejected    ErrorCode = "DECISION_SERVICE_REJECTED_REQUEST"
	ErrCodeDecisionTimeout            ErrorCode = "DECISION_TIMEOUT"
	ErrCodeDecisionResponseInvalid    ErrorCode = "DECISION_RESPONSE_INVALID"
)

// Supporting infrastructure errors. These never change the user-facing outcome.
const (
	ErrCodeJournalWriteFailed ErrorCode = "JOURNAL_WRITE_FAILED"
	ErrCodeGuardUnavailable   ErrorCode = "GUARD_UNAVAILABLE"
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

// StatusCode returns the HTTP status recorded in the metadata, or 0.
func (e *StandardError) StatusCode() int {
	if e.Metadata == nil {
		return 0
	}
	if code, ok := e.Metadata["statusCode"].(int); ok {
		return code
	}
	return 0
}

// ==========================
// 2. Error Constructors
// ==========================

// NewDocumentInvalidError creates a non-retryable identifier validation error.
func NewDocumentInvalidError(kind string) *StandardError {
	return &StandardError{
		Code:      ErrCodeDocumentInvalid,
		Message:   "Identifier failed length or checksum validation",
		Details:   fmt.Sprintf("kind: %s", kind),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewApplicationValidationFailedError creates a non-retryable application validation error.
func NewApplicationValidationFailedError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeApplicationValidationFailed,
		Message:   "Application data validation failed",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewSubmissionInFlightError reports a duplicate submit while another one is pending.
func NewSubmissionInFlightError() *StandardError {
	return &StandardError{
		Code:      ErrCodeSubmissionInFlight,
		Message:   "A submission is already in progress",
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewDecisionServiceUnavailableError wraps a network-level failure.
func NewDecisionServiceUnavailableError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeDecisionServiceUnavailable,
		Message:   "Decision service unreachable",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewDecisionRequestRejectedError wraps a non-2xx answer. The body is kept for
// diagnostics only.
func NewDecisionRequestRejectedError(statusCode int, body string) *StandardError {
	return &StandardError{
		Code:      ErrCodeDecisionRequestRejected,
		Message:   "Decision service returned an error status",
		Details:   fmt.Sprintf("status: %d", statusCode),
		Retryable: statusCode >= 500,
		Metadata: map[string]interface{}{
			"statusCode": statusCode,
			"body":       body,
		},
		Timestamp: time.Now().UTC(),
	}
}

// NewDecisionTimeoutError creates a retryable timeout error.
func NewDecisionTimeoutError(timeout time.Duration) *StandardError {
	return &StandardError{
		Code:      ErrCodeDecisionTimeout,
		Message:   "Decision service timeout",
		Details:   fmt.Sprintf("call exceeded %s", timeout),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewDecisionResponseInvalidError reports a 2xx body that does not carry a decision.
func NewDecisionResponseInvalidError(statusCode int, body, details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeDecisionResponseInvalid,
		Message:   "Decision service response is malformed",
		Details:   details,
		Retryable: false,
		Metadata: map[string]interface{}{
			"statusCode": statusCode,
			"body":       body,
		},
		Timestamp: time.Now().UTC(),
	}
}

// NewJournalWriteFailedError creates a retryable journal insert error.
func NewJournalWriteFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeJournalWriteFailed,
		Message:   "Submission journal insert failed",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewGuardUnavailableError reports that the duplicate-submission guard could not be reached.
func NewGuardUnavailableError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeGuardUnavailable,
		Message:   "Submission guard unavailable",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// ==========================
// 3. Utility Functions
// ==========================

// AsStandardError unwraps err into a StandardError. Foreign errors are
// normalized to INTERNAL_ERROR.
func AsStandardError(err error) *StandardError {
	if err == nil {
		return nil
	}
	var stdErr *StandardError
	if stderrors.As(err, &stdErr) {
		return stdErr
	}
	return &StandardError{
		Code:      "INTERNAL_ERROR",
		Message:   "Unexpected error",
		Details:   err.Error(),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// GetRetryCount returns the recommended retry count for a code.
func GetRetryCount(code ErrorCode) int {
	switch code {
	case ErrCodeDecisionServiceUnavailable,
		ErrCodeJournalWriteFailed,
		ErrCodeGuardUnavailable:
		return 3

	case ErrCodeDecisionTimeout:
		return 1

	default:
		return 0
	}
}

// IsRetryableErrorCode checks if an error code is retryable.
func IsRetryableErrorCode(code ErrorCode) bool {
	return GetRetryCount(code) > 0
}

// GetErrorCategory returns the category of the error code.
func GetErrorCategory(code ErrorCode) string {
	codeStr := string(code)
	switch {
	case strings.HasPrefix(codeStr, "DECISION"):
		return "TRANSPORT"
	case strings.Contains(codeStr, "JOURNAL") || strings.Contains(codeStr, "GUARD"):
		return "STORAGE"
	case strings.Contains(codeStr, "INVALID") || strings.Contains(codeStr, "VALIDATION") ||
		strings.Contains(codeStr, "IN_FLIGHT"):
		return "VALIDATION"
	default:
		return "OTHER"
	}
}
