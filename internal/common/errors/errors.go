// Package errors provides the standardized error taxonomy for the ingest
// gateway. Handlers translate these into problem-detail responses; nothing
// above the two idempotent remote calls retries a whole orchestration.
package errors

import (
	"errors"
	"fmt"
	"time"
)

// ErrorCode represents standardized internal error codes.
type ErrorCode string

const (
	ErrCodeValidationFailed    ErrorCode = "VALIDATION_FAILED"
	ErrCodeAktoerResolution    ErrorCode = "AKTOER_RESOLUTION_FAILED"
	ErrCodeDokumentStorage     ErrorCode = "DOKUMENT_STORAGE_FAILED"
	ErrCodePublishFailed       ErrorCode = "PUBLISH_FAILED"
	ErrCodeConfiguration       ErrorCode = "CONFIGURATION_ERROR"
	ErrCodeAccessTokenFailed   ErrorCode = "ACCESS_TOKEN_FAILED"
	ErrCodeEntityParsingFailed ErrorCode = "ENTITY_PARSING_FAILED"
)

// GatewayError represents a structured application error.
type GatewayError struct {
	Code      ErrorCode `json:"code"`
	Message   string    `json:"message"`
	Details   string    `json:"details,omitempty"`
	Retryable bool      `json:"retryable"`
	Timestamp time.Time `json:"timestamp"`
}

func (e *GatewayError) Error() string {
	return fmt.Sprintf("GatewayError[%s]: %s", e.Code, e.Message)
}

// Is lets errors.Is match on the code so callers can classify wrapped errors.
func (e *GatewayError) Is(target error) bool {
	var ge *GatewayError
	if errors.As(target, &ge) {
		return e.Code == ge.Code
	}
	return false
}

// NewResolutionError creates a non-retryable identity resolution error. The
// downstream response body goes into Details for diagnosis.
func NewResolutionError(message, details string) *GatewayError {
	return &GatewayError{
		Code:      ErrCodeAktoerResolution,
		Message:   message,
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewStorageError creates an attachment-persistence error. A failed batch
// must never lead to a partial publish.
func NewStorageError(message string, err error) *GatewayError {
	details := ""
	if err != nil {
		details = err.Error()
	}
	return &GatewayError{
		Code:      ErrCodeDokumentStorage,
		Message:   message,
		Details:   details,
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewPublishError creates a broker-send error. The orchestrator does not
// retry it; re-submission is the caller's call.
func NewPublishError(topic string, err error) *GatewayError {
	return &GatewayError{
		Code:      ErrCodePublishFailed,
		Message:   fmt.Sprintf("failed to publish to topic '%s'", topic),
		Details:   err.Error(),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewConfigurationError creates a fatal contract/config error. Fail fast
// rather than serve degraded traffic.
func NewConfigurationError(message string) *GatewayError {
	return &GatewayError{
		Code:      ErrCodeConfiguration,
		Message:   message,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewAccessTokenError creates a retryable token-fetch error.
func NewAccessTokenError(err error) *GatewayError {
	return &GatewayError{
		Code:      ErrCodeAccessTokenFailed,
		Message:   "failed to obtain access token",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewParseError creates a non-retryable inbound entity parse error.
func NewParseError(message string, err error) *GatewayError {
	details := ""
	if err != nil {
		details = err.Error()
	}
	return &GatewayError{
		Code:      ErrCodeEntityParsingFailed,
		Message:   message,
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// IsCode reports whether err is (or wraps) a GatewayError with the given code.
func IsCode(err error, code ErrorCode) bool {
	var ge *GatewayError
	if errors.As(err, &ge) {
		return ge.Code == code
	}
	return false
}
