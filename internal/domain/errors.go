package domain

import (
	"errors"
	"fmt"
)

// ErrorCode represents a machine-readable error code
type ErrorCode string

const (
	// Configuration errors (fatal, raised at processor construction)
	ErrorCodeConfigMissing ErrorCode = "CONFIG_MISSING"

	// Notification validation errors
	ErrorCodeSignatureInvalid     ErrorCode = "SIGNATURE_INVALID"
	ErrorCodePartialAuthorization ErrorCode = "PARTIAL_AUTHORIZATION"

	// Non-success gateway decisions (DECISION_*)
	ErrorCodeDecisionCancelled ErrorCode = "DECISION_CANCELLED"
	ErrorCodeDecisionDeclined  ErrorCode = "DECISION_DECLINED"
	ErrorCodeDecisionError     ErrorCode = "DECISION_ERROR"
	ErrorCodeDecisionUnknown   ErrorCode = "DECISION_UNKNOWN"

	// Gateway transport/protocol errors (GATEWAY_*)
	ErrorCodeGatewayError   ErrorCode = "GATEWAY_ERROR"
	ErrorCodeGatewayTimeout ErrorCode = "GATEWAY_TIMEOUT"

	// Validation errors (VALIDATION_*)
	ErrorCodeValidationFailed       ErrorCode = "VALIDATION_FAILED"
	ErrorCodeValidationMissingField ErrorCode = "VALIDATION_MISSING_FIELD"

	// Ledger / persistence errors
	ErrorCodeLedgerError    ErrorCode = "LEDGER_ERROR"
	ErrorCodeSourceNotFound ErrorCode = "SOURCE_NOT_FOUND"

	// Authentication errors (AUTH_*)
	ErrorCodeAuthMissing ErrorCode = "AUTH_MISSING"
	ErrorCodeAuthInvalid ErrorCode = "AUTH_INVALID"
)

// DomainError represents a structured domain error with error code and context
type DomainError struct {
	Err     error
	Details map[string]interface{}
	Code    ErrorCode
	Message string
}

// Error implements the error interface
func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying error for errors.Is/As support
func (e *DomainError) Unwrap() error {
	return e.Err
}

// WithDetail adds a detail field to the error
func (e *DomainError) WithDetail(key string, value interface{}) *DomainError {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

// NewDomainError creates a new domain error
func NewDomainError(code ErrorCode, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
		Details: make(map[string]interface{}),
	}
}

// WrapError wraps an existing error with a domain error code
func WrapError(code ErrorCode, message string, err error) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
		Details: make(map[string]interface{}),
		Err:     err,
	}
}

// IsDomainError checks if an error is a DomainError with the given code
func IsDomainError(err error, code ErrorCode) bool {
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr.Code == code
	}
	return false
}

// GetErrorCode extracts the error code from an error, returns empty string if not a DomainError
func GetErrorCode(err error) ErrorCode {
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr.Code
	}
	return ""
}

// IsDecisionError reports whether an error represents an expected non-success
// gateway decision (surfaced to the caller for user messaging, never retried here).
func IsDecisionError(err error) bool {
	code := GetErrorCode(err)
	return code == ErrorCodeDecisionCancelled ||
		code == ErrorCodeDecisionDeclined ||
		code == ErrorCodeDecisionError ||
		code == ErrorCodeDecisionUnknown
}

// IsGatewayError checks if an error is a gateway transport/protocol error
func IsGatewayError(err error) bool {
	code := GetErrorCode(err)
	return code == ErrorCodeGatewayError || code == ErrorCodeGatewayTimeout
}
