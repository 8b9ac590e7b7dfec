package domain

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDomainErrorFormatting(t *testing.T) {
	err := NewDomainError(ErrorCodeSignatureInvalid, "notification signature is invalid")
	assert.Equal(t, "SIGNATURE_INVALID: notification signature is invalid", err.Error())

	wrapped := WrapError(ErrorCodeGatewayError, "credit call failed", errors.New("connection refused"))
	assert.Equal(t, "GATEWAY_ERROR: credit call failed: connection refused", wrapped.Error())
}

func TestDomainErrorUnwrap(t *testing.T) {
	inner := errors.New("connection refused")
	wrapped := WrapError(ErrorCodeGatewayTimeout, "credit call failed", inner)

	assert.ErrorIs(t, wrapped, inner)
	assert.True(t, IsDomainError(wrapped, ErrorCodeGatewayTimeout))

	// A DomainError further wrapped by fmt stays detectable.
	outer := fmt.Errorf("refund attempt: %w", wrapped)
	assert.True(t, IsDomainError(outer, ErrorCodeGatewayTimeout))
	assert.Equal(t, ErrorCodeGatewayTimeout, GetErrorCode(outer))
}

func TestGetErrorCodeNonDomain(t *testing.T) {
	assert.Equal(t, ErrorCode(""), GetErrorCode(errors.New("plain")))
	assert.False(t, IsDomainError(errors.New("plain"), ErrorCodeGatewayError))
}

func TestWithDetail(t *testing.T) {
	err := NewDomainError(ErrorCodePartialAuthorization, "authorized amount differs from requested amount").
		WithDetail("auth_amount", "50.00").
		WithDetail("req_amount", "100.00")

	assert.Equal(t, "50.00", err.Details["auth_amount"])
	assert.Equal(t, "100.00", err.Details["req_amount"])
}

func TestErrorClassPredicates(t *testing.T) {
	assert.True(t, IsDecisionError(NewDomainError(ErrorCodeDecisionDeclined, "declined")))
	assert.True(t, IsDecisionError(NewDomainError(ErrorCodeDecisionCancelled, "cancelled")))
	assert.True(t, IsDecisionError(NewDomainError(ErrorCodeDecisionUnknown, "unknown")))
	assert.False(t, IsDecisionError(NewDomainError(ErrorCodeGatewayError, "gateway")))

	assert.True(t, IsGatewayError(NewDomainError(ErrorCodeGatewayError, "gateway")))
	assert.True(t, IsGatewayError(NewDomainError(ErrorCodeGatewayTimeout, "timeout")))
	assert.False(t, IsGatewayError(NewDomainError(ErrorCodeDecisionError, "decision")))
}
