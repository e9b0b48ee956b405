// Package errors provides structured domain errors with i18n support.
package errors

import (
	"net/http"

	"google.golang.org/grpc/codes"
)

// Code is a machine-readable error code.
type Code string

const (
	// CodeUnknown represents an unknown error.
	CodeUnknown Code = "UNKNOWN"

	// Session flow errors
	CodeNotYourSession      Code = "NOT_YOUR_SESSION"
	CodeStaleSession        Code = "STALE_SESSION"
	CodeInsufficientBalance Code = "INSUFFICIENT_BALANCE"
	CodeSessionInProgress   Code = "SESSION_IN_PROGRESS"
	CodeNotYourConfirmation Code = "NOT_YOUR_CONFIRMATION"

	// Character errors
	CodeCharacterNameEmpty        Code = "CHARACTER_NAME_EMPTY"
	CodeCharacterNameTooLong      Code = "CHARACTER_NAME_TOO_LONG"
	CodeCharacterBackstoryEmpty   Code = "CHARACTER_BACKSTORY_EMPTY"
	CodeCharacterBackstoryTooLong Code = "CHARACTER_BACKSTORY_TOO_LONG"
	CodeCharacterTraitsTooLong    Code = "CHARACTER_TRAITS_TOO_LONG"
	CodeCharacterRequired         Code = "CHARACTER_REQUIRED"

	// Ledger and access errors
	CodeCreditAmountInvalid Code = "CREDIT_AMOUNT_INVALID"
	CodePermissionDenied    Code = "PERMISSION_DENIED"
	CodeUnauthenticated     Code = "UNAUTHENTICATED"
	CodeInvalidArgument     Code = "INVALID_ARGUMENT"
	CodeNotFound            Code = "NOT_FOUND"

	// Dependency failures
	CodeTransport Code = "TRANSPORT"
	CodeGenerator Code = "GENERATOR"
	CodeStorage   Code = "STORAGE"
)

// GRPCCode maps domain codes to gRPC status codes.
func (c Code) GRPCCode() codes.Code {
	switch c {
	case CodeCharacterNameEmpty,
		CodeCharacterNameTooLong,
		CodeCharacterBackstoryEmpty,
		CodeCharacterBackstoryTooLong,
		CodeCharacterTraitsTooLong,
		CodeCreditAmountInvalid,
		CodeInvalidArgument:
		return codes.InvalidArgument

	case CodeStaleSession,
		CodeInsufficientBalance,
		CodeSessionInProgress,
		CodeCharacterRequired:
		return codes.FailedPrecondition

	case CodeNotYourSession,
		CodeNotYourConfirmation,
		CodePermissionDenied:
		return codes.PermissionDenied

	case CodeUnauthenticated:
		return codes.Unauthenticated

	case CodeNotFound:
		return codes.NotFound

	case CodeTransport:
		return codes.Unavailable

	default:
		return codes.Internal
	}
}

// HTTPStatus maps domain codes to HTTP status codes.
func (c Code) HTTPStatus() int {
	switch c.GRPCCode() {
	case codes.InvalidArgument:
		return http.StatusBadRequest
	case codes.FailedPrecondition:
		return http.StatusConflict
	case codes.PermissionDenied:
		return http.StatusForbidden
	case codes.Unauthenticated:
		return http.StatusUnauthorized
	case codes.NotFound:
		return http.StatusNotFound
	case codes.Unavailable:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
