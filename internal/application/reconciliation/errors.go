package reconciliation

import (
	"errors"

	"github.com/brightcart/backend/internal/domain/integration"
	"github.com/brightcart/backend/internal/domain/shared"
)

// Domain error codes surfaced by the reconciliation services. The HTTP
// layer maps these onto status codes; batch operations embed them in
// per-record failure entries instead of aborting.
const (
	ErrCodeProviderUnavailable = "PROVIDER_UNAVAILABLE"
	ErrCodeProviderForbidden   = "PROVIDER_FORBIDDEN"
	ErrCodeNotFound            = "NOT_FOUND"
	ErrCodeValidation          = "VALIDATION_ERROR"
	ErrCodeInternal            = "INTERNAL_ERROR"
)

// classifyProviderError reduces an identity provider error to a domain
// error code. Transient transport trouble is retryable, authorization
// failures are fatal for the record, a vanished identity is a benign race.
func classifyProviderError(err error) string {
	switch {
	case errors.Is(err, integration.ErrProviderAuthFailed),
		errors.Is(err, integration.ErrMissingCredential):
		return ErrCodeProviderForbidden
	case errors.Is(err, integration.ErrIdentityNotFound):
		return ErrCodeNotFound
	case errors.Is(err, integration.ErrInvalidRoleValue):
		return ErrCodeValidation
	case errors.Is(err, integration.ErrProviderUnavailable),
		errors.Is(err, integration.ErrProviderRequestFailed),
		errors.Is(err, integration.ErrProviderRateLimited),
		errors.Is(err, integration.ErrProviderInvalidResponse),
		errors.Is(err, integration.ErrProviderNotConfigured):
		return ErrCodeProviderUnavailable
	default:
		return ErrCodeProviderUnavailable
	}
}

// providerError converts an identity provider error into a DomainError
// for callers that fail the whole request (snapshot fetches, single
// record operations).
func providerError(err error) *shared.DomainError {
	return shared.NewDomainError(classifyProviderError(err), err.Error())
}
