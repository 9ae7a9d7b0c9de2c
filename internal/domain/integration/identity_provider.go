package integration

import (
	"context"
	"errors"
	"strings"
	"time"
)

// ---------------------------------------------------------------------------
// IdentityProvider Errors
// ---------------------------------------------------------------------------

var (
	// Provider errors
	ErrProviderNotConfigured   = errors.New("integration: identity provider not configured")
	ErrProviderUnavailable     = errors.New("integration: identity provider temporarily unavailable")
	ErrProviderRequestFailed   = errors.New("integration: identity provider request failed")
	ErrProviderInvalidResponse = errors.New("integration: invalid identity provider response")
	ErrProviderAuthFailed      = errors.New("integration: identity provider authorization failed")
	ErrProviderRateLimited     = errors.New("integration: identity provider rate limited")

	// Identity errors
	ErrIdentityNotFound = errors.New("integration: identity not found at provider")
	ErrInvalidRoleValue = errors.New("integration: invalid role value for identity metadata")
	ErrMissingCredential = errors.New("integration: provider credential is required")
)

// ---------------------------------------------------------------------------
// Value Objects
// ---------------------------------------------------------------------------

// Credential carries the bearer token used against the identity provider.
// Visibility at the provider follows the credential: a caller token
// typically only reads the caller's own identity, while the configured
// service credential reads the full directory.
type Credential struct {
	// AccessToken is the bearer token presented to the provider
	AccessToken string
	// Privileged marks the configured service credential
	Privileged bool
}

// Validate validates the credential
func (c Credential) Validate() error {
	if strings.TrimSpace(c.AccessToken) == "" {
		return ErrMissingCredential
	}
	return nil
}

// IdentityRecord is a read-mostly snapshot of an identity at the provider.
// Role is whatever string sits in the identity's metadata bag; it is
// normalized on the store side, never here.
type IdentityRecord struct {
	// ExternalID is the opaque provider-assigned key
	ExternalID string
	// Email is the identity's email address
	Email string
	// DisplayName is the identity's display name
	DisplayName string
	// Role is the free-form role value from the identity metadata bag
	Role string
	// CreatedAt is when the identity was created at the provider
	CreatedAt time.Time
	// LastAuthenticatedAt is when the identity last signed in, if known
	LastAuthenticatedAt *time.Time
}

// RoleUpdate is a request to write a role value into an identity's
// metadata bag at the provider.
type RoleUpdate struct {
	// ExternalID identifies the identity to update
	ExternalID string
	// Role is the role value to write
	Role string
}

// Validate validates the role update request
func (r *RoleUpdate) Validate() error {
	if strings.TrimSpace(r.ExternalID) == "" {
		return ErrIdentityNotFound
	}
	if strings.TrimSpace(r.Role) == "" {
		return ErrInvalidRoleValue
	}
	return nil
}

// ---------------------------------------------------------------------------
// IdentityProvider Port Interface
// ---------------------------------------------------------------------------

// IdentityProvider defines the port interface for the external identity
// provider. It is defined in the domain layer following the Ports &
// Adapters pattern; the HTTP adapter lives in the infrastructure layer.
//
// The provider is the system of record for authentication only. The two
// capabilities below are all the reconciliation engine requires.
type IdentityProvider interface {
	// FetchVisibleIdentities returns every identity record the credential
	// is authorized to read. The result is NOT guaranteed exhaustive:
	// without elevated provider access a caller usually sees only their
	// own identity. Absence from this snapshot is never proof that an
	// identity does not exist.
	FetchVisibleIdentities(ctx context.Context, cred Credential) ([]IdentityRecord, error)

	// GetIdentity returns a single identity by its external ID, subject
	// to the same visibility rules as FetchVisibleIdentities.
	GetIdentity(ctx context.Context, cred Credential, externalID string) (*IdentityRecord, error)

	// UpdateRoleMetadata writes the role value into the identity's
	// metadata bag. The caller must be authorized to modify the identity.
	UpdateRoleMetadata(ctx context.Context, cred Credential, update RoleUpdate) error
}
