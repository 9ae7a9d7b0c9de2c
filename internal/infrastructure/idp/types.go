package idp

import (
	"time"

	"github.com/brightcart/backend/internal/domain/integration"
)

// metadataRoleKey is the key under which the store's role hint lives in
// an identity's metadata bag. The bag is shared with other consumers of
// the provider, so only this key is ever read or written.
const metadataRoleKey = "role"

// ---------------------------------------------------------------------------
// Common Response Types
// ---------------------------------------------------------------------------

// ErrorResponse is the error envelope returned by the identity provider
// on non-2xx responses
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail carries the provider's machine-readable error information
type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ---------------------------------------------------------------------------
// Identity Types
// ---------------------------------------------------------------------------

// Identity represents an identity object as the provider serves it
type Identity struct {
	// ID is the provider-assigned opaque identifier
	ID string `json:"id"`
	// Email is the identity's email address
	Email string `json:"email"`
	// DisplayName is the human-readable name, may be empty
	DisplayName string `json:"display_name,omitempty"`
	// Metadata is the free-form string bag attached to the identity
	Metadata map[string]string `json:"metadata,omitempty"`
	// CreatedAt is when the identity was created at the provider
	CreatedAt time.Time `json:"created_at"`
	// LastAuthenticatedAt is the most recent sign-in, null if never
	LastAuthenticatedAt *time.Time `json:"last_authenticated_at,omitempty"`
}

// ToRecord converts the wire identity into the domain snapshot record.
// The role is lifted out of the metadata bag as-is; normalization of
// unrecognized values happens on the store side.
func (i *Identity) ToRecord() integration.IdentityRecord {
	return integration.IdentityRecord{
		ExternalID:          i.ID,
		Email:               i.Email,
		DisplayName:         i.DisplayName,
		Role:                i.Metadata[metadataRoleKey],
		CreatedAt:           i.CreatedAt,
		LastAuthenticatedAt: i.LastAuthenticatedAt,
	}
}

// IdentityListResponse is the paged directory listing response
type IdentityListResponse struct {
	// Identities are the records visible to the presented credential
	Identities []Identity `json:"identities"`
	// NextPageToken is non-empty when more pages remain
	NextPageToken string `json:"next_page_token,omitempty"`
}

// MetadataUpdateRequest is the body for metadata patch calls. Keys not
// present in the map are left untouched at the provider.
type MetadataUpdateRequest struct {
	Metadata map[string]string `json:"metadata"`
}
