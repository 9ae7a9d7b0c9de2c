package account

import (
	"regexp"
	"strings"
	"time"

	"github.com/brightcart/backend/internal/domain/shared"
)

// Role is the business role an account holds in the store.
// The store is the system of record for authorization, so this value
// always wins over whatever role string the identity provider carries.
type Role string

const (
	RoleAdministrator Role = "administrator" // Full access to the admin panel
	RoleStandard      Role = "standard"      // Regular storefront customer
)

// IsValid checks whether the role is one of the defined values
func (r Role) IsValid() bool {
	switch r {
	case RoleAdministrator, RoleStandard:
		return true
	}
	return false
}

// String returns the string representation of the role
func (r Role) String() string {
	return string(r)
}

// NormalizeRole maps a free-form role value onto the fixed role set.
// Provider-side roles live in an uncontrolled metadata bag, so anything
// that is not a recognized role name collapses to the standard role.
func NormalizeRole(raw string) Role {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case string(RoleAdministrator):
		return RoleAdministrator
	case string(RoleStandard):
		return RoleStandard
	default:
		return RoleStandard
	}
}

// Account represents a store account. It is the aggregate root for
// account operations and the authoritative record for business roles.
type Account struct {
	shared.BaseAggregateRoot
	ExternalID  *string // provider-assigned key; nil means never linked or link lost
	Email       string
	DisplayName string
	Role        Role
	IsActive    bool
}

// NewAccount creates an unlinked account, the self-service signup path.
// New signups always start with the standard role and become linked
// later, either on first import match or never.
func NewAccount(email, displayName string) (*Account, error) {
	email, err := normalizeEmail(email)
	if err != nil {
		return nil, err
	}
	if err := validateDisplayName(displayName); err != nil {
		return nil, err
	}

	account := &Account{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Email:             email,
		DisplayName:       strings.TrimSpace(displayName),
		Role:              RoleStandard,
		IsActive:          true,
	}

	account.AddDomainEvent(NewAccountCreatedEvent(account))

	return account, nil
}

// NewImportedAccount creates an account already linked to a provider
// identity. Role is the caller's responsibility to normalize first.
func NewImportedAccount(externalID, email, displayName string, role Role) (*Account, error) {
	if strings.TrimSpace(externalID) == "" {
		return nil, shared.NewDomainError("INVALID_EXTERNAL_ID", "External ID cannot be empty")
	}
	if !role.IsValid() {
		return nil, shared.NewDomainError("INVALID_ROLE", "Role must be administrator or standard")
	}

	account, err := NewAccount(email, displayName)
	if err != nil {
		return nil, err
	}

	externalID = strings.TrimSpace(externalID)
	account.ExternalID = &externalID
	account.Role = role

	account.AddDomainEvent(NewAccountLinkedEvent(account, externalID))

	return account, nil
}

// IsLinked reports whether the account is linked to a provider identity
func (a *Account) IsLinked() bool {
	return a.ExternalID != nil && *a.ExternalID != ""
}

// IsOrphaned reports whether the account has no provider linkage.
// Only orphaned accounts are ever eligible for permanent removal.
func (a *Account) IsOrphaned() bool {
	return !a.IsLinked()
}

// CanAuthenticate reports whether the account may be used to sign in
func (a *Account) CanAuthenticate() bool {
	return a.IsActive
}

// SetEmail sets the account's email
func (a *Account) SetEmail(email string) error {
	normalized, err := normalizeEmail(email)
	if err != nil {
		return err
	}

	a.Email = normalized
	a.UpdatedAt = time.Now()
	a.IncrementVersion()

	return nil
}

// SetDisplayName sets the account's display name
func (a *Account) SetDisplayName(displayName string) error {
	if err := validateDisplayName(displayName); err != nil {
		return err
	}

	a.DisplayName = strings.TrimSpace(displayName)
	a.UpdatedAt = time.Now()
	a.IncrementVersion()

	return nil
}

// LinkIdentity links the account to a provider identity. Linking to a
// different identity while already linked is rejected: external IDs map
// one to one and relinking is an operator decision, not a sync side effect.
func (a *Account) LinkIdentity(externalID string) error {
	externalID = strings.TrimSpace(externalID)
	if externalID == "" {
		return shared.NewDomainError("INVALID_EXTERNAL_ID", "External ID cannot be empty")
	}
	if a.IsLinked() {
		if *a.ExternalID == externalID {
			return nil
		}
		return shared.NewDomainError("ALREADY_LINKED", "Account is already linked to a different identity")
	}

	a.ExternalID = &externalID
	a.UpdatedAt = time.Now()
	a.IncrementVersion()

	a.AddDomainEvent(NewAccountLinkedEvent(a, externalID))

	return nil
}

// ChangeRole changes the account's business role. Routine profile sync
// never calls this; only explicit administrative action does.
func (a *Account) ChangeRole(role Role) error {
	if !role.IsValid() {
		return shared.NewDomainError("INVALID_ROLE", "Role must be administrator or standard")
	}
	if a.Role == role {
		return nil
	}

	previous := a.Role
	a.Role = role
	a.UpdatedAt = time.Now()
	a.IncrementVersion()

	a.AddDomainEvent(NewAccountRoleChangedEvent(a, previous, role))

	return nil
}

// Deactivate soft-deletes the account. The row is retained and can be
// reactivated; only a hard delete or the reaper removes it.
func (a *Account) Deactivate() error {
	if !a.IsActive {
		return shared.NewDomainError("INVALID_STATE", "Account is already deactivated")
	}

	a.IsActive = false
	a.UpdatedAt = time.Now()
	a.IncrementVersion()

	a.AddDomainEvent(NewAccountDeactivatedEvent(a))

	return nil
}

// Reactivate re-enables a soft-deleted account
func (a *Account) Reactivate() error {
	if a.IsActive {
		return shared.NewDomainError("INVALID_STATE", "Account is already active")
	}

	a.IsActive = true
	a.UpdatedAt = time.Now()
	a.IncrementVersion()

	a.AddDomainEvent(NewAccountReactivatedEvent(a))

	return nil
}

var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

// NormalizeEmail lowercases and trims an email address so that provider
// and store values compare consistently.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func normalizeEmail(email string) (string, error) {
	email = NormalizeEmail(email)
	if email == "" {
		return "", shared.NewDomainError("INVALID_EMAIL", "Email cannot be empty")
	}
	if len(email) > 320 {
		return "", shared.NewDomainError("INVALID_EMAIL", "Email cannot exceed 320 characters")
	}
	if !emailRegex.MatchString(email) {
		return "", shared.NewDomainError("INVALID_EMAIL", "Email format is invalid")
	}
	return email, nil
}

func validateDisplayName(displayName string) error {
	if len(strings.TrimSpace(displayName)) > 200 {
		return shared.NewDomainError("INVALID_DISPLAY_NAME", "Display name cannot exceed 200 characters")
	}
	return nil
}
