package account

import (
	"github.com/brightcart/backend/internal/domain/shared"
)

// Aggregate type constant for Account
const AggregateTypeAccount = "Account"

// Account domain event types
const (
	EventTypeAccountCreated     = "AccountCreated"
	EventTypeAccountLinked      = "AccountLinked"
	EventTypeAccountRoleChanged = "AccountRoleChanged"
	EventTypeAccountDeactivated = "AccountDeactivated"
	EventTypeAccountReactivated = "AccountReactivated"
)

// AccountCreatedEvent is published when an account is created
type AccountCreatedEvent struct {
	shared.BaseDomainEvent
	Email  string `json:"email"`
	Role   Role   `json:"role"`
	Linked bool   `json:"linked"`
}

// NewAccountCreatedEvent creates a new AccountCreatedEvent
func NewAccountCreatedEvent(account *Account) *AccountCreatedEvent {
	return &AccountCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeAccountCreated, account.ID, AggregateTypeAccount),
		Email:           account.Email,
		Role:            account.Role,
		Linked:          account.IsLinked(),
	}
}

// AccountLinkedEvent is published when an account gains a provider linkage
type AccountLinkedEvent struct {
	shared.BaseDomainEvent
	ExternalID string `json:"external_id"`
	Email      string `json:"email"`
}

// NewAccountLinkedEvent creates a new AccountLinkedEvent
func NewAccountLinkedEvent(account *Account, externalID string) *AccountLinkedEvent {
	return &AccountLinkedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeAccountLinked, account.ID, AggregateTypeAccount),
		ExternalID:      externalID,
		Email:           account.Email,
	}
}

// AccountRoleChangedEvent is published when an account's business role changes
type AccountRoleChangedEvent struct {
	shared.BaseDomainEvent
	PreviousRole Role `json:"previous_role"`
	NewRole      Role `json:"new_role"`
}

// NewAccountRoleChangedEvent creates a new AccountRoleChangedEvent
func NewAccountRoleChangedEvent(account *Account, previous, next Role) *AccountRoleChangedEvent {
	return &AccountRoleChangedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeAccountRoleChanged, account.ID, AggregateTypeAccount),
		PreviousRole:    previous,
		NewRole:         next,
	}
}

// AccountDeactivatedEvent is published when an account is soft-deleted
type AccountDeactivatedEvent struct {
	shared.BaseDomainEvent
	Email string `json:"email"`
}

// NewAccountDeactivatedEvent creates a new AccountDeactivatedEvent
func NewAccountDeactivatedEvent(account *Account) *AccountDeactivatedEvent {
	return &AccountDeactivatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeAccountDeactivated, account.ID, AggregateTypeAccount),
		Email:           account.Email,
	}
}

// AccountReactivatedEvent is published when a soft-deleted account is restored
type AccountReactivatedEvent struct {
	shared.BaseDomainEvent
	Email string `json:"email"`
}

// NewAccountReactivatedEvent creates a new AccountReactivatedEvent
func NewAccountReactivatedEvent(account *Account) *AccountReactivatedEvent {
	return &AccountReactivatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeAccountReactivated, account.ID, AggregateTypeAccount),
		Email:           account.Email,
	}
}
