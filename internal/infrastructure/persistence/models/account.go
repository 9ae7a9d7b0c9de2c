package models

import (
	"github.com/brightcart/backend/internal/domain/account"
	"github.com/brightcart/backend/internal/domain/shared"
)

// AccountModel is the persistence model for the Account domain entity.
// ExternalID is nullable so unlinked accounts carry no linkage row value;
// the unique index still holds for linked accounts because Postgres
// treats NULLs as distinct.
type AccountModel struct {
	AggregateModel
	ExternalID  *string      `gorm:"type:varchar(100);uniqueIndex"`
	Email       string       `gorm:"type:varchar(320);not null;uniqueIndex"`
	DisplayName string       `gorm:"type:varchar(200)"`
	Role        account.Role `gorm:"type:varchar(20);not null;default:'standard'"`
	IsActive    bool         `gorm:"not null;default:true"`
}

// TableName returns the table name for GORM
func (AccountModel) TableName() string {
	return "accounts"
}

// ToDomain converts the persistence model to a domain Account entity.
// Reconstruction does not raise domain events.
func (m *AccountModel) ToDomain() *account.Account {
	return &account.Account{
		BaseAggregateRoot: shared.BaseAggregateRoot{
			BaseEntity: shared.BaseEntity{
				ID:        m.ID,
				CreatedAt: m.CreatedAt,
				UpdatedAt: m.UpdatedAt,
			},
			Version: m.Version,
		},
		ExternalID:  m.ExternalID,
		Email:       m.Email,
		DisplayName: m.DisplayName,
		Role:        m.Role,
		IsActive:    m.IsActive,
	}
}

// FromDomain populates the persistence model from a domain Account entity.
func (m *AccountModel) FromDomain(a *account.Account) {
	m.FromDomainAggregateRoot(a.BaseAggregateRoot)
	m.ExternalID = a.ExternalID
	m.Email = a.Email
	m.DisplayName = a.DisplayName
	m.Role = a.Role
	m.IsActive = a.IsActive
}

// AccountModelFromDomain creates a new persistence model from a domain Account entity.
func AccountModelFromDomain(a *account.Account) *AccountModel {
	m := &AccountModel{}
	m.FromDomain(a)
	return m
}
