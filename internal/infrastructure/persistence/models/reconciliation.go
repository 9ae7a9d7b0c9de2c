package models

import (
	"time"

	"github.com/brightcart/backend/internal/domain/reconciliation"
	"github.com/brightcart/backend/internal/domain/shared"
)

// ReconciliationRunModel is the persistence model for the reconciliation
// Run audit record. Parameters and Manifest are stored as JSON text so the
// report endpoint can return them verbatim.
type ReconciliationRunModel struct {
	AggregateModel
	Operation      reconciliation.Operation `gorm:"type:varchar(20);not null;index"`
	Actor          string                   `gorm:"type:varchar(100);not null;index"`
	Parameters     string                   `gorm:"type:jsonb;default:'{}'"`
	TotalCount     int                      `gorm:"not null;default:0"`
	SucceededCount int                      `gorm:"not null;default:0"`
	FailedCount    int                      `gorm:"not null;default:0"`
	Manifest       string                   `gorm:"type:jsonb;default:'[]'"`
	StartedAt      time.Time                `gorm:"not null;index"`
	FinishedAt     *time.Time
}

// TableName returns the table name for GORM
func (ReconciliationRunModel) TableName() string {
	return "reconciliation_runs"
}

// ToDomain converts the persistence model to a domain Run entity.
func (m *ReconciliationRunModel) ToDomain() *reconciliation.Run {
	return &reconciliation.Run{
		BaseAggregateRoot: shared.BaseAggregateRoot{
			BaseEntity: shared.BaseEntity{
				ID:        m.ID,
				CreatedAt: m.CreatedAt,
				UpdatedAt: m.UpdatedAt,
			},
			Version: m.Version,
		},
		Operation:      m.Operation,
		Actor:          m.Actor,
		Parameters:     m.Parameters,
		TotalCount:     m.TotalCount,
		SucceededCount: m.SucceededCount,
		FailedCount:    m.FailedCount,
		Manifest:       m.Manifest,
		StartedAt:      m.StartedAt,
		FinishedAt:     m.FinishedAt,
	}
}

// FromDomain populates the persistence model from a domain Run entity.
func (m *ReconciliationRunModel) FromDomain(r *reconciliation.Run) {
	m.FromDomainAggregateRoot(r.BaseAggregateRoot)
	m.Operation = r.Operation
	m.Actor = r.Actor
	m.Parameters = r.Parameters
	m.TotalCount = r.TotalCount
	m.SucceededCount = r.SucceededCount
	m.FailedCount = r.FailedCount
	m.Manifest = r.Manifest
	m.StartedAt = r.StartedAt
	m.FinishedAt = r.FinishedAt
}

// ReconciliationRunModelFromDomain creates a new persistence model from a domain Run entity.
func ReconciliationRunModelFromDomain(r *reconciliation.Run) *ReconciliationRunModel {
	m := &ReconciliationRunModel{}
	m.FromDomain(r)
	return m
}
