// Package telemetry provides OpenTelemetry integration for metrics collection.
package telemetry

import (
	"context"

	"gorm.io/gorm"
)

// GormAccountMetricsProvider implements AccountMetricsProvider using GORM.
// It queries the accounts table directly for aggregated metrics.
type GormAccountMetricsProvider struct {
	db *gorm.DB
}

// NewGormAccountMetricsProvider creates a new GormAccountMetricsProvider.
func NewGormAccountMetricsProvider(db *gorm.DB) *GormAccountMetricsProvider {
	return &GormAccountMetricsProvider{db: db}
}

// GetLinkStateCounts returns the number of linked and unlinked accounts.
// An account is linked when it carries a provider external_id.
func (p *GormAccountMetricsProvider) GetLinkStateCounts(ctx context.Context) (int64, int64, error) {
	var linked int64
	err := p.db.WithContext(ctx).
		Table("accounts").
		Where("external_id IS NOT NULL").
		Count(&linked).Error
	if err != nil {
		return 0, 0, err
	}

	var unlinked int64
	err = p.db.WithContext(ctx).
		Table("accounts").
		Where("external_id IS NULL").
		Count(&unlinked).Error
	if err != nil {
		return 0, 0, err
	}

	return linked, unlinked, nil
}

// GetInactiveCount returns the number of deactivated accounts.
func (p *GormAccountMetricsProvider) GetInactiveCount(ctx context.Context) (int64, error) {
	var count int64
	err := p.db.WithContext(ctx).
		Table("accounts").
		Where("is_active = ?", false).
		Count(&count).Error

	return count, err
}

// Ensure GormAccountMetricsProvider implements AccountMetricsProvider
var _ AccountMetricsProvider = (*GormAccountMetricsProvider)(nil)
