package persistence

import (
	"context"
	"errors"

	"github.com/brightcart/backend/internal/domain/shared"
	"github.com/brightcart/backend/internal/domain/trade"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormOrderRepository implements trade.OrderRepository using GORM
type GormOrderRepository struct {
	db *gorm.DB
}

// NewGormOrderRepository creates a new GormOrderRepository
func NewGormOrderRepository(db *gorm.DB) *GormOrderRepository {
	return &GormOrderRepository{db: db}
}

// Create creates a new order with its line items. The connection opts out
// of GORM's per-statement transactions, so the order and item inserts are
// wrapped explicitly to stay atomic.
func (r *GormOrderRepository) Create(ctx context.Context, order *trade.Order) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Create(order).Error
	})
}

// Update updates an existing order. Line items are immutable after
// creation, so the association is skipped.
func (r *GormOrderRepository) Update(ctx context.Context, order *trade.Order) error {
	result := r.db.WithContext(ctx).Omit(clause.Associations).Save(order)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// FindByID finds an order by its ID
func (r *GormOrderRepository) FindByID(ctx context.Context, id uuid.UUID) (*trade.Order, error) {
	var order trade.Order
	if err := r.db.WithContext(ctx).
		Preload("Items").
		First(&order, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &order, nil
}

// FindAll returns orders matching the filter with pagination, newest first
func (r *GormOrderRepository) FindAll(ctx context.Context, filter trade.OrderFilter) ([]*trade.Order, int64, error) {
	var orders []*trade.Order
	var total int64

	query := r.db.WithContext(ctx).Model(&trade.Order{})

	if filter.AccountID != nil {
		query = query.Where("account_id = ?", *filter.AccountID)
	}
	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = query.Preload("Items").
		Order("created_at DESC").
		Offset(filter.Offset()).Limit(filter.Limit())

	if err := query.Find(&orders).Error; err != nil {
		return nil, 0, err
	}
	return orders, total, nil
}

// Ensure GormOrderRepository implements trade.OrderRepository
var _ trade.OrderRepository = (*GormOrderRepository)(nil)
