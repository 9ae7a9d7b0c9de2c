package trade

import (
	"context"

	"github.com/google/uuid"
)

// OrderRepository defines the interface for order persistence
type OrderRepository interface {
	Create(ctx context.Context, order *Order) error
	Update(ctx context.Context, order *Order) error
	FindByID(ctx context.Context, id uuid.UUID) (*Order, error)
	FindAll(ctx context.Context, filter OrderFilter) ([]*Order, int64, error)
}

// OrderFilter contains filter options for querying orders
type OrderFilter struct {
	AccountID *uuid.UUID
	Status    *OrderStatus

	Page     int
	PageSize int
}

// NewOrderFilter creates a new OrderFilter with default values
func NewOrderFilter() OrderFilter {
	return OrderFilter{
		Page:     1,
		PageSize: 20,
	}
}

// WithAccount sets the account filter
func (f OrderFilter) WithAccount(accountID uuid.UUID) OrderFilter {
	f.AccountID = &accountID
	return f
}

// WithStatus sets the status filter
func (f OrderFilter) WithStatus(status OrderStatus) OrderFilter {
	f.Status = &status
	return f
}

// WithPagination sets pagination parameters
func (f OrderFilter) WithPagination(page, pageSize int) OrderFilter {
	f.Page = page
	f.PageSize = pageSize
	return f
}

// Offset returns the offset for pagination
func (f OrderFilter) Offset() int {
	if f.Page <= 0 {
		return 0
	}
	return (f.Page - 1) * f.PageSize
}

// Limit returns the limit for pagination
func (f OrderFilter) Limit() int {
	if f.PageSize <= 0 {
		return 20
	}
	if f.PageSize > 100 {
		return 100
	}
	return f.PageSize
}
