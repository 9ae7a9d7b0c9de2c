package trade

import (
	"fmt"
	"time"

	"github.com/brightcart/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OrderStatus represents the status of an order
type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusPaid      OrderStatus = "paid"
	OrderStatusShipped   OrderStatus = "shipped"
	OrderStatusCompleted OrderStatus = "completed"
	OrderStatusCancelled OrderStatus = "cancelled"
)

// IsValid returns true if the status is one of the defined values
func (s OrderStatus) IsValid() bool {
	switch s {
	case OrderStatusPending, OrderStatusPaid, OrderStatusShipped, OrderStatusCompleted, OrderStatusCancelled:
		return true
	}
	return false
}

// String returns the string representation of the status
func (s OrderStatus) String() string {
	return string(s)
}

var allowedTransitions = map[OrderStatus][]OrderStatus{
	OrderStatusPending: {OrderStatusPaid, OrderStatusCancelled},
	OrderStatusPaid:    {OrderStatusShipped, OrderStatusCancelled},
	OrderStatusShipped: {OrderStatusCompleted},
}

// Order is a storefront order. Order endpoints are plain
// request/response wrappers; there is no fulfillment logic here.
type Order struct {
	shared.BaseAggregateRoot
	Number      string          `gorm:"type:varchar(40);not null;uniqueIndex"`
	AccountID   uuid.UUID       `gorm:"type:uuid;not null;index"`
	Status      OrderStatus     `gorm:"type:varchar(20);not null;default:'pending'"`
	TotalAmount decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	Items       []OrderItem     `gorm:"foreignKey:OrderID"`
}

// TableName returns the table name for GORM
func (Order) TableName() string {
	return "orders"
}

// OrderItem is a line item within an order
type OrderItem struct {
	ID        uuid.UUID       `gorm:"type:uuid;primaryKey"`
	OrderID   uuid.UUID       `gorm:"type:uuid;not null;index"`
	ProductID uuid.UUID       `gorm:"type:uuid;not null"`
	Name      string          `gorm:"type:varchar(200);not null"`
	UnitPrice decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	Quantity  int             `gorm:"not null"`
	LineTotal decimal.Decimal `gorm:"type:decimal(18,4);not null"`
}

// TableName returns the table name for GORM
func (OrderItem) TableName() string {
	return "order_items"
}

// NewOrder creates an order for the given account from line items.
// Totals are derived, not supplied by the caller.
func NewOrder(accountID uuid.UUID, items []OrderItem) (*Order, error) {
	if accountID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_ACCOUNT", "Order requires an account")
	}
	if len(items) == 0 {
		return nil, shared.NewDomainError("EMPTY_ORDER", "Order requires at least one item")
	}

	order := &Order{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Status:            OrderStatusPending,
		AccountID:         accountID,
		TotalAmount:       decimal.Zero,
	}
	order.Number = generateOrderNumber(order.ID)

	for _, item := range items {
		if item.Quantity <= 0 {
			return nil, shared.NewDomainError("INVALID_QUANTITY", "Item quantity must be positive")
		}
		item.ID = uuid.New()
		item.OrderID = order.ID
		item.LineTotal = item.UnitPrice.Mul(decimal.NewFromInt(int64(item.Quantity)))
		order.TotalAmount = order.TotalAmount.Add(item.LineTotal)
		order.Items = append(order.Items, item)
	}

	return order, nil
}

// UpdateStatus transitions the order to a new status
func (o *Order) UpdateStatus(next OrderStatus) error {
	if !next.IsValid() {
		return shared.NewDomainError("INVALID_ORDER_STATUS", "Unknown order status")
	}

	for _, allowed := range allowedTransitions[o.Status] {
		if allowed == next {
			o.Status = next
			o.UpdatedAt = time.Now()
			o.IncrementVersion()
			return nil
		}
	}

	return shared.NewDomainError("INVALID_STATE",
		fmt.Sprintf("Cannot transition order from %s to %s", o.Status, next))
}

func generateOrderNumber(id uuid.UUID) string {
	return fmt.Sprintf("SO-%s-%s", time.Now().Format("20060102"), id.String()[:8])
}
