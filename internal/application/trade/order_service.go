package trade

import (
	"context"
	"errors"
	"time"

	"github.com/brightcart/backend/internal/domain/catalog"
	"github.com/brightcart/backend/internal/domain/shared"
	"github.com/brightcart/backend/internal/domain/trade"
	"github.com/brightcart/backend/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// OrderService handles storefront order operations
type OrderService struct {
	orderRepo   trade.OrderRepository
	productRepo catalog.ProductRepository
	logger      *zap.Logger
}

// NewOrderService creates a new order service
func NewOrderService(
	orderRepo trade.OrderRepository,
	productRepo catalog.ProductRepository,
	logger *zap.Logger,
) *OrderService {
	return &OrderService{
		orderRepo:   orderRepo,
		productRepo: productRepo,
		logger:      logger,
	}
}

// OrderItemInput is one requested line in a new order
type OrderItemInput struct {
	ProductID uuid.UUID
	Quantity  int
}

// PlaceOrderInput contains input for placing an order
type PlaceOrderInput struct {
	AccountID uuid.UUID
	Items     []OrderItemInput
}

// OrderItemDTO represents one order line
type OrderItemDTO struct {
	ProductID uuid.UUID `json:"product_id"`
	Name      string    `json:"name"`
	UnitPrice string    `json:"unit_price"`
	Quantity  int       `json:"quantity"`
	LineTotal string    `json:"line_total"`
}

// OrderDTO represents order data transfer object
type OrderDTO struct {
	ID          uuid.UUID      `json:"id"`
	Number      string         `json:"number"`
	AccountID   uuid.UUID      `json:"account_id"`
	Status      string         `json:"status"`
	TotalAmount string         `json:"total_amount"`
	Items       []OrderItemDTO `json:"items"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
}

// OrderListResult represents paginated order list result
type OrderListResult struct {
	Orders     []OrderDTO `json:"orders"`
	Total      int64      `json:"total"`
	Page       int        `json:"page"`
	PageSize   int        `json:"page_size"`
	TotalPages int        `json:"total_pages"`
}

// Place creates an order from the catalog's current prices. Unit prices
// come from the product records at placement time, never from the caller.
func (s *OrderService) Place(ctx context.Context, input PlaceOrderInput) (*OrderDTO, error) {
	s.logger.Info("Placing order",
		zap.String("account_id", input.AccountID.String()),
		zap.Int("items", len(input.Items)))

	if len(input.Items) == 0 {
		return nil, shared.NewDomainError("EMPTY_ORDER", "Order requires at least one item")
	}

	items := make([]trade.OrderItem, 0, len(input.Items))
	for _, line := range input.Items {
		product, err := s.productRepo.FindByID(ctx, line.ProductID)
		if err != nil {
			if errors.Is(err, shared.ErrNotFound) {
				return nil, shared.NewDomainError("PRODUCT_NOT_FOUND",
					"Product not found: "+line.ProductID.String())
			}
			s.logger.Error("Failed to load product", zap.Error(err))
			return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to load product")
		}
		if product.Status != catalog.ProductStatusActive {
			return nil, shared.NewDomainError("PRODUCT_UNAVAILABLE",
				"Product is not available: "+product.Name)
		}

		items = append(items, trade.OrderItem{
			ProductID: product.ID,
			Name:      product.Name,
			UnitPrice: product.Price,
			Quantity:  line.Quantity,
		})
	}

	order, err := trade.NewOrder(input.AccountID, items)
	if err != nil {
		return nil, err
	}

	if err := s.orderRepo.Create(ctx, order); err != nil {
		s.logger.Error("Failed to create order", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to create order")
	}

	s.logger.Info("Order placed",
		zap.String("order_id", order.ID.String()),
		zap.String("number", order.Number),
		zap.String("total", order.TotalAmount.String()))

	return toOrderDTO(order), nil
}

// GetByID retrieves an order by ID
func (s *OrderService) GetByID(ctx context.Context, id uuid.UUID) (*OrderDTO, error) {
	order, err := s.orderRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NewDomainError("ORDER_NOT_FOUND", "Order not found")
		}
		s.logger.Error("Failed to find order", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to find order")
	}

	return toOrderDTO(order), nil
}

// List retrieves a paginated list of orders
func (s *OrderService) List(ctx context.Context, filter trade.OrderFilter) (*OrderListResult, error) {
	orders, total, err := s.orderRepo.FindAll(ctx, filter)
	if err != nil {
		s.logger.Error("Failed to list orders", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to list orders")
	}

	pageSize := filter.Limit()
	totalPages := int(total) / pageSize
	if int(total)%pageSize > 0 {
		totalPages++
	}

	orderDTOs := make([]OrderDTO, len(orders))
	for i, order := range orders {
		orderDTOs[i] = *toOrderDTO(order)
	}

	return &OrderListResult{
		Orders:     orderDTOs,
		Total:      total,
		Page:       filter.Page,
		PageSize:   pageSize,
		TotalPages: totalPages,
	}, nil
}

// UpdateStatus transitions an order to a new status
func (s *OrderService) UpdateStatus(ctx context.Context, id uuid.UUID, status trade.OrderStatus) (*OrderDTO, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "order", "update_status",
		telemetry.WithAttribute(telemetry.SpanAttrOrderID, id.String()),
		telemetry.WithAttribute(telemetry.SpanAttrOrderStatus, string(status)))
	defer span.End()

	order, err := s.orderRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NewDomainError("ORDER_NOT_FOUND", "Order not found")
		}
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to find order")
	}

	if err := order.UpdateStatus(status); err != nil {
		return nil, err
	}

	if err := s.orderRepo.Update(ctx, order); err != nil {
		s.logger.Error("Failed to update order status", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to update order status")
	}

	s.logger.Info("Order status updated",
		zap.String("order_id", id.String()),
		zap.String("status", status.String()))

	return toOrderDTO(order), nil
}

// Cancel cancels an order on behalf of its owner. Only the owning
// account may cancel through this path.
func (s *OrderService) Cancel(ctx context.Context, id, accountID uuid.UUID) (*OrderDTO, error) {
	order, err := s.orderRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NewDomainError("ORDER_NOT_FOUND", "Order not found")
		}
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to find order")
	}

	if order.AccountID != accountID {
		return nil, shared.NewDomainError("FORBIDDEN", "Order belongs to another account")
	}

	if err := order.UpdateStatus(trade.OrderStatusCancelled); err != nil {
		return nil, err
	}

	if err := s.orderRepo.Update(ctx, order); err != nil {
		s.logger.Error("Failed to cancel order", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to cancel order")
	}

	s.logger.Info("Order cancelled", zap.String("order_id", id.String()))

	return toOrderDTO(order), nil
}

func toOrderDTO(order *trade.Order) *OrderDTO {
	items := make([]OrderItemDTO, len(order.Items))
	for i, item := range order.Items {
		items[i] = OrderItemDTO{
			ProductID: item.ProductID,
			Name:      item.Name,
			UnitPrice: item.UnitPrice.String(),
			Quantity:  item.Quantity,
			LineTotal: item.LineTotal.String(),
		}
	}

	return &OrderDTO{
		ID:          order.ID,
		Number:      order.Number,
		AccountID:   order.AccountID,
		Status:      string(order.Status),
		TotalAmount: order.TotalAmount.String(),
		Items:       items,
		CreatedAt:   order.CreatedAt,
		UpdatedAt:   order.UpdatedAt,
	}
}
