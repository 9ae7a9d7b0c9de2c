package handler

import (
	accountapp "github.com/brightcart/backend/internal/application/account"
	tradeapp "github.com/brightcart/backend/internal/application/trade"
	"github.com/brightcart/backend/internal/domain/trade"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// OrderHandler handles storefront order API endpoints
type OrderHandler struct {
	BaseHandler
	orderService   *tradeapp.OrderService
	accountService *accountapp.AccountService
}

// NewOrderHandler creates a new OrderHandler
func NewOrderHandler(orderService *tradeapp.OrderService, accountService *accountapp.AccountService) *OrderHandler {
	return &OrderHandler{
		orderService:   orderService,
		accountService: accountService,
	}
}

// OrderItemRequest represents one requested order line
// @Description One order line: product and quantity
type OrderItemRequest struct {
	ProductID string `json:"product_id" binding:"required,uuid" example:"0d1e3bcd-3c7a-4b85-9a59-1d4c9e2f9f10"`
	Quantity  int    `json:"quantity" binding:"required,min=1,max=1000" example:"2"`
}

// PlaceOrderRequest represents a request to place an order
// @Description Request body for placing a new order
type PlaceOrderRequest struct {
	Items []OrderItemRequest `json:"items" binding:"required,min=1,max=100,dive"`
}

// UpdateOrderStatusRequest represents a request to transition an order
// @Description Request body for an order status transition
type UpdateOrderStatusRequest struct {
	Status string `json:"status" binding:"required,oneof=pending paid shipped completed cancelled" example:"paid"`
}

// ListOrdersRequest represents query parameters for listing orders
// @Description Query parameters for the order listing endpoint
type ListOrdersRequest struct {
	Status   string `form:"status" binding:"omitempty,oneof=pending paid shipped completed cancelled"`
	Page     int    `form:"page" binding:"omitempty,min=1"`
	PageSize int    `form:"page_size" binding:"omitempty,min=1,max=100"`
}

// callerAccount resolves the authenticated identity to its store account
func (h *OrderHandler) callerAccount(c *gin.Context) (*accountapp.AccountDTO, bool) {
	externalID, err := getExternalID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return nil, false
	}

	acct, err := h.accountService.GetByExternalID(c.Request.Context(), externalID)
	if err != nil {
		h.HandleError(c, err)
		return nil, false
	}
	return acct, true
}

// Place godoc
// @ID           placeOrder
// @Summary      Place an order
// @Description  Creates an order from the catalog's current prices. Unit prices come from product records at placement time, never from the caller.
// @Tags         orders
// @Accept       json
// @Produce      json
// @Param        Idempotency-Key header string false "Idempotency key"
// @Param        request body PlaceOrderRequest true "Order request"
// @Success      201 {object} APIResponse[tradeapp.OrderDTO]
// @Failure      400 {object} ErrorResponse
// @Failure      401 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /orders [post]
func (h *OrderHandler) Place(c *gin.Context) {
	acct, ok := h.callerAccount(c)
	if !ok {
		return
	}

	var req PlaceOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	items := make([]tradeapp.OrderItemInput, 0, len(req.Items))
	for _, line := range req.Items {
		productID, err := uuid.Parse(line.ProductID)
		if err != nil {
			h.BadRequest(c, "Invalid product ID: "+line.ProductID)
			return
		}
		items = append(items, tradeapp.OrderItemInput{
			ProductID: productID,
			Quantity:  line.Quantity,
		})
	}

	order, err := h.orderService.Place(c.Request.Context(), tradeapp.PlaceOrderInput{
		AccountID: acct.ID,
		Items:     items,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, order)
}

// GetByID godoc
// @ID           getOrder
// @Summary      Get one of the caller's orders
// @Tags         orders
// @Produce      json
// @Param        id path string true "Order ID"
// @Success      200 {object} APIResponse[tradeapp.OrderDTO]
// @Failure      400 {object} ErrorResponse
// @Failure      401 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /orders/{id} [get]
func (h *OrderHandler) GetByID(c *gin.Context) {
	acct, ok := h.callerAccount(c)
	if !ok {
		return
	}

	id, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid order ID")
		return
	}

	order, err := h.orderService.GetByID(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	// Another account's order reads as absent, not forbidden
	if order.AccountID != acct.ID {
		h.NotFound(c, "Order not found")
		return
	}

	h.Success(c, order)
}

// ListOwn godoc
// @ID           listOwnOrders
// @Summary      List the caller's orders
// @Tags         orders
// @Produce      json
// @Param        status query string false "Filter by status" Enums(pending, paid, shipped, completed, cancelled)
// @Param        page query int false "Page number (default 1)"
// @Param        page_size query int false "Page size (default 20, max 100)"
// @Success      200 {object} APIResponse[tradeapp.OrderListResult]
// @Failure      400 {object} ErrorResponse
// @Failure      401 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /orders [get]
func (h *OrderHandler) ListOwn(c *gin.Context) {
	acct, ok := h.callerAccount(c)
	if !ok {
		return
	}

	var req ListOrdersRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	filter := trade.NewOrderFilter()
	filter.AccountID = &acct.ID
	h.applyOrderFilter(&filter, req)

	result, err := h.orderService.List(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.SuccessWithMeta(c, result.Orders, result.Total, result.Page, result.PageSize)
}

// Cancel godoc
// @ID           cancelOrder
// @Summary      Cancel one of the caller's orders
// @Description  Only pending orders can be cancelled by their owner
// @Tags         orders
// @Produce      json
// @Param        id path string true "Order ID"
// @Success      200 {object} APIResponse[tradeapp.OrderDTO]
// @Failure      400 {object} ErrorResponse
// @Failure      401 {object} ErrorResponse
// @Failure      403 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /orders/{id}/cancel [post]
func (h *OrderHandler) Cancel(c *gin.Context) {
	acct, ok := h.callerAccount(c)
	if !ok {
		return
	}

	id, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid order ID")
		return
	}

	order, err := h.orderService.Cancel(c.Request.Context(), id, acct.ID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, order)
}

// AdminList godoc
// @ID           adminListOrders
// @Summary      List all orders
// @Tags         orders
// @Produce      json
// @Param        status query string false "Filter by status" Enums(pending, paid, shipped, completed, cancelled)
// @Param        page query int false "Page number (default 1)"
// @Param        page_size query int false "Page size (default 20, max 100)"
// @Success      200 {object} APIResponse[tradeapp.OrderListResult]
// @Failure      400 {object} ErrorResponse
// @Failure      403 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /admin/orders [get]
func (h *OrderHandler) AdminList(c *gin.Context) {
	var req ListOrdersRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	filter := trade.NewOrderFilter()
	h.applyOrderFilter(&filter, req)

	result, err := h.orderService.List(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.SuccessWithMeta(c, result.Orders, result.Total, result.Page, result.PageSize)
}

// UpdateStatus godoc
// @ID           updateOrderStatus
// @Summary      Transition an order's status
// @Description  Status transitions follow the order lifecycle; invalid transitions are rejected
// @Tags         orders
// @Accept       json
// @Produce      json
// @Param        id path string true "Order ID"
// @Param        request body UpdateOrderStatusRequest true "Status transition request"
// @Success      200 {object} APIResponse[tradeapp.OrderDTO]
// @Failure      400 {object} ErrorResponse
// @Failure      403 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /admin/orders/{id}/status [put]
func (h *OrderHandler) UpdateStatus(c *gin.Context) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid order ID")
		return
	}

	var req UpdateOrderStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	order, err := h.orderService.UpdateStatus(c.Request.Context(), id, trade.OrderStatus(req.Status))
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, order)
}

func (h *OrderHandler) applyOrderFilter(filter *trade.OrderFilter, req ListOrdersRequest) {
	if req.Status != "" {
		status := trade.OrderStatus(req.Status)
		filter.Status = &status
	}
	if req.Page > 0 {
		filter.Page = req.Page
	}
	if req.PageSize > 0 {
		filter.PageSize = req.PageSize
	}
}
