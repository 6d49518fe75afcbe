package handler

import (
	"strconv"

	"payflow/internal/adapter/http/dto"
	"payflow/internal/adapter/http/middleware"
	"payflow/internal/core/domain"
	"payflow/internal/core/ports"
	"payflow/pkg/apperror"
	"payflow/pkg/response"

	"github.com/gin-gonic/gin"
)

// OrderHandler handles the merchant-facing /v1/orders routes.
type OrderHandler struct {
	orderSvc ports.OrderService
}

// NewOrderHandler creates a new OrderHandler.
func NewOrderHandler(orderSvc ports.OrderService) *OrderHandler {
	return &OrderHandler{orderSvc: orderSvc}
}

// Create handles POST /v1/orders.
func (h *OrderHandler) Create(c *gin.Context) {
	merchant, ok := middleware.Merchant(c)
	if !ok {
		response.Error(c, apperror.Unauthenticated("missing principal"))
		return
	}

	var req dto.CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}
	dto.SanitizeStruct(&req)

	autoCapture := true
	if req.AutoCapture != nil {
		autoCapture = *req.AutoCapture
	}

	order, replayed, err := h.orderSvc.CreateOrder(c.Request.Context(), ports.CreateOrderRequest{
		MerchantID:     merchant.ID,
		Amount:         req.Amount,
		Currency:       req.Currency,
		Receipt:        req.Receipt,
		Notes:          req.Notes,
		AutoCapture:    autoCapture,
		IdempotencyKey: req.IdempotencyKey,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	if replayed {
		c.Header("X-Idempotent-Replay", "true")
	}

	response.Created(c, orderResponse(order))
}

// List handles GET /v1/orders.
func (h *OrderHandler) List(c *gin.Context) {
	merchant, ok := middleware.Merchant(c)
	if !ok {
		response.Error(c, apperror.Unauthenticated("missing principal"))
		return
	}

	limit, offset := pagination(c)
	orders, err := h.orderSvc.List(c.Request.Context(), merchant.ID, limit, offset)
	if err != nil {
		response.Error(c, err)
		return
	}

	out := make([]dto.OrderResponse, 0, len(orders))
	for _, o := range orders {
		out = append(out, orderResponse(o))
	}
	response.OK(c, out)
}

// Get handles GET /v1/orders/{order_ref}.
func (h *OrderHandler) Get(c *gin.Context) {
	merchant, ok := middleware.Merchant(c)
	if !ok {
		response.Error(c, apperror.Unauthenticated("missing principal"))
		return
	}

	order, err := h.orderSvc.GetByRef(c.Request.Context(), merchant.ID, c.Param("order_ref"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, orderResponse(order))
}

// Payments handles GET /v1/orders/{order_ref}/payments.
func (h *OrderHandler) Payments(c *gin.Context) {
	merchant, ok := middleware.Merchant(c)
	if !ok {
		response.Error(c, apperror.Unauthenticated("missing principal"))
		return
	}

	payments, err := h.orderSvc.ListPayments(c.Request.Context(), merchant.ID, c.Param("order_ref"))
	if err != nil {
		response.Error(c, err)
		return
	}

	out := make([]dto.PaymentResponse, 0, len(payments))
	for _, p := range payments {
		out = append(out, paymentResponse(p, c.Param("order_ref")))
	}
	response.OK(c, out)
}

func orderResponse(o *domain.Order) dto.OrderResponse {
	return dto.OrderResponse{
		OrderRef:  o.OrderRef,
		Amount:    o.Amount,
		Currency:  o.Currency,
		Status:    string(o.Status),
		Receipt:   o.Receipt,
		Notes:     o.Notes,
		CreatedAt: o.CreatedAt.UTC().Format("2006-01-02T15:04:05Z07:00"),
	}
}

// pagination reads ?limit=&offset= with sane bounds.
func pagination(c *gin.Context) (limit, offset int) {
	limit = 20
	offset = 0
	if v, err := strconv.Atoi(c.Query("limit")); err == nil && v > 0 && v <= 100 {
		limit = v
	}
	if v, err := strconv.Atoi(c.Query("offset")); err == nil && v >= 0 {
		offset = v
	}
	return limit, offset
}
