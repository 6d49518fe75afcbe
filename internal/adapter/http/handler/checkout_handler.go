package handler

import (
	"payflow/internal/adapter/http/dto"
	"payflow/internal/core/domain"
	"payflow/internal/core/ports"
	"payflow/pkg/apperror"
	"payflow/pkg/response"

	"github.com/gin-gonic/gin"
)

// CheckoutHandler handles the public, unauthenticated /pay/* routes: the
// hosted checkout page the customer (not the merchant) interacts with. The
// order_ref is the capability; there is no merchant or user principal here.
type CheckoutHandler struct {
	orderSvc    ports.OrderService
	merchantSvc ports.MerchantService
	paymentSvc  ports.PaymentService
}

// NewCheckoutHandler creates a new CheckoutHandler.
func NewCheckoutHandler(orderSvc ports.OrderService, merchantSvc ports.MerchantService, paymentSvc ports.PaymentService) *CheckoutHandler {
	return &CheckoutHandler{orderSvc: orderSvc, merchantSvc: merchantSvc, paymentSvc: paymentSvc}
}

// MerchantInfo handles GET /pay/{order_ref}/merchant — the display info the
// hosted checkout page shows before the customer picks a payment method.
func (h *CheckoutHandler) MerchantInfo(c *gin.Context) {
	orderRef := c.Param("order_ref")

	order, err := h.orderSvc.GetPublicByRef(c.Request.Context(), orderRef)
	if err != nil {
		response.Error(c, err)
		return
	}

	merchant, err := h.merchantSvc.GetByID(c.Request.Context(), order.MerchantID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, dto.PublicMerchantResponse{
		BusinessName: merchant.BusinessName,
		OrderRef:     order.OrderRef,
		Amount:       order.Amount,
		Currency:     order.Currency,
	})
}

// Submit handles POST /pay/{order_ref} — the customer's payment attempt.
func (h *CheckoutHandler) Submit(c *gin.Context) {
	orderRef := c.Param("order_ref")

	var req dto.SubmitPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}

	payment, err := h.paymentSvc.Submit(c.Request.Context(), ports.SubmitPaymentRequest{
		OrderRef:   orderRef,
		Method:     domain.PaymentMethod(req.Method),
		VPA:        req.VPA,
		CardNumber: req.CardNumber,
		CardExpiry: req.CardExpiry,
		CardCVV:    req.CardCVV,
		CardName:   req.CardName,
		Email:      req.Email,
		Contact:    req.Contact,
		Phone:      req.Phone,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, paymentResponse(payment, orderRef))
}
