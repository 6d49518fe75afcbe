package handler

import (
	"payflow/internal/adapter/http/dto"
	"payflow/internal/adapter/http/middleware"
	"payflow/internal/core/domain"
	"payflow/internal/core/ports"
	"payflow/pkg/apperror"
	"payflow/pkg/response"

	"github.com/gin-gonic/gin"
)

// PaymentHandler handles the merchant-facing /v1/payments routes: read,
// capture, and refund of an already-submitted payment.
type PaymentHandler struct {
	paymentSvc ports.PaymentService
	refundSvc  ports.RefundService
}

// NewPaymentHandler creates a new PaymentHandler.
func NewPaymentHandler(paymentSvc ports.PaymentService, refundSvc ports.RefundService) *PaymentHandler {
	return &PaymentHandler{paymentSvc: paymentSvc, refundSvc: refundSvc}
}

// Get handles GET /v1/payments/{payment_ref}.
func (h *PaymentHandler) Get(c *gin.Context) {
	merchant, ok := middleware.Merchant(c)
	if !ok {
		response.Error(c, apperror.Unauthenticated("missing principal"))
		return
	}

	payment, err := h.paymentSvc.GetByRef(c.Request.Context(), merchant.ID, c.Param("payment_ref"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, paymentResponse(payment, ""))
}

// Capture handles POST /v1/payments/{payment_ref}/capture. Capturing an
// already-captured payment is a no-op that returns the existing resource.
func (h *PaymentHandler) Capture(c *gin.Context) {
	merchant, ok := middleware.Merchant(c)
	if !ok {
		response.Error(c, apperror.Unauthenticated("missing principal"))
		return
	}

	payment, err := h.paymentSvc.Capture(c.Request.Context(), merchant.ID, c.Param("payment_ref"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, paymentResponse(payment, ""))
}

// Refund handles POST /v1/payments/{payment_ref}/refund.
func (h *PaymentHandler) Refund(c *gin.Context) {
	merchant, ok := middleware.Merchant(c)
	if !ok {
		response.Error(c, apperror.Unauthenticated("missing principal"))
		return
	}

	var req dto.RefundRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}
	dto.SanitizeStruct(&req)

	paymentRef := c.Param("payment_ref")
	var amount int64
	if req.Amount != nil {
		amount = *req.Amount
	} else {
		payment, err := h.paymentSvc.GetByRef(c.Request.Context(), merchant.ID, paymentRef)
		if err != nil {
			response.Error(c, err)
			return
		}
		amount = payment.Amount
	}

	refund, err := h.refundSvc.CreateRefund(c.Request.Context(), merchant.ID, paymentRef, amount, req.Reason, req.Notes)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, refundResponse(refund))
}

// Refunds handles GET /v1/payments/{payment_ref}/refunds.
func (h *PaymentHandler) Refunds(c *gin.Context) {
	merchant, ok := middleware.Merchant(c)
	if !ok {
		response.Error(c, apperror.Unauthenticated("missing principal"))
		return
	}

	refunds, err := h.refundSvc.ListByPayment(c.Request.Context(), merchant.ID, c.Param("payment_ref"))
	if err != nil {
		response.Error(c, err)
		return
	}

	out := make([]dto.RefundResponse, 0, len(refunds))
	for _, r := range refunds {
		out = append(out, refundResponse(r))
	}
	response.OK(c, out)
}

// paymentResponse converts a domain.Payment to its public DTO. orderRef is
// filled in by callers that already have it in scope (the hosted checkout
// path, or a listing scoped to one order); it is left blank otherwise.
// Sensitive fields (raw card number, CVV) are never part of the domain
// payment in the first place, so there is nothing to scrub here beyond
// omitting them from the DTO.
func paymentResponse(p *domain.Payment, orderRef string) dto.PaymentResponse {
	return dto.PaymentResponse{
		PaymentRef:  p.PaymentRef,
		OrderRef:    orderRef,
		Amount:      p.Amount,
		Method:      string(p.Method),
		Status:      string(p.Status),
		IsFlagged:   p.IsFlagged,
		RuleHits:    p.RuleHits,
		CardLast4:   p.CardLast4,
		ErrorCode:   p.ErrorCode,
		ErrorReason: p.ErrorReason,
		CreatedAt:   p.CreatedAt.UTC().Format("2006-01-02T15:04:05Z07:00"),
	}
}

func refundResponse(r *domain.Refund) dto.RefundResponse {
	return dto.RefundResponse{
		RefundRef: r.RefundRef,
		Amount:    r.Amount,
		Reason:    r.Reason,
		Status:    string(r.Status),
		CreatedAt: r.CreatedAt.UTC().Format("2006-01-02T15:04:05Z07:00"),
	}
}
