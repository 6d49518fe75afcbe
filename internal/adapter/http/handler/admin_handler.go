package handler

import (
	"payflow/internal/adapter/http/dto"
	"payflow/internal/core/ports"
	"payflow/pkg/response"

	"github.com/gin-gonic/gin"
)

// AdminHandler answers the admin-only read-only analytics routes.
type AdminHandler struct {
	adminSvc ports.AdminService
}

// NewAdminHandler creates a new AdminHandler.
func NewAdminHandler(adminSvc ports.AdminService) *AdminHandler {
	return &AdminHandler{adminSvc: adminSvc}
}

// Stats handles GET /admin/stats.
func (h *AdminHandler) Stats(c *gin.Context) {
	stats, err := h.adminSvc.Stats(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, dto.AdminStatsResponse{
		TotalOrders:     stats.TotalOrders,
		TotalPayments:   stats.TotalPayments,
		CapturedAmount:  stats.CapturedAmount,
		RefundedAmount:  stats.RefundedAmount,
		FlaggedPayments: stats.FlaggedPayments,
		FailedPayments:  stats.FailedPayments,
	})
}

// Flagged handles GET /admin/flagged.
func (h *AdminHandler) Flagged(c *gin.Context) {
	limit, offset := pagination(c)
	payments, err := h.adminSvc.Flagged(c.Request.Context(), limit, offset)
	if err != nil {
		response.Error(c, err)
		return
	}

	out := make([]dto.PaymentResponse, 0, len(payments))
	for _, p := range payments {
		out = append(out, paymentResponse(p, ""))
	}
	response.OK(c, out)
}
