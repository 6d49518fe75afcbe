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

// WebhookHandler exposes the merchant-facing delivery history for the
// webhook outbox.
type WebhookHandler struct {
	webhookSvc ports.WebhookService
}

// NewWebhookHandler creates a new WebhookHandler.
func NewWebhookHandler(webhookSvc ports.WebhookService) *WebhookHandler {
	return &WebhookHandler{webhookSvc: webhookSvc}
}

// Logs handles GET /v1/webhooks/logs.
func (h *WebhookHandler) Logs(c *gin.Context) {
	merchant, ok := middleware.Merchant(c)
	if !ok {
		response.Error(c, apperror.Unauthenticated("missing principal"))
		return
	}

	limit, offset := pagination(c)
	events, err := h.webhookSvc.ListLogs(c.Request.Context(), merchant.ID, limit, offset)
	if err != nil {
		response.Error(c, err)
		return
	}

	out := make([]dto.WebhookLogResponse, 0, len(events))
	for _, e := range events {
		out = append(out, webhookLogResponse(e))
	}
	response.OK(c, out)
}

func webhookLogResponse(e *domain.WebhookEvent) dto.WebhookLogResponse {
	return dto.WebhookLogResponse{
		Event:            string(e.Event),
		Status:           string(e.Status),
		Attempts:         e.Attempts,
		LastResponseCode: e.LastResponseCode,
		CreatedAt:        e.CreatedAt.UTC().Format("2006-01-02T15:04:05Z07:00"),
	}
}
