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

// MerchantHandler handles merchant profile and API key self-service.
type MerchantHandler struct {
	merchantSvc ports.MerchantService
}

// NewMerchantHandler creates a new MerchantHandler.
func NewMerchantHandler(merchantSvc ports.MerchantService) *MerchantHandler {
	return &MerchantHandler{merchantSvc: merchantSvc}
}

// Create handles POST /merchants/ — a user of role merchant may own at most
// one merchant row.
func (h *MerchantHandler) Create(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		response.Error(c, apperror.Unauthenticated("missing principal"))
		return
	}

	var req dto.CreateMerchantRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}
	dto.SanitizeStruct(&req)

	merchant, err := h.merchantSvc.CreateMerchant(c.Request.Context(), userID, req.BusinessName, req.BusinessEmail, req.Website)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, merchantResponse(merchant))
}

// Me handles GET /merchants/me.
func (h *MerchantHandler) Me(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		response.Error(c, apperror.Unauthenticated("missing principal"))
		return
	}

	merchant, err := h.merchantSvc.GetByUserID(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, merchantResponse(merchant))
}

// UpdateWebhookURL handles setting the merchant's webhook endpoint.
func (h *MerchantHandler) UpdateWebhookURL(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		response.Error(c, apperror.Unauthenticated("missing principal"))
		return
	}

	merchant, err := h.merchantSvc.GetByUserID(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, err)
		return
	}

	var req dto.UpdateWebhookURLRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}
	dto.SanitizeStruct(&req)

	if err := h.merchantSvc.UpdateWebhookURL(c.Request.Context(), merchant.ID, req.WebhookURL); err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, gin.H{"updated": true})
}

// IssueKey handles POST /merchants/me/keys.
func (h *MerchantHandler) IssueKey(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		response.Error(c, apperror.Unauthenticated("missing principal"))
		return
	}

	merchant, err := h.merchantSvc.GetByUserID(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, err)
		return
	}

	var req dto.IssueKeyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}
	dto.SanitizeStruct(&req)

	keyID, keySecret, err := h.merchantSvc.IssueKey(c.Request.Context(), merchant.ID, req.Label)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, dto.IssueKeyResponse{
		KeyID:     keyID,
		KeySecret: keySecret,
		Label:     req.Label,
	})
}

// QRCode handles GET /merchants/me/qr-code. Rendering a PNG is out of
// scope; this returns the opaque hosted-checkout URL for an external QR
// renderer to encode, with order_ref filled in from the optional
// order_ref query parameter or left as a placeholder for the merchant to
// substitute per order.
func (h *MerchantHandler) QRCode(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		response.Error(c, apperror.Unauthenticated("missing principal"))
		return
	}

	if _, err := h.merchantSvc.GetByUserID(c.Request.Context(), userID); err != nil {
		response.Error(c, err)
		return
	}

	orderRef := c.Query("order_ref")
	if orderRef == "" {
		orderRef = "{order_ref}"
	}

	response.OK(c, dto.QRCodeResponse{
		CheckoutURL:         "/pay/" + orderRef,
		OrderRefPlaceholder: orderRef,
	})
}

// RevokeKey handles DELETE /merchants/me/keys/{key_id}.
func (h *MerchantHandler) RevokeKey(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		response.Error(c, apperror.Unauthenticated("missing principal"))
		return
	}

	merchant, err := h.merchantSvc.GetByUserID(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, err)
		return
	}

	keyID := c.Param("key_id")
	if err := h.merchantSvc.RevokeKey(c.Request.Context(), merchant.ID, keyID); err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, gin.H{"revoked": true})
}

func merchantResponse(m *domain.Merchant) dto.MerchantResponse {
	return dto.MerchantResponse{
		ID:            m.ID.String(),
		BusinessName:  m.BusinessName,
		BusinessEmail: m.BusinessEmail,
		Website:       m.Website,
		WebhookURL:    m.WebhookURL,
		CreatedAt:     m.CreatedAt.UTC().Format("2006-01-02T15:04:05Z07:00"),
	}
}
