package dto

// RegisterRequest is the request body for POST /auth/register.
type RegisterRequest struct {
	Name     string `json:"name" binding:"required,min=1,max=100"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8,max=128"`
	Role     string `json:"role" binding:"required,oneof=user merchant admin"`
}

// LoginRequest is the request body for POST /auth/login-json.
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// LoginResponse is the response body for successful login.
type LoginResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresAt   string `json:"expires_at"`
}

// ChangePasswordRequest is the request body for POST /auth/change-password.
type ChangePasswordRequest struct {
	OldPassword string `json:"old_password" binding:"required"`
	NewPassword string `json:"new_password" binding:"required,min=8,max=128"`
}

// UserResponse is the public shape of a registered user.
type UserResponse struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

// CreateMerchantRequest is the request body for POST /merchants/.
type CreateMerchantRequest struct {
	BusinessName  string  `json:"business_name" binding:"required,min=1,max=200"`
	BusinessEmail string  `json:"business_email" binding:"required,email"`
	Website       *string `json:"website,omitempty" binding:"omitempty,safe_url"`
}

// UpdateWebhookURLRequest is the request body for setting a merchant's
// webhook endpoint.
type UpdateWebhookURLRequest struct {
	WebhookURL *string `json:"webhook_url,omitempty" binding:"omitempty,safe_url"`
}

// MerchantResponse is the response body describing a merchant profile.
type MerchantResponse struct {
	ID            string  `json:"id"`
	BusinessName  string  `json:"business_name"`
	BusinessEmail string  `json:"business_email"`
	Website       *string `json:"website,omitempty"`
	WebhookURL    *string `json:"webhook_url,omitempty"`
	CreatedAt     string  `json:"created_at"`
}

// IssueKeyRequest is the request body for POST /merchants/me/keys.
type IssueKeyRequest struct {
	Label string `json:"label" binding:"required,min=1,max=100,safe_id"`
}

// IssueKeyResponse returns the newly issued credential pair. KeySecret is
// shown exactly once; the caller must record it.
type IssueKeyResponse struct {
	KeyID     string `json:"key_id"`
	KeySecret string `json:"key_secret"`
	Label     string `json:"label"`
}

// QRCodeResponse is the response body for GET /merchants/me/qr-code. PayFlow
// does not render a PNG itself; it hands back the opaque hosted-checkout
// URL for an external QR renderer to encode. OrderRefPlaceholder is the
// literal order_ref segment the merchant substitutes per order when no
// order_ref query parameter is supplied.
type QRCodeResponse struct {
	CheckoutURL         string `json:"checkout_url"`
	OrderRefPlaceholder string `json:"order_ref_placeholder"`
}

// CreateOrderRequest is the request body for POST /v1/orders.
type CreateOrderRequest struct {
	Amount         int64   `json:"amount" binding:"required,gt=0"`
	Currency       string  `json:"currency,omitempty" binding:"omitempty,len=3"`
	Receipt        string  `json:"receipt,omitempty" binding:"omitempty,max=100,safe_id"`
	Notes          *string `json:"notes,omitempty" binding:"omitempty,max=4096"`
	AutoCapture    *bool   `json:"auto_capture,omitempty"`
	IdempotencyKey *string `json:"idempotency_key,omitempty" binding:"omitempty,max=128,safe_id"`
}

// OrderResponse is the response body describing an order.
type OrderResponse struct {
	OrderRef  string  `json:"order_ref"`
	Amount    int64   `json:"amount"`
	Currency  string  `json:"currency"`
	Status    string  `json:"status"`
	Receipt   string  `json:"receipt,omitempty"`
	Notes     *string `json:"notes,omitempty"`
	CreatedAt string  `json:"created_at"`
}

// SubmitPaymentRequest is the request body for POST /pay/{order_ref}, posted
// from the hosted checkout without merchant authentication.
type SubmitPaymentRequest struct {
	Method     string  `json:"method" binding:"required,oneof=upi card netbanking wallet"`
	VPA        string  `json:"vpa,omitempty"`
	CardNumber string  `json:"card_number,omitempty"`
	CardExpiry string  `json:"card_expiry,omitempty"`
	CardCVV    string  `json:"card_cvv,omitempty"`
	CardName   string  `json:"card_name,omitempty"`
	Email      string  `json:"email,omitempty" binding:"omitempty,email"`
	Contact    string  `json:"contact,omitempty"`
	Phone      string  `json:"phone,omitempty"`
	ExtraData  *string `json:"extra_data,omitempty"`
}

// PaymentResponse is the response body describing a payment. Sensitive
// fields (card number, CVV, raw VPA secrets) are never echoed back. The
// cardholder name is persisted but not returned.
type PaymentResponse struct {
	PaymentRef  string   `json:"payment_ref"`
	OrderRef    string   `json:"order_ref"`
	Amount      int64    `json:"amount"`
	Method      string   `json:"method"`
	Status      string   `json:"status"`
	IsFlagged   bool     `json:"is_flagged"`
	RuleHits    []string `json:"rule_hits,omitempty"`
	CardLast4   *string  `json:"card_last4,omitempty"`
	ErrorCode   *string  `json:"error_code,omitempty"`
	ErrorReason *string  `json:"error_reason,omitempty"`
	CreatedAt   string   `json:"created_at"`
}

// RefundRequest is the request body for POST /v1/payments/{payment_ref}/refund.
type RefundRequest struct {
	Amount *int64  `json:"amount,omitempty" binding:"omitempty,gt=0"`
	Reason string  `json:"reason" binding:"required,max=200"`
	Notes  *string `json:"notes,omitempty" binding:"omitempty,max=4096"`
}

// RefundResponse is the response body describing a refund.
type RefundResponse struct {
	RefundRef string `json:"refund_ref"`
	Amount    int64  `json:"amount"`
	Reason    string `json:"reason"`
	Status    string `json:"status"`
	CreatedAt string `json:"created_at"`
}

// WebhookLogResponse is one outbox row's delivery summary.
type WebhookLogResponse struct {
	Event            string `json:"event"`
	Status           string `json:"status"`
	Attempts         int    `json:"attempts"`
	LastResponseCode *int   `json:"last_response_code,omitempty"`
	CreatedAt        string `json:"created_at"`
}

// AdminStatsResponse is the response body for GET /admin/stats.
type AdminStatsResponse struct {
	TotalOrders     int64 `json:"total_orders"`
	TotalPayments   int64 `json:"total_payments"`
	CapturedAmount  int64 `json:"captured_amount"`
	RefundedAmount  int64 `json:"refunded_amount"`
	FlaggedPayments int64 `json:"flagged_payments"`
	FailedPayments  int64 `json:"failed_payments"`
}

// PublicMerchantResponse is the response body for GET /pay/{order_ref}/merchant,
// shown to an unauthenticated customer on the hosted checkout page.
type PublicMerchantResponse struct {
	BusinessName string `json:"business_name"`
	OrderRef     string `json:"order_ref"`
	Amount       int64  `json:"amount"`
	Currency     string `json:"currency"`
}
