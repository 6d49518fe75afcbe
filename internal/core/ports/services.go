package ports

import (
	"context"
	"time"

	"payflow/internal/core/domain"

	"github.com/google/uuid"
)

// IdentifierService mints opaque public references.
type IdentifierService interface {
	// NewRef returns prefix + 20+ bytes of CSPRNG output, hex/base36 encoded.
	NewRef(prefix string) string
}

// SigningService signs and verifies webhook bodies.
type SigningService interface {
	Sign(secret, body string) string
	Verify(secret, body, signature string) bool
}

// HashService hashes and verifies user account passwords (argon2id).
type HashService interface {
	Hash(plaintext string) (string, error)
	Verify(plaintext, hash string) bool
}

// TokenClaims is the decoded content of a bearer JWT.
type TokenClaims struct {
	UserID uuid.UUID
	Email  string
	Role   domain.Role
}

// TokenService issues and validates bearer JWTs.
type TokenService interface {
	Generate(userID uuid.UUID, email string, role domain.Role) (token string, expiresAt time.Time, err error)
	Validate(token string) (*TokenClaims, error)
}

// KeyStoreService issues and resolves merchant API credentials.
type KeyStoreService interface {
	IssueKey(ctx context.Context, merchantID uuid.UUID, label string) (keyID, keySecret string, key *domain.ApiKey, err error)
	ResolveKey(ctx context.Context, keyID, keySecret string) (*domain.Merchant, error)
	RevokeKey(ctx context.Context, keyID string) error
}

// FraudAttempt is the candidate payment attempt the fraud engine evaluates.
type FraudAttempt struct {
	MerchantID uuid.UUID
	Identity   string // vpa, email, or contact — whichever identifies the payer
	Amount     int64
	Method     domain.PaymentMethod
	VPA        string
}

// FraudHistory is the payer's recent activity, already scoped to the
// lookback window by the caller.
type FraudHistory struct {
	RecentPayments []*domain.Payment
}

// FraudEngine is a pure function over an attempt and its history.
type FraudEngine interface {
	Evaluate(attempt FraudAttempt, history FraudHistory) (isFlagged bool, hits []string)
}

// AuthorizationDecision is the simulator's verdict on a payment attempt.
type AuthorizationDecision struct {
	Authorized bool
	ErrorCode  string
	ErrorReason string
}

// AuthorizationSimulator stands in for a real acquiring-bank integration:
// a pluggable decision point the gateway calls instead of a live bank.
type AuthorizationSimulator interface {
	Authorize(ctx context.Context, attempt FraudAttempt, isFlagged bool) AuthorizationDecision
}

// RegisterUserRequest is the input to AuthService.Register.
type RegisterUserRequest struct {
	Name     string
	Email    string
	Password string
	Role     domain.Role
}

// AuthService handles user registration, login, and password changes.
type AuthService interface {
	Register(ctx context.Context, req RegisterUserRequest) (*domain.User, error)
	Login(ctx context.Context, email, password string) (token string, expiresAt time.Time, err error)
	ChangePassword(ctx context.Context, userID uuid.UUID, oldPassword, newPassword string) error
}

// MerchantService manages a merchant's profile and API keys.
type MerchantService interface {
	CreateMerchant(ctx context.Context, userID uuid.UUID, businessName, businessEmail string, website *string) (*domain.Merchant, error)
	GetByUserID(ctx context.Context, userID uuid.UUID) (*domain.Merchant, error)
	// GetByID looks up a merchant by internal id, with no ownership check:
	// used by the unauthenticated hosted checkout page.
	GetByID(ctx context.Context, merchantID uuid.UUID) (*domain.Merchant, error)
	UpdateWebhookURL(ctx context.Context, merchantID uuid.UUID, url *string) error
	IssueKey(ctx context.Context, merchantID uuid.UUID, label string) (keyID, keySecret string, err error)
	RevokeKey(ctx context.Context, merchantID uuid.UUID, keyID string) error
}

// CreateOrderRequest is the input to OrderService.CreateOrder.
type CreateOrderRequest struct {
	MerchantID     uuid.UUID
	Amount         int64
	Currency       string
	Receipt        string
	Notes          *string
	AutoCapture    bool
	IdempotencyKey *string
}

// OrderService owns the order half of the gateway state machine.
type OrderService interface {
	CreateOrder(ctx context.Context, req CreateOrderRequest) (order *domain.Order, replayed bool, err error)
	GetByRef(ctx context.Context, merchantID uuid.UUID, orderRef string) (*domain.Order, error)
	List(ctx context.Context, merchantID uuid.UUID, limit, offset int) ([]*domain.Order, error)
	ListPayments(ctx context.Context, merchantID uuid.UUID, orderRef string) ([]*domain.Payment, error)
	// GetPublicByRef looks up an order with no merchant ownership check: the
	// order_ref itself is the capability on the unauthenticated hosted
	// checkout page.
	GetPublicByRef(ctx context.Context, orderRef string) (*domain.Order, error)
}

// SubmitPaymentRequest is the input to PaymentService.Submit, posted from the
// hosted checkout without merchant authentication.
type SubmitPaymentRequest struct {
	OrderRef   string
	Method     domain.PaymentMethod
	VPA        string
	CardNumber string
	CardExpiry string
	CardCVV    string
	CardName   string
	Email      string
	Contact    string
	Phone      string
}

// PaymentService owns the payment half of the gateway state machine.
type PaymentService interface {
	Submit(ctx context.Context, req SubmitPaymentRequest) (*domain.Payment, error)
	GetByRef(ctx context.Context, merchantID uuid.UUID, paymentRef string) (*domain.Payment, error)
	Capture(ctx context.Context, merchantID uuid.UUID, paymentRef string) (*domain.Payment, error)
	ListFlagged(ctx context.Context, limit, offset int) ([]*domain.Payment, error)
}

// RefundService owns refund creation.
type RefundService interface {
	CreateRefund(ctx context.Context, merchantID uuid.UUID, paymentRef string, amount int64, reason string, notes *string) (*domain.Refund, error)
	ListByPayment(ctx context.Context, merchantID uuid.UUID, paymentRef string) ([]*domain.Refund, error)
}

// WebhookService reports webhook delivery history. Outbox rows themselves
// are appended directly by WebhookEventRepository inside the same
// transaction that advances order/payment state, not through this service.
type WebhookService interface {
	ListLogs(ctx context.Context, merchantID uuid.UUID, limit, offset int) ([]*domain.WebhookEvent, error)
}

// AdminService answers the read-only analytics routes.
type AdminService interface {
	Stats(ctx context.Context) (*AdminStats, error)
	Flagged(ctx context.Context, limit, offset int) ([]*domain.Payment, error)
}
