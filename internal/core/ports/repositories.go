package ports

import (
	"context"
	"time"

	"payflow/internal/core/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// DBTransactor starts transactions against the primary store. All
// multi-step state transitions run inside one transaction obtained here.
type DBTransactor interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}

// UserRepository persists User rows.
type UserRepository interface {
	Create(ctx context.Context, u *domain.User) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	UpdatePasswordHash(ctx context.Context, id uuid.UUID, passwordHash string) error
}

// MerchantRepository persists Merchant rows.
type MerchantRepository interface {
	Create(ctx context.Context, m *domain.Merchant) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Merchant, error)
	GetByUserID(ctx context.Context, userID uuid.UUID) (*domain.Merchant, error)
	UpdateWebhookURL(ctx context.Context, merchantID uuid.UUID, url *string) error
}

// ApiKeyRepository persists ApiKey rows.
type ApiKeyRepository interface {
	Create(ctx context.Context, k *domain.ApiKey) error
	GetByKeyID(ctx context.Context, keyID string) (*domain.ApiKey, error)
	Revoke(ctx context.Context, keyID string) error
	TouchLastUsed(ctx context.Context, keyID string, at time.Time) error
}

// OrderRepository persists Order rows and enforces create-idempotency.
type OrderRepository interface {
	Create(ctx context.Context, tx pgx.Tx, o *domain.Order) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Order, error)
	GetByIdempotencyKey(ctx context.Context, merchantID uuid.UUID, key string) (*domain.Order, error)
	GetByRef(ctx context.Context, orderRef string) (*domain.Order, error)
	GetByRefForUpdate(ctx context.Context, tx pgx.Tx, orderRef string) (*domain.Order, error)
	UpdateStatus(ctx context.Context, tx pgx.Tx, id uuid.UUID, status domain.OrderStatus) error
	List(ctx context.Context, merchantID uuid.UUID, limit, offset int) ([]*domain.Order, error)
}

// PaymentRepository persists Payment rows.
type PaymentRepository interface {
	Create(ctx context.Context, tx pgx.Tx, p *domain.Payment) error
	GetByRef(ctx context.Context, paymentRef string) (*domain.Payment, error)
	GetByRefForUpdate(ctx context.Context, tx pgx.Tx, paymentRef string) (*domain.Payment, error)
	UpdateStatus(ctx context.Context, tx pgx.Tx, id uuid.UUID, status domain.PaymentStatus, errorCode, errorReason *string) error
	ListByOrder(ctx context.Context, orderID uuid.UUID) ([]*domain.Payment, error)
	// ListRecentByIdentity returns payments sharing a fraud-engine identity
	// (merchant + vpa/email/contact, whichever is populated) within window,
	// newest first. Used by the fraud engine's history inputs.
	ListRecentByIdentity(ctx context.Context, merchantID uuid.UUID, identity string, window time.Duration) ([]*domain.Payment, error)
	ListFlagged(ctx context.Context, limit, offset int) ([]*domain.Payment, error)
}

// RefundRepository persists Refund rows.
type RefundRepository interface {
	Create(ctx context.Context, tx pgx.Tx, r *domain.Refund) error
	SumProcessedByPayment(ctx context.Context, tx pgx.Tx, paymentID uuid.UUID) (int64, error)
	ListByPayment(ctx context.Context, paymentID uuid.UUID) ([]*domain.Refund, error)
}

// WebhookEventRepository persists the durable outbox.
type WebhookEventRepository interface {
	Create(ctx context.Context, tx pgx.Tx, e *domain.WebhookEvent) error
	// ClaimPending atomically claims up to limit pending rows whose
	// next_attempt_at has passed, marking them so no other worker claims
	// them concurrently, and returns them for delivery.
	ClaimPending(ctx context.Context, limit int) ([]*domain.WebhookEvent, error)
	MarkDelivered(ctx context.Context, id int64, responseCode int, responseBody string) error
	MarkRetry(ctx context.Context, id int64, attempts int, nextAttemptAt time.Time, responseCode *int, responseBody *string) error
	MarkFailed(ctx context.Context, id int64, responseCode *int, responseBody *string) error
	ListByMerchant(ctx context.Context, merchantID uuid.UUID, limit, offset int) ([]*domain.WebhookEvent, error)
}

// WebhookLogRepository persists one row per delivery attempt.
type WebhookLogRepository interface {
	Create(ctx context.Context, l *domain.WebhookLog) error
	ListByEvent(ctx context.Context, eventID int64) ([]*domain.WebhookLog, error)
}

// AdminStats is the aggregate view backing GET /admin/stats.
type AdminStats struct {
	TotalOrders     int64
	TotalPayments   int64
	CapturedAmount  int64
	RefundedAmount  int64
	FlaggedPayments int64
	FailedPayments  int64
}

// AdminRepository answers read-only analytics queries.
type AdminRepository interface {
	Stats(ctx context.Context) (*AdminStats, error)
}
