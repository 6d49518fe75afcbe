package service

import (
	"context"
	"errors"
	"time"

	"payflow/internal/core/domain"
	"payflow/internal/core/ports"
	"payflow/pkg/apperror"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
)

const uniqueViolation = "23505"

// IdempotencyCache caches idempotency-key -> order_ref so a burst of
// retries for the same key doesn't all hit the database's unique index.
// It is an optional fast path; a miss always falls back to orderRepo.
type IdempotencyCache interface {
	GetOrderRef(ctx context.Context, merchantID, key string) (string, bool, error)
	SetOrderRef(ctx context.Context, merchantID, key, orderRef string) error
}

type orderService struct {
	db          ports.DBTransactor
	orderRepo   ports.OrderRepository
	paymentRepo ports.PaymentRepository
	idSvc       ports.IdentifierService
	idemCache   IdempotencyCache
}

// NewOrderService creates an OrderService. idemCache may be nil.
func NewOrderService(db ports.DBTransactor, orderRepo ports.OrderRepository, paymentRepo ports.PaymentRepository, idSvc ports.IdentifierService, idemCache IdempotencyCache) ports.OrderService {
	return &orderService{db: db, orderRepo: orderRepo, paymentRepo: paymentRepo, idSvc: idSvc, idemCache: idemCache}
}

// CreateOrder creates a new order, or replays an existing one when req
// carries an idempotency key already used by this merchant with an
// identical body. A key reused with a different body conflicts.
func (s *orderService) CreateOrder(ctx context.Context, req ports.CreateOrderRequest) (*domain.Order, bool, error) {
	if req.Amount <= 0 {
		return nil, false, apperror.Validation("amount must be positive")
	}
	currency := req.Currency
	if currency == "" {
		currency = "INR"
	}

	if req.IdempotencyKey != nil && *req.IdempotencyKey != "" {
		existing, err := s.lookupByIdempotencyKey(ctx, req.MerchantID, *req.IdempotencyKey)
		if err != nil {
			return nil, false, apperror.Internal(err)
		}
		if existing != nil {
			if !sameOrderBody(existing, req, currency) {
				return nil, false, apperror.Conflict("idempotency key already used with a different request body")
			}
			return existing, true, nil
		}
	}

	order := &domain.Order{
		ID:             uuid.New(),
		OrderRef:       s.idSvc.NewRef("pf_order_"),
		MerchantID:     req.MerchantID,
		Amount:         req.Amount,
		Currency:       currency,
		Receipt:        req.Receipt,
		Notes:          req.Notes,
		Status:         domain.OrderCreated,
		AutoCapture:    req.AutoCapture,
		IdempotencyKey: req.IdempotencyKey,
		CreatedAt:      time.Now().UTC(),
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, false, apperror.Internal(err)
	}
	defer tx.Rollback(ctx)

	if err := s.orderRepo.Create(ctx, tx, order); err != nil {
		if isUniqueViolation(err) && req.IdempotencyKey != nil {
			existing, gerr := s.orderRepo.GetByIdempotencyKey(ctx, req.MerchantID, *req.IdempotencyKey)
			if gerr != nil {
				return nil, false, apperror.Internal(gerr)
			}
			if existing != nil {
				if !sameOrderBody(existing, req, currency) {
					return nil, false, apperror.Conflict("idempotency key already used with a different request body")
				}
				return existing, true, nil
			}
		}
		return nil, false, apperror.Internal(err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, false, apperror.Internal(err)
	}
	if s.idemCache != nil && req.IdempotencyKey != nil {
		_ = s.idemCache.SetOrderRef(ctx, req.MerchantID.String(), *req.IdempotencyKey, order.OrderRef)
	}
	return order, false, nil
}

// lookupByIdempotencyKey checks the cache before falling back to the
// database's unique (merchant_id, idempotency_key) index.
func (s *orderService) lookupByIdempotencyKey(ctx context.Context, merchantID uuid.UUID, key string) (*domain.Order, error) {
	if s.idemCache != nil {
		if orderRef, ok, err := s.idemCache.GetOrderRef(ctx, merchantID.String(), key); err == nil && ok {
			return s.orderRepo.GetByRef(ctx, orderRef)
		}
	}
	return s.orderRepo.GetByIdempotencyKey(ctx, merchantID, key)
}

func sameOrderBody(o *domain.Order, req ports.CreateOrderRequest, currency string) bool {
	return o.Amount == req.Amount && o.Currency == currency && o.Receipt == req.Receipt
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == uniqueViolation
	}
	return false
}

func (s *orderService) GetByRef(ctx context.Context, merchantID uuid.UUID, orderRef string) (*domain.Order, error) {
	order, err := s.orderRepo.GetByRef(ctx, orderRef)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	if order == nil || order.MerchantID != merchantID {
		return nil, apperror.NotFound("order")
	}
	return order, nil
}

// GetPublicByRef looks up an order with no merchant ownership check: used
// by the unauthenticated hosted checkout page, where the order_ref is the
// capability.
func (s *orderService) GetPublicByRef(ctx context.Context, orderRef string) (*domain.Order, error) {
	order, err := s.orderRepo.GetByRef(ctx, orderRef)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	if order == nil {
		return nil, apperror.NotFound("order")
	}
	return order, nil
}

func (s *orderService) List(ctx context.Context, merchantID uuid.UUID, limit, offset int) ([]*domain.Order, error) {
	orders, err := s.orderRepo.List(ctx, merchantID, limit, offset)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	return orders, nil
}

func (s *orderService) ListPayments(ctx context.Context, merchantID uuid.UUID, orderRef string) ([]*domain.Payment, error) {
	order, err := s.GetByRef(ctx, merchantID, orderRef)
	if err != nil {
		return nil, err
	}
	payments, err := s.paymentRepo.ListByOrder(ctx, order.ID)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	return payments, nil
}
