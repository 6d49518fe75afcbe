package service

import (
	"time"

	"context"

	"payflow/internal/core/domain"
	"payflow/internal/core/ports"
	"payflow/pkg/apperror"

	"github.com/google/uuid"
)

type refundService struct {
	db          ports.DBTransactor
	orderRepo   ports.OrderRepository
	paymentRepo ports.PaymentRepository
	refundRepo  ports.RefundRepository
	webhookRepo ports.WebhookEventRepository
	idSvc       ports.IdentifierService
	authorizer  ports.AuthorizationSimulator
	notifier    WebhookNotifier
}

// NewRefundService creates a RefundService.
func NewRefundService(
	db ports.DBTransactor,
	orderRepo ports.OrderRepository,
	paymentRepo ports.PaymentRepository,
	refundRepo ports.RefundRepository,
	webhookRepo ports.WebhookEventRepository,
	idSvc ports.IdentifierService,
	authorizer ports.AuthorizationSimulator,
	notifier WebhookNotifier,
) ports.RefundService {
	return &refundService{
		db: db, orderRepo: orderRepo, paymentRepo: paymentRepo, refundRepo: refundRepo,
		webhookRepo: webhookRepo, idSvc: idSvc, authorizer: authorizer, notifier: notifier,
	}
}

// CreateRefund reverses part or all of a captured payment. The sum of all
// processed refunds against a payment may never exceed its original amount;
// this is enforced inside the locking transaction, not just validated
// up front, so concurrent refund requests can't both slip through.
func (s *refundService) CreateRefund(ctx context.Context, merchantID uuid.UUID, paymentRef string, amount int64, reason string, notes *string) (*domain.Refund, error) {
	if amount <= 0 {
		return nil, apperror.Validation("amount must be positive")
	}

	payment, err := s.paymentRepo.GetByRef(ctx, paymentRef)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	if payment == nil {
		return nil, apperror.NotFound("payment")
	}
	order, err := s.orderRepo.GetByID(ctx, payment.OrderID)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	if order == nil || order.MerchantID != merchantID {
		return nil, apperror.NotFound("payment")
	}

	// The simulated authorization call stands in for an outbound network
	// call to an acquiring bank; it must not run inside a DB transaction.
	decision := s.authorizer.Authorize(ctx, refundAttempt(payment), false)

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	defer tx.Rollback(ctx)

	locked, err := s.paymentRepo.GetByRefForUpdate(ctx, tx, paymentRef)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	if locked == nil {
		return nil, apperror.NotFound("payment")
	}
	if !locked.IsRefundable() {
		return nil, apperror.Conflict("payment is not in a refundable state")
	}

	alreadyRefunded, err := s.refundRepo.SumProcessedByPayment(ctx, tx, locked.ID)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	if alreadyRefunded+amount > locked.Amount {
		return nil, apperror.Conflict("refund amount exceeds the amount still refundable on this payment")
	}

	refund := &domain.Refund{
		ID:        uuid.New(),
		RefundRef: s.idSvc.NewRef("pf_rfnd_"),
		PaymentID: locked.ID,
		Amount:    amount,
		Reason:    reason,
		Notes:     notes,
		Status:    domain.RefundProcessed,
		CreatedAt: time.Now().UTC(),
	}

	if !decision.Authorized {
		refund.Status = domain.RefundFailed
		if err := s.refundRepo.Create(ctx, tx, refund); err != nil {
			return nil, apperror.Internal(err)
		}
		if err := tx.Commit(ctx); err != nil {
			return nil, apperror.Internal(err)
		}
		return refund, nil
	}

	if err := s.refundRepo.Create(ctx, tx, refund); err != nil {
		return nil, apperror.Internal(err)
	}

	newStatus := domain.PaymentPartiallyRefunded
	if alreadyRefunded+amount == locked.Amount {
		newStatus = domain.PaymentRefunded
	}
	if err := s.paymentRepo.UpdateStatus(ctx, tx, locked.ID, newStatus, nil, nil); err != nil {
		return nil, apperror.Internal(err)
	}

	ev, err := buildWebhookEvent(order.MerchantID, domain.EventRefundProcessed, refundWebhookBody(refund, order))
	if err != nil {
		return nil, apperror.Internal(err)
	}
	if err := s.webhookRepo.Create(ctx, tx, ev); err != nil {
		return nil, apperror.Internal(err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, apperror.Internal(err)
	}
	notify(ctx, s.notifier)
	return refund, nil
}

// refundAttempt adapts the payment being refunded into the shape the
// authorization simulator expects, reusing its fail@ VPA convention as the
// deterministic decline trigger for refunds too.
func refundAttempt(p *domain.Payment) ports.FraudAttempt {
	attempt := ports.FraudAttempt{Amount: p.Amount, Method: p.Method}
	if p.VPA != nil {
		attempt.VPA = *p.VPA
		attempt.Identity = *p.VPA
	}
	return attempt
}

func (s *refundService) ListByPayment(ctx context.Context, merchantID uuid.UUID, paymentRef string) ([]*domain.Refund, error) {
	payment, err := s.paymentRepo.GetByRef(ctx, paymentRef)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	if payment == nil {
		return nil, apperror.NotFound("payment")
	}
	order, err := s.orderRepo.GetByID(ctx, payment.OrderID)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	if order == nil || order.MerchantID != merchantID {
		return nil, apperror.NotFound("payment")
	}
	refunds, err := s.refundRepo.ListByPayment(ctx, payment.ID)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	return refunds, nil
}

type webhookRefundBody struct {
	RefundRef string `json:"refund_ref"`
	OrderRef  string `json:"order_ref"`
	Amount    int64  `json:"amount"`
	Status    string `json:"status"`
}

func refundWebhookBody(r *domain.Refund, o *domain.Order) webhookRefundBody {
	return webhookRefundBody{RefundRef: r.RefundRef, OrderRef: o.OrderRef, Amount: r.Amount, Status: string(r.Status)}
}
