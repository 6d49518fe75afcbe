package service

import (
	"context"
	"errors"
	"time"

	"payflow/internal/core/domain"
	"payflow/internal/core/ports"
	"payflow/pkg/apperror"

	"github.com/google/uuid"
)

// errOrderMissingForPayment indicates a payment row survived after its
// parent order row vanished, which the schema's foreign key should prevent.
var errOrderMissingForPayment = errors.New("order referenced by payment not found")

type paymentService struct {
	db          ports.DBTransactor
	orderRepo   ports.OrderRepository
	paymentRepo ports.PaymentRepository
	webhookRepo ports.WebhookEventRepository
	idSvc       ports.IdentifierService
	fraud       ports.FraudEngine
	authorizer  ports.AuthorizationSimulator
	notifier    WebhookNotifier
}

// NewPaymentService creates a PaymentService. notifier may be nil, in which
// case the dispatcher relies on its poll loop alone.
func NewPaymentService(
	db ports.DBTransactor,
	orderRepo ports.OrderRepository,
	paymentRepo ports.PaymentRepository,
	webhookRepo ports.WebhookEventRepository,
	idSvc ports.IdentifierService,
	fraud ports.FraudEngine,
	authorizer ports.AuthorizationSimulator,
	notifier WebhookNotifier,
) ports.PaymentService {
	return &paymentService{
		db: db, orderRepo: orderRepo, paymentRepo: paymentRepo, webhookRepo: webhookRepo,
		idSvc: idSvc, fraud: fraud, authorizer: authorizer, notifier: notifier,
	}
}

// Submit is the hosted-checkout entry point: no merchant authentication, the
// order reference itself is the capability. It evaluates fraud and runs the
// authorization simulator before opening any transaction, then commits the
// resulting state transition and outbox rows atomically.
func (s *paymentService) Submit(ctx context.Context, req ports.SubmitPaymentRequest) (*domain.Payment, error) {
	order, err := s.orderRepo.GetByRef(ctx, req.OrderRef)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	if order == nil {
		return nil, apperror.NotFound("order")
	}
	if !order.CanAcceptPayment() {
		return nil, apperror.Conflict("order is not accepting new payment attempts")
	}

	existing, err := s.paymentRepo.ListByOrder(ctx, order.ID)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	for _, p := range existing {
		if p.Status != domain.PaymentFailed {
			return nil, apperror.Conflict("order already has a non-failed payment attempt")
		}
	}

	identity := identityOf(req)
	if identity == "" {
		return nil, apperror.Validation("one of vpa, email, or contact is required to identify the payer")
	}

	history, err := s.paymentRepo.ListRecentByIdentity(ctx, order.MerchantID, identity, FraudLookbackWindow)
	if err != nil {
		return nil, apperror.Internal(err)
	}

	attempt := ports.FraudAttempt{
		MerchantID: order.MerchantID,
		Identity:   identity,
		Amount:     order.Amount,
		Method:     req.Method,
		VPA:        req.VPA,
	}
	isFlagged, hits := s.fraud.Evaluate(attempt, ports.FraudHistory{RecentPayments: history})

	// The simulated authorization call stands in for an outbound network
	// call to an acquiring bank; it must not run inside a DB transaction.
	decision := s.authorizer.Authorize(ctx, attempt, isFlagged)

	payment := &domain.Payment{
		ID:         uuid.New(),
		PaymentRef: s.idSvc.NewRef("pf_pay_"),
		OrderID:    order.ID,
		Amount:     order.Amount,
		Method:     req.Method,
		VPA:        optionalString(req.VPA),
		CardLast4:  cardLast4(req.CardNumber),
		CardName:   optionalString(req.CardName),
		Email:      optionalString(req.Email),
		Contact:    optionalString(req.Contact),
		Phone:      optionalString(req.Phone),
		IsFlagged:  isFlagged,
		RuleHits:   hits,
		CreatedAt:  time.Now().UTC(),
	}

	var events []*domain.WebhookEvent
	var finalOrderStatus domain.OrderStatus

	if !decision.Authorized {
		payment.Status = domain.PaymentFailed
		payment.ErrorCode = optionalString(decision.ErrorCode)
		payment.ErrorReason = optionalString(decision.ErrorReason)
		finalOrderStatus = order.NextOnFailedPayment()
		ev, err := buildWebhookEvent(order.MerchantID, domain.EventPaymentFailed, paymentWebhookBody(payment, order))
		if err != nil {
			return nil, apperror.Internal(err)
		}
		events = append(events, ev)
	} else if order.AutoCapture {
		payment.Status = domain.PaymentCaptured
		finalOrderStatus = domain.OrderPaid
		evCaptured, err := buildWebhookEvent(order.MerchantID, domain.EventPaymentCaptured, paymentWebhookBody(payment, order))
		if err != nil {
			return nil, apperror.Internal(err)
		}
		evPaid, err := buildWebhookEvent(order.MerchantID, domain.EventOrderPaid, orderWebhookBody(order, finalOrderStatus))
		if err != nil {
			return nil, apperror.Internal(err)
		}
		events = append(events, evCaptured, evPaid)
	} else {
		payment.Status = domain.PaymentAuthorized
		finalOrderStatus = domain.OrderAttempted
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	defer tx.Rollback(ctx)

	lockedOrder, err := s.orderRepo.GetByRefForUpdate(ctx, tx, req.OrderRef)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	if lockedOrder == nil {
		return nil, apperror.NotFound("order")
	}
	if !lockedOrder.CanAcceptPayment() {
		return nil, apperror.Conflict("order is not accepting new payment attempts")
	}
	current, err := s.paymentRepo.ListByOrder(ctx, lockedOrder.ID)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	for _, p := range current {
		if p.Status != domain.PaymentFailed {
			return nil, apperror.Conflict("order already has a non-failed payment attempt")
		}
	}

	if err := s.paymentRepo.Create(ctx, tx, payment); err != nil {
		return nil, apperror.Internal(err)
	}
	if err := s.orderRepo.UpdateStatus(ctx, tx, lockedOrder.ID, finalOrderStatus); err != nil {
		return nil, apperror.Internal(err)
	}
	for _, ev := range events {
		if err := s.webhookRepo.Create(ctx, tx, ev); err != nil {
			return nil, apperror.Internal(err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, apperror.Internal(err)
	}
	if len(events) > 0 {
		notify(ctx, s.notifier)
	}
	return payment, nil
}

func (s *paymentService) GetByRef(ctx context.Context, merchantID uuid.UUID, paymentRef string) (*domain.Payment, error) {
	payment, order, err := s.loadPaymentAndOrder(ctx, paymentRef)
	if err != nil {
		return nil, err
	}
	if order.MerchantID != merchantID {
		return nil, apperror.NotFound("payment")
	}
	return payment, nil
}

// Capture explicitly captures a payment left authorized because its order
// had auto_capture=false. Capturing an already-captured payment is a no-op
// that returns the existing resource.
func (s *paymentService) Capture(ctx context.Context, merchantID uuid.UUID, paymentRef string) (*domain.Payment, error) {
	payment, order, err := s.loadPaymentAndOrder(ctx, paymentRef)
	if err != nil {
		return nil, err
	}
	if order.MerchantID != merchantID {
		return nil, apperror.NotFound("payment")
	}
	if payment.Status == domain.PaymentCaptured {
		return payment, nil
	}
	if payment.Status != domain.PaymentAuthorized {
		return nil, apperror.Conflict("only an authorized payment can be captured")
	}

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
	if locked.Status == domain.PaymentCaptured {
		if cerr := tx.Commit(ctx); cerr != nil {
			return nil, apperror.Internal(cerr)
		}
		return locked, nil
	}
	if locked.Status != domain.PaymentAuthorized {
		return nil, apperror.Conflict("only an authorized payment can be captured")
	}

	if err := s.paymentRepo.UpdateStatus(ctx, tx, locked.ID, domain.PaymentCaptured, nil, nil); err != nil {
		return nil, apperror.Internal(err)
	}
	if err := s.orderRepo.UpdateStatus(ctx, tx, order.ID, domain.OrderPaid); err != nil {
		return nil, apperror.Internal(err)
	}
	locked.Status = domain.PaymentCaptured

	evCaptured, err := buildWebhookEvent(order.MerchantID, domain.EventPaymentCaptured, paymentWebhookBody(locked, order))
	if err != nil {
		return nil, apperror.Internal(err)
	}
	evPaid, err := buildWebhookEvent(order.MerchantID, domain.EventOrderPaid, orderWebhookBody(order, domain.OrderPaid))
	if err != nil {
		return nil, apperror.Internal(err)
	}
	if err := s.webhookRepo.Create(ctx, tx, evCaptured); err != nil {
		return nil, apperror.Internal(err)
	}
	if err := s.webhookRepo.Create(ctx, tx, evPaid); err != nil {
		return nil, apperror.Internal(err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, apperror.Internal(err)
	}
	notify(ctx, s.notifier)
	return locked, nil
}

func (s *paymentService) ListFlagged(ctx context.Context, limit, offset int) ([]*domain.Payment, error) {
	payments, err := s.paymentRepo.ListFlagged(ctx, limit, offset)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	return payments, nil
}

func (s *paymentService) loadPaymentAndOrder(ctx context.Context, paymentRef string) (*domain.Payment, *domain.Order, error) {
	payment, err := s.paymentRepo.GetByRef(ctx, paymentRef)
	if err != nil {
		return nil, nil, apperror.Internal(err)
	}
	if payment == nil {
		return nil, nil, apperror.NotFound("payment")
	}
	order, err := s.orderRepo.GetByID(ctx, payment.OrderID)
	if err != nil {
		return nil, nil, apperror.Internal(err)
	}
	if order == nil {
		return nil, nil, apperror.Internal(errOrderMissingForPayment)
	}
	return payment, order, nil
}

func identityOf(req ports.SubmitPaymentRequest) string {
	switch {
	case req.VPA != "":
		return req.VPA
	case req.Email != "":
		return req.Email
	case req.Contact != "":
		return req.Contact
	default:
		return ""
	}
}

func optionalString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func cardLast4(cardNumber string) *string {
	if len(cardNumber) < 4 {
		return nil
	}
	last4 := cardNumber[len(cardNumber)-4:]
	return &last4
}

type webhookPaymentBody struct {
	PaymentRef string `json:"payment_ref"`
	OrderRef   string `json:"order_ref"`
	Amount     int64  `json:"amount"`
	Status     string `json:"status"`
}

type webhookOrderBody struct {
	OrderRef string `json:"order_ref"`
	Amount   int64  `json:"amount"`
	Status   string `json:"status"`
}

func paymentWebhookBody(p *domain.Payment, o *domain.Order) webhookPaymentBody {
	return webhookPaymentBody{PaymentRef: p.PaymentRef, OrderRef: o.OrderRef, Amount: p.Amount, Status: string(p.Status)}
}

func orderWebhookBody(o *domain.Order, status domain.OrderStatus) webhookOrderBody {
	return webhookOrderBody{OrderRef: o.OrderRef, Amount: o.Amount, Status: string(status)}
}
