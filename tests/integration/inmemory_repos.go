// Package integration exercises the gateway's HTTP surface end-to-end
// against in-memory fakes for every repository port, wired through the
// real services and the real router.
package integration

import (
	"context"
	"sort"
	"sync"
	"time"

	"payflow/internal/core/domain"
	"payflow/internal/core/ports"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// --- In-memory transactor (no-op tx) ---

type inMemoryTransactor struct{}

func newInMemoryTransactor() *inMemoryTransactor { return &inMemoryTransactor{} }

func (t *inMemoryTransactor) Begin(ctx context.Context) (pgx.Tx, error) {
	return &noopTx{}, nil
}

// noopTx is a no-op pgx.Tx: the fake repos below mutate their maps directly,
// with no separate "staged" view, so commit/rollback are both no-ops. Tests
// run sequentially against one app, so this never races with itself.
type noopTx struct{}

func (t *noopTx) Begin(ctx context.Context) (pgx.Tx, error) { return t, nil }
func (t *noopTx) Commit(ctx context.Context) error          { return nil }
func (t *noopTx) Rollback(ctx context.Context) error        { return nil }
func (t *noopTx) CopyFrom(ctx context.Context, tableName pgx.Identifier, columnNames []string, rowSrc pgx.CopyFromSource) (int64, error) {
	return 0, nil
}
func (t *noopTx) SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults { return nil }
func (t *noopTx) LargeObjects() pgx.LargeObjects                              { return pgx.LargeObjects{} }
func (t *noopTx) Prepare(ctx context.Context, name, sql string) (*pgconn.StatementDescription, error) {
	return nil, nil
}
func (t *noopTx) Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error) {
	return pgconn.NewCommandTag(""), nil
}
func (t *noopTx) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	return nil, nil
}
func (t *noopTx) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row { return nil }
func (t *noopTx) Conn() *pgx.Conn                                              { return nil }

// --- In-memory user repo ---

type inMemoryUserRepo struct {
	mu    sync.RWMutex
	users map[uuid.UUID]*domain.User
}

func newInMemoryUserRepo() *inMemoryUserRepo {
	return &inMemoryUserRepo{users: make(map[uuid.UUID]*domain.User)}
}

func (r *inMemoryUserRepo) Create(ctx context.Context, u *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.users {
		if existing.Email == u.Email {
			return pgUniqueViolation()
		}
	}
	cp := *u
	r.users[u.ID] = &cp
	return nil
}

func (r *inMemoryUserRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	u, ok := r.users[id]
	if !ok {
		return nil, nil
	}
	cp := *u
	return &cp, nil
}

func (r *inMemoryUserRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, u := range r.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *inMemoryUserRepo) UpdatePasswordHash(ctx context.Context, id uuid.UUID, passwordHash string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return nil
	}
	u.PasswordHash = passwordHash
	return nil
}

// --- In-memory merchant repo ---

type inMemoryMerchantRepo struct {
	mu        sync.RWMutex
	merchants map[uuid.UUID]*domain.Merchant
}

func newInMemoryMerchantRepo() *inMemoryMerchantRepo {
	return &inMemoryMerchantRepo{merchants: make(map[uuid.UUID]*domain.Merchant)}
}

func (r *inMemoryMerchantRepo) Create(ctx context.Context, m *domain.Merchant) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *m
	r.merchants[m.ID] = &cp
	return nil
}

func (r *inMemoryMerchantRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Merchant, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	m, ok := r.merchants[id]
	if !ok {
		return nil, nil
	}
	cp := *m
	return &cp, nil
}

func (r *inMemoryMerchantRepo) GetByUserID(ctx context.Context, userID uuid.UUID) (*domain.Merchant, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, m := range r.merchants {
		if m.UserID == userID {
			cp := *m
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *inMemoryMerchantRepo) UpdateWebhookURL(ctx context.Context, merchantID uuid.UUID, url *string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.merchants[merchantID]
	if !ok {
		return nil
	}
	m.WebhookURL = url
	return nil
}

// --- In-memory API key repo ---

type inMemoryApiKeyRepo struct {
	mu   sync.RWMutex
	keys map[string]*domain.ApiKey
}

func newInMemoryApiKeyRepo() *inMemoryApiKeyRepo {
	return &inMemoryApiKeyRepo{keys: make(map[string]*domain.ApiKey)}
}

func (r *inMemoryApiKeyRepo) Create(ctx context.Context, k *domain.ApiKey) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *k
	r.keys[k.KeyID] = &cp
	return nil
}

func (r *inMemoryApiKeyRepo) GetByKeyID(ctx context.Context, keyID string) (*domain.ApiKey, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	k, ok := r.keys[keyID]
	if !ok {
		return nil, nil
	}
	cp := *k
	return &cp, nil
}

func (r *inMemoryApiKeyRepo) Revoke(ctx context.Context, keyID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	k, ok := r.keys[keyID]
	if !ok {
		return nil
	}
	k.Active = false
	return nil
}

func (r *inMemoryApiKeyRepo) TouchLastUsed(ctx context.Context, keyID string, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	k, ok := r.keys[keyID]
	if !ok {
		return nil
	}
	k.LastUsedAt = &at
	return nil
}

// --- In-memory order repo ---

type inMemoryOrderRepo struct {
	mu     sync.RWMutex
	orders map[uuid.UUID]*domain.Order
}

func newInMemoryOrderRepo() *inMemoryOrderRepo {
	return &inMemoryOrderRepo{orders: make(map[uuid.UUID]*domain.Order)}
}

func (r *inMemoryOrderRepo) Create(ctx context.Context, tx pgx.Tx, o *domain.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if o.IdempotencyKey != nil && *o.IdempotencyKey != "" {
		for _, existing := range r.orders {
			if existing.MerchantID == o.MerchantID && existing.IdempotencyKey != nil && *existing.IdempotencyKey == *o.IdempotencyKey {
				return pgUniqueViolation()
			}
		}
	}
	cp := *o
	r.orders[o.ID] = &cp
	return nil
}

func (r *inMemoryOrderRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	o, ok := r.orders[id]
	if !ok {
		return nil, nil
	}
	cp := *o
	return &cp, nil
}

func (r *inMemoryOrderRepo) GetByIdempotencyKey(ctx context.Context, merchantID uuid.UUID, key string) (*domain.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, o := range r.orders {
		if o.MerchantID == merchantID && o.IdempotencyKey != nil && *o.IdempotencyKey == key {
			cp := *o
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *inMemoryOrderRepo) GetByRef(ctx context.Context, orderRef string) (*domain.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, o := range r.orders {
		if o.OrderRef == orderRef {
			cp := *o
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *inMemoryOrderRepo) GetByRefForUpdate(ctx context.Context, tx pgx.Tx, orderRef string) (*domain.Order, error) {
	return r.GetByRef(ctx, orderRef)
}

func (r *inMemoryOrderRepo) UpdateStatus(ctx context.Context, tx pgx.Tx, id uuid.UUID, status domain.OrderStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.orders[id]
	if !ok {
		return nil
	}
	o.Status = status
	return nil
}

func (r *inMemoryOrderRepo) List(ctx context.Context, merchantID uuid.UUID, limit, offset int) ([]*domain.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []*domain.Order
	for _, o := range r.orders {
		if o.MerchantID == merchantID {
			cp := *o
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return paginateOrders(out, limit, offset), nil
}

func paginateOrders(all []*domain.Order, limit, offset int) []*domain.Order {
	if offset >= len(all) {
		return []*domain.Order{}
	}
	end := offset + limit
	if limit <= 0 || end > len(all) {
		end = len(all)
	}
	return all[offset:end]
}

// --- In-memory payment repo ---

type inMemoryPaymentRepo struct {
	mu       sync.RWMutex
	payments map[uuid.UUID]*domain.Payment
}

func newInMemoryPaymentRepo() *inMemoryPaymentRepo {
	return &inMemoryPaymentRepo{payments: make(map[uuid.UUID]*domain.Payment)}
}

func (r *inMemoryPaymentRepo) Create(ctx context.Context, tx pgx.Tx, p *domain.Payment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *p
	r.payments[p.ID] = &cp
	return nil
}

func (r *inMemoryPaymentRepo) GetByRef(ctx context.Context, paymentRef string) (*domain.Payment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, p := range r.payments {
		if p.PaymentRef == paymentRef {
			cp := *p
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *inMemoryPaymentRepo) GetByRefForUpdate(ctx context.Context, tx pgx.Tx, paymentRef string) (*domain.Payment, error) {
	return r.GetByRef(ctx, paymentRef)
}

func (r *inMemoryPaymentRepo) UpdateStatus(ctx context.Context, tx pgx.Tx, id uuid.UUID, status domain.PaymentStatus, errorCode, errorReason *string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.payments[id]
	if !ok {
		return nil
	}
	p.Status = status
	p.ErrorCode = errorCode
	p.ErrorReason = errorReason
	return nil
}

func (r *inMemoryPaymentRepo) ListByOrder(ctx context.Context, orderID uuid.UUID) ([]*domain.Payment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []*domain.Payment
	for _, p := range r.payments {
		if p.OrderID == orderID {
			cp := *p
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (r *inMemoryPaymentRepo) ListRecentByIdentity(ctx context.Context, merchantID uuid.UUID, identity string, window time.Duration) ([]*domain.Payment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	cutoff := time.Now().UTC().Add(-window)
	var out []*domain.Payment
	for _, p := range r.payments {
		if paymentIdentity(p) != identity {
			continue
		}
		if p.CreatedAt.Before(cutoff) {
			continue
		}
		cp := *p
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func paymentIdentity(p *domain.Payment) string {
	if p.VPA != nil && *p.VPA != "" {
		return *p.VPA
	}
	if p.Email != nil && *p.Email != "" {
		return *p.Email
	}
	if p.Contact != nil && *p.Contact != "" {
		return *p.Contact
	}
	return ""
}

func (r *inMemoryPaymentRepo) ListFlagged(ctx context.Context, limit, offset int) ([]*domain.Payment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []*domain.Payment
	for _, p := range r.payments {
		if p.IsFlagged {
			cp := *p
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return paginatePayments(out, limit, offset), nil
}

func paginatePayments(all []*domain.Payment, limit, offset int) []*domain.Payment {
	if offset >= len(all) {
		return []*domain.Payment{}
	}
	end := offset + limit
	if limit <= 0 || end > len(all) {
		end = len(all)
	}
	return all[offset:end]
}

// --- In-memory refund repo ---

type inMemoryRefundRepo struct {
	mu      sync.RWMutex
	refunds map[uuid.UUID]*domain.Refund
}

func newInMemoryRefundRepo() *inMemoryRefundRepo {
	return &inMemoryRefundRepo{refunds: make(map[uuid.UUID]*domain.Refund)}
}

func (r *inMemoryRefundRepo) Create(ctx context.Context, tx pgx.Tx, rf *domain.Refund) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *rf
	r.refunds[rf.ID] = &cp
	return nil
}

func (r *inMemoryRefundRepo) SumProcessedByPayment(ctx context.Context, tx pgx.Tx, paymentID uuid.UUID) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var sum int64
	for _, rf := range r.refunds {
		if rf.PaymentID == paymentID && rf.Status == domain.RefundProcessed {
			sum += rf.Amount
		}
	}
	return sum, nil
}

func (r *inMemoryRefundRepo) ListByPayment(ctx context.Context, paymentID uuid.UUID) ([]*domain.Refund, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []*domain.Refund
	for _, rf := range r.refunds {
		if rf.PaymentID == paymentID {
			cp := *rf
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

// --- In-memory webhook event repo ---
//
// ClaimPending deliberately ignores NextAttemptAt's time gate: real backoff
// runs to 600s, which would make retry tests wait for wall-clock time that
// serves no purpose in a fast-running suite. It still enforces the pending
// filter and the attempt-count exhaustion the dispatcher relies on.
type inMemoryWebhookEventRepo struct {
	mu     sync.Mutex
	nextID int64
	events map[int64]*domain.WebhookEvent
}

func newInMemoryWebhookEventRepo() *inMemoryWebhookEventRepo {
	return &inMemoryWebhookEventRepo{events: make(map[int64]*domain.WebhookEvent)}
}

func (r *inMemoryWebhookEventRepo) Create(ctx context.Context, tx pgx.Tx, e *domain.WebhookEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	e.ID = r.nextID
	cp := *e
	r.events[e.ID] = &cp
	return nil
}

func (r *inMemoryWebhookEventRepo) ClaimPending(ctx context.Context, limit int) ([]*domain.WebhookEvent, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var ids []int64
	for id, e := range r.events {
		if e.Status == domain.WebhookPending {
			ids = append(ids, id)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	var out []*domain.WebhookEvent
	for _, id := range ids {
		if len(out) >= limit {
			break
		}
		cp := *r.events[id]
		out = append(out, &cp)
	}
	return out, nil
}

func (r *inMemoryWebhookEventRepo) MarkDelivered(ctx context.Context, id int64, responseCode int, responseBody string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.events[id]
	if !ok {
		return nil
	}
	e.Status = domain.WebhookDelivered
	e.Attempts++
	e.LastResponseCode = &responseCode
	e.LastResponseBody = &responseBody
	return nil
}

func (r *inMemoryWebhookEventRepo) MarkRetry(ctx context.Context, id int64, attempts int, nextAttemptAt time.Time, responseCode *int, responseBody *string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.events[id]
	if !ok {
		return nil
	}
	e.Attempts = attempts
	e.NextAttemptAt = nextAttemptAt
	e.LastResponseCode = responseCode
	e.LastResponseBody = responseBody
	return nil
}

func (r *inMemoryWebhookEventRepo) MarkFailed(ctx context.Context, id int64, responseCode *int, responseBody *string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.events[id]
	if !ok {
		return nil
	}
	e.Status = domain.WebhookFailed
	e.LastResponseCode = responseCode
	e.LastResponseBody = responseBody
	return nil
}

func (r *inMemoryWebhookEventRepo) ListByMerchant(ctx context.Context, merchantID uuid.UUID, limit, offset int) ([]*domain.WebhookEvent, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domain.WebhookEvent
	for _, e := range r.events {
		if e.MerchantID == merchantID {
			cp := *e
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	if offset >= len(out) {
		return []*domain.WebhookEvent{}, nil
	}
	end := offset + limit
	if limit <= 0 || end > len(out) {
		end = len(out)
	}
	return out[offset:end], nil
}

// --- In-memory webhook log repo ---

type inMemoryWebhookLogRepo struct {
	mu     sync.Mutex
	nextID int64
	logs   map[int64]*domain.WebhookLog
}

func newInMemoryWebhookLogRepo() *inMemoryWebhookLogRepo {
	return &inMemoryWebhookLogRepo{logs: make(map[int64]*domain.WebhookLog)}
}

func (r *inMemoryWebhookLogRepo) Create(ctx context.Context, l *domain.WebhookLog) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	l.ID = r.nextID
	cp := *l
	r.logs[l.ID] = &cp
	return nil
}

func (r *inMemoryWebhookLogRepo) ListByEvent(ctx context.Context, eventID int64) ([]*domain.WebhookLog, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domain.WebhookLog
	for _, l := range r.logs {
		if l.WebhookEventID == eventID {
			cp := *l
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Attempt < out[j].Attempt })
	return out, nil
}

// --- In-memory admin repo ---

type inMemoryAdminRepo struct {
	orderRepo   *inMemoryOrderRepo
	paymentRepo *inMemoryPaymentRepo
	refundRepo  *inMemoryRefundRepo
}

func newInMemoryAdminRepo(orderRepo *inMemoryOrderRepo, paymentRepo *inMemoryPaymentRepo, refundRepo *inMemoryRefundRepo) *inMemoryAdminRepo {
	return &inMemoryAdminRepo{orderRepo: orderRepo, paymentRepo: paymentRepo, refundRepo: refundRepo}
}

func (r *inMemoryAdminRepo) Stats(ctx context.Context) (*ports.AdminStats, error) {
	r.orderRepo.mu.RLock()
	totalOrders := int64(len(r.orderRepo.orders))
	r.orderRepo.mu.RUnlock()

	r.paymentRepo.mu.RLock()
	defer r.paymentRepo.mu.RUnlock()
	stats := &ports.AdminStats{TotalOrders: totalOrders}
	for _, p := range r.paymentRepo.payments {
		stats.TotalPayments++
		switch p.Status {
		case domain.PaymentCaptured, domain.PaymentPartiallyRefunded, domain.PaymentRefunded:
			stats.CapturedAmount += p.Amount
		case domain.PaymentFailed:
			stats.FailedPayments++
		}
		if p.IsFlagged {
			stats.FlaggedPayments++
		}
	}

	r.refundRepo.mu.RLock()
	defer r.refundRepo.mu.RUnlock()
	for _, rf := range r.refundRepo.refunds {
		if rf.Status == domain.RefundProcessed {
			stats.RefundedAmount += rf.Amount
		}
	}
	return stats, nil
}

// pgUniqueViolation mimics the *pgconn.PgError the real order/user repos
// return on a unique-index collision, closely enough for the service
// layer's errors.As(...,*pgconn.PgError) unique-violation check.
func pgUniqueViolation() error {
	return &pgconn.PgError{Code: "23505"}
}
