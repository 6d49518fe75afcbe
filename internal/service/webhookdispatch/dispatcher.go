// Package webhookdispatch drains the webhook outbox and delivers events to
// merchant endpoints. The Postgres outbox is the only source of truth for
// delivery state; this package never holds that state in memory across
// calls, so any number of dispatcher replicas can run the same poll loop
// concurrently without coordinating beyond SELECT ... FOR UPDATE SKIP LOCKED.
package webhookdispatch

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"time"

	"payflow/internal/core/domain"
	"payflow/internal/core/ports"

	"github.com/rs/zerolog"
)

const (
	defaultPollInterval = 5 * time.Second
	claimBatchSize       = 25
	deliveryTimeout      = 10 * time.Second
	signatureHeader      = "X-Payflow-Signature"
	eventHeader          = "X-Payflow-Event"
)

// Dispatcher claims pending outbox rows and POSTs them to each merchant's
// webhook_url, signing the body with the merchant's webhook_secret.
type Dispatcher struct {
	eventRepo    ports.WebhookEventRepository
	logRepo      ports.WebhookLogRepository
	merchantRepo ports.MerchantRepository
	signer       ports.SigningService
	httpClient   *http.Client
	log          zerolog.Logger
	pollInterval time.Duration
}

// NewDispatcher creates a Dispatcher. httpClient may be nil, in which case a
// client with deliveryTimeout is used.
func NewDispatcher(
	eventRepo ports.WebhookEventRepository,
	logRepo ports.WebhookLogRepository,
	merchantRepo ports.MerchantRepository,
	signer ports.SigningService,
	httpClient *http.Client,
	log zerolog.Logger,
) *Dispatcher {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: deliveryTimeout}
	}
	return &Dispatcher{
		eventRepo: eventRepo, logRepo: logRepo, merchantRepo: merchantRepo,
		signer: signer, httpClient: httpClient, log: log, pollInterval: defaultPollInterval,
	}
}

// Run polls on a fixed interval until ctx is cancelled. wake, if non-nil, is
// an additional trigger an asynq task handler can send to on to force an
// immediate drain instead of waiting for the next tick.
func (d *Dispatcher) Run(ctx context.Context, wake <-chan struct{}) {
	ticker := time.NewTicker(d.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			d.drain(ctx)
		case <-wake:
			d.drain(ctx)
		}
	}
}

// DrainOnce claims and delivers a single batch, returning how many rows were
// claimed. Exposed so an asynq task handler can invoke it synchronously in
// response to a wake task rather than only waiting on Run's own ticker.
func (d *Dispatcher) DrainOnce(ctx context.Context) (int, error) {
	events, err := d.eventRepo.ClaimPending(ctx, claimBatchSize)
	if err != nil {
		return 0, err
	}
	for _, ev := range events {
		d.deliver(ctx, ev)
	}
	return len(events), nil
}

func (d *Dispatcher) drain(ctx context.Context) {
	if _, err := d.DrainOnce(ctx); err != nil {
		d.log.Error().Err(err).Msg("failed to claim pending webhook events")
	}
}

func (d *Dispatcher) deliver(ctx context.Context, ev *domain.WebhookEvent) {
	merchant, err := d.merchantRepo.GetByID(ctx, ev.MerchantID)
	if err != nil || merchant == nil || merchant.WebhookURL == nil || *merchant.WebhookURL == "" {
		d.markFailedNoEndpoint(ctx, ev)
		return
	}

	signature := d.signer.Sign(merchant.WebhookSecret, ev.Payload)

	reqCtx, cancel := context.WithTimeout(ctx, deliveryTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodPost, *merchant.WebhookURL, bytes.NewReader([]byte(ev.Payload)))
	if err != nil {
		d.recordAttempt(ctx, ev, nil, nil, err)
		return
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(signatureHeader, signature)
	req.Header.Set(eventHeader, string(ev.Event))

	resp, err := d.httpClient.Do(req)
	if err != nil {
		d.recordAttempt(ctx, ev, nil, nil, err)
		return
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	bodyStr := string(body)
	status := resp.StatusCode

	if status >= 200 && status < 300 {
		d.recordAttempt(ctx, ev, &status, &bodyStr, nil)
		if err := d.eventRepo.MarkDelivered(ctx, ev.ID, status, bodyStr); err != nil {
			d.log.Error().Err(err).Int64("event_id", ev.ID).Msg("failed to mark webhook event delivered")
		}
		return
	}

	d.recordAttempt(ctx, ev, &status, &bodyStr, nil)
	d.retryOrFail(ctx, ev, &status, &bodyStr)
}

func (d *Dispatcher) markFailedNoEndpoint(ctx context.Context, ev *domain.WebhookEvent) {
	msg := "merchant has no webhook_url configured"
	d.recordAttempt(ctx, ev, nil, nil, errString(msg))
	if err := d.eventRepo.MarkFailed(ctx, ev.ID, nil, &msg); err != nil {
		d.log.Error().Err(err).Int64("event_id", ev.ID).Msg("failed to mark webhook event failed")
	}
}

func (d *Dispatcher) retryOrFail(ctx context.Context, ev *domain.WebhookEvent, status *int, body *string) {
	attempts := ev.Attempts + 1
	if attempts >= domain.MaxWebhookAttempts {
		if err := d.eventRepo.MarkFailed(ctx, ev.ID, status, body); err != nil {
			d.log.Error().Err(err).Int64("event_id", ev.ID).Msg("failed to mark webhook event failed")
		}
		return
	}
	nextAttemptAt := time.Now().UTC().Add(domain.Backoff(attempts))
	if err := d.eventRepo.MarkRetry(ctx, ev.ID, attempts, nextAttemptAt, status, body); err != nil {
		d.log.Error().Err(err).Int64("event_id", ev.ID).Msg("failed to schedule webhook retry")
	}
}

func (d *Dispatcher) recordAttempt(ctx context.Context, ev *domain.WebhookEvent, status *int, body *string, deliveryErr error) {
	log := &domain.WebhookLog{
		WebhookEventID: ev.ID,
		Attempt:        ev.Attempts + 1,
		HTTPStatus:     status,
		ResponseBody:   body,
		CreatedAt:      time.Now().UTC(),
	}
	if deliveryErr != nil {
		errMsg := deliveryErr.Error()
		log.Error = &errMsg
	}
	if err := d.logRepo.Create(ctx, log); err != nil {
		d.log.Error().Err(err).Int64("event_id", ev.ID).Msg("failed to persist webhook delivery log")
	}
}

type errString string

func (e errString) Error() string { return string(e) }
