// Package queue wires asynq as the webhook dispatcher's notification
// channel: a zero-delay task that wakes an idle worker the instant a new
// outbox row commits, instead of waiting out the next poll tick. Asynq
// carries no delivery state of its own — the Postgres outbox remains the
// single source of truth for status, attempts, and next_attempt_at.
package queue

import (
	"context"
	"time"

	"github.com/hibiken/asynq"
	"github.com/rs/zerolog"
)

const TaskWebhookWake = "webhook:wake"

// Notifier enqueues a wake task on every new outbox row. It satisfies
// service.WebhookNotifier without importing the service package, keeping
// the dependency direction adapter -> nothing.
type Notifier struct {
	client *asynq.Client
	log    zerolog.Logger
}

// NewNotifier creates a Notifier backed by redisOpt (the same Redis instance
// used elsewhere in the gateway is fine; asynq namespaces its own keys).
func NewNotifier(redisOpt asynq.RedisConnOpt, log zerolog.Logger) *Notifier {
	return &Notifier{client: asynq.NewClient(redisOpt), log: log}
}

// Notify enqueues a wake task, deduplicated for a short window so a burst of
// commits doesn't flood the queue with redundant wakeups.
func (n *Notifier) Notify(ctx context.Context) {
	task := asynq.NewTask(TaskWebhookWake, nil)
	if _, err := n.client.EnqueueContext(ctx, task,
		asynq.MaxRetry(0),
		asynq.Unique(2*time.Second),
	); err != nil && err != asynq.ErrDuplicateTask {
		n.log.Warn().Err(err).Msg("failed to enqueue webhook wake task")
	}
}

func (n *Notifier) Close() error {
	return n.client.Close()
}
