// Package txretry retries a transactional function when the database
// reports a transient serialization or deadlock failure, never when the
// function itself returns a business error.
package txretry

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

const maxAttempts = 3

// serializationFailure and deadlockDetected are the Postgres error codes a
// transaction may abort with under concurrent contention; retrying them is
// safe because nothing committed.
const (
	serializationFailure = "40001"
	deadlockDetected      = "40P01"
)

// Do runs fn up to maxAttempts times, retrying only on a transient
// Postgres conflict. Any other error, including the gateway's own
// apperror.Conflict for state-machine violations, is returned immediately.
func Do(ctx context.Context, fn func(ctx context.Context) error) error {
	var err error
	for attempt := 0; attempt < maxAttempts; attempt++ {
		err = fn(ctx)
		if err == nil || !isRetryable(err) {
			return err
		}
	}
	return err
}

func isRetryable(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == serializationFailure || pgErr.Code == deadlockDetected
	}
	return false
}
