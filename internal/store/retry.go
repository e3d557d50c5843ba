package store

import (
	"context"
	"log/slog"
	"time"

	"github.com/bookgraphapp/bookgraph-server/internal/errors"
)

// Startup connect retry policy. A store that is still initializing (the
// embedded store in particular) is a transient condition at process start;
// at request-serving time store failures are never retried.
const (
	ConnectAttempts  = 5
	ConnectBaseDelay = 500 * time.Millisecond
)

// ConnectWithRetry runs ping until it succeeds, retrying with bounded
// exponential backoff. The returned error is typed CodeUnavailable so callers
// can distinguish "store never came up" from request-time faults.
func ConnectWithRetry(ctx context.Context, log *slog.Logger, name string, ping func(context.Context) error) error {
	var lastErr error
	for attempt := 1; attempt <= ConnectAttempts; attempt++ {
		lastErr = ping(ctx)
		if lastErr == nil {
			if attempt > 1 {
				log.Info("store connected", "store", name, "attempt", attempt)
			}
			return nil
		}

		log.Warn("store connect failed",
			"store", name,
			"attempt", attempt,
			"max_attempts", ConnectAttempts,
			"error", lastErr)

		if attempt == ConnectAttempts {
			break
		}

		// delay = base * 2^(attempt-1)
		delay := ConnectBaseDelay * time.Duration(1<<uint(attempt-1))
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return errors.Wrapf(ctx.Err(), errors.CodeUnavailable, "connect to %s canceled", name)
		}
	}
	return errors.Wrapf(lastErr, errors.CodeUnavailable, "%s unavailable after %d attempts", name, ConnectAttempts)
}
