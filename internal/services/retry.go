package services

import (
	"context"
	stderrors "errors"
	"time"

	"github.com/vytor/wordflash/internal/errors"
	"github.com/vytor/wordflash/internal/logger"
	"github.com/vytor/wordflash/internal/repository"
)

// RetryPolicy bounds how often a conflicting read-modify-write is re-run.
type RetryPolicy struct {
	Attempts int
	Backoff  time.Duration
}

// DefaultRetryPolicy is three attempts starting at 10ms.
var DefaultRetryPolicy = RetryPolicy{Attempts: 3, Backoff: 10 * time.Millisecond}

// withRetry re-runs fn from scratch while it fails with repository.ErrConflict,
// doubling the wait between attempts. Other errors return immediately.
func withRetry(ctx context.Context, p RetryPolicy, op string, fn func(ctx context.Context) error) error {
	log := logger.FromContext(ctx)
	attempts := max(1, p.Attempts)

	var lastErr error
	for attempt := 0; attempt < attempts; attempt++ {
		lastErr = fn(ctx)
		if lastErr == nil || !stderrors.Is(lastErr, repository.ErrConflict) {
			return lastErr
		}
		if attempt == attempts-1 {
			break
		}

		wait := p.Backoff << attempt
		log.Debug("%s conflicted, retrying: attempt=%d, wait=%s", op, attempt+1, wait)
		select {
		case <-time.After(wait):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	log.Warn("%s still conflicting after %d attempts: %v", op, attempts, lastErr)
	return lastErr
}

// storeError turns a repository error into the AppError the transport reports.
func storeError(err error, resource string, id any) error {
	switch {
	case err == nil:
		return nil
	case stderrors.Is(err, context.Canceled), stderrors.Is(err, context.DeadlineExceeded):
		return err
	case stderrors.Is(err, repository.ErrNotFound):
		return errors.NewNotFoundError(resource, id)
	case stderrors.Is(err, repository.ErrConflict):
		return errors.NewConflictError(err)
	case stderrors.Is(err, repository.ErrUnavailable):
		return errors.NewStoreUnavailableError(err)
	}
	if _, ok := errors.As(err); ok {
		return err
	}
	return errors.NewInternalError(err)
}
