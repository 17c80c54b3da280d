package extraction

import (
	"context"
	"errors"
	"log"
	"time"

	"parcelscan/internal/domain"
	"parcelscan/internal/port"
)

// maxBackoff caps the wait between attempts so a large Retry-After cannot
// stall a request past the caller's patience.
const maxBackoff = 5 * time.Second

// Retrying wraps a FieldExtractor with bounded retries on transient failures.
// Authentication and malformed-response errors are never retried.
type Retrying struct {
	inner      port.FieldExtractor
	maxRetries int
}

// WithRetry wraps extractor so transient failures are retried up to
// maxRetries additional times with linear backoff.
func WithRetry(extractor port.FieldExtractor, maxRetries int) *Retrying {
	if maxRetries < 0 {
		maxRetries = 0
	}
	return &Retrying{inner: extractor, maxRetries: maxRetries}
}

func (r *Retrying) Configured() bool {
	return r.inner.Configured()
}

func (r *Retrying) Extract(ctx context.Context, input port.ExtractInput) (*port.RawFields, error) {
	var lastErr error

	for attempt := 0; attempt <= r.maxRetries; attempt++ {
		if attempt > 0 {
			wait := backoffFor(lastErr, attempt)
			log.Printf("extraction.Retrying: attempt %d/%d after %s: %v",
				attempt+1, r.maxRetries+1, wait, lastErr)
			select {
			case <-time.After(wait):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}

		fields, err := r.inner.Extract(ctx, input)
		if err == nil {
			return fields, nil
		}
		lastErr = err

		if !errors.Is(err, domain.ErrExtractionUnavailable) {
			return nil, err
		}
	}

	return nil, lastErr
}

func backoffFor(err error, attempt int) time.Duration {
	wait := time.Duration(attempt) * time.Second

	var rlErr *RateLimitError
	if errors.As(err, &rlErr) && rlErr.RetryAfter > wait {
		wait = rlErr.RetryAfter
	}
	if wait > maxBackoff {
		wait = maxBackoff
	}
	return wait
}
