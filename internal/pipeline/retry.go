package pipeline

import (
	"errors"
	"math/rand/v2"
	"time"

	"github.com/dgallion1/docdistill/internal/extract"
)

// Extraction calls already take tens of seconds; the retry budget has to
// stay small so one rate-limited chunk cannot stall a whole window run.
const (
	MaxRetries = 3

	backoffBase = 2 * time.Second
	backoffCap  = 20 * time.Second
)

// IsRetryable checks if an error is worth retrying.
func IsRetryable(err error) bool {
	var retryErr *extract.RetryableError
	return errors.As(err, &retryErr)
}

// Backoff returns a duration for attempt n (0-indexed) with jitter. Jitter
// spreads concurrent chunk retries so they do not hit the provider's rate
// limiter in lockstep.
func Backoff(attempt int) time.Duration {
	d := backoffBase << uint(attempt)
	if d > backoffCap {
		d = backoffCap
	}
	jitter := time.Duration(rand.Int64N(int64(d) / 2))
	return d + jitter
}
