package rpc

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/rand"
	"net"
	"strings"
	"syscall"
	"time"

	"github.com/pouladzade/swapwatch/pkg/config"
)

// Hosted Ethereum nodes drop websocket connections, rate-limit bursts and
// return transient 5xx responses under load. Retrying those keeps the head
// subscription alive; anything else (a bad filter, a malformed request)
// fails the call immediately.
var transientMarkers = []string{
	"timeout",
	"deadline exceeded",
	"429",
	"too many requests",
	"rate limit",
	"502",
	"503",
	"504",
	"bad gateway",
	"service unavailable",
	"gateway timeout",
}

// isRetryable reports whether an RPC call failure is worth retrying.
func isRetryable(err error) bool {
	if err == nil {
		return false
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}

	if errors.Is(err, syscall.ECONNREFUSED) ||
		errors.Is(err, syscall.ECONNRESET) ||
		errors.Is(err, syscall.EPIPE) {
		return true
	}

	msg := strings.ToLower(err.Error())
	for _, marker := range transientMarkers {
		if strings.Contains(msg, marker) {
			return true
		}
	}

	return false
}

// backoffFor returns the wait before the given attempt: exponential growth
// from InitialBackoff, capped at MaxBackoff, with 25% jitter either way so
// parallel batch calls do not hammer the node in lockstep.
func backoffFor(attempt int, cfg *config.RetryConfig) time.Duration {
	if attempt <= 1 {
		return 0
	}

	wait := float64(cfg.InitialBackoff.Duration) * math.Pow(cfg.BackoffMultiplier, float64(attempt-2))
	if limit := float64(cfg.MaxBackoff.Duration); wait > limit {
		wait = limit
	}

	wait += (rand.Float64() - 0.5) * 0.5 * wait
	if wait < 0 {
		wait = 0
	}

	return time.Duration(wait)
}

// retryWithBackoff runs fn up to cfg.MaxAttempts times, waiting between
// attempts and honoring context cancellation. A nil cfg disables retries.
// operation is the JSON-RPC method name, used for logging and metrics.
func retryWithBackoff(ctx context.Context, cfg *config.RetryConfig, operation string, fn func() error) error {
	if cfg == nil {
		return fn()
	}

	var lastErr error
	for attempt := 1; attempt <= cfg.MaxAttempts; attempt++ {
		if wait := backoffFor(attempt, cfg); wait > 0 {
			select {
			case <-time.After(wait):
			case <-ctx.Done():
				return fmt.Errorf("%s aborted during backoff (attempt %d/%d): %w",
					operation, attempt, cfg.MaxAttempts, ctx.Err())
			}
		}
		if attempt > 1 {
			RPCRetryInc(operation)
		}

		if err := ctx.Err(); err != nil {
			return fmt.Errorf("%s aborted before attempt %d: %w", operation, attempt, err)
		}

		err := fn()
		if err == nil {
			return nil
		}
		lastErr = err

		if !isRetryable(err) {
			return fmt.Errorf("%s failed on attempt %d/%d: %w", operation, attempt, cfg.MaxAttempts, err)
		}
	}

	return fmt.Errorf("%s failed after %d attempts: %w", operation, cfg.MaxAttempts, lastErr)
}
