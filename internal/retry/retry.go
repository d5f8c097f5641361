// Package retry wraps outbound chain reads with a per-attempt timeout and a
// bounded retry budget. Retries are deliberately not backed off: the budget
// is small and the guard exists to ride out transient blips, not outages.
package retry

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"
	"time"
)

// DefaultMaxRetries bounds additional attempts after the first.
const DefaultMaxRetries = 2

// DefaultTimeout is the per-attempt deadline when none is configured.
const DefaultTimeout = 3 * time.Second

// Options tune a guarded call.
type Options struct {
	Timeout    time.Duration
	MaxRetries int
}

func (o Options) withDefaults() Options {
	if o.Timeout <= 0 {
		o.Timeout = DefaultTimeout
	}
	if o.MaxRetries < 0 {
		o.MaxRetries = DefaultMaxRetries
	}
	return o
}

// retriableFragments classify transient failures by message, mirroring the
// errors RPC nodes and proxies actually produce.
var retriableFragments = []string{
	"timeout",
	"timed out",
	"deadline exceeded",
	"connection refused",
	"connection reset",
	"broken pipe",
	"502",
	"503",
	"504",
	"429",
	"too many requests",
	"network",
	"eof",
}

// Retriable reports whether an error looks transient. Context cancellation
// from the caller is never retriable; a per-attempt deadline is.
func Retriable(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}

	msg := strings.ToLower(err.Error())
	for _, fragment := range retriableFragments {
		if strings.Contains(msg, fragment) {
			return true
		}
	}
	return false
}

// Do runs fn under a per-attempt timeout, retrying transient failures until
// the budget is spent. Non-retriable failures propagate immediately. On
// exhaustion the last underlying error is returned, wrapped with the number
// of attempts made.
func Do[T any](ctx context.Context, opts Options, fn func(ctx context.Context) (T, error)) (T, error) {
	opts = opts.withDefaults()

	var zero T
	var lastErr error

	for attempt := 0; attempt <= opts.MaxRetries; attempt++ {
		attemptCtx, cancel := context.WithTimeout(ctx, opts.Timeout)
		result, err := fn(attemptCtx)
		cancel()

		if err == nil {
			return result, nil
		}
		lastErr = err

		if ctx.Err() != nil {
			return zero, ctx.Err()
		}
		if !Retriable(err) {
			return zero, err
		}
	}

	return zero, fmt.Errorf("retry budget exhausted after %d attempts: %w", opts.MaxRetries+1, lastErr)
}
