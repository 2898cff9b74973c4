package device

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"time"

	"github.com/charmbracelet/log"

	"qtermsv/qsim"
)

// ErrTransient marks a launch failure that may succeed when repeated.
// Executors wrap it; Retry looks for it.
var ErrTransient = errors.New("device: transient failure")

// RetryStrategy defines the delay before each repeated attempt.
type RetryStrategy interface {
	NextDelay(attempt int) time.Duration
}

// ExponentialBackoff doubles the delay after every attempt, up to Max when
// Max is set.
type ExponentialBackoff struct {
	Initial time.Duration
	Max     time.Duration
}

func (eb *ExponentialBackoff) NextDelay(attempt int) time.Duration {
	d := eb.Initial * time.Duration(math.Pow(2, float64(attempt-1)))
	if eb.Max > 0 && d > eb.Max {
		return eb.Max
	}
	return d
}

// RetryPolicy defines retry behavior.
type RetryPolicy struct {
	MaxAttempts int
	Strategy    RetryStrategy
	// Filter reports whether err is worth another attempt. Default: err
	// wraps ErrTransient. Precondition errors are never retried.
	Filter func(error) bool
}

// DefaultRetryPolicy makes three attempts with a 10ms exponential backoff.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxAttempts: 3,
		Strategy:    &ExponentialBackoff{Initial: 10 * time.Millisecond, Max: time.Second},
	}
}

// Retry is a qsim.Executor that repeats failed launches of the executor it
// wraps.
type Retry[T qsim.Scalar] struct {
	exec    qsim.Executor[T]
	policy  RetryPolicy
	ctx     context.Context
	logger  *log.Logger
	retried int
}

// RetryOption configures NewRetry.
type RetryOption func(*retryOptions)

type retryOptions struct {
	ctx    context.Context
	logger *log.Logger
}

// WithContext bounds the waits between attempts; once ctx is done no
// further attempt is made.
func WithContext(ctx context.Context) RetryOption {
	return func(o *retryOptions) { o.ctx = ctx }
}

// WithRetryLogger sets the logger for retry records.
func WithRetryLogger(l *log.Logger) RetryOption {
	return func(o *retryOptions) { o.logger = l }
}

// NewRetry wraps exec with policy.
func NewRetry[T qsim.Scalar](exec qsim.Executor[T], policy RetryPolicy, opts ...RetryOption) *Retry[T] {
	o := retryOptions{ctx: context.Background()}
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = log.New(io.Discard)
	}
	if policy.MaxAttempts < 1 {
		policy.MaxAttempts = 1
	}
	if policy.Strategy == nil {
		policy.Strategy = &ExponentialBackoff{Initial: 10 * time.Millisecond}
	}
	if policy.Filter == nil {
		policy.Filter = func(err error) bool { return errors.Is(err, ErrTransient) }
	}
	return &Retry[T]{exec: exec, policy: policy, ctx: o.ctx, logger: o.logger}
}

// Apply runs the wrapped executor until it succeeds, the error is not
// retryable, the attempts run out or the context ends.
func (r *Retry[T]) Apply(dst, src *qsim.StateVector[T], g qsim.Gate[T]) error {
	var lastErr error
	for attempt := 0; attempt < r.policy.MaxAttempts; attempt++ {
		if attempt > 0 {
			delay := r.policy.Strategy.NextDelay(attempt)
			r.logger.Warn("retrying launch", "gate", g.String(), "attempt", attempt+1, "delay", delay, "err", lastErr)
			if err := sleep(r.ctx, delay); err != nil {
				return fmt.Errorf("device: retry abandoned: %w (last error: %v)", err, lastErr)
			}
			r.retried++
		}

		err := r.exec.Apply(dst, src, g)
		if err == nil {
			return nil
		}
		lastErr = err
		if qsim.IsPrecondition(err) || !r.policy.Filter(err) {
			return err
		}
	}
	return fmt.Errorf("device: all %d attempts failed: %w", r.policy.MaxAttempts, lastErr)
}

// Retries returns how many repeated attempts have been made.
func (r *Retry[T]) Retries() int { return r.retried }

func sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
