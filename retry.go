// Package params provides a bounded refresh-and-retry wrapper for units of
// work that depend on cached parameters, and a custom retryer for the
// underlying AWS clients.
package params

import (
	"context"
	"errors"
	"math"
	"math/rand"
	"time"

	"github.com/aws/smithy-go"
)

// retryOptions holds configuration for RefreshOnError.
type retryOptions struct {
	match    func(error) bool
	callback func()
}

// RetryOption is a functional option for RefreshOnError.
type RetryOption func(*retryOptions)

// RetryIf restricts which failures trigger a refresh and retry. By default
// every failure does.
func RetryIf(match func(error) bool) RetryOption {
	return func(opts *retryOptions) {
		opts.match = match
	}
}

// RetryOn restricts retries to failures matching target under errors.Is.
func RetryOn(target error) RetryOption {
	return RetryIf(func(err error) bool {
		return errors.Is(err, target)
	})
}

// OnRetry registers a hook invoked after the refresh and before the retry,
// e.g. to rebuild state derived from the refreshed values.
func OnRetry(callback func()) RetryOption {
	return func(opts *retryOptions) {
		opts.callback = callback
	}
}

// RefreshOnError wraps a unit of work that depends on cached parameters.
// The work is invoked with retry false; if it fails with a matching error,
// the refresher is refreshed once, the OnRetry hook runs, and the work is
// invoked once more with retry true. A second failure propagates unchanged:
// retries are bounded to exactly one attempt. A failed refresh propagates
// without retrying.
func RefreshOnError(
	r Refresher,
	work func(ctx context.Context, retry bool) error,
	opts ...RetryOption,
) func(ctx context.Context) error {
	wrapped := RefreshOnErrorValue(r, func(ctx context.Context, retry bool) (struct{}, error) {
		return struct{}{}, work(ctx, retry)
	}, opts...)

	return func(ctx context.Context) error {
		_, err := wrapped(ctx)
		return err
	}
}

// RefreshOnErrorValue is RefreshOnError for work that returns a value.
func RefreshOnErrorValue[T any](
	r Refresher,
	work func(ctx context.Context, retry bool) (T, error),
	opts ...RetryOption,
) func(ctx context.Context) (T, error) {
	options := retryOptions{
		match: func(error) bool { return true },
	}
	for _, o := range opts {
		o(&options)
	}

	return func(ctx context.Context) (T, error) {
		value, err := work(ctx, false)
		if err == nil || !options.match(err) {
			return value, err
		}

		if rerr := r.Refresh(ctx); rerr != nil {
			return value, rerr
		}
		if options.callback != nil {
			options.callback()
		}

		return work(ctx, true)
	}
}

// NewRetryer creates the custom retry configuration used by the AWS-backed
// stores, wired in through WithRetryer.
//
// The retryer is configured with:
//   - Maximum 10 attempts (including the initial attempt)
//   - Exponential backoff starting with a 100ms base delay
//   - Maximum backoff delay of 30 seconds
//   - Retries on throttling and throughput-exceeded error codes
func NewRetryer() *Retryer {
	return &Retryer{
		maxAttempts: 10,
		baseDelay:   100 * time.Millisecond,
		maxDelay:    30 * time.Second,
	}
}

// Retryer implements the AWS SDK v2 aws.Retryer interface with exponential
// backoff and jitter, tuned for the throttling behavior of SSM GetParameters.
//
// Thread safety: all fields are immutable configuration values set at
// creation time; the jitter source is thread-safe.
type Retryer struct {
	maxAttempts int
	baseDelay   time.Duration
	maxDelay    time.Duration
}

// MaxAttempts returns the maximum number of attempts.
func (r *Retryer) MaxAttempts() int {
	return r.maxAttempts
}

// RetryDelay returns the delay for the given attempt number, implementing
// exponential backoff with jitter to avoid thundering herds.
func (r *Retryer) RetryDelay(attempt int, err error) (time.Duration, error) {
	delay := time.Duration(math.Pow(2, float64(attempt-1))) * r.baseDelay

	// Jitter of up to ±25% of the computed delay.
	jitterRange := int64(float64(delay) * 0.25)
	if jitterRange > 0 {
		delay += time.Duration(rand.Int63n(2*jitterRange) - jitterRange)
	}

	if delay > r.maxDelay {
		delay = r.maxDelay
	}
	if delay < 0 {
		delay = 0
	}
	return delay, nil
}

// IsErrorRetryable reports whether the error is a transient AWS failure
// worth retrying.
func (r *Retryer) IsErrorRetryable(err error) bool {
	if err == nil {
		return false
	}

	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case "ThrottlingException",
			"ProvisionedThroughputExceededException",
			"RequestLimitExceeded",
			"TooManyRequestsException":
			return true
		case accessDeniedException,
			"UnauthorizedOperation",
			"InvalidParameterException",
			"ValidationException":
			return false
		}
	}

	if errors.Is(err, context.DeadlineExceeded) ||
		errors.Is(err, context.Canceled) {
		return false
	}

	// Conservative default: unknown failures are not retried, which
	// prevents retry loops on permanent errors.
	return false
}

// GetRetryToken deducts the retry cost from the token pool. This
// implementation always allows retries and returns a no-op release.
func (r *Retryer) GetRetryToken(ctx context.Context, opErr error) (func(error) error, error) {
	return func(error) error { return nil }, nil
}

// GetInitialToken returns the initial attempt token with a no-op release.
func (r *Retryer) GetInitialToken() func(error) error {
	return func(error) error { return nil }
}
