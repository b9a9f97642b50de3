// Package params provides functional options for configuring parameters,
// groups and stores.
package params

import (
	"log/slog"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
)

// options holds the configuration shared by Parameter and Group constructors.
type options struct {
	maxAge         time.Duration
	withDecryption bool
	basePath       string
	store          Store
	clock          Clock
	logger         *slog.Logger
}

// Option is a functional option for configuring a Parameter or a Group.
type Option func(*options)

// WithMaxAge sets the maximum age of cached values. After maxAge has elapsed
// since the last successful fetch, the next access triggers a refresh. A zero
// maxAge (the default) caches forever until an explicit Refresh.
func WithMaxAge(maxAge time.Duration) Option {
	return func(opts *options) {
		opts.maxAge = maxAge
	}
}

// WithDecryption controls whether SecureString values are decrypted on fetch.
// Decryption is enabled by default.
func WithDecryption(withDecryption bool) Option {
	return func(opts *options) {
		opts.withDecryption = withDecryption
	}
}

// WithBasePath sets a path prefix prepended to every member lookup of a
// Group. The path must start with a slash. Only valid for groups.
func WithBasePath(basePath string) Option {
	return func(opts *options) {
		opts.basePath = basePath
	}
}

// WithStore overrides the process-wide default store for this parameter or
// group. Useful for deterministic testing and for non-SSM backends.
func WithStore(store Store) Option {
	return func(opts *options) {
		opts.store = store
	}
}

// WithClock overrides the time source used for staleness checks.
func WithClock(clock Clock) Option {
	return func(opts *options) {
		opts.clock = clock
	}
}

// WithLogger configures structured logging of refresh activity. Parameter
// values are never logged. If logger is nil, logging is disabled.
func WithLogger(logger *slog.Logger) Option {
	return func(opts *options) {
		opts.logger = logger
	}
}

// defaultOptions returns the default configuration: decryption on, no max
// age, real clock, process-wide default store.
func defaultOptions() *options {
	return &options{
		withDecryption: true,
		clock:          realClock{},
	}
}

// applyOptions applies the given options in order.
func applyOptions(opts *options, option []Option) {
	for _, o := range option {
		o(opts)
	}
}

// storeOptions holds configuration for the AWS-backed stores.
type storeOptions struct {
	logger  *slog.Logger
	retryer aws.Retryer
}

// StoreOption is a functional option for configuring SSMStore and
// SecretsManagerStore.
type StoreOption func(*storeOptions)

// WithStoreLogger configures the store with a logger for fetch activity.
// Parameter values are never logged; only names and counts.
func WithStoreLogger(logger *slog.Logger) StoreOption {
	return func(opts *storeOptions) {
		opts.logger = logger
	}
}

// WithRetryer configures the underlying AWS client with a custom retryer.
// If retryer is nil, default AWS SDK retry behavior is used.
func WithRetryer(retryer aws.Retryer) StoreOption {
	return func(opts *storeOptions) {
		opts.retryer = retryer
	}
}

func defaultStoreOptions() *storeOptions {
	return &storeOptions{}
}

func applyStoreOptions(opts *storeOptions, option []StoreOption) {
	for _, o := range option {
		o(opts)
	}
}
