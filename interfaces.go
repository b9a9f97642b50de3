// Package params defines the interfaces that connect cached parameters to
// their backing stores.
package params

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/service/ssm"
	ssmtypes "github.com/aws/aws-sdk-go-v2/service/ssm/types"
)

// SSMAPI defines the subset of the AWS SDK v2 SSM client used by SSMStore.
// This interface abstracts the SDK client to enable testing with mocks and to
// provide a stable API surface.
type SSMAPI interface {
	// GetParameters retrieves up to ten named parameters in one call.
	GetParameters(
		ctx context.Context,
		params *ssm.GetParametersInput,
		optFns ...func(*ssm.Options),
	) (*ssm.GetParametersOutput, error)

	// GetParametersByPath retrieves one page of parameters under a path prefix.
	GetParametersByPath(
		ctx context.Context,
		params *ssm.GetParametersByPathInput,
		optFns ...func(*ssm.Options),
	) (*ssm.GetParametersByPathOutput, error)
}

// StoreValue is a single value returned by a Store, together with the
// metadata the cache needs to distribute it.
type StoreValue struct {
	// Value is the raw string value as returned by the store.
	Value string
	// Type is the store-reported parameter type. StringList values are split
	// on commas when distributed into cache entries.
	Type ssmtypes.ParameterType
	// Version is the store-reported version of the value, if any.
	Version int64
}

// StoreItem is a named StoreValue, used for ordered hierarchical results.
type StoreItem struct {
	Name string
	StoreValue
}

// Store is the remote parameter store collaborator. Implementations perform
// batched lookups by name; they do not cache.
//
// A Store must either resolve a requested name, report it in the invalid
// slice, or fail as a whole. Silent omission is not permitted: the cache maps
// invalid names to ErrParameterNotFound.
type Store interface {
	// GetParameters retrieves the named parameters. Names may carry a
	// ":version" selector suffix; resolved values are keyed by the plain
	// name. The second return value lists names the store could not resolve.
	GetParameters(
		ctx context.Context,
		names []string,
		withDecryption bool,
	) (map[string]StoreValue, []string, error)
}

// PathStore is a Store that additionally supports hierarchical fetches by
// path prefix. Group.Parameters requires its store to implement PathStore.
type PathStore interface {
	Store

	// GetParametersByPath retrieves every parameter under path, in store
	// order. Filters are passed through to the store unmodified.
	GetParametersByPath(
		ctx context.Context,
		path string,
		withDecryption bool,
		recursive bool,
		filters []ssmtypes.ParameterStringFilter,
	) ([]StoreItem, error)
}

// Refresher is anything whose cached values can be forcibly re-fetched.
// Both Parameter and Group implement it.
type Refresher interface {
	Refresh(ctx context.Context) error
}
