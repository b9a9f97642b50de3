// Package params provides the non-AWS stores and the process-wide default
// store registry.
package params

import (
	"context"
	"maps"
	"os"
	"strings"
	"sync"

	ssmtypes "github.com/aws/aws-sdk-go-v2/service/ssm/types"
)

// The process-wide default store. Parameters and groups created without
// WithStore resolve through it; it is initialized lazily on first use and
// can be replaced at any time.
var (
	defaultStoreMu sync.Mutex
	processStore   Store
)

// SetDefaultStore replaces the process-wide default store. Pass nil to reset
// to the lazily-created SSM store. Parameters and groups that were given an
// explicit store via WithStore are unaffected.
func SetDefaultStore(store Store) {
	defaultStoreMu.Lock()
	defer defaultStoreMu.Unlock()
	processStore = store
}

func defaultStore(ctx context.Context) (Store, error) {
	defaultStoreMu.Lock()
	defer defaultStoreMu.Unlock()

	if processStore == nil {
		store, err := NewSSMStore(ctx)
		if err != nil {
			return nil, err
		}
		processStore = store
	}
	return processStore, nil
}

// EnvStore is a Store backed by OS environment variables. A name resolves to
// the upper-cased environment variable prefix+name. EnvStore does not
// support hierarchical fetches.
type EnvStore struct {
	prefix string
}

// Compile-time interface assertion.
var _ Store = (*EnvStore)(nil)

// NewEnvStore creates an environment-variable-backed store. The prefix is
// prepended to every name before the upper-cased lookup.
func NewEnvStore(prefix string) *EnvStore {
	return &EnvStore{prefix: prefix}
}

// GetParameters resolves each name from the environment. Unset variables are
// reported as invalid names.
func (s *EnvStore) GetParameters(
	ctx context.Context,
	names []string,
	withDecryption bool,
) (map[string]StoreValue, []string, error) {
	values := make(map[string]StoreValue, len(names))
	var invalid []string

	for _, name := range names {
		key := strings.ToUpper(s.prefix + name)
		value, ok := os.LookupEnv(key)
		if !ok {
			invalid = append(invalid, name)
			continue
		}
		values[name] = StoreValue{
			Value: value,
			Type:  ssmtypes.ParameterTypeString,
		}
	}

	return values, invalid, nil
}

// ChainStore is a Store that resolves names through an ordered chain of
// backing stores. Names one store reports invalid flow to the next; only
// names no store resolves are reported invalid. A typical chain reads the
// environment first and falls back to SSM.
type ChainStore struct {
	stores []Store
}

// Compile-time interface assertion.
var _ Store = (*ChainStore)(nil)

// NewChainStore creates a store that consults the given stores in order.
func NewChainStore(stores ...Store) *ChainStore {
	return &ChainStore{stores: stores}
}

// GetParameters walks the chain until every name is resolved or the chain is
// exhausted. A hard failure from any store fails the whole call.
func (s *ChainStore) GetParameters(
	ctx context.Context,
	names []string,
	withDecryption bool,
) (map[string]StoreValue, []string, error) {
	values := make(map[string]StoreValue, len(names))
	invalid := names

	for _, store := range s.stores {
		if len(invalid) == 0 {
			break
		}
		resolved, missing, err := store.GetParameters(ctx, invalid, withDecryption)
		if err != nil {
			return nil, nil, err
		}
		maps.Copy(values, resolved)
		invalid = missing
	}

	return values, invalid, nil
}
