// Package params provides parameter groups sharing one refresh policy.
package params

import (
	"context"
	"fmt"
	"strings"

	ssmtypes "github.com/aws/aws-sdk-go-v2/service/ssm/types"
)

// secretsManagerPrefix is the SSM pseudo-path that resolves Secrets Manager
// secrets through the Parameter Store API.
const secretsManagerPrefix = "/aws/reference/secretsmanager/"

// Group is a named collection of parameters sharing one refresh policy and
// one last-fetch timestamp. Staleness is a group property: refreshing any
// member refreshes every member in one batched remote call.
//
// Like Parameter, Group provides no concurrent-access guarantees; see the
// package documentation.
type Group struct {
	state    refreshState
	basePath string

	// members is keyed by full remote name; order preserves insertion order
	// for stable iteration and batched requests.
	members map[string]*Parameter
	order   []string
}

// NewGroup creates an empty parameter group. Members registered through
// Parameter, Parameters and Secret inherit the group's max age and
// decryption policy.
func NewGroup(opts ...Option) (*Group, error) {
	options := defaultOptions()
	applyOptions(options, opts)

	if options.basePath != "" {
		if err := validatePath(options.basePath); err != nil {
			return nil, err
		}
	}
	if options.maxAge < 0 {
		return nil, fmt.Errorf("max age cannot be negative")
	}

	return &Group{
		state: refreshState{
			store:          options.store,
			clock:          options.clock,
			maxAge:         options.maxAge,
			withDecryption: options.withDecryption,
			logger:         options.logger,
		},
		basePath: options.basePath,
		members:  make(map[string]*Parameter),
	}, nil
}

func validatePath(path string) error {
	if !strings.HasPrefix(path, "/") {
		return fmt.Errorf("%w: %q should start with a slash", ErrInvalidPath, path)
	}
	return nil
}

// Parameter registers a named parameter in the group, or returns the
// existing one: registration is idempotent per name. When the group has a
// base path, name is validated as a path and prefixed with it. Grouped
// parameters cannot pin a version; the group's shared refresh policy and a
// pinned version are conflicting options.
func (g *Group) Parameter(name string) (*Parameter, error) {
	plain, selector, err := splitSelector(name)
	if err != nil {
		return nil, err
	}
	if selector != "" {
		return nil, fmt.Errorf("%w: grouped parameters cannot pin a version", ErrInvalidVersion)
	}

	full := plain
	if g.basePath != "" {
		if err := validatePath(plain); err != nil {
			return nil, err
		}
		full = g.basePath + plain
	}
	return g.register(full), nil
}

// Secret registers a Secrets-Manager-backed parameter in the group's
// namespace. Secret names are never prefixed with the group's base path and
// must not start with a slash.
func (g *Group) Secret(name string) (*Parameter, error) {
	if name == "" {
		return nil, fmt.Errorf("secret name cannot be empty")
	}
	if strings.HasPrefix(name, "/") {
		return nil, fmt.Errorf("%w: secret name %q must not start with a slash", ErrInvalidPath, name)
	}
	return g.register(secretsManagerPrefix + name), nil
}

// register returns the member for fullName, creating it on first use.
func (g *Group) register(fullName string) *Parameter {
	if p, ok := g.members[fullName]; ok {
		return p
	}
	p := &Parameter{
		names:  []string{fullName},
		values: make(map[string]cachedValue),
		group:  g,
	}
	g.members[fullName] = p
	g.order = append(g.order, fullName)
	return p
}

// fetchOptions holds per-call options for hierarchical fetches.
type fetchOptions struct {
	recursive bool
	filters   []ssmtypes.ParameterStringFilter
}

// FetchOption is a functional option for Group.Parameters.
type FetchOption func(*fetchOptions)

// NonRecursive restricts a hierarchical fetch to names directly under the
// path, with no deeper nesting. This is a pass-through to the store's own
// prefix semantics.
func NonRecursive() FetchOption {
	return func(opts *fetchOptions) {
		opts.recursive = false
	}
}

// WithFilters passes parameter filters through to the store unmodified.
func WithFilters(filters ...ssmtypes.ParameterStringFilter) FetchOption {
	return func(opts *fetchOptions) {
		opts.filters = filters
	}
}

// Parameters performs one hierarchical fetch for every parameter under path,
// resolved against the group's base path, and registers or overwrites one
// member per returned name. All results share the group's refresh policy.
//
// The group's refresh time is set to the fetch time, keeping the oldest
// value across successive Parameters calls so that expiry tracks the oldest
// fetched members.
func (g *Group) Parameters(ctx context.Context, path string, opts ...FetchOption) ([]*Parameter, error) {
	if err := validatePath(path); err != nil {
		return nil, err
	}

	store, err := g.state.resolveStore(ctx)
	if err != nil {
		return nil, err
	}
	pathStore, ok := store.(PathStore)
	if !ok {
		return nil, fmt.Errorf("store %T does not support hierarchical fetch", store)
	}

	options := fetchOptions{recursive: true}
	for _, o := range opts {
		o(&options)
	}

	items, err := pathStore.GetParametersByPath(
		ctx,
		g.basePath+path,
		g.state.withDecryption,
		options.recursive,
		options.filters,
	)
	if err != nil {
		return nil, err
	}

	g.state.markRefreshedKeepOldest()

	parameters := make([]*Parameter, 0, len(items))
	for _, item := range items {
		p := g.register(item.Name)
		p.values[item.Name] = newCachedValue(item.StoreValue)
		parameters = append(parameters, p)
	}

	if g.state.logger != nil {
		g.state.logger.InfoContext(ctx, "hierarchical fetch complete",
			"path", g.basePath+path,
			"count", len(items))
	}
	return parameters, nil
}

// Refresh forces a remote re-fetch for every current member in one batched
// call and redistributes the values. The refresh is all-or-nothing: if the
// batched call fails or any member is missing, no member's cached value and
// no timestamp is mutated.
func (g *Group) Refresh(ctx context.Context) error {
	if len(g.order) == 0 {
		g.state.markRefreshed()
		return nil
	}

	store, err := g.state.resolveStore(ctx)
	if err != nil {
		return err
	}

	names := make([]string, len(g.order))
	copy(names, g.order)

	values, invalid, err := store.GetParameters(ctx, names, g.state.withDecryption)
	if err != nil {
		return err
	}
	if len(invalid) > 0 {
		return &ParameterNotFoundError{Names: invalid}
	}

	// Stage every value before touching any member so a missing name cannot
	// leave the group half-updated.
	staged := make(map[string]cachedValue, len(names))
	for _, name := range names {
		value, ok := values[name]
		if !ok {
			return &ParameterNotFoundError{Names: []string{name}}
		}
		staged[name] = newCachedValue(value)
	}

	for _, name := range names {
		g.members[name].values[name] = staged[name]
	}
	g.state.markRefreshed()

	if g.state.logger != nil {
		g.state.logger.InfoContext(ctx, "group refreshed", "count", len(names))
	}
	return nil
}

// Len returns the number of currently registered members.
func (g *Group) Len() int {
	return len(g.members)
}

// Names returns the full remote names of every member, in insertion order.
func (g *Group) Names() []string {
	names := make([]string, len(g.order))
	copy(names, g.order)
	return names
}
