// Package params implements cached parameters backed by a remote store.
package params

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	ssmtypes "github.com/aws/aws-sdk-go-v2/service/ssm/types"
)

// cachedValue is a fetched parameter value. StringList values are split once
// at fetch time; accessors return the cached slice as-is.
type cachedValue struct {
	raw     string
	list    []string
	version int64
}

func newCachedValue(v StoreValue) cachedValue {
	cv := cachedValue{raw: v.Value, version: v.Version}
	if v.Type == ssmtypes.ParameterTypeStringList {
		cv.list = strings.Split(v.Value, ",")
	}
	return cv
}

// Parameter is a cached named value, or a batch of named values sharing one
// refresh clock. Values are fetched lazily on first access and re-fetched
// when the owning scope goes stale.
//
// A Parameter created through a Group delegates all staleness decisions to
// the group: refreshing it refreshes the entire group in one batched call.
//
// Parameter is not safe for concurrent use. Concurrent accesses while stale
// may each trigger a remote call, with the last response winning; callers in
// concurrent environments should add their own mutex or single-flight around
// each scope.
type Parameter struct {
	state refreshState

	// names are the plain remote names, in construction order.
	names []string

	// selector pins a single-name parameter to a fixed remote version.
	// Pinned values never change once fetched, regardless of max age.
	selector string

	values map[string]cachedValue

	// group is set when the parameter was registered through a Group; the
	// group then owns the refresh state and this parameter's own state
	// carries no policy of its own.
	group *Group
}

// New creates a cached parameter for a single remote name. The name may
// carry a ":version" suffix to pin the parameter to a fixed remote version.
func New(name string, opts ...Option) (*Parameter, error) {
	return NewBatch([]string{name}, opts...)
}

// NewBatch creates a cached parameter batch: the named values share one
// refresh clock and are fetched together in one remote call, exactly like a
// one-off group. Version selectors are not supported in batches of more than
// one name.
func NewBatch(names []string, opts ...Option) (*Parameter, error) {
	if len(names) == 0 {
		return nil, fmt.Errorf("at least one parameter name is required")
	}

	options := defaultOptions()
	applyOptions(options, opts)

	if options.basePath != "" {
		return nil, fmt.Errorf("%w: base paths are only valid for groups", ErrInvalidPath)
	}
	if options.maxAge < 0 {
		return nil, fmt.Errorf("max age cannot be negative")
	}

	p := &Parameter{
		state: refreshState{
			store:          options.store,
			clock:          options.clock,
			maxAge:         options.maxAge,
			withDecryption: options.withDecryption,
			logger:         options.logger,
		},
		names: make([]string, 0, len(names)),
	}

	for _, name := range names {
		plain, selector, err := splitSelector(name)
		if err != nil {
			return nil, err
		}
		if selector != "" {
			if len(names) > 1 {
				return nil, fmt.Errorf("%w: version selectors are not supported in batches", ErrInvalidVersion)
			}
			p.selector = selector
		}
		p.names = append(p.names, plain)
	}

	return p, nil
}

// NewSecret creates a cached parameter for a Secrets Manager secret,
// resolved through the SSM /aws/reference/secretsmanager/ pseudo-path.
// Secret names must not start with a slash.
func NewSecret(name string, opts ...Option) (*Parameter, error) {
	if name == "" {
		return nil, fmt.Errorf("secret name cannot be empty")
	}
	if strings.HasPrefix(name, "/") {
		return nil, fmt.Errorf("%w: secret name %q must not start with a slash", ErrInvalidPath, name)
	}
	return New(secretsManagerPrefix+name, opts...)
}

// splitSelector splits an optional ":version" suffix off a parameter name.
// SSM parameter names cannot contain colons, so any colon starts a selector.
func splitSelector(name string) (plain, selector string, err error) {
	if name == "" {
		return "", "", fmt.Errorf("parameter name cannot be empty")
	}
	plain, selector, found := strings.Cut(name, ":")
	if !found {
		return name, "", nil
	}
	version, perr := strconv.ParseInt(selector, 10, 64)
	if perr != nil || version < 1 || plain == "" {
		return "", "", fmt.Errorf("%w: %q", ErrInvalidVersion, name)
	}
	return plain, selector, nil
}

// Name returns the plain remote name. For batches it returns the first name.
func (p *Parameter) Name() string {
	return p.names[0]
}

// Names returns every plain remote name in the batch, in construction order.
func (p *Parameter) Names() []string {
	names := make([]string, len(p.names))
	copy(names, p.names)
	return names
}

// Pinned reports whether the parameter is locked to a fixed remote version.
func (p *Parameter) Pinned() bool {
	return p.selector != ""
}

// Version returns the store-reported version of the cached value, or zero if
// the parameter was never fetched. For batches it reports the first name.
func (p *Parameter) Version() int64 {
	return p.values[p.names[0]].version
}

// Value returns the cached value, refreshing it first if the owning scope is
// stale or was never fetched. Returns ErrParameterNotFound if the store has
// no value for this name. For a StringList parameter it returns the raw
// unsplit string; use StringList for the parsed form.
func (p *Parameter) Value(ctx context.Context) (string, error) {
	return p.ValueFor(ctx, p.names[0])
}

// ValueFor returns the cached value of one name in the batch. The whole
// batch is refreshed together if stale.
func (p *Parameter) ValueFor(ctx context.Context, name string) (string, error) {
	cv, err := p.lookup(ctx, name)
	if err != nil {
		return "", err
	}
	return cv.raw, nil
}

// Values returns the cached values of every name in the batch, in
// construction order, refreshing the batch first if stale.
func (p *Parameter) Values(ctx context.Context) ([]string, error) {
	values := make([]string, 0, len(p.names))
	for _, name := range p.names {
		value, err := p.ValueFor(ctx, name)
		if err != nil {
			return nil, err
		}
		values = append(values, value)
	}
	return values, nil
}

// StringList returns the cached StringList value as an ordered slice. The
// split happens once at fetch time; repeated calls return the same cached
// sequence. Returns ErrNotStringList for non-list parameters.
func (p *Parameter) StringList(ctx context.Context) ([]string, error) {
	return p.StringListFor(ctx, p.names[0])
}

// StringListFor returns the cached StringList value of one name in the batch.
func (p *Parameter) StringListFor(ctx context.Context, name string) ([]string, error) {
	cv, err := p.lookup(ctx, name)
	if err != nil {
		return nil, err
	}
	if cv.list == nil {
		return nil, fmt.Errorf("%w: %s", ErrNotStringList, name)
	}
	return cv.list, nil
}

// Refresh forces a remote re-fetch, bypassing the staleness check. For a
// grouped parameter the entire group is refreshed in one batched call. For a
// pinned parameter that was already fetched, Refresh is a no-op: pinned
// values never change and no remote call is issued.
func (p *Parameter) Refresh(ctx context.Context) error {
	if p.group != nil {
		return p.group.Refresh(ctx)
	}
	if p.selector != "" && len(p.values) > 0 {
		return nil
	}
	return p.fetch(ctx)
}

func (p *Parameter) shouldRefresh() bool {
	if p.group != nil {
		return p.group.state.shouldRefresh()
	}
	return p.state.shouldRefresh()
}

// lookup resolves one name from the cache, refreshing the owning scope first
// when the name was never fetched or the scope is stale.
func (p *Parameter) lookup(ctx context.Context, name string) (cachedValue, error) {
	found := false
	for _, n := range p.names {
		if n == name {
			found = true
			break
		}
	}
	if !found {
		return cachedValue{}, fmt.Errorf("parameter %q is not configured in this batch", name)
	}

	if _, ok := p.values[name]; !ok || p.shouldRefresh() {
		if err := p.Refresh(ctx); err != nil {
			return cachedValue{}, err
		}
	}

	cv, ok := p.values[name]
	if !ok {
		return cachedValue{}, &ParameterNotFoundError{Names: []string{name}}
	}
	return cv, nil
}

// fetch performs the batched remote call for a standalone parameter and
// replaces the cached values. On failure the cached values and the refresh
// time are left untouched.
func (p *Parameter) fetch(ctx context.Context) error {
	store, err := p.state.resolveStore(ctx)
	if err != nil {
		return err
	}

	names := make([]string, len(p.names))
	copy(names, p.names)
	if p.selector != "" {
		names[0] = p.names[0] + ":" + p.selector
	}

	values, invalid, err := store.GetParameters(ctx, names, p.state.withDecryption)
	if err != nil {
		return err
	}
	if len(invalid) > 0 {
		return &ParameterNotFoundError{Names: invalid}
	}

	staged := make(map[string]cachedValue, len(p.names))
	for _, name := range p.names {
		value, ok := values[name]
		if !ok {
			return &ParameterNotFoundError{Names: []string{name}}
		}
		staged[name] = newCachedValue(value)
	}

	p.values = staged
	p.state.markRefreshed()

	if p.state.logger != nil {
		p.state.logger.InfoContext(ctx, "parameters refreshed",
			"names", p.names,
			"pinned", p.selector != "")
	}
	return nil
}
