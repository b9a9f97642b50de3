// Package params provides a cached Go client for AWS Systems Manager
// Parameter Store.
//
// # Security Considerations
//
// The following IAM permissions are required depending on the operations
// used:
//
//   - ssm:GetParameters - required for all named lookups
//   - ssm:GetParametersByPath - required for hierarchical fetches
//   - kms:Decrypt - required when reading SecureString values with
//     decryption enabled
//   - secretsmanager:GetSecretValue - required when resolving secrets
//     through the /aws/reference/secretsmanager/ pseudo-path or through
//     SecretsManagerStore
//
// Parameter values are never logged; only names and operation metadata.
package params

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/ssm"
	ssmtypes "github.com/aws/aws-sdk-go-v2/service/ssm/types"
	"github.com/aws/smithy-go"
)

// AWS error code constants
const (
	accessDeniedException = "AccessDeniedException"
	accessDenied          = "AccessDenied"
)

// maxNamesPerCall is the GetParameters request limit imposed by SSM.
const maxNamesPerCall = 10

// SSMStore is the PathStore backed by AWS Systems Manager Parameter Store.
// Named lookups are batched ten at a time and hierarchical fetches are
// paginated transparently.
//
// Thread safety: SSMStore is safe for concurrent use; the AWS SDK v2 client
// is thread-safe and the store itself holds no mutable state.
type SSMStore struct {
	api    SSMAPI
	logger *slog.Logger
}

// Compile-time interface assertion.
var _ PathStore = (*SSMStore)(nil)

// NewSSMStore creates an SSM-backed store using the default AWS
// configuration chain. The context is used for configuration loading and
// should not be nil.
func NewSSMStore(ctx context.Context, opts ...StoreOption) (*SSMStore, error) {
	if ctx == nil {
		return nil, fmt.Errorf("context cannot be nil")
	}

	cfg, err := config.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	return newSSMStore(cfg, opts), nil
}

// NewSSMStoreWithConfig creates an SSM-backed store with a custom AWS
// configuration. This is useful for testing with LocalStack or other custom
// AWS endpoints.
func NewSSMStoreWithConfig(ctx context.Context, cfg *aws.Config, opts ...StoreOption) (*SSMStore, error) {
	if ctx == nil {
		return nil, fmt.Errorf("context cannot be nil")
	}
	if cfg == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}
	if cfg.Region == "" {
		return nil, fmt.Errorf("config region cannot be empty")
	}

	return newSSMStore(*cfg, opts), nil
}

func newSSMStore(cfg aws.Config, opts []StoreOption) *SSMStore {
	options := defaultStoreOptions()
	applyStoreOptions(options, opts)

	api := ssm.NewFromConfig(cfg, func(o *ssm.Options) {
		if options.retryer != nil {
			o.Retryer = options.retryer
		}
	})

	return &SSMStore{
		api:    api,
		logger: options.logger,
	}
}

// NewSSMStoreFromAPI creates an SSM-backed store around an existing API
// implementation. This is the injection point for mocks in tests.
func NewSSMStoreFromAPI(api SSMAPI, opts ...StoreOption) *SSMStore {
	options := defaultStoreOptions()
	applyStoreOptions(options, opts)

	return &SSMStore{
		api:    api,
		logger: options.logger,
	}
}

// GetParameters retrieves the named parameters, batching requests ten names
// at a time. Names the store reports as invalid are aggregated and returned;
// they do not fail the call.
func (s *SSMStore) GetParameters(
	ctx context.Context,
	names []string,
	withDecryption bool,
) (map[string]StoreValue, []string, error) {
	if s.logger != nil {
		s.logger.InfoContext(ctx, "retrieving parameters", "count", len(names))
	}

	values := make(map[string]StoreValue, len(names))
	var invalid []string

	for batch := range slices.Chunk(names, maxNamesPerCall) {
		output, err := s.api.GetParameters(ctx, &ssm.GetParametersInput{
			Names:          batch,
			WithDecryption: aws.Bool(withDecryption),
		})
		if err != nil {
			if s.logger != nil {
				s.logger.ErrorContext(ctx, "failed to retrieve parameters", "error", err)
			}
			return nil, nil, remoteError("GetParameters", err)
		}

		invalid = append(invalid, output.InvalidParameters...)
		for _, item := range output.Parameters {
			values[aws.ToString(item.Name)] = StoreValue{
				Value:   aws.ToString(item.Value),
				Type:    item.Type,
				Version: item.Version,
			}
		}
	}

	return values, invalid, nil
}

// GetParametersByPath retrieves every parameter under path, following
// pagination until exhausted. Filters are passed through unmodified.
func (s *SSMStore) GetParametersByPath(
	ctx context.Context,
	path string,
	withDecryption bool,
	recursive bool,
	filters []ssmtypes.ParameterStringFilter,
) ([]StoreItem, error) {
	if s.logger != nil {
		s.logger.InfoContext(ctx, "retrieving parameters by path",
			"path", path,
			"recursive", recursive)
	}

	paginator := ssm.NewGetParametersByPathPaginator(s.api, &ssm.GetParametersByPathInput{
		Path:             aws.String(path),
		Recursive:        aws.Bool(recursive),
		WithDecryption:   aws.Bool(withDecryption),
		ParameterFilters: filters,
	})

	var items []StoreItem
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			if s.logger != nil {
				s.logger.ErrorContext(ctx, "failed to retrieve parameters by path",
					"path", path,
					"error", err)
			}
			return nil, remoteError("GetParametersByPath", err)
		}
		for _, item := range page.Parameters {
			items = append(items, StoreItem{
				Name: aws.ToString(item.Name),
				StoreValue: StoreValue{
					Value:   aws.ToString(item.Value),
					Type:    item.Type,
					Version: item.Version,
				},
			})
		}
	}

	return items, nil
}

// remoteError maps AWS SDK failures to RemoteError, preserving the
// ErrAccessDenied sentinel for permission failures.
func remoteError(op string, err error) error {
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case accessDeniedException, accessDenied:
			return &RemoteError{Op: op, Err: ErrAccessDenied}
		}
	}
	return &RemoteError{Op: op, Err: err}
}
