// Package params provides a batched store backed by AWS Secrets Manager.
package params

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
	ssmtypes "github.com/aws/aws-sdk-go-v2/service/ssm/types"
)

// AWS error code constant
const resourceNotFoundException = "ResourceNotFoundException"

// maxSecretsPerCall is the BatchGetSecretValue request limit.
const maxSecretsPerCall = 20

// ManagerAPI defines the subset of the AWS SDK v2 Secrets Manager client
// used by SecretsManagerStore.
type ManagerAPI interface {
	// BatchGetSecretValue retrieves up to twenty secrets in one call.
	BatchGetSecretValue(
		ctx context.Context,
		params *secretsmanager.BatchGetSecretValueInput,
		optFns ...func(*secretsmanager.Options),
	) (*secretsmanager.BatchGetSecretValueOutput, error)
}

// SecretsManagerStore is a Store that reads secrets natively from AWS
// Secrets Manager, as an alternative to resolving them through the SSM
// /aws/reference/secretsmanager/ pseudo-path. Names carrying that prefix are
// accepted and stripped, so a Group populated via Secret can be pointed at
// this store unchanged.
//
// Secrets Manager has no path hierarchy, so this store intentionally does
// not implement PathStore.
type SecretsManagerStore struct {
	api    ManagerAPI
	logger *slog.Logger
}

// Compile-time interface assertion.
var _ Store = (*SecretsManagerStore)(nil)

// NewSecretsManagerStore creates a Secrets-Manager-backed store using the
// default AWS configuration chain.
func NewSecretsManagerStore(ctx context.Context, opts ...StoreOption) (*SecretsManagerStore, error) {
	if ctx == nil {
		return nil, fmt.Errorf("context cannot be nil")
	}

	cfg, err := config.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	return newSecretsManagerStore(cfg, opts), nil
}

// NewSecretsManagerStoreWithConfig creates a Secrets-Manager-backed store
// with a custom AWS configuration.
func NewSecretsManagerStoreWithConfig(
	ctx context.Context,
	cfg *aws.Config,
	opts ...StoreOption,
) (*SecretsManagerStore, error) {
	if ctx == nil {
		return nil, fmt.Errorf("context cannot be nil")
	}
	if cfg == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}
	if cfg.Region == "" {
		return nil, fmt.Errorf("config region cannot be empty")
	}

	return newSecretsManagerStore(*cfg, opts), nil
}

func newSecretsManagerStore(cfg aws.Config, opts []StoreOption) *SecretsManagerStore {
	options := defaultStoreOptions()
	applyStoreOptions(options, opts)

	api := secretsmanager.NewFromConfig(cfg, func(o *secretsmanager.Options) {
		if options.retryer != nil {
			o.Retryer = options.retryer
		}
	})

	return &SecretsManagerStore{
		api:    api,
		logger: options.logger,
	}
}

// NewSecretsManagerStoreFromAPI creates a Secrets-Manager-backed store
// around an existing API implementation. This is the injection point for
// mocks in tests.
func NewSecretsManagerStoreFromAPI(api ManagerAPI, opts ...StoreOption) *SecretsManagerStore {
	options := defaultStoreOptions()
	applyStoreOptions(options, opts)

	return &SecretsManagerStore{
		api:    api,
		logger: options.logger,
	}
}

// GetParameters retrieves the named secrets, batching requests twenty at a
// time. Missing secrets are reported as invalid names; any other per-secret
// failure fails the whole call. Decryption is implicit for secrets, so
// withDecryption is ignored.
func (s *SecretsManagerStore) GetParameters(
	ctx context.Context,
	names []string,
	withDecryption bool,
) (map[string]StoreValue, []string, error) {
	if s.logger != nil {
		s.logger.InfoContext(ctx, "retrieving secrets", "count", len(names))
	}

	values := make(map[string]StoreValue, len(names))
	var invalid []string

	for batch := range slices.Chunk(names, maxSecretsPerCall) {
		ids := make([]string, len(batch))
		for i, name := range batch {
			ids[i] = strings.TrimPrefix(name, secretsManagerPrefix)
		}

		output, err := s.api.BatchGetSecretValue(ctx, &secretsmanager.BatchGetSecretValueInput{
			SecretIdList: ids,
		})
		if err != nil {
			if s.logger != nil {
				s.logger.ErrorContext(ctx, "failed to retrieve secrets", "error", err)
			}
			return nil, nil, remoteError("BatchGetSecretValue", err)
		}

		for _, apiErr := range output.Errors {
			name := requestedName(batch, aws.ToString(apiErr.SecretId))
			code := aws.ToString(apiErr.ErrorCode)
			switch code {
			case resourceNotFoundException:
				invalid = append(invalid, name)
			case accessDeniedException, accessDenied:
				return nil, nil, &RemoteError{Op: "BatchGetSecretValue", Err: ErrAccessDenied}
			default:
				return nil, nil, &RemoteError{
					Op:  "BatchGetSecretValue",
					Err: fmt.Errorf("%s: %s", code, aws.ToString(apiErr.Message)),
				}
			}
		}

		for _, secret := range output.SecretValues {
			var value string
			switch {
			case secret.SecretString != nil:
				value = *secret.SecretString
			case secret.SecretBinary != nil:
				value = string(secret.SecretBinary)
			}
			values[requestedName(batch, aws.ToString(secret.Name))] = StoreValue{
				Value: value,
				Type:  ssmtypes.ParameterTypeSecureString,
			}
		}
	}

	return values, invalid, nil
}

// requestedName maps a store-reported secret name back to the name it was
// requested under, restoring the pseudo-path prefix when present.
func requestedName(requested []string, name string) string {
	for _, r := range requested {
		if strings.TrimPrefix(r, secretsManagerPrefix) == name {
			return r
		}
	}
	return name
}
