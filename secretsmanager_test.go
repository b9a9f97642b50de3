// Package params provides tests for the Secrets-Manager-backed store.
package params

import (
	"context"
	"fmt"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
	smtypes "github.com/aws/aws-sdk-go-v2/service/secretsmanager/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockManagerAPI implements ManagerAPI for testing
type mockManagerAPI struct {
	batchGetSecretValueFunc func(ctx context.Context, params *secretsmanager.BatchGetSecretValueInput, optFns ...func(*secretsmanager.Options)) (*secretsmanager.BatchGetSecretValueOutput, error)
}

func (m *mockManagerAPI) BatchGetSecretValue(
	ctx context.Context,
	params *secretsmanager.BatchGetSecretValueInput,
	optFns ...func(*secretsmanager.Options),
) (*secretsmanager.BatchGetSecretValueOutput, error) {
	if m.batchGetSecretValueFunc != nil {
		return m.batchGetSecretValueFunc(ctx, params, optFns...)
	}
	return nil, fmt.Errorf("BatchGetSecretValue not implemented")
}

func TestSecretsManagerStore_GetParameters(t *testing.T) {
	api := &mockManagerAPI{
		batchGetSecretValueFunc: func(ctx context.Context, input *secretsmanager.BatchGetSecretValueInput, _ ...func(*secretsmanager.Options)) (*secretsmanager.BatchGetSecretValueOutput, error) {
			output := &secretsmanager.BatchGetSecretValueOutput{}
			for _, id := range input.SecretIdList {
				switch id {
				case "db_password":
					output.SecretValues = append(output.SecretValues, smtypes.SecretValueEntry{
						Name:         aws.String(id),
						SecretString: aws.String("hunter2"),
					})
				case "api_key":
					output.SecretValues = append(output.SecretValues, smtypes.SecretValueEntry{
						Name:         aws.String(id),
						SecretBinary: []byte("binary-key"),
					})
				default:
					output.Errors = append(output.Errors, smtypes.APIErrorType{
						SecretId:  aws.String(id),
						ErrorCode: aws.String("ResourceNotFoundException"),
						Message:   aws.String("not found"),
					})
				}
			}
			return output, nil
		},
	}
	store := NewSecretsManagerStoreFromAPI(api)

	t.Run("resolves string and binary secrets", func(t *testing.T) {
		values, invalid, err := store.GetParameters(
			context.Background(),
			[]string{"db_password", "api_key", "missing"},
			true)
		require.NoError(t, err)

		assert.Equal(t, "hunter2", values["db_password"].Value)
		assert.Equal(t, "binary-key", values["api_key"].Value)
		assert.Equal(t, []string{"missing"}, invalid)
	})

	t.Run("strips the pseudo-path prefix and restores it in results", func(t *testing.T) {
		name := "/aws/reference/secretsmanager/db_password"
		values, invalid, err := store.GetParameters(context.Background(), []string{name}, true)
		require.NoError(t, err)

		assert.Empty(t, invalid)
		assert.Equal(t, "hunter2", values[name].Value)
	})
}

func TestSecretsManagerStore_Batching(t *testing.T) {
	var batchSizes []int
	api := &mockManagerAPI{
		batchGetSecretValueFunc: func(ctx context.Context, input *secretsmanager.BatchGetSecretValueInput, _ ...func(*secretsmanager.Options)) (*secretsmanager.BatchGetSecretValueOutput, error) {
			batchSizes = append(batchSizes, len(input.SecretIdList))
			output := &secretsmanager.BatchGetSecretValueOutput{}
			for _, id := range input.SecretIdList {
				output.SecretValues = append(output.SecretValues, smtypes.SecretValueEntry{
					Name:         aws.String(id),
					SecretString: aws.String("value"),
				})
			}
			return output, nil
		},
	}
	store := NewSecretsManagerStoreFromAPI(api)

	names := make([]string, 0, 25)
	for i := range 25 {
		names = append(names, fmt.Sprintf("secret_%02d", i))
	}

	values, invalid, err := store.GetParameters(context.Background(), names, true)
	require.NoError(t, err)

	assert.Equal(t, []int{20, 5}, batchSizes)
	assert.Len(t, values, 25)
	assert.Empty(t, invalid)
}

func TestSecretsManagerStore_Errors(t *testing.T) {
	t.Run("per-secret failures other than not-found fail the call", func(t *testing.T) {
		api := &mockManagerAPI{
			batchGetSecretValueFunc: func(context.Context, *secretsmanager.BatchGetSecretValueInput, ...func(*secretsmanager.Options)) (*secretsmanager.BatchGetSecretValueOutput, error) {
				return &secretsmanager.BatchGetSecretValueOutput{
					Errors: []smtypes.APIErrorType{{
						SecretId:  aws.String("locked"),
						ErrorCode: aws.String("AccessDeniedException"),
						Message:   aws.String("nope"),
					}},
				}, nil
			},
		}
		store := NewSecretsManagerStoreFromAPI(api)

		_, _, err := store.GetParameters(context.Background(), []string{"locked"}, true)
		require.Error(t, err)

		var remoteErr *RemoteError
		require.ErrorAs(t, err, &remoteErr)
		assert.Equal(t, "BatchGetSecretValue", remoteErr.Op)
	})

	t.Run("transport failures wrap as remote errors", func(t *testing.T) {
		api := &mockManagerAPI{
			batchGetSecretValueFunc: func(context.Context, *secretsmanager.BatchGetSecretValueInput, ...func(*secretsmanager.Options)) (*secretsmanager.BatchGetSecretValueOutput, error) {
				return nil, &mockAWSError{code: "InternalServiceError"}
			},
		}
		store := NewSecretsManagerStoreFromAPI(api)

		_, _, err := store.GetParameters(context.Background(), []string{"any"}, true)
		require.Error(t, err)

		var remoteErr *RemoteError
		assert.ErrorAs(t, err, &remoteErr)
	})
}

func TestSecretsManagerStore_BacksACachedGroup(t *testing.T) {
	api := &mockManagerAPI{
		batchGetSecretValueFunc: func(ctx context.Context, input *secretsmanager.BatchGetSecretValueInput, _ ...func(*secretsmanager.Options)) (*secretsmanager.BatchGetSecretValueOutput, error) {
			output := &secretsmanager.BatchGetSecretValueOutput{}
			for _, id := range input.SecretIdList {
				output.SecretValues = append(output.SecretValues, smtypes.SecretValueEntry{
					Name:         aws.String(id),
					SecretString: aws.String("value-of-" + id),
				})
			}
			return output, nil
		},
	}
	store := NewSecretsManagerStoreFromAPI(api)

	group, err := NewGroup(WithStore(store))
	require.NoError(t, err)
	secret, err := group.Secret("db_password")
	require.NoError(t, err)

	value, err := secret.Value(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "value-of-db_password", value)
}
