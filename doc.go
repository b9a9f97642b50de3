// Package params provides a client-side caching facade over AWS Systems
// Manager Parameter Store and AWS Secrets Manager, featuring lazy TTL-based
// expiration, grouped batched refresh, hierarchical fetches, and structured
// logging.
//
// The package wraps the AWS SDK v2 `ssm` and `secretsmanager` services to
// provide:
//   - Cached parameters (Parameter) with per-entry max age, decryption
//     control, StringList parsing and version pinning
//   - Parameter groups (Group) sharing one refresh policy and one
//     last-fetch timestamp, refreshed in a single batched call
//   - Hierarchical fetches (Group.Parameters) that populate many cache
//     entries from one GetParametersByPath call
//   - Pluggable backends via the Store interface: SSMStore,
//     SecretsManagerStore, EnvStore and ChainStore, plus a replaceable
//     process-wide default (SetDefaultStore)
//   - A bounded refresh-and-retry wrapper (RefreshOnError) for units of
//     work that fail when their cached credentials go stale
//
// # Staleness model
//
// Staleness is checked lazily on every access; there are no background
// timers. A scope (a standalone parameter or batch, or a whole group) that
// was never fetched is stale; a scope without a max age never goes stale
// after its first fetch; otherwise it goes stale once the max age has fully
// elapsed. A stale access issues exactly one batched remote call for the
// whole scope before returning.
//
// # Thread safety
//
// The stores (SSMStore, SecretsManagerStore, EnvStore, ChainStore) and the
// default-store registry are safe for concurrent use. Parameter and Group
// are not: concurrent accesses to a stale scope may each trigger a remote
// call, with the last writer winning. Callers in concurrent environments
// should guard each scope with a mutex or a single-flight mechanism.
//
// # Security considerations
//
//   - The package never logs parameter or secret values; only names and
//     operation metadata
//   - SecureString decryption is on by default and controlled per scope
//     with WithDecryption
//   - IAM permissions should follow least privilege; typical permissions
//     are ssm:GetParameters, ssm:GetParametersByPath, kms:Decrypt and
//     secretsmanager:GetSecretValue
//
// # Usage
//
// See the package examples for single parameters, groups, hierarchical
// fetches, and retry wiring.
package params
