// Package params provides custom error types for parameter store operations.
//
// # Error Handling Security
//
// This package defines typed errors to ensure secure error handling:
//
// - Errors never expose parameter values in their messages
// - Use errors.Is() to check for specific error types
// - AWS SDK errors are wrapped to prevent information leakage
package params

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrParameterNotFound is returned when a requested parameter does not
	// exist in the backing store. For batched lookups the concrete
	// *ParameterNotFoundError carries every missing name.
	ErrParameterNotFound = errors.New("parameter not found")

	// ErrAccessDenied is returned when the AWS credentials do not have
	// sufficient permissions to read the requested parameters. This typically
	// indicates missing IAM permissions for ssm:GetParameters,
	// ssm:GetParametersByPath or kms:Decrypt.
	ErrAccessDenied = errors.New("access denied to parameter")

	// ErrInvalidPath is returned at construction time when a base path or
	// hierarchy path does not start with a slash, or when a secret name does.
	ErrInvalidPath = errors.New("invalid parameter path")

	// ErrInvalidVersion is returned at construction time when a version
	// selector suffix (name:version) is not a positive integer.
	ErrInvalidVersion = errors.New("invalid parameter version selector")

	// ErrNotStringList is returned by StringList accessors when the cached
	// parameter is not of the StringList type.
	ErrNotStringList = errors.New("parameter is not a StringList")
)

// ParameterNotFoundError reports the exact names a batched fetch could not
// resolve. It matches ErrParameterNotFound under errors.Is.
type ParameterNotFoundError struct {
	// Names holds the unresolved parameter names, in request order.
	Names []string
}

func (e *ParameterNotFoundError) Error() string {
	return fmt.Sprintf("parameter not found: %s", strings.Join(e.Names, ", "))
}

// Is reports whether target is ErrParameterNotFound, so callers can use
// errors.Is without caring about the concrete type.
func (e *ParameterNotFoundError) Is(target error) bool {
	return target == ErrParameterNotFound
}

// RemoteError wraps a transport, permission or throttling failure from the
// backing store. The cached state of the entry or group that triggered the
// fetch is left untouched when a RemoteError is returned.
type RemoteError struct {
	// Op is the store operation that failed, e.g. "GetParameters".
	Op string
	// Err is the underlying cause.
	Err error
}

func (e *RemoteError) Error() string {
	return fmt.Sprintf("%s operation failed: %v", e.Op, e.Err)
}

// Unwrap returns the underlying cause for errors.Is/As chains.
func (e *RemoteError) Unwrap() error {
	return e.Err
}
