package errors

import (
	"context"
	"errors"
)

// ErrorCode is a stable, string-based classification of a walk error.
// Codes are used as log attributes and metric labels.
type ErrorCode string

const (
	// CodeNone indicates there was no error.
	CodeNone ErrorCode = ""

	// CodeNotFound indicates the bucket does not exist.
	CodeNotFound ErrorCode = "NOT_FOUND"

	// CodeForbidden indicates the caller lacks permission to list the bucket.
	CodeForbidden ErrorCode = "FORBIDDEN"

	// CodeUnauthorized indicates the credentials were rejected.
	CodeUnauthorized ErrorCode = "UNAUTHORIZED"

	// CodeInvalidInput indicates the bucket, prefix or callbacks were invalid.
	CodeInvalidInput ErrorCode = "INVALID_INPUT"

	// CodeRateLimit indicates the service throttled the request.
	CodeRateLimit ErrorCode = "RATE_LIMIT_EXCEEDED"

	// CodeTimeout indicates an operation exceeded its time limit.
	CodeTimeout ErrorCode = "TIMEOUT"

	// CodeCanceled indicates the walk was cancelled by its context.
	CodeCanceled ErrorCode = "CANCELED"

	// CodeListFailed indicates a listing page failed for an unclassified reason.
	CodeListFailed ErrorCode = "LIST_FAILED"

	// CodeExecutionFailed indicates a per-object operation failed.
	CodeExecutionFailed ErrorCode = "EXECUTION_FAILED"

	// CodeUnknown indicates an unknown or unclassified error occurred.
	CodeUnknown ErrorCode = "UNKNOWN"
)

// CodeOf returns the ErrorCode that best describes err.
func CodeOf(err error) ErrorCode {
	switch {
	case err == nil:
		return CodeNone
	case IsInvalidInput(err):
		return CodeInvalidInput
	case errors.Is(err, context.Canceled):
		return CodeCanceled
	}

	switch sentinelFor(err) {
	case ErrBucketNotFound:
		return CodeNotFound
	case ErrAccessDenied:
		return CodeForbidden
	case ErrInvalidCredentials:
		return CodeUnauthorized
	case ErrTooManyRequests:
		return CodeRateLimit
	case ErrTimeout:
		return CodeTimeout
	}

	switch {
	case errors.Is(err, ErrBucketNotFound):
		return CodeNotFound
	case errors.Is(err, ErrAccessDenied):
		return CodeForbidden
	case errors.Is(err, ErrInvalidCredentials):
		return CodeUnauthorized
	case errors.Is(err, ErrTooManyRequests):
		return CodeRateLimit
	case errors.Is(err, ErrTimeout):
		return CodeTimeout
	case IsListFailed(err):
		return CodeListFailed
	case IsOperationFailed(err):
		return CodeExecutionFailed
	}
	return CodeUnknown
}
