package errors

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/aws/smithy-go"
	smithyhttp "github.com/aws/smithy-go/transport/http"
)

// S3 error codes that map onto sentinel errors.
const (
	codeNoSuchBucket          = "NoSuchBucket"
	codeAccessDenied          = "AccessDenied"
	codeAllAccessDisabled     = "AllAccessDisabled"
	codeInvalidAccessKeyID    = "InvalidAccessKeyId"
	codeSignatureDoesNotMatch = "SignatureDoesNotMatch"
	codeExpiredToken          = "ExpiredToken"
	codeInvalidToken          = "InvalidToken"
	codeSlowDown              = "SlowDown"
	codeThrottling            = "Throttling"
	codeRequestLimitExceeded  = "RequestLimitExceeded"
	codeRequestTimeout        = "RequestTimeout"
)

// Classify attaches the matching sentinel error to an AWS SDK error.
// The original error stays in the chain, so errors.As against smithy types
// keeps working. Errors that match no sentinel are returned unchanged.
func Classify(err error) error {
	if err == nil {
		return nil
	}
	sentinel := sentinelFor(err)
	if sentinel == nil || errors.Is(err, sentinel) {
		return err
	}
	return fmt.Errorf("%w: %w", sentinel, err)
}

func sentinelFor(err error) error {
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case codeNoSuchBucket:
			return ErrBucketNotFound
		case codeAccessDenied, codeAllAccessDisabled:
			return ErrAccessDenied
		case codeInvalidAccessKeyID, codeSignatureDoesNotMatch, codeExpiredToken, codeInvalidToken:
			return ErrInvalidCredentials
		case codeSlowDown, codeThrottling, codeRequestLimitExceeded:
			return ErrTooManyRequests
		case codeRequestTimeout:
			return ErrTimeout
		}
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return ErrTimeout
	}

	switch StatusCode(err) {
	case http.StatusNotFound:
		return ErrBucketNotFound
	case http.StatusForbidden:
		return ErrAccessDenied
	case http.StatusTooManyRequests, http.StatusServiceUnavailable:
		return ErrTooManyRequests
	}
	return nil
}

// StatusCode returns the HTTP status code carried by an SDK response error,
// or 0 when the error never reached the service.
func StatusCode(err error) int {
	var respErr *smithyhttp.ResponseError
	if errors.As(err, &respErr) {
		return respErr.HTTPStatusCode()
	}
	return 0
}

// RequestID returns the service request id carried by an SDK error, if any.
func RequestID(err error) string {
	var withID interface{ ServiceRequestID() string }
	if errors.As(err, &withID) {
		return withID.ServiceRequestID()
	}
	return ""
}
