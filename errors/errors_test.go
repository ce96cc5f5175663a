package errors

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"

	awshttp "github.com/aws/aws-sdk-go-v2/aws/transport/http"
	"github.com/aws/smithy-go"
	smithyhttp "github.com/aws/smithy-go/transport/http"
	"github.com/stretchr/testify/assert"
)

func apiError(status int, code string) error {
	return &smithy.OperationError{
		ServiceID:     "S3",
		OperationName: "ListObjectsV2",
		Err: &awshttp.ResponseError{
			ResponseError: &smithyhttp.ResponseError{
				Response: &smithyhttp.Response{Response: &http.Response{StatusCode: status}},
				Err:      &smithy.GenericAPIError{Code: code, Message: code},
			},
			RequestID: "req-1",
		},
	}
}

func TestError_Error(t *testing.T) {
	base := errors.New("boom")
	tests := []struct {
		name string
		err  *Error
		want string
	}{
		{"op only", NewError("walk", base), "s3.walk: boom"},
		{"bucket", NewBucketError("list", "data", base), "s3.list bucket data: boom"},
		{"bucket and prefix", NewBucketError("list", "data", base).WithPrefix("logs/"), "s3.list data/logs/*: boom"},
		{"object", NewObjectError("operate", "data", "logs/a.txt", base), "s3.operate data/logs/a.txt: boom"},
		{"key only", NewError("operate", base).WithKey("k"), "s3.operate object k: boom"},
		{"message", NewError("walk", base).WithMessage("context"), "s3.walk: context: boom"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.err.Error())
			assert.ErrorIs(t, tt.err, base)
		})
	}
}

func TestIsHelpers(t *testing.T) {
	assert.True(t, IsInvalidInput(NewError("walk", ErrInvalidBucketName)))
	assert.True(t, IsInvalidInput(NewError("walk", ErrInvalidPrefix)))
	assert.True(t, IsInvalidInput(NewError("walk", ErrInvalidInput)))
	assert.False(t, IsInvalidInput(NewError("walk", ErrListFailed)))

	assert.True(t, IsOperationFailed(fmt.Errorf("x: %w", ErrOperationPanic)))
	assert.True(t, IsOperationFailed(ErrOperationFailed))
	assert.True(t, IsListFailed(NewBucketError("list", "b", ErrListFailed)))
	assert.True(t, IsBucketNotFound(Classify(apiError(http.StatusNotFound, "NoSuchBucket"))))
	assert.True(t, IsAccessDenied(Classify(apiError(http.StatusForbidden, "AccessDenied"))))
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want error
	}{
		{"no such bucket", apiError(http.StatusNotFound, "NoSuchBucket"), ErrBucketNotFound},
		{"access denied", apiError(http.StatusForbidden, "AccessDenied"), ErrAccessDenied},
		{"all access disabled", apiError(http.StatusForbidden, "AllAccessDisabled"), ErrAccessDenied},
		{"bad key id", apiError(http.StatusForbidden, "InvalidAccessKeyId"), ErrInvalidCredentials},
		{"bad signature", apiError(http.StatusForbidden, "SignatureDoesNotMatch"), ErrInvalidCredentials},
		{"expired token", apiError(http.StatusBadRequest, "ExpiredToken"), ErrInvalidCredentials},
		{"slow down", apiError(http.StatusServiceUnavailable, "SlowDown"), ErrTooManyRequests},
		{"request timeout", apiError(http.StatusBadRequest, "RequestTimeout"), ErrTimeout},
		{"status 404 fallback", apiError(http.StatusNotFound, "Weird"), ErrBucketNotFound},
		{"status 429 fallback", apiError(http.StatusTooManyRequests, "Weird"), ErrTooManyRequests},
		{"deadline", fmt.Errorf("send: %w", context.DeadlineExceeded), ErrTimeout},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Classify(tt.err)
			assert.ErrorIs(t, got, tt.want)
			assert.ErrorIs(t, got, tt.err, "original error stays in the chain")

			var apiErr smithy.APIError
			if errors.As(tt.err, &apiErr) {
				assert.ErrorAs(t, got, &apiErr)
			}
		})
	}
}

func TestClassify_Unmatched(t *testing.T) {
	assert.Nil(t, Classify(nil))

	plain := errors.New("plain")
	assert.Same(t, plain, Classify(plain))

	internal := apiError(http.StatusInternalServerError, "InternalError")
	assert.Equal(t, internal, Classify(internal))

	once := Classify(apiError(http.StatusNotFound, "NoSuchBucket"))
	assert.Equal(t, once, Classify(once), "classifying twice does not wrap again")
}

func TestStatusCodeAndRequestID(t *testing.T) {
	err := apiError(http.StatusForbidden, "AccessDenied")
	assert.Equal(t, http.StatusForbidden, StatusCode(err))
	assert.Equal(t, "req-1", RequestID(err))

	assert.Zero(t, StatusCode(errors.New("dial tcp: refused")))
	assert.Empty(t, RequestID(errors.New("dial tcp: refused")))
}

func TestCodeOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want ErrorCode
	}{
		{"nil", nil, CodeNone},
		{"invalid", NewError("walk", ErrInvalidBucketName), CodeInvalidInput},
		{"cancelled", fmt.Errorf("walk: %w", context.Canceled), CodeCanceled},
		{"not found", apiError(http.StatusNotFound, "NoSuchBucket"), CodeNotFound},
		{"forbidden", apiError(http.StatusForbidden, "AccessDenied"), CodeForbidden},
		{"unauthorized", apiError(http.StatusForbidden, "ExpiredToken"), CodeUnauthorized},
		{"rate limit", apiError(http.StatusServiceUnavailable, "SlowDown"), CodeRateLimit},
		{"timeout", context.DeadlineExceeded, CodeTimeout},
		{"list failed", fmt.Errorf("%w: %w", ErrListFailed, apiError(500, "InternalError")), CodeListFailed},
		{"operation failed", NewError("operate", ErrOperationFailed), CodeExecutionFailed},
		{"panic", NewError("operate", ErrOperationPanic), CodeExecutionFailed},
		{"joined", errors.Join(NewError("operate", ErrOperationFailed), fmt.Errorf("%w", ErrListFailed)), CodeListFailed},
		{"unknown", errors.New("?"), CodeUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CodeOf(tt.err))
		})
	}
}
