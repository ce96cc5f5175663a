// Package testutil provides test helper functions.
package testutil

import (
	"fmt"
	"net/http"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awshttp "github.com/aws/aws-sdk-go-v2/aws/transport/http"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
	smithyhttp "github.com/aws/smithy-go/transport/http"
)

// StringPtr returns a pointer to the given string.
// This is useful for AWS SDK inputs that require string pointers.
func StringPtr(s string) *string {
	return aws.String(s)
}

// Int64Ptr returns a pointer to the given int64.
func Int64Ptr(i int64) *int64 {
	return aws.Int64(i)
}

// TimePtr returns a pointer to the given time.
func TimePtr(t time.Time) *time.Time {
	return &t
}

// CreateTestObject builds an SDK object record with a deterministic ETag.
func CreateTestObject(key string, size int64, modified time.Time) types.Object {
	return types.Object{
		Key:          StringPtr(key),
		Size:         Int64Ptr(size),
		LastModified: TimePtr(modified),
		ETag:         StringPtr(fmt.Sprintf(`"%x"`, len(key)*31+int(size))),
		StorageClass: types.ObjectStorageClassStandard,
	}
}

// NewAPIError builds an error shaped like the ones the AWS SDK returns for a
// failed ListObjectsV2 call: an operation error wrapping an HTTP response error
// that carries the status, request id and S3 error code.
func NewAPIError(status int, code, message string) error {
	return &smithy.OperationError{
		ServiceID:     "S3",
		OperationName: "ListObjectsV2",
		Err: &awshttp.ResponseError{
			ResponseError: &smithyhttp.ResponseError{
				Response: &smithyhttp.Response{Response: &http.Response{
					StatusCode: status,
					Header:     http.Header{},
				}},
				Err: &smithy.GenericAPIError{Code: code, Message: message},
			},
			RequestID: "req-" + code,
		},
	}
}
