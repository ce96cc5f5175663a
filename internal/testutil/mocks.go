// Package testutil holds fixtures shared by the walker tests: a mock S3 API,
// a paged listing server, tree generators and LocalStack helpers.
package testutil

import (
	"context"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/vudodov/aws.s3/s3api"
)

// Call is one recorded request against a MockS3Client.
type Call struct {
	Op  string
	Key string
}

// MockS3Client satisfies s3api.S3API. Each operation delegates to its
// function field when set and otherwise returns an empty output. Every
// request is recorded so tests can assert what an operation did.
type MockS3Client struct {
	ListObjectsV2Func func(context.Context, *s3.ListObjectsV2Input, ...func(*s3.Options)) (*s3.ListObjectsV2Output, error)
	GetObjectFunc     func(context.Context, *s3.GetObjectInput, ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	HeadObjectFunc    func(context.Context, *s3.HeadObjectInput, ...func(*s3.Options)) (*s3.HeadObjectOutput, error)
	DeleteObjectFunc  func(context.Context, *s3.DeleteObjectInput, ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)

	// CloseFunc is called by Close; Closed reports whether Close was called.
	CloseFunc func() error
	Closed    bool

	mu    sync.Mutex
	calls []Call
}

func (m *MockS3Client) record(op string, key *string) {
	m.mu.Lock()
	m.calls = append(m.calls, Call{Op: op, Key: aws.ToString(key)})
	m.mu.Unlock()
}

// Calls returns a copy of the recorded requests in arrival order. An empty
// op returns every request; otherwise only requests for that operation.
func (m *MockS3Client) Calls(op string) []Call {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Call, 0, len(m.calls))
	for _, c := range m.calls {
		if op == "" || c.Op == op {
			out = append(out, c)
		}
	}
	return out
}

func (m *MockS3Client) ListObjectsV2(
	ctx context.Context,
	params *s3.ListObjectsV2Input,
	optFns ...func(*s3.Options),
) (*s3.ListObjectsV2Output, error) {
	m.record("ListObjectsV2", params.Prefix)
	if m.ListObjectsV2Func == nil {
		return &s3.ListObjectsV2Output{}, nil
	}
	return m.ListObjectsV2Func(ctx, params, optFns...)
}

func (m *MockS3Client) GetObject(
	ctx context.Context,
	params *s3.GetObjectInput,
	optFns ...func(*s3.Options),
) (*s3.GetObjectOutput, error) {
	m.record("GetObject", params.Key)
	if m.GetObjectFunc == nil {
		return &s3.GetObjectOutput{}, nil
	}
	return m.GetObjectFunc(ctx, params, optFns...)
}

func (m *MockS3Client) HeadObject(
	ctx context.Context,
	params *s3.HeadObjectInput,
	optFns ...func(*s3.Options),
) (*s3.HeadObjectOutput, error) {
	m.record("HeadObject", params.Key)
	if m.HeadObjectFunc == nil {
		return &s3.HeadObjectOutput{}, nil
	}
	return m.HeadObjectFunc(ctx, params, optFns...)
}

func (m *MockS3Client) DeleteObject(
	ctx context.Context,
	params *s3.DeleteObjectInput,
	optFns ...func(*s3.Options),
) (*s3.DeleteObjectOutput, error) {
	m.record("DeleteObject", params.Key)
	if m.DeleteObjectFunc == nil {
		return &s3.DeleteObjectOutput{}, nil
	}
	return m.DeleteObjectFunc(ctx, params, optFns...)
}

// Close marks the mock as released.
func (m *MockS3Client) Close() error {
	m.Closed = true
	if m.CloseFunc != nil {
		return m.CloseFunc()
	}
	return nil
}

var _ s3api.S3API = (*MockS3Client)(nil)
