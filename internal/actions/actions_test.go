package actions

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"strings"
	"sync"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	s3errors "github.com/vudodov/aws.s3/errors"
	"github.com/vudodov/aws.s3/internal/testutil"
	"github.com/vudodov/aws.s3/s3types"
)

func TestPrinter(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	ctx := context.Background()
	require.NoError(t, p.Operate(ctx, nil, s3types.Object{Key: "logs/a.txt", Size: 12, ETag: `"abc"`}))
	require.NoError(t, p.Operate(ctx, nil, s3types.Object{Key: "logs/b.txt", Size: 0, ETag: `"def"`}))

	assert.Equal(t, "logs/a.txt\t12\t\"abc\"\nlogs/b.txt\t0\t\"def\"\n", buf.String())
}

func TestSizeTally(t *testing.T) {
	tally := NewSizeTally()
	objects := []s3types.Object{
		{Key: "a", Size: 10, StorageClass: "STANDARD"},
		{Key: "b", Size: 5},
		{Key: "c", Size: 100, StorageClass: "GLACIER"},
		{Key: "d", Size: 1, StorageClass: "GLACIER"},
	}

	var wg sync.WaitGroup
	for _, obj := range objects {
		wg.Add(1)
		go func(obj s3types.Object) {
			defer wg.Done()
			assert.NoError(t, tally.Operate(context.Background(), nil, obj))
		}(obj)
	}
	wg.Wait()

	assert.Equal(t, []ClassTotal{
		{StorageClass: "GLACIER", Objects: 2, Bytes: 101},
		{StorageClass: "STANDARD", Objects: 2, Bytes: 15},
	}, tally.Totals())

	count, size := tally.Sum()
	assert.Equal(t, int64(4), count)
	assert.Equal(t, int64(116), size)
}

func TestDigest_OrderIndependent(t *testing.T) {
	objects := []s3types.Object{
		{Key: "a", ETag: "1", Size: 1},
		{Key: "b", ETag: "2", Size: 2},
		{Key: "c", ETag: "3", Size: 3},
	}

	forward, backward := NewDigest(), NewDigest()
	for i := range objects {
		require.NoError(t, forward.Operate(context.Background(), nil, objects[i]))
		require.NoError(t, backward.Operate(context.Background(), nil, objects[len(objects)-1-i]))
	}

	assert.Equal(t, forward.Sum64(), backward.Sum64())
	assert.Equal(t, int64(3), forward.Count())
	assert.Len(t, forward.String(), 16)
}

func TestDigest_DetectsChanges(t *testing.T) {
	base := s3types.Object{Key: "a", ETag: "1", Size: 1}
	tests := []struct {
		name    string
		changed s3types.Object
	}{
		{"key", s3types.Object{Key: "b", ETag: "1", Size: 1}},
		{"etag", s3types.Object{Key: "a", ETag: "2", Size: 1}},
		{"size", s3types.Object{Key: "a", ETag: "1", Size: 2}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			want, got := NewDigest(), NewDigest()
			require.NoError(t, want.Operate(context.Background(), nil, base))
			require.NoError(t, got.Operate(context.Background(), nil, tt.changed))
			assert.NotEqual(t, want.Sum64(), got.Sum64())
		})
	}

	assert.Equal(t, "0000000000000000", NewDigest().String())
}

func TestSniffer(t *testing.T) {
	bodies := map[string]string{
		"doc.pdf":   "%PDF-1.7\n%\xe2\xe3\xcf\xd3\n1 0 obj\n",
		"image.png": "\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR",
		"notes":     "plain old text\n",
	}

	var mu sync.Mutex
	var ranges []string
	client := testutil.NewMockBuilder().
		WithGetObject(func(_ context.Context, in *s3.GetObjectInput) (*s3.GetObjectOutput, error) {
			mu.Lock()
			ranges = append(ranges, aws.ToString(in.Range))
			mu.Unlock()
			assert.Equal(t, "data", aws.ToString(in.Bucket))
			return &s3.GetObjectOutput{
				Body: io.NopCloser(strings.NewReader(bodies[aws.ToString(in.Key)])),
			}, nil
		}).
		Build()

	var out bytes.Buffer
	sniffer := NewSniffer("data", &out)
	ctx := context.Background()
	for key, body := range bodies {
		require.NoError(t, sniffer.Operate(ctx, client, s3types.Object{Key: key, Size: int64(len(body))}))
	}
	require.NoError(t, sniffer.Operate(ctx, client, s3types.Object{Key: "empty", Size: 0}))

	assert.Len(t, ranges, 3, "zero-length objects are not fetched")
	for _, r := range ranges {
		assert.Equal(t, "bytes=0-3071", r)
	}

	assert.Contains(t, out.String(), "doc.pdf\tapplication/pdf\n")
	assert.Contains(t, out.String(), "image.png\timage/png\n")
	assert.Contains(t, out.String(), "notes\ttext/plain")
	assert.Contains(t, out.String(), "empty\t"+EmptyMIME+"\n")

	counts := sniffer.Counts()
	require.Len(t, counts, 4)
	for _, c := range counts {
		assert.Equal(t, 1, c.Objects)
	}
}

func TestSniffer_GetObjectError(t *testing.T) {
	client := testutil.NewMockBuilder().
		WithGetObject(func(context.Context, *s3.GetObjectInput) (*s3.GetObjectOutput, error) {
			return nil, testutil.NewAPIError(http.StatusForbidden, "AccessDenied", "denied")
		}).
		Build()

	sniffer := NewSniffer("data", nil)
	err := sniffer.Operate(context.Background(), client, s3types.Object{Key: "secret.bin", Size: 10})

	require.Error(t, err)
	assert.True(t, s3errors.IsAccessDenied(err))
	var walkErr *s3errors.Error
	require.True(t, errors.As(err, &walkErr))
	assert.Equal(t, "secret.bin", walkErr.Key)
	assert.Empty(t, sniffer.Counts())
}
