//go:build integration
// +build integration

package s3_test

import (
	"context"
	"sync"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	awss3 "github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	s3 "github.com/vudodov/aws.s3"
	"github.com/vudodov/aws.s3/errors"
	"github.com/vudodov/aws.s3/internal/testutil"
	"github.com/vudodov/aws.s3/s3api"
	"github.com/vudodov/aws.s3/s3types"
)

// TestIntegrationWalk walks a LocalStack bucket through a real client built by NewClient.
func TestIntegrationWalk(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	ctx := context.Background()
	stack := testutil.StartLocalStack(t)

	bucketName := testutil.GenerateTestBucketName("walk")
	keys, markers := testutil.NewTestDataGenerator(7).GenerateTree("logs/", 4, 23)
	testutil.SeedBucket(t, stack.Client(), bucketName, keys...)

	bucket := s3types.Bucket{
		Name:            bucketName,
		Region:          testutil.LocalStackRegion,
		AccessKeyID:     testutil.LocalStackAccessKeyID,
		SecretAccessKey: testutil.LocalStackSecretAccessKey,
	}
	clientOpts := s3.WithClientOptions(
		s3.WithEndpoint(stack.Endpoint()),
		s3.WithForcePathStyle(true),
	)

	t.Run("sequential walk visits every object in order", func(t *testing.T) {
		var visited []string
		result, err := s3.Walk(ctx, bucket, "logs/",
			func(_ context.Context, _ s3api.S3API, obj s3types.Object) error {
				visited = append(visited, obj.Key)
				return nil
			},
			nil, clientOpts, s3.WithPageSize(5))
		require.NoError(t, err)

		assert.Len(t, visited, len(keys)-markers)
		assert.IsNonDecreasing(t, visited)
		assert.Equal(t, markers, result.Skipped)
		assert.Equal(t, (len(keys)+4)/5, result.Pages)
	})

	t.Run("concurrent walk reads through the walk client", func(t *testing.T) {
		var mu sync.Mutex
		sizes := make(map[string]int64)
		result, err := s3.WalkConcurrent(ctx, bucket, "logs/",
			func(ctx context.Context, client s3api.S3API, obj s3types.Object) error {
				head, err := client.HeadObject(ctx, &awss3.HeadObjectInput{
					Bucket: aws.String(bucketName),
					Key:    aws.String(obj.Key),
				})
				if err != nil {
					return err
				}
				mu.Lock()
				sizes[obj.Key] = aws.ToInt64(head.ContentLength)
				mu.Unlock()
				return nil
			},
			nil, clientOpts, s3.WithConcurrency(4))
		require.NoError(t, err)

		assert.Equal(t, len(keys)-markers, result.Visited)
		for key, size := range sizes {
			assert.Equal(t, int64(len("content of "+key)), size)
		}
	})

	t.Run("missing bucket reports a failed page", func(t *testing.T) {
		missing := bucket
		missing.Name = testutil.GenerateTestBucketName("missing")

		var failed *s3types.Page
		_, err := s3.Walk(ctx, missing, "",
			func(context.Context, s3api.S3API, s3types.Object) error { return nil },
			func(page *s3types.Page) { failed = page },
			clientOpts, s3.WithClientOptions(s3.WithMaxRetries(1)))

		require.Error(t, err)
		assert.True(t, errors.IsListFailed(err))
		assert.True(t, errors.IsBucketNotFound(err))
		require.NotNil(t, failed)
		assert.Equal(t, 404, failed.StatusCode)
	})
}
