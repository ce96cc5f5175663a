// Package testutil provides LocalStack integration test utilities.
package testutil

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/localstack"
	"github.com/testcontainers/testcontainers-go/wait"
)

// LocalStack test credentials, accepted by any LocalStack instance.
const (
	LocalStackAccessKeyID     = "test"
	LocalStackSecretAccessKey = "test"
	LocalStackRegion          = "us-east-1"

	localStackImage = "localstack/localstack:3.8"
	localStackPort  = "4566/tcp"
)

// LocalStack is a running LocalStack container with only S3 enabled.
type LocalStack struct {
	endpoint string
}

// StartLocalStack starts a LocalStack container for the duration of t.
// The container is terminated by t.Cleanup. Tests are skipped in short mode.
func StartLocalStack(t *testing.T) *LocalStack {
	t.Helper()

	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	ctx := context.Background()
	container, err := localstack.Run(ctx, localStackImage,
		testcontainers.WithEnv(map[string]string{"SERVICES": "s3"}),
		testcontainers.WithWaitStrategy(
			wait.ForHTTP("/_localstack/health").
				WithPort(localStackPort).
				WithStartupTimeout(2*time.Minute),
		),
	)
	if err != nil {
		t.Fatalf("start LocalStack: %v", err)
	}
	t.Cleanup(func() {
		if err := container.Terminate(context.Background()); err != nil {
			t.Logf("terminate LocalStack: %v", err)
		}
	})

	endpoint, err := container.PortEndpoint(ctx, localStackPort, "http")
	if err != nil {
		t.Fatalf("resolve LocalStack endpoint: %v", err)
	}
	return &LocalStack{endpoint: endpoint}
}

// Endpoint returns the S3 endpoint URL of the container.
func (l *LocalStack) Endpoint() string {
	return l.endpoint
}

// Client returns an SDK client for seeding and inspecting buckets.
func (l *LocalStack) Client() *s3.Client {
	return s3.New(s3.Options{
		Region:       LocalStackRegion,
		BaseEndpoint: aws.String(l.endpoint),
		UsePathStyle: true,
		Credentials: credentials.NewStaticCredentialsProvider(
			LocalStackAccessKeyID, LocalStackSecretAccessKey, ""),
	})
}

// SeedBucket creates bucket holding one small object per key, whose body is
// "content of <key>". The bucket and its objects are removed by t.Cleanup.
func SeedBucket(t *testing.T, client *s3.Client, bucket string, keys ...string) {
	t.Helper()
	ctx := context.Background()

	if _, err := client.CreateBucket(ctx, &s3.CreateBucketInput{Bucket: aws.String(bucket)}); err != nil {
		t.Fatalf("create bucket %s: %v", bucket, err)
	}
	t.Cleanup(func() {
		if err := emptyAndDeleteBucket(context.Background(), client, bucket); err != nil {
			t.Logf("remove bucket %s: %v", bucket, err)
		}
	})

	for _, key := range keys {
		_, err := client.PutObject(ctx, &s3.PutObjectInput{
			Bucket: aws.String(bucket),
			Key:    aws.String(key),
			Body:   strings.NewReader("content of " + key),
		})
		if err != nil {
			t.Fatalf("put %s: %v", key, err)
		}
	}
}

func emptyAndDeleteBucket(ctx context.Context, client *s3.Client, bucket string) error {
	pages := s3.NewListObjectsV2Paginator(client, &s3.ListObjectsV2Input{Bucket: aws.String(bucket)})
	for pages.HasMorePages() {
		page, err := pages.NextPage(ctx)
		if err != nil {
			return fmt.Errorf("list objects: %w", err)
		}
		if len(page.Contents) == 0 {
			continue
		}

		ids := make([]types.ObjectIdentifier, 0, len(page.Contents))
		for _, obj := range page.Contents {
			ids = append(ids, types.ObjectIdentifier{Key: obj.Key})
		}
		if _, err := client.DeleteObjects(ctx, &s3.DeleteObjectsInput{
			Bucket: aws.String(bucket),
			Delete: &types.Delete{Objects: ids, Quiet: aws.Bool(true)},
		}); err != nil {
			return fmt.Errorf("delete objects: %w", err)
		}
	}

	if _, err := client.DeleteBucket(ctx, &s3.DeleteBucketInput{Bucket: aws.String(bucket)}); err != nil {
		return fmt.Errorf("delete bucket: %w", err)
	}
	return nil
}
