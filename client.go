package s3

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	s3errors "github.com/vudodov/aws.s3/errors"
	"github.com/vudodov/aws.s3/s3api"
	"github.com/vudodov/aws.s3/s3types"
)

// DefaultRegion is used when neither the bucket, the options nor the
// environment name a region.
const DefaultRegion = "us-east-1"

// Client is the storage handle a walk lists through and hands to every
// per-object operation. It implements s3api.S3API.
type Client struct {
	// api is the S3 implementation calls are delegated to
	api s3api.S3API

	// config holds the resolved AWS configuration
	config aws.Config

	// httpClient is the HTTP client owned by this Client, nil if supplied by the caller
	httpClient *http.Client

	// mu protects closed
	mu     sync.Mutex
	closed bool
}

var _ s3api.S3API = (*Client)(nil)

// NewClient creates a client for bucket.
// The region is taken from the bucket, then WithRegion, then the environment,
// and finally DefaultRegion. Static credentials are used when the bucket
// carries a non-blank access key id; otherwise the default credential chain
// applies.
//
// Example:
//
//	client, err := s3.NewClient(ctx, bucket,
//	    s3.WithEndpoint("http://localhost:4566"),
//	    s3.WithForcePathStyle(true),
//	)
func NewClient(ctx context.Context, bucket s3types.Bucket, opts ...s3types.Option) (*Client, error) {
	clientCfg := &s3types.ClientConfig{
		MaxRetries: 3,
	}
	for _, opt := range opts {
		opt(clientCfg)
	}

	var cfg aws.Config
	if clientCfg.CustomAWSConfig != nil {
		cfg = clientCfg.CustomAWSConfig.Copy()
	} else {
		var err error
		cfg, err = config.LoadDefaultConfig(ctx)
		if err != nil {
			return nil, s3errors.NewBucketError("client", bucket.Name,
				fmt.Errorf("%w: %w", s3errors.ErrClientInit, err))
		}
	}

	cfg.Region = resolveRegion(bucket.Region, clientCfg.Region, cfg.Region)

	if bucket.HasStaticCredentials() {
		cfg.Credentials = aws.NewCredentialsCache(credentials.NewStaticCredentialsProvider(
			strings.TrimSpace(bucket.AccessKeyID),
			bucket.SecretAccessKey,
			bucket.SessionToken,
		))
	}

	if clientCfg.MaxRetries > 0 {
		cfg.RetryMaxAttempts = clientCfg.MaxRetries
	}

	if clientCfg.RetryMode != "" {
		mode, err := aws.ParseRetryMode(clientCfg.RetryMode)
		if err != nil {
			return nil, s3errors.NewBucketError("client", bucket.Name, s3errors.ErrInvalidInput).
				WithMessage(err.Error())
		}
		cfg.RetryMode = mode
	}

	client := &Client{config: cfg}

	httpClient := clientCfg.CustomHTTPClient
	if httpClient == nil {
		transport := http.DefaultTransport.(*http.Transport).Clone()
		httpClient = &http.Client{
			Transport: transport,
			Timeout:   clientCfg.Timeout,
		}
		client.httpClient = httpClient
	}

	client.api = s3.NewFromConfig(cfg, func(o *s3.Options) {
		o.HTTPClient = httpClient
		if clientCfg.ForcePathStyle {
			o.UsePathStyle = true
		}
		if clientCfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(clientCfg.Endpoint)
		}
	})

	return client, nil
}

// NewWithClient wraps an existing S3API implementation.
// This is primarily used for testing with mocked clients and for callers that
// already hold a configured *s3.Client. Close does not close the wrapped value.
func NewWithClient(api s3api.S3API) *Client {
	return &Client{api: api}
}

// ClientFactory returns a factory that opens a new Client per walk with opts.
func ClientFactory(opts ...s3types.Option) s3types.ClientFactory {
	return func(ctx context.Context, bucket s3types.Bucket) (s3api.S3API, error) {
		client, err := NewClient(ctx, bucket, opts...)
		if err != nil {
			return nil, err
		}
		return client, nil
	}
}

// Region returns the region the client was configured for.
func (c *Client) Region() string {
	return c.config.Region
}

// Close releases the idle connections of the HTTP client owned by c.
// It is safe to call Close more than once.
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return nil
	}
	c.closed = true
	if c.httpClient != nil {
		c.httpClient.CloseIdleConnections()
	}
	return nil
}

// ListObjectsV2 lists objects in a bucket.
func (c *Client) ListObjectsV2(
	ctx context.Context,
	params *s3.ListObjectsV2Input,
	optFns ...func(*s3.Options),
) (*s3.ListObjectsV2Output, error) {
	return c.api.ListObjectsV2(ctx, params, optFns...)
}

// GetObject retrieves an object.
func (c *Client) GetObject(
	ctx context.Context,
	params *s3.GetObjectInput,
	optFns ...func(*s3.Options),
) (*s3.GetObjectOutput, error) {
	return c.api.GetObject(ctx, params, optFns...)
}

// HeadObject retrieves object metadata.
func (c *Client) HeadObject(
	ctx context.Context,
	params *s3.HeadObjectInput,
	optFns ...func(*s3.Options),
) (*s3.HeadObjectOutput, error) {
	return c.api.HeadObject(ctx, params, optFns...)
}

// DeleteObject deletes an object.
func (c *Client) DeleteObject(
	ctx context.Context,
	params *s3.DeleteObjectInput,
	optFns ...func(*s3.Options),
) (*s3.DeleteObjectOutput, error) {
	return c.api.DeleteObject(ctx, params, optFns...)
}

func resolveRegion(fromBucket, fromOption, fromEnv string) string {
	for _, region := range []string{fromBucket, fromOption, fromEnv} {
		if region = strings.TrimSpace(region); region != "" {
			return region
		}
	}
	return DefaultRegion
}
