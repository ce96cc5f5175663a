package s3

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"

	"github.com/vudodov/aws.s3/s3types"
)

// WithRegion sets the AWS region used when the bucket does not name one.
func WithRegion(region string) s3types.Option {
	return func(c *s3types.ClientConfig) {
		c.Region = region
	}
}

// WithMaxRetries sets the maximum number of attempts the SDK makes per request.
// Default is 3.
func WithMaxRetries(maxRetries int) s3types.Option {
	return func(c *s3types.ClientConfig) {
		c.MaxRetries = maxRetries
	}
}

// WithRetryMode sets the SDK retry mode: "standard" or "adaptive".
func WithRetryMode(mode string) s3types.Option {
	return func(c *s3types.ClientConfig) {
		c.RetryMode = mode
	}
}

// WithTimeout sets the timeout of each HTTP request made by the client.
// Default is no timeout.
func WithTimeout(timeout time.Duration) s3types.Option {
	return func(c *s3types.ClientConfig) {
		c.Timeout = timeout
	}
}

// WithForcePathStyle forces path-style URLs instead of virtual-hosted style.
// This is required for most S3-compatible services and LocalStack.
func WithForcePathStyle(forcePathStyle bool) s3types.Option {
	return func(c *s3types.ClientConfig) {
		c.ForcePathStyle = forcePathStyle
	}
}

// WithEndpoint sets a custom S3 endpoint URL.
func WithEndpoint(endpoint string) s3types.Option {
	return func(c *s3types.ClientConfig) {
		c.Endpoint = endpoint
	}
}

// WithAWSConfig uses config instead of loading the default AWS configuration.
func WithAWSConfig(config *aws.Config) s3types.Option {
	return func(c *s3types.ClientConfig) {
		c.CustomAWSConfig = config
	}
}

// WithCustomHTTPClient uses client for all requests. The caller keeps
// ownership of client; Close will not touch it.
func WithCustomHTTPClient(client *http.Client) s3types.Option {
	return func(c *s3types.ClientConfig) {
		c.CustomHTTPClient = client
	}
}

// WithPageSize sets the number of keys requested per listing page (1 to 1000).
// Default is 1000.
func WithPageSize(size int32) s3types.WalkOption {
	return func(c *s3types.WalkConfig) {
		c.PageSize = size
	}
}

// WithConcurrency sets how many operations WalkConcurrent runs at once.
// Default is 5. It has no effect on Walk.
func WithConcurrency(concurrency int) s3types.WalkOption {
	return func(c *s3types.WalkConfig) {
		c.Concurrency = concurrency
	}
}

// WithStartAfter starts the listing after key.
func WithStartAfter(key string) s3types.WalkOption {
	return func(c *s3types.WalkConfig) {
		c.StartAfter = key
	}
}

// WithContinuationToken resumes a walk from a token, typically the
// ContinuationToken of a previous WalkResult's Mark.
func WithContinuationToken(token string) s3types.WalkOption {
	return func(c *s3types.WalkConfig) {
		c.ContinuationToken = token
	}
}

// WithLogger sets the structured logger. A nil logger disables logging.
func WithLogger(logger *slog.Logger) s3types.WalkOption {
	return func(c *s3types.WalkConfig) {
		c.Logger = logger
	}
}

// WithMetrics records walk telemetry into m.
func WithMetrics(m *Metrics) s3types.WalkOption {
	return func(c *s3types.WalkConfig) {
		if m != nil {
			c.Recorder = m
		}
	}
}

// WithRecorder records walk telemetry into a custom Recorder.
func WithRecorder(recorder s3types.Recorder) s3types.WalkOption {
	return func(c *s3types.WalkConfig) {
		c.Recorder = recorder
	}
}

// WithClientFactory replaces the function used to open a client per walk.
func WithClientFactory(factory s3types.ClientFactory) s3types.WalkOption {
	return func(c *s3types.WalkConfig) {
		c.ClientFactory = factory
	}
}

// WithClientOptions sets the options passed to NewClient by the default factory.
func WithClientOptions(opts ...s3types.Option) s3types.WalkOption {
	return func(c *s3types.WalkConfig) {
		c.ClientOptions = append(c.ClientOptions, opts...)
	}
}
