package s3types

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"

	"github.com/vudodov/aws.s3/s3api"
)

// Walk variants, used as a metric label and log attribute.
const (
	VariantSequential = "sequential"
	VariantConcurrent = "concurrent"
)

// ObjectOutcome classifies what happened to a listed object.
type ObjectOutcome string

// Object outcomes reported to a Recorder.
const (
	// OutcomeVisited means the operation completed without error
	OutcomeVisited ObjectOutcome = "visited"

	// OutcomeSkipped means the object was a directory marker
	OutcomeSkipped ObjectOutcome = "skipped"

	// OutcomeFailed means the operation returned an error or panicked
	OutcomeFailed ObjectOutcome = "failed"
)

// ClientFactory opens the storage client used for a single walk.
// If the returned client implements io.Closer it is closed when the walk ends.
type ClientFactory func(ctx context.Context, bucket Bucket) (s3api.S3API, error)

// Recorder receives walk telemetry. Implementations must be safe for concurrent use.
type Recorder interface {
	// RecordPage is called once per listing request
	RecordPage(succeeded bool)

	// RecordObject is called once per listed object
	RecordObject(outcome ObjectOutcome)

	// OperationStarted and OperationFinished bracket each per-object operation
	OperationStarted()
	OperationFinished()

	// RecordWalk is called once when a walk returns
	RecordWalk(variant string, err error, duration time.Duration)
}

// ClientConfig holds configuration for the S3 client.
type ClientConfig struct {
	Region           string
	Endpoint         string
	MaxRetries       int
	Timeout          time.Duration
	ForcePathStyle   bool
	CustomAWSConfig  *aws.Config
	RetryMode        string
	CustomHTTPClient *http.Client
}

// WalkConfig holds configuration for walks via functional options.
type WalkConfig struct {
	PageSize          int32
	Concurrency       int
	StartAfter        string
	ContinuationToken string
	Logger            *slog.Logger
	Recorder          Recorder
	ClientFactory     ClientFactory
	ClientOptions     []Option
}

type (
	// Option is a functional option for configuring the S3 client.
	Option func(*ClientConfig)
	// WalkOption is a functional option for configuring a walk.
	WalkOption func(*WalkConfig)
)
